package scrollview

import "github.com/pkg/errors"

// ErrDestroyed is returned by SetGeometry after Destroy has been called
// (see Destroy for how the other operations behave).
var ErrDestroyed = errors.New("scrollview: use of destroyed handle")

// ErrInvalidGeometry is returned by SetGeometry when either viewport
// extent is zero. The scrollview's prior geometry is left untouched
// (§7).
var ErrInvalidGeometry = errors.New("scrollview: viewport extent must be non-zero on both axes")

// errOutOfOrderSample marks a defensive path: an ingest sample arrived
// timestamped before the scrollview's last observed time, which would
// otherwise integrate physics backward. It is wrapped with context and
// kept on the handle rather than returned, since pollAt has no caller to
// hand an error to (it runs inside the getters); LastError exposes it
// for diagnostics.
var errOutOfOrderSample = errors.New("scrollview: ingest sample timestamped before last poll")
