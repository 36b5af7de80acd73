package scrollview

import (
	"time"

	"github.com/kinetex/scrollcore/kinetic"
)

// BounceFlags controls, per edge, whether crossing that edge rubber-bands
// and springs back (true) or hard-clamps with zero velocity (false), per
// §4.5.
type BounceFlags struct {
	Top    bool
	Bottom bool
	Left   bool
	Right  bool
}

// Config is a scrollview's geometry: the scrollable content size, the
// viewport window into it, the starting offset, and which edges bounce.
// A Config with a zero ViewportWidth or ViewportHeight is invalid for
// SetGeometry (§7) but is accepted by New as the inert default.
type Config struct {
	ContentWidth   uint64
	ContentHeight  uint64
	ViewportWidth  uint64
	ViewportHeight uint64

	InitialX int64
	InitialY int64

	Bounce BounceFlags
}

// Phase is the scrollview's current motion regime, per §9's design note:
// a flat tagged variant rather than a deep hierarchy. It orders the same
// way axisMode does, so the aggregate phase of two axes in different
// modes is simply the larger of the two.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseEngaged
	PhaseKinetic
	PhaseBounce
	PhaseJumping
)

// String implements fmt.Stringer for diagnostics.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseEngaged:
		return "engaged"
	case PhaseKinetic:
		return "kinetic"
	case PhaseBounce:
		return "bounce"
	case PhaseJumping:
		return "jumping"
	default:
		return "idle"
	}
}

// axisMode mirrors Phase but is tracked per axis internally, since one
// axis can settle or bounce independently of the other (e.g. a diagonal
// fling that overscrolls on y but stays in bounds on x). Its values are
// deliberately numbered the same as Phase's so the two axes aggregate to
// a single reported Phase by taking the larger of the two.
type axisMode int

const (
	modeIdle    axisMode = axisMode(PhaseIdle)
	modeEngaged axisMode = axisMode(PhaseEngaged)
	modeKinetic axisMode = axisMode(PhaseKinetic)
	modeBounce  axisMode = axisMode(PhaseBounce)
	modeJumping axisMode = axisMode(PhaseJumping)
)

// axisState is the dynamic state carried for one axis (x or y).
type axisState struct {
	position float64
	velocity float64
	mode     axisMode

	estimator *kinetic.Estimator

	// rawPos is the unclamped accumulation basis used while Engaged, so
	// the rubber-band function has an unbounded "how far past the edge"
	// value to resist even though position itself is bounded.
	rawPos float64

	// reportedPos is the delta-getter marker: the position last handed
	// out by GetPan, GetPanX, or GetPanY for this axis.
	reportedPos float64

	kineticV0    float64
	kineticBase  float64
	kineticStart time.Time

	jumpStart     float64
	jumpTarget    float64
	jumpStartTime time.Time
	jumpDuration  time.Duration
}

// PanTransform is the per-poll result handed to a renderer: how far to
// shift the viewport since the last call, whether anything changed at
// all, and the current velocity for motion blur or similar effects.
type PanTransform struct {
	X int64
	Y int64

	// Panned is false only when the scrollview is Idle, stationary, and
	// its reported position did not change since the previous report —
	// the signal a render loop uses to skip redrawing (§4.6).
	Panned bool

	VelocityX float64
	VelocityY float64
}
