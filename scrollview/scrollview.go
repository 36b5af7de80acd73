// Package scrollview is the core of scrollcore: a per-viewport state
// machine that reconciles raw input deltas, device-dependent
// acceleration, kinetic inertia, overscroll bounce, and explicit jumps
// into a single pan transform a renderer can apply every frame.
//
// A Scrollview is a single-owner handle: every exported method is meant
// to be called from one goroutine (or externally serialized), except
// AddScroll/AddScrollX/AddScrollY/AddScrollInterrupt/AddScrollRelease,
// which may be called from a separate producer goroutine since they
// only touch the lock-free ingest buffer (§5).
package scrollview

import (
	"math"
	"time"

	"github.com/kinetex/scrollcore/clock"
	"github.com/kinetex/scrollcore/condition"
	"github.com/kinetex/scrollcore/constants"
	"github.com/kinetex/scrollcore/ingest"
	"github.com/kinetex/scrollcore/kinetic"
	"github.com/kinetex/scrollcore/overscroll"
)

// Options is a bitmask of behavior flags. Unrecognized bits are ignored
// (§7), so callers on a newer version of this package degrade gracefully
// against an older one and vice versa.
type Options uint32

const (
	// OptImpreciseScrollsSmoothly animates stepped-mousewheel detents
	// and forced jumps over constants.WheelSmoothDuration /
	// constants.JumpAnimationDuration instead of applying them
	// instantaneously (§4.3, §6).
	OptImpreciseScrollsSmoothly Options = 0x1
)

// Scrollview is the public handle. The zero value is not usable; use New.
type Scrollview struct {
	destroyed bool

	cfg     Config
	options Options

	conditioner *condition.Conditioner
	predictor   clock.Predictor
	clockSrc    clock.Source
	ingest      *ingest.Buffer

	x, y axisState

	lastSampleTime time.Time
	haveLastEvent  bool
	lastEventTime  time.Time

	lastErr error
}

// New creates a Scrollview with the given geometry. A zero-value Config
// is accepted — it yields an inert scrollview with no scrollable range,
// the "default geometry" variant described in §6, which SetGeometry can
// later replace. Unlike the system this package is modeled on, Go's
// allocator panics rather than returning a null pointer on exhaustion,
// so there is no out-of-memory return here to mirror; New always
// succeeds.
func New(cfg Config) *Scrollview {
	sv := &Scrollview{
		cfg:         cfg,
		conditioner: condition.New(),
		clockSrc:    clock.Real{},
		ingest:      ingest.New(),
	}
	sv.x.estimator = kinetic.NewEstimator()
	sv.y.estimator = kinetic.NewEstimator()

	// Equivalent to a force_pan() right after construction: an
	// out-of-range initial position is clamped into bounds the same way
	// applyForce clamps an explicit jump target, regardless of bounce.
	bx, by := sv.boundsX(), sv.boundsY()
	sv.x.position = clampFloat(float64(cfg.InitialX), bx.Min, bx.Max)
	sv.y.position = clampFloat(float64(cfg.InitialY), by.Min, by.Max)
	sv.x.rawPos = sv.x.position
	sv.y.rawPos = sv.y.position
	sv.x.reportedPos = sv.x.position
	sv.y.reportedPos = sv.y.position
	sv.lastSampleTime = sv.clockSrc.Now()
	return sv
}

// withClock overrides the time source, used by tests to drive physics
// deterministically without sleeping.
func (sv *Scrollview) withClock(src clock.Source) *Scrollview {
	sv.clockSrc = src
	sv.lastSampleTime = src.Now()
	return sv
}

// Destroy marks the handle unusable. Afterward SetGeometry returns
// ErrDestroyed, AddScroll/AddScrollX/AddScrollY/AddScrollInterrupt/
// AddScrollRelease/ForcePan/ForceJump are no-ops, and polls no longer
// advance state. SetOptions, SetScaleFactor, SetInputSource and
// SetPredict are not guarded, and the getters keep reporting from the
// state left at destruction.
func (sv *Scrollview) Destroy() {
	sv.destroyed = true
}

// Geometry returns the scrollview's current content/viewport
// configuration.
func (sv *Scrollview) Geometry() Config {
	return sv.cfg
}

// SetGeometry replaces the scrollview's geometry, equivalent to
// signal_geometry. Either viewport extent being zero is rejected and the
// prior geometry is retained (§7). On success, any axis whose bounce
// flag is off is re-clamped into the new bounds immediately.
func (sv *Scrollview) SetGeometry(cfg Config) error {
	if sv.destroyed {
		return ErrDestroyed
	}
	if cfg.ViewportWidth == 0 || cfg.ViewportHeight == 0 {
		return ErrInvalidGeometry
	}
	now := sv.clockSrc.Now()
	sv.pollAt(now)
	sv.cfg = cfg
	sv.reclampToGeometry(now)
	return nil
}

func (sv *Scrollview) reclampToGeometry(now time.Time) {
	bx, by := sv.boundsX(), sv.boundsY()
	reclampAxis(&sv.x, bx, sv.cfg.Bounce.Left, sv.cfg.Bounce.Right, now)
	reclampAxis(&sv.y, by, sv.cfg.Bounce.Top, sv.cfg.Bounce.Bottom, now)
}

// reclampAxis clamps position into the new bounds and, for Kinetic and
// Jumping, re-bases the time-anchored state those modes drive position
// from (kineticBase/kineticStart, jumpStart/jumpTarget/jumpStartTime) so
// the clamp survives the next poll instead of being overwritten by motion
// computed against the pre-clamp basis.
func reclampAxis(ax *axisState, b overscroll.Bounds, bounceLow, bounceHigh bool, now time.Time) {
	if ax.position < b.Min && !bounceLow {
		ax.position = b.Min
	}
	if ax.position > b.Max && !bounceHigh {
		ax.position = b.Max
	}
	ax.rawPos = ax.position

	switch ax.mode {
	case modeKinetic:
		ax.kineticBase = ax.position
		ax.kineticStart = now
	case modeJumping:
		ax.jumpStart = ax.position
		ax.jumpTarget = clampFloat(ax.jumpTarget, b.Min, b.Max)
		ax.jumpStartTime = now
	}
}

// SetOptions replaces the option bitmask wholesale.
func (sv *Scrollview) SetOptions(opts Options) {
	sv.options = opts
}

// SetScaleFactor sets the per-axis dp normalization applied before any
// source-specific acceleration curve (e.g. a display's pixel scale
// factor).
func (sv *Scrollview) SetScaleFactor(fx, fy float64) {
	sv.conditioner.SetScale(fx, fy)
}

// SetInputSource changes how subsequent raw deltas are interpreted.
// Events already queued but not yet polled are conditioned under the new
// source, matching §4.3's "applies to subsequent events" rule measured
// at poll time rather than enqueue time — callers needing the old
// interpretation for in-flight events should poll before switching.
func (sv *Scrollview) SetInputSource(src condition.Source) {
	sv.conditioner.SetSource(src)
}

// SetPredict records the latency-compensation parameters used by the
// next poll (§4.1). Both are clamped to [0, constants.PredictCeiling].
func (sv *Scrollview) SetPredict(msToVsync, msAvgFrametime float64) {
	sv.predictor.Set(msToVsync, msAvgFrametime)
}

// AddScroll enqueues a combined x/y raw delta event. Safe to call from a
// different goroutine than the one polling, per §5.
func (sv *Scrollview) AddScroll(dx, dy float64) {
	if sv.destroyed {
		return
	}
	sv.ingest.AddDelta(sv.clockSrc.Now(), dx, dy)
}

// AddScrollX enqueues an x-only raw delta event.
func (sv *Scrollview) AddScrollX(dx float64) {
	if sv.destroyed {
		return
	}
	sv.ingest.AddDeltaX(sv.clockSrc.Now(), dx)
}

// AddScrollY enqueues a y-only raw delta event.
func (sv *Scrollview) AddScrollY(dy float64) {
	if sv.destroyed {
		return
	}
	sv.ingest.AddDeltaY(sv.clockSrc.Now(), dy)
}

// AddScrollInterrupt signals that the surface has been re-engaged
// (finger or button back down) since the last poll. Idempotent; wins
// over a Release enqueued in the same window (§4.2).
func (sv *Scrollview) AddScrollInterrupt() {
	if sv.destroyed {
		return
	}
	sv.ingest.Interrupt()
}

// AddScrollRelease signals that the current gesture's last delta has
// been sent. Idempotent.
func (sv *Scrollview) AddScrollRelease() {
	if sv.destroyed {
		return
	}
	sv.ingest.Release()
}

// ForcePan injects a relative jump of (dx, dy) dp, animated over
// constants.JumpAnimationDuration if OptImpreciseScrollsSmoothly is set,
// applied instantaneously otherwise. It overrides whatever phase the
// scrollview is currently in, the same way an explicit directive from
// the embedding application should take precedence over in-flight
// inertia (§6).
func (sv *Scrollview) ForcePan(dx, dy int64) {
	if sv.destroyed {
		return
	}
	now := sv.clockSrc.Now()
	sv.pollAt(now)
	sv.applyForce(sv.x.position+float64(dx), sv.y.position+float64(dy), now)
}

// ForceJump injects an absolute jump to (x, y) dp, animated or
// instantaneous per OptImpreciseScrollsSmoothly, same as ForcePan.
func (sv *Scrollview) ForceJump(x, y int64) {
	if sv.destroyed {
		return
	}
	now := sv.clockSrc.Now()
	sv.pollAt(now)
	sv.applyForce(float64(x), float64(y), now)
}

func (sv *Scrollview) applyForce(targetX, targetY float64, now time.Time) {
	bx, by := sv.boundsX(), sv.boundsY()
	targetX = clampFloat(targetX, bx.Min, bx.Max)
	targetY = clampFloat(targetY, by.Min, by.Max)

	smooth := sv.options&OptImpreciseScrollsSmoothly != 0
	startForcedAxis(&sv.x, targetX, now, smooth, constants.JumpAnimationDuration)
	startForcedAxis(&sv.y, targetY, now, smooth, constants.JumpAnimationDuration)

	sv.lastSampleTime = now
}

func startForcedAxis(ax *axisState, target float64, now time.Time, smooth bool, duration time.Duration) {
	if smooth {
		ax.jumpStart = ax.position
		ax.jumpTarget = target
		ax.jumpStartTime = now
		ax.jumpDuration = duration
		ax.mode = modeJumping
		return
	}
	ax.position = target
	ax.rawPos = target
	ax.velocity = 0
	ax.mode = modeIdle
}

// Phase returns the scrollview's current aggregate motion regime, the
// larger (per the ordering in types.go) of the two axes' individual
// modes.
func (sv *Scrollview) Phase() Phase {
	if sv.x.mode > sv.y.mode {
		return Phase(sv.x.mode)
	}
	return Phase(sv.y.mode)
}

// LastError returns the most recent defensive diagnostic recorded during
// a poll (e.g. an out-of-order ingest sample), or nil. It never reflects
// a failure that stopped physics from advancing — those are always
// handled defensively per §7 — it is purely informational.
func (sv *Scrollview) LastError() error {
	return sv.lastErr
}

// GetPan polls the scrollview up to now, then returns the pan delta
// since the previous GetPan/GetPanX/GetPanY call for each axis,
// clearing both axes' delta markers.
func (sv *Scrollview) GetPan() PanTransform {
	sv.pollAt(sv.clockSrc.Now())
	return sv.reportPan()
}

// GetPanPredict is shorthand for SetPredict followed by GetPan.
func (sv *Scrollview) GetPanPredict(msToVsync, msAvgFrametime float64) PanTransform {
	sv.SetPredict(msToVsync, msAvgFrametime)
	return sv.GetPan()
}

// overshotPosition biases ax.position forward by half of the predictor's
// LookAhead (ms_avg_frametime) at the axis's current velocity, the
// "overshoot" described in §4.1: pollAt already advanced physics to
// ms_to_vsync via Predictor.Target, so the remaining bias to fold into a
// reported position is the other half of the original's
// frametime/2 + time_to_pageflip — the frametime/2 term alone, since
// time_to_pageflip is the ms_to_vsync term already spent advancing physics.
func (sv *Scrollview) overshotPosition(ax *axisState) float64 {
	return ax.position + ax.velocity*sv.predictor.LookAhead().Seconds()/2
}

func (sv *Scrollview) reportPan() PanTransform {
	ox, oy := sv.overshotPosition(&sv.x), sv.overshotPosition(&sv.y)
	dx := ox - sv.x.reportedPos
	dy := oy - sv.y.reportedPos
	sv.x.reportedPos = ox
	sv.y.reportedPos = oy

	panned := dx != 0 || dy != 0 || sv.Phase() != PhaseIdle || sv.x.velocity != 0 || sv.y.velocity != 0

	return PanTransform{
		X:         int64(math.Round(dx)),
		Y:         int64(math.Round(dy)),
		Panned:    panned,
		VelocityX: sv.x.velocity,
		VelocityY: sv.y.velocity,
	}
}

// GetPanX polls and returns the x-axis pan delta since the last call to
// GetPan or GetPanX, independent of the y-axis marker (§4.6, §8 property
// 6).
func (sv *Scrollview) GetPanX() int64 {
	sv.pollAt(sv.clockSrc.Now())
	ox := sv.overshotPosition(&sv.x)
	dx := ox - sv.x.reportedPos
	sv.x.reportedPos = ox
	return int64(math.Round(dx))
}

// GetPanY is GetPanX for the y axis.
func (sv *Scrollview) GetPanY() int64 {
	sv.pollAt(sv.clockSrc.Now())
	oy := sv.overshotPosition(&sv.y)
	dy := oy - sv.y.reportedPos
	sv.y.reportedPos = oy
	return int64(math.Round(dy))
}

// GetPosX polls and returns the absolute x position biased by overshoot, with
// no delta bookkeeping side effect.
func (sv *Scrollview) GetPosX() int64 {
	sv.pollAt(sv.clockSrc.Now())
	return int64(math.Round(sv.overshotPosition(&sv.x)))
}

// GetPosY is GetPosX for the y axis.
func (sv *Scrollview) GetPosY() int64 {
	sv.pollAt(sv.clockSrc.Now())
	return int64(math.Round(sv.overshotPosition(&sv.y)))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
