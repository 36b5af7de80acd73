package scrollview

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/kinetex/scrollcore/condition"
	"github.com/kinetex/scrollcore/constants"
	"github.com/kinetex/scrollcore/kinetic"
	"github.com/kinetex/scrollcore/overscroll"
)

// boundsX and boundsY derive the valid [min, max] position range from
// content and viewport extents. Content no larger than the viewport on
// an axis collapses that axis's range to a single point (§4.5).
func (sv *Scrollview) boundsX() overscroll.Bounds {
	max := float64(sv.cfg.ContentWidth) - float64(sv.cfg.ViewportWidth)
	if max < 0 {
		max = 0
	}
	return overscroll.Bounds{Min: 0, Max: max}
}

func (sv *Scrollview) boundsY() overscroll.Bounds {
	max := float64(sv.cfg.ContentHeight) - float64(sv.cfg.ViewportHeight)
	if max < 0 {
		max = 0
	}
	return overscroll.Bounds{Min: 0, Max: max}
}

// pollAt is the heart of the controller: it implements the four-step
// pipeline from §4.6 — advance physics for whatever's currently running,
// fold in pending deltas in arrival order, then apply any interrupt or
// release (after all of this poll's deltas, whatever their arrival order),
// advance again to the predicted target time, and leave the result in
// sv.x/sv.y for the getters to report.
func (sv *Scrollview) pollAt(now time.Time) {
	if sv.destroyed {
		return
	}

	target := sv.predictor.Target(now)
	batch := sv.ingest.Drain()

	cur := sv.lastSampleTime
	for _, s := range batch.Samples {
		if s.Time.Before(cur) {
			sv.lastErr = errors.Wrapf(errOutOfOrderSample, "sample timestamped %s arrived %s before last poll time %s",
				s.Time.Format(time.RFC3339Nano), cur.Sub(s.Time), cur.Format(time.RFC3339Nano))
			s.Time = cur
		}
		if s.Time.After(cur) {
			sv.advanceAxes(cur, s.Time)
			cur = s.Time
		}
		ev := sv.conditioner.Condition(s)
		sv.handleEvent(ev, s.Time)
	}

	if batch.Interrupt {
		sv.handleInterrupt()
	} else if batch.Release {
		sv.handleRelease(cur)
	}

	if target.After(cur) {
		sv.advanceAxes(cur, target)
		cur = target
	}

	sv.lastSampleTime = cur
}

// advanceAxes steps both axes' time-dependent motion from prev to t.
func (sv *Scrollview) advanceAxes(prev, t time.Time) {
	dt := t.Sub(prev)
	bx, by := sv.boundsX(), sv.boundsY()
	sv.advanceOneAxis(&sv.x, bx, sv.cfg.Bounce.Left, sv.cfg.Bounce.Right, float64(sv.cfg.ViewportWidth), t, dt)
	sv.advanceOneAxis(&sv.y, by, sv.cfg.Bounce.Top, sv.cfg.Bounce.Bottom, float64(sv.cfg.ViewportHeight), t, dt)
}

func (sv *Scrollview) advanceOneAxis(ax *axisState, b overscroll.Bounds, bounceLow, bounceHigh bool, extent float64, t time.Time, dt time.Duration) {
	switch ax.mode {
	case modeIdle, modeEngaged:
		// No continuous function of time applies; position only moves
		// in response to explicit events handled in handleEvent.

	case modeKinetic:
		elapsed := t.Sub(ax.kineticStart)
		v, disp := kinetic.Decay(ax.kineticV0, elapsed)
		pos := ax.kineticBase + disp

		if edge, bounce, inBounds := overscroll.Edge(pos, b, bounceLow, bounceHigh); !inBounds {
			if bounce {
				ax.mode = modeBounce
				ax.position = pos
				ax.velocity = v
			} else {
				ax.position = edge
				ax.velocity = 0
				ax.mode = modeIdle
			}
		} else {
			ax.position = pos
			ax.velocity = v
			if kinetic.Settled(v) {
				ax.velocity = 0
				ax.mode = modeIdle
			}
		}

	case modeBounce:
		pos, v, settled := overscroll.Spring(ax.position, ax.velocity, b, bounceLow, bounceHigh, dt)
		ax.position = pos
		ax.velocity = v
		if settled {
			ax.velocity = 0
			ax.mode = modeIdle
		}

	case modeJumping:
		elapsed := t.Sub(ax.jumpStartTime)
		pos, v := kinetic.JumpPosition(ax.jumpStart, ax.jumpTarget, elapsed, ax.jumpDuration)
		ax.position = pos
		ax.velocity = v
		if elapsed >= ax.jumpDuration {
			ax.position = ax.jumpTarget
			ax.velocity = 0
			ax.mode = modeIdle
		}
	}

	sanitizeAxis(ax)
}

// sanitizeAxis defends against NaN/Inf propagating from malformed input
// (§7): a non-finite position resets to zero, a non-finite velocity
// zeroes and drops the axis to Idle.
func sanitizeAxis(ax *axisState) {
	if !isFinite(ax.position) {
		ax.position = 0
		ax.rawPos = 0
	}
	if !isFinite(ax.velocity) {
		ax.velocity = 0
		ax.mode = modeIdle
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// handleEvent folds one conditioned delta into the controller, engaging
// the scrollview if it wasn't already, per the transition table in
// §4.6.
func (sv *Scrollview) handleEvent(ev condition.Event, t time.Time) {
	if sv.x.mode != modeEngaged || sv.y.mode != modeEngaged {
		sv.enterEngaged()
	}

	defer func() {
		sv.haveLastEvent = true
		sv.lastEventTime = t
	}()

	if ev.Stepped {
		if sv.options&OptImpreciseScrollsSmoothly != 0 {
			startForcedAxis(&sv.x, sv.x.position+ev.DX, t, true, constants.WheelSmoothDuration)
			startForcedAxis(&sv.y, sv.y.position+ev.DY, t, true, constants.WheelSmoothDuration)
			return
		}
		sv.applyInstantAxis(&sv.x, ev.DX, t, sv.boundsX(), sv.cfg.Bounce.Left, sv.cfg.Bounce.Right, float64(sv.cfg.ViewportWidth))
		sv.applyInstantAxis(&sv.y, ev.DY, t, sv.boundsY(), sv.cfg.Bounce.Top, sv.cfg.Bounce.Bottom, float64(sv.cfg.ViewportHeight))
		// A non-smooth detent doesn't linger Engaged awaiting a release;
		// it settles immediately unless it pushed the view into
		// overscroll, in which case the spring needs to run.
		settleAfterDetent(&sv.x, sv.boundsX())
		settleAfterDetent(&sv.y, sv.boundsY())
		return
	}

	sv.applyInstantAxis(&sv.x, ev.DX, t, sv.boundsX(), sv.cfg.Bounce.Left, sv.cfg.Bounce.Right, float64(sv.cfg.ViewportWidth))
	sv.applyInstantAxis(&sv.y, ev.DY, t, sv.boundsY(), sv.cfg.Bounce.Top, sv.cfg.Bounce.Bottom, float64(sv.cfg.ViewportHeight))
}

func settleAfterDetent(ax *axisState, b overscroll.Bounds) {
	if b.Clamped(ax.position) {
		ax.mode = modeIdle
		ax.velocity = 0
		return
	}
	ax.mode = modeBounce
	ax.velocity = 0
}

func (sv *Scrollview) enterEngaged() {
	sv.x.mode = modeEngaged
	sv.y.mode = modeEngaged
	sv.x.rawPos = sv.x.position
	sv.y.rawPos = sv.y.position
	sv.x.estimator.Reset()
	sv.y.estimator.Reset()
	sv.haveLastEvent = false
}

func (sv *Scrollview) applyInstantAxis(ax *axisState, delta float64, t time.Time, b overscroll.Bounds, bounceLow, bounceHigh bool, extent float64) {
	if !isFinite(delta) {
		delta = 0
	}
	if sv.haveLastEvent {
		dt := t.Sub(sv.lastEventTime)
		ax.estimator.Add(delta, dt)
	}

	ax.rawPos += delta
	pos, vel, _ := overscroll.ClampOrRubberBand(ax.rawPos, ax.estimator.Estimate(), b, bounceLow, bounceHigh, extent)
	ax.position = pos
	ax.velocity = vel

	sanitizeAxis(ax)
}

// handleInterrupt implements §4.2 / §4.6's interrupt row: re-engagement
// drops any in-flight kinetic or bounce motion and awaits the next
// delta.
func (sv *Scrollview) handleInterrupt() {
	interruptAxis(&sv.x)
	interruptAxis(&sv.y)
	sv.haveLastEvent = false
}

func interruptAxis(ax *axisState) {
	switch ax.mode {
	case modeEngaged:
		ax.estimator.Reset()
		ax.velocity = 0
	case modeKinetic:
		ax.mode = modeIdle
		ax.velocity = 0
	case modeBounce:
		ax.mode = modeEngaged
		ax.rawPos = ax.position
		ax.estimator.Reset()
		ax.velocity = 0
	case modeJumping:
		ax.mode = modeIdle
		ax.velocity = 0
	}
}

// handleRelease implements §4.6's release row: an Engaged axis whose
// source supports kinetic motion and whose estimated velocity is above
// the settle threshold begins kinetic decay; an Engaged axis released
// past a bounced edge enters Bounce whatever its velocity; any other
// Engaged axis drops straight to Idle.
func (sv *Scrollview) handleRelease(t time.Time) {
	kineticCapable := condition.SupportsKinetic(sv.conditioner.Source)
	releaseAxis(&sv.x, t, kineticCapable, sv.boundsX(), sv.cfg.Bounce.Left, sv.cfg.Bounce.Right)
	releaseAxis(&sv.y, t, kineticCapable, sv.boundsY(), sv.cfg.Bounce.Top, sv.cfg.Bounce.Bottom)
}

func releaseAxis(ax *axisState, t time.Time, kineticCapable bool, b overscroll.Bounds, bounceLow, bounceHigh bool) {
	if ax.mode != modeEngaged {
		return
	}
	if _, bounce, inBounds := overscroll.Edge(ax.position, b, bounceLow, bounceHigh); !inBounds && bounce {
		// Released while overscrolled with a bounced edge: the spring
		// takes over regardless of residual velocity.
		ax.mode = modeBounce
		return
	}
	if !kineticCapable || kinetic.Settled(ax.velocity) {
		ax.mode = modeIdle
		ax.velocity = 0
		return
	}
	ax.mode = modeKinetic
	ax.kineticStart = t
	ax.kineticBase = ax.position
	ax.kineticV0 = ax.velocity
}
