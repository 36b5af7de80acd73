// Package overscroll implements §4.5: clamping position to content
// bounds when an edge has no bounce, applying asymptotic rubber-band
// resistance while the user is actively dragging past a bounced edge,
// and driving a critically-damped spring back to the boundary once the
// user lets go.
package overscroll

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/kinetex/scrollcore/constants"
)

// Bounds is the valid range for one axis: [Min, Max]. Content smaller
// than the viewport on that axis collapses Min and Max to the same
// value (§4.5), locking the axis unless bounce is enabled for it.
type Bounds struct {
	Min, Max float64
}

// Clamped reports whether pos already lies within b.
func (b Bounds) Clamped(pos float64) bool {
	return pos >= b.Min && pos <= b.Max
}

// nearestEdge returns which bound pos has crossed and whether bounce is
// enabled for that edge.
func nearestEdge(pos float64, b Bounds, bounceLow, bounceHigh bool) (edge float64, bounce bool, below bool) {
	if pos < b.Min {
		return b.Min, bounceLow, true
	}
	return b.Max, bounceHigh, false
}

// Edge reports which boundary pos has crossed, if any, and whether that
// edge bounces. inBounds is true (and the other two results zero) when
// pos does not need resolving at all.
func Edge(pos float64, b Bounds, bounceLow, bounceHigh bool) (edge float64, bounce bool, inBounds bool) {
	if b.Clamped(pos) {
		return 0, false, true
	}
	e, bnc, _ := nearestEdge(pos, b, bounceLow, bounceHigh)
	return e, bnc, false
}

// ClampOrRubberBand resolves a single axis's raw (unclamped) position
// while the user is actively engaged (dragging). If pos is within
// bounds, it is returned unchanged. If it has crossed an edge with no
// bounce, it is clamped and velocity zeroed. If the edge bounces, the
// rubber-band function from §4.5 is applied:
//
//	display = edge + sign(over) * C * extent * (1 - 1/(1 + |over|/extent))
//
// extent is the viewport length on this axis, giving the resistance its
// asymptote of edge ± C*extent.
func ClampOrRubberBand(rawPos, vel float64, b Bounds, bounceLow, bounceHigh bool, extent float64) (pos, newVel float64, overscrolling bool) {
	if b.Clamped(rawPos) {
		return rawPos, vel, false
	}

	edge, bounce, _ := nearestEdge(rawPos, b, bounceLow, bounceHigh)
	if !bounce {
		return edge, 0, false
	}

	over := rawPos - edge
	if extent <= 0 {
		return edge, vel, true
	}
	resisted := constants.RubberBandC * extent * (1 - 1/(1+math.Abs(over)/extent))
	if over < 0 {
		resisted = -resisted
	}
	return edge + resisted, vel, true
}

// Spring drives an out-of-bounds axis back toward its edge once the user
// is no longer engaged (Kinetic decay carried it past a bound, or it was
// left in overscroll at Idle). It wraps a harmonica critically-damped
// spring, built fresh each call since dt varies per poll.
func Spring(pos, vel float64, b Bounds, bounceLow, bounceHigh bool, dt time.Duration) (newPos, newVel float64, settled bool) {
	if b.Clamped(pos) {
		return pos, vel, true
	}

	edge, bounce, _ := nearestEdge(pos, b, bounceLow, bounceHigh)
	if !bounce {
		return edge, 0, true
	}
	if dt <= 0 {
		return pos, vel, false
	}

	spring := harmonica.NewSpring(dt.Seconds(), constants.SpringOmega, constants.SpringDamping)
	newPos, newVel = spring.Update(pos, vel, edge)

	if math.Abs(newPos-edge) < constants.BounceSettleDistance && math.Abs(newVel) < constants.BounceSettleVelocity {
		return edge, 0, true
	}
	return newPos, newVel, false
}
