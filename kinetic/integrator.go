// Package kinetic implements the three integration modes of §4.4:
// windowed-differentiation velocity estimation while Engaged, exponential
// decay for Kinetic (post-release) motion, and cubic ease-out for
// animated jumps. Each is a small, stateless-where-possible function or
// estimator; the scrollview controller owns which mode applies and when,
// per the phase state machine in §4.6.
package kinetic

import (
	"math"
	"time"

	"github.com/kinetex/scrollcore/constants"
)

// Estimator computes a time-weighted velocity from the last few Engaged
// samples, discarding outliers whose inter-sample interval falls outside
// [constants.SampleMinDT, constants.SampleMaxDT]. It mirrors the
// cursor-history velocity calculation used for touch release detection:
// keep a short window, divide total displacement by total elapsed time.
type Estimator struct {
	deltas []float64
	dts    []time.Duration
}

// NewEstimator returns an Estimator with the window size from §4.4 (k≈4).
func NewEstimator() *Estimator {
	return &Estimator{
		deltas: make([]float64, 0, constants.VelocitySampleWindow),
		dts:    make([]time.Duration, 0, constants.VelocitySampleWindow),
	}
}

// Add records one Engaged sample: a dp delta observed over dt. Samples
// with dt outside the accepted range are discarded rather than recorded.
func (e *Estimator) Add(delta float64, dt time.Duration) {
	if dt < constants.SampleMinDT || dt > constants.SampleMaxDT {
		return
	}
	if len(e.deltas) == constants.VelocitySampleWindow {
		e.deltas = e.deltas[1:]
		e.dts = e.dts[1:]
	}
	e.deltas = append(e.deltas, delta)
	e.dts = append(e.dts, dt)
}

// Estimate returns the time-weighted average velocity, in dp/s, over the
// retained window. Zero if no samples have been accepted yet.
func (e *Estimator) Estimate() float64 {
	var totalDelta float64
	var totalDT time.Duration
	for i := range e.deltas {
		totalDelta += e.deltas[i]
		totalDT += e.dts[i]
	}
	if totalDT <= 0 {
		return 0
	}
	return totalDelta / totalDT.Seconds()
}

// Reset clears the window, used when a gesture is interrupted or a new
// one begins.
func (e *Estimator) Reset() {
	e.deltas = e.deltas[:0]
	e.dts = e.dts[:0]
}

// Decay computes the velocity and displacement of exponential kinetic
// decay, v(t) = v0 * exp(-t/tau), after elapsed time t. displacement is
// the analytic integral of v from 0 to elapsed.
func Decay(v0 float64, elapsed time.Duration) (velocity, displacement float64) {
	tau := constants.KineticTau.Seconds()
	t := elapsed.Seconds()
	if t <= 0 {
		return v0, 0
	}
	decay := math.Exp(-t / tau)
	velocity = v0 * decay
	displacement = v0 * tau * (1 - decay)
	return velocity, displacement
}

// Settled reports whether a kinetic velocity has decayed below the
// epsilon at which §4.4 says the phase should end.
func Settled(velocity float64) bool {
	return math.Abs(velocity) < constants.KineticVelocityEpsilon
}

// EaseOutCubic evaluates a cubic ease-out curve at normalized time
// u ∈ [0,1]: 1 - (1-u)^3. Used for animated jumps and smooth-wheel steps.
func EaseOutCubic(u float64) float64 {
	if u <= 0 {
		return 0
	}
	if u >= 1 {
		return 1
	}
	inv := 1 - u
	return 1 - inv*inv*inv
}

// EaseOutCubicDerivative is d/du of EaseOutCubic, used to derive
// instantaneous velocity during an animated jump.
func EaseOutCubicDerivative(u float64) float64 {
	if u <= 0 || u >= 1 {
		return 0
	}
	inv := 1 - u
	return 3 * inv * inv
}

// JumpPosition evaluates an ease-out animation from start to target over
// duration, at elapsed time t, returning the current position and
// instantaneous velocity (dp/s).
func JumpPosition(start, target float64, elapsed, duration time.Duration) (position, velocity float64) {
	if duration <= 0 || elapsed >= duration {
		return target, 0
	}
	u := elapsed.Seconds() / duration.Seconds()
	span := target - start
	position = start + span*EaseOutCubic(u)
	velocity = span * EaseOutCubicDerivative(u) / duration.Seconds()
	return position, velocity
}
