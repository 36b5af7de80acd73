// Package constants collects the tunable numbers the rest of scrollcore
// is built from, so the physical behavior of a scrollview can be read
// and adjusted in one place.
package constants

import "time"

// Predictor Constants
const (
	// PredictCeiling is the maximum ms_to_vsync / ms_avg_frametime the
	// predictor will honor; larger values are clamped to avoid a pan
	// transform overshooting so far that it reads as a glitch.
	PredictCeiling = 250.0
)

// Touchpad Acceleration Curve
const (
	// TouchpadLowGain is the slope applied to slow touchpad motion
	// (precision region of the curve).
	TouchpadLowGain = 1.0

	// TouchpadHighGain is the asymptotic slope applied to fast touchpad
	// motion (reach region of the curve).
	TouchpadHighGain = 2.6

	// TouchpadKneeSpeed is the raw speed (device units/s) at which the
	// curve bends from the low-gain regime toward the high-gain one.
	TouchpadKneeSpeed = 600.0
)

// Mousewheel Constants
const (
	// WheelStepDP is the dp distance a single stepped-mousewheel detent
	// moves the viewport.
	WheelStepDP = 40.0

	// WheelSmoothDuration is how long a stepped detent takes to animate
	// when IMPRECISE_SCROLLS_SMOOTHLY is set.
	WheelSmoothDuration = 150 * time.Millisecond
)

// Kinematic Integrator Constants
const (
	// KineticTau is the exponential decay time constant for post-release
	// kinetic motion: v(t) = v0 * exp(-t/tau).
	KineticTau = 325 * time.Millisecond

	// KineticVelocityEpsilon is the speed, in dp/s, below which kinetic
	// decay is considered settled and the phase transitions to Idle.
	KineticVelocityEpsilon = 10.0

	// VelocitySampleWindow is the number of recent Engaged samples used
	// to estimate instantaneous velocity.
	VelocitySampleWindow = 4

	// SampleMinDT and SampleMaxDT bound the inter-sample interval used
	// in velocity estimation; samples outside this window are treated
	// as outliers and discarded.
	SampleMinDT = time.Millisecond
	SampleMaxDT = 100 * time.Millisecond

	// JumpAnimationDuration is the default duration of an animated
	// force_pan/force_jump when the smooth-jump option is set.
	JumpAnimationDuration = 250 * time.Millisecond
)

// Overscroll & Bounce Constants
const (
	// RubberBandC is the resistance coefficient applied to overscroll
	// excursions: display = edge + sign(over) * C * L * (1 - 1/(1+|over|/L)).
	RubberBandC = 0.55

	// SpringOmega is the natural frequency, in rad/s, of the
	// critically-damped bounce-back spring.
	SpringOmega = 8.0

	// SpringDamping is the damping ratio of the bounce-back spring; 1.0
	// is critically damped, matching §4.5.
	SpringDamping = 1.0

	// BounceSettleDistance and BounceSettleVelocity are the thresholds
	// under which a Bounce phase is considered settled.
	BounceSettleDistance = 0.5
	BounceSettleVelocity = 10.0
)

// Ingest Buffer Constants
const (
	// IngestQueueSize is the capacity of the per-scrollview pending
	// delta ring buffer; a larger batch than this overwrites the
	// oldest unconsumed samples, matching the teacher's event queue
	// overflow policy.
	IngestQueueSize = 64
)
