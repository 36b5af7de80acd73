package condition

import (
	"math"
	"time"

	"github.com/kinetex/scrollcore/constants"
	"github.com/kinetex/scrollcore/ingest"
)

// Event is a single ingest.Sample after device-specific conditioning.
type Event struct {
	// DX, DY are the dp deltas to apply for this event.
	DX, DY float64

	// Stepped is true when the event came from a stepped-mousewheel
	// detent rather than continuous motion; the controller uses this
	// to decide whether to animate the step (§4.3).
	Stepped bool
}

// Conditioner applies the per-source scaling and acceleration described
// in §4.3. It carries the minimum state needed to compute an
// instantaneous raw speed for the touchpad curve; changing Source
// mid-gesture only affects events conditioned after the change, per
// §4.3's "new interpretation applies to subsequent events only".
type Conditioner struct {
	Source Source
	ScaleX float64
	ScaleY float64

	lowGain   float64
	highGain  float64
	kneeSpeed float64

	havePrev bool
	prevTime time.Time
}

// New returns a Conditioner defaulting to an identity scale and the
// reference touchpad curve parameters from §4.3.
func New() *Conditioner {
	return &Conditioner{
		Source:    Undefined,
		ScaleX:    1,
		ScaleY:    1,
		lowGain:   constants.TouchpadLowGain,
		highGain:  constants.TouchpadHighGain,
		kneeSpeed: constants.TouchpadKneeSpeed,
	}
}

// SetSource changes the device interpretation. Idempotent: setting the
// same value twice behaves identically to setting it once (§8 property 5).
func (c *Conditioner) SetSource(s Source) {
	c.Source = Normalize(s)
}

// SetScale sets the per-axis normalization factor applied before any
// source-specific curve.
func (c *Conditioner) SetScale(fx, fy float64) {
	c.ScaleX = fx
	c.ScaleY = fy
}

// SetTouchpadCurve overrides the reference acceleration curve's
// parameters. f must remain C1 and strictly increasing for the curve to
// behave as §4.3 intends; that is the caller's responsibility.
func (c *Conditioner) SetTouchpadCurve(lowGain, highGain, kneeSpeed float64) {
	c.lowGain = lowGain
	c.highGain = highGain
	c.kneeSpeed = kneeSpeed
}

// Reset clears the touchpad dt-tracking state, so the next conditioned
// sample is treated as the first of a gesture and passes through without
// acceleration. The scrollview controller does not call it; a new
// gesture's first touchpad sample is timed against the previous one.
func (c *Conditioner) Reset() {
	c.havePrev = false
}

// Condition converts one raw ingest.Sample into a dp-space Event.
func (c *Conditioner) Condition(s ingest.Sample) Event {
	sx := s.DX * c.ScaleX
	sy := s.DY * c.ScaleY

	switch c.Source {
	case Mousewheel:
		return Event{DX: detent(sx), DY: detent(sy), Stepped: true}

	case Touchpad:
		dx, dy := c.accelerate(sx, sy, s.Time)
		return Event{DX: dx, DY: dy}

	default: // Touchscreen, MousewheelPrecise, Passthrough, PassthroughKinetic, Undefined
		c.havePrev = true
		c.prevTime = s.Time
		return Event{DX: sx, DY: sy}
	}
}

// accelerate applies the reference touchpad curve to a scaled delta,
// using the elapsed time since the previous sample to estimate raw
// speed. The curve scales the delta's magnitude radially so direction is
// preserved.
func (c *Conditioner) accelerate(sx, sy float64, t time.Time) (dx, dy float64) {
	if !c.havePrev {
		c.havePrev = true
		c.prevTime = t
		return sx, sy
	}

	dt := t.Sub(c.prevTime).Seconds()
	c.prevTime = t
	if dt <= 0 {
		return sx, sy
	}

	mag := math.Hypot(sx, sy)
	if mag == 0 {
		return 0, 0
	}

	speed := mag / dt
	curved := c.curve(speed)
	gain := curved / speed
	return sx * gain, sy * gain
}

// curve is the reference acceleration function from §4.3:
// f(v) = low*v + (high-low)*v*v/(v+knee)
func (c *Conditioner) curve(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return c.lowGain*v + (c.highGain-c.lowGain)*v*v/(v+c.kneeSpeed)
}

func detent(raw float64) float64 {
	if raw == 0 {
		return 0
	}
	if raw > 0 {
		return constants.WheelStepDP
	}
	return -constants.WheelStepDP
}
