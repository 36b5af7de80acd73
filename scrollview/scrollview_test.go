package scrollview

import (
	"math"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/kinetex/scrollcore/clock"
	"github.com/kinetex/scrollcore/condition"
)

func newTestScrollview(t *testing.T, cfg Config) (*Scrollview, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	sv := New(cfg)
	sv.withClock(mock)
	return sv, mock
}

func TestIdleStaysUnpanned(t *testing.T) {
	sv, _ := newTestScrollview(t, Config{ContentWidth: 1000, ContentHeight: 1000, ViewportWidth: 100, ViewportHeight: 100})
	pan := sv.GetPan()
	if pan.Panned {
		t.Errorf("expected a fresh scrollview with no events to report Panned=false, got %+v", pan)
	}
	if pan.X != 0 || pan.Y != 0 {
		t.Errorf("expected zero pan, got %+v", pan)
	}
}

func TestTouchscreenDragThenReleaseDecaysToIdle(t *testing.T) {
	sv, mock := newTestScrollview(t, Config{ContentWidth: 100000, ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)

	for i := 0; i < 6; i++ {
		sv.AddScrollX(20)
		mock.Advance(16 * time.Millisecond)
	}
	sv.GetPan() // fold in the drag samples

	if sv.Phase() != PhaseEngaged {
		t.Fatalf("expected Engaged while dragging, got %v", sv.Phase())
	}

	sv.AddScrollRelease()
	pan := sv.GetPan()
	if sv.Phase() != PhaseKinetic {
		t.Fatalf("expected Kinetic after release with non-trivial velocity, got %v", sv.Phase())
	}
	if pan.VelocityX <= 0 {
		t.Fatalf("expected positive x velocity after a rightward drag, got %f", pan.VelocityX)
	}

	prevV := pan.VelocityX
	settled := false
	for i := 0; i < 200; i++ {
		mock.Advance(16 * time.Millisecond)
		p := sv.GetPan()
		if p.VelocityX > prevV+1e-6 {
			t.Fatalf("velocity increased during kinetic decay: prev=%f cur=%f", prevV, p.VelocityX)
		}
		prevV = p.VelocityX
		if sv.Phase() == PhaseIdle {
			settled = true
			break
		}
	}
	if !settled {
		t.Fatal("expected kinetic decay to settle to Idle")
	}
	if sv.Phase() != PhaseIdle {
		t.Errorf("expected final phase Idle, got %v", sv.Phase())
	}
}

func TestMousewheelSteppedSettlesImmediately(t *testing.T) {
	sv, _ := newTestScrollview(t, Config{ContentWidth: 100000, ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Mousewheel)

	sv.AddScrollY(1)
	pan := sv.GetPan()
	if sv.Phase() != PhaseIdle {
		t.Errorf("expected stepped wheel to settle to Idle immediately, got %v", sv.Phase())
	}
	if pan.Y == 0 {
		t.Error("expected a non-zero step distance")
	}
}

func TestMousewheelSmoothAnimatesOverWindow(t *testing.T) {
	sv, mock := newTestScrollview(t, Config{ContentWidth: 100000, ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Mousewheel)
	sv.SetOptions(OptImpreciseScrollsSmoothly)

	sv.AddScrollY(1)
	sv.GetPan()
	if sv.Phase() != PhaseJumping {
		t.Fatalf("expected smooth wheel step to enter Jumping, got %v", sv.Phase())
	}

	var total int64
	for i := 0; i < 20; i++ {
		mock.Advance(10 * time.Millisecond)
		pan := sv.GetPan()
		total += pan.Y
		if sv.Phase() == PhaseIdle {
			break
		}
	}
	if sv.Phase() != PhaseIdle {
		t.Error("expected the smooth wheel animation to finish within 200ms")
	}
	if total <= 0 {
		t.Errorf("expected the animation's pan deltas to sum to a positive distance, got %d", total)
	}
}

func TestNewClampsOutOfRangeInitialPosition(t *testing.T) {
	sv := New(Config{ContentWidth: 500, ContentHeight: 500, ViewportWidth: 100, ViewportHeight: 100, InitialX: 100000, InitialY: -100000})
	if got := sv.GetPosX(); got != 400 {
		t.Errorf("expected InitialX clamped to max=400, got %d", got)
	}
	if got := sv.GetPosY(); got != 0 {
		t.Errorf("expected InitialY clamped to min=0, got %d", got)
	}
	if sv.Phase() != PhaseIdle {
		t.Errorf("expected a freshly clamped scrollview to be Idle, got %v", sv.Phase())
	}
}

func TestForceJumpClampsToContentBounds(t *testing.T) {
	sv, _ := newTestScrollview(t, Config{ContentWidth: 500, ContentHeight: 500, ViewportWidth: 100, ViewportHeight: 100})
	sv.ForceJump(100000, -100000)
	if got := sv.GetPosX(); got != 400 {
		t.Errorf("expected x jump clamped to max=400, got %d", got)
	}
	if got := sv.GetPosY(); got != 0 {
		t.Errorf("expected y jump clamped to min=0, got %d", got)
	}
}

func TestForceJumpSmoothAnimates(t *testing.T) {
	sv, mock := newTestScrollview(t, Config{ContentWidth: 1000, ContentHeight: 1000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetOptions(OptImpreciseScrollsSmoothly)
	sv.ForceJump(300, 0)
	if sv.Phase() != PhaseJumping {
		t.Fatalf("expected smooth ForceJump to start a Jumping animation, got %v", sv.Phase())
	}
	mock.Advance(300 * time.Millisecond)
	sv.GetPan()
	if got := sv.GetPosX(); got != 300 {
		t.Errorf("expected the animation to land exactly on target, got %d", got)
	}
	if sv.Phase() != PhaseIdle {
		t.Errorf("expected Idle once the jump animation completes, got %v", sv.Phase())
	}
}

func TestBoundaryClampWithoutBounce(t *testing.T) {
	sv, _ := newTestScrollview(t, Config{ContentWidth: 500, ContentHeight: 500, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)
	sv.AddScrollX(-10000)
	sv.GetPan()
	if got := sv.GetPosX(); got != 0 {
		t.Errorf("expected position clamped to 0, got %d", got)
	}
}

func TestBoundaryBounceEntersBounceRegime(t *testing.T) {
	cfg := Config{ContentWidth: 500, ContentHeight: 500, ViewportWidth: 100, ViewportHeight: 100}
	cfg.Bounce.Left = true
	sv, mock := newTestScrollview(t, cfg)
	sv.SetInputSource(condition.Touchscreen)

	sv.AddScrollX(-500)
	sv.GetPan()
	if got := sv.GetPosX(); got >= 0 {
		t.Fatalf("expected a rubber-banded position past the left edge, got %d", got)
	}

	sv.AddScrollRelease()
	settled := false
	for i := 0; i < 500; i++ {
		mock.Advance(16 * time.Millisecond)
		sv.GetPan()
		if sv.Phase() == PhaseIdle {
			settled = true
			break
		}
	}
	if !settled {
		t.Fatal("expected the spring to eventually settle the overscroll back to Idle")
	}
	if got := sv.GetPosX(); got != 0 {
		t.Errorf("expected the spring to settle exactly at the edge, got %d", got)
	}
}

func TestInterruptDuringKineticSnapsVelocityToZeroAndIdle(t *testing.T) {
	sv, mock := newTestScrollview(t, Config{ContentWidth: 100000, ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)

	for i := 0; i < 6; i++ {
		sv.AddScrollX(20)
		mock.Advance(16 * time.Millisecond)
	}
	sv.GetPan()

	sv.AddScrollRelease()
	sv.GetPan()
	if sv.Phase() != PhaseKinetic {
		t.Fatalf("expected Kinetic after release with non-trivial velocity, got %v", sv.Phase())
	}

	sv.AddScrollInterrupt()
	pan := sv.GetPan()
	if sv.Phase() != PhaseIdle {
		t.Fatalf("expected interrupt mid-kinetic to drop straight to Idle, got %v", sv.Phase())
	}
	if pan.VelocityX != 0 {
		t.Errorf("expected velocity to snap to zero on interrupt, got %f", pan.VelocityX)
	}

	mock.Advance(16 * time.Millisecond)
	pan2 := sv.GetPan()
	if pan2.Panned {
		t.Errorf("expected subsequent polls to report panned=false once interrupted kinetic motion has stopped, got %+v", pan2)
	}
}

func TestInterruptDuringBounceFreezesAtOverscrollAndAwaitsEngaged(t *testing.T) {
	cfg := Config{ContentWidth: 500, ContentHeight: 500, ViewportWidth: 100, ViewportHeight: 100}
	cfg.Bounce.Left = true
	sv, _ := newTestScrollview(t, cfg)
	sv.SetInputSource(condition.Touchscreen)

	sv.AddScrollX(-500)
	sv.GetPan()
	if sv.Phase() != PhaseEngaged {
		t.Fatalf("expected Engaged while actively dragging past the edge, got %v", sv.Phase())
	}
	overPos := sv.GetPosX()
	if overPos >= 0 {
		t.Fatalf("expected the drag to land in overscroll, got %d", overPos)
	}

	sv.AddScrollRelease()
	sv.GetPan()
	if sv.Phase() != PhaseBounce {
		t.Fatalf("expected release while overscrolled to enter Bounce, got %v", sv.Phase())
	}

	sv.AddScrollInterrupt()
	pan := sv.GetPan()
	if sv.Phase() != PhaseEngaged {
		t.Fatalf("expected interrupt during Bounce to freeze at the current overscroll and await the next delta as Engaged, got %v", sv.Phase())
	}
	if pan.VelocityX != 0 {
		t.Errorf("expected velocity zeroed on interrupt, got %f", pan.VelocityX)
	}
	if frozen := sv.GetPosX(); frozen != overPos {
		t.Errorf("expected position frozen at the overscroll position %d, got %d", overPos, frozen)
	}
}

func TestGetPanXAndGetPanYBookkeepingIndependent(t *testing.T) {
	sv, _ := newTestScrollview(t, Config{ContentWidth: 100000, ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)
	sv.AddScroll(30, 40)

	dx := sv.GetPanX()
	if dx != 30 {
		t.Errorf("GetPanX() = %d, want 30", dx)
	}
	// A second call with no new events should report zero: the marker
	// was already consumed.
	if dx2 := sv.GetPanX(); dx2 != 0 {
		t.Errorf("expected GetPanX to report 0 on a repeat call, got %d", dx2)
	}
	// y's marker is untouched by the x-axis getter.
	dy := sv.GetPanY()
	if dy != 40 {
		t.Errorf("GetPanY() = %d, want 40 (should be unaffected by the GetPanX call)", dy)
	}
}

func TestGetPosDeltaMatchesSumOfGetPanX(t *testing.T) {
	sv, mock := newTestScrollview(t, Config{ContentWidth: 100000, ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)

	x0 := sv.GetPosX()
	var sum int64
	for i := 0; i < 5; i++ {
		sv.AddScrollX(7)
		mock.Advance(16 * time.Millisecond)
		sum += sv.GetPanX()
	}
	x1 := sv.GetPosX()
	if x1-x0 != sum {
		t.Errorf("get_pos_x delta (%d) should equal the sum of get_pan_x calls in between (%d)", x1-x0, sum)
	}
}

func TestSetInputSourceIdempotentAtController(t *testing.T) {
	sv, _ := newTestScrollview(t, Config{ContentWidth: 1000, ContentHeight: 1000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchpad)
	sv.SetInputSource(condition.Touchpad)
	if sv.conditioner.Source != condition.Touchpad {
		t.Errorf("expected source to remain Touchpad, got %v", sv.conditioner.Source)
	}
}

func TestSetGeometryRejectsZeroViewport(t *testing.T) {
	sv, _ := newTestScrollview(t, Config{ContentWidth: 1000, ContentHeight: 1000, ViewportWidth: 100, ViewportHeight: 100})
	prior := sv.Geometry()
	err := sv.SetGeometry(Config{ContentWidth: 2000, ContentHeight: 2000, ViewportWidth: 0, ViewportHeight: 50})
	if err != ErrInvalidGeometry {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
	if sv.Geometry() != prior {
		t.Error("expected geometry to be unchanged after a rejected SetGeometry")
	}
}

func TestDestroyedHandleRejectsOperations(t *testing.T) {
	sv, _ := newTestScrollview(t, Config{ContentWidth: 1000, ContentHeight: 1000, ViewportWidth: 100, ViewportHeight: 100})
	sv.Destroy()
	if err := sv.SetGeometry(Config{ContentWidth: 1000, ContentHeight: 1000, ViewportWidth: 100, ViewportHeight: 100}); err != ErrDestroyed {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
}

func TestSetPredictLookAheadBiasesReportedPosition(t *testing.T) {
	sv, mock := newTestScrollview(t, Config{ContentWidth: 100000, ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)

	for i := 0; i < 6; i++ {
		sv.AddScrollX(20)
		mock.Advance(16 * time.Millisecond)
	}
	sv.GetPan()
	sv.AddScrollRelease()
	sv.GetPan()
	if sv.Phase() != PhaseKinetic {
		t.Fatalf("expected Kinetic after release, got %v", sv.Phase())
	}

	baseline := sv.GetPosX()

	sv.SetPredict(0, 32)
	withLookAhead := sv.GetPosX()
	if withLookAhead <= baseline {
		t.Errorf("expected a positive ms_avg_frametime to bias the reported x position forward during Kinetic motion, baseline=%d withLookAhead=%d", baseline, withLookAhead)
	}
}

func TestSetGeometryDuringKineticRebasesDecayFromClampedPosition(t *testing.T) {
	sv, mock := newTestScrollview(t, Config{ContentWidth: 100000, ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)

	for i := 0; i < 10; i++ {
		sv.AddScrollX(50)
		mock.Advance(16 * time.Millisecond)
	}
	sv.GetPan()
	sv.AddScrollRelease()
	sv.GetPan()
	if sv.Phase() != PhaseKinetic {
		t.Fatalf("expected Kinetic after release, got %v", sv.Phase())
	}

	mock.Advance(16 * time.Millisecond)
	sv.GetPan()
	pos := sv.GetPosX()

	if err := sv.SetGeometry(Config{ContentWidth: uint64(pos), ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100}); err != nil {
		t.Fatalf("unexpected SetGeometry error: %v", err)
	}
	clamped := sv.GetPosX()
	if clamped > int64(pos)-100 {
		t.Fatalf("expected SetGeometry to clamp x into the new, smaller content bounds, got %d", clamped)
	}
	if sv.Phase() != PhaseKinetic {
		t.Fatalf("expected the clamp to leave the axis still decaying rather than resetting phase, got %v", sv.Phase())
	}

	// The decay continues against the new, tighter bounds: further
	// advances must never report a position past the new max, whether
	// SetGeometry re-bases the decay's time anchor or the per-poll edge
	// check alone catches it.
	for i := 0; i < 20; i++ {
		mock.Advance(16 * time.Millisecond)
		if after := sv.GetPosX(); after > int64(pos)-100 {
			t.Fatalf("kinetic decay escaped the re-clamped bounds: got %d, want <= %d", after, int64(pos)-100)
		}
	}
}

func TestDeltaGetterSumMatchesPositionDeltaWithLookAhead(t *testing.T) {
	sv, mock := newTestScrollview(t, Config{ContentWidth: 100000, ContentHeight: 100000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)
	sv.SetPredict(0, 32)

	for i := 0; i < 10; i++ {
		sv.AddScrollX(50)
		mock.Advance(16 * time.Millisecond)
	}
	sv.GetPan()
	sv.AddScrollRelease()

	x0 := sv.GetPosX()
	var sum int64
	for i := 0; i < 30; i++ {
		mock.Advance(16 * time.Millisecond)
		sum += sv.GetPanX()
		if sv.Phase() == PhaseIdle {
			break
		}
	}
	x1 := sv.GetPosX()

	if diff := (x1 - x0) - sum; diff < -2 || diff > 2 {
		t.Errorf("get_pos_x delta (%d) should equal the sum of get_pan_x calls in between (%d) even with a non-zero ms_avg_frametime, diff=%d", x1-x0, sum, diff)
	}
}

func TestOutOfOrderSampleWrapsOffendingTimestamp(t *testing.T) {
	sv, mock := newTestScrollview(t, Config{ContentWidth: 1000, ContentHeight: 1000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)
	sv.GetPan()

	stale := mock.Now().Add(-50 * time.Millisecond)
	sv.ingest.AddDeltaX(stale, 5)
	sv.GetPan()

	err := sv.LastError()
	if err == nil {
		t.Fatal("expected LastError to be set after an out-of-order sample")
	}
	if !strings.Contains(err.Error(), stale.Format(time.RFC3339Nano)) {
		t.Errorf("expected the wrapped error to name the offending sample's timestamp %v, got %q", stale, err)
	}
	if pkgerrors.Cause(err) != errOutOfOrderSample {
		t.Errorf("expected errors.Cause(err) to unwrap to the errOutOfOrderSample sentinel, got %v", pkgerrors.Cause(err))
	}
}

func TestNonFiniteInputIsDefendedAgainst(t *testing.T) {
	sv, _ := newTestScrollview(t, Config{ContentWidth: 1000, ContentHeight: 1000, ViewportWidth: 100, ViewportHeight: 100})
	sv.SetInputSource(condition.Touchscreen)
	sv.AddScrollX(math.NaN())
	sv.GetPan()
	if got := sv.GetPosX(); got != 0 {
		t.Errorf("expected NaN input to be defended against (position stays 0), got %d", got)
	}
	if sv.Phase() == PhaseKinetic {
		t.Error("a NaN velocity should never leave the scrollview in Kinetic")
	}
}
