package starmap

// FrameFunc is one frame's work, receiving elapsed seconds.
type FrameFunc func(dt float64)

// FrameScheduler is the control surface of a recurring frame callback.
// There are no ambient timer handles: whatever drives frames exposes
// exactly this, so tests can drive frames deterministically without real
// time passing and teardown can stop a loop immediately.
type FrameScheduler interface {
	Start()
	Stop()
	IsRunning() bool
}

// Target frame rates. Low-power contexts throttle to half rate by
// skipping frames whose elapsed time is under the budget.
const (
	targetFPSDesktop  = 60.0
	targetFPSLowPower = 30.0
)

// frameLimiter accumulates elapsed time and admits one frame per interval.
type frameLimiter struct {
	interval float64 // seconds per admitted frame; 0 = uncapped
	accum    float64
}

// allow reports whether a frame should run after dt elapsed seconds, and
// how much elapsed time the admitted frame carries. Skipped offers bank
// their time so the admitted frame receives the full wall interval:
// throttling lowers the frame rate, never the passage of time. Delivery
// is capped at two intervals so a long stall lands as one bounded jump
// instead of a catch-up burst.
func (l *frameLimiter) allow(dt float64) (float64, bool) {
	if l.interval <= 0 {
		return dt, true
	}
	l.accum += dt
	if l.accum < l.interval {
		return 0, false
	}
	delivered := l.accum
	if delivered > 2*l.interval {
		delivered = 2 * l.interval
	}
	l.accum = 0
	return delivered, true
}

// Loop is the cooperative frame driver. The host calls Advance(dt) once per
// host frame (ebiten Update, or a test harness); the loop forwards to fn
// only while running and within the frame budget. Stopping is immediate and
// restarting never leaks a duplicate loop: there is no goroutine, only
// gating state.
type Loop struct {
	fn      FrameFunc
	running bool
	limiter frameLimiter
}

// NewLoop creates a stopped loop targeting the given frames per second
// (0 = uncapped).
func NewLoop(fn FrameFunc, targetFPS float64) *Loop {
	l := &Loop{fn: fn}
	l.SetTargetFPS(targetFPS)
	return l
}

// SetTargetFPS retargets the frame budget (0 = uncapped).
func (l *Loop) SetTargetFPS(fps float64) {
	if fps <= 0 {
		l.limiter.interval = 0
		return
	}
	l.limiter.interval = 1 / fps
}

// Start resumes the loop. Idempotent.
func (l *Loop) Start() {
	l.running = true
}

// Stop halts the loop immediately; Advance becomes a no-op. Idempotent.
func (l *Loop) Stop() {
	l.running = false
	l.limiter.accum = 0
}

// IsRunning reports whether Advance forwards frames.
func (l *Loop) IsRunning() bool {
	return l.running
}

// Advance offers dt elapsed seconds to the loop. Returns true when the
// frame ran, false when stopped or skipped for budget. An admitted frame
// receives the wall time elapsed since the previous admitted frame, so
// animations keep pace at any frame rate target.
func (l *Loop) Advance(dt float64) bool {
	if !l.running || l.fn == nil {
		return false
	}
	delivered, ok := l.limiter.allow(dt)
	if !ok {
		return false
	}
	l.fn(delivered)
	return true
}

// StepFrames drives n frames of dt seconds each through the scheduler,
// ignoring the budget limiter. Deterministic frame driver for tests and
// synchronous warm-up.
func (l *Loop) StepFrames(n int, dt float64) {
	if l.fn == nil {
		return
	}
	for i := 0; i < n; i++ {
		l.fn(dt)
	}
}
