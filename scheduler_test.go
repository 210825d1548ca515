package starmap

import "testing"

func TestLoopStartStop(t *testing.T) {
	frames := 0
	l := NewLoop(func(dt float64) { frames++ }, 0)

	if l.IsRunning() {
		t.Error("new loop should start stopped")
	}
	if l.Advance(0.016) {
		t.Error("stopped loop ran a frame")
	}

	l.Start()
	if !l.Advance(0.016) || frames != 1 {
		t.Errorf("running uncapped loop should run every frame, frames=%d", frames)
	}

	l.Stop()
	if l.Advance(0.016) {
		t.Error("stopped loop ran a frame")
	}
	if frames != 1 {
		t.Errorf("frames = %d, want 1", frames)
	}
}

func TestLoopFrameBudget(t *testing.T) {
	frames := 0
	l := NewLoop(func(dt float64) { frames++ }, 30)
	l.Start()

	// Offer 60 fps worth of time to a 30 fps loop: every other frame runs.
	for i := 0; i < 60; i++ {
		l.Advance(1.0 / 60)
	}
	if frames < 29 || frames > 31 {
		t.Errorf("frames = %d, want about 30", frames)
	}
}

func TestLoopThrottleDeliversWallTime(t *testing.T) {
	var total float64
	l := NewLoop(func(dt float64) { total += dt }, 30)
	l.Start()

	// Two seconds of 60 fps offers: half the frames run, but each admitted
	// frame carries the skipped frames' time, so the delivered dt still
	// sums to wall time and animations keep pace.
	for i := 0; i < 120; i++ {
		l.Advance(1.0 / 60)
	}
	if total < 2.0-1e-6 || total > 2.0+1e-6 {
		t.Errorf("delivered dt = %v over 2s of offers, want 2.0", total)
	}
}

func TestLoopStallDoesNotBurst(t *testing.T) {
	frames := 0
	var maxDT float64
	l := NewLoop(func(dt float64) {
		frames++
		if dt > maxDT {
			maxDT = dt
		}
	}, 60)
	l.Start()

	l.Advance(5) // long stall
	l.Advance(0.001)
	l.Advance(0.001)

	if frames > 3 {
		t.Errorf("frames = %d after stall, want no catch-up burst", frames)
	}
	if maxDT > 2.0/60+1e-9 {
		t.Errorf("delivered dt = %v after stall, want at most two intervals", maxDT)
	}
}

func TestStepFramesBypassesBudget(t *testing.T) {
	frames := 0
	var total float64
	l := NewLoop(func(dt float64) { frames++; total += dt }, 30)

	// Stopped and over budget: StepFrames still drives every frame.
	l.StepFrames(10, 1.0/60)
	if frames != 10 {
		t.Errorf("frames = %d, want 10", frames)
	}
	if total < 10.0/60-1e-9 {
		t.Errorf("total dt = %v, want 10/60", total)
	}
}

func TestLoopRetarget(t *testing.T) {
	frames := 0
	l := NewLoop(func(dt float64) { frames++ }, 60)
	l.Start()
	l.SetTargetFPS(0)

	for i := 0; i < 5; i++ {
		l.Advance(0.0001)
	}
	if frames != 5 {
		t.Errorf("uncapped retarget: frames = %d, want 5", frames)
	}
}
