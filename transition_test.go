package starmap

import "testing"

func TestTransitionIdle(t *testing.T) {
	tr := NewTransition()
	if tr.Active() {
		t.Error("new transition should be idle")
	}
	if tr.Incoming() != 1 || tr.Outgoing() != 0 {
		t.Errorf("idle opacities = out %v in %v, want 0/1", tr.Outgoing(), tr.Incoming())
	}
	if !tr.InputEnabled() {
		t.Error("input should be enabled while idle")
	}
	if tr.Update(1) {
		t.Error("idle update should not report completion")
	}
}

func TestTransitionRunsToCompletion(t *testing.T) {
	tr := NewTransition()
	tr.Begin()

	if !tr.Active() || tr.InputEnabled() {
		t.Fatal("active fade must disable input")
	}
	if tr.Outgoing() != 1 || tr.Incoming() != 0 {
		t.Errorf("start opacities = out %v in %v, want 1/0", tr.Outgoing(), tr.Incoming())
	}

	completed := false
	elapsed := 0.0
	for i := 0; i < 120 && !completed; i++ {
		completed = tr.Update(1.0 / 60)
		elapsed += 1.0 / 60

		if tr.Outgoing() < -1e-6 || tr.Outgoing() > 1+1e-6 {
			t.Fatalf("outgoing out of range: %v", tr.Outgoing())
		}
	}

	if !completed {
		t.Fatal("fade never completed")
	}
	if elapsed < transitionDuration-0.05 {
		t.Errorf("completed after %v s, want about %v", elapsed, transitionDuration)
	}
	if tr.Active() || tr.Incoming() != 1 || tr.Outgoing() != 0 {
		t.Errorf("post-fade state active=%v out=%v in=%v", tr.Active(), tr.Outgoing(), tr.Incoming())
	}
	if !tr.InputEnabled() {
		t.Error("input should re-enable after the fade")
	}
}

func TestTransitionRestartContinuesFromCurrent(t *testing.T) {
	tr := NewTransition()
	tr.Begin()
	tr.Update(transitionDuration / 2)

	midOut := tr.Outgoing()
	midIn := tr.Incoming()
	if midOut >= 1 || midIn <= 0 {
		t.Fatalf("mid-fade opacities = out %v in %v", midOut, midIn)
	}

	tr.Begin()
	if tr.Outgoing() != midOut || tr.Incoming() != midIn {
		t.Errorf("restart jumped: out %v in %v, want %v/%v", tr.Outgoing(), tr.Incoming(), midOut, midIn)
	}
}
