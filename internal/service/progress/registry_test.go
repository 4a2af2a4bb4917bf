package progress

import (
	"testing"
	"time"
)

func TestStartIsIdempotentPerRun(t *testing.T) {
	r := NewRegistry()

	col := r.Start("run-1")
	if col == nil {
		t.Fatal("Start returned nil collector")
	}
	if again := r.Start("run-1"); again != col {
		t.Error("second Start returned a different collector")
	}
	if other := r.Start("run-2"); other == col {
		t.Error("distinct runs share a collector")
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestGetReportsRunState(t *testing.T) {
	r := NewRegistry()

	if _, _, ok := r.Get("missing"); ok {
		t.Error("Get reported an unknown run as present")
	}

	col := r.Start("run-1")
	col.Info("step one")

	got, done, ok := r.Get("run-1")
	if !ok || done {
		t.Fatalf("Get = (_, %v, %v), want live run", done, ok)
	}
	if events := got.Events(); len(events) != 1 || events[0].Message != "step one" {
		t.Errorf("events = %+v, want the recorded step", events)
	}
}

func TestFinishClosesAndEvictsAfterRetention(t *testing.T) {
	r := NewRegistry()

	var evict func()
	r.after = func(d time.Duration, f func()) {
		if d != DefaultRetention {
			t.Errorf("retention = %v, want %v", d, DefaultRetention)
		}
		evict = f
	}

	col := r.Start("run-1")
	ch, cancel := col.Subscribe(1)
	defer cancel()

	r.Finish("run-1")

	if _, open := <-ch; open {
		t.Error("subscriber channel still open after Finish")
	}
	if _, done, ok := r.Get("run-1"); !ok || !done {
		t.Errorf("Get after Finish = (done=%v, ok=%v), want finished and readable", done, ok)
	}

	// second Finish is a no-op
	r.Finish("run-1")
	r.Finish("never-started")

	if evict == nil {
		t.Fatal("Finish did not schedule eviction")
	}
	evict()
	if _, _, ok := r.Get("run-1"); ok {
		t.Error("run still readable after eviction")
	}
}
