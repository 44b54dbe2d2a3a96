package demo

import "testing"

func TestReadFrameReturnsNilWhenInactive(t *testing.T) {
	a := New()
	frame, err := a.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if frame != nil {
		t.Fatal("expected nil frame before Start()")
	}
}

func TestStartProducesPopulatedFrames(t *testing.T) {
	a := New()
	if !a.Detect() {
		t.Fatal("Detect() should always be true")
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !a.IsActive() {
		t.Fatal("expected IsActive() after Start()")
	}

	frame, err := a.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if frame == nil {
		t.Fatal("expected a non-nil frame while active")
	}
	if frame.Vehicle == nil || frame.Vehicle.Speed == nil {
		t.Fatal("expected Vehicle.Speed to be populated")
	}
	if frame.Source != "demo" {
		t.Errorf("Source = %q, want %q", frame.Source, "demo")
	}

	if err := a.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if a.IsActive() {
		t.Fatal("expected !IsActive() after Stop()")
	}
}
