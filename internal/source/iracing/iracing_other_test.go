//go:build !windows

package iracing

import "testing"

func TestStubNeverDetects(t *testing.T) {
	a := New()
	if a.Detect() {
		t.Fatal("expected Detect() to always be false off Windows")
	}
	if a.IsActive() {
		t.Fatal("expected IsActive() to be false")
	}
	if err := a.Start(); err == nil {
		t.Fatal("expected Start() to fail off Windows")
	}
	frame, err := a.ReadFrame()
	if frame != nil || err != nil {
		t.Fatalf("ReadFrame() = (%v, %v), want (nil, nil)", frame, err)
	}
}
