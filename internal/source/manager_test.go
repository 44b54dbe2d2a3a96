package source

import (
	"sync"
	"testing"
	"time"

	"github.com/racetelem/ibtstream/internal/bus"
	"github.com/racetelem/ibtstream/internal/telemetry"
)

type fakeAdapter struct {
	key      string
	name     string
	mu       sync.Mutex
	detected bool
	active   bool
	frame    *telemetry.Frame
	starts   int
}

func (f *fakeAdapter) Key() string  { return f.key }
func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Detect() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detected
}

func (f *fakeAdapter) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = true
	f.starts++
	return nil
}

func (f *fakeAdapter) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = false
	return nil
}

func (f *fakeAdapter) IsActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *fakeAdapter) ReadFrame() (*telemetry.Frame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame, nil
}

func (f *fakeAdapter) setDetected(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detected = v
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestManagerStartsFirstDetectedEnabledAdapter(t *testing.T) {
	b := bus.New()
	m := New(b, nil, nil)
	a := &fakeAdapter{key: "a", name: "A", detected: true}
	m.Register(a)

	m.Start()
	defer m.Stop()

	waitFor(t, time.Second, a.IsActive)
	if a.starts != 1 {
		t.Errorf("starts = %d, want 1", a.starts)
	}
}

func TestManagerSkipsDisabledAdapter(t *testing.T) {
	b := bus.New()
	m := New(b, nil, nil, "a")
	a := &fakeAdapter{key: "a", name: "A", detected: true}
	m.Register(a)

	m.Start()
	defer m.Stop()

	time.Sleep(50 * time.Millisecond)
	if a.IsActive() {
		t.Fatal("disabled adapter should not have started")
	}
}

func TestManagerStopsAdapterWhenNoLongerDetected(t *testing.T) {
	b := bus.New()
	m := New(b, nil, nil)
	a := &fakeAdapter{key: "a", name: "A", detected: true}
	m.Register(a)

	m.Start()
	defer m.Stop()
	waitFor(t, time.Second, a.IsActive)

	a.setDetected(false)
	// Detection re-runs at most once per detectionInterval (1s) after the
	// start, so allow more than one interval for the stop to be observed.
	waitFor(t, 2*detectionInterval, func() bool { return !a.IsActive() })
}

func TestManagerPublishesFramesFromActiveAdapter(t *testing.T) {
	b := bus.New()
	sub := b.Frames.Subscribe()
	defer sub.Close()

	m := New(b, nil, nil)
	a := &fakeAdapter{key: "a", name: "A", detected: true, frame: &telemetry.Frame{}}
	m.Register(a)

	m.Start()
	defer m.Stop()

	select {
	case <-sub.C():
	case <-time.After(time.Second):
		t.Fatal("expected a frame on the bus")
	}
}

func TestManagerDoesNotReadLiveFramesWhileReplayActive(t *testing.T) {
	b := bus.New()
	sub := b.Frames.Subscribe()
	defer sub.Close()

	m := New(b, nil, func() bool { return true })
	a := &fakeAdapter{key: "a", name: "A", detected: true, frame: &telemetry.Frame{}}
	m.Register(a)

	m.Start()
	defer m.Stop()

	waitFor(t, time.Second, a.IsActive) // detection still runs

	select {
	case <-sub.C():
		t.Fatal("expected no frame while replay is active")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSetEnabledFalseStopsActiveAdapter(t *testing.T) {
	b := bus.New()
	m := New(b, nil, nil)
	a := &fakeAdapter{key: "a", name: "A", detected: true}
	m.Register(a)

	m.Start()
	defer m.Stop()
	waitFor(t, time.Second, a.IsActive)

	m.SetEnabled("a", false)
	waitFor(t, time.Second, func() bool { return !a.IsActive() })
}
