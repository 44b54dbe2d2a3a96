package control

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/racetelem/ibtstream/internal/apierr"
	"github.com/racetelem/ibtstream/internal/bus"
	"github.com/racetelem/ibtstream/internal/ibt"
	"github.com/racetelem/ibtstream/internal/logx"
	"github.com/racetelem/ibtstream/internal/source"
)

// fixtureIBT assembles a minimal but structurally valid .ibt payload: one
// float32 variable ("Speed"), one sample, and a tiny session YAML blob.
// Mirrors internal/ibt/parser_test.go's buildFixture, rebuilt here against
// exported constants only since this package sits outside internal/ibt.
func fixtureIBT(t *testing.T) []byte {
	t.Helper()

	const (
		fileHeaderSize     = 48
		diskHeaderOffset   = 112
		diskHeaderSize     = 32
		varHeaderEntrySize = 144
		varNameLen         = 32
		acceptedVersion    = 2
		numVars            = 1
		numBuf             = 1
		bufLen             = 4
		numSample          = 1
	)

	varHeaderOffset := int32(diskHeaderOffset + diskHeaderSize)
	sessionYAML := "TrackName: testtrack\nTrackLength: 5,891 km\nDriverCarIdx: 0\nSessionType: Race\n"
	sessionOffset := varHeaderOffset + numVars*varHeaderEntrySize
	sampleBase := sessionOffset + int32(len(sessionYAML)) + 1

	buf := make([]byte, int(sampleBase)+numSample*bufLen)
	le := binary.LittleEndian

	le.PutUint32(buf[0:4], uint32(acceptedVersion))
	le.PutUint32(buf[8:12], 60)
	le.PutUint32(buf[16:20], uint32(len(sessionYAML)+1))
	le.PutUint32(buf[20:24], uint32(sessionOffset))
	le.PutUint32(buf[24:28], numVars)
	le.PutUint32(buf[28:32], uint32(varHeaderOffset))
	le.PutUint32(buf[32:36], numBuf)
	le.PutUint32(buf[36:40], bufLen)

	le.PutUint32(buf[48:52], numSample)
	le.PutUint32(buf[52:56], uint32(sampleBase))

	le.PutUint64(buf[128:136], math.Float64bits(1.0/60.0))
	le.PutUint32(buf[140:144], numSample)

	v0 := buf[varHeaderOffset : varHeaderOffset+varHeaderEntrySize]
	le.PutUint32(v0[0:4], uint32(ibt.VarTypeFloat32))
	le.PutUint32(v0[4:8], 0)
	le.PutUint32(v0[8:12], 1)
	copy(v0[16:16+varNameLen], "Speed")

	copy(buf[sessionOffset:], sessionYAML)

	s0 := buf[sampleBase : sampleBase+bufLen]
	le.PutUint32(s0[0:4], math.Float32bits(42.0))

	return buf
}

func newTestSurface(t *testing.T) *Surface {
	t.Helper()
	b := bus.New()
	mgr := source.New(b, nil, nil)
	return New(b, mgr, logx.New("test", logx.LevelError), t.TempDir(), 512*1024*1024)
}

func TestUploadRejectsWrongExtension(t *testing.T) {
	s := newTestSurface(t)
	_, err := s.Upload("recording.txt", bytes.NewReader([]byte("not ibt")))
	if !apierr.Is(err, apierr.KindMalformedInput) {
		t.Fatalf("Upload() error = %v, want malformed_input", err)
	}
}

func TestUploadThenConflictThenDelete(t *testing.T) {
	s := newTestSurface(t)
	data := fixtureIBT(t)

	info, err := s.Upload("lap.ibt", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if info.TrackName != "testtrack" {
		t.Errorf("Info().TrackName = %q, want testtrack", info.TrackName)
	}
	if info.TotalFrames != 1 {
		t.Errorf("Info().TotalFrames = %d, want 1", info.TotalFrames)
	}

	if _, err := s.Upload("lap2.ibt", bytes.NewReader(data)); !apierr.Is(err, apierr.KindConflict) {
		t.Fatalf("second Upload() error = %v, want conflict", err)
	}

	if err := s.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Info(); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("Info() after Delete() error = %v, want not_found", err)
	}

	if err := s.Delete(); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("second Delete() error = %v, want not_found", err)
	}
}

func TestInfoNotFoundBeforeUpload(t *testing.T) {
	s := newTestSurface(t)
	if _, err := s.Info(); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("Info() error = %v, want not_found", err)
	}
}

func TestControlVerbsMutateCursor(t *testing.T) {
	s := newTestSurface(t)
	if _, err := s.Upload("lap.ibt", bytes.NewReader(fixtureIBT(t))); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	defer s.Delete()

	if info, err := s.Pause(); err != nil || info.Playing {
		t.Fatalf("Pause() = (%v, %v), want Playing=false", info, err)
	}
	if info, err := s.SetSpeed(100); err != nil || info.PlaybackSpeed != 16.0 {
		t.Fatalf("SetSpeed(100) = (%v, %v), want clamped to 16.0", info, err)
	}
	if info, err := s.Seek(0); err != nil || info.CurrentFrame != 0 {
		t.Fatalf("Seek(0) = (%v, %v), want CurrentFrame=0", info, err)
	}
	if info, err := s.Play(); err != nil || !info.Playing {
		t.Fatalf("Play() = (%v, %v), want Playing=true", info, err)
	}
}

func TestFramesRangeAppliesMask(t *testing.T) {
	s := newTestSurface(t)
	if _, err := s.Upload("lap.ibt", bytes.NewReader(fixtureIBT(t))); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	defer s.Delete()

	entries, replayID, err := s.FramesRange(0, 10, "vehicle")
	if err != nil {
		t.Fatalf("FramesRange() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("FramesRange() len = %d, want 1", len(entries))
	}
	if replayID == "" {
		t.Error("FramesRange() replayID is empty")
	}
	if entries[0].Frame.Session != nil {
		t.Errorf("Frame.Session = %v, want nil (masked out)", entries[0].Frame.Session)
	}
}

func TestFramesRangeNotFoundWithoutActiveReplay(t *testing.T) {
	s := newTestSurface(t)
	if _, _, err := s.FramesRange(0, 10, ""); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("FramesRange() error = %v, want not_found", err)
	}
}

func TestSinkCRUDBroadcasts(t *testing.T) {
	s := newTestSurface(t)
	sub := s.bus.Sinks.Subscribe()
	defer sub.Close()

	created := s.CreateSink(bus.SinkConfig{Type: bus.SinkUDP, Host: "127.0.0.1", Port: 9999})
	if created.ID == "" {
		t.Fatal("CreateSink() left ID empty")
	}

	select {
	case snap := <-sub.C():
		if len(snap.Sinks) != 1 {
			t.Fatalf("snapshot after create has %d sinks, want 1", len(snap.Sinks))
		}
	default:
		t.Fatal("expected a sinks snapshot to be published on create")
	}

	if err := s.DeleteSink(created.ID); err != nil {
		t.Fatalf("DeleteSink() error = %v", err)
	}
	if err := s.DeleteSink("nonexistent"); !apierr.Is(err, apierr.KindNotFound) {
		t.Fatalf("DeleteSink(nonexistent) error = %v, want not_found", err)
	}

	select {
	case snap := <-sub.C():
		if len(snap.Sinks) != 0 {
			t.Fatalf("snapshot after delete has %d sinks, want 0", len(snap.Sinks))
		}
	default:
		t.Fatal("expected a sinks snapshot to be published on delete")
	}
}

func TestSubscribeEmitsStatusAndSinksImmediately(t *testing.T) {
	s := newTestSurface(t)
	sub := s.Subscribe("")
	defer sub.Close()

	var sawStatus, sawSinks bool
	for i := 0; i < 2; i++ {
		ev := <-sub.C()
		switch ev.Kind {
		case EventStatus:
			sawStatus = true
		case EventSinks:
			sawSinks = true
		default:
			t.Fatalf("unexpected initial event kind %v", ev.Kind)
		}
	}
	if !sawStatus || !sawSinks {
		t.Fatalf("sawStatus=%v sawSinks=%v, want both true", sawStatus, sawSinks)
	}
}

func TestSubscribeDeliversMaskedFrames(t *testing.T) {
	s := newTestSurface(t)
	if _, err := s.Upload("lap.ibt", bytes.NewReader(fixtureIBT(t))); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	defer s.Delete()

	sub := s.Subscribe("vehicle")
	defer sub.Close()

	// Drain the two immediate snapshot events.
	<-sub.C()
	<-sub.C()

	entries, _, err := s.FramesRange(0, 1, "")
	if err != nil {
		t.Fatalf("FramesRange() error = %v", err)
	}
	s.bus.Publish(entries[0].Frame)

	ev := <-sub.C()
	if ev.Kind != EventFrame {
		t.Fatalf("event kind = %v, want frame", ev.Kind)
	}
	if ev.Frame.Session != nil {
		t.Errorf("Frame.Session = %v, want nil (masked out)", ev.Frame.Session)
	}
	if ev.Frame.Vehicle == nil {
		t.Error("Frame.Vehicle = nil, want present (included by mask)")
	}
}

func TestSetAdapterEnabledDelegatesToManager(t *testing.T) {
	s := newTestSurface(t)
	// No adapters registered; this should not panic and should return an
	// empty-adapters status snapshot either way.
	s.SetAdapterEnabled("demo", true)
	snap := s.Adapters()
	if len(snap.Adapters) != 0 {
		t.Errorf("Adapters() = %v, want none registered", snap.Adapters)
	}
}
