package ibt

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/racetelem/ibtstream/internal/apierr"
)

// buildFixture assembles a minimal but structurally valid .ibt file with
// one float32 variable ("Speed") and one int32 array variable
// ("CarIdxLap", count 2), two samples, and a tiny session YAML blob.
func buildFixture(t *testing.T) string {
	t.Helper()

	const (
		numVars   = 2
		numBuf    = 1
		bufLen    = 16 // Speed at offset 0 (4B) + CarIdxLap at offset 4 (2*4B)
		numSample = 2
	)

	varHeaderOffset := int32(diskHeaderOffset + diskHeaderSize)
	sessionYAML := "TrackName: testtrack\nTrackLength: 5,891 km\nDriverCarIdx: 1\nSessionType: Race\n"
	sessionOffset := varHeaderOffset + numVars*varHeaderEntrySize
	sampleBase := sessionOffset + int32(len(sessionYAML)) + 1 // +1 for NUL terminator

	buf := make([]byte, int(sampleBase)+numSample*bufLen)
	le := binary.LittleEndian

	// file header
	le.PutUint32(buf[0:4], uint32(acceptedVersion))
	le.PutUint32(buf[4:8], 0)                    // status
	le.PutUint32(buf[8:12], 60)                  // tick rate
	le.PutUint32(buf[12:16], 1)                  // session info update
	le.PutUint32(buf[16:20], uint32(len(sessionYAML)+1))
	le.PutUint32(buf[20:24], uint32(sessionOffset))
	le.PutUint32(buf[24:28], numVars)
	le.PutUint32(buf[28:32], uint32(varHeaderOffset))
	le.PutUint32(buf[32:36], numBuf)
	le.PutUint32(buf[36:40], bufLen)

	// buf descriptor 0 at offset 48
	le.PutUint32(buf[48:52], numSample) // tick count
	le.PutUint32(buf[52:56], uint32(sampleBase))

	// disk sub-header at offset 112
	le.PutUint64(buf[112:120], 0)                              // start date
	le.PutUint64(buf[120:128], math.Float64bits(0))            // start time
	le.PutUint64(buf[128:136], math.Float64bits(2.0/60.0))     // end time (2 ticks @ 60Hz)
	le.PutUint32(buf[136:140], 1)                              // lap count
	le.PutUint32(buf[140:144], numSample)                      // record count

	// variable table
	v0 := buf[varHeaderOffset : varHeaderOffset+varHeaderEntrySize]
	le.PutUint32(v0[0:4], uint32(VarTypeFloat32))
	le.PutUint32(v0[4:8], 0) // offset
	le.PutUint32(v0[8:12], 1)
	copy(v0[16:16+varNameLen], "Speed")

	v1 := buf[varHeaderOffset+varHeaderEntrySize : varHeaderOffset+2*varHeaderEntrySize]
	le.PutUint32(v1[0:4], uint32(VarTypeInt32))
	le.PutUint32(v1[4:8], 4) // offset
	le.PutUint32(v1[8:12], 2)
	copy(v1[16:16+varNameLen], "CarIdxLap")

	// session yaml
	copy(buf[sessionOffset:], sessionYAML)

	// samples
	s0 := buf[sampleBase : sampleBase+bufLen]
	le.PutUint32(s0[0:4], math.Float32bits(44.5))
	le.PutUint32(s0[4:8], 1)
	le.PutUint32(s0[8:12], 2)

	s1 := buf[sampleBase+bufLen : sampleBase+2*bufLen]
	le.PutUint32(s1[0:4], math.Float32bits(50.0))
	le.PutUint32(s1[4:8], 1)
	le.PutUint32(s1[8:12], 3)

	path := filepath.Join(t.TempDir(), "fixture.ibt")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestOpenAndAccessors(t *testing.T) {
	rec, err := Open(buildFixture(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rec.Close()

	if got, want := rec.RecordCount(), 2; got != want {
		t.Errorf("RecordCount() = %d, want %d", got, want)
	}
	if got, want := rec.TickRate(), 60; got != want {
		t.Errorf("TickRate() = %d, want %d", got, want)
	}
	info := rec.SessionInfo()
	if info.TrackName != "testtrack" {
		t.Errorf("SessionInfo().TrackName = %q", info.TrackName)
	}
	if info.TrackDisplayName != "testtrack" {
		t.Errorf("SessionInfo().TrackDisplayName fallback = %q", info.TrackDisplayName)
	}
	if info.DriverCarIdx != 1 {
		t.Errorf("SessionInfo().DriverCarIdx = %d, want 1", info.DriverCarIdx)
	}
	if info.TrackLength != "5,891 km" {
		t.Errorf("SessionInfo().TrackLength = %q, want %q", info.TrackLength, "5,891 km")
	}
	if len(rec.VarHeaders()) != 2 {
		t.Errorf("VarHeaders() len = %d, want 2", len(rec.VarHeaders()))
	}
}

func TestReadSample(t *testing.T) {
	rec, err := Open(buildFixture(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rec.Close()

	s, err := rec.ReadSample(1)
	if err != nil {
		t.Fatalf("ReadSample(1) error = %v", err)
	}
	speed, ok := s["Speed"].Float64()
	if !ok || math.Abs(speed-50.0) > 1e-6 {
		t.Errorf("Speed = %v, ok = %v, want 50.0", speed, ok)
	}
	laps, ok := s["CarIdxLap"].Int32Array()
	if !ok || len(laps) != 2 || laps[1] != 3 {
		t.Errorf("CarIdxLap = %v, ok = %v", laps, ok)
	}

	if _, err := rec.ReadSample(2); !apierr.Is(err, apierr.KindOutOfRange) {
		t.Errorf("ReadSample(2) error = %v, want out-of-range", err)
	}
}

func TestReadSamplesRangeClamps(t *testing.T) {
	rec, err := Open(buildFixture(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rec.Close()

	samples, err := rec.ReadSamplesRange(1, 10)
	if err != nil {
		t.Fatalf("ReadSamplesRange() error = %v", err)
	}
	if len(samples) != 1 {
		t.Fatalf("ReadSamplesRange() len = %d, want 1 (clamped)", len(samples))
	}
	speed, _ := samples[0]["Speed"].Float64()
	if math.Abs(speed-50.0) > 1e-6 {
		t.Errorf("Speed = %v, want 50.0", speed)
	}

	if _, err := rec.ReadSamplesRange(5, 1); !apierr.Is(err, apierr.KindOutOfRange) {
		t.Errorf("ReadSamplesRange(5,1) error = %v, want out-of-range", err)
	}
}

func TestOpenRejectsUnsupportedVersion(t *testing.T) {
	path := buildFixture(t)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	binary.LittleEndian.PutUint32(raw[0:4], 99)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Fatal("Open() expected error for unsupported version")
	}
}
