package telemetry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/racetelem/ibtstream/internal/unit"
)

func TestFrameOmitsAbsentSections(t *testing.T) {
	f := &Frame{
		Header: Header{Timestamp: time.Unix(0, 0).UTC(), Source: "Demo"},
		Vehicle: &Vehicle{
			Speed: Ptr(unit.MetersPerSecond(42)),
		},
	}

	raw, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, absent := range []string{"motion", "engine", "wheels", "timing", "session", "weather", "pit", "electronics", "damage", "competitors", "driver", "extras"} {
		if _, ok := decoded[absent]; ok {
			t.Errorf("expected section %q to be absent, found in output", absent)
		}
	}
	if _, ok := decoded["vehicle"]; !ok {
		t.Error("expected vehicle section to be present")
	}
	if _, ok := decoded["game"]; !ok {
		t.Error("expected header 'game' field to always be present")
	}
}

func TestVehicleOmitsUnsetFields(t *testing.T) {
	v := &Vehicle{Speed: Ptr(unit.MetersPerSecond(10))}
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := decoded["rpm"]; ok {
		t.Error("expected unset rpm field to be absent")
	}
	if _, ok := decoded["speed"]; !ok {
		t.Error("expected speed field to be present")
	}
}
