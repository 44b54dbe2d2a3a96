//go:build windows

package iracing

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mpapenbr/goirsdk/irsdk"
	"github.com/racetelem/ibtstream/internal/ibt"
	"github.com/racetelem/ibtstream/internal/normalize"
	"github.com/racetelem/ibtstream/internal/telemetry"
)

// wheelPrefixes matches internal/normalize/wheels.go's corner prefixes.
var wheelPrefixes = [4]string{"LF", "RF", "LR", "RR"}

// scalarFloatVars lists the iRacing SDK telemetry variables internal/normalize
// reads that this adapter pulls as float values via GetFloatValue,
// grounded on PsybeDev-tracktic/sims/iracing_connector.go's getSessionInfo
// /getPlayerData/getTireData Get*Value call pattern, retargeted at the
// variable names internal/normalize actually consumes (which differ in a
// few places from the teacher's own field choices, e.g. "TrackTempCrew"
// rather than "TrackTemp", and the CL/CC/CR wheel-temperature triplet
// rather than the teacher's single *tempCM reading).
var scalarFloatVars = []string{
	"RPM", "Speed", "Throttle", "Brake", "Clutch", "SteeringWheelAngle",
	"LapCurrentLapTime", "LapLastLapTime", "LapBestLapTime", "LapDistPct",
	"FuelLevel", "FuelUsePerHour",
	"SessionTime", "SessionTimeRemain",
	"AirTemp", "TrackTempCrew", "TrackLength",
}

var scalarIntVars = []string{
	"Gear", "Lap", "Position", "SessionLapsRemain", "SessionState", "SessionFlags",
}

var scalarBoolVars = []string{"OnPitRoad"}

// Adapter reads iRacing's shared-memory telemetry block via goirsdk and
// routes every sample through the same internal/normalize.Normalize
// entry point the replay path uses, per DESIGN.md's Open Question #1
// decision that live and replay share one normalization path.
type Adapter struct {
	mu     sync.Mutex
	api    *irsdk.Irsdk
	client *http.Client
	active bool
	tick   uint64
}

// New builds an iRacing live adapter.
func New() *Adapter {
	return &Adapter{client: &http.Client{Timeout: 5 * time.Second}}
}

func (a *Adapter) Key() string  { return key }
func (a *Adapter) Name() string { return "iRacing" }

func (a *Adapter) Detect() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	running, err := irsdk.IsSimRunning(ctx, a.client)
	return err == nil && running
}

func (a *Adapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	api := irsdk.NewIrsdk()
	if !api.WaitForValidData() {
		return fmt.Errorf("iracing: timed out waiting for valid shared memory data")
	}
	a.api = api
	a.active = true
	return nil
}

func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.api = nil
	a.active = false
	return nil
}

func (a *Adapter) IsActive() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active
}

func (a *Adapter) ReadFrame() (*telemetry.Frame, error) {
	a.mu.Lock()
	api := a.api
	a.mu.Unlock()
	if api == nil {
		return nil, nil
	}
	if !api.WaitForValidData() {
		return nil, nil
	}
	api.GetData()

	sample := make(ibt.Sample)
	for _, name := range scalarFloatVars {
		if v, err := api.GetFloatValue(name); err == nil {
			sample[name] = ibt.NewFloat64Value(float64(v))
		}
	}
	for _, name := range scalarIntVars {
		if v, err := api.GetIntValue(name); err == nil {
			sample[name] = ibt.NewInt32Value(int32(v))
		}
	}
	for _, name := range scalarBoolVars {
		if v, err := api.GetBoolValue(name); err == nil {
			sample[name] = ibt.NewBoolValue(v)
		}
	}
	for _, prefix := range wheelPrefixes {
		for _, suffix := range []string{"tempCL", "tempCC", "tempCR", "airPressure", "wear"} {
			name := prefix + suffix
			if v, err := api.GetFloatValue(name); err == nil {
				sample[name] = ibt.NewFloat64Value(float64(v))
			}
		}
	}

	trackLenKm, _ := sample["TrackLength"].Float64()
	delete(sample, "TrackLength") // consumed into SessionInfo, not a frame variable
	session := ibt.SessionInfo{TrackLength: fmt.Sprintf("%.3f km", trackLenKm)}

	a.mu.Lock()
	a.tick++
	tick := a.tick
	a.mu.Unlock()

	return normalize.Normalize(sample, session, key, &tick), nil
}
