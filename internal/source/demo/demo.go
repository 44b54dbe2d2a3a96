// Package demo implements a synthetic telemetry source that never
// requires a running game, for development and smoke-testing the bus
// and control surface. Grounded on
// original_source/ost-adapters/src/demo.rs's DemoAdapter: the same
// oscillating-function shape for RPM, speed, G-forces, and per-wheel
// temperatures, rebuilt directly against telemetry.Frame instead of
// ost-core's TelemetryFrame.
package demo

import (
	"math"
	"time"

	"github.com/racetelem/ibtstream/internal/telemetry"
	"github.com/racetelem/ibtstream/internal/unit"
)

const key = "demo"

// Adapter generates a continuous, recognizable stream of telemetry so
// the rest of the stack can be exercised without a simulator running.
// Always detected; disabled by default by the manager so it never masks
// a real source.
type Adapter struct {
	active    bool
	startedAt time.Time
}

// New builds a demo adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Key() string  { return key }
func (a *Adapter) Name() string { return "Demo Generator" }

// Detect always succeeds; this adapter has no external dependency.
func (a *Adapter) Detect() bool { return true }

func (a *Adapter) Start() error {
	a.active = true
	a.startedAt = time.Now()
	return nil
}

func (a *Adapter) Stop() error {
	a.active = false
	return nil
}

func (a *Adapter) IsActive() bool { return a.active }

func (a *Adapter) ReadFrame() (*telemetry.Frame, error) {
	if !a.active {
		return nil, nil
	}
	return a.generateFrame(), nil
}

func (a *Adapter) generateFrame() *telemetry.Frame {
	elapsed := time.Since(a.startedAt).Seconds()

	rpm := 5000.0 + 2000.0*math.Sin(elapsed*math.Pi)
	speed := 30.0 + 20.0*math.Sin(elapsed*0.5)
	gear := int8(clampInt(int(math.Floor(speed/10.0)), 1, 6))

	latG := 1.5 * math.Sin(elapsed*0.7)
	longG := 0.5 * math.Cos(elapsed*0.9)
	vertG := -1.0

	wheel := func(offset float64) *telemetry.WheelCorner {
		surfaceTemp := unit.Celsius(80.0 + 12.0*math.Cos(elapsed*0.05+offset))
		return &telemetry.WheelCorner{
			SuspensionTravel: ptr(unit.Meters(0.05 + 0.02*math.Sin(elapsed+offset))),
			RideHeight:       ptr(unit.Meters(0.06 + 0.005*math.Sin(elapsed+offset))),
			Pressure:         ptr(unit.Kilopascals(180.0 + 5.0*math.Sin(elapsed*0.1+offset))),
			TempInner:        ptr(surfaceTemp),
			TempMiddle:       ptr(surfaceTemp),
			TempOuter:        ptr(surfaceTemp),
			CarcassTempInner: ptr(surfaceTemp + 6),
			Wear:             ptr(unit.NewPercentage(0.1 + 0.0001*elapsed)),
			SlipRatio:        ptr(0.05 * math.Sin(elapsed*2.0+offset)),
			SlipAngle:        ptr(unit.Radians(0.02 * math.Cos(elapsed+offset))),
		}
	}

	sessionType := telemetry.SessionTypeRace
	sessionState := telemetry.SessionStateRacing
	trackName := "Demo Raceway"

	frame := &telemetry.Frame{
		Header: telemetry.Header{
			Timestamp: time.Now(),
			Source:    "demo",
		},
		Motion: &telemetry.Motion{
			Velocity: &telemetry.VelocityVec{
				X: unit.MetersPerSecond(latG * 2.0),
				Y: 0,
				Z: unit.MetersPerSecond(speed),
			},
			GForce: &telemetry.GForceVec{
				X: unit.GForce(latG),
				Y: unit.GForce(vertG),
				Z: unit.GForce(longG),
			},
		},
		Vehicle: &telemetry.Vehicle{
			Speed:    ptr(unit.MetersPerSecond(speed)),
			Rpm:      ptr(unit.Rpm(rpm)),
			Gear:     &gear,
			Throttle: ptr(unit.NewPercentage(0.6 + 0.3*math.Sin(elapsed*0.8))),
			Brake:    ptr(unit.NewPercentage(math.Max((math.Sin(elapsed*0.3)*0.5+0.5)*0.2, 0))),
			OnTrack:  ptr(true),
		},
		Engine: &telemetry.Engine{
			WaterTemp:   ptr(unit.Celsius(90.0 + 5.0*math.Min(elapsed*0.01, 1.0))),
			OilTemp:     ptr(unit.Celsius(105.0 + 3.0*math.Min(elapsed*0.01, 1.0))),
			OilPressure: ptr(unit.Kilopascals(350.0 + 20.0*math.Sin(elapsed*0.05))),
			FuelLevel:   ptr(unit.Liters(60.0 * (1.0 - math.Min(elapsed*0.001, 0.5)))),
		},
		Wheels: &telemetry.Wheels{
			FrontLeft:  wheel(0.0),
			FrontRight: wheel(1.0),
			RearLeft:   wheel(2.0),
			RearRight:  wheel(3.0),
		},
		Timing: &telemetry.Timing{
			CurrentLapTime: ptr(unit.Seconds(math.Mod(elapsed, 90.0))),
			LapNumber:      ptr(int(elapsed / 90.0)),
			LapDistancePct: ptr(unit.NewPercentage(math.Mod(elapsed, 90.0) / 90.0)),
		},
		Session: &telemetry.Session{
			Type:      &sessionType,
			State:     &sessionState,
			Elapsed:   ptr(unit.Seconds(elapsed)),
			TrackName: &trackName,
		},
		Weather: &telemetry.Weather{
			AirTemp:   ptr(unit.Celsius(24.0)),
			TrackTemp: ptr(unit.Celsius(32.0)),
		},
	}
	return frame
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ptr[T any](v T) *T { return &v }
