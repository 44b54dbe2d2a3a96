package normalize

import (
	"math"
	"testing"

	"github.com/racetelem/ibtstream/internal/ibt"
	"github.com/racetelem/ibtstream/internal/telemetry"
)

func baseSample() ibt.Sample {
	return ibt.Sample{
		"VelocityX": ibt.NewFloat64Value(10),
		"VelocityY": ibt.NewFloat64Value(0),
		"VelocityZ": ibt.NewFloat64Value(0),
		"LatAccel":  ibt.NewFloat64Value(9.81),
		"LongAccel": ibt.NewFloat64Value(0),
		"VertAccel": ibt.NewFloat64Value(0),
		"RPM":       ibt.NewFloat64Value(6500),
		"Gear":      ibt.NewInt32Value(3),
		"Throttle":  ibt.NewFloat64Value(0.75),
		"PlayerTrackSurface": ibt.NewInt32Value(3),
		"SessionState":       ibt.NewInt32Value(4),
		"SessionFlags":       ibt.NewBitfieldValue(1 << 2),
		"LapDeltaToBestLap":    ibt.NewFloat64Value(-0.512),
		"LapDeltaToBestLap_OK": ibt.NewBoolValue(true),
	}
}

func TestNormalizeMotionVectorsAndGForce(t *testing.T) {
	f := Normalize(baseSample(), ibt.SessionInfo{}, "Demo", nil)
	if f.Motion == nil || f.Motion.Velocity == nil {
		t.Fatal("expected Motion.Velocity to be populated")
	}
	if f.Motion.Velocity.X != 10 {
		t.Errorf("Velocity.X = %v, want 10", f.Motion.Velocity.X)
	}
	if f.Motion.GForce == nil {
		t.Fatal("expected Motion.GForce to be populated")
	}
	// LatAccel maps onto GForceVec.X; 9.81 m/s^2 is ~1g.
	if math.Abs(float64(f.Motion.GForce.X)-1.0) > 1e-6 {
		t.Errorf("GForce.X = %v, want ~1.0", f.Motion.GForce.X)
	}
}

func TestNormalizeVehicleSurfaceAndControls(t *testing.T) {
	f := Normalize(baseSample(), ibt.SessionInfo{}, "Demo", nil)
	if f.Vehicle == nil {
		t.Fatal("expected Vehicle to be populated")
	}
	if f.Vehicle.Surface == nil || *f.Vehicle.Surface != telemetry.SurfaceAsphalt {
		t.Errorf("Surface = %v, want asphalt", f.Vehicle.Surface)
	}
	if f.Vehicle.Gear == nil || *f.Vehicle.Gear != 3 {
		t.Errorf("Gear = %v, want 3", f.Vehicle.Gear)
	}
	if f.Vehicle.Speed == nil {
		t.Fatal("expected Speed to be derived from velocity when absent")
	}
	if math.Abs(float64(*f.Vehicle.Speed)-10.0) > 1e-6 {
		t.Errorf("Speed = %v, want 10 (||velocity||)", *f.Vehicle.Speed)
	}
}

func TestNormalizeSessionStateAndFlags(t *testing.T) {
	s := baseSample()
	f := Normalize(s, ibt.SessionInfo{SessionType: "Race"}, "Demo", nil)
	if f.Session == nil {
		t.Fatal("expected Session to be populated")
	}
	if f.Session.State == nil || *f.Session.State != telemetry.SessionStateRacing {
		t.Errorf("State = %v, want racing", f.Session.State)
	}
	if f.Session.Flags == nil || !f.Session.Flags.Green {
		t.Errorf("Flags.Green = %v, want true", f.Session.Flags)
	}
	if f.Session.Type == nil || *f.Session.Type != telemetry.SessionTypeRace {
		t.Errorf("Type = %v, want race", f.Session.Type)
	}
}

func TestNormalizeTrackLengthConversion(t *testing.T) {
	session := ibt.SessionInfo{TrackLength: "5,891 km", TrackDisplayName: "Test Track"}
	f := Normalize(ibt.Sample{}, session, "Demo", nil)
	if f.Session == nil || f.Session.TrackLength == nil {
		t.Fatal("expected TrackLength to be populated")
	}
	if math.Abs(float64(*f.Session.TrackLength)-5891.0) > 1e-6 {
		t.Errorf("TrackLength = %v, want 5891", *f.Session.TrackLength)
	}
}

func TestNormalizeDeltaTimeValidity(t *testing.T) {
	f := Normalize(baseSample(), ibt.SessionInfo{}, "Demo", nil)
	if f.Timing == nil || f.Timing.DeltaToBest == nil {
		t.Fatal("expected DeltaToBest to be populated")
	}
	if !f.Timing.DeltaToBest.Valid {
		t.Error("expected DeltaToBest.Valid = true")
	}
	if math.Abs(float64(f.Timing.DeltaToBest.Seconds)+0.512) > 1e-6 {
		t.Errorf("DeltaToBest.Seconds = %v, want -0.512", f.Timing.DeltaToBest.Seconds)
	}
}

func TestNormalizeWheelsInnerOuterSwap(t *testing.T) {
	sample := ibt.Sample{
		"LFtempCL": ibt.NewFloat64Value(80),
		"LFtempCC": ibt.NewFloat64Value(85),
		"LFtempCR": ibt.NewFloat64Value(90),
		"RFtempCL": ibt.NewFloat64Value(80),
		"RFtempCC": ibt.NewFloat64Value(85),
		"RFtempCR": ibt.NewFloat64Value(90),
	}
	f := Normalize(sample, ibt.SessionInfo{}, "Demo", nil)
	if f.Wheels == nil || f.Wheels.FrontLeft == nil || f.Wheels.FrontRight == nil {
		t.Fatal("expected front wheels to be populated")
	}
	// Left side: CR (90) is interior (inner), CL (80) is exterior (outer).
	if *f.Wheels.FrontLeft.TempInner != 90 {
		t.Errorf("FrontLeft.TempInner = %v, want 90", *f.Wheels.FrontLeft.TempInner)
	}
	if *f.Wheels.FrontLeft.TempOuter != 80 {
		t.Errorf("FrontLeft.TempOuter = %v, want 80", *f.Wheels.FrontLeft.TempOuter)
	}
	// Right side: reversed, CL (80) is interior, CR (90) is exterior.
	if *f.Wheels.FrontRight.TempInner != 80 {
		t.Errorf("FrontRight.TempInner = %v, want 80", *f.Wheels.FrontRight.TempInner)
	}
	if *f.Wheels.FrontRight.TempOuter != 90 {
		t.Errorf("FrontRight.TempOuter = %v, want 90", *f.Wheels.FrontRight.TempOuter)
	}
	// Carcass temps reuse the same readings.
	if *f.Wheels.FrontLeft.CarcassTempInner != *f.Wheels.FrontLeft.TempInner {
		t.Error("expected CarcassTempInner to mirror TempInner")
	}
}

func TestNormalizeCompetitorsExcludesPlayerAndAbsentCars(t *testing.T) {
	sample := ibt.Sample{
		"CarIdxLap":          ibt.NewInt32ArrayValue([]int32{5, 3, -1, 7}),
		"CarIdxLapCompleted": ibt.NewInt32ArrayValue([]int32{4, 2, -1, 6}),
		"CarIdxPosition":     ibt.NewInt32ArrayValue([]int32{1, 2, 3, 4}),
	}
	competitors := normalizeCompetitors(newGetter(sample), 0)
	if len(competitors) != 2 {
		t.Fatalf("len(competitors) = %d, want 2 (idx 1 and idx 3)", len(competitors))
	}
	if competitors[0].CarIndex != 1 {
		t.Errorf("competitors[0].CarIndex = %d, want 1", competitors[0].CarIndex)
	}
	if competitors[1].CarIndex != 3 {
		t.Errorf("competitors[1].CarIndex = %d, want 3", competitors[1].CarIndex)
	}
	if *competitors[0].LapsCompleted != 2 {
		t.Errorf("competitors[0].LapsCompleted = %d, want 2", *competitors[0].LapsCompleted)
	}
}

func TestNormalizeExtrasLockstep(t *testing.T) {
	sample := ibt.Sample{
		"RPM":             ibt.NewFloat64Value(6500),
		"SomeUnmappedVar": ibt.NewFloat64Value(42),
		"CarIdxF2Time":    ibt.NewFloat32ArrayValue([]float32{1, 2}),
	}
	f := Normalize(sample, ibt.SessionInfo{}, "iRacing Replay", nil)
	if _, ok := f.Extras["iRacing Replay/RPM"]; ok {
		t.Error("RPM was read by normalizeVehicle and must not leak into Extras")
	}
	if _, ok := f.Extras["iRacing Replay/SomeUnmappedVar"]; !ok {
		t.Error("expected SomeUnmappedVar to appear in Extras")
	}
	if _, ok := f.Extras["iRacing Replay/CarIdxF2Time"]; ok {
		t.Error("CarIdx-prefixed variables must never appear in Extras")
	}
}

func TestNormalizeReturnsNilSectionsWhenAbsent(t *testing.T) {
	f := Normalize(ibt.Sample{}, ibt.SessionInfo{}, "Demo", nil)
	if f.Motion != nil {
		t.Error("expected Motion to be nil for an empty sample")
	}
	if f.Weather != nil {
		t.Error("expected Weather to be nil for an empty sample")
	}
	if f.Damage != nil {
		t.Error("expected Damage to always be nil (no grounded raw damage variables)")
	}
}
