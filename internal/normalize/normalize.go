package normalize

import (
	"math"
	"time"

	"github.com/racetelem/ibtstream/internal/ibt"
	"github.com/racetelem/ibtstream/internal/telemetry"
	"github.com/racetelem/ibtstream/internal/unit"
)

// Normalize maps one decoded sample plus the recording's session info
// into a populated telemetry.Frame, per spec.md §4.3. source tags the
// frame's origin (e.g. "iRacing Replay", "Demo"); tick is the sample's
// position when one is meaningful (nil for live adapters that don't
// expose a stable tick).
func Normalize(sample ibt.Sample, session ibt.SessionInfo, source string, tick *uint64) *telemetry.Frame {
	g := newGetter(sample)

	f := &telemetry.Frame{
		Header: telemetry.Header{
			Timestamp: time.Now().UTC(),
			Source:    source,
			Tick:      tick,
		},
		Motion:      normalizeMotion(g),
		Vehicle:     normalizeVehicle(g),
		Engine:      normalizeEngine(g),
		Wheels:      normalizeWheels(g),
		Timing:      normalizeTiming(g),
		Session:     normalizeSession(g, session),
		Weather:     normalizeWeather(g),
		Pit:         normalizePit(g),
		Electronics: normalizeElectronics(g),
		Damage:      normalizeDamage(g),
		Competitors: normalizeCompetitors(g, session.DriverCarIdx),
		Driver:      normalizeDriver(g, session),
	}
	f.Extras = buildExtras(g, source)
	return f
}

func normalizeMotion(g *getter) *telemetry.Motion {
	m := &telemetry.Motion{}

	vx, vxOk := g.f64("VelocityX")
	vy, vyOk := g.f64("VelocityY")
	vz, vzOk := g.f64("VelocityZ")
	if vxOk && vyOk && vzOk {
		m.Velocity = &telemetry.VelocityVec{
			X: unit.MetersPerSecond(vx),
			Y: unit.MetersPerSecond(vy),
			Z: unit.MetersPerSecond(vz),
		}
	}

	lat, latOk := g.f64("LatAccel")
	long, longOk := g.f64("LongAccel")
	vert, vertOk := g.f64("VertAccel")
	if latOk && longOk && vertOk {
		m.Acceleration = &telemetry.AccelVec{
			X: unit.MetersPerSecondSquared(lat),
			Y: unit.MetersPerSecondSquared(vert),
			Z: unit.MetersPerSecondSquared(long),
		}
		m.GForce = &telemetry.GForceVec{
			X: unit.GForceFromAcceleration(m.Acceleration.X),
			Y: unit.GForceFromAcceleration(m.Acceleration.Y),
			Z: unit.GForceFromAcceleration(m.Acceleration.Z),
		}
	}

	pitch, pitchOk := g.f64("Pitch")
	yaw, yawOk := g.f64("Yaw")
	roll, rollOk := g.f64("Roll")
	if pitchOk && yawOk && rollOk {
		m.Rotation = &telemetry.RadiansVec{
			X: unit.Radians(pitch),
			Y: unit.Radians(yaw),
			Z: unit.Radians(roll),
		}
	}

	pitchRate, prOk := g.f64("PitchRate")
	yawRate, yrOk := g.f64("YawRate")
	rollRate, rrOk := g.f64("RollRate")
	if prOk && yrOk && rrOk {
		m.AngularVelocity = &telemetry.AngularVelocityVec{
			X: unit.RadiansPerSecond(pitchRate),
			Y: unit.RadiansPerSecond(yawRate),
			Z: unit.RadiansPerSecond(rollRate),
		}
	}

	if m.Velocity == nil && m.Acceleration == nil && m.Rotation == nil && m.AngularVelocity == nil {
		return nil
	}
	return m
}

func normalizeVehicle(g *getter) *telemetry.Vehicle {
	v := &telemetry.Vehicle{
		Rpm:               optUnit[unit.Rpm](g, "RPM"),
		RedlineRpm:        optUnit[unit.Rpm](g, "DriverCarRedLine"),
		IdleRpm:           optUnit[unit.Rpm](g, "DriverCarIdleRPM"),
		Gear:              optInt8(g, "Gear"),
		Throttle:          optPercentage(g, "Throttle"),
		Brake:             optPercentage(g, "Brake"),
		Clutch:            optPercentage(g, "Clutch"),
		SteeringAngle:     optUnit[unit.Radians](g, "SteeringWheelAngle"),
		SteeringTorque:    optUnit[unit.NewtonMeters](g, "SteeringWheelTorque"),
		SteeringTorquePct: optPercentage(g, "SteeringWheelPctTorque"),
		Handbrake:         optBool(g, "HandbrakeOn"),
		OnTrack:           optBool(g, "IsOnTrack"),
		InGarage:          optBool(g, "IsInGarage"),
	}

	if code, ok := g.i32("PlayerTrackSurface"); ok {
		s := surfaceFromCode(code)
		v.Surface = &s
	}

	speed, ok := g.f64("Speed")
	if !ok {
		if vel, velOk := g.value("VelocityX"); velOk {
			vx, _ := vel.Float64()
			vy, _ := g.f64("VelocityY")
			vz, _ := g.f64("VelocityZ")
			speed = math.Sqrt(vx*vx + vy*vy + vz*vz)
			ok = true
		}
	}
	if ok {
		sp := unit.MetersPerSecond(speed)
		v.Speed = &sp
	}

	if isVehicleEmpty(v) {
		return nil
	}
	return v
}

func isVehicleEmpty(v *telemetry.Vehicle) bool {
	return v.Speed == nil && v.Rpm == nil && v.RedlineRpm == nil && v.IdleRpm == nil &&
		v.Gear == nil && v.MaxGears == nil && v.Throttle == nil && v.Brake == nil &&
		v.Clutch == nil && v.SteeringAngle == nil && v.SteeringTorque == nil &&
		v.SteeringTorquePct == nil && v.Handbrake == nil && v.OnTrack == nil &&
		v.InGarage == nil && v.Surface == nil
}

func normalizeEngine(g *getter) *telemetry.Engine {
	e := &telemetry.Engine{
		WaterTemp:      optUnit[unit.Celsius](g, "WaterTemp"),
		OilTemp:        optUnit[unit.Celsius](g, "OilTemp"),
		OilPressure:    optUnit[unit.Kilopascals](g, "OilPress"),
		OilLevel:       optPercentage(g, "OilLevel"),
		FuelLevel:      optUnit[unit.Liters](g, "FuelLevel"),
		FuelLevelPct:   optPercentage(g, "FuelLevelPct"),
		FuelPressure:   optUnit[unit.Kilopascals](g, "FuelPress"),
		FuelUsePerHour: optUnit[unit.LitersPerHour](g, "FuelUsePerHour"),
		Voltage:        optUnit[unit.Volts](g, "Voltage"),
		ManifoldPressure: optUnit[unit.Bar](g, "ManifoldPress"),
	}
	if bits, ok := g.bits("EngineWarnings"); ok {
		w := engineWarningsFromBits(bits)
		e.Warnings = &w
	}
	if e.WaterTemp == nil && e.OilTemp == nil && e.OilPressure == nil && e.OilLevel == nil &&
		e.FuelLevel == nil && e.FuelLevelPct == nil && e.FuelCapacity == nil && e.FuelPressure == nil &&
		e.FuelUsePerHour == nil && e.Voltage == nil && e.ManifoldPressure == nil && e.Warnings == nil {
		return nil
	}
	return e
}

func normalizeTiming(g *getter) *telemetry.Timing {
	t := &telemetry.Timing{
		CurrentLapTime: optUnit[unit.Seconds](g, "LapCurrentLapTime"),
		LastLapTime:    optUnit[unit.Seconds](g, "LapLastLapTime"),
		BestLapTime:    optUnit[unit.Seconds](g, "LapBestLapTime"),
		LapNumber:      optInt(g, "Lap"),
		LapsCompleted:  optInt(g, "LapCompleted"),
		LapDistance:    optUnit[unit.Meters](g, "LapDist"),
		LapDistancePct: optPercentage(g, "LapDistPct"),
		RacePosition:   optInt(g, "PlayerCarPosition"),
		ClassPosition:  optInt(g, "PlayerCarClassPosition"),
		CarCount:       optInt(g, "SessionNum"),
		EstimatedLapTime: optUnit[unit.Seconds](g, "LapLastLapTime"),
	}
	t.DeltaToBest = deltaTimeFrom(g, "LapDeltaToBestLap", "LapDeltaToBestLap_OK")
	t.DeltaToSessionBest = deltaTimeFrom(g, "LapDeltaToSessionBestLap", "LapDeltaToSessionBestLap_OK")
	t.DeltaToOptimal = deltaTimeFrom(g, "LapDeltaToOptimalLap", "LapDeltaToOptimalLap_OK")

	if isTimingEmpty(t) {
		return nil
	}
	return t
}

func deltaTimeFrom(g *getter, valueName, validName string) *telemetry.DeltaTime {
	v, ok := g.f64(valueName)
	if !ok {
		return nil
	}
	valid, _ := g.boolean(validName)
	return &telemetry.DeltaTime{Seconds: unit.Seconds(v), Valid: valid}
}

func isTimingEmpty(t *telemetry.Timing) bool {
	return t.CurrentLapTime == nil && t.LastLapTime == nil && t.BestLapTime == nil &&
		t.BestNLapTime == nil && t.SectorTimes == nil && t.LapNumber == nil &&
		t.LapsCompleted == nil && t.LapDistance == nil && t.LapDistancePct == nil &&
		t.RacePosition == nil && t.ClassPosition == nil && t.CarCount == nil &&
		t.DeltaToBest == nil && t.DeltaToSessionBest == nil && t.DeltaToOptimal == nil &&
		t.EstimatedLapTime == nil && t.RaceLaps == nil
}

func normalizeSession(g *getter, session ibt.SessionInfo) *telemetry.Session {
	s := &telemetry.Session{
		Elapsed:       optUnit[unit.Seconds](g, "SessionTime"),
		Remaining:     optUnit[unit.Seconds](g, "SessionTimeRemain"),
		TimeOfDay:     optUnit[unit.Seconds](g, "SessionTimeOfDay"),
		LapCount:      optInt(g, "SessionLapsTotal"),
		LapsRemaining: optInt(g, "SessionLapsRemain"),
	}
	if code, ok := g.i32("SessionState"); ok {
		st := sessionStateFromCode(code)
		s.State = &st
	}
	if bits, ok := g.bits("SessionFlags"); ok {
		fl := flagsFromBits(bits)
		s.Flags = &fl
	}
	if t, ok := sessionTypeFromString(session.SessionType); ok {
		s.Type = &t
	}
	if session.TrackDisplayName != "" {
		name := session.TrackDisplayName
		s.TrackName = &name
	}
	if session.TrackConfigName != "" {
		cfg := session.TrackConfigName
		s.TrackConfig = &cfg
	}
	if meters, ok := trackLengthMeters(session.TrackLength); ok {
		m := unit.Meters(meters)
		s.TrackLength = &m
	}
	if session.CarScreenName != "" {
		car := session.CarScreenName
		s.CarName = &car
	}

	if isSessionEmpty(s) {
		return nil
	}
	return s
}

func isSessionEmpty(s *telemetry.Session) bool {
	return s.Type == nil && s.State == nil && s.Elapsed == nil && s.Remaining == nil &&
		s.TimeOfDay == nil && s.LapCount == nil && s.LapsRemaining == nil && s.Flags == nil &&
		s.TrackName == nil && s.TrackConfig == nil && s.TrackLength == nil && s.TrackType == nil &&
		s.CarName == nil && s.CarClass == nil
}

func normalizeWeather(g *getter) *telemetry.Weather {
	w := &telemetry.Weather{
		AirTemp:       optUnit[unit.Celsius](g, "AirTemp"),
		TrackTemp:     optUnit[unit.Celsius](g, "TrackTempCrew"),
		AirPressure:   optUnit[unit.Pascals](g, "AirPressure"),
		AirDensity:    optUnit[unit.KilogramsPerCubicMeter](g, "AirDensity"),
		Humidity:      optPercentage(g, "RelativeHumidity"),
		WindSpeed:     optUnit[unit.MetersPerSecond](g, "WindVel"),
		WindDirection: optUnit[unit.Radians](g, "WindDir"),
		Fog:           optPercentage(g, "FogLevel"),
		Precipitation: optPercentage(g, "Precipitation"),
	}
	if declared, ok := g.boolean("WeatherDeclaredWet"); ok {
		w.DeclaredWet = &declared
	}
	if isWeatherEmpty(w) {
		return nil
	}
	return w
}

func isWeatherEmpty(w *telemetry.Weather) bool {
	return w.AirTemp == nil && w.TrackTemp == nil && w.AirPressure == nil && w.AirDensity == nil &&
		w.Humidity == nil && w.WindSpeed == nil && w.WindDirection == nil && w.Fog == nil &&
		w.Precipitation == nil && w.Wetness == nil && w.Sky == nil && w.DeclaredWet == nil
}

func normalizePit(g *getter) *telemetry.Pit {
	p := &telemetry.Pit{
		OnPitRoad:           optBool(g, "OnPitRoad"),
		PitSpeedLimit:       optUnit[unit.MetersPerSecond](g, "PitSpeedLimit"),
		MandatoryRepairTime: optUnit[unit.Seconds](g, "PitRepairLeft"),
		OptionalRepairTime:  optUnit[unit.Seconds](g, "PitOptRepairLeft"),
	}
	req := &telemetry.PitServices{
		FuelToAdd:  optUnit[unit.Liters](g, "dpFuelAddKg"),
		ChangeFL:   optBool(g, "dpLFTireChange"),
		ChangeFR:   optBool(g, "dpRFTireChange"),
		ChangeRL:   optBool(g, "dpLRTireChange"),
		ChangeRR:   optBool(g, "dpRRTireChange"),
		TearOff:    optBool(g, "dpWindshieldTearoff"),
		FastRepair: optBool(g, "dpFastRepair"),
	}
	if !isPitServicesEmpty(req) {
		p.Requested = req
	}

	if isPitEmpty(p) {
		return nil
	}
	return p
}

func isPitServicesEmpty(r *telemetry.PitServices) bool {
	return r.FuelToAdd == nil && r.ChangeFL == nil && r.ChangeFR == nil && r.ChangeRL == nil &&
		r.ChangeRR == nil && r.TearOff == nil && r.FastRepair == nil &&
		r.ColdPressureFL == nil && r.ColdPressureFR == nil && r.ColdPressureRL == nil && r.ColdPressureRR == nil
}

func isPitEmpty(p *telemetry.Pit) bool {
	return p.OnPitRoad == nil && p.PitActive == nil && p.ServiceStatus == nil &&
		p.MandatoryRepairTime == nil && p.OptionalRepairTime == nil &&
		p.FastRepairAvailable == nil && p.FastRepairUsed == nil &&
		p.PitSpeedLimit == nil && p.Requested == nil
}

func normalizeElectronics(g *getter) *telemetry.Electronics {
	e := &telemetry.Electronics{
		Abs:       optBool(g, "dcABS"),
		BrakeBias: optPercentage(g, "dcBrakeBias"),
	}
	if status, ok := g.boolean("PushToPass"); ok {
		e.PushToPassStatus = &status
	}
	if isElectronicsEmpty(e) {
		return nil
	}
	return e
}

func isElectronicsEmpty(e *telemetry.Electronics) bool {
	return e.Abs == nil && e.Tc1 == nil && e.Tc2 == nil && e.BrakeBias == nil &&
		e.FrontArb == nil && e.RearArb == nil && e.Drs == nil &&
		e.PushToPassStatus == nil && e.PushToPassCount == nil && e.ThrottleShape == nil
}

func normalizeDamage(g *getter) *telemetry.Damage {
	d := &telemetry.Damage{}
	if isDamageEmpty(d) {
		return nil
	}
	return d
}

func isDamageEmpty(d *telemetry.Damage) bool {
	return d.Front == nil && d.Rear == nil && d.Left == nil && d.Right == nil &&
		d.Engine == nil && d.Transmission == nil
}

func normalizeDriver(g *getter, session ibt.SessionInfo) *telemetry.Driver {
	d := &telemetry.Driver{
		ShiftLightFirstRpm: optUnit[unit.Rpm](g, "DriverCarSLFirstRPM"),
		ShiftLightLastRpm:  optUnit[unit.Rpm](g, "DriverCarSLLastRPM"),
	}
	if session.UserName != "" {
		name := session.UserName
		d.Name = &name
	}
	idx := session.DriverCarIdx
	d.CarIndex = &idx
	if session.CarScreenName != "" {
		car := session.CarScreenName
		d.CarName = &car
	}

	if isDriverEmpty(d) {
		return nil
	}
	return d
}

func isDriverEmpty(d *telemetry.Driver) bool {
	return d.Name == nil && d.CarIndex == nil && d.CarName == nil && d.CarClass == nil &&
		d.CarNumber == nil && d.TeamName == nil && d.FuelCapacity == nil &&
		d.ShiftLightFirstRpm == nil && d.ShiftLightLastRpm == nil &&
		d.EstimatedLapTime == nil && d.SetupName == nil
}
