package mask

import "github.com/racetelem/ibtstream/internal/telemetry"

// includeField copies in into *out when in is non-nil and the mask
// includes path. Used to build partial-section projections from an
// explicit, fixed list of field paths per spec.md §9 ("a fixed list of
// sections, not a reflective walk").
func includeField[T any](m *Mask, path string, in *T, out **T) {
	if in != nil && m.Includes(path) {
		*out = in
	}
}

// Project returns a copy of f containing only the header (always) plus
// the top-level sections the mask includes and that are populated in f,
// per spec.md §4.1's serialization contract. For motion, vehicle, engine,
// timing and session, a section that is included only because a child
// path was requested (not the bare section name) gets only the requested
// child fields copied — see §8 scenario S8. The remaining sections
// (wheels, weather, pit, electronics, damage, competitors, driver, extras)
// are copied whole whenever the mask includes them, child path or not.
func Project(f *telemetry.Frame, m *Mask) *telemetry.Frame {
	if f == nil {
		return nil
	}
	if m.IsAll() {
		return f
	}

	out := &telemetry.Frame{Header: f.Header}

	if f.Motion != nil && m.Includes("motion") {
		if m.HasExact("motion") {
			out.Motion = f.Motion
		} else {
			out.Motion = projectMotion(f.Motion, m)
		}
	}
	if f.Vehicle != nil && m.Includes("vehicle") {
		if m.HasExact("vehicle") {
			out.Vehicle = f.Vehicle
		} else {
			out.Vehicle = projectVehicle(f.Vehicle, m)
		}
	}
	if f.Engine != nil && m.Includes("engine") {
		if m.HasExact("engine") {
			out.Engine = f.Engine
		} else {
			out.Engine = projectEngine(f.Engine, m)
		}
	}
	if f.Wheels != nil && m.Includes("wheels") {
		out.Wheels = f.Wheels
	}
	if f.Timing != nil && m.Includes("timing") {
		if m.HasExact("timing") {
			out.Timing = f.Timing
		} else {
			out.Timing = projectTiming(f.Timing, m)
		}
	}
	if f.Session != nil && m.Includes("session") {
		if m.HasExact("session") {
			out.Session = f.Session
		} else {
			out.Session = projectSession(f.Session, m)
		}
	}
	if f.Weather != nil && m.Includes("weather") {
		out.Weather = f.Weather
	}
	if f.Pit != nil && m.Includes("pit") {
		out.Pit = f.Pit
	}
	if f.Electronics != nil && m.Includes("electronics") {
		out.Electronics = f.Electronics
	}
	if f.Damage != nil && m.Includes("damage") {
		out.Damage = f.Damage
	}
	if len(f.Competitors) > 0 && m.Includes("competitors") {
		out.Competitors = f.Competitors
	}
	if f.Driver != nil && m.Includes("driver") {
		out.Driver = f.Driver
	}
	if len(f.Extras) > 0 && m.Includes("extras") {
		out.Extras = f.Extras
	}

	return out
}

func projectMotion(in *telemetry.Motion, m *Mask) *telemetry.Motion {
	out := &telemetry.Motion{}
	includeField(m, "motion.position", in.Position, &out.Position)
	includeField(m, "motion.velocity", in.Velocity, &out.Velocity)
	includeField(m, "motion.acceleration", in.Acceleration, &out.Acceleration)
	includeField(m, "motion.g_force", in.GForce, &out.GForce)
	includeField(m, "motion.rotation", in.Rotation, &out.Rotation)
	includeField(m, "motion.angular_velocity", in.AngularVelocity, &out.AngularVelocity)
	includeField(m, "motion.angular_acceleration", in.AngularAcceleration, &out.AngularAcceleration)
	return out
}

func projectVehicle(in *telemetry.Vehicle, m *Mask) *telemetry.Vehicle {
	out := &telemetry.Vehicle{}
	includeField(m, "vehicle.speed", in.Speed, &out.Speed)
	includeField(m, "vehicle.rpm", in.Rpm, &out.Rpm)
	includeField(m, "vehicle.redline_rpm", in.RedlineRpm, &out.RedlineRpm)
	includeField(m, "vehicle.idle_rpm", in.IdleRpm, &out.IdleRpm)
	includeField(m, "vehicle.gear", in.Gear, &out.Gear)
	includeField(m, "vehicle.max_gears", in.MaxGears, &out.MaxGears)
	includeField(m, "vehicle.throttle", in.Throttle, &out.Throttle)
	includeField(m, "vehicle.brake", in.Brake, &out.Brake)
	includeField(m, "vehicle.clutch", in.Clutch, &out.Clutch)
	includeField(m, "vehicle.steering_angle", in.SteeringAngle, &out.SteeringAngle)
	includeField(m, "vehicle.steering_torque", in.SteeringTorque, &out.SteeringTorque)
	includeField(m, "vehicle.steering_torque_pct", in.SteeringTorquePct, &out.SteeringTorquePct)
	includeField(m, "vehicle.handbrake", in.Handbrake, &out.Handbrake)
	includeField(m, "vehicle.on_track", in.OnTrack, &out.OnTrack)
	includeField(m, "vehicle.in_garage", in.InGarage, &out.InGarage)
	includeField(m, "vehicle.surface", in.Surface, &out.Surface)
	return out
}

func projectEngine(in *telemetry.Engine, m *Mask) *telemetry.Engine {
	out := &telemetry.Engine{}
	includeField(m, "engine.water_temp", in.WaterTemp, &out.WaterTemp)
	includeField(m, "engine.oil_temp", in.OilTemp, &out.OilTemp)
	includeField(m, "engine.oil_pressure", in.OilPressure, &out.OilPressure)
	includeField(m, "engine.oil_level", in.OilLevel, &out.OilLevel)
	includeField(m, "engine.fuel_level", in.FuelLevel, &out.FuelLevel)
	includeField(m, "engine.fuel_level_pct", in.FuelLevelPct, &out.FuelLevelPct)
	includeField(m, "engine.fuel_capacity", in.FuelCapacity, &out.FuelCapacity)
	includeField(m, "engine.fuel_pressure", in.FuelPressure, &out.FuelPressure)
	includeField(m, "engine.fuel_use_per_hour", in.FuelUsePerHour, &out.FuelUsePerHour)
	includeField(m, "engine.voltage", in.Voltage, &out.Voltage)
	includeField(m, "engine.manifold_pressure", in.ManifoldPressure, &out.ManifoldPressure)
	includeField(m, "engine.warnings", in.Warnings, &out.Warnings)
	return out
}

func projectTiming(in *telemetry.Timing, m *Mask) *telemetry.Timing {
	out := &telemetry.Timing{}
	includeField(m, "timing.current_lap_time", in.CurrentLapTime, &out.CurrentLapTime)
	includeField(m, "timing.last_lap_time", in.LastLapTime, &out.LastLapTime)
	includeField(m, "timing.best_lap_time", in.BestLapTime, &out.BestLapTime)
	includeField(m, "timing.best_n_lap_time", in.BestNLapTime, &out.BestNLapTime)
	includeField(m, "timing.best_n_lap_number", in.BestNLapNumber, &out.BestNLapNumber)
	if in.SectorTimes != nil && m.Includes("timing.sector_times") {
		out.SectorTimes = in.SectorTimes
	}
	includeField(m, "timing.lap_number", in.LapNumber, &out.LapNumber)
	includeField(m, "timing.laps_completed", in.LapsCompleted, &out.LapsCompleted)
	includeField(m, "timing.lap_distance", in.LapDistance, &out.LapDistance)
	includeField(m, "timing.lap_distance_pct", in.LapDistancePct, &out.LapDistancePct)
	includeField(m, "timing.race_position", in.RacePosition, &out.RacePosition)
	includeField(m, "timing.class_position", in.ClassPosition, &out.ClassPosition)
	includeField(m, "timing.car_count", in.CarCount, &out.CarCount)
	includeField(m, "timing.delta_to_best", in.DeltaToBest, &out.DeltaToBest)
	includeField(m, "timing.delta_to_session_best", in.DeltaToSessionBest, &out.DeltaToSessionBest)
	includeField(m, "timing.delta_to_optimal", in.DeltaToOptimal, &out.DeltaToOptimal)
	includeField(m, "timing.estimated_lap_time", in.EstimatedLapTime, &out.EstimatedLapTime)
	includeField(m, "timing.race_laps", in.RaceLaps, &out.RaceLaps)
	return out
}

func projectSession(in *telemetry.Session, m *Mask) *telemetry.Session {
	out := &telemetry.Session{}
	includeField(m, "session.type", in.Type, &out.Type)
	includeField(m, "session.state", in.State, &out.State)
	includeField(m, "session.elapsed", in.Elapsed, &out.Elapsed)
	includeField(m, "session.remaining", in.Remaining, &out.Remaining)
	includeField(m, "session.time_of_day", in.TimeOfDay, &out.TimeOfDay)
	includeField(m, "session.lap_count", in.LapCount, &out.LapCount)
	includeField(m, "session.laps_remaining", in.LapsRemaining, &out.LapsRemaining)
	includeField(m, "session.flags", in.Flags, &out.Flags)
	includeField(m, "session.track_name", in.TrackName, &out.TrackName)
	includeField(m, "session.track_config", in.TrackConfig, &out.TrackConfig)
	includeField(m, "session.track_length", in.TrackLength, &out.TrackLength)
	includeField(m, "session.track_type", in.TrackType, &out.TrackType)
	includeField(m, "session.car_name", in.CarName, &out.CarName)
	includeField(m, "session.car_class", in.CarClass, &out.CarClass)
	return out
}
