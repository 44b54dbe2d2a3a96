// Package telemetry defines the normalized, unit-tagged domain model that
// the IBT normalizer and live source adapters both produce, and that the
// bus and mask operate on. Every section is a pointer: a nil section means
// the originating source never provided that data, matching spec.md §3.1's
// "a populated section contains only fields the source provided; missing
// fields are absent (not zero)" invariant. Struct and doc-comment style
// mirrors PsybeDev-tracktic/sims/simulator_connector.go's TelemetryData.
package telemetry

import (
	"time"

	"github.com/racetelem/ibtstream/internal/unit"
)

// Frame is one normalized snapshot of vehicle and session state at a
// single sample index (replay) or poll tick (live).
type Frame struct {
	Header

	Motion       *Motion       `json:"motion,omitempty"`
	Vehicle      *Vehicle      `json:"vehicle,omitempty"`
	Engine       *Engine       `json:"engine,omitempty"`
	Wheels       *Wheels       `json:"wheels,omitempty"`
	Timing       *Timing       `json:"timing,omitempty"`
	Session      *Session      `json:"session,omitempty"`
	Weather      *Weather      `json:"weather,omitempty"`
	Pit          *Pit          `json:"pit,omitempty"`
	Electronics  *Electronics  `json:"electronics,omitempty"`
	Damage       *Damage       `json:"damage,omitempty"`
	Competitors  []Competitor  `json:"competitors,omitempty"`
	Driver       *Driver       `json:"driver,omitempty"`

	// Extras holds every raw variable the source exposed that isn't
	// consumed by a named section above, keyed "<source>/<name>" per
	// spec.md §3.1. Values are already JSON-shaped: a float64, int64,
	// string or bool scalar, or a homogeneous slice of float64, int32,
	// uint32 or bool.
	Extras map[string]any `json:"extras,omitempty"`
}

// Header is always emitted regardless of mask, per spec.md §4.1.
type Header struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"game"`
	Tick      *uint64   `json:"tick,omitempty"`
}

// Vec3 aliases follow the unit package's generic Vector3.
type (
	MetersVec           = unit.Vector3[unit.Meters]
	VelocityVec         = unit.Vector3[unit.MetersPerSecond]
	AccelVec            = unit.Vector3[unit.MetersPerSecondSquared]
	GForceVec           = unit.Vector3[unit.GForce]
	RadiansVec          = unit.Vector3[unit.Radians]
	AngularVelocityVec  = unit.Vector3[unit.RadiansPerSecond]
	AngularAccelVec     = unit.Vector3[unit.RadiansPerSecondSquared]
)

// Motion carries position/velocity/acceleration/rotation vectors.
type Motion struct {
	Position             *MetersVec          `json:"position,omitempty"`
	Velocity             *VelocityVec        `json:"velocity,omitempty"`
	Acceleration         *AccelVec           `json:"acceleration,omitempty"`
	GForce               *GForceVec          `json:"g_force,omitempty"`
	Rotation             *RadiansVec         `json:"rotation,omitempty"`
	AngularVelocity      *AngularVelocityVec `json:"angular_velocity,omitempty"`
	AngularAcceleration  *AngularAccelVec    `json:"angular_acceleration,omitempty"`
}

// Surface classifies the track surface a wheel or car sits on, per the
// surface-code table in spec.md §4.3.
type Surface string

const (
	SurfaceNotInWorld Surface = "not_in_world"
	SurfaceUndefined  Surface = "undefined"
	SurfaceAsphalt    Surface = "asphalt"
	SurfaceConcrete   Surface = "concrete"
	SurfaceRacingDirt Surface = "racing_dirt"
	SurfacePaint      Surface = "paint"
	SurfaceRumble     Surface = "rumble"
	SurfaceGrass      Surface = "grass"
	SurfaceDirt       Surface = "dirt"
	SurfaceSand       Surface = "sand"
	SurfaceGravel     Surface = "gravel"
	SurfaceGrasscrete Surface = "grasscrete"
	SurfaceAstroturf  Surface = "astroturf"
	SurfaceUnknown    Surface = "unknown"
)

// EngineWarnings is the decoded engine-warning bitfield, per spec.md §4.3.
type EngineWarnings struct {
	WaterTempHigh  bool `json:"water_temp_high"`
	FuelPressureLow bool `json:"fuel_pressure_low"`
	OilPressureLow bool `json:"oil_pressure_low"`
	EngineStalled  bool `json:"engine_stalled"`
	PitSpeedLimiter bool `json:"pit_speed_limiter"`
	RevLimiter     bool `json:"rev_limiter"`
}

// Vehicle carries engine-adjacent controls and drivetrain state.
type Vehicle struct {
	Speed          *unit.MetersPerSecond `json:"speed,omitempty"`
	Rpm            *unit.Rpm             `json:"rpm,omitempty"`
	RedlineRpm     *unit.Rpm             `json:"redline_rpm,omitempty"`
	IdleRpm        *unit.Rpm             `json:"idle_rpm,omitempty"`
	Gear           *int8                 `json:"gear,omitempty"`
	MaxGears       *int                  `json:"max_gears,omitempty"`
	Throttle       *unit.Percentage      `json:"throttle,omitempty"`
	Brake          *unit.Percentage      `json:"brake,omitempty"`
	Clutch         *unit.Percentage      `json:"clutch,omitempty"`
	SteeringAngle  *unit.Radians         `json:"steering_angle,omitempty"`
	SteeringTorque *unit.NewtonMeters    `json:"steering_torque,omitempty"`
	SteeringTorquePct *unit.Percentage   `json:"steering_torque_pct,omitempty"`
	Handbrake      *bool                 `json:"handbrake,omitempty"`
	OnTrack        *bool                 `json:"on_track,omitempty"`
	InGarage       *bool                 `json:"in_garage,omitempty"`
	Surface        *Surface              `json:"surface,omitempty"`
}

// Engine carries powerplant vitals.
type Engine struct {
	WaterTemp      *unit.Celsius       `json:"water_temp,omitempty"`
	OilTemp        *unit.Celsius       `json:"oil_temp,omitempty"`
	OilPressure    *unit.Kilopascals   `json:"oil_pressure,omitempty"`
	OilLevel       *unit.Percentage    `json:"oil_level,omitempty"`
	FuelLevel      *unit.Liters        `json:"fuel_level,omitempty"`
	FuelLevelPct   *unit.Percentage    `json:"fuel_level_pct,omitempty"`
	FuelCapacity   *unit.Liters        `json:"fuel_capacity,omitempty"`
	FuelPressure   *unit.Kilopascals   `json:"fuel_pressure,omitempty"`
	FuelUsePerHour *unit.LitersPerHour `json:"fuel_use_per_hour,omitempty"`
	Voltage        *unit.Volts         `json:"voltage,omitempty"`
	ManifoldPressure *unit.Bar         `json:"manifold_pressure,omitempty"`
	Warnings       *EngineWarnings     `json:"warnings,omitempty"`
}

// WheelCorner is the per-corner telemetry present at each of the four
// wheel positions.
type WheelCorner struct {
	SuspensionTravel    *unit.Meters        `json:"suspension_travel,omitempty"`
	SuspensionTravelAvg *unit.Meters        `json:"suspension_travel_avg,omitempty"`
	ShockVelocity       *unit.MetersPerSecond `json:"shock_velocity,omitempty"`
	ShockVelocityAvg    *unit.MetersPerSecond `json:"shock_velocity_avg,omitempty"`
	RideHeight          *unit.Meters        `json:"ride_height,omitempty"`
	Pressure            *unit.Kilopascals   `json:"pressure,omitempty"`
	ColdPressure        *unit.Kilopascals   `json:"cold_pressure,omitempty"`
	TempInner           *unit.Celsius       `json:"temp_inner,omitempty"`
	TempMiddle          *unit.Celsius       `json:"temp_middle,omitempty"`
	TempOuter           *unit.Celsius       `json:"temp_outer,omitempty"`
	CarcassTempInner    *unit.Celsius       `json:"carcass_temp_inner,omitempty"`
	CarcassTempMiddle   *unit.Celsius       `json:"carcass_temp_middle,omitempty"`
	CarcassTempOuter    *unit.Celsius       `json:"carcass_temp_outer,omitempty"`
	Wear                *unit.Percentage    `json:"wear,omitempty"`
	AngularSpeed        *unit.RadiansPerSecond `json:"angular_speed,omitempty"`
	SlipRatio           *float64            `json:"slip_ratio,omitempty"`
	SlipAngle           *unit.Radians       `json:"slip_angle,omitempty"`
	Load                *unit.Kilopascals   `json:"load,omitempty"`
	BrakeLinePressure   *unit.Kilopascals   `json:"brake_line_pressure,omitempty"`
	BrakeTemp           *unit.Celsius       `json:"brake_temp,omitempty"`
	Compound            *string             `json:"compound,omitempty"`
}

// Wheels carries all four corners.
type Wheels struct {
	FrontLeft  *WheelCorner `json:"fl,omitempty"`
	FrontRight *WheelCorner `json:"fr,omitempty"`
	RearLeft   *WheelCorner `json:"rl,omitempty"`
	RearRight  *WheelCorner `json:"rr,omitempty"`
}

// DeltaTime pairs a delta value with a validity flag, per spec.md §3.1.
type DeltaTime struct {
	Seconds unit.Seconds `json:"seconds"`
	Valid   bool         `json:"valid"`
}

// Timing carries lap and session timing data.
type Timing struct {
	CurrentLapTime  *unit.Seconds `json:"current_lap_time,omitempty"`
	LastLapTime     *unit.Seconds `json:"last_lap_time,omitempty"`
	BestLapTime     *unit.Seconds `json:"best_lap_time,omitempty"`
	BestNLapTime    *unit.Seconds `json:"best_n_lap_time,omitempty"`
	BestNLapNumber  *int          `json:"best_n_lap_number,omitempty"`
	SectorTimes     []unit.Seconds `json:"sector_times,omitempty"`
	LapNumber       *int          `json:"lap_number,omitempty"`
	LapsCompleted   *int          `json:"laps_completed,omitempty"`
	LapDistance     *unit.Meters  `json:"lap_distance,omitempty"`
	LapDistancePct  *unit.Percentage `json:"lap_distance_pct,omitempty"`
	RacePosition    *int          `json:"race_position,omitempty"`
	ClassPosition   *int          `json:"class_position,omitempty"`
	CarCount        *int          `json:"car_count,omitempty"`
	DeltaToBest     *DeltaTime    `json:"delta_to_best,omitempty"`
	DeltaToSessionBest *DeltaTime `json:"delta_to_session_best,omitempty"`
	DeltaToOptimal  *DeltaTime    `json:"delta_to_optimal,omitempty"`
	EstimatedLapTime *unit.Seconds `json:"estimated_lap_time,omitempty"`
	RaceLaps        *int          `json:"race_laps,omitempty"`
}

// SessionType classifies the kind of session, per spec.md §4.3's
// session-type string table.
type SessionType string

const (
	SessionTypePractice   SessionType = "practice"
	SessionTypeQualifying SessionType = "qualifying"
	SessionTypeRace       SessionType = "race"
	SessionTypeHotlap     SessionType = "hotlap"
	SessionTypeTimeTrial  SessionType = "time_trial"
	SessionTypeDrift      SessionType = "drift"
	SessionTypeWarmup     SessionType = "warmup"
	SessionTypeOther      SessionType = "other"
)

// SessionState classifies the session's current phase, per spec.md §4.3's
// session-state code table.
type SessionState string

const (
	SessionStateInvalid    SessionState = "invalid"
	SessionStateGetInCar   SessionState = "get_in_car"
	SessionStateWarmup     SessionState = "warmup"
	SessionStateParadeLaps SessionState = "parade_laps"
	SessionStateRacing     SessionState = "racing"
	SessionStateCheckered  SessionState = "checkered"
	SessionStateCooldown   SessionState = "cooldown"
)

// Flags is the decoded flag-state bitfield from spec.md §4.3.
type Flags struct {
	Green          bool `json:"green"`
	Yellow         bool `json:"yellow"`
	YellowWaving   bool `json:"yellow_waving"`
	Caution        bool `json:"caution"`
	CautionWaving  bool `json:"caution_waving"`
	Red            bool `json:"red"`
	Blue           bool `json:"blue"`
	White          bool `json:"white"`
	Checkered      bool `json:"checkered"`
	Black          bool `json:"black"`
	Disqualified   bool `json:"disqualified"`
	Debris         bool `json:"debris"`
	Crossed        bool `json:"crossed"`
	OneLapToGreen  bool `json:"one_lap_to_green"`
	GreenHeld      bool `json:"green_held"`
	TenToGo        bool `json:"ten_to_go"`
	FiveToGo       bool `json:"five_to_go"`
	CanService     bool `json:"can_service"`
	Furled         bool `json:"furled"`
	Repair         bool `json:"repair"`
	StartHidden    bool `json:"start_hidden"`
	StartReady     bool `json:"start_ready"`
	StartSet       bool `json:"start_set"`
	StartGo        bool `json:"start_go"`
}

// Session carries session-scoped metadata, not per-car state.
type Session struct {
	Type            *SessionType  `json:"type,omitempty"`
	State           *SessionState `json:"state,omitempty"`
	Elapsed         *unit.Seconds `json:"elapsed,omitempty"`
	Remaining       *unit.Seconds `json:"remaining,omitempty"`
	TimeOfDay       *unit.Seconds `json:"time_of_day,omitempty"`
	LapCount        *int          `json:"lap_count,omitempty"`
	LapsRemaining   *int          `json:"laps_remaining,omitempty"`
	Flags           *Flags        `json:"flags,omitempty"`
	TrackName       *string       `json:"track_name,omitempty"`
	TrackConfig     *string       `json:"track_config,omitempty"`
	TrackLength     *unit.Meters  `json:"track_length,omitempty"`
	TrackType       *string       `json:"track_type,omitempty"`
	CarName         *string       `json:"car_name,omitempty"`
	CarClass        *string       `json:"car_class,omitempty"`
}

// Wetness classifies track wetness, per spec.md §3.1.
type Wetness string

const (
	WetnessDry          Wetness = "dry"
	WetnessSlightlyWet  Wetness = "slightly_wet"
	WetnessWet          Wetness = "wet"
	WetnessVeryWet      Wetness = "very_wet"
	WetnessFlooded      Wetness = "flooded"
	WetnessUnknown      Wetness = "unknown"
)

// Weather carries ambient conditions.
type Weather struct {
	AirTemp       *unit.Celsius              `json:"air_temp,omitempty"`
	TrackTemp     *unit.Celsius              `json:"track_temp,omitempty"`
	AirPressure   *unit.Pascals              `json:"air_pressure,omitempty"`
	AirDensity    *unit.KilogramsPerCubicMeter `json:"air_density,omitempty"`
	Humidity      *unit.Percentage           `json:"humidity,omitempty"`
	WindSpeed     *unit.MetersPerSecond      `json:"wind_speed,omitempty"`
	WindDirection *unit.Radians              `json:"wind_direction,omitempty"`
	Fog           *unit.Percentage           `json:"fog,omitempty"`
	Precipitation *unit.Percentage           `json:"precipitation,omitempty"`
	Wetness       *Wetness                   `json:"wetness,omitempty"`
	Sky           *string                    `json:"sky,omitempty"`
	DeclaredWet   *bool                      `json:"declared_wet,omitempty"`
}

// PitServices is the set of services requested for the next pit stop.
type PitServices struct {
	FuelToAdd       *unit.Liters `json:"fuel_to_add,omitempty"`
	ChangeFL        *bool        `json:"change_fl,omitempty"`
	ChangeFR        *bool        `json:"change_fr,omitempty"`
	ChangeRL        *bool        `json:"change_rl,omitempty"`
	ChangeRR        *bool        `json:"change_rr,omitempty"`
	TearOff         *bool        `json:"tear_off,omitempty"`
	FastRepair      *bool        `json:"fast_repair,omitempty"`
	ColdPressureFL  *unit.Kilopascals `json:"cold_pressure_fl,omitempty"`
	ColdPressureFR  *unit.Kilopascals `json:"cold_pressure_fr,omitempty"`
	ColdPressureRL  *unit.Kilopascals `json:"cold_pressure_rl,omitempty"`
	ColdPressureRR  *unit.Kilopascals `json:"cold_pressure_rr,omitempty"`
}

// Pit carries pit-road and pit-service state.
type Pit struct {
	OnPitRoad            *bool        `json:"on_pit_road,omitempty"`
	PitActive            *bool        `json:"pit_active,omitempty"`
	ServiceStatus        *int         `json:"service_status,omitempty"`
	MandatoryRepairTime  *unit.Seconds `json:"mandatory_repair_time,omitempty"`
	OptionalRepairTime   *unit.Seconds `json:"optional_repair_time,omitempty"`
	FastRepairAvailable  *bool        `json:"fast_repair_available,omitempty"`
	FastRepairUsed       *bool        `json:"fast_repair_used,omitempty"`
	PitSpeedLimit        *unit.MetersPerSecond `json:"pit_speed_limit,omitempty"`
	Requested            *PitServices `json:"requested,omitempty"`
}

// Electronics carries driver-aid and aero-adjuster state.
type Electronics struct {
	Abs              *bool            `json:"abs,omitempty"`
	Tc1              *float64         `json:"tc1,omitempty"`
	Tc2              *float64         `json:"tc2,omitempty"`
	BrakeBias        *unit.Percentage `json:"brake_bias,omitempty"`
	FrontArb         *float64         `json:"front_arb,omitempty"`
	RearArb          *float64         `json:"rear_arb,omitempty"`
	Drs              *string          `json:"drs,omitempty"`
	PushToPassStatus *bool            `json:"push_to_pass_status,omitempty"`
	PushToPassCount  *int             `json:"push_to_pass_count,omitempty"`
	ThrottleShape    *int             `json:"throttle_shape,omitempty"`
}

// Damage carries aggregate per-area damage percentages.
type Damage struct {
	Front        *unit.Percentage `json:"front,omitempty"`
	Rear         *unit.Percentage `json:"rear,omitempty"`
	Left         *unit.Percentage `json:"left,omitempty"`
	Right        *unit.Percentage `json:"right,omitempty"`
	Engine       *unit.Percentage `json:"engine,omitempty"`
	Transmission *unit.Percentage `json:"transmission,omitempty"`
}

// Competitor is one opponent's state, excluding the player car.
type Competitor struct {
	CarIndex        int      `json:"car_index"`
	DriverName      *string  `json:"driver_name,omitempty"`
	TeamName        *string  `json:"team_name,omitempty"`
	CarNumber       *string  `json:"car_number,omitempty"`
	CarName         *string  `json:"car_name,omitempty"`
	CarClass        *string  `json:"car_class,omitempty"`
	LapNumber       *int     `json:"lap_number,omitempty"`
	LapsCompleted   *int     `json:"laps_completed,omitempty"`
	LapDistancePct  *unit.Percentage `json:"lap_distance_pct,omitempty"`
	OverallPosition *int     `json:"overall_position,omitempty"`
	ClassPosition   *int     `json:"class_position,omitempty"`
	OnPitRoad       *bool    `json:"on_pit_road,omitempty"`
	Surface         *Surface `json:"surface,omitempty"`
	BestLapTime     *unit.Seconds `json:"best_lap_time,omitempty"`
	LastLapTime     *unit.Seconds `json:"last_lap_time,omitempty"`
	EstimatedLapTime *unit.Seconds `json:"estimated_lap_time,omitempty"`
	Gear            *int8    `json:"gear,omitempty"`
	Rpm             *unit.Rpm `json:"rpm,omitempty"`
	Steering        *unit.Radians `json:"steering,omitempty"`
}

// Driver carries player-specific metadata not tied to a single frame field.
type Driver struct {
	Name             *string   `json:"name,omitempty"`
	CarIndex         *int      `json:"car_index,omitempty"`
	CarName          *string   `json:"car_name,omitempty"`
	CarClass         *string   `json:"car_class,omitempty"`
	CarNumber        *string   `json:"car_number,omitempty"`
	TeamName         *string   `json:"team_name,omitempty"`
	FuelCapacity     *unit.Liters `json:"fuel_capacity,omitempty"`
	ShiftLightFirstRpm *unit.Rpm `json:"shift_light_first_rpm,omitempty"`
	ShiftLightLastRpm  *unit.Rpm `json:"shift_light_last_rpm,omitempty"`
	EstimatedLapTime *unit.Seconds `json:"estimated_lap_time,omitempty"`
	SetupName        *string   `json:"setup_name,omitempty"`
}
