package normalize

import (
	"strconv"
	"strings"

	"github.com/racetelem/ibtstream/internal/telemetry"
)

// surfaceFromCode classifies a raw surface code per spec.md §4.3.
func surfaceFromCode(code int32) telemetry.Surface {
	switch {
	case code == -1:
		return telemetry.SurfaceNotInWorld
	case code == 0:
		return telemetry.SurfaceUndefined
	case code >= 1 && code <= 4:
		return telemetry.SurfaceAsphalt
	case code >= 6 && code <= 7:
		return telemetry.SurfaceConcrete
	case code >= 8 && code <= 9:
		return telemetry.SurfaceRacingDirt
	case code >= 10 && code <= 11:
		return telemetry.SurfacePaint
	case code >= 12 && code <= 15:
		return telemetry.SurfaceRumble
	case code >= 16 && code <= 19:
		return telemetry.SurfaceGrass
	case code >= 20 && code <= 23:
		return telemetry.SurfaceDirt
	case code == 24:
		return telemetry.SurfaceSand
	case code >= 25 && code <= 28:
		return telemetry.SurfaceGravel
	case code == 29:
		return telemetry.SurfaceGrasscrete
	case code == 30:
		return telemetry.SurfaceAstroturf
	default:
		return telemetry.SurfaceUnknown
	}
}

// engineWarningsFromBits decodes the engine-warning bitfield, spec.md §4.3.
func engineWarningsFromBits(bits uint32) telemetry.EngineWarnings {
	return telemetry.EngineWarnings{
		WaterTempHigh:   bits&(1<<0) != 0,
		FuelPressureLow: bits&(1<<1) != 0,
		OilPressureLow:  bits&(1<<2) != 0,
		EngineStalled:   bits&(1<<3) != 0,
		PitSpeedLimiter: bits&(1<<4) != 0,
		RevLimiter:      bits&(1<<5) != 0,
	}
}

// flagsFromBits decodes the session flag-state bitfield, spec.md §4.3.
func flagsFromBits(bits uint32) telemetry.Flags {
	has := func(bit uint) bool { return bits&(1<<bit) != 0 }
	return telemetry.Flags{
		Checkered:     has(0),
		White:         has(1),
		Green:         has(2),
		Yellow:        has(3),
		Red:           has(4),
		Blue:          has(5),
		Debris:        has(6),
		Crossed:       has(7),
		YellowWaving:  has(8),
		OneLapToGreen: has(9),
		GreenHeld:     has(10),
		TenToGo:       has(11),
		FiveToGo:      has(12),
		Caution:       has(14),
		CautionWaving: has(15),
		Black:         has(16),
		Disqualified:  has(17),
		CanService:    has(18),
		Furled:        has(19),
		Repair:        has(20),
		StartHidden:   has(21),
		StartReady:    has(22),
		StartSet:      has(23),
		StartGo:       has(24),
	}
}

// sessionStateFromCode classifies the session-state code, spec.md §4.3.
func sessionStateFromCode(code int32) telemetry.SessionState {
	switch code {
	case 1:
		return telemetry.SessionStateGetInCar
	case 2:
		return telemetry.SessionStateWarmup
	case 3:
		return telemetry.SessionStateParadeLaps
	case 4:
		return telemetry.SessionStateRacing
	case 5:
		return telemetry.SessionStateCheckered
	case 6:
		return telemetry.SessionStateCooldown
	default:
		return telemetry.SessionStateInvalid
	}
}

// sessionTypeFromString classifies a free-text session type, spec.md
// §4.3: lowercased substring match, in order, first match wins.
func sessionTypeFromString(raw string) (telemetry.SessionType, bool) {
	if raw == "" {
		return "", false
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "race"):
		return telemetry.SessionTypeRace, true
	case strings.Contains(lower, "qualify"), strings.Contains(lower, "qual"):
		return telemetry.SessionTypeQualifying, true
	case strings.Contains(lower, "practice"):
		return telemetry.SessionTypePractice, true
	case strings.Contains(lower, "time trial"), strings.Contains(lower, "timetrial"):
		return telemetry.SessionTypeTimeTrial, true
	case strings.Contains(lower, "hotlap"):
		return telemetry.SessionTypeHotlap, true
	case strings.Contains(lower, "warmup"), strings.Contains(lower, "warm up"):
		return telemetry.SessionTypeWarmup, true
	default:
		return telemetry.SessionTypeOther, true
	}
}

// trackLengthMeters parses "<number> km", accepting a comma decimal
// separator, and converts to meters. Invalid input yields 0, false.
func trackLengthMeters(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "km")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false
	}
	km, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return km * 1000, true
}
