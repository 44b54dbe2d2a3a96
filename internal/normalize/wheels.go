package normalize

import (
	"github.com/racetelem/ibtstream/internal/telemetry"
	"github.com/racetelem/ibtstream/internal/unit"
)

// wheelSide identifies which side of the car a corner sits on, since
// the inner/outer mapping in spec.md §4.3 is mirrored across the
// car's centerline.
type wheelSide int

const (
	sideLeft wheelSide = iota
	sideRight
)

func normalizeWheels(g *getter) *telemetry.Wheels {
	w := &telemetry.Wheels{
		FrontLeft:  normalizeCorner(g, "LF", sideLeft),
		FrontRight: normalizeCorner(g, "RF", sideRight),
		RearLeft:   normalizeCorner(g, "LR", sideLeft),
		RearRight:  normalizeCorner(g, "RR", sideRight),
	}
	if w.FrontLeft == nil && w.FrontRight == nil && w.RearLeft == nil && w.RearRight == nil {
		return nil
	}
	return w
}

// normalizeCorner maps one wheel's raw variables to a WheelCorner.
// Surface (tread) temperatures are exposed at three car-relative
// positions, CL/CC/CR; carcass temperatures reuse the same three
// readings, matching the only temperature source either original
// adapter exposes (ost-adapters/src/iracing.rs extract_wheel_data
// derives both its surface-average and its "inner" reading from the
// same CL/CC/CR triplet). For a left-side wheel, CL is the exterior
// reading and CR the interior (toward the car's centerline); for a
// right-side wheel this is reversed.
func normalizeCorner(g *getter, prefix string, side wheelSide) *telemetry.WheelCorner {
	cl, haveCL := g.f64(prefix + "tempCL")
	cc, haveCC := g.f64(prefix + "tempCC")
	cr, haveCR := g.f64(prefix + "tempCR")

	c := &telemetry.WheelCorner{
		SuspensionTravel:    optUnit[unit.Meters](g, prefix+"shockDefl"),
		SuspensionTravelAvg: optUnit[unit.Meters](g, prefix+"shockDeflST"),
		ShockVelocity:       optUnit[unit.MetersPerSecond](g, prefix+"shockVel"),
		ShockVelocityAvg:    optUnit[unit.MetersPerSecond](g, prefix+"shockVelST"),
		RideHeight:          optUnit[unit.Meters](g, prefix+"rideHeight"),
		Pressure:            optUnit[unit.Kilopascals](g, prefix+"airPressure"),
		ColdPressure:        optUnit[unit.Kilopascals](g, prefix+"coldPressure"),
		Wear:                optPercentage(g, prefix+"wear"),
		AngularSpeed:        optUnit[unit.RadiansPerSecond](g, prefix+"speed"),
		Load:                optUnit[unit.Kilopascals](g, prefix+"load"),
		BrakeLinePressure:   optUnit[unit.Kilopascals](g, prefix+"brakeLinePress"),
		BrakeTemp:           optUnit[unit.Celsius](g, prefix+"brakeTemp"),
	}

	if haveCL && haveCC && haveCR {
		inner, outer := cr, cl
		if side == sideRight {
			inner, outer = cl, cr
		}
		c.TempOuter = ptrCelsius(outer)
		c.TempMiddle = ptrCelsius(cc)
		c.TempInner = ptrCelsius(inner)
		c.CarcassTempOuter = ptrCelsius(outer)
		c.CarcassTempMiddle = ptrCelsius(cc)
		c.CarcassTempInner = ptrCelsius(inner)
	}

	if allNilCorner(c) {
		return nil
	}
	return c
}

func ptrCelsius(v float64) *unit.Celsius {
	c := unit.Celsius(v)
	return &c
}

func allNilCorner(c *telemetry.WheelCorner) bool {
	return c.SuspensionTravel == nil && c.SuspensionTravelAvg == nil &&
		c.ShockVelocity == nil && c.ShockVelocityAvg == nil &&
		c.RideHeight == nil && c.Pressure == nil && c.ColdPressure == nil &&
		c.TempInner == nil && c.TempMiddle == nil && c.TempOuter == nil &&
		c.CarcassTempInner == nil && c.CarcassTempMiddle == nil && c.CarcassTempOuter == nil &&
		c.Wear == nil && c.AngularSpeed == nil && c.SlipRatio == nil &&
		c.SlipAngle == nil && c.Load == nil && c.BrakeLinePressure == nil &&
		c.BrakeTemp == nil && c.Compound == nil
}
