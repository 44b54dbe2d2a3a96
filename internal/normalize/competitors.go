package normalize

import (
	"github.com/racetelem/ibtstream/internal/telemetry"
	"github.com/racetelem/ibtstream/internal/unit"
)

// normalizeCompetitors builds the ordered competitor list, excluding
// the player's own car index and any entry with lap == -1 (not in
// session), per spec.md §3.1.
func normalizeCompetitors(g *getter, playerCarIdx int) []telemetry.Competitor {
	laps, ok := g.value("CarIdxLap")
	if !ok {
		return nil
	}
	lapArr, ok := laps.Int32Array()
	if !ok {
		return nil
	}

	lapCompleted, _ := arrayOrNil(g, "CarIdxLapCompleted")
	lapDistPct, _ := arrayOrNilF32(g, "CarIdxLapDistPct")
	position, _ := arrayOrNil(g, "CarIdxPosition")
	classPosition, _ := arrayOrNil(g, "CarIdxClassPosition")
	onPitRoad, _ := arrayOrNilBool(g, "CarIdxOnPitRoad")
	surface, _ := arrayOrNil(g, "CarIdxTrackSurface")
	bestLap, _ := arrayOrNilF32(g, "CarIdxBestLapTime")
	lastLap, _ := arrayOrNilF32(g, "CarIdxLastLapTime")
	estLap, _ := arrayOrNilF32(g, "CarIdxEstTime")
	gear, _ := arrayOrNil(g, "CarIdxGear")
	rpm, _ := arrayOrNilF32(g, "CarIdxRPM")
	steer, _ := arrayOrNilF32(g, "CarIdxSteer")

	var out []telemetry.Competitor
	for idx, lap := range lapArr {
		if idx == playerCarIdx || lap == -1 {
			continue
		}
		c := telemetry.Competitor{CarIndex: idx}
		c.LapNumber = intPtrFrom(lapArr, idx)
		c.LapsCompleted = intPtrFrom(lapCompleted, idx)
		c.LapDistancePct = percentPtrFrom(lapDistPct, idx)
		c.OverallPosition = intPtrFrom(position, idx)
		c.ClassPosition = intPtrFrom(classPosition, idx)
		c.OnPitRoad = boolPtrFrom(onPitRoad, idx)
		if s := intPtrFrom(surface, idx); s != nil {
			sf := surfaceFromCode(int32(*s))
			c.Surface = &sf
		}
		c.BestLapTime = secondsPtrFrom(bestLap, idx)
		c.LastLapTime = secondsPtrFrom(lastLap, idx)
		c.EstimatedLapTime = secondsPtrFrom(estLap, idx)
		if gv := intPtrFrom(gear, idx); gv != nil {
			g8 := int8(*gv)
			c.Gear = &g8
		}
		c.Rpm = rpmPtrFrom(rpm, idx)
		c.Steering = radiansPtrFrom(steer, idx)
		out = append(out, c)
	}
	return out
}

func arrayOrNil(g *getter, name string) ([]int32, bool) {
	v, ok := g.value(name)
	if !ok {
		return nil, false
	}
	return v.Int32Array()
}

func arrayOrNilF32(g *getter, name string) ([]float32, bool) {
	v, ok := g.value(name)
	if !ok {
		return nil, false
	}
	return v.Float32Array()
}

func arrayOrNilBool(g *getter, name string) ([]bool, bool) {
	v, ok := g.value(name)
	if !ok {
		return nil, false
	}
	return v.BoolArray()
}

func intPtrFrom(arr []int32, idx int) *int {
	if idx >= len(arr) {
		return nil
	}
	v := int(arr[idx])
	return &v
}

func boolPtrFrom(arr []bool, idx int) *bool {
	if idx >= len(arr) {
		return nil
	}
	v := arr[idx]
	return &v
}

func percentPtrFrom(arr []float32, idx int) *unit.Percentage {
	if idx >= len(arr) {
		return nil
	}
	p := unit.NewPercentage(float64(arr[idx]))
	return &p
}

func secondsPtrFrom(arr []float32, idx int) *unit.Seconds {
	if idx >= len(arr) {
		return nil
	}
	s := unit.Seconds(arr[idx])
	return &s
}

func rpmPtrFrom(arr []float32, idx int) *unit.Rpm {
	if idx >= len(arr) {
		return nil
	}
	r := unit.Rpm(arr[idx])
	return &r
}

func radiansPtrFrom(arr []float32, idx int) *unit.Radians {
	if idx >= len(arr) {
		return nil
	}
	r := unit.Radians(arr[idx])
	return &r
}
