package replay

import (
	"github.com/racetelem/ibtstream/internal/ibt"
)

// lapScanChunk bounds how many samples buildLapIndex reads in one
// positional call; recordings can run for hours, so the scan is chunked
// rather than reading record_count samples into memory at once.
const lapScanChunk = 4096

// lapRolloverEpsilon is how close to 0 a lap-distance fraction must be for
// a run's first sample to count as starting "at lap rollover".
const lapRolloverEpsilon = 0.01

// LapInfo describes one contiguous run of an unchanging lap number across
// the recording, per spec.md §4.4.
type LapInfo struct {
	Index        int     `json:"index"`
	StartFrame   int     `json:"start_frame"`
	EndFrame     int     `json:"end_frame"`
	DurationSecs float64 `json:"duration_secs"`
	Valid        bool    `json:"valid"`
}

// buildLapIndex scans the "Lap" variable across every recorded sample and
// groups contiguous runs of the same lap number into LapInfo entries.
func buildLapIndex(rec *ibt.Recording) ([]LapInfo, error) {
	total := rec.RecordCount()
	tickRate := rec.TickRate()
	if total == 0 || tickRate == 0 {
		return nil, nil
	}

	type run struct {
		lap        int32
		start, end int
		startPct   float64
		havePct    bool
	}

	var runs []run
	for start := 0; start < total; start += lapScanChunk {
		count := lapScanChunk
		samples, err := rec.ReadSamplesRange(start, count)
		if err != nil {
			return nil, err
		}
		for i, s := range samples {
			idx := start + i
			lapVal, ok := s["Lap"]
			if !ok {
				continue
			}
			lap, ok := lapVal.Int32()
			if !ok {
				continue
			}
			pct, havePct := 0.0, false
			if pv, ok := s["LapDistPct"]; ok {
				if f, ok := pv.Float64(); ok {
					pct, havePct = f, true
				}
			}
			if len(runs) > 0 && runs[len(runs)-1].lap == lap {
				runs[len(runs)-1].end = idx
				continue
			}
			runs = append(runs, run{lap: lap, start: idx, end: idx, startPct: pct, havePct: havePct})
		}
	}

	laps := make([]LapInfo, 0, len(runs))
	for i, r := range runs {
		valid := true
		if i == 0 || i == len(runs)-1 {
			valid = r.havePct && r.startPct <= lapRolloverEpsilon
		}
		laps = append(laps, LapInfo{
			Index:        i,
			StartFrame:   r.start,
			EndFrame:     r.end,
			DurationSecs: float64(r.end-r.start) / float64(tickRate),
			Valid:        valid,
		})
	}
	return laps, nil
}
