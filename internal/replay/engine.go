// Package replay holds a parsed .ibt recording, a playback cursor, and a
// cancellable driver task that emits frames onto a bus at native rate
// times a configurable speed, per spec.md §4.4. Grounded almost directly
// on original_source/ost-server/src/replay.rs's ReplayState: the same
// field set, the same play/pause/seek/set_speed/advance verbs, and the
// same content-hash replay_id; the background driver loop and
// cancellation token follow PsybeDev-tracktic/strategy/manager.go's
// context.WithCancel + goroutine shape instead of a Tokio task.
package replay

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"sync"
	"time"

	"github.com/racetelem/ibtstream/internal/apierr"
	"github.com/racetelem/ibtstream/internal/ibt"
	"github.com/racetelem/ibtstream/internal/logx"
	"github.com/racetelem/ibtstream/internal/normalize"
	"github.com/racetelem/ibtstream/internal/telemetry"
)

const (
	minSpeed = 0.1
	maxSpeed = 16.0

	// maxRangeFrames caps get_frames_range to two minutes at 60 Hz, per
	// spec.md §4.4.
	maxRangeFrames = 7200

	pausedPollInterval = 50 * time.Millisecond
	minTickInterval    = time.Millisecond
)

// FramePublisher receives frames emitted by the driver. internal/bus's
// Bus satisfies this; accepting the interface here keeps replay free of
// a dependency on the bus's concrete type.
type FramePublisher interface {
	Publish(*telemetry.Frame)
}

// Info is the client-facing snapshot of an active replay, per spec.md §6's
// ReplayInfo shape.
type Info struct {
	TotalFrames    int       `json:"total_frames"`
	TickRate       int       `json:"tick_rate"`
	DurationSecs   float64   `json:"duration_secs"`
	CurrentFrame   int       `json:"current_frame"`
	Playing        bool      `json:"playing"`
	PlaybackSpeed  float64   `json:"playback_speed"`
	TrackName      string    `json:"track_name"`
	CarName        string    `json:"car_name"`
	FileSize       int64     `json:"file_size"`
	Laps           []LapInfo `json:"laps"`
	ReplayID       string    `json:"replay_id"`
}

// Engine owns one parsed recording for the lifetime of a replay session.
type Engine struct {
	mu sync.RWMutex

	rec      *ibt.Recording
	tempPath string
	source   string

	totalFrames  int
	tickRate     int
	durationSecs float64
	fileSize     int64
	trackName    string
	carName      string
	laps         []LapInfo
	replayID     string

	currentFrame int
	playing      bool
	speed        float64

	pub FramePublisher
	log *logx.Logger

	driverCancel context.CancelFunc
	driverDone   chan struct{}
}

// Open constructs an Engine from an .ibt file path. The engine takes
// ownership of the file at path: Close removes it, so callers that want
// the file preserved pass a copy.
func Open(path string, pub FramePublisher, source string, log *logx.Logger) (*Engine, error) {
	rec, err := ibt.Open(path)
	if err != nil {
		return nil, err
	}

	laps, err := buildLapIndex(rec)
	if err != nil {
		rec.Close()
		return nil, err
	}

	session := rec.SessionInfo()
	trackName := session.TrackDisplayName
	carName := session.CarScreenName
	totalFrames := rec.RecordCount()
	fileSize := rec.FileSize()

	e := &Engine{
		rec:          rec,
		tempPath:     path,
		source:       source,
		totalFrames:  totalFrames,
		tickRate:     rec.TickRate(),
		durationSecs: rec.DurationSecs(),
		fileSize:     fileSize,
		trackName:    trackName,
		carName:      carName,
		laps:         laps,
		replayID:     computeReplayID(fileSize, totalFrames, trackName, carName),
		currentFrame: 0,
		playing:      true,
		speed:        1.0,
		pub:          pub,
		log:          log,
	}
	return e, nil
}

func computeReplayID(fileSize int64, totalFrames int, trackName, carName string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%d|%s|%s", fileSize, totalFrames, trackName, carName)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Info returns a snapshot of the engine's current state.
func (e *Engine) Info() Info {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Info{
		TotalFrames:   e.totalFrames,
		TickRate:      e.tickRate,
		DurationSecs:  e.durationSecs,
		CurrentFrame:  e.currentFrame,
		Playing:       e.playing,
		PlaybackSpeed: e.speed,
		TrackName:     e.trackName,
		CarName:       e.carName,
		FileSize:      e.fileSize,
		Laps:          e.laps,
		ReplayID:      e.replayID,
	}
}

// Play marks the cursor as playing and (re)starts the driver task.
// Restarting play cancels any existing driver and replaces it, per
// spec.md §4.4.
func (e *Engine) Play() {
	e.mu.Lock()
	e.playing = true
	e.mu.Unlock()
	e.restartDriver()
}

// Pause clears the playing flag; the driver task keeps running but idles.
func (e *Engine) Pause() {
	e.mu.Lock()
	e.playing = false
	e.mu.Unlock()
}

// Seek clamps frame to [0, total_frames-1] and sets the cursor. Takes
// effect on the next emission.
func (e *Engine) Seek(frame int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentFrame = clampFrame(frame, e.totalFrames)
}

// SetSpeed clamps x to [0.1, 16.0].
func (e *Engine) SetSpeed(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = clampSpeed(x)
}

// GetFrame performs a parser read plus normalize for a single index.
func (e *Engine) GetFrame(i int) (*telemetry.Frame, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.getFrameLocked(i)
}

func (e *Engine) getFrameLocked(i int) (*telemetry.Frame, error) {
	sample, err := e.rec.ReadSample(i)
	if err != nil {
		return nil, err
	}
	tick := uint64(i)
	return normalize.Normalize(sample, e.rec.SessionInfo(), e.source, &tick), nil
}

// IndexedFrame pairs a frame with its originating sample index.
type IndexedFrame struct {
	Index int
	Frame *telemetry.Frame
}

// GetFramesRange clamps start and count (count capped at maxRangeFrames),
// issues one bulk parser call, and normalizes each sample.
func (e *Engine) GetFramesRange(start, count int) ([]IndexedFrame, error) {
	e.mu.RLock()
	total := e.totalFrames
	source := e.source
	e.mu.RUnlock()

	if total == 0 {
		return nil, nil
	}
	if start < 0 {
		start = 0
	}
	if start > total-1 {
		start = total - 1
	}
	if count > maxRangeFrames {
		count = maxRangeFrames
	}
	if count > total-start {
		count = total - start
	}
	if count <= 0 {
		return nil, nil
	}

	samples, err := e.rec.ReadSamplesRange(start, count)
	if err != nil {
		return nil, err
	}
	session := e.rec.SessionInfo()
	out := make([]IndexedFrame, len(samples))
	for i, s := range samples {
		idx := start + i
		tick := uint64(idx)
		out[i] = IndexedFrame{Index: idx, Frame: normalize.Normalize(s, session, source, &tick)}
	}
	return out, nil
}

// Advance moves the cursor forward one frame, or stops playback and
// returns false at the natural end of the recording (the "absent" result
// spec.md §4.4 describes). The driver task does not call this method:
// emitCurrentFrame reads the current frame and advances the cursor under
// one lock acquisition, and the driver publishes the frame after that
// lock is released.
func (e *Engine) Advance() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return 0, false
	}
	if e.currentFrame >= e.totalFrames-1 {
		e.playing = false
		return 0, false
	}
	e.currentFrame++
	return e.currentFrame, true
}

func clampFrame(frame, total int) int {
	if total <= 0 {
		return 0
	}
	if frame < 0 {
		return 0
	}
	if frame > total-1 {
		return total - 1
	}
	return frame
}

func clampSpeed(speed float64) float64 {
	switch {
	case speed < minSpeed:
		return minSpeed
	case speed > maxSpeed:
		return maxSpeed
	default:
		return speed
	}
}

// Close cancels the driver task, closes the parsed recording, and removes
// the temp file backing it, per spec.md §3.2's ownership note.
func (e *Engine) Close() error {
	e.stopDriver()

	e.mu.Lock()
	rec := e.rec
	path := e.tempPath
	e.mu.Unlock()

	err := rec.Close()
	if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
		if e.log != nil {
			e.log.Warnf("failed to remove temp replay file %s: %v", path, removeErr)
		}
	}
	if err != nil {
		return apierr.New(apierr.KindInternal, "replay.Close", err)
	}
	return nil
}
