// Package control is the thin, transport-agnostic façade spec.md §6
// describes: upload/info/frames-range/play/pause/seek/speed/delete over
// one active replay, plus bus subscription and adapter/sink CRUD. It owns
// no HTTP concerns — cmd/telemetryd wires these methods to routes.
// Grounded on original_source/ost-server/src/state.rs's AppState, which
// plays the same "one active replay + manager + bus" coordinator role.
package control

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/racetelem/ibtstream/internal/apierr"
	"github.com/racetelem/ibtstream/internal/bus"
	"github.com/racetelem/ibtstream/internal/logx"
	"github.com/racetelem/ibtstream/internal/mask"
	"github.com/racetelem/ibtstream/internal/replay"
	"github.com/racetelem/ibtstream/internal/source"
	"github.com/racetelem/ibtstream/internal/telemetry"
)

// FrameEntry pairs a sample index with its normalized, possibly projected
// frame, per spec.md §6's `{ i, f }` frames-range shape.
type FrameEntry struct {
	Index int              `json:"i"`
	Frame *telemetry.Frame `json:"f"`
}

// Surface coordinates the single active replay, the live source manager,
// and the bus. Replacing or dropping the active replay is serialized
// under mu; the engine itself has its own finer-grained locking.
type Surface struct {
	mu        sync.RWMutex
	engine    *replay.Engine
	uploadDir string
	maxBytes  int64

	bus     *bus.Bus
	sources *source.Manager
	log     *logx.Logger

	sinksMu sync.Mutex
	sinks   map[string]bus.SinkConfig
	nextID  int
}

// New builds a Surface. uploadDir is where incoming .ibt files are
// staged; maxBytes bounds the accepted upload size.
func New(b *bus.Bus, sources *source.Manager, log *logx.Logger, uploadDir string, maxBytes int64) *Surface {
	return &Surface{
		bus:       b,
		sources:   sources,
		log:       log,
		uploadDir: uploadDir,
		maxBytes:  maxBytes,
		sinks:     make(map[string]bus.SinkConfig),
	}
}

// ReplayActive reports whether a replay is currently loaded, satisfying
// internal/source's ReplayActiveFunc so the manager defers to replay
// frames over live ones per spec.md §4.6.
func (s *Surface) ReplayActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine != nil
}

// Upload accepts an .ibt file body, writes it into the process-owned
// upload directory, and constructs a new replay engine from it. Each HTTP
// request already runs on its own goroutine, so parsing here does not
// block any shared request-handling loop.
func (s *Surface) Upload(filename string, body io.Reader) (replay.Info, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".ibt") {
		return replay.Info{}, apierr.New(apierr.KindMalformedInput, "control.Upload", errNotIBT)
	}

	s.mu.Lock()
	if s.engine != nil {
		s.mu.Unlock()
		return replay.Info{}, apierr.New(apierr.KindConflict, "control.Upload", errAlreadyActive)
	}
	s.mu.Unlock()

	path, err := s.stageUpload(filename, body)
	if err != nil {
		return replay.Info{}, err
	}

	eng, err := replay.Open(path, s.bus, "ibt", s.log)
	if err != nil {
		os.Remove(path)
		return replay.Info{}, err
	}

	s.mu.Lock()
	if s.engine != nil {
		s.mu.Unlock()
		eng.Close()
		return replay.Info{}, apierr.New(apierr.KindConflict, "control.Upload", errAlreadyActive)
	}
	s.engine = eng
	s.mu.Unlock()

	eng.Play()
	return eng.Info(), nil
}

func (s *Surface) stageUpload(filename string, body io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", apierr.New(apierr.KindInternal, "control.stageUpload", err)
	}
	name := filepath.Base(filename)
	path := filepath.Join(s.uploadDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), name))

	f, err := os.Create(path)
	if err != nil {
		return "", apierr.New(apierr.KindInternal, "control.stageUpload", err)
	}
	defer f.Close()

	limited := body
	if s.maxBytes > 0 {
		limited = io.LimitReader(body, s.maxBytes+1)
	}
	n, err := io.Copy(f, limited)
	if err != nil {
		os.Remove(path)
		return "", apierr.New(apierr.KindInternal, "control.stageUpload", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		os.Remove(path)
		return "", apierr.New(apierr.KindMalformedInput, "control.stageUpload", errTooLarge)
	}
	return path, nil
}

// Info returns the active replay's info snapshot, or NotFound.
func (s *Surface) Info() (replay.Info, error) {
	eng, err := s.activeEngine("control.Info")
	if err != nil {
		return replay.Info{}, err
	}
	return eng.Info(), nil
}

// FramesRange returns a projected, ordered slice of frames and the
// active replay's current replay_id (for cache-hint decisions by the
// transport layer).
func (s *Surface) FramesRange(start, count int, maskExpr string) ([]FrameEntry, string, error) {
	eng, err := s.activeEngine("control.FramesRange")
	if err != nil {
		return nil, "", err
	}

	raw, err := eng.GetFramesRange(start, count)
	if err != nil {
		return nil, "", err
	}

	m := mask.New(maskExpr)
	out := make([]FrameEntry, len(raw))
	for i, rf := range raw {
		out[i] = FrameEntry{Index: rf.Index, Frame: mask.Project(rf.Frame, m)}
	}
	return out, eng.Info().ReplayID, nil
}

// Play, Pause, Seek, and SetSpeed mutate the active replay's cursor and
// return its new info snapshot.
func (s *Surface) Play() (replay.Info, error) {
	eng, err := s.activeEngine("control.Play")
	if err != nil {
		return replay.Info{}, err
	}
	eng.Play()
	return eng.Info(), nil
}

func (s *Surface) Pause() (replay.Info, error) {
	eng, err := s.activeEngine("control.Pause")
	if err != nil {
		return replay.Info{}, err
	}
	eng.Pause()
	return eng.Info(), nil
}

func (s *Surface) Seek(frame int) (replay.Info, error) {
	eng, err := s.activeEngine("control.Seek")
	if err != nil {
		return replay.Info{}, err
	}
	eng.Seek(frame)
	return eng.Info(), nil
}

func (s *Surface) SetSpeed(speed float64) (replay.Info, error) {
	eng, err := s.activeEngine("control.SetSpeed")
	if err != nil {
		return replay.Info{}, err
	}
	eng.SetSpeed(speed)
	return eng.Info(), nil
}

// Delete cancels the active replay's driver, closes the engine, and
// removes its temp file.
func (s *Surface) Delete() error {
	s.mu.Lock()
	eng := s.engine
	s.engine = nil
	s.mu.Unlock()

	if eng == nil {
		return apierr.New(apierr.KindNotFound, "control.Delete", errNoActiveReplay)
	}
	return eng.Close()
}

func (s *Surface) activeEngine(op string) (*replay.Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return nil, apierr.New(apierr.KindNotFound, op, errNoActiveReplay)
	}
	return s.engine, nil
}

// Adapters returns the live source manager's current status snapshot.
func (s *Surface) Adapters() bus.StatusSnapshot {
	return s.sources.Status()
}

// SetAdapterEnabled toggles an adapter's enabled flag.
func (s *Surface) SetAdapterEnabled(key string, enabled bool) {
	s.sources.SetEnabled(key, enabled)
}
