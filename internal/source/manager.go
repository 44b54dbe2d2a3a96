package source

import (
	"sync"
	"time"

	"github.com/racetelem/ibtstream/internal/bus"
	"github.com/racetelem/ibtstream/internal/logx"
)

const (
	detectionInterval = time.Second
	frameInterval     = 16 * time.Millisecond
)

// ReplayActiveFunc reports whether a replay currently owns the bus. The
// manager must not read live frames while one is active, per spec.md
// §4.6.
type ReplayActiveFunc func() bool

// Manager holds the ordered list of registered adapters, a disabled set
// that prevents auto-start of specific keys, and the currently active
// adapter, each behind its own lock per spec.md §5's lock-coupling note.
// Grounded on original_source/ost-server/src/manager.rs's detection_cycle
// / frame_read_cycle loop, adapted from a free function over AppState
// into methods on Manager.
type Manager struct {
	bus          *bus.Bus
	log          *logx.Logger
	replayActive ReplayActiveFunc

	adaptersMu sync.Mutex
	adapters   []Adapter

	disabledMu sync.RWMutex
	disabled   map[string]bool

	activeMu sync.RWMutex
	active   string // key of the active adapter, "" if none

	lastDetect time.Time

	driverCancel chan struct{}
	driverDone   chan struct{}
}

// New builds a Manager. disabledByDefault lists adapter keys that must
// not auto-start until explicitly enabled (the synthetic demo generator
// by convention, so it never masks a real source).
func New(b *bus.Bus, log *logx.Logger, replayActive ReplayActiveFunc, disabledByDefault ...string) *Manager {
	disabled := make(map[string]bool, len(disabledByDefault))
	for _, key := range disabledByDefault {
		disabled[key] = true
	}
	return &Manager{
		bus:          b,
		log:          log,
		replayActive: replayActive,
		disabled:     disabled,
	}
}

// Register adds an adapter to the managed list.
func (m *Manager) Register(a Adapter) {
	m.adaptersMu.Lock()
	defer m.adaptersMu.Unlock()
	m.adapters = append(m.adapters, a)
}

// SetEnabled toggles an adapter's disabled flag. Disabling an active
// adapter also stops it, per spec.md §4.6.
func (m *Manager) SetEnabled(key string, enabled bool) {
	m.disabledMu.Lock()
	if enabled {
		delete(m.disabled, key)
	} else {
		m.disabled[key] = true
	}
	m.disabledMu.Unlock()

	if enabled {
		m.publishStatus()
		return
	}

	m.activeMu.Lock()
	isActiveKey := m.active == key
	m.activeMu.Unlock()
	if isActiveKey {
		m.stopActive()
	}
	m.publishStatus()
}

func (m *Manager) isDisabled(key string) bool {
	m.disabledMu.RLock()
	defer m.disabledMu.RUnlock()
	return m.disabled[key]
}

// Start launches the background polling goroutine. Only one may run per
// Manager.
func (m *Manager) Start() {
	if m.driverCancel != nil {
		return
	}
	m.driverCancel = make(chan struct{})
	m.driverDone = make(chan struct{})
	go m.run(m.driverCancel, m.driverDone)
}

// Stop cancels the polling goroutine and waits for it to exit. Any
// active adapter is stopped.
func (m *Manager) Stop() {
	if m.driverCancel != nil {
		close(m.driverCancel)
		<-m.driverDone
		m.driverCancel = nil
		m.driverDone = nil
	}
	m.stopActive()
}

func (m *Manager) run(cancel, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
		}

		m.detectionCycle()
		m.frameReadCycle()
	}
}

// detectionCycle mirrors manager.rs's detection_cycle: rate-limited to
// once per detectionInterval, it checks the active adapter is still
// detected, or else looks for the first enabled adapter that is.
func (m *Manager) detectionCycle() {
	now := time.Now()
	if !m.lastDetect.IsZero() && now.Sub(m.lastDetect) < detectionInterval {
		return
	}
	m.lastDetect = now

	changed := false
	m.adaptersMu.Lock()
	defer func() {
		m.adaptersMu.Unlock()
		if changed {
			m.publishStatus()
		}
	}()

	m.activeMu.RLock()
	activeKey := m.active
	m.activeMu.RUnlock()

	if activeKey != "" {
		for _, a := range m.adapters {
			if a.Key() != activeKey {
				continue
			}
			if !a.Detect() {
				if m.log != nil {
					m.log.Infof("%s no longer detected, stopping", activeKey)
				}
				if err := a.Stop(); err != nil && m.log != nil {
					m.log.Warnf("error stopping %s: %v", activeKey, err)
				}
				m.activeMu.Lock()
				m.active = ""
				m.activeMu.Unlock()
				changed = true
			}
			return
		}
	}

	for _, a := range m.adapters {
		if m.isDisabled(a.Key()) {
			continue
		}
		if a.Detect() && !a.IsActive() {
			if err := a.Start(); err != nil {
				if m.log != nil {
					m.log.Warnf("failed to start %s: %v", a.Key(), err)
				}
				continue
			}
			m.activeMu.Lock()
			m.active = a.Key()
			m.activeMu.Unlock()
			if m.log != nil {
				m.log.Infof("%s started", a.Key())
			}
			changed = true
			break
		}
	}
}

// frameReadCycle mirrors manager.rs's frame_read_cycle: replay has
// priority over live, per spec.md §4.6.
func (m *Manager) frameReadCycle() {
	if m.replayActive != nil && m.replayActive() {
		return
	}

	m.activeMu.RLock()
	activeKey := m.active
	m.activeMu.RUnlock()
	if activeKey == "" {
		return
	}

	m.adaptersMu.Lock()
	var active Adapter
	for _, a := range m.adapters {
		if a.Key() == activeKey {
			active = a
			break
		}
	}
	m.adaptersMu.Unlock()
	if active == nil {
		return
	}

	frame, err := active.ReadFrame()
	if err != nil {
		if m.log != nil {
			m.log.Warnf("error reading frame from %s: %v", activeKey, err)
		}
		return
	}
	if frame != nil {
		m.bus.Publish(frame)
	}
}

func (m *Manager) stopActive() {
	m.activeMu.Lock()
	key := m.active
	m.active = ""
	m.activeMu.Unlock()
	if key == "" {
		return
	}

	m.adaptersMu.Lock()
	defer m.adaptersMu.Unlock()
	for _, a := range m.adapters {
		if a.Key() == key && a.IsActive() {
			_ = a.Stop()
		}
	}
}

// Status builds the current status snapshot for the status topic.
func (m *Manager) Status() bus.StatusSnapshot {
	m.adaptersMu.Lock()
	defer m.adaptersMu.Unlock()

	m.activeMu.RLock()
	active := m.active
	m.activeMu.RUnlock()

	out := make([]bus.AdapterStatus, 0, len(m.adapters))
	for _, a := range m.adapters {
		out = append(out, bus.AdapterStatus{
			Key:      a.Key(),
			Name:     a.Name(),
			Detected: a.Detect(),
			Active:   a.IsActive(),
			Enabled:  !m.isDisabled(a.Key()),
		})
	}
	return bus.StatusSnapshot{Adapters: out, Active: active}
}

func (m *Manager) publishStatus() {
	if m.bus == nil {
		return
	}
	m.bus.PublishStatus(m.Status())
}
