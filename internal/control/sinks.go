package control

import (
	"fmt"

	"github.com/racetelem/ibtstream/internal/apierr"
	"github.com/racetelem/ibtstream/internal/bus"
)

// Sinks returns the current sink-config snapshot.
func (s *Surface) Sinks() bus.SinksSnapshot {
	s.sinksMu.Lock()
	defer s.sinksMu.Unlock()
	return s.snapshotSinksLocked()
}

func (s *Surface) snapshotSinksLocked() bus.SinksSnapshot {
	out := make([]bus.SinkConfig, 0, len(s.sinks))
	for _, sc := range s.sinks {
		out = append(out, sc)
	}
	return bus.SinksSnapshot{Sinks: out}
}

// CreateSink registers a new output sink and broadcasts the updated
// snapshot. The caller-supplied ID field is ignored; a process-unique one
// is assigned.
func (s *Surface) CreateSink(sc bus.SinkConfig) bus.SinkConfig {
	s.sinksMu.Lock()
	s.nextID++
	sc.ID = fmt.Sprintf("sink-%d", s.nextID)
	s.sinks[sc.ID] = sc
	snapshot := s.snapshotSinksLocked()
	s.sinksMu.Unlock()

	s.bus.PublishSinks(snapshot)
	return sc
}

// DeleteSink removes a sink by ID and broadcasts the updated snapshot.
func (s *Surface) DeleteSink(id string) error {
	s.sinksMu.Lock()
	if _, ok := s.sinks[id]; !ok {
		s.sinksMu.Unlock()
		return apierr.New(apierr.KindNotFound, "control.DeleteSink", errUnknownSink)
	}
	delete(s.sinks, id)
	snapshot := s.snapshotSinksLocked()
	s.sinksMu.Unlock()

	s.bus.PublishSinks(snapshot)
	return nil
}
