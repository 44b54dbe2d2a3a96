package control

import (
	"context"

	"github.com/racetelem/ibtstream/internal/bus"
	"github.com/racetelem/ibtstream/internal/mask"
	"github.com/racetelem/ibtstream/internal/telemetry"
)

// EventKind names the three event types a Subscription emits, per spec.md
// §6's single long-lived stream carrying "frame", "status", and "sinks"
// as named events over one connection.
type EventKind string

const (
	EventFrame  EventKind = "frame"
	EventStatus EventKind = "status"
	EventSinks  EventKind = "sinks"
)

// StreamEvent is one item delivered to a subscriber. Exactly one of the
// payload fields is set, matching Kind.
type StreamEvent struct {
	Kind   EventKind
	Frame  *telemetry.Frame
	Status *bus.StatusSnapshot
	Sinks  *bus.SinksSnapshot
}

// Subscription fans in the bus's three topics onto one ordered channel.
// The current status and sinks snapshots are pushed once immediately on
// subscribe (spec.md §6: "the current status and sinks snapshots exactly
// once on connect, then deltas"), ahead of any live deltas.
type Subscription struct {
	events chan StreamEvent
	cancel context.CancelFunc
	frames *bus.Subscription[*telemetry.Frame]
	status *bus.Subscription[bus.StatusSnapshot]
	sinks  *bus.Subscription[bus.SinksSnapshot]
}

// C returns the channel to receive events on. It closes once Close is
// called.
func (s *Subscription) C() <-chan StreamEvent {
	return s.events
}

// Close unregisters the subscription from all three topics and stops its
// fan-in goroutines.
func (s *Subscription) Close() {
	s.cancel()
	s.frames.Close()
	s.status.Close()
	s.sinks.Close()
}

// Subscribe opens a merged subscription. maskExpr projects every frame
// event before delivery; status and sinks events are never masked.
func (surf *Surface) Subscribe(maskExpr string) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	m := mask.New(maskExpr)

	sub := &Subscription{
		events: make(chan StreamEvent, 32),
		cancel: cancel,
		frames: surf.bus.Frames.Subscribe(),
		status: surf.bus.Status.Subscribe(),
		sinks:  surf.bus.Sinks.Subscribe(),
	}

	currentStatus := surf.Adapters()
	currentSinks := surf.Sinks()
	sub.events <- StreamEvent{Kind: EventStatus, Status: &currentStatus}
	sub.events <- StreamEvent{Kind: EventSinks, Sinks: &currentSinks}

	go sub.pump(ctx, m)
	return sub
}

func (s *Subscription) pump(ctx context.Context, m *mask.Mask) {
	defer close(s.events)
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-s.frames.C():
			if !ok {
				return
			}
			projected := mask.Project(f, m)
			s.send(ctx, StreamEvent{Kind: EventFrame, Frame: projected})
		case st, ok := <-s.status.C():
			if !ok {
				return
			}
			s.send(ctx, StreamEvent{Kind: EventStatus, Status: &st})
		case sk, ok := <-s.sinks.C():
			if !ok {
				return
			}
			s.send(ctx, StreamEvent{Kind: EventSinks, Sinks: &sk})
		}
	}
}

func (s *Subscription) send(ctx context.Context, ev StreamEvent) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}
