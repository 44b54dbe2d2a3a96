package bus

import "github.com/racetelem/ibtstream/internal/telemetry"

const (
	frameCapacity = 100
	sideCapacity  = 16
)

// AdapterStatus is one row of the status snapshot topic, per spec.md
// §4.6's adapter fields (key, name, detected, active, enabled).
type AdapterStatus struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Detected bool   `json:"detected"`
	Active   bool   `json:"active"`
	Enabled  bool   `json:"enabled"`
}

// StatusSnapshot is the latest-wins payload on the status topic.
type StatusSnapshot struct {
	Adapters []AdapterStatus `json:"adapters"`
	Active   string          `json:"active,omitempty"`
}

// SinkType identifies the transport a sink forwards frames over.
// Grounded on original_source/ost-server/src/state.rs's SinkType enum
// (Http/Udp/File), translated from a tagged Rust enum into a string-typed
// Go field with the type-specific fields left blank for the other kinds.
type SinkType string

const (
	SinkHTTP SinkType = "http"
	SinkUDP  SinkType = "udp"
	SinkFile SinkType = "file"
)

// SinkConfig describes one registered output sink.
type SinkConfig struct {
	ID        string   `json:"id"`
	Type      SinkType `json:"type"`
	URL       string   `json:"url,omitempty"`
	Host      string   `json:"host,omitempty"`
	Port      uint16   `json:"port,omitempty"`
	Path      string   `json:"path,omitempty"`
	FieldMask string   `json:"field_mask,omitempty"`
}

// SinksSnapshot is the latest-wins payload on the sinks topic.
type SinksSnapshot struct {
	Sinks []SinkConfig `json:"sinks"`
}

// Bus holds the three broadcast topics spec.md §4.5 describes: telemetry
// frames at capacity ~100, and two smaller latest-wins topics (adapter
// status, sink config) at capacity ~16, merged by the control surface
// over one client connection as named events.
type Bus struct {
	Frames *Topic[*telemetry.Frame]
	Status *Topic[StatusSnapshot]
	Sinks  *Topic[SinksSnapshot]
}

// New builds a Bus with spec.md's default capacities.
func New() *Bus {
	return &Bus{
		Frames: NewTopic[*telemetry.Frame](frameCapacity),
		Status: NewTopic[StatusSnapshot](sideCapacity),
		Sinks:  NewTopic[SinksSnapshot](sideCapacity),
	}
}

// Publish satisfies internal/replay's FramePublisher interface and
// internal/source's frame-sink role: both the replay driver and the
// source manager publish onto the same frame topic, and only one of
// them is ever active at a time per spec.md §4.6.
func (b *Bus) Publish(f *telemetry.Frame) {
	b.Frames.Publish(f)
}

// PublishStatus broadcasts a new adapter-status snapshot.
func (b *Bus) PublishStatus(s StatusSnapshot) {
	b.Status.Publish(s)
}

// PublishSinks broadcasts a new sink-config snapshot.
func (b *Bus) PublishSinks(s SinksSnapshot) {
	b.Sinks.Publish(s)
}
