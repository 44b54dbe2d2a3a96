// Package source holds the live-adapter contract and the manager that
// detects, starts, stops, and polls registered adapters, per spec.md
// §4.6. Grounded on original_source/ost-core/src/adapter.rs's
// TelemetryAdapter trait, translated to a Go interface.
package source

import "github.com/racetelem/ibtstream/internal/telemetry"

// Adapter is satisfied by every game-specific live telemetry source.
// Detect must be a cheap, non-blocking probe; ReadFrame must not block
// longer than the manager's tick budget (~1ms), per spec.md §5's
// timeout note.
type Adapter interface {
	// Key is a stable ascii identifier, e.g. "iracing", "acc", "demo".
	Key() string
	// Name is a human-readable label for status snapshots.
	Name() string
	// Detect reports whether the underlying game is currently running
	// and accessible.
	Detect() bool
	// Start begins reading telemetry. Called once detect() transitions
	// from false to true while no other adapter is active.
	Start() error
	// Stop releases any resources Start acquired.
	Stop() error
	// ReadFrame returns the next available frame, or nil if none is
	// ready yet. Errors are logged by the manager, not fatal to it.
	ReadFrame() (*telemetry.Frame, error)
	// IsActive reports whether Start has succeeded and Stop has not
	// since been called.
	IsActive() bool
}
