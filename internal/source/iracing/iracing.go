// Package iracing adapts iRacing's shared-memory telemetry interface to
// the source.Adapter contract. The real implementation
// (iracing_windows.go) is gated //go:build windows, since iRacing's
// shared memory segment only exists on that OS; iracing_other.go
// provides a stub that always fails Detect() everywhere else, mirroring
// original_source/ost-adapters/src/iracing.rs's #[cfg(not(windows))]
// stub per spec.md §9's cross-platform-variation note.
package iracing

const key = "iracing"
