//go:build !windows

package iracing

import (
	"errors"

	"github.com/racetelem/ibtstream/internal/telemetry"
)

// Adapter is a stub on non-Windows hosts: iRacing's shared memory
// segment does not exist there, so Detect always fails, mirroring
// original_source/ost-adapters/src/iracing.rs's #[cfg(not(windows))]
// stub per spec.md §9's cross-platform-variation note.
type Adapter struct{}

// New builds a stub iRacing adapter.
func New() *Adapter { return &Adapter{} }

func (a *Adapter) Key() string  { return key }
func (a *Adapter) Name() string { return "iRacing" }
func (a *Adapter) Detect() bool { return false }

func (a *Adapter) Start() error {
	return errors.New("iracing: not supported on this platform")
}

func (a *Adapter) Stop() error { return nil }

func (a *Adapter) IsActive() bool { return false }

func (a *Adapter) ReadFrame() (*telemetry.Frame, error) { return nil, nil }
