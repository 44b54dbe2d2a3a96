package replay

import (
	"context"
	"time"

	"github.com/racetelem/ibtstream/internal/telemetry"
)

// restartDriver cancels any running driver task and starts a fresh one.
// Only one driver task may run per engine, per spec.md §4.4.
func (e *Engine) restartDriver() {
	e.stopDriver()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	e.mu.Lock()
	e.driverCancel = cancel
	e.driverDone = done
	e.mu.Unlock()

	go e.driverLoop(ctx, done)
}

// stopDriver cancels the current driver task, if any, and waits for it to
// exit before returning.
func (e *Engine) stopDriver() {
	e.mu.Lock()
	cancel := e.driverCancel
	done := e.driverDone
	e.driverCancel = nil
	e.driverDone = nil
	e.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// driverLoop emits frames at native-rate x speed until ctx is cancelled.
// Pacing, snapshot-then-release locking, and the pause-poll interval
// follow spec.md §4.4 precisely.
func (e *Engine) driverLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		e.mu.RLock()
		playing := e.playing
		tickRate := e.tickRate
		speed := e.speed
		e.mu.RUnlock()

		if !playing {
			if !sleepCancellable(ctx, pausedPollInterval) {
				return
			}
			continue
		}

		frame, _, ok := e.emitCurrentFrame()
		if ok && e.pub != nil {
			e.pub.Publish(frame)
		}

		interval := tickInterval(tickRate, speed)
		if !sleepCancellable(ctx, interval) {
			return
		}
	}
}

// emitCurrentFrame reads the cursor's current frame, normalizes it, and
// advances the cursor, all under the engine's lock.
func (e *Engine) emitCurrentFrame() (*telemetry.Frame, int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.playing {
		return nil, 0, false
	}
	idx := e.currentFrame
	frame, err := e.getFrameLocked(idx)
	if err != nil {
		if e.log != nil {
			e.log.Warnf("driver skipping frame %d: %v", idx, err)
		}
	}

	if e.currentFrame >= e.totalFrames-1 {
		e.playing = false
	} else {
		e.currentFrame++
	}

	if err != nil {
		return nil, idx, false
	}
	return frame, idx, true
}

func tickInterval(tickRate int, speed float64) time.Duration {
	if tickRate <= 0 || speed <= 0 {
		return minTickInterval
	}
	secs := 1.0 / (float64(tickRate) * speed)
	d := time.Duration(secs * float64(time.Second))
	if d < minTickInterval {
		return minTickInterval
	}
	return d
}

// sleepCancellable sleeps for d or returns false early if ctx is done.
func sleepCancellable(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
