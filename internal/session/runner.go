package session

import (
	"context"
	"log"
	"time"
)

// FrameFunc receives the frame of a session after the runner advanced it.
type FrameFunc func(s *Session, f Frame)

// Runner drives every running session at a fixed frame rate. Each frame
// advances a session by a fixed number of simulation ticks.
type Runner struct {
	manager       *Manager
	interval      time.Duration
	ticksPerFrame int
	onFrame       FrameFunc
}

func NewRunner(m *Manager, frameHz, ticksPerFrame int, onFrame FrameFunc) *Runner {
	if frameHz <= 0 {
		frameHz = 30
	}
	if ticksPerFrame <= 0 {
		ticksPerFrame = 1
	}
	return &Runner{
		manager:       m,
		interval:      time.Second / time.Duration(frameHz),
		ticksPerFrame: ticksPerFrame,
		onFrame:       onFrame,
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("[RUNNER] Started: frame every %s, %d ticks per frame", r.interval, r.ticksPerFrame)
	for {
		select {
		case <-ctx.Done():
			log.Println("[RUNNER] Stopping")
			return
		case <-ticker.C:
			r.Frame(ctx)
		}
	}
}

// Frame advances every running session once and returns how many moved.
func (r *Runner) Frame(ctx context.Context) int {
	n := 0
	for _, s := range r.manager.Active() {
		if s.State() != StateRunning {
			continue
		}
		step := r.manager.Advance(ctx, s, r.ticksPerFrame)
		n++
		if r.onFrame != nil {
			r.onFrame(s, s.Frame(step.Sounds))
		}
	}
	return n
}
