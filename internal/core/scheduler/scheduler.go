package scheduler

import (
	"sync"
	"time"
)

// Config contains runtime options for Scheduler.
type Config struct {
	TickInterval time.Duration
}

// Handlers are the callbacks bound to one armed countdown.
type Handlers struct {
	OnExpire func()
	// OnTick receives the remaining time once per tick while armed. Display only.
	OnTick func(remaining time.Duration)
}

// Scheduler is a single-shot unlock countdown.
type Scheduler struct {
	mu         sync.Mutex
	options    Config
	timer      *time.Timer
	stopTicks  chan struct{}
	generation uint64
	armed      bool
}

// New creates an idle Scheduler.
func New(options Config) *Scheduler {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	return &Scheduler{options: options}
}

// Arm starts the countdown. It returns false and does nothing when already armed.
func (scheduler *Scheduler) Arm(duration time.Duration, handlers Handlers) bool {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if scheduler.armed {
		return false
	}
	if duration < 0 {
		duration = 0
	}

	scheduler.generation++
	generation := scheduler.generation
	scheduler.armed = true
	deadline := time.Now().Add(duration)
	scheduler.timer = time.AfterFunc(duration, func() {
		scheduler.fire(generation, handlers.OnExpire)
	})
	if handlers.OnTick != nil {
		scheduler.stopTicks = make(chan struct{})
		go scheduler.tick(scheduler.stopTicks, deadline, handlers.OnTick)
	}
	return true
}

// Cancel stops the countdown without firing. It never waits for a running callback.
func (scheduler *Scheduler) Cancel() {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	if !scheduler.armed {
		return
	}
	scheduler.timer.Stop()
	scheduler.disarmLocked()
}

// Armed reports whether a countdown is pending.
func (scheduler *Scheduler) Armed() bool {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.armed
}

func (scheduler *Scheduler) fire(generation uint64, onExpire func()) {
	scheduler.mu.Lock()
	if !scheduler.armed || scheduler.generation != generation {
		scheduler.mu.Unlock()
		return
	}
	scheduler.disarmLocked()
	scheduler.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}

func (scheduler *Scheduler) disarmLocked() {
	scheduler.armed = false
	scheduler.generation++
	scheduler.timer = nil
	if scheduler.stopTicks != nil {
		close(scheduler.stopTicks)
		scheduler.stopTicks = nil
	}
}

// tick may still be inside onTick after Cancel returns, so onTick must tolerate a
// countdown that is no longer current.
func (scheduler *Scheduler) tick(stop <-chan struct{}, deadline time.Time, onTick func(time.Duration)) {
	ticker := time.NewTicker(scheduler.options.TickInterval)
	defer ticker.Stop()

	onTick(time.Until(deadline))
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			remaining := deadline.Sub(now)
			if remaining < 0 {
				remaining = 0
			}
			onTick(remaining)
		}
	}
}
