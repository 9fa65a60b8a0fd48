package gate

import (
	"sync"
	"sync/atomic"
	"time"

	"clickguardian/internal/core/counter"
	"clickguardian/internal/core/model"
	"clickguardian/internal/core/scheduler"
	"clickguardian/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier is the modal prompt raised once per blocking episode.
// Open and Dismiss must not block the caller.
type Notifier interface {
	Open(limit int, unlockDuration time.Duration)
	Bounds() (Rect, bool)
	Dismiss()
}

// Persister receives every counter mutation. Persist must not block.
type Persister interface {
	Persist(config model.Config, state counter.State)
}

// Options contains runtime options for Gate.
type Options struct {
	Clock        func() time.Time
	TickInterval time.Duration
	Logger       *zap.Logger
}

// Status is a point-in-time view of the gate.
type Status struct {
	State      State
	Count      int
	Limit      int
	DialogOpen bool
	Armed      bool
	EpisodeID  string
	Config     model.Config
}

// Gate owns the counter and the blocking state machine.
// Every entry point serializes on mu, whichever thread it arrives from.
type Gate struct {
	mu         sync.Mutex
	config     model.Config
	counter    counter.State
	state      State
	dialogOpen bool
	episodeID  string
	notifier   Notifier
	persister  Persister
	scheduler  *scheduler.Scheduler
	clock      func() time.Time
	logger     *zap.Logger
	events     []chan Event
	closed     bool

	deciding atomic.Bool
}

// New creates a Gate in the open state.
func New(config model.Config, initial counter.State, persister Persister, options Options) *Gate {
	if options.Clock == nil {
		options.Clock = time.Now
	}
	config = config.Normalized()
	initial.Limit = config.ClickLimit
	initial.GracePeriod = config.GracePeriod

	gate := &Gate{
		config:    config,
		counter:   initial,
		state:     StateOpen,
		persister: persister,
		clock:     options.Clock,
		logger:    logging.OrNop(options.Logger),
	}
	gate.scheduler = scheduler.New(scheduler.Config{TickInterval: options.TickInterval})
	return gate
}

// SetNotifier injects the notification surface.
func (gate *Gate) SetNotifier(notifier Notifier) {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	gate.notifier = notifier
}

// Subscribe registers a new observer channel.
func (gate *Gate) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	gate.mu.Lock()
	gate.events = append(gate.events, ch)
	gate.mu.Unlock()
	return ch
}

// HandleClick decides whether a button-down event reaches the rest of the system.
//
// It relies on the interception hook delivering events on a single thread: an entry made
// while a decision is in flight is taken to be a nested call from our own pass-through
// and is admitted uncounted. A second concurrent caller would be treated the same way.
func (gate *Gate) HandleClick(click Click) Verdict {
	if !gate.deciding.CompareAndSwap(false, true) {
		return Admit
	}
	defer gate.deciding.Store(false)
	return gate.decide(click)
}

func (gate *Gate) decide(click Click) Verdict {
	gate.mu.Lock()
	if gate.closed {
		gate.mu.Unlock()
		return Admit
	}

	if gate.state == StateBlocked {
		if gate.insideDialogLocked(click) {
			gate.mu.Unlock()
			return Admit
		}
		if gate.config.BlockClicks {
			gate.mu.Unlock()
			return Deny
		}
	}

	now := gate.clock()
	var rolled bool
	gate.counter, rolled = counter.Reconcile(gate.counter, now)
	if rolled {
		gate.logger.Info("monthly counter reset",
			zap.Int("year", gate.counter.ResetYear),
			zap.Stringer("month", gate.counter.ResetMonth))
	}
	gate.counter = gate.counter.Increment()
	gate.persistLocked()
	gate.emitLocked(gate.countEventLocked(now))

	var notifier Notifier
	if gate.counter.Reached() && !gate.dialogOpen {
		gate.enterBlockedLocked(now)
		notifier = gate.notifier
	}
	limit := gate.config.ClickLimit
	unlockDuration := gate.config.UnlockDuration
	gate.mu.Unlock()

	if notifier != nil {
		notifier.Open(limit, unlockDuration)
	}
	return Admit
}

// Resolve applies the notification surface's answer for the current episode.
func (gate *Gate) Resolve(resolution Resolution) {
	gate.mu.Lock()
	if gate.closed || gate.state != StateBlocked {
		gate.mu.Unlock()
		return
	}

	switch resolution.Kind {
	case ResolutionRemindLater:
		delay := resolution.Delay
		if delay <= 0 {
			delay = gate.config.UnlockDuration
		}
		episode := gate.episodeID
		armed := gate.scheduler.Arm(delay, scheduler.Handlers{
			OnExpire: func() { gate.expire(episode) },
			OnTick:   func(remaining time.Duration) { gate.emitCountdown(episode, remaining) },
		})
		if armed {
			gate.logger.Info("unlock armed", zap.String("episode", episode), zap.Duration("delay", delay))
		}
		gate.mu.Unlock()
	case ResolutionAcknowledge:
		gate.unlockLocked(ResolutionAcknowledge, false)
		notifier := gate.notifier
		gate.mu.Unlock()
		if notifier != nil {
			notifier.Dismiss()
		}
	case ResolutionClosed:
		gate.unlockLocked(ResolutionClosed, false)
		gate.mu.Unlock()
	default:
		gate.logger.Warn("unknown resolution ignored", zap.String("kind", string(resolution.Kind)))
		gate.mu.Unlock()
	}
}

// ApplyConfig swaps the config snapshot and restarts the live episode.
func (gate *Gate) ApplyConfig(config model.Config) {
	config = config.Normalized()

	gate.mu.Lock()
	if gate.closed {
		gate.mu.Unlock()
		return
	}
	gate.scheduler.Cancel()
	now := gate.clock()
	wasBlocked := gate.state == StateBlocked
	if wasBlocked {
		gate.emitLocked(Event{
			Type:       EventStateChange,
			State:      StateOpen,
			Count:      gate.counter.Count,
			Limit:      gate.config.ClickLimit,
			EpisodeID:  gate.episodeID,
			Resolution: ResolutionReconfigured,
			At:         now,
		})
	}

	gate.config = config
	gate.counter.Limit = config.ClickLimit
	gate.counter.GracePeriod = config.GracePeriod
	gate.counter.Count = 0
	gate.state = StateOpen
	gate.dialogOpen = false
	gate.episodeID = ""
	gate.persistLocked()
	gate.emitLocked(gate.countEventLocked(now))
	notifier := gate.notifier
	gate.mu.Unlock()

	gate.logger.Info("config applied",
		zap.Int("limit", config.ClickLimit),
		zap.Duration("unlock", config.UnlockDuration),
		zap.Bool("block", config.BlockClicks),
		zap.Int("grace", config.GracePeriod))

	if wasBlocked && notifier != nil {
		notifier.Dismiss()
	}
}

// ResetCount zeroes the counter without touching config or the episode.
func (gate *Gate) ResetCount() {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	if gate.closed {
		return
	}
	gate.counter.Count = 0
	gate.persistLocked()
	gate.emitLocked(gate.countEventLocked(gate.clock()))
}

// Config returns the active config snapshot.
func (gate *Gate) Config() model.Config {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.config
}

// Status returns a snapshot of the gate.
func (gate *Gate) Status() Status {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return Status{
		State:      gate.state,
		Count:      gate.counter.Count,
		Limit:      gate.config.ClickLimit,
		DialogOpen: gate.dialogOpen,
		Armed:      gate.scheduler.Armed(),
		EpisodeID:  gate.episodeID,
		Config:     gate.config,
	}
}

// Counter returns the in-memory counter state.
func (gate *Gate) Counter() counter.State {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	return gate.counter
}

// Close cancels any armed unlock and closes observers.
// Clicks arriving after Close are always admitted.
func (gate *Gate) Close() {
	gate.mu.Lock()
	if gate.closed {
		gate.mu.Unlock()
		return
	}
	gate.closed = true
	gate.scheduler.Cancel()
	events := gate.events
	gate.events = nil
	gate.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (gate *Gate) expire(episode string) {
	gate.mu.Lock()
	if gate.closed || gate.state != StateBlocked || gate.episodeID != episode {
		gate.mu.Unlock()
		return
	}
	// Only a deferred unlock forgives the grace period.
	gate.unlockLocked(ResolutionExpired, true)
	notifier := gate.notifier
	gate.mu.Unlock()

	if notifier != nil {
		notifier.Dismiss()
	}
}

func (gate *Gate) insideDialogLocked(click Click) bool {
	if !gate.dialogOpen || gate.notifier == nil {
		return false
	}
	bounds, ok := gate.notifier.Bounds()
	return ok && bounds.Contains(click.X, click.Y)
}

func (gate *Gate) enterBlockedLocked(now time.Time) {
	gate.state = StateBlocked
	gate.dialogOpen = true
	gate.episodeID = uuid.NewString()

	gate.logger.Info("click limit reached",
		zap.String("episode", gate.episodeID),
		zap.Int("count", gate.counter.Count),
		zap.Int("limit", gate.config.ClickLimit),
		zap.Bool("block", gate.config.BlockClicks))

	gate.emitLocked(Event{
		Type:      EventStateChange,
		State:     StateBlocked,
		Count:     gate.counter.Count,
		Limit:     gate.config.ClickLimit,
		EpisodeID: gate.episodeID,
		At:        now,
	})
}

func (gate *Gate) unlockLocked(kind ResolutionKind, forgive bool) {
	gate.scheduler.Cancel()
	episode := gate.episodeID
	before := gate.counter.Count
	if forgive {
		gate.counter = gate.counter.Forgive()
	}
	gate.state = StateOpen
	gate.dialogOpen = false
	gate.episodeID = ""
	gate.persistLocked()

	gate.logger.Info("clicks unlocked",
		zap.String("episode", episode),
		zap.String("resolution", string(kind)),
		zap.Int("before", before),
		zap.Int("after", gate.counter.Count))

	now := gate.clock()
	gate.emitLocked(Event{
		Type:       EventStateChange,
		State:      StateOpen,
		Count:      gate.counter.Count,
		Limit:      gate.config.ClickLimit,
		EpisodeID:  episode,
		Resolution: kind,
		At:         now,
	})
	gate.emitLocked(gate.countEventLocked(now))
}

func (gate *Gate) persistLocked() {
	if gate.persister == nil {
		return
	}
	gate.persister.Persist(gate.config, gate.counter)
}

func (gate *Gate) countEventLocked(now time.Time) Event {
	return Event{
		Type:      EventCount,
		State:     gate.state,
		Count:     gate.counter.Count,
		Limit:     gate.config.ClickLimit,
		EpisodeID: gate.episodeID,
		At:        now,
	}
}

func (gate *Gate) emitCountdown(episode string, remaining time.Duration) {
	gate.mu.Lock()
	defer gate.mu.Unlock()
	if gate.closed || gate.state != StateBlocked || gate.episodeID != episode {
		return
	}
	gate.emitLocked(Event{
		Type:      EventCountdown,
		State:     gate.state,
		Count:     gate.counter.Count,
		Limit:     gate.config.ClickLimit,
		EpisodeID: gate.episodeID,
		Remaining: remaining,
		At:        gate.clock(),
	})
}

func (gate *Gate) emitLocked(event Event) {
	for _, ch := range gate.events {
		select {
		case ch <- event:
		default:
		}
	}
}
