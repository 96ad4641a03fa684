package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/comalice/spawnhooks"
)

var (
	ErrQueueFull      = errors.New("task queue full")
	ErrAlreadyStarted = errors.New("loop already started")
	ErrStopped        = errors.New("loop stopped")
)

// Loop is a tick-driven single-goroutine executor. It implements
// spawnhooks.Scheduler.
type Loop struct {
	tickRate time.Duration
	maxTasks int
	now      func() time.Time
	log      *zap.Logger

	mu          sync.Mutex
	pending     []*entry
	queuedTasks int
	sequenceNum uint64
	tickNum     uint64
	halted      bool

	// Control
	startMu sync.Mutex
	ticker  *time.Ticker
	cancel  context.CancelFunc
	stopped chan struct{}
	closed  bool
}

// Config configures the loop.
type Config struct {
	TickRate        time.Duration    // Fixed tick rate (default 50ms)
	MaxTasksPerTick int              // Posted task capacity (default 1000)
	Clock           func() time.Time // Time source (default time.Now)
	Logger          *zap.Logger      // Default zap.NewNop()
}

// NewLoop creates a loop. It does nothing until Start, or until Tick is
// called manually.
func NewLoop(cfg Config) *Loop {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 50 * time.Millisecond
	}
	if cfg.MaxTasksPerTick <= 0 {
		cfg.MaxTasksPerTick = 1000
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Loop{
		tickRate: cfg.TickRate,
		maxTasks: cfg.MaxTasksPerTick,
		now:      cfg.Clock,
		log:      cfg.Logger,
	}
}

// Start launches the tick goroutine. The loop stops when ctx is cancelled
// or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.startMu.Lock()
	defer l.startMu.Unlock()
	if l.closed {
		return ErrStopped
	}
	if l.stopped != nil {
		return ErrAlreadyStarted
	}

	tickCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.ticker = time.NewTicker(l.tickRate)
	l.stopped = make(chan struct{})

	go l.tickLoop(tickCtx, l.ticker, l.stopped)
	return nil
}

// Stop halts the tick goroutine and waits for it to exit. Pending callbacks
// are discarded. Stop is idempotent and safe to call without Start.
func (l *Loop) Stop() error {
	l.startMu.Lock()
	defer l.startMu.Unlock()
	l.closed = true
	if l.stopped == nil {
		return nil
	}
	l.cancel()
	l.ticker.Stop()
	<-l.stopped

	l.mu.Lock()
	l.halted = true
	for _, e := range l.pending {
		e.cancelled = true
	}
	l.pending = nil
	l.queuedTasks = 0
	l.mu.Unlock()
	return nil
}

// Done is closed when the tick goroutine exits. It is nil before Start.
func (l *Loop) Done() <-chan struct{} {
	l.startMu.Lock()
	defer l.startMu.Unlock()
	return l.stopped
}

func (l *Loop) tickLoop(ctx context.Context, ticker *time.Ticker, stopped chan struct{}) {
	defer close(stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

// AfterFunc schedules fn to run on the loop once d has elapsed.
// Safe to call from any goroutine.
func (l *Loop) AfterFunc(d time.Duration, fn func()) spawnhooks.Timer {
	if d < 0 {
		d = 0
	}
	return l.schedule(l.now().Add(d), priorityTimer, fn)
}

// Post queues fn for the next tick. Posted tasks run before timers due at
// the same instant.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.queuedTasks >= l.maxTasks {
		l.mu.Unlock()
		return ErrQueueFull
	}
	l.queuedTasks++
	l.mu.Unlock()

	l.schedule(l.now(), priorityTask, fn)
	return nil
}

// Do posts fn and waits until it has run. It must not be called from the
// loop goroutine.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.Done():
		return ErrStopped
	}
}

func (l *Loop) schedule(due time.Time, priority int, fn func()) *Timer {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := &entry{
		fn:          fn,
		due:         due,
		sequenceNum: l.sequenceNum,
		priority:    priority,
	}
	l.sequenceNum++
	if l.halted {
		e.cancelled = true
	} else {
		l.pending = append(l.pending, e)
	}
	return &Timer{loop: l, e: e}
}

// Pending returns the number of scheduled callbacks that are neither run
// nor cancelled.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.pending {
		if !e.cancelled {
			n++
		}
	}
	return n
}

// GetTickNumber returns the number of processed ticks.
func (l *Loop) GetTickNumber() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tickNum
}

// Timer is a handle to a scheduled callback.
type Timer struct {
	loop *Loop
	e    *entry
}

// Stop cancels the callback. It reports false if the callback already ran
// or was already cancelled.
func (t *Timer) Stop() bool {
	t.loop.mu.Lock()
	defer t.loop.mu.Unlock()
	if t.e.fired || t.e.cancelled {
		return false
	}
	t.e.cancelled = true
	return true
}
