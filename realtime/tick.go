package realtime

import (
	"go.uber.org/zap"
)

// Tick processes one tick at the clock's current time. Start calls it from the
// loop goroutine; tests with a manual clock may call it directly instead of
// starting the loop.
func (l *Loop) Tick() int {
	// Phase 1: Collect due entries atomically
	due := l.collectDue()

	// Phase 2: Sort for deterministic order
	sortEntries(due)

	// Phase 3: Run, skipping anything cancelled meanwhile
	ran := l.runEntries(due)

	l.mu.Lock()
	l.tickNum++
	l.mu.Unlock()
	return ran
}

// collectDue removes and returns every live entry due at or before now.
// Cancelled entries are dropped here.
func (l *Loop) collectDue() []*entry {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.queuedTasks = 0

	var due []*entry
	keep := l.pending[:0]
	for _, e := range l.pending {
		switch {
		case e.cancelled:
		case !e.due.After(now):
			due = append(due, e)
		default:
			keep = append(keep, e)
		}
	}
	clear(l.pending[len(keep):])
	l.pending = keep
	return due
}

func (l *Loop) runEntries(due []*entry) int {
	ran := 0
	for _, e := range due {
		l.mu.Lock()
		if e.cancelled {
			l.mu.Unlock()
			continue
		}
		e.fired = true
		l.mu.Unlock()

		l.run(e)
		ran++
	}
	return ran
}

// run executes one callback, recovering panics so one bad callback cannot
// stop the loop.
func (l *Loop) run(e *entry) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("callback panicked",
				zap.Uint64("seq", e.sequenceNum),
				zap.Any("panic", r))
		}
	}()
	e.fn()
}
