// Package testutil provides deterministic fakes for driving a Registry in
// tests: a manual-clock scheduler, an in-memory environment, and a sink that
// records every hook call.
package testutil

import (
	"sort"
	"time"

	"github.com/comalice/spawnhooks"
)

// FakeScheduler is a spawnhooks.Scheduler driven by Advance. Callbacks run
// synchronously on the goroutine calling Advance.
type FakeScheduler struct {
	now     time.Time
	seq     uint64
	pending []*fakeTimer
}

type fakeTimer struct {
	s       *FakeScheduler
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// NewFakeScheduler creates a scheduler whose clock starts at a fixed instant.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// AfterFunc implements spawnhooks.Scheduler.
func (s *FakeScheduler) AfterFunc(d time.Duration, fn func()) spawnhooks.Timer {
	if d < 0 {
		d = 0
	}
	t := &fakeTimer{s: s, due: s.now.Add(d), seq: s.seq, fn: fn}
	s.seq++
	s.pending = append(s.pending, t)
	return t
}

// Stop implements spawnhooks.Timer.
func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.s.remove(t)
	return true
}

func (s *FakeScheduler) remove(t *fakeTimer) {
	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d, running every callback that comes
// due on the way in deadline order, including ones scheduled by earlier
// callbacks. It returns the number of callbacks run.
func (s *FakeScheduler) Advance(d time.Duration) int {
	target := s.now.Add(d)
	ran := 0
	for {
		next := s.next(target)
		if next == nil {
			break
		}
		s.remove(next)
		s.now = next.due
		next.fired = true
		next.fn()
		ran++
	}
	s.now = target
	return ran
}

func (s *FakeScheduler) next(target time.Time) *fakeTimer {
	if len(s.pending) == 0 {
		return nil
	}
	sort.SliceStable(s.pending, func(i, j int) bool {
		if !s.pending[i].due.Equal(s.pending[j].due) {
			return s.pending[i].due.Before(s.pending[j].due)
		}
		return s.pending[i].seq < s.pending[j].seq
	})
	if s.pending[0].due.After(target) {
		return nil
	}
	return s.pending[0]
}

// Now returns the fake clock's current time.
func (s *FakeScheduler) Now() time.Time { return s.now }

// Pending returns the number of scheduled callbacks.
func (s *FakeScheduler) Pending() int { return len(s.pending) }
