package spawnhooks

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DeactivationHandler is notified once when a tracker stops tracking its
// target, whether the target died or the tracker was stopped.
type DeactivationHandler interface {
	TrackerDeactivated(t *Tracker)
}

// HandlerFunc adapts a function to DeactivationHandler.
type HandlerFunc func(t *Tracker)

func (f HandlerFunc) TrackerDeactivated(t *Tracker) { f(t) }

// Tracker owns the self-rescheduling liveness check of one object.
// At most one check is pending at any time.
type Tracker struct {
	id       uuid.UUID
	seq      uint64
	target   Object
	tag      string
	interval time.Duration
	policy   *Policy

	probe   LivenessProbe
	sched   Scheduler
	handler DeactivationHandler

	timer  Timer
	active bool
	checks uint64
}

// NewTracker validates its arguments and immediately checks the target.
// If the target is already dead, handler is invoked before NewTracker
// returns and nothing is scheduled.
func NewTracker(target Object, interval time.Duration, tag string, handler DeactivationHandler, probe LivenessProbe, sched Scheduler) (*Tracker, error) {
	t, err := newTracker(target, interval, tag, handler, probe, sched)
	if err != nil {
		return nil, err
	}
	t.check()
	return t, nil
}

func newTracker(target Object, interval time.Duration, tag string, handler DeactivationHandler, probe LivenessProbe, sched Scheduler) (*Tracker, error) {
	var err error
	switch {
	case target == nil:
		err = ErrNilTarget
	case interval <= 0:
		err = ErrZeroInterval
	case tag == "":
		err = ErrEmptyTag
	case handler == nil:
		err = ErrNilHandler
	case probe == nil:
		err = ErrNilProbe
	case sched == nil:
		err = ErrNilScheduler
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContract, err)
	}
	return &Tracker{
		id:       uuid.New(),
		target:   target,
		tag:      tag,
		interval: interval,
		probe:    probe,
		sched:    sched,
		handler:  handler,
		active:   true,
	}, nil
}

// check runs one liveness probe and either reschedules or deactivates.
func (t *Tracker) check() {
	t.timer = nil
	if !t.active {
		return
	}
	t.checks++
	if !t.probe.IsLive(t.target) {
		t.deactivate()
		return
	}
	t.timer = t.sched.AfterFunc(t.interval, t.check)
}

func (t *Tracker) deactivate() {
	if !t.active {
		return
	}
	t.cancel()
	t.handler.TrackerDeactivated(t)
}

// cancel drops the pending check and deactivates without notifying the
// handler.
func (t *Tracker) cancel() {
	t.active = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Stop forces deactivation and cancels the pending check. Calling Stop on
// an inactive tracker does nothing.
func (t *Tracker) Stop() {
	t.deactivate()
}

// ID is a unique identifier for log correlation.
func (t *Tracker) ID() uuid.UUID { return t.id }

// Target returns the tracked handle. It stays usable as a key after the
// object dies.
func (t *Tracker) Target() Object { return t.target }

// Tag returns the grouping tag.
func (t *Tracker) Tag() string { return t.tag }

// Interval returns the poll interval.
func (t *Tracker) Interval() time.Duration { return t.interval }

// Policy returns the policy the target was classified under, or nil for
// trackers built outside a Registry.
func (t *Tracker) Policy() *Policy { return t.policy }

// Active reports whether the tracker has not yet deactivated.
func (t *Tracker) Active() bool { return t.active }

// Pending reports whether a liveness check is scheduled.
func (t *Tracker) Pending() bool { return t.timer != nil }

// Checks returns how many liveness probes have run.
func (t *Tracker) Checks() uint64 { return t.checks }

func (t *Tracker) String() string {
	return fmt.Sprintf("%s[%s %s/%s]", t.tag, t.id.String()[:8], t.target.TypeName(), t.target.PrefabPath())
}
