package spawnhooks

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// ErrNilEnvironment is returned by NewRegistry without an environment.
var ErrNilEnvironment = errors.New("environment is nil")

// Registry owns the set of live trackers and emits hook events as objects
// are added and removed.
//
// Object lifecycle: pending classification, tracked, removed (terminal).
// An object enters tracked only from OnSpawned or Rescan, and leaves only
// through its tracker's deactivation.
type Registry struct {
	env   Environment
	table *Table
	sched Scheduler
	sink  EventSink
	log   *zap.Logger

	active   map[*Tracker]struct{}
	byObject map[Object]*Tracker
	adding   map[Object]struct{}
	tags     tagIndex
	seq      uint64

	initialized bool
	resetDepth  int
}

// NewRegistry creates a registry classifying objects with table.
func NewRegistry(env Environment, table *Table, opts ...Option) (*Registry, error) {
	r := &Registry{
		env:      env,
		table:    table,
		sink:     NopSink,
		log:      zap.NewNop(),
		active:   make(map[*Tracker]struct{}),
		byObject: make(map[Object]*Tracker),
		adding:   make(map[Object]struct{}),
		tags:     newTagIndex(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.env == nil {
		return nil, ErrNilEnvironment
	}
	if r.sched == nil {
		return nil, ErrNilScheduler
	}
	return r, nil
}

// OnSpawned handles a host spawn notification. It is ignored until the
// registry is initialized, for dead objects, for already tracked objects,
// and for objects no policy matches. It reports whether a tracker was added.
func (r *Registry) OnSpawned(obj Object) bool {
	if !r.initialized || obj == nil {
		return false
	}
	if !r.env.IsLive(obj) {
		return false
	}
	r.log.Debug(entityLine("spawned", obj, true))
	t, err := r.track(obj)
	if err != nil {
		r.log.Error("track failed", zap.String("type", obj.TypeName()), zap.Error(err))
		return false
	}
	return t != nil
}

// Reset force-stops every tracker, firing removal hooks for each, and
// cancels all pending liveness checks. Spawns, rescans and reloads issued
// while a reset is in progress, including from its own removal hooks, add
// nothing.
func (r *Registry) Reset() {
	r.resetDepth++
	defer func() { r.resetDepth-- }()

	for len(r.active) > 0 {
		before := len(r.active)
		for _, t := range r.Trackers() {
			t.Stop()
		}
		if len(r.active) >= before {
			break
		}
	}
	if len(r.active) > 0 {
		// Only reachable if a tracker stopped without reporting back.
		r.log.Warn("reset left trackers behind", zap.Int("count", len(r.active)))
		for t := range r.active {
			t.cancel()
		}
		clear(r.active)
	}
	clear(r.byObject)
	r.tags.reset()
}

func (r *Registry) resetting() bool { return r.resetDepth > 0 }

// Rescan tracks every live, matching object the environment knows about that
// is not already tracked. It returns the number of trackers added.
func (r *Registry) Rescan() int {
	if r.resetting() {
		return 0
	}
	added := 0
	for _, obj := range r.env.LiveObjects() {
		if obj == nil || !r.env.IsLive(obj) {
			continue
		}
		if _, ok := r.byObject[obj]; ok {
			continue
		}
		t, err := r.track(obj)
		if err != nil {
			r.log.Error("track failed", zap.String("type", obj.TypeName()), zap.Error(err))
			continue
		}
		if t != nil {
			added++
		}
	}
	return added
}

// Reload is the operator reload: Reset, then Rescan, then mark the registry
// initialized. It returns the number of trackers added by the rescan.
func (r *Registry) Reload() int {
	r.log.Info("spawns looking...")
	r.Reset()
	r.initialized = true
	n := r.Rescan()
	r.log.Info("spawns loaded", zap.Int("tracked", n), zap.Int("tags", len(r.tags.counts)))
	return n
}

// Initialize is the startup path. With rescan it performs a Reload;
// otherwise it only starts accepting spawn notifications.
func (r *Registry) Initialize(rescan bool) {
	if rescan {
		r.Reload()
		return
	}
	r.initialized = true
}

// Initialized reports whether spawn notifications are being accepted.
func (r *Registry) Initialized() bool { return r.initialized }

// SetTable replaces the classification table. Existing trackers keep the
// policy they were classified under until the next Reload.
func (r *Registry) SetTable(t *Table) { r.table = t }

// Table returns the current classification table.
func (r *Registry) Table() *Table { return r.table }

// TagCounts returns a snapshot of live counts per tag.
func (r *Registry) TagCounts() TagCounts { return r.tags.snapshot() }

// Count returns the live count for one tag.
func (r *Registry) Count(tag string) uint { return r.tags.get(tag) }

// Len returns the number of active trackers.
func (r *Registry) Len() int { return len(r.active) }

// IsTracked reports whether obj has an active tracker.
func (r *Registry) IsTracked(obj Object) bool {
	_, ok := r.byObject[obj]
	return ok
}

// Tracker returns obj's active tracker, if any.
func (r *Registry) Tracker(obj Object) (*Tracker, bool) {
	t, ok := r.byObject[obj]
	return t, ok
}

// Trackers returns the active trackers ordered by tag, then by the order
// they were added.
func (r *Registry) Trackers() []*Tracker {
	out := make([]*Tracker, 0, len(r.active))
	for t := range r.active {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Tracker) int {
		if c := strings.Compare(a.tag, b.tag); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return out
}

// TrackerDeactivated is the removal transition. It is a no-op for trackers
// that are not active members, so a duplicate signal never double-counts.
// Bookkeeping is committed before any hook runs.
func (r *Registry) TrackerDeactivated(t *Tracker) {
	if _, ok := r.active[t]; !ok {
		return
	}
	delete(r.active, t)
	if r.byObject[t.target] == t {
		delete(r.byObject, t.target)
	}
	remaining := r.tags.dec(t.tag)
	counts := r.tags.snapshot()

	r.log.Info(entityLine("removed", t.target, r.env.IsLive(t.target)),
		zap.String("tag", t.tag),
		zap.Uint("remaining", remaining))

	category := t.policy.Name
	r.emit(HookCall{
		Kind:     HookRemoved,
		Policy:   t.policy,
		Category: category,
		Object:   t.target,
		Tag:      t.tag,
		Counts:   counts,
	})
	if remaining == 0 {
		r.log.Debug("group exhausted", zap.String("category", category), zap.String("tag", t.tag))
		r.emit(HookCall{
			Kind:     HookGroupExhausted,
			Policy:   t.policy,
			Category: category,
			Tag:      t.tag,
		})
	}
}

// track is the add transition. It returns a nil tracker without error when
// obj is unmatched, already tracked, or being added further up the stack.
func (r *Registry) track(obj Object) (*Tracker, error) {
	if r.resetting() {
		return nil, nil
	}
	if _, ok := r.byObject[obj]; ok {
		return nil, nil
	}
	if _, ok := r.adding[obj]; ok {
		return nil, nil
	}
	p := r.table.Classify(obj)
	if p == nil {
		r.log.Debug("unmatched", zap.String("type", obj.TypeName()), zap.String("prefab", obj.PrefabPath()))
		return nil, nil
	}

	r.adding[obj] = struct{}{}
	tag := r.emit(HookCall{
		Kind:     HookAdded,
		Policy:   p,
		Category: p.Name,
		Object:   obj,
		Counts:   r.tags.snapshot(),
	})
	delete(r.adding, obj)
	if tag == "" {
		tag = p.Name
	}
	if r.resetting() {
		return nil, nil
	}

	t, err := newTracker(obj, p.PollInterval, tag, r, r.env, r.sched)
	if err != nil {
		return nil, fmt.Errorf("policy %q: %w", p.Name, err)
	}
	t.policy = p
	r.seq++
	t.seq = r.seq
	r.active[t] = struct{}{}
	r.byObject[obj] = t
	r.tags.inc(tag)

	r.log.Info(entityLine("added", obj, true), zap.String("tag", tag), zap.Stringer("tracker", t.id))

	// A target that died inside the added hook is removed right here.
	t.check()
	return t, nil
}

// emit dispatches one hook call, isolating listener errors and panics.
// Only an added-hook's return value is meaningful, and it is kept even when
// another listener failed.
func (r *Registry) emit(call HookCall) (tag string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("hook panicked",
				zap.String("hook", call.Name()),
				zap.Stringer("kind", call.Kind),
				zap.Any("panic", rec))
			tag = ""
		}
	}()
	out, err := r.sink.Invoke(call)
	if err != nil {
		r.log.Warn("hook failed",
			zap.String("hook", call.Name()),
			zap.Stringer("kind", call.Kind),
			zap.Error(err))
	}
	if call.Kind != HookAdded {
		return ""
	}
	return out
}

// entityLine renders "op | Type / Prefab location", the location only while
// the object is live.
func entityLine(op string, obj Object, live bool) string {
	line := fmt.Sprintf("%s | %s / %s", op, obj.TypeName(), obj.PrefabPath())
	if loc, ok := obj.(Locator); ok && live {
		line += " " + loc.Location()
	}
	return line
}
