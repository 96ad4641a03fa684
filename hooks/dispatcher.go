package hooks

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/comalice/spawnhooks"
)

// Listener handles calls for one hook name. Only the return value of an
// added-hook listener is used; it overrides the tag when non-empty.
type Listener func(call spawnhooks.HookCall) (string, error)

// ListenerPanic is returned when a listener panics.
type ListenerPanic struct {
	Hook  string
	Value any
}

func (p *ListenerPanic) Error() string {
	return fmt.Sprintf("listener for %s panicked: %v", p.Hook, p.Value)
}

type entry struct {
	id int
	fn Listener
}

// Dispatcher routes hook calls to listeners registered by hook name.
// Listeners for one name run in registration order. A failing listener
// does not stop the others.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]entry
	nextID    int
	log       *zap.Logger
}

// NewDispatcher creates an empty dispatcher. A nil logger disables logging.
func NewDispatcher(log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		listeners: make(map[string][]entry),
		log:       log,
	}
}

// On registers fn for hook and returns a function that removes it.
func (d *Dispatcher) On(hook string, fn Listener) (remove func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.listeners[hook] = append(d.listeners[hook], entry{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.listeners[hook] = slices.DeleteFunc(d.listeners[hook], func(e entry) bool { return e.id == id })
			if len(d.listeners[hook]) == 0 {
				delete(d.listeners, hook)
			}
		})
	}
}

// Has reports whether any listener is registered for hook.
func (d *Dispatcher) Has(hook string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[hook]) > 0
}

// Hooks returns the registered hook names, sorted.
func (d *Dispatcher) Hooks() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.listeners))
	for name := range d.listeners {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Invoke implements spawnhooks.EventSink. The first non-empty result wins.
// Listener errors and panics are joined into the returned error.
func (d *Dispatcher) Invoke(call spawnhooks.HookCall) (string, error) {
	name := call.Name()

	d.mu.RLock()
	ls := slices.Clone(d.listeners[name])
	d.mu.RUnlock()

	if len(ls) == 0 {
		return "", nil
	}

	var (
		result string
		errs   []error
	)
	for _, l := range ls {
		out, err := callListener(name, l.fn, call)
		if err != nil {
			d.log.Debug("listener failed", zap.String("hook", name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if result == "" {
			result = out
		}
	}
	return result, errors.Join(errs...)
}

func callListener(name string, fn Listener, call spawnhooks.HookCall) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", &ListenerPanic{Hook: name, Value: r}
		}
	}()
	return fn(call)
}
