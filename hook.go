package spawnhooks

import "fmt"

// Default hook names used when a policy leaves its custom name empty.
const (
	DefaultAddedHook          = "OnEntitySpawned"
	DefaultRemovedHook        = "OnEntityRemoved"
	DefaultGroupExhaustedHook = "OnGroupEntityRemoved"
)

// HookKind identifies one of the three synthetic events.
type HookKind int

const (
	HookAdded HookKind = iota
	HookRemoved
	HookGroupExhausted
)

func (k HookKind) String() string {
	switch k {
	case HookAdded:
		return "added"
	case HookRemoved:
		return "removed"
	case HookGroupExhausted:
		return "group-exhausted"
	default:
		return fmt.Sprintf("HookKind(%d)", int(k))
	}
}

// HookCall is a single hook emission. Which fields are set depends on Kind:
//
//	HookAdded:          Category, Object, Counts (before the add)
//	HookRemoved:        Category, Object, Tag, Counts (after the removal)
//	HookGroupExhausted: Category, Tag
type HookCall struct {
	Kind     HookKind
	Policy   *Policy
	Category string
	Object   Object
	Tag      string
	Counts   TagCounts
}

// Name resolves the configured hook name for this call.
func (c HookCall) Name() string {
	if c.Policy == nil {
		return defaultHookName(c.Kind)
	}
	return c.Policy.HookName(c.Kind)
}

// EventSink receives hook calls. For HookAdded a non-empty return value
// overrides the tracker's tag; it is ignored for other kinds.
type EventSink interface {
	Invoke(call HookCall) (string, error)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(call HookCall) (string, error)

func (f SinkFunc) Invoke(call HookCall) (string, error) { return f(call) }

type nopSink struct{}

func (nopSink) Invoke(HookCall) (string, error) { return "", nil }

// NopSink discards every call.
var NopSink EventSink = nopSink{}

func defaultHookName(k HookKind) string {
	switch k {
	case HookAdded:
		return DefaultAddedHook
	case HookRemoved:
		return DefaultRemovedHook
	case HookGroupExhausted:
		return DefaultGroupExhaustedHook
	default:
		return ""
	}
}
