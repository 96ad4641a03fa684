// Package console implements the operator commands:
//
//	spawns             help
//	spawns.find NAME   search live entities by type or prefab
//	spawns.debug       toggle debug logging
//	spawns.reload      reset and rescan tracking
//
// Commands must run on the registry's execution context.
package console

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/comalice/spawnhooks"
)

// Command names.
const (
	CmdHelp   = "spawns"
	CmdFind   = "spawns.find"
	CmdDebug  = "spawns.debug"
	CmdReload = "spawns.reload"
)

// Caller is the player issuing a command. A nil Caller is the server console
// and is always allowed.
type Caller interface {
	IsAdmin() bool
}

// DebugSwitch is the runtime debug toggle, typically *logging.Logger.
type DebugSwitch interface {
	DebugEnabled() bool
	ToggleDebug() bool
}

// Console executes operator commands against a registry.
type Console struct {
	reg   *spawnhooks.Registry
	env   spawnhooks.Environment
	debug DebugSwitch
	log   *zap.Logger
}

// New creates a Console. log may be nil.
func New(reg *spawnhooks.Registry, env spawnhooks.Environment, debug DebugSwitch, log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	return &Console{reg: reg, env: env, debug: debug, log: log}
}

// Exec runs one command line. handled is false for lines that are not
// console commands. Non-admin callers get an empty reply.
func (c *Console) Exec(caller Caller, line string) (reply string, handled bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case CmdHelp, CmdFind, CmdDebug, CmdReload:
	default:
		return "", false
	}
	if caller != nil && !caller.IsAdmin() {
		return "", true
	}

	switch name {
	case CmdFind:
		if len(args) == 0 {
			return c.help(), true
		}
		return c.find(args[0]), true
	case CmdDebug:
		if c.debug.ToggleDebug() {
			return "Debug enabled", true
		}
		return "Debug disabled", true
	case CmdReload:
		n := c.reg.Reload()
		return fmt.Sprintf("Spawns reloaded: %d tracked, %d added", c.reg.Len(), n), true
	default:
		return c.help(), true
	}
}

func (c *Console) help() string {
	state := "Disabled"
	if c.debug.DebugEnabled() {
		state = "Enabled"
	}
	return strings.Join([]string{
		CmdFind + " [name] - search spawned entity",
		fmt.Sprintf("%s - toggle debug mode (%s)", CmdDebug, state),
		CmdReload + " - reset and rescan tracked entities",
	}, "\n")
}

// Find returns live objects whose type name or prefab path starts with s,
// followed by those that only contain it. Matching is caseless and each
// object appears once.
func (c *Console) Find(s string) []spawnhooks.Object {
	fold := cases.Fold()
	needle := fold.String(s)

	var live []spawnhooks.Object
	for _, obj := range c.env.LiveObjects() {
		if obj != nil && c.env.IsLive(obj) {
			live = append(live, obj)
		}
	}

	passes := []func(typeName, prefab string) bool{
		func(t, _ string) bool { return strings.HasPrefix(t, needle) },
		func(_, p string) bool { return strings.HasPrefix(p, needle) },
		func(t, _ string) bool { return strings.Contains(t, needle) },
		func(_, p string) bool { return strings.Contains(p, needle) },
	}
	seen := make(map[spawnhooks.Object]struct{})
	var out []spawnhooks.Object
	for _, match := range passes {
		for _, obj := range live {
			if _, ok := seen[obj]; ok {
				continue
			}
			if match(fold.String(obj.TypeName()), fold.String(obj.PrefabPath())) {
				seen[obj] = struct{}{}
				out = append(out, obj)
			}
		}
	}
	return out
}

func (c *Console) find(s string) string {
	found := c.Find(s)
	if len(found) == 0 {
		return fmt.Sprintf("No entities matching %q", s)
	}
	blocks := make([]string, 0, len(found))
	for _, obj := range found {
		blocks = append(blocks, c.describe(obj))
		c.log.Info(fmt.Sprintf("find | %s / %s", obj.TypeName(), obj.PrefabPath()))
	}
	return strings.Join(blocks, "\n")
}

func (c *Console) describe(obj spawnhooks.Object) string {
	var info []string
	if d, ok := obj.(spawnhooks.Describer); ok {
		info = d.Describe()
	} else {
		info = []string{obj.TypeName(), "Prefab: " + obj.PrefabPath()}
	}
	if t, ok := c.reg.Tracker(obj); ok {
		info = append(info, "Tag: "+t.Tag())
	}
	return strings.Join(info, "\n  ")
}
