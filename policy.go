package spawnhooks

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// PrefabSuffix marks a discriminator that is matched against the prefab path
// instead of only the type name.
const PrefabSuffix = ".prefab"

// Policy is an immutable tracking rule for one category.
type Policy struct {
	// Name is the discriminator: a type name, or a prefab path ending in
	// PrefabSuffix. It is also the category name and the default tag.
	Name         string
	PollInterval time.Duration

	AddedHook          string
	RemovedHook        string
	GroupExhaustedHook string

	folded string
	prefab bool
}

// HookName returns the custom hook name for k, or the default.
func (p *Policy) HookName(k HookKind) string {
	var custom string
	switch k {
	case HookAdded:
		custom = p.AddedHook
	case HookRemoved:
		custom = p.RemovedHook
	case HookGroupExhausted:
		custom = p.GroupExhaustedHook
	}
	if custom != "" {
		return custom
	}
	return defaultHookName(k)
}

// IsPrefab reports whether the discriminator is a prefab path.
func (p *Policy) IsPrefab() bool { return p.prefab }

// Table is the ordered, immutable classification table.
type Table struct {
	policies []*Policy
}

// NewTable copies policies into a table, keeping their order.
// Policies with an empty name can never match and are dropped.
func NewTable(policies ...Policy) *Table {
	fold := cases.Fold()
	t := &Table{policies: make([]*Policy, 0, len(policies))}
	for _, p := range policies {
		if p.Name == "" {
			continue
		}
		p.folded = fold.String(p.Name)
		p.prefab = strings.HasSuffix(p.folded, PrefabSuffix)
		t.policies = append(t.policies, &p)
	}
	return t
}

// Lookup returns the first policy, in table order, whose discriminator equals
// typeName, or, for prefab discriminators, equals pathName. Comparison is
// caseless. It returns nil on a miss.
func (t *Table) Lookup(typeName, pathName string) *Policy {
	if t == nil || len(t.policies) == 0 {
		return nil
	}
	fold := cases.Fold()
	typeKey := fold.String(typeName)
	pathKey := fold.String(pathName)
	for _, p := range t.policies {
		if p.folded == typeKey {
			return p
		}
		if p.prefab && pathName != "" && p.folded == pathKey {
			return p
		}
	}
	return nil
}

// Classify is Lookup on an object's type name and prefab path.
func (t *Table) Classify(obj Object) *Policy {
	if obj == nil {
		return nil
	}
	return t.Lookup(obj.TypeName(), obj.PrefabPath())
}

// Policies returns the table's policies in order.
func (t *Table) Policies() []*Policy {
	if t == nil {
		return nil
	}
	out := make([]*Policy, len(t.policies))
	copy(out, t.policies)
	return out
}

// Len returns the number of policies.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.policies)
}
