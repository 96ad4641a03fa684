package spawnhooks

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
)

// TableBuilder provides a fluent API for constructing a classification table
// in configured order.
type TableBuilder struct {
	policies []Policy
	seen     map[string]int
	err      error
}

// PolicyBuilder provides fluent methods for configuring a single policy.
type PolicyBuilder struct {
	b   *TableBuilder
	idx int
}

// NewTableBuilder creates an empty builder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{seen: make(map[string]int)}
}

// Track appends a policy for the discriminator name, or returns the existing
// one when the name (caseless) was already added. Re-adding does not change
// its position.
func (b *TableBuilder) Track(name string) *PolicyBuilder {
	key := cases.Fold().String(name)
	if idx, ok := b.seen[key]; ok {
		return &PolicyBuilder{b: b, idx: idx}
	}
	if name == "" && b.err == nil {
		b.err = fmt.Errorf("policy %d: empty name", len(b.policies))
	}
	b.policies = append(b.policies, Policy{Name: name})
	b.seen[key] = len(b.policies) - 1
	return &PolicyBuilder{b: b, idx: len(b.policies) - 1}
}

// Build validates the policies and constructs the Table.
func (b *TableBuilder) Build() (*Table, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, p := range b.policies {
		if p.PollInterval <= 0 {
			return nil, fmt.Errorf("policy %q: %w", p.Name, ErrZeroInterval)
		}
	}
	return NewTable(b.policies...), nil
}

// MustBuild is Build that panics on error. Intended for tests and examples.
func (b *TableBuilder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

// Every sets the liveness poll interval.
func (pb *PolicyBuilder) Every(d time.Duration) *PolicyBuilder {
	pb.b.policies[pb.idx].PollInterval = d
	return pb
}

// OnAdded sets a custom added-hook name.
func (pb *PolicyBuilder) OnAdded(hook string) *PolicyBuilder {
	pb.b.policies[pb.idx].AddedHook = hook
	return pb
}

// OnRemoved sets a custom removed-hook name.
func (pb *PolicyBuilder) OnRemoved(hook string) *PolicyBuilder {
	pb.b.policies[pb.idx].RemovedHook = hook
	return pb
}

// OnGroupExhausted sets a custom group-exhausted-hook name.
func (pb *PolicyBuilder) OnGroupExhausted(hook string) *PolicyBuilder {
	pb.b.policies[pb.idx].GroupExhaustedHook = hook
	return pb
}

// Track continues the chain with another policy.
func (pb *PolicyBuilder) Track(name string) *PolicyBuilder {
	return pb.b.Track(name)
}

// Build finishes the chain.
func (pb *PolicyBuilder) Build() (*Table, error) {
	return pb.b.Build()
}

// MustBuild finishes the chain, panicking on error.
func (pb *PolicyBuilder) MustBuild() *Table {
	return pb.b.MustBuild()
}
