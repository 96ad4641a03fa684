package spawnhooks

import (
	"maps"
	"slices"
)

// TagCounts is a snapshot of live tracker counts per tag. Tags with no live
// trackers are absent, so indexing a depleted tag yields 0.
type TagCounts map[string]uint

// Tags returns the tags in sorted order.
func (c TagCounts) Tags() []string {
	return slices.Sorted(maps.Keys(c))
}

// Total returns the sum of all counts.
func (c TagCounts) Total() uint {
	var n uint
	for _, v := range c {
		n += v
	}
	return n
}

// tagIndex is the registry's incremental per-tag index. It is mutated only
// together with the active set.
type tagIndex struct {
	counts map[string]uint
}

func newTagIndex() tagIndex {
	return tagIndex{counts: make(map[string]uint)}
}

func (x *tagIndex) inc(tag string) uint {
	x.counts[tag]++
	return x.counts[tag]
}

// dec decrements and returns the remaining count, dropping the key at zero.
// Decrementing an absent tag is a no-op returning 0.
func (x *tagIndex) dec(tag string) uint {
	n, ok := x.counts[tag]
	if !ok {
		return 0
	}
	if n <= 1 {
		delete(x.counts, tag)
		return 0
	}
	x.counts[tag] = n - 1
	return n - 1
}

func (x *tagIndex) get(tag string) uint {
	return x.counts[tag]
}

// snapshot returns a copy safe to hand to hook listeners.
func (x *tagIndex) snapshot() TagCounts {
	return TagCounts(maps.Clone(x.counts))
}

func (x *tagIndex) reset() {
	clear(x.counts)
}
