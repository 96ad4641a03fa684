package realtime

import (
	"sort"
	"time"
)

const (
	priorityTimer = 0
	priorityTask  = 1
)

// entry is one pending callback with sequencing metadata for deterministic
// ordering.
type entry struct {
	fn          func()
	due         time.Time
	sequenceNum uint64
	priority    int

	// guarded by Loop.mu
	cancelled bool
	fired     bool
}

// sortEntries orders due entries deterministically.
// Stable sort preserves insertion order for equal keys.
func sortEntries(entries []*entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].due.Equal(entries[j].due) {
			return entries[i].due.Before(entries[j].due)
		}
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].sequenceNum < entries[j].sequenceNum
	})
}
