package testutil

import (
	"github.com/comalice/spawnhooks"
)

// RecordingSink records every hook call. Tagger, when set, supplies the
// added-hook return value.
type RecordingSink struct {
	Tagger func(call spawnhooks.HookCall) string
	Err    error
	calls  []spawnhooks.HookCall
}

// Invoke implements spawnhooks.EventSink.
func (s *RecordingSink) Invoke(call spawnhooks.HookCall) (string, error) {
	s.calls = append(s.calls, call)
	if s.Err != nil {
		return "", s.Err
	}
	if s.Tagger != nil && call.Kind == spawnhooks.HookAdded {
		return s.Tagger(call), nil
	}
	return "", nil
}

// Calls returns every recorded call, optionally filtered to kinds.
func (s *RecordingSink) Calls(kinds ...spawnhooks.HookKind) []spawnhooks.HookCall {
	if len(kinds) == 0 {
		return append([]spawnhooks.HookCall(nil), s.calls...)
	}
	var out []spawnhooks.HookCall
	for _, c := range s.calls {
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Count returns the number of calls of kind k.
func (s *RecordingSink) Count(k spawnhooks.HookKind) int {
	return len(s.Calls(k))
}

// Reset forgets recorded calls.
func (s *RecordingSink) Reset() { s.calls = nil }
