// Package hooks is the outermost dispatch boundary between a Registry and
// the listeners interested in its events.
//
// A Registry emits typed spawnhooks.HookCall values. The sinks here resolve
// the configured hook name for each call and fan it out:
//
//   - Dispatcher: name-indexed listeners, isolated from each other
//   - ChannelSink: non-blocking hand-off to another goroutine
//   - LoggingSink: zap decorator around any sink
//   - MultiSink: fan-out to several sinks
//
// Unregistered hook names are no-ops.
package hooks
