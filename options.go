package spawnhooks

import "go.uber.org/zap"

// Option configures a Registry.
type Option func(*Registry)

// WithScheduler sets the scheduler trackers use for their liveness checks.
// Required.
func WithScheduler(s Scheduler) Option {
	return func(r *Registry) {
		r.sched = s
	}
}

// WithSink sets the hook sink. Defaults to NopSink.
func WithSink(s EventSink) Option {
	return func(r *Registry) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.log = l
		}
	}
}
