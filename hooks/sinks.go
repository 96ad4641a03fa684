package hooks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/comalice/spawnhooks"
)

// Event is a hook call paired with its resolved name.
type Event struct {
	Name string
	Call spawnhooks.HookCall
	At   time.Time
}

// ErrSinkClosed is returned by a ChannelSink after Close.
var ErrSinkClosed = errors.New("sink closed")

// ChannelSink forwards calls to a channel. Sends never block: when the
// channel is full the event is dropped and counted. It never overrides tags.
type ChannelSink struct {
	ch      chan<- Event
	ctx     context.Context
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

// NewChannelSink creates a ChannelSink. Once ctx is done every call returns
// ctx.Err().
func NewChannelSink(ctx context.Context, ch chan<- Event) *ChannelSink {
	return &ChannelSink{ch: ch, ctx: ctx}
}

func (s *ChannelSink) Invoke(call spawnhooks.HookCall) (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrSinkClosed
	}
	select {
	case s.ch <- Event{Name: call.Name(), Call: call, At: time.Now()}:
	default:
		s.dropped.Add(1)
	}
	return "", nil
}

// Dropped returns how many events were dropped on a full channel.
func (s *ChannelSink) Dropped() uint64 { return s.dropped.Load() }

// Close closes the output channel. Later calls return ErrSinkClosed.
func (s *ChannelSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.ch)
	return nil
}

// LoggingSink wraps a sink and logs every call.
type LoggingSink struct {
	inner spawnhooks.EventSink
	log   *zap.Logger
}

// NewLoggingSink creates a LoggingSink around inner. A nil logger disables
// logging.
func NewLoggingSink(inner spawnhooks.EventSink, log *zap.Logger) *LoggingSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingSink{inner: inner, log: log}
}

func (s *LoggingSink) Invoke(call spawnhooks.HookCall) (string, error) {
	start := time.Now()
	out, err := s.inner.Invoke(call)
	fields := []zap.Field{
		zap.String("hook", call.Name()),
		zap.String("category", call.Category),
		zap.String("tag", call.Tag),
		zap.Duration("took", time.Since(start)),
	}
	if out != "" {
		fields = append(fields, zap.String("result", out))
	}
	if err != nil {
		s.log.Warn("hook", append(fields, zap.Error(err))...)
	} else {
		s.log.Debug("hook", fields...)
	}
	return out, err
}

// MultiSink fans a call out to every sink in order. The first non-empty
// result wins, even from a sink that also reported an error; errors are
// joined.
type MultiSink []spawnhooks.EventSink

func (m MultiSink) Invoke(call spawnhooks.HookCall) (string, error) {
	var (
		result string
		errs   []error
	)
	for _, s := range m {
		out, err := s.Invoke(call)
		if err != nil {
			errs = append(errs, err)
		}
		if result == "" {
			result = out
		}
	}
	return result, errors.Join(errs...)
}
