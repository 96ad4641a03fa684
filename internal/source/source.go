// Package source carries spawn notifications from the host into the
// registry's execution context.
package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/comalice/spawnhooks"
	"github.com/comalice/spawnhooks/realtime"
)

// ChannelSource is a buffered spawn feed. Hosts call Notify from any
// goroutine; a Pump drains Events.
type ChannelSource struct {
	ch      chan spawnhooks.Object
	once    sync.Once
	dropped atomic.Uint64
}

// NewChannelSource creates a source with the given buffer size.
func NewChannelSource(buffer int) *ChannelSource {
	return &ChannelSource{ch: make(chan spawnhooks.Object, buffer)}
}

// Notify queues a spawn without blocking. It reports false and counts a drop
// when the buffer is full.
func (s *ChannelSource) Notify(obj spawnhooks.Object) bool {
	select {
	case s.ch <- obj:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Events returns the receive side.
func (s *ChannelSource) Events() <-chan spawnhooks.Object { return s.ch }

// Dropped returns how many notifications Notify discarded.
func (s *ChannelSource) Dropped() uint64 { return s.dropped.Load() }

// Close ends the feed. Notify must not be called afterwards.
func (s *ChannelSource) Close() {
	s.once.Do(func() { close(s.ch) })
}

// Poster queues a callback on the execution context. *realtime.Loop
// implements it.
type Poster interface {
	Post(fn func()) error
}

// Spawner receives spawn notifications. *spawnhooks.Registry implements it.
type Spawner interface {
	OnSpawned(obj spawnhooks.Object) bool
}

// DefaultRetry is the wait before re-posting after a full queue.
const DefaultRetry = 10 * time.Millisecond

// Pump forwards every notification to a Spawner on the Poster's context.
// A full queue is retried rather than dropped.
type Pump struct {
	in     <-chan spawnhooks.Object
	post   Poster
	target Spawner
	retry  time.Duration
	log    *zap.Logger

	forwarded atomic.Uint64
	tracked   atomic.Uint64
}

// NewPump creates a Pump. log may be nil.
func NewPump(in <-chan spawnhooks.Object, post Poster, target Spawner, log *zap.Logger) *Pump {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pump{in: in, post: post, target: target, retry: DefaultRetry, log: log}
}

// Run forwards until ctx is done or the input is closed. It returns the
// Poster's error if the loop has stopped.
func (p *Pump) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case obj, ok := <-p.in:
			if !ok {
				return nil
			}
			if err := p.forward(ctx, obj); err != nil {
				return err
			}
		}
	}
}

func (p *Pump) forward(ctx context.Context, obj spawnhooks.Object) error {
	fn := func() {
		if p.target.OnSpawned(obj) {
			p.tracked.Add(1)
		}
	}
	for {
		err := p.post.Post(fn)
		if err == nil {
			p.forwarded.Add(1)
			return nil
		}
		if !errors.Is(err, realtime.ErrQueueFull) {
			return err
		}
		p.log.Debug("loop queue full, retrying", zap.String("type", obj.TypeName()))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(p.retry):
		}
	}
}

// Forwarded returns how many notifications were posted.
func (p *Pump) Forwarded() uint64 { return p.forwarded.Load() }

// Tracked returns how many forwarded notifications produced a tracker.
func (p *Pump) Tracked() uint64 { return p.tracked.Load() }
