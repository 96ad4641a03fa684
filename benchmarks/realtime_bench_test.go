package benchmarks

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/comalice/spawnhooks/realtime"
)

// manualClock lets Tick run without the ticker goroutine.
type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time { return c.now }

// BenchmarkTickTimers measures one tick firing n due timers.
func BenchmarkTickTimers(b *testing.B) {
	clock := &manualClock{now: time.Unix(0, 0)}
	loop := realtime.NewLoop(realtime.Config{Clock: clock.Now})
	const n = 1000
	var fired int
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < n; j++ {
			loop.AfterFunc(time.Duration(j%10)*time.Millisecond, func() { fired++ })
		}
		clock.now = clock.now.Add(10 * time.Millisecond)
		loop.Tick()
	}
	b.StopTimer()
	if fired != n*b.N {
		b.Fatalf("fired %d, want %d", fired, n*b.N)
	}
}

// BenchmarkTimerCancel measures scheduling and cancelling before the tick.
func BenchmarkTimerCancel(b *testing.B) {
	clock := &manualClock{now: time.Unix(0, 0)}
	loop := realtime.NewLoop(realtime.Config{Clock: clock.Now})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		loop.AfterFunc(time.Second, func() {}).Stop()
		if i%1000 == 999 {
			loop.Tick()
		}
	}
}

// BenchmarkDoLatency measures the round trip of Do on a running loop.
func BenchmarkDoLatency(b *testing.B) {
	loop := realtime.NewLoop(realtime.Config{TickRate: 100 * time.Microsecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := loop.Start(ctx); err != nil {
		b.Fatal(err)
	}
	defer loop.Stop()

	var ran atomic.Int64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := loop.Do(ctx, func() { ran.Add(1) }); err != nil {
			b.Fatal(err)
		}
	}
	b.StopTimer()
	if ran.Load() != int64(b.N) {
		b.Fatalf("ran %d, want %d", ran.Load(), b.N)
	}
}
