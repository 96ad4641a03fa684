// Package realtime provides the single execution context that drives a
// spawnhooks.Registry: one goroutine, a fixed tick, and cancellable deferred
// callbacks.
//
// Every tick the loop collects the callbacks that are due, orders them, and
// runs them one after another on the loop goroutine. Nothing a callback does
// can race with another callback, so the registry needs no locks.
//
// # Example Usage
//
//	loop := realtime.NewLoop(realtime.Config{TickRate: 50 * time.Millisecond})
//	reg, _ := spawnhooks.NewRegistry(env, table, spawnhooks.WithScheduler(loop))
//	loop.Start(ctx)
//	defer loop.Stop()
//	loop.Post(func() { reg.Initialize(true) })
//
// # Ordering Guarantees
//
// Callbacks due in the same tick run ordered by:
//  1. Due time (earlier first)
//  2. Priority (higher first; posted tasks outrank timers)
//  3. Sequence number (FIFO for everything else)
//
// A callback scheduled with a zero delay from inside a tick runs on the next
// tick, never the current one.
//
// # Cancellation
//
// Timer.Stop takes effect immediately. A timer stopped by an earlier callback
// in the same tick does not run, even if it was already collected as due.
//
// # Precision
//
// Deadlines are quantized to the tick rate. A timer fires on the first tick
// at or after its deadline, so latency is bounded by one tick.
package realtime
