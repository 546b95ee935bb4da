// Package live is the subscription multiplexer: it turns a query over a
// collection into a continuously updated sequence of result snapshots,
// hiding whether the underlying transport supports server push.
//
// A snapshot is always the full materialized query result, never a diff.
// Two interchangeable strategies produce the sequence:
//
//   - push: re-fetch and deliver whenever a Notifier signals that the
//     query's topic changed;
//   - poll: re-fetch and deliver on a fixed interval, every tick, whether
//     or not anything changed.
//
// Consumers must tolerate a stale snapshot arriving after a fresher one
// (possible under polling): because each delivery is full state, keeping
// the last snapshot is always sound.
package live

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultPollInterval matches the reference polling cadence.
const DefaultPollInterval = 2 * time.Second

// Fetch reads the current snapshot of a query. Implementations surface
// transport failures as errors; they are retried on the next cycle.
type Fetch[T any] func(ctx context.Context) (T, error)

// CancelFunc tears down one subscription and releases its timer or
// listener. After it returns no new delivery starts; at most the delivery
// already in flight completes, and it carries a snapshot fetched before
// the cancel. Calling it more than once is safe, including from inside
// the subscription's own deliver callback.
type CancelFunc func()

// Notifier yields change signals for a topic. The realtime hub implements
// it in process; the client's websocket watcher implements it remotely.
// The returned channel closes when the source is gone for good.
type Notifier interface {
	Notify(ctx context.Context, topic string) (<-chan struct{}, func(), error)
}

// Multiplexer selects and parameterizes the strategy for every
// subscription made through it.
type Multiplexer struct {
	// Notifier enables the push strategy. Nil selects polling.
	Notifier Notifier

	// Interval is the poll cadence. Zero means DefaultPollInterval.
	Interval time.Duration
}

func (m *Multiplexer) interval() time.Duration {
	if m.Interval > 0 {
		return m.Interval
	}
	return DefaultPollInterval
}

// Subscribe starts a live subscription: an immediate fetch+deliver, then
// re-deliveries per the multiplexer's strategy. deliver runs on the
// subscription's own goroutine; a slow consumer delays its own stream
// only. A failed fetch is logged and skipped — the stream is never
// abandoned, the next cycle retries.
func Subscribe[T any](m *Multiplexer, topic string, fetch Fetch[T], deliver func(T)) CancelFunc {
	ctx, stop := context.WithCancel(context.Background())
	g := &guard{}

	tick := func() {
		v, err := fetch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Debug("snapshot fetch failed; keeping last snapshot", "topic", topic, "error", err)
			}
			return
		}
		g.run(func() { deliver(v) })
	}

	if m.Notifier != nil {
		go pushLoop(ctx, m.Notifier, topic, tick)
	} else {
		go pollLoop(ctx, m.interval(), tick)
	}

	return func() {
		g.stop()
		stop()
	}
}

// pollLoop delivers a snapshot immediately and then on every tick.
// Delivery happens every interval regardless of whether data changed:
// at-least-once, not change-triggered.
func pollLoop(ctx context.Context, interval time.Duration, tick func()) {
	tick()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick()
		}
	}
}

// pushLoop delivers a snapshot immediately and then on every change
// signal. If the notifier cannot register the listener, the subscription
// degrades to polling at the default interval rather than going silent.
func pushLoop(ctx context.Context, n Notifier, topic string, tick func()) {
	ch, cancel, err := n.Notify(ctx, topic)
	if err != nil {
		slog.Warn("push listener unavailable; degrading to poll", "topic", topic, "error", err)
		pollLoop(ctx, DefaultPollInterval, tick)
		return
	}
	defer cancel()

	tick()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			tick()
		}
	}
}

// guard makes cancellation prompt: once stop returns, no new deliver
// call can start. Deliveries are already serialized by the subscription
// goroutine, so run only checks the flag under the lock and invokes the
// callback outside it. That keeps stop reentrancy-safe: a consumer may
// call its own CancelFunc from inside the deliver callback without
// deadlocking the subscription goroutine.
type guard struct {
	mu      sync.Mutex
	stopped bool
}

func (g *guard) run(f func()) {
	g.mu.Lock()
	stopped := g.stopped
	g.mu.Unlock()
	if !stopped {
		f()
	}
}

func (g *guard) stop() {
	g.mu.Lock()
	g.stopped = true
	g.mu.Unlock()
}
