// Package broadcast implements a latest-value broadcaster: one mutex
// guarded slot, any number of subscribers, every subscriber always reads
// the most recent value and coalesces whatever it missed in between.
// This is the condition-variable idiom the rest of this codebase uses for
// its in-process queue, narrowed down to a single overwriting slot
// instead of a FIFO.
package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/keyrock-quant/obagg/internal/orderbook"
)

// Broadcaster holds the current OutTick and wakes every waiting
// subscriber whenever Publish replaces it.
type Broadcaster struct {
	mu      sync.Mutex
	cond    *sync.Cond
	value   orderbook.OutTick
	version uint64
	closed  bool
}

// New returns a Broadcaster whose initial value is the zero OutTick, so a
// subscriber that calls Next before the first Publish still gets an
// immediate, well-formed snapshot instead of blocking forever.
func New() *Broadcaster {
	b := &Broadcaster{value: orderbook.NewOutTick()}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish replaces the held value and wakes every subscriber. It never
// blocks on subscriber behavior, slow or absent readers cannot back up a
// publisher.
func (b *Broadcaster) Publish(tick orderbook.OutTick) {
	b.mu.Lock()
	b.value = tick
	b.version++
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Close wakes every blocked subscriber so their Next calls can return.
// The closed state is permanent: from then on any Next call that has no
// newer value to return gets context.Canceled instead of waiting.
// Subscribe still works, and a fresh cursor's first Next still returns
// the current value. Callers normally pair Close with cancelling the
// context passed to Next.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cond.Broadcast()
}

// Cursor tracks one subscriber's position in the version sequence. Each
// cursor carries its own session ID so callers can correlate log lines
// and metrics with one particular subscriber; a client that subscribes
// again gets a new ID.
type Cursor struct {
	b         *Broadcaster
	ID        uuid.UUID
	lastSeen  uint64
	sawAnyYet bool
}

// Subscribe returns a cursor with a fresh session ID. The first call to
// Next on a fresh cursor returns the current value immediately, even if
// Publish has never been called.
func (b *Broadcaster) Subscribe() *Cursor {
	return &Cursor{b: b, ID: uuid.New()}
}

// Next blocks until a value newer than the one this cursor already
// observed becomes available, or ctx is done, or the broadcaster is
// closed. A cursor that has never observed anything receives the current
// value on its first call without waiting for a Publish.
func (c *Cursor) Next(ctx context.Context) (orderbook.OutTick, error) {
	b := c.b

	// context cancellation doesn't interrupt sync.Cond.Wait directly, so a
	// watcher goroutine broadcasts on ctx.Done() to wake this cursor up.
	stop := make(chan struct{})
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				b.cond.Broadcast()
			case <-stop:
			}
		}()
		defer close(stop)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return orderbook.OutTick{}, err
			}
		}

		if !c.sawAnyYet || b.version != c.lastSeen {
			c.sawAnyYet = true
			c.lastSeen = b.version
			return b.value, nil
		}

		if b.closed {
			return orderbook.OutTick{}, context.Canceled
		}

		b.cond.Wait()
	}
}
