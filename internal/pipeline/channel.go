package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// BoundedChannel is a fixed-capacity FIFO shared by producers and consumers.
//
// Besides the items themselves it tracks unfinished work: every Put registers
// one unit before the item becomes visible to consumers, and every Done
// acknowledges one processed item. WaitDrained returns once nothing is
// unfinished, which is stronger than observing an empty buffer.
type BoundedChannel struct {
	items     chan Item
	highWater atomic.Int64
	closed    atomic.Bool

	mu         sync.Mutex
	unfinished int
	idle       chan struct{} // closed while unfinished == 0
}

func NewBoundedChannel(capacity int) *BoundedChannel {
	if capacity <= 0 {
		violate("channel capacity must be positive, got %d", capacity)
	}

	idle := make(chan struct{})
	close(idle)
	return &BoundedChannel{
		items: make(chan Item, capacity),
		idle:  idle,
	}
}

// Put blocks until there is free capacity and appends item at the tail. It
// only fails if ctx is done first.
func (c *BoundedChannel) Put(ctx context.Context, item Item) error {
	c.checkOpen("put")
	c.register()

	select {
	case c.items <- item:
	case <-ctx.Done():
		c.Done()
		return ctx.Err()
	}

	n := int64(len(c.items))
	if n > int64(cap(c.items)) {
		violate("channel length %d exceeds capacity %d", n, cap(c.items))
	}
	for {
		hw := c.highWater.Load()
		if n <= hw || c.highWater.CompareAndSwap(hw, n) {
			break
		}
	}
	return nil
}

// Get removes and returns the head item, waiting at most timeout for one to
// arrive. It returns ErrEmpty when the timeout elapses and ctx.Err() when ctx
// is done first. A buffered item always wins over a done ctx.
func (c *BoundedChannel) Get(ctx context.Context, timeout time.Duration) (Item, error) {
	c.checkOpen("get")

	select {
	case item := <-c.items:
		return item, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case item := <-c.items:
		return item, nil
	case <-timer.C:
		return Item{}, ErrEmpty
	case <-ctx.Done():
		return Item{}, ctx.Err()
	}
}

// IsEmpty is a point-in-time hint; it may be stale as soon as it returns.
func (c *BoundedChannel) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *BoundedChannel) Len() int {
	return len(c.items)
}

func (c *BoundedChannel) Cap() int {
	return cap(c.items)
}

// HighWater returns the largest length observed right after a put.
func (c *BoundedChannel) HighWater() int {
	return int(c.highWater.Load())
}

// Done acknowledges that one dequeued item has been fully processed.
func (c *BoundedChannel) Done() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unfinished == 0 {
		violate("Done called more times than items were put")
	}
	c.unfinished--
	if c.unfinished == 0 {
		close(c.idle)
	}
}

// Unfinished returns the number of items put but not yet acknowledged.
func (c *BoundedChannel) Unfinished() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unfinished
}

// WaitDrained blocks until every item put so far has been acknowledged.
func (c *BoundedChannel) WaitDrained(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close tears the channel down. Any later Put or Get is a programming error.
func (c *BoundedChannel) Close() {
	c.closed.Store(true)
}

func (c *BoundedChannel) register() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unfinished == 0 {
		c.idle = make(chan struct{})
	}
	c.unfinished++
}

func (c *BoundedChannel) checkOpen(op string) {
	if c.closed.Load() {
		violate("%s on a closed channel", op)
	}
}
