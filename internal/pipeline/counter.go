package pipeline

import "sync/atomic"

// ProductionCounter hands out production indices 1..max exactly once each,
// no matter how many producers claim concurrently.
type ProductionCounter struct {
	count atomic.Int64
}

func NewProductionCounter() *ProductionCounter {
	return &ProductionCounter{}
}

// TryClaimNext reserves the next index, or returns ErrExhausted once max
// indices have been handed out.
func (c *ProductionCounter) TryClaimNext(max int) (int, error) {
	for {
		cur := c.count.Load()
		if cur >= int64(max) {
			return 0, ErrExhausted
		}
		if c.count.CompareAndSwap(cur, cur+1) {
			return int(cur + 1), nil
		}
	}
}

// Claimed returns how many indices have been handed out so far.
func (c *ProductionCounter) Claimed() int {
	return int(c.count.Load())
}
