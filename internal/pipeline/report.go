package pipeline

import (
	"sync"
	"time"

	"github.com/benbjohnson/immutable"
)

// Delivery records who produced and who consumed an item.
type Delivery struct {
	Producer int
	Consumer int
}

type Report struct {
	Config    Config
	Elapsed   time.Duration
	HighWater int

	// Items enqueued per producer id and processed per consumer id.
	Produced map[int]int
	Consumed map[int]int

	// Ledger maps every consumed item index to its delivery.
	Ledger *immutable.SortedMap[int, Delivery]

	// ConsumersExited is closed once every consumer has returned.
	ConsumersExited <-chan struct{}
}

func (r *Report) TotalProduced() int {
	return sum(r.Produced)
}

func (r *Report) TotalConsumed() int {
	return sum(r.Consumed)
}

// Labels returns the consumed item labels in index order.
func (r *Report) Labels() []string {
	labels := make([]string, 0, r.Ledger.Len())
	for itr := r.Ledger.Iterator(); !itr.Done(); {
		index, _, _ := itr.Next()
		labels = append(labels, NewItem(index).Label())
	}
	return labels
}

func sum(m map[int]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// recorder is the sink the coordinator always installs. It builds the
// report and enforces exactly-once production and consumption.
type recorder struct {
	mu       sync.Mutex
	produced map[int]int
	consumed map[int]int
	pending  map[int]int // index -> producer, not yet consumed
	ledger   *immutable.SortedMap[int, Delivery]
	seen     map[int]bool
}

func newRecorder() *recorder {
	return &recorder{
		produced: make(map[int]int),
		consumed: make(map[int]int),
		pending:  make(map[int]int),
		ledger:   immutable.NewSortedMap[int, Delivery](nil),
		seen:     make(map[int]bool),
	}
}

func (r *recorder) Observe(e Event) {
	switch e.Kind {
	case ItemProduced:
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.seen[e.Item.Index] {
			violate("%s produced twice", e.Item.Label())
		}
		r.seen[e.Item.Index] = true
		r.produced[e.Worker]++
		// A consumer may report the item before its producer does.
		if d, ok := r.ledger.Get(e.Item.Index); ok {
			d.Producer = e.Worker
			r.ledger = r.ledger.Set(e.Item.Index, d)
		} else {
			r.pending[e.Item.Index] = e.Worker
		}

	case ItemConsumed:
		r.mu.Lock()
		defer r.mu.Unlock()

		if _, ok := r.ledger.Get(e.Item.Index); ok {
			violate("%s consumed twice", e.Item.Label())
		}
		r.consumed[e.Worker]++
		r.ledger = r.ledger.Set(e.Item.Index, Delivery{
			Producer: r.pending[e.Item.Index],
			Consumer: e.Worker,
		})
		delete(r.pending, e.Item.Index)
	}
}

func (r *recorder) fill(rep *Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep.Produced = make(map[int]int, len(r.produced))
	for k, v := range r.produced {
		rep.Produced[k] = v
	}
	rep.Consumed = make(map[int]int, len(r.consumed))
	for k, v := range r.consumed {
		rep.Consumed[k] = v
	}
	rep.Ledger = r.ledger
}
