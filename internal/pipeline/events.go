package pipeline

import (
	"time"

	"github.com/sirupsen/logrus"
)

type EventKind uint8

const (
	ItemProduced EventKind = iota
	ItemConsumed
	ProducerExhausted
	ConsumerExited
	ProductionFinished
	Drained
	Completed
)

func (k EventKind) String() string {
	switch k {
	case ItemProduced:
		return "item_produced"
	case ItemConsumed:
		return "item_consumed"
	case ProducerExhausted:
		return "producer_exhausted"
	case ConsumerExited:
		return "consumer_exited"
	case ProductionFinished:
		return "production_finished"
	case Drained:
		return "drained"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is a progress notification. Worker is zero for coordinator events and
// Item is zero when no item is involved.
type Event struct {
	Kind   EventKind
	Worker int
	Item   Item
	Time   time.Time
}

// EventSink receives progress notifications. Observe is called concurrently
// from every worker.
type EventSink interface {
	Observe(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Observe(e Event) {
	f(e)
}

// MultiSink fans an event out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) Observe(e Event) {
	for _, s := range m {
		s.Observe(e)
	}
}

// LogSink writes events as debug log lines.
type LogSink struct {
	Log *logrus.Entry
}

func (s LogSink) Observe(e Event) {
	entry := s.Log.WithField("event", e.Kind.String())
	switch e.Kind {
	case ItemProduced, ProducerExhausted:
		entry = entry.WithField("producer", e.Worker)
	case ItemConsumed, ConsumerExited:
		entry = entry.WithField("consumer", e.Worker)
	}
	if e.Item.Index != 0 {
		entry = entry.WithField("item", e.Item.Label())
	}
	entry.Debug("pipeline event")
}
