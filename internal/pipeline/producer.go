package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/looplab/fsm"
)

const (
	ProducerRunning    = "running"
	ProducerProduced   = "produced"
	ProducerTerminated = "terminated"
)

// Producer claims indices from the shared counter and enqueues the matching
// items until the counter is exhausted.
type Producer struct {
	ID int

	ch       *BoundedChannel
	counter  *ProductionCounter
	maxItems int
	think    time.Duration
	sink     EventSink
	state    *fsm.FSM
	produced int
}

func NewProducer(id int, cfg *Config, ch *BoundedChannel, counter *ProductionCounter, sink EventSink) *Producer {
	return &Producer{
		ID:       id,
		ch:       ch,
		counter:  counter,
		maxItems: cfg.MaxItems,
		think:    cfg.ThinkTime,
		sink:     sink,
		state: fsm.NewFSM(
			ProducerRunning,
			fsm.Events{
				{Name: "claim", Src: []string{ProducerRunning}, Dst: ProducerProduced},
				{Name: "resume", Src: []string{ProducerProduced}, Dst: ProducerRunning},
				{Name: "exhaust", Src: []string{ProducerRunning}, Dst: ProducerTerminated},
				{Name: "cancel", Src: []string{ProducerRunning, ProducerProduced}, Dst: ProducerTerminated},
			},
			fsm.Callbacks{},
		),
	}
}

// Run loops until the counter is exhausted (nil) or ctx is done (ctx.Err()).
func (p *Producer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			p.transition("cancel")
			return err
		}

		index, err := p.counter.TryClaimNext(p.maxItems)
		if errors.Is(err, ErrExhausted) {
			p.transition("exhaust")
			p.sink.Observe(Event{Kind: ProducerExhausted, Worker: p.ID, Time: time.Now()})
			return nil
		}
		p.transition("claim")

		item := NewItem(index)
		if err := p.ch.Put(ctx, item); err != nil {
			p.transition("cancel")
			return err
		}
		p.produced++
		p.sink.Observe(Event{Kind: ItemProduced, Worker: p.ID, Item: item, Time: time.Now()})

		if err := sleep(ctx, p.think); err != nil {
			p.transition("cancel")
			return err
		}
		p.transition("resume")
	}
}

// State returns the current state of the producer.
func (p *Producer) State() string {
	return p.state.Current()
}

// Produced returns how many items this producer has enqueued. Only read it
// after Run has returned.
func (p *Producer) Produced() int {
	return p.produced
}

func (p *Producer) transition(event string) {
	if err := p.state.Event(context.Background(), event); err != nil {
		violate("producer %d: %s from %s: %v", p.ID, event, p.state.Current(), err)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
