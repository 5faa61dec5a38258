package pipeline

import (
	"context"
	"time"

	"github.com/looplab/fsm"
)

const (
	ConsumerPolling     = "polling"
	ConsumerProcessing  = "processing"
	ConsumerExitedState = "exited"
)

// Consumer drains the channel until production is finished and the channel
// is empty.
type Consumer struct {
	ID int

	ch       *BoundedChannel
	signal   *CompletionSignal
	timeout  time.Duration
	think    time.Duration
	sink     EventSink
	stopCh   <-chan struct{}
	state    *fsm.FSM
	consumed int
}

func NewConsumer(id int, cfg *Config, ch *BoundedChannel, signal *CompletionSignal, sink EventSink, stopCh <-chan struct{}) *Consumer {
	return &Consumer{
		ID:      id,
		ch:      ch,
		signal:  signal,
		timeout: cfg.BaseTimeout,
		think:   cfg.ThinkTime,
		sink:    sink,
		stopCh:  stopCh,
		state: fsm.NewFSM(
			ConsumerPolling,
			fsm.Events{
				{Name: "receive", Src: []string{ConsumerPolling}, Dst: ConsumerProcessing},
				{Name: "ack", Src: []string{ConsumerProcessing}, Dst: ConsumerPolling},
				{Name: "exit", Src: []string{ConsumerPolling}, Dst: ConsumerExitedState},
				{Name: "cancel", Src: []string{ConsumerPolling, ConsumerProcessing}, Dst: ConsumerExitedState},
			},
			fsm.Callbacks{},
		),
	}
}

// Run returns nil once the completion signal is set and the channel is
// empty, ErrWorkerStopped if the stop channel closes, or ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	// wake is cancelled when the signal is raised, so a waiting Get returns
	// without sitting out the rest of its timeout.
	wake, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.signal.Done():
		case <-c.stopCh:
		case <-wake.Done():
		}
		cancel()
	}()

	for !c.signal.IsSet() || !c.ch.IsEmpty() {
		if err := ctx.Err(); err != nil {
			c.transition("cancel")
			return err
		}
		if c.stopped() {
			c.transition("cancel")
			return ErrWorkerStopped
		}

		// ErrEmpty and wake-ups both fall through to the loop condition.
		item, err := c.ch.Get(wake, c.timeout)
		if err != nil {
			continue
		}

		c.transition("receive")
		c.sink.Observe(Event{Kind: ItemConsumed, Worker: c.ID, Item: item, Time: time.Now()})
		err = sleep(ctx, c.think)
		c.ch.Done()
		c.consumed++
		if err != nil {
			c.transition("cancel")
			return err
		}
		c.transition("ack")
	}

	c.transition("exit")
	c.sink.Observe(Event{Kind: ConsumerExited, Worker: c.ID, Time: time.Now()})
	return nil
}

// State returns the current state of the consumer.
func (c *Consumer) State() string {
	return c.state.Current()
}

// Consumed returns how many items this consumer has processed. Only read it
// after Run has returned.
func (c *Consumer) Consumed() int {
	return c.consumed
}

func (c *Consumer) stopped() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

func (c *Consumer) transition(event string) {
	if err := c.state.Event(context.Background(), event); err != nil {
		violate("consumer %d: %s from %s: %v", c.ID, event, c.state.Current(), err)
	}
}
