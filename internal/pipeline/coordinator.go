package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Option func(*Coordinator)

// WithSink adds an observer for progress events.
func WithSink(sink EventSink) Option {
	return func(c *Coordinator) {
		c.sinks = append(c.sinks, sink)
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// Coordinator wires producers, consumers and the shared channel for a run.
// Every call to Run builds fresh shared state.
type Coordinator struct {
	config Config
	sinks  []EventSink
	log    *logrus.Entry
}

func NewCoordinator(config *Config, opts ...Option) (*Coordinator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		config: *config,
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run produces and consumes MaxItems items. It returns once every item has
// been processed and the completion signal is set. Consumers are not joined;
// Report.ConsumersExited closes when they are gone.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	log := c.log.WithFields(logrus.Fields{
		"buffer_size": c.config.BufferSize,
		"producers":   c.config.NumProducers,
		"consumers":   c.config.NumConsumers,
		"max_items":   c.config.MaxItems,
	})
	log.Info("run started")

	ch := NewBoundedChannel(c.config.BufferSize)
	counter := NewProductionCounter()
	signal := NewCompletionSignal()

	rec := newRecorder()
	sink := MultiSink{rec, LogSink{Log: c.log}}
	sink = append(sink, c.sinks...)

	g, gctx := errgroup.WithContext(ctx)
	for id := 1; id <= c.config.NumProducers; id++ {
		p := NewProducer(id, &c.config, ch, counter, sink)
		g.Go(func() error {
			return p.Run(gctx)
		})
	}

	pool := NewWorkerPool(ctx, func(id int, stopCh <-chan struct{}) *Consumer {
		return NewConsumer(id, &c.config, ch, signal, sink, stopCh)
	}, c.log)
	for i := 0; i < c.config.NumConsumers; i++ {
		pool.AddWorker()
	}
	exited := pool.Exited()

	if err := g.Wait(); err != nil {
		return nil, c.abort(log, pool, fmt.Errorf("production interrupted: %w", err))
	}
	if claimed := counter.Claimed(); claimed != c.config.MaxItems {
		violate("claimed %d items, expected %d", claimed, c.config.MaxItems)
	}
	sink.Observe(Event{Kind: ProductionFinished, Time: time.Now()})
	log.Info("production finished")

	if err := ch.WaitDrained(ctx); err != nil {
		return nil, c.abort(log, pool, fmt.Errorf("drain interrupted: %w", err))
	}
	sink.Observe(Event{Kind: Drained, Time: time.Now()})
	log.Info("drained")

	signal.Set()
	sink.Observe(Event{Kind: Completed, Time: time.Now()})

	rep := &Report{
		Config:          c.config,
		Elapsed:         time.Since(start),
		HighWater:       ch.HighWater(),
		ConsumersExited: exited,
	}
	rec.fill(rep)
	log.WithField("elapsed", rep.Elapsed).Info("run completed")
	return rep, nil
}

func (c *Coordinator) abort(log *logrus.Entry, pool *WorkerPool, err error) error {
	log.WithError(err).Warn("run cancelled")
	pool.Shutdown()
	return err
}
