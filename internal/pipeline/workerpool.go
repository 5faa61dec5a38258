package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ConsumerFactory builds the consumer run by a pool worker. stopCh closes
// when the worker is removed or the pool shuts down.
type ConsumerFactory func(id int, stopCh <-chan struct{}) *Consumer

type Worker struct {
	id       int
	stopCh   chan struct{}
	consumer *Consumer
}

// WorkerPool runs detached consumer workers. Nothing requires the pool to be
// joined: consumers exit on their own once the run is drained and signalled.
type WorkerPool struct {
	ctx         context.Context
	newConsumer ConsumerFactory
	log         *logrus.Entry
	workers     map[int]*Worker
	workerID    int
	mu          sync.Mutex
	wg          sync.WaitGroup
}

func NewWorkerPool(ctx context.Context, newConsumer ConsumerFactory, log *logrus.Entry) *WorkerPool {
	return &WorkerPool{
		ctx:         ctx,
		newConsumer: newConsumer,
		log:         log,
		workers:     make(map[int]*Worker),
		workerID:    1,
	}
}

// AddWorker starts a new consumer and returns its id.
func (wp *WorkerPool) AddWorker() int {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	id := wp.workerID
	wp.workerID++

	stopCh := make(chan struct{})
	worker := &Worker{
		id:       id,
		stopCh:   stopCh,
		consumer: wp.newConsumer(id, stopCh),
	}
	wp.workers[id] = worker
	wp.log.WithField("consumer", id).Debug("consumer added")
	wp.runWorker(worker)
	return id
}

func (wp *WorkerPool) runWorker(wrk *Worker) {
	wp.wg.Add(1)
	go func() {
		defer wp.wg.Done()
		defer wp.forget(wrk.id)

		log := wp.log.WithField("consumer", wrk.id)
		err := wrk.consumer.Run(wp.ctx)
		switch {
		case err == nil:
			log.Debug("consumer finished")
		case errors.Is(err, ErrWorkerStopped):
			log.Debug("consumer stopped by pool")
		default:
			log.WithError(err).Warn("consumer aborted")
		}
	}()
}

// RemoveWorker stops the most recently added worker that is still running.
// It reports false if there is none.
func (wp *WorkerPool) RemoveWorker() bool {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	last := 0
	for id := range wp.workers {
		if id > last {
			last = id
		}
	}
	if last == 0 {
		return false
	}

	wp.stop(wp.workers[last])
	delete(wp.workers, last)
	wp.log.WithField("consumer", last).Debug("consumer removed")
	return true
}

// Shutdown stops every worker and waits for them to return.
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	for _, worker := range wp.workers {
		wp.stop(worker)
	}
	wp.workers = make(map[int]*Worker)
	wp.mu.Unlock()

	wp.wg.Wait()
	wp.log.Debug("worker pool shut down")
}

// Size returns the number of running workers.
func (wp *WorkerPool) Size() int {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	return len(wp.workers)
}

// Exited returns a channel closed once every worker added so far has
// returned. Call it after the last AddWorker.
func (wp *WorkerPool) Exited() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()
	return done
}

func (wp *WorkerPool) stop(wrk *Worker) {
	select {
	case <-wrk.stopCh:
	default:
		close(wrk.stopCh)
	}
}

func (wp *WorkerPool) forget(id int) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	delete(wp.workers, id)
}
