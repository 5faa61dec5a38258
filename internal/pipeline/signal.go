package pipeline

import "sync/atomic"

// CompletionSignal is a one-shot broadcast: no further items will be produced.
type CompletionSignal struct {
	set  atomic.Bool
	done chan struct{}
}

func NewCompletionSignal() *CompletionSignal {
	return &CompletionSignal{done: make(chan struct{})}
}

// Set raises the signal. Raising it twice is an invariant violation.
func (s *CompletionSignal) Set() {
	if !s.set.CompareAndSwap(false, true) {
		violate("completion signal set twice")
	}
	close(s.done)
}

func (s *CompletionSignal) IsSet() bool {
	return s.set.Load()
}

// Done is closed when the signal is raised.
func (s *CompletionSignal) Done() <-chan struct{} {
	return s.done
}
