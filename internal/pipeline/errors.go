package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrEmpty         = errors.New("channel empty")
	ErrExhausted     = errors.New("production exhausted")
	ErrInvalidConfig = errors.New("invalid config")
	ErrWorkerStopped = errors.New("worker stopped")
)

// InvariantViolation reports a broken concurrency contract. It is raised with
// panic and never returned as an ordinary error.
type InvariantViolation struct {
	What string
}

func (v *InvariantViolation) Error() string {
	return "invariant violation: " + v.What
}

func violate(format string, args ...any) {
	panic(&InvariantViolation{What: fmt.Sprintf(format, args...)})
}
