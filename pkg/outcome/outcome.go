// Package outcome records failures that must not abort an operation, such as
// a manifest save or a log-config patch that did not go through.
package outcome

import (
	"errors"
	"fmt"
)

// Warning is a swallowed failure of a best-effort step.
type Warning struct {
	Op  string
	Err error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Op, w.Err)
}

// Warnings collects the soft failures of one operation.
type Warnings []Warning

// Add records err under op. A nil err is ignored.
func (ws *Warnings) Add(op string, err error) {
	if err == nil {
		return
	}
	*ws = append(*ws, Warning{Op: op, Err: err})
}

// Has reports whether a warning was recorded for op.
func (ws Warnings) Has(op string) bool {
	for _, w := range ws {
		if w.Op == op {
			return true
		}
	}
	return false
}

// Err joins all recorded failures, or returns nil when there are none.
func (ws Warnings) Err() error {
	var err error
	for _, w := range ws {
		err = errors.Join(err, fmt.Errorf("%s: %w", w.Op, w.Err))
	}
	return err
}
