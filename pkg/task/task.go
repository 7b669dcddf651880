// Package task hands the result of one background operation back to the
// goroutine that started it.
package task

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrAttached is returned when a worker is started on a slot that already
// has one.
var ErrAttached = errors.New("task slot already has a worker")

// Result is the terminal value of a task.
type Result struct {
	ID      string
	Err     error
	Elapsed time.Duration
}

// Slot is a write-once read-once result holder shared by one background
// worker and its owner. The worker always writes exactly one Result; the
// owner collects it with Take without blocking.
type Slot struct {
	mu       sync.Mutex
	attached bool
	result   *Result
	done     chan struct{}
}

func NewSlot() *Slot {
	return &Slot{done: make(chan struct{})}
}

// Start runs fn on a new goroutine and returns the task id. A panic in fn
// is recorded as the task's error.
func (s *Slot) Start(fn func() error) (string, error) {
	s.mu.Lock()
	if s.attached {
		s.mu.Unlock()
		return "", ErrAttached
	}
	s.attached = true
	s.mu.Unlock()

	id := uuid.NewString()

	go func() {
		start := time.Now()
		err := run(fn)
		s.put(Result{ID: id, Err: err, Elapsed: time.Since(start)})
	}()
	return id, nil
}

func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn()
}

func (s *Slot) put(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = &r
	close(s.done)
}

// Take removes and returns the result if the worker has finished. It
// reports false while the worker is still running, before Start and after
// the result has been taken.
func (s *Slot) Take() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	r := *s.result
	s.result = nil
	return r, true
}

// Done is closed once the worker has written its result.
func (s *Slot) Done() <-chan struct{} {
	return s.done
}
