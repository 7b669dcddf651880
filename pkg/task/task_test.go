package task

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func waitDone(t *testing.T, s *Slot) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for task")
	}
}

func TestSlot(t *testing.T) {
	errBoom := errors.New("boom")

	tests := map[string]struct {
		fn      func() error
		wantErr string
	}{
		"success": {
			fn: func() error { return nil },
		},
		"failure": {
			fn:      func() error { return errBoom },
			wantErr: "boom",
		},
		"panic": {
			fn:      func() error { panic("kaboom") },
			wantErr: "task panicked: kaboom",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewSlot()
			id, err := s.Start(tc.fn)
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			if id == "" {
				t.Error("Start() returned an empty id")
			}

			waitDone(t, s)

			r, ok := s.Take()
			if !ok {
				t.Fatal("Take() found no result after Done")
			}
			if r.ID != id {
				t.Errorf("Result.ID = %q, want %q", r.ID, id)
			}
			switch {
			case tc.wantErr == "" && r.Err != nil:
				t.Errorf("Result.Err = %v, want nil", r.Err)
			case tc.wantErr != "" && (r.Err == nil || !strings.Contains(r.Err.Error(), tc.wantErr)):
				t.Errorf("Result.Err = %v, want %q", r.Err, tc.wantErr)
			}

			if _, ok := s.Take(); ok {
				t.Error("second Take() should find nothing")
			}
		})
	}
}

func TestSlotPending(t *testing.T) {
	s := NewSlot()
	if _, ok := s.Take(); ok {
		t.Fatal("Take() before Start should find nothing")
	}

	release := make(chan struct{})
	if _, err := s.Start(func() error { <-release; return nil }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, ok := s.Take(); ok {
		t.Error("Take() while running should find nothing")
	}

	close(release)
	waitDone(t, s)
	if _, ok := s.Take(); !ok {
		t.Error("Take() after completion should find the result")
	}
}

func TestSlotSingleWorker(t *testing.T) {
	s := NewSlot()
	if _, err := s.Start(func() error { return nil }); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := s.Start(func() error { return nil }); !errors.Is(err, ErrAttached) {
		t.Errorf("second Start() error = %v, want %v", err, ErrAttached)
	}
	waitDone(t, s)
}
