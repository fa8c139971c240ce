package log

import (
	"sync"
	"testing"
)

// recordingLogger captures events for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Log(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &recordingLogger{}
	b := &recordingLogger{}

	m := NewMultiLogger(a, b)
	m.Log(Event{ConnectionID: "conn-1"})
	m.Log(Event{ConnectionID: "conn-1"})

	if a.count() != 2 {
		t.Errorf("first logger received %d events, want 2", a.count())
	}
	if b.count() != 2 {
		t.Errorf("second logger received %d events, want 2", b.count())
	}
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	a := &recordingLogger{}

	m := NewMultiLogger(nil, a, nil)
	m.Log(Event{})

	if a.count() != 1 {
		t.Errorf("logger received %d events, want 1", a.count())
	}
}
