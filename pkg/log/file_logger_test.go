package log

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLoggerWritesDecodableEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.ulog")

	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	l.Log(Event{
		Timestamp:    time.Now().UTC(),
		ConnectionID: "conn-1",
		Category:     CategoryState,
		StateChange:  &StateChangeEvent{Enabled: true, RawReason: 4, Reason: "SYSTEM_BOOT"},
	})
	l.Log(Event{
		Timestamp:    time.Now().UTC(),
		ConnectionID: "conn-1",
		Category:     CategoryError,
		Error:        &ErrorEventData{Message: "subscribe failed", Op: "subscribe"},
	})

	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open capture: %v", err)
	}
	defer f.Close()

	dec := NewDecoder(f)
	var events []Event
	for {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("decode: %v", err)
		}
		events = append(events, ev)
	}

	if len(events) != 2 {
		t.Fatalf("decoded %d events, want 2", len(events))
	}
	if events[0].StateChange == nil || events[0].StateChange.Reason != "SYSTEM_BOOT" {
		t.Errorf("first event: %+v, want SYSTEM_BOOT state change", events[0])
	}
	if events[1].Error == nil || events[1].Error.Op != "subscribe" {
		t.Errorf("second event: %+v, want subscribe error", events[1])
	}
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.ulog")

	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	if err := l.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close: %v, want nil", err)
	}

	// Log after Close must not panic or write.
	l.Log(Event{ConnectionID: "conn-1"})

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("file size = %d after post-close Log, want 0", info.Size())
	}
}
