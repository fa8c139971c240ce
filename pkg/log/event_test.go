package log

import (
	"testing"
	"time"
)

func TestDirectionString(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{DirectionIn, "IN"},
		{DirectionOut, "OUT"},
		{Direction(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestLayerString(t *testing.T) {
	tests := []struct {
		l    Layer
		want string
	}{
		{LayerTransport, "TRANSPORT"},
		{LayerWire, "WIRE"},
		{LayerService, "SERVICE"},
		{Layer(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.l.String(); got != tt.want {
			t.Errorf("Layer(%d).String() = %q, want %q", tt.l, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{CategoryMessage, "MESSAGE"},
		{CategoryState, "STATE"},
		{CategorySession, "SESSION"},
		{CategoryError, "ERROR"},
		{Category(9), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestEncodeDecodeStateChangeEvent(t *testing.T) {
	event := Event{
		Timestamp:    time.Now().UTC(),
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerService,
		Category:     CategoryState,
		StateChange: &StateChangeEvent{
			Enabled:   true,
			RawReason: 2,
			Reason:    "SESSION_STARTED",
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}

	if decoded.ConnectionID != "conn-1" {
		t.Errorf("ConnectionID = %q, want conn-1", decoded.ConnectionID)
	}
	if decoded.Category != CategoryState {
		t.Errorf("Category = %v, want STATE", decoded.Category)
	}
	if decoded.StateChange == nil {
		t.Fatal("StateChange payload missing after round-trip")
	}
	if !decoded.StateChange.Enabled {
		t.Error("StateChange.Enabled = false, want true")
	}
	if decoded.StateChange.RawReason != 2 {
		t.Errorf("StateChange.RawReason = %d, want 2", decoded.StateChange.RawReason)
	}
	if decoded.Session != nil || decoded.Error != nil {
		t.Error("unset payloads should stay nil after round-trip")
	}
}
