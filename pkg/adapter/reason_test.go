package adapter

import "testing"

func TestTranslateReason(t *testing.T) {
	tests := []struct {
		name string
		raw  RawReason
		want StateChangeReason
	}{
		{"all-sessions-closed", RawReasonAllSessionsClosed, ReasonAllSessionsClosed},
		{"session-started", RawReasonSessionStarted, ReasonSessionStarted},
		{"system-policy", RawReasonSystemPolicy, ReasonSystemPolicy},
		{"system-boot", RawReasonSystemBoot, ReasonSystemBoot},
		{"unknown", RawReasonUnknown, ReasonUnknown},
		{"unmapped", RawReason(9999), ReasonUnknown},
		{"negative", RawReason(-1), ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TranslateReason(tt.raw); got != tt.want {
				t.Errorf("TranslateReason(%d) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStateChangeReasonString(t *testing.T) {
	tests := []struct {
		reason StateChangeReason
		want   string
	}{
		{ReasonAllSessionsClosed, "ALL_SESSIONS_CLOSED"},
		{ReasonSessionStarted, "SESSION_STARTED"},
		{ReasonSystemPolicy, "SYSTEM_POLICY"},
		{ReasonSystemBoot, "SYSTEM_BOOT"},
		{ReasonUnknown, "UNKNOWN"},
		{StateChangeReason(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("StateChangeReason(%d).String() = %q, want %q", tt.reason, got, tt.want)
		}
	}
}
