package adapter

// RawReason is a state-change reason code as carried on the wire.
// The daemon may emit codes this client does not know; unmapped codes
// normalize to ReasonUnknown.
type RawReason int32

// Raw reason codes emitted by the daemon.
const (
	RawReasonUnknown           RawReason = 0
	RawReasonAllSessionsClosed RawReason = 1
	RawReasonSessionStarted    RawReason = 2
	RawReasonSystemPolicy      RawReason = 3
	RawReasonSystemBoot        RawReason = 4
)

// StateChangeReason is the semantic cause of an adapter state change,
// delivered to observers. The set is closed; ReasonUnknown is the
// catch-all for unmapped raw codes and for synthetic notifications.
type StateChangeReason uint8

const (
	// ReasonUnknown covers unmapped raw codes and subscribe-failure
	// synthetic notifications.
	ReasonUnknown StateChangeReason = iota

	// ReasonAllSessionsClosed indicates the adapter disabled itself after
	// the last ranging session closed.
	ReasonAllSessionsClosed

	// ReasonSessionStarted indicates the adapter enabled itself for a new
	// ranging session.
	ReasonSessionStarted

	// ReasonSystemPolicy indicates a system policy toggled the adapter
	// (airplane mode, power management, permissions).
	ReasonSystemPolicy

	// ReasonSystemBoot indicates the state was reported as part of system
	// startup.
	ReasonSystemBoot
)

// String returns the reason name.
func (r StateChangeReason) String() string {
	switch r {
	case ReasonAllSessionsClosed:
		return "ALL_SESSIONS_CLOSED"
	case ReasonSessionStarted:
		return "SESSION_STARTED"
	case ReasonSystemPolicy:
		return "SYSTEM_POLICY"
	case ReasonSystemBoot:
		return "SYSTEM_BOOT"
	default:
		return "UNKNOWN"
	}
}

// TranslateReason maps a raw wire code to its semantic reason.
// Unknown codes map to ReasonUnknown; this is not an error.
func TranslateReason(raw RawReason) StateChangeReason {
	switch raw {
	case RawReasonAllSessionsClosed:
		return ReasonAllSessionsClosed
	case RawReasonSessionStarted:
		return ReasonSessionStarted
	case RawReasonSystemPolicy:
		return ReasonSystemPolicy
	case RawReasonSystemBoot:
		return ReasonSystemBoot
	default:
		return ReasonUnknown
	}
}

// State is the last known adapter state: the enabled flag plus the
// semantic reason for the most recent change.
type State struct {
	Enabled bool
	Reason  StateChangeReason
}
