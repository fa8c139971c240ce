package session

// RawCloseReason is a session close reason code as carried on the wire.
// Unknown codes map to CloseReasonUnknown.
type RawCloseReason int32

// Wire-level close reason codes.
const (
	RawCloseReasonUnknown              RawCloseReason = 0
	RawCloseReasonLocalAPI             RawCloseReason = 1
	RawCloseReasonMaxSessionsReached   RawCloseReason = 2
	RawCloseReasonSystemPolicy         RawCloseReason = 3
	RawCloseReasonRemoteRequest        RawCloseReason = 4
	RawCloseReasonProtocolSpecific     RawCloseReason = 5
	RawCloseReasonBadParameters        RawCloseReason = 6
	RawCloseReasonGenericError         RawCloseReason = 7
	RawCloseReasonMaxRetryCountReached RawCloseReason = 8
)

// CloseReason is the semantic reason a ranging session closed or failed
// to open.
type CloseReason uint8

const (
	// CloseReasonUnknown covers unrecognized close codes.
	CloseReasonUnknown CloseReason = iota

	// CloseReasonLocalCloseAPI means the local application closed the
	// session.
	CloseReasonLocalCloseAPI

	// CloseReasonMaxSessionsReached means the daemon refused another
	// concurrent session.
	CloseReasonMaxSessionsReached

	// CloseReasonSystemPolicy means a system policy terminated the session.
	CloseReasonSystemPolicy

	// CloseReasonRemoteRequest means the peer device requested the close.
	CloseReasonRemoteRequest

	// CloseReasonProtocolSpecific means a protocol-level condition closed
	// the session.
	CloseReasonProtocolSpecific

	// CloseReasonBadParameters means the open parameters were rejected.
	CloseReasonBadParameters

	// CloseReasonGenericError covers unspecified daemon-side failures.
	CloseReasonGenericError

	// CloseReasonMaxRetryCountReached means ranging retries were exhausted.
	CloseReasonMaxRetryCountReached
)

// String returns the close reason name.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonLocalCloseAPI:
		return "LOCAL_CLOSE_API"
	case CloseReasonMaxSessionsReached:
		return "MAX_SESSIONS_REACHED"
	case CloseReasonSystemPolicy:
		return "SYSTEM_POLICY"
	case CloseReasonRemoteRequest:
		return "REMOTE_REQUEST"
	case CloseReasonProtocolSpecific:
		return "PROTOCOL_SPECIFIC"
	case CloseReasonBadParameters:
		return "BAD_PARAMETERS"
	case CloseReasonGenericError:
		return "GENERIC_ERROR"
	case CloseReasonMaxRetryCountReached:
		return "MAX_RETRY_COUNT_REACHED"
	default:
		return "UNKNOWN"
	}
}

// TranslateCloseReason maps a wire close code to its semantic reason.
func TranslateCloseReason(raw RawCloseReason) CloseReason {
	switch raw {
	case RawCloseReasonLocalAPI:
		return CloseReasonLocalCloseAPI
	case RawCloseReasonMaxSessionsReached:
		return CloseReasonMaxSessionsReached
	case RawCloseReasonSystemPolicy:
		return CloseReasonSystemPolicy
	case RawCloseReasonRemoteRequest:
		return CloseReasonRemoteRequest
	case RawCloseReasonProtocolSpecific:
		return CloseReasonProtocolSpecific
	case RawCloseReasonBadParameters:
		return CloseReasonBadParameters
	case RawCloseReasonGenericError:
		return CloseReasonGenericError
	case RawCloseReasonMaxRetryCountReached:
		return CloseReasonMaxRetryCountReached
	default:
		return CloseReasonUnknown
	}
}
