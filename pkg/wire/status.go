package wire

// Status is the result code of a daemon response.
type Status uint8

const (
	// StatusSuccess indicates the request succeeded.
	StatusSuccess Status = 0

	// StatusInvalidParameter indicates a malformed or unsupported request.
	StatusInvalidParameter Status = 1

	// StatusMaxSessionsReached indicates the daemon is at its simultaneous
	// session limit.
	StatusMaxSessionsReached Status = 2

	// StatusPolicyDenied indicates system policy refused the request.
	StatusPolicyDenied Status = 3

	// StatusInternalError indicates a daemon-side failure.
	StatusInternalError Status = 4
)

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInvalidParameter:
		return "INVALID_PARAMETER"
	case StatusMaxSessionsReached:
		return "MAX_SESSIONS_REACHED"
	case StatusPolicyDenied:
		return "POLICY_DENIED"
	case StatusInternalError:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN"
	}
}
