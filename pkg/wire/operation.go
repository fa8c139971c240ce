package wire

// Operation identifies a client-to-daemon request type.
type Operation uint8

const (
	// OpSubscribeState subscribes this connection to adapter state events.
	OpSubscribeState Operation = 1

	// OpUnsubscribeState removes this connection's state subscription.
	OpUnsubscribeState Operation = 2

	// OpOpenSession requests a new ranging session.
	OpOpenSession Operation = 3

	// OpCloseSession closes a ranging session.
	OpCloseSession Operation = 4
)

// IsValid returns true for known operations.
func (o Operation) IsValid() bool {
	switch o {
	case OpSubscribeState, OpUnsubscribeState, OpOpenSession, OpCloseSession:
		return true
	default:
		return false
	}
}

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpSubscribeState:
		return "SUBSCRIBE_STATE"
	case OpUnsubscribeState:
		return "UNSUBSCRIBE_STATE"
	case OpOpenSession:
		return "OPEN_SESSION"
	case OpCloseSession:
		return "CLOSE_SESSION"
	default:
		return "UNKNOWN"
	}
}
