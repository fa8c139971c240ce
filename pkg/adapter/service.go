package adapter

import (
	"github.com/uwbd-protocol/uwbd-go/pkg/executor"
)

// StateObserver receives adapter state change notifications. Observers are
// compared by identity (the interface value), not structurally: registering
// the same value twice is a no-op.
type StateObserver interface {
	// OnAdapterStateChanged is invoked on the observer's executor for every
	// state change, for the catch-up delivery after registration, and for
	// the synthetic disabled/unknown delivery after a failed subscribe.
	OnAdapterStateChanged(enabled bool, reason StateChangeReason)
}

// StateCallbackHandle is the callback surface a broker registers with the
// daemon. The broker is its own handle.
type StateCallbackHandle interface {
	// OnStateChanged is invoked by the daemon connection for every adapter
	// state change event, at arbitrary times after a successful subscribe.
	OnStateChanged(enabled bool, raw RawReason)
}

// Service is the daemon surface the broker depends on. Both calls are
// synchronous and fallible; the broker only subscribes from the
// unsubscribed state, so idempotency is not assumed.
//
// *transport.Client implements Service; tests use a local double.
type Service interface {
	SubscribeStateChanges(handle StateCallbackHandle) error
	UnsubscribeStateChanges(handle StateCallbackHandle) error
}

// registration pairs an observer with its executor in the broker registry.
type registration struct {
	observer StateObserver
	exec     executor.Executor
}
