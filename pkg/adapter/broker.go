package adapter

import (
	"sync"
	"time"

	"github.com/uwbd-protocol/uwbd-go/pkg/executor"
	"github.com/uwbd-protocol/uwbd-go/pkg/identity"
	"github.com/uwbd-protocol/uwbd-go/pkg/log"
)

// StateBroker multiplexes local observers onto a single daemon-side state
// subscription. It is safe for concurrent use; observers may re-enter
// Register and Unregister from their callbacks.
//
// Locking: mu guards the registry, the subscribed flag, and the last known
// state. dispatchMu serializes each state update with its fan-out hand-offs
// so a single observer never sees state changes out of order. mu is never
// held across an executor hand-off.
type StateBroker struct {
	service Service

	mu         sync.Mutex
	observers  map[StateObserver]executor.Executor
	subscribed bool
	state      State
	scope      identity.Scope
	logger     log.Logger
	connID     string

	dispatchMu sync.Mutex
}

// NewStateBroker creates a broker for the given daemon service. The last
// known state starts as disabled with ReasonUnknown until the first event
// arrives.
func NewStateBroker(service Service) *StateBroker {
	return &StateBroker{
		service:   service,
		observers: make(map[StateObserver]executor.Executor),
		state:     State{Enabled: false, Reason: ReasonUnknown},
		scope:     identity.NoopScope{},
	}
}

// SetLogger configures protocol logging. Events logged include the
// connectionID for correlation. Pass nil to disable.
func (b *StateBroker) SetLogger(logger log.Logger, connectionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = logger
	b.connID = connectionID
}

// SetIdentityScope configures the identity elevation applied around each
// notification hand-off. The default is identity.NoopScope.
func (b *StateBroker) SetIdentityScope(scope identity.Scope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if scope == nil {
		scope = identity.NoopScope{}
	}
	b.scope = scope
}

// Register adds an observer with the executor its notifications run on.
// Registering an already-registered observer is a no-op, even with a
// different executor.
//
// The first registration establishes the daemon subscription. If that call
// fails the observer stays registered and receives one synthetic
// disabled/unknown notification; the subscription is retried the next time
// the registry transitions from empty. Later registrations receive a
// catch-up notification with the current state instead.
func (b *StateBroker) Register(exec executor.Executor, obs StateObserver) {
	if exec == nil || obs == nil {
		return
	}

	b.mu.Lock()

	if _, exists := b.observers[obs]; exists {
		b.mu.Unlock()
		return
	}
	b.observers[obs] = exec

	subscribeFailed := false
	catchUp := false
	if !b.subscribed {
		if err := b.service.SubscribeStateChanges(b); err != nil {
			b.logError("subscribe", err)
			subscribeFailed = true
		} else {
			b.subscribed = true
		}
	} else {
		catchUp = true
	}
	b.mu.Unlock()

	switch {
	case subscribeFailed:
		// Synthetic delivery so the caller is not left waiting silently.
		// Always disabled/unknown, regardless of any stale last state.
		b.dispatchTo(exec, obs, State{Enabled: false, Reason: ReasonUnknown})
	case catchUp:
		b.dispatchCurrent(exec, obs)
	}
}

// Unregister removes an observer. Unknown observers are a no-op. Removing
// the last observer tears down the daemon subscription; if that call fails
// the broker still transitions to unsubscribed (optimistic) and the failure
// is only logged.
func (b *StateBroker) Unregister(obs StateObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.observers[obs]; !exists {
		return
	}
	delete(b.observers, obs)

	if len(b.observers) == 0 && b.subscribed {
		if err := b.service.UnsubscribeStateChanges(b); err != nil {
			b.logError("unsubscribe", err)
		}
		b.subscribed = false
	}
}

// OnStateChanged implements StateCallbackHandle. It is invoked by the
// daemon connection, possibly concurrently with Register and Unregister,
// and tolerates one racy delivery after an unsubscribe.
func (b *StateBroker) OnStateChanged(enabled bool, raw RawReason) {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()

	b.mu.Lock()
	reason := TranslateReason(raw)
	b.state = State{Enabled: enabled, Reason: reason}
	state := b.state
	targets := make([]registration, 0, len(b.observers))
	for obs, exec := range b.observers {
		targets = append(targets, registration{observer: obs, exec: exec})
	}
	scope := b.scope
	logger := b.logger
	connID := b.connID
	b.mu.Unlock()

	if logger != nil {
		logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerService,
			Category:     log.CategoryState,
			StateChange: &log.StateChangeEvent{
				Enabled:   enabled,
				RawReason: int32(raw),
				Reason:    reason.String(),
			},
		})
	}

	for _, t := range targets {
		b.handOff(scope, logger, connID, t.exec, t.observer, state)
	}
}

// LastKnownState returns the most recently observed adapter state.
func (b *StateBroker) LastKnownState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ObserverCount returns the number of registered observers.
func (b *StateBroker) ObserverCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}

// IsSubscribed reports whether the daemon subscription is active.
func (b *StateBroker) IsSubscribed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribed
}

// dispatchCurrent delivers the state as of hand-off time to one observer
// (catch-up path). Taking dispatchMu keeps the delivery ordered against
// concurrent fan-outs; re-reading the state under mu keeps it current.
func (b *StateBroker) dispatchCurrent(exec executor.Executor, obs StateObserver) {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()

	b.mu.Lock()
	state := b.state
	scope := b.scope
	logger := b.logger
	connID := b.connID
	b.mu.Unlock()

	b.handOff(scope, logger, connID, exec, obs, state)
}

// dispatchTo delivers a fixed state to one observer (synthetic path).
func (b *StateBroker) dispatchTo(exec executor.Executor, obs StateObserver, state State) {
	b.dispatchMu.Lock()
	defer b.dispatchMu.Unlock()

	b.mu.Lock()
	scope := b.scope
	logger := b.logger
	connID := b.connID
	b.mu.Unlock()

	b.handOff(scope, logger, connID, exec, obs, state)
}

// handOff enqueues one notification on the observer's executor under the
// identity scope. A rejected hand-off is dropped for that delivery.
func (b *StateBroker) handOff(scope identity.Scope, logger log.Logger, connID string,
	exec executor.Executor, obs StateObserver, state State) {
	var err error
	identity.During(scope, func() {
		err = exec.Execute(func() {
			obs.OnAdapterStateChanged(state.Enabled, state.Reason)
		})
	})
	if err != nil && logger != nil {
		logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connID,
			Direction:    log.DirectionOut,
			Layer:        log.LayerService,
			Category:     log.CategoryError,
			Error:        &log.ErrorEventData{Message: err.Error(), Op: "dispatch"},
		})
	}
}

// logError records a failed daemon call. Caller holds mu.
func (b *StateBroker) logError(op string, err error) {
	if b.logger == nil {
		return
	}
	b.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: b.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerService,
		Category:     log.CategoryError,
		Error:        &log.ErrorEventData{Message: err.Error(), Op: op},
	})
}

// Compile-time check: the broker is its own daemon callback handle.
var _ StateCallbackHandle = (*StateBroker)(nil)
