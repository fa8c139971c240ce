// Package adapter provides client-side access to the UWB adapter state
// exposed by a uwbd daemon.
//
// The central type is StateBroker: it multiplexes any number of local
// observers onto a single daemon-side state subscription. The subscription
// is established lazily when the first observer registers and torn down
// when the last one unregisters. Each observer names the executor its
// notifications run on, and every observer always sees the latest known
// adapter state - including observers that register after the last change
// (catch-up delivery).
//
// Example:
//
//	broker := adapter.NewStateBroker(client)
//	exec := executor.NewSerial()
//	defer exec.Close()
//
//	broker.Register(exec, observer)
//	defer broker.Unregister(observer)
//
// The broker never retries failed daemon calls. A failed subscribe leaves
// the observer registered and delivers one synthetic "disabled / reason
// unknown" notification so the caller is not left waiting silently; the
// subscription is retried implicitly the next time the registry transitions
// from empty. Notifications whose executor rejects the hand-off are dropped
// for that single delivery - a known limitation, not a design goal.
package adapter
