// Package identity models scoped privilege elevation around callback
// dispatch. Observer code runs outside the daemon caller's security
// context, so each notification hand-off is bracketed by an Enter/Exit
// pair on the configured Scope. Exit is always called, even if the
// hand-off fails.
package identity

// Token is an opaque value returned by Enter and consumed by Exit.
type Token uint64

// Scope acquires and releases the identity under which a notification
// hand-off runs. Implementations must be safe for concurrent use.
type Scope interface {
	// Enter switches to the dispatch identity and returns a token
	// representing the previous identity.
	Enter() Token

	// Exit restores the identity captured by the matching Enter.
	Exit(Token)
}

// NoopScope performs no elevation. Usable as a zero value.
type NoopScope struct{}

// Enter returns the zero token.
func (NoopScope) Enter() Token { return 0 }

// Exit does nothing.
func (NoopScope) Exit(Token) {}

// Compile-time interface satisfaction check.
var _ Scope = NoopScope{}

// During runs fn between Enter and Exit on scope. Exit runs even if fn
// panics.
func During(scope Scope, fn func()) {
	tok := scope.Enter()
	defer scope.Exit(tok)
	fn()
}
