// Package session manages ranging sessions against a uwbd daemon.
//
// A Manager opens sessions over the transport client and routes the
// daemon's session events to per-session callbacks. Each session walks a
// strict INIT -> OPEN -> CLOSED lifecycle; callbacks run on the executor
// supplied at Open, never on the daemon connection's read loop.
package session
