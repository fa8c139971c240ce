package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uwbd-protocol/uwbd-go/pkg/executor"
	"github.com/uwbd-protocol/uwbd-go/pkg/identity"
	"github.com/uwbd-protocol/uwbd-go/pkg/log"
	"github.com/uwbd-protocol/uwbd-go/pkg/transport"
	"github.com/uwbd-protocol/uwbd-go/pkg/wire"
)

// Session errors.
var (
	// ErrSessionClosed indicates an operation on a session that already
	// closed.
	ErrSessionClosed = errors.New("session closed")
)

// state is the session lifecycle phase.
type state uint8

const (
	stateInit state = iota
	stateOpen
	stateClosed
)

// Callback receives the lifecycle and ranging events of one session.
// All methods run on the executor supplied at Open.
type Callback interface {
	// OnOpened is called when the daemon confirms the session is ranging.
	OnOpened(params map[string]any)

	// OnClosed is called exactly once when the session closes or fails to
	// open. params carries daemon-supplied detail and may be nil.
	OnClosed(reason CloseReason, params map[string]any)

	// OnReport delivers one ranging interval's measurements. Only called
	// while the session is open.
	OnReport(measurements []wire.Measurement)
}

// Transport is the subset of the daemon client sessions need.
// *transport.Client implements it.
type Transport interface {
	OpenSession(handle string, params map[string]any, sink transport.SessionSink) error
	CloseSession(handle string) error
	ReleaseSession(handle string)
}

// Manager opens ranging sessions and routes daemon session events to them.
type Manager struct {
	transport Transport

	mu        sync.Mutex
	sessions  map[string]*Session
	scope     identity.Scope
	logger    log.Logger
	connID    string
	masterKey []byte
}

// NewManager creates a session manager on the given daemon transport.
func NewManager(t Transport) *Manager {
	return &Manager{
		transport: t,
		sessions:  make(map[string]*Session),
		scope:     identity.NoopScope{},
	}
}

// SetLogger configures session lifecycle logging. Pass nil to disable.
func (m *Manager) SetLogger(logger log.Logger, connectionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
	m.connID = connectionID
}

// SetMasterKey configures the shared master key. When set, every Open
// derives per-session STS secrets and adds them to the open parameters.
func (m *Manager) SetMasterKey(key []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterKey = key
}

// SetIdentityScope configures the identity elevation applied around each
// callback hand-off. The default is identity.NoopScope.
func (m *Manager) SetIdentityScope(scope identity.Scope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if scope == nil {
		scope = identity.NoopScope{}
	}
	m.scope = scope
}

// Open asks the daemon to open a ranging session. The returned session is
// in its initial phase; cb.OnOpened fires once the daemon confirms, or
// cb.OnClosed if the open fails daemon-side. A synchronous request failure
// is returned instead and no callback fires.
func (m *Manager) Open(params map[string]any, exec executor.Executor, cb Callback) (*Session, error) {
	if exec == nil || cb == nil {
		return nil, errors.New("executor and callback are required")
	}

	s := &Session{
		handle:  uuid.NewString(),
		manager: m,
		exec:    exec,
		cb:      cb,
		state:   stateInit,
	}

	m.mu.Lock()
	m.sessions[s.handle] = s
	masterKey := m.masterKey
	m.mu.Unlock()

	if masterKey != nil {
		keys, err := DeriveKeys(masterKey, s.handle)
		if err != nil {
			m.remove(s.handle)
			return nil, err
		}
		merged := make(map[string]any, len(params)+2)
		for k, v := range params {
			merged[k] = v
		}
		for k, v := range keys.SessionParams() {
			merged[k] = v
		}
		params = merged
	}

	m.logSession(s.handle, "open-requested", nil)

	if err := m.transport.OpenSession(s.handle, params, s); err != nil {
		m.remove(s.handle)
		return nil, fmt.Errorf("open session: %w", err)
	}
	return s, nil
}

// Count returns the number of sessions not yet closed.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// remove forgets a session and detaches its transport sink.
func (m *Manager) remove(handle string) {
	m.mu.Lock()
	delete(m.sessions, handle)
	m.mu.Unlock()
	m.transport.ReleaseSession(handle)
}

// dispatchScope returns the identity scope and logger snapshot.
func (m *Manager) dispatchScope() (identity.Scope, log.Logger, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scope, m.logger, m.connID
}

func (m *Manager) logSession(handle, phase string, rawReason *int32) {
	m.mu.Lock()
	logger := m.logger
	connID := m.connID
	m.mu.Unlock()

	if logger == nil {
		return
	}
	logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerService,
		Category:     log.CategorySession,
		Session: &log.SessionEvent{
			Handle:         handle,
			Phase:          phase,
			RawCloseReason: rawReason,
		},
	})
}

func (m *Manager) logDropped(handle, why string) {
	m.mu.Lock()
	logger := m.logger
	connID := m.connID
	m.mu.Unlock()

	if logger == nil {
		return
	}
	logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerService,
		Category:     log.CategoryError,
		Error:        &log.ErrorEventData{Message: why, Op: "session " + handle},
	})
}

// Session is one ranging session. Its callback methods implement
// transport.SessionSink and are invoked from the connection's read loop;
// user callbacks are handed off to the session's executor.
type Session struct {
	handle  string
	manager *Manager
	exec    executor.Executor
	cb      Callback

	mu    sync.Mutex
	state state
}

// Handle returns the session's unique handle (UUID).
func (s *Session) Handle() string {
	return s.handle
}

// IsOpen reports whether the daemon has confirmed the session and it has
// not yet closed.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateOpen
}

// IsClosed reports whether the session has closed.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateClosed
}

// Close asks the daemon to close the session. The close completes
// asynchronously with cb.OnClosed. Closing an already-closed session
// delivers one more OnClosed with CloseReasonLocalCloseAPI and returns
// ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	closed := s.state == stateClosed
	s.mu.Unlock()

	if closed {
		s.dispatch(func() { s.cb.OnClosed(CloseReasonLocalCloseAPI, nil) })
		return ErrSessionClosed
	}

	if err := s.manager.transport.CloseSession(s.handle); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// OnSessionOpened implements transport.SessionSink.
func (s *Session) OnSessionOpened(params map[string]any) {
	s.mu.Lock()
	if s.state != stateInit {
		s.mu.Unlock()
		s.manager.logDropped(s.handle, "opened event in non-initial phase")
		return
	}
	s.state = stateOpen
	s.mu.Unlock()

	s.manager.logSession(s.handle, "opened", nil)
	s.dispatch(func() { s.cb.OnOpened(params) })
}

// OnSessionClosed implements transport.SessionSink.
func (s *Session) OnSessionClosed(rawReason int32, params map[string]any) {
	s.mu.Lock()
	if s.state == stateClosed {
		s.mu.Unlock()
		return
	}
	s.state = stateClosed
	s.mu.Unlock()

	s.manager.logSession(s.handle, "closed", &rawReason)
	s.manager.remove(s.handle)

	reason := TranslateCloseReason(RawCloseReason(rawReason))
	s.dispatch(func() { s.cb.OnClosed(reason, params) })
}

// OnRangingReport implements transport.SessionSink. Reports outside the
// open phase are dropped.
func (s *Session) OnRangingReport(measurements []wire.Measurement) {
	s.mu.Lock()
	open := s.state == stateOpen
	s.mu.Unlock()

	if !open {
		s.manager.logDropped(s.handle, "ranging report outside open phase")
		return
	}
	s.dispatch(func() { s.cb.OnReport(measurements) })
}

// dispatch enqueues one callback on the session executor under the
// manager's identity scope. A rejected hand-off is dropped.
func (s *Session) dispatch(fn func()) {
	scope, logger, connID := s.manager.dispatchScope()

	var err error
	identity.During(scope, func() {
		err = s.exec.Execute(fn)
	})
	if err != nil && logger != nil {
		logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connID,
			Direction:    log.DirectionOut,
			Layer:        log.LayerService,
			Category:     log.CategoryError,
			Error:        &log.ErrorEventData{Message: err.Error(), Op: "session dispatch"},
		})
	}
}

// Compile-time check: a session is its own transport sink.
var _ transport.SessionSink = (*Session)(nil)
