package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/uwbd-protocol/uwbd-go/pkg/adapter"
	"github.com/uwbd-protocol/uwbd-go/pkg/log"
	"github.com/uwbd-protocol/uwbd-go/pkg/wire"
)

// Client errors.
var (
	// ErrNotConnected indicates the client has no live daemon connection.
	ErrNotConnected = errors.New("not connected to daemon")

	// ErrConnectionClosed indicates the connection dropped while a request
	// was in flight.
	ErrConnectionClosed = errors.New("daemon connection closed")
)

// StatusError reports a request the daemon rejected.
type StatusError struct {
	Op     wire.Operation
	Status wire.Status
}

// Error returns the operation and daemon status.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: daemon returned %s", e.Op, e.Status)
}

// SessionSink receives events for one ranging session. pkg/session
// implements it; transport routes daemon events by session handle.
type SessionSink interface {
	OnSessionOpened(params map[string]any)
	OnSessionClosed(rawReason int32, params map[string]any)
	OnRangingReport(measurements []wire.Measurement)
}

// Config configures a daemon client.
type Config struct {
	// Network is the socket family: "unix" or "tcp".
	Network string

	// Address is the socket path or host:port.
	Address string

	// ConnectTimeout bounds the dial (default: 10s).
	ConnectTimeout time.Duration

	// RequestTimeout bounds each request/response round trip (default: 5s).
	RequestTimeout time.Duration

	// MaxMessageSize is the maximum frame size (default: 16KB).
	MaxMessageSize uint32

	// Logger captures protocol events. Nil disables capture.
	Logger log.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Network:        "unix",
		Address:        "/run/uwbd/uwbd.sock",
		ConnectTimeout: 10 * time.Second,
		RequestTimeout: 5 * time.Second,
		MaxMessageSize: DefaultMaxMessageSize,
	}
}

// Client is a connection to a uwbd daemon. It implements adapter.Service
// and carries ranging session traffic for pkg/session.
type Client struct {
	config Config

	mu          sync.Mutex
	conn        net.Conn
	framer      *Framer
	connID      string
	pending     map[uint32]chan *wire.Response
	stateHandle adapter.StateCallbackHandle
	sinks       map[string]SessionSink
	closed      bool

	nextMsgID atomic.Uint32
	readDone  chan struct{}
}

// NewClient creates a client for the given configuration. Call Connect
// before issuing requests.
func NewClient(config Config) *Client {
	if config.Network == "" {
		config.Network = "unix"
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 5 * time.Second
	}
	if config.MaxMessageSize == 0 {
		config.MaxMessageSize = DefaultMaxMessageSize
	}
	return &Client{
		config:  config,
		pending: make(map[uint32]chan *wire.Response),
		sinks:   make(map[string]SessionSink),
	}
}

// Connect dials the daemon and starts the receive loop.
func (c *Client) Connect(ctx context.Context) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, c.config.Network, c.config.Address)
	if err != nil {
		return fmt.Errorf("dial %s %s: %w", c.config.Network, c.config.Address, err)
	}

	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		conn.Close()
		return errors.New("already connected")
	}
	c.conn = conn
	c.connID = uuid.NewString()
	c.closed = false
	c.framer = NewFramerWithMaxSize(conn, c.config.MaxMessageSize)
	if c.config.Logger != nil {
		c.framer.SetLogger(c.config.Logger, c.connID)
	}
	c.readDone = make(chan struct{})
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// Attach wires the client to an already-established connection. Used by
// tests and by callers that dial through other means.
func (c *Client) Attach(conn net.Conn) error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return errors.New("already connected")
	}
	c.conn = conn
	c.connID = uuid.NewString()
	c.closed = false
	c.framer = NewFramerWithMaxSize(conn, c.config.MaxMessageSize)
	if c.config.Logger != nil {
		c.framer.SetLogger(c.config.Logger, c.connID)
	}
	c.readDone = make(chan struct{})
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// Close tears down the connection. In-flight requests fail with
// ErrConnectionClosed. Safe to call multiple times.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed || c.conn == nil {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	done := c.readDone
	c.mu.Unlock()

	err := conn.Close()
	<-done
	return err
}

// ConnectionID returns the UUID assigned to the current connection, or ""
// if not connected.
func (c *Client) ConnectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connID
}

// SubscribeStateChanges implements adapter.Service. The handle receives
// every adapter state event until UnsubscribeStateChanges.
func (c *Client) SubscribeStateChanges(handle adapter.StateCallbackHandle) error {
	resp, err := c.request(wire.OpSubscribeState, nil)
	if err != nil {
		return fmt.Errorf("subscribe state: %w", err)
	}
	if !resp.IsSuccess() {
		return &StatusError{Op: wire.OpSubscribeState, Status: resp.Status}
	}

	c.mu.Lock()
	c.stateHandle = handle
	c.mu.Unlock()
	return nil
}

// UnsubscribeStateChanges implements adapter.Service. The handle is
// detached even if the daemon call fails; a racy event delivered after
// return is routed nowhere.
func (c *Client) UnsubscribeStateChanges(adapter.StateCallbackHandle) error {
	c.mu.Lock()
	c.stateHandle = nil
	c.mu.Unlock()

	resp, err := c.request(wire.OpUnsubscribeState, nil)
	if err != nil {
		return fmt.Errorf("unsubscribe state: %w", err)
	}
	if !resp.IsSuccess() {
		return &StatusError{Op: wire.OpUnsubscribeState, Status: resp.Status}
	}
	return nil
}

// OpenSession asks the daemon to open a ranging session. The sink receives
// the session's events until ReleaseSession.
func (c *Client) OpenSession(handle string, params map[string]any, sink SessionSink) error {
	c.mu.Lock()
	c.sinks[handle] = sink
	c.mu.Unlock()

	resp, err := c.request(wire.OpOpenSession, &wire.OpenSessionPayload{Handle: handle, Params: params})
	if err != nil {
		c.ReleaseSession(handle)
		return fmt.Errorf("open session: %w", err)
	}
	if !resp.IsSuccess() {
		c.ReleaseSession(handle)
		return &StatusError{Op: wire.OpOpenSession, Status: resp.Status}
	}
	return nil
}

// CloseSession asks the daemon to close a ranging session. The sink stays
// registered so the daemon's closed event still reaches it.
func (c *Client) CloseSession(handle string) error {
	resp, err := c.request(wire.OpCloseSession, &wire.CloseSessionPayload{Handle: handle})
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if !resp.IsSuccess() {
		return &StatusError{Op: wire.OpCloseSession, Status: resp.Status}
	}
	return nil
}

// ReleaseSession removes a session's event sink. Events for unknown
// handles are dropped.
func (c *Client) ReleaseSession(handle string) {
	c.mu.Lock()
	delete(c.sinks, handle)
	c.mu.Unlock()
}

// request sends one request and waits for the matching response, bounded
// by the configured request timeout.
func (c *Client) request(op wire.Operation, payload any) (*wire.Response, error) {
	c.mu.Lock()
	if c.conn == nil || c.closed {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	framer := c.framer
	logger := c.config.Logger
	connID := c.connID

	msgID := c.nextMsgID.Add(1)
	if msgID == wire.EventMessageID {
		msgID = c.nextMsgID.Add(1)
	}
	ch := make(chan *wire.Response, 1)
	c.pending[msgID] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, msgID)
		c.mu.Unlock()
	}()

	data, err := wire.EncodeRequest(msgID, op, payload)
	if err != nil {
		return nil, err
	}
	if err := framer.WriteFrame(data); err != nil {
		return nil, err
	}

	if logger != nil {
		opCode := uint8(op)
		logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connID,
			Direction:    log.DirectionOut,
			Layer:        log.LayerWire,
			Category:     log.CategoryMessage,
			Message: &log.MessageEvent{
				Type:      log.MessageTypeRequest,
				MessageID: msgID,
				Operation: &opCode,
			},
		})
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return nil, ErrConnectionClosed
		}
		return resp, nil
	case <-time.After(c.config.RequestTimeout):
		return nil, fmt.Errorf("%s: request timed out", op)
	}
}

// readLoop receives frames until the connection drops, routing responses
// to waiters and events to the state handle and session sinks.
func (c *Client) readLoop() {
	defer close(c.readDone)

	for {
		data, err := c.framer.ReadFrame()
		if err != nil {
			c.failPending(err)
			return
		}

		resp, ev, err := wire.DecodeInbound(data)
		if err != nil {
			c.logError("decode", err)
			continue
		}

		if resp != nil {
			c.deliverResponse(resp)
			continue
		}
		c.handleEvent(ev)
	}
}

// failPending closes all in-flight request channels after a connection
// failure.
func (c *Client) failPending(cause error) {
	c.mu.Lock()
	wasClosed := c.closed
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !wasClosed && cause != nil {
		c.logError("read", cause)
	}
}

func (c *Client) deliverResponse(resp *wire.Response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.MessageID]
	if ok {
		delete(c.pending, resp.MessageID)
	}
	logger := c.config.Logger
	connID := c.connID
	c.mu.Unlock()

	if logger != nil {
		status := uint8(resp.Status)
		logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: connID,
			Direction:    log.DirectionIn,
			Layer:        log.LayerWire,
			Category:     log.CategoryMessage,
			Message: &log.MessageEvent{
				Type:      log.MessageTypeResponse,
				MessageID: resp.MessageID,
				Status:    &status,
			},
		})
	}

	if ok {
		ch <- resp
	}
	// Responses with no waiter (timed out) are dropped.
}

func (c *Client) handleEvent(ev *wire.Event) {
	switch ev.Type {
	case wire.EventStateChanged:
		var payload wire.StateChangedPayload
		if err := wire.Unmarshal(ev.Payload, &payload); err != nil {
			c.logError("decode state event", err)
			return
		}
		c.mu.Lock()
		handle := c.stateHandle
		c.mu.Unlock()
		if handle != nil {
			handle.OnStateChanged(payload.Enabled, adapter.RawReason(payload.RawReason))
		}

	case wire.EventSessionOpened:
		var payload wire.SessionOpenedPayload
		if err := wire.Unmarshal(ev.Payload, &payload); err != nil {
			c.logError("decode session event", err)
			return
		}
		if sink := c.sink(payload.Handle); sink != nil {
			sink.OnSessionOpened(payload.Params)
		}

	case wire.EventSessionClosed:
		var payload wire.SessionClosedPayload
		if err := wire.Unmarshal(ev.Payload, &payload); err != nil {
			c.logError("decode session event", err)
			return
		}
		if sink := c.sink(payload.Handle); sink != nil {
			sink.OnSessionClosed(payload.RawReason, payload.Params)
		}

	case wire.EventRangingReport:
		var payload wire.RangingReportPayload
		if err := wire.Unmarshal(ev.Payload, &payload); err != nil {
			c.logError("decode ranging report", err)
			return
		}
		if sink := c.sink(payload.Handle); sink != nil {
			sink.OnRangingReport(payload.Measurements)
		}

	default:
		// Unknown event types from newer daemons are ignored.
	}
}

func (c *Client) sink(handle string) SessionSink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sinks[handle]
}

func (c *Client) logError(op string, err error) {
	c.mu.Lock()
	logger := c.config.Logger
	connID := c.connID
	c.mu.Unlock()

	if logger == nil {
		return
	}
	logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryError,
		Error:        &log.ErrorEventData{Message: err.Error(), Op: op},
	})
}

// Compile-time check: *Client implements adapter.Service.
var _ adapter.Service = (*Client)(nil)
