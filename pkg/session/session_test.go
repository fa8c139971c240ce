package session

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwbd-protocol/uwbd-go/pkg/executor"
	"github.com/uwbd-protocol/uwbd-go/pkg/transport"
	"github.com/uwbd-protocol/uwbd-go/pkg/wire"
)

// fakeTransport records session calls and lets tests drive the sink.
type fakeTransport struct {
	mu        sync.Mutex
	sinks     map[string]transport.SessionSink
	opened    []string
	closed    []string
	released  []string
	openErr   error
	closeErr  error
	lastParam map[string]any
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sinks: make(map[string]transport.SessionSink)}
}

func (f *fakeTransport) OpenSession(handle string, params map[string]any, sink transport.SessionSink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = append(f.opened, handle)
	f.lastParam = params
	f.sinks[handle] = sink
	return nil
}

func (f *fakeTransport) CloseSession(handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closed = append(f.closed, handle)
	return nil
}

func (f *fakeTransport) ReleaseSession(handle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, handle)
	delete(f.sinks, handle)
}

func (f *fakeTransport) sink(handle string) transport.SessionSink {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sinks[handle]
}

type recordingCallback struct {
	mu      sync.Mutex
	opened  []map[string]any
	closed  []CloseReason
	reports [][]wire.Measurement
}

func (c *recordingCallback) OnOpened(params map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened = append(c.opened, params)
}

func (c *recordingCallback) OnClosed(reason CloseReason, _ map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = append(c.closed, reason)
}

func (c *recordingCallback) OnReport(measurements []wire.Measurement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, measurements)
}

func (c *recordingCallback) counts() (int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.opened), len(c.closed), len(c.reports)
}

func (c *recordingCallback) lastClose() CloseReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed[len(c.closed)-1]
}

func openSession(t *testing.T) (*Manager, *fakeTransport, *Session, *recordingCallback) {
	t.Helper()
	ft := newFakeTransport()
	m := NewManager(ft)
	cb := &recordingCallback{}

	s, err := m.Open(map[string]any{"channel": 9}, executor.Direct{}, cb)
	require.NoError(t, err)
	require.NotEmpty(t, s.Handle())
	return m, ft, s, cb
}

func TestOpenRequiresExecutorAndCallback(t *testing.T) {
	m := NewManager(newFakeTransport())

	_, err := m.Open(nil, nil, &recordingCallback{})
	assert.Error(t, err)

	_, err = m.Open(nil, executor.Direct{}, nil)
	assert.Error(t, err)
}

func TestOpenRegistersSessionAndSink(t *testing.T) {
	m, ft, s, cb := openSession(t)

	assert.Equal(t, 1, m.Count())
	assert.False(t, s.IsOpen())
	require.NotNil(t, ft.sink(s.Handle()))
	assert.Equal(t, map[string]any{"channel": 9}, ft.lastParam)

	opened, closed, _ := cb.counts()
	assert.Zero(t, opened)
	assert.Zero(t, closed)
}

func TestOpenTransportFailure(t *testing.T) {
	ft := newFakeTransport()
	ft.openErr = errors.New("daemon busy")
	m := NewManager(ft)

	_, err := m.Open(nil, executor.Direct{}, &recordingCallback{})
	require.Error(t, err)
	assert.Zero(t, m.Count())
}

func TestOpenedEventTransitionsToOpen(t *testing.T) {
	_, ft, s, cb := openSession(t)

	ft.sink(s.Handle()).OnSessionOpened(map[string]any{"slot": 1})
	assert.True(t, s.IsOpen())

	opened, _, _ := cb.counts()
	assert.Equal(t, 1, opened)
}

func TestDuplicateOpenedEventDropped(t *testing.T) {
	_, ft, s, cb := openSession(t)

	sink := ft.sink(s.Handle())
	sink.OnSessionOpened(nil)
	sink.OnSessionOpened(nil)

	opened, _, _ := cb.counts()
	assert.Equal(t, 1, opened)
}

func TestClosedEventDispatchesTranslatedReason(t *testing.T) {
	m, ft, s, cb := openSession(t)

	sink := ft.sink(s.Handle())
	sink.OnSessionOpened(nil)
	sink.OnSessionClosed(int32(RawCloseReasonRemoteRequest), nil)

	assert.False(t, s.IsOpen())
	assert.Zero(t, m.Count())
	assert.Contains(t, ft.released, s.Handle())

	_, closed, _ := cb.counts()
	require.Equal(t, 1, closed)
	assert.Equal(t, CloseReasonRemoteRequest, cb.lastClose())
}

func TestFailedOpenClosesWithoutOpened(t *testing.T) {
	m, ft, s, cb := openSession(t)

	// Daemon rejects the open asynchronously: closed arrives with no opened.
	ft.sink(s.Handle()).OnSessionClosed(int32(RawCloseReasonBadParameters), nil)

	opened, closed, _ := cb.counts()
	assert.Zero(t, opened)
	assert.Equal(t, 1, closed)
	assert.Equal(t, CloseReasonBadParameters, cb.lastClose())
	assert.Zero(t, m.Count())
}

func TestUnknownCloseCodeMapsToUnknown(t *testing.T) {
	_, ft, s, cb := openSession(t)

	ft.sink(s.Handle()).OnSessionClosed(9999, nil)
	assert.Equal(t, CloseReasonUnknown, cb.lastClose())
}

func TestCloseRequestsDaemonClose(t *testing.T) {
	_, ft, s, cb := openSession(t)
	sink := ft.sink(s.Handle())
	sink.OnSessionOpened(nil)

	require.NoError(t, s.Close())
	assert.Contains(t, ft.closed, s.Handle())

	// Close completes when the daemon confirms.
	_, closedCount, _ := cb.counts()
	assert.Zero(t, closedCount)
	sink.OnSessionClosed(int32(RawCloseReasonLocalAPI), nil)
	assert.Equal(t, CloseReasonLocalCloseAPI, cb.lastClose())
}

func TestCloseAfterClosedRedeliversOnClosed(t *testing.T) {
	_, ft, s, cb := openSession(t)
	ft.sink(s.Handle()).OnSessionClosed(int32(RawCloseReasonSystemPolicy), nil)

	err := s.Close()
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, closed, _ := cb.counts()
	assert.Equal(t, 2, closed)
	assert.Equal(t, CloseReasonLocalCloseAPI, cb.lastClose())
}

func TestCloseTransportFailure(t *testing.T) {
	ft := newFakeTransport()
	m := NewManager(ft)
	cb := &recordingCallback{}
	s, err := m.Open(nil, executor.Direct{}, cb)
	require.NoError(t, err)

	ft.closeErr = errors.New("connection lost")
	assert.Error(t, s.Close())
}

func TestReportsOnlyWhileOpen(t *testing.T) {
	_, ft, s, cb := openSession(t)
	sink := ft.sink(s.Handle())

	measurements := []wire.Measurement{{PeerAddr: 1, DistanceMM: 250, Valid: true}}

	// Before opened: dropped.
	sink.OnRangingReport(measurements)
	_, _, reports := cb.counts()
	assert.Zero(t, reports)

	sink.OnSessionOpened(nil)
	sink.OnRangingReport(measurements)
	_, _, reports = cb.counts()
	assert.Equal(t, 1, reports)

	sink.OnSessionClosed(int32(RawCloseReasonLocalAPI), nil)
	sink.OnRangingReport(measurements)
	_, _, reports = cb.counts()
	assert.Equal(t, 1, reports)
}

func TestMasterKeyInjectsSessionParams(t *testing.T) {
	ft := newFakeTransport()
	m := NewManager(ft)
	m.SetMasterKey(bytes.Repeat([]byte{0x42}, 32))

	s, err := m.Open(map[string]any{"channel": 9}, executor.Direct{}, &recordingCallback{})
	require.NoError(t, err)

	assert.Equal(t, 9, ft.lastParam["channel"])
	require.Contains(t, ft.lastParam, "stsKey")
	require.Contains(t, ft.lastParam, "stsInitVector")

	want, err := DeriveKeys(bytes.Repeat([]byte{0x42}, 32), s.Handle())
	require.NoError(t, err)
	assert.Equal(t, want.STSKey[:], ft.lastParam["stsKey"])
}

func TestShortMasterKeyFailsOpen(t *testing.T) {
	ft := newFakeTransport()
	m := NewManager(ft)
	m.SetMasterKey([]byte{1, 2, 3})

	_, err := m.Open(nil, executor.Direct{}, &recordingCallback{})
	require.Error(t, err)
	assert.Zero(t, m.Count())
}

func TestHandlesAreUnique(t *testing.T) {
	m, _, _, _ := openSession(t)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		s, err := m.Open(nil, executor.Direct{}, &recordingCallback{})
		require.NoError(t, err)
		assert.False(t, seen[s.Handle()])
		seen[s.Handle()] = true
	}
}

func TestTranslateCloseReason(t *testing.T) {
	tests := []struct {
		raw  RawCloseReason
		want CloseReason
	}{
		{RawCloseReasonUnknown, CloseReasonUnknown},
		{RawCloseReasonLocalAPI, CloseReasonLocalCloseAPI},
		{RawCloseReasonMaxSessionsReached, CloseReasonMaxSessionsReached},
		{RawCloseReasonSystemPolicy, CloseReasonSystemPolicy},
		{RawCloseReasonRemoteRequest, CloseReasonRemoteRequest},
		{RawCloseReasonProtocolSpecific, CloseReasonProtocolSpecific},
		{RawCloseReasonBadParameters, CloseReasonBadParameters},
		{RawCloseReasonGenericError, CloseReasonGenericError},
		{RawCloseReasonMaxRetryCountReached, CloseReasonMaxRetryCountReached},
		{RawCloseReason(-5), CloseReasonUnknown},
		{RawCloseReason(200), CloseReasonUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TranslateCloseReason(tt.raw), "raw %d", tt.raw)
	}
}

func TestCloseReasonStrings(t *testing.T) {
	assert.Equal(t, "LOCAL_CLOSE_API", CloseReasonLocalCloseAPI.String())
	assert.Equal(t, "MAX_RETRY_COUNT_REACHED", CloseReasonMaxRetryCountReached.String())
	assert.Equal(t, "UNKNOWN", CloseReason(99).String())
}
