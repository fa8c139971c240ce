// Package interactive provides the interactive command-line interface
// for uwb-monitor.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/uwbd-protocol/uwbd-go/pkg/adapter"
	"github.com/uwbd-protocol/uwbd-go/pkg/executor"
	"github.com/uwbd-protocol/uwbd-go/pkg/session"
	"github.com/uwbd-protocol/uwbd-go/pkg/wire"
)

// Config wires the monitor to a connected client.
type Config struct {
	// Broker multiplexes adapter state notifications.
	Broker *adapter.StateBroker

	// Sessions opens and closes ranging sessions.
	Sessions *session.Manager

	// MasterKey enables STS key derivation for new sessions. Nil disables.
	MasterKey []byte

	// Channel is the default UWB channel for new sessions.
	Channel int
}

// Monitor handles interactive mode for uwb-monitor.
type Monitor struct {
	broker    *adapter.StateBroker
	sessions  *session.Manager
	masterKey []byte
	channel   int
	rl        *readline.Instance

	// All notifications run on one serial executor so output lines never
	// interleave.
	exec *executor.Serial

	watching bool
	observer *stateObserver

	active map[string]*session.Session
}

// New creates a new interactive monitor.
func New(cfg Config) (*Monitor, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "uwb> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	m := &Monitor{
		broker:    cfg.Broker,
		sessions:  cfg.Sessions,
		masterKey: cfg.MasterKey,
		channel:   cfg.Channel,
		rl:        rl,
		exec:      executor.NewSerial(),
		active:    make(map[string]*session.Session),
	}
	m.observer = &stateObserver{monitor: m}
	return m, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (m *Monitor) Stdout() io.Writer {
	return m.rl.Stdout()
}

// Run starts the interactive command loop.
func (m *Monitor) Run(ctx context.Context, cancel context.CancelFunc) {
	defer m.rl.Close()
	defer m.exec.Close()

	m.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := m.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			m.printHelp()

		case "watch", "w":
			m.cmdWatch()

		case "unwatch":
			m.cmdUnwatch()

		case "state":
			m.cmdState()

		case "open", "o":
			m.cmdOpen(args)

		case "close", "c":
			m.cmdClose(args)

		case "sessions", "ls":
			m.cmdSessions()

		case "status":
			m.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(m.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (m *Monitor) printHelp() {
	fmt.Fprintln(m.rl.Stdout(), `
UWB Monitor Commands:
  Adapter State:
    watch              - Subscribe to adapter state changes
    unwatch            - Stop watching adapter state
    state              - Show last known adapter state

  Ranging Sessions:
    open [channel]     - Open a ranging session
    close <handle>     - Close a session (handle prefix is enough)
    sessions           - List active sessions

  General:
    status             - Show monitor status
    help               - Show this help
    quit               - Exit monitor`)
}

// cmdWatch registers the state observer with the broker.
func (m *Monitor) cmdWatch() {
	if m.watching {
		fmt.Fprintln(m.rl.Stdout(), "Already watching")
		return
	}
	m.broker.Register(m.exec, m.observer)
	m.watching = true
	fmt.Fprintln(m.rl.Stdout(), "Watching adapter state")
}

// cmdUnwatch removes the state observer.
func (m *Monitor) cmdUnwatch() {
	if !m.watching {
		fmt.Fprintln(m.rl.Stdout(), "Not watching")
		return
	}
	m.broker.Unregister(m.observer)
	m.watching = false
	fmt.Fprintln(m.rl.Stdout(), "Stopped watching")
}

// cmdState shows the broker's last known state.
func (m *Monitor) cmdState() {
	state := m.broker.LastKnownState()
	fmt.Fprintf(m.rl.Stdout(), "Adapter: %s (reason: %s)\n",
		enabledString(state.Enabled), state.Reason)
}

// cmdOpen opens a ranging session.
func (m *Monitor) cmdOpen(args []string) {
	channel := m.channel
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(m.rl.Stdout(), "Invalid channel: %v\n", err)
			return
		}
		channel = parsed
	}

	params := map[string]any{"channel": channel}

	s, err := m.sessions.Open(params, m.exec, &sessionPrinter{monitor: m})
	if err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Open failed: %v\n", err)
		return
	}

	m.active[s.Handle()] = s
	fmt.Fprintf(m.rl.Stdout(), "Session %s opening on channel %d...\n", shortHandle(s.Handle()), channel)
}

// cmdClose closes a session by handle prefix.
func (m *Monitor) cmdClose(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: close <handle>")
		fmt.Fprintln(m.rl.Stdout(), "  Use 'sessions' to list handles")
		return
	}

	m.pruneClosed()
	s := m.findSession(args[0])
	if s == nil {
		fmt.Fprintf(m.rl.Stdout(), "Session not found: %s\n", args[0])
		return
	}

	if err := s.Close(); err != nil {
		fmt.Fprintf(m.rl.Stdout(), "Close failed: %v\n", err)
		return
	}
	fmt.Fprintf(m.rl.Stdout(), "Closing session %s...\n", shortHandle(s.Handle()))
}

// pruneClosed drops sessions that have closed since the last command.
func (m *Monitor) pruneClosed() {
	for handle, s := range m.active {
		if s.IsClosed() {
			delete(m.active, handle)
		}
	}
}

// cmdSessions lists active sessions.
func (m *Monitor) cmdSessions() {
	m.pruneClosed()
	if len(m.active) == 0 {
		fmt.Fprintln(m.rl.Stdout(), "No active sessions")
		return
	}

	handles := make([]string, 0, len(m.active))
	for handle := range m.active {
		handles = append(handles, handle)
	}
	sort.Strings(handles)

	fmt.Fprintf(m.rl.Stdout(), "\nActive Sessions (%d):\n", len(handles))
	fmt.Fprintln(m.rl.Stdout(), "-------------------------------------------")
	for _, handle := range handles {
		s := m.active[handle]
		phase := "opening"
		if s.IsOpen() {
			phase = "open"
		}
		fmt.Fprintf(m.rl.Stdout(), "  %s  %s\n", shortHandle(handle), phase)
	}
	fmt.Fprintln(m.rl.Stdout())
}

// cmdStatus shows the monitor status.
func (m *Monitor) cmdStatus() {
	state := m.broker.LastKnownState()

	fmt.Fprintln(m.rl.Stdout(), "\nMonitor Status")
	fmt.Fprintln(m.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(m.rl.Stdout(), "  Adapter:        %s (reason: %s)\n",
		enabledString(state.Enabled), state.Reason)
	fmt.Fprintf(m.rl.Stdout(), "  Watching:       %v\n", m.watching)
	fmt.Fprintf(m.rl.Stdout(), "  Observers:      %d\n", m.broker.ObserverCount())
	fmt.Fprintf(m.rl.Stdout(), "  Subscribed:     %v\n", m.broker.IsSubscribed())
	fmt.Fprintf(m.rl.Stdout(), "  Sessions:       %d\n", m.sessions.Count())
	keyStatus := "not configured"
	if m.masterKey != nil {
		keyStatus = "configured"
	}
	fmt.Fprintf(m.rl.Stdout(), "  STS master key: %s\n", keyStatus)
	fmt.Fprintln(m.rl.Stdout())
}

// findSession resolves a handle or handle prefix to an active session.
func (m *Monitor) findSession(prefix string) *session.Session {
	if s, ok := m.active[prefix]; ok {
		return s
	}
	for handle, s := range m.active {
		if strings.HasPrefix(handle, prefix) {
			return s
		}
	}
	return nil
}

func shortHandle(handle string) string {
	if len(handle) > 8 {
		return handle[:8]
	}
	return handle
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// stateObserver prints adapter state changes above the prompt.
type stateObserver struct {
	monitor *Monitor
}

func (o *stateObserver) OnAdapterStateChanged(enabled bool, reason adapter.StateChangeReason) {
	fmt.Fprintf(o.monitor.rl.Stdout(), "\n[%s] Adapter %s (reason: %s)\n",
		time.Now().Format("15:04:05"), enabledString(enabled), reason)
	o.monitor.rl.Refresh()
}

// sessionPrinter prints session lifecycle and ranging events.
type sessionPrinter struct {
	monitor *Monitor
}

func (p *sessionPrinter) OnOpened(_ map[string]any) {
	fmt.Fprintf(p.monitor.rl.Stdout(), "\n[%s] Session opened\n", time.Now().Format("15:04:05"))
	p.monitor.rl.Refresh()
}

func (p *sessionPrinter) OnClosed(reason session.CloseReason, _ map[string]any) {
	fmt.Fprintf(p.monitor.rl.Stdout(), "\n[%s] Session closed (reason: %s)\n",
		time.Now().Format("15:04:05"), reason)
	p.monitor.rl.Refresh()
}

func (p *sessionPrinter) OnReport(measurements []wire.Measurement) {
	out := p.monitor.rl.Stdout()
	fmt.Fprintf(out, "\n[%s] Ranging report (%d peers)\n",
		time.Now().Format("15:04:05"), len(measurements))
	for _, meas := range measurements {
		if !meas.Valid {
			fmt.Fprintf(out, "  peer %04x: no measurement\n", meas.PeerAddr)
			continue
		}
		fmt.Fprintf(out, "  peer %04x: %.2f m  azimuth %.1f°  elevation %.1f°\n",
			meas.PeerAddr,
			float64(meas.DistanceMM)/1000,
			float64(meas.AzimuthCdeg)/100,
			float64(meas.ElevationCdeg)/100)
	}
	p.monitor.rl.Refresh()
}
