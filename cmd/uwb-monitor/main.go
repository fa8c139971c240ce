// Command uwb-monitor is an interactive client for a uwbd daemon.
//
// It connects over a unix socket (the default), a TCP address, or an
// mDNS-discovered daemon, then offers an interactive prompt to watch
// adapter state changes and drive ranging sessions.
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-socket string     Unix socket path (overrides config)
//	-address string    Daemon TCP address host:port (overrides config)
//	-discover          Find a daemon via mDNS instead of a fixed address
//	-log-file string   Append protocol events to this file (CBOR)
//	-log-console       Mirror protocol events to stderr
//
// Examples:
//
//	# Connect to the local daemon
//	uwb-monitor
//
//	# Connect to a network daemon found via mDNS
//	uwb-monitor -discover
//
//	# Full protocol capture
//	uwb-monitor -log-file /tmp/uwbd.cborlog -log-console
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/uwbd-protocol/uwbd-go/cmd/uwb-monitor/interactive"
	"github.com/uwbd-protocol/uwbd-go/pkg/adapter"
	"github.com/uwbd-protocol/uwbd-go/pkg/config"
	"github.com/uwbd-protocol/uwbd-go/pkg/discovery"
	"github.com/uwbd-protocol/uwbd-go/pkg/log"
	"github.com/uwbd-protocol/uwbd-go/pkg/session"
	"github.com/uwbd-protocol/uwbd-go/pkg/transport"
	"github.com/uwbd-protocol/uwbd-go/pkg/version"
)

var (
	configFile string
	socketPath string
	tcpAddress string
	discover   bool
	logFile    string
	logConsole bool
)

func main() {
	flag.StringVar(&configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&socketPath, "socket", "", "Unix socket path (overrides config)")
	flag.StringVar(&tcpAddress, "address", "", "Daemon TCP address host:port (overrides config)")
	flag.BoolVar(&discover, "discover", false, "Find a daemon via mDNS")
	flag.StringVar(&logFile, "log-file", "", "Append protocol events to this file (CBOR)")
	flag.BoolVar(&logConsole, "log-console", false, "Mirror protocol events to stderr")
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "uwb-monitor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	if cfg.Discovery.Enabled && cfg.Daemon.Address == "" {
		addr, err := discoverDaemon(ctx, cfg)
		if err != nil {
			return err
		}
		cfg.Daemon.Address = addr
		fmt.Printf("Discovered daemon at %s\n", addr)
	}

	client := transport.NewClient(transport.Config{
		Network:        cfg.Daemon.Network,
		Address:        cfg.Daemon.Address,
		ConnectTimeout: cfg.Daemon.ConnectTimeout,
		RequestTimeout: cfg.Daemon.RequestTimeout,
		Logger:         logger,
	})
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Close()

	fmt.Printf("Connected to %s (%s)\n", cfg.Daemon.Address, client.ConnectionID())

	broker := adapter.NewStateBroker(client)
	broker.SetLogger(logger, client.ConnectionID())

	sessions := session.NewManager(client)
	sessions.SetLogger(logger, client.ConnectionID())

	masterKey, err := cfg.Sessions.MasterKeyBytes()
	if err != nil {
		return err
	}
	if masterKey != nil {
		sessions.SetMasterKey(masterKey)
	}

	monitor, err := interactive.New(interactive.Config{
		Broker:    broker,
		Sessions:  sessions,
		MasterKey: masterKey,
		Channel:   cfg.Sessions.Channel,
	})
	if err != nil {
		return err
	}

	monitor.Run(ctx, cancel)
	return nil
}

// loadConfig resolves the effective configuration from file and flags.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return cfg, err
		}
	}

	switch {
	case socketPath != "":
		cfg.Daemon.Network = "unix"
		cfg.Daemon.Address = socketPath
	case tcpAddress != "":
		cfg.Daemon.Network = "tcp"
		cfg.Daemon.Address = tcpAddress
	case discover:
		cfg.Daemon.Network = "tcp"
		cfg.Daemon.Address = ""
		cfg.Discovery.Enabled = true
	}

	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if logConsole {
		cfg.Logging.Console = true
	}

	return cfg, cfg.Validate()
}

// buildLogger assembles the protocol event logger from the config.
func buildLogger(cfg config.Config) (log.Logger, func(), error) {
	var loggers []log.Logger
	cleanup := func() {}

	if cfg.Logging.File != "" {
		fileLogger, err := log.NewFileLogger(cfg.Logging.File)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open log file: %w", err)
		}
		loggers = append(loggers, fileLogger)
		cleanup = func() { fileLogger.Close() }
	}
	if cfg.Logging.Console {
		loggers = append(loggers, log.NewSlogAdapter(slog.New(slog.NewTextHandler(os.Stderr, nil))))
	}

	switch len(loggers) {
	case 0:
		return nil, cleanup, nil
	case 1:
		return loggers[0], cleanup, nil
	default:
		return log.NewMultiLogger(loggers...), cleanup, nil
	}
}

// discoverDaemon browses mDNS for the first reachable daemon.
func discoverDaemon(ctx context.Context, cfg config.Config) (string, error) {
	browser := discovery.NewBrowser(discovery.BrowserConfig{
		BrowseTimeout: cfg.Discovery.Timeout,
		Interface:     cfg.Discovery.Interface,
	})

	fmt.Println("Browsing for daemons...")
	svc, err := browser.FindFirst(ctx)
	if err != nil {
		return "", fmt.Errorf("discover daemon: %w", err)
	}
	if !version.CompatibleMajor(svc.Version) {
		return "", fmt.Errorf("daemon %s speaks protocol v%d, this client speaks v%s",
			svc.InstanceName, svc.Version, version.Current)
	}

	host := svc.Host
	if len(svc.Addresses) > 0 {
		host = svc.Addresses[0]
	}
	return fmt.Sprintf("%s:%d", host, svc.Port), nil
}
