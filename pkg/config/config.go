package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default connection values.
const (
	DefaultNetwork        = "unix"
	DefaultAddress        = "/run/uwbd/uwbd.sock"
	DefaultConnectTimeout = 10 * time.Second
	DefaultRequestTimeout = 5 * time.Second
)

// Config is the client configuration.
type Config struct {
	// Daemon configures how to reach the uwbd daemon.
	Daemon DaemonConfig `yaml:"daemon"`

	// Discovery configures mDNS daemon discovery. Only consulted when
	// Daemon.Address is empty and Daemon.Network is "tcp".
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Sessions configures ranging session defaults.
	Sessions SessionConfig `yaml:"sessions"`

	// Logging configures protocol event capture.
	Logging LoggingConfig `yaml:"logging"`
}

// DaemonConfig describes the daemon endpoint.
type DaemonConfig struct {
	// Network is "unix" or "tcp".
	Network string `yaml:"network"`

	// Address is the socket path or host:port.
	Address string `yaml:"address"`

	// ConnectTimeout bounds the dial.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`

	// RequestTimeout bounds each request/response round trip.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DiscoveryConfig configures mDNS browsing for TCP daemons.
type DiscoveryConfig struct {
	// Enabled turns on mDNS discovery.
	Enabled bool `yaml:"enabled"`

	// Interface restricts browsing to one network interface.
	Interface string `yaml:"interface"`

	// Timeout bounds the browse.
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig configures ranging session defaults.
type SessionConfig struct {
	// MasterKey is the hex-encoded master key STS session keys are derived
	// from. Empty disables key derivation.
	MasterKey string `yaml:"master_key"`

	// Channel is the default UWB channel for new sessions.
	Channel int `yaml:"channel"`
}

// MasterKeyBytes decodes the hex master key. Returns nil if unset.
func (s *SessionConfig) MasterKeyBytes() ([]byte, error) {
	if s.MasterKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(s.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("invalid master key: %w", err)
	}
	return key, nil
}

// LoggingConfig configures protocol event capture.
type LoggingConfig struct {
	// File is the path protocol events are appended to (CBOR, one frame
	// per event). Empty disables file capture.
	File string `yaml:"file"`

	// Console mirrors events to stderr via slog.
	Console bool `yaml:"console"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Daemon: DaemonConfig{
			Network:        DefaultNetwork,
			Address:        DefaultAddress,
			ConnectTimeout: DefaultConnectTimeout,
			RequestTimeout: DefaultRequestTimeout,
		},
		Discovery: DiscoveryConfig{
			Timeout: 10 * time.Second,
		},
		Sessions: SessionConfig{
			Channel: 9,
		},
	}
}

// Load reads a YAML config file. Unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Daemon.Network {
	case "unix", "tcp":
	default:
		return fmt.Errorf("daemon.network must be \"unix\" or \"tcp\", got %q", c.Daemon.Network)
	}
	if c.Daemon.Network == "unix" && c.Daemon.Address == "" {
		return fmt.Errorf("daemon.address is required for unix sockets")
	}
	if c.Daemon.Network == "tcp" && c.Daemon.Address == "" && !c.Discovery.Enabled {
		return fmt.Errorf("daemon.address or discovery.enabled is required for tcp")
	}
	if _, err := c.Sessions.MasterKeyBytes(); err != nil {
		return err
	}
	return nil
}
