package discovery

import (
	"errors"
	"time"
)

// Service constants for mDNS.
const (
	// ServiceTypeDaemon is the service type advertised by network-reachable
	// daemons.
	ServiceTypeDaemon = "_uwbd._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the default daemon TCP port.
	DefaultPort = 7912
)

// TXT record keys.
const (
	TXTKeyVersion      = "ver" // Protocol version (required)
	TXTKeyDaemonName   = "DN"  // User-configurable daemon name (optional)
	TXTKeyAdapterCount = "ac"  // Number of UWB adapters (optional)
	TXTKeySerial       = "serial"
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second
)

// Limits.
const (
	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// Discovery errors.
var (
	ErrInvalidTXTRecord = errors.New("invalid TXT record format")
	ErrMissingRequired  = errors.New("missing required field")
	ErrNotFound         = errors.New("daemon not found")
)

// DaemonService is a daemon found via mDNS.
type DaemonService struct {
	// InstanceName is the mDNS instance name (e.g. "uwbd-a1b2c3").
	InstanceName string

	// Host is the hostname (e.g. "anchor-gw.local").
	Host string

	// Port is the daemon TCP port.
	Port uint16

	// Addresses contains resolved IP addresses.
	Addresses []string

	// Version is the daemon protocol version (from TXT "ver").
	Version uint8

	// DaemonName is the optional user-configurable name (from TXT "DN").
	DaemonName string

	// AdapterCount is the optional adapter count (from TXT "ac").
	AdapterCount uint8

	// Serial is the optional device serial (from TXT "serial").
	Serial string
}

// DaemonInfo describes a daemon for advertising.
type DaemonInfo struct {
	// InstanceName is the mDNS instance name.
	InstanceName string

	// Version is the protocol version (required, nonzero).
	Version uint8

	// DaemonName is an optional user-configurable name.
	DaemonName string

	// AdapterCount is the number of UWB adapters the daemon exposes.
	AdapterCount uint8

	// Serial is an optional device serial.
	Serial string

	// Port is the TCP port. Zero means DefaultPort.
	Port uint16
}

// Validate checks if the DaemonInfo can be advertised.
func (d *DaemonInfo) Validate() error {
	if d.InstanceName == "" {
		return ErrMissingRequired
	}
	if len(d.InstanceName) > MaxInstanceNameLen {
		return ErrInvalidTXTRecord
	}
	if d.Version == 0 {
		return ErrMissingRequired
	}
	return nil
}

// ServiceEntry is raw mDNS entry data, decoupled from the zeroconf types.
// This is a helper for Browser implementations and tests.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToDaemonService converts a ServiceEntry to a DaemonService.
func (e *ServiceEntry) ToDaemonService() (*DaemonService, error) {
	info, err := DecodeDaemonTXT(StringsToTXTRecords(e.Text))
	if err != nil {
		return nil, err
	}

	return &DaemonService{
		InstanceName: e.Instance,
		Host:         e.Host,
		Port:         e.Port,
		Addresses:    e.Addrs,
		Version:      info.Version,
		DaemonName:   info.DaemonName,
		AdapterCount: info.AdapterCount,
		Serial:       info.Serial,
	}, nil
}
