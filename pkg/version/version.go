// Package version provides daemon protocol version parsing and comparison.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the protocol version implemented by this library.
const Current = "1.0"

// CurrentMajor is the major component of Current, as advertised in the
// daemon's mDNS TXT record.
const CurrentMajor uint8 = 1

// Version represents a parsed "major.minor" protocol version.
type Version struct {
	Major uint8
	Minor uint8
}

// Parse parses a "major.minor" version string.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil || parts[0] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil || parts[1] == "" {
		return Version{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return Version{Major: uint8(major), Minor: uint8(minor)}, nil
}

// String returns the version as "major.minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible returns true if the other version has the same major version.
// Minor versions are backward compatible within a major version.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major
}

// CompatibleMajor reports whether a daemon advertising the given major
// version can be used by this library.
func CompatibleMajor(major uint8) bool {
	return major == CurrentMajor
}
