package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key sizes for scrambled timestamp sequence (STS) generation.
const (
	// STSKeySize is the size of the derived STS key in bytes.
	STSKeySize = 16

	// STSInitVectorSize is the size of the derived STS initialization
	// vector in bytes.
	STSInitVectorSize = 16

	// MinMasterKeySize is the minimum accepted master key size in bytes.
	MinMasterKeySize = 16
)

// stsInfo domain-separates STS derivation from other uses of a master key.
var stsInfo = []byte("uwbd sts v1")

// Keys holds the derived secrets for one session's STS generation.
type Keys struct {
	STSKey     [STSKeySize]byte
	InitVector [STSInitVectorSize]byte
}

// DeriveKeys derives per-session STS secrets from a shared master key via
// HKDF-SHA256, using the session handle as salt. The same master key and
// handle always yield the same secrets, so both sides of a session derive
// matching keys without exchanging them.
func DeriveKeys(masterKey []byte, handle string) (*Keys, error) {
	if len(masterKey) < MinMasterKeySize {
		return nil, fmt.Errorf("master key too short: %d < %d bytes", len(masterKey), MinMasterKeySize)
	}
	if handle == "" {
		return nil, errors.New("session handle is empty")
	}

	reader := hkdf.New(sha256.New, masterKey, []byte(handle), stsInfo)

	var keys Keys
	if _, err := io.ReadFull(reader, keys.STSKey[:]); err != nil {
		return nil, fmt.Errorf("derive sts key: %w", err)
	}
	if _, err := io.ReadFull(reader, keys.InitVector[:]); err != nil {
		return nil, fmt.Errorf("derive sts init vector: %w", err)
	}
	return &keys, nil
}

// SessionParams returns the derived secrets as open-session parameters.
func (k *Keys) SessionParams() map[string]any {
	return map[string]any{
		"stsKey":        append([]byte(nil), k.STSKey[:]...),
		"stsInitVector": append([]byte(nil), k.InitVector[:]...),
	}
}
