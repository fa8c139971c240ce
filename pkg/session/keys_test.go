package session

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeysDeterministic(t *testing.T) {
	master := bytes.Repeat([]byte{0x42}, 32)

	a, err := DeriveKeys(master, "handle-1")
	require.NoError(t, err)
	b, err := DeriveKeys(master, "handle-1")
	require.NoError(t, err)

	assert.Equal(t, a.STSKey, b.STSKey)
	assert.Equal(t, a.InitVector, b.InitVector)
}

func TestDeriveKeysVaryByHandle(t *testing.T) {
	master := bytes.Repeat([]byte{0x42}, 32)

	a, err := DeriveKeys(master, "handle-1")
	require.NoError(t, err)
	b, err := DeriveKeys(master, "handle-2")
	require.NoError(t, err)

	assert.NotEqual(t, a.STSKey, b.STSKey)
	assert.NotEqual(t, a.InitVector, b.InitVector)
}

func TestDeriveKeysVaryByMasterKey(t *testing.T) {
	a, err := DeriveKeys(bytes.Repeat([]byte{0x01}, 16), "handle-1")
	require.NoError(t, err)
	b, err := DeriveKeys(bytes.Repeat([]byte{0x02}, 16), "handle-1")
	require.NoError(t, err)

	assert.NotEqual(t, a.STSKey, b.STSKey)
}

func TestDeriveKeysRejectsShortMasterKey(t *testing.T) {
	_, err := DeriveKeys(make([]byte, 8), "handle-1")
	assert.Error(t, err)
}

func TestDeriveKeysRejectsEmptyHandle(t *testing.T) {
	_, err := DeriveKeys(make([]byte, 32), "")
	assert.Error(t, err)
}

func TestSessionParams(t *testing.T) {
	keys, err := DeriveKeys(bytes.Repeat([]byte{0x42}, 32), "handle-1")
	require.NoError(t, err)

	params := keys.SessionParams()
	assert.Equal(t, keys.STSKey[:], params["stsKey"])
	assert.Equal(t, keys.InitVector[:], params["stsInitVector"])
}
