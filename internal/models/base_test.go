package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestULIDRoundTrip(t *testing.T) {
	id := NewULID()
	require.False(t, id.IsZero())

	parsed, err := ParseULID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestULIDParseInvalid(t *testing.T) {
	_, err := ParseULID("not-a-ulid")
	assert.Error(t, err)
}

func TestULIDValueNilWhenZero(t *testing.T) {
	v, err := ULID{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	id := NewULID()
	v, err = id.Value()
	require.NoError(t, err)
	assert.Equal(t, id.String(), v)
}

func TestULIDScan(t *testing.T) {
	id := NewULID()

	var scanned ULID
	require.NoError(t, scanned.Scan(id.String()))
	assert.Equal(t, id, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	require.NoError(t, scanned.Scan([]byte(id.String())))
	assert.Equal(t, id, scanned)

	assert.Error(t, scanned.Scan(42))
}

func TestULIDJSON(t *testing.T) {
	id := NewULID()

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"`+id.String()+`"`, string(data))

	var decoded ULID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)

	data, err = json.Marshal(ULID{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	require.NoError(t, json.Unmarshal([]byte("null"), &decoded))
	assert.True(t, decoded.IsZero())
}
