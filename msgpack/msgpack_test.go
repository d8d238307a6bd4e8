package msgpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/mapstream"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/msgpack", New().ContentType())
}

func TestRoundTripPreservesKinds(t *testing.T) {
	nested := mapstream.NewMap()
	nested.Set("lang", mapstream.String("en"))

	m := mapstream.NewMap()
	m.Set("title", mapstream.String("Dune"))
	m.Set("pages", mapstream.Int(412))
	m.Set("rating", mapstream.Float(4))
	m.Set("none", mapstream.Null())
	m.Set("tags", mapstream.List(mapstream.String("a"), mapstream.Int(-1)))
	m.Set("meta", mapstream.MapValue(nested))

	c := New()
	data, err := c.Encode(m)
	require.NoError(t, err)

	got, err := c.Decode(data)
	require.NoError(t, err)
	assert.True(t, m.Equal(got), "got %s", got)
	assert.Equal(t, m.Keys(), got.Keys())
}

func TestDecodeForeignDocument(t *testing.T) {
	data, err := msgpack.Marshal(map[string]any{"n": uint8(7), "raw": []byte{1, 2}})
	require.NoError(t, err)

	got, err := New().Decode(data)
	require.NoError(t, err)

	n, _ := got.Get("n")
	assert.Equal(t, mapstream.Int(7), n)
	raw, _ := got.Get("raw")
	assert.Equal(t, mapstream.String("AQI="), raw)
}

func TestDecodeRejectsNonMap(t *testing.T) {
	data, err := msgpack.Marshal([]int{1, 2})
	require.NoError(t, err)

	_, err = New().Decode(data)
	assert.ErrorIs(t, err, mapstream.ErrDecode)
}
