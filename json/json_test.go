package json

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/mapstream"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", New().ContentType())
}

func TestEncodeKeepsOrderAndFloats(t *testing.T) {
	m := mapstream.NewMap()
	m.Set("title", mapstream.String("Dune"))
	m.Set("pages", mapstream.Int(412))
	m.Set("rating", mapstream.Float(4))
	m.Set("tags", mapstream.List(mapstream.String("a"), mapstream.Null()))

	data, err := New().Encode(m)
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Dune","pages":412,"rating":4.0,"tags":["a",null]}`, string(data))
}

func TestRoundTripPreservesKinds(t *testing.T) {
	nested := mapstream.NewMap()
	nested.Set("lang", mapstream.String("en"))

	m := mapstream.NewMap()
	m.Set("i", mapstream.Int(-7))
	m.Set("f", mapstream.Float(2))
	m.Set("big", mapstream.Float(1e21))
	m.Set("b", mapstream.Bool(true))
	m.Set("meta", mapstream.MapValue(nested))

	c := New()
	data, err := c.Encode(m)
	require.NoError(t, err)

	got, err := c.Decode(data)
	require.NoError(t, err)
	assert.True(t, m.Equal(got), "got %s", got)

	f, _ := got.Get("f")
	assert.Equal(t, mapstream.KindFloat, f.Kind())
	i, _ := got.Get("i")
	assert.Equal(t, mapstream.KindInt, i.Kind())
}

func TestEncodeRejectsNaN(t *testing.T) {
	m := mapstream.NewMap()
	m.Set("x", mapstream.Float(nan()))

	_, err := New().Encode(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mapstream.ErrEncode))
}

func TestDecodeErrors(t *testing.T) {
	c := New()

	_, err := c.Decode([]byte(`{not json`))
	assert.ErrorIs(t, err, mapstream.ErrDecode)

	_, err = c.Decode([]byte(`[1,2]`))
	assert.ErrorIs(t, err, mapstream.ErrDecode)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

func TestEncodeRejectsInvalidUTF8(t *testing.T) {
	m := mapstream.NewMap()
	m.Set("s", mapstream.String("a\xffb"))
	_, err := New().Encode(m)
	assert.ErrorIs(t, err, mapstream.ErrEncode)

	m = mapstream.NewMap()
	m.Set("\xfe", mapstream.Null())
	_, err = New().Encode(m)
	assert.ErrorIs(t, err, mapstream.ErrEncode)
}

func TestRoundTripWideUint(t *testing.T) {
	m := mapstream.NewMap()
	m.Set("u", mapstream.Opaque(uint64(math.MaxUint64)))

	c := New()
	data, err := c.Encode(m)
	require.NoError(t, err)
	assert.Equal(t, `{"u":18446744073709551615}`, string(data))

	got, err := c.Decode(data)
	require.NoError(t, err)
	assert.True(t, m.Equal(got), "got %s", got)
}
