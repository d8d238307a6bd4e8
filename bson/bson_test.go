package bson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/mapstream"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/bson", New().ContentType())
}

func TestRoundTripPreservesKindsAndOrder(t *testing.T) {
	nested := mapstream.NewMap()
	nested.Set("lang", mapstream.String("en"))
	nested.Set("year", mapstream.Int(1965))

	m := mapstream.NewMap()
	m.Set("title", mapstream.String("Dune"))
	m.Set("pages", mapstream.Int(412))
	m.Set("rating", mapstream.Float(4))
	m.Set("none", mapstream.Null())
	m.Set("tags", mapstream.List(mapstream.String("a"), mapstream.Bool(true)))
	m.Set("meta", mapstream.MapValue(nested))

	c := New()
	data, err := c.Encode(m)
	require.NoError(t, err)

	got, err := c.Decode(data)
	require.NoError(t, err)
	assert.True(t, m.Equal(got), "got %s", got)
	assert.Equal(t, m.Keys(), got.Keys())

	meta, _ := got.Get("meta")
	inner, ok := meta.AsMap()
	require.True(t, ok)
	assert.Equal(t, []string{"lang", "year"}, inner.Keys())
}

func TestDecodeDriverTypes(t *testing.T) {
	id := primitive.NewObjectID()
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := bson.Marshal(bson.D{
		{Key: "_id", Value: id},
		{Key: "n", Value: int32(5)},
		{Key: "at", Value: primitive.NewDateTimeFromTime(when)},
	})
	require.NoError(t, err)

	got, err := New().Decode(data)
	require.NoError(t, err)

	v, _ := got.Get("_id")
	assert.Equal(t, mapstream.String(id.Hex()), v)
	v, _ = got.Get("n")
	assert.Equal(t, mapstream.Int(5), v)
	v, _ = got.Get("at")
	require.Equal(t, mapstream.KindOpaque, v.Kind())
	assert.True(t, when.Equal(v.Interface().(time.Time)))
}

func TestDecodeInvalid(t *testing.T) {
	_, err := New().Decode([]byte{0x01})
	assert.ErrorIs(t, err, mapstream.ErrDecode)
}
