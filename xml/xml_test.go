package xml

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/mapstream"
)

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/xml", New().ContentType())
}

func TestEncodeShape(t *testing.T) {
	m := mapstream.NewMap()
	m.Set("title", mapstream.String("Dune & Co"))
	m.Set("tags", mapstream.List(mapstream.Int(1)))

	data, err := New().Encode(m)
	require.NoError(t, err)
	assert.Equal(t,
		`<map><entry key="title" kind="string">Dune &amp; Co</entry>`+
			`<entry key="tags" kind="list"><item kind="int">1</item></entry></map>`,
		string(data))
}

func TestRoundTripPreservesKindsAndOrder(t *testing.T) {
	nested := mapstream.NewMap()
	nested.Set("lang", mapstream.String("en"))

	m := mapstream.NewMap()
	m.Set("title", mapstream.String("Dune"))
	m.Set("pages", mapstream.Int(412))
	m.Set("rating", mapstream.Float(4))
	m.Set("none", mapstream.Null())
	m.Set("empty", mapstream.String(""))
	m.Set("tags", mapstream.List(mapstream.String("a"), mapstream.Bool(true)))
	m.Set("meta", mapstream.MapValue(nested))

	c := New()
	data, err := c.Encode(m)
	require.NoError(t, err)

	got, err := c.Decode(data)
	require.NoError(t, err)
	assert.True(t, m.Equal(got), "got %s", got)
	assert.Equal(t, m.Keys(), got.Keys())
}

func TestOpaqueUsesTextForm(t *testing.T) {
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	m := mapstream.NewMap()
	m.Set("at", mapstream.Opaque(when))
	m.Set("ch", mapstream.Opaque(make(chan int)))

	_, err := New().Encode(m)
	assert.ErrorIs(t, err, mapstream.ErrEncode)

	m.Remove("ch")
	data, err := New().Encode(m)
	require.NoError(t, err)
	got, err := New().Decode(data)
	require.NoError(t, err)
	v, _ := got.Get("at")
	assert.Equal(t, mapstream.String("2024-03-01T00:00:00Z"), v)
}

func TestDecodeErrors(t *testing.T) {
	c := New()
	cases := []string{
		`<list></list>`,
		`<map><entry kind="int">1</entry></map>`,
		`<map><entry key="a" kind="int">x</entry></map>`,
		`<map><entry key="a" kind="widget"></entry></map>`,
		`<map><entry key="a"`,
	}
	for _, in := range cases {
		_, err := c.Decode([]byte(in))
		assert.ErrorIs(t, err, mapstream.ErrDecode, in)
	}
}

func TestEncodeRejectsTextXMLCannotCarry(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"control char in value", "s", "a\x01b"},
		{"invalid utf8 in value", "s", "a\xffb"},
		{"control char in key", "k\x02", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mapstream.NewMap()
			m.Set(tt.key, mapstream.String(tt.val))
			_, err := New().Encode(m)
			assert.ErrorIs(t, err, mapstream.ErrEncode)
		})
	}
}

func TestRoundTripWhitespaceAndWideUint(t *testing.T) {
	m := mapstream.NewMap()
	m.Set("s", mapstream.String("tab\there\nnext line �"))
	m.Set("u", mapstream.Opaque(uint64(math.MaxUint64)))
	m.Set("small", mapstream.Int(3))

	c := New()
	data, err := c.Encode(m)
	require.NoError(t, err)
	got, err := c.Decode(data)
	require.NoError(t, err)
	assert.True(t, m.Equal(got), "got %s", got)
}
