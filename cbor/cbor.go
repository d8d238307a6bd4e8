// Package cbor provides a CBOR codec for mapstream maps.
//
// Maps are written in canonical key order. Times held as opaque values
// are tagged RFC 3339 strings and decode back as time.Time.
package cbor

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/zoobzio/mapstream"
)

const contentType = "application/cbor"

// cborCodec implements mapstream.Codec for CBOR.
type cborCodec struct {
	em cbor.EncMode
	dm cbor.DecMode
}

// New returns a CBOR codec.
func New() mapstream.Codec {
	em, err := cbor.EncOptions{
		Sort:    cbor.SortCanonical,
		Time:    cbor.TimeRFC3339Nano,
		TimeTag: cbor.EncTagRequired,
	}.EncMode()
	if err != nil {
		panic(err)
	}
	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(err)
	}
	return &cborCodec{em: em, dm: dm}
}

// ContentType returns the MIME type for CBOR.
func (c *cborCodec) ContentType() string {
	return contentType
}

// Encode renders m as a CBOR map.
func (c *cborCodec) Encode(m *mapstream.Map) ([]byte, error) {
	out, err := c.em.Marshal(m.Native())
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrEncode, contentType, err)
	}
	return out, nil
}

// Decode parses a CBOR map.
func (c *cborCodec) Decode(data []byte) (*mapstream.Map, error) {
	var doc any
	if err := c.dm.Unmarshal(data, &doc); err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	m, err := mapstream.MapFromNative(doc)
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	return m, nil
}
