// Package msgpack provides a MessagePack codec for mapstream maps.
package msgpack

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/mapstream"
)

const contentType = "application/msgpack"

// msgpackCodec implements mapstream.Codec for MessagePack.
type msgpackCodec struct{}

// New returns a MessagePack codec.
func New() mapstream.Codec {
	return &msgpackCodec{}
}

// ContentType returns the MIME type for MessagePack.
func (c *msgpackCodec) ContentType() string {
	return contentType
}

// Encode renders m as a MessagePack map in insertion order.
func (c *msgpackCodec) Encode(m *mapstream.Map) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := encodeMap(enc, m); err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrEncode, contentType, err)
	}
	return buf.Bytes(), nil
}

// Decode parses a MessagePack map. Top-level keys keep their wire order.
func (c *msgpackCodec) Decode(data []byte) (*mapstream.Map, error) {
	m, err := decodeMap(msgpack.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	return m, nil
}

func encodeMap(enc *msgpack.Encoder, m *mapstream.Map) error {
	if err := enc.EncodeMapLen(m.Len()); err != nil {
		return err
	}
	var err error
	m.Range(func(k string, v mapstream.Value) bool {
		if err = enc.EncodeString(k); err != nil {
			return false
		}
		err = encodeValue(enc, v)
		return err == nil
	})
	return err
}

func encodeValue(enc *msgpack.Encoder, v mapstream.Value) error {
	switch v.Kind() {
	case mapstream.KindNull:
		return enc.EncodeNil()
	case mapstream.KindBool:
		b, _ := v.AsBool()
		return enc.EncodeBool(b)
	case mapstream.KindInt:
		i, _ := v.AsInt()
		return enc.EncodeInt(i)
	case mapstream.KindFloat:
		f, _ := v.AsFloat()
		return enc.EncodeFloat64(f)
	case mapstream.KindString:
		s, _ := v.AsString()
		return enc.EncodeString(s)
	case mapstream.KindList:
		list, _ := v.AsList()
		if err := enc.EncodeArrayLen(len(list)); err != nil {
			return err
		}
		for _, e := range list {
			if err := encodeValue(enc, e); err != nil {
				return err
			}
		}
		return nil
	case mapstream.KindMap:
		nested, _ := v.AsMap()
		return encodeMap(enc, nested)
	}
	return enc.Encode(v.Interface())
}

func decodeMap(dec *msgpack.Decoder) (*mapstream.Map, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("document is nil, not a map")
	}
	m := mapstream.NewMap()
	for i := 0; i < n; i++ {
		k, err := dec.DecodeString()
		if err != nil {
			return nil, err
		}
		raw, err := dec.DecodeInterface()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		v, err := mapstream.FromNative(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		m.Set(k, v)
	}
	return m, nil
}
