// Package json provides a JSON codec for mapstream maps.
//
// Objects keep the map's insertion order. Floats always carry a fraction or
// exponent so they decode back as floats; integers decode as ints.
package json

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	gojson "github.com/goccy/go-json"
	"github.com/zoobzio/mapstream"
)

const contentType = "application/json"

// jsonCodec implements mapstream.Codec for JSON.
type jsonCodec struct{}

// New returns a JSON codec.
func New() mapstream.Codec {
	return &jsonCodec{}
}

// ContentType returns the MIME type for JSON.
func (c *jsonCodec) ContentType() string {
	return contentType
}

// Encode renders m as a JSON object.
func (c *jsonCodec) Encode(m *mapstream.Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeMap(&buf, m); err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrEncode, contentType, err)
	}
	return buf.Bytes(), nil
}

// Decode parses a JSON object.
func (c *jsonCodec) Decode(data []byte) (*mapstream.Map, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	m, err := mapstream.MapFromNative(doc)
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	return m, nil
}

func writeMap(buf *bytes.Buffer, m *mapstream.Map) error {
	buf.WriteByte('{')
	var err error
	first := true
	m.Range(func(k string, v mapstream.Value) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err = writeString(buf, k); err != nil {
			return false
		}
		buf.WriteByte(':')
		err = writeValue(buf, v)
		return err == nil
	})
	if err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeValue(buf *bytes.Buffer, v mapstream.Value) error {
	switch v.Kind() {
	case mapstream.KindNull:
		buf.WriteString("null")
	case mapstream.KindBool:
		b, _ := v.AsBool()
		buf.WriteString(strconv.FormatBool(b))
	case mapstream.KindInt:
		i, _ := v.AsInt()
		buf.WriteString(strconv.FormatInt(i, 10))
	case mapstream.KindFloat:
		f, _ := v.AsFloat()
		return writeFloat(buf, f)
	case mapstream.KindString:
		s, _ := v.AsString()
		return writeString(buf, s)
	case mapstream.KindList:
		list, _ := v.AsList()
		buf.WriteByte('[')
		for i, e := range list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case mapstream.KindMap:
		m, _ := v.AsMap()
		return writeMap(buf, m)
	case mapstream.KindOpaque:
		data, err := gojson.Marshal(v.Interface())
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return nil
}

func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("unsupported float value %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !bytes.ContainsAny([]byte(s), ".eE") {
		s += ".0"
	}
	buf.WriteString(s)
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("string %q is not valid UTF-8", s)
	}
	data, err := gojson.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
