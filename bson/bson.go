// Package bson provides a BSON codec for mapstream maps.
//
// Documents are built as bson.D so fields keep the map's insertion order.
package bson

import (
	"encoding/base64"
	"fmt"

	"github.com/zoobzio/mapstream"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const contentType = "application/bson"

// bsonCodec implements mapstream.Codec for BSON.
type bsonCodec struct{}

// New returns a BSON codec.
func New() mapstream.Codec {
	return &bsonCodec{}
}

// ContentType returns the MIME type for BSON.
func (c *bsonCodec) ContentType() string {
	return contentType
}

// Encode renders m as a BSON document.
func (c *bsonCodec) Encode(m *mapstream.Map) ([]byte, error) {
	out, err := bson.Marshal(toDoc(m))
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrEncode, contentType, err)
	}
	return out, nil
}

// Decode parses a BSON document.
func (c *bsonCodec) Decode(data []byte) (*mapstream.Map, error) {
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	m, err := fromDoc(doc)
	if err != nil {
		return nil, mapstream.NewCodecError(mapstream.ErrDecode, contentType, err)
	}
	return m, nil
}

func toDoc(m *mapstream.Map) bson.D {
	doc := make(bson.D, 0, m.Len())
	m.Range(func(k string, v mapstream.Value) bool {
		doc = append(doc, bson.E{Key: k, Value: toBSON(v)})
		return true
	})
	return doc
}

func toBSON(v mapstream.Value) any {
	switch v.Kind() {
	case mapstream.KindList:
		list, _ := v.AsList()
		arr := make(bson.A, len(list))
		for i, e := range list {
			arr[i] = toBSON(e)
		}
		return arr
	case mapstream.KindMap:
		nested, _ := v.AsMap()
		return toDoc(nested)
	}
	return v.Interface()
}

func fromDoc(doc bson.D) (*mapstream.Map, error) {
	m := mapstream.NewMap()
	for _, e := range doc {
		v, err := fromBSON(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Key, err)
		}
		m.Set(e.Key, v)
	}
	return m, nil
}

func fromBSON(x any) (mapstream.Value, error) {
	switch n := x.(type) {
	case bson.D:
		m, err := fromDoc(n)
		if err != nil {
			return mapstream.Null(), err
		}
		return mapstream.MapValue(m), nil
	case bson.A:
		list := make([]mapstream.Value, len(n))
		for i, e := range n {
			v, err := fromBSON(e)
			if err != nil {
				return mapstream.Null(), fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = v
		}
		return mapstream.List(list...), nil
	case primitive.ObjectID:
		return mapstream.String(n.Hex()), nil
	case primitive.Binary:
		return mapstream.String(base64.StdEncoding.EncodeToString(n.Data)), nil
	case primitive.DateTime:
		return mapstream.Opaque(n.Time().UTC()), nil
	case primitive.Decimal128:
		return mapstream.String(n.String()), nil
	case primitive.Null, primitive.Undefined:
		return mapstream.Null(), nil
	}
	return mapstream.FromNative(x)
}
