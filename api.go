// Package mapstream converts between typed Go objects and dynamic,
// string-keyed maps of tagged values.
//
// A type declares which of its fields take part, under which keys, and in
// which order. A Stream then copies those fields into a Map (write) or
// assigns a Map's values back to them (read), with no per-field conversion
// code.
//
// # Declaring Fields
//
// Types implement Streamable on the pointer receiver:
//
//	type Book struct {
//	    Title  string
//	    Pages  int
//	    Rating float64
//	}
//
//	func (b *Book) StreamFields(f *mapstream.Fields) {
//	    f.Add(
//	        mapstream.Field("title", &b.Title),
//	        mapstream.Field("pages", &b.Pages),
//	        mapstream.Field("rating", &b.Rating),
//	    )
//	}
//
// A type extending another declares its own fields and then delegates to
// the parent, viewed as the parent type:
//
//	func (n *Novel) StreamFields(f *mapstream.Fields) {
//	    f.Add(mapstream.Field("genre", &n.Genre))
//	    f.Inherit(&n.Book)
//	}
//
// Types without StreamFields can be streamed through Derive, which binds
// exported fields by their `map` struct tags.
//
// # Passes
//
//	s := mapstream.NewStream()
//	_ = s.Write(ctx, &book)     // s.Source() now holds title, pages, rating
//
//	s = mapstream.NewStreamFrom(m)
//	err := s.Read(ctx, &book)   // consumed keys leave s.Source()
//
// A read pass never fails because a key is missing: the field keeps its
// value. It fails with a *MismatchError when a present value cannot convert
// to the field's type. Keys the schema does not declare stay in the source
// as the leftover set.
//
// Both passes walk own fields first and then each ancestor's
// (TraversalOrder). On write an ancestor's value therefore wins a key
// collision; on read the descendant consumes the key.
//
// # Values
//
// Value is a closed variant: null, bool, int, float, string, list, map, or
// opaque. Conversions are strict; integer to float is the only widening.
//
// # Codecs
//
// Byte formats live in subpackages (json, yaml, msgpack, bson, cbor, xml).
// Each implements Codec over a *Map; Marshal and Unmarshal pair a codec with
// a Stream.
//
// # Transforming Bindings
//
// Masked, Redacted, Hashed and Encrypted wrap any Binding to transform its
// value on the way out (write) or in (read).
package mapstream

import "context"

// Codec renders maps to bytes and parses them back.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "application/json").
	ContentType() string

	// Encode renders m.
	Encode(m *Map) ([]byte, error)

	// Decode parses data into a map.
	Decode(data []byte) (*Map, error)
}

// Marshal writes obj into a fresh map and encodes it with c.
func Marshal(ctx context.Context, c Codec, obj Streamable, opts ...Option) ([]byte, error) {
	s := NewStream(opts...)
	if err := s.Write(ctx, obj); err != nil {
		return nil, err
	}
	return c.Encode(s.Source())
}

// Unmarshal decodes data with c and reads the result into obj.
// It returns the leftover map: decoded keys obj did not declare.
func Unmarshal(ctx context.Context, c Codec, data []byte, obj Streamable, opts ...Option) (*Map, error) {
	m, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	s := NewStreamFrom(m, opts...)
	if err := s.Read(ctx, obj); err != nil {
		return s.Source(), err
	}
	return s.Source(), nil
}
