package mapstream

// Order is the order a pass walks a schema chain.
type Order uint8

const (
	// OwnFieldsFirst walks a type's own bindings in declaration order, then
	// its parent's, recursively.
	OwnFieldsFirst Order = iota
)

// TraversalOrder is the order every write and read pass follows.
//
// It settles key collisions between a type and an ancestor: on write the
// ancestor is visited last and its value wins; on read the type is visited
// first and consumes the key, leaving the ancestor's field untouched.
const TraversalOrder = OwnFieldsFirst

// Level is one type's own keys within a schema chain.
type Level struct {
	Type string
	Keys []string
}

// Schema is the static description of a Streamable type: its levels in
// traversal order. Schemas are built once per type, cached, and read-only
// afterwards, so they are safe to share between goroutines.
type Schema struct {
	typeName string
	levels   []Level
	keys     []string
	index    map[string]struct{}
}

func newSchema(typeName string, levels []Level) *Schema {
	s := &Schema{
		typeName: typeName,
		levels:   make([]Level, len(levels)),
		index:    make(map[string]struct{}),
	}
	for i, l := range levels {
		keys := make([]string, len(l.Keys))
		copy(keys, l.Keys)
		s.levels[i] = Level{Type: l.Type, Keys: keys}
		for _, k := range keys {
			s.keys = append(s.keys, k)
			s.index[k] = struct{}{}
		}
	}
	return s
}

// TypeName returns the name of the described type.
func (s *Schema) TypeName() string { return s.typeName }

// Levels returns the levels, own level first.
func (s *Schema) Levels() []Level {
	out := make([]Level, len(s.levels))
	for i, l := range s.levels {
		keys := make([]string, len(l.Keys))
		copy(keys, l.Keys)
		out[i] = Level{Type: l.Type, Keys: keys}
	}
	return out
}

// Keys returns every key in traversal order. A key declared at two levels
// appears twice.
func (s *Schema) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Has reports whether any level declares key.
func (s *Schema) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Depth returns the number of levels.
func (s *Schema) Depth() int { return len(s.levels) }

// Leftover returns the keys of m that the schema does not declare.
func (s *Schema) Leftover(m *Map) []string {
	var out []string
	for _, k := range m.Keys() {
		if !s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}
