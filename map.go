package mapstream

import "sort"

// Map is a string-keyed container of Values: the serialized form of an object.
//
// Each key holds exactly one Value; Set overwrites. Iteration follows first
// insertion order so output is deterministic, but no operation depends on it.
// Map performs no coercion of its own.
//
// The zero Map is empty and ready to use. A nil *Map reads as empty.
// Map is not safe for concurrent use.
type Map struct {
	entries map[string]entry
	next    uint64
}

type entry struct {
	value Value
	seq   uint64
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{}
}

// MapOf builds a map from a Go map. Keys are inserted in sorted order.
func MapOf(values map[string]Value) *Map {
	m := &Map{entries: make(map[string]entry, len(values))}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Set(k, values[k])
	}
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	e, ok := m.entries[key]
	return e.value, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.entries[key]
	return ok
}

// Set stores v under key, replacing any previous value.
// An overwritten key keeps its original position.
func (m *Map) Set(key string, v Value) {
	if m.entries == nil {
		m.entries = make(map[string]entry)
	}
	if e, ok := m.entries[key]; ok {
		e.value = v
		m.entries[key] = e
		return
	}
	m.entries[key] = entry{value: v, seq: m.next}
	m.next++
}

// Remove deletes key and reports whether it was present.
func (m *Map) Remove(key string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	return true
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// IsEmpty reports whether the map holds no keys.
func (m *Map) IsEmpty() bool { return m.Len() == 0 }

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return m.entries[keys[i]].seq < m.entries[keys[j]].seq
	})
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	for _, k := range m.Keys() {
		if !fn(k, m.entries[k].value) {
			return
		}
	}
}

// Clone returns an independent copy. Values are immutable, so the copy is
// as deep as it needs to be.
func (m *Map) Clone() *Map {
	cp := &Map{}
	if m == nil {
		return cp
	}
	cp.next = m.next
	cp.entries = make(map[string]entry, len(m.entries))
	for k, e := range m.entries {
		cp.entries[k] = e
	}
	return cp
}

// Equal reports whether both maps hold the same keys with equal values.
// Insertion order is ignored.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	if m == nil {
		return true
	}
	for k, e := range m.entries {
		o, ok := other.Get(k)
		if !ok || !e.value.Equal(o) {
			return false
		}
	}
	return true
}

// Native converts the map into a map[string]any tree; see ToNative.
func (m *Map) Native() map[string]any {
	out := make(map[string]any, m.Len())
	m.Range(func(k string, v Value) bool {
		out[k] = ToNative(v)
		return true
	})
	return out
}

// String renders the map for diagnostics.
func (m *Map) String() string {
	return Value{kind: KindMap, m: m}.String()
}

// restore replaces the contents of m with those of snapshot.
func (m *Map) restore(snapshot *Map) {
	m.entries = snapshot.entries
	m.next = snapshot.next
}
