package mapstream

import (
	"reflect"
	"sync"
)

// Streamable is implemented by types that take part in map streaming.
//
// StreamFields adds the type's own bindings in declaration order and then,
// for types that extend another, delegates with Inherit:
//
//	func (n *Novel) StreamFields(f *mapstream.Fields) {
//	    f.Add(
//	        mapstream.Field("genre", &n.Genre),
//	        mapstream.Field("series", &n.Series),
//	    )
//	    f.Inherit(&n.Book)
//	}
//
// Implement it on the pointer receiver so bindings can address the fields.
type Streamable interface {
	StreamFields(f *Fields)
}

// Fields collects the bindings of one object for one pass.
//
// Bindings are grouped into levels: the object's own fields form the first
// level and each Inherit call opens the next. Declaration errors are
// recorded and reported by the pass; the first one wins.
type Fields struct {
	bindings []Binding
	levels   []Level
	stack    []frame
	err      error
}

// frame tracks the level currently being declared.
type frame struct {
	level     int
	inherited bool
	seen      map[string]struct{}
}

var fieldsPool = sync.Pool{
	New: func() any { return &Fields{} },
}

// collect gathers the bindings of obj.
// The returned Fields must be handed back with release.
func collect(obj Streamable) (*Fields, error) {
	f := fieldsPool.Get().(*Fields)
	f.open(typeNameOf(obj))
	obj.StreamFields(f)
	f.stack = f.stack[:0]
	if f.err != nil {
		err := f.err
		release(f)
		return nil, err
	}
	return f, nil
}

func release(f *Fields) {
	for i := range f.bindings {
		f.bindings[i] = nil
	}
	f.bindings = f.bindings[:0]
	f.levels = nil
	f.stack = f.stack[:0]
	f.err = nil
	fieldsPool.Put(f)
}

// Add appends bindings to the current level.
func (f *Fields) Add(bindings ...Binding) *Fields {
	if f.err != nil || !f.active() {
		return f
	}
	top := &f.stack[len(f.stack)-1]
	typeName := f.levels[top.level].Type
	for _, b := range bindings {
		if b == nil {
			f.fail(newSchemaError(typeName, "", "nil binding"))
			return f
		}
		key := b.Key()
		if top.inherited {
			f.fail(newSchemaError(typeName, key, "fields must be declared before Inherit"))
			return f
		}
		if key == "" {
			f.fail(newSchemaError(typeName, key, "empty key"))
			return f
		}
		if c, ok := b.(checker); ok {
			if err := c.check(); err != nil {
				f.fail(newSchemaError(typeName, key, err.Error()))
				return f
			}
		}
		if _, dup := top.seen[key]; dup {
			f.fail(newSchemaError(typeName, key, "duplicate key in level"))
			return f
		}
		top.seen[key] = struct{}{}
		f.bindings = append(f.bindings, b)
		f.levels[top.level].Keys = append(f.levels[top.level].Keys, key)
	}
	return f
}

// Inherit appends the parent's fields as the next level.
// Pass the embedded parent of the same object, narrowed to the parent type.
// A level may inherit once; fields added after Inherit are rejected.
func (f *Fields) Inherit(parent Streamable) {
	if f.err != nil || !f.active() {
		return
	}
	top := &f.stack[len(f.stack)-1]
	typeName := f.levels[top.level].Type
	if top.inherited {
		f.fail(newSchemaError(typeName, "", "multiple parents"))
		return
	}
	if parent == nil || isNilPointer(parent) {
		f.fail(newSchemaError(typeName, "", "nil parent"))
		return
	}
	top.inherited = true
	f.open(typeNameOf(parent))
	parent.StreamFields(f)
	f.stack = f.stack[:len(f.stack)-1]
}

// Len returns the number of bindings collected so far.
func (f *Fields) Len() int { return len(f.bindings) }

// Err returns the first declaration error, if any.
func (f *Fields) Err() error { return f.err }

// active reports whether a collection is in progress. A Fields not handed
// out by a pass records a SchemaError instead.
func (f *Fields) active() bool {
	if len(f.stack) == 0 {
		f.fail(newSchemaError("<none>", "", "Fields used outside a pass"))
		return false
	}
	return true
}

func (f *Fields) open(typeName string) {
	f.levels = append(f.levels, Level{Type: typeName})
	f.stack = append(f.stack, frame{level: len(f.levels) - 1, seen: make(map[string]struct{})})
}

func (f *Fields) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// typed is implemented by Streamable adapters that stand in for another
// type, so schemas are named and cached by the type they describe.
type typed interface {
	streamType() reflect.Type
}

func typeOf(obj Streamable) reflect.Type {
	if t, ok := obj.(typed); ok {
		return t.streamType()
	}
	return reflect.TypeOf(obj)
}

func typeNameOf(obj Streamable) string {
	if obj == nil {
		return "<nil>"
	}
	t := typeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func isNilPointer(obj Streamable) bool {
	rv := reflect.ValueOf(obj)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// writeNested runs a write pass of obj into a fresh map.
func writeNested(obj Streamable) (*Map, error) {
	f, err := collect(obj)
	if err != nil {
		return nil, err
	}
	defer release(f)
	m := NewMap()
	for _, b := range f.bindings {
		v, err := readBinding(b)
		if err != nil {
			return nil, err
		}
		m.Set(b.Key(), v)
	}
	return m, nil
}

// readNested runs a read pass of src into obj. Leftover keys are dropped.
func readNested(src *Map, obj Streamable) error {
	f, err := collect(obj)
	if err != nil {
		return err
	}
	defer release(f)
	for _, b := range f.bindings {
		v, ok := src.Get(b.Key())
		if !ok {
			continue
		}
		if err := b.SetValue(v); err != nil {
			return err
		}
		src.Remove(b.Key())
	}
	return nil
}
