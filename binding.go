package mapstream

import (
	"errors"
	"reflect"
	"strconv"
)

// Binding pairs a key with one field of a live object.
//
// Value reads the field into a Value. SetValue converts v to the field's
// type and assigns it, returning a *MismatchError when the variant does not
// fit. Bindings hold a pointer into the object for one pass only; build them
// inside StreamFields and never retain them.
type Binding interface {
	// Key returns the map key the field is stored under.
	Key() string

	// Value reads the current field value.
	Value() Value

	// SetValue converts v and assigns it to the field.
	SetValue(v Value) error
}

// fallible is implemented by bindings whose read can fail, such as
// encrypting or nested-schema bindings. Write passes prefer it over Value.
type fallible interface {
	valueErr() (Value, error)
}

// checker is implemented by bindings that can detect their own
// misdeclaration when added to a schema.
type checker interface {
	check() error
}

// saver is implemented by bindings that can copy their field aside. The
// returned func puts the copy back without converting through Value.
type saver interface {
	save() func()
}

// readBinding returns the binding's value, surfacing errors when the
// binding can report them.
func readBinding(b Binding) (Value, error) {
	if f, ok := b.(fallible); ok {
		return f.valueErr()
	}
	return b.Value(), nil
}

// field is the typed adapter behind Field.
type field[T any] struct {
	key string
	ptr *T
}

// Field binds key to the field ptr points at.
//
// The common scalar types take a direct path; every other T goes through
// reflection (see As for the conversion rules).
func Field[T any](key string, ptr *T) Binding {
	return &field[T]{key: key, ptr: ptr}
}

func (f *field[T]) Key() string { return f.key }

func (f *field[T]) Value() Value {
	v, _ := f.valueErr()
	return v
}

func (f *field[T]) valueErr() (Value, error) {
	switch p := any(f.ptr).(type) {
	case *string:
		return String(*p), nil
	case *bool:
		return Bool(*p), nil
	case *int:
		return Int(int64(*p)), nil
	case *int64:
		return Int(*p), nil
	case *float64:
		return Float(*p), nil
	}
	v, err := encodeValue(reflect.ValueOf(f.ptr).Elem())
	return v, withPath(err, f.key)
}

func (f *field[T]) SetValue(v Value) error {
	switch p := any(f.ptr).(type) {
	case *string:
		s, ok := v.AsString()
		if !ok {
			return f.mismatch("string", v, nil)
		}
		*p = s
		return nil
	case *bool:
		b, ok := v.AsBool()
		if !ok {
			return f.mismatch("bool", v, nil)
		}
		*p = b
		return nil
	case *int:
		i, ok := v.AsInt()
		if !ok {
			return f.mismatch("int", v, nil)
		}
		if int64(int(i)) != i {
			return f.mismatch("int", v, ErrOverflow)
		}
		*p = int(i)
		return nil
	case *int64:
		i, ok := v.AsInt()
		if !ok {
			return f.mismatch("int64", v, nil)
		}
		*p = i
		return nil
	case *float64:
		fl, ok := v.AsFloat()
		if !ok {
			return f.mismatch("float64", v, nil)
		}
		*p = fl
		return nil
	}
	return withPath(decodeValue(v, reflect.ValueOf(f.ptr).Elem()), f.key)
}

func (f *field[T]) mismatch(expected string, v Value, cause error) error {
	return &MismatchError{Key: f.key, Expected: expected, Actual: v.Kind(), Cause: cause}
}

func (f *field[T]) save() func() {
	prev := *f.ptr
	return func() { *f.ptr = prev }
}

func (f *field[T]) check() error {
	if f.ptr == nil {
		return errors.New("nil field pointer")
	}
	return nil
}

// refField binds a key to a reflected struct field. Derived schemas use it.
type refField struct {
	key string
	rv  reflect.Value
}

func (f *refField) Key() string { return f.key }

func (f *refField) Value() Value {
	v, _ := f.valueErr()
	return v
}

func (f *refField) valueErr() (Value, error) {
	v, err := encodeValue(f.rv)
	return v, withPath(err, f.key)
}

func (f *refField) SetValue(v Value) error {
	return withPath(decodeValue(v, f.rv), f.key)
}

func (f *refField) save() func() {
	prev := reflect.New(f.rv.Type()).Elem()
	prev.Set(f.rv)
	return func() { f.rv.Set(prev) }
}

func (f *refField) check() error {
	if !f.rv.CanSet() {
		return errors.New("field " + strconv.Quote(f.key) + " is not settable")
	}
	return nil
}
