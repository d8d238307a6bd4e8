package mapstream

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

var (
	valueType           = reflect.TypeOf(Value{})
	mapPtrType          = reflect.TypeOf((*Map)(nil))
	streamableType      = reflect.TypeOf((*Streamable)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// As converts v to the Go type T.
//
// Conversion follows the variant tag strictly. The only implicit conversions
// are integer to float, integer to narrower integer types when the value
// fits, null to nilable types, and string to encoding.TextUnmarshaler
// implementations. Anything else fails with a *MismatchError.
func As[T any](v Value) (T, error) {
	var out T
	if err := decodeValue(v, reflect.ValueOf(&out).Elem()); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// ValueOf converts a Go value into a Value using the same rules as Field.
func ValueOf(x any) (Value, error) {
	return encodeValue(reflect.ValueOf(x))
}

// isStreamableStruct reports whether *t implements Streamable for a struct t.
func isStreamableStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && reflect.PointerTo(t).Implements(streamableType)
}

// addressable returns rv itself when addressable, or an addressable copy.
func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv
	}
	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)
	return cp
}

func nilable(k reflect.Kind) bool {
	switch k {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// encodeValue converts rv into a Value. Errors only arise from nested
// schemas or from TextMarshaler and transform failures.
func encodeValue(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Value{}, nil
	}
	t := rv.Type()

	switch t {
	case valueType:
		return rv.Interface().(Value), nil
	case mapPtrType:
		m := rv.Interface().(*Map)
		if m == nil {
			return Value{}, nil
		}
		return MapValue(m), nil
	}

	if conv, ok := lookupConverter(t); ok {
		return conv.encode(rv)
	}

	if isStreamableStruct(t) {
		m, err := writeNested(addressable(rv).Addr().Interface().(Streamable))
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindMap, m: m}, nil
	}

	if t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface {
		if tm, ok := textMarshaler(rv); ok {
			text, err := tm.MarshalText()
			if err != nil {
				return Value{}, err
			}
			return String(string(text)), nil
		}
	}

	switch t.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Value{}, nil
		}
		return encodeValue(rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			return Value{}, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return String(base64.StdEncoding.EncodeToString(rv.Bytes())), nil
		}
		return encodeList(rv)
	case reflect.Array:
		return encodeList(rv)
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return Opaque(rv.Interface()), nil
		}
		if rv.IsNil() {
			return Value{}, nil
		}
		return encodeMap(rv)
	case reflect.Struct:
		m, err := writeNested(derive(addressable(rv)))
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindMap, m: m}, nil
	}
	return Opaque(rv.Interface()), nil
}

func textMarshaler(rv reflect.Value) (encoding.TextMarshaler, bool) {
	if rv.Type().Implements(textMarshalerType) {
		return rv.Interface().(encoding.TextMarshaler), true
	}
	if reflect.PointerTo(rv.Type()).Implements(textMarshalerType) {
		return addressable(rv).Addr().Interface().(encoding.TextMarshaler), true
	}
	return nil, false
}

func encodeList(rv reflect.Value) (Value, error) {
	list := make([]Value, rv.Len())
	for i := range list {
		v, err := encodeValue(rv.Index(i))
		if err != nil {
			return Value{}, withPath(err, "["+strconv.Itoa(i)+"]")
		}
		list[i] = v
	}
	return Value{kind: KindList, list: list}, nil
}

func encodeMap(rv reflect.Value) (Value, error) {
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	m := NewMap()
	for _, k := range keys {
		v, err := encodeValue(rv.MapIndex(k))
		if err != nil {
			return Value{}, withPath(err, k.String())
		}
		m.Set(k.String(), v)
	}
	return Value{kind: KindMap, m: m}, nil
}

// decodeValue assigns v to the addressable rv.
func decodeValue(v Value, rv reflect.Value) error {
	t := rv.Type()

	switch t {
	case valueType:
		rv.Set(reflect.ValueOf(v))
		return nil
	case mapPtrType:
		switch v.kind {
		case KindNull:
			rv.Set(reflect.Zero(t))
		case KindMap:
			rv.Set(reflect.ValueOf(v.m.Clone()))
		default:
			return newMismatch(t.String(), v.kind, nil)
		}
		return nil
	}

	if conv, ok := lookupConverter(t); ok {
		return conv.decode(v, rv)
	}

	if v.kind == KindOpaque {
		if u, ok := v.o.(uint64); ok {
			if handled, err := decodeWideUint(u, rv); handled {
				return err
			}
		}
		if reflect.TypeOf(v.o).AssignableTo(t) {
			rv.Set(reflect.ValueOf(v.o))
			return nil
		}
		return newMismatch(t.String(), v.kind, fmt.Errorf("holds %T", v.o))
	}

	if v.kind == KindNull && nilable(t.Kind()) {
		rv.Set(reflect.Zero(t))
		return nil
	}

	if isStreamableStruct(t) {
		if v.kind != KindMap {
			return newMismatch(t.String(), v.kind, nil)
		}
		return readNested(v.m.Clone(), rv.Addr().Interface().(Streamable))
	}

	if t.Kind() != reflect.Ptr && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		s, ok := v.AsString()
		if !ok {
			return newMismatch(t.String(), v.kind, nil)
		}
		if err := rv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return newMismatch(t.String(), v.kind, err)
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Bool:
		b, ok := v.AsBool()
		if !ok {
			return newMismatch(t.String(), v.kind, nil)
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := v.AsInt()
		if !ok {
			return newMismatch(t.String(), v.kind, nil)
		}
		if rv.OverflowInt(i) {
			return newMismatch(t.String(), v.kind, fmt.Errorf("%w: %d", ErrOverflow, i))
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, ok := v.AsInt()
		if !ok {
			return newMismatch(t.String(), v.kind, nil)
		}
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return newMismatch(t.String(), v.kind, fmt.Errorf("%w: %d", ErrOverflow, i))
		}
		rv.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		f, ok := v.AsFloat()
		if !ok {
			return newMismatch(t.String(), v.kind, nil)
		}
		if rv.OverflowFloat(f) {
			return newMismatch(t.String(), v.kind, fmt.Errorf("%w: %g", ErrOverflow, f))
		}
		rv.SetFloat(f)
		return nil
	case reflect.String:
		s, ok := v.AsString()
		if !ok {
			return newMismatch(t.String(), v.kind, nil)
		}
		rv.SetString(s)
		return nil
	case reflect.Ptr:
		elem := reflect.New(t.Elem())
		if err := decodeValue(v, elem.Elem()); err != nil {
			return err
		}
		rv.Set(elem)
		return nil
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return newMismatch(t.String(), v.kind, nil)
		}
		rv.Set(reflect.ValueOf(ToNative(v)))
		return nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return decodeBytes(v, rv)
		}
		if v.kind != KindList {
			return newMismatch(t.String(), v.kind, nil)
		}
		out := reflect.MakeSlice(t, len(v.list), len(v.list))
		if err := decodeList(v.list, out); err != nil {
			return err
		}
		rv.Set(out)
		return nil
	case reflect.Array:
		if v.kind != KindList {
			return newMismatch(t.String(), v.kind, nil)
		}
		if len(v.list) != t.Len() {
			return newMismatch(t.String(), v.kind, fmt.Errorf("length %d, want %d", len(v.list), t.Len()))
		}
		out := reflect.New(t).Elem()
		if err := decodeList(v.list, out); err != nil {
			return err
		}
		rv.Set(out)
		return nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String || v.kind != KindMap {
			return newMismatch(t.String(), v.kind, nil)
		}
		out := reflect.MakeMapWithSize(t, v.m.Len())
		var err error
		v.m.Range(func(k string, e Value) bool {
			elem := reflect.New(t.Elem()).Elem()
			if err = decodeValue(e, elem); err != nil {
				err = withPath(err, k)
				return false
			}
			out.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), elem)
			return true
		})
		if err != nil {
			return err
		}
		rv.Set(out)
		return nil
	case reflect.Struct:
		if v.kind != KindMap {
			return newMismatch(t.String(), v.kind, nil)
		}
		return readNested(v.m.Clone(), derive(rv))
	}
	return newMismatch(t.String(), v.kind, nil)
}

// decodeWideUint assigns an opaque uint64, the form integers above
// math.MaxInt64 take, to integer kinds. It reports false for other kinds.
func decodeWideUint(u uint64, rv reflect.Value) (bool, error) {
	t := rv.Type()
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.OverflowUint(u) {
			return true, newMismatch(t.String(), KindOpaque, fmt.Errorf("%w: %d", ErrOverflow, u))
		}
		rv.SetUint(u)
		return true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true, newMismatch(t.String(), KindOpaque, fmt.Errorf("%w: %d", ErrOverflow, u))
	}
	return false, nil
}

func decodeList(list []Value, out reflect.Value) error {
	for i, e := range list {
		if err := decodeValue(e, out.Index(i)); err != nil {
			return withPath(err, "["+strconv.Itoa(i)+"]")
		}
	}
	return nil
}

func decodeBytes(v Value, rv reflect.Value) error {
	s, ok := v.AsString()
	if !ok {
		return newMismatch(rv.Type().String(), v.kind, nil)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return newMismatch(rv.Type().String(), v.kind, err)
	}
	rv.SetBytes(b)
	return nil
}
