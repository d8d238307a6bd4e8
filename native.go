package mapstream

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
)

// ToNative converts v into plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any. Opaque values are returned as held.
// Third-party encoders consume this form.
func ToNative(v Value) any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = ToNative(e)
		}
		return out
	case KindMap:
		return v.m.Native()
	case KindOpaque:
		return v.o
	}
	return nil
}

// numberLike matches json.Number from both encoding/json and goccy/go-json.
type numberLike interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// FromNative converts a decoded Go tree into a Value. It accepts every
// shape the bundled codecs produce: sized ints and uints, float32/64,
// json numbers, []byte (as base64 strings), and string-keyed maps.
// Maps are inserted in sorted key order.
func FromNative(x any) (Value, error) {
	switch n := x.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return n, nil
	case *Map:
		return MapValue(n), nil
	case bool:
		return Bool(n), nil
	case int:
		return Int(int64(n)), nil
	case int8:
		return Int(int64(n)), nil
	case int16:
		return Int(int64(n)), nil
	case int32:
		return Int(int64(n)), nil
	case int64:
		return Int(n), nil
	case uint:
		return fromUint(uint64(n)), nil
	case uint8:
		return Int(int64(n)), nil
	case uint16:
		return Int(int64(n)), nil
	case uint32:
		return Int(int64(n)), nil
	case uint64:
		return fromUint(n), nil
	case float32:
		return Float(float64(n)), nil
	case float64:
		return Float(n), nil
	case string:
		return String(n), nil
	case []byte:
		return String(base64.StdEncoding.EncodeToString(n)), nil
	case numberLike:
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return fromUint(u), nil
		}
		f, err := n.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %q: %v", ErrUnsupportedNative, n.String(), err)
		}
		return Float(f), nil
	case []any:
		list := make([]Value, len(n))
		for i, e := range n {
			v, err := FromNative(e)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = v
		}
		return Value{kind: KindList, list: list}, nil
	case map[string]any:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			v, err := FromNative(n[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			m.Set(k, v)
		}
		return Value{kind: KindMap, m: m}, nil
	case map[any]any:
		cp := make(map[string]any, len(n))
		for k, e := range n {
			ks, ok := k.(string)
			if !ok {
				return Value{}, fmt.Errorf("%w: map key of type %T", ErrUnsupportedNative, k)
			}
			cp[ks] = e
		}
		return FromNative(cp)
	}
	return fromReflect(reflect.ValueOf(x))
}

// MapFromNative converts a decoded document into a *Map. The document
// must convert to a map value.
func MapFromNative(x any) (*Map, error) {
	v, err := FromNative(x)
	if err != nil {
		return nil, err
	}
	if v.kind != KindMap {
		return nil, fmt.Errorf("%w: document is %s, not map", ErrUnsupportedNative, v.kind)
	}
	return v.m, nil
}

// fromUint keeps integers above math.MaxInt64 exact as opaque uint64
// values; every integer type decodes them back without loss.
func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Opaque(u)
	}
	return Int(int64(u))
}

// fromReflect handles named and typed containers the switch above misses,
// such as []string or map[string]int. Structs a decoder hands back, like
// time.Time, are kept as opaque values.
func fromReflect(rv reflect.Value) (Value, error) {
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return FromNative(out)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return FromNative(out)
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fromUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Struct:
		return Opaque(rv.Interface()), nil
	}
	if !rv.IsValid() {
		return Value{}, nil
	}
	return Value{}, fmt.Errorf("%w: %s", ErrUnsupportedNative, rv.Type())
}
