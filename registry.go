package mapstream

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	schemas   = make(map[reflect.Type]*Schema)
	schemasMu sync.RWMutex

	converters   = make(map[reflect.Type]converter)
	convertersMu sync.RWMutex
)

// converter is a registered conversion for one Go type.
type converter struct {
	encode func(rv reflect.Value) (Value, error)
	decode func(v Value, rv reflect.Value) error
}

// directTypes take the Field fast path, which never consults converters.
var directTypes = map[reflect.Type]bool{
	reflect.TypeOf(""):         true,
	reflect.TypeOf(false):      true,
	reflect.TypeOf(int(0)):     true,
	reflect.TypeOf(int64(0)):   true,
	reflect.TypeOf(float64(0)): true,
}

// SchemaFor returns the cached schema of obj's type, building it on first use.
// Declaration errors surface here as *SchemaError.
func SchemaFor(obj Streamable) (*Schema, error) {
	typ := typeOf(obj)

	// Fast path: read-lock cache check
	schemasMu.RLock()
	if cached, ok := schemas[typ]; ok {
		schemasMu.RUnlock()
		return cached, nil
	}
	schemasMu.RUnlock()

	// Slow path: build and cache with write-lock
	schemasMu.Lock()
	defer schemasMu.Unlock()

	// Double-check pattern
	if cached, ok := schemas[typ]; ok {
		return cached, nil
	}

	f, err := collect(obj)
	if err != nil {
		return nil, err
	}
	schema := newSchema(typeNameOf(obj), f.levels)
	release(f)

	schemas[typ] = schema
	emitSchemaBuilt(context.Background(), schema.TypeName(), len(schema.keys), schema.Depth())
	return schema, nil
}

// SchemaOf returns the cached schema of T. A *T implementing Streamable
// supplies its own fields; any other struct type gets a derived schema.
func SchemaOf[T any]() (*Schema, error) {
	ptr := new(T)
	if s, ok := any(ptr).(Streamable); ok {
		return SchemaFor(s)
	}
	return SchemaFor(Derive(ptr))
}

// Register installs a conversion for T, used wherever a T field is bound.
// The types Field handles directly (string, bool, int, int64, float64)
// cannot be overridden.
//
// decode may return a plain error; it is reported as a *MismatchError.
func Register[T any](encode func(T) Value, decode func(Value) (T, error)) error {
	typ := reflect.TypeFor[T]()
	if directTypes[typ] {
		return newSchemaError(typ.String(), "", "built-in field types cannot take a converter")
	}
	if encode == nil || decode == nil {
		return newSchemaError(typ.String(), "", "converter needs both directions")
	}

	conv := converter{
		encode: func(rv reflect.Value) (Value, error) {
			return encode(rv.Interface().(T)), nil
		},
		decode: func(v Value, rv reflect.Value) error {
			out, err := decode(v)
			if err != nil {
				var me *MismatchError
				if errors.As(err, &me) {
					return err
				}
				return newMismatch(typ.String(), v.Kind(), err)
			}
			rv.Set(reflect.ValueOf(&out).Elem())
			return nil
		},
	}

	convertersMu.Lock()
	defer convertersMu.Unlock()
	converters[typ] = conv
	return nil
}

// RegisterOpaque marks T as living outside the closed variant set: T fields
// are stored as KindOpaque values and only read back from opaque values
// holding a T.
func RegisterOpaque[T any]() error {
	typ := reflect.TypeFor[T]()
	return Register(
		func(x T) Value { return Opaque(x) },
		func(v Value) (T, error) {
			var zero T
			if v.Kind() != KindOpaque {
				return zero, newMismatch(typ.String(), v.Kind(), nil)
			}
			out, ok := v.o.(T)
			if !ok {
				return zero, newMismatch(typ.String(), v.Kind(), fmt.Errorf("holds %T", v.o))
			}
			return out, nil
		},
	)
}

func lookupConverter(typ reflect.Type) (converter, bool) {
	convertersMu.RLock()
	defer convertersMu.RUnlock()
	conv, ok := converters[typ]
	return conv, ok
}

// Reset clears the schema and plan caches and every registered converter.
// This is primarily useful for test isolation.
func Reset() {
	schemasMu.Lock()
	schemas = make(map[reflect.Type]*Schema)
	schemasMu.Unlock()

	plansMu.Lock()
	plans = make(map[reflect.Type]*derivePlan)
	plansMu.Unlock()

	convertersMu.Lock()
	converters = make(map[reflect.Type]converter)
	convertersMu.Unlock()
}
