package mapstream

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the key tag with sentinel
	sentinel.Tag("map")
}

// derivePlan lists the bound fields of one struct type.
type derivePlan struct {
	typeName string
	fields   []derivedField
	parent   []int // index of the embedded parent struct, nil if none
	err      error // declaration error found while scanning
}

// derivedField describes how to bind a single struct field.
type derivedField struct {
	key   string
	index []int
}

var (
	plans   = make(map[reflect.Type]*derivePlan)
	plansMu sync.RWMutex
)

// derived adapts a plain struct to Streamable using its field tags.
type derived struct {
	rv   reflect.Value
	plan *derivePlan
}

// Derive returns a Streamable view of the struct ptr points to, so types
// without a hand-written StreamFields can still be streamed.
//
// Exported fields are bound under their `map` tag, or under the field name
// with its first letter lowered. A `map:"-"` tag skips the field. An
// untagged embedded struct is the parent: its fields form the next level,
// after the type's own. At most one embedded parent is allowed.
//
// If ptr already implements Streamable it is returned unchanged.
func Derive(ptr any) Streamable {
	if s, ok := ptr.(Streamable); ok {
		return s
	}
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		name := fmt.Sprintf("%T", ptr)
		return &derived{plan: &derivePlan{
			typeName: name,
			err:      newSchemaError(name, "", "Derive requires a non-nil struct pointer"),
		}}
	}
	return derive(rv.Elem())
}

// Derived is the typed form of Derive. The plan for T is scanned with
// sentinel on first use.
func Derived[T any](ptr *T) Streamable {
	if s, ok := any(ptr).(Streamable); ok {
		return s
	}
	typ := reflect.TypeFor[T]()
	if ptr == nil || typ.Kind() != reflect.Struct {
		return Derive(ptr)
	}
	plan := cachedPlan(typ, func() sentinel.Metadata { return sentinel.Scan[T]() })
	return &derived{rv: reflect.ValueOf(ptr).Elem(), plan: plan}
}

// derive builds the adapter for an addressable struct value.
func derive(rv reflect.Value) *derived {
	typ := rv.Type()
	plan := cachedPlan(typ, func() sentinel.Metadata {
		if meta, ok := sentinel.Lookup(typ.String()); ok {
			return meta
		}
		return scanStruct(typ)
	})
	return &derived{rv: rv, plan: plan}
}

func (d *derived) StreamFields(f *Fields) {
	if d.plan.err != nil {
		f.fail(d.plan.err)
		return
	}
	for _, fd := range d.plan.fields {
		f.Add(&refField{key: fd.key, rv: d.rv.FieldByIndex(fd.index)})
	}
	if d.plan.parent == nil {
		return
	}
	parent := d.rv.FieldByIndex(d.plan.parent)
	if s, ok := parent.Addr().Interface().(Streamable); ok {
		f.Inherit(s)
		return
	}
	f.Inherit(derive(parent))
}

func (d *derived) streamType() reflect.Type {
	if !d.rv.IsValid() {
		return reflect.TypeOf(d)
	}
	return d.rv.Type()
}

// cachedPlan returns the plan for typ, scanning it on first use.
func cachedPlan(typ reflect.Type, scan func() sentinel.Metadata) *derivePlan {
	plansMu.RLock()
	if cached, ok := plans[typ]; ok {
		plansMu.RUnlock()
		return cached
	}
	plansMu.RUnlock()

	plan := buildPlan(typ, scan())

	plansMu.Lock()
	defer plansMu.Unlock()
	if cached, ok := plans[typ]; ok {
		return cached
	}
	plans[typ] = plan
	return plan
}

// buildPlan turns sentinel metadata into a binding plan.
func buildPlan(typ reflect.Type, meta sentinel.Metadata) *derivePlan {
	plan := &derivePlan{typeName: typ.Name()}
	if plan.typeName == "" {
		plan.typeName = typ.String()
	}
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !isParent(sf) {
			continue
		}
		if plan.parent != nil {
			plan.err = newSchemaError(plan.typeName, "", "more than one embedded parent")
			return plan
		}
		plan.parent = sf.Index
	}

	seen := make(map[string]struct{})
	for _, field := range meta.Fields {
		sf, ok := typ.FieldByName(field.Name)
		if !ok || len(sf.Index) != 1 || !sf.IsExported() || isParent(sf) {
			continue
		}
		tag, ok := field.Tags["map"]
		if !ok {
			tag = sf.Tag.Get("map")
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = lowerFirst(field.Name)
		}
		if _, dup := seen[name]; dup {
			plan.err = newSchemaError(plan.typeName, name, "duplicate key in level")
			return plan
		}
		seen[name] = struct{}{}
		plan.fields = append(plan.fields, derivedField{key: name, index: sf.Index})
	}
	return plan
}

// scanStruct builds sentinel metadata by reflection for types sentinel has
// not scanned, such as nested structs reached at runtime.
func scanStruct(rt reflect.Type) sentinel.Metadata {
	meta := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}

		fm := sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        map[string]string{},
		}
		if val, ok := sf.Tag.Lookup("map"); ok {
			fm.Tags["map"] = val
		}

		switch sf.Type.Kind() {
		case reflect.Struct:
			fm.Kind = sentinel.KindStruct
		case reflect.Ptr:
			fm.Kind = sentinel.KindPointer
		case reflect.Slice, reflect.Array:
			fm.Kind = sentinel.KindSlice
		case reflect.Map:
			fm.Kind = sentinel.KindMap
		case reflect.Interface:
			fm.Kind = sentinel.KindInterface
		default:
			fm.Kind = sentinel.KindScalar
		}

		meta.Fields = append(meta.Fields, fm)
	}

	return meta
}

// isParent reports whether sf is an untagged, exported embedded struct.
func isParent(sf reflect.StructField) bool {
	_, tagged := sf.Tag.Lookup("map")
	return sf.Anonymous && !tagged && sf.IsExported() && sf.Type.Kind() == reflect.Struct
}

func lowerFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToLower(r)) + name[size:]
}
