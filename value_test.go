package mapstream

import (
	"testing"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	if !v.IsNull() || v.Kind() != KindNull {
		t.Errorf("zero Value kind = %s, want null", v.Kind())
	}
	if !Opaque(nil).IsNull() {
		t.Error("Opaque(nil) should be null")
	}
}

func TestValue_Accessors(t *testing.T) {
	if b, ok := Bool(true).AsBool(); !ok || !b {
		t.Error("AsBool() failed on Bool(true)")
	}
	if i, ok := Int(7).AsInt(); !ok || i != 7 {
		t.Error("AsInt() failed on Int(7)")
	}
	if s, ok := String("x").AsString(); !ok || s != "x" {
		t.Error("AsString() failed on String(x)")
	}
	if _, ok := String("7").AsInt(); ok {
		t.Error("AsInt() should not parse strings")
	}
	if _, ok := Float(1.5).AsInt(); ok {
		t.Error("AsInt() should not narrow floats")
	}
	if f, ok := Int(3).AsFloat(); !ok || f != 3 {
		t.Errorf("AsFloat() on Int(3) = %v, %v; want 3, true", f, ok)
	}
}

func TestValue_ListIsCopied(t *testing.T) {
	src := []Value{Int(1), Int(2)}
	v := List(src...)
	src[0] = Int(99)

	got, _ := v.AsList()
	if !got[0].Equal(Int(1)) {
		t.Errorf("List() kept a reference to its input: %s", got[0])
	}
	got[1] = Int(42)
	again, _ := v.AsList()
	if !again[1].Equal(Int(2)) {
		t.Error("AsList() returned a shared slice")
	}
	if v.Len() != 2 {
		t.Errorf("Len() = %d, want 2", v.Len())
	}
}

func TestValue_MapIsCopied(t *testing.T) {
	m := NewMap()
	m.Set("a", Int(1))
	v := MapValue(m)
	m.Set("b", Int(2))

	if v.Len() != 1 {
		t.Errorf("MapValue() kept a reference to its input, Len() = %d", v.Len())
	}
	inner, _ := v.AsMap()
	inner.Set("c", Int(3))
	if v.Len() != 1 {
		t.Error("AsMap() returned a shared map")
	}
	if MapValue(nil).Len() != 0 || MapValue(nil).Kind() != KindMap {
		t.Error("MapValue(nil) should be an empty map")
	}
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"null", Null(), Null(), true},
		{"int", Int(1), Int(1), true},
		{"int vs float", Int(1), Float(1), false},
		{"string", String("a"), String("b"), false},
		{"list", List(Int(1), String("x")), List(Int(1), String("x")), true},
		{"list length", List(Int(1)), List(Int(1), Int(2)), false},
		{"map", MapValue(MapOf(map[string]Value{"k": Bool(true)})), MapValue(MapOf(map[string]Value{"k": Bool(true)})), true},
		{"opaque", Opaque([]int{1}), Opaque([]int{1}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	m := NewMap()
	m.Set("title", String("Dune"))
	m.Set("tags", List(Int(1), Null()))
	m.Set("x", Opaque(struct{}{}))

	want := `{"title": "Dune", "tags": [1, null], "x": opaque(struct {})}`
	if got := MapValue(m).String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
