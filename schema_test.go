package mapstream

import (
	"reflect"
	"testing"
)

func TestSchema_Shape(t *testing.T) {
	Reset()
	s, err := SchemaFor(&grandchildFixture{})
	if err != nil {
		t.Fatalf("SchemaFor() error: %v", err)
	}

	if s.TypeName() != "grandchildFixture" {
		t.Errorf("TypeName() = %q", s.TypeName())
	}
	if s.Depth() != 3 {
		t.Errorf("Depth() = %d, want 3", s.Depth())
	}
	if got, want := s.Keys(), []string{"tag", "age", "name"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if !s.Has("name") || s.Has("missing") {
		t.Error("Has() disagrees with Keys()")
	}
}

func TestSchema_AccessorsCopy(t *testing.T) {
	Reset()
	s, err := SchemaFor(&childFixture{})
	if err != nil {
		t.Fatal(err)
	}
	levels := s.Levels()
	levels[0].Keys[0] = "mutated"
	keys := s.Keys()
	keys[0] = "mutated"

	if s.Levels()[0].Keys[0] != "age" || s.Keys()[0] != "age" {
		t.Error("schema accessors leak internal slices")
	}
}

func TestSchema_Leftover(t *testing.T) {
	Reset()
	s, err := SchemaFor(&childFixture{})
	if err != nil {
		t.Fatal(err)
	}
	m := NewMap()
	m.Set("extra", Int(1))
	m.Set("age", Int(2))
	m.Set("more", Null())

	if got, want := s.Leftover(m), []string{"extra", "more"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Leftover() = %v, want %v", got, want)
	}
}

func TestTraversalOrder(t *testing.T) {
	if TraversalOrder != OwnFieldsFirst {
		t.Errorf("TraversalOrder = %d, want OwnFieldsFirst", TraversalOrder)
	}
}
