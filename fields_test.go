package mapstream

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type parentFixture struct {
	Name string
}

func (p *parentFixture) StreamFields(f *Fields) {
	f.Add(Field("name", &p.Name))
}

type childFixture struct {
	parentFixture
	Age int
}

func (c *childFixture) StreamFields(f *Fields) {
	f.Add(Field("age", &c.Age))
	f.Inherit(&c.parentFixture)
}

type grandchildFixture struct {
	childFixture
	Tag string
}

func (g *grandchildFixture) StreamFields(f *Fields) {
	f.Add(Field("tag", &g.Tag))
	f.Inherit(&g.childFixture)
}

// misuse declares its fields through fn so each test can break the rules
// a different way.
type misuse struct {
	A, B string
	P    parentFixture
	Q    parentFixture
	fn   func(m *misuse, f *Fields)
}

func (m *misuse) StreamFields(f *Fields) { m.fn(m, f) }

func TestCollect_Levels(t *testing.T) {
	f, err := collect(&grandchildFixture{})
	if err != nil {
		t.Fatalf("collect() error: %v", err)
	}
	defer release(f)

	want := []Level{
		{Type: "grandchildFixture", Keys: []string{"tag"}},
		{Type: "childFixture", Keys: []string{"age"}},
		{Type: "parentFixture", Keys: []string{"name"}},
	}
	if !reflect.DeepEqual(f.levels, want) {
		t.Errorf("levels = %+v, want %+v", f.levels, want)
	}
	if f.Len() != 3 {
		t.Errorf("Len() = %d, want 3", f.Len())
	}
}

func TestCollect_Misuse(t *testing.T) {
	tests := []struct {
		name   string
		fn     func(m *misuse, f *Fields)
		reason string
	}{
		{"nil binding", func(_ *misuse, f *Fields) { f.Add(nil) }, "nil binding"},
		{"empty key", func(m *misuse, f *Fields) { f.Add(Field("", &m.A)) }, "empty key"},
		{"nil pointer", func(_ *misuse, f *Fields) { f.Add(Field[string]("a", nil)) }, "nil field pointer"},
		{"duplicate", func(m *misuse, f *Fields) {
			f.Add(Field("a", &m.A), Field("a", &m.B))
		}, "duplicate key"},
		{"add after inherit", func(m *misuse, f *Fields) {
			f.Inherit(&m.P)
			f.Add(Field("a", &m.A))
		}, "before Inherit"},
		{"two parents", func(m *misuse, f *Fields) {
			f.Inherit(&m.P)
			f.Inherit(&m.Q)
		}, "multiple parents"},
		{"nil parent", func(_ *misuse, f *Fields) {
			var p *parentFixture
			f.Inherit(p)
		}, "nil parent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collect(&misuse{fn: tt.fn})
			if !errors.Is(err, ErrSchemaMisuse) {
				t.Fatalf("collect() error = %v, want ErrSchemaMisuse", err)
			}
			if !strings.Contains(err.Error(), tt.reason) {
				t.Errorf("error %q does not mention %q", err, tt.reason)
			}
		})
	}
}

func TestCollect_SameKeyAcrossLevelsAllowed(t *testing.T) {
	m := &misuse{fn: func(m *misuse, f *Fields) {
		f.Add(Field("name", &m.A))
		f.Inherit(&m.P)
	}}
	f, err := collect(m)
	if err != nil {
		t.Fatalf("collect() error: %v", err)
	}
	release(f)
}

func TestCollect_FirstErrorWins(t *testing.T) {
	m := &misuse{fn: func(m *misuse, f *Fields) {
		f.Add(Field("", &m.A))
		f.Add(nil)
	}}
	_, err := collect(m)
	var se *SchemaError
	if !errors.As(err, &se) || se.Reason != "empty key" {
		t.Errorf("error = %v, want the empty key error", err)
	}
}

func TestTypeNameOf(t *testing.T) {
	if got := typeNameOf(&childFixture{}); got != "childFixture" {
		t.Errorf("typeNameOf() = %q", got)
	}
	if got := typeNameOf(nil); got != "<nil>" {
		t.Errorf("typeNameOf(nil) = %q", got)
	}
}

func TestFields_ZeroValue(t *testing.T) {
	var f Fields
	var s string
	f.Add(Field("s", &s))
	f.Inherit(&parentFixture{})

	if !errors.Is(f.Err(), ErrSchemaMisuse) {
		t.Errorf("Err() = %v, want ErrSchemaMisuse", f.Err())
	}
	if f.Len() != 0 {
		t.Errorf("Len() = %d, want 0", f.Len())
	}
}

func TestFields_ErrDuringDeclaration(t *testing.T) {
	var seen error
	m := &misuse{fn: func(m *misuse, f *Fields) {
		if f.Err() != nil {
			t.Errorf("Err() = %v before any misuse", f.Err())
		}
		f.Add(Field("a", &m.A), Field("a", &m.B))
		seen = f.Err()
	}}
	_, err := collect(m)
	if seen == nil || seen != err {
		t.Errorf("Err() = %v inside StreamFields, collect() = %v", seen, err)
	}
}
