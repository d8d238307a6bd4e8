package mapstream

import (
	"errors"
	"testing"
)

func TestMismatchError_Is(t *testing.T) {
	err := &MismatchError{Key: "pages", Expected: "int", Actual: KindString}

	if !errors.Is(err, ErrTypeMismatch) {
		t.Error("MismatchError should unwrap to ErrTypeMismatch")
	}
	if errors.Is(err, ErrOverflow) {
		t.Error("MismatchError without cause should not match ErrOverflow")
	}

	withCause := &MismatchError{Key: "n", Expected: "int8", Actual: KindInt, Cause: ErrOverflow}
	if !errors.Is(withCause, ErrOverflow) || !errors.Is(withCause, ErrTypeMismatch) {
		t.Error("MismatchError should match both its sentinel and its cause")
	}
}

func TestMismatchError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "with key",
			err:  &MismatchError{Key: "pages", Expected: "int", Actual: KindString},
			want: `type mismatch for key "pages": expected int, got string`,
		},
		{
			name: "without key",
			err:  &MismatchError{Expected: "bool", Actual: KindNull},
			want: `type mismatch: expected bool, got null`,
		},
		{
			name: "with cause",
			err:  &MismatchError{Key: "n", Expected: "int8", Actual: KindInt, Cause: errors.New("value out of range: 300")},
			want: `type mismatch for key "n": expected int8, got int: value out of range: 300`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWithPath(t *testing.T) {
	inner := newMismatch("int", KindString, nil)

	err := withPath(withPath(withPath(inner, "pages"), "[2]"), "books")
	var me *MismatchError
	if !errors.As(err, &me) {
		t.Fatalf("withPath() lost the MismatchError: %v", err)
	}
	if me.Key != "books[2].pages" {
		t.Errorf("Key = %q, want %q", me.Key, "books[2].pages")
	}
	if inner.Key != "" {
		t.Error("withPath() mutated the original error")
	}

	plain := errors.New("plain")
	if withPath(plain, "k") != plain {
		t.Error("withPath() should pass other errors through")
	}
	if withPath(nil, "k") != nil {
		t.Error("withPath(nil) should be nil")
	}
}

func TestSchemaError(t *testing.T) {
	err := newSchemaError("Book", "title", "duplicate key in level")
	if !errors.Is(err, ErrSchemaMisuse) {
		t.Error("SchemaError should unwrap to ErrSchemaMisuse")
	}
	want := `schema misuse in Book (key "title"): duplicate key in level`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	noKey := newSchemaError("Book", "", "multiple parents")
	if got := noKey.Error(); got != "schema misuse in Book: multiple parents" {
		t.Errorf("Error() = %q", got)
	}
}

func TestTransformError(t *testing.T) {
	cause := errors.New("authentication failed")
	err := newTransformError(ErrDecrypt, "decrypt", "email", cause)

	if !errors.Is(err, ErrDecrypt) || errors.Is(err, ErrEncrypt) {
		t.Error("TransformError should unwrap to its sentinel only")
	}
	if got, want := err.Error(), "decrypt key email: authentication failed"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	noCause := &TransformError{Err: ErrHash, Key: "password", Operation: "hash"}
	if got, want := noCause.Error(), "hash key password"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCodecError(t *testing.T) {
	err := NewCodecError(ErrDecode, "application/json", errors.New("unexpected EOF"))

	if !errors.Is(err, ErrDecode) || errors.Is(err, ErrEncode) {
		t.Error("CodecError should unwrap to its sentinel only")
	}
	if got, want := err.Error(), "decode failed (application/json): unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var ce *CodecError
	if !errors.As(err, &ce) || ce.ContentType != "application/json" {
		t.Errorf("errors.As(*CodecError) = %+v", ce)
	}
}
