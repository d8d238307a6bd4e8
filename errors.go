package mapstream

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrTypeMismatch indicates a stored Value cannot convert to the field's type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrOverflow indicates a numeric Value does not fit the target type.
	ErrOverflow = errors.New("value out of range")

	// ErrSchemaMisuse indicates a type declared its fields incorrectly.
	ErrSchemaMisuse = errors.New("schema misuse")

	// ErrUnsupportedNative indicates a decoded Go value has no Value form.
	ErrUnsupportedNative = errors.New("unsupported native value")

	// ErrEncode indicates a codec failed to render a map.
	ErrEncode = errors.New("encode failed")

	// ErrDecode indicates a codec failed to parse input data.
	ErrDecode = errors.New("decode failed")

	// ErrMask indicates masking of a field failed.
	ErrMask = errors.New("mask failed")

	// ErrHash indicates hashing of a field failed.
	ErrHash = errors.New("hash failed")

	// ErrEncrypt indicates encryption of a field failed.
	ErrEncrypt = errors.New("encrypt failed")

	// ErrDecrypt indicates decryption of a field failed.
	ErrDecrypt = errors.New("decrypt failed")

	// ErrInvalidKey indicates an encryption key has invalid size or format.
	ErrInvalidKey = errors.New("invalid key")
)

// MismatchError reports a Value that could not be assigned to a field.
// It unwraps to ErrTypeMismatch and, when set, to Cause.
type MismatchError struct {
	Key      string // Key path of the offending value (e.g. "author.name", "tags[2]")
	Expected string // Go type the field required
	Actual   Kind   // Kind of the stored value
	Cause    error  // Optional underlying reason (ErrOverflow, parse errors)
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	b.WriteString("type mismatch")
	if e.Key != "" {
		fmt.Fprintf(&b, " for key %q", e.Key)
	}
	fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Actual)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *MismatchError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrTypeMismatch, e.Cause}
	}
	return []error{ErrTypeMismatch}
}

// SchemaError represents a schema declaration error.
// It is raised when a schema is built, before any data is touched.
type SchemaError struct {
	Type   string // Type whose schema is malformed
	Key    string // Offending key, if any
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s in %s (key %q): %s", ErrSchemaMisuse, e.Type, e.Key, e.Reason)
	}
	return fmt.Sprintf("%s in %s: %s", ErrSchemaMisuse, e.Type, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMisuse
}

// TransformError represents an error during a field transformation.
// It wraps a sentinel error with context about which key and operation failed.
type TransformError struct {
	Err       error  // Underlying sentinel error (ErrEncrypt, ErrHash, etc.)
	Key       string // Key of the binding that failed
	Operation string // Operation that failed (mask, hash, encrypt, decrypt)
	Cause     error  // Original error from the underlying operation
}

func (e *TransformError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s key %s: %v", e.Operation, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s key %s", e.Operation, e.Key)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

// CodecError represents an encode/decode error raised by a Codec.
type CodecError struct {
	Err         error  // Underlying sentinel error (ErrEncode, ErrDecode)
	ContentType string // Content type of the failing codec
	Cause       error  // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %v", e.Err.Error(), e.ContentType, e.Cause)
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), e.ContentType)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// NewCodecError creates a CodecError. Codec implementations use it to
// report failures in a uniform shape.
func NewCodecError(sentinel error, contentType string, cause error) error {
	return &CodecError{
		Err:         sentinel,
		ContentType: contentType,
		Cause:       cause,
	}
}

// newMismatch creates a MismatchError without a key; callers add the path.
func newMismatch(expected string, actual Kind, cause error) *MismatchError {
	return &MismatchError{
		Expected: expected,
		Actual:   actual,
		Cause:    cause,
	}
}

// newSchemaError creates a SchemaError.
func newSchemaError(typeName, key, reason string) error {
	return &SchemaError{
		Type:   typeName,
		Key:    key,
		Reason: reason,
	}
}

// newTransformError creates a TransformError for field transformation failures.
func newTransformError(sentinel error, operation, key string, cause error) error {
	return &TransformError{
		Err:       sentinel,
		Key:       key,
		Operation: operation,
		Cause:     cause,
	}
}

// withPath prefixes the key path of a MismatchError with segment.
// Index segments ("[2]") attach without a separator. Other errors pass through.
func withPath(err error, segment string) error {
	var me *MismatchError
	if !errors.As(err, &me) {
		return err
	}
	cp := *me
	switch {
	case cp.Key == "":
		cp.Key = segment
	case strings.HasPrefix(cp.Key, "["):
		cp.Key = segment + cp.Key
	default:
		cp.Key = segment + "." + cp.Key
	}
	return &cp
}
