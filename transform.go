package mapstream

import (
	"encoding/base64"
	"errors"
)

// Transforming bindings wrap another Binding and change the value on one
// side of the pass. They only accept string values; null passes through
// untouched and any other kind is a *MismatchError.

// decorator holds the wrapped binding.
type decorator struct {
	inner Binding
}

func (d decorator) Key() string {
	if d.inner == nil {
		return ""
	}
	return d.inner.Key()
}

func (d decorator) unwrap() Binding { return d.inner }

func (d decorator) check() error {
	if d.inner == nil {
		return errors.New("nil inner binding")
	}
	if c, ok := d.inner.(checker); ok {
		return c.check()
	}
	return nil
}

// innerString reads the wrapped field as a string. ok is false for null.
func (d decorator) innerString() (s string, ok bool, err error) {
	v, err := readBinding(d.inner)
	if err != nil {
		return "", false, err
	}
	return d.asString(v)
}

func (d decorator) asString(v Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	s, ok := v.AsString()
	if !ok {
		return "", false, &MismatchError{Key: d.Key(), Expected: "string", Actual: v.Kind()}
	}
	return s, true, nil
}

// masked emits a masked copy of the field on write.
type masked struct {
	decorator
	mask MaskType
}

// Masked wraps b so write passes store the field masked by t.
// Read passes assign incoming values unchanged.
func Masked(b Binding, t MaskType) Binding {
	return &masked{decorator: decorator{inner: b}, mask: t}
}

func (m *masked) Value() Value {
	v, _ := m.valueErr()
	return v
}

func (m *masked) valueErr() (Value, error) {
	s, ok, err := m.innerString()
	if err != nil || !ok {
		return Null(), err
	}
	out, err := Mask(m.mask, s)
	if err != nil {
		return Null(), newTransformError(ErrMask, "mask", m.Key(), err)
	}
	return String(out), nil
}

func (m *masked) SetValue(v Value) error { return m.inner.SetValue(v) }

func (m *masked) check() error {
	if _, ok := maskers[m.mask]; !ok {
		return errors.New("unknown mask type " + string(m.mask))
	}
	return m.decorator.check()
}

// redacted replaces the field with a fixed string on write.
type redacted struct {
	decorator
	replacement string
}

// Redacted wraps b so write passes store replacement instead of the field.
// Read passes assign incoming values unchanged.
func Redacted(b Binding, replacement string) Binding {
	return &redacted{decorator: decorator{inner: b}, replacement: replacement}
}

func (r *redacted) Value() Value { return String(r.replacement) }

func (r *redacted) SetValue(v Value) error { return r.inner.SetValue(v) }

// hashed hashes incoming strings on read.
type hashed struct {
	decorator
	algo HashAlgo
}

// Hashed wraps b so read passes assign the hash of the incoming string.
// Write passes store the field, typically an already hashed value, as is.
func Hashed(b Binding, algo HashAlgo) Binding {
	return &hashed{decorator: decorator{inner: b}, algo: algo}
}

func (h *hashed) Value() Value { return h.inner.Value() }

func (h *hashed) valueErr() (Value, error) { return readBinding(h.inner) }

func (h *hashed) SetValue(v Value) error {
	s, ok, err := h.asString(v)
	if err != nil {
		return err
	}
	if !ok {
		return h.inner.SetValue(v)
	}
	hasher, err := HasherFor(h.algo)
	if err != nil {
		return newTransformError(ErrHash, "hash", h.Key(), err)
	}
	sum, err := hasher.Hash([]byte(s))
	if err != nil {
		return newTransformError(ErrHash, "hash", h.Key(), err)
	}
	return h.inner.SetValue(String(sum))
}

func (h *hashed) check() error {
	if _, err := HasherFor(h.algo); err != nil {
		return errors.New("unknown hash algorithm " + string(h.algo))
	}
	return h.decorator.check()
}

// encrypted stores ciphertext on write and decrypts on read.
type encrypted struct {
	decorator
	enc Encryptor
}

// Encrypted wraps b so write passes store the field encrypted with enc and
// base64 encoded, and read passes decode and decrypt before assigning.
func Encrypted(b Binding, enc Encryptor) Binding {
	return &encrypted{decorator: decorator{inner: b}, enc: enc}
}

func (e *encrypted) Value() Value {
	v, _ := e.valueErr()
	return v
}

func (e *encrypted) valueErr() (Value, error) {
	s, ok, err := e.innerString()
	if err != nil || !ok {
		return Null(), err
	}
	ct, err := e.enc.Encrypt([]byte(s))
	if err != nil {
		return Null(), newTransformError(ErrEncrypt, "encrypt", e.Key(), err)
	}
	return String(base64.StdEncoding.EncodeToString(ct)), nil
}

func (e *encrypted) SetValue(v Value) error {
	s, ok, err := e.asString(v)
	if err != nil {
		return err
	}
	if !ok {
		return e.inner.SetValue(v)
	}
	ct, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return newTransformError(ErrDecrypt, "decrypt", e.Key(), err)
	}
	pt, err := e.enc.Decrypt(ct)
	if err != nil {
		return newTransformError(ErrDecrypt, "decrypt", e.Key(), err)
	}
	return e.inner.SetValue(String(string(pt)))
}

func (e *encrypted) check() error {
	if e.enc == nil {
		return errors.New("nil encryptor")
	}
	return e.decorator.check()
}
