// Package testing provides fixtures and helpers for mapstream tests.
package testing

import (
	"testing"

	"github.com/zoobzio/mapstream"
)

// TestKey returns a valid 32-byte AES key for testing.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte(testKey)
}

// TestEncryptor returns an AES encryptor configured for testing.
func TestEncryptor(tb testing.TB) mapstream.Encryptor {
	tb.Helper()
	enc, err := mapstream.AES(TestKey(tb))
	if err != nil {
		tb.Fatalf("AES: %v", err)
	}
	return enc
}

const testKey = "32-byte-key-for-aes-256-encrypt!"

// Book declares three scalar fields.
type Book struct {
	Title  string
	Pages  int
	Rating float64
}

func (b *Book) StreamFields(f *mapstream.Fields) {
	f.Add(
		mapstream.Field("title", &b.Title),
		mapstream.Field("pages", &b.Pages),
		mapstream.Field("rating", &b.Rating),
	)
}

// Novel extends Book.
type Novel struct {
	Book
	Genre  string
	Series []string
}

func (n *Novel) StreamFields(f *mapstream.Fields) {
	f.Add(
		mapstream.Field("genre", &n.Genre),
		mapstream.Field("series", &n.Series),
	)
	f.Inherit(&n.Book)
}

// Base declares "id".
type Base struct {
	ID string
}

func (b *Base) StreamFields(f *mapstream.Fields) {
	f.Add(mapstream.Field("id", &b.ID))
}

// Shadow declares "id" again on top of Base, so both levels bind the
// same key.
type Shadow struct {
	Base
	ID string
}

func (s *Shadow) StreamFields(f *mapstream.Fields) {
	f.Add(mapstream.Field("id", &s.ID))
	f.Inherit(&s.Base)
}

// Account wraps its sensitive fields in transforming bindings.
// Email is encrypted at rest, Password is hashed on read, SSN is masked
// and Note is redacted on write.
type Account struct {
	ID       string
	Email    string
	Password string
	SSN      string
	Note     string
}

var accountEncryptor = func() mapstream.Encryptor {
	enc, err := mapstream.AES([]byte(testKey))
	if err != nil {
		panic(err)
	}
	return enc
}()

func (a *Account) StreamFields(f *mapstream.Fields) {
	f.Add(
		mapstream.Field("id", &a.ID),
		mapstream.Encrypted(mapstream.Field("email", &a.Email), accountEncryptor),
		mapstream.Hashed(mapstream.Field("password", &a.Password), mapstream.HashSHA256),
		mapstream.Masked(mapstream.Field("ssn", &a.SSN), mapstream.MaskSSN),
		mapstream.Redacted(mapstream.Field("note", &a.Note), "[REDACTED]"),
	)
}

// Profile has no StreamFields; stream it through mapstream.Derive.
type Profile struct {
	Name   string   `map:"name"`
	Age    int      `map:"age"`
	Tags   []string `map:"tags"`
	Secret string   `map:"-"`
	Nick   string
}
