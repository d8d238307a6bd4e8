package mapstream

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// HashAlgo selects a one-way hash for Hashed bindings.
type HashAlgo string

const (
	HashArgon2 HashAlgo = "argon2"
	HashBcrypt HashAlgo = "bcrypt"
	HashSHA256 HashAlgo = "sha256"
	HashSHA512 HashAlgo = "sha512"
)

// Hasher performs one-way hashing.
type Hasher interface {
	// Hash returns the hash of plaintext.
	// Password hashers (argon2, bcrypt) embed salt and parameters in the
	// result; digest hashers (sha256, sha512) return lowercase hex.
	Hash(plaintext []byte) (string, error)
}

// Argon2Params configures Argon2id hashing.
type Argon2Params struct {
	Time    uint32 // Iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultArgon2Params returns the OWASP baseline for Argon2id.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
		SaltLen: 16,
	}
}

type argon2Hasher struct {
	params Argon2Params
}

// Argon2 returns an Argon2id hasher with p.
func Argon2(p Argon2Params) Hasher {
	return &argon2Hasher{params: p}
}

func (h *argon2Hasher) Hash(plaintext []byte) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	sum := argon2.IDKey(plaintext, salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

type bcryptHasher struct {
	cost int
}

// Bcrypt returns a bcrypt hasher. A cost below bcrypt.MinCost hashes at
// bcrypt.DefaultCost.
func Bcrypt(cost int) Hasher {
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plaintext []byte) (string, error) {
	out, err := bcrypt.GenerateFromPassword(plaintext, h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

type digestHasher struct {
	sum func([]byte) []byte
}

func (h digestHasher) Hash(plaintext []byte) (string, error) {
	return hex.EncodeToString(h.sum(plaintext)), nil
}

// HasherFor returns the hasher for algo with default parameters.
func HasherFor(algo HashAlgo) (Hasher, error) {
	switch algo {
	case HashArgon2:
		return Argon2(DefaultArgon2Params()), nil
	case HashBcrypt:
		return Bcrypt(bcrypt.DefaultCost), nil
	case HashSHA256:
		return digestHasher{sum: func(b []byte) []byte { s := sha256.Sum256(b); return s[:] }}, nil
	case HashSHA512:
		return digestHasher{sum: func(b []byte) []byte { s := sha512.Sum512(b); return s[:] }}, nil
	}
	return nil, newTransformError(ErrHash, "hash", "", fmt.Errorf("unknown algorithm %q", algo))
}
