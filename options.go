package mapstream

import "github.com/rs/zerolog"

// ReadPolicy decides what a read pass does with fields it already assigned
// when a later binding fails.
type ReadPolicy uint8

const (
	// RetainApplied keeps earlier assignments and consumed keys as they are.
	// A failed pass is not atomic.
	RetainApplied ReadPolicy = iota

	// RollbackApplied restores every field assigned during the failed pass
	// to its pre-pass value and puts the source map back as it was.
	RollbackApplied
)

// DefaultReadPolicy is the policy of a Stream built without WithAtomicRead.
const DefaultReadPolicy = RetainApplied

// Option configures a Stream.
type Option func(*Stream)

// WithLogger sets the logger used for pass diagnostics.
// Streams log nothing by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Stream) {
		s.logger = logger
	}
}

// WithAtomicRead makes failed read passes roll back; see RollbackApplied.
func WithAtomicRead() Option {
	return func(s *Stream) {
		s.policy = RollbackApplied
	}
}

// WithReadPolicy sets the read policy explicitly.
func WithReadPolicy(p ReadPolicy) Option {
	return func(s *Stream) {
		s.policy = p
	}
}
