package mapstream

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Stream owns a source map and drives write and read passes against it.
//
// A write pass copies an object's fields into the source. A read pass
// assigns present keys to the object's fields and removes them from the
// source, so whatever remains afterwards is the leftover set: keys the
// object's schema does not declare. Absent keys leave fields untouched.
//
// Streams are cheap and not safe for concurrent use; give each goroutine
// its own.
type Stream struct {
	source *Map
	logger zerolog.Logger
	policy ReadPolicy
}

// NewStream returns a stream with an empty source.
func NewStream(opts ...Option) *Stream {
	return NewStreamFrom(NewMap(), opts...)
}

// NewStreamFrom returns a stream reading from and writing to source.
// The stream uses source directly; it is not copied.
func NewStreamFrom(source *Map, opts ...Option) *Stream {
	s := &Stream{
		logger: zerolog.Nop(),
		policy: DefaultReadPolicy,
	}
	s.SetSource(source)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Source returns the live source map.
func (s *Stream) Source() *Map { return s.source }

// SetSource replaces the source map. A nil source becomes an empty map.
func (s *Stream) SetSource(source *Map) {
	if source == nil {
		source = NewMap()
	}
	s.source = source
}

// Policy returns the stream's read policy.
func (s *Stream) Policy() ReadPolicy { return s.policy }

// Peek returns the value under name without consuming it.
func (s *Stream) Peek(name string) (Value, bool) {
	return s.source.Get(name)
}

// Leftover returns the keys currently in the source, in insertion order.
// After a read pass these are the keys the object did not declare.
func (s *Stream) Leftover() []string {
	return s.source.Keys()
}

// AddMap stores a string map under name as one nested map value.
// Entries are not merged into the top level.
func (s *Stream) AddMap(name string, m map[string]string) *Stream {
	nested := NewMap()
	for _, k := range sortedKeys(m) {
		nested.Set(k, String(m[k]))
	}
	s.source.Set(name, Value{kind: KindMap, m: nested})
	return s
}

// AddValues stores a map of values under name as one nested map value.
func (s *Stream) AddValues(name string, m map[string]Value) *Stream {
	s.source.Set(name, Value{kind: KindMap, m: MapOf(m)})
	return s
}

// Write copies obj's fields into the source, own fields first and then
// each ancestor's (see TraversalOrder). Keys already in the source are
// overwritten; other keys are kept.
//
// Write fails only on a malformed schema or a failing transform binding.
func (s *Stream) Write(ctx context.Context, obj Streamable) error {
	typeName := typeNameOf(obj)
	start := time.Now()
	emitWriteStart(ctx, typeName)

	var written int
	var retErr error
	defer func() {
		emitWriteComplete(ctx, typeName, time.Since(start), written, retErr)
	}()

	f, err := s.fields(obj)
	if err != nil {
		retErr = err
		return retErr
	}
	defer release(f)

	for _, b := range f.bindings {
		v, err := readBinding(b)
		if err != nil {
			retErr = err
			s.logger.Warn().Err(err).Str("type", typeName).Str("key", b.Key()).Msg("write pass aborted")
			return retErr
		}
		s.source.Set(b.Key(), v)
		written++
	}

	s.logger.Debug().Str("type", typeName).Int("written", written).Msg("write pass complete")
	return nil
}

// Read assigns the source's values to obj's fields in traversal order and
// removes each consumed key from the source.
//
// Absent keys are skipped and the field keeps its value. The first value
// that does not convert aborts the pass with a *MismatchError naming the
// key; that key stays in the source. Under RetainApplied, fields assigned
// before the failure keep their new values; under RollbackApplied they and
// the source are restored, and a field that cannot be restored adds its
// error to the one returned.
func (s *Stream) Read(ctx context.Context, obj Streamable) error {
	typeName := typeNameOf(obj)
	start := time.Now()
	emitReadStart(ctx, typeName)

	var applied int
	var retErr error
	defer func() {
		emitReadComplete(ctx, typeName, time.Since(start), applied, s.source.Len(), retErr)
	}()

	f, err := s.fields(obj)
	if err != nil {
		retErr = err
		return retErr
	}
	defer release(f)

	var snapshot *Map
	var undo []func() error
	if s.policy == RollbackApplied {
		snapshot = s.source.Clone()
	}

	for _, b := range f.bindings {
		key := b.Key()
		v, ok := s.source.Get(key)
		if !ok {
			continue
		}
		if snapshot != nil {
			restore, err := saveBinding(unwrap(b))
			if err != nil {
				retErr = joinRollback(err, undo)
				s.source.restore(snapshot)
				applied = 0
				s.logFailure(typeName, retErr)
				return retErr
			}
			undo = append(undo, restore)
		}
		if err := b.SetValue(v); err != nil {
			retErr = err
			if snapshot != nil {
				retErr = joinRollback(err, undo)
				s.source.restore(snapshot)
				applied = 0
			}
			s.logFailure(typeName, retErr)
			return retErr
		}
		s.source.Remove(key)
		applied++
	}

	if s.source.Len() > 0 {
		s.logger.Debug().Str("type", typeName).Int("applied", applied).Strs("leftover", s.source.Keys()).Msg("read pass complete")
	} else {
		s.logger.Debug().Str("type", typeName).Int("applied", applied).Msg("read pass complete")
	}
	return nil
}

// fields validates obj's schema and collects its bindings.
func (s *Stream) fields(obj Streamable) (*Fields, error) {
	if obj == nil || isNilPointer(obj) {
		return nil, newSchemaError("<nil>", "", "nil object")
	}
	if _, err := SchemaFor(obj); err != nil {
		return nil, err
	}
	return collect(obj)
}

func (s *Stream) logFailure(typeName string, err error) {
	ev := s.logger.Warn().Err(err).Str("type", typeName)
	var me *MismatchError
	if errors.As(err, &me) {
		ev = ev.Str("key", me.Key).Str("expected", me.Expected).Stringer("actual", me.Actual)
	}
	ev.Msg("read pass aborted")
}

// saveBinding records b's field before a read pass assigns it. Bindings
// from this package copy the field itself; others are read into a Value
// and written back through SetValue.
func saveBinding(b Binding) (func() error, error) {
	if s, ok := b.(saver); ok {
		put := s.save()
		return func() error { put(); return nil }, nil
	}
	prev, err := readBinding(b)
	if err != nil {
		return nil, err
	}
	return func() error {
		if err := b.SetValue(prev); err != nil {
			return fmt.Errorf("rollback of key %q: %w", b.Key(), err)
		}
		return nil
	}, nil
}

// joinRollback rolls back undo and attaches any restore failure to err.
func joinRollback(err error, undo []func() error) error {
	if rbErr := rollback(undo); rbErr != nil {
		return errors.Join(err, rbErr)
	}
	return err
}

// rollback restores recorded fields, latest first, and reports every
// field it could not restore.
func rollback(undo []func() error) error {
	var errs []error
	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// wrapper is implemented by bindings that decorate another binding.
type wrapper interface {
	unwrap() Binding
}

// unwrap returns the innermost binding, the one that touches the field.
func unwrap(b Binding) Binding {
	for {
		w, ok := b.(wrapper)
		if !ok {
			return b
		}
		b = w.unwrap()
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
