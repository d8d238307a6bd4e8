package mapstream

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEmitSchemaBuilt(_ *testing.T) {
	// Should not panic
	emitSchemaBuilt(context.Background(), "Book", 3, 1)
}

func TestEmitWriteStart(_ *testing.T) {
	emitWriteStart(context.Background(), "Book")
}

func TestEmitWriteComplete_Success(_ *testing.T) {
	emitWriteComplete(context.Background(), "Book", 100*time.Millisecond, 3, nil)
}

func TestEmitWriteComplete_Error(_ *testing.T) {
	emitWriteComplete(context.Background(), "Book", 100*time.Millisecond, 0, errors.New("test error"))
}

func TestEmitReadStart(_ *testing.T) {
	emitReadStart(context.Background(), "Book")
}

func TestEmitReadComplete_Success(_ *testing.T) {
	emitReadComplete(context.Background(), "Book", 100*time.Millisecond, 3, 1, nil)
}

func TestEmitReadComplete_Error(_ *testing.T) {
	emitReadComplete(context.Background(), "Book", 100*time.Millisecond, 1, 2, errors.New("test error"))
}

func TestSignalVariables(t *testing.T) {
	signals := []struct {
		name   string
		signal interface{}
	}{
		{"SignalSchemaBuilt", SignalSchemaBuilt},
		{"SignalWriteStart", SignalWriteStart},
		{"SignalWriteComplete", SignalWriteComplete},
		{"SignalReadStart", SignalReadStart},
		{"SignalReadComplete", SignalReadComplete},
	}

	for _, s := range signals {
		if s.signal == nil {
			t.Errorf("%s is nil", s.name)
		}
	}
}

func TestKeyVariables(t *testing.T) {
	keys := []struct {
		name string
		key  interface{}
	}{
		{"KeyTypeName", KeyTypeName},
		{"KeyKeyCount", KeyKeyCount},
		{"KeyDepth", KeyDepth},
		{"KeyAppliedCount", KeyAppliedCount},
		{"KeyLeftoverCount", KeyLeftoverCount},
		{"KeyDuration", KeyDuration},
		{"KeyError", KeyError},
	}

	for _, k := range keys {
		if k.key == nil {
			t.Errorf("%s is nil", k.name)
		}
	}
}
