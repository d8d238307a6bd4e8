package mapstream

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for stream events.
var (
	SignalSchemaBuilt   = capitan.NewSignal("mapstream.schema.built", "Schema built and cached")
	SignalWriteStart    = capitan.NewSignal("mapstream.write.start", "Write pass beginning")
	SignalWriteComplete = capitan.NewSignal("mapstream.write.complete", "Write pass finished")
	SignalReadStart     = capitan.NewSignal("mapstream.read.start", "Read pass beginning")
	SignalReadComplete  = capitan.NewSignal("mapstream.read.complete", "Read pass finished")
)

// Keys for typed event data.
var (
	KeyTypeName      = capitan.NewStringKey("type_name")
	KeyKeyCount      = capitan.NewIntKey("key_count")
	KeyDepth         = capitan.NewIntKey("depth")
	KeyAppliedCount  = capitan.NewIntKey("applied_count")
	KeyLeftoverCount = capitan.NewIntKey("leftover_count")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
)

// emitSchemaBuilt emits an event when a schema is built and cached.
func emitSchemaBuilt(ctx context.Context, typeName string, keys, depth int) {
	capitan.Emit(ctx, SignalSchemaBuilt,
		KeyTypeName.Field(typeName),
		KeyKeyCount.Field(keys),
		KeyDepth.Field(depth),
	)
}

// emitWriteStart emits an event when a write pass begins.
func emitWriteStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalWriteStart,
		KeyTypeName.Field(typeName),
	)
}

// emitWriteComplete emits an event when a write pass finishes.
func emitWriteComplete(ctx context.Context, typeName string, duration time.Duration, written int, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
		KeyKeyCount.Field(written),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalWriteComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalWriteComplete, fields...)
	}
}

// emitReadStart emits an event when a read pass begins.
func emitReadStart(ctx context.Context, typeName string) {
	capitan.Emit(ctx, SignalReadStart,
		KeyTypeName.Field(typeName),
	)
}

// emitReadComplete emits an event when a read pass finishes.
func emitReadComplete(ctx context.Context, typeName string, duration time.Duration, applied, leftover int, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
		KeyAppliedCount.Field(applied),
		KeyLeftoverCount.Field(leftover),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalReadComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalReadComplete, fields...)
	}
}
