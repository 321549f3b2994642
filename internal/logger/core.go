package logger

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// DBCore tees entries at or above minLevel to the DB writer while the
// wrapped core keeps writing to the console
type DBCore struct {
	zapcore.Core
	writer   *DBLogWriter
	minLevel zapcore.Level
	// fields added through With, replayed into every DB entry
	context []zapcore.Field
}

func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter, minLevel zapcore.Level) zapcore.Core {
	return &DBCore{
		Core:     baseCore,
		writer:   writer,
		minLevel: minLevel,
	}
}

func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	ctx := make([]zapcore.Field, 0, len(c.context)+len(fields))
	ctx = append(ctx, c.context...)
	ctx = append(ctx, fields...)
	return &DBCore{
		Core:     c.Core.With(fields),
		writer:   c.writer,
		minLevel: c.minLevel,
		context:  ctx,
	}
}

func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= c.minLevel {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range c.context {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}

		c.writer.AddLog(LogEntry{
			Level:     entry.Level,
			Message:   entry.Message,
			Caller:    entry.Caller.Function,
			UserID:    stringField(enc, "user_id"),
			WidgetID:  stringField(enc, "widget_id"),
			SurfaceID: stringField(enc, "surface_id"),
			Error:     stringField(enc, "error"),
		})
	}

	// the wrapped core already holds the With fields
	return c.Core.Write(entry, fields)
}

// Check decides if we should log this level
func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func stringField(enc *zapcore.MapObjectEncoder, key string) string {
	v, ok := enc.Fields[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
