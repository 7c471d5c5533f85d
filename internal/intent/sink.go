package intent

import (
	"go.uber.org/zap"
)

// Sink accepts intents. Emit never blocks on I/O in the AI path.
type Sink interface {
	Emit(in Intent)
}

// Buffer collects intents in emission order. Each partition owns one and
// the output system drains it between ticks.
type Buffer struct {
	items []Intent
}

func NewBuffer() *Buffer {
	return &Buffer{items: make([]Intent, 0, 256)}
}

func (b *Buffer) Emit(in Intent) {
	b.items = append(b.items, in)
}

// Drain returns the buffered intents and empties the buffer.
func (b *Buffer) Drain() []Intent {
	out := b.items
	b.items = make([]Intent, 0, cap(out))
	return out
}

// Len returns the number of buffered intents.
func (b *Buffer) Len() int {
	return len(b.items)
}

// Multi fans one intent out to several sinks in order.
type Multi []Sink

func (m Multi) Emit(in Intent) {
	for _, s := range m {
		s.Emit(in)
	}
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(in Intent)

func (f SinkFunc) Emit(in Intent) { f(in) }

// LogSink writes every intent to a zap logger at debug level.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(in Intent) {
	if ce := s.log.Check(zap.DebugLevel, "intent"); ce != nil {
		ce.Write(Fields(in)...)
	}
}

// Fields describes an intent as zap fields.
func Fields(in Intent) []zap.Field {
	fields := []zap.Field{zap.Int32("actor", int32(in.Actor()))}
	switch v := in.(type) {
	case Attack:
		fields = append(fields, zap.String("type", "attack"), zap.Int32("target", int32(v.TargetID)),
			zap.Int32("x", v.X), zap.Int32("y", v.Y))
	case SkillAttack:
		fields = append(fields, zap.String("type", "skill"), zap.Int32("target", int32(v.TargetID)),
			zap.Int32("skill", v.SkillID), zap.Int32("x", v.X), zap.Int32("y", v.Y))
	case Move:
		fields = append(fields, zap.String("type", "move"), zap.Stringer("mode", v.Mode),
			zap.Int("heading", v.Heading), zap.Int32("x", v.X), zap.Int32("y", v.Y))
	case Spawn:
		fields = append(fields, zap.String("type", "spawn"), zap.Int32("template", v.TemplateID),
			zap.Int16("map", v.MapID), zap.Int32("x", v.X), zap.Int32("y", v.Y))
	case Despawn:
		fields = append(fields, zap.String("type", "despawn"))
	case Chat:
		fields = append(fields, zap.String("type", "chat"), zap.String("text", v.Text))
	}
	return fields
}
