package intent

import (
	"bytes"
	"errors"
	"testing"

	"github.com/l1jgo/mobsim/internal/net/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var sample = []Intent{
	Spawn{ActorID: 200_000_001, TemplateID: 45000, MapID: 4, X: 100, Y: 101, Heading: 5},
	Move{ActorID: 200_000_001, Heading: 2, Mode: Run, X: 101, Y: 101},
	Attack{AttackerID: 200_000_001, TargetID: 7, X: 102, Y: 101},
	SkillAttack{AttackerID: 200_000_001, TargetID: 7, SkillID: 30001, X: 102, Y: 101},
	Chat{ActorID: 200_000_002, Text: "站住！"},
	Despawn{ActorID: 200_000_001},
}

func TestBuffer_DrainKeepsOrder(t *testing.T) {
	b := NewBuffer()
	for _, in := range sample {
		b.Emit(in)
	}
	assert.Equal(t, len(sample), b.Len())
	assert.Equal(t, sample, b.Drain())
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Drain())
}

func TestMulti(t *testing.T) {
	var a, c []Intent
	m := Multi{SinkFunc(func(in Intent) { a = append(a, in) }), SinkFunc(func(in Intent) { c = append(c, in) })}
	m.Emit(sample[0])
	assert.Len(t, a, 1)
	assert.Len(t, c, 1)
}

func TestLogSink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewLogSink(zap.New(core))
	for _, in := range sample {
		s.Emit(in)
	}
	require.Equal(t, len(sample), logs.Len())
	first := logs.All()[0].ContextMap()
	assert.Equal(t, "spawn", first["type"])
	assert.Equal(t, int32(45000), first["template"])

	quiet, none := observer.New(zapcore.InfoLevel)
	NewLogSink(zap.New(quiet)).Emit(sample[0])
	assert.Zero(t, none.Len())
}

func TestFrameSink_RecordAndReplay(t *testing.T) {
	cs, err := packet.LookupCharset("big5")
	require.NoError(t, err)

	var buf bytes.Buffer
	sink := NewFrameSink(&buf, cs)
	sink.Mark(1)
	for _, in := range sample {
		sink.Emit(in)
	}
	sink.Mark(2)
	require.NoError(t, sink.Err())
	assert.Equal(t, len(sample)+2, sink.Count())

	var ticks []int64
	var got []Intent
	reg := packet.NewRegistry(cs, zap.NewNop())
	RegisterDecoders(reg, func(t int64) { ticks = append(ticks, t) }, func(in Intent) { got = append(got, in) })

	n, err := Replay(&buf, reg)
	require.NoError(t, err)
	assert.Equal(t, len(sample)+2, n)
	assert.Equal(t, []int64{1, 2}, ticks)
	assert.Equal(t, sample, got)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFrameSink_KeepsFirstError(t *testing.T) {
	sink := NewFrameSink(failWriter{}, packet.Big5)
	sink.Emit(sample[0])
	sink.Emit(sample[1])
	assert.ErrorContains(t, sink.Err(), "disk full")
	assert.Zero(t, sink.Count())
}
