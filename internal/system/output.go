package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/mobsim/internal/core/system"
	"github.com/l1jgo/mobsim/internal/intent"
)

// OutputSystem drains every shard's intent buffer, in map order, into the
// downstream sink. When a recorder is attached each tick starts with a
// tick marker frame. Phase 3 (Output).
type OutputSystem struct {
	shards   *Shards
	sink     intent.Sink
	recorder *intent.FrameSink // optional
	log      *zap.Logger

	tick      int64
	emitted   int
	recFailed bool
}

func NewOutputSystem(shards *Shards, sink intent.Sink, recorder *intent.FrameSink, log *zap.Logger) *OutputSystem {
	return &OutputSystem{shards: shards, sink: sink, recorder: recorder, log: log}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.tick++
	if s.recorder != nil {
		s.recorder.Mark(s.tick)
	}
	for _, sh := range s.shards.All() {
		for _, in := range sh.Buffer.Drain() {
			s.sink.Emit(in)
			s.emitted++
		}
	}
	if s.recorder != nil && !s.recFailed {
		if err := s.recorder.Err(); err != nil {
			s.recFailed = true
			s.log.Error("intent recorder failed, recording stopped", zap.Error(err))
		}
	}
}

// Emitted returns the number of intents delivered so far.
func (s *OutputSystem) Emitted() int { return s.emitted }
