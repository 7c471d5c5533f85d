package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/mobsim/internal/core/system"
	"github.com/l1jgo/mobsim/internal/world"
)

// barrier waits for every partition to go idle.
type barrier interface {
	Barrier()
}

// MonsterAISystem posts one tick job per live monster to the partition of
// its map and waits for all partitions to finish. Phase 1 (Update).
type MonsterAISystem struct {
	world  *world.State
	shards *Shards
	sched  barrier
	log    *zap.Logger
}

func NewMonsterAISystem(ws *world.State, shards *Shards, sched barrier, log *zap.Logger) *MonsterAISystem {
	return &MonsterAISystem{world: ws, shards: shards, sched: sched, log: log}
}

func (s *MonsterAISystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MonsterAISystem) Update(_ time.Duration) {
	for _, sh := range s.shards.All() {
		z := s.world.Zone(sh.MapID)
		if z == nil {
			continue
		}
		brain := sh.Brain
		for _, m := range z.Monsters() {
			if m.Dead() {
				continue
			}
			m := m
			if !sh.Part.Post(func() { brain.Tick(m) }) {
				s.log.Debug("partition stopped, skipping ai tick", zap.Int16("map", sh.MapID))
				break
			}
		}
	}
	s.sched.Barrier()
}
