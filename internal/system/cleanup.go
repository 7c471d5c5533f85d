package system

import (
	"time"

	"github.com/l1jgo/mobsim/internal/core/cooldown"
	"github.com/l1jgo/mobsim/internal/core/event"
	"github.com/l1jgo/mobsim/internal/core/ident"
	coresys "github.com/l1jgo/mobsim/internal/core/system"
	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

// CleanupSystem removes corpses whose death timeout has passed, recycles
// their ids and hands the vacancy back to the spawn generator.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world   *world.State
	shards  *Shards
	spawns  *SpawnSystem
	pool    *ident.Pool
	bus     *event.Bus
	clock   cooldown.Clock
	timeout time.Duration
}

func NewCleanupSystem(ws *world.State, shards *Shards, spawns *SpawnSystem, pool *ident.Pool, bus *event.Bus, clock cooldown.Clock, timeout time.Duration) *CleanupSystem {
	return &CleanupSystem{
		world:   ws,
		shards:  shards,
		spawns:  spawns,
		pool:    pool,
		bus:     bus,
		clock:   clock,
		timeout: timeout,
	}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	now := s.clock.Now()
	for _, sh := range s.shards.All() {
		z := s.world.Zone(sh.MapID)
		if z == nil {
			continue
		}
		for _, m := range z.Monsters() {
			if !m.Dead() || now.Sub(m.DiedAt) < s.timeout {
				continue
			}
			s.remove(sh, m, now, true)
		}
	}
}

// Unload removes every monster, dead or alive, and returns how many left.
// Partitions must be stopped. The despawns it emits carry Killed=false.
func (s *CleanupSystem) Unload() int {
	now := s.clock.Now()
	n := 0
	for _, sh := range s.shards.All() {
		z := s.world.Zone(sh.MapID)
		if z == nil {
			continue
		}
		for _, m := range z.Monsters() {
			s.remove(sh, m, now, false)
			n++
		}
	}
	return n
}

func (s *CleanupSystem) remove(sh *Shard, m *world.Monster, now time.Time, killed bool) {
	s.world.Leave(m.ID())
	sh.Buffer.Emit(intent.Despawn{ActorID: m.ID()})
	s.pool.Release(int32(m.ID()))
	s.spawns.Died(m.GroupID, now)
	event.Emit(s.bus, event.MonsterDespawned{
		ObjectID:   int32(m.ID()),
		TemplateID: m.Template.MobID,
		GroupID:    m.GroupID,
		MapID:      m.MapID(),
		X:          m.X,
		Y:          m.Y,
		Killed:     killed,
		At:         now,
	})
}
