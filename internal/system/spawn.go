package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/mobsim/internal/core/cooldown"
	"github.com/l1jgo/mobsim/internal/core/event"
	"github.com/l1jgo/mobsim/internal/core/ident"
	"github.com/l1jgo/mobsim/internal/core/rng"
	coresys "github.com/l1jgo/mobsim/internal/core/system"
	"github.com/l1jgo/mobsim/internal/data"
	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

// spawnAttempts is how many random points are tried per spawn.
const spawnAttempts = 10

// minRespawnDelay keeps a group whose region is full from retrying every tick.
const minRespawnDelay = time.Second

// Generator keeps one spawn group populated.
type Generator struct {
	Group    data.SpawnGroup
	Template *data.MobTemplate
	Region   *world.Region

	live    int
	pending []time.Time // respawn due times, oldest first
}

// Live returns the number of members currently in the world.
func (g *Generator) Live() int { return g.live }

func (g *Generator) delay() time.Duration {
	d := time.Duration(g.Group.RespawnDelay) * time.Second
	if d < minRespawnDelay {
		return minRespawnDelay
	}
	return d
}

// due returns how many members should be spawned at now and drops the
// consumed respawn entries.
func (g *Generator) due(now time.Time) int {
	n := 0
	for len(g.pending) > 0 && !now.Before(g.pending[0]) {
		g.pending = g.pending[1:]
		n++
	}
	missing := g.Group.Count - g.live - len(g.pending)
	if missing > n {
		n = missing
	}
	return n
}

func (g *Generator) schedule(now time.Time) {
	g.pending = append(g.pending, now.Add(g.delay()))
}

// SpawnSystem fills spawn groups up to their population. Runs on the main
// goroutine between barriers, so it may initialize monsters with the
// owning shard's brain directly. Phase 2 (PostUpdate).
type SpawnSystem struct {
	world  *world.State
	shards *Shards
	pool   *ident.Pool
	bus    *event.Bus
	clock  cooldown.Clock
	rng    rng.Source
	log    *zap.Logger

	groups []*Generator
	byID   map[int32]*Generator
}

// NewSpawnSystem builds one generator per usable group. Groups naming an
// unknown template or map are logged and skipped.
func NewSpawnSystem(ws *world.State, shards *Shards, groups []data.SpawnGroup, mobs *data.MobTable, pool *ident.Pool, bus *event.Bus, clock cooldown.Clock, src rng.Source, log *zap.Logger) *SpawnSystem {
	s := &SpawnSystem{
		world:  ws,
		shards: shards,
		pool:   pool,
		bus:    bus,
		clock:  clock,
		rng:    src,
		log:    log,
		byID:   make(map[int32]*Generator, len(groups)),
	}
	for _, grp := range groups {
		tmpl := mobs.Get(grp.MobID)
		if tmpl == nil {
			log.Warn("spawn group references unknown mob", zap.Int32("group", grp.GroupID), zap.Int32("mob", grp.MobID))
			continue
		}
		if shards.Get(grp.MapID) == nil {
			log.Warn("spawn group references unknown map", zap.Int32("group", grp.GroupID), zap.Int16("map", grp.MapID))
			continue
		}
		g := &Generator{
			Group:    grp,
			Template: tmpl,
			Region:   world.NewRegion(grp.MapID, grp.X, grp.Y, grp.RandomX, grp.RandomY),
		}
		s.groups = append(s.groups, g)
		s.byID[grp.GroupID] = g
	}
	return s
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SpawnSystem) Update(_ time.Duration) {
	now := s.clock.Now()
	for _, g := range s.groups {
		for n := g.due(now); n > 0; n-- {
			if !s.spawn(g, now) {
				g.schedule(now)
			}
		}
	}
}

// Generators returns the active generators in spawn list order.
func (s *SpawnSystem) Generators() []*Generator { return s.groups }

// Population returns the total number of live spawned monsters.
func (s *SpawnSystem) Population() int {
	n := 0
	for _, g := range s.groups {
		n += g.live
	}
	return n
}

// Died tells the owning generator that a member left the world.
func (s *SpawnSystem) Died(groupID int32, now time.Time) {
	g := s.byID[groupID]
	if g == nil {
		return
	}
	if g.live > 0 {
		g.live--
	}
	g.schedule(now)
}

func (s *SpawnSystem) spawn(g *Generator, now time.Time) bool {
	sh := s.shards.Get(g.Group.MapID)
	raw, err := s.pool.Acquire()
	if err != nil {
		s.log.Error("monster id allocation failed", zap.Int32("group", g.Group.GroupID), zap.Error(err))
		return false
	}
	m := world.NewMonster(world.ObjectID(raw), g.Template, g.Region)
	m.GroupID = g.Group.GroupID
	m.BonusSkill = g.Group.BonusSkill

	placed := false
	for i := 0; i < spawnAttempts && !placed; i++ {
		x, y := g.Region.RandomPoint(s.rng)
		placed = sh.Brain.Initialize(m, g.Group.MapID, x, y)
	}
	if !placed {
		s.pool.Release(raw)
		s.log.Warn("no free spawn point", zap.Int32("group", g.Group.GroupID), zap.Int16("map", g.Group.MapID))
		return false
	}
	if err := s.world.Enter(m); err != nil {
		s.pool.Release(raw)
		s.log.Error("enter world", zap.Int32("group", g.Group.GroupID), zap.Error(err))
		return false
	}
	g.live++

	sh.Buffer.Emit(intent.Spawn{
		ActorID:    m.ID(),
		TemplateID: g.Template.MobID,
		MapID:      m.MapID(),
		X:          m.X,
		Y:          m.Y,
		Heading:    m.Facing,
	})
	event.Emit(s.bus, event.MonsterSpawned{
		ObjectID:   raw,
		TemplateID: g.Template.MobID,
		GroupID:    g.Group.GroupID,
		MapID:      m.MapID(),
		X:          m.X,
		Y:          m.Y,
		At:         now,
	})
	return true
}
