package system

import (
	"sort"

	"go.uber.org/zap"

	"github.com/l1jgo/mobsim/internal/ai"
	"github.com/l1jgo/mobsim/internal/config"
	"github.com/l1jgo/mobsim/internal/core/cooldown"
	"github.com/l1jgo/mobsim/internal/core/partition"
	"github.com/l1jgo/mobsim/internal/core/rng"
	"github.com/l1jgo/mobsim/internal/data"
	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/scripting"
	"github.com/l1jgo/mobsim/internal/world"
)

// Shard bundles the per-map state owned by one partition goroutine: the
// decision engine with its RNG, the intent buffer, pending hits and the
// Lua VM. Main-goroutine systems only touch a shard between barriers.
type Shard struct {
	MapID   int16
	Part    *partition.Partition
	Brain   *ai.Brain
	Buffer  *intent.Buffer
	Hits    *HitQueue
	Scripts *scripting.Engine // nil when scripting is disabled
}

// ShardConfig carries what every shard is built from.
type ShardConfig struct {
	World   *world.State
	Skills  *data.MobSkillTable
	AI      config.AIConfig
	Seed    int64
	Clock   cooldown.Clock
	Log     *zap.Logger
	Observe func(m *world.Monster, from, to world.Stage) // optional
}

// NewShard wires a brain for mapID. scripts may be nil.
func NewShard(mapID int16, part *partition.Partition, scripts *scripting.Engine, cfg ShardConfig) *Shard {
	sh := &Shard{
		MapID:   mapID,
		Part:    part,
		Buffer:  intent.NewBuffer(),
		Hits:    &HitQueue{},
		Scripts: scripts,
	}
	deps := ai.Deps{
		World:        cfg.World,
		Sink:         intent.Multi{sh.Buffer, sh.Hits},
		RNG:          rng.New(cfg.Seed + int64(mapID)),
		Clock:        cfg.Clock,
		Skills:       cfg.Skills,
		Config:       cfg.AI,
		Log:          cfg.Log.With(zap.Int16("map", mapID)),
		OnTransition: cfg.Observe,
	}
	if scripts != nil {
		deps.Taunter = scripts
	}
	sh.Brain = ai.New(deps)
	return sh
}

// HitQueue keeps the attack intents of one tick for the combat resolver.
type HitQueue struct {
	hits []intent.Intent
}

func (q *HitQueue) Emit(in intent.Intent) {
	switch in.(type) {
	case intent.Attack, intent.SkillAttack:
		q.hits = append(q.hits, in)
	}
}

// Len returns the number of queued hits.
func (q *HitQueue) Len() int { return len(q.hits) }

func (q *HitQueue) drain() []intent.Intent {
	out := q.hits
	q.hits = nil
	return out
}

// Shards is the set of shards in ascending map id order.
type Shards struct {
	byMap map[int16]*Shard
	order []*Shard
}

func NewShards() *Shards {
	return &Shards{byMap: make(map[int16]*Shard)}
}

// Add registers sh. All keeps ascending map order whatever the add order.
func (s *Shards) Add(sh *Shard) {
	s.byMap[sh.MapID] = sh
	s.order = append(s.order, sh)
	sort.Slice(s.order, func(i, j int) bool { return s.order[i].MapID < s.order[j].MapID })
}

func (s *Shards) Get(mapID int16) *Shard { return s.byMap[mapID] }

func (s *Shards) All() []*Shard { return s.order }

// Close releases the Lua VMs.
func (s *Shards) Close() {
	for _, sh := range s.order {
		if sh.Scripts != nil {
			sh.Scripts.Close()
		}
	}
}
