// Package ai is the monster decision engine: a four stage machine driven
// once per tick, alignment aware target acquisition, a greedy 8-way
// direction search and cooldown gated skill selection. Everything it does
// to the outside world leaves as an intent.
package ai

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/mobsim/internal/config"
	"github.com/l1jgo/mobsim/internal/core/cooldown"
	"github.com/l1jgo/mobsim/internal/core/rng"
	"github.com/l1jgo/mobsim/internal/data"
	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

// maxIterations bounds the stage handlers run per tick.
const maxIterations = 5

// regionLeaveDelay is how long a monster that just walked home stays
// inside its region.
const regionLeaveDelay = 10 * time.Second

// kiteRange is the attack range from which a monster steps back from an
// adjacent target before shooting.
const kiteRange = 3

// World is the query surface the engine reads and the movement it writes.
type World interface {
	HasMap(mapID int16) bool
	RolesNear(mapID int16, x, y int32) []world.Role
	CanMoveTo(mover world.Role, x, y int32, heading, size, climb int) bool
	CanStandAt(mapID int16, x, y int32) bool
	NearestRole(self world.Role, id world.ObjectID) world.Role
	IsRestricted(mapID int16, x, y int32) bool
	Relocate(r world.Role, x, y int32, heading int)
}

// Taunter supplies the line a guard shouts at a new target. Empty means silence.
type Taunter interface {
	Taunt(m *world.Monster, target world.Role) string
}

// Deps are the collaborators of one Brain. A Brain and its deps belong to
// one partition and are never shared between goroutines.
type Deps struct {
	World   World
	Sink    intent.Sink
	RNG     rng.Source
	Clock   cooldown.Clock
	Skills  *data.MobSkillTable
	Taunter Taunter // optional
	Config  config.AIConfig
	Log     *zap.Logger

	// OnTransition, when set, observes every stage change.
	OnTransition func(m *world.Monster, from, to world.Stage)
}

// Brain runs the decision machine for the monsters of one partition.
type Brain struct {
	Deps
	handlers [4]func(*world.Monster, time.Time) result
}

// result is what a stage handler reports back to the tick loop.
type result uint8

const (
	done    result = iota // nothing more to do this tick
	proceed               // stage changed, run the new handler now
	acted                 // a visible action was emitted
)

func New(d Deps) *Brain {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = cooldown.SystemClock{}
	}
	if d.Config.LeashDistance <= 0 {
		d.Config = config.Defaults().AI
	}
	b := &Brain{Deps: d}
	b.handlers = [4]func(*world.Monster, time.Time) result{
		world.StageIdle:    b.idle,
		world.StageForward: b.forward,
		world.StageAttack:  b.attack,
		world.StageEscape:  b.escape,
	}
	return b
}

// Initialize binds m to a position and resets its combat state. It fails
// when the map is unknown, the tile cannot be stood on or m has no template;
// the caller must then keep m out of the world.
func (b *Brain) Initialize(m *world.Monster, mapID int16, x, y int32) bool {
	if m == nil || m.Template == nil {
		return false
	}
	if !b.World.HasMap(mapID) || !b.World.CanStandAt(mapID, x, y) {
		return false
	}
	tmpl := m.Template
	m.Map, m.X, m.Y = mapID, x, y
	m.Facing = b.RNG.Intn(8)
	m.HP, m.MaxHP = tmpl.Life, tmpl.Life
	m.MP, m.MaxMP = tmpl.Mana, tmpl.Mana
	m.Lvl = tmpl.Level
	m.Stage = world.StageIdle
	m.ClearTargets()
	m.LastAttacker, m.Taunted = 0, 0
	m.Path.Clear()
	m.DiedAt = time.Time{}
	m.EscapeArmed = true

	m.AttackTimer = cooldown.New(tmpl.AttackRate(b.Config.DefaultAttackRate))
	m.MoveTimer = cooldown.New(tmpl.Walk(b.Config.DefaultWalkSpeed))
	m.RegionTimer = cooldown.New(regionLeaveDelay)
	m.Skills = b.buildSlots(m)
	return true
}

func (b *Brain) buildSlots(m *world.Monster) []*world.SkillSlot {
	tmpl := m.Template
	var slots []*world.SkillSlot
	seen := make(map[int32]bool)
	add := func(id int32, exclusive bool) {
		if id == 0 || seen[id] {
			return
		}
		sk := b.Skills.Get(id)
		if sk == nil {
			b.Log.Warn("unknown mob skill", zap.Int32("mob", tmpl.MobID), zap.Int32("skill", id))
			return
		}
		seen[id] = true
		reach := sk.Range
		if reach <= 0 {
			reach = tmpl.Reach()
		}
		slots = append(slots, &world.SkillSlot{
			SkillID:   id,
			Level:     sk.Level,
			Range:     reach,
			Exclusive: exclusive,
			Cooldown:  cooldown.New(sk.CooldownDuration()),
		})
	}
	add(tmpl.MagicType, true)
	for _, id := range tmpl.Skills {
		add(id, false)
	}
	add(m.BonusSkill, false)
	return slots
}

// Tick runs one decision step for m.
func (b *Brain) Tick(m *world.Monster) {
	if m.Dead() || !b.World.HasMap(m.MapID()) {
		return
	}
	if m.Has(world.StatusParalyzed | world.StatusSleeping) {
		return
	}
	now := b.Clock.Now()
	b.checkEscape(m, now)
	for i := 0; i < maxIterations; i++ {
		before := m.Stage
		r := b.handlers[m.Stage](m, now)
		if r != proceed || m.Stage == before {
			return
		}
	}
}

// OnAttacked lets m react to a hit from attacker. Returns true when the
// stage changed.
func (b *Brain) OnAttacked(m *world.Monster, attacker world.Role) bool {
	if m.Dead() || attacker == nil || attacker.ID() == m.ID() || attacker.MapID() != m.MapID() {
		return false
	}
	now := b.Clock.Now()
	m.LastAttacker = attacker.ID()
	if b.checkEscape(m, now) {
		return true
	}
	if m.Stage == world.StageEscape {
		return false
	}
	if m.Stage != world.StageIdle && b.validTarget(m, m.ActTarget) != nil {
		return false
	}
	if m.Flags().LockOne() && b.validTarget(m, m.ActTarget) != nil {
		return false
	}
	t := b.validTarget(m, attacker.ID())
	if t == nil {
		return false
	}
	before := m.Stage
	m.ActTarget, m.MoveTarget = t.ID(), t.ID()
	switch {
	case b.inRange(m, t):
		if m.Stage != world.StageAttack {
			b.setStage(m, world.StageAttack, now)
		}
	case m.Flags().Mobile() && b.FindPath(m, false):
		if m.Stage != world.StageForward {
			b.setStage(m, world.StageForward, now)
		}
	}
	return m.Stage != before
}

// checkEscape moves m into Escape the first time its life drops below the
// template threshold. The trigger re-arms once life climbs back.
func (b *Brain) checkEscape(m *world.Monster, now time.Time) bool {
	threshold := m.Template.EscapeLife
	if threshold <= 0 {
		return false
	}
	if m.LifePercent() >= threshold {
		m.EscapeArmed = true
		return false
	}
	if !m.EscapeArmed || m.Stage == world.StageEscape {
		return false
	}
	m.EscapeArmed = false
	if !m.Flags().CanEscape() {
		return false
	}
	if m.Stage != world.StageIdle {
		b.setStage(m, world.StageIdle, now)
	}
	b.setStage(m, world.StageEscape, now)
	return true
}
