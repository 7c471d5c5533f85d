package world

import (
	"time"

	"github.com/l1jgo/mobsim/internal/core/cooldown"
	"github.com/l1jgo/mobsim/internal/data"
)

// Stage is the active state of a monster's decision machine.
type Stage uint8

const (
	StageIdle Stage = iota
	StageForward
	StageAttack
	StageEscape
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageForward:
		return "forward"
	case StageAttack:
		return "attack"
	case StageEscape:
		return "escape"
	}
	return "unknown"
}

// SkillSlot is one learned ability bound to a monster. Each slot only
// mutates its own cooldown state.
type SkillSlot struct {
	SkillID   int32
	Level     int
	Range     int32 // tiles
	Exclusive bool  // the template's magic_type skill, rolled against magic_hit_rate
	Cooldown  cooldown.Timer
	LastUsed  time.Time
}

// NoDirection marks an unresolved path direction.
const NoDirection = -1

// Path is the pending movement decision of a monster.
type Path struct {
	Dir     int // heading of the next step, NoDirection when unresolved
	GoalX   int32
	GoalY   int32
	HasGoal bool // walking toward a point rather than a role
}

// Clear drops any pending direction and goal.
func (p *Path) Clear() {
	p.Dir = NoDirection
	p.HasGoal = false
}

// SetGoal points the path at a tile.
func (p *Path) SetGoal(x, y int32) {
	p.GoalX, p.GoalY = x, y
	p.HasGoal = true
}

// Monster is an AI controlled role. Owned by the partition of its map.
type Monster struct {
	Base
	Template   *data.MobTemplate
	Region     *Region
	GroupID    int32
	BonusSkill int32 // innate skill granted by the spawn group, 0 = none

	Stage        Stage
	MoveTarget   ObjectID // who it walks toward
	ActTarget    ObjectID // who it intends to harm
	LastAttacker ObjectID
	Taunted      ObjectID // last target shouted at, survives target loss

	Skills      []*SkillSlot
	AttackTimer cooldown.Timer
	MoveTimer   cooldown.Timer
	RegionTimer cooldown.Timer // blocks leaving the region again after a trip home

	Path        Path
	EscapeArmed bool // set while life is above the escape threshold
	DiedAt      time.Time
}

// NewMonster builds an unplaced monster for a template. The AI fills in
// the position and combat state on initialization.
func NewMonster(id ObjectID, tmpl *data.MobTemplate, region *Region) *Monster {
	m := &Monster{
		Base: Base{
			OID:   id,
			HP:    tmpl.Life,
			MaxHP: tmpl.Life,
			MP:    tmpl.Mana,
			MaxMP: tmpl.Mana,
			Lvl:   tmpl.Level,
		},
		Template: tmpl,
		Region:   region,
	}
	m.Path.Clear()
	if tmpl.Flying {
		m.Effects |= StatusFlying
	}
	return m
}

var _ Role = (*Monster)(nil)

func (m *Monster) Kind() Kind { return KindMonster }

// Flags returns the template behaviour flags.
func (m *Monster) Flags() data.AttackFlags { return m.Template.Flags }

// ClearTargets forgets both the movement and the attack target.
func (m *Monster) ClearTargets() {
	m.MoveTarget = 0
	m.ActTarget = 0
}

// Damage subtracts life and reports whether the hit killed the monster.
func (m *Monster) Damage(amount int32, now time.Time) bool {
	if m.Dead() || amount <= 0 {
		return false
	}
	m.HP -= amount
	if m.HP > 0 {
		return false
	}
	m.HP = 0
	m.DiedAt = now
	m.ClearTargets()
	m.Path.Clear()
	return true
}

// Heal restores life up to max.
func (m *Monster) Heal(amount int32) {
	if m.Dead() || amount <= 0 {
		return
	}
	m.HP += amount
	if m.HP > m.MaxHP {
		m.HP = m.MaxHP
	}
}
