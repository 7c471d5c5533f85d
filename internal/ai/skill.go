package ai

import (
	"time"

	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

// tryAttack attacks t if the attack cadence allows, using a skill when one
// is ready. Reports whether an intent was emitted.
func (b *Brain) tryAttack(m *world.Monster, t world.Role, now time.Time) bool {
	if !m.AttackTimer.Ready(now) {
		return false
	}
	tx, ty := t.Pos()
	m.Facing = world.HeadingTo(m.X, m.Y, tx, ty)
	m.AttackTimer.Arm(now)

	if slot := b.pickSkill(m, t, now); slot != nil {
		slot.Cooldown.Arm(now)
		slot.LastUsed = now
		if sk := b.Skills.Get(slot.SkillID); sk != nil {
			m.MP -= sk.MpConsume
		}
		b.Sink.Emit(intent.SkillAttack{AttackerID: m.ID(), TargetID: t.ID(), SkillID: slot.SkillID, X: tx, Y: ty})
		return true
	}
	b.Sink.Emit(intent.Attack{AttackerID: m.ID(), TargetID: t.ID(), X: tx, Y: ty})
	return true
}

// pickSkill chooses the slot to use against t, or nil for a plain attack.
// A monster whose only slot is its exclusive magic rolls against the
// template hit rate. Otherwise the ready slot used longest ago wins, ties
// going to slot order.
func (b *Brain) pickSkill(m *world.Monster, t world.Role, now time.Time) *world.SkillSlot {
	dist := m.DistanceTo(t)
	if len(m.Skills) == 1 && m.Skills[0].Exclusive {
		s := m.Skills[0]
		if !b.usable(m, s, dist, now) {
			return nil
		}
		if b.RNG.Intn(100) < m.Template.MagicHitRate {
			return s
		}
		return nil
	}
	var best *world.SkillSlot
	for _, s := range m.Skills {
		if !b.usable(m, s, dist, now) {
			continue
		}
		if best == nil || s.LastUsed.Before(best.LastUsed) {
			best = s
		}
	}
	return best
}

func (b *Brain) usable(m *world.Monster, s *world.SkillSlot, dist int32, now time.Time) bool {
	if !s.Cooldown.Ready(now) || dist > s.Range {
		return false
	}
	if sk := b.Skills.Get(s.SkillID); sk != nil && sk.MpConsume > m.MP {
		return false
	}
	return true
}
