package ai

import (
	"math"

	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

// acquire picks the target m should engage and stores it in both ActTarget
// and MoveTarget. Candidates come from the 3x3 cell neighbourhood in
// ascending id order, so the lowest id wins a distance tie. A pk-kill or
// evil-kill match ends the scan at once, even if a closer candidate might
// follow. Returns false, with both targets cleared, when nobody qualifies.
func (b *Brain) acquire(m *world.Monster) bool {
	flags := m.Flags()
	if flags.LockUser() && m.ActTarget != 0 {
		if t := b.validTarget(m, m.ActTarget); t != nil {
			m.MoveTarget = t.ID()
			return true
		}
	}

	view := m.Template.ViewRange
	var best world.Role
	bestDist := int32(math.MaxInt32)
	for _, c := range b.World.RolesNear(m.MapID(), m.X, m.Y) {
		if c.ID() == m.ID() || c.MapID() != m.MapID() || c.Dead() || c.Has(world.StatusInvisible) {
			continue
		}
		dist := m.DistanceTo(c)
		if dist > view {
			continue
		}
		ok, urgent := b.eligible(m, c)
		if !ok {
			continue
		}
		if urgent {
			best = c
			break
		}
		if dist < bestDist {
			best, bestDist = c, dist
		}
	}

	if best == nil {
		m.ClearTargets()
		return false
	}
	m.ActTarget, m.MoveTarget = best.ID(), best.ID()
	if best.ID() != m.Taunted {
		b.taunt(m, best)
	}
	return true
}

// eligible applies the alignment rules to candidate c. urgent marks the
// pk-kill and evil-kill categories that preempt the nearest-first search.
func (b *Brain) eligible(m *world.Monster, c world.Role) (ok, urgent bool) {
	flags := m.Flags()
	if c.Has(world.StatusFlying) && !flags.Wing() {
		return false, false
	}
	if c.ID() == m.LastAttacker {
		return true, false
	}
	switch world.KindOf(c.ID()) {
	case world.KindPlayer:
		p, isPlayer := c.(*world.Player)
		if !isPlayer {
			return false, false
		}
		switch {
		case flags.PkKiller() && p.PlayerKiller():
			return true, true
		case flags.EvilKiller() && !p.Virtuous():
			return true, true
		case flags.Guard() && p.Criminal():
			return true, false
		case flags.Hostile() && !flags.PkKiller() && !flags.EvilKiller():
			return true, false
		}
	case world.KindMonster:
		o, isMonster := c.(*world.Monster)
		if !isMonster {
			return false, false
		}
		other := o.Flags()
		if (flags.Righteous() && other.Evil()) || (flags.Evil() && other.Righteous()) {
			return true, false
		}
	}
	return false, false
}

// validTarget resolves id and checks it can still be fought: alive, on the
// same map, visible, within view range and not out of reach in the air.
func (b *Brain) validTarget(m *world.Monster, id world.ObjectID) world.Role {
	if id == 0 {
		return nil
	}
	t := b.World.NearestRole(m, id)
	if t == nil || t.Has(world.StatusInvisible) {
		return nil
	}
	if t.Has(world.StatusFlying) && !m.Flags().Wing() {
		return nil
	}
	if m.DistanceTo(t) > m.Template.ViewRange {
		return nil
	}
	return t
}

func (b *Brain) inRange(m *world.Monster, t world.Role) bool {
	return t != nil && m.DistanceTo(t) <= m.Template.Reach()
}

func (b *Brain) taunt(m *world.Monster, t world.Role) {
	if b.Taunter == nil {
		return
	}
	if !m.Flags().Guard() && !m.Flags().PkKiller() {
		return
	}
	m.Taunted = t.ID()
	if text := b.Taunter.Taunt(m, t); text != "" {
		b.Sink.Emit(intent.Chat{ActorID: m.ID(), Text: text})
	}
}
