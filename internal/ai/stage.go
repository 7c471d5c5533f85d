package ai

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

var transitions = [4][4]bool{
	world.StageIdle:    {world.StageForward: true, world.StageAttack: true, world.StageEscape: true},
	world.StageForward: {world.StageAttack: true, world.StageIdle: true, world.StageForward: true},
	world.StageAttack:  {world.StageForward: true, world.StageIdle: true, world.StageAttack: true},
	world.StageEscape:  {world.StageForward: true, world.StageIdle: true, world.StageEscape: true},
}

// CanTransition reports whether the stage machine allows from -> to.
func CanTransition(from, to world.Stage) bool {
	if int(from) >= len(transitions) || int(to) >= len(transitions) {
		return false
	}
	return transitions[from][to]
}

// setStage switches m to stage to and runs the entry actions. Reports
// whether the entry action emitted an attack.
func (b *Brain) setStage(m *world.Monster, to world.Stage, now time.Time) bool {
	from := m.Stage
	if from == to {
		return false
	}
	if !CanTransition(from, to) {
		b.Log.Warn("illegal stage transition",
			zap.Int32("mob", int32(m.ID())),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
		return false
	}
	if from == world.StageForward {
		m.Path.Clear()
	}
	m.Stage = to
	if ce := b.Log.Check(zap.DebugLevel, "stage"); ce != nil {
		ce.Write(zap.Int32("mob", int32(m.ID())), zap.Stringer("from", from), zap.Stringer("to", to))
	}
	if b.OnTransition != nil {
		b.OnTransition(m, from, to)
	}
	if to == world.StageAttack && !b.World.IsRestricted(m.MapID(), m.X, m.Y) {
		if t := b.validTarget(m, m.ActTarget); t != nil && b.inRange(m, t) {
			return b.tryAttack(m, t, now)
		}
	}
	return false
}

func (b *Brain) idle(m *world.Monster, now time.Time) result {
	flags := m.Flags()
	if m.ActTarget != 0 && b.validTarget(m, m.ActTarget) == nil {
		m.ClearTargets()
	}
	if !flags.Hunter() && !m.AttackTimer.Ready(now) {
		return done
	}
	if b.acquire(m) {
		t := b.validTarget(m, m.ActTarget)
		if b.inRange(m, t) {
			if b.setStage(m, world.StageAttack, now) {
				return acted
			}
			return proceed
		}
		if flags.Mobile() && b.FindPath(m, false) {
			b.setStage(m, world.StageForward, now)
			return proceed
		}
		return done
	}
	return b.wander(m, now)
}

// wander takes an occasional random step inside the region, or starts the
// walk home when m has strayed outside it.
func (b *Brain) wander(m *world.Monster, now time.Time) result {
	if !m.Flags().Mobile() || !m.MoveTimer.Ready(now) {
		return done
	}
	region := m.Region
	if region != nil && !region.Contains(m.X, m.Y) {
		if !m.Flags().Leashed() && b.RNG.Intn(100) >= b.Config.ReturnPercent {
			return done
		}
		cx, cy := region.Center()
		if !b.FindPathTo(m, cx, cy, false) {
			return done
		}
		m.Path.SetGoal(cx, cy)
		m.RegionTimer.Arm(now)
		b.setStage(m, world.StageForward, now)
		return proceed
	}
	if b.RNG.Intn(100) >= b.Config.WanderPercent {
		return done
	}
	d := b.RNG.Intn(8)
	nx, ny := world.Step(m.X, m.Y, d)
	if region != nil && !region.Contains(nx, ny) && !m.RegionTimer.Ready(now) {
		return done
	}
	if !b.canStep(m, d) {
		return done
	}
	b.move(m, d, intent.Walk, now)
	return acted
}

func (b *Brain) forward(m *world.Monster, now time.Time) result {
	if m.MoveTarget == 0 {
		if m.Path.HasGoal {
			return b.walkHome(m, now)
		}
		b.setStage(m, world.StageIdle, now)
		return proceed
	}

	t := b.validTarget(m, m.ActTarget)
	if t != nil && b.inRange(m, t) {
		if m.Template.Reach() >= kiteRange && m.DistanceTo(t) <= 1 && m.MoveTimer.Ready(now) {
			tx, ty := t.Pos()
			if d := b.DetectPath(m, tx, ty, world.NoDirection, false); d != world.NoDirection {
				b.move(m, d, intent.Run, now)
				b.setStage(m, world.StageAttack, now)
				return acted
			}
		}
		if b.setStage(m, world.StageAttack, now) {
			return acted
		}
		return proceed
	}

	if b.leashed(m) {
		m.ClearTargets()
		b.returnHome(m, now)
		b.setStage(m, world.StageIdle, now)
		return acted
	}

	if t == nil {
		m.ClearTargets()
		b.setStage(m, world.StageIdle, now)
		return proceed
	}
	if !m.MoveTimer.Ready(now) {
		return done
	}
	if !b.FindPath(m, false) {
		b.setStage(m, world.StageIdle, now)
		return done
	}
	b.move(m, m.Path.Dir, intent.Run, now)
	return acted
}

// walkHome advances one walking step toward the path goal and ends the
// trip once m is back inside its region.
func (b *Brain) walkHome(m *world.Monster, now time.Time) result {
	gx, gy := m.Path.GoalX, m.Path.GoalY
	if (m.X == gx && m.Y == gy) || (m.Region != nil && m.Region.Contains(m.X, m.Y)) {
		b.setStage(m, world.StageIdle, now)
		return done
	}
	if !m.MoveTimer.Ready(now) {
		return done
	}
	if !b.FindPathTo(m, gx, gy, false) {
		b.setStage(m, world.StageIdle, now)
		return done
	}
	b.move(m, m.Path.Dir, intent.Walk, now)
	return acted
}

// leashed reports whether a guard-like monster has strayed too far from
// home: outside its region and beyond the leash distance from the centre.
func (b *Brain) leashed(m *world.Monster) bool {
	if !m.Flags().Leashed() || m.Region == nil || m.Region.Contains(m.X, m.Y) {
		return false
	}
	cx, cy := m.Region.Center()
	return world.Chebyshev(m.X, m.Y, cx, cy) > b.Config.LeashDistance
}

func (b *Brain) attack(m *world.Monster, now time.Time) result {
	t := b.validTarget(m, m.ActTarget)
	if t != nil && b.inRange(m, t) {
		if b.World.IsRestricted(m.MapID(), m.X, m.Y) {
			if m.Flags().Mobile() && m.MoveTimer.Ready(now) {
				if d := b.sidestep(m, t); d != world.NoDirection {
					b.move(m, d, intent.Walk, now)
					return acted
				}
			}
			return done
		}
		if b.tryAttack(m, t, now) {
			return acted
		}
		return done
	}

	if t == nil {
		m.ClearTargets()
	}
	if !b.acquire(m) {
		b.setStage(m, world.StageIdle, now)
		return proceed
	}
	nt := b.validTarget(m, m.ActTarget)
	if b.inRange(m, nt) {
		if b.tryAttack(m, nt, now) {
			return acted
		}
		return done
	}
	if m.Flags().Mobile() && b.FindPath(m, false) {
		b.setStage(m, world.StageForward, now)
		return proceed
	}
	b.setStage(m, world.StageIdle, now)
	return done
}

// sidestep picks a step out of a restricted tile, preferring headings
// close to the target.
func (b *Brain) sidestep(m *world.Monster, t world.Role) int {
	tx, ty := t.Pos()
	start := world.HeadingTo(m.X, m.Y, tx, ty)
	for i := 0; i < 8; i++ {
		d := probeOrder(start, i)
		nx, ny := world.Step(m.X, m.Y, d)
		if b.canStep(m, d) && !b.World.IsRestricted(m.MapID(), nx, ny) {
			return d
		}
	}
	return world.NoDirection
}

func (b *Brain) escape(m *world.Monster, now time.Time) result {
	flags := m.Flags()
	if !flags.CanEscape() || !flags.Mobile() {
		b.setStage(m, world.StageIdle, now)
		return proceed
	}

	threatID := m.LastAttacker
	if threatID == 0 {
		threatID = m.ActTarget
	}
	threat := b.World.NearestRole(m, threatID)

	if flags.Guard() || flags.PkKiller() {
		if threat != nil && b.teleportNear(m, threat, now) {
			m.ActTarget, m.MoveTarget = threat.ID(), threat.ID()
			b.setStage(m, world.StageForward, now)
			return acted
		}
		b.setStage(m, world.StageIdle, now)
		return proceed
	}

	if threat == nil || m.DistanceTo(threat) > m.Template.ViewRange {
		m.ClearTargets()
		m.LastAttacker = 0
		b.setStage(m, world.StageIdle, now)
		return done
	}
	if !m.MoveTimer.Ready(now) {
		return done
	}
	tx, ty := threat.Pos()
	if !b.FindPathTo(m, tx, ty, true) {
		d := b.DetectPath(m, tx, ty, world.NoDirection, false)
		if d == world.NoDirection {
			if b.validTarget(m, m.ActTarget) != nil {
				m.MoveTarget = m.ActTarget
				b.setStage(m, world.StageForward, now)
				return proceed
			}
			b.setStage(m, world.StageIdle, now)
			return done
		}
		m.Path.Dir = d
	}
	b.move(m, m.Path.Dir, intent.Run, now)
	return acted
}
