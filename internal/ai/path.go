package ai

import (
	"github.com/l1jgo/mobsim/internal/world"
)

// probeOrder returns the i-th heading to try around start: start, +1, -1,
// +2, -2, +3, -3, +4.
func probeOrder(start, i int) int {
	off := (i + 1) / 2
	if i%2 == 0 {
		off = -off
	}
	return (start + off + 8) & 7
}

func (b *Brain) canStep(m *world.Monster, d int) bool {
	return b.World.CanMoveTo(m, m.X, m.Y, d, m.Template.Footprint(), m.Template.Climb)
}

// FindPathTo resolves m.Path.Dir toward (x,y), or away from it when
// escaping. Headings are probed outward from the coarse direction. An
// escape only considers the five headings that do not close in on (x,y).
// Clears the direction and returns false when nothing is walkable.
func (b *Brain) FindPathTo(m *world.Monster, x, y int32, escape bool) bool {
	start := world.HeadingTo(m.X, m.Y, x, y)
	probes := 8
	if escape {
		start = world.Opposite(start)
		probes = 5
	}
	for i := 0; i < probes; i++ {
		d := probeOrder(start, i)
		if b.canStep(m, d) {
			m.Path.Dir = d
			return true
		}
	}
	m.Path.Dir = world.NoDirection
	return false
}

// FindPath resolves a direction toward m.MoveTarget, or away from it when
// escape is set. A target that is gone, out of view or unreachable clears
// both target ids.
func (b *Brain) FindPath(m *world.Monster, escape bool) bool {
	t := b.World.NearestRole(m, m.MoveTarget)
	if t == nil {
		m.ClearTargets()
		m.Path.Dir = world.NoDirection
		return false
	}
	if !escape && m.DistanceTo(t) > m.Template.ViewRange {
		m.ClearTargets()
		m.Path.Dir = world.NoDirection
		return false
	}
	tx, ty := t.Pos()
	if !b.FindPathTo(m, tx, ty, escape) {
		m.ClearTargets()
		return false
	}
	return true
}

// DetectPath is one greedy hill-climbing step: among the walkable headings
// other than exclude, it returns the one whose neighbour tile is strictly
// closer to (gx,gy), or strictly farther when ahead is false. Returns
// world.NoDirection when no heading improves.
func (b *Brain) DetectPath(m *world.Monster, gx, gy int32, exclude int, ahead bool) int {
	best := world.NoDirection
	bestDist := world.DistSq(m.X, m.Y, gx, gy)
	for d := 0; d < 8; d++ {
		if d == exclude || !b.canStep(m, d) {
			continue
		}
		nx, ny := world.Step(m.X, m.Y, d)
		dist := world.DistSq(nx, ny, gx, gy)
		if (ahead && dist < bestDist) || (!ahead && dist > bestDist) {
			best, bestDist = d, dist
		}
	}
	return best
}
