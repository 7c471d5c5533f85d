package ai

import (
	"time"

	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

// move takes one step in heading d and rearms the move timer for the mode.
func (b *Brain) move(m *world.Monster, d int, mode intent.MoveMode, now time.Time) {
	nx, ny := world.Step(m.X, m.Y, d)
	b.World.Relocate(m, nx, ny, d)
	interval := m.Template.Walk(b.Config.DefaultWalkSpeed)
	if mode == intent.Run {
		interval = m.Template.Run(b.Config.DefaultWalkSpeed)
	}
	m.MoveTimer.Rearm(now, interval)
	b.Sink.Emit(intent.Move{ActorID: m.ID(), Heading: d, Mode: mode, X: nx, Y: ny})
}

func (b *Brain) teleport(m *world.Monster, x, y int32, heading int, now time.Time) {
	b.World.Relocate(m, x, y, heading)
	m.MoveTimer.Rearm(now, m.Template.Walk(b.Config.DefaultWalkSpeed))
	b.Sink.Emit(intent.Move{ActorID: m.ID(), Heading: m.Facing, Mode: intent.Teleport, X: x, Y: y})
}

// teleportNear puts m on a free tile next to t, facing it.
func (b *Brain) teleportNear(m *world.Monster, t world.Role, now time.Time) bool {
	tx, ty := t.Pos()
	for d := 0; d < 8; d++ {
		nx, ny := world.Step(tx, ty, d)
		if b.World.CanStandAt(m.MapID(), nx, ny) {
			b.teleport(m, nx, ny, world.Opposite(d), now)
			return true
		}
	}
	return false
}

// returnHome puts m back on a free tile as close to its region centre as
// a small spiral search finds.
func (b *Brain) returnHome(m *world.Monster, now time.Time) bool {
	cx, cy := m.Region.Center()
	for r := int32(0); r <= 3; r++ {
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				if dx != -r && dx != r && dy != -r && dy != r {
					continue
				}
				x, y := cx+dx, cy+dy
				if b.World.CanStandAt(m.MapID(), x, y) {
					b.teleport(m, x, y, m.Facing, now)
					return true
				}
			}
		}
	}
	return false
}
