package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/mobsim/internal/core/rng"
	"github.com/l1jgo/mobsim/internal/data"
	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

// A crowded map driven for a while: every stage change is legal, every
// freshly chosen target is alive on the same map, and no skill fires
// before its cooldown has run out.
func TestSimulation_Invariants(t *testing.T) {
	src := rng.New(2024)
	f := newFixture(t, src)

	kinds := []data.AttackFlags{
		data.AtkActive,
		data.AtkPassive,
		data.AtkGuard,
		data.AtkGuard | data.AtkPkKiller,
		data.AtkEvilKiller | data.AtkActive,
		data.AtkRighteous,
		data.AtkActive | data.AtkLockUser,
		data.AtkActive | data.AtkFixed,
	}
	var mobs []*world.Monster
	for i := 0; i < 24; i++ {
		tmpl := hostile()
		tmpl.MobID = int32(45000 + i)
		tmpl.Flags = kinds[i%len(kinds)]
		tmpl.EscapeLife = 30 * (i % 2)
		tmpl.AttackRange = int32(1 + i%4)
		tmpl.Skills = []int32{2, 3}
		x := int32(src.Between(80, 120))
		y := int32(src.Between(80, 120))
		if !f.world.CanStandAt(testMap, x, y) {
			continue
		}
		region := world.NewRegion(testMap, x, y, 5, 5)
		mobs = append(mobs, f.spawn(tmpl, x, y, region))
	}
	var players []*world.Player
	for i := 1; i <= 12; i++ {
		x := int32(src.Between(80, 120))
		y := int32(src.Between(80, 120))
		if !f.world.CanStandAt(testMap, x, y) {
			continue
		}
		p := f.player(world.ObjectID(i), x, y)
		p.Lawful = int32(src.Between(-100, 100))
		p.PKCount = int32(src.Intn(7))
		p.PinkName = src.Intn(4) == 0
		players = append(players, p)
	}
	require.NotEmpty(t, mobs)
	require.NotEmpty(t, players)

	f.brain.OnTransition = func(m *world.Monster, from, to world.Stage) {
		assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
	}

	lastUse := map[[2]int32]time.Time{}
	skills := f.brain.Skills
	for tick := 0; tick < 600; tick++ {
		f.clock.Advance(200 * time.Millisecond)
		now := f.clock.Now()

		if tick%10 == 0 {
			for _, p := range players {
				d := src.Intn(8)
				nx, ny := world.Step(p.X, p.Y, d)
				if f.world.CanStandAt(testMap, nx, ny) {
					f.world.Relocate(p, nx, ny, d)
				}
			}
		}
		if tick%25 == 0 {
			m := mobs[src.Intn(len(mobs))]
			p := players[src.Intn(len(players))]
			m.Damage(int32(src.Between(5, 30)), now)
			f.brain.OnAttacked(m, p)
		}

		for _, m := range mobs {
			prev := m.ActTarget
			f.brain.Tick(m)
			if m.ActTarget != 0 && m.ActTarget != prev {
				tgt := f.world.Resolve(m.ActTarget)
				require.NotNil(t, tgt)
				assert.False(t, tgt.Dead())
				assert.Equal(t, m.MapID(), tgt.MapID())
				assert.NotEqual(t, m.ID(), tgt.ID())
			}
		}

		for _, in := range f.drain() {
			sa, ok := in.(intent.SkillAttack)
			if !ok {
				continue
			}
			key := [2]int32{int32(sa.AttackerID), sa.SkillID}
			if last, seen := lastUse[key]; seen {
				cd := skills.Get(sa.SkillID).CooldownDuration()
				assert.False(t, now.Before(last.Add(cd)), "skill %d reused early", sa.SkillID)
			}
			lastUse[key] = now
		}
	}
	assert.NotEmpty(t, lastUse, "skills were used")
}
