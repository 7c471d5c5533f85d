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

func TestCanTransition(t *testing.T) {
	legal := map[world.Stage][]world.Stage{
		world.StageIdle:    {world.StageForward, world.StageAttack, world.StageEscape},
		world.StageForward: {world.StageAttack, world.StageIdle, world.StageForward},
		world.StageAttack:  {world.StageForward, world.StageIdle, world.StageAttack},
		world.StageEscape:  {world.StageForward, world.StageIdle, world.StageEscape},
	}
	all := []world.Stage{world.StageIdle, world.StageForward, world.StageAttack, world.StageEscape}
	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range legal[from] {
				want = want || s == to
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.False(t, CanTransition(world.Stage(9), world.StageIdle))
}

func TestEscape_BelowThresholdOnAttack(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.EscapeLife = 50
	m := f.spawn(tmpl, 100, 100, nil)
	p := f.player(1, 105, 100)

	m.HP = 40
	assert.True(t, f.brain.OnAttacked(m, p))
	assert.Equal(t, world.StageEscape, m.Stage)

	f.step(0, m)
	assert.Equal(t, world.StageEscape, m.Stage)
	assert.Equal(t, int32(99), m.X, "runs away from the attacker")
	out := f.drain()
	require.NotEmpty(t, out)
	mv, ok := out[len(out)-1].(intent.Move)
	require.True(t, ok)
	assert.Equal(t, intent.Run, mv.Mode)
	assert.Equal(t, 6, mv.Heading)
}

func TestEscape_FromAttackPassesThroughIdle(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.EscapeLife = 50
	m := f.spawn(tmpl, 100, 100, nil)
	f.player(1, 101, 100)

	f.step(0, m)
	require.Equal(t, world.StageAttack, m.Stage)
	assert.Equal(t, 1, countOf[intent.Attack](f.drain()), "entry into attack strikes at once")

	f.transitions = nil
	m.HP = 30
	f.step(time.Second, m)
	assert.Equal(t, world.StageEscape, m.Stage)
	require.GreaterOrEqual(t, len(f.transitions), 2)
	assert.Equal(t, transition{m.ID(), world.StageAttack, world.StageIdle}, f.transitions[0])
	assert.Equal(t, transition{m.ID(), world.StageIdle, world.StageEscape}, f.transitions[1])
}

func TestEscape_EdgeTriggeredAndRearmed(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.EscapeLife = 50
	tmpl.ViewRange = 3
	m := f.spawn(tmpl, 100, 100, nil)
	p := f.player(1, 102, 100)

	m.HP = 40
	require.True(t, f.brain.OnAttacked(m, p))
	for i := 0; i < 10 && m.Stage == world.StageEscape; i++ {
		f.step(time.Second, m)
	}
	require.NotEqual(t, world.StageEscape, m.Stage, "escape ends once the threat is out of view")
	assert.False(t, m.EscapeArmed)

	m.HP = 35
	assert.False(t, f.brain.checkEscape(m, f.clock.Now()), "still below the threshold, not re-triggered")

	m.HP = 80
	f.step(time.Second, m)
	assert.True(t, m.EscapeArmed)
}

func TestEscape_NoEscapeFlag(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.EscapeLife = 50
	tmpl.Flags |= data.AtkNoEscape
	m := f.spawn(tmpl, 100, 100, nil)
	p := f.player(1, 105, 100)

	m.HP = 40
	assert.True(t, f.brain.OnAttacked(m, p))
	assert.Equal(t, world.StageForward, m.Stage, "fights back instead")
	f.step(0, m)
	assert.NotEqual(t, world.StageEscape, m.Stage)
}

func TestEscape_GuardTeleportsToAttacker(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.Flags = data.AtkGuard
	tmpl.EscapeLife = 50
	tmpl.ViewRange = 20
	m := f.spawn(tmpl, 100, 100, world.NewRegion(testMap, 100, 100, 5, 5))
	p := f.player(1, 108, 100)

	m.HP = 10
	require.True(t, f.brain.OnAttacked(m, p))
	f.step(0, m)
	assert.Equal(t, world.StageForward, m.Stage)
	assert.Equal(t, int32(1), m.DistanceTo(p))
	assert.Equal(t, p.ID(), m.ActTarget)
	out := f.drain()
	require.NotEmpty(t, out)
	assert.Equal(t, intent.Teleport, out[0].(intent.Move).Mode)
}

func TestForward_GuardLeash(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.Flags = data.AtkGuard
	tmpl.ViewRange = 20
	region := world.NewRegion(testMap, 100, 100, 0, 0)
	m := f.spawn(tmpl, 150, 100, region)
	p := f.player(1, 155, 100)
	p.WantedTicks = 100

	f.step(0, m)
	assert.Equal(t, world.StageIdle, m.Stage)
	assert.Zero(t, m.ActTarget)
	assert.Zero(t, m.MoveTarget)
	assert.Equal(t, [2]int32{100, 100}, [2]int32{m.X, m.Y})
	assert.Equal(t, []transition{
		{m.ID(), world.StageIdle, world.StageForward},
		{m.ID(), world.StageForward, world.StageIdle},
	}, f.transitions)
	out := f.drain()
	require.Len(t, out, 1)
	assert.Equal(t, intent.Teleport, out[0].(intent.Move).Mode)
}

func TestForward_WithinLeashKeepsChasing(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.Flags = data.AtkGuard
	tmpl.ViewRange = 20
	m := f.spawn(tmpl, 140, 100, world.NewRegion(testMap, 100, 100, 0, 0))
	p := f.player(1, 145, 100)
	p.PinkName = true

	f.step(0, m)
	assert.Equal(t, world.StageForward, m.Stage)
	assert.Equal(t, int32(141), m.X)
	assert.Equal(t, p.ID(), m.ActTarget)
}

func TestForward_ChaseThenAttack(t *testing.T) {
	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	p := f.player(1, 103, 100)

	f.step(0, m)
	require.Equal(t, world.StageForward, m.Stage)
	for i := 0; i < 5 && m.Stage == world.StageForward; i++ {
		f.step(time.Second, m)
	}
	assert.Equal(t, world.StageAttack, m.Stage)
	assert.Equal(t, int32(1), m.DistanceTo(p))

	out := f.drain()
	assert.Equal(t, 2, countOf[intent.Move](out))
	require.Equal(t, 1, countOf[intent.Attack](out))
	atk := out[len(out)-1].(intent.Attack)
	assert.Equal(t, p.ID(), atk.TargetID)
}

func TestForward_TargetVanishesFallsBackToIdle(t *testing.T) {
	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	p := f.player(1, 104, 100)

	f.step(0, m)
	require.Equal(t, world.StageForward, m.Stage)
	p.Set(world.StatusInvisible, true)
	f.step(time.Second, m)
	assert.Equal(t, world.StageIdle, m.Stage)
	assert.Zero(t, m.ActTarget)
	assert.Equal(t, world.NoDirection, m.Path.Dir, "leaving forward clears the direction")
}

func TestForward_RangedKiting(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.AttackRange = 4
	m := f.spawn(tmpl, 100, 100, nil)
	p := f.player(1, 101, 100)
	m.Stage = world.StageForward
	m.ActTarget, m.MoveTarget = p.ID(), p.ID()

	f.step(0, m)
	assert.Equal(t, world.StageAttack, m.Stage)
	assert.Equal(t, [2]int32{99, 101}, [2]int32{m.X, m.Y})
	out := f.drain()
	require.Len(t, out, 2)
	assert.Equal(t, intent.Run, out[0].(intent.Move).Mode)
	assert.Equal(t, p.ID(), out[1].(intent.Attack).TargetID)
}

func TestAttack_SidestepsOutOfRestrictedZone(t *testing.T) {
	f := newFixture(t, rng.New(1))
	f.maps.SetTile(testMap, 100, 100, data.TileOpen|data.TileZoneSafety)
	m := f.spawn(hostile(), 100, 100, nil)
	p := f.player(1, 101, 100)

	f.step(0, m)
	assert.Equal(t, world.StageAttack, m.Stage)
	assert.False(t, f.world.IsRestricted(testMap, m.X, m.Y))
	out := f.drain()
	require.Len(t, out, 1)
	assert.Equal(t, intent.Walk, out[0].(intent.Move).Mode)

	f.step(time.Second, m)
	out = f.drain()
	require.Len(t, out, 1)
	assert.Equal(t, p.ID(), out[0].(intent.Attack).TargetID)
}

func TestAttack_TargetLeavesRange(t *testing.T) {
	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	p := f.player(1, 101, 100)

	f.step(0, m)
	require.Equal(t, world.StageAttack, m.Stage)
	f.world.Relocate(p, 104, 100, 0)
	f.step(time.Second, m)
	assert.Equal(t, world.StageForward, m.Stage)
	assert.Equal(t, int32(101), m.X)
}

func TestIdle_PassiveWaitsForAttackCadence(t *testing.T) {
	f := newFixture(t, &rng.Fixed{Values: []int{99}})
	tmpl := hostile()
	tmpl.Flags = data.AtkPassive
	m := f.spawn(tmpl, 100, 100, nil)
	f.player(1, 101, 100)
	m.AttackTimer.Arm(f.clock.Now())

	f.step(0, m)
	assert.Equal(t, world.StageIdle, m.Stage)
	assert.Empty(t, f.drain())
}

func TestIdle_ReturnsHomeFromOutsideRegion(t *testing.T) {
	f := newFixture(t, &rng.Fixed{Values: []int{0}})
	region := world.NewRegion(testMap, 100, 100, 2, 2)
	m := f.spawn(hostile(), 120, 100, region)

	f.step(0, m)
	assert.Equal(t, world.StageForward, m.Stage)
	assert.Equal(t, int32(119), m.X)
	out := f.drain()
	require.Len(t, out, 1)
	assert.Equal(t, intent.Walk, out[0].(intent.Move).Mode)

	for i := 0; i < 40 && m.Stage != world.StageIdle; i++ {
		f.step(time.Second, m)
	}
	assert.Equal(t, world.StageIdle, m.Stage)
	assert.True(t, region.Contains(m.X, m.Y))
	assert.False(t, m.Path.HasGoal)
}

func TestIdle_OrdinaryMobMayStayOutside(t *testing.T) {
	f := newFixture(t, &rng.Fixed{Values: []int{99}})
	region := world.NewRegion(testMap, 100, 100, 2, 2)
	m := f.spawn(hostile(), 120, 100, region)

	f.step(0, m)
	assert.Equal(t, world.StageIdle, m.Stage)
	assert.Equal(t, int32(120), m.X)
}

func TestIdle_WanderStaysInRegion(t *testing.T) {
	f := newFixture(t, rng.New(7))
	f.brain.Config.WanderPercent = 100
	region := world.NewRegion(testMap, 100, 100, 1, 1)
	m := f.spawn(hostile(), 100, 100, region)
	m.RegionTimer.Arm(f.clock.Now())

	for i := 0; i < 8; i++ {
		f.step(time.Second, m)
		assert.True(t, region.Contains(m.X, m.Y), "step %d at %d,%d", i, m.X, m.Y)
	}
}

func TestTick_ParalyzedAndSleepingSkip(t *testing.T) {
	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	f.player(1, 101, 100)

	for _, s := range []world.Status{world.StatusParalyzed, world.StatusSleeping} {
		m.Set(s, true)
		f.step(time.Second, m)
		assert.Equal(t, world.StageIdle, m.Stage)
		assert.Empty(t, f.drain())
		m.Set(s, false)
	}
	f.step(time.Second, m)
	assert.Equal(t, world.StageAttack, m.Stage)
}

func TestTick_DeadOrUnplacedDoesNothing(t *testing.T) {
	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	f.player(1, 101, 100)
	m.Damage(1000, f.clock.Now())
	f.step(time.Second, m)
	assert.Empty(t, f.drain())

	ghost := world.NewMonster(world.MonsterIDBase+500, hostile(), nil)
	ghost.Map = 77
	f.brain.Tick(ghost)
	assert.Empty(t, f.drain())
}

func TestOnAttacked_PassiveFightsBack(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.Flags = data.AtkPassive
	m := f.spawn(tmpl, 100, 100, nil)
	p := f.player(1, 103, 100)

	assert.True(t, f.brain.OnAttacked(m, p))
	assert.Equal(t, world.StageForward, m.Stage)
	assert.Equal(t, p.ID(), m.LastAttacker)
	for i := 0; i < 6 && m.Stage != world.StageAttack; i++ {
		f.step(time.Second, m)
	}
	assert.Equal(t, world.StageAttack, m.Stage)
	assert.Equal(t, 1, countOf[intent.Attack](f.drain()))
}

func TestOnAttacked_IgnoresBadAttackers(t *testing.T) {
	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	assert.False(t, f.brain.OnAttacked(m, nil))
	assert.False(t, f.brain.OnAttacked(m, m))

	far := &world.Player{Base: world.Base{OID: 9, Map: 5, HP: 10, MaxHP: 10}}
	assert.False(t, f.brain.OnAttacked(m, far), "other map")
	assert.Zero(t, m.LastAttacker)
}

func TestOnAttacked_LockOneKeepsTarget(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.Flags |= data.AtkLockOne
	m := f.spawn(tmpl, 100, 100, nil)
	first := f.player(1, 104, 100)
	second := f.player(2, 102, 100)
	m.ActTarget, m.MoveTarget = first.ID(), first.ID()

	assert.False(t, f.brain.OnAttacked(m, second))
	assert.Equal(t, first.ID(), m.ActTarget)

	plain := f.spawn(hostile(), 100, 110, nil)
	plain.ActTarget, plain.MoveTarget = first.ID(), first.ID()
	f.world.Relocate(second, 101, 110, 0)
	assert.True(t, f.brain.OnAttacked(plain, second))
	assert.Equal(t, second.ID(), plain.ActTarget)
	assert.Equal(t, world.StageAttack, plain.Stage)
}

func TestInitialize(t *testing.T) {
	f := newFixture(t, rng.New(1))
	f.maps.SetTile(testMap, 50, 50, 0)
	f.player(1, 60, 60)

	assert.False(t, f.brain.Initialize(nil, testMap, 10, 10))
	assert.False(t, f.brain.Initialize(&world.Monster{}, testMap, 10, 10), "no template")
	m := world.NewMonster(world.MonsterIDBase, hostile(), nil)
	assert.False(t, f.brain.Initialize(m, 9, 10, 10), "unknown map")
	assert.False(t, f.brain.Initialize(m, testMap, 50, 50), "wall")
	assert.False(t, f.brain.Initialize(m, testMap, 60, 60), "occupied")

	tmpl := hostile()
	tmpl.MagicType = 1
	tmpl.Skills = []int32{2, 1, 999}
	tmpl.Mana = 30
	m = world.NewMonster(world.MonsterIDBase+1, tmpl, nil)
	m.BonusSkill = 3
	require.True(t, f.brain.Initialize(m, testMap, 10, 10))
	assert.Equal(t, world.StageIdle, m.Stage)
	assert.True(t, m.EscapeArmed)
	assert.Equal(t, int32(30), m.MP)
	require.Len(t, m.Skills, 3, "unknown and duplicate skills dropped")
	assert.Equal(t, int32(1), m.Skills[0].SkillID)
	assert.True(t, m.Skills[0].Exclusive)
	assert.Equal(t, int32(2), m.Skills[1].SkillID)
	assert.False(t, m.Skills[1].Exclusive)
	assert.Equal(t, int32(3), m.Skills[2].SkillID)
	assert.Equal(t, 3*time.Second, m.Skills[1].Cooldown.Duration())
}
