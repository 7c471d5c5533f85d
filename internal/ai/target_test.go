package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/mobsim/internal/core/rng"
	"github.com/l1jgo/mobsim/internal/data"
	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

func TestAcquire_DistanceTieGoesToLowestID(t *testing.T) {
	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	f.player(7, 103, 100)
	f.player(3, 97, 100)

	require.True(t, f.brain.acquire(m))
	assert.Equal(t, world.ObjectID(3), m.ActTarget)
	assert.Equal(t, world.ObjectID(3), m.MoveTarget)
}

func TestAcquire_NearestWins(t *testing.T) {
	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	f.player(1, 106, 100)
	f.player(2, 100, 104)
	f.player(3, 111, 100) // beyond view

	require.True(t, f.brain.acquire(m))
	assert.Equal(t, world.ObjectID(2), m.ActTarget)
}

func TestAcquire_UrgentMatchEndsScan(t *testing.T) {
	cases := []struct {
		name  string
		flags data.AttackFlags
		setup func(f *fixture)
		want  world.ObjectID
	}{
		{
			name:  "pk killer stops at the first pk even with a closer criminal",
			flags: data.AtkGuard | data.AtkPkKiller,
			setup: func(f *fixture) {
				f.player(2, 102, 100).WantedTicks = 30
				f.player(5, 106, 100).PKCount = 5
			},
			want: 5,
		},
		{
			name:  "guard alone ignores the pk",
			flags: data.AtkGuard,
			setup: func(f *fixture) {
				f.player(2, 102, 100).WantedTicks = 30
				f.player(5, 106, 100).PKCount = 5
			},
			want: 2,
		},
		{
			name:  "urgent match found first beats a closer later candidate",
			flags: data.AtkGuard | data.AtkPkKiller,
			setup: func(f *fixture) {
				f.player(2, 106, 100).PKCount = 9
				f.player(5, 101, 100).PinkName = true
			},
			want: 2,
		},
		{
			name:  "evil killer stops at the first negative lawful",
			flags: data.AtkEvilKiller | data.AtkActive,
			setup: func(f *fixture) {
				f.player(1, 101, 100)
				f.player(4, 108, 100).Lawful = -500
			},
			want: 4,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, rng.New(1))
			tmpl := hostile()
			tmpl.Flags = tc.flags
			m := f.spawn(tmpl, 100, 100, nil)
			tc.setup(f)
			require.True(t, f.brain.acquire(m))
			assert.Equal(t, tc.want, m.ActTarget)
		})
	}
}

func TestAcquire_NobodyClearsTargets(t *testing.T) {
	f := newFixture(t, rng.New(1))
	tmpl := hostile()
	tmpl.Flags = data.AtkPassive
	m := f.spawn(tmpl, 100, 100, nil)
	f.player(1, 101, 100)
	m.ActTarget, m.MoveTarget = 99, 99

	assert.False(t, f.brain.acquire(m))
	assert.Zero(t, m.ActTarget)
	assert.Zero(t, m.MoveTarget)
}

func TestAcquire_SkipsDeadAndInvisible(t *testing.T) {
	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	f.player(1, 101, 100).HP = 0
	f.player(2, 102, 100).Set(world.StatusInvisible, true)
	f.player(3, 105, 100)

	require.True(t, f.brain.acquire(m))
	assert.Equal(t, world.ObjectID(3), m.ActTarget)
}

func TestAcquire_LockUserKeepsTarget(t *testing.T) {
	for _, flag := range []data.AttackFlags{data.AtkLockUser, data.AtkLockOne} {
		f := newFixture(t, rng.New(1))
		tmpl := hostile()
		tmpl.Flags |= flag
		m := f.spawn(tmpl, 100, 100, nil)
		f.player(1, 105, 100)
		f.player(2, 101, 100)
		m.ActTarget = 1

		require.True(t, f.brain.acquire(m))
		assert.Equal(t, world.ObjectID(1), m.ActTarget, flag.String())
		assert.Equal(t, world.ObjectID(1), m.MoveTarget, flag.String())
	}

	f := newFixture(t, rng.New(1))
	m := f.spawn(hostile(), 100, 100, nil)
	f.player(1, 105, 100)
	f.player(2, 101, 100)
	m.ActTarget = 1
	require.True(t, f.brain.acquire(m))
	assert.Equal(t, world.ObjectID(2), m.ActTarget, "without a lock the nearest wins")
}

func TestEligible(t *testing.T) {
	f := newFixture(t, rng.New(1))
	mob := func(flags data.AttackFlags) *world.Monster {
		tmpl := hostile()
		tmpl.Flags = flags
		return world.NewMonster(world.MonsterIDBase+100, tmpl, nil)
	}
	other := func(flags data.AttackFlags) *world.Monster {
		tmpl := hostile()
		tmpl.Flags = flags
		return world.NewMonster(world.MonsterIDBase+200, tmpl, nil)
	}
	player := func(mut func(p *world.Player)) *world.Player {
		p := &world.Player{Base: world.Base{OID: 10, Map: testMap, HP: 10, MaxHP: 10}}
		if mut != nil {
			mut(p)
		}
		return p
	}
	flying := func(p *world.Player) { p.Set(world.StatusFlying, true) }

	cases := []struct {
		name       string
		m          *world.Monster
		c          world.Role
		lastHit    world.ObjectID
		ok, urgent bool
	}{
		{"hostile vs player", mob(data.AtkActive), player(nil), 0, true, false},
		{"passive vs player", mob(data.AtkPassive), player(nil), 0, false, false},
		{"passive vs its attacker", mob(data.AtkPassive), player(nil), 10, true, false},
		{"flying player out of reach", mob(data.AtkActive), player(flying), 0, false, false},
		{"flying attacker out of reach", mob(data.AtkPassive), player(flying), 10, false, false},
		{"winged mob reaches flyers", mob(data.AtkActive | data.AtkWing), player(flying), 0, true, false},
		{"guard vs law abiding player", mob(data.AtkGuard), player(nil), 0, false, false},
		{"guard vs criminal", mob(data.AtkGuard), player(func(p *world.Player) { p.WantedTicks = 1 }), 0, true, false},
		{"guard pk killer vs criminal pk", mob(data.AtkGuard | data.AtkPkKiller), player(func(p *world.Player) { p.PKCount = 5; p.PinkName = true }), 0, true, true},
		{"pk killer vs pk", mob(data.AtkPkKiller), player(func(p *world.Player) { p.PKCount = 5 }), 0, true, true},
		{"pk killer vs innocent", mob(data.AtkPkKiller | data.AtkActive), player(nil), 0, false, false},
		{"evil killer vs chaotic", mob(data.AtkEvilKiller), player(func(p *world.Player) { p.Lawful = -1 }), 0, true, true},
		{"evil killer vs neutral", mob(data.AtkEvilKiller), player(nil), 0, false, false},
		{"righteous vs evil mob", mob(data.AtkRighteous), other(data.AtkActive), 0, true, false},
		{"evil vs righteous mob", mob(data.AtkActive), other(data.AtkRighteous), 0, true, false},
		{"evil vs evil mob", mob(data.AtkActive), other(data.AtkActive), 0, false, false},
		{"righteous vs passive mob", mob(data.AtkRighteous), other(data.AtkPassive), 0, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.m.LastAttacker = tc.lastHit
			ok, urgent := f.brain.eligible(tc.m, tc.c)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.urgent, urgent)
		})
	}
}

type fakeTaunter struct {
	calls int
}

func (ft *fakeTaunter) Taunt(m *world.Monster, target world.Role) string {
	ft.calls++
	return "halt, criminal"
}

func TestAcquire_TauntsNewTargetOnce(t *testing.T) {
	f := newFixture(t, rng.New(1))
	ft := &fakeTaunter{}
	f.brain.Taunter = ft

	tmpl := hostile()
	tmpl.Flags = data.AtkGuard
	guard := f.spawn(tmpl, 100, 100, nil)
	f.player(1, 103, 100).PinkName = true

	require.True(t, f.brain.acquire(guard))
	require.True(t, f.brain.acquire(guard))
	assert.Equal(t, 1, ft.calls)
	out := f.drain()
	require.Len(t, out, 1)
	chat := out[0].(intent.Chat)
	assert.Equal(t, guard.ID(), chat.ActorID)
	assert.Equal(t, "halt, criminal", chat.Text)

	orc := f.spawn(hostile(), 100, 110, nil)
	f.player(2, 101, 110)
	require.True(t, f.brain.acquire(orc))
	assert.Equal(t, 1, ft.calls, "ordinary mobs stay silent")
	assert.Empty(t, f.drain())
}

func TestAcquire_NoRepeatTauntAfterTargetLost(t *testing.T) {
	f := newFixture(t, rng.New(1))
	ft := &fakeTaunter{}
	f.brain.Taunter = ft

	tmpl := hostile()
	tmpl.Flags = data.AtkGuard
	guard := f.spawn(tmpl, 100, 100, nil)
	p := f.player(1, 103, 100)
	p.PinkName = true

	require.True(t, f.brain.acquire(guard))
	require.Equal(t, 1, ft.calls)

	p.Set(world.StatusInvisible, true)
	require.False(t, f.brain.acquire(guard))
	assert.Zero(t, guard.ActTarget)

	p.Set(world.StatusInvisible, false)
	require.True(t, f.brain.acquire(guard))
	assert.Equal(t, p.ID(), guard.ActTarget)
	assert.Equal(t, 1, ft.calls, "same criminal is not shouted at twice")

	q := f.player(2, 101, 100)
	q.PinkName = true
	require.True(t, f.brain.acquire(guard))
	assert.Equal(t, q.ID(), guard.ActTarget)
	assert.Equal(t, 2, ft.calls)
}
