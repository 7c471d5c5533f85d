package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/l1jgo/mobsim/internal/config"
	"github.com/l1jgo/mobsim/internal/core/cooldown"
	"github.com/l1jgo/mobsim/internal/core/rng"
	"github.com/l1jgo/mobsim/internal/data"
	"github.com/l1jgo/mobsim/internal/intent"
	"github.com/l1jgo/mobsim/internal/world"
)

const testMap int16 = 4

type transition struct {
	id       world.ObjectID
	from, to world.Stage
}

type fixture struct {
	t           *testing.T
	maps        *data.MapDataTable
	world       *world.State
	clock       *cooldown.ManualClock
	buf         *intent.Buffer
	brain       *Brain
	nextMob     world.ObjectID
	transitions []transition
}

func newFixture(t *testing.T, src rng.Source) *fixture {
	t.Helper()
	maps := data.NewMapDataTable()
	require.NoError(t, maps.AddMap(data.MapInfo{MapID: testMap, StartX: 0, EndX: 299, StartY: 0, EndY: 299}, data.TileOpen))
	f := &fixture{
		t:     t,
		maps:  maps,
		world: world.NewState(maps),
		clock: cooldown.NewManualClock(time.Unix(1_700_000_000, 0)),
		buf:   intent.NewBuffer(),
	}
	skills := data.NewMobSkillTable(
		&data.MobSkill{SkillID: 1, Name: "fire bolt", Range: 5},
		&data.MobSkill{SkillID: 2, Name: "ice lance", Cooldown: 3000, Range: 5},
		&data.MobSkill{SkillID: 3, Name: "stone skin", Cooldown: 5000, Range: 5},
		&data.MobSkill{SkillID: 4, Name: "drain", Range: 5, MpConsume: 10},
	)
	f.brain = New(Deps{
		World:  f.world,
		Sink:   f.buf,
		RNG:    src,
		Clock:  f.clock,
		Skills: skills,
		Config: config.Defaults().AI,
		OnTransition: func(m *world.Monster, from, to world.Stage) {
			f.transitions = append(f.transitions, transition{id: m.ID(), from: from, to: to})
		},
	})
	return f
}

func hostile() *data.MobTemplate {
	return &data.MobTemplate{
		MobID:       45000,
		Name:        "orc",
		Life:        100,
		AttackRange: 1,
		ViewRange:   10,
		WalkSpeed:   400,
		AttackSpeed: 1000,
		Flags:       data.AtkActive,
	}
}

func (f *fixture) spawn(tmpl *data.MobTemplate, x, y int32, region *world.Region) *world.Monster {
	f.t.Helper()
	f.nextMob++
	m := world.NewMonster(world.MonsterIDBase+f.nextMob, tmpl, region)
	require.True(f.t, f.brain.Initialize(m, testMap, x, y))
	require.NoError(f.t, f.world.Enter(m))
	return m
}

func (f *fixture) player(id world.ObjectID, x, y int32) *world.Player {
	f.t.Helper()
	p := &world.Player{Base: world.Base{OID: id, Map: testMap, X: x, Y: y, HP: 100, MaxHP: 100}}
	require.NoError(f.t, f.world.Enter(p))
	return p
}

func (f *fixture) drain() []intent.Intent {
	return f.buf.Drain()
}

func (f *fixture) step(d time.Duration, ms ...*world.Monster) {
	f.clock.Advance(d)
	for _, m := range ms {
		f.brain.Tick(m)
	}
}

func countOf[T intent.Intent](in []intent.Intent) int {
	n := 0
	for _, i := range in {
		if _, ok := i.(T); ok {
			n++
		}
	}
	return n
}
