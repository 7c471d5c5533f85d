package world

import (
	"testing"
	"time"

	"github.com/l1jgo/mobsim/internal/core/rng"
	"github.com/l1jgo/mobsim/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMap(t *testing.T, id int16) *data.MapDataTable {
	t.Helper()
	maps := data.NewMapDataTable()
	require.NoError(t, maps.AddMap(data.MapInfo{MapID: id, StartX: 0, EndX: 199, StartY: 0, EndY: 199}, data.TileOpen))
	return maps
}

func newPlayer(id ObjectID, mapID int16, x, y int32) *Player {
	return &Player{Base: Base{OID: id, Map: mapID, X: x, Y: y, HP: 100, MaxHP: 100}}
}

func TestKindOf(t *testing.T) {
	cases := map[ObjectID]Kind{
		0:           KindUnknown,
		1:           KindPlayer,
		99_999_999:  KindPlayer,
		100_000_000: KindUnknown,
		200_000_000: KindMonster,
		299_999_999: KindMonster,
		300_000_000: KindNpc,
		400_000_001: KindPet,
		450_000_000: KindTrap,
		500_000_000: KindItem,
		900_000_000: KindUnknown,
	}
	for id, want := range cases {
		assert.Equal(t, want, KindOf(id), "id %d", id)
	}
	assert.Equal(t, "monster", KindMonster.String())
}

func TestHeadingHelpers(t *testing.T) {
	assert.Equal(t, 2, HeadingTo(0, 0, 5, 0))
	assert.Equal(t, 5, HeadingTo(0, 0, -3, 7))
	assert.Equal(t, 0, HeadingTo(3, 3, 3, 3))
	assert.Equal(t, 6, Opposite(2))
	assert.Equal(t, 1, Opposite(5))
	x, y := Step(10, 10, 7)
	assert.Equal(t, int32(9), x)
	assert.Equal(t, int32(9), y)
	assert.Equal(t, int32(5), Chebyshev(0, 0, 3, -5))
	assert.Equal(t, int64(25), DistSq(0, 0, 3, 4))
}

func TestRegion(t *testing.T) {
	r := NewRegion(4, 100, 100, 5, 2)
	assert.True(t, r.Contains(95, 98))
	assert.False(t, r.Contains(94, 100))
	cx, cy := r.Center()
	assert.Equal(t, [2]int32{100, 100}, [2]int32{cx, cy})
	w, h := r.Extent()
	assert.Equal(t, [2]int32{11, 5}, [2]int32{w, h})

	assert.Equal(t, int32(0), r.Outside(100, 100))
	assert.Equal(t, int32(3), r.Outside(108, 101))
	assert.Equal(t, int32(10), r.Outside(100, 112))
	assert.False(t, r.DistanceOutside(108, 100, 3))
	assert.True(t, r.DistanceOutside(109, 100, 3))

	src := rng.New(1)
	for i := 0; i < 200; i++ {
		x, y := r.RandomPoint(src)
		require.True(t, r.Contains(x, y))
	}
}

func TestMonster_DamageAndHeal(t *testing.T) {
	tmpl := &data.MobTemplate{MobID: 1, Life: 50, Mana: 10, Level: 3, Flying: true}
	m := NewMonster(MonsterIDBase, tmpl, nil)
	assert.Equal(t, NoDirection, m.Path.Dir)
	assert.True(t, m.Has(StatusFlying))
	assert.Equal(t, 100, m.LifePercent())

	now := time.Unix(1000, 0)
	m.ActTarget = 5
	assert.False(t, m.Damage(30, now))
	assert.Equal(t, 40, m.LifePercent())
	m.Heal(100)
	assert.Equal(t, int32(50), m.HP)

	assert.True(t, m.Damage(80, now))
	assert.True(t, m.Dead())
	assert.Equal(t, now, m.DiedAt)
	assert.Zero(t, m.ActTarget)
	assert.False(t, m.Damage(1, now), "already dead")
}

func TestPlayerAlignment(t *testing.T) {
	p := newPlayer(1, 4, 0, 0)
	assert.True(t, p.Virtuous())
	assert.False(t, p.Criminal())
	p.Lawful = -1
	p.PKCount = PlayerKillerThreshold
	p.PinkName = true
	assert.False(t, p.Virtuous())
	assert.True(t, p.PlayerKiller())
	assert.True(t, p.Criminal())
}

func TestState_EnterLeaveAndNear(t *testing.T) {
	s := NewState(openMap(t, 4))

	far := newPlayer(30, 4, 150, 150)
	a := newPlayer(20, 4, 10, 10)
	b := newPlayer(10, 4, 25, 12)
	for _, p := range []*Player{far, a, b} {
		require.NoError(t, s.Enter(p))
	}
	assert.Error(t, s.Enter(a), "duplicate id")
	assert.Error(t, s.Enter(newPlayer(40, 9, 0, 0)), "unknown map")

	near := s.RolesNear(4, 12, 12)
	require.Len(t, near, 2)
	assert.Equal(t, ObjectID(10), near[0].ID(), "ascending id order")
	assert.Equal(t, ObjectID(20), near[1].ID())
	assert.Nil(t, s.RolesNear(9, 0, 0))

	s.Relocate(far, 14, 14, 3)
	assert.Len(t, s.RolesNear(4, 12, 12), 3)
	assert.Equal(t, 3, far.Heading())
	assert.False(t, s.CanStandAt(4, 14, 14))
	assert.True(t, s.CanStandAt(4, 150, 150))

	assert.Equal(t, a, s.Leave(20))
	assert.Nil(t, s.Leave(20))
	assert.Nil(t, s.Resolve(20))
	assert.Len(t, s.RolesNear(4, 12, 12), 2)
	assert.Equal(t, 2, s.Zone(4).Len())
}

func TestState_NearestRole(t *testing.T) {
	maps := openMap(t, 4)
	require.NoError(t, maps.AddMap(data.MapInfo{MapID: 5, EndX: 10, EndY: 10}, data.TileOpen))
	s := NewState(maps)

	self := newPlayer(1, 4, 0, 0)
	same := newPlayer(2, 4, 3, 3)
	other := newPlayer(3, 5, 3, 3)
	for _, p := range []*Player{self, same, other} {
		require.NoError(t, s.Enter(p))
	}
	assert.Equal(t, Role(same), s.NearestRole(self, 2))
	assert.Nil(t, s.NearestRole(self, 3), "other map")
	assert.Nil(t, s.NearestRole(self, 99))
	same.HP = 0
	assert.Nil(t, s.NearestRole(self, 2), "dead")
	assert.NotNil(t, s.Resolve(3))
}

func TestState_CanMoveTo(t *testing.T) {
	maps := openMap(t, 4)
	maps.SetTile(4, 51, 50, 0)
	maps.SetTile(4, 50, 51, data.TileOpen|data.TileLedge)
	s := NewState(maps)

	mover := newPlayer(1, 4, 50, 50)
	blocker := newPlayer(2, 4, 49, 50)
	require.NoError(t, s.Enter(mover))
	require.NoError(t, s.Enter(blocker))

	assert.False(t, s.CanMoveTo(mover, 50, 50, 2, 1, 0), "wall")
	assert.False(t, s.CanMoveTo(mover, 50, 50, 6, 1, 0), "occupied")
	assert.False(t, s.CanMoveTo(mover, 50, 50, 4, 1, 0), "ledge")
	assert.True(t, s.CanMoveTo(mover, 50, 50, 4, 1, 1), "climber")
	assert.True(t, s.CanMoveTo(mover, 50, 50, 0, 1, 0))
	assert.False(t, s.CanMoveTo(mover, 50, 50, 8, 1, 0))

	// a 2x2 footprint anchored at (50,50) covers the wall at (51,50)
	assert.False(t, s.CanMoveTo(mover, 50, 50, 0, 2, 0))
}

func TestState_IsRestricted(t *testing.T) {
	maps := openMap(t, 4)
	maps.SetTile(4, 7, 7, data.TileOpen|data.TileZoneSafety)
	s := NewState(maps)
	assert.True(t, s.IsRestricted(4, 7, 7))
	assert.False(t, s.IsRestricted(4, 8, 7))
}

func TestZone_Monsters(t *testing.T) {
	s := NewState(openMap(t, 4))
	tmpl := &data.MobTemplate{MobID: 1, Life: 10}
	for _, id := range []ObjectID{MonsterIDBase + 2, MonsterIDBase} {
		m := NewMonster(id, tmpl, nil)
		m.Map, m.X, m.Y = 4, int32(id-MonsterIDBase), 0
		require.NoError(t, s.Enter(m))
	}
	require.NoError(t, s.Enter(newPlayer(1, 4, 9, 9)))
	ms := s.Zone(4).Monsters()
	require.Len(t, ms, 2)
	assert.Equal(t, MonsterIDBase, ms[0].ID())
}
