package world

// Status is the set of transient effects on a role.
type Status uint8

const (
	StatusInvisible Status = 1 << iota
	StatusFlying
	StatusParalyzed
	StatusSleeping
)

// Positioned is anything placed on a map grid.
type Positioned interface {
	ID() ObjectID
	MapID() int16
	Pos() (x, y int32)
	Heading() int
}

// Alive exposes life, mana and status effects.
type Alive interface {
	Life() int32
	MaxLife() int32
	Mana() int32
	MaxMana() int32
	Dead() bool
	Status() Status
	Has(s Status) bool
}

// Combatant exposes battle attributes.
type Combatant interface {
	Kind() Kind
	Level() int16
}

// Role is the contract every entity in the world implements.
type Role interface {
	Positioned
	Alive
	Combatant
	base() *Base
}

// Base holds the state shared by every role kind. Position fields are
// changed only through State so the spatial indexes stay in sync.
type Base struct {
	OID     ObjectID
	Map     int16
	X, Y    int32
	Facing  int
	HP      int32
	MaxHP   int32
	MP      int32
	MaxMP   int32
	Lvl     int16
	Effects Status
}

func (b *Base) base() *Base { return b }
func (b *Base) ID() ObjectID { return b.OID }
func (b *Base) MapID() int16 { return b.Map }
func (b *Base) Pos() (int32, int32) { return b.X, b.Y }
func (b *Base) Heading() int { return b.Facing }
func (b *Base) Life() int32 { return b.HP }
func (b *Base) MaxLife() int32 { return b.MaxHP }
func (b *Base) Mana() int32 { return b.MP }
func (b *Base) MaxMana() int32 { return b.MaxMP }
func (b *Base) Dead() bool { return b.HP <= 0 }
func (b *Base) Status() Status { return b.Effects }
func (b *Base) Level() int16 { return b.Lvl }
func (b *Base) Has(s Status) bool { return b.Effects&s != 0 }

// Set adds or removes status effects.
func (b *Base) Set(s Status, on bool) {
	if on {
		b.Effects |= s
	} else {
		b.Effects &^= s
	}
}

// LifePercent returns current life as a percentage of max life.
func (b *Base) LifePercent() int {
	if b.MaxHP <= 0 {
		return 0
	}
	return int(int64(b.HP) * 100 / int64(b.MaxHP))
}

// DistanceTo returns the Chebyshev distance to another role.
func (b *Base) DistanceTo(r Positioned) int32 {
	x, y := r.Pos()
	return Chebyshev(b.X, b.Y, x, y)
}
