package world

// ObjectID identifies a role world-wide. The numeric range encodes the kind.
type ObjectID int32

// Kind is the variant tag derived from an ObjectID.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPlayer
	KindMonster
	KindNpc
	KindPet
	KindTrap
	KindItem
)

// Object id ranges, half open. Other components rely on these never overlapping.
const (
	PlayerIDBase  ObjectID = 1
	PlayerIDLimit ObjectID = 100_000_000

	MonsterIDBase  ObjectID = 200_000_000
	MonsterIDLimit ObjectID = 300_000_000

	NpcIDBase  ObjectID = 300_000_000
	NpcIDLimit ObjectID = 400_000_000

	PetIDBase  ObjectID = 400_000_000
	PetIDLimit ObjectID = 450_000_000

	TrapIDBase  ObjectID = 450_000_000
	TrapIDLimit ObjectID = 500_000_000

	ItemIDBase  ObjectID = 500_000_000
	ItemIDLimit ObjectID = 900_000_000
)

// KindOf returns the kind encoded in id.
func KindOf(id ObjectID) Kind {
	switch {
	case id >= PlayerIDBase && id < PlayerIDLimit:
		return KindPlayer
	case id >= MonsterIDBase && id < MonsterIDLimit:
		return KindMonster
	case id >= NpcIDBase && id < NpcIDLimit:
		return KindNpc
	case id >= PetIDBase && id < PetIDLimit:
		return KindPet
	case id >= TrapIDBase && id < TrapIDLimit:
		return KindTrap
	case id >= ItemIDBase && id < ItemIDLimit:
		return KindItem
	}
	return KindUnknown
}

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindMonster:
		return "monster"
	case KindNpc:
		return "npc"
	case KindPet:
		return "pet"
	case KindTrap:
		return "trap"
	case KindItem:
		return "item"
	}
	return "unknown"
}
