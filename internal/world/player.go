package world

// PlayerKillerThreshold is the pk count at which a player counts as a
// player killer.
const PlayerKillerThreshold = 5

// Player is the slice of a player character the monster engine reads.
// Owned by the partition of the map the player is on.
type Player struct {
	Base
	Name        string
	Lawful      int32
	PKCount     int32
	WantedTicks int  // >0 = wanted by guards
	PinkName    bool // temporary red name after attacking a blue player
}

var _ Role = (*Player)(nil)

func (p *Player) Kind() Kind { return KindPlayer }

// Virtuous players have non-negative lawful.
func (p *Player) Virtuous() bool { return p.Lawful >= 0 }

// PlayerKiller reports whether the player has reached the pk threshold.
func (p *Player) PlayerKiller() bool { return p.PKCount >= PlayerKillerThreshold }

// Criminal players are hunted by guards.
func (p *Player) Criminal() bool { return p.WantedTicks > 0 || p.PinkName }
