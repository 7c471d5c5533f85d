// Package intent holds the outbound action requests monsters emit and the
// sinks that carry them. Intents are plain values; nothing here resolves
// damage or talks to clients.
package intent

import "github.com/l1jgo/mobsim/internal/world"

// Frame opcodes for recorded intents.
const (
	OpTick        byte = 0
	OpAttack      byte = 1
	OpSkillAttack byte = 2
	OpMove        byte = 3
	OpSpawn       byte = 4
	OpDespawn     byte = 5
	OpChat        byte = 6
)

// Intent is one outbound action request.
type Intent interface {
	Actor() world.ObjectID
	Opcode() byte
}

// Attack is a plain melee or ranged attack.
type Attack struct {
	AttackerID world.ObjectID
	TargetID   world.ObjectID
	X, Y       int32 // target position when the attack was decided
}

// SkillAttack uses one learned ability on a target.
type SkillAttack struct {
	AttackerID world.ObjectID
	TargetID   world.ObjectID
	SkillID    int32
	X, Y       int32
}

// MoveMode tells the client how to animate a move.
type MoveMode uint8

const (
	Walk MoveMode = iota
	Run
	Teleport
)

func (m MoveMode) String() string {
	switch m {
	case Walk:
		return "walk"
	case Run:
		return "run"
	case Teleport:
		return "teleport"
	}
	return "unknown"
}

// Move reports that an actor now stands at (X,Y) facing Heading.
type Move struct {
	ActorID world.ObjectID
	Heading int
	Mode    MoveMode
	X, Y    int32
}

// Spawn announces a new actor.
type Spawn struct {
	ActorID    world.ObjectID
	TemplateID int32
	MapID      int16
	X, Y       int32
	Heading    int
}

// Despawn removes an actor from view.
type Despawn struct {
	ActorID world.ObjectID
}

// Chat is a line spoken by an actor, such as a guard's taunt.
type Chat struct {
	ActorID world.ObjectID
	Text    string
}

func (a Attack) Actor() world.ObjectID { return a.AttackerID }
func (a SkillAttack) Actor() world.ObjectID { return a.AttackerID }
func (m Move) Actor() world.ObjectID { return m.ActorID }
func (s Spawn) Actor() world.ObjectID { return s.ActorID }
func (d Despawn) Actor() world.ObjectID { return d.ActorID }
func (c Chat) Actor() world.ObjectID { return c.ActorID }

func (Attack) Opcode() byte { return OpAttack }
func (SkillAttack) Opcode() byte { return OpSkillAttack }
func (Move) Opcode() byte { return OpMove }
func (Spawn) Opcode() byte { return OpSpawn }
func (Despawn) Opcode() byte { return OpDespawn }
func (Chat) Opcode() byte { return OpChat }
