package event

import "time"

// Monster lifecycle events. Consumed by the spawn ledger and by logging.

type MonsterSpawned struct {
	ObjectID   int32
	TemplateID int32
	GroupID    int32
	MapID      int16
	X, Y       int32
	At         time.Time
}

type MonsterDespawned struct {
	ObjectID   int32
	TemplateID int32
	GroupID    int32
	MapID      int16
	X, Y       int32
	Killed     bool // false when removed by map unload
	At         time.Time
}
