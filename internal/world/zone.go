package world

import (
	"sort"

	"github.com/l1jgo/mobsim/internal/data"
)

// Zone is the mutable spatial state of one map: its roles, their cells and
// tile occupancy. A zone is only touched from its map's partition, or from
// the main goroutine while partitions are parked at a barrier.
type Zone struct {
	ID    int16
	maps  *data.MapDataTable
	aoi   *AOIGrid
	grid  *EntityGrid
	roles map[ObjectID]Role

	buf []ObjectID
}

func newZone(id int16, maps *data.MapDataTable) *Zone {
	return &Zone{
		ID:    id,
		maps:  maps,
		aoi:   NewAOIGrid(),
		grid:  newEntityGrid(),
		roles: make(map[ObjectID]Role),
	}
}

func (z *Zone) add(r Role) {
	b := r.base()
	z.roles[b.OID] = r
	z.aoi.Add(b.OID, b.X, b.Y)
	z.grid.Occupy(b.X, b.Y, b.OID)
}

func (z *Zone) remove(r Role) {
	b := r.base()
	delete(z.roles, b.OID)
	z.aoi.Remove(b.OID, b.X, b.Y)
	z.grid.Vacate(b.X, b.Y, b.OID)
}

func (z *Zone) move(r Role, x, y int32, heading int) {
	b := r.base()
	z.aoi.Move(b.OID, b.X, b.Y, x, y)
	z.grid.Move(b.X, b.Y, x, y, b.OID)
	b.X, b.Y = x, y
	b.Facing = heading & 7
}

// Get returns a role on this map, or nil.
func (z *Zone) Get(id ObjectID) Role {
	return z.roles[id]
}

// Len returns the number of roles on the map.
func (z *Zone) Len() int {
	return len(z.roles)
}

// Near returns the roles in the 3x3 cell neighbourhood of (x,y), each once,
// in ascending id order.
func (z *Zone) Near(x, y int32) []Role {
	z.buf = z.aoi.NearbyInto(x, y, z.buf)
	out := make([]Role, 0, len(z.buf))
	for _, id := range z.buf {
		if r := z.roles[id]; r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Monsters returns the monsters on the map in ascending id order.
func (z *Zone) Monsters() []*Monster {
	out := make([]*Monster, 0, len(z.roles))
	for _, r := range z.roles {
		if m, ok := r.(*Monster); ok {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OID < out[j].OID })
	return out
}

// Occupied reports whether a role other than exclude stands on (x,y).
func (z *Zone) Occupied(x, y int32, exclude ObjectID) bool {
	return z.grid.IsOccupied(x, y, exclude)
}
