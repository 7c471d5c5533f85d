package world

import (
	"fmt"

	"github.com/l1jgo/mobsim/internal/data"
)

// State is the world query surface: per-map zones over static tile data
// plus the global registry.
type State struct {
	maps     *data.MapDataTable
	zones    map[int16]*Zone
	Registry *Registry
}

// NewState creates a zone for every loaded map.
func NewState(maps *data.MapDataTable) *State {
	s := &State{
		maps:     maps,
		zones:    make(map[int16]*Zone),
		Registry: NewRegistry(),
	}
	for _, id := range maps.MapIDs() {
		s.zones[id] = newZone(id, maps)
	}
	return s
}

// Maps returns the static tile table.
func (s *State) Maps() *data.MapDataTable {
	return s.maps
}

// Zone returns the zone for mapID, or nil.
func (s *State) Zone(mapID int16) *Zone {
	return s.zones[mapID]
}

// HasMap reports whether mapID is loaded.
func (s *State) HasMap(mapID int16) bool {
	return s.zones[mapID] != nil
}

// Enter places r on its map and registers it.
func (s *State) Enter(r Role) error {
	z := s.zones[r.MapID()]
	if z == nil {
		return fmt.Errorf("enter %d: map %d not loaded", r.ID(), r.MapID())
	}
	if err := s.Registry.Register(r); err != nil {
		return fmt.Errorf("enter: %w", err)
	}
	z.add(r)
	return nil
}

// Leave removes id from the world and returns it, or nil if unknown.
func (s *State) Leave(id ObjectID) Role {
	r := s.Registry.Unregister(id)
	if r == nil {
		return nil
	}
	if z := s.zones[r.MapID()]; z != nil {
		z.remove(r)
	}
	return r
}

// Relocate moves r to (x,y) on its current map and sets its heading.
func (s *State) Relocate(r Role, x, y int32, heading int) {
	z := s.zones[r.MapID()]
	if z == nil {
		return
	}
	z.move(r, x, y, heading)
}

// RolesNear returns the roles in the 3x3 cell neighbourhood of (x,y) on
// mapID in ascending id order.
func (s *State) RolesNear(mapID int16, x, y int32) []Role {
	z := s.zones[mapID]
	if z == nil {
		return nil
	}
	return z.Near(x, y)
}

// CanMoveTo reports whether mover, standing with its anchor at (x,y), may
// take one step in heading. Every tile of the size x size footprint must be
// passable in that direction, ledges need climb > 0, and the destination
// anchor must not be held by another role.
func (s *State) CanMoveTo(mover Role, x, y int32, heading, size, climb int) bool {
	if heading < 0 || heading > 7 {
		return false
	}
	mapID := mover.MapID()
	z := s.zones[mapID]
	if z == nil {
		return false
	}
	if size < 1 {
		size = 1
	}
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			fx, fy := x+int32(i), y+int32(j)
			if !s.maps.IsPassable(mapID, fx, fy, heading) {
				return false
			}
			if climb <= 0 {
				nx, ny := Step(fx, fy, heading)
				if s.maps.IsLedge(mapID, nx, ny) {
					return false
				}
			}
		}
	}
	nx, ny := Step(x, y, heading)
	return !z.Occupied(nx, ny, mover.ID())
}

// CanStandAt reports whether (x,y) is open ground nobody stands on.
func (s *State) CanStandAt(mapID int16, x, y int32) bool {
	z := s.zones[mapID]
	if z == nil {
		return false
	}
	return s.maps.IsPassablePoint(mapID, x, y) && !z.Occupied(x, y, 0)
}

// IsRestricted reports whether (x,y) lies in a safety zone where monsters
// may not fight.
func (s *State) IsRestricted(mapID int16, x, y int32) bool {
	return s.maps.IsSafetyZone(mapID, x, y)
}

// Resolve returns the role for id from any map, or nil.
func (s *State) Resolve(id ObjectID) Role {
	return s.Registry.Resolve(id)
}

// NearestRole resolves id for self. Roles on another map or already dead
// resolve to nil.
func (s *State) NearestRole(self Role, id ObjectID) Role {
	r := s.Registry.Resolve(id)
	if r == nil || r.MapID() != self.MapID() || r.Dead() {
		return nil
	}
	return r
}
