package world

// tileKey identifies a tile of one map.
type tileKey struct {
	X, Y int32
}

// EntityGrid is a tile occupancy map for O(1) collision checks.
// Supports multiple occupants per tile (monsters crossing while stuck).
type EntityGrid struct {
	tiles map[tileKey]map[ObjectID]struct{}
}

func newEntityGrid() *EntityGrid {
	return &EntityGrid{tiles: make(map[tileKey]map[ObjectID]struct{})}
}

// Occupy marks an entity as occupying a tile.
func (g *EntityGrid) Occupy(x, y int32, id ObjectID) {
	k := tileKey{X: x, Y: y}
	cell := g.tiles[k]
	if cell == nil {
		cell = make(map[ObjectID]struct{}, 1)
		g.tiles[k] = cell
	}
	cell[id] = struct{}{}
}

// Vacate removes an entity from a tile.
func (g *EntityGrid) Vacate(x, y int32, id ObjectID) {
	k := tileKey{X: x, Y: y}
	cell := g.tiles[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.tiles, k)
		}
	}
}

// Move vacates the old tile and occupies the new one.
func (g *EntityGrid) Move(oldX, oldY, newX, newY int32, id ObjectID) {
	if oldX == newX && oldY == newY {
		return
	}
	g.Vacate(oldX, oldY, id)
	g.Occupy(newX, newY, id)
}

// IsOccupied returns true if any entity other than excludeID occupies the tile.
func (g *EntityGrid) IsOccupied(x, y int32, excludeID ObjectID) bool {
	cell := g.tiles[tileKey{X: x, Y: y}]
	if len(cell) == 0 {
		return false
	}
	for id := range cell {
		if id != excludeID {
			return true
		}
	}
	return false
}
