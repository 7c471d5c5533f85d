package world

import (
	"sort"

	"github.com/l1jgo/mobsim/internal/data"
)

// AOIGrid buckets the roles of one map into square cells. A 3x3
// neighbourhood of cells covers every view range up to cellSize.
// Owned by the map's partition, no locks.

const cellSize = data.MaxViewRange

type cellKey struct {
	cx int32
	cy int32
}

func toCellCoord(v int32) int32 {
	if v < 0 {
		return (v - cellSize + 1) / cellSize
	}
	return v / cellSize
}

// AOIGrid tracks which roles are in which cells.
type AOIGrid struct {
	cells map[cellKey]map[ObjectID]struct{}
}

func NewAOIGrid() *AOIGrid {
	return &AOIGrid{
		cells: make(map[cellKey]map[ObjectID]struct{}),
	}
}

func (g *AOIGrid) key(x, y int32) cellKey {
	return cellKey{cx: toCellCoord(x), cy: toCellCoord(y)}
}

// Add places a role into the grid.
func (g *AOIGrid) Add(id ObjectID, x, y int32) {
	k := g.key(x, y)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ObjectID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes a role out of the grid.
func (g *AOIGrid) Remove(id ObjectID, x, y int32) {
	k := g.key(x, y)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates a role's cell when its position changes.
func (g *AOIGrid) Move(id ObjectID, oldX, oldY, newX, newY int32) {
	if g.key(oldX, oldY) == g.key(newX, newY) {
		return
	}
	g.Remove(id, oldX, oldY)
	g.Add(id, newX, newY)
}

// NearbyInto appends the ids in the 3x3 cell neighbourhood of (x,y) to
// buf[:0] in ascending order. Each id appears once.
func (g *AOIGrid) NearbyInto(x, y int32, buf []ObjectID) []ObjectID {
	buf = buf[:0]
	cx := toCellCoord(x)
	cy := toCellCoord(y)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for id := range g.cells[cellKey{cx: cx + dx, cy: cy + dy}] {
				buf = append(buf, id)
			}
		}
	}
	sort.Slice(buf, func(i, j int) bool { return buf[i] < buf[j] })
	return buf
}
