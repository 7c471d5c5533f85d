package world

import "github.com/l1jgo/mobsim/internal/core/rng"

// Region is the rectangle a spawn group keeps its monsters in. Bounds are
// inclusive.
type Region struct {
	MapID  int16
	X1, Y1 int32
	X2, Y2 int32
}

// NewRegion returns the region centred on (cx,cy) with half extents rx,ry.
func NewRegion(mapID int16, cx, cy, rx, ry int32) *Region {
	if rx < 0 {
		rx = 0
	}
	if ry < 0 {
		ry = 0
	}
	return &Region{MapID: mapID, X1: cx - rx, Y1: cy - ry, X2: cx + rx, Y2: cy + ry}
}

func (r *Region) Contains(x, y int32) bool {
	return x >= r.X1 && x <= r.X2 && y >= r.Y1 && y <= r.Y2
}

func (r *Region) Center() (int32, int32) {
	return (r.X1 + r.X2) / 2, (r.Y1 + r.Y2) / 2
}

// Extent returns width and height in tiles.
func (r *Region) Extent() (int32, int32) {
	return r.X2 - r.X1 + 1, r.Y2 - r.Y1 + 1
}

// Outside returns the Chebyshev distance from (x,y) to the nearest tile of
// the region, 0 when inside.
func (r *Region) Outside(x, y int32) int32 {
	cx := clamp(x, r.X1, r.X2)
	cy := clamp(y, r.Y1, r.Y2)
	return Chebyshev(x, y, cx, cy)
}

// DistanceOutside reports whether (x,y) lies more than threshold tiles
// outside the region.
func (r *Region) DistanceOutside(x, y, threshold int32) bool {
	return r.Outside(x, y) > threshold
}

// RandomPoint picks a uniformly random tile inside the region.
func (r *Region) RandomPoint(src rng.Source) (int32, int32) {
	return int32(src.Between(int(r.X1), int(r.X2))), int32(src.Between(int(r.Y1), int(r.Y2)))
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
