package world

import "github.com/l1jgo/mobsim/internal/data"

// Chebyshev returns the tile distance between two points (8-way movement).
func Chebyshev(x1, y1, x2, y2 int32) int32 {
	dx := x1 - x2
	dy := y1 - y2
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	if dy > dx {
		return dy
	}
	return dx
}

// DistSq returns the squared euclidean distance between two points.
func DistSq(x1, y1, x2, y2 int32) int64 {
	dx := int64(x1 - x2)
	dy := int64(y1 - y2)
	return dx*dx + dy*dy
}

// HeadingTo returns the coarse 8-way heading from (sx,sy) toward (tx,ty).
// Returns 0 when both points are equal.
func HeadingTo(sx, sy, tx, ty int32) int {
	ddx := sign(tx - sx)
	ddy := sign(ty - sy)
	for i := 0; i < 8; i++ {
		if data.HeadingDX[i] == ddx && data.HeadingDY[i] == ddy {
			return i
		}
	}
	return 0
}

// Opposite returns the reverse heading.
func Opposite(h int) int {
	return (h + 4) & 7
}

// Step returns the tile reached by moving one step in heading h.
func Step(x, y int32, h int) (int32, int32) {
	h &= 7
	return x + data.HeadingDX[h], y + data.HeadingDY[h]
}

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
