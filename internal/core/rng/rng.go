package rng

import "math/rand"

// Source is the randomness contract the simulation relies on: uniform
// integers in a range. Nothing is promised about ordering across partitions.
type Source interface {
	// Intn returns a value in [0, n). n <= 0 yields 0.
	Intn(n int) int
	// Between returns a value in [lo, hi]. hi < lo yields lo.
	Between(lo, hi int) int
}

// Rand is a Source backed by math/rand. Not safe for concurrent use; each
// partition owns one.
type Rand struct {
	r *rand.Rand
}

func New(seed int64) *Rand {
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

func (s *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.Intn(n)
}

func (s *Rand) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.r.Intn(hi-lo+1)
}

// Fixed replays a scripted sequence of values, wrapping around. Values are
// clamped into the requested range. Used by tests that need exact rolls.
type Fixed struct {
	Values []int
	next   int
}

func (f *Fixed) take() int {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}

func (f *Fixed) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := f.take()
	if v < 0 {
		v = 0
	}
	if v >= n {
		v = n - 1
	}
	return v
}

func (f *Fixed) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	v := f.take()
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
