package ident

import "errors"

// ErrExhausted is returned when every id in the pool's range is in use.
var ErrExhausted = errors.New("ident: id range exhausted")

// Pool hands out object ids from a fixed numeric range [base, limit) and
// recycles released ids. Released ids are reused oldest-first so a freshly
// freed id is not handed straight back while stale references to it may
// still be draining out of the world.
// Not safe for concurrent use; owned by the main tick goroutine.
type Pool struct {
	base  int32
	limit int32
	next  int32
	free  []int32
	inUse map[int32]struct{}
}

func NewPool(base, limit int32) *Pool {
	return &Pool{
		base:  base,
		limit: limit,
		next:  base,
		free:  make([]int32, 0, 256),
		inUse: make(map[int32]struct{}, 1024),
	}
}

// Acquire returns an unused id.
func (p *Pool) Acquire() (int32, error) {
	if len(p.free) > 0 {
		id := p.free[0]
		p.free = p.free[1:]
		p.inUse[id] = struct{}{}
		return id, nil
	}
	if p.next >= p.limit {
		return 0, ErrExhausted
	}
	id := p.next
	p.next++
	p.inUse[id] = struct{}{}
	return id, nil
}

// Release returns id to the pool. Unknown or already released ids are ignored.
func (p *Pool) Release(id int32) {
	if _, ok := p.inUse[id]; !ok {
		return
	}
	delete(p.inUse, id)
	p.free = append(p.free, id)
}

// InUse reports whether id is currently handed out.
func (p *Pool) InUse(id int32) bool {
	_, ok := p.inUse[id]
	return ok
}

// Len returns the number of ids currently handed out.
func (p *Pool) Len() int {
	return len(p.inUse)
}

// Contains reports whether id falls inside the pool's range.
func (p *Pool) Contains(id int32) bool {
	return id >= p.base && id < p.limit
}
