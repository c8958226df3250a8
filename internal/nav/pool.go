package nav

import "github.com/birnsj/Project9-V1-sub002/internal/geom"

// Path is an ordered list of waypoints. After a successful search the first
// element is the exact start and the last is the exact goal.
type Path []geom.Vec2

// Clone copies p into a fresh slice.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Last returns the final waypoint.
func (p Path) Last() (geom.Vec2, bool) {
	if len(p) == 0 {
		return geom.Vec2{}, false
	}
	return p[len(p)-1], true
}

// PathPool is a bounded free list of path buffers. Buffers handed back with
// Put are cleared and reused by later Get calls, so callers must drop every
// reference to a path they release.
type PathPool struct {
	free     []Path
	maxFree  int
	capacity int

	reused    uint64
	allocated uint64
}

// NewPathPool keeps at most maxFree buffers, each allocated with the given
// starting capacity.
func NewPathPool(maxFree, capacity int) *PathPool {
	if capacity <= 0 {
		capacity = defaultPathCapacity
	}
	if maxFree < 0 {
		maxFree = 0
	}
	return &PathPool{free: make([]Path, 0, maxFree), maxFree: maxFree, capacity: capacity}
}

// Get returns an empty path buffer.
func (p *PathPool) Get() Path {
	if n := len(p.free); n > 0 {
		path := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.reused++
		return path[:0]
	}
	p.allocated++
	return make(Path, 0, p.capacity)
}

// Put returns a buffer to the pool. Buffers beyond the cap are dropped.
func (p *PathPool) Put(path Path) {
	if path == nil || cap(path) == 0 || len(p.free) >= p.maxFree {
		return
	}
	clear(path[:cap(path)])
	p.free = append(p.free, path[:0])
}

// CloneInto copies src into a pooled buffer.
func (p *PathPool) CloneInto(src Path) Path {
	dst := p.Get()
	return append(dst, src...)
}

// Free reports how many buffers are waiting for reuse.
func (p *PathPool) Free() int { return len(p.free) }

// Counts reports how many Get calls were served from the free list and how
// many allocated.
func (p *PathPool) Counts() (reused, allocated uint64) { return p.reused, p.allocated }
