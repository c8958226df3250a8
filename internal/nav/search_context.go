package nav

import (
	"container/heap"
	"math"

	"github.com/birnsj/Project9-V1-sub002/internal/geom"
)

type neighbor struct {
	dx, dy int
	cost   float64
}

var neighborOffsets = [...]neighbor{
	{dx: 0, dy: -1, cost: 1},
	{dx: 1, dy: 0, cost: 1},
	{dx: 0, dy: 1, cost: 1},
	{dx: -1, dy: 0, cost: 1},
	{dx: 1, dy: -1, cost: math.Sqrt2},
	{dx: 1, dy: 1, cost: math.Sqrt2},
	{dx: -1, dy: 1, cost: math.Sqrt2},
	{dx: -1, dy: -1, cost: math.Sqrt2},
}

type openItem struct {
	cell geom.Cell
	g    float64
	f    float64
}

type openQueue []openItem

func (pq openQueue) Len() int { return len(pq) }

func (pq openQueue) Less(i, j int) bool {
	if pq[i].f == pq[j].f {
		return pq[i].g > pq[j].g
	}
	return pq[i].f < pq[j].f
}

func (pq openQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *openQueue) Push(x any) { *pq = append(*pq, x.(openItem)) }

func (pq *openQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// SearchContext holds the A* working sets. It is owned by one PathFinder and
// cleared at the start of every search, so a context must never be shared by
// two searches in flight.
type SearchContext struct {
	open    openQueue
	gScore  map[geom.Cell]float64
	fScore  map[geom.Cell]float64
	closed  map[geom.Cell]struct{}
	parent  map[geom.Cell]geom.Cell
	blocked map[geom.Cell]bool
	cells   []geom.Cell

	iterations int
}

func newSearchContext() *SearchContext {
	return &SearchContext{
		open:    make(openQueue, 0, 256),
		gScore:  make(map[geom.Cell]float64, 256),
		fScore:  make(map[geom.Cell]float64, 256),
		closed:  make(map[geom.Cell]struct{}, 256),
		parent:  make(map[geom.Cell]geom.Cell, 256),
		blocked: make(map[geom.Cell]bool, 256),
		cells:   make([]geom.Cell, 0, 64),
	}
}

func (sc *SearchContext) reset() {
	sc.open = sc.open[:0]
	clear(sc.gScore)
	clear(sc.fScore)
	clear(sc.closed)
	clear(sc.parent)
	clear(sc.blocked)
	sc.cells = sc.cells[:0]
	sc.iterations = 0
}

func heuristic(a, b geom.Cell) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}

// astar runs the search between two cells. blockedFn is memoised per search.
// On success the cell chain from start to goal is left in sc.cells.
func (sc *SearchContext) astar(start, goal geom.Cell, maxIterations int, blockedFn func(geom.Cell) bool) error {
	isBlocked := func(c geom.Cell) bool {
		if v, ok := sc.blocked[c]; ok {
			return v
		}
		v := blockedFn(c)
		sc.blocked[c] = v
		return v
	}

	startF := heuristic(start, goal)
	sc.gScore[start] = 0
	sc.fScore[start] = startF
	heap.Push(&sc.open, openItem{cell: start, g: 0, f: startF})

	for sc.open.Len() > 0 {
		if sc.iterations >= maxIterations {
			return ErrIterationLimit
		}
		sc.iterations++

		current := heap.Pop(&sc.open).(openItem)
		if _, seen := sc.closed[current.cell]; seen {
			continue
		}
		if best, ok := sc.gScore[current.cell]; ok && current.g > best {
			continue
		}
		sc.closed[current.cell] = struct{}{}

		if current.cell == goal {
			sc.reconstruct(start, goal)
			return nil
		}

		for _, delta := range neighborOffsets {
			next := current.cell.Add(delta.dx, delta.dy)
			if _, seen := sc.closed[next]; seen {
				continue
			}
			if isBlocked(next) {
				continue
			}
			tentative := current.g + delta.cost
			if prev, ok := sc.gScore[next]; ok && tentative >= prev {
				continue
			}
			f := tentative + heuristic(next, goal)
			sc.gScore[next] = tentative
			sc.fScore[next] = f
			sc.parent[next] = current.cell
			heap.Push(&sc.open, openItem{cell: next, g: tentative, f: f})
		}
	}
	return ErrNoPath
}

func (sc *SearchContext) reconstruct(start, goal geom.Cell) {
	sc.cells = sc.cells[:0]
	for cell := goal; ; {
		sc.cells = append(sc.cells, cell)
		if cell == start {
			break
		}
		prev, ok := sc.parent[cell]
		if !ok {
			break
		}
		cell = prev
	}
	for i, j := 0, len(sc.cells)-1; i < j; i, j = i+1, j-1 {
		sc.cells[i], sc.cells[j] = sc.cells[j], sc.cells[i]
	}
}
