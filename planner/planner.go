// Package planner computes cost-minimizing paths on the grid world, where
// edge cost blends step distance with traversed-cell risk.
package planner

import (
	"container/heap"
	"errors"
	"fmt"
	"math"

	"github.com/scurry-sim/scurry/world"
)

// ErrUnreachableGoal reports that no path exists between start and goal.
// Recoverable: the caller falls back to Searching or picks another cell.
var ErrUnreachableGoal = errors.New("goal unreachable")

const (
	diagCost = math.Sqrt2
	costEps  = 1e-9
)

// Path is an ordered cell sequence from start to goal, inclusive.
type Path struct {
	Cells []world.Cell
	Cost  float64 // total edge cost under the planner's weighting
	Risk  float64 // summed risk over entered cells (start excluded)
	Steps int     // len(Cells) - 1
}

// Planner runs A* searches over a GridWorld. Search structures are reused
// between calls; a Planner is not safe for concurrent use.
type Planner struct {
	openHeap *nodeHeap
	closed   map[int]struct{}
	cameFrom map[int]int
	gScore   map[int]float64
	stepsTo  map[int]int
	order    int
}

// node is an open-set entry.
type node struct {
	cell  world.Cell
	f     float64
	steps int
	order int // insertion sequence, final determinism tie-break
	index int // heap index
}

type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if math.Abs(h[i].f-h[j].f) > costEps {
		return h[i].f < h[j].f
	}
	// Equal cost: prefer fewer cells traversed, then insertion order.
	if h[i].steps != h[j].steps {
		return h[i].steps < h[j].steps
	}
	return h[i].order < h[j].order
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	nd := old[n-1]
	old[n-1] = nil
	nd.index = -1
	*h = old[0 : n-1]
	return nd
}

// New creates a planner with preallocated search structures.
func New() *Planner {
	return &Planner{
		openHeap: &nodeHeap{},
		closed:   make(map[int]struct{}, 256),
		cameFrom: make(map[int]int, 256),
		gScore:   make(map[int]float64, 256),
		stepsTo:  make(map[int]int, 256),
	}
}

// neighborSteps is the 8-connected adjacency with per-step distances.
// Cardinal moves first so equal-cost expansions stay deterministic.
var neighborSteps = [8]struct {
	dr, dc int
	dist   float64
}{
	{-1, 0, 1}, {1, 0, 1}, {0, -1, 1}, {0, 1, 1},
	{-1, -1, diagCost}, {-1, 1, diagCost}, {1, -1, diagCost}, {1, 1, diagCost},
}

// FindPath computes the cheapest path from start to goal. The cost of moving
// from a cell to neighbor B is stepDistance + riskAversion*riskAt(B).
//
// riskAversion 0 degenerates to a plain shortest path; among equal-cost
// paths the one with fewer cells wins. Returns ErrUnreachableGoal when the
// goal cannot be reached.
func (p *Planner) FindPath(w *world.GridWorld, start, goal world.Cell, riskAversion float64) (Path, error) {
	if riskAversion < 0 {
		return Path{}, fmt.Errorf("%w: risk aversion must be non-negative, got %f",
			world.ErrInvalidParameter, riskAversion)
	}
	if !w.InBounds(start) || !w.InBounds(goal) {
		return Path{}, fmt.Errorf("%w: start %v or goal %v outside %dx%d grid",
			world.ErrInvalidParameter, start, goal, w.Width(), w.Height())
	}
	if w.IsBlocked(start) || w.IsBlocked(goal) {
		return Path{}, fmt.Errorf("%w: %v -> %v", ErrUnreachableGoal, start, goal)
	}

	if start == goal {
		return Path{Cells: []world.Cell{start}}, nil
	}

	p.reset()

	width := w.Width()
	index := func(c world.Cell) int { return c.Row*width + c.Col }
	startID := index(start)
	goalID := index(goal)

	p.gScore[startID] = 0
	p.stepsTo[startID] = 0
	p.push(&node{cell: start, f: octile(start, goal), steps: 0})

	for p.openHeap.Len() > 0 {
		current := heap.Pop(p.openHeap).(*node)
		currentID := index(current.cell)

		// Stale entry superseded by a later improvement.
		if _, ok := p.closed[currentID]; ok {
			continue
		}

		if currentID == goalID {
			return p.reconstruct(w, width, startID, goalID), nil
		}

		p.closed[currentID] = struct{}{}

		for i, step := range neighborSteps {
			n := world.Cell{Row: current.cell.Row + step.dr, Col: current.cell.Col + step.dc}
			if w.IsBlocked(n) {
				continue
			}
			// Diagonal moves must not cut corners past blocked cells.
			if i >= 4 {
				if w.IsBlocked(world.Cell{Row: current.cell.Row + step.dr, Col: current.cell.Col}) ||
					w.IsBlocked(world.Cell{Row: current.cell.Row, Col: current.cell.Col + step.dc}) {
					continue
				}
			}

			neighborID := index(n)

			tentativeG := p.gScore[currentID] + step.dist + riskAversion*w.RiskAt(n)
			tentativeSteps := p.stepsTo[currentID] + 1

			existingG, seen := p.gScore[neighborID]
			if seen {
				if tentativeG > existingG+costEps {
					continue
				}
				// Equal cost only improves the entry if it is shorter.
				if tentativeG > existingG-costEps && tentativeSteps >= p.stepsTo[neighborID] {
					continue
				}
			}

			p.cameFrom[neighborID] = currentID
			p.gScore[neighborID] = tentativeG
			p.stepsTo[neighborID] = tentativeSteps

			// Every improvement re-enters the heap; an already-closed node
			// reopens so an equal-cost shorter route can propagate.
			delete(p.closed, neighborID)
			p.push(&node{
				cell:  n,
				f:     tentativeG + octile(n, goal),
				steps: tentativeSteps,
			})
		}
	}

	return Path{}, fmt.Errorf("%w: %v -> %v", ErrUnreachableGoal, start, goal)
}

func (p *Planner) push(n *node) {
	n.order = p.order
	p.order++
	heap.Push(p.openHeap, n)
}

func (p *Planner) reset() {
	*p.openHeap = (*p.openHeap)[:0]
	clear(p.closed)
	clear(p.cameFrom)
	clear(p.gScore)
	clear(p.stepsTo)
	p.order = 0
}

// octile is the minimal 8-connected step distance, admissible because risk
// cost is non-negative.
func octile(a, b world.Cell) float64 {
	dr := float64(absInt(a.Row - b.Row))
	dc := float64(absInt(a.Col - b.Col))
	if dr < dc {
		dr, dc = dc, dr
	}
	return dr + (diagCost-1)*dc
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// reconstruct builds the path from the cameFrom chain and accumulates its
// risk along the way.
func (p *Planner) reconstruct(w *world.GridWorld, width, startID, goalID int) Path {
	var ids []int
	for current := goalID; current != startID; {
		ids = append(ids, current)
		prev, ok := p.cameFrom[current]
		if !ok {
			break
		}
		current = prev
	}
	ids = append(ids, startID)

	path := Path{
		Cells: make([]world.Cell, len(ids)),
		Cost:  p.gScore[goalID],
		Steps: len(ids) - 1,
	}
	for i := range ids {
		id := ids[len(ids)-1-i]
		c := world.Cell{Row: id / width, Col: id % width}
		path.Cells[i] = c
		if i > 0 {
			path.Risk += w.RiskAt(c)
		}
	}
	return path
}
