// Package agent implements the foraging agent: a five-state machine that
// scans for food, weighs eating in place against carrying to the safe place,
// and walks risk-weighted routes one cell per tick.
package agent

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/scurry-sim/scurry/economics"
	"github.com/scurry-sim/scurry/planner"
	"github.com/scurry-sim/scurry/world"
)

// State is the agent's current activity.
type State int

const (
	// Searching scans for food and walks toward a candidate or an
	// exploration target.
	Searching State = iota
	// Deciding weighs eating the item underfoot against carrying it home.
	Deciding
	// Transporting carries a picked-up item toward the safe place.
	Transporting
	// Eating handles an item in place over its handling time.
	Eating
	// Idle means the per-step movement cost exceeds remaining energy; the
	// agent stays put.
	Idle
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Deciding:
		return "deciding"
	case Transporting:
		return "transporting"
	case Eating:
		return "eating"
	case Idle:
		return "idle"
	}
	return "unknown"
}

// EventKind tags what happened during a tick.
type EventKind int

const (
	// EventNone is an uneventful tick (movement or waiting).
	EventNone EventKind = iota
	// EventAte fires when handling completes and energy is credited.
	EventAte
	// EventStored fires when a carried item is delivered to the safe place.
	EventStored
	// EventPlanFailed fires when a route request came back unreachable.
	EventPlanFailed
	// EventIdle fires on ticks where movement was unaffordable.
	EventIdle
)

// Event is the tick's log entry. Cell, Risk, and DistanceToSafe describe the
// food item for Ate/Stored events.
type Event struct {
	Kind           EventKind
	Cell           world.Cell
	Energy         float64 // energy credited (ate) or stored (stored)
	Risk           float64 // risk at the food's cell
	DistanceToSafe int     // Manhattan distance from the food to the safe place
}

// StepResult reports the agent's state after one tick.
type StepResult struct {
	State  State
	Pos    world.Cell
	Energy float64
	Moved  bool
	Event  Event
}

// Agent is the single forager. It holds only weak references (its position)
// into the grid world; cells and food items belong to the world.
type Agent struct {
	pos              world.Cell
	energy           float64
	riskAversion     float64
	perceptionRadius int
	econ             economics.Params

	state    State
	route    []world.Cell // remaining cells to walk, in order
	routeEnd world.Cell
	carrying *world.FoodItem
	eatTicks int
	eatEvent Event
}

// New creates an agent at the given position. riskAversion must lie in [0,1].
func New(pos world.Cell, energy, riskAversion float64, perceptionRadius int, econ economics.Params) (*Agent, error) {
	if riskAversion < 0 || riskAversion > 1 {
		return nil, fmt.Errorf("%w: risk aversion %f outside [0,1]",
			world.ErrInvalidParameter, riskAversion)
	}
	if perceptionRadius <= 0 {
		return nil, fmt.Errorf("%w: perception radius must be positive, got %d",
			world.ErrInvalidParameter, perceptionRadius)
	}
	if energy < 0 || econ.MoveCost < 0 || econ.HandlingCostRate < 0 {
		return nil, fmt.Errorf("%w: energy and cost rates must be non-negative",
			world.ErrInvalidParameter)
	}
	return &Agent{
		pos:              pos,
		energy:           energy,
		riskAversion:     riskAversion,
		perceptionRadius: perceptionRadius,
		econ:             econ,
		state:            Searching,
	}, nil
}

// Pos returns the agent's current cell.
func (a *Agent) Pos() world.Cell { return a.pos }

// Energy returns the agent's current energy.
func (a *Agent) Energy() float64 { return a.energy }

// State returns the agent's current state.
func (a *Agent) State() State { return a.state }

// RiskAversion returns the agent's fixed risk-aversion parameter.
func (a *Agent) RiskAversion() float64 { return a.riskAversion }

// Carrying returns the item in transport, if any.
func (a *Agent) Carrying() (world.FoodItem, bool) {
	if a.carrying == nil {
		return world.FoodItem{}, false
	}
	return *a.carrying, true
}

// Step advances the agent one decision/movement tick.
func (a *Agent) Step(w *world.GridWorld, pl *planner.Planner, rng *rand.Rand) (StepResult, error) {
	switch a.state {
	case Searching, Idle:
		return a.search(w, pl, rng)
	case Deciding:
		return a.decide(w, pl)
	case Transporting:
		return a.transport(w)
	case Eating:
		return a.eat()
	}
	return StepResult{}, fmt.Errorf("%w: agent in unknown state %d", world.ErrInvalidParameter, a.state)
}

// search walks an existing route, or scans for food and plans a new one.
// Idle resumes here: an interrupted transport route is picked up first.
func (a *Agent) search(w *world.GridWorld, pl *planner.Planner, rng *rand.Rand) (StepResult, error) {
	if a.state == Idle && a.carrying != nil {
		a.state = Transporting
		return a.transport(w)
	}
	a.state = Searching

	if len(a.route) > 0 {
		return a.walkRoute(w)
	}

	visible := w.FoodWithin(a.pos, a.perceptionRadius)
	if len(visible) > 0 {
		if target, path, ok := a.bestCandidate(w, pl, visible); ok {
			if target == a.pos {
				a.state = Deciding
				return a.result(false, Event{}), nil
			}
			a.setRoute(path)
			return a.walkRoute(w)
		}
		// Every visible item is unreachable; explore instead.
	}

	target, ok := chooseExploreTarget(w, a.pos, a.perceptionRadius, a.riskAversion, rng)
	if !ok {
		return a.result(false, Event{}), nil
	}
	path, err := pl.FindPath(w, a.pos, target, a.riskAversion)
	if err != nil {
		return a.result(false, Event{Kind: EventPlanFailed, Cell: target}), nil
	}
	a.setRoute(path)
	return a.walkRoute(w)
}

// bestCandidate scores each visible item by its best-case utility (net return
// minus travel cost and risk-weighted route exposure) and returns the winner.
func (a *Agent) bestCandidate(w *world.GridWorld, pl *planner.Planner, visible []world.FoodItem) (world.Cell, planner.Path, bool) {
	var (
		bestCell world.Cell
		bestPath planner.Path
		bestUtil = math.Inf(-1)
		found    bool
	)
	for _, item := range visible {
		path, err := pl.FindPath(w, a.pos, item.Cell, a.riskAversion)
		if err != nil {
			continue
		}
		net := economics.NetEnergyReturn(item, a.econ)
		util := economics.Utility(net-a.econ.MoveCost*float64(path.Steps), a.riskAversion, path.Risk)
		if util > bestUtil {
			bestCell, bestPath, bestUtil = item.Cell, path, util
			found = true
		}
	}
	return bestCell, bestPath, found
}

// decide runs the eat-or-forage comparison for the item underfoot.
func (a *Agent) decide(w *world.GridWorld, pl *planner.Planner) (StepResult, error) {
	item, ok := w.FoodAt(a.pos)
	if !ok {
		a.state = Searching
		return a.result(false, Event{}), nil
	}

	safe := w.SafePlace().Cell
	path, err := pl.FindPath(w, a.pos, safe, a.riskAversion)
	if err != nil {
		// Safe place unreachable: give up on this item and keep searching.
		a.state = Searching
		return a.result(false, Event{Kind: EventPlanFailed, Cell: safe}), nil
	}

	toSafe := economics.Transport{Steps: path.Steps, CumulativeRisk: path.Risk}
	decision := economics.EatOrForage(item, w.RiskAt(a.pos), toSafe, a.riskAversion, a.econ)

	consumed, err := w.ConsumeFood(a.pos)
	if err != nil {
		return StepResult{}, err
	}

	if decision == economics.EatNow {
		a.eatTicks = handlingTicks(consumed.HandlingTime)
		a.eatEvent = Event{
			Kind:           EventAte,
			Cell:           consumed.Cell,
			Energy:         economics.NetEnergyReturn(consumed, a.econ),
			Risk:           w.RiskAt(consumed.Cell),
			DistanceToSafe: consumed.Cell.Manhattan(safe),
		}
		a.state = Eating
		return a.result(false, Event{}), nil
	}

	a.carrying = &consumed
	a.setRoute(path)
	a.state = Transporting
	return a.result(false, Event{}), nil
}

// transport walks the route home and stores the carried item on arrival.
func (a *Agent) transport(w *world.GridWorld) (StepResult, error) {
	if a.carrying == nil {
		a.state = Searching
		return a.result(false, Event{}), nil
	}

	moved := false
	if len(a.route) > 0 {
		res, err := a.walkRoute(w)
		if err != nil || a.state == Idle || len(a.route) > 0 {
			return res, err
		}
		moved = res.Moved
	}

	safe := w.SafePlace()
	safe.Store(a.carrying.EnergyYield)
	ev := Event{
		Kind:           EventStored,
		Cell:           a.carrying.Cell,
		Energy:         a.carrying.EnergyYield,
		Risk:           w.RiskAt(a.carrying.Cell),
		DistanceToSafe: a.carrying.Cell.Manhattan(safe.Cell),
	}
	a.carrying = nil
	a.state = Searching
	return a.result(moved, ev), nil
}

// eat counts down the handling time and credits the net return on the final
// tick. Handling costs no movement energy. A negative net return (handling
// cost above yield) cannot take energy below the floor.
func (a *Agent) eat() (StepResult, error) {
	a.eatTicks--
	if a.eatTicks > 0 {
		return a.result(false, Event{}), nil
	}

	a.energy += a.eatEvent.Energy
	if a.energy < 0 {
		a.energy = 0
	}
	ev := a.eatEvent
	a.eatEvent = Event{}
	a.state = Searching
	return a.result(false, ev), nil
}

// walkRoute advances one cell along the current route, paying the movement
// cost. An unaffordable move parks the agent in Idle without moving.
func (a *Agent) walkRoute(w *world.GridWorld) (StepResult, error) {
	if a.energy < a.econ.MoveCost {
		a.state = Idle
		return a.result(false, Event{Kind: EventIdle}), nil
	}

	a.pos = a.route[0]
	a.route = a.route[1:]
	a.energy -= a.econ.MoveCost
	if a.energy < 0 {
		a.energy = 0
	}

	if len(a.route) == 0 && a.state == Searching {
		if _, ok := w.FoodAt(a.pos); ok && a.pos == a.routeEnd {
			a.state = Deciding
		}
	}
	return a.result(true, Event{}), nil
}

func (a *Agent) setRoute(path planner.Path) {
	a.route = path.Cells[1:]
	a.routeEnd = path.Cells[len(path.Cells)-1]
}

func (a *Agent) result(moved bool, ev Event) StepResult {
	return StepResult{
		State:  a.state,
		Pos:    a.pos,
		Energy: a.energy,
		Moved:  moved,
		Event:  ev,
	}
}

// handlingTicks converts a handling time to whole eating ticks, at least one.
func handlingTicks(handlingTime float64) int {
	t := int(math.Ceil(handlingTime))
	if t < 1 {
		t = 1
	}
	return t
}
