// Package world holds the grid world: cell occupancy, risk values, food
// items, and the safe place.
package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/scurry-sim/scurry/field"
)

var (
	// ErrInvalidParameter reports bad construction arguments. Fatal at setup.
	// Shared with the field package so callers match one sentinel.
	ErrInvalidParameter = field.ErrInvalidParameter
	// ErrOccupiedCell reports a placement attempt on a non-empty cell.
	ErrOccupiedCell = errors.New("cell occupied")
	// ErrNoFood reports a consume attempt on a cell without food.
	ErrNoFood = errors.New("no food at cell")
)

// Locus is the grid position component of a food entity.
type Locus struct {
	Row, Col int
}

// Morsel is the edible payload component of a food entity.
type Morsel struct {
	EnergyYield  float64
	HandlingTime float64
}

// FoodItem is the caller-facing record of a food entity.
type FoodItem struct {
	Cell         Cell
	EnergyYield  float64
	HandlingTime float64
}

// SafePlace is the designated storage cell. Stored energy accumulates over
// the run's lifetime.
type SafePlace struct {
	Cell         Cell
	StoredEnergy float64
	StoredCount  int
}

// Store adds a delivered item's energy to the running total.
func (s *SafePlace) Store(energy float64) {
	s.StoredEnergy += energy
	s.StoredCount++
}

// GridWorld holds the cell grid, the live set of food entities, and the safe
// place. All mutation is agent-driven and sequential; there are no
// concurrency guarantees.
type GridWorld struct {
	width, height int
	risk          *field.RiskField
	occ           []Occupancy
	blocked       []bool
	safe          SafePlace

	ecs        *ecs.World
	foodMapper *ecs.Map2[Locus, Morsel]
	foodFilter *ecs.Filter2[Locus, Morsel]
	foodAt     map[int]ecs.Entity
}

// NewGridWorld creates a world over the given risk field with a single safe
// place. The risk field fixes the grid dimensions.
func NewGridWorld(risk *field.RiskField, safe Cell) (*GridWorld, error) {
	w := &GridWorld{
		width:   risk.Width(),
		height:  risk.Height(),
		risk:    risk,
		occ:     make([]Occupancy, risk.Width()*risk.Height()),
		blocked: make([]bool, risk.Width()*risk.Height()),
		foodAt:  make(map[int]ecs.Entity),
	}

	if !w.InBounds(safe) {
		return nil, fmt.Errorf("%w: safe place %v outside %dx%d grid",
			ErrInvalidParameter, safe, w.width, w.height)
	}

	w.ecs = ecs.NewWorld()
	w.foodMapper = ecs.NewMap2[Locus, Morsel](w.ecs)
	w.foodFilter = ecs.NewFilter2[Locus, Morsel](w.ecs)

	w.safe = SafePlace{Cell: safe}
	w.occ[w.index(safe)] = SafePlaceOcc

	return w, nil
}

// Width returns the grid width in cells.
func (w *GridWorld) Width() int { return w.width }

// Height returns the grid height in cells.
func (w *GridWorld) Height() int { return w.height }

// InBounds reports whether the cell lies on the grid.
func (w *GridWorld) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < w.height && c.Col >= 0 && c.Col < w.width
}

func (w *GridWorld) index(c Cell) int {
	return c.Row*w.width + c.Col
}

// RiskAt returns the predation risk at the cell.
func (w *GridWorld) RiskAt(c Cell) float64 {
	return w.risk.At(c.Row, c.Col)
}

// Risk returns the underlying risk field.
func (w *GridWorld) Risk() *field.RiskField { return w.risk }

// OccupancyAt returns the occupancy of the cell.
func (w *GridWorld) OccupancyAt(c Cell) Occupancy {
	return w.occ[w.index(c)]
}

// SafePlace returns the world's single storage site.
func (w *GridWorld) SafePlace() *SafePlace { return &w.safe }

// SetBlocked marks a cell as non-traversable for path planning. Occupancy is
// unaffected; blocked cells simply cannot be entered.
func (w *GridWorld) SetBlocked(c Cell, blocked bool) {
	w.blocked[w.index(c)] = blocked
}

// IsBlocked reports whether a cell is non-traversable. Out-of-bounds cells
// are blocked.
func (w *GridWorld) IsBlocked(c Cell) bool {
	if !w.InBounds(c) {
		return true
	}
	return w.blocked[w.index(c)]
}

// neighborOffsets is the 8-connected (Moore) adjacency used throughout.
var neighborOffsets = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1}, // cardinal
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1}, // diagonal
}

// NeighborsOf returns the in-bounds 8-connected neighbors of the cell.
func (w *GridWorld) NeighborsOf(c Cell) []Cell {
	out := make([]Cell, 0, 8)
	for _, d := range neighborOffsets {
		n := Cell{Row: c.Row + d[0], Col: c.Col + d[1]}
		if w.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// PlaceFood creates a food item at the cell. The cell must be empty.
func (w *GridWorld) PlaceFood(c Cell, energyYield, handlingTime float64) error {
	if !w.InBounds(c) {
		return fmt.Errorf("%w: %v outside %dx%d grid", ErrInvalidParameter, c, w.width, w.height)
	}
	if energyYield < 0 || handlingTime < 0 {
		return fmt.Errorf("%w: food yield/handling must be non-negative, got %f/%f",
			ErrInvalidParameter, energyYield, handlingTime)
	}
	if w.occ[w.index(c)] != Empty {
		return fmt.Errorf("%w: %v holds %s", ErrOccupiedCell, c, w.occ[w.index(c)])
	}

	entity := w.foodMapper.NewEntity(
		&Locus{Row: c.Row, Col: c.Col},
		&Morsel{EnergyYield: energyYield, HandlingTime: handlingTime},
	)
	w.foodAt[w.index(c)] = entity
	w.occ[w.index(c)] = Food
	return nil
}

// FoodAt returns the food item at the cell without consuming it.
func (w *GridWorld) FoodAt(c Cell) (FoodItem, bool) {
	entity, ok := w.foodAt[w.index(c)]
	if !ok {
		return FoodItem{}, false
	}
	locus, morsel := w.foodMapper.Get(entity)
	return FoodItem{
		Cell:         Cell{Row: locus.Row, Col: locus.Col},
		EnergyYield:  morsel.EnergyYield,
		HandlingTime: morsel.HandlingTime,
	}, true
}

// ConsumeFood removes and returns the food item at the cell.
func (w *GridWorld) ConsumeFood(c Cell) (FoodItem, error) {
	item, ok := w.FoodAt(c)
	if !ok {
		return FoodItem{}, fmt.Errorf("%w: %v", ErrNoFood, c)
	}

	w.ecs.RemoveEntity(w.foodAt[w.index(c)])
	delete(w.foodAt, w.index(c))
	w.occ[w.index(c)] = Empty
	return item, nil
}

// FoodWithin returns all food items within the given Chebyshev radius of
// center, ordered by row then column for reproducible scans.
func (w *GridWorld) FoodWithin(center Cell, radius int) []FoodItem {
	var out []FoodItem

	query := w.foodFilter.Query()
	for query.Next() {
		locus, morsel := query.Get()
		c := Cell{Row: locus.Row, Col: locus.Col}
		if center.Chebyshev(c) <= radius {
			out = append(out, FoodItem{
				Cell:         c,
				EnergyYield:  morsel.EnergyYield,
				HandlingTime: morsel.HandlingTime,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Cell.Row != out[j].Cell.Row {
			return out[i].Cell.Row < out[j].Cell.Row
		}
		return out[i].Cell.Col < out[j].Cell.Col
	})
	return out
}

// FoodCount returns the number of food items remaining in the world.
func (w *GridWorld) FoodCount() int {
	return len(w.foodAt)
}
