package world

import (
	"errors"
	"testing"

	"github.com/scurry-sim/scurry/field"
)

func newTestWorld(t *testing.T, w, h int, safe Cell) *GridWorld {
	t.Helper()
	rf, err := field.Generate(w, h, 3.0, 42)
	if err != nil {
		t.Fatalf("field.Generate: %v", err)
	}
	gw, err := NewGridWorld(rf, safe)
	if err != nil {
		t.Fatalf("NewGridWorld: %v", err)
	}
	return gw
}

func TestNewGridWorldSafePlaceOutOfBounds(t *testing.T) {
	rf, _ := field.Generate(10, 10, 3.0, 1)
	if _, err := NewGridWorld(rf, Cell{Row: 10, Col: 0}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("error = %v, want ErrInvalidParameter", err)
	}
}

func TestOccupancyLifecycle(t *testing.T) {
	w := newTestWorld(t, 10, 10, Cell{Row: 0, Col: 0})

	food := Cell{Row: 5, Col: 5}
	if got := w.OccupancyAt(food); got != Empty {
		t.Fatalf("occupancy = %s, want Empty", got)
	}
	if got := w.OccupancyAt(Cell{Row: 0, Col: 0}); got != SafePlaceOcc {
		t.Fatalf("safe place occupancy = %s, want SafePlace", got)
	}

	if err := w.PlaceFood(food, 10, 1); err != nil {
		t.Fatalf("PlaceFood: %v", err)
	}
	if got := w.OccupancyAt(food); got != Food {
		t.Errorf("occupancy after place = %s, want Food", got)
	}
	if w.FoodCount() != 1 {
		t.Errorf("food count = %d, want 1", w.FoodCount())
	}

	item, err := w.ConsumeFood(food)
	if err != nil {
		t.Fatalf("ConsumeFood: %v", err)
	}
	if item.EnergyYield != 10 || item.HandlingTime != 1 {
		t.Errorf("item = %+v, want yield 10 handling 1", item)
	}
	if got := w.OccupancyAt(food); got != Empty {
		t.Errorf("occupancy after consume = %s, want Empty", got)
	}
	if w.FoodCount() != 0 {
		t.Errorf("food count = %d, want 0", w.FoodCount())
	}
}

func TestConsumeFoodTwice(t *testing.T) {
	w := newTestWorld(t, 10, 10, Cell{Row: 0, Col: 0})
	food := Cell{Row: 3, Col: 4}
	if err := w.PlaceFood(food, 4, 2); err != nil {
		t.Fatal(err)
	}

	if _, err := w.ConsumeFood(food); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if _, err := w.ConsumeFood(food); !errors.Is(err, ErrNoFood) {
		t.Errorf("second consume error = %v, want ErrNoFood", err)
	}
}

func TestPlaceFoodOccupied(t *testing.T) {
	w := newTestWorld(t, 10, 10, Cell{Row: 0, Col: 0})

	food := Cell{Row: 2, Col: 2}
	if err := w.PlaceFood(food, 2, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.PlaceFood(food, 4, 1); !errors.Is(err, ErrOccupiedCell) {
		t.Errorf("place on food error = %v, want ErrOccupiedCell", err)
	}
	if err := w.PlaceFood(Cell{Row: 0, Col: 0}, 4, 1); !errors.Is(err, ErrOccupiedCell) {
		t.Errorf("place on safe place error = %v, want ErrOccupiedCell", err)
	}
}

func TestPlaceFoodInvalid(t *testing.T) {
	w := newTestWorld(t, 10, 10, Cell{Row: 0, Col: 0})

	if err := w.PlaceFood(Cell{Row: -1, Col: 0}, 2, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("out-of-bounds error = %v, want ErrInvalidParameter", err)
	}
	if err := w.PlaceFood(Cell{Row: 1, Col: 1}, -2, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative yield error = %v, want ErrInvalidParameter", err)
	}
}

func TestNeighborsOf(t *testing.T) {
	w := newTestWorld(t, 5, 5, Cell{Row: 0, Col: 0})

	tests := []struct {
		name string
		cell Cell
		want int
	}{
		{"interior", Cell{Row: 2, Col: 2}, 8},
		{"corner", Cell{Row: 4, Col: 4}, 3},
		{"edge", Cell{Row: 0, Col: 2}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.NeighborsOf(tt.cell)
			if len(got) != tt.want {
				t.Errorf("NeighborsOf(%v) returned %d cells, want %d", tt.cell, len(got), tt.want)
			}
			for _, n := range got {
				if !w.InBounds(n) {
					t.Errorf("neighbor %v out of bounds", n)
				}
				if n.Chebyshev(tt.cell) != 1 {
					t.Errorf("neighbor %v not adjacent to %v", n, tt.cell)
				}
			}
		})
	}
}

func TestFoodWithin(t *testing.T) {
	w := newTestWorld(t, 12, 12, Cell{Row: 0, Col: 0})

	near := Cell{Row: 5, Col: 7}  // Chebyshev 2 from center
	edge := Cell{Row: 1, Col: 5}  // Chebyshev 4
	far := Cell{Row: 11, Col: 11} // Chebyshev 6
	center := Cell{Row: 5, Col: 5}

	for _, c := range []Cell{near, edge, far} {
		if err := w.PlaceFood(c, 2, 1); err != nil {
			t.Fatal(err)
		}
	}

	got := w.FoodWithin(center, 4)
	if len(got) != 2 {
		t.Fatalf("FoodWithin radius 4 = %d items, want 2", len(got))
	}
	// Ordered by row then column
	if got[0].Cell != edge || got[1].Cell != near {
		t.Errorf("scan order = %v, %v; want %v, %v", got[0].Cell, got[1].Cell, edge, near)
	}

	if got := w.FoodWithin(center, 1); len(got) != 0 {
		t.Errorf("FoodWithin radius 1 = %d items, want 0", len(got))
	}
}

func TestBlockedCells(t *testing.T) {
	w := newTestWorld(t, 5, 5, Cell{Row: 0, Col: 0})

	c := Cell{Row: 2, Col: 2}
	if w.IsBlocked(c) {
		t.Error("fresh cell should be open")
	}
	w.SetBlocked(c, true)
	if !w.IsBlocked(c) {
		t.Error("cell should be blocked after SetBlocked")
	}
	if !w.IsBlocked(Cell{Row: -1, Col: 0}) || !w.IsBlocked(Cell{Row: 0, Col: 5}) {
		t.Error("out-of-bounds cells must be blocked")
	}
}

func TestSafePlaceStore(t *testing.T) {
	w := newTestWorld(t, 5, 5, Cell{Row: 2, Col: 2})

	sp := w.SafePlace()
	sp.Store(8)
	sp.Store(4)

	if sp.StoredEnergy != 12 {
		t.Errorf("stored energy = %f, want 12", sp.StoredEnergy)
	}
	if sp.StoredCount != 2 {
		t.Errorf("stored count = %d, want 2", sp.StoredCount)
	}
}
