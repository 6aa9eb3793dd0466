package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/scurry-sim/scurry/agent"
	"github.com/scurry-sim/scurry/config"
	"github.com/scurry-sim/scurry/world"
)

func testConfig() *config.Config {
	return &config.Config{
		Grid: config.GridConfig{Width: 10, Height: 10},
		Risk: config.RiskConfig{Seed: 500, CorrelationLength: 3, Generator: "spectral"},
		Food: config.FoodConfig{
			Density:       0,
			EnergyYields:  []float64{2, 4, 8},
			HandlingTimes: []float64{1, 2, 3},
		},
		SafePlace: config.SafePlaceConfig{Row: 0, Col: 0},
		Agent: config.AgentConfig{
			StartRow:         5,
			StartCol:         5,
			InitialEnergy:    20,
			MoveCost:         0.1,
			RiskAversion:     0,
			PerceptionRadius: 4,
			HandlingCostRate: 0.5,
		},
		Telemetry: config.TelemetryConfig{StatsWindowTicks: 50},
		Run:       config.RunConfig{MaxTicks: 500},
	}
}

func TestInitializeWorldPlacesFood(t *testing.T) {
	cfg := testConfig()
	cfg.Grid = config.GridConfig{Width: 20, Height: 20}
	cfg.Food.Density = 0.05

	rng := rand.New(rand.NewSource(42))
	gw, err := InitializeWorld(cfg, rng)
	if err != nil {
		t.Fatalf("InitializeWorld: %v", err)
	}

	if gw.FoodCount() != 20 {
		t.Errorf("food count = %d, want 20 (density 0.05 on 400 cells)", gw.FoodCount())
	}

	center := world.Cell{Row: 10, Col: 10}
	items := gw.FoodWithin(center, 20)
	if len(items) != 20 {
		t.Fatalf("visible items = %d, want 20", len(items))
	}
	allowedYield := map[float64]bool{2: true, 4: true, 8: true}
	allowedHandling := map[float64]bool{1: true, 2: true, 3: true}
	for _, item := range items {
		if gw.OccupancyAt(item.Cell) != world.Food {
			t.Errorf("cell %v occupancy = %s, want food", item.Cell, gw.OccupancyAt(item.Cell))
		}
		if !allowedYield[item.EnergyYield] || !allowedHandling[item.HandlingTime] {
			t.Errorf("item %+v outside configured tables", item)
		}
	}
}

func TestInitializeWorldDefaultSafePlace(t *testing.T) {
	cfg := testConfig()
	cfg.SafePlace = config.SafePlaceConfig{Row: -1, Col: -1}

	gw, err := InitializeWorld(cfg, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("InitializeWorld: %v", err)
	}

	want := world.Cell{Row: 5, Col: 5}
	if gw.SafePlace().Cell != want {
		t.Errorf("safe place = %v, want grid center %v", gw.SafePlace().Cell, want)
	}
}

func TestInitializeWorldRejectsBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Food.Density = 1.5
	if _, err := InitializeWorld(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Error("density above 1 accepted")
	}

	cfg = testConfig()
	cfg.Risk.Generator = "perlin"
	if _, err := InitializeWorld(cfg, rand.New(rand.NewSource(1))); err == nil {
		t.Error("unknown generator accepted")
	}
}

// Agent on the only food item with zero aversion eats in place and gains the
// net return; the safe place stays empty.
func TestSessionEatInPlace(t *testing.T) {
	cfg := testConfig()
	s, err := NewSession(cfg, 7)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	foodCell := world.Cell{Row: 5, Col: 5}
	if err := s.World().PlaceFood(foodCell, 10, 1); err != nil {
		t.Fatalf("PlaceFood: %v", err)
	}

	wantStates := []agent.State{agent.Deciding, agent.Eating, agent.Searching}
	for i, want := range wantStates {
		res, err := s.Step()
		if err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		if res.State != want {
			t.Errorf("tick %d state = %s, want %s", i, res.State, want)
		}
	}

	// Net return 10 - 0.5*1, no movement spent.
	if math.Abs(s.AgentEnergy()-29.5) > 1e-12 {
		t.Errorf("energy = %v, want 29.5", s.AgentEnergy())
	}
	if s.StoredEnergy() != 0 {
		t.Errorf("stored energy = %v, want 0", s.StoredEnergy())
	}
	if !s.Done() {
		t.Error("session not done with no food left")
	}

	events := s.Collector().Events()
	if len(events) != 1 || events[0].Kind != "ate" {
		t.Fatalf("events = %+v, want a single ate record", events)
	}
	if events[0].DistanceToSafe != foodCell.Manhattan(world.Cell{Row: 0, Col: 0}) {
		t.Errorf("event distance = %d, want %d", events[0].DistanceToSafe,
			foodCell.Manhattan(world.Cell{Row: 0, Col: 0}))
	}
}

func TestSessionRunStopsWhenForaged(t *testing.T) {
	cfg := testConfig()
	s, err := NewSession(cfg, 7)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.World().PlaceFood(world.Cell{Row: 5, Col: 5}, 10, 1); err != nil {
		t.Fatalf("PlaceFood: %v", err)
	}

	summary, err := s.Run(cfg.Run.MaxTicks, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Ticks >= cfg.Run.MaxTicks {
		t.Errorf("run used all %d ticks", summary.Ticks)
	}
	if summary.FoodRemaining != 0 {
		t.Errorf("food remaining = %d, want 0", summary.FoodRemaining)
	}
	if math.Abs(summary.AgentEnergy-29.5) > 1e-12 {
		t.Errorf("final energy = %v, want 29.5", summary.AgentEnergy)
	}
}

func TestSessionDeterminism(t *testing.T) {
	cfg := testConfig()
	cfg.Food.Density = 0.1
	cfg.Agent.RiskAversion = 0.5

	first, err := NewSession(cfg, 42)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	second, err := NewSession(cfg, 42)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	for i := 0; i < 30; i++ {
		a, err := first.Step()
		if err != nil {
			t.Fatalf("first Step %d: %v", i, err)
		}
		b, err := second.Step()
		if err != nil {
			t.Fatalf("second Step %d: %v", i, err)
		}
		if a.Pos != b.Pos || a.State != b.State || a.Energy != b.Energy {
			t.Fatalf("tick %d diverged: %+v vs %+v", i, a, b)
		}
	}
}

func TestSessionAccessors(t *testing.T) {
	cfg := testConfig()
	s, err := NewSession(cfg, 1)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	for row := 0; row < cfg.Grid.Height; row++ {
		for col := 0; col < cfg.Grid.Width; col++ {
			r := s.RiskAt(world.Cell{Row: row, Col: col})
			if r < 0 || r > 1 {
				t.Fatalf("risk at (%d,%d) = %f outside [0,1]", row, col, r)
			}
		}
	}

	if s.OccupancyAt(world.Cell{Row: 0, Col: 0}) != world.SafePlaceOcc {
		t.Error("safe place cell not marked")
	}
	if s.AgentPosition() != (world.Cell{Row: 5, Col: 5}) {
		t.Errorf("agent position = %v, want (5,5)", s.AgentPosition())
	}
	if s.AgentEnergy() != 20 {
		t.Errorf("agent energy = %v, want 20", s.AgentEnergy())
	}
	if s.AgentState() != agent.Searching {
		t.Errorf("agent state = %s, want searching", s.AgentState())
	}
}
