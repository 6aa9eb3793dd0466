// Package sim wires the grid world, the foraging agent, the planner, and
// telemetry into a reproducible run.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/scurry-sim/scurry/agent"
	"github.com/scurry-sim/scurry/config"
	"github.com/scurry-sim/scurry/economics"
	"github.com/scurry-sim/scurry/field"
	"github.com/scurry-sim/scurry/planner"
	"github.com/scurry-sim/scurry/telemetry"
	"github.com/scurry-sim/scurry/world"
)

// InitializeWorld builds the risk field, the grid world, and the initial food
// distribution from configuration. The rng drives food placement; the risk
// field uses its own configured seed.
func InitializeWorld(cfg *config.Config, rng *rand.Rand) (*world.GridWorld, error) {
	w, h := cfg.Grid.Width, cfg.Grid.Height
	if cfg.Food.Density < 0 || cfg.Food.Density > 1 {
		return nil, fmt.Errorf("%w: food density %f outside [0,1]",
			world.ErrInvalidParameter, cfg.Food.Density)
	}

	rf, err := generateField(cfg, w, h)
	if err != nil {
		return nil, err
	}

	safe := world.Cell{Row: cfg.SafePlace.Row, Col: cfg.SafePlace.Col}
	if safe.Row < 0 || safe.Col < 0 {
		safe = world.Cell{Row: h / 2, Col: w / 2}
	}

	gw, err := world.NewGridWorld(rf, safe)
	if err != nil {
		return nil, err
	}

	if err := placeFood(gw, cfg, rng); err != nil {
		return nil, err
	}
	return gw, nil
}

func generateField(cfg *config.Config, w, h int) (*field.RiskField, error) {
	switch cfg.Risk.Generator {
	case "", "spectral":
		return field.Generate(w, h, cfg.Risk.CorrelationLength, cfg.Risk.Seed)
	case "simplex":
		return field.GenerateSimplex(w, h, cfg.Risk.CorrelationLength, cfg.Risk.Seed)
	}
	return nil, fmt.Errorf("%w: unknown risk generator %q",
		world.ErrInvalidParameter, cfg.Risk.Generator)
}

// placeFood scatters density*W*H items over shuffled empty cells, with yield
// and handling time drawn uniformly from the configured tables.
func placeFood(gw *world.GridWorld, cfg *config.Config, rng *rand.Rand) error {
	target := int(cfg.Food.Density * float64(gw.Width()*gw.Height()))
	if target == 0 {
		return nil
	}

	var empties []world.Cell
	for row := 0; row < gw.Height(); row++ {
		for col := 0; col < gw.Width(); col++ {
			c := world.Cell{Row: row, Col: col}
			if gw.OccupancyAt(c) == world.Empty {
				empties = append(empties, c)
			}
		}
	}
	if target > len(empties) {
		return fmt.Errorf("%w: %d food items do not fit on %d empty cells",
			world.ErrInvalidParameter, target, len(empties))
	}

	rng.Shuffle(len(empties), func(i, j int) {
		empties[i], empties[j] = empties[j], empties[i]
	})

	yields := cfg.Food.EnergyYields
	handlings := cfg.Food.HandlingTimes
	for _, c := range empties[:target] {
		yield := yields[rng.Intn(len(yields))]
		handling := handlings[rng.Intn(len(handlings))]
		if err := gw.PlaceFood(c, yield, handling); err != nil {
			return err
		}
	}
	return nil
}

// Session is the aggregate root of one run: world, agent, planner, rng, and
// telemetry, stepped one decision cycle at a time.
type Session struct {
	cfg       *config.Config
	world     *world.GridWorld
	agent     *agent.Agent
	planner   *planner.Planner
	rng       *rand.Rand
	collector *telemetry.Collector
	tick      int
}

// NewSession builds a run from configuration. The seed drives food placement
// and the agent's exploration draws.
func NewSession(cfg *config.Config, seed int64) (*Session, error) {
	rng := rand.New(rand.NewSource(seed))

	gw, err := InitializeWorld(cfg, rng)
	if err != nil {
		return nil, err
	}

	start := world.Cell{Row: cfg.Agent.StartRow, Col: cfg.Agent.StartCol}
	if start.Row < 0 || start.Col < 0 {
		// One cell past the safe place, clamped to the grid.
		safe := gw.SafePlace().Cell
		start = world.Cell{Row: safe.Row + 1, Col: safe.Col + 1}
		if start.Row >= gw.Height() {
			start.Row = safe.Row - 1
		}
		if start.Col >= gw.Width() {
			start.Col = safe.Col - 1
		}
	}
	if !gw.InBounds(start) {
		return nil, fmt.Errorf("%w: agent start %v outside %dx%d grid",
			world.ErrInvalidParameter, start, gw.Width(), gw.Height())
	}

	econ := economics.Params{
		HandlingCostRate: cfg.Agent.HandlingCostRate,
		MoveCost:         cfg.Agent.MoveCost,
	}
	ag, err := agent.New(start, cfg.Agent.InitialEnergy, cfg.Agent.RiskAversion,
		cfg.Agent.PerceptionRadius, econ)
	if err != nil {
		return nil, err
	}

	return &Session{
		cfg:       cfg,
		world:     gw,
		agent:     ag,
		planner:   planner.New(),
		rng:       rng,
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindowTicks, gw.Width(), gw.Height()),
	}, nil
}

// Step advances the simulation one decision/movement tick and records it.
func (s *Session) Step() (agent.StepResult, error) {
	s.tick++

	res, err := s.agent.Step(s.world, s.planner, s.rng)
	if err != nil {
		return agent.StepResult{}, fmt.Errorf("tick %d: %w", s.tick, err)
	}

	s.collector.RecordTick(res.Pos, s.world.RiskAt(res.Pos), res.Moved)

	switch res.Event.Kind {
	case agent.EventAte:
		s.collector.RecordAte(telemetry.NewAteEvent(
			s.tick, res.Event.Cell, res.Event.Energy, res.Event.Risk, res.Event.DistanceToSafe))
	case agent.EventStored:
		s.collector.RecordStored(telemetry.NewStoredEvent(
			s.tick, res.Event.Cell, res.Event.Energy, res.Event.Risk, res.Event.DistanceToSafe))
	case agent.EventIdle:
		s.collector.RecordIdle()
	case agent.EventPlanFailed:
		s.collector.RecordPlanFailure()
	}

	return res, nil
}

// Done reports whether nothing remains to forage: no food in the world and
// nothing carried or being handled.
func (s *Session) Done() bool {
	if s.world.FoodCount() > 0 {
		return false
	}
	if _, ok := s.agent.Carrying(); ok {
		return false
	}
	return s.agent.State() != agent.Eating
}

// RunSummary describes a finished run.
type RunSummary struct {
	Ticks         int
	AgentEnergy   float64
	StoredEnergy  float64
	StoredCount   int
	FoodRemaining int
}

// Run steps the simulation until maxTicks or until nothing remains to
// forage, flushing stats windows to the output manager along the way.
// A nil output manager disables file output; stats are still logged.
func (s *Session) Run(maxTicks int, om *telemetry.OutputManager) (RunSummary, error) {
	for s.tick < maxTicks && !s.Done() {
		if _, err := s.Step(); err != nil {
			return RunSummary{}, err
		}

		if s.collector.ShouldFlush(s.tick) {
			if err := s.flush(om); err != nil {
				return RunSummary{}, err
			}
		}
	}

	if err := s.flush(om); err != nil {
		return RunSummary{}, err
	}
	if err := om.WriteEvents(s.collector.Events()); err != nil {
		return RunSummary{}, err
	}
	if err := om.WriteHeatmap(s.collector.Heatmap()); err != nil {
		return RunSummary{}, err
	}

	sp := s.world.SafePlace()
	return RunSummary{
		Ticks:         s.tick,
		AgentEnergy:   s.agent.Energy(),
		StoredEnergy:  sp.StoredEnergy,
		StoredCount:   sp.StoredCount,
		FoodRemaining: s.world.FoodCount(),
	}, nil
}

func (s *Session) flush(om *telemetry.OutputManager) error {
	stats := s.collector.Flush(s.tick, s.agent.Energy(),
		s.world.SafePlace().StoredEnergy, s.world.FoodCount())
	if stats.WindowEndTick == stats.WindowStartTick {
		return nil
	}
	slog.Info("stats", "window", stats)
	return om.WriteTelemetry(stats)
}

// Tick returns the number of completed ticks.
func (s *Session) Tick() int { return s.tick }

// World returns the session's grid world.
func (s *Session) World() *world.GridWorld { return s.world }

// Collector returns the session's telemetry collector.
func (s *Session) Collector() *telemetry.Collector { return s.collector }

// RiskAt returns the predation risk at the cell.
func (s *Session) RiskAt(c world.Cell) float64 { return s.world.RiskAt(c) }

// OccupancyAt returns the occupancy of the cell.
func (s *Session) OccupancyAt(c world.Cell) world.Occupancy { return s.world.OccupancyAt(c) }

// AgentPosition returns the agent's current cell.
func (s *Session) AgentPosition() world.Cell { return s.agent.Pos() }

// AgentEnergy returns the agent's current energy.
func (s *Session) AgentEnergy() float64 { return s.agent.Energy() }

// AgentState returns the agent's current state.
func (s *Session) AgentState() agent.State { return s.agent.State() }

// StoredEnergy returns the total energy delivered to the safe place.
func (s *Session) StoredEnergy() float64 { return s.world.SafePlace().StoredEnergy }
