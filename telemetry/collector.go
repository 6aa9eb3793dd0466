package telemetry

import "github.com/scurry-sim/scurry/world"

// Collector accumulates per-tick observations within stats windows and
// produces WindowStats on flush. Eat/store records and the visit heatmap
// accumulate over the whole run.
type Collector struct {
	windowTicks     int
	windowStartTick int

	ate           int
	stored        int
	energyEaten   float64
	energyStored  float64
	stepsTraveled int
	idleTicks     int
	planFailures  int
	riskSamples   []float64

	events  []FoodEvent
	heatmap *Heatmap
}

// NewCollector creates a collector flushing every windowTicks ticks over a
// width x height grid.
func NewCollector(windowTicks, width, height int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: windowTicks,
		heatmap:     NewHeatmap(width, height),
	}
}

// RecordTick samples the agent's cell once per simulation tick.
func (c *Collector) RecordTick(pos world.Cell, risk float64, moved bool) {
	c.heatmap.Visit(pos)
	c.riskSamples = append(c.riskSamples, risk)
	if moved {
		c.stepsTraveled++
	}
}

// RecordAte records a completed in-place meal.
func (c *Collector) RecordAte(ev FoodEvent) {
	c.ate++
	c.energyEaten += ev.Energy
	c.events = append(c.events, ev)
}

// RecordStored records a delivery to the safe place.
func (c *Collector) RecordStored(ev FoodEvent) {
	c.stored++
	c.energyStored += ev.Energy
	c.events = append(c.events, ev)
}

// RecordIdle records a tick where movement was unaffordable.
func (c *Collector) RecordIdle() {
	c.idleTicks++
}

// RecordPlanFailure records an unreachable route request.
func (c *Collector) RecordPlanFailure() {
	c.planFailures++
}

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces the window's stats and resets the counters. The caller
// provides the run state sampled at window end.
func (c *Collector) Flush(currentTick int, agentEnergy, storedTotal float64, foodRemaining int) WindowStats {
	mean, std, p10, p50, p90 := riskExposureStats(c.riskSamples)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Ate:           c.ate,
		Stored:        c.stored,
		EnergyEaten:   c.energyEaten,
		EnergyStored:  c.energyStored,
		StepsTraveled: c.stepsTraveled,
		IdleTicks:     c.idleTicks,
		PlanFailures:  c.planFailures,

		RiskMean: mean,
		RiskStd:  std,
		RiskP10:  p10,
		RiskP50:  p50,
		RiskP90:  p90,

		AgentEnergy:   agentEnergy,
		StoredTotal:   storedTotal,
		FoodRemaining: foodRemaining,
	}

	c.windowStartTick = currentTick
	c.ate = 0
	c.stored = 0
	c.energyEaten = 0
	c.energyStored = 0
	c.stepsTraveled = 0
	c.idleTicks = 0
	c.planFailures = 0
	c.riskSamples = c.riskSamples[:0]

	return stats
}

// Events returns all eat/store records accumulated so far.
func (c *Collector) Events() []FoodEvent {
	return c.events
}

// Heatmap returns the run-wide visit heatmap.
func (c *Collector) Heatmap() *Heatmap {
	return c.heatmap
}

// WindowTicks returns the window length in ticks.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
