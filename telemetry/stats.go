package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowStartTick int `csv:"-"`
	WindowEndTick   int `csv:"window_end"`

	// Events during the window
	Ate           int     `csv:"ate"`
	Stored        int     `csv:"stored"`
	EnergyEaten   float64 `csv:"energy_eaten"`
	EnergyStored  float64 `csv:"energy_stored"`
	StepsTraveled int     `csv:"steps_traveled"`
	IdleTicks     int     `csv:"idle_ticks"`
	PlanFailures  int     `csv:"plan_failures"`

	// Per-tick risk exposure at the agent's cell
	RiskMean float64 `csv:"risk_mean"`
	RiskStd  float64 `csv:"risk_std"`
	RiskP10  float64 `csv:"risk_p10"`
	RiskP50  float64 `csv:"risk_p50"`
	RiskP90  float64 `csv:"risk_p90"`

	// Run state sampled at window end
	AgentEnergy   float64 `csv:"agent_energy"`
	StoredTotal   float64 `csv:"stored_total"`
	FoodRemaining int     `csv:"food_remaining"`
}

// riskExposureStats summarizes per-tick risk samples. Samples are sorted in
// place for the empirical quantiles.
func riskExposureStats(samples []float64) (mean, std, p10, p50, p90 float64) {
	if len(samples) == 0 {
		return 0, 0, 0, 0, 0
	}
	sort.Float64s(samples)

	mean = stat.Mean(samples, nil)
	if len(samples) > 1 {
		std = stat.StdDev(samples, nil)
	}
	p10 = stat.Quantile(0.10, stat.Empirical, samples, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, samples, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, samples, nil)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Int("ate", s.Ate),
		slog.Int("stored", s.Stored),
		slog.Float64("energy_eaten", s.EnergyEaten),
		slog.Float64("energy_stored", s.EnergyStored),
		slog.Int("steps_traveled", s.StepsTraveled),
		slog.Int("idle_ticks", s.IdleTicks),
		slog.Int("plan_failures", s.PlanFailures),
		slog.Float64("risk_mean", s.RiskMean),
		slog.Float64("risk_std", s.RiskStd),
		slog.Float64("risk_p10", s.RiskP10),
		slog.Float64("risk_p50", s.RiskP50),
		slog.Float64("risk_p90", s.RiskP90),
		slog.Float64("agent_energy", s.AgentEnergy),
		slog.Float64("stored_total", s.StoredTotal),
		slog.Int("food_remaining", s.FoodRemaining),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
