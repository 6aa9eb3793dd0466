package agent

import (
	"math"
	"math/rand"
	"sort"

	"github.com/scurry-sim/scurry/world"
)

// maxConcentration keeps the log-series parameter away from 1, where the
// distribution degenerates.
const maxConcentration = 0.995

// chooseExploreTarget picks an exploration target from the perception ring:
// candidate cells are ranked by risk ascending and a rank is drawn from a
// log-series distribution whose concentration follows the agent's risk
// aversion. Higher aversion concentrates the draw on the lowest-risk cells;
// aversion near zero flattens it toward a uniform pick.
//
// Returns false when no traversable cell exists around the position.
func chooseExploreTarget(w *world.GridWorld, pos world.Cell, radius int, riskAversion float64, rng *rand.Rand) (world.Cell, bool) {
	candidates := ringCells(w, pos, radius)
	if len(candidates) == 0 {
		return world.Cell{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := w.RiskAt(candidates[i]), w.RiskAt(candidates[j])
		if ri != rj {
			return ri < rj
		}
		if candidates[i].Row != candidates[j].Row {
			return candidates[i].Row < candidates[j].Row
		}
		return candidates[i].Col < candidates[j].Col
	})

	weights := logSeriesWeights(len(candidates), riskAversion)
	draw := rng.Float64()
	cum := 0.0
	for i, p := range weights {
		cum += p
		if draw < cum {
			return candidates[i], true
		}
	}
	return candidates[len(candidates)-1], true
}

// ringCells collects traversable cells at the given Chebyshev distance,
// shrinking the ring until it finds any.
func ringCells(w *world.GridWorld, pos world.Cell, radius int) []world.Cell {
	for r := radius; r >= 1; r-- {
		var out []world.Cell
		for row := pos.Row - r; row <= pos.Row+r; row++ {
			for col := pos.Col - r; col <= pos.Col+r; col++ {
				c := world.Cell{Row: row, Col: col}
				if pos.Chebyshev(c) != r || w.IsBlocked(c) {
					continue
				}
				if w.OccupancyAt(c) == world.Food {
					continue
				}
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// logSeriesWeights returns a probability over risk ranks 0..n-1:
// P(rank k) ~ -p^(k+1) / ((k+1) * ln(1-p)), with the normalization
// remainder spread uniformly. The concentration p maps risk aversion
// through a logistic curve so aversion 1 gives p = 0.8 and aversion
// near 0 pushes p toward 1 (a heavier, near-uniform tail).
func logSeriesWeights(n int, riskAversion float64) []float64 {
	p := concentration(riskAversion)
	logTerm := math.Log(1 - p)

	weights := make([]float64, n)
	sum := 0.0
	for k := range weights {
		x := float64(k + 1)
		weights[k] = -math.Pow(p, x) / (x * logTerm)
		sum += weights[k]
	}
	residual := (1 - sum) / float64(n)
	for k := range weights {
		weights[k] += residual
	}
	return weights
}

// concentration maps risk aversion to the log-series parameter, clamped away
// from the degenerate p = 1 as aversion approaches zero.
func concentration(riskAversion float64) float64 {
	if riskAversion <= 0 {
		return maxConcentration
	}
	p := 0.8 + (logistic(1/riskAversion-1)-0.5)/2.5
	if p > maxConcentration {
		p = maxConcentration
	}
	return p
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
