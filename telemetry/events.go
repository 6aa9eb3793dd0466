// Package telemetry tracks foraging run statistics: windowed counters, a
// per-cell visit heatmap, and per-item eat/store records for later analysis.
package telemetry

import "github.com/scurry-sim/scurry/world"

// FoodEvent is one eaten or stored item, recorded with the risk at its cell
// and its Manhattan distance to the safe place.
type FoodEvent struct {
	Tick           int     `csv:"tick"`
	Kind           string  `csv:"kind"`
	Row            int     `csv:"row"`
	Col            int     `csv:"col"`
	Energy         float64 `csv:"energy"`
	Risk           float64 `csv:"risk"`
	DistanceToSafe int     `csv:"distance_to_safe"`
}

// NewAteEvent records a completed in-place meal.
func NewAteEvent(tick int, cell world.Cell, energy, risk float64, distanceToSafe int) FoodEvent {
	return FoodEvent{
		Tick:           tick,
		Kind:           "ate",
		Row:            cell.Row,
		Col:            cell.Col,
		Energy:         energy,
		Risk:           risk,
		DistanceToSafe: distanceToSafe,
	}
}

// NewStoredEvent records a delivery to the safe place.
func NewStoredEvent(tick int, cell world.Cell, energy, risk float64, distanceToSafe int) FoodEvent {
	return FoodEvent{
		Tick:           tick,
		Kind:           "stored",
		Row:            cell.Row,
		Col:            cell.Col,
		Energy:         energy,
		Risk:           risk,
		DistanceToSafe: distanceToSafe,
	}
}
