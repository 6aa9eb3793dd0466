// Package economics provides pure foraging-economics evaluation functions.
// Nothing here mutates world state.
package economics

import "github.com/scurry-sim/scurry/world"

// Decision is the outcome of an eat-or-forage evaluation.
type Decision uint8

const (
	// EatNow means consume the item where it lies.
	EatNow Decision = iota
	// Forage means carry the item to the safe place.
	Forage
)

func (d Decision) String() string {
	if d == EatNow {
		return "EatNow"
	}
	return "Forage"
}

// Params holds the cost coefficients of the energy model.
type Params struct {
	// HandlingCostRate converts handling time to energy cost. The cost curve
	// is linear: cost = HandlingCostRate * handlingTime.
	HandlingCostRate float64
	// MoveCost is the energy spent per movement step.
	MoveCost float64
}

// Transport describes a planned route to the safe place.
type Transport struct {
	Steps          int     // cells traversed
	CumulativeRisk float64 // summed risk over traversed cells
}

// NetEnergyReturn is the energy gained from an item after handling cost.
// Higher handling time never increases the return.
func NetEnergyReturn(f world.FoodItem, p Params) float64 {
	return f.EnergyYield - p.HandlingCostRate*f.HandlingTime
}

// Utility is the risk-adjusted value of an outcome: net energy discounted by
// risk exposure scaled with the agent's risk aversion.
func Utility(netEnergy, riskAversion, cumulativeRisk float64) float64 {
	return netEnergy - riskAversion*cumulativeRisk
}

// EatOrForage compares consuming the item in place against carrying it to the
// safe place.
//
// Eating exposes the agent to the local risk for the item's handling time.
// Foraging pays the movement cost of the route and its cumulative risk, but
// banks the full yield at the safe place. Ties favor EatNow.
func EatOrForage(f world.FoodItem, localRisk float64, toSafe Transport, riskAversion float64, p Params) Decision {
	net := NetEnergyReturn(f, p)

	eatValue := Utility(net, riskAversion, localRisk*f.HandlingTime)
	storeValue := Utility(net-p.MoveCost*float64(toSafe.Steps), riskAversion, toSafe.CumulativeRisk)

	if storeValue > eatValue {
		return Forage
	}
	return EatNow
}
