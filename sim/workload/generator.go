// Package workload produces order books for the warehouse environment:
// synthetic generation with exponential interarrival times, and replay of
// the CSV order format.
package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// GeneratorSpec parameterizes synthetic order-book generation.
// Loaded from YAML or populated from CLI flags.
type GeneratorSpec struct {
	TotalOrders      int       `yaml:"total_orders"`
	MeanInterarrival float64   `yaml:"mean_interarrival"` // seconds between arrivals (exponential)
	ItemsMin         int       `yaml:"items_min"`         // per-order item count range, inclusive
	ItemsMax         int       `yaml:"items_max"`
	DueTimeChoices   []float64 `yaml:"due_time_choices,omitempty"` // offsets from arrival; empty = no due times
	Seed             int64     `yaml:"seed"`
}

// Validate checks the generation parameters.
func (s *GeneratorSpec) Validate() error {
	if s.TotalOrders <= 0 {
		return fmt.Errorf("total_orders must be positive, got %d", s.TotalOrders)
	}
	if s.MeanInterarrival <= 0 {
		return fmt.Errorf("mean_interarrival must be positive, got %v", s.MeanInterarrival)
	}
	if s.ItemsMin <= 0 || s.ItemsMax < s.ItemsMin {
		return fmt.Errorf("item count range [%d, %d] is invalid", s.ItemsMin, s.ItemsMax)
	}
	for _, d := range s.DueTimeChoices {
		if d <= 0 {
			return fmt.Errorf("due time offsets must be positive, got %v", d)
		}
	}
	return nil
}

// GenerateOrders creates an order book over the layout's items.
// Deterministic given the same spec: interarrival gaps are exponential with
// the configured mean (truncated to whole seconds, so simultaneous arrivals
// occur at high rates), and each order samples a uniform item subset
// without replacement. Orders come back sorted by arrival time with
// sequential ids.
func GenerateOrders(spec *GeneratorSpec, layout *sim.Layout, orderCfg *sim.OrderConfig) ([]*sim.Order, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator spec: %w", err)
	}
	if spec.ItemsMax > len(layout.ItemIDs) {
		return nil, fmt.Errorf("items_max %d exceeds the %d items in the layout", spec.ItemsMax, len(layout.ItemIDs))
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed)).ForSubsystem(sim.SubsystemWorkload)

	orders := make([]*sim.Order, 0, spec.TotalOrders)
	arrival := 0.0
	for n := 1; n <= spec.TotalOrders; n++ {
		arrival += math.Floor(rng.ExpFloat64() * spec.MeanInterarrival)

		count := spec.ItemsMin + rng.Intn(spec.ItemsMax-spec.ItemsMin+1)
		itemIDs := sampleItems(rng, layout.ItemIDs, count)

		order := sim.NewOrder(fmt.Sprintf("order-%d", n), itemIDs, arrival, orderCfg.UnitDelayCost)
		if len(spec.DueTimeChoices) > 0 {
			order.SetDueTime(arrival + spec.DueTimeChoices[rng.Intn(len(spec.DueTimeChoices))])
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// sampleItems draws count item ids uniformly without replacement,
// preserving nothing of the source order (a fresh permutation per order).
func sampleItems(rng *rand.Rand, itemIDs []string, count int) []string {
	perm := rng.Perm(len(itemIDs))
	out := make([]string, count)
	for i := 0; i < count; i++ {
		out[i] = itemIDs[perm[i]]
	}
	return out
}
