// Tracks simulation-wide metrics for final reporting.

package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about the simulation for final reporting.
// Useful for evaluating controller policies and debugging behavior over time.
type Metrics struct {
	CompletedOrders int     // number of orders packed at the depot
	TotalDecisions  int     // number of Step calls applied
	TotalDelayCost  float64 // sum of delay costs at order completion
	SimEndedTime    float64 // clock value when done became true

	OrderCycleTimes      []float64          // completion - arrival, per order
	OrderCompletionTimes map[string]float64 // order ID -> completion clock
}

// NewMetrics creates an empty metrics store.
func NewMetrics() *Metrics {
	return &Metrics{
		OrderCompletionTimes: make(map[string]float64),
	}
}

// recordCompletion logs one order's completion.
func (m *Metrics) recordCompletion(o *Order, now float64) {
	m.CompletedOrders++
	m.OrderCycleTimes = append(m.OrderCycleTimes, now-o.ArriveTime)
	m.OrderCompletionTimes[o.ID] = now
	m.TotalDelayCost += OrderDelayCost(o, now)
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print() {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Completed Orders     : %d\n", m.CompletedOrders)
	fmt.Printf("Decisions Applied    : %d\n", m.TotalDecisions)
	fmt.Printf("Simulation End Time  : %.2f s\n", m.SimEndedTime)
	if len(m.OrderCycleTimes) > 0 {
		cycles := append([]float64(nil), m.OrderCycleTimes...)
		sort.Float64s(cycles)
		fmt.Printf("Average Cycle Time   : %.2f s\n", stat.Mean(cycles, nil))
		fmt.Printf("P50 Cycle Time       : %.2f s\n", stat.Quantile(0.5, stat.Empirical, cycles, nil))
		fmt.Printf("P95 Cycle Time       : %.2f s\n", stat.Quantile(0.95, stat.Empirical, cycles, nil))
		fmt.Printf("Total Delay Cost     : %.2f\n", m.TotalDelayCost)
	}
}
