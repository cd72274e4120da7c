// Package sim provides the core discrete-event simulation engine for the
// human-robot collaborative order-picking warehouse.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - layout.go: static warehouse graph (pick points, storage bins, items) and the distance model
//   - robot.go / picker.go / order.go: entity state and transitions
//   - warehouse.go: the decision engine (clock advance, phase-ordered event application, Reset/Step)
//
// # Architecture
//
// The environment exposes a Reset/Step contract to an external controller:
// Reset seeds robots, pickers and the order book and advances the clock to
// the first decision point; Step applies a (picker, pick point) assignment
// and advances to the next decision point. All entity mutation happens
// inside the phase-ordered event application in warehouse.go; there is no
// concurrency and no module-level state.
//
// Sub-packages:
//   - sim/workload: order-book generation and CSV replay
//   - sim/trace: assignment decision recording
//
// # Key Interfaces
//
// The extension points are small:
//   - SelectionPolicy: choose one pick point from a candidate set (seven rules)
//   - RewardFunc: optional reward computed at each Step from the cost primitives
package sim
