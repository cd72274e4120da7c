// Package trace provides decision-trace recording for controller analysis.
// This package has no dependencies on sim/ and stores pure data types.
package trace

// AssignmentRecord captures a single picker/pick-point assignment decision.
type AssignmentRecord struct {
	Clock        float64 `json:"clock"`
	PickerID     int     `json:"picker_id"`
	PickPointID  string  `json:"pick_point_id"`
	TravelTime   float64 `json:"travel_time"`
	QueuedRobots int     `json:"queued_robots"`
	PendingItems int     `json:"pending_items"` // item-picks charged to the picker at binding time
}
