package sim

import "gonum.org/v1/gonum/stat"

// PickerState represents the lifecycle state of a picker.
type PickerState string

const (
	PickerIdle PickerState = "idle"
	PickerBusy PickerState = "busy" // bound to exactly one pick point
)

// Picker extracts items at pick points. Across its working life a picker may
// only be assigned to points in its home set (here: all pick points, a
// single global area).
type Picker struct {
	ID       int
	Position Position
	State    PickerState
	Speed    float64

	PickPointID string // bound point, "" when unbound

	HomePointIDs []string

	PickStartTime float64 // picker reaches the point and starts picking
	PickEndTime   float64 // all queued items at the point are cleared

	WorkingTime float64

	UnitTimeCost float64
	FireCost     float64
	Rent         RentClass
	HireTime     float64
	Fired        bool
	FireTime     float64
}

// InitialPosition is the centroid of the picker's home pick points.
func InitialPosition(points []*PickPoint) Position {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.Position.X
		ys[i] = p.Position.Y
	}
	return Position{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}
