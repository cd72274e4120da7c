package sim

// RobotState represents the lifecycle state of a robot.
type RobotState string

const (
	RobotIdle RobotState = "idle" // at the depot, no order
	RobotBusy RobotState = "busy" // cycling through pick points for an order
)

// RentClass is the long-term vs short-term employment/lease category.
// It affects cost-rate accounting only, never scheduling.
type RentClass string

const (
	RentLong  RentClass = "long"
	RentShort RentClass = "short"
)

func parseRent(s string) (RentClass, error) {
	switch RentClass(s) {
	case RentLong, RentShort:
		return RentClass(s), nil
	default:
		return "", configErrorf("unknown rent class %q", s)
	}
}

// Robot ferries one order at a time between pick points and the depot.
//
// The scheduled-event timestamps drive the decision engine: a zero value
// means "no event pending" (the engine only honors timers strictly greater
// than the current clock).
type Robot struct {
	ID       int
	Position Position
	State    RobotState
	Speed    float64

	OrderID     string // assigned order, "" when idle
	PickPointID string // point whose queue the robot is in (or travelling from)

	// RemainingItemIDs snapshots the assigned order's item list in the
	// order's own sequence and shrinks as pick points are cleared.
	RemainingItemIDs []string

	PickPointCompleteTime float64 // robot's items at the current point are cleared
	MoveToPickPointTime   float64 // robot reaches its next pick point
	MoveToDepotTime       float64 // robot reaches the depot (includes pack time)

	WorkingTime float64

	UnitRunCost float64
	Rent        RentClass
	RunStarted  bool
	RunStart    float64
	RunEnded    bool
	RunEnd      float64
}

// AssignOrder binds an order to the robot and snapshots its item list as
// the remaining-items plan. The sequence is preserved as given, without
// reordering by position.
func (r *Robot) AssignOrder(o *Order) {
	r.OrderID = o.ID
	r.RemainingItemIDs = append([]string(nil), o.ItemIDs...)
}

// ReleaseOrder clears the order binding after depot return.
func (r *Robot) ReleaseOrder() {
	r.OrderID = ""
	r.RemainingItemIDs = nil
}

// RemainingItemsAt returns the remaining items the robot must collect at
// the given pick point, in plan order.
func (r *Robot) RemainingItemsAt(pointID string, items map[string]*Item) []*Item {
	var out []*Item
	for _, id := range r.RemainingItemIDs {
		if items[id].PickPointID == pointID {
			out = append(out, items[id])
		}
	}
	return out
}

// removeRemaining deletes one item from the remaining plan.
func (r *Robot) removeRemaining(itemID string) {
	for i, id := range r.RemainingItemIDs {
		if id == itemID {
			r.RemainingItemIDs = append(r.RemainingItemIDs[:i], r.RemainingItemIDs[i+1:]...)
			return
		}
	}
}

// candidatePointIDs returns the pick points still holding remaining items,
// deduplicated in remaining-list order. The order matters: selection rules
// tie-break on it.
func (r *Robot) candidatePointIDs(items map[string]*Item) []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range r.RemainingItemIDs {
		pointID := items[id].PickPointID
		if !seen[pointID] {
			seen[pointID] = true
			out = append(out, pointID)
		}
	}
	return out
}
