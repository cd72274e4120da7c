package sim

// Observation is the state handed to the external policy at each decision
// point. Grids are indexed [aisle][shelf position], matching the layout's
// construction order.
type Observation struct {
	RobotQueueGrid     [][]int  // queued robots per pick point
	PickerPresenceGrid [][]bool // whether a picker is bound per pick point
	UnpickedItemsGrid  [][]int  // unpicked items of uncompleted orders per pick point
	IdleRobotCount     int
	RobotCount         int
	PickerCount        int
}

// refreshUnpickedItems resets every point's unpicked-item list and
// re-derives it from the uncompleted orders' unpicked items. Recomputed
// from scratch each call rather than incrementally maintained, so the
// derived lists cannot drift from the authoritative order partitions.
func (env *WarehouseEnv) refreshUnpickedItems() {
	for _, p := range env.Layout.Points {
		p.UnpickedItems = p.UnpickedItems[:0]
	}
	for _, o := range env.OrdersUncompleted {
		for _, itemID := range o.UnpickedItemIDs {
			point := env.Layout.Point(env.Layout.Items[itemID].PickPointID)
			point.UnpickedItems = append(point.UnpickedItems, itemID)
		}
	}
}

// observe builds the observation from the current entity stores.
func (env *WarehouseEnv) observe() *Observation {
	env.refreshUnpickedItems()

	w := env.cfg.Warehouse.AisleCount
	l := env.cfg.Warehouse.PositionsPerShelf
	obs := &Observation{
		RobotQueueGrid:     make([][]int, w),
		PickerPresenceGrid: make([][]bool, w),
		UnpickedItemsGrid:  make([][]int, w),
		RobotCount:         len(env.Robots),
		PickerCount:        len(env.Pickers),
	}
	for nw := 0; nw < w; nw++ {
		obs.RobotQueueGrid[nw] = make([]int, l)
		obs.PickerPresenceGrid[nw] = make([]bool, l)
		obs.UnpickedItemsGrid[nw] = make([]int, l)
		for nl := 0; nl < l; nl++ {
			p := env.Layout.Points[nw*l+nl]
			obs.RobotQueueGrid[nw][nl] = len(p.RobotQueue)
			obs.PickerPresenceGrid[nw][nl] = p.PickerIdx >= 0
			obs.UnpickedItemsGrid[nw][nl] = len(p.UnpickedItems)
		}
	}
	for _, r := range env.Robots {
		if r.State == RobotIdle {
			obs.IdleRobotCount++
		}
	}
	return obs
}
