package sim

// Cost primitives. These are pure functions over entity state; they are not
// wired into a reward by default. An external controller composes them
// through RewardFunc.

// RewardFunc computes the reward returned by Step. The environment invokes
// it after advancing to the next decision point; nil means reward 0.
type RewardFunc func(env *WarehouseEnv) float64

// OrderDelayCost is the accumulated lateness cost of an order: zero before
// the due time, then unit cost per second past due. The completion time is
// used once known, otherwise the current clock. Orders without a due time
// never accrue delay cost.
func OrderDelayCost(o *Order, now float64) float64 {
	if !o.HasDueTime {
		return 0
	}
	end := now
	if o.Completed {
		end = o.CompleteTime
	}
	if end <= o.DueTime {
		return 0
	}
	return (end - o.DueTime) * o.UnitDelayCost
}

// RobotRunCost is the robot's accumulated running cost over its billing
// window. The window opens at the robot's first dispatch; before that the
// cost is zero.
func RobotRunCost(r *Robot, now float64) float64 {
	if !r.RunStarted {
		return 0
	}
	end := now
	if r.RunEnded {
		end = r.RunEnd
	}
	return (end - r.RunStart) * r.UnitRunCost
}

// PickerHireCost is the picker's accumulated employment cost, plus the
// one-off firing cost once fired.
func PickerHireCost(p *Picker, now float64) float64 {
	if p.Fired {
		return (p.FireTime-p.HireTime)*p.UnitTimeCost + p.FireCost
	}
	return (now - p.HireTime) * p.UnitTimeCost
}
