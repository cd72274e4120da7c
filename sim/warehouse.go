// sim/warehouse.go
//
// The decision engine: clock advance over pending entity timers and the
// phase-ordered application of simultaneous events.

package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/warehouse-sim/warehouse-sim/sim/trace"
)

// Action pairs an idle picker with an awaiting pick point. It is the only
// externally driven transition.
type Action struct {
	PickerID    int
	PickPointID string
}

// WarehouseEnv is the simulation environment. It owns all entities in flat
// indexed stores; pick-point queues and picker/order bindings are ids into
// those stores, never owning references. The caller drives it exclusively
// through Reset and Step.
type WarehouseEnv struct {
	cfg    *Config
	Layout *Layout

	Clock float64
	Done  bool

	Robots  []*Robot
	Pickers []*Picker

	Orders            []*Order
	OrdersNotArrived  []*Order // FIFO by arrival time
	OrdersUnassigned  []*Order // arrived, no robot yet
	OrdersUncompleted []*Order // arrived, not yet packed
	ordersByID        map[string]*Order

	Metrics  *Metrics
	RewardFn RewardFunc
	Trace    *trace.SimulationTrace

	robotPolicy  SelectionPolicy
	pickerPolicy SelectionPolicy
	rng          *PartitionedRNG
}

// NewWarehouseEnv validates the configuration, builds the static layout and
// constructs the selection policies. The environment is inert until Reset.
func NewWarehouseEnv(cfg *Config, key SimulationKey) (*WarehouseEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := NewPartitionedRNG(key)
	robotPolicy, err := NewSelectionPolicy(SelectionRule(cfg.Robot.SelectionRuleID), rng.ForSubsystem(SubsystemRobotSelection))
	if err != nil {
		return nil, err
	}
	pickerPolicy, err := NewSelectionPolicy(SelectionRule(cfg.Picker.SelectionRuleID), rng.ForSubsystem(SubsystemPickerSelection))
	if err != nil {
		return nil, err
	}
	return &WarehouseEnv{
		cfg:          cfg,
		Layout:       BuildLayout(&cfg.Warehouse, cfg.Item.PickTime),
		Metrics:      NewMetrics(),
		robotPolicy:  robotPolicy,
		pickerPolicy: pickerPolicy,
		rng:          rng,
	}, nil
}

// Config returns the validated configuration the environment was built with.
func (env *WarehouseEnv) Config() *Config { return env.cfg }

// RNG returns the environment's partitioned random source.
func (env *WarehouseEnv) RNG() *PartitionedRNG { return env.rng }

// Reset (re)initializes robots and pickers per the configured counts, zeroes
// the clock, seeds all orders as not-yet-arrived, advances to the first
// decision point and returns the initial observation.
//
// Orders must be ordered by non-decreasing arrival time and reference items
// that exist in the layout.
func (env *WarehouseEnv) Reset(orders []*Order) (*Observation, error) {
	if err := env.validateOrders(orders); err != nil {
		return nil, err
	}

	env.Clock = 0
	env.Done = false
	env.Metrics = NewMetrics()

	env.Orders = orders
	env.OrdersNotArrived = append([]*Order(nil), orders...)
	env.OrdersUnassigned = nil
	env.OrdersUncompleted = nil
	env.ordersByID = make(map[string]*Order, len(orders))
	for _, o := range orders {
		env.ordersByID[o.ID] = o
	}

	for _, p := range env.Layout.Points {
		p.RobotQueue = nil
		p.PickerIdx = -1
		p.UnpickedItems = nil
	}

	env.Robots = make([]*Robot, env.cfg.Warehouse.RobotCount)
	robotRent, _ := parseRent(env.cfg.Robot.DefaultRent)
	for i := range env.Robots {
		env.Robots[i] = &Robot{
			ID:          i,
			Position:    env.Layout.Depot.Position,
			State:       RobotIdle,
			Speed:       env.cfg.Robot.Speed,
			Rent:        robotRent,
			UnitRunCost: env.robotRunRate(robotRent),
		}
	}

	home := make([]string, len(env.Layout.Points))
	for i, p := range env.Layout.Points {
		home[i] = p.ID
	}
	initial := InitialPosition(env.Layout.Points)
	env.Pickers = make([]*Picker, env.cfg.Warehouse.PickerCount)
	pickerRent, _ := parseRent(env.cfg.Picker.DefaultRent)
	for i := range env.Pickers {
		env.Pickers[i] = &Picker{
			ID:           i,
			Position:     initial,
			State:        PickerIdle,
			Speed:        env.cfg.Picker.Speed,
			HomePointIDs: home,
			Rent:         pickerRent,
			UnitTimeCost: env.pickerTimeRate(pickerRent),
			FireCost:     env.cfg.Picker.FireCost,
			HireTime:     0,
		}
	}

	// Orders due exactly at the reset clock arrive before the first
	// advance; the timer scan only honors strictly-future times.
	env.applyOrderArrivals()

	if err := env.advance(); err != nil {
		return nil, err
	}
	return env.observe(), nil
}

// Step applies an externally chosen assignment, advances the engine to the
// next decision point and returns the new observation, the reward and the
// completion flag.
func (env *WarehouseEnv) Step(action Action) (*Observation, float64, bool, error) {
	if env.Done {
		return nil, 0, true, invalidActionf("simulation is complete")
	}
	if action.PickerID < 0 || action.PickerID >= len(env.Pickers) {
		return nil, 0, false, invalidActionf("picker %d does not exist", action.PickerID)
	}
	picker := env.Pickers[action.PickerID]
	if picker.State != PickerIdle {
		return nil, 0, false, invalidActionf("picker %d is %s", picker.ID, picker.State)
	}
	point := env.Layout.Point(action.PickPointID)
	if point == nil {
		return nil, 0, false, invalidActionf("pick point %q does not exist", action.PickPointID)
	}
	if !point.IsAwaiting() {
		return nil, 0, false, invalidActionf("pick point %s is not awaiting a picker", point.ID)
	}

	env.bindPicker(picker, point)
	env.Metrics.TotalDecisions++

	if err := env.advance(); err != nil {
		return nil, 0, env.Done, err
	}

	var reward float64
	if env.RewardFn != nil {
		reward = env.RewardFn(env)
	}
	return env.observe(), reward, env.Done, nil
}

// bindPicker establishes the mutual picker/point binding, schedules the
// picking window and charges the items of every already-queued robot
// against the picker's running finish time. Each robot's completion time is
// the cumulative finish time after its own items.
func (env *WarehouseEnv) bindPicker(picker *Picker, point *PickPoint) {
	travelTime := env.Layout.Distance(picker.Position, point.Position) / picker.Speed

	picker.State = PickerBusy
	picker.PickPointID = point.ID
	point.PickerIdx = picker.ID
	picker.WorkingTime += travelTime
	picker.PickStartTime = env.Clock + travelTime
	picker.PickEndTime = picker.PickStartTime

	pendingItems := 0
	for _, robotID := range point.RobotQueue {
		robot := env.Robots[robotID]
		for _, item := range robot.RemainingItemsAt(point.ID, env.Layout.Items) {
			picker.PickEndTime += item.PickTime
			pendingItems++
		}
		robot.PickPointCompleteTime = picker.PickEndTime
	}
	picker.Position = point.Position

	logrus.Infof("[t=%09.2f] picker %d -> point %s (travel %.2fs, %d robots queued)",
		env.Clock, picker.ID, point.ID, travelTime, len(point.RobotQueue))

	if env.Trace.Enabled() {
		env.Trace.RecordAssignment(trace.AssignmentRecord{
			Clock:        env.Clock,
			PickerID:     picker.ID,
			PickPointID:  point.ID,
			TravelTime:   travelTime,
			QueuedRobots: len(point.RobotQueue),
			PendingItems: pendingItems,
		})
	}
}

// advance moves the clock forward until a decision point exists (at least
// one idle picker and one awaiting pick point) or the simulation completes.
// At each new clock value the side effects of every due timer are applied
// in a fixed phase order so that simultaneous events stay deterministic.
func (env *WarehouseEnv) advance() error {
	for {
		if env.allOrdersSettled() {
			env.Done = true
			env.Metrics.SimEndedTime = env.Clock
			logrus.Infof("[t=%09.2f] simulation complete", env.Clock)
			return nil
		}
		if env.hasIdlePicker() && env.hasAwaitingPoint() {
			return nil
		}

		next, ok := env.nextEventTime()
		if !ok {
			return &SimulationInvariantError{
				Clock:  env.Clock,
				Reason: "orders or entities pending but no strictly-future timer exists",
			}
		}
		env.Clock = next

		env.applyOrderArrivals()       // Phase A
		env.applyRobotPointArrivals()  // Phase B
		env.applyPickerTimers()        // Phase C
		env.applyRobotPointCompletes() // Phase D
		env.applyRobotDepotArrivals()  // Phase E
	}
}

// nextEventTime collects all pending timers across the system and returns
// the minimum value strictly greater than the current clock.
func (env *WarehouseEnv) nextEventTime() (float64, bool) {
	var next float64
	found := false
	consider := func(t float64) {
		if t > env.Clock && (!found || t < next) {
			next = t
			found = true
		}
	}
	if len(env.OrdersNotArrived) > 0 {
		consider(env.OrdersNotArrived[0].ArriveTime)
	}
	for _, p := range env.Pickers {
		consider(p.PickStartTime)
		consider(p.PickEndTime)
	}
	for _, r := range env.Robots {
		consider(r.PickPointCompleteTime)
		consider(r.MoveToPickPointTime)
		consider(r.MoveToDepotTime)
	}
	return next, found
}

// Phase A: dequeue every order due at the clock into the unassigned and
// uncompleted sets, then greedily pair unassigned orders with idle robots
// FIFO until either set runs out.
func (env *WarehouseEnv) applyOrderArrivals() {
	arrived := false
	for len(env.OrdersNotArrived) > 0 && env.OrdersNotArrived[0].ArriveTime <= env.Clock {
		order := env.OrdersNotArrived[0]
		env.OrdersNotArrived = env.OrdersNotArrived[1:]
		env.OrdersUnassigned = append(env.OrdersUnassigned, order)
		env.OrdersUncompleted = append(env.OrdersUncompleted, order)
		arrived = true
		logrus.Infof("[t=%09.2f] order %s arrived (%d items)", env.Clock, order.ID, len(order.ItemIDs))
	}
	if arrived {
		env.assignOrders()
	}
}

// assignOrders pairs unassigned orders with idle robots: oldest order
// first, earliest-created idle robot first. Each pairing dispatches the
// robot toward its first pick point.
func (env *WarehouseEnv) assignOrders() {
	for len(env.OrdersUnassigned) > 0 {
		robot := env.firstIdleRobot()
		if robot == nil {
			return
		}
		order := env.OrdersUnassigned[0]
		env.OrdersUnassigned = env.OrdersUnassigned[1:]

		robot.AssignOrder(order)
		if !robot.RunStarted {
			// The billing window opens at the robot's first dispatch.
			robot.RunStarted = true
			robot.RunStart = env.Clock
		}
		robot.State = RobotBusy

		next := env.robotNextPoint(robot)
		moveTime := env.Layout.Distance(robot.Position, next.Position) / robot.Speed
		robot.WorkingTime += moveTime
		robot.MoveToPickPointTime = env.Clock + moveTime

		logrus.Infof("[t=%09.2f] order %s -> robot %d, heading to %s", env.Clock, order.ID, robot.ID, next.ID)
	}
}

// Phase B: every robot reaching a pick point at the clock selects its
// target, joins the FIFO queue and, if a picker is already bound there,
// appends its items to the picker's remaining work.
func (env *WarehouseEnv) applyRobotPointArrivals() {
	for _, robot := range env.Robots {
		if robot.State != RobotBusy || robot.MoveToPickPointTime != env.Clock {
			continue
		}
		point := env.robotNextPoint(robot)
		point.RobotQueue = append(point.RobotQueue, robot.ID)
		robot.Position = point.Position
		robot.PickPointID = point.ID

		if point.PickerIdx >= 0 {
			picker := env.Pickers[point.PickerIdx]
			for _, item := range robot.RemainingItemsAt(point.ID, env.Layout.Items) {
				picker.PickEndTime += item.PickTime
			}
			robot.PickPointCompleteTime = picker.PickEndTime
		}
	}
}

// Phase C: pickers starting at the clock take up position at their bound
// point; pickers finishing at the clock release the binding and go idle,
// making the point a candidate for the next assignment.
func (env *WarehouseEnv) applyPickerTimers() {
	for _, picker := range env.Pickers {
		if picker.State != PickerBusy {
			continue
		}
		if picker.PickStartTime == env.Clock {
			point := env.Layout.Point(picker.PickPointID)
			point.PickerIdx = picker.ID
			picker.Position = point.Position
		}
		if picker.PickEndTime == env.Clock {
			point := env.Layout.Point(picker.PickPointID)
			point.PickerIdx = -1
			picker.PickPointID = ""
			picker.State = PickerIdle
		}
	}
}

// Phase D: every robot whose items at its current point are cleared leaves
// the queue, moves the items into the order's picked partition and heads to
// the next required point, or to the depot once its plan is empty.
func (env *WarehouseEnv) applyRobotPointCompletes() {
	for _, robot := range env.Robots {
		if robot.State != RobotBusy || robot.PickPointID == "" || robot.PickPointCompleteTime != env.Clock {
			continue
		}
		point := env.Layout.Point(robot.PickPointID)
		point.removeRobot(robot.ID)

		order := env.ordersByID[robot.OrderID]
		for _, item := range robot.RemainingItemsAt(point.ID, env.Layout.Items) {
			order.MarkPicked(item.ID)
			item.PickCompleteTime = env.Clock
			robot.removeRemaining(item.ID)
		}

		if len(robot.RemainingItemIDs) > 0 {
			next := env.robotNextPoint(robot)
			moveTime := env.Layout.Distance(robot.Position, next.Position) / robot.Speed
			robot.WorkingTime += moveTime
			robot.MoveToPickPointTime = env.Clock + moveTime
		} else {
			moveTime := env.Layout.Distance(robot.Position, env.Layout.Depot.Position) / robot.Speed
			robot.WorkingTime += moveTime
			robot.MoveToDepotTime = env.Clock + moveTime + env.cfg.Warehouse.PackTime
		}
	}
}

// Phase E: every robot reaching the depot at the clock goes idle, completes
// its order and immediately competes for the next unassigned order.
func (env *WarehouseEnv) applyRobotDepotArrivals() {
	for _, robot := range env.Robots {
		if robot.State != RobotBusy || robot.MoveToDepotTime != env.Clock {
			continue
		}
		robot.State = RobotIdle
		order := env.ordersByID[robot.OrderID]
		order.MarkComplete(env.Clock)
		env.Metrics.recordCompletion(order, env.Clock)
		env.removeUncompleted(order)
		robot.ReleaseOrder()
		robot.PickPointID = ""
		robot.Position = env.Layout.Depot.Position

		logrus.Infof("[t=%09.2f] robot %d packed order %s at depot", env.Clock, robot.ID, order.ID)

		env.assignOrders()
	}
}

// robotNextPoint selects the robot's next pick point among the points still
// holding its remaining items.
func (env *WarehouseEnv) robotNextPoint(robot *Robot) *PickPoint {
	ids := robot.candidatePointIDs(env.Layout.Items)
	candidates := make([]*PickPoint, len(ids))
	for i, id := range ids {
		candidates[i] = env.Layout.Point(id)
	}
	return env.robotPolicy.Select(candidates, env.selectionView(robot.Position))
}

// PickerNextPoint selects an awaiting pick point for the picker using the
// configured picker selection rule. Returns nil when no point is awaiting.
func (env *WarehouseEnv) PickerNextPoint(picker *Picker) *PickPoint {
	candidates := env.AwaitingPickPoints()
	if len(candidates) == 0 {
		return nil
	}
	return env.pickerPolicy.Select(candidates, env.selectionView(picker.Position))
}

func (env *WarehouseEnv) selectionView(from Position) *SelectionView {
	return &SelectionView{
		From:          from,
		Distance:      env.Layout.Distance,
		UnpickedCount: env.unpickedCount,
	}
}

// unpickedCount derives a point's unpicked-item count from the uncompleted
// orders' authoritative partitions.
func (env *WarehouseEnv) unpickedCount(point *PickPoint) int {
	n := 0
	for _, o := range env.OrdersUncompleted {
		for _, itemID := range o.UnpickedItemIDs {
			if env.Layout.Items[itemID].PickPointID == point.ID {
				n++
			}
		}
	}
	return n
}

// IdlePickers returns the currently idle pickers in creation order.
func (env *WarehouseEnv) IdlePickers() []*Picker {
	var out []*Picker
	for _, p := range env.Pickers {
		if p.State == PickerIdle {
			out = append(out, p)
		}
	}
	return out
}

// AwaitingPickPoints returns the points awaiting a picker in layout order.
func (env *WarehouseEnv) AwaitingPickPoints() []*PickPoint {
	var out []*PickPoint
	for _, p := range env.Layout.Points {
		if p.IsAwaiting() {
			out = append(out, p)
		}
	}
	return out
}

// Distance exposes the layout's travel-distance model.
func (env *WarehouseEnv) Distance(a, b Position) float64 {
	return env.Layout.Distance(a, b)
}

func (env *WarehouseEnv) hasIdlePicker() bool {
	for _, p := range env.Pickers {
		if p.State == PickerIdle {
			return true
		}
	}
	return false
}

func (env *WarehouseEnv) hasAwaitingPoint() bool {
	for _, p := range env.Layout.Points {
		if p.IsAwaiting() {
			return true
		}
	}
	return false
}

func (env *WarehouseEnv) allOrdersSettled() bool {
	return len(env.OrdersNotArrived) == 0 &&
		len(env.OrdersUnassigned) == 0 &&
		len(env.OrdersUncompleted) == 0
}

func (env *WarehouseEnv) firstIdleRobot() *Robot {
	for _, r := range env.Robots {
		if r.State == RobotIdle {
			return r
		}
	}
	return nil
}

func (env *WarehouseEnv) removeUncompleted(order *Order) {
	for i, o := range env.OrdersUncompleted {
		if o == order {
			env.OrdersUncompleted = append(env.OrdersUncompleted[:i], env.OrdersUncompleted[i+1:]...)
			return
		}
	}
}

func (env *WarehouseEnv) validateOrders(orders []*Order) error {
	prev := 0.0
	for i, o := range orders {
		if len(o.ItemIDs) == 0 {
			return configErrorf("order %s has no items", o.ID)
		}
		if o.ArriveTime < prev {
			return configErrorf("order %s arrival time %.3f decreases (previous %.3f)", o.ID, o.ArriveTime, prev)
		}
		prev = o.ArriveTime
		for _, itemID := range o.ItemIDs {
			if _, ok := env.Layout.Items[itemID]; !ok {
				return configErrorf("order %s references unknown item %q", o.ID, itemID)
			}
		}
		if i > 0 && orders[i-1].ID == o.ID {
			return configErrorf("duplicate order id %q", o.ID)
		}
	}
	return nil
}

func (env *WarehouseEnv) robotRunRate(rent RentClass) float64 {
	if rent == RentShort {
		return env.cfg.Robot.ShortTermRunCost
	}
	return env.cfg.Robot.LongTermRunCost
}

func (env *WarehouseEnv) pickerTimeRate(rent RentClass) float64 {
	if rent == RentShort {
		return env.cfg.Picker.ShortTermTimeCost
	}
	return env.cfg.Picker.LongTermTimeCost
}
