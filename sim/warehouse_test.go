package sim

import (
	"errors"
	"fmt"
	"testing"
)

// testConfig builds a small deterministic configuration: unit speeds, 10s
// item picks, 5s pack time, nearest-point selection.
func testConfig(aisles, positions, robots, pickers int) *Config {
	cfg := DefaultConfig()
	cfg.Warehouse = testWarehouseConfig(aisles, positions)
	cfg.Warehouse.RobotCount = robots
	cfg.Warehouse.PickerCount = pickers
	cfg.Robot.Speed = 1
	cfg.Picker.Speed = 1
	cfg.Item.PickTime = 10
	return cfg
}

func newTestEnv(t *testing.T, cfg *Config, seed int64) *WarehouseEnv {
	t.Helper()
	env, err := NewWarehouseEnv(cfg, NewSimulationKey(seed))
	if err != nil {
		t.Fatalf("NewWarehouseEnv: %v", err)
	}
	return env
}

func assertOrderPartition(t *testing.T, o *Order) {
	t.Helper()
	if len(o.PickedItemIDs)+len(o.UnpickedItemIDs) != len(o.ItemIDs) {
		t.Fatalf("order %s: partition size %d+%d != %d items",
			o.ID, len(o.PickedItemIDs), len(o.UnpickedItemIDs), len(o.ItemIDs))
	}
	seen := make(map[string]bool)
	for _, id := range o.PickedItemIDs {
		seen[id] = true
	}
	for _, id := range o.UnpickedItemIDs {
		if seen[id] {
			t.Fatalf("order %s: item %s in both partitions", o.ID, id)
		}
	}
}

// A 1x1 layout with one robot, one picker and one two-item order arriving
// at t=0: the robot reaches the point at 6.5 (depot (0,0) -> point (4,2.5)
// via the front cross-aisle), the picker clears both items in 20s, and the
// robot is back and packed at 6.5 + 20 + 6.5 + 5 = 38.
func TestSingleOrderLifecycle(t *testing.T) {
	env := newTestEnv(t, testConfig(1, 1, 1, 1), 1)
	order := NewOrder("O1", []string{"1-1-left-item", "1-1-right-item"}, 0, 0.1)

	obs, err := env.Reset([]*Order{order})
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}

	// First decision point: robot queued, picker unassigned.
	if env.Clock != 6.5 {
		t.Errorf("first decision point at %.2f, expected 6.5", env.Clock)
	}
	if obs.RobotQueueGrid[0][0] != 1 {
		t.Errorf("queue grid %d, expected 1", obs.RobotQueueGrid[0][0])
	}
	if obs.PickerPresenceGrid[0][0] {
		t.Error("no picker should be bound yet")
	}
	if obs.UnpickedItemsGrid[0][0] != 2 {
		t.Errorf("unpicked grid %d, expected 2", obs.UnpickedItemsGrid[0][0])
	}
	if obs.IdleRobotCount != 0 || obs.RobotCount != 1 || obs.PickerCount != 1 {
		t.Errorf("scalars %d/%d/%d, expected 0/1/1", obs.IdleRobotCount, obs.RobotCount, obs.PickerCount)
	}

	obs, reward, done, err := env.Step(Action{PickerID: 0, PickPointID: "1-1"})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !done {
		t.Fatal("expected done after the only order completes")
	}
	if reward != 0 {
		t.Errorf("default reward %v, expected 0", reward)
	}
	if env.Clock != 38 {
		t.Errorf("completion at %.2f, expected 38 (travel + picks + travel + pack)", env.Clock)
	}

	assertOrderPartition(t, order)
	if len(order.PickedItemIDs) != 2 || len(order.UnpickedItemIDs) != 0 {
		t.Errorf("expected both items picked, got %d picked / %d unpicked",
			len(order.PickedItemIDs), len(order.UnpickedItemIDs))
	}
	if !order.Completed || order.CompleteTime != 38 {
		t.Errorf("order completion time %.2f (set=%v), expected 38", order.CompleteTime, order.Completed)
	}
	robot := env.Robots[0]
	if robot.State != RobotIdle || robot.Position != env.Layout.Depot.Position {
		t.Error("robot should be idle at the depot")
	}
	if obs.UnpickedItemsGrid[0][0] != 0 || obs.RobotQueueGrid[0][0] != 0 {
		t.Error("final observation should show an empty warehouse")
	}
	if env.Metrics.CompletedOrders != 1 || env.Metrics.SimEndedTime != 38 {
		t.Errorf("metrics: %d orders, end %.2f", env.Metrics.CompletedOrders, env.Metrics.SimEndedTime)
	}
}

// Two orders, one robot: the robot pairs with the earlier-arrived order
// FIFO; the second stays unassigned until the robot returns to the depot.
func TestOrderAssignment_FIFOWithScarceRobots(t *testing.T) {
	env := newTestEnv(t, testConfig(1, 2, 1, 1), 1)
	o1 := NewOrder("O1", []string{"1-1-left-item"}, 1, 0.1)
	o2 := NewOrder("O2", []string{"1-2-left-item"}, 1, 0.1)

	if _, err := env.Reset([]*Order{o1, o2}); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	robot := env.Robots[0]
	if robot.OrderID != "O1" {
		t.Fatalf("robot paired with %q, expected the earlier order O1", robot.OrderID)
	}
	if !robot.RunStarted || robot.RunStart != 1 {
		t.Errorf("billing window should open at first dispatch t=1, got %v (started=%v)", robot.RunStart, robot.RunStarted)
	}
	if len(env.OrdersUnassigned) != 1 || env.OrdersUnassigned[0].ID != "O2" {
		t.Fatalf("O2 should remain unassigned, got %v", env.OrdersUnassigned)
	}

	// Drive to completion; O2 must finish after O1.
	for !env.Done {
		point := env.AwaitingPickPoints()[0]
		picker := env.IdlePickers()[0]
		if _, _, _, err := env.Step(Action{PickerID: picker.ID, PickPointID: point.ID}); err != nil {
			t.Fatalf("Step: %v", err)
		}
		assertOrderPartition(t, o1)
		assertOrderPartition(t, o2)
	}
	if env.Metrics.CompletedOrders != 2 {
		t.Fatalf("expected 2 completed orders, got %d", env.Metrics.CompletedOrders)
	}
	if !(o1.CompleteTime < o2.CompleteTime) {
		t.Errorf("O1 (%.2f) should complete before O2 (%.2f)", o1.CompleteTime, o2.CompleteTime)
	}
}

// A robot arriving at a point already served by a bound picker must be
// charged against the picker's extended finish time, not a fresh window.
func TestRobotJoinsBusyPicker_ExtendsPickEndTime(t *testing.T) {
	env := newTestEnv(t, testConfig(1, 1, 2, 1), 1)
	o1 := NewOrder("O1", []string{"1-1-left-item", "1-1-right-item"}, 0, 0.1)
	o2 := NewOrder("O2", []string{"1-1-left-item"}, 8, 0.1)

	if _, err := env.Reset([]*Order{o1, o2}); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if env.Clock != 6.5 {
		t.Fatalf("first decision point at %.2f, expected 6.5", env.Clock)
	}

	// Binding the picker schedules 20s of work for robot 0 (end 26.5).
	// Robot 1 is dispatched at t=8 and arrives at 14.5, while the picker
	// is still busy: its 10s extend the end to 36.5 and the robot's
	// completion coincides with that extended value.
	_, _, done, err := env.Step(Action{PickerID: 0, PickPointID: "1-1"})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !done {
		t.Fatal("both orders should resolve without another decision point")
	}

	picker := env.Pickers[0]
	if picker.PickEndTime != 36.5 {
		t.Errorf("picker end time %.2f, expected 36.5 after the mid-service extension", picker.PickEndTime)
	}
	if got := env.Metrics.OrderCompletionTimes["O1"]; got != 38 {
		t.Errorf("O1 completed at %.2f, expected 38", got)
	}
	// Robot 1: cleared at 36.5, then 6.5 travel + 5 pack.
	if got := env.Metrics.OrderCompletionTimes["O2"]; got != 48 {
		t.Errorf("O2 completed at %.2f, expected 48", got)
	}
	if env.Metrics.SimEndedTime != 48 {
		t.Errorf("simulation ended at %.2f, expected 48", env.Metrics.SimEndedTime)
	}
}

// runScripted drives a fresh environment with the baseline controller and
// returns a signature of every observation and decision clock.
func runScripted(t *testing.T, seed int64, orders func() []*Order) string {
	t.Helper()
	cfg := testConfig(2, 2, 2, 2)
	cfg.Robot.SelectionRuleID = int(RuleRandom)
	cfg.Picker.SelectionRuleID = int(RuleRandom)
	env := newTestEnv(t, cfg, seed)

	obs, err := env.Reset(orders())
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	sig := fmt.Sprintf("%.3f %v\n", env.Clock, obs)

	rng := env.RNG().ForSubsystem(SubsystemController)
	lastClock := env.Clock
	for !env.Done {
		awaiting := env.AwaitingPickPoints()
		point := awaiting[rng.Intn(len(awaiting))]
		picker := env.IdlePickers()[0]
		obs, _, _, err := env.Step(Action{PickerID: picker.ID, PickPointID: point.ID})
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if env.Clock < lastClock {
			t.Fatalf("clock went backwards: %.3f -> %.3f", lastClock, env.Clock)
		}
		lastClock = env.Clock
		sig += fmt.Sprintf("%.3f %v\n", env.Clock, obs)
	}
	return sig
}

// Identical seeds, orders and action sequences must reproduce identical
// observation sequences and final clocks, including under the random
// selection rule.
func TestDeterminism_IdenticalRunsMatch(t *testing.T) {
	orders := func() []*Order {
		o1 := NewOrder("O1", []string{"1-1-left-item", "2-2-right-item"}, 0, 0.1)
		o2 := NewOrder("O2", []string{"1-2-left-item"}, 0, 0.1)
		o3 := NewOrder("O3", []string{"2-1-left-item", "1-1-right-item", "2-2-left-item"}, 30, 0.1)
		o4 := NewOrder("O4", []string{"1-2-right-item"}, 45, 0.1)
		return []*Order{o1, o2, o3, o4}
	}
	run1 := runScripted(t, 99, orders)
	run2 := runScripted(t, 99, orders)
	if run1 != run2 {
		t.Error("two identically seeded runs diverged")
	}
}

func TestStep_RejectsInvalidActions(t *testing.T) {
	env := newTestEnv(t, testConfig(1, 2, 1, 2), 1)
	order := NewOrder("O1", []string{"1-1-left-item"}, 0, 0.1)
	if _, err := env.Reset([]*Order{order}); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	var actionErr *InvalidActionError

	// Unknown picker.
	_, _, _, err := env.Step(Action{PickerID: 5, PickPointID: "1-1"})
	if !errors.As(err, &actionErr) {
		t.Errorf("unknown picker: expected InvalidActionError, got %v", err)
	}

	// Unknown pick point.
	_, _, _, err = env.Step(Action{PickerID: 0, PickPointID: "9-9"})
	if !errors.As(err, &actionErr) {
		t.Errorf("unknown point: expected InvalidActionError, got %v", err)
	}

	// Point without queued robots is not awaiting.
	_, _, _, err = env.Step(Action{PickerID: 0, PickPointID: "1-2"})
	if !errors.As(err, &actionErr) {
		t.Errorf("non-awaiting point: expected InvalidActionError, got %v", err)
	}

	// Busy picker.
	env.Pickers[0].State = PickerBusy
	_, _, _, err = env.Step(Action{PickerID: 0, PickPointID: "1-1"})
	if !errors.As(err, &actionErr) {
		t.Errorf("busy picker: expected InvalidActionError, got %v", err)
	}
	env.Pickers[0].State = PickerIdle

	// A valid action still goes through afterwards.
	_, _, done, err := env.Step(Action{PickerID: 0, PickPointID: "1-1"})
	if err != nil {
		t.Fatalf("valid Step: %v", err)
	}
	if !done {
		t.Fatal("single order should complete")
	}

	// Stepping a completed simulation fails.
	_, _, _, err = env.Step(Action{PickerID: 0, PickPointID: "1-1"})
	if !errors.As(err, &actionErr) {
		t.Errorf("step after done: expected InvalidActionError, got %v", err)
	}
}

func TestReset_ValidatesOrders(t *testing.T) {
	env := newTestEnv(t, testConfig(1, 1, 1, 1), 1)
	var cfgErr *ConfigurationError

	// Decreasing arrival times.
	o1 := NewOrder("O1", []string{"1-1-left-item"}, 10, 0.1)
	o2 := NewOrder("O2", []string{"1-1-right-item"}, 5, 0.1)
	if _, err := env.Reset([]*Order{o1, o2}); !errors.As(err, &cfgErr) {
		t.Errorf("decreasing arrivals: expected ConfigurationError, got %v", err)
	}

	// Unknown item.
	bad := NewOrder("O1", []string{"no-such-item"}, 0, 0.1)
	if _, err := env.Reset([]*Order{bad}); !errors.As(err, &cfgErr) {
		t.Errorf("unknown item: expected ConfigurationError, got %v", err)
	}

	// Empty order.
	empty := NewOrder("O1", nil, 0, 0.1)
	if _, err := env.Reset([]*Order{empty}); !errors.As(err, &cfgErr) {
		t.Errorf("empty order: expected ConfigurationError, got %v", err)
	}
}

func TestReset_NoOrdersCompletesImmediately(t *testing.T) {
	env := newTestEnv(t, testConfig(1, 1, 1, 1), 1)
	if _, err := env.Reset(nil); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !env.Done || env.Clock != 0 {
		t.Errorf("empty order book: done=%v clock=%.2f, expected done at t=0", env.Done, env.Clock)
	}
}

func TestAdvance_NoFutureTimerIsInvariantViolation(t *testing.T) {
	env := newTestEnv(t, testConfig(1, 1, 1, 1), 1)
	if _, err := env.Reset(nil); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	// Force an impossible pending state: an uncompleted order with no
	// scheduled timer anywhere in the system.
	env.Done = false
	orphan := NewOrder("orphan", []string{"1-1-left-item"}, 0, 0.1)
	env.OrdersUncompleted = append(env.OrdersUncompleted, orphan)

	err := env.advance()
	var invErr *SimulationInvariantError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected SimulationInvariantError, got %v", err)
	}
}
