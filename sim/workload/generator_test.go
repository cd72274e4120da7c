package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

func testLayout(t *testing.T) *sim.Layout {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Warehouse.AisleCount = 2
	cfg.Warehouse.PositionsPerShelf = 3
	return sim.BuildLayout(&cfg.Warehouse, cfg.Item.PickTime)
}

func testSpec() *GeneratorSpec {
	return &GeneratorSpec{
		TotalOrders:      50,
		MeanInterarrival: 30,
		ItemsMin:         1,
		ItemsMax:         5,
		Seed:             42,
	}
}

func TestGeneratorSpecValidate(t *testing.T) {
	require.NoError(t, testSpec().Validate())

	bad := testSpec()
	bad.TotalOrders = 0
	assert.Error(t, bad.Validate())

	bad = testSpec()
	bad.MeanInterarrival = -1
	assert.Error(t, bad.Validate())

	bad = testSpec()
	bad.ItemsMax = 0
	assert.Error(t, bad.Validate())

	bad = testSpec()
	bad.DueTimeChoices = []float64{100, -5}
	assert.Error(t, bad.Validate())
}

func TestGenerateOrders_Shape(t *testing.T) {
	layout := testLayout(t)
	spec := testSpec()

	orders, err := GenerateOrders(spec, layout, &sim.OrderConfig{UnitDelayCost: 0.1})
	require.NoError(t, err)
	require.Len(t, orders, spec.TotalOrders)

	prev := 0.0
	for i, o := range orders {
		assert.Equal(t, len(o.ItemIDs), len(o.UnpickedItemIDs))
		assert.GreaterOrEqual(t, len(o.ItemIDs), spec.ItemsMin, "order %d too few items", i)
		assert.LessOrEqual(t, len(o.ItemIDs), spec.ItemsMax, "order %d too many items", i)
		assert.GreaterOrEqual(t, o.ArriveTime, prev, "order %d arrival decreases", i)
		prev = o.ArriveTime

		seen := make(map[string]bool)
		for _, id := range o.ItemIDs {
			_, ok := layout.Items[id]
			assert.True(t, ok, "order %d references unknown item %s", i, id)
			assert.False(t, seen[id], "order %d repeats item %s", i, id)
			seen[id] = true
		}
		assert.False(t, o.HasDueTime)
	}
}

func TestGenerateOrders_Deterministic(t *testing.T) {
	layout := testLayout(t)

	a, err := GenerateOrders(testSpec(), layout, &sim.OrderConfig{UnitDelayCost: 0.1})
	require.NoError(t, err)
	b, err := GenerateOrders(testSpec(), layout, &sim.OrderConfig{UnitDelayCost: 0.1})
	require.NoError(t, err)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
		assert.Equal(t, a[i].ArriveTime, b[i].ArriveTime)
		assert.Equal(t, a[i].ItemIDs, b[i].ItemIDs)
	}

	changed := testSpec()
	changed.Seed = 43
	c, err := GenerateOrders(changed, layout, &sim.OrderConfig{UnitDelayCost: 0.1})
	require.NoError(t, err)
	different := false
	for i := range a {
		if a[i].ArriveTime != c[i].ArriveTime || len(a[i].ItemIDs) != len(c[i].ItemIDs) {
			different = true
			break
		}
	}
	assert.True(t, different, "changing the seed should change the order book")
}

func TestGenerateOrders_DueTimes(t *testing.T) {
	layout := testLayout(t)
	spec := testSpec()
	spec.DueTimeChoices = []float64{100, 200}

	orders, err := GenerateOrders(spec, layout, &sim.OrderConfig{UnitDelayCost: 0.1})
	require.NoError(t, err)
	for _, o := range orders {
		require.True(t, o.HasDueTime)
		offset := o.DueTime - o.ArriveTime
		assert.Contains(t, spec.DueTimeChoices, offset)
	}
}

func TestGenerateOrders_ItemsMaxExceedsLayout(t *testing.T) {
	layout := testLayout(t)
	spec := testSpec()
	spec.ItemsMax = len(layout.ItemIDs) + 1
	_, err := GenerateOrders(spec, layout, &sim.OrderConfig{UnitDelayCost: 0.1})
	assert.Error(t, err)
}
