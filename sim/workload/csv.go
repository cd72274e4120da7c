package workload

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/warehouse-sim/warehouse-sim/sim"
)

// The on-disk order format is one row per order line:
//
//	order_id,arrival_time,item_id,pick_point_id
//
// Rows of the same order are contiguous and orders appear in arrival order.
var csvHeader = []string{"order_id", "arrival_time", "item_id", "pick_point_id"}

// WriteOrdersCSV writes an order book in the row-per-item format.
func WriteOrdersCSV(path string, orders []*sim.Order, layout *sim.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create orders file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write orders header: %w", err)
	}
	for _, o := range orders {
		for _, itemID := range o.ItemIDs {
			row := []string{
				o.ID,
				strconv.FormatFloat(o.ArriveTime, 'f', -1, 64),
				itemID,
				layout.Items[itemID].PickPointID,
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write order %s: %w", o.ID, err)
			}
		}
	}
	w.Flush()
	return w.Error()
}

// LoadOrdersCSV reads an order book written by WriteOrdersCSV (or the
// upstream dataset tooling). Contiguous rows sharing an order_id become one
// order; item ids must exist in the layout and carry a matching pick point.
func LoadOrdersCSV(path string, layout *sim.Layout, orderCfg *sim.OrderConfig) ([]*sim.Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open orders file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read orders file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("orders file %s is empty", path)
	}
	if !equalRow(rows[0], csvHeader) {
		return nil, fmt.Errorf("orders file %s: unexpected header %v", path, rows[0])
	}

	var orders []*sim.Order
	var current *sim.Order
	for i, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("orders file %s row %d: expected %d columns, got %d", path, i+2, len(csvHeader), len(row))
		}
		orderID, itemID, pointID := row[0], row[2], row[3]
		arrival, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("orders file %s row %d: bad arrival time %q", path, i+2, row[1])
		}
		item, ok := layout.Items[itemID]
		if !ok {
			return nil, fmt.Errorf("orders file %s row %d: unknown item %q", path, i+2, itemID)
		}
		if item.PickPointID != pointID {
			return nil, fmt.Errorf("orders file %s row %d: item %q belongs to point %s, not %s",
				path, i+2, itemID, item.PickPointID, pointID)
		}

		if current == nil || current.ID != orderID {
			current = sim.NewOrder(orderID, nil, arrival, orderCfg.UnitDelayCost)
			orders = append(orders, current)
		}
		current.ItemIDs = append(current.ItemIDs, itemID)
		current.UnpickedItemIDs = append(current.UnpickedItemIDs, itemID)
	}
	return orders, nil
}

func equalRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
