package sim

import "fmt"

// Order is a customer order: a fixed set of items to be collected by one
// robot. Items are partitioned into unpicked and picked; the union is always
// the original item set and the intersection is always empty.
type Order struct {
	ID         string
	ItemIDs    []string // requested items, in arrival sequence
	ArriveTime float64
	DueTime    float64
	HasDueTime bool

	CompleteTime float64
	Completed    bool

	UnpickedItemIDs []string
	PickedItemIDs   []string

	UnitDelayCost float64
}

// NewOrder creates an order with all items unpicked.
func NewOrder(id string, itemIDs []string, arriveTime float64, unitDelayCost float64) *Order {
	o := &Order{
		ID:            id,
		ItemIDs:       append([]string(nil), itemIDs...),
		ArriveTime:    arriveTime,
		UnitDelayCost: unitDelayCost,
	}
	o.UnpickedItemIDs = append([]string(nil), itemIDs...)
	return o
}

// SetDueTime attaches an optional due time.
func (o *Order) SetDueTime(due float64) {
	o.DueTime = due
	o.HasDueTime = true
}

// MarkPicked moves an item from the unpicked to the picked partition.
// Panics if the item is not currently unpicked: double-picking an item is a
// programming error, not a runtime condition.
func (o *Order) MarkPicked(itemID string) {
	for i, id := range o.UnpickedItemIDs {
		if id == itemID {
			o.UnpickedItemIDs = append(o.UnpickedItemIDs[:i], o.UnpickedItemIDs[i+1:]...)
			o.PickedItemIDs = append(o.PickedItemIDs, itemID)
			return
		}
	}
	panic(fmt.Sprintf("order %s: item %s picked twice", o.ID, itemID))
}

// MarkComplete records the order's completion timestamp.
func (o *Order) MarkComplete(now float64) {
	o.CompleteTime = now
	o.Completed = true
}

func (o *Order) String() string {
	return fmt.Sprintf("Order: (ID: %s, Items: %d, Unpicked: %d, ArriveTime: %.1f)",
		o.ID, len(o.ItemIDs), len(o.UnpickedItemIDs), o.ArriveTime)
}
