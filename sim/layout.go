package sim

import (
	"fmt"
	"math"
)

// Position is a 2D warehouse coordinate in meters.
type Position struct {
	X float64
	Y float64
}

// Depot is the fixed robot origin and return point where orders are packed.
type Depot struct {
	Position Position
}

// StorageBin is a single storage slot holding exactly one item, belonging
// to one pick point. Bins have no lifecycle beyond layout construction.
type StorageBin struct {
	ID          string
	Position    Position
	ItemID      string
	PickPointID string
}

// Item is a stock-keeping unit held by one storage bin and served at one
// pick point. Immutable after construction except for PickCompleteTime.
type Item struct {
	ID               string
	BinID            string
	Position         Position
	PickPointID      string
	PickTime         float64 // seconds a picker needs to extract it
	PickCompleteTime float64 // set when the item is picked
}

// PickPoint is the physical location serving two adjacent storage bins: the
// unit at which a picker performs work and robots queue.
//
// RobotQueue holds robot indices into the environment's robot store in FIFO
// order. PickerIdx is the index of the bound picker, or -1. UnpickedItems is
// a derived list rebuilt from the uncompleted orders (never incrementally
// maintained).
type PickPoint struct {
	ID            string
	Position      Position
	ItemIDs       []string
	StorageBinIDs []string

	RobotQueue    []int
	PickerIdx     int
	UnpickedItems []string
}

// IsAwaiting reports whether the point needs a picker assignment: its robot
// queue is non-empty and no picker is bound.
func (p *PickPoint) IsAwaiting() bool {
	return len(p.RobotQueue) > 0 && p.PickerIdx < 0
}

// removeRobot drops one robot from the FIFO queue.
func (p *PickPoint) removeRobot(robotID int) {
	for i, id := range p.RobotQueue {
		if id == robotID {
			p.RobotQueue = append(p.RobotQueue[:i], p.RobotQueue[i+1:]...)
			return
		}
	}
}

// Layout is the static warehouse graph: W×L pick points laid out aisle-major,
// each owning a left and a right storage bin with one item apiece. All
// cross-references are ids into the layout's indexed stores and never change
// after construction.
type Layout struct {
	Depot  Depot
	Points []*PickPoint // construction order: aisle-major, shelf-position-minor
	Bins   map[string]*StorageBin
	Items  map[string]*Item

	// ItemIDs preserves construction order for deterministic sampling.
	ItemIDs []string

	pointIndex map[string]int

	aisleCount        int
	positionsPerShelf int
	crossAisleWidth   float64
	shelfLength       float64
}

// BuildLayout constructs the warehouse graph from the configured geometry.
func BuildLayout(w *WarehouseConfig, pickTime float64) *Layout {
	l := &Layout{
		Depot:             Depot{Position: Position{X: w.DepotX, Y: w.DepotY}},
		Bins:              make(map[string]*StorageBin),
		Items:             make(map[string]*Item),
		pointIndex:        make(map[string]int),
		aisleCount:        w.AisleCount,
		positionsPerShelf: w.PositionsPerShelf,
		crossAisleWidth:   w.CrossAisleWidth,
		shelfLength:       w.ShelfLength,
	}

	for nw := 1; nw <= w.AisleCount; nw++ {
		for nl := 1; nl <= w.PositionsPerShelf; nl++ {
			x := w.EntranceWidth + float64(2*nw-1)*w.ShelfWidth + float64(2*nw-1)/2*w.AisleWidth
			y := w.CrossAisleWidth + float64(2*nl-1)/2*w.ShelfLength
			pos := Position{X: x, Y: y}

			pointID := fmt.Sprintf("%d-%d", nw, nl)
			point := &PickPoint{
				ID:        pointID,
				Position:  pos,
				PickerIdx: -1,
			}

			for _, side := range []string{"left", "right"} {
				binID := fmt.Sprintf("%d-%d-%s", nw, nl, side)
				itemID := binID + "-item"
				l.Bins[binID] = &StorageBin{
					ID:          binID,
					Position:    pos,
					ItemID:      itemID,
					PickPointID: pointID,
				}
				l.Items[itemID] = &Item{
					ID:          itemID,
					BinID:       binID,
					Position:    pos,
					PickPointID: pointID,
					PickTime:    pickTime,
				}
				l.ItemIDs = append(l.ItemIDs, itemID)
				point.ItemIDs = append(point.ItemIDs, itemID)
				point.StorageBinIDs = append(point.StorageBinIDs, binID)
			}

			l.pointIndex[pointID] = len(l.Points)
			l.Points = append(l.Points, point)
		}
	}
	return l
}

// Point returns the pick point with the given id, or nil.
func (l *Layout) Point(id string) *PickPoint {
	idx, ok := l.pointIndex[id]
	if !ok {
		return nil
	}
	return l.Points[idx]
}

// Distance returns the shortest walkable path length between two positions.
// Two positions in the same aisle (equal x) connect by a straight line;
// otherwise the path detours around the shelf block through the front or
// the back cross-aisle, whichever is shorter. The depot counts as a point
// at the entrance.
func (l *Layout) Distance(a, b Position) float64 {
	if a.X == b.X {
		return math.Abs(a.Y - b.Y)
	}
	front := l.crossAisleWidth / 2
	back := 1.5*l.crossAisleWidth + float64(l.positionsPerShelf)*l.shelfLength
	dx := math.Abs(a.X - b.X)
	pathFront := math.Abs(a.Y-front) + math.Abs(b.Y-front) + dx
	pathBack := math.Abs(a.Y-back) + math.Abs(b.Y-back) + dx
	return math.Min(pathFront, pathBack)
}
