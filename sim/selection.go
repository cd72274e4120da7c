package sim

import "math/rand"

// SelectionRule identifies one of the seven pick-point selection rules
// shared by robots (choosing among the points holding their remaining
// items) and pickers (choosing among awaiting points).
type SelectionRule int

const (
	RuleMinCoordinate  SelectionRule = 1 // minimum x, tie-broken by minimum y
	RuleNearest        SelectionRule = 2 // minimum travel distance from the entity
	RuleShortestQueue  SelectionRule = 3 // fewest queued robots
	RuleLongestQueue   SelectionRule = 4 // most queued robots
	RuleFewestUnpicked SelectionRule = 5 // fewest unpicked items
	RuleMostUnpicked   SelectionRule = 6 // most unpicked items
	RuleRandom         SelectionRule = 7 // uniform random
)

// Valid reports whether the rule is one of the seven known identifiers.
func (r SelectionRule) Valid() bool {
	return r >= RuleMinCoordinate && r <= RuleRandom
}

// SelectionView is the candidate-scoring context handed to a policy:
// the selecting entity's position, the distance model, and the
// unpicked-item derivation. All min/max rules break ties by returning the
// first candidate achieving the extremum in the candidates' iteration order.
type SelectionView struct {
	From          Position
	Distance      func(a, b Position) float64
	UnpickedCount func(p *PickPoint) int
}

// SelectionPolicy chooses one pick point from a non-empty candidate set.
// Implementations MUST NOT mutate the candidates.
type SelectionPolicy interface {
	Select(candidates []*PickPoint, view *SelectionView) *PickPoint
}

// MinCoordinate selects the candidate with minimum x, tie-broken by minimum y.
type MinCoordinate struct{}

func (MinCoordinate) Select(candidates []*PickPoint, _ *SelectionView) *PickPoint {
	if len(candidates) == 0 {
		panic("MinCoordinate.Select: empty candidates")
	}
	best := candidates[0]
	for _, p := range candidates[1:] {
		if p.Position.X < best.Position.X ||
			(p.Position.X == best.Position.X && p.Position.Y < best.Position.Y) {
			best = p
		}
	}
	return best
}

// NearestPoint selects the candidate with minimum travel distance from the
// selecting entity's current position.
type NearestPoint struct{}

func (NearestPoint) Select(candidates []*PickPoint, view *SelectionView) *PickPoint {
	if len(candidates) == 0 {
		panic("NearestPoint.Select: empty candidates")
	}
	best := candidates[0]
	bestDist := view.Distance(view.From, best.Position)
	for _, p := range candidates[1:] {
		if d := view.Distance(view.From, p.Position); d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// ShortestQueue selects the candidate with the fewest queued robots.
type ShortestQueue struct{}

func (ShortestQueue) Select(candidates []*PickPoint, _ *SelectionView) *PickPoint {
	if len(candidates) == 0 {
		panic("ShortestQueue.Select: empty candidates")
	}
	best := candidates[0]
	for _, p := range candidates[1:] {
		if len(p.RobotQueue) < len(best.RobotQueue) {
			best = p
		}
	}
	return best
}

// LongestQueue selects the candidate with the most queued robots.
type LongestQueue struct{}

func (LongestQueue) Select(candidates []*PickPoint, _ *SelectionView) *PickPoint {
	if len(candidates) == 0 {
		panic("LongestQueue.Select: empty candidates")
	}
	best := candidates[0]
	for _, p := range candidates[1:] {
		if len(p.RobotQueue) > len(best.RobotQueue) {
			best = p
		}
	}
	return best
}

// FewestUnpicked selects the candidate with the fewest unpicked items
// across the uncompleted orders.
type FewestUnpicked struct{}

func (FewestUnpicked) Select(candidates []*PickPoint, view *SelectionView) *PickPoint {
	if len(candidates) == 0 {
		panic("FewestUnpicked.Select: empty candidates")
	}
	best := candidates[0]
	bestCount := view.UnpickedCount(best)
	for _, p := range candidates[1:] {
		if c := view.UnpickedCount(p); c < bestCount {
			bestCount = c
			best = p
		}
	}
	return best
}

// MostUnpicked selects the candidate with the most unpicked items across
// the uncompleted orders.
type MostUnpicked struct{}

func (MostUnpicked) Select(candidates []*PickPoint, view *SelectionView) *PickPoint {
	if len(candidates) == 0 {
		panic("MostUnpicked.Select: empty candidates")
	}
	best := candidates[0]
	bestCount := view.UnpickedCount(best)
	for _, p := range candidates[1:] {
		if c := view.UnpickedCount(p); c > bestCount {
			bestCount = c
			best = p
		}
	}
	return best
}

// UniformRandom selects a candidate uniformly at random from an injected
// source, for reproducibility.
type UniformRandom struct {
	Rand *rand.Rand
}

func (u *UniformRandom) Select(candidates []*PickPoint, _ *SelectionView) *PickPoint {
	if len(candidates) == 0 {
		panic("UniformRandom.Select: empty candidates")
	}
	return candidates[u.Rand.Intn(len(candidates))]
}

// NewSelectionPolicy creates a selection policy from a rule identifier.
// An unrecognized identifier is a configuration error, never an implicit
// fallback. The rng is consumed only by RuleRandom.
func NewSelectionPolicy(rule SelectionRule, rng *rand.Rand) (SelectionPolicy, error) {
	switch rule {
	case RuleMinCoordinate:
		return MinCoordinate{}, nil
	case RuleNearest:
		return NearestPoint{}, nil
	case RuleShortestQueue:
		return ShortestQueue{}, nil
	case RuleLongestQueue:
		return LongestQueue{}, nil
	case RuleFewestUnpicked:
		return FewestUnpicked{}, nil
	case RuleMostUnpicked:
		return MostUnpicked{}, nil
	case RuleRandom:
		return &UniformRandom{Rand: rng}, nil
	default:
		return nil, configErrorf("unknown selection rule %d", rule)
	}
}
