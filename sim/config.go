package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WarehouseConfig groups the static warehouse geometry.
// Coordinates and lengths are in meters.
type WarehouseConfig struct {
	AisleCount        int     `yaml:"aisle_count"`         // W: number of aisles
	PositionsPerShelf int     `yaml:"positions_per_shelf"` // L: shelf positions per aisle
	ShelfLength       float64 `yaml:"shelf_length"`        // length of one storage position
	ShelfWidth        float64 `yaml:"shelf_width"`         // width of one shelf block
	CrossAisleWidth   float64 `yaml:"cross_aisle_width"`   // front/back cross-aisle width
	EntranceWidth     float64 `yaml:"entrance_width"`      // entrance strip before the first shelf
	AisleWidth        float64 `yaml:"aisle_width"`         // width of a picking aisle
	DepotX            float64 `yaml:"depot_x"`             // depot position
	DepotY            float64 `yaml:"depot_y"`
	RobotCount        int     `yaml:"robot_count"`
	PickerCount       int     `yaml:"picker_count"`
	PackTime          float64 `yaml:"pack_time"` // fixed packing duration at the depot, seconds
}

// RobotConfig groups robot parameters.
type RobotConfig struct {
	Speed            float64 `yaml:"speed"`               // m/s
	LongTermRunCost  float64 `yaml:"long_term_run_cost"`  // cost per second, long rent
	ShortTermRunCost float64 `yaml:"short_term_run_cost"` // cost per second, short rent
	SelectionRuleID  int     `yaml:"selection_rule"`      // pick-point selection rule (1..7)
	DefaultRent      string  `yaml:"default_rent"`        // "long" or "short"
}

// PickerConfig groups picker parameters.
type PickerConfig struct {
	Speed             float64 `yaml:"speed"`                // m/s
	LongTermTimeCost  float64 `yaml:"long_term_time_cost"`  // hire cost per second, long rent
	ShortTermTimeCost float64 `yaml:"short_term_time_cost"` // hire cost per second, short rent
	FireCost          float64 `yaml:"fire_cost"`            // one-off cost when fired
	SelectionRuleID   int     `yaml:"selection_rule"`       // pick-point selection rule (1..7)
	DefaultRent       string  `yaml:"default_rent"`         // "long" or "short"
}

// OrderConfig groups order-level cost parameters.
type OrderConfig struct {
	UnitDelayCost float64 `yaml:"unit_delay_cost"` // cost per second past due
}

// ItemConfig groups per-item parameters.
type ItemConfig struct {
	PickTime float64 `yaml:"pick_time"` // seconds to extract one item
}

// Config is the full environment configuration, validated once at load and
// passed by reference thereafter.
type Config struct {
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Robot     RobotConfig     `yaml:"robot"`
	Picker    PickerConfig    `yaml:"picker"`
	Order     OrderConfig     `yaml:"order"`
	Item      ItemConfig      `yaml:"item"`
}

// DefaultConfig returns the reference parameter set: a 6-aisle warehouse
// with 10 positions per shelf, 10 robots and 5 pickers.
func DefaultConfig() *Config {
	return &Config{
		Warehouse: WarehouseConfig{
			AisleCount:        6,
			PositionsPerShelf: 10,
			ShelfLength:       1,
			ShelfWidth:        1,
			CrossAisleWidth:   2,
			EntranceWidth:     2,
			AisleWidth:        2,
			DepotX:            0,
			DepotY:            0,
			RobotCount:        10,
			PickerCount:       5,
			PackTime:          10,
		},
		Robot: RobotConfig{
			Speed:            3.0,
			LongTermRunCost:  1000000.0 / (3600 * 8 * 30 * 8 * 365),
			ShortTermRunCost: 110.0 / (3600 * 8),
			SelectionRuleID:  int(RuleNearest),
			DefaultRent:      string(RentLong),
		},
		Picker: PickerConfig{
			Speed:             0.75,
			LongTermTimeCost:  7000.0 / (3600 * 8 * 30),
			ShortTermTimeCost: 360.0 / (3600 * 8),
			FireCost:          0,
			SelectionRuleID:   int(RuleNearest),
			DefaultRent:       string(RentLong),
		},
		Order: OrderConfig{
			UnitDelayCost: 0.1,
		},
		Item: ItemConfig{
			PickTime: 10,
		},
	}
}

// LoadConfig reads a YAML config file and validates it.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants. All entity-count and
// geometry mismatches surface here, at construction time, not mid-run.
func (c *Config) Validate() error {
	w := c.Warehouse
	if w.AisleCount <= 0 || w.PositionsPerShelf <= 0 {
		return configErrorf("warehouse grid must be positive, got %dx%d", w.AisleCount, w.PositionsPerShelf)
	}
	if w.ShelfLength <= 0 || w.ShelfWidth <= 0 || w.CrossAisleWidth <= 0 || w.AisleWidth <= 0 {
		return configErrorf("warehouse dimensions must be positive")
	}
	if w.EntranceWidth < 0 {
		return configErrorf("entrance width must be non-negative, got %v", w.EntranceWidth)
	}
	if w.RobotCount <= 0 {
		return configErrorf("robot count must be positive, got %d", w.RobotCount)
	}
	if w.PickerCount <= 0 {
		return configErrorf("picker count must be positive, got %d", w.PickerCount)
	}
	if w.PackTime < 0 {
		return configErrorf("pack time must be non-negative, got %v", w.PackTime)
	}
	if c.Robot.Speed <= 0 {
		return configErrorf("robot speed must be positive, got %v", c.Robot.Speed)
	}
	if c.Picker.Speed <= 0 {
		return configErrorf("picker speed must be positive, got %v", c.Picker.Speed)
	}
	if c.Item.PickTime <= 0 {
		return configErrorf("item pick time must be positive, got %v", c.Item.PickTime)
	}
	if !SelectionRule(c.Robot.SelectionRuleID).Valid() {
		return configErrorf("unknown robot selection rule %d", c.Robot.SelectionRuleID)
	}
	if !SelectionRule(c.Picker.SelectionRuleID).Valid() {
		return configErrorf("unknown picker selection rule %d", c.Picker.SelectionRuleID)
	}
	if _, err := parseRent(c.Robot.DefaultRent); err != nil {
		return err
	}
	if _, err := parseRent(c.Picker.DefaultRent); err != nil {
		return err
	}
	return nil
}
