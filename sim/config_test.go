package sim

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
warehouse:
  aisle_count: 3
  positions_per_shelf: 4
  robot_count: 2
  picker_count: 2
robot:
  speed: 1.5
  selection_rule: 3
picker:
  selection_rule: 7
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Warehouse.AisleCount)
	assert.Equal(t, 4, cfg.Warehouse.PositionsPerShelf)
	assert.Equal(t, 2, cfg.Warehouse.RobotCount)
	assert.Equal(t, 1.5, cfg.Robot.Speed)
	assert.Equal(t, 3, cfg.Robot.SelectionRuleID)
	assert.Equal(t, 7, cfg.Picker.SelectionRuleID)

	// Untouched keys keep their defaults.
	assert.Equal(t, 0.75, cfg.Picker.Speed)
	assert.Equal(t, 10.0, cfg.Item.PickTime)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero aisles", func(c *Config) { c.Warehouse.AisleCount = 0 }},
		{"negative positions", func(c *Config) { c.Warehouse.PositionsPerShelf = -1 }},
		{"zero shelf length", func(c *Config) { c.Warehouse.ShelfLength = 0 }},
		{"no robots", func(c *Config) { c.Warehouse.RobotCount = 0 }},
		{"no pickers", func(c *Config) { c.Warehouse.PickerCount = 0 }},
		{"negative pack time", func(c *Config) { c.Warehouse.PackTime = -1 }},
		{"zero robot speed", func(c *Config) { c.Robot.Speed = 0 }},
		{"zero picker speed", func(c *Config) { c.Picker.Speed = 0 }},
		{"zero pick time", func(c *Config) { c.Item.PickTime = 0 }},
		{"robot rule out of range", func(c *Config) { c.Robot.SelectionRuleID = 8 }},
		{"picker rule out of range", func(c *Config) { c.Picker.SelectionRuleID = 0 }},
		{"unknown rent class", func(c *Config) { c.Robot.DefaultRent = "weekly" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigurationError
			assert.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %T", err)
		})
	}
}
