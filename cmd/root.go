package cmd

import (
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/warehouse-sim/warehouse-sim/sim"
	"github.com/warehouse-sim/warehouse-sim/sim/trace"
	"github.com/warehouse-sim/warehouse-sim/sim/workload"
)

var (
	// CLI flags shared across subcommands
	seed       int64  // Master seed for all random subsystems
	logLevel   string // Log verbosity level
	configPath string // YAML config file (defaults apply when empty)
	ordersPath string // Order book CSV

	// Geometry / fleet overrides
	aisleCount  int // Number of aisles (0 = keep config)
	positions   int // Shelf positions per aisle (0 = keep config)
	robotCount  int // Robots in the fleet (0 = keep config)
	pickerCount int // Pickers in the fleet (0 = keep config)
	robotRule   int // Robot pick-point selection rule (0 = keep config)
	pickerRule  int // Picker pick-point selection rule (0 = keep config)

	// Order generation flags
	totalOrders      int     // Orders to generate
	meanInterarrival float64 // Mean seconds between order arrivals
	itemsMin         int     // Min items per order
	itemsMax         int     // Max items per order

	tracePath string // JSONL decision trace output ("" = disabled)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "warehouse-sim",
	Short: "Discrete-event simulator for human-robot collaborative order picking",
}

// loadConfig merges the YAML config (or defaults) with CLI overrides.
func loadConfig() *sim.Config {
	var cfg *sim.Config
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			logrus.Fatalf("Invalid config: %v", err)
		}
		cfg = loaded
	} else {
		cfg = sim.DefaultConfig()
	}
	if aisleCount > 0 {
		cfg.Warehouse.AisleCount = aisleCount
	}
	if positions > 0 {
		cfg.Warehouse.PositionsPerShelf = positions
	}
	if robotCount > 0 {
		cfg.Warehouse.RobotCount = robotCount
	}
	if pickerCount > 0 {
		cfg.Warehouse.PickerCount = pickerCount
	}
	if robotRule > 0 {
		cfg.Robot.SelectionRuleID = robotRule
	}
	if pickerRule > 0 {
		cfg.Picker.SelectionRuleID = pickerRule
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid config: %v", err)
	}
	return cfg
}

func generatorSpec() *workload.GeneratorSpec {
	return &workload.GeneratorSpec{
		TotalOrders:      totalOrders,
		MeanInterarrival: meanInterarrival,
		ItemsMin:         itemsMin,
		ItemsMax:         itemsMax,
		Seed:             seed,
	}
}

// runCmd drives the environment to completion with the scripted baseline
// controller: a uniformly random awaiting pick point paired with the
// nearest idle picker.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the warehouse simulation with the baseline controller",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg := loadConfig()
		env, err := sim.NewWarehouseEnv(cfg, sim.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("Environment setup failed: %v", err)
		}
		if tracePath != "" {
			env.Trace = trace.NewSimulationTrace(trace.TraceLevelDecisions)
		}

		var orders []*sim.Order
		if ordersPath != "" {
			orders, err = workload.LoadOrdersCSV(ordersPath, env.Layout, &cfg.Order)
		} else {
			orders, err = workload.GenerateOrders(generatorSpec(), env.Layout, &cfg.Order)
		}
		if err != nil {
			logrus.Fatalf("Unable to build order book: %v", err)
		}
		logrus.Infof("Starting simulation: %dx%d grid, %d robots, %d pickers, %d orders",
			cfg.Warehouse.AisleCount, cfg.Warehouse.PositionsPerShelf,
			cfg.Warehouse.RobotCount, cfg.Warehouse.PickerCount, len(orders))

		if _, err := env.Reset(orders); err != nil {
			logrus.Fatalf("Reset failed: %v", err)
		}

		rng := env.RNG().ForSubsystem(sim.SubsystemController)
		for !env.Done {
			awaiting := env.AwaitingPickPoints()
			point := awaiting[rng.Intn(len(awaiting))]
			picker := nearestIdlePicker(env, point)
			if _, _, _, err := env.Step(sim.Action{PickerID: picker.ID, PickPointID: point.ID}); err != nil {
				logrus.Fatalf("Step failed: %v", err)
			}
		}

		env.Metrics.Print()
		if tracePath != "" {
			if err := env.Trace.WriteJSONL(tracePath); err != nil {
				logrus.Fatalf("Unable to write trace: %v", err)
			}
			summary := env.Trace.Summarize()
			logrus.Infof("Trace written to %s (%d decisions, mean travel %.2fs)",
				tracePath, summary.Decisions, summary.MeanTravelTime)
		}
		logrus.Info("Simulation complete.")
	},
}

// nearestIdlePicker picks the idle picker closest to the target point.
func nearestIdlePicker(env *sim.WarehouseEnv, point *sim.PickPoint) *sim.Picker {
	idle := env.IdlePickers()
	best := idle[0]
	bestDist := math.Inf(1)
	for _, p := range idle {
		if d := env.Distance(p.Position, point.Position); d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// generateCmd writes a synthetic order book to CSV for later replay.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic order book CSV",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if ordersPath == "" {
			logrus.Fatalf("No output path provided (--orders)")
		}
		cfg := loadConfig()
		layout := sim.BuildLayout(&cfg.Warehouse, cfg.Item.PickTime)
		orders, err := workload.GenerateOrders(generatorSpec(), layout, &cfg.Order)
		if err != nil {
			logrus.Fatalf("Order generation failed: %v", err)
		}
		if err := workload.WriteOrdersCSV(ordersPath, orders, layout); err != nil {
			logrus.Fatalf("Unable to write order book: %v", err)
		}
		logrus.Infof("Wrote %d orders to %s", len(orders), ordersPath)
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	for _, c := range []*cobra.Command{runCmd, generateCmd} {
		c.Flags().Int64Var(&seed, "seed", 42, "Master seed for all random subsystems")
		c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().StringVar(&configPath, "config", "", "YAML configuration file (defaults when empty)")
		c.Flags().StringVar(&ordersPath, "orders", "", "Order book CSV (run: input, generate: output)")

		c.Flags().IntVar(&aisleCount, "aisles", 0, "Number of aisles (0 = config value)")
		c.Flags().IntVar(&positions, "positions", 0, "Shelf positions per aisle (0 = config value)")
		c.Flags().IntVar(&robotCount, "robots", 0, "Robot fleet size (0 = config value)")
		c.Flags().IntVar(&pickerCount, "pickers", 0, "Picker fleet size (0 = config value)")
		c.Flags().IntVar(&robotRule, "robot-rule", 0, "Robot pick-point selection rule 1-7 (0 = config value)")
		c.Flags().IntVar(&pickerRule, "picker-rule", 0, "Picker pick-point selection rule 1-7 (0 = config value)")

		c.Flags().IntVar(&totalOrders, "num-orders", 100, "Orders to generate when no order book is given")
		c.Flags().Float64Var(&meanInterarrival, "mean-interarrival", 60, "Mean seconds between generated order arrivals")
		c.Flags().IntVar(&itemsMin, "items-min", 1, "Minimum items per generated order")
		c.Flags().IntVar(&itemsMax, "items-max", 10, "Maximum items per generated order")
	}
	runCmd.Flags().StringVar(&tracePath, "trace", "", "Write a JSONL decision trace to this path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
}
