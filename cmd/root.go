package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// CLI flags for the simulation run
	seed     int64  // Seed for all random subsystems
	ticks    int64  // Number of ticks to run
	timeout  int64  // Request expiry timeout (in ticks)
	logLevel string // Log verbosity level

	// Fleet configuration
	numDrivers int
	speedMin   float64
	speedMax   float64

	// World / request generation
	worldWidth  float64
	worldHeight float64
	rate        float64 // Requests per minute (60 ticks)
	generator   string  // Request generator name

	// Policy selection
	dispatchPolicy string
	behaviourName  string
	mutationRules  []string
	minWaitTime    int64
	maxDistance    float64
	minRatio       float64
	escalationRate float64
	mutationProb   float64
	perfThreshold  float64
	perfWindow     int
	rewardBase     float64
	rewardPerDist  float64
	policyConfig   string // optional YAML bundle path
	traceLevel     string
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fleet-sim",
	Short: "Discrete-tick simulator for delivery fleets",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the delivery simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if ticks <= 0 {
			logrus.Fatalf("--ticks must be positive, got %d", ticks)
		}
		if numDrivers <= 0 {
			logrus.Fatalf("--drivers must be positive, got %d", numDrivers)
		}

		logrus.Infof("Starting simulation: %d drivers, %d ticks, timeout=%d, dispatch=%q",
			numDrivers, ticks, timeout, dispatchPolicy)

		engine, simTrace, err := composeEngine()
		if err != nil {
			logrus.Fatalf("Failed to compose simulation: %v", err)
		}

		for i := int64(0); i < ticks; i++ {
			engine.Tick()
		}

		engine.Metrics.Report(ticks)
		if simTrace != nil {
			printTraceSummary(simTrace)
		}

		logrus.Info("Simulation complete.")
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
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random request generation and mutation")
	runCmd.Flags().Int64Var(&ticks, "ticks", 600, "Number of simulation ticks to run")
	runCmd.Flags().Int64Var(&timeout, "timeout", 100, "Request expiry timeout (in ticks)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Fleet configuration
	runCmd.Flags().IntVar(&numDrivers, "drivers", 10, "Number of drivers in the fleet")
	runCmd.Flags().Float64Var(&speedMin, "speed-min", 0.5, "Minimum driver speed (units per tick)")
	runCmd.Flags().Float64Var(&speedMax, "speed-max", 2.0, "Maximum driver speed (units per tick)")

	// World / request generation
	runCmd.Flags().Float64Var(&worldWidth, "width", 100, "World width for request sampling")
	runCmd.Flags().Float64Var(&worldHeight, "height", 100, "World height for request sampling")
	runCmd.Flags().Float64Var(&rate, "rate", 30, "Request arrival rate (requests per minute)")
	runCmd.Flags().StringVar(&generator, "generator", "rate", "Request generator (rate, poisson)")

	// Policy selection
	runCmd.Flags().StringVar(&dispatchPolicy, "dispatch", "nearest-neighbor", "Dispatch policy (nearest-neighbor, global-greedy)")
	runCmd.Flags().StringVar(&behaviourName, "behaviour", "lazy", "Initial driver behaviour (lazy, greedy-distance, earning-max)")
	runCmd.Flags().StringSliceVar(&mutationRules, "mutation", nil, "Mutation rules to compose (exploration, performance)")
	runCmd.Flags().Int64Var(&minWaitTime, "min-wait-time", 5, "Lazy behaviour: minimum request wait before accepting")
	runCmd.Flags().Float64Var(&maxDistance, "max-distance", 10, "Greedy-distance behaviour: maximum pickup distance")
	runCmd.Flags().Float64Var(&minRatio, "min-ratio", 1.0, "Earning-max behaviour: minimum reward/travel-time ratio")
	runCmd.Flags().Float64Var(&escalationRate, "escalation-rate", 0.0005, "Earning-max behaviour: threshold escalation per tick (0 disables)")
	runCmd.Flags().Float64Var(&mutationProb, "mutation-probability", 0.01, "Exploration rule: base mutation probability")
	runCmd.Flags().Float64Var(&perfThreshold, "performance-threshold", 1.0, "Performance rule: minimum average earnings per trip")
	runCmd.Flags().IntVar(&perfWindow, "performance-window", 5, "Performance rule: number of recent trips evaluated")
	runCmd.Flags().Float64Var(&rewardBase, "reward-base", 2.0, "Reward model: base payout per trip")
	runCmd.Flags().Float64Var(&rewardPerDist, "reward-per-distance", 1.0, "Reward model: payout per unit of trip distance")
	runCmd.Flags().StringVar(&policyConfig, "policy-config", "", "Path to YAML policy bundle (overrides policy flags)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
