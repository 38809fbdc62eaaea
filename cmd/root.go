package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mmwave-lab/berperf/sim"
	"github.com/mmwave-lab/berperf/sim/phy"
	"github.com/mmwave-lab/berperf/sim/resultlog"
	"github.com/mmwave-lab/berperf/sim/seqcache"
)

var (
	// CLI flags for the run command
	configPath    string    // Optional YAML campaign file
	logLevel      string    // Log verbosity level
	mcsList       []string  // MCS identifiers to sweep
	maxIterations []int     // Decoder iteration cap, per MCS or one for all
	ebN0Start     float64   // First Eb/N0 point (dB)
	ebN0Stop      float64   // Eb/N0 range end, exclusive (dB)
	ebN0Step      float64   // Eb/N0 step (dB)
	ebN0Points    []float64 // Explicit Eb/N0 list, overrides the range
	demapping     string    // Demapping algorithm
	decoding      string    // Decoding algorithm
	earlyExit     bool      // Allow decoder early exit
	minBitErrors  int64     // Convergence: error target
	maxTxBits     int64     // Convergence: volume target
	minPackets    int64     // Convergence: packet floor
	poolSize      int       // Workers per MCS batch
	parallelMCS   int       // MCS sweeps running at once, 0 = all
	seed          int64     // Master seed for receiver noise
	sequencesPath string    // Sequence store location
	storeBackend  string    // Sequence store backend
	cacheSize     int       // Decoded-record LRU size, 0 disables
	logDir        string    // Parent of numbered run directories
	mcsTablePath  string    // Optional MCS table CSV
	niceness      int       // Process niceness, 0 leaves it unchanged
	progressLogs  bool      // Write <key>_std.out per configuration
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "berperf",
	Short: "Monte Carlo BER/PER sweeps for 802.11ad single-carrier receivers",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd sweeps every configured MCS over the Eb/N0 list
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a BER/PER sweep campaign",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := DefaultCampaignConfig()
		if configPath != "" {
			var err error
			if cfg, err = LoadCampaignConfig(configPath); err != nil {
				logrus.Fatalf("%v", err)
			}
		}
		applyRunFlags(cmd.Flags(), &cfg)
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid campaign: %v", err)
		}

		if cfg.Niceness != 0 {
			if err := setNiceness(cfg.Niceness); err != nil {
				logrus.Warnf("Could not set niceness %d: %v", cfg.Niceness, err)
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := runCampaign(ctx, cfg)
		if result != nil {
			printCampaignSummary(os.Stdout, result.Report)
			logrus.Infof("Results written to %s", result.RunDir)
		}
		if err != nil {
			logrus.Fatalf("Campaign finished with errors: %v", err)
		}
		logrus.Info("Campaign complete.")
	},
}

// campaignResult is what runCampaign hands back to the command.
type campaignResult struct {
	RunDir string
	RunID  string
	Report *sim.CampaignReport
}

// runCampaign opens the stores, allocates a run directory and runs the campaign.
// A non-nil result is returned whenever the campaign started, even on error.
func runCampaign(ctx context.Context, cfg CampaignConfig) (*campaignResult, error) {
	table, err := loadMCSTable(cfg.MCSTable)
	if err != nil {
		return nil, err
	}

	store, err := seqcache.Open(cfg.Store, cfg.Sequences, true)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()
	var reader sim.SequenceStore = store
	if cfg.CacheSize > 0 {
		if reader, err = seqcache.NewCachedStore(store, cfg.CacheSize); err != nil {
			return nil, err
		}
	}

	runDir, err := resultlog.NextRunDir(cfg.LogDir)
	if err != nil {
		return nil, err
	}
	results, err := resultlog.New(runDir)
	if err != nil {
		return nil, err
	}

	env := &sim.Environment{
		Store:       reader,
		Table:       table,
		Sink:        results,
		NewReceiver: phy.NewReceiver,
		Seed:        cfg.Seed,
		RunID:       uuid.New().String(),
	}
	if cfg.ProgressLogs {
		env.ProgressLog = func(tc sim.TrialConfig) (io.WriteCloser, error) {
			return results.OpenProgressLog(tc)
		}
	}

	campaign, err := cfg.Campaign(table, env.RunPoint)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Starting run %s in %s: %d MCS, Eb/N0 %s, pool size %d",
		env.RunID, runDir, len(campaign.Sweeps), formatEbN0List(campaign.EbN0List), campaign.PoolSize)

	report, err := campaign.Run(ctx)
	return &campaignResult{RunDir: runDir, RunID: env.RunID, Report: report}, err
}

// applyRunFlags copies explicitly set flags over cfg.
func applyRunFlags(flags *pflag.FlagSet, cfg *CampaignConfig) {
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("mcs", func() { cfg.MCS = mcsList })
	set("max-iterations", func() { cfg.MaxDecoderIterations = maxIterations })
	set("ebno-start", func() { cfg.EbN0.Start = ebN0Start })
	set("ebno-stop", func() { cfg.EbN0.Stop = ebN0Stop })
	set("ebno-step", func() { cfg.EbN0.Step = ebN0Step })
	set("ebno", func() { cfg.EbN0List = ebN0Points })
	set("demapping", func() { cfg.DemappingAlgorithm = demapping })
	set("decoding", func() { cfg.DecodingAlgorithm = decoding })
	set("early-exit", func() { cfg.EarlyExit = earlyExit })
	set("min-bit-errors", func() { cfg.Thresholds.MinBitErrors = minBitErrors })
	set("max-transmitted-bits", func() { cfg.Thresholds.MaxTransmittedBits = maxTxBits })
	set("min-sent-packets", func() { cfg.Thresholds.MinSentPackets = minPackets })
	set("pool-size", func() { cfg.PoolSize = poolSize })
	set("parallel-mcs", func() { cfg.ParallelMCS = parallelMCS })
	set("seed", func() { cfg.Seed = seed })
	set("sequences", func() { cfg.Sequences = sequencesPath })
	set("store", func() { cfg.Store = storeBackend })
	set("cache-size", func() { cfg.CacheSize = cacheSize })
	set("log-dir", func() { cfg.LogDir = logDir })
	set("mcs-table", func() { cfg.MCSTable = mcsTablePath })
	set("nice", func() { cfg.Niceness = niceness })
	set("progress-logs", func() { cfg.ProgressLogs = progressLogs })
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	d := DefaultCampaignConfig()

	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML campaign file; explicit flags override its values")

	// Sweep definition
	runCmd.Flags().StringSliceVar(&mcsList, "mcs", d.MCS, "Comma-separated MCS identifiers")
	runCmd.Flags().IntSliceVar(&maxIterations, "max-iterations", d.MaxDecoderIterations, "Decoder iteration cap per MCS (or a single value for all)")
	runCmd.Flags().Float64Var(&ebN0Start, "ebno-start", d.EbN0.Start, "First Eb/N0 point in dB")
	runCmd.Flags().Float64Var(&ebN0Stop, "ebno-stop", d.EbN0.Stop, "End of the Eb/N0 range in dB (exclusive)")
	runCmd.Flags().Float64Var(&ebN0Step, "ebno-step", d.EbN0.Step, "Eb/N0 step in dB")
	runCmd.Flags().Float64SliceVar(&ebN0Points, "ebno", nil, "Explicit ascending Eb/N0 list in dB; overrides the range")

	// Receive chain
	runCmd.Flags().StringVar(&demapping, "demapping", d.DemappingAlgorithm, "Demapping algorithm (decision threshold, max-log)")
	runCmd.Flags().StringVar(&decoding, "decoding", d.DecodingAlgorithm, "Decoding algorithm (MSA, NMSA, hard)")
	runCmd.Flags().BoolVar(&earlyExit, "early-exit", d.EarlyExit, "Allow the decoder to stop once parity checks pass")

	// Convergence
	runCmd.Flags().Int64Var(&minBitErrors, "min-bit-errors", d.Thresholds.MinBitErrors, "Bit errors that end a configuration")
	runCmd.Flags().Int64Var(&maxTxBits, "max-transmitted-bits", d.Thresholds.MaxTransmittedBits, "Transmitted bits that end a configuration")
	runCmd.Flags().Int64Var(&minPackets, "min-sent-packets", d.Thresholds.MinSentPackets, "Packets every configuration must send")

	// Execution
	runCmd.Flags().IntVar(&poolSize, "pool-size", d.PoolSize, "Concurrent Eb/N0 workers per MCS; also the early-stop check interval")
	runCmd.Flags().IntVar(&parallelMCS, "parallel-mcs", d.ParallelMCS, "MCS sweeps running at once (0 = all)")
	runCmd.Flags().Int64Var(&seed, "seed", d.Seed, "Master seed for channel noise")
	runCmd.Flags().IntVar(&niceness, "nice", d.Niceness, "Process niceness applied before workers start (0 = unchanged)")

	// Storage
	runCmd.Flags().StringVar(&sequencesPath, "sequences", d.Sequences, "Sequence store path")
	runCmd.Flags().StringVar(&storeBackend, "store", d.Store, "Sequence store backend (dir, leveldb)")
	runCmd.Flags().IntVar(&cacheSize, "cache-size", d.CacheSize, "Decoded sequence records kept in memory (0 disables)")
	runCmd.Flags().StringVar(&logDir, "log-dir", d.LogDir, "Parent directory of numbered run directories")
	runCmd.Flags().StringVar(&mcsTablePath, "mcs-table", "", "MCS table CSV overriding the built-in 802.11ad table")
	runCmd.Flags().BoolVar(&progressLogs, "progress-logs", d.ProgressLogs, "Write a per-configuration progress log")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}

// formatEbN0List keeps long lists readable in log lines.
func formatEbN0List(list []float64) string {
	if len(list) <= 6 {
		return fmt.Sprint(list)
	}
	return fmt.Sprintf("[%v %v %v ... %v] (%d points)", list[0], list[1], list[2], list[len(list)-1], len(list))
}
