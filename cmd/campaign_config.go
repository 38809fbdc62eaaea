package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmwave-lab/berperf/sim"
	"github.com/mmwave-lab/berperf/sim/phy"
	"github.com/mmwave-lab/berperf/sim/seqcache"
)

// EbN0Sweep is an Eb/N0 range with exclusive stop.
type EbN0Sweep struct {
	Start float64 `yaml:"start"`
	Stop  float64 `yaml:"stop"`
	Step  float64 `yaml:"step"`
}

// CampaignConfig is the full set of inputs for the run command. It can be
// loaded from YAML; flags given on the command line override file values.
// All top-level keys must be listed to satisfy KnownFields(true) strict parsing.
type CampaignConfig struct {
	MCS                  []string       `yaml:"mcs"`
	MaxDecoderIterations []int          `yaml:"max_decoder_iterations"` // one per MCS, or one for all
	EbN0                 EbN0Sweep      `yaml:"eb_n0"`
	EbN0List             []float64      `yaml:"eb_n0_list"` // overrides EbN0 when set
	DemappingAlgorithm   string         `yaml:"demapping_algorithm"`
	DecodingAlgorithm    string         `yaml:"decoding_algorithm"`
	EarlyExit            bool           `yaml:"allow_early_exit"`
	Thresholds           sim.Thresholds `yaml:"thresholds"`
	PoolSize             int            `yaml:"pool_size"`
	ParallelMCS          int            `yaml:"parallel_mcs"`
	Seed                 int64          `yaml:"seed"`
	Sequences            string         `yaml:"sequences"`
	Store                string         `yaml:"store"`
	CacheSize            int            `yaml:"cache_size"`
	LogDir               string         `yaml:"log_dir"`
	MCSTable             string         `yaml:"mcs_table"`
	Niceness             int            `yaml:"niceness"`
	ProgressLogs         bool           `yaml:"progress_logs"`
}

// DefaultCampaignConfig reproduces the lab's standard sweep: fifteen MCS
// values with tuned iteration caps, 0 to 15 dB in 0.25 dB steps.
func DefaultCampaignConfig() CampaignConfig {
	return CampaignConfig{
		MCS:                  []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "12.1", "12.3", "12.4", "12.5"},
		MaxDecoderIterations: []int{20, 18, 17, 20, 10, 9, 8, 10, 5, 4, 4, 5, 3, 3, 3},
		EbN0:                 EbN0Sweep{Start: 0, Stop: 15, Step: 0.25},
		DemappingAlgorithm:   phy.DemapDecisionThreshold,
		DecodingAlgorithm:    phy.DecodeMinSum,
		EarlyExit:            true,
		Thresholds:           sim.DefaultThresholds(),
		PoolSize:             4,
		ParallelMCS:          0,
		Seed:                 0,
		Sequences:            "Sequence",
		Store:                seqcache.BackendDir,
		CacheSize:            64,
		LogDir:               "Log",
		Niceness:             10,
		ProgressLogs:         true,
	}
}

// LoadCampaignConfig overlays the YAML file at path on the defaults.
// Unknown keys are rejected.
func LoadCampaignConfig(path string) (CampaignConfig, error) {
	cfg := DefaultCampaignConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading campaign config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing campaign config: %w", err)
	}
	return cfg, nil
}

// EbN0Points returns the explicit list if given, otherwise the expanded range.
func (c CampaignConfig) EbN0Points() ([]float64, error) {
	if len(c.EbN0List) > 0 {
		return c.EbN0List, nil
	}
	return sim.EbN0Range(c.EbN0.Start, c.EbN0.Stop, c.EbN0.Step)
}

// Sweeps pairs each MCS with its iteration cap. A single cap applies to all.
func (c CampaignConfig) Sweeps() ([]sim.MCSSweep, error) {
	if len(c.MaxDecoderIterations) != 1 && len(c.MaxDecoderIterations) != len(c.MCS) {
		return nil, fmt.Errorf("%d max decoder iteration values for %d MCS values", len(c.MaxDecoderIterations), len(c.MCS))
	}
	sweeps := make([]sim.MCSSweep, len(c.MCS))
	for i, id := range c.MCS {
		it := c.MaxDecoderIterations[0]
		if len(c.MaxDecoderIterations) > 1 {
			it = c.MaxDecoderIterations[i]
		}
		sweeps[i] = sim.MCSSweep{MCS: sim.NormalizeMCS(id), MaxDecoderIterations: it}
	}
	return sweeps, nil
}

// Validate checks everything that can be checked before touching the disk.
func (c CampaignConfig) Validate() error {
	if len(c.MCS) == 0 {
		return fmt.Errorf("no MCS values given")
	}
	if _, err := c.Sweeps(); err != nil {
		return err
	}
	points, err := c.EbN0Points()
	if err != nil {
		return err
	}
	if err := sim.ValidateEbN0List(points); err != nil {
		return err
	}
	if !phy.ValidDemappingAlgorithms[c.DemappingAlgorithm] {
		return fmt.Errorf("unknown demapping algorithm %q", c.DemappingAlgorithm)
	}
	if !phy.ValidDecodingAlgorithms[c.DecodingAlgorithm] {
		return fmt.Errorf("unknown decoding algorithm %q", c.DecodingAlgorithm)
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool_size must be at least 1, got %d", c.PoolSize)
	}
	if c.ParallelMCS < 0 {
		return fmt.Errorf("parallel_mcs must be non-negative, got %d", c.ParallelMCS)
	}
	if !seqcache.ValidBackends[c.Store] {
		return fmt.Errorf("unknown sequence store %q", c.Store)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", c.CacheSize)
	}
	if c.Sequences == "" {
		return fmt.Errorf("sequences path must be set")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log_dir must be set")
	}
	return nil
}

// Campaign assembles the sim.Campaign for this configuration.
func (c CampaignConfig) Campaign(table *sim.MCSTable, runner sim.PointRunner) (*sim.Campaign, error) {
	sweeps, err := c.Sweeps()
	if err != nil {
		return nil, err
	}
	points, err := c.EbN0Points()
	if err != nil {
		return nil, err
	}
	return &sim.Campaign{
		Sweeps:   sweeps,
		EbN0List: points,
		Template: sim.TrialConfig{
			DemappingAlgorithm: c.DemappingAlgorithm,
			DecodingAlgorithm:  c.DecodingAlgorithm,
			EarlyExit:          c.EarlyExit,
			Thresholds:         c.Thresholds,
		},
		PoolSize:    c.PoolSize,
		ParallelMCS: c.ParallelMCS,
		Table:       table,
		Runner:      runner,
	}, nil
}

// loadMCSTable returns the built-in table unless path names a CSV override.
func loadMCSTable(path string) (*sim.MCSTable, error) {
	if path == "" {
		return sim.DefaultMCSTable(), nil
	}
	return sim.LoadMCSTable(path)
}
