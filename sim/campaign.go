package sim

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Environment bundles the collaborators shared by every worker of a campaign.
// Store and Table are read-only; Sink writes to disjoint destinations per
// configuration; NewReceiver builds a private Receiver per worker.
type Environment struct {
	Store       SequenceStore
	Table       *MCSTable
	Sink        ResultSink
	NewReceiver ReceiverFactory
	Seed        int64
	RunID       string

	// ProgressLog opens a per-configuration progress destination; nil disables it.
	ProgressLog func(cfg TrialConfig) (io.WriteCloser, error)
}

// RunPoint is a PointRunner: it builds a fresh Receiver and TrialLoop for cfg
// and runs it to completion.
func (e *Environment) RunPoint(ctx context.Context, cfg TrialConfig) (int64, error) {
	seed := DeriveSeed(e.Seed, cfg)
	receiver, err := e.NewReceiver(cfg, seed)
	if err != nil {
		return 0, fmt.Errorf("%s: building receiver: %w", cfg.Key(), err)
	}

	loop := NewTrialLoop(e.Store, receiver, e.Sink, e.Table)
	loop.RunID = e.RunID
	loop.Seed = seed
	if e.ProgressLog != nil {
		w, err := e.ProgressLog(cfg)
		if err != nil {
			return 0, fmt.Errorf("%s: opening progress log: %w", cfg.Key(), err)
		}
		defer func() { _ = w.Close() }()
		loop.Progress = newProgressLogger(w)
	}
	return loop.Run(ctx, cfg)
}

func newProgressLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return l
}

// MCSSweep pairs an MCS with its decoder iteration cap.
type MCSSweep struct {
	MCS                  string `yaml:"mcs"`
	MaxDecoderIterations int    `yaml:"max_decoder_iterations"`
}

// Campaign sweeps every listed MCS over the same Eb/N0 list. Each MCS gets
// its own SweepScheduler; schedulers run concurrently, at most ParallelMCS at
// a time (0 = no limit), so the worst-case number of live workers is
// ParallelMCS*PoolSize.
type Campaign struct {
	Sweeps      []MCSSweep
	EbN0List    []float64
	Template    TrialConfig // MCS, EbN0dB and MaxDecoderIterations are set per point
	PoolSize    int
	ParallelMCS int
	Table       *MCSTable
	Runner      PointRunner
}

// CampaignReport holds one SweepReport per MCSSweep, in campaign order.
// Entries are nil for sweeps that could not start.
type CampaignReport struct {
	Sweeps []*SweepReport
}

// Validate checks campaign-wide settings. Per-MCS problems are reported per
// sweep by Run and never block other MCS values.
func (c *Campaign) Validate() error {
	if len(c.Sweeps) == 0 {
		return fmt.Errorf("campaign has no MCS values")
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool size must be at least 1, got %d", c.PoolSize)
	}
	if c.ParallelMCS < 0 {
		return fmt.Errorf("parallel MCS limit must be non-negative, got %d", c.ParallelMCS)
	}
	if c.Runner == nil {
		return fmt.Errorf("campaign has no runner")
	}
	if err := ValidateEbN0List(c.EbN0List); err != nil {
		return err
	}
	return c.Template.Thresholds.Validate()
}

// Run schedules every MCS and waits for all of them.
func (c *Campaign) Run(ctx context.Context) (*CampaignReport, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	report := &CampaignReport{Sweeps: make([]*SweepReport, len(c.Sweeps))}
	errs := make([]error, len(c.Sweeps))

	var g errgroup.Group
	if c.ParallelMCS > 0 {
		g.SetLimit(c.ParallelMCS)
	}
	for i, sw := range c.Sweeps {
		i, sw := i, sw
		g.Go(func() error {
			report.Sweeps[i], errs[i] = c.runSweep(ctx, sw)
			return nil
		})
	}
	_ = g.Wait()

	return report, errors.Join(errs...)
}

func (c *Campaign) runSweep(ctx context.Context, sw MCSSweep) (*SweepReport, error) {
	if c.Table != nil {
		p, err := c.Table.Lookup(sw.MCS)
		if err != nil {
			return nil, fmt.Errorf("MCS %s: %w", sw.MCS, err)
		}
		if !p.Simulatable() {
			logrus.Warnf("MCS %s (repetition %d, code rate %v) is outside the simulatable set", p.ID, p.Repetition, p.CodeRate)
		}
		sw.MCS = p.ID
	}
	if sw.MaxDecoderIterations < 0 {
		return nil, fmt.Errorf("MCS %s: max decoder iterations must be non-negative, got %d", sw.MCS, sw.MaxDecoderIterations)
	}

	template := c.Template
	template.MaxDecoderIterations = sw.MaxDecoderIterations
	scheduler := NewSweepScheduler(c.PoolSize, c.Runner)

	logrus.Infof("Starting sweep: MCS %s, %d Eb/N0 points, pool size %d", sw.MCS, len(c.EbN0List), c.PoolSize)
	return scheduler.Run(ctx, sw.MCS, c.EbN0List, template)
}
