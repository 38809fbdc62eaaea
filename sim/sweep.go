package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mmwave-lab/berperf/sim/trace"
)

// PointRunner runs one configuration to completion and returns its total bit errors.
type PointRunner func(ctx context.Context, cfg TrialConfig) (int64, error)

// PointResult is the outcome of one worker.
type PointResult struct {
	Config    TrialConfig
	BitErrors int64
	Err       error
}

// ErrorFree reports whether the worker succeeded and observed no bit errors.
// A failed worker is never error-free.
func (r PointResult) ErrorFree() bool {
	return r.Err == nil && r.BitErrors == 0
}

// SweepReport describes what a SweepScheduler run executed.
type SweepReport struct {
	MCS          string
	Points       []PointResult // in schedule order
	Batches      int           // batches executed
	StoppedEarly bool          // a whole batch came back error-free
	Trace        *trace.SweepTrace
}

// Failed returns the points whose worker returned an error.
func (r *SweepReport) Failed() []PointResult {
	var failed []PointResult
	for _, p := range r.Points {
		if p.Err != nil {
			failed = append(failed, p)
		}
	}
	return failed
}

// SweepScheduler runs one MCS across an ascending Eb/N0 list in batches of
// PoolSize concurrent workers. Batches run strictly one after another; after
// each batch, if every worker succeeded with zero bit errors, no further
// batches are scheduled.
type SweepScheduler struct {
	PoolSize int
	Runner   PointRunner
}

// NewSweepScheduler creates a scheduler with pool size k.
func NewSweepScheduler(k int, runner PointRunner) *SweepScheduler {
	return &SweepScheduler{PoolSize: k, Runner: runner}
}

// Run schedules template at every Eb/N0 in ebN0List for mcs. Worker failures
// do not stop sibling workers or later batches; they are returned joined in
// the error alongside a complete report.
func (s *SweepScheduler) Run(ctx context.Context, mcs string, ebN0List []float64, template TrialConfig) (*SweepReport, error) {
	if s.PoolSize < 1 {
		return nil, fmt.Errorf("pool size must be at least 1, got %d", s.PoolSize)
	}
	if s.Runner == nil {
		return nil, fmt.Errorf("sweep scheduler has no runner")
	}
	if err := ValidateEbN0List(ebN0List); err != nil {
		return nil, err
	}

	report := &SweepReport{MCS: mcs, Trace: trace.NewSweepTrace(mcs)}
	batches := Partition(ebN0List, s.PoolSize)
	var failures []error

	for bi, batch := range batches {
		if err := ctx.Err(); err != nil {
			failures = append(failures, fmt.Errorf("MCS %s: sweep interrupted before batch %d: %w", mcs, bi, err))
			break
		}

		results := s.runBatch(ctx, mcs, batch, template)
		report.Batches++
		report.Points = append(report.Points, results...)

		record := trace.BatchRecord{Index: bi, Decision: trace.DecisionContinue}
		allErrorFree := true
		for _, r := range results {
			p := trace.PointRecord{EbN0dB: r.Config.EbN0dB, BitErrors: r.BitErrors}
			if r.Err != nil {
				p.Failed = true
				p.Error = r.Err.Error()
				failures = append(failures, r.Err)
			}
			if !r.ErrorFree() {
				allErrorFree = false
			}
			record.Points = append(record.Points, p)
		}

		switch {
		case allErrorFree:
			record.Decision = trace.DecisionStop
		case bi == len(batches)-1:
			record.Decision = trace.DecisionExhausted
		}
		report.Trace.RecordBatch(record)

		logrus.Infof("MCS %s batch %d/%d (Eb/N0 %v dB): %s", mcs, bi+1, len(batches), batch, record.Decision)
		if record.Decision == trace.DecisionStop {
			report.StoppedEarly = true
			break
		}
	}

	return report, errors.Join(failures...)
}

// runBatch runs one worker per Eb/N0 value, at most PoolSize at a time, and
// waits for all of them. Results are in batch order.
func (s *SweepScheduler) runBatch(ctx context.Context, mcs string, batch []float64, template TrialConfig) []PointResult {
	results := make([]PointResult, len(batch))

	var g errgroup.Group
	g.SetLimit(s.PoolSize)
	for i, ebN0 := range batch {
		i := i
		cfg := template
		cfg.MCS = mcs
		cfg.EbN0dB = ebN0
		g.Go(func() error {
			results[i] = s.runPoint(ctx, cfg)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// runPoint isolates one worker: a panic inside the receive chain becomes
// that worker's error.
func (s *SweepScheduler) runPoint(ctx context.Context, cfg TrialConfig) (res PointResult) {
	res.Config = cfg
	defer func() {
		if p := recover(); p != nil {
			res.BitErrors = 0
			res.Err = fmt.Errorf("%s: worker panic: %v", cfg.Key(), p)
		}
	}()
	res.BitErrors, res.Err = s.Runner(ctx, cfg)
	if res.Err != nil {
		res.BitErrors = 0
	}
	return res
}

// Partition splits list into consecutive batches of size k; the last batch may
// be shorter. Concatenating the batches reconstructs list.
func Partition(list []float64, k int) [][]float64 {
	if k < 1 {
		return nil
	}
	batches := make([][]float64, 0, (len(list)+k-1)/k)
	for start := 0; start < len(list); start += k {
		end := start + k
		if end > len(list) {
			end = len(list)
		}
		batches = append(batches, list[start:end:end])
	}
	return batches
}

// ValidateEbN0List enforces the early-termination precondition: a non-empty,
// strictly ascending list of finite values.
func ValidateEbN0List(list []float64) error {
	if len(list) == 0 {
		return fmt.Errorf("Eb/N0 list is empty")
	}
	for i, v := range list {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("Eb/N0 list must hold finite values: %v at position %d", v, i)
		}
	}
	for i := 1; i < len(list); i++ {
		if list[i] <= list[i-1] {
			return fmt.Errorf("Eb/N0 list must be strictly ascending: %v at position %d follows %v", list[i], i, list[i-1])
		}
	}
	return nil
}

// EbN0Range returns start, start+step, ... up to but excluding stop.
func EbN0Range(start, stop, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("Eb/N0 step must be positive, got %v", step)
	}
	if stop <= start {
		return nil, fmt.Errorf("Eb/N0 stop (%v) must exceed start (%v)", stop, start)
	}
	var list []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v >= stop-step*1e-9 {
			break
		}
		list = append(list, v)
	}
	return list, nil
}
