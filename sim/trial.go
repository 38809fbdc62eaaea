package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// TrialLoop runs the Monte Carlo convergence policy for one configuration.
//
// Each iteration first checks the stopping rule, then consumes the next
// SequenceRecord, pushes it through the Receiver and appends one
// TrialMetricRow. The row table and counters are owned by the Run call and
// handed to the ResultSink once, after the loop exits.
//
// Thread-safety: a TrialLoop is used by a single worker goroutine.
type TrialLoop struct {
	store    SequenceStore
	receiver Receiver
	sink     ResultSink
	table    *MCSTable

	RunID    string             // stamped into RunMetadata
	Seed     int64              // receiver seed, stamped into RunMetadata
	Progress logrus.FieldLogger // per-trial progress; nil uses the standard logger
	Now      func() time.Time   // wall clock; nil uses time.Now
}

// NewTrialLoop creates a TrialLoop over the given collaborators.
func NewTrialLoop(store SequenceStore, receiver Receiver, sink ResultSink, table *MCSTable) *TrialLoop {
	return &TrialLoop{
		store:    store,
		receiver: receiver,
		sink:     sink,
		table:    table,
	}
}

// Run executes trials until cfg.Thresholds converge, persists the results and
// returns the total number of bit errors.
//
// A missing sequence, an unknown MCS, a receiver failure or a persistence
// failure aborts the run. The context is only consulted between trials.
func (l *TrialLoop) Run(ctx context.Context, cfg TrialConfig) (int64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("invalid trial config: %w", err)
	}
	if l.table == nil {
		return 0, fmt.Errorf("trial loop has no MCS table")
	}
	mcs, err := l.table.Lookup(cfg.MCS)
	if err != nil {
		return 0, err
	}
	params := ChainParamsFor(cfg, mcs)
	progress := l.progress().WithFields(logrus.Fields{"mcs": mcs.ID, "ebno": cfg.EbN0dB})

	started := l.now()
	var (
		bitErrorsTotal       int64
		transmittedBitsTotal int64
		sentPacketsTotal     int64
		payloadLength        int
		rows                 []TrialMetricRow
	)

	for index := 0; ; index++ {
		progress.Debugf("trial %d: bit_errors=%d transmitted_bits=%d", index, bitErrorsTotal, transmittedBitsTotal)

		if cfg.Thresholds.Converged(bitErrorsTotal, transmittedBitsTotal, sentPacketsTotal) {
			break
		}
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%s interrupted before trial %d: %w", cfg.Key(), index, err)
		}

		rec, err := l.store.Read(mcs.ID, index)
		if err != nil {
			return 0, fmt.Errorf("%s: reading trial %d: %w", cfg.Key(), index, err)
		}
		res, err := l.receiver.Process(rec.Waveform, rec.ScramblerSeed, params)
		if err != nil {
			return 0, fmt.Errorf("%s: trial %d: %w", cfg.Key(), index, err)
		}

		payloadLength = rec.PayloadLength()
		bitErrors, err := countBitErrors(res.Bits, rec.PayloadBits)
		if err != nil {
			return 0, fmt.Errorf("%s: trial %d: %w", cfg.Key(), index, err)
		}
		row := TrialMetricRow{
			TrialIndex:        index,
			BitErrors:         bitErrors,
			TransmittedBits:   int64(payloadLength),
			DecoderIterations: res.DecoderIterations,
		}
		if bitErrors > 0 {
			row.PacketErrors = 1
		}

		bitErrorsTotal += row.BitErrors
		transmittedBitsTotal += row.TransmittedBits
		sentPacketsTotal++
		rows = append(rows, row)
	}

	meta := RunMetadata{
		RunID:                l.RunID,
		MCS:                  mcs.ID,
		EbN0dB:               cfg.EbN0dB,
		DemappingAlgorithm:   cfg.DemappingAlgorithm,
		DecodingAlgorithm:    cfg.DecodingAlgorithm,
		MaxDecoderIterations: cfg.MaxDecoderIterations,
		EarlyExit:            cfg.EarlyExit,
		Thresholds:           cfg.Thresholds,
		Seed:                 l.Seed,
		PayloadLength:        payloadLength,
		ModulationRate:       mcs.ModulationRate,
		CodeRate:             mcs.CodeRate,
		TrialsRun:            len(rows),
		BitErrors:            bitErrorsTotal,
		TransmittedBits:      transmittedBitsTotal,
		TimeStarted:          started,
		TimeEnded:            l.now(),
	}
	if err := l.sink.Save(rows, meta); err != nil {
		return 0, fmt.Errorf("%s: saving results: %w", cfg.Key(), err)
	}

	logrus.Debugf("%s converged after %d trials: %d bit errors in %d bits",
		cfg.Key(), len(rows), bitErrorsTotal, transmittedBitsTotal)
	return bitErrorsTotal, nil
}

// countBitErrors compares the first len(payload) recovered bits against payload.
func countBitErrors(recovered, payload []uint8) (int64, error) {
	if len(recovered) < len(payload) {
		return 0, fmt.Errorf("receiver returned %d bits, payload has %d", len(recovered), len(payload))
	}
	var n int64
	for i, b := range payload {
		if recovered[i] != b {
			n++
		}
	}
	return n, nil
}

func (l *TrialLoop) progress() logrus.FieldLogger {
	if l.Progress != nil {
		return l.Progress
	}
	return logrus.StandardLogger()
}

func (l *TrialLoop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
