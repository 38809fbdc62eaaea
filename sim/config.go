package sim

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Thresholds groups the convergence policy of one trial loop.
type Thresholds struct {
	MinBitErrors       int64 `yaml:"min_bit_errors"`       // error-count trip point
	MaxTransmittedBits int64 `yaml:"max_transmitted_bits"` // volume trip point
	MinSentPackets     int64 `yaml:"min_sent_packets"`     // sample-size floor, gates both trip points
}

// DefaultThresholds mirrors the usual Monte Carlo BER defaults: 100 errors or
// 1e9 bits, with at least 3 packets to smooth the high-BER part of the curve.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinBitErrors:       100,
		MaxTransmittedBits: 1_000_000_000,
		MinSentPackets:     3,
	}
}

// Converged reports whether the counters satisfy the stopping rule:
// (errors >= MinBitErrors OR transmitted >= MaxTransmittedBits) AND sent >= MinSentPackets.
func (t Thresholds) Converged(bitErrors, transmittedBits, sentPackets int64) bool {
	primary := bitErrors >= t.MinBitErrors || transmittedBits >= t.MaxTransmittedBits
	return primary && sentPackets >= t.MinSentPackets
}

// Validate rejects negative thresholds.
func (t Thresholds) Validate() error {
	if t.MinBitErrors < 0 {
		return fmt.Errorf("min_bit_errors must be non-negative, got %d", t.MinBitErrors)
	}
	if t.MaxTransmittedBits < 0 {
		return fmt.Errorf("max_transmitted_bits must be non-negative, got %d", t.MaxTransmittedBits)
	}
	if t.MinSentPackets < 0 {
		return fmt.Errorf("min_sent_packets must be non-negative, got %d", t.MinSentPackets)
	}
	return nil
}

// TrialConfig is the immutable input of one TrialLoop run.
type TrialConfig struct {
	MCS                  string     // MCS identifier, e.g. "12.1"
	EbN0dB               float64    // channel Eb/N0 in dB
	DemappingAlgorithm   string     // e.g. "decision threshold"
	DecodingAlgorithm    string     // e.g. "MSA"
	MaxDecoderIterations int        // decoder iteration cap
	EarlyExit            bool       // decoder may stop once its parity check passes
	Thresholds           Thresholds // convergence policy
}

// Validate checks the fields TrialLoop relies on. MCS resolution happens
// against the MCSTable at run time.
func (c TrialConfig) Validate() error {
	if c.MCS == "" {
		return fmt.Errorf("MCS must be set")
	}
	if c.MaxDecoderIterations < 0 {
		return fmt.Errorf("max decoder iterations must be non-negative, got %d", c.MaxDecoderIterations)
	}
	return c.Thresholds.Validate()
}

// Key identifies the configuration for output naming and seed derivation.
// Identical configurations produce identical keys.
func (c TrialConfig) Key() string {
	return fmt.Sprintf("%s_%sdb_%s_%s_%d_%t",
		c.MCS,
		FormatEbN0(c.EbN0dB),
		strings.ReplaceAll(c.DemappingAlgorithm, " ", "-"),
		strings.ReplaceAll(c.DecodingAlgorithm, " ", "-"),
		c.MaxDecoderIterations,
		c.EarlyExit,
	)
}

// FormatEbN0 renders an Eb/N0 value with at least one decimal, so 3 prints as "3.0".
func FormatEbN0(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// TrialMetricRow is the outcome of one consumed SequenceRecord.
type TrialMetricRow struct {
	TrialIndex        int
	BitErrors         int64
	PacketErrors      int64 // 0 or 1
	TransmittedBits   int64
	DecoderIterations float64 // mean over the packet's codewords
}

// RunMetadata is written once per configuration after its loop terminates.
type RunMetadata struct {
	RunID                string     `yaml:"run_id,omitempty"`
	MCS                  string     `yaml:"mcs"`
	EbN0dB               float64    `yaml:"eb_n0_db"`
	DemappingAlgorithm   string     `yaml:"demapping_algorithm"`
	DecodingAlgorithm    string     `yaml:"decoding_algorithm"`
	MaxDecoderIterations int        `yaml:"max_decoder_iterations"`
	EarlyExit            bool       `yaml:"allow_early_exit"`
	Thresholds           Thresholds `yaml:"thresholds"`
	Seed                 int64      `yaml:"seed"`
	PayloadLength        int        `yaml:"payload_length"`
	ModulationRate       int        `yaml:"modulation_rate"`
	CodeRate             float64    `yaml:"code_rate"`
	TrialsRun            int        `yaml:"trials_run"`
	BitErrors            int64      `yaml:"bit_errors"`
	TransmittedBits      int64      `yaml:"transmitted_bits"`
	TimeStarted          time.Time  `yaml:"time_started"`
	TimeEnded            time.Time  `yaml:"time_ended"`
}

// Config reconstructs the TrialConfig the metadata was written for.
func (m RunMetadata) Config() TrialConfig {
	return TrialConfig{
		MCS:                  m.MCS,
		EbN0dB:               m.EbN0dB,
		DemappingAlgorithm:   m.DemappingAlgorithm,
		DecodingAlgorithm:    m.DecodingAlgorithm,
		MaxDecoderIterations: m.MaxDecoderIterations,
		EarlyExit:            m.EarlyExit,
		Thresholds:           m.Thresholds,
	}
}
