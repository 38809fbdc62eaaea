// Package trace records the batch-level decisions of an Eb/N0 sweep.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// PointRecord captures the outcome of one (MCS, Eb/N0) worker.
type PointRecord struct {
	EbN0dB    float64
	BitErrors int64
	Failed    bool
	Error     string // failure message; empty when Failed is false
}

// BatchRecord captures one batch and the scheduler's decision after it.
type BatchRecord struct {
	Index    int
	Points   []PointRecord
	Decision Decision
}
