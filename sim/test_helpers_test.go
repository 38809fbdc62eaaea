package sim

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memoryStore serves records from a map keyed by (MCS, index).
type memoryStore struct {
	mu      sync.Mutex
	records map[string]*SequenceRecord
	reads   []int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]*SequenceRecord)}
}

func storeKey(mcs string, index int) string {
	return fmt.Sprintf("%s/%d", NormalizeMCS(mcs), index)
}

// fill stores n records of payloadLen zero bits for mcs.
func (s *memoryStore) fill(mcs string, n, payloadLen int) *memoryStore {
	for i := 0; i < n; i++ {
		s.records[storeKey(mcs, i)] = &SequenceRecord{
			PayloadBits:   make([]uint8, payloadLen),
			Waveform:      make([]complex128, payloadLen),
			ScramblerSeed: uint8(i%127 + 1),
		}
	}
	return s
}

func (s *memoryStore) Read(mcs string, index int) (*SequenceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads = append(s.reads, index)
	rec, ok := s.records[storeKey(mcs, index)]
	if !ok {
		return nil, &MissingSequenceError{MCS: mcs, Index: index}
	}
	return rec, nil
}

// flipReceiver echoes a zero payload with the first flips bits inverted.
type flipReceiver struct {
	flips      int
	iterations float64
	calls      int
}

func (r *flipReceiver) Process(waveform []complex128, _ uint8, _ ChainParams) (ReceiveResult, error) {
	r.calls++
	bits := make([]uint8, len(waveform))
	for i := 0; i < r.flips && i < len(bits); i++ {
		bits[i] = 1
	}
	return ReceiveResult{Bits: bits, DecoderIterations: r.iterations}, nil
}

// failingReceiver errors on every call.
type failingReceiver struct{}

func (failingReceiver) Process([]complex128, uint8, ChainParams) (ReceiveResult, error) {
	return ReceiveResult{}, fmt.Errorf("decoder diverged")
}

// memorySink captures saved results.
type memorySink struct {
	mu    sync.Mutex
	saved map[string][]TrialMetricRow
	metas map[string]RunMetadata
	err   error
}

func newMemorySink() *memorySink {
	return &memorySink{saved: make(map[string][]TrialMetricRow), metas: make(map[string]RunMetadata)}
}

func (s *memorySink) Save(rows []TrialMetricRow, meta RunMetadata) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := meta.Config().Key()
	s.saved[key] = rows
	s.metas[key] = meta
	return nil
}

func testConfig(mcs string, ebN0 float64, th Thresholds) TrialConfig {
	return TrialConfig{
		MCS:                  mcs,
		EbN0dB:               ebN0,
		DemappingAlgorithm:   "decision threshold",
		DecodingAlgorithm:    "MSA",
		MaxDecoderIterations: 10,
		EarlyExit:            true,
		Thresholds:           th,
	}
}

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return t0 }
}

// scriptedRunner returns canned bit errors (or errors) per Eb/N0 and records
// every call.
type scriptedRunner struct {
	mu       sync.Mutex
	errors   map[float64]int64
	failures map[float64]error
	calls    []float64
	active   int
	peak     int
	delay    time.Duration
}

func (r *scriptedRunner) run(_ context.Context, cfg TrialConfig) (int64, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cfg.EbN0dB)
	r.active++
	if r.active > r.peak {
		r.peak = r.active
	}
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.active--
	if err := r.failures[cfg.EbN0dB]; err != nil {
		return 7, err
	}
	return r.errors[cfg.EbN0dB], nil
}
