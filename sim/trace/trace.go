package trace

// Decision is the scheduler's verdict at a batch boundary.
type Decision string

const (
	// DecisionContinue schedules the next batch.
	DecisionContinue Decision = "continue"
	// DecisionStop ends the sweep: every worker in the batch succeeded with zero bit errors.
	DecisionStop Decision = "stop"
	// DecisionExhausted marks the last batch of the list.
	DecisionExhausted Decision = "exhausted"
)

// SweepTrace collects batch records for one MCS sweep.
type SweepTrace struct {
	MCS     string
	Batches []BatchRecord
}

// NewSweepTrace creates a SweepTrace ready for recording.
func NewSweepTrace(mcs string) *SweepTrace {
	return &SweepTrace{
		MCS:     mcs,
		Batches: make([]BatchRecord, 0),
	}
}

// RecordBatch appends a batch record.
func (st *SweepTrace) RecordBatch(record BatchRecord) {
	st.Batches = append(st.Batches, record)
}

// Points returns every point record in schedule order.
func (st *SweepTrace) Points() []PointRecord {
	var points []PointRecord
	for _, b := range st.Batches {
		points = append(points, b.Points...)
	}
	return points
}
