package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSweepTrace_RecordBatch_AppendsInOrder(t *testing.T) {
	// GIVEN an empty trace
	st := NewSweepTrace("12.1")
	assert.Empty(t, st.Batches)

	// WHEN two batches are recorded
	st.RecordBatch(BatchRecord{Index: 0, Decision: DecisionContinue, Points: []PointRecord{{EbN0dB: 1, BitErrors: 40}}})
	st.RecordBatch(BatchRecord{Index: 1, Decision: DecisionStop, Points: []PointRecord{{EbN0dB: 2}, {EbN0dB: 3}}})

	// THEN they are kept in order
	assert.Equal(t, "12.1", st.MCS)
	assert.Len(t, st.Batches, 2)
	assert.Equal(t, DecisionStop, st.Batches[1].Decision)
}

func TestSweepTrace_Points_FlattensBatches(t *testing.T) {
	st := NewSweepTrace("6")
	st.RecordBatch(BatchRecord{Index: 0, Points: []PointRecord{{EbN0dB: 0}, {EbN0dB: 0.5}}})
	st.RecordBatch(BatchRecord{Index: 1, Points: []PointRecord{{EbN0dB: 1}}})

	var got []float64
	for _, p := range st.Points() {
		got = append(got, p.EbN0dB)
	}
	assert.Equal(t, []float64{0, 0.5, 1}, got)
}
