package trace

import "math"

// TraceSummary aggregates statistics from a SweepTrace.
type TraceSummary struct {
	BatchesRun       int
	PointsRun        int
	PointsFailed     int
	TotalBitErrors   int64
	StoppedEarly     bool
	FirstErrorFreeDB float64 // lowest Eb/N0 with zero errors; NaN when none
}

// Summarize computes aggregate statistics from a SweepTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SweepTrace) *TraceSummary {
	summary := &TraceSummary{FirstErrorFreeDB: math.NaN()}
	if st == nil {
		return summary
	}

	summary.BatchesRun = len(st.Batches)
	for _, b := range st.Batches {
		if b.Decision == DecisionStop {
			summary.StoppedEarly = true
		}
		for _, p := range b.Points {
			summary.PointsRun++
			if p.Failed {
				summary.PointsFailed++
				continue
			}
			summary.TotalBitErrors += p.BitErrors
			if p.BitErrors == 0 && (math.IsNaN(summary.FirstErrorFreeDB) || p.EbN0dB < summary.FirstErrorFreeDB) {
				summary.FirstErrorFreeDB = p.EbN0dB
			}
		}
	}

	return summary
}
