package resultlog

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary aggregates one result set into BER/PER estimates.
type Summary struct {
	Trials          int
	BitErrors       int64
	PacketErrors    int64
	TransmittedBits int64
	BER             float64
	BERLow, BERHigh float64 // 95% Wilson score interval
	PER             float64
	MeanIterations  float64
}

// Summarize computes BER, PER and a 95% Wilson interval for the BER.
// An empty result set yields a zero Summary.
func (rs *ResultSet) Summarize() Summary {
	var s Summary
	s.Trials = len(rs.Rows)
	if s.Trials == 0 {
		return s
	}
	iterations := make([]float64, 0, len(rs.Rows))
	for _, r := range rs.Rows {
		s.BitErrors += r.BitErrors
		s.PacketErrors += r.PacketErrors
		s.TransmittedBits += r.TransmittedBits
		iterations = append(iterations, r.DecoderIterations)
	}
	s.MeanIterations = stat.Mean(iterations, nil)
	s.PER = float64(s.PacketErrors) / float64(s.Trials)
	if s.TransmittedBits > 0 {
		s.BER = float64(s.BitErrors) / float64(s.TransmittedBits)
		s.BERLow, s.BERHigh = wilsonInterval(s.BitErrors, s.TransmittedBits, 0.95)
	}
	return s
}

// wilsonInterval returns the Wilson score interval for k successes in n trials.
func wilsonInterval(k, n int64, confidence float64) (lo, hi float64) {
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	nf := float64(n)
	p := float64(k) / nf
	denom := 1 + z*z/nf
	center := (p + z*z/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z*z/(4*nf*nf)) / denom
	return math.Max(0, center-half), math.Min(1, center+half)
}
