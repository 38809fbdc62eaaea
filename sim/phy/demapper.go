package phy

import (
	"fmt"
	"math"
)

// Demapping algorithm names.
const (
	DemapDecisionThreshold = "decision threshold"
	DemapMaxLog            = "max-log"
)

// ValidDemappingAlgorithms is the set of recognized demapping algorithm names.
var ValidDemappingAlgorithms = map[string]bool{DemapDecisionThreshold: true, DemapMaxLog: true}

// hardLLR is the magnitude assigned to hard decisions.
const hardLLR = 1.0

// Demapper implements sim.Demapper for the Gray constellations of Map.
// Soft bits are log-likelihood ratios log(P(b=0)/P(b=1)).
type Demapper struct{}

// Demap converts noisy symbols into modulationRate soft bits each.
func (Demapper) Demap(noisy []complex128, noiseVariance float64, modulationRate int, algorithm string) ([]float64, error) {
	c, err := constellationFor(modulationRate)
	if err != nil {
		return nil, err
	}
	var axis func(y float64, out []float64)
	switch algorithm {
	case DemapDecisionThreshold:
		axis = c.hardAxis
	case DemapMaxLog:
		if noiseVariance <= 0 {
			return nil, fmt.Errorf("max-log demapping needs positive noise variance, got %v", noiseVariance)
		}
		// per-axis variance N0/2, expressed in integer amplitude units
		sigma2 := noiseVariance / 2 / (c.scale * c.scale)
		axis = func(y float64, out []float64) { c.maxLogAxis(y, sigma2, out) }
	default:
		return nil, fmt.Errorf("unknown demapping algorithm %q", algorithm)
	}

	soft := make([]float64, len(noisy)*modulationRate)
	for i, s := range noisy {
		out := soft[i*modulationRate : (i+1)*modulationRate]
		axis(real(s)/c.scale, out[:c.bitsPerAxis])
		if c.axes == 2 {
			axis(imag(s)/c.scale, out[c.bitsPerAxis:])
		}
	}
	return soft, nil
}

// hardAxis slices y to the nearest level and emits ±hardLLR per label bit.
func (c *constellation) hardAxis(y float64, out []float64) {
	l := len(c.levels)
	idx := int(math.Round((y + float64(l-1)) / 2))
	if idx < 0 {
		idx = 0
	}
	if idx > l-1 {
		idx = l - 1
	}
	label := c.labels[idx]
	for j := range out {
		if (label>>(c.bitsPerAxis-1-j))&1 == 0 {
			out[j] = hardLLR
		} else {
			out[j] = -hardLLR
		}
	}
}

// maxLogAxis emits (min d1 - min d0) / (2 sigma2) per label bit.
func (c *constellation) maxLogAxis(y, sigma2 float64, out []float64) {
	for j := range out {
		d0, d1 := math.Inf(1), math.Inf(1)
		shift := c.bitsPerAxis - 1 - j
		for idx, a := range c.levels {
			d := (y - a) * (y - a)
			if (c.labels[idx]>>shift)&1 == 0 {
				d0 = math.Min(d0, d)
			} else {
				d1 = math.Min(d1, d)
			}
		}
		out[j] = (d1 - d0) / (2 * sigma2)
	}
}
