package phy

import (
	"fmt"
	"math"
	"math/rand"
)

// AWGN adds complex white Gaussian noise. Symbols are assumed to have unit
// energy, so Es/N0 = Eb/N0 * modulationRate * codeRate.
//
// Thread-safety: NOT thread-safe; each worker owns its AWGN.
type AWGN struct {
	rng *rand.Rand
}

// NewAWGN creates a channel whose noise stream is fully determined by seed.
func NewAWGN(seed int64) *AWGN {
	return &AWGN{rng: rand.New(rand.NewSource(seed))}
}

// Apply implements sim.Channel. It returns a new slice and the noise
// variance N0; the input waveform is not modified.
func (c *AWGN) Apply(waveform []complex128, ebN0dB float64, modulationRate int, codeRate float64) ([]complex128, float64, error) {
	if modulationRate <= 0 {
		return nil, 0, fmt.Errorf("modulation rate must be positive, got %d", modulationRate)
	}
	if codeRate <= 0 || codeRate > 1 {
		return nil, 0, fmt.Errorf("code rate must be in (0, 1], got %v", codeRate)
	}
	esN0 := math.Pow(10, ebN0dB/10) * float64(modulationRate) * codeRate
	n0 := 1 / esN0
	sigma := math.Sqrt(n0 / 2)

	noisy := make([]complex128, len(waveform))
	for i, s := range waveform {
		noisy[i] = s + complex(sigma*c.rng.NormFloat64(), sigma*c.rng.NormFloat64())
	}
	return noisy, n0, nil
}
