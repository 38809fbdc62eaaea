package phy

import "fmt"

// Decoding algorithm names.
const (
	DecodeMinSum           = "MSA"
	DecodeNormalizedMinSum = "NMSA"
	DecodeHard             = "hard"
)

// ValidDecodingAlgorithms is the set of recognized decoding algorithm names.
var ValidDecodingAlgorithms = map[string]bool{DecodeMinSum: true, DecodeNormalizedMinSum: true, DecodeHard: true}

// normalizedMinSumAlpha is the check-message scaling used by NMSA.
const normalizedMinSumAlpha = 0.75

// Decoder implements sim.Decoder over the codes returned by CodeFor.
type Decoder struct{}

// Decode splits soft into CodewordLength blocks, decodes each and returns the
// concatenated information bits with the iterations used per block.
func (Decoder) Decode(soft []float64, codeRate float64, algorithm string, maxIterations int, earlyExit bool) ([]uint8, []int, error) {
	code, err := CodeFor(codeRate)
	if err != nil {
		return nil, nil, err
	}
	if len(soft)%CodewordLength != 0 {
		return nil, nil, fmt.Errorf("%d soft bits do not fill %d-bit codewords", len(soft), CodewordLength)
	}
	if maxIterations < 0 {
		return nil, nil, fmt.Errorf("max iterations must be non-negative, got %d", maxIterations)
	}

	var alpha float64
	switch algorithm {
	case DecodeMinSum:
		alpha = 1
	case DecodeNormalizedMinSum:
		alpha = normalizedMinSumAlpha
	case DecodeHard:
	default:
		return nil, nil, fmt.Errorf("unknown decoding algorithm %q", algorithm)
	}

	blocks := len(soft) / CodewordLength
	info := make([]uint8, 0, blocks*code.K)
	iterations := make([]int, blocks)
	hard := make([]uint8, CodewordLength)
	for b := 0; b < blocks; b++ {
		llr := soft[b*CodewordLength : (b+1)*CodewordLength]
		if algorithm == DecodeHard {
			harden(llr, hard)
			info = append(info, hard[:code.K]...)
			continue
		}
		word, n := code.minSum(llr, maxIterations, earlyExit, alpha)
		info = append(info, word[:code.K]...)
		iterations[b] = n
	}
	return info, iterations, nil
}
