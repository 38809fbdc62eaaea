package sim

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ChainParams carries the per-configuration settings a Receiver needs.
type ChainParams struct {
	EbN0dB             float64
	ModulationRate     int
	CodeRate           float64
	DemappingAlgorithm string
	DecodingAlgorithm  string
	MaxIterations      int
	EarlyExit          bool
}

// ChainParamsFor combines a trial configuration with its resolved MCS parameters.
func ChainParamsFor(cfg TrialConfig, mcs MCSParams) ChainParams {
	return ChainParams{
		EbN0dB:             cfg.EbN0dB,
		ModulationRate:     mcs.ModulationRate,
		CodeRate:           mcs.CodeRate,
		DemappingAlgorithm: cfg.DemappingAlgorithm,
		DecodingAlgorithm:  cfg.DecodingAlgorithm,
		MaxIterations:      cfg.MaxDecoderIterations,
		EarlyExit:          cfg.EarlyExit,
	}
}

// ReceiveResult is the output of one Receiver.Process call.
type ReceiveResult struct {
	Bits              []uint8 // descrambled bits, padded length
	DecoderIterations float64 // mean iterations per codeword
}

// Receiver turns one transmit waveform into recovered payload bits.
// A Receiver belongs to exactly one worker and is never shared.
type Receiver interface {
	Process(waveform []complex128, scramblerSeed uint8, params ChainParams) (ReceiveResult, error)
}

// ReceiverFactory builds a worker-private Receiver for cfg. seed is derived
// from the campaign seed and cfg.Key(), so identical configurations see
// identical noise.
type ReceiverFactory func(cfg TrialConfig, seed int64) (Receiver, error)

// Channel adds noise at the requested Eb/N0.
type Channel interface {
	Apply(waveform []complex128, ebN0dB float64, modulationRate int, codeRate float64) (noisy []complex128, noiseVariance float64, err error)
}

// Demapper converts noisy symbols into soft bits (positive favours 0).
type Demapper interface {
	Demap(noisy []complex128, noiseVariance float64, modulationRate int, algorithm string) ([]float64, error)
}

// Decoder recovers information bits from soft bits and reports the
// iterations used per codeword.
type Decoder interface {
	Decode(soft []float64, codeRate float64, algorithm string, maxIterations int, earlyExit bool) (bits []uint8, iterations []int, err error)
}

// Descrambler undoes the transmit scrambler given its initial register.
type Descrambler interface {
	Descramble(bits []uint8, seed uint8) []uint8
}

// Chain composes the four receive stages into a Receiver.
type Chain struct {
	Channel     Channel
	Demapper    Demapper
	Decoder     Decoder
	Descrambler Descrambler
}

// Process runs channel, demapper, decoder and descrambler in order.
// Any stage error aborts the call; there is no retry.
func (c *Chain) Process(waveform []complex128, scramblerSeed uint8, p ChainParams) (ReceiveResult, error) {
	noisy, noiseVar, err := c.Channel.Apply(waveform, p.EbN0dB, p.ModulationRate, p.CodeRate)
	if err != nil {
		return ReceiveResult{}, fmt.Errorf("channel: %w", err)
	}
	soft, err := c.Demapper.Demap(noisy, noiseVar, p.ModulationRate, p.DemappingAlgorithm)
	if err != nil {
		return ReceiveResult{}, fmt.Errorf("demapper: %w", err)
	}
	decoded, iterations, err := c.Decoder.Decode(soft, p.CodeRate, p.DecodingAlgorithm, p.MaxIterations, p.EarlyExit)
	if err != nil {
		return ReceiveResult{}, fmt.Errorf("decoder: %w", err)
	}
	return ReceiveResult{
		Bits:              c.Descrambler.Descramble(decoded, scramblerSeed),
		DecoderIterations: meanIterations(iterations),
	}, nil
}

func meanIterations(iterations []int) float64 {
	if len(iterations) == 0 {
		return 0
	}
	xs := make([]float64, len(iterations))
	for i, it := range iterations {
		xs[i] = float64(it)
	}
	return stat.Mean(xs, nil)
}
