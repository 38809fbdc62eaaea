package phy

import (
	"fmt"

	"github.com/mmwave-lab/berperf/sim"
)

// NewReceiver is a sim.ReceiverFactory building the reference receive chain.
// Algorithm names are checked up front so a typo fails before any trial runs.
func NewReceiver(cfg sim.TrialConfig, seed int64) (sim.Receiver, error) {
	if !ValidDemappingAlgorithms[cfg.DemappingAlgorithm] {
		return nil, fmt.Errorf("unknown demapping algorithm %q", cfg.DemappingAlgorithm)
	}
	if !ValidDecodingAlgorithms[cfg.DecodingAlgorithm] {
		return nil, fmt.Errorf("unknown decoding algorithm %q", cfg.DecodingAlgorithm)
	}
	return &sim.Chain{
		Channel:     NewAWGN(seed),
		Demapper:    Demapper{},
		Decoder:     Decoder{},
		Descrambler: Scrambler{},
	}, nil
}
