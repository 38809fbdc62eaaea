package phy

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mmwave-lab/berperf/sim"
)

// PaddedLength rounds n up to a whole number of k-bit blocks.
func PaddedLength(n, k int) int {
	if k <= 0 {
		return n
	}
	return (n + k - 1) / k * k
}

// BuildRecord runs the transmit chain for one payload: zero padding to whole
// codewords, scrambling, encoding and mapping.
func BuildRecord(payload []uint8, scramblerSeed uint8, mcs sim.MCSParams) (*sim.SequenceRecord, error) {
	if mcs.Repetition > 1 {
		return nil, fmt.Errorf("MCS %s uses repetition %d, which the transmit chain does not model", mcs.ID, mcs.Repetition)
	}
	code, err := CodeFor(mcs.CodeRate)
	if err != nil {
		return nil, fmt.Errorf("MCS %s: %w", mcs.ID, err)
	}

	padded := make([]uint8, PaddedLength(len(payload), code.K))
	copy(padded, payload)
	scrambled := Scrambler{}.Scramble(padded, scramblerSeed)
	coded, err := code.Encode(scrambled)
	if err != nil {
		return nil, fmt.Errorf("MCS %s: %w", mcs.ID, err)
	}
	waveform, err := Map(coded, mcs.ModulationRate)
	if err != nil {
		return nil, fmt.Errorf("MCS %s: %w", mcs.ID, err)
	}

	bits := make([]uint8, len(payload))
	copy(bits, payload)
	return &sim.SequenceRecord{
		PayloadBits:   bits,
		Waveform:      waveform,
		ScramblerSeed: scramblerSeed,
	}, nil
}

// RecordWriter is the write side of a sequence store.
type RecordWriter interface {
	Write(mcs string, index int, rec *sim.SequenceRecord) error
}

// Generator fills a sequence store. Every MCS at a given index carries the
// same payload; scrambler seeds are drawn per record.
type Generator struct {
	Writer        RecordWriter
	PayloadLength int
	Sequences     int
	Seed          int64
}

// Generate writes Sequences records for every MCS in mcsList.
// Output is fully determined by Seed, PayloadLength and the order of mcsList.
func (g *Generator) Generate(mcsList []sim.MCSParams) error {
	if g.PayloadLength <= 0 {
		return fmt.Errorf("payload length must be positive, got %d", g.PayloadLength)
	}
	if g.Sequences <= 0 {
		return fmt.Errorf("sequence count must be positive, got %d", g.Sequences)
	}
	if len(mcsList) == 0 {
		return fmt.Errorf("no MCS to generate")
	}

	rng := sim.NewPartitionedRNG(g.Seed)
	payloadRNG := rng.ForSubsystem(sim.SubsystemPayload)
	scramblerRNG := rng.ForSubsystem(sim.SubsystemScrambler)

	for index := 0; index < g.Sequences; index++ {
		payload := RandomBits(payloadRNG, g.PayloadLength)
		for _, mcs := range mcsList {
			rec, err := BuildRecord(payload, RandomScramblerSeed(scramblerRNG), mcs)
			if err != nil {
				return fmt.Errorf("sequence %d: %w", index, err)
			}
			if err := g.Writer.Write(mcs.ID, index, rec); err != nil {
				return fmt.Errorf("sequence %d: %w", index, err)
			}
		}
		logrus.WithField("sequence", index).Debugf("generated %d records", len(mcsList))
	}
	logrus.Infof("Generated %d sequences of %d bits for %d MCS", g.Sequences, g.PayloadLength, len(mcsList))
	return nil
}
