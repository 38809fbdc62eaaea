// Package phy provides reference implementations of the receive-chain
// collaborators (channel, demapper, decoder, descrambler) and the transmit
// side needed to generate sequence caches: an IEEE 802.11ad style scrambler,
// Gray-mapped BPSK/QPSK/16QAM/64QAM, an AWGN channel and a systematic
// LDPC-style block code with min-sum decoding.
package phy

import "math/rand"

// Scrambler is the 802.11ad x^7 + x^4 + 1 additive scrambler. Scrambling and
// descrambling are the same operation for a given initial register.
type Scrambler struct{}

// Scramble XORs bits with the LFSR sequence started from seed (low 7 bits).
// The input is not modified.
func (Scrambler) Scramble(bits []uint8, seed uint8) []uint8 {
	out := make([]uint8, len(bits))
	reg := seed & 0x7f
	for i, b := range bits {
		fb := ((reg >> 3) ^ (reg >> 6)) & 1
		reg = ((reg << 1) | fb) & 0x7f
		out[i] = b ^ fb
	}
	return out
}

// Descramble implements sim.Descrambler.
func (s Scrambler) Descramble(bits []uint8, seed uint8) []uint8 {
	return s.Scramble(bits, seed)
}

// RandomScramblerSeed draws a non-zero 7-bit register value.
func RandomScramblerSeed(rng *rand.Rand) uint8 {
	return uint8(rng.Intn(0x7f) + 1)
}

// RandomBits draws n uniform bits.
func RandomBits(rng *rand.Rand, n int) []uint8 {
	bits := make([]uint8, n)
	for i := range bits {
		bits[i] = uint8(rng.Intn(2))
	}
	return bits
}
