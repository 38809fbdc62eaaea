// Package testutil provides shared assertion helpers and bit fixtures for
// the sim/ test packages. It must not import sim.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// Bits parses a string of '0' and '1' characters; any other rune is skipped,
// so "1010 0110" is accepted.
func Bits(s string) []uint8 {
	bits := make([]uint8, 0, len(s))
	for _, r := range s {
		switch r {
		case '0':
			bits = append(bits, 0)
		case '1':
			bits = append(bits, 1)
		}
	}
	return bits
}

// PatternBits returns n bits following a fixed, non-periodic-looking pattern.
func PatternBits(n int) []uint8 {
	bits := make([]uint8, n)
	x := uint32(0x2545f491)
	for i := range bits {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		bits[i] = uint8(x & 1)
	}
	return bits
}

// FlipBits returns a copy of bits with the given positions inverted.
func FlipBits(bits []uint8, positions ...int) []uint8 {
	out := make([]uint8, len(bits))
	copy(out, bits)
	for _, p := range positions {
		out[p] ^= 1
	}
	return out
}

// HammingDistance counts positions where a and b differ over the shorter length.
func HammingDistance(a, b []uint8) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	d := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			d++
		}
	}
	return d
}

// LLRs converts hard bits into channel LLRs of the given magnitude
// (positive for 0).
func LLRs(bits []uint8, magnitude float64) []float64 {
	llr := make([]float64, len(bits))
	for i, b := range bits {
		if b == 0 {
			llr[i] = magnitude
		} else {
			llr[i] = -magnitude
		}
	}
	return llr
}
