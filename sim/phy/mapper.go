package phy

import (
	"fmt"
	"math"
)

// constellation describes one Gray-labelled PAM axis and how many axes a
// symbol uses.
type constellation struct {
	axes        int       // 1 for BPSK, 2 otherwise
	bitsPerAxis int       // Gray label width per axis
	levels      []float64 // integer amplitudes -(L-1) .. L-1, by binary index
	labels      []int     // Gray label of each level
	scale       float64   // multiplies integer amplitudes to unit symbol energy
}

var constellations = map[int]*constellation{
	1: newConstellation(1, 1),
	2: newConstellation(2, 1),
	4: newConstellation(2, 2),
	6: newConstellation(2, 3),
}

func newConstellation(axes, bitsPerAxis int) *constellation {
	l := 1 << bitsPerAxis
	c := &constellation{
		axes:        axes,
		bitsPerAxis: bitsPerAxis,
		levels:      make([]float64, l),
		labels:      make([]int, l),
	}
	for idx := 0; idx < l; idx++ {
		c.levels[idx] = float64(2*idx - (l - 1))
		c.labels[idx] = idx ^ (idx >> 1)
	}
	axisEnergy := float64(l*l-1) / 3
	c.scale = 1 / math.Sqrt(float64(axes)*axisEnergy)
	return c
}

func constellationFor(modulationRate int) (*constellation, error) {
	c, ok := constellations[modulationRate]
	if !ok {
		return nil, fmt.Errorf("unsupported modulation rate %d", modulationRate)
	}
	return c, nil
}

func grayToBinary(g int) int {
	b := g
	for s := g >> 1; s != 0; s >>= 1 {
		b ^= s
	}
	return b
}

// Map converts coded bits into unit-energy symbols, modulationRate bits per
// symbol. len(bits) must be a multiple of modulationRate.
func Map(bits []uint8, modulationRate int) ([]complex128, error) {
	c, err := constellationFor(modulationRate)
	if err != nil {
		return nil, err
	}
	if len(bits)%modulationRate != 0 {
		return nil, fmt.Errorf("%d bits do not fill %d-bit symbols", len(bits), modulationRate)
	}
	symbols := make([]complex128, len(bits)/modulationRate)
	for i := range symbols {
		chunk := bits[i*modulationRate : (i+1)*modulationRate]
		re := c.level(chunk[:c.bitsPerAxis])
		im := 0.0
		if c.axes == 2 {
			im = c.level(chunk[c.bitsPerAxis:])
		}
		symbols[i] = complex(re*c.scale, im*c.scale)
	}
	return symbols, nil
}

// level returns the integer amplitude for a Gray label given MSB first.
func (c *constellation) level(bits []uint8) float64 {
	g := 0
	for _, b := range bits {
		g = g<<1 | int(b&1)
	}
	return c.levels[grayToBinary(g)]
}
