package phy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmwave-lab/berperf/sim/internal/testutil"
)

var modulationRates = []int{1, 2, 4, 6}

// allLabels enumerates every rm-bit pattern, MSB first.
func allLabels(rm int) []uint8 {
	var bits []uint8
	for v := 0; v < 1<<rm; v++ {
		for j := rm - 1; j >= 0; j-- {
			bits = append(bits, uint8(v>>j)&1)
		}
	}
	return bits
}

func TestMap_UnitAverageEnergy(t *testing.T) {
	for _, rm := range modulationRates {
		// GIVEN every constellation point once
		symbols, err := Map(allLabels(rm), rm)
		require.NoError(t, err)

		// THEN the average symbol energy is 1
		var e float64
		for _, s := range symbols {
			e += real(s)*real(s) + imag(s)*imag(s)
		}
		testutil.AssertFloat64Equal(t, "energy", 1, e/float64(len(symbols)), 1e-12)
	}
}

func TestMap_BPSKPolarity(t *testing.T) {
	symbols, err := Map(testutil.Bits("01"), 1)
	require.NoError(t, err)
	assert.Equal(t, []complex128{-1, 1}, symbols)
}

func TestConstellation_AdjacentLevelsDifferInOneBit(t *testing.T) {
	for _, rm := range modulationRates {
		c, err := constellationFor(rm)
		require.NoError(t, err)
		for i := 1; i < len(c.labels); i++ {
			diff := c.labels[i] ^ c.labels[i-1]
			assert.Equal(t, 0, diff&(diff-1), "rate %d levels %d/%d", rm, i-1, i)
		}
	}
}

func TestMap_RejectsBadInput(t *testing.T) {
	_, err := Map(testutil.Bits("101"), 3)
	assert.Error(t, err)

	_, err = Map(testutil.Bits("101"), 2)
	assert.Error(t, err)
}

func TestDemap_NoiselessRoundTrip(t *testing.T) {
	bits := testutil.PatternBits(672)
	for _, rm := range modulationRates {
		for _, algorithm := range []string{DemapDecisionThreshold, DemapMaxLog} {
			// GIVEN noiseless symbols
			symbols, err := Map(bits, rm)
			require.NoError(t, err)

			// WHEN demapped
			soft, err := Demapper{}.Demap(symbols, 0.1, rm, algorithm)
			require.NoError(t, err)

			// THEN every LLR has the sign of the transmitted bit
			require.Len(t, soft, len(bits))
			hard := make([]uint8, len(soft))
			harden(soft, hard)
			assert.Equal(t, bits, hard, "rate %d, %s", rm, algorithm)
		}
	}
}

func TestDemap_DecisionThresholdIsUnitMagnitude(t *testing.T) {
	symbols := []complex128{complex(0.9, -3.0), complex(-0.2, 0.1)}
	soft, err := Demapper{}.Demap(symbols, 1, 4, DemapDecisionThreshold)
	require.NoError(t, err)
	for _, x := range soft {
		assert.Equal(t, 1.0, math.Abs(x))
	}
}

func TestDemap_MaxLogBPSK(t *testing.T) {
	// GIVEN BPSK at y = -0.5 with N0 = 1 (per-axis variance 0.5)
	soft, err := Demapper{}.Demap([]complex128{complex(-0.5, 0)}, 1, 1, DemapMaxLog)
	require.NoError(t, err)

	// THEN LLR = ((y-1)^2 - (y+1)^2) / (2 * 0.5) = -4y = 2
	testutil.AssertFloat64Equal(t, "llr", 2, soft[0], 1e-12)
}

func TestDemap_Errors(t *testing.T) {
	_, err := Demapper{}.Demap([]complex128{1}, 1, 1, "sphere")
	assert.Error(t, err)

	_, err = Demapper{}.Demap([]complex128{1}, 0, 1, DemapMaxLog)
	assert.Error(t, err)

	_, err = Demapper{}.Demap([]complex128{1}, 1, 5, DemapMaxLog)
	assert.Error(t, err)
}
