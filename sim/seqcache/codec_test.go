package seqcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmwave-lab/berperf/sim"
	"github.com/mmwave-lab/berperf/sim/internal/testutil"
)

func sampleRecord(nBits int) *sim.SequenceRecord {
	bits := testutil.PatternBits(nBits)
	waveform := make([]complex128, nBits/2)
	for i := range waveform {
		waveform[i] = complex(float64(i)*0.25-1, -float64(i)/3)
	}
	return &sim.SequenceRecord{PayloadBits: bits, Waveform: waveform, ScramblerSeed: 0x5d}
}

func TestCodec_PreservesRecord(t *testing.T) {
	// GIVEN a record whose bit count is not a multiple of eight
	rec := sampleRecord(21)

	// WHEN encoded and decoded
	data, err := EncodeRecord(rec)
	require.NoError(t, err)
	got, err := DecodeRecord(data)

	// THEN every field survives exactly
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	assert.Len(t, data, 4+1+1+4+3+4+16*len(rec.Waveform))
}

func TestEncodeRecord_RejectsInvalidFields(t *testing.T) {
	_, err := EncodeRecord(&sim.SequenceRecord{ScramblerSeed: 0x80})
	assert.Error(t, err)

	_, err = EncodeRecord(&sim.SequenceRecord{PayloadBits: []uint8{0, 2}})
	assert.Error(t, err)
}

func TestDecodeRecord_RejectsCorruptData(t *testing.T) {
	data, err := EncodeRecord(sampleRecord(16))
	require.NoError(t, err)

	tests := map[string][]byte{
		"empty":       nil,
		"bad magic":   append([]byte("XSEQ"), data[4:]...),
		"bad version": append(append([]byte{}, data[:4]...), append([]byte{9}, data[5:]...)...),
		"truncated":   data[:len(data)-3],
	}
	for name, input := range tests {
		_, err := DecodeRecord(input)
		assert.Error(t, err, name)
	}
}
