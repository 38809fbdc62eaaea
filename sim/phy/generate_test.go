package phy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmwave-lab/berperf/sim"
	"github.com/mmwave-lab/berperf/sim/internal/testutil"
)

type memoryWriter struct {
	records map[string]*sim.SequenceRecord
	failOn  string
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{records: make(map[string]*sim.SequenceRecord)}
}

func (w *memoryWriter) Write(mcs string, index int, rec *sim.SequenceRecord) error {
	key := fmt.Sprintf("%s/%d", mcs, index)
	if key == w.failOn {
		return fmt.Errorf("disk full")
	}
	w.records[key] = rec
	return nil
}

func mustLookup(t *testing.T, id string) sim.MCSParams {
	t.Helper()
	p, err := sim.DefaultMCSTable().Lookup(id)
	require.NoError(t, err)
	return p
}

func TestBuildRecord_LengthsFollowPadding(t *testing.T) {
	// GIVEN 1000 payload bits for MCS 12.4 (64QAM, rate 3/4, k = 504)
	payload := testutil.PatternBits(1000)
	mcs := mustLookup(t, "12.4")

	rec, err := BuildRecord(payload, 0x33, mcs)
	require.NoError(t, err)

	// THEN the payload is padded to 1008 bits, i.e. 2 codewords of 112 symbols
	assert.Equal(t, payload, rec.PayloadBits)
	assert.Equal(t, uint8(0x33), rec.ScramblerSeed)
	assert.Len(t, rec.Waveform, 2*CodewordLength/6)
}

func TestBuildRecord_RejectsRepetition(t *testing.T) {
	_, err := BuildRecord(testutil.PatternBits(10), 1, mustLookup(t, "1"))
	assert.Error(t, err)
}

func TestBuildRecord_NoiselessReceiveRecoversPayload(t *testing.T) {
	for _, id := range []string{"2", "7", "11", "12.4"} {
		// GIVEN a record built by the transmit chain
		mcs := mustLookup(t, id)
		payload := testutil.PatternBits(700)
		rec, err := BuildRecord(payload, 0x5a, mcs)
		require.NoError(t, err)

		// WHEN it is demapped, decoded and descrambled without noise
		soft, err := Demapper{}.Demap(rec.Waveform, 0.01, mcs.ModulationRate, DemapDecisionThreshold)
		require.NoError(t, err)
		decoded, _, err := Decoder{}.Decode(soft, mcs.CodeRate, DecodeHard, 0, true)
		require.NoError(t, err)
		bits := Scrambler{}.Descramble(decoded, rec.ScramblerSeed)

		// THEN the payload comes back followed by zero padding
		assert.Equal(t, payload, bits[:len(payload)], "MCS %s", id)
		for _, b := range bits[len(payload):] {
			assert.Equal(t, uint8(0), b)
		}
	}
}

func TestGenerator_SharedPayloadPerIndex(t *testing.T) {
	// GIVEN a generator for two MCS and three sequences
	w := newMemoryWriter()
	g := &Generator{Writer: w, PayloadLength: 400, Sequences: 3, Seed: 42}
	mcsList := []sim.MCSParams{mustLookup(t, "6"), mustLookup(t, "12.4")}

	// WHEN generated
	require.NoError(t, g.Generate(mcsList))

	// THEN every index carries the same payload across MCS and differs across indices
	require.Len(t, w.records, 6)
	for i := 0; i < 3; i++ {
		a, b := w.records[fmt.Sprintf("6/%d", i)], w.records[fmt.Sprintf("12.4/%d", i)]
		assert.Equal(t, a.PayloadBits, b.PayloadBits)
		assert.Len(t, a.PayloadBits, 400)
	}
	assert.NotEqual(t, w.records["6/0"].PayloadBits, w.records["6/1"].PayloadBits)
}

func TestGenerator_Deterministic(t *testing.T) {
	run := func(seed int64) map[string]*sim.SequenceRecord {
		w := newMemoryWriter()
		g := &Generator{Writer: w, PayloadLength: 200, Sequences: 2, Seed: seed}
		require.NoError(t, g.Generate([]sim.MCSParams{mustLookup(t, "8")}))
		return w.records
	}
	assert.Equal(t, run(9), run(9))
	assert.NotEqual(t, run(9)["8/0"].PayloadBits, run(10)["8/0"].PayloadBits)
}

func TestGenerator_Errors(t *testing.T) {
	mcsList := []sim.MCSParams{mustLookup(t, "2")}

	assert.Error(t, (&Generator{Writer: newMemoryWriter(), PayloadLength: 0, Sequences: 1}).Generate(mcsList))
	assert.Error(t, (&Generator{Writer: newMemoryWriter(), PayloadLength: 8, Sequences: 0}).Generate(mcsList))
	assert.Error(t, (&Generator{Writer: newMemoryWriter(), PayloadLength: 8, Sequences: 1}).Generate(nil))

	w := newMemoryWriter()
	w.failOn = "2/1"
	err := (&Generator{Writer: w, PayloadLength: 8, Sequences: 3}).Generate(mcsList)
	assert.ErrorContains(t, err, "disk full")
}
