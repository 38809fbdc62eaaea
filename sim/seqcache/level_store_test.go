package seqcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmwave-lab/berperf/sim"
)

func TestLevelStore_WriteReopenRead(t *testing.T) {
	// GIVEN records written through a writable store
	path := filepath.Join(t.TempDir(), "sequences")
	w, err := OpenLevelStore(path, false)
	require.NoError(t, err)
	rec := sampleRecord(40)
	require.NoError(t, w.Write("12.1", 0, rec))
	require.NoError(t, w.Write("12.1", 1, sampleRecord(16)))
	require.NoError(t, w.Close())

	// WHEN reopened read-only
	r, err := OpenLevelStore(path, true)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	// THEN records are readable, absent ones are missing and writes are refused
	got, err := r.Read("12.1", 0)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = r.Read("12.1", 2)
	assert.ErrorIs(t, err, sim.ErrMissingSequence)
	_, err = r.Read("6", 0)
	assert.ErrorIs(t, err, sim.ErrMissingSequence)

	assert.Error(t, r.Write("12.1", 5, rec))
}

func TestLevelStore_ReadOnlyRequiresExistingDatabase(t *testing.T) {
	_, err := OpenLevelStore(filepath.Join(t.TempDir(), "absent"), true)
	assert.Error(t, err)
}
