package resultlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRunDir_Sequential(t *testing.T) {
	// GIVEN an empty parent
	parent := filepath.Join(t.TempDir(), "Log")

	// WHEN run directories are allocated twice
	first, err := NextRunDir(parent)
	require.NoError(t, err)
	second, err := NextRunDir(parent)
	require.NoError(t, err)

	// THEN they are 0000 and 0001
	assert.Equal(t, filepath.Join(parent, "0000"), first)
	assert.Equal(t, filepath.Join(parent, "0001"), second)
	assert.DirExists(t, second)
}

func TestNextRunDir_SkipsGapsAndNoise(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(parent, "0007"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(parent, "notes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "0042"), nil, 0644))

	dir, err := NextRunDir(parent)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "0008"), dir)
}
