package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMCSTable_Lookup(t *testing.T) {
	table := DefaultMCSTable()

	p, err := table.Lookup("12.1")
	require.NoError(t, err)
	assert.Equal(t, MCSParams{ID: "12.1", ModulationRate: 4, CodeRate: 0.8125, Repetition: 1}, p)

	for _, alias := range []string{"6.0", "6.00", " 6 "} {
		p, err = table.Lookup(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, "6", p.ID, alias)
	}
	for alias, want := range map[string]string{"12.40": "12.4", "12.10": "12.1", "9.10": "9.1"} {
		p, err = table.Lookup(alias)
		require.NoError(t, err, alias)
		assert.Equal(t, want, p.ID, alias)
	}

	_, err = table.Lookup("13")
	assert.ErrorIs(t, err, ErrUnknownMCS)
}

func TestNormalizeMCS(t *testing.T) {
	assert.Equal(t, "12.4", NormalizeMCS("12.40"))
	assert.Equal(t, "12", NormalizeMCS("12.0"))
	assert.Equal(t, "12.1", NormalizeMCS(" 12.1 "))
	assert.Equal(t, "custom", NormalizeMCS(" custom "))
	assert.Equal(t, "NaN", NormalizeMCS("NaN"))
}

func TestMCSTable_IDsNumericOrder(t *testing.T) {
	ids := DefaultMCSTable().IDs()
	assert.Equal(t, "1", ids[0])
	assert.Equal(t, "12.6", ids[len(ids)-1])
	assert.Less(t, indexOf(ids, "9.1"), indexOf(ids, "10"))
}

func TestMCSTable_SimulatableExcludesRepetitionAndRateSevenEighths(t *testing.T) {
	ids := DefaultMCSTable().Simulatable()
	assert.NotContains(t, ids, "1")
	assert.NotContains(t, ids, "9.1")
	assert.NotContains(t, ids, "12.6")
	assert.Contains(t, ids, "2")
	assert.Contains(t, ids, "12.5")
	assert.Len(t, ids, 15)
}

func TestReadMCSTable(t *testing.T) {
	// GIVEN a CSV with columns in a different order and float-formatted ids
	csv := "Code_rate,MCS,Modulation_rate,Repetition\n0.5,2.0,1,1\n0.75,12,4.0,1\n"

	table, err := ReadMCSTable(strings.NewReader(csv))
	require.NoError(t, err)

	p, err := table.Lookup("12")
	require.NoError(t, err)
	assert.Equal(t, MCSParams{ID: "12", ModulationRate: 4, CodeRate: 0.75, Repetition: 1}, p)
	assert.Equal(t, []string{"2", "12"}, table.IDs())
}

func TestReadMCSTable_RepetitionDefaultsToOne(t *testing.T) {
	table, err := ReadMCSTable(strings.NewReader("MCS,Modulation_rate,Code_rate\n7,2,0.625\n"))
	require.NoError(t, err)
	p, err := table.Lookup("7")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Repetition)
}

func TestReadMCSTable_Errors(t *testing.T) {
	for name, input := range map[string]string{
		"empty":          "",
		"missing column": "MCS,Code_rate\n1,0.5\n",
		"bad rate":       "MCS,Modulation_rate,Code_rate\n1,two,0.5\n",
		"no rows":        "MCS,Modulation_rate,Code_rate\n",
	} {
		_, err := ReadMCSTable(strings.NewReader(input))
		assert.Error(t, err, name)
	}
}

func TestLoadMCSTable_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "MCS_table.csv")
	require.NoError(t, os.WriteFile(path, []byte("MCS,Modulation_rate,Code_rate,Repetition\n10,4,0.5,1\n"), 0644))

	table, err := LoadMCSTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, table.IDs())

	_, err = LoadMCSTable(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
