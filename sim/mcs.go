package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// MCSParams is one row of the MCS parameter table.
type MCSParams struct {
	ID             string
	ModulationRate int     // coded bits per symbol (1 = BPSK, 2 = QPSK, 4 = 16QAM, 6 = 64QAM)
	CodeRate       float64 // LDPC code rate
	Repetition     int     // spreading/repetition factor
}

// Simulatable reports whether the MCS can be driven through the receive
// chain: no repetition and a code rate other than 7/8.
func (p MCSParams) Simulatable() bool {
	return p.Repetition == 1 && p.CodeRate != 0.875
}

// MCSTable maps MCS identifiers to modulation and code rate.
// Read-only after construction; safe for concurrent lookups.
type MCSTable struct {
	rows map[string]MCSParams
}

// DefaultMCSTable returns the IEEE 802.11ad single-carrier MCS table.
func DefaultMCSTable() *MCSTable {
	return NewMCSTable([]MCSParams{
		{ID: "1", ModulationRate: 1, CodeRate: 0.5, Repetition: 2},
		{ID: "2", ModulationRate: 1, CodeRate: 0.5, Repetition: 1},
		{ID: "3", ModulationRate: 1, CodeRate: 0.625, Repetition: 1},
		{ID: "4", ModulationRate: 1, CodeRate: 0.75, Repetition: 1},
		{ID: "5", ModulationRate: 1, CodeRate: 0.8125, Repetition: 1},
		{ID: "6", ModulationRate: 2, CodeRate: 0.5, Repetition: 1},
		{ID: "7", ModulationRate: 2, CodeRate: 0.625, Repetition: 1},
		{ID: "8", ModulationRate: 2, CodeRate: 0.75, Repetition: 1},
		{ID: "9", ModulationRate: 2, CodeRate: 0.8125, Repetition: 1},
		{ID: "9.1", ModulationRate: 2, CodeRate: 0.875, Repetition: 1},
		{ID: "10", ModulationRate: 4, CodeRate: 0.5, Repetition: 1},
		{ID: "11", ModulationRate: 4, CodeRate: 0.625, Repetition: 1},
		{ID: "12", ModulationRate: 4, CodeRate: 0.75, Repetition: 1},
		{ID: "12.1", ModulationRate: 4, CodeRate: 0.8125, Repetition: 1},
		{ID: "12.2", ModulationRate: 4, CodeRate: 0.875, Repetition: 1},
		{ID: "12.3", ModulationRate: 6, CodeRate: 0.625, Repetition: 1},
		{ID: "12.4", ModulationRate: 6, CodeRate: 0.75, Repetition: 1},
		{ID: "12.5", ModulationRate: 6, CodeRate: 0.8125, Repetition: 1},
		{ID: "12.6", ModulationRate: 6, CodeRate: 0.875, Repetition: 1},
	})
}

// NewMCSTable builds a table from rows. Later rows override earlier ones with the same ID.
func NewMCSTable(rows []MCSParams) *MCSTable {
	t := &MCSTable{rows: make(map[string]MCSParams, len(rows))}
	for _, r := range rows {
		r.ID = NormalizeMCS(r.ID)
		t.rows[r.ID] = r
	}
	return t
}

// Lookup returns the parameters for id, or an error wrapping ErrUnknownMCS.
func (t *MCSTable) Lookup(id string) (MCSParams, error) {
	p, ok := t.rows[NormalizeMCS(id)]
	if !ok {
		return MCSParams{}, fmt.Errorf("%w %q", ErrUnknownMCS, id)
	}
	return p, nil
}

// IDs returns all identifiers in ascending numeric order.
func (t *MCSTable) IDs() []string {
	ids := make([]string, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return mcsLess(ids[i], ids[j]) })
	return ids
}

// Simulatable returns the identifiers whose parameters pass MCSParams.Simulatable, ascending.
func (t *MCSTable) Simulatable() []string {
	var ids []string
	for _, id := range t.IDs() {
		if t.rows[id].Simulatable() {
			ids = append(ids, id)
		}
	}
	return ids
}

// NormalizeMCS renders numeric IDs in their shortest form, so "12.40",
// "12.4" and " 12.4 " name the same row, as do "6.00" and "6".
// Non-numeric IDs are only trimmed.
func NormalizeMCS(id string) string {
	id = strings.TrimSpace(id)
	v, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return id
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// mcsLess orders "9" < "9.1" < "10" < "12" < "12.1".
func mcsLess(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil || fa == fb {
		return a < b
	}
	return fa < fb
}

// mcsColumns are the CSV header names, matching the column names of the
// lab's MCS_table.csv.
var mcsColumns = []string{"MCS", "Modulation_rate", "Code_rate", "Repetition"}

// LoadMCSTable reads an MCS table CSV with columns MCS, Modulation_rate,
// Code_rate and (optionally) Repetition, in any order.
func LoadMCSTable(path string) (*MCSTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening MCS table: %w", err)
	}
	defer func() { _ = file.Close() }()
	return ReadMCSTable(file)
}

// ReadMCSTable parses MCS table CSV from r.
func ReadMCSTable(r io.Reader) (*MCSTable, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading MCS table header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range mcsColumns[:3] {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("MCS table missing column %q", required)
		}
	}

	var rows []MCSParams
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading MCS table row %d: %w", line, err)
		}
		rm, err := strconv.ParseFloat(strings.TrimSpace(rec[col["Modulation_rate"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("MCS table row %d: bad modulation rate: %w", line, err)
		}
		rc, err := strconv.ParseFloat(strings.TrimSpace(rec[col["Code_rate"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("MCS table row %d: bad code rate: %w", line, err)
		}
		rep := 1
		if i, ok := col["Repetition"]; ok {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("MCS table row %d: bad repetition: %w", line, err)
			}
			rep = int(v)
		}
		rows = append(rows, MCSParams{
			ID:             NormalizeMCS(rec[col["MCS"]]),
			ModulationRate: int(rm),
			CodeRate:       rc,
			Repetition:     rep,
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("MCS table has no rows")
	}
	return NewMCSTable(rows), nil
}
