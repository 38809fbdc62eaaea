// Package resultlog persists the outcome of each swept configuration: a CSV
// table with one row per trial and a YAML metadata record, both named after
// the configuration key so a rerun overwrites rather than appends.
package resultlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmwave-lab/berperf/sim"
)

const (
	dataSuffix     = ".csv"
	metadataSuffix = "_metadata.yaml"
	progressSuffix = "_std.out"
)

// CSV column headers for the per-trial metric table.
var metricColumns = []string{
	"trial", "bit_errors", "packet_errors", "transmitted_bits", "decoder_iterations",
}

// Log writes result sets into one run directory. Destinations are derived
// from the full configuration key, so concurrent workers never share a file.
type Log struct {
	dir string
}

// New creates the run directory if needed and returns a Log writing into it.
func New(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating result directory: %w", err)
	}
	return &Log{dir: dir}, nil
}

// Dir returns the run directory.
func (l *Log) Dir() string {
	return l.dir
}

// Paths returns the data and metadata file paths for cfg.
func (l *Log) Paths(cfg sim.TrialConfig) (dataPath, metadataPath string) {
	root := filepath.Join(l.dir, cfg.Key())
	return root + dataSuffix, root + metadataSuffix
}

// Save writes the metric table and metadata for meta's configuration.
// Any write failure is returned.
func (l *Log) Save(rows []sim.TrialMetricRow, meta sim.RunMetadata) error {
	dataPath, metadataPath := l.Paths(meta.Config())
	if err := writeMetrics(dataPath, rows); err != nil {
		return err
	}
	return writeMetadata(metadataPath, meta)
}

// OpenProgressLog creates (truncating) the progress log for cfg.
func (l *Log) OpenProgressLog(cfg sim.TrialConfig) (io.WriteCloser, error) {
	path := filepath.Join(l.dir, cfg.Key()+progressSuffix)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating progress log: %w", err)
	}
	return f, nil
}

func writeMetadata(path string, meta sim.RunMetadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling run metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing run metadata: %w", err)
	}
	return nil
}

func writeMetrics(path string, rows []sim.TrialMetricRow) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metric table: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing metric table: %w", cerr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(metricColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.TrialIndex),
			strconv.FormatInt(r.BitErrors, 10),
			strconv.FormatInt(r.PacketErrors, 10),
			strconv.FormatInt(r.TransmittedBits, 10),
			strconv.FormatFloat(r.DecoderIterations, 'f', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", r.TrialIndex, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing metric table: %w", err)
	}
	return nil
}

// ResultSet is one configuration's persisted output.
type ResultSet struct {
	Metadata sim.RunMetadata
	Rows     []sim.TrialMetricRow
}

// Load reads the result set stored under key in dir.
func Load(dir, key string) (*ResultSet, error) {
	root := filepath.Join(dir, key)

	headerData, err := os.ReadFile(root + metadataSuffix)
	if err != nil {
		return nil, fmt.Errorf("reading run metadata: %w", err)
	}
	var rs ResultSet
	if err := yaml.Unmarshal(headerData, &rs.Metadata); err != nil {
		return nil, fmt.Errorf("parsing run metadata: %w", err)
	}

	rows, err := readMetrics(root + dataSuffix)
	if err != nil {
		return nil, err
	}
	rs.Rows = rows
	return &rs, nil
}

// LoadDir reads every result set in dir, ordered by file name.
func LoadDir(dir string) ([]*ResultSet, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+metadataSuffix))
	if err != nil {
		return nil, fmt.Errorf("listing result sets: %w", err)
	}
	sets := make([]*ResultSet, 0, len(matches))
	for _, m := range matches {
		key := strings.TrimSuffix(filepath.Base(m), metadataSuffix)
		rs, err := Load(dir, key)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", key, err)
		}
		sets = append(sets, rs)
	}
	return sets, nil
}

func readMetrics(path string) ([]sim.TrialMetricRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening metric table: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(metricColumns)

	// Skip header row
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	var rows []sim.TrialMetricRow
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		row, err := parseMetricRow(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseMetricRow(rec []string) (sim.TrialMetricRow, error) {
	var row sim.TrialMetricRow
	var err error
	if row.TrialIndex, err = strconv.Atoi(rec[0]); err != nil {
		return row, fmt.Errorf("parsing trial index %q: %w", rec[0], err)
	}
	if row.BitErrors, err = strconv.ParseInt(rec[1], 10, 64); err != nil {
		return row, fmt.Errorf("parsing bit errors %q: %w", rec[1], err)
	}
	if row.PacketErrors, err = strconv.ParseInt(rec[2], 10, 64); err != nil {
		return row, fmt.Errorf("parsing packet errors %q: %w", rec[2], err)
	}
	if row.TransmittedBits, err = strconv.ParseInt(rec[3], 10, 64); err != nil {
		return row, fmt.Errorf("parsing transmitted bits %q: %w", rec[3], err)
	}
	if row.DecoderIterations, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return row, fmt.Errorf("parsing decoder iterations %q: %w", rec[4], err)
	}
	return row, nil
}
