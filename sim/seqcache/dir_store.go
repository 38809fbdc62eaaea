package seqcache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"github.com/mmwave-lab/berperf/sim"
)

// DirStore keeps one snappy-compressed record per file at
// <root>/<mcs>/<index>.seq. Reads open files independently, so any number of
// goroutines or processes may read concurrently.
type DirStore struct {
	root string
}

// NewDirStore creates a DirStore rooted at root. The directory is not
// required to exist until the first Write.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Path returns the file holding (mcs, index).
func (s *DirStore) Path(mcs string, index int) string {
	return filepath.Join(s.root, sim.NormalizeMCS(mcs), fmt.Sprintf("%04d.seq", index))
}

// Read loads and decodes the record for (mcs, index).
func (s *DirStore) Read(mcs string, index int) (*sim.SequenceRecord, error) {
	if index < 0 {
		return nil, &sim.MissingSequenceError{MCS: mcs, Index: index}
	}
	path := s.Path(mcs, index)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &sim.MissingSequenceError{MCS: mcs, Index: index}
	}
	if err != nil {
		return nil, fmt.Errorf("reading sequence %s: %w", path, err)
	}
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("decompressing sequence %s: %w", path, err)
	}
	rec, err := DecodeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding sequence %s: %w", path, err)
	}
	return rec, nil
}

// Write stores rec for (mcs, index), replacing any existing file. The file
// is written under a temporary name and renamed so readers never see a
// partial record.
func (s *DirStore) Write(mcs string, index int, rec *sim.SequenceRecord) error {
	raw, err := EncodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encoding sequence %s/%d: %w", mcs, index, err)
	}
	path := s.Path(mcs, index)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating sequence directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, snappy.Encode(nil, raw), 0644); err != nil {
		return fmt.Errorf("writing sequence %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("committing sequence %s: %w", path, err)
	}
	return nil
}

// Close is a no-op; DirStore holds no open handles.
func (s *DirStore) Close() error { return nil }
