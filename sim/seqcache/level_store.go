package seqcache

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/mmwave-lab/berperf/sim"
)

// LevelStore keeps encoded records in a LevelDB database keyed by
// "<mcs>/<index>". LevelDB allows one process to hold the database, but any
// number of goroutines in that process may read concurrently.
type LevelStore struct {
	db       *leveldb.DB
	readOnly bool
}

// OpenLevelStore opens (or creates, unless readOnly) the database at path.
func OpenLevelStore(path string, readOnly bool) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ReadOnly:       readOnly,
		ErrorIfMissing: readOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sequence database %s: %w", path, err)
	}
	return &LevelStore{db: db, readOnly: readOnly}, nil
}

func levelKey(mcs string, index int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", sim.NormalizeMCS(mcs), index))
}

// Read loads and decodes the record for (mcs, index).
func (s *LevelStore) Read(mcs string, index int) (*sim.SequenceRecord, error) {
	data, err := s.db.Get(levelKey(mcs, index), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, &sim.MissingSequenceError{MCS: mcs, Index: index}
	}
	if err != nil {
		return nil, fmt.Errorf("reading sequence %s/%d: %w", mcs, index, err)
	}
	rec, err := DecodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("decoding sequence %s/%d: %w", mcs, index, err)
	}
	return rec, nil
}

// Write stores rec for (mcs, index). LevelDB compresses blocks with snappy itself.
func (s *LevelStore) Write(mcs string, index int, rec *sim.SequenceRecord) error {
	if s.readOnly {
		return fmt.Errorf("writing sequence %s/%d: %w", mcs, index, errors.ErrUnsupported)
	}
	raw, err := EncodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encoding sequence %s/%d: %w", mcs, index, err)
	}
	if err := s.db.Put(levelKey(mcs, index), raw, nil); err != nil {
		return fmt.Errorf("writing sequence %s/%d: %w", mcs, index, err)
	}
	return nil
}

// Close releases the database lock.
func (s *LevelStore) Close() error {
	return s.db.Close()
}
