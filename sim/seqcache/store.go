package seqcache

import (
	"fmt"

	"github.com/mmwave-lab/berperf/sim"
)

// Store is a sequence store that can also be populated and closed.
// The simulation only ever reads; Write is used by sequence generation.
type Store interface {
	sim.SequenceStore
	Write(mcs string, index int, rec *sim.SequenceRecord) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendDir     = "dir"
	BackendLevelDB = "leveldb"
)

// ValidBackends is the set of recognized store backends.
var ValidBackends = map[string]bool{BackendDir: true, BackendLevelDB: true}

// Open opens the store at path with the named backend. readOnly is honoured
// by backends that lock their storage (LevelDB); a read-only LevelDB store
// rejects writes.
func Open(backend, path string, readOnly bool) (Store, error) {
	switch backend {
	case BackendDir, "":
		return NewDirStore(path), nil
	case BackendLevelDB:
		return OpenLevelStore(path, readOnly)
	default:
		return nil, fmt.Errorf("unknown sequence store backend %q", backend)
	}
}
