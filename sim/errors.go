package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownMCS is returned when an MCS identifier is not in the parameter table.
	ErrUnknownMCS = errors.New("unknown MCS")

	// ErrMissingSequence matches any MissingSequenceError via errors.Is.
	ErrMissingSequence = errors.New("missing sequence")
)

// MissingSequenceError reports that the sequence store holds no record for
// (MCS, Index). Cache exhaustion is a configuration error and is fatal to the
// trial loop that hit it.
type MissingSequenceError struct {
	MCS   string
	Index int
}

func (e *MissingSequenceError) Error() string {
	return fmt.Sprintf("missing sequence: no record for MCS %s at index %d", e.MCS, e.Index)
}

// Is lets errors.Is(err, ErrMissingSequence) match.
func (e *MissingSequenceError) Is(target error) bool {
	return target == ErrMissingSequence
}
