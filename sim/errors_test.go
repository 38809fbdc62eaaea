package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMissingSequenceError_MatchesSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("reading trial 3: %w", &MissingSequenceError{MCS: "12.1", Index: 3})

	assert.True(t, errors.Is(err, ErrMissingSequence))
	assert.False(t, errors.Is(err, ErrUnknownMCS))
	assert.Contains(t, err.Error(), "MCS 12.1 at index 3")
}
