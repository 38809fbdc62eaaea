package sim

// SequenceRecord is one pre-generated transmit sequence. Records are shared
// read-only between workers; nothing in the receive path may modify them.
type SequenceRecord struct {
	PayloadBits   []uint8      // unpadded payload, one bit per element
	Waveform      []complex128 // mapped symbols of the padded, scrambled, encoded payload
	ScramblerSeed uint8        // initial 7-bit scrambler register
}

// PayloadLength is the number of payload bits compared per trial.
func (r *SequenceRecord) PayloadLength() int {
	return len(r.PayloadBits)
}

// SequenceStore is the read side of the sequence cache.
// Implementations must be safe for concurrent Read calls and must return a
// *MissingSequenceError when no record exists for (mcs, index).
type SequenceStore interface {
	Read(mcs string, index int) (*SequenceRecord, error)
}

// ResultSink persists a finished configuration. Save is called exactly once
// per TrialLoop run and takes ownership of rows.
type ResultSink interface {
	Save(rows []TrialMetricRow, meta RunMetadata) error
}
