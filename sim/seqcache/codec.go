// Package seqcache stores pre-generated transmit sequences keyed by
// (MCS, trial index).
//
// Three stores are provided: DirStore keeps one snappy-compressed file per
// record under <root>/<mcs>/<index>.seq, LevelStore keeps records in a
// LevelDB database, and CachedStore memoizes decoded records of another
// store in an LRU. All of them are safe for concurrent readers.
package seqcache

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/mmwave-lab/berperf/sim"
)

var recordMagic = [4]byte{'B', 'S', 'E', 'Q'}

const recordVersion uint8 = 1

// EncodeRecord serializes rec. Payload bits are packed eight per byte, MSB first.
func EncodeRecord(rec *sim.SequenceRecord) ([]byte, error) {
	if rec.ScramblerSeed > 0x7f {
		return nil, fmt.Errorf("scrambler seed %#x exceeds 7 bits", rec.ScramblerSeed)
	}
	packed := make([]byte, (len(rec.PayloadBits)+7)/8)
	for i, b := range rec.PayloadBits {
		switch b {
		case 0:
		case 1:
			packed[i/8] |= 0x80 >> (i % 8)
		default:
			return nil, fmt.Errorf("payload bit %d has value %d", i, b)
		}
	}

	var buf bytes.Buffer
	buf.Grow(len(recordMagic) + 10 + len(packed) + 16*len(rec.Waveform))
	buf.Write(recordMagic[:])
	buf.WriteByte(recordVersion)
	buf.WriteByte(rec.ScramblerSeed)

	var word [8]byte
	binary.LittleEndian.PutUint32(word[:4], uint32(len(rec.PayloadBits)))
	buf.Write(word[:4])
	buf.Write(packed)
	binary.LittleEndian.PutUint32(word[:4], uint32(len(rec.Waveform)))
	buf.Write(word[:4])
	for _, s := range rec.Waveform {
		binary.LittleEndian.PutUint64(word[:], math.Float64bits(real(s)))
		buf.Write(word[:])
		binary.LittleEndian.PutUint64(word[:], math.Float64bits(imag(s)))
		buf.Write(word[:])
	}
	return buf.Bytes(), nil
}

// DecodeRecord parses data produced by EncodeRecord.
func DecodeRecord(data []byte) (*sim.SequenceRecord, error) {
	r := bytes.NewReader(data)

	var header [6]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading record header: %w", err)
	}
	if !bytes.Equal(header[:4], recordMagic[:]) {
		return nil, fmt.Errorf("not a sequence record (magic %q)", header[:4])
	}
	if header[4] != recordVersion {
		return nil, fmt.Errorf("unsupported record version %d", header[4])
	}
	rec := &sim.SequenceRecord{ScramblerSeed: header[5]}

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("reading payload length: %w", err)
	}
	packed := make([]byte, (int(n)+7)/8)
	if _, err := io.ReadFull(r, packed); err != nil {
		return nil, fmt.Errorf("reading payload bits: %w", err)
	}
	rec.PayloadBits = make([]uint8, n)
	for i := range rec.PayloadBits {
		rec.PayloadBits[i] = (packed[i/8] >> (7 - i%8)) & 1
	}

	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("reading waveform length: %w", err)
	}
	if r.Len() != int(n)*16 {
		return nil, fmt.Errorf("waveform has %d bytes, want %d", r.Len(), int(n)*16)
	}
	parts := make([]float64, 2*int(n))
	if err := binary.Read(r, binary.LittleEndian, parts); err != nil {
		return nil, fmt.Errorf("reading waveform: %w", err)
	}
	rec.Waveform = make([]complex128, n)
	for i := range rec.Waveform {
		rec.Waveform[i] = complex(parts[2*i], parts[2*i+1])
	}
	return rec, nil
}
