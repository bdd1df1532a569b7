package diag

// Adapted from the teacher's encoders package: delta + varint compression
// for sorted uint16 sequences, used by ArrayContainer when serializing a
// snapshot. Kept as its own small interface pair so a future container type
// can plug in a different encoding without touching the container code.

import (
	"encoding/binary"
	"errors"
	"io"
)

// ArrayEncoderDecoder encodes and decodes a sorted []uint16 to/from a writer
// or reader.
type ArrayEncoderDecoder interface {
	Encode(values []uint16, w io.Writer) error
	Decode(r io.Reader, length int) ([]uint16, error)
}

// deltaEncoder stores the first value as-is and every following value as a
// varint-encoded delta from its predecessor. Falls back to plainEncoder for
// short sequences, where the varint overhead outweighs the savings.
type deltaEncoder struct {
	minLen   int
	fallback ArrayEncoderDecoder
}

func newDeltaEncoder(minLen int) *deltaEncoder {
	return &deltaEncoder{minLen: minLen, fallback: newPlainEncoder()}
}

func (d *deltaEncoder) Encode(values []uint16, w io.Writer) error {
	if len(values) <= d.minLen {
		return d.fallback.Encode(values, w)
	}
	if err := binary.Write(w, binary.LittleEndian, values[0]); err != nil {
		return err
	}
	prev := values[0]
	for _, v := range values[1:] {
		if err := writeVarint(w, uint64(v-prev)); err != nil {
			return err
		}
		prev = v
	}
	return nil
}

func (d *deltaEncoder) Decode(r io.Reader, length int) ([]uint16, error) {
	if length == 0 {
		return []uint16{}, nil
	}
	if length <= d.minLen {
		return d.fallback.Decode(r, length)
	}
	values := make([]uint16, length)
	if err := binary.Read(r, binary.LittleEndian, &values[0]); err != nil {
		return nil, err
	}
	prev := values[0]
	for i := 1; i < length; i++ {
		delta, err := readVarint(r)
		if err != nil {
			return nil, err
		}
		values[i] = prev + uint16(delta)
		prev = values[i]
	}
	return values, nil
}

func writeVarint(w io.Writer, v uint64) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, v)
	_, err := w.Write(buf[:n])
	return err
}

func readVarint(r io.Reader) (uint64, error) {
	var value uint64
	var shift uint
	var b [1]byte
	for {
		if _, err := r.Read(b[:]); err != nil {
			return 0, err
		}
		value |= uint64(b[0]&0x7F) << shift
		if b[0]&0x80 == 0 {
			break
		}
		shift += 7
		if shift > 64 {
			return 0, errors.New("diag: varint overflow")
		}
	}
	return value, nil
}

// plainEncoder writes values uncompressed; used directly for short
// sequences and as deltaEncoder's fallback.
type plainEncoder struct{}

func newPlainEncoder() *plainEncoder { return &plainEncoder{} }

func (plainEncoder) Encode(values []uint16, w io.Writer) error {
	for _, v := range values {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func (plainEncoder) Decode(r io.Reader, length int) ([]uint16, error) {
	values := make([]uint16, length)
	for i := range values {
		if err := binary.Read(r, binary.LittleEndian, &values[i]); err != nil {
			return nil, err
		}
	}
	return values, nil
}
