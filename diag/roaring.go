package diag

// Adapted from the teacher's storage.RoaringBitmap: a two-level compressed
// bitmap (high 16 bits select a container, low 16 bits live inside it),
// split here between arrayContainer (sparse) and bitmapContainer (dense).
// store.DocBitmap is the live, mutable version of this idea used on the hot
// add/remove/search path; this copy exists purely to give a snapshot a
// compact, self-contained serialization, independent of the live store's
// mmap-backed representation.

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"sort"
)

const containerConversionThreshold = 4096

type containerKind uint8

const (
	arrayContainerKind containerKind = iota + 1
	bitmapContainerKind
)

type roaringContainer interface {
	add(v uint16)
	cardinality() int
	serialize(w io.Writer) error
	deserialize(r io.Reader) error
}

type arrayContainer struct {
	values  []uint16
	encoder ArrayEncoderDecoder
}

func newArrayContainer() *arrayContainer {
	return &arrayContainer{encoder: newDeltaEncoder(128)}
}

func (ac *arrayContainer) add(v uint16) {
	i := sort.Search(len(ac.values), func(i int) bool { return ac.values[i] >= v })
	if i < len(ac.values) && ac.values[i] == v {
		return
	}
	ac.values = append(ac.values, 0)
	copy(ac.values[i+1:], ac.values[i:])
	ac.values[i] = v
}

func (ac *arrayContainer) cardinality() int { return len(ac.values) }

func (ac *arrayContainer) serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(ac.values))); err != nil {
		return err
	}
	return ac.encoder.Encode(ac.values, w)
}

func (ac *arrayContainer) deserialize(r io.Reader) error {
	var length uint16
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return err
	}
	values, err := ac.encoder.Decode(r, int(length))
	if err != nil {
		return err
	}
	ac.values = values
	return nil
}

func (ac *arrayContainer) toBitmap() *bitmapContainer {
	bc := newBitmapContainer()
	for _, v := range ac.values {
		bc.add(v)
	}
	return bc
}

type bitmapContainer struct {
	words []uint64
	count int
}

func newBitmapContainer() *bitmapContainer {
	return &bitmapContainer{words: make([]uint64, 1024)}
}

func (bc *bitmapContainer) add(v uint16) {
	w, b := int(v/64), uint(v%64)
	if bc.words[w]&(1<<b) == 0 {
		bc.words[w] |= 1 << b
		bc.count++
	}
}

func (bc *bitmapContainer) cardinality() int { return bc.count }

func (bc *bitmapContainer) serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(bc.words))); err != nil {
		return err
	}
	for _, word := range bc.words {
		if err := binary.Write(w, binary.LittleEndian, word); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, uint32(bc.count))
}

func (bc *bitmapContainer) deserialize(r io.Reader) error {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return err
	}
	bc.words = make([]uint64, length)
	for i := range bc.words {
		if err := binary.Read(r, binary.LittleEndian, &bc.words[i]); err != nil {
			return err
		}
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return err
	}
	bc.count = 0
	for _, word := range bc.words {
		bc.count += bits.OnesCount64(word)
	}
	if uint32(bc.count) != count {
		return fmt.Errorf("diag: bitmap container cardinality mismatch: want %d got %d", count, bc.count)
	}
	return nil
}

// snapshotBitmap is a compact, serializable doc-id set, built once from a
// live store.DocBitmap when a snapshot is taken.
type snapshotBitmap struct {
	containers map[uint16]roaringContainer
}

func newSnapshotBitmap() *snapshotBitmap {
	return &snapshotBitmap{containers: make(map[uint16]roaringContainer)}
}

func (sb *snapshotBitmap) add(v uint32) {
	key, low := uint16(v>>16), uint16(v&0xFFFF)
	c, ok := sb.containers[key]
	if !ok {
		c = newArrayContainer()
		sb.containers[key] = c
	}
	c.add(low)
	if ac, ok := c.(*arrayContainer); ok && ac.cardinality() > containerConversionThreshold {
		sb.containers[key] = ac.toBitmap()
	}
}

func (sb *snapshotBitmap) cardinality() int {
	n := 0
	for _, c := range sb.containers {
		n += c.cardinality()
	}
	return n
}

func (sb *snapshotBitmap) serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(sb.containers))); err != nil {
		return err
	}
	for key, c := range sb.containers {
		if err := binary.Write(w, binary.LittleEndian, key); err != nil {
			return err
		}
		var kind containerKind
		switch c.(type) {
		case *arrayContainer:
			kind = arrayContainerKind
		case *bitmapContainer:
			kind = bitmapContainerKind
		default:
			return fmt.Errorf("diag: unknown container type %T", c)
		}
		if err := binary.Write(w, binary.LittleEndian, kind); err != nil {
			return err
		}
		if err := c.serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func (sb *snapshotBitmap) deserialize(r io.Reader) error {
	sb.containers = make(map[uint16]roaringContainer)
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		var key uint16
		if err := binary.Read(r, binary.LittleEndian, &key); err != nil {
			return err
		}
		var kind containerKind
		if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
			return err
		}
		var c roaringContainer
		switch kind {
		case arrayContainerKind:
			c = newArrayContainer()
		case bitmapContainerKind:
			c = newBitmapContainer()
		default:
			return fmt.Errorf("diag: unknown container kind %d", kind)
		}
		if err := c.deserialize(r); err != nil {
			return err
		}
		sb.containers[key] = c
	}
	return nil
}
