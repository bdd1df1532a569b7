package diag

// Adapted from the teacher's storage.Segment/TermMetadata/Block: a
// read-only, term-to-postings snapshot with a magic-numbered binary format.
// Here it is built from a live nxsearch index rather than streamed in from
// fetcher JSON, and each term's postings form a single block (snapshots are meant
// for small offline dumps, not the high-cardinality production path the
// teacher's block-splitting was built for).

import (
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strings"

	"nxsearch/index"
)

const (
	snapshotMagic   = 0x007E8B11
	snapshotVersion = 1
)

// Block holds one term's postings: the documents containing it and, in
// matching order, how many times the term occurs in each.
type Block struct {
	DocIDs      *snapshotBitmap
	Frequencies []float32
}

// TermEntry is one term's snapshot record.
type TermEntry struct {
	Value string
	Block *Block
}

// Segment is a point-in-time export of an index: every term and its
// postings, plus the set of live document ids.
type Segment struct {
	Magic   uint32
	Version uint8
	DocIDs  *snapshotBitmap
	Terms   []*TermEntry
}

// BuildSnapshot walks idx's term directory and document table, producing a
// Segment that mirrors its current live content.
func BuildSnapshot(idx *index.Index) (*Segment, error) {
	seg := &Segment{
		Magic:   snapshotMagic,
		Version: snapshotVersion,
		DocIDs:  newSnapshotBitmap(),
	}

	for _, term := range idx.Terms.Dir.All() {
		block := &Block{DocIDs: newSnapshotBitmap()}
		docIDs := term.Bitmap.DocIDs()
		for _, docID32 := range docIDs {
			block.DocIDs.add(docID32)
			seg.DocIDs.add(docID32)

			doc, ok := idx.Dtmap.Dir.LookupByID(uint64(docID32))
			if !ok {
				continue
			}
			tf := idx.Dtmap.TermFrequency(doc, term.ID)
			if tf < 0 {
				tf = 0
			}
			block.Frequencies = append(block.Frequencies, float32(tf))
		}
		seg.Terms = append(seg.Terms, &TermEntry{Value: term.Value, Block: block})
	}

	sort.Slice(seg.Terms, func(i, j int) bool { return seg.Terms[i].Value < seg.Terms[j].Value })
	return seg, nil
}

// PrintInfo writes a human-readable summary to w, in the spirit of the
// teacher's Segment.PrintInfo / cmd/stats output.
func (s *Segment) PrintInfo(w io.Writer) {
	fmt.Fprintf(w, "nxsearch snapshot\n\n")
	fmt.Fprintf(w, "Magic   : 0x%X\n", s.Magic)
	fmt.Fprintf(w, "Version : %d\n", s.Version)
	fmt.Fprintf(w, "Docs    : %d\n", s.DocIDs.cardinality())
	fmt.Fprintf(w, "Terms   : %d\n\n", len(s.Terms))

	fmt.Fprintf(w, "%-25s | %-10s\n", "Term", "Postings")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	for _, t := range s.Terms {
		fmt.Fprintf(w, "%-25s | %-10d\n", t.Value, t.Block.DocIDs.cardinality())
	}
}

// Serialize writes the snapshot in its binary form.
func (s *Segment) Serialize(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, s.Magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, s.Version); err != nil {
		return err
	}
	if err := s.DocIDs.serialize(w); err != nil {
		return fmt.Errorf("diag: serialize doc ids: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s.Terms))); err != nil {
		return err
	}
	for _, t := range s.Terms {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(t.Value))); err != nil {
			return err
		}
		if _, err := w.Write([]byte(t.Value)); err != nil {
			return err
		}
		if err := t.Block.DocIDs.serialize(w); err != nil {
			return fmt.Errorf("diag: serialize block for %q: %w", t.Value, err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(t.Block.Frequencies))); err != nil {
			return err
		}
		for _, f := range t.Block.Frequencies {
			if err := binary.Write(w, binary.LittleEndian, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeserializeSegment reads a snapshot previously written by Serialize.
func DeserializeSegment(r io.Reader) (*Segment, error) {
	s := &Segment{DocIDs: newSnapshotBitmap()}
	if err := binary.Read(r, binary.LittleEndian, &s.Magic); err != nil {
		return nil, err
	}
	if s.Magic != snapshotMagic {
		return nil, fmt.Errorf("diag: bad snapshot magic 0x%X", s.Magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &s.Version); err != nil {
		return nil, err
	}
	if err := s.DocIDs.deserialize(r); err != nil {
		return nil, fmt.Errorf("diag: deserialize doc ids: %w", err)
	}
	var numTerms uint32
	if err := binary.Read(r, binary.LittleEndian, &numTerms); err != nil {
		return nil, err
	}
	for i := uint32(0); i < numTerms; i++ {
		var termLen uint16
		if err := binary.Read(r, binary.LittleEndian, &termLen); err != nil {
			return nil, err
		}
		termBytes := make([]byte, termLen)
		if _, err := io.ReadFull(r, termBytes); err != nil {
			return nil, err
		}
		block := &Block{DocIDs: newSnapshotBitmap()}
		if err := block.DocIDs.deserialize(r); err != nil {
			return nil, fmt.Errorf("diag: deserialize block for %q: %w", termBytes, err)
		}
		var numFreqs uint32
		if err := binary.Read(r, binary.LittleEndian, &numFreqs); err != nil {
			return nil, err
		}
		block.Frequencies = make([]float32, numFreqs)
		for j := range block.Frequencies {
			if err := binary.Read(r, binary.LittleEndian, &block.Frequencies[j]); err != nil {
				return nil, err
			}
		}
		s.Terms = append(s.Terms, &TermEntry{Value: string(termBytes), Block: block})
	}
	return s, nil
}
