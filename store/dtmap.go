package store

import (
	"fmt"
	"sort"
	"sync"
)

const (
	dtmapMagic      = "NXS_D"
	dtmapHeaderSize = 32
	docBlockBase    = 16 // doc_id(8) + doc_len(4) + n(4), before the term tuples
)

// TermCount is one (term_id, count) tuple inside a doc block.
type TermCount struct {
	TermID uint32
	Count  uint32
}

// DtmapStore is the append-only on-disk list of document records plus
// deletion markers (spec section 3/4.3). It holds a reference to the
// TermsStore it indexes against, since a newly-appended doc block may
// reference a term only the terms file (not yet the local mirror) knows
// about — the critical "sync terms before dtmap" ordering rule.
type DtmapStore struct {
	mu       sync.Mutex
	im       *IndexMap
	path     string
	terms    *TermsStore
	Dir      *DocDirectory
	consumed uint64 // dt_consumed
}

// OpenDtmapStore opens or creates the dtmap file at path.
func OpenDtmapStore(path string, terms *TermsStore) (*DtmapStore, error) {
	im, created, err := OpenIndexMap(path)
	if err != nil {
		return nil, err
	}

	s := &DtmapStore{im: im, path: path, terms: terms, Dir: NewDocDirectory()}

	base, err := im.EnsureMapped(dtmapHeaderSize, created)
	if err != nil {
		im.Close()
		return nil, err
	}

	if created {
		s.initHeader(base)
	} else if err := s.verifyHeader(base); err != nil {
		im.Close()
		return nil, err
	}

	if err := im.Release(); err != nil {
		im.Close()
		return nil, err
	}
	return s, nil
}

func (s *DtmapStore) initHeader(base []byte) {
	copy(base[0:5], dtmapMagic)
	base[5] = abiVersion
	storeU64BE(base[8:16], 0)
	storeU64BE(base[16:24], 0)
	storeU32BE(base[24:28], 0)
}

func (s *DtmapStore) verifyHeader(base []byte) error {
	if string(base[0:5]) != dtmapMagic {
		return fmt.Errorf("nxsearch/store: %s: bad magic", s.path)
	}
	if base[5] != abiVersion {
		return fmt.Errorf("nxsearch/store: %s: unsupported abi version %d", s.path, base[5])
	}
	return nil
}

func (s *DtmapStore) dataLen() uint64 {
	return loadU64BE(s.im.Base()[8:16])
}

// TokenCount returns the header's total_token_count.
func (s *DtmapStore) TokenCount() uint64 {
	return loadU64BE(s.im.Base()[16:24])
}

// DocCount returns the header's doc_count.
func (s *DtmapStore) DocCount() uint32 {
	return loadU32BE(s.im.Base()[24:28])
}

// Append builds a doc block for docID out of tuples (one per distinct term
// in the document, sorted ascending by term id as written to disk) and
// publishes it, per spec section 4.3.
func (s *DtmapStore) Append(docID uint64, tuples []TermCount, docLen uint32) (err error) {
	if docID == 0 {
		return fmt.Errorf("nxsearch/store: doc id must be non-zero")
	}
	if docID > uint64(^uint32(0)) {
		return fmt.Errorf("nxsearch/store: doc id %d does not fit in u32", docID)
	}
	docID32 := uint32(docID)

	sorted := make([]TermCount, len(tuples))
	copy(sorted, tuples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TermID < sorted[j].TermID })

	blockLen := docBlockBase + 8*len(sorted)
	block := make([]byte, blockLen)
	putU64Plain(block[0:8], docID)
	putU32Plain(block[8:12], docLen)
	putU32Plain(block[12:16], uint32(len(sorted)))

	applied := make([]TermCount, 0, len(sorted))
	rollback := func() {
		tbase := s.terms.Base()
		for _, tc := range applied {
			if term, ok := s.terms.Dir.LookupByID(tc.TermID); ok {
				term.Bitmap.Remove(docID32)
				addU64BE(tbase[term.Offset:term.Offset+8], -int64(tc.Count))
			}
		}
	}

	for i, tc := range sorted {
		off := docBlockBase + i*8
		putU32Plain(block[off:off+4], tc.TermID)
		putU32Plain(block[off+4:off+8], tc.Count)

		term, ok := s.terms.Dir.LookupByID(tc.TermID)
		if !ok {
			rollback()
			return fmt.Errorf("nxsearch/store: %s: unknown term id %d", s.path, tc.TermID)
		}
		term.Bitmap.Add(docID32)
		addU64BE(s.terms.Base()[term.Offset:term.Offset+8], int64(tc.Count))
		applied = append(applied, tc)
	}

	// Best-effort pre-sync outside any lock (spec section 4.3 step 3).
	_ = s.terms.Sync()
	_ = s.Sync(true)

	if lockErr := s.im.Lock(true); lockErr != nil {
		rollback()
		return lockErr
	}
	defer func() {
		if unlockErr := s.im.Release(); err == nil {
			err = unlockErr
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.consumed < s.dataLen() {
		if syncErr := s.terms.Sync(); syncErr != nil {
			rollback()
			return syncErr
		}
		if syncErr := s.syncLocked(false); syncErr != nil {
			rollback()
			return syncErr
		}
	}

	if _, exists := s.Dir.LookupByID(docID); exists {
		rollback()
		return fmt.Errorf("nxsearch/store: doc %d already exists", docID)
	}

	dataLen := s.dataLen()
	base, mapErr := s.im.EnsureMapped(dtmapHeaderSize+int(dataLen)+blockLen, true)
	if mapErr != nil {
		rollback()
		return mapErr
	}

	off := dtmapHeaderSize + int(dataLen)
	copy(base[off:off+blockLen], block)

	addU64BE(base[16:24], int64(docLen))
	addU32BE(base[24:28], 1)
	newDataLen := dataLen + uint64(blockLen)
	storeU64BE(base[8:16], newDataLen)
	s.consumed = newDataLen
	_ = s.im.Sync()

	s.Dir.Insert(&Doc{ID: docID, Offset: uint64(off)})
	return nil
}

// Sync replays unseen doc blocks into the in-memory DocDirectory and term
// bitmaps. When partial is true (PARTIAL_SYNC), a doc block referencing a
// term id the local TermDirectory does not yet know about stops the replay
// without error rather than failing fatally — the block, and everything
// after it, will be picked up by a later sync.
func (s *DtmapStore) Sync(partial bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncLocked(partial)
}

func (s *DtmapStore) syncLocked(partial bool) error {
	dataLen := s.dataLen()
	if s.consumed >= dataLen {
		return nil
	}

	base, err := s.im.EnsureMapped(dtmapHeaderSize+int(dataLen), false)
	if err != nil {
		return err
	}

	off := dtmapHeaderSize + int(s.consumed)
	end := dtmapHeaderSize + int(dataLen)

	for off < end {
		if off+docBlockBase > end {
			return fmt.Errorf("nxsearch/store: %s: truncated doc block at offset %d", s.path, off)
		}
		docID := getU64Plain(base[off : off+8])
		docLen := getU32Plain(base[off+8 : off+12])
		n := int(getU32Plain(base[off+12 : off+16]))
		blockLen := docBlockBase + 8*n
		if off+blockLen > end {
			return fmt.Errorf("nxsearch/store: %s: truncated doc block at offset %d", s.path, off)
		}

		if docID == 0 || docLen == 0 {
			if docID != 0 {
				s.Dir.Remove(docID)
			}
			off += blockLen
			s.consumed = uint64(off - dtmapHeaderSize)
			continue
		}

		applied := make([]uint32, 0, n)
		stopped := false
		for i := 0; i < n; i++ {
			tOff := off + docBlockBase + i*8
			termID := getU32Plain(base[tOff : tOff+4])
			term, ok := s.terms.Dir.LookupByID(termID)
			if !ok {
				if partial {
					stopped = true
					break
				}
				for _, doneID := range applied {
					if t, ok := s.terms.Dir.LookupByID(doneID); ok {
						t.Bitmap.Remove(uint32(docID))
					}
				}
				return fmt.Errorf("nxsearch/store: %s: doc block at %d references unknown term %d", s.path, off, termID)
			}
			term.Bitmap.Add(uint32(docID))
			applied = append(applied, termID)
		}

		if stopped {
			for _, doneID := range applied {
				if t, ok := s.terms.Dir.LookupByID(doneID); ok {
					t.Bitmap.Remove(uint32(docID))
				}
			}
			break
		}

		s.Dir.Insert(&Doc{ID: docID, Offset: uint64(off)})
		off += blockLen
		s.consumed = uint64(off - dtmapHeaderSize)
	}
	return nil
}

// Remove appends a deletion marker for docID, decrements global counters,
// zeroes the live block's doc-id header field so future openers skip it
// outright, and destroys the in-memory Doc, per spec section 4.3 remove().
func (s *DtmapStore) Remove(docID uint64) (err error) {
	if lockErr := s.im.Lock(true); lockErr != nil {
		return lockErr
	}
	defer func() {
		if unlockErr := s.im.Release(); err == nil {
			err = unlockErr
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if syncErr := s.terms.Sync(); syncErr != nil {
		return syncErr
	}
	if syncErr := s.syncLocked(false); syncErr != nil {
		return syncErr
	}

	doc, ok := s.Dir.LookupByID(docID)
	if !ok {
		return fmt.Errorf("nxsearch/store: doc %d not found", docID)
	}

	base := s.im.Base()
	origDocLen := getU32Plain(base[doc.Offset+8 : doc.Offset+12])
	n := int(getU32Plain(base[doc.Offset+12 : doc.Offset+16]))

	for i := 0; i < n; i++ {
		tOff := int(doc.Offset) + docBlockBase + i*8
		termID := getU32Plain(base[tOff : tOff+4])
		count := getU32Plain(base[tOff+4 : tOff+8])
		if term, ok := s.terms.Dir.LookupByID(termID); ok {
			term.Bitmap.Remove(uint32(docID))
			addU64BE(s.terms.Base()[term.Offset:term.Offset+8], -int64(count))
		}
	}

	dataLen := s.dataLen()
	markerLen := docBlockBase
	newBase, mapErr := s.im.EnsureMapped(dtmapHeaderSize+int(dataLen)+markerLen, true)
	if mapErr != nil {
		return mapErr
	}
	base = newBase

	markerOff := dtmapHeaderSize + int(dataLen)
	putU64Plain(base[markerOff:markerOff+8], docID)
	putU32Plain(base[markerOff+8:markerOff+12], 0)
	putU32Plain(base[markerOff+12:markerOff+16], 0)

	storeU64BE(base[doc.Offset:doc.Offset+8], 0)

	addU32BE(base[24:28], -1)
	addU64BE(base[16:24], -int64(origDocLen))

	newDataLen := dataLen + uint64(markerLen)
	storeU64BE(base[8:16], newDataLen)
	s.consumed = newDataLen
	_ = s.im.Sync()

	s.Dir.Remove(docID)
	return nil
}

// TermFrequency returns termID's occurrence count within doc's block via
// binary search over the sorted tuple array, or -1 if termID is absent —
// the caller treats that as "skip" (spec section 4.7).
func (s *DtmapStore) TermFrequency(doc *Doc, termID uint32) int64 {
	base := s.im.Base()
	n := int(getU32Plain(base[doc.Offset+12 : doc.Offset+16]))
	lo, hi := 0, n-1
	for lo <= hi {
		mid := (lo + hi) / 2
		tOff := int(doc.Offset) + docBlockBase + mid*8
		id := getU32Plain(base[tOff : tOff+4])
		switch {
		case id == termID:
			return int64(getU32Plain(base[tOff+4 : tOff+8]))
		case id < termID:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}

// DocLen returns doc's token length (with repetition) from its block.
func (s *DtmapStore) DocLen(doc *Doc) uint32 {
	base := s.im.Base()
	return getU32Plain(base[doc.Offset+8 : doc.Offset+12])
}

// Close releases the underlying mapping and file descriptor.
func (s *DtmapStore) Close() error {
	return s.im.Close()
}
