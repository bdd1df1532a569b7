package store

import (
	"fmt"
	"sync"
)

const (
	termsMagic      = "NXS_T"
	termsHeaderSize = 16
	abiVersion      = 1
)

// StagedTerm is a pending token value offered to TermsStore.Append. Resolved
// is filled in with the term that now backs it — either newly created, or
// one that turned out to already exist (because another writer synced it in
// first).
type StagedTerm struct {
	Value    string
	Count    uint64
	Resolved *Term
}

// TermsStore is the append-only on-disk list of terms plus each one's
// global occurrence counter (spec section 3/4.2), backed by a single
// memory-mapped file guarded by IndexMap's file-lock protocol.
type TermsStore struct {
	mu       sync.Mutex
	im       *IndexMap
	path     string
	Dir      *TermDirectory
	consumed uint32 // terms_consumed
	lastID   uint32 // terms_last_id
}

// OpenTermsStore opens or creates the terms file at path.
func OpenTermsStore(path string) (*TermsStore, error) {
	im, created, err := OpenIndexMap(path)
	if err != nil {
		return nil, err
	}

	s := &TermsStore{im: im, path: path, Dir: NewTermDirectory()}

	base, err := im.EnsureMapped(termsHeaderSize, created)
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

func (s *TermsStore) initHeader(base []byte) {
	copy(base[0:5], termsMagic)
	base[5] = abiVersion
	storeU32BE(base[8:12], 0)
}

func (s *TermsStore) verifyHeader(base []byte) error {
	if string(base[0:5]) != termsMagic {
		return fmt.Errorf("nxsearch/store: %s: bad magic", s.path)
	}
	if base[5] != abiVersion {
		return fmt.Errorf("nxsearch/store: %s: unsupported abi version %d", s.path, base[5])
	}
	return nil
}

func (s *TermsStore) dataLen() uint32 {
	return loadU32BE(s.im.Base()[8:12])
}

func termBlockLen(valueLen int) int {
	raw := 2 + valueLen + 1 // u16 length prefix, value bytes, NUL
	return roundUp8(raw) + 8
}

func roundUp8(n int) int {
	return (n + 7) &^ 7
}

// Append writes every staged term not already present in the directory and
// assigns it a sequential id, per spec section 4.2. On any mid-loop
// failure, whatever was successfully written up to that point is still
// published (term ids are position-derived, so partial writes remain
// replayable by other readers); the caller sees the error.
func (s *TermsStore) Append(staged []*StagedTerm) (err error) {
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

	if s.consumed < s.dataLen() {
		if syncErr := s.syncLocked(); syncErr != nil {
			return syncErr
		}
	}

	bound := 0
	for _, st := range staged {
		bound += termBlockLen(len(st.Value))
	}

	base, mapErr := s.im.EnsureMapped(termsHeaderSize+int(s.dataLen())+bound, true)
	if mapErr != nil {
		return mapErr
	}

	writeOff := termsHeaderSize + int(s.dataLen())
	written := 0
	var opErr error

	for _, st := range staged {
		if existing, ok := s.Dir.LookupByValue(st.Value); ok {
			st.Resolved = existing
			continue
		}
		if len(st.Value) > 65535 {
			opErr = fmt.Errorf("nxsearch/store: %s: term value %d bytes exceeds 65535", s.path, len(st.Value))
			break
		}
		if s.lastID == ^uint32(0) {
			opErr = fmt.Errorf("nxsearch/store: %s: term id space exhausted", s.path)
			break
		}

		blockLen := termBlockLen(len(st.Value))
		off := writeOff + written
		block := base[off : off+blockLen]

		putU16(block[0:2], uint16(len(st.Value)))
		copy(block[2:2+len(st.Value)], st.Value)
		nulPos := 2 + len(st.Value)
		block[nulPos] = 0
		counterOff := blockLen - 8
		for i := nulPos + 1; i < counterOff; i++ {
			block[i] = 0
		}
		storeU64BE(block[counterOff:counterOff+8], st.Count)

		s.lastID++
		term := newTerm(s.lastID, st.Value, uint32(off+counterOff))
		s.Dir.Insert(term)
		st.Resolved = term

		written += blockLen
	}

	if written > 0 {
		newDataLen := s.dataLen() + uint32(written)
		storeU32BE(base[8:12], newDataLen)
		s.consumed = newDataLen
		_ = s.im.Sync()
	}

	return opErr
}

// Sync extends the in-memory mirror to match the file's published data_len.
// It takes only the in-process mutex, never the terms file's lock. Append
// replays through syncLocked under its own exclusive lock; DtmapStore's
// Append and Remove call Sync while holding the dtmap lock, and the search
// path and DtmapStore.Append's pre-sync call it with no file lock held.
func (s *TermsStore) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncLocked()
}

func (s *TermsStore) syncLocked() error {
	dataLen := s.dataLen()
	if s.consumed >= dataLen {
		return nil
	}

	base, err := s.im.EnsureMapped(termsHeaderSize+int(dataLen), false)
	if err != nil {
		return err
	}

	off := termsHeaderSize + int(s.consumed)
	end := termsHeaderSize + int(dataLen)
	for off < end {
		if off+2 > len(base) {
			return fmt.Errorf("nxsearch/store: %s: truncated term block at offset %d", s.path, off)
		}
		valLen := int(getU16(base[off : off+2]))
		blockLen := termBlockLen(valLen)
		if off+blockLen > end {
			return fmt.Errorf("nxsearch/store: %s: truncated term block at offset %d", s.path, off)
		}

		value := string(base[off+2 : off+2+valLen])
		counterOff := off + blockLen - 8

		s.lastID++
		term := newTerm(s.lastID, value, uint32(counterOff))
		s.Dir.Insert(term)

		off += blockLen
		s.consumed = uint32(off - termsHeaderSize)
	}
	return nil
}

// Close releases the underlying mapping and file descriptor.
func (s *TermsStore) Close() error {
	return s.im.Close()
}

// Base exposes the live mapped region, used by other stores/rank to read
// per-term counters directly.
func (s *TermsStore) Base() []byte {
	return s.im.Base()
}
