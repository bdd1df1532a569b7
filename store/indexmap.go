// Package store implements the two append-only, memory-mapped backing
// files shared by a live index — the terms table and the document-term
// table — and the cross-process file-lock protocol that lets multiple
// processes and threads extend and read them safely. It generalizes the
// teacher's weaviate/storage package (which reads a single, fully-built,
// JSON-sourced segment) into an incrementally-appended, concurrently-shared
// pair of files, grounded on original_source/src/core/ (the C sources this
// protocol was distilled from) wherever the distilled spec leaves a gap.
package store

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// SizeStep is the granularity backing files grow by (32 KiB).
const SizeStep = 32 * 1024

const maxOpenRetries = 10

// IndexMap opens, grows, and memory-maps a single backing file, holding a
// cross-process advisory lock on its file descriptor while the caller
// manipulates it.
type IndexMap struct {
	path      string
	fd        int
	base      []byte
	mappedLen int
	locked    bool
	exclusive bool
}

// OpenIndexMap implements the open protocol from the IndexMap design: try a
// plain open, fall back to an exclusive create on ENOENT, retry on an
// EEXIST race, and retry (bounded) if a creator is caught mid-initialization
// (file present but still zero-length). The returned map has its lock held
// (exclusive if this call created the file, shared otherwise); the caller
// must write or verify the header and then call Release.
func OpenIndexMap(path string) (m *IndexMap, created bool, err error) {
	for attempt := 0; attempt < maxOpenRetries; attempt++ {
		fd, openErr := unix.Open(path, unix.O_RDWR, 0)
		if openErr == nil {
			m := &IndexMap{path: path, fd: fd}
			ok, err := m.acquireExisting()
			if err != nil {
				return nil, false, err
			}
			if ok {
				return m, false, nil
			}
			// Creator has not finished (size still 0); retry the whole open.
			continue
		}
		if !errors.Is(openErr, unix.ENOENT) {
			return nil, false, fmt.Errorf("nxsearch/store: open %s: %w", path, openErr)
		}

		fd, createErr := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_EXCL, 0644)
		if createErr != nil {
			if errors.Is(createErr, unix.EEXIST) {
				continue
			}
			return nil, false, fmt.Errorf("nxsearch/store: create %s: %w", path, createErr)
		}
		m := &IndexMap{path: path, fd: fd}
		if err := m.initCreated(); err != nil {
			unix.Close(fd)
			return nil, false, err
		}
		return m, true, nil
	}
	return nil, false, fmt.Errorf("nxsearch/store: open %s: exceeded retries waiting for creator", path)
}

func (m *IndexMap) acquireExisting() (bool, error) {
	if err := m.lock(false); err != nil {
		unix.Close(m.fd)
		return false, err
	}
	size, err := m.fileSize()
	if err != nil {
		m.unlock()
		unix.Close(m.fd)
		return false, err
	}
	if size == 0 {
		m.unlock()
		unix.Close(m.fd)
		return false, nil
	}
	return true, nil
}

func (m *IndexMap) initCreated() error {
	if err := m.lock(true); err != nil {
		unix.Close(m.fd)
		return err
	}
	if err := unix.Ftruncate(m.fd, SizeStep); err != nil {
		m.unlock()
		unix.Close(m.fd)
		return fmt.Errorf("nxsearch/store: truncate %s: %w", m.path, err)
	}
	return nil
}

func (m *IndexMap) fileSize() (int64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(m.fd, &st); err != nil {
		return 0, fmt.Errorf("nxsearch/store: fstat %s: %w", m.path, err)
	}
	return st.Size, nil
}

// Lock acquires the file's advisory lock, exclusive or shared.
func (m *IndexMap) Lock(exclusive bool) error {
	return m.lock(exclusive)
}

func (m *IndexMap) lock(exclusive bool) error {
	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}
	if err := unix.Flock(m.fd, how); err != nil {
		return fmt.Errorf("nxsearch/store: flock %s: %w", m.path, err)
	}
	m.locked = true
	m.exclusive = exclusive
	return nil
}

// Release drops the currently held advisory lock.
func (m *IndexMap) Release() error {
	return m.unlock()
}

func (m *IndexMap) unlock() error {
	if !m.locked {
		return nil
	}
	if err := unix.Flock(m.fd, unix.LOCK_UN); err != nil {
		return fmt.Errorf("nxsearch/store: unlock %s: %w", m.path, err)
	}
	m.locked = false
	m.exclusive = false
	return nil
}

// HoldsExclusive reports whether the caller currently holds the exclusive
// lock (used as the diagnostic assertion backing EnsureMapped's extend
// path).
func (m *IndexMap) HoldsExclusive() bool {
	return m.locked && m.exclusive
}

// EnsureMapped guarantees the file is mapped to at least
// round_up(targetLen, SizeStep) bytes and returns the current base slice.
// If the file is shorter than that and mayExtend is true, it is truncated
// up (which requires the exclusive lock to already be held); if mayExtend
// is false and the file is too short, it fails.
func (m *IndexMap) EnsureMapped(targetLen int, mayExtend bool) ([]byte, error) {
	rounded := roundUp(targetLen, SizeStep)
	if m.mappedLen >= rounded {
		return m.base, nil
	}

	size, err := m.fileSize()
	if err != nil {
		return nil, err
	}

	if int(size) < rounded {
		if !mayExtend {
			return nil, fmt.Errorf("nxsearch/store: %s is %d bytes, need %d, may_extend=false", m.path, size, rounded)
		}
		if !m.HoldsExclusive() {
			return nil, fmt.Errorf("nxsearch/store: extending %s requires the exclusive lock", m.path)
		}
		if err := unix.Ftruncate(m.fd, int64(rounded)); err != nil {
			return nil, fmt.Errorf("nxsearch/store: truncate %s: %w", m.path, err)
		}
	}

	newBase, err := unix.Mmap(m.fd, 0, rounded, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("nxsearch/store: mmap %s: %w", m.path, err)
	}
	if m.base != nil {
		_ = unix.Munmap(m.base)
	}
	m.base = newBase
	m.mappedLen = rounded
	return m.base, nil
}

// Base returns the current mapped base slice (nil if nothing is mapped).
func (m *IndexMap) Base() []byte {
	return m.base
}

// MappedLen returns the current mapped length.
func (m *IndexMap) MappedLen() int {
	return m.mappedLen
}

// Sync calls msync(MS_ASYNC) on the current mapping, if any.
func (m *IndexMap) Sync() error {
	if m.base == nil {
		return nil
	}
	if err := unix.Msync(m.base, unix.MS_ASYNC); err != nil {
		return fmt.Errorf("nxsearch/store: msync %s: %w", m.path, err)
	}
	return nil
}

// Close unmaps and closes the underlying file descriptor.
func (m *IndexMap) Close() error {
	if m.base != nil {
		_ = unix.Munmap(m.base)
		m.base = nil
		m.mappedLen = 0
	}
	return unix.Close(m.fd)
}

func roundUp(n, step int) int {
	if n <= 0 {
		return step
	}
	return (n + step - 1) / step * step
}
