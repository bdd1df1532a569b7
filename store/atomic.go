package store

import (
	"encoding/binary"
	"math/bits"
	"sync/atomic"
	"unsafe"
)

// Header and counter fields inside the mapped files are wire-format
// big-endian but must be touched with real atomic instructions (design
// note: "treat them as typed atomic cells parameterized by a big-endian
// byte swap"). sync/atomic only operates on native-endian machine words, so
// each helper loads or stores the native word and reverses its bytes around
// the atomic op. This assumes a little-endian host, true of every platform
// this module targets (amd64, arm64).

func loadU32BE(b []byte) uint32 {
	p := (*uint32)(unsafe.Pointer(&b[0]))
	return bits.ReverseBytes32(atomic.LoadUint32(p))
}

func storeU32BE(b []byte, v uint32) {
	p := (*uint32)(unsafe.Pointer(&b[0]))
	atomic.StoreUint32(p, bits.ReverseBytes32(v))
}

func loadU64BE(b []byte) uint64 {
	p := (*uint64)(unsafe.Pointer(&b[0]))
	return bits.ReverseBytes64(atomic.LoadUint64(p))
}

func storeU64BE(b []byte, v uint64) {
	p := (*uint64)(unsafe.Pointer(&b[0]))
	atomic.StoreUint64(p, bits.ReverseBytes64(v))
}

// addU64BE atomically adds delta (which may be negative) to the big-endian
// u64 at b and returns the new value.
func addU64BE(b []byte, delta int64) uint64 {
	p := (*uint64)(unsafe.Pointer(&b[0]))
	for {
		nativeOld := atomic.LoadUint64(p)
		beOld := bits.ReverseBytes64(nativeOld)
		beNew := uint64(int64(beOld) + delta)
		nativeNew := bits.ReverseBytes64(beNew)
		if atomic.CompareAndSwapUint64(p, nativeOld, nativeNew) {
			return beNew
		}
	}
}

// addU32BE atomically adds delta to the big-endian u32 at b and returns the
// new value.
func addU32BE(b []byte, delta int32) uint32 {
	p := (*uint32)(unsafe.Pointer(&b[0]))
	for {
		nativeOld := atomic.LoadUint32(p)
		beOld := bits.ReverseBytes32(nativeOld)
		beNew := uint32(int32(beOld) + delta)
		nativeNew := bits.ReverseBytes32(beNew)
		if atomic.CompareAndSwapUint32(p, nativeOld, nativeNew) {
			return beNew
		}
	}
}

// Plain (non-atomic) big-endian helpers for fields only ever touched under
// a lock that already serializes access (e.g. the u16 length prefix of a
// term block, written once at append time).

func getU16(b []byte) uint16      { return binary.BigEndian.Uint16(b) }
func putU16(b []byte, v uint16)   { binary.BigEndian.PutUint16(b, v) }
func getU32Plain(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func putU32Plain(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}
func getU64Plain(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
func putU64Plain(b []byte, v uint64) {
	binary.BigEndian.PutUint64(b, v)
}
