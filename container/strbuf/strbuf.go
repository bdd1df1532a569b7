// Package strbuf provides a small mutable byte buffer used as the exchange
// point between the tokenizer and the FilterPipeline. Filters mutate a
// StringBuffer in place (or replace its contents entirely) rather than
// allocating a new string per stage, mirroring the "mutable buffer" contract
// of spec section 4.5.
package strbuf

// StringBuffer is a reusable, mutable byte buffer representing a single
// token value as it passes through a chain of filters.
type StringBuffer struct {
	buf []byte
}

// New creates a StringBuffer seeded with the given value. The buffer copies
// the bytes so the caller's slice can be reused or discarded.
func New(value string) *StringBuffer {
	sb := &StringBuffer{buf: make([]byte, len(value))}
	copy(sb.buf, value)
	return sb
}

// Bytes returns the buffer's current contents. The returned slice must not
// be retained past the next mutation.
func (sb *StringBuffer) Bytes() []byte {
	return sb.buf
}

// String returns the buffer's current contents as a string.
func (sb *StringBuffer) String() string {
	return string(sb.buf)
}

// Len returns the number of bytes currently held.
func (sb *StringBuffer) Len() int {
	return len(sb.buf)
}

// Set replaces the buffer's contents with value. Used by filters that
// produce a MUTATION action.
func (sb *StringBuffer) Set(value string) {
	if cap(sb.buf) >= len(value) {
		sb.buf = sb.buf[:len(value)]
		copy(sb.buf, value)
		return
	}
	sb.buf = []byte(value)
}

// SetBytes replaces the buffer's contents with value without an extra copy;
// the caller must not mutate value afterwards.
func (sb *StringBuffer) SetBytes(value []byte) {
	sb.buf = value
}

// Reset empties the buffer, keeping the underlying array for reuse.
func (sb *StringBuffer) Reset() {
	sb.buf = sb.buf[:0]
}
