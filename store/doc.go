package store

// Doc is the in-memory mirror of a live document: its caller-supplied id
// and the byte offset of its block inside the dtmap file.
type Doc struct {
	ID     uint64
	Offset uint64
}
