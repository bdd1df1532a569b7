package diag

import (
	"bytes"
	"testing"

	"nxsearch/index"
)

func buildTestIndex(t *testing.T) *index.Index {
	t.Helper()
	dir := t.TempDir()
	idx, err := index.Create(dir, "snap", index.DefaultParams())
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })

	if err := idx.Add(1, []byte("the quick brown fox jumped over the lazy dog")); err != nil {
		t.Fatalf("add 1: %v", err)
	}
	if err := idx.Add(2, []byte("once upon a time there were three little foxes")); err != nil {
		t.Fatalf("add 2: %v", err)
	}
	return idx
}

func TestBuildSnapshotMatchesIndex(t *testing.T) {
	idx := buildTestIndex(t)

	snap, err := BuildSnapshot(idx)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if snap.DocIDs.cardinality() != 2 {
		t.Fatalf("snapshot doc count = %d, want 2", snap.DocIDs.cardinality())
	}

	var dogEntry *TermEntry
	for _, e := range snap.Terms {
		if e.Value == "dog" {
			dogEntry = e
		}
	}
	if dogEntry == nil {
		t.Fatal("expected a 'dog' term entry in the snapshot")
	}
	if dogEntry.Block.DocIDs.cardinality() != 1 {
		t.Fatalf("'dog' postings cardinality = %d, want 1", dogEntry.Block.DocIDs.cardinality())
	}
}

func TestSnapshotSerializeRoundTrip(t *testing.T) {
	idx := buildTestIndex(t)
	snap, err := BuildSnapshot(idx)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}

	var buf bytes.Buffer
	if err := snap.Serialize(&buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	got, err := DeserializeSegment(&buf)
	if err != nil {
		t.Fatalf("DeserializeSegment: %v", err)
	}
	if got.Magic != snap.Magic || got.Version != snap.Version {
		t.Fatalf("header mismatch: got magic=0x%X version=%d", got.Magic, got.Version)
	}
	if got.DocIDs.cardinality() != snap.DocIDs.cardinality() {
		t.Fatalf("doc count mismatch: got %d want %d", got.DocIDs.cardinality(), snap.DocIDs.cardinality())
	}
	if len(got.Terms) != len(snap.Terms) {
		t.Fatalf("term count mismatch: got %d want %d", len(got.Terms), len(snap.Terms))
	}
}

func TestSnapshotRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0})
	if _, err := DeserializeSegment(buf); err == nil {
		t.Fatal("expected an error for a buffer with a bad magic number")
	}
}
