package index

// Remove appends a deletion marker for docID and updates counters and
// bitmaps accordingly (spec section 2 "Control flow for remove",
// delegating the mechanics to DtmapStore.Remove).
func (idx *Index) Remove(docID uint64) error {
	return idx.Dtmap.Remove(docID)
}
