// Package diag builds an out-of-band, regenerable snapshot of a live index
// for offline inspection, benchmarking, or transfer to another analysis
// tool. It is not the persistent format described in the data model — that
// one is reproduced bit-exact in package store — but a derived view adapted
// from the teacher's own Segment/Block/RoaringBitmap machinery, the same
// role its cmd/stats and cmd/query-index tools played for that format.
//
// A snapshot carries none of the source index's replay invariants: it is a
// point-in-time dump. nxsinspect writes it; DeserializeSegment reads it back.
package diag
