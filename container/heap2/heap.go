// Package heap2 implements a fixed-capacity min-heap used for top-K
// selection, grounded on the teacher's container/heap-based minBlockHeap
// (weaviate/engine/engine.go) and on the capped heapsort described in
// original_source/src/algo/heap.c. It is named heap2 only to avoid shadowing
// the standard library's container/heap package when both are imported side
// by side in the same file.
package heap2

// Heap is a binary min-heap with a fixed capacity. Once full, Add rejects
// any item that does not exceed the current minimum, and otherwise evicts
// the minimum to make room — the "top-K" pattern spec section 4.8 calls for.
type Heap[T any] struct {
	items []T
	cap   int
	less  func(a, b T) bool
}

// New creates a Heap with the given capacity and ordering function. less(a,
// b) must report whether a ranks below b (i.e. a is "smaller").
func New[T any](cap int, less func(a, b T) bool) *Heap[T] {
	if cap < 1 {
		cap = 1
	}
	return &Heap[T]{
		items: make([]T, 0, cap),
		cap:   cap,
		less:  less,
	}
}

// Len returns the number of items currently held.
func (h *Heap[T]) Len() int {
	return len(h.items)
}

// Add inserts item into the heap. If the heap is at capacity and item does
// not rank above the current minimum, it is rejected and Add returns false.
// Otherwise item is inserted (evicting the minimum first if necessary) and
// Add returns true.
func (h *Heap[T]) Add(item T) bool {
	if len(h.items) < h.cap {
		h.items = append(h.items, item)
		h.siftUp(len(h.items) - 1)
		return true
	}

	root := h.items[0]
	if !h.less(root, item) {
		// item <= root: reject.
		return false
	}
	h.RemoveMin()
	h.items = append(h.items, item)
	h.siftUp(len(h.items) - 1)
	return true
}

// RemoveMin removes and returns the current minimum. The second return
// value is false if the heap is empty.
func (h *Heap[T]) RemoveMin() (T, bool) {
	var zero T
	n := len(h.items)
	if n == 0 {
		return zero, false
	}
	min := h.items[0]
	last := h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.items[0] = last
		h.siftDown(0)
	}
	return min, true
}

// Sort destructively drains the heap into descending order (by less) and
// returns the resulting slice: the heap is empty after this call.
func (h *Heap[T]) Sort() []T {
	n := len(h.items)
	out := make([]T, n)
	for i := n - 1; i >= 0; i-- {
		v, _ := h.RemoveMin()
		out[i] = v
	}
	return out
}

func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.items[i], h.items[parent]) {
			return
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *Heap[T]) siftDown(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && h.less(h.items[left], h.items[smallest]) {
			smallest = left
		}
		if right < n && h.less(h.items[right], h.items[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
