package nav

import (
	"container/heap"
	"fmt"
)

// openSet orders cells by (f, h) for container/heap. Swap keeps each
// cell's slot current so membership tests need no search.
type openSet []*Cell

func (o openSet) Len() int           { return len(o) }
func (o openSet) Less(i, j int) bool { return o[i].less(o[j]) }
func (o openSet) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].heapIndex = i
	o[j].heapIndex = j
}

func (o *openSet) Push(x any) {
	c := x.(*Cell)
	c.heapIndex = len(*o)
	*o = append(*o, c)
}

func (o *openSet) Pop() any {
	old := *o
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	c.heapIndex = notInHeap
	*o = old[:n-1]
	return c
}

// Heap is a binary min-heap of cells with a fixed capacity.
type Heap struct {
	items openSet
}

// NewHeap returns a heap that can hold up to capacity cells.
func NewHeap(capacity int) *Heap {
	return &Heap{items: make(openSet, 0, capacity)}
}

func (h *Heap) Len() int {
	return len(h.items)
}

func (h *Heap) Cap() int {
	return cap(h.items)
}

// Insert adds c to the heap.
func (h *Heap) Insert(c *Cell) {
	if len(h.items) == cap(h.items) {
		panic(fmt.Sprintf("nav: heap full (capacity %d)", cap(h.items)))
	}
	heap.Push(&h.items, c)
}

// ExtractMin removes and returns the cell with the lowest (f, h).
// Calling it on an empty heap is a caller bug.
func (h *Heap) ExtractMin() *Cell {
	if len(h.items) == 0 {
		panic("nav: extract from empty heap")
	}
	return heap.Pop(&h.items).(*Cell)
}

// Peek returns the minimum without removing it, or nil.
func (h *Heap) Peek() *Cell {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// Contains reports whether c currently sits in this heap.
func (h *Heap) Contains(c *Cell) bool {
	i := c.heapIndex
	return i >= 0 && i < len(h.items) && h.items[i] == c
}

// UpdateItem restores heap order after c's key changed. c must be in the
// heap.
func (h *Heap) UpdateItem(c *Cell) {
	if !h.Contains(c) {
		panic(fmt.Sprintf("nav: update of cell (%d,%d) not in heap", c.X, c.Y))
	}
	heap.Fix(&h.items, c.heapIndex)
}

// Clear empties the heap, keeping its capacity.
func (h *Heap) Clear() {
	for i := range h.items {
		h.items[i].heapIndex = notInHeap
		h.items[i] = nil
	}
	h.items = h.items[:0]
}
