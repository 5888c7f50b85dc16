package nav

import (
	"math/rand"
	"testing"
)

func newKeyed(g, h int) *Cell {
	return &Cell{G: g, H: h, heapIndex: notInHeap}
}

func keyLess(a, b *Cell) bool {
	if a.F() != b.F() {
		return a.F() < b.F()
	}
	return a.H < b.H
}

func TestHeapExtractsInOrder(t *testing.T) {
	cases := []struct {
		name string
		n    int
		seed int64
	}{
		{"single", 1, 1},
		{"small", 7, 2},
		{"ties", 64, 3},
		{"large", 500, 4},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := rand.New(rand.NewSource(c.seed))
			h := NewHeap(c.n)
			for i := 0; i < c.n; i++ {
				// narrow key range forces plenty of f ties
				h.Insert(newKeyed(r.Intn(20), r.Intn(5)))
			}
			if h.Len() != c.n {
				t.Fatalf("expected len %d, got %d", c.n, h.Len())
			}

			var prev *Cell
			for i := 0; i < c.n; i++ {
				cur := h.ExtractMin()
				if prev != nil && keyLess(cur, prev) {
					t.Fatalf("extract %d out of order: (%d,%d) after (%d,%d)", i, cur.F(), cur.H, prev.F(), prev.H)
				}
				if h.Contains(cur) {
					t.Fatalf("extracted cell still reported as contained")
				}
				prev = cur
			}
			if h.Len() != 0 {
				t.Fatalf("expected empty heap, got %d", h.Len())
			}
		})
	}
}

func TestHeapTieBreaksOnH(t *testing.T) {
	h := NewHeap(3)
	far := newKeyed(10, 20)
	near := newKeyed(25, 5)
	mid := newKeyed(20, 10)
	h.Insert(far)
	h.Insert(mid)
	h.Insert(near)

	want := []*Cell{near, mid, far}
	for i, w := range want {
		if got := h.ExtractMin(); got != w {
			t.Fatalf("extract %d: expected h=%d, got h=%d", i, w.H, got.H)
		}
	}
}

func TestHeapUpdateItem(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Cell)
	}{
		{"decrease_to_min", func(c *Cell) { c.G = -100 }},
		{"increase_to_max", func(c *Cell) { c.G = 1000 }},
		{"unchanged", func(c *Cell) {}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := rand.New(rand.NewSource(42))
			h := NewHeap(50)
			cells := make([]*Cell, 0, 50)
			for i := 0; i < 50; i++ {
				c := newKeyed(r.Intn(100), r.Intn(10))
				cells = append(cells, c)
				h.Insert(c)
			}

			target := cells[17]
			tc.mutate(target)
			h.UpdateItem(target)

			for _, c := range cells {
				if !h.Contains(c) {
					t.Fatalf("cell lost after update")
				}
			}

			var prev *Cell
			for h.Len() > 0 {
				cur := h.ExtractMin()
				if prev != nil && keyLess(cur, prev) {
					t.Fatalf("heap order broken after update")
				}
				prev = cur
			}
		})
	}
}

func TestHeapContainsTracksMembership(t *testing.T) {
	a, b := newKeyed(1, 0), newKeyed(2, 0)
	other := NewHeap(2)
	h := NewHeap(2)

	if h.Contains(a) {
		t.Fatalf("empty heap should not contain a")
	}
	h.Insert(a)
	other.Insert(b)
	if !h.Contains(a) || h.Contains(b) {
		t.Fatalf("membership wrong after inserts")
	}
	h.Clear()
	if h.Contains(a) || h.Len() != 0 {
		t.Fatalf("clear should drop membership")
	}
	if !other.Contains(b) {
		t.Fatalf("clearing one heap must not affect another")
	}
}

func TestHeapMisuse(t *testing.T) {
	t.Run("extract_empty", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic")
			}
		}()
		NewHeap(1).ExtractMin()
	})
	t.Run("insert_past_capacity", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic")
			}
		}()
		h := NewHeap(1)
		h.Insert(newKeyed(1, 1))
		h.Insert(newKeyed(2, 2))
	})
	t.Run("update_foreign_cell", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic")
			}
		}()
		h, other := NewHeap(2), NewHeap(2)
		c := newKeyed(1, 1)
		other.Insert(c)
		h.Insert(newKeyed(2, 2))
		h.UpdateItem(c)
	})
}
