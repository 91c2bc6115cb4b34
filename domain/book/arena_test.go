package book

import "testing"

func TestArenaAllocRelease(t *testing.T) {
	a := newArena(4)

	h1 := a.alloc(Order{ID: 1})
	h2 := a.alloc(Order{ID: 2})

	if a.get(h1).order.ID != 1 || a.get(h2).order.ID != 2 {
		t.Fatal("alloc did not store orders")
	}
	if a.live() != 2 {
		t.Fatalf("live = %d, want 2", a.live())
	}

	a.release(h1)
	if a.live() != 1 {
		t.Fatalf("live after release = %d, want 1", a.live())
	}
}

func TestArenaStaleHandle(t *testing.T) {
	a := newArena(4)

	h := a.alloc(Order{ID: 1})
	a.release(h)

	if a.get(h) != nil {
		t.Fatal("released handle should resolve to nil")
	}

	// Slot reuse must not resurrect the old handle.
	h2 := a.alloc(Order{ID: 2})
	if h2.slot != h.slot {
		t.Fatalf("expected slot reuse, got slot %d then %d", h.slot, h2.slot)
	}
	if a.get(h) != nil {
		t.Fatal("stale handle resolved after slot reuse")
	}
	if a.get(h2).order.ID != 2 {
		t.Fatal("fresh handle did not resolve")
	}
}

func TestArenaGrowthKeepsHandlesValid(t *testing.T) {
	a := newArena(1)

	handles := make([]Handle, 0, 100)
	for i := uint64(0); i < 100; i++ {
		handles = append(handles, a.alloc(Order{ID: i}))
	}
	for i, h := range handles {
		n := a.get(h)
		if n == nil || n.order.ID != uint64(i) {
			t.Fatalf("handle %d invalidated by growth", i)
		}
	}
}

func TestArenaDoubleReleaseIsNoop(t *testing.T) {
	a := newArena(4)
	h := a.alloc(Order{ID: 1})
	a.release(h)
	a.release(h) // stale, must not corrupt the free list

	h2 := a.alloc(Order{ID: 2})
	h3 := a.alloc(Order{ID: 3})
	if a.get(h2).order.ID != 2 || a.get(h3).order.ID != 3 {
		t.Fatal("free list corrupted by double release")
	}
}
