package book

// noSlot terminates both the free list and the per-level FIFO links.
const noSlot = ^uint32(0)

// Handle is a generation-checked reference to an arena slot. A handle
// goes stale the moment its order is released; stale handles resolve
// to nil instead of whatever order reused the slot.
type Handle struct {
	slot uint32
	gen  uint32
}

// node is one arena slot: the order plus its intrusive FIFO links.
// Slots are recycled through a free list threaded over next.
type node struct {
	order Order
	gen   uint32
	next  uint32
	prev  uint32
}

// arena is a grow-only slab of order nodes. Orders are referenced by
// Handle everywhere (level FIFOs, the id index), so growth never
// invalidates a live reference.
type arena struct {
	nodes []node
	free  uint32
}

func newArena(capHint int) *arena {
	return &arena{
		nodes: make([]node, 0, capHint),
		free:  noSlot,
	}
}

func (a *arena) alloc(o Order) Handle {
	if a.free != noSlot {
		slot := a.free
		n := &a.nodes[slot]
		a.free = n.next
		n.order = o
		n.next = noSlot
		n.prev = noSlot
		return Handle{slot: slot, gen: n.gen}
	}

	a.nodes = append(a.nodes, node{
		order: o,
		next:  noSlot,
		prev:  noSlot,
	})
	slot := uint32(len(a.nodes) - 1)
	return Handle{slot: slot, gen: 0}
}

// get resolves a handle, or returns nil if the handle is stale or out
// of range.
func (a *arena) get(h Handle) *node {
	if int(h.slot) >= len(a.nodes) {
		return nil
	}
	n := &a.nodes[h.slot]
	if n.gen != h.gen {
		return nil
	}
	return n
}

// release returns the slot to the free list and bumps its generation,
// invalidating every outstanding handle to it.
func (a *arena) release(h Handle) {
	n := a.get(h)
	if n == nil {
		return
	}
	n.gen++
	n.order = Order{}
	n.prev = noSlot
	n.next = a.free
	a.free = h.slot
}

// live reports how many slots currently hold an order.
func (a *arena) live() int {
	total := len(a.nodes)
	for f := a.free; f != noSlot; f = a.nodes[f].next {
		total--
	}
	return total
}
