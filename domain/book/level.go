package book

// PriceLevel is the FIFO queue of resting orders at one exact price.
// The queue is a doubly linked list of arena slots: append at the
// tail, unlink anywhere in O(1) by handle. TotalQty is maintained
// incrementally and is always the exact sum of the queued quantities.
type PriceLevel struct {
	Price      float64
	TotalQty   uint64
	OrderCount int

	head uint32
	tail uint32
}

func newPriceLevel(price float64) *PriceLevel {
	return &PriceLevel{
		Price: price,
		head:  noSlot,
		tail:  noSlot,
	}
}

// enqueue appends at the tail. Later arrival, further back: this is
// the whole time-priority encoding.
func (l *PriceLevel) enqueue(a *arena, h Handle) {
	n := a.get(h)
	n.prev = l.tail
	n.next = noSlot

	if l.tail == noSlot {
		l.head = h.slot
	} else {
		a.nodes[l.tail].next = h.slot
	}
	l.tail = h.slot

	l.TotalQty += n.order.Qty
	l.OrderCount++
}

// unlink removes the order at h from any position without scanning.
// Relative order of the remaining queue is untouched.
func (l *PriceLevel) unlink(a *arena, h Handle) {
	n := a.get(h)

	if n.prev == noSlot {
		l.head = n.next
	} else {
		a.nodes[n.prev].next = n.next
	}
	if n.next == noSlot {
		l.tail = n.prev
	} else {
		a.nodes[n.next].prev = n.prev
	}
	n.prev = noSlot
	n.next = noSlot

	l.TotalQty -= n.order.Qty
	l.OrderCount--
}

func (l *PriceLevel) empty() bool {
	return l.head == noSlot
}

// walk visits the queue front to back. Returning false stops early.
func (l *PriceLevel) walk(a *arena, fn func(o Order) bool) bool {
	for slot := l.head; slot != noSlot; {
		n := &a.nodes[slot]
		if !fn(n.order) {
			return false
		}
		slot = n.next
	}
	return true
}
