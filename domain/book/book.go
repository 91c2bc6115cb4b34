package book

import "errors"

// ErrDuplicateID rejects an Add whose id is already resting. Silently
// overwriting the id index would orphan the earlier queue entry and
// corrupt the level aggregate, so the book refuses instead.
var ErrDuplicateID = errors.New("book: order id already resting")

// location is the id-index entry: enough to reach an order's level
// and queue position without scanning either side.
type location struct {
	side   Side
	price  float64
	handle Handle
}

// Book is the order book for a single instrument. One instance per
// instrument; construct explicitly with New.
type Book struct {
	bids *levelTree
	asks *levelTree

	arena     *arena
	locations map[uint64]location
}

func New() *Book {
	return &Book{
		bids:      newLevelTree(true),
		asks:      newLevelTree(false),
		arena:     newArena(1024),
		locations: make(map[uint64]location, 1024),
	}
}

func (b *Book) side(s Side) *levelTree {
	if s == Buy {
		return b.bids
	}
	return b.asks
}

// Add rests a new order. The order joins the back of its price
// level's queue; the level is created lazily on first use.
func (b *Book) Add(o Order) error {
	if _, dup := b.locations[o.ID]; dup {
		return ErrDuplicateID
	}

	h := b.arena.alloc(o)
	lvl := b.side(o.Side).getOrCreate(o.Price)
	lvl.enqueue(b.arena, h)

	b.locations[o.ID] = location{
		side:   o.Side,
		price:  o.Price,
		handle: h,
	}
	return nil
}

// Cancel removes a resting order. Unknown ids return false and leave
// every structure untouched; callers may race a cancel against their
// own amend or a fill upstream, so this is a no-op, not an error.
func (b *Book) Cancel(id uint64) bool {
	loc, ok := b.locations[id]
	if !ok {
		return false
	}
	b.removeAt(id, loc)
	return true
}

// Amend updates a resting order in place when only the quantity
// changes, preserving its queue position. A price change is a cancel
// plus re-add at the new price: the order keeps its id and entry time
// but joins the back of the destination queue, forfeiting time
// priority.
func (b *Book) Amend(id uint64, newPrice float64, newQty uint64) bool {
	loc, ok := b.locations[id]
	if !ok {
		return false
	}

	n := b.arena.get(loc.handle)

	if loc.price == newPrice {
		lvl := b.side(loc.side).find(loc.price)
		lvl.TotalQty -= n.order.Qty
		lvl.TotalQty += newQty
		n.order.Qty = newQty
		return true
	}

	moved := n.order
	moved.Price = newPrice
	moved.Qty = newQty

	b.removeAt(id, loc)
	// Re-add cannot collide: the id was just removed.
	_ = b.Add(moved)
	return true
}

// removeAt unlinks the order, drops its level if that emptied it, and
// erases the id-index entry.
func (b *Book) removeAt(id uint64, loc location) {
	tree := b.side(loc.side)
	lvl := tree.find(loc.price)

	lvl.unlink(b.arena, loc.handle)
	if lvl.empty() {
		tree.remove(loc.price)
	}

	b.arena.release(loc.handle)
	delete(b.locations, id)
}

// Snapshot returns up to depth aggregated levels per side, best
// first: bids descending, asks ascending. Depth beyond the available
// levels clamps; depth <= 0 yields empty sides. Read-only.
func (b *Book) Snapshot(depth int) (bids, asks []Level) {
	if depth <= 0 {
		return nil, nil
	}
	bids = b.collect(b.bids, depth)
	asks = b.collect(b.asks, depth)
	return bids, asks
}

func (b *Book) collect(t *levelTree, depth int) []Level {
	n := t.len()
	if n > depth {
		n = depth
	}
	out := make([]Level, 0, n)
	t.walk(func(lvl *PriceLevel) bool {
		out = append(out, Level{Price: lvl.Price, TotalQty: lvl.TotalQty})
		return len(out) < depth
	})
	return out
}

// Len is the number of resting orders across both sides.
func (b *Book) Len() int {
	return len(b.locations)
}

// Depth returns the number of non-empty price levels per side.
func (b *Book) Depth() (bidLevels, askLevels int) {
	return b.bids.len(), b.asks.len()
}

// BestBid returns the highest bid level, if any.
func (b *Book) BestBid() (Level, bool) {
	return bestOf(b.bids)
}

// BestAsk returns the lowest ask level, if any.
func (b *Book) BestAsk() (Level, bool) {
	return bestOf(b.asks)
}

func bestOf(t *levelTree) (Level, bool) {
	lvl := t.best()
	if lvl == nil {
		return Level{}, false
	}
	return Level{Price: lvl.Price, TotalQty: lvl.TotalQty}, true
}

// WalkOrders visits every resting order on one side, levels in
// priority order and FIFO within each level. Returning false stops
// the walk. Used by the snapshot writer; read-only.
func (b *Book) WalkOrders(s Side, fn func(o Order) bool) {
	a := b.arena
	b.side(s).walk(func(lvl *PriceLevel) bool {
		return lvl.walk(a, fn)
	})
}
