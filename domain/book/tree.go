package book

// levelTree is an ordered map from price to PriceLevel, backed by a
// red-black tree. One implementation serves both sides: storage is
// always ascending by price, and desc flips which end is "best" and
// which way walk traverses. Bids instantiate with desc=true, asks
// with desc=false.
type levelTree struct {
	root *treeNode
	nil_ *treeNode
	desc bool
	size int
}

type treeNode struct {
	price  float64
	level  *PriceLevel
	red    bool
	left   *treeNode
	right  *treeNode
	parent *treeNode
}

func newLevelTree(desc bool) *levelTree {
	s := &treeNode{}
	s.left, s.right, s.parent = s, s, s
	return &levelTree{root: s, nil_: s, desc: desc}
}

// ---- public surface ----

func (t *levelTree) len() int {
	return t.size
}

func (t *levelTree) find(price float64) *PriceLevel {
	n := t.findNode(price)
	if n == t.nil_ {
		return nil
	}
	return n.level
}

// getOrCreate returns the level at price, creating it lazily. Levels
// are only ever created on first order at a price.
func (t *levelTree) getOrCreate(price float64) *PriceLevel {
	n := t.findNode(price)
	if n != t.nil_ {
		return n.level
	}
	lvl := newPriceLevel(price)
	t.insert(price, lvl)
	return lvl
}

// remove deletes the level at price. The caller guarantees it exists
// and is empty.
func (t *levelTree) remove(price float64) {
	n := t.findNode(price)
	if n == t.nil_ {
		return
	}
	t.deleteNode(n)
	t.size--
}

// best returns the highest-priority level: max price for bids,
// min for asks.
func (t *levelTree) best() *PriceLevel {
	var n *treeNode
	if t.desc {
		n = t.maximum(t.root)
	} else {
		n = t.minimum(t.root)
	}
	if n == t.nil_ {
		return nil
	}
	return n.level
}

// walk visits levels in priority order (best first). Returning false
// stops early.
func (t *levelTree) walk(fn func(*PriceLevel) bool) {
	if t.desc {
		for n := t.maximum(t.root); n != t.nil_; n = t.predecessor(n) {
			if !fn(n.level) {
				return
			}
		}
		return
	}
	for n := t.minimum(t.root); n != t.nil_; n = t.successor(n) {
		if !fn(n.level) {
			return
		}
	}
}

// ---- search helpers ----

func (t *levelTree) findNode(price float64) *treeNode {
	n := t.root
	for n != t.nil_ {
		switch {
		case price < n.price:
			n = n.left
		case price > n.price:
			n = n.right
		default:
			return n
		}
	}
	return t.nil_
}

func (t *levelTree) minimum(n *treeNode) *treeNode {
	for n != t.nil_ && n.left != t.nil_ {
		n = n.left
	}
	return n
}

func (t *levelTree) maximum(n *treeNode) *treeNode {
	for n != t.nil_ && n.right != t.nil_ {
		n = n.right
	}
	return n
}

func (t *levelTree) successor(n *treeNode) *treeNode {
	if n.right != t.nil_ {
		return t.minimum(n.right)
	}
	p := n.parent
	for p != t.nil_ && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *levelTree) predecessor(n *treeNode) *treeNode {
	if n.left != t.nil_ {
		return t.maximum(n.left)
	}
	p := n.parent
	for p != t.nil_ && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

// ---- rotations ----

func (t *levelTree) rotateLeft(x *treeNode) {
	y := x.right
	x.right = y.left
	if y.left != t.nil_ {
		y.left.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.nil_:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *levelTree) rotateRight(x *treeNode) {
	y := x.left
	x.left = y.right
	if y.right != t.nil_ {
		y.right.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.nil_:
		t.root = y
	case x == x.parent.right:
		x.parent.right = y
	default:
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

// ---- insertion ----

func (t *levelTree) insert(price float64, lvl *PriceLevel) {
	z := &treeNode{
		price:  price,
		level:  lvl,
		red:    true,
		left:   t.nil_,
		right:  t.nil_,
		parent: t.nil_,
	}

	y := t.nil_
	x := t.root
	for x != t.nil_ {
		y = x
		if price < x.price {
			x = x.left
		} else {
			x = x.right
		}
	}
	z.parent = y
	switch {
	case y == t.nil_:
		t.root = z
	case price < y.price:
		y.left = z
	default:
		y.right = z
	}

	t.insertFixup(z)
	t.size++
}

func (t *levelTree) insertFixup(z *treeNode) {
	for z.parent.red {
		if z.parent == z.parent.parent.left {
			u := z.parent.parent.right
			if u.red {
				z.parent.red = false
				u.red = false
				z.parent.parent.red = true
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.rotateLeft(z)
				}
				z.parent.red = false
				z.parent.parent.red = true
				t.rotateRight(z.parent.parent)
			}
		} else {
			u := z.parent.parent.left
			if u.red {
				z.parent.red = false
				u.red = false
				z.parent.parent.red = true
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rotateRight(z)
				}
				z.parent.red = false
				z.parent.parent.red = true
				t.rotateLeft(z.parent.parent)
			}
		}
	}
	t.root.red = false
}

// ---- deletion ----

func (t *levelTree) transplant(u, v *treeNode) {
	switch {
	case u.parent == t.nil_:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *levelTree) deleteNode(z *treeNode) {
	y := z
	yWasRed := y.red
	var x *treeNode

	switch {
	case z.left == t.nil_:
		x = z.right
		t.transplant(z, z.right)
	case z.right == t.nil_:
		x = z.left
		t.transplant(z, z.left)
	default:
		y = t.minimum(z.right)
		yWasRed = y.red
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.red = z.red
	}

	if !yWasRed {
		t.deleteFixup(x)
	}
}

func (t *levelTree) deleteFixup(x *treeNode) {
	for x != t.root && !x.red {
		if x == x.parent.left {
			w := x.parent.right
			if w.red {
				w.red = false
				x.parent.red = true
				t.rotateLeft(x.parent)
				w = x.parent.right
			}
			if !w.left.red && !w.right.red {
				w.red = true
				x = x.parent
			} else {
				if !w.right.red {
					w.left.red = false
					w.red = true
					t.rotateRight(w)
					w = x.parent.right
				}
				w.red = x.parent.red
				x.parent.red = false
				w.right.red = false
				t.rotateLeft(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.red {
				w.red = false
				x.parent.red = true
				t.rotateRight(x.parent)
				w = x.parent.left
			}
			if !w.right.red && !w.left.red {
				w.red = true
				x = x.parent
			} else {
				if !w.left.red {
					w.right.red = false
					w.red = true
					t.rotateLeft(w)
					w = x.parent.left
				}
				w.red = x.parent.red
				x.parent.red = false
				w.left.red = false
				t.rotateRight(x.parent)
				x = t.root
			}
		}
	}
	x.red = false
}
