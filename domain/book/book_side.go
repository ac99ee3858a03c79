package book

// BookSide is one side of the market: an unbalanced binary search tree of
// price levels keyed by price. Distinct prices are rare relative to
// orders, so the tree gives O(height) price navigation while per-order
// queueing stays O(1). No rebalancing is performed; adversarial price
// sequences degrade to O(levels).
//
// totalQty is a maintained counter equal to the sum of all level totals
// between operations.
type BookSide struct {
	root     *PriceLevel
	side     Side
	totalQty int64
}

func NewBookSide(side Side) *BookSide {
	return &BookSide{side: side}
}

func (s *BookSide) Side() Side {
	return s.side
}

// TotalQty returns the side's aggregate resting quantity.
func (s *BookSide) TotalQty() int64 {
	return s.totalQty
}

// Register books a limit order on this side, creating its price level if
// none exists yet. With preserveTime the order is spliced into an existing
// queue by arrival sequence instead of appended, so a reallocated order
// keeps its time priority relative to same-price peers.
func (s *BookSide) Register(o *Order, preserveTime bool) {
	s.totalQty += o.Qty
	if s.root == nil {
		s.root = newLevel(o)
		return
	}
	cur := s.root
	var parent *PriceLevel
	for cur != nil {
		parent = cur
		switch {
		case o.Price.LessThan(cur.Price):
			cur = cur.left
		case o.Price.GreaterThan(cur.Price):
			cur = cur.right
		default:
			if preserveTime {
				cur.InsertByArrival(o)
			} else {
				cur.Enqueue(o)
			}
			return
		}
	}
	lvl := newLevel(o)
	lvl.parent = parent
	if o.Price.LessThan(parent.Price) {
		parent.left = lvl
	} else {
		parent.right = lvl
	}
}

// Min returns the lowest-priced level of the subtree rooted at start, or
// of the whole side when start is nil. Nil when the side is empty.
func (s *BookSide) Min(start *PriceLevel) *PriceLevel {
	lvl := start
	if lvl == nil {
		lvl = s.root
	}
	if lvl == nil {
		return nil
	}
	for lvl.left != nil {
		lvl = lvl.left
	}
	return lvl
}

// Max is the mirror of Min: the highest-priced level.
func (s *BookSide) Max(start *PriceLevel) *PriceLevel {
	lvl := start
	if lvl == nil {
		lvl = s.root
	}
	if lvl == nil {
		return nil
	}
	for lvl.right != nil {
		lvl = lvl.right
	}
	return lvl
}

// Best returns this side's matching priority extreme: the highest bid or
// the lowest ask.
func (s *BookSide) Best() *PriceLevel {
	if s.side == Bid {
		return s.Max(nil)
	}
	return s.Min(nil)
}

// Successor returns the next level in ascending price order, or nil.
func (s *BookSide) Successor(lvl *PriceLevel) *PriceLevel {
	if lvl == nil {
		return nil
	}
	if lvl.right != nil {
		return s.Min(lvl.right)
	}
	next := lvl.parent
	for next != nil && lvl == next.right {
		lvl = next
		next = next.parent
	}
	return next
}

// Predecessor returns the next level in descending price order, or nil.
func (s *BookSide) Predecessor(lvl *PriceLevel) *PriceLevel {
	if lvl == nil {
		return nil
	}
	if lvl.left != nil {
		return s.Max(lvl.left)
	}
	next := lvl.parent
	for next != nil && lvl == next.left {
		lvl = next
		next = next.parent
	}
	return next
}

// NextBest advances from better to worse prices: ascending on the ask
// side, descending on the bid side. Callers advance before deleting the
// current level.
func (s *BookSide) NextBest(lvl *PriceLevel) *PriceLevel {
	if s.side == Bid {
		return s.Predecessor(lvl)
	}
	return s.Successor(lvl)
}

// replace rewires lvl's parent to point at sub instead, making the side
// rootless when lvl is the root and sub is nil. lvl's own child links are
// left untouched; this is the low-level primitive for deletion only.
func (s *BookSide) replace(lvl, sub *PriceLevel) {
	if lvl == nil {
		return
	}
	if lvl.parent == nil {
		s.root = sub
	} else if lvl == lvl.parent.left {
		lvl.parent.left = sub
	} else {
		lvl.parent.right = sub
	}
	if sub != nil {
		sub.parent = lvl.parent
	}
}

// RemoveLevel deletes a level from the tree by standard BST deletion.
// It must be invoked exactly when the level's queue becomes empty.
func (s *BookSide) RemoveLevel(lvl *PriceLevel) {
	if !lvl.Empty() {
		panic("book: removing price level that still holds orders")
	}
	switch {
	case lvl.left == nil:
		s.replace(lvl, lvl.right)
	case lvl.right == nil:
		s.replace(lvl, lvl.left)
	default:
		succ := s.Successor(lvl)
		if succ.parent != lvl {
			s.replace(succ, succ.right)
			succ.right = lvl.right
			succ.right.parent = succ
		}
		s.replace(lvl, succ)
		succ.left = lvl.left
		succ.left.parent = succ
	}
	lvl.left, lvl.right, lvl.parent = nil, nil, nil
}

// Unbook moves a resting order out of the book entirely: it leaves its
// level's queue, the side total drops by its quantity, and the level is
// deleted if the order was the last one in it.
func (s *BookSide) Unbook(o *Order, lvl *PriceLevel) {
	lvl.Remove(o)
	s.totalQty -= o.Qty
	if lvl.Empty() {
		s.RemoveLevel(lvl)
	}
}

// reduce records quantity matched away from this side.
func (s *BookSide) reduce(qty int64) {
	s.totalQty -= qty
}

// Walk visits every level from best to worse price.
func (s *BookSide) Walk(fn func(*PriceLevel)) {
	for lvl := s.Best(); lvl != nil; lvl = s.NextBest(lvl) {
		fn(lvl)
	}
}
