package book

import "github.com/shopspring/decimal"

// PriceLevel holds every resting order at one exact price on one side of
// the market, as a FIFO queue. It doubles as a node of its side's search
// tree. totalQty is a maintained counter, always equal to the live sum of
// the queued orders' quantities.
type PriceLevel struct {
	Price decimal.Decimal
	Side  Side

	head *Order
	tail *Order

	totalQty int64

	left   *PriceLevel
	right  *PriceLevel
	parent *PriceLevel
}

// newLevel creates a level seeded with its first resting order.
func newLevel(o *Order) *PriceLevel {
	return &PriceLevel{
		Price:    o.Price,
		Side:     o.Side,
		head:     o,
		tail:     o,
		totalQty: o.Qty,
	}
}

// Enqueue appends o to the back of the queue.
func (l *PriceLevel) Enqueue(o *Order) {
	if l.head == nil {
		l.head = o
		l.tail = o
	} else {
		l.tail.next = o
		o.prev = l.tail
		l.tail = o
	}
	l.totalQty += o.Qty
}

// Dequeue removes and returns the order at the front of the queue.
// Calling it on an empty level is a programming error.
func (l *PriceLevel) Dequeue() *Order {
	o := l.head
	if o == nil {
		panic("book: dequeue on empty price level")
	}
	l.head = o.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	o.next = nil
	o.prev = nil
	l.totalQty -= o.Qty
	return o
}

// InsertByArrival splices o into the queue keeping arrival order
// non-decreasing from head to tail. Used only when a partially filled
// order is moved back into the book, so it does not jump ahead of peers
// that arrived earlier at its new price.
func (l *PriceLevel) InsertByArrival(o *Order) {
	if l.head == nil || o.Seq >= l.tail.Seq {
		l.Enqueue(o)
		return
	}
	cur := l.head
	for cur.Seq <= o.Seq {
		cur = cur.next
	}
	// o.Seq < tail.Seq, so cur stopped at a later arrival.
	o.next = cur
	o.prev = cur.prev
	if cur.prev != nil {
		cur.prev.next = o
	} else {
		l.head = o
	}
	cur.prev = o
	l.totalQty += o.Qty
}

// Remove unlinks a specific order from anywhere in the queue, identified
// by identity. The order must be in this level.
func (l *PriceLevel) Remove(o *Order) {
	if o == l.head {
		l.Dequeue()
		return
	}
	cur := l.head
	for cur != nil && cur != o {
		cur = cur.next
	}
	if cur == nil {
		panic("book: removing order not in level")
	}
	cur.prev.next = cur.next
	if cur.next != nil {
		cur.next.prev = cur.prev
	} else {
		l.tail = cur.prev
	}
	o.next = nil
	o.prev = nil
	l.totalQty -= o.Qty
}

// Fill consumes queued quantity front to back, up to want, and returns
// how much it traded. Fully consumed orders leave the queue; a partially
// consumed order is reduced in place and keeps its position.
func (l *PriceLevel) Fill(want int64) int64 {
	var traded int64
	for l.head != nil && want > 0 {
		rest := l.head
		if rest.Qty <= want {
			l.Dequeue()
			traded += rest.Qty
			want -= rest.Qty
		} else {
			rest.Qty -= want
			l.totalQty -= want
			traded += want
			want = 0
		}
	}
	return traded
}

// Empty reports whether the queue holds no orders.
func (l *PriceLevel) Empty() bool {
	return l.head == nil
}

// TotalQty returns the level's resting quantity.
func (l *PriceLevel) TotalQty() int64 {
	return l.totalQty
}

// Head returns the front of the queue for read-only traversal.
func (l *PriceLevel) Head() *Order {
	return l.head
}
