package book

import "github.com/shopspring/decimal"

// EventSink receives the matching procedure's observable side effects.
type EventSink interface {
	// OnTrade reports one fill application: the price traded at and the
	// aggregate quantity matched there.
	OnTrade(price decimal.Decimal, qty int64)
	// OnBookingFailed reports a market order arriving against an empty
	// opposing side.
	OnBookingFailed()
}

// OrderBook owns one bid side and one ask side and runs the matching
// algorithm between them.
type OrderBook struct {
	bid    *BookSide
	ask    *BookSide
	events EventSink
}

func New(events EventSink) *OrderBook {
	return &OrderBook{
		bid:    NewBookSide(Bid),
		ask:    NewBookSide(Ask),
		events: events,
	}
}

func (b *OrderBook) Bids() *BookSide { return b.bid }
func (b *OrderBook) Asks() *BookSide { return b.ask }

// Submit processes one incoming order to completion: fully matched and
// discarded, booked untouched, or partially matched and then booked
// (market remainders are dropped instead of booked).
func (b *OrderBook) Submit(o *Order) {
	if o.Kind == Limit {
		b.processLimit(o)
	} else {
		b.processMarket(o)
	}
}

// sides returns the side o would rest on and the side it matches against.
func (b *OrderBook) sides(o *Order) (own, opp *BookSide) {
	if o.Side == Bid {
		return b.bid, b.ask
	}
	return b.ask, b.bid
}

// priceWorse reports whether o's limit price no longer reaches lvl: a buy
// priced below the ask, a sell priced above the bid.
func priceWorse(o *Order, lvl *PriceLevel) bool {
	if o.Side == Bid {
		return o.Price.LessThan(lvl.Price)
	}
	return o.Price.GreaterThan(lvl.Price)
}

func (b *OrderBook) processLimit(o *Order) {
	own, opp := b.sides(o)
	if opp.TotalQty() == 0 {
		own.Register(o, false)
		return
	}
	lvl := opp.Best()
	for o.Qty > 0 {
		if lvl == nil || priceWorse(o, lvl) {
			own.Register(o, false)
			return
		}
		next := opp.NextBest(lvl)
		o = b.crossLimit(o, lvl)
		lvl = next
	}
}

func (b *OrderBook) processMarket(o *Order) {
	_, opp := b.sides(o)
	lvl := opp.Best()
	if lvl == nil {
		b.events.OnBookingFailed()
		return
	}
	for o.Qty > 0 && lvl != nil {
		next := opp.NextBest(lvl)
		o = b.matchAtLevel(o, lvl)
		lvl = next
	}
	// Market orders never rest: an unfilled remainder is dropped.
}

// crossLimit trades a crossing limit order against one opposing level.
//
// At equal prices this is ordinary FIFO matching. At a genuine price
// improvement the queue is scanned for the first resting order whose
// notional value and quantity both differ from the incoming order's; the
// party with the larger notional absorbs the smaller one entirely and
// keeps trading its remainder at the blended price deltaNotional/deltaQty.
// Without such a counterparty the order passes through the level
// untouched; the pass-through has no FIFO fallback.
func (b *OrderBook) crossLimit(o *Order, lvl *PriceLevel) *Order {
	if o.Price.Equal(lvl.Price) {
		return b.matchAtLevel(o, lvl)
	}
	_, opp := b.sides(o)

	cp := lvl.Head()
	for cp != nil && (cp.Total().Equal(o.Total()) || cp.Qty == o.Qty) {
		cp = cp.Next()
	}
	if cp == nil {
		return o
	}

	deltaQty := cp.Qty - o.Qty
	if deltaQty < 0 {
		deltaQty = -deltaQty
	}
	deltaTotal := cp.Total().Sub(o.Total()).Abs()
	blended := deltaTotal.Div(decimal.NewFromInt(deltaQty))

	if cp.Total().GreaterThan(o.Total()) {
		// The resting order absorbs the incoming one and moves to its
		// blended price without losing time priority.
		b.events.OnTrade(o.Price, o.Qty)
		opp.Unbook(cp, lvl)
		cp.Price = blended
		cp.Qty = deltaQty
		opp.Register(cp, true)
		o.Qty = 0
	} else {
		// The incoming order absorbs the resting one and keeps trading
		// its remainder at the blended price.
		b.events.OnTrade(cp.Price, cp.Qty)
		opp.Unbook(cp, lvl)
		o.Price = blended
		o.Qty = deltaQty
	}
	return o
}

// matchAtLevel exhausts a level against the order front to back and emits
// one aggregate trade event for the whole level.
func (b *OrderBook) matchAtLevel(o *Order, lvl *PriceLevel) *Order {
	_, opp := b.sides(o)
	traded := lvl.Fill(o.Qty)
	o.Qty -= traded
	opp.reduce(traded)
	if lvl.TotalQty() == 0 {
		opp.RemoveLevel(lvl)
	}
	b.events.OnTrade(lvl.Price, traded)
	return o
}
