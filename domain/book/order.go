package book

import "github.com/shopspring/decimal"

// Side of the market an order belongs to.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	if s == Bid {
		return "bid"
	}
	return "ask"
}

// Opposite returns the side an order matches against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// Kind distinguishes resting-capable limit orders from market orders,
// which never rest.
type Kind int

const (
	Limit Kind = iota
	Market
)

func (k Kind) String() string {
	if k == Limit {
		return "limit"
	}
	return "market"
}

// Order is the atomic unit of trading intent. Price is defined only for
// limit orders. Qty is mutated in place as fills occur; an order reaching
// zero quantity leaves every structure and is discarded, never reused.
//
// The queue links are owned by the PriceLevel currently holding the order;
// nothing outside this package touches them.
type Order struct {
	Side  Side
	Kind  Kind
	Price decimal.Decimal
	Qty   int64

	// Seq is the arrival sequence, the sole tie-breaker for time
	// priority among orders at the same price.
	Seq uint64

	next *Order
	prev *Order
}

// Total returns the order's notional value, price times quantity.
func (o *Order) Total() decimal.Decimal {
	return o.Price.Mul(decimal.NewFromInt(o.Qty))
}

// Next returns the order behind o in its level's queue, for read-only
// traversal.
func (o *Order) Next() *Order {
	return o.next
}
