// Package quote parses order-describing lines into structured order
// descriptors for the book.
package quote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"matchbook/domain/book"
)

// Sentinel is the input line that ends a trading session. Unlike the
// order keywords it is matched case-sensitively.
const Sentinel = "stop"

var (
	ErrTokenCount = errors.New("quote: wrong number of tokens")
	ErrKind       = errors.New("quote: unknown order type")
	ErrSide       = errors.New("quote: unknown side")
	ErrPrice      = errors.New("quote: invalid price")
	ErrQty        = errors.New("quote: invalid quantity")
)

// Quote is one parsed order line.
type Quote struct {
	Side  book.Side
	Kind  book.Kind
	Price decimal.Decimal
	Qty   int64
}

// Parse reads one order line of the form
//
//	<limit|market> <buy|sell> [price] <qty>
//
// Keywords are case-insensitive; price is present only for limit orders.
// A malformed line is a recoverable error, never fatal to the caller's
// read loop.
func Parse(line string) (Quote, error) {
	var q Quote
	tokens := strings.Fields(strings.ToLower(line))
	if len(tokens) == 0 {
		return q, fmt.Errorf("%w: empty line", ErrTokenCount)
	}

	switch tokens[0] {
	case "limit":
		q.Kind = book.Limit
	case "market":
		q.Kind = book.Market
	default:
		return q, fmt.Errorf("%w: %q", ErrKind, tokens[0])
	}

	want := 3
	if q.Kind == book.Limit {
		want = 4
	}
	if len(tokens) != want {
		return q, fmt.Errorf("%w: got %d, want %d", ErrTokenCount, len(tokens), want)
	}

	switch tokens[1] {
	case "buy":
		q.Side = book.Bid
	case "sell":
		q.Side = book.Ask
	default:
		return q, fmt.Errorf("%w: %q", ErrSide, tokens[1])
	}

	if q.Kind == book.Limit {
		price, err := decimal.NewFromString(tokens[2])
		if err != nil || price.Sign() <= 0 {
			return q, fmt.Errorf("%w: %q", ErrPrice, tokens[2])
		}
		q.Price = price
	}

	qty, err := strconv.ParseInt(tokens[len(tokens)-1], 10, 64)
	if err != nil || qty <= 0 {
		return q, fmt.Errorf("%w: %q", ErrQty, tokens[len(tokens)-1])
	}
	q.Qty = qty

	return q, nil
}

// Order materializes the quote as a book order carrying the given arrival
// sequence.
func (q Quote) Order(seq uint64) *book.Order {
	return &book.Order{
		Side:  q.Side,
		Kind:  q.Kind,
		Price: q.Price,
		Qty:   q.Qty,
		Seq:   seq,
	}
}
