// Package feed implements the notification sinks the book emits trade and
// failure events into: a console presenter, an outbox-backed sink for the
// Kafka pipeline, and the wire form of one event.
package feed

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

// Console writes human-readable event lines to w.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) OnTrade(price decimal.Decimal, qty int64) {
	fmt.Fprintf(c.w, "Trade, price: %s, qty: %d\n", price, qty)
}

func (c *Console) OnBookingFailed() {
	fmt.Fprintln(c.w, "Booking failed: no orders to match")
}
