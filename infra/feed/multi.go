package feed

import (
	"github.com/shopspring/decimal"

	"matchbook/domain/book"
)

// Multi fans one event out to several sinks in order.
type Multi []book.EventSink

func (m Multi) OnTrade(price decimal.Decimal, qty int64) {
	for _, s := range m {
		s.OnTrade(price, qty)
	}
}

func (m Multi) OnBookingFailed() {
	for _, s := range m {
		s.OnBookingFailed()
	}
}
