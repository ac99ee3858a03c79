package feed

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"matchbook/infra/outbox"
)

// OutboxSink hands events to a delivery outbox instead of presenting
// them; the broadcaster drains them to Kafka asynchronously. A failed
// append is logged and the event is lost, never blocking matching.
type OutboxSink struct {
	out *outbox.Outbox
	log *logrus.Logger
}

func NewOutboxSink(out *outbox.Outbox, log *logrus.Logger) *OutboxSink {
	return &OutboxSink{out: out, log: log}
}

func (s *OutboxSink) OnTrade(price decimal.Decimal, qty int64) {
	e := newEvent(TypeTrade)
	e.Price = price
	e.Qty = qty
	s.put(e)
}

func (s *OutboxSink) OnBookingFailed() {
	s.put(newEvent(TypeBookingFailed))
}

func (s *OutboxSink) put(e Event) {
	payload, err := e.Encode()
	if err != nil {
		s.log.WithError(err).WithField("event", e.Type).Error("event encode failed")
		return
	}
	if _, err := s.out.Put(payload); err != nil {
		s.log.WithError(err).WithField("event", e.Type).Error("outbox append failed")
	}
}
