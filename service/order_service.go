// Package service is the single write entry point into the book. It
// serializes submissions, assigns arrival sequences and keeps the intake
// loop alive across malformed input.
package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"matchbook/domain/book"
	"matchbook/domain/quote"
	"matchbook/infra/intake"
	"matchbook/infra/sequence"
)

type OrderService struct {
	mu   sync.Mutex
	book *book.OrderBook
	seq  *sequence.Sequencer
	log  *logrus.Logger
}

func New(b *book.OrderBook, seq *sequence.Sequencer, log *logrus.Logger) *OrderService {
	return &OrderService{book: b, seq: seq, log: log}
}

// Place parses one quote line and submits the resulting order. The
// returned sequence is zero when the line was rejected.
func (s *OrderService) Place(line string) (uint64, error) {
	q, err := quote.Parse(line)
	if err != nil {
		s.log.WithError(err).WithField("line", line).Warn("quote rejected")
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	seq := s.seq.Next()
	s.book.Submit(q.Order(seq))
	return seq, nil
}

// Run feeds the book from a line source until the stop sentinel, EOF or
// context cancellation. Rejected lines are reported and skipped.
func (s *OrderService) Run(ctx context.Context, src intake.Source) error {
	for {
		line, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if line == quote.Sentinel {
			return nil
		}
		_, _ = s.Place(line)
	}
}

// Level is one aggregated price level in a depth snapshot.
type Level struct {
	Side  book.Side
	Price decimal.Decimal
	Qty   int64
}

// Depth returns both sides' levels from best to worse price.
func (s *OrderService) Depth() (bids, asks []Level) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.book.Bids().Walk(func(l *book.PriceLevel) {
		bids = append(bids, Level{Side: book.Bid, Price: l.Price, Qty: l.TotalQty()})
	})
	s.book.Asks().Walk(func(l *book.PriceLevel) {
		asks = append(asks, Level{Side: book.Ask, Price: l.Price, Qty: l.TotalQty()})
	})
	return bids, asks
}
