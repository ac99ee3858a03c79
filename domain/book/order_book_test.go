package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type trade struct {
	price decimal.Decimal
	qty   int64
}

type recordingSink struct {
	trades        []trade
	bookingFailed int
}

func (r *recordingSink) OnTrade(price decimal.Decimal, qty int64) {
	r.trades = append(r.trades, trade{price: price, qty: qty})
}

func (r *recordingSink) OnBookingFailed() {
	r.bookingFailed++
}

// submitter numbers arrivals the way the intake loop would.
type submitter struct {
	b   *OrderBook
	seq uint64
}

func newTestBook() (*submitter, *recordingSink) {
	sink := &recordingSink{}
	return &submitter{b: New(sink)}, sink
}

func (s *submitter) limit(side Side, price string, qty int64) {
	s.seq++
	s.b.Submit(&Order{Side: side, Kind: Limit, Price: dec(price), Qty: qty, Seq: s.seq})
}

func (s *submitter) market(side Side, qty int64) {
	s.seq++
	s.b.Submit(&Order{Side: side, Kind: Market, Qty: qty, Seq: s.seq})
}

func requireTrades(t *testing.T, sink *recordingSink, want ...trade) {
	t.Helper()
	require.Len(t, sink.trades, len(want))
	for i, w := range want {
		require.True(t, w.price.Equal(sink.trades[i].price),
			"trade %d price: want %s, got %s", i, w.price, sink.trades[i].price)
		require.Equal(t, w.qty, sink.trades[i].qty, "trade %d qty", i)
	}
}

// requireConsistent checks the maintained counters against the live
// structures: every level total equals the sum of its queue, every side
// total equals the sum of its levels, and nothing rests with qty <= 0.
func requireConsistent(t *testing.T, b *OrderBook) {
	t.Helper()
	for _, side := range []*BookSide{b.Bids(), b.Asks()} {
		var sum int64
		side.Walk(func(l *PriceLevel) {
			require.False(t, l.Empty())
			var lvlSum int64
			for o := l.Head(); o != nil; o = o.Next() {
				require.Positive(t, o.Qty)
				require.True(t, o.Price.Equal(l.Price))
				require.Equal(t, l.Side, o.Side)
				lvlSum += o.Qty
			}
			require.Equal(t, lvlSum, l.TotalQty())
			sum += lvlSum
		})
		require.Equal(t, sum, side.TotalQty())
	}
}

func TestMatchingEqualPriceFullFill(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Bid, "10", 5)
	s.limit(Ask, "10", 5)

	requireTrades(t, sink, trade{dec("10"), 5})
	require.Equal(t, int64(0), s.b.Bids().TotalQty())
	require.Equal(t, int64(0), s.b.Asks().TotalQty())
	requireConsistent(t, s.b)
}

func TestMarketPartialAgainstRestingLimit(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Bid, "10", 5)
	s.market(Ask, 3)

	requireTrades(t, sink, trade{dec("10"), 3})
	require.Equal(t, int64(2), s.b.Bids().TotalQty())
	require.Equal(t, int64(2), s.b.Bids().Best().Head().Qty)
	requireConsistent(t, s.b)
}

func TestMarketAgainstEmptyBookFails(t *testing.T) {
	s, sink := newTestBook()
	s.market(Ask, 5)

	require.Empty(t, sink.trades)
	require.Equal(t, 1, sink.bookingFailed)
	require.Equal(t, int64(0), s.b.Bids().TotalQty())
	require.Equal(t, int64(0), s.b.Asks().TotalQty())
}

func TestTimePriorityWithinLevel(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Bid, "10", 3) // seq 1
	s.limit(Bid, "10", 4) // seq 2
	s.market(Ask, 3)

	requireTrades(t, sink, trade{dec("10"), 3})

	// The first arrival is fully consumed before the second is touched.
	lvl := s.b.Bids().Best()
	require.Equal(t, uint64(2), lvl.Head().Seq)
	require.Equal(t, int64(4), lvl.Head().Qty)
	requireConsistent(t, s.b)
}

func TestMarketWalksBidLevelsBestToWorse(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Bid, "10", 3)
	s.limit(Bid, "9", 4)
	s.market(Ask, 5)

	requireTrades(t, sink, trade{dec("10"), 3}, trade{dec("9"), 2})
	require.Equal(t, int64(2), s.b.Bids().TotalQty())
	require.Equal(t, "9", s.b.Bids().Best().Price.String())
	requireConsistent(t, s.b)
}

func TestMarketWalksAskLevelsBestToWorse(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Ask, "9", 2)
	s.limit(Ask, "10", 2)
	s.market(Bid, 3)

	requireTrades(t, sink, trade{dec("9"), 2}, trade{dec("10"), 1})
	require.Equal(t, int64(1), s.b.Asks().TotalQty())
	requireConsistent(t, s.b)
}

func TestMarketRemainderIsDropped(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Bid, "10", 2)
	s.market(Ask, 5)

	requireTrades(t, sink, trade{dec("10"), 2})
	require.Zero(t, sink.bookingFailed)
	require.Equal(t, int64(0), s.b.Bids().TotalQty())
	require.Equal(t, int64(0), s.b.Asks().TotalQty())
}

func TestLimitBooksWhenOpposingSideEmpty(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Bid, "10", 5)

	require.Empty(t, sink.trades)
	require.Equal(t, int64(5), s.b.Bids().TotalQty())
	requireConsistent(t, s.b)
}

func TestLimitBooksWhenPriceDoesNotReach(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Ask, "11", 5)
	s.limit(Bid, "10", 5)

	require.Empty(t, sink.trades)
	require.Equal(t, int64(5), s.b.Bids().TotalQty())
	require.Equal(t, int64(5), s.b.Asks().TotalQty())
	requireConsistent(t, s.b)
}

func TestLimitMatchesEqualPriceThenRests(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Ask, "10", 3)
	s.limit(Bid, "10", 5)

	requireTrades(t, sink, trade{dec("10"), 3})
	require.Equal(t, int64(0), s.b.Asks().TotalQty())
	require.Equal(t, int64(2), s.b.Bids().TotalQty())
	require.Equal(t, "10", s.b.Bids().Best().Price.String())
	requireConsistent(t, s.b)
}

// A crossing buy priced above the ask absorbs into the larger resting
// order, which is consumed by the incoming quantity and reallocated at
// the blended price |restingNotional-incomingNotional| / |deltaQty|
// without losing its arrival priority. Untouched levels stay untouched.
func TestLimitCrossRestingOrderLarger(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Ask, "9", 10) // seq 1
	s.limit(Ask, "11", 10)
	s.limit(Bid, "12", 5)

	// The incoming buy is the consumed party: its price and quantity are
	// reported.
	requireTrades(t, sink, trade{dec("12"), 5})

	// Survivor: 5 shares at (90-60)/5 = 6, original arrival kept.
	require.Equal(t, int64(0), s.b.Bids().TotalQty())
	require.Equal(t, int64(15), s.b.Asks().TotalQty())

	best := s.b.Asks().Best()
	require.Equal(t, "6", best.Price.String())
	require.Equal(t, int64(5), best.Head().Qty)
	require.Equal(t, uint64(1), best.Head().Seq)

	untouched := s.b.Asks().Successor(best)
	require.Equal(t, "11", untouched.Price.String())
	require.Equal(t, int64(10), untouched.TotalQty())
	requireConsistent(t, s.b)
}

// When the incoming order carries the larger notional it consumes the
// resting order at the resting order's price and keeps trading its
// remainder at the blended price.
func TestLimitCrossIncomingOrderLarger(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Ask, "10", 1)
	s.limit(Bid, "11", 5)

	requireTrades(t, sink, trade{dec("10"), 1})

	// Remainder: 4 shares at (55-10)/4 = 11.25, booked after the walk.
	require.Equal(t, int64(0), s.b.Asks().TotalQty())
	require.Equal(t, int64(4), s.b.Bids().TotalQty())
	require.Equal(t, "11.25", s.b.Bids().Best().Price.String())
	requireConsistent(t, s.b)
}

// A genuinely crossing level with no counterparty of differing quantity
// AND differing notional is passed through untouched; the crossed book
// persists. Reference behavior, preserved deliberately.
func TestLimitCrossNoCounterpartyPassesThrough(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Ask, "10", 5)
	s.limit(Bid, "11", 5) // equal quantity: no eligible counterparty

	require.Empty(t, sink.trades)
	require.Equal(t, int64(5), s.b.Asks().TotalQty())
	require.Equal(t, int64(5), s.b.Bids().TotalQty())
	require.Equal(t, "11", s.b.Bids().Best().Price.String())
	requireConsistent(t, s.b)
}

// Equal-notional counterparties are skipped too: 4 shares at 10 against
// an incoming 5 at 8 share the notional 40.
func TestLimitCrossSkipsEqualNotional(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Bid, "10", 4)
	s.limit(Ask, "8", 5)

	require.Empty(t, sink.trades)
	require.Equal(t, int64(4), s.b.Bids().TotalQty())
	require.Equal(t, int64(5), s.b.Asks().TotalQty())
	requireConsistent(t, s.b)
}

// The scan skips ineligible heads and matches deeper in the queue.
func TestLimitCrossSkipsIneligibleHead(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Ask, "10", 5) // seq 1: equal qty, skipped
	s.limit(Ask, "10", 2) // seq 2: eligible
	s.limit(Bid, "11", 5)

	// Resting notional 20 < incoming 55: the resting order is consumed.
	requireTrades(t, sink, trade{dec("10"), 2})

	// Incoming remainder: 3 shares at (55-20)/3, rebooked on the bid side
	// after passing the rest of the walk.
	require.Equal(t, int64(5), s.b.Asks().TotalQty())
	require.Equal(t, uint64(1), s.b.Asks().Best().Head().Seq)
	require.Equal(t, int64(3), s.b.Bids().TotalQty())
	requireConsistent(t, s.b)
}

func TestQuantityConservationAcrossMixedFlow(t *testing.T) {
	s, sink := newTestBook()
	s.limit(Bid, "10", 5)
	s.limit(Bid, "9", 7)
	s.limit(Ask, "12", 4)
	s.market(Ask, 6)
	s.limit(Ask, "10", 2)
	s.market(Bid, 1)

	var traded int64
	for _, tr := range sink.trades {
		traded += tr.qty
	}
	// Market sell takes 5@10 and 1@9; market buy takes 1@10.
	require.Equal(t, int64(7), traded)
	require.Equal(t, int64(6), s.b.Bids().TotalQty())
	require.Equal(t, int64(5), s.b.Asks().TotalQty())
	requireConsistent(t, s.b)
}
