// Package book implements a single-instrument limit order book and its
// price-time-priority matching algorithm. Each side of the market is a
// binary search tree of price levels; each level is a FIFO queue of
// resting orders keyed by arrival sequence.
//
// The book is single-writer: one submitted order is processed to
// completion before the next one is accepted, and callers provide their
// own serialization around Submit. Trade and booking-failure events are
// delivered through an injected EventSink; the book itself performs no
// I/O.
package book
