// Package intake supplies order-describing lines to the engine, either
// from an io.Reader or from a Kafka topic.
package intake

import "context"

// Source yields one order line per call until EOF or cancellation.
type Source interface {
	Next(ctx context.Context) (string, error)
}
