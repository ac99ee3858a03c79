package feed

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeTrade         = "trade"
	TypeBookingFailed = "booking_failed"
)

// Event is the wire form of one matching-engine notification. Price and
// Qty are meaningful only for trade events.
type Event struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Price decimal.Decimal `json:"price"`
	Qty   int64           `json:"qty"`
	TS    int64           `json:"ts"`
}

func newEvent(typ string) Event {
	return Event{
		ID:   uuid.NewString(),
		Type: typ,
		TS:   time.Now().UnixNano(),
	}
}

// Encode serializes the event for transport.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeEvent is the inverse of Encode.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}
