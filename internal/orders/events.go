package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventSessionOpened    = "SessionOpened"
	EventSessionDeleted   = "SessionDeleted"
	EventSaleCompleted    = "SaleCompleted"
	EventStockDecremented = "StockDecremented"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // session id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads ----

type SessionOpenedPayload struct {
	SessionID string `json:"session_id"`
	Slot      int    `json:"slot"`
	Label     string `json:"label"`
}

type SessionDeletedPayload struct {
	SessionID string          `json:"session_id"`
	Label     string          `json:"label"`
	DeletedAt time.Time       `json:"deleted_at"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type StockUpdate struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Sold      int    `json:"sold"`
	Before    int    `json:"before"`
	After     int    `json:"after"`
	Error     string `json:"error,omitempty"`
}

type StockDecrementedPayload struct {
	SessionID string        `json:"session_id"`
	Updates   []StockUpdate `json:"updates"`
}

// NewEnvelope wraps payload in a v1 envelope.
func NewEnvelope(eventType, producer, sessionID string, payload any, at time.Time) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    at.UTC(),
		Producer:      producer,
		CorrelationID: sessionID,
		Payload:       b,
	}, nil
}
