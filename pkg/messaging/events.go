package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventStockAdjusted  = "inventory.stock.adjusted"
	EventAlertGenerated = "inventory.alert.generated"
	EventBatchExpiring  = "inventory.batch.expiring"
	EventUserLoggedIn   = "auth.user.logged_in"
)

// Exchange names
const (
	ExchangeInventoryEvents = "inventory.events"
	ExchangeAuthEvents      = "auth.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// StockAdjustedEvent is published after every stock mutation
type StockAdjustedEvent struct {
	TxnID       string `json:"txn_id"`
	DrugID      string `json:"drug_id"`
	DrugName    string `json:"drug_name"`
	Location    string `json:"location"`
	BatchLot    string `json:"batch_lot"`
	Action      string `json:"action"`
	QtyChange   int    `json:"qty_change"`
	NewQuantity int    `json:"new_quantity"`
	PerformedBy string `json:"performed_by"`
}

// AlertGeneratedEvent is published when a shortage or expiry alert fires
type AlertGeneratedEvent struct {
	AlertType string `json:"alert_type"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	DrugID    string `json:"drug_id"`
	BatchLot  string `json:"batch_lot,omitempty"`
}
