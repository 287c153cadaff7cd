package amqp

import (
	"encoding/json"
	"time"

	"finance/internal/core"
)

// Event kinds published when the ledger changes.
const (
	KindTransactionCreated = "transaction.created"
	KindTransactionUpdated = "transaction.updated"
	KindTransactionDeleted = "transaction.deleted"
	KindBudgetCreated      = "budget.created"
)

// LedgerEvent tells consumers that the data of one month changed. It carries
// no amounts; consumers rebuild whatever they need from the database.
type LedgerEvent struct {
	Kind      string    `json:"kind"`
	EntityID  int64     `json:"entity_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind string, entityID int64, p core.Period) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		EntityID:  entityID,
		Year:      p.Year,
		Month:     p.Month,
		Timestamp: time.Now(),
	}
}

// Period returns the month the event refers to.
func (e *LedgerEvent) Period() core.Period {
	return core.Period{Year: e.Year, Month: e.Month}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Period().Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
