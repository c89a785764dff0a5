package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType names a committed ledger state change.
type EventType string

const (
	EventPlatformConfigured EventType = "platform_configured"
	EventPropertyCreated    EventType = "property_created"
	EventInvested           EventType = "invested"
	EventStatusChanged      EventType = "status_changed"
	EventFundsWithdrawn     EventType = "funds_withdrawn"
	EventRefunded           EventType = "refunded"
	EventTreasuryWithdrawn  EventType = "treasury_withdrawn"
)

// Event is one entry of the append-only ledger journal. Replaying every
// event in Seq order rebuilds the full ledger state.
type Event struct {
	OccurredAt time.Time       `json:"occurred_at"`
	Platform   *PlatformConfig `json:"platform,omitempty"`
	Property   *Property       `json:"property,omitempty"`
	Investment *Investment     `json:"investment,omitempty"`
	Amount     Amount          `json:"amount"`
	Type       EventType       `json:"type"`
	Status     Status          `json:"status,omitempty"`
	Account    Account         `json:"account,omitempty"`
	Seq        int64           `json:"seq"`
	PropertyID int64           `json:"property_id,omitempty"`
	ID         uuid.UUID       `json:"id"`
}

// PlatformConfig is the platform configuration a journal was started with.
// It is journaled once, as the first event, and never changes.
type PlatformConfig struct {
	Owner    Account `json:"owner"`
	Treasury Account `json:"treasury"`
	FeeBps   int64   `json:"fee_bps"`
}
