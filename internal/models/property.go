package models

import (
	"time"
)

// Property is a real-estate asset opened for fractional investment.
// Values returned by the ledger are snapshots; mutating them has no effect
// on ledger state.
type Property struct {
	CreatedAt         time.Time  `json:"created_at"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	TotalValue        Amount     `json:"total_value"`
	TokenPrice        Amount     `json:"token_price"`
	MinInvestment     Amount     `json:"min_investment"`
	EscrowBalance     Amount     `json:"escrow_balance"`
	Name              string     `json:"name"`
	Location          string     `json:"location"`
	Description       string     `json:"description"`
	PropertyType      string     `json:"property_type,omitempty"`
	Status            Status     `json:"status"`
	Owner             Account    `json:"owner"`
	ID                int64      `json:"id"`
	TotalTokens       int64      `json:"total_tokens"`
	TokensSold        int64      `json:"tokens_sold"`
	ExpectedReturnBps int64      `json:"expected_return_bps,omitempty"`
}

// TokensAvailable is the number of tokens still for sale.
func (p Property) TokensAvailable() int64 {
	return p.TotalTokens - p.TokensSold
}

// DeadlineElapsed reports whether the property has a deadline at or before now.
func (p Property) DeadlineElapsed(now time.Time) bool {
	return p.Deadline != nil && !now.Before(*p.Deadline)
}

// Clone returns a deep copy, detaching the deadline pointer.
func (p Property) Clone() Property {
	if p.Deadline != nil {
		d := *p.Deadline
		p.Deadline = &d
	}
	return p
}

// PropertyInput carries the caller-supplied attributes of a new property.
// Owner defaults to the creating account when left empty.
type PropertyInput struct {
	Deadline          *time.Time
	TotalValue        Amount
	MinInvestment     Amount
	Name              string
	Location          string
	Description       string
	PropertyType      string
	Owner             Account
	TotalTokens       int64
	ExpectedReturnBps int64
}
