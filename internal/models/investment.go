package models

import "time"

// InvestmentKind distinguishes contributions from compensating refunds.
type InvestmentKind string

const (
	KindInvestment InvestmentKind = "investment"
	KindRefund     InvestmentKind = "refund"
)

// Investment is an append-only record of a contribution or a refund.
// For refunds, Tokens and NetAmount are the quantities returned; Fee is zero.
type Investment struct {
	CreatedAt  time.Time      `json:"created_at"`
	Amount     Amount         `json:"amount"`
	Fee        Amount         `json:"fee"`
	NetAmount  Amount         `json:"net_amount"`
	Investor   Account        `json:"investor"`
	Kind       InvestmentKind `json:"kind"`
	ID         int64          `json:"id"`
	PropertyID int64          `json:"property_id"`
	Tokens     int64          `json:"tokens"`
}

// SignedTokens returns the token delta the record applies to a holding.
func (i Investment) SignedTokens() int64 {
	if i.Kind == KindRefund {
		return -i.Tokens
	}
	return i.Tokens
}

// Holding is an investor's aggregated token balance in one property.
type Holding struct {
	PropertyID int64 `json:"property_id"`
	Tokens     int64 `json:"tokens"`
}
