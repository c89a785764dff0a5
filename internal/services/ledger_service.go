package services

import (
	"context"
	"time"

	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/ledger"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/logger"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
)

// PlatformSummary is the platform-wide view of the ledger.
type PlatformSummary struct {
	TotalInvestmentVolume models.Amount  `json:"total_investment_volume"`
	TreasuryBalance       models.Amount  `json:"treasury_balance"`
	Owner                 models.Account `json:"owner"`
	Treasury              models.Account `json:"treasury"`
	FeeBps                int64          `json:"fee_bps"`
	PropertyCount         int64          `json:"property_count"`
	Sequence              int64          `json:"sequence"`
}

// LedgerService defines the ledger operations exposed to the HTTP layer.
// Errors are the ledger's sentinel errors, wrapped; match with errors.Is.
type LedgerService interface {
	// Summary returns platform configuration and totals.
	Summary() PlatformSummary

	// CreateProperty lists a new property. Only the platform owner may call it.
	CreateProperty(ctx context.Context, caller models.Account, in models.PropertyInput) (models.Property, error)

	// GetProperty returns one property. Returns ledger.ErrNotFound if unknown.
	GetProperty(id int64) (models.Property, error)

	// ListProperties returns all properties, optionally filtered by status.
	ListProperties(status models.Status) []models.Property

	// UpdateStatus applies an administrative status change.
	UpdateStatus(ctx context.Context, caller models.Account, id int64, status models.Status) (models.Property, error)

	// CancelProperty closes an open property so investors can claim refunds.
	CancelProperty(ctx context.Context, caller models.Account, id int64) (models.Property, error)

	// Invest buys tokens of a property for investor.
	Invest(ctx context.Context, id int64, investor models.Account, amount models.Amount) (models.Investment, error)

	// ListInvestments returns the investment and refund history of a property.
	ListInvestments(id int64) ([]models.Investment, error)

	// WithdrawPropertyFunds pays a funded property's escrow to its owner.
	WithdrawPropertyFunds(ctx context.Context, id int64, caller models.Account) (models.Amount, error)

	// ClaimRefund returns an investor's net contribution to a closed property.
	ClaimRefund(ctx context.Context, id int64, investor models.Account) (models.Investment, error)

	// Holdings returns the tokens investor holds in a property, 0 if none.
	Holdings(investor models.Account, id int64) int64

	// Portfolio returns all non-zero holdings of investor.
	Portfolio(investor models.Account) []models.Holding

	// WithdrawTreasury pays accumulated fees to the treasury account.
	WithdrawTreasury(ctx context.Context, caller models.Account) (models.Amount, error)

	// ExpireDue closes every open property whose deadline has passed.
	ExpireDue(ctx context.Context) ([]int64, error)
}

// ledgerService is the concrete implementation of LedgerService.
type ledgerService struct {
	ledger *ledger.Ledger
	log    *logger.Logger
}

// NewLedgerService creates a new instance of LedgerService.
func NewLedgerService(l *ledger.Ledger, log *logger.Logger) LedgerService {
	return &ledgerService{
		ledger: l,
		log:    log,
	}
}

func (s *ledgerService) Summary() PlatformSummary {
	return PlatformSummary{
		Owner:                 s.ledger.Owner(),
		Treasury:              s.ledger.PlatformTreasury(),
		FeeBps:                s.ledger.PlatformFeeBps(),
		PropertyCount:         s.ledger.PropertyCount(),
		TotalInvestmentVolume: s.ledger.TotalInvestmentVolume(),
		TreasuryBalance:       s.ledger.Treasury(),
		Sequence:              s.ledger.Sequence(),
	}
}

func (s *ledgerService) CreateProperty(ctx context.Context, caller models.Account, in models.PropertyInput) (models.Property, error) {
	p, err := s.ledger.CreateProperty(ctx, caller, in)
	if err != nil {
		return models.Property{}, err
	}

	s.log.Info("Property created", map[string]interface{}{
		"property_id":  p.ID,
		"owner":        p.Owner.String(),
		"total_tokens": p.TotalTokens,
		"token_price":  p.TokenPrice.String(),
	})
	return p, nil
}

func (s *ledgerService) GetProperty(id int64) (models.Property, error) {
	return s.ledger.GetProperty(id)
}

func (s *ledgerService) ListProperties(status models.Status) []models.Property {
	return s.ledger.ListProperties(status)
}

func (s *ledgerService) UpdateStatus(ctx context.Context, caller models.Account, id int64, status models.Status) (models.Property, error) {
	p, err := s.ledger.UpdateStatus(ctx, caller, id, status)
	if err != nil {
		return models.Property{}, err
	}

	s.log.Info("Property status changed", map[string]interface{}{
		"property_id": id,
		"status":      p.Status.String(),
	})
	return p, nil
}

func (s *ledgerService) CancelProperty(ctx context.Context, caller models.Account, id int64) (models.Property, error) {
	p, err := s.ledger.CancelProperty(ctx, caller, id)
	if err != nil {
		return models.Property{}, err
	}

	s.log.Info("Property cancelled", map[string]interface{}{
		"property_id": id,
	})
	return p, nil
}

func (s *ledgerService) Invest(ctx context.Context, id int64, investor models.Account, amount models.Amount) (models.Investment, error) {
	inv, err := s.ledger.Invest(ctx, id, investor, amount)
	if err != nil {
		return models.Investment{}, err
	}

	s.log.Info("Investment recorded", map[string]interface{}{
		"investment_id": inv.ID,
		"property_id":   id,
		"investor":      inv.Investor.String(),
		"tokens":        inv.Tokens,
		"amount":        inv.Amount.String(),
		"fee":           inv.Fee.String(),
	})
	return inv, nil
}

func (s *ledgerService) ListInvestments(id int64) ([]models.Investment, error) {
	return s.ledger.ListInvestments(id)
}

func (s *ledgerService) WithdrawPropertyFunds(ctx context.Context, id int64, caller models.Account) (models.Amount, error) {
	amount, err := s.ledger.WithdrawPropertyFunds(ctx, id, caller)
	if err != nil {
		return models.Amount{}, err
	}

	s.log.Info("Property funds withdrawn", map[string]interface{}{
		"property_id": id,
		"amount":      amount.String(),
	})
	return amount, nil
}

func (s *ledgerService) ClaimRefund(ctx context.Context, id int64, investor models.Account) (models.Investment, error) {
	refund, err := s.ledger.ClaimRefund(ctx, id, investor)
	if err != nil {
		return models.Investment{}, err
	}

	s.log.Info("Refund paid", map[string]interface{}{
		"property_id": id,
		"investor":    refund.Investor.String(),
		"tokens":      refund.Tokens,
		"amount":      refund.NetAmount.String(),
	})
	return refund, nil
}

func (s *ledgerService) Holdings(investor models.Account, id int64) int64 {
	return s.ledger.GetInvestorHoldings(investor, id)
}

func (s *ledgerService) Portfolio(investor models.Account) []models.Holding {
	return s.ledger.GetInvestorPortfolio(investor)
}

func (s *ledgerService) WithdrawTreasury(ctx context.Context, caller models.Account) (models.Amount, error) {
	amount, err := s.ledger.WithdrawTreasury(ctx, caller)
	if err != nil {
		return models.Amount{}, err
	}

	s.log.Info("Treasury withdrawn", map[string]interface{}{
		"treasury": s.ledger.PlatformTreasury().String(),
		"amount":   amount.String(),
	})
	return amount, nil
}

func (s *ledgerService) ExpireDue(ctx context.Context) ([]int64, error) {
	expired, err := s.ledger.ExpireDue(ctx)
	if len(expired) > 0 {
		s.log.Info("Properties expired", map[string]interface{}{
			"property_ids": expired,
		})
	}
	return expired, err
}

// RunExpirySweeper calls ExpireDue every interval until ctx is cancelled.
// Failures are logged and retried on the next tick.
func RunExpirySweeper(ctx context.Context, svc LedgerService, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Debug("Expiry sweeper started", map[string]interface{}{
		"interval": interval.String(),
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug("Expiry sweeper stopped", nil)
			return
		case <-ticker.C:
			if _, err := svc.ExpireDue(ctx); err != nil && ctx.Err() == nil {
				log.Error("Expiry sweep failed", err, nil)
			}
		}
	}
}
