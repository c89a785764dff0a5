package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
)

// Invest converts amount into whole tokens of the property for investor.
//
// Checks run in a fixed order and the first failure is returned: the
// property exists, it is open and its deadline has not passed, the amount
// meets the minimum, it buys at least one token that is still available,
// and the fee split stays representable. On success the investment record,
// token sale, escrow and treasury credits, volume and any resulting status
// change are committed as a single batch.
func (l *Ledger) Invest(ctx context.Context, propertyID int64, investor models.Account, amount models.Amount) (models.Investment, error) {
	ps, err := l.lookup(propertyID)
	if err != nil {
		return models.Investment{}, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	p := ps.prop
	now := l.now()

	if p.Status != models.StatusOpen {
		return models.Investment{}, fmt.Errorf("%w: property %d is %s", ErrClosedForInvestment, p.ID, p.Status)
	}
	if p.DeadlineElapsed(now) {
		return models.Investment{}, fmt.Errorf("%w: property %d funding deadline has passed", ErrClosedForInvestment, p.ID)
	}

	investor = models.ParseAccount(string(investor))
	if investor.IsZero() {
		return models.Investment{}, fmt.Errorf("%w: investor account is required", ErrValidation)
	}

	if amount.LessThan(p.MinInvestment) {
		return models.Investment{}, fmt.Errorf("%w: %s is below the minimum of %s", ErrBelowMinimum, amount, p.MinInvestment)
	}

	units := amount.Units(p.TokenPrice)
	if units.LessThan(decimal.NewFromInt(1)) {
		return models.Investment{}, fmt.Errorf("%w: %s does not buy a single token at %s", ErrBelowMinimum, amount, p.TokenPrice)
	}
	available := p.TokensAvailable()
	if units.GreaterThan(decimal.NewFromInt(available)) {
		return models.Investment{}, fmt.Errorf("%w: requested %s tokens, %d available", ErrInsufficientSupply, units, available)
	}
	tokens := units.IntPart()

	fee, net, err := SplitFee(amount, l.feeBps)
	if err != nil {
		return models.Investment{}, err
	}
	// Ledger-wide totals are checked in commit, under the ledger lock
	if p.EscrowBalance.Add(net).Overflows() {
		return models.Investment{}, fmt.Errorf("%w: escrow balance of property %d", ErrArithmetic, p.ID)
	}

	inv := models.Investment{
		PropertyID: p.ID,
		Investor:   investor,
		Kind:       models.KindInvestment,
		Amount:     amount,
		Fee:        fee,
		NetAmount:  net,
		Tokens:     tokens,
	}
	events := []*models.Event{{
		Type:       models.EventInvested,
		PropertyID: p.ID,
		Investment: &inv,
	}}

	// Re-evaluate funding on the post-investment view of the property
	projected := p
	projected.TokensSold += tokens
	if next := Evaluate(projected, now); next != p.Status {
		events = append(events, statusEvent(p.ID, next))
	}

	if err := l.commit(ctx, events...); err != nil {
		return models.Investment{}, err
	}
	return *events[0].Investment, nil
}

// GetInvestorHoldings returns the tokens investor holds in the property.
// Unknown investors and unknown properties both yield zero.
func (l *Ledger) GetInvestorHoldings(investor models.Account, propertyID int64) int64 {
	ps, err := l.lookup(propertyID)
	if err != nil {
		return 0
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.holdings[models.ParseAccount(string(investor))]
}

// GetInvestorPortfolio returns every non-zero holding of investor ordered
// by property ID.
func (l *Ledger) GetInvestorPortfolio(investor models.Account) []models.Holding {
	investor = models.ParseAccount(string(investor))
	out := []models.Holding{}

	for _, ps := range l.states() {
		ps.mu.Lock()
		tokens := ps.holdings[investor]
		id := ps.prop.ID
		ps.mu.Unlock()

		if tokens > 0 {
			out = append(out, models.Holding{PropertyID: id, Tokens: tokens})
		}
	}
	return out
}

// ListInvestments returns the investment and refund records of a property
// in commit order.
func (l *Ledger) ListInvestments(propertyID int64) ([]models.Investment, error) {
	ps, err := l.lookup(propertyID)
	if err != nil {
		return nil, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	out := make([]models.Investment, len(ps.investments))
	copy(out, ps.investments)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// WithdrawPropertyFunds pays the whole escrow of a funded property to its
// owner. A second call finds the escrow empty and fails with
// ErrNothingToWithdraw.
func (l *Ledger) WithdrawPropertyFunds(ctx context.Context, propertyID int64, caller models.Account) (models.Amount, error) {
	caller = models.ParseAccount(string(caller))

	ps, err := l.lookup(propertyID)
	if err != nil {
		return models.Amount{}, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	p := ps.prop
	if caller.IsZero() || !caller.Equal(p.Owner) {
		return models.Amount{}, fmt.Errorf("%w: only the owner of property %d can withdraw its funds", ErrUnauthorized, p.ID)
	}
	if p.Status != models.StatusFunded {
		return models.Amount{}, fmt.Errorf("%w: property %d is %s", ErrNotFunded, p.ID, p.Status)
	}
	if !p.EscrowBalance.IsPositive() {
		return models.Amount{}, fmt.Errorf("%w: escrow of property %d is empty", ErrNothingToWithdraw, p.ID)
	}

	amount := p.EscrowBalance
	err = l.commit(ctx, &models.Event{
		Type:       models.EventFundsWithdrawn,
		PropertyID: p.ID,
		Account:    p.Owner,
		Amount:     amount,
	})
	if err != nil {
		return models.Amount{}, err
	}
	return amount, nil
}

// ClaimRefund returns an investor's net contribution to an expired or
// cancelled property. Platform fees are not refunded. The refund is
// recorded as a compensating record and the investor's tokens are released.
func (l *Ledger) ClaimRefund(ctx context.Context, propertyID int64, investor models.Account) (models.Investment, error) {
	investor = models.ParseAccount(string(investor))
	if investor.IsZero() {
		return models.Investment{}, fmt.Errorf("%w: investor account is required", ErrValidation)
	}

	ps, err := l.lookup(propertyID)
	if err != nil {
		return models.Investment{}, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	p := ps.prop
	if p.Status != models.StatusExpired && p.Status != models.StatusCancelled {
		return models.Investment{}, fmt.Errorf("%w: property %d is %s", ErrNotRefundable, p.ID, p.Status)
	}

	tokens := ps.holdings[investor]
	if tokens == 0 {
		return models.Investment{}, fmt.Errorf("%w: %s holds no tokens in property %d", ErrNothingToWithdraw, investor, p.ID)
	}
	net := ps.netPaid[investor]

	refund := models.Investment{
		PropertyID: p.ID,
		Investor:   investor,
		Kind:       models.KindRefund,
		Amount:     net,
		NetAmount:  net,
		Tokens:     tokens,
	}
	ev := &models.Event{
		Type:       models.EventRefunded,
		PropertyID: p.ID,
		Account:    investor,
		Amount:     net,
		Investment: &refund,
	}
	if err := l.commit(ctx, ev); err != nil {
		return models.Investment{}, err
	}
	return *ev.Investment, nil
}
