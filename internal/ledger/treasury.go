package ledger

import (
	"context"
	"fmt"

	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
)

// Treasury returns the accumulated platform fees not yet withdrawn.
func (l *Ledger) Treasury() models.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.treasuryBalance
}

// WithdrawTreasury pays the whole treasury balance to the treasury account.
// Either the platform owner or the treasury account itself may call it.
func (l *Ledger) WithdrawTreasury(ctx context.Context, caller models.Account) (models.Amount, error) {
	caller = models.ParseAccount(string(caller))
	if !l.isOwner(caller) && !(caller.Equal(l.treasury) && !caller.IsZero()) {
		return models.Amount{}, fmt.Errorf("%w: only the owner or treasury can withdraw platform fees", ErrUnauthorized)
	}

	// Concurrent investments only ever raise the balance, so the snapshot
	// taken under withdrawMu can always be paid in full.
	l.withdrawMu.Lock()
	defer l.withdrawMu.Unlock()

	l.mu.RLock()
	balance := l.treasuryBalance
	l.mu.RUnlock()

	if !balance.IsPositive() {
		return models.Amount{}, fmt.Errorf("%w: treasury is empty", ErrNothingToWithdraw)
	}

	ev := &models.Event{
		Type:    models.EventTreasuryWithdrawn,
		Account: l.treasury,
		Amount:  balance,
	}
	if err := l.commit(ctx, ev); err != nil {
		return models.Amount{}, err
	}
	return ev.Amount, nil
}

// PaidOut returns the cumulative amount paid to account through property
// withdrawals, refunds and treasury withdrawals.
func (l *Ledger) PaidOut(account models.Account) models.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.payouts[models.ParseAccount(string(account))]
}
