package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
)

// transitions lists the statuses reachable from each status.
// Terminal statuses have no entry.
var transitions = map[models.Status][]models.Status{
	models.StatusOpen: {models.StatusFunded, models.StatusExpired, models.StatusCancelled},
}

// Evaluate derives the status a property should be in at time now.
// It never leaves a terminal status and is idempotent.
func Evaluate(p models.Property, now time.Time) models.Status {
	if p.Status.IsTerminal() {
		return p.Status
	}
	if p.TokensSold >= p.TotalTokens {
		return models.StatusFunded
	}
	if p.DeadlineElapsed(now) {
		return models.StatusExpired
	}
	return models.StatusOpen
}

// checkTransition reports whether p may move to next at time now. Besides
// the transition table it enforces the guard of each target: Funded needs
// the full supply sold, Expired needs an elapsed deadline.
func checkTransition(p models.Property, next models.Status, now time.Time) error {
	allowed := false
	for _, s := range transitions[p.Status] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, next)
	}

	switch next {
	case models.StatusFunded:
		if p.TokensSold < p.TotalTokens {
			return fmt.Errorf("%w: %s -> %s with %d of %d tokens sold",
				ErrInvalidTransition, p.Status, next, p.TokensSold, p.TotalTokens)
		}
	case models.StatusExpired:
		if !p.DeadlineElapsed(now) {
			return fmt.Errorf("%w: %s -> %s before the funding deadline", ErrInvalidTransition, p.Status, next)
		}
	}
	return nil
}

func statusEvent(propertyID int64, next models.Status) *models.Event {
	return &models.Event{
		Type:       models.EventStatusChanged,
		PropertyID: propertyID,
		Status:     next,
	}
}

// ExpireDue moves every open property whose deadline has elapsed to
// Expired and returns their IDs. Properties that need no change are skipped,
// so repeated calls are harmless.
func (l *Ledger) ExpireDue(ctx context.Context) ([]int64, error) {
	expired := []int64{}

	for _, ps := range l.states() {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		id, err := l.expireOne(ctx, ps)
		if err != nil {
			return expired, err
		}
		if id != 0 {
			expired = append(expired, id)
		}
	}
	return expired, nil
}

func (l *Ledger) expireOne(ctx context.Context, ps *propertyState) (int64, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.prop.Status != models.StatusOpen {
		return 0, nil
	}
	if Evaluate(ps.prop, l.now()) != models.StatusExpired {
		return 0, nil
	}

	if err := l.commit(ctx, statusEvent(ps.prop.ID, models.StatusExpired)); err != nil {
		return 0, err
	}
	return ps.prop.ID, nil
}
