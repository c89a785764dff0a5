package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
)

// Attribute limits for new properties
const (
	MaxNameLength        = 200
	MaxLocationLength    = 500
	MaxDescriptionLength = 5000
)

// CreateProperty registers a new property open for investment. Only the
// platform owner may create properties. The token price is
// floor(TotalValue / TotalTokens) and must be positive.
func (l *Ledger) CreateProperty(ctx context.Context, caller models.Account, in models.PropertyInput) (models.Property, error) {
	caller = models.ParseAccount(string(caller))
	if !l.isOwner(caller) {
		return models.Property{}, fmt.Errorf("%w: only the platform owner can create properties", ErrUnauthorized)
	}

	if err := l.validateInput(in); err != nil {
		return models.Property{}, err
	}

	price := in.TotalValue.QuoInt(in.TotalTokens)
	if !price.IsPositive() {
		return models.Property{}, fmt.Errorf("%w: total value %s over %d tokens", ErrPricing, in.TotalValue, in.TotalTokens)
	}

	owner := models.ParseAccount(string(in.Owner))
	if owner.IsZero() {
		owner = caller
	}

	prop := models.Property{
		Name:              strings.TrimSpace(in.Name),
		Location:          strings.TrimSpace(in.Location),
		Description:       strings.TrimSpace(in.Description),
		PropertyType:      strings.TrimSpace(in.PropertyType),
		TotalValue:        in.TotalValue,
		TotalTokens:       in.TotalTokens,
		TokenPrice:        price,
		MinInvestment:     in.MinInvestment,
		Status:            models.StatusOpen,
		Owner:             owner,
		ExpectedReturnBps: in.ExpectedReturnBps,
	}
	if in.Deadline != nil {
		d := in.Deadline.UTC()
		prop.Deadline = &d
	}

	ev := &models.Event{
		Type:     models.EventPropertyCreated,
		Property: &prop,
	}
	if err := l.commit(ctx, ev); err != nil {
		return models.Property{}, err
	}

	return ev.Property.Clone(), nil
}

func (l *Ledger) validateInput(in models.PropertyInput) error {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: name longer than %d characters", ErrValidation, MaxNameLength)
	case len(in.Location) > MaxLocationLength:
		return fmt.Errorf("%w: location longer than %d characters", ErrValidation, MaxLocationLength)
	case len(in.Description) > MaxDescriptionLength:
		return fmt.Errorf("%w: description longer than %d characters", ErrValidation, MaxDescriptionLength)
	case !in.TotalValue.IsPositive():
		return fmt.Errorf("%w: total value must be positive", ErrValidation)
	case in.TotalTokens <= 0:
		return fmt.Errorf("%w: total tokens must be positive", ErrValidation)
	case !in.MinInvestment.IsPositive():
		return fmt.Errorf("%w: minimum investment must be positive", ErrValidation)
	case in.ExpectedReturnBps < 0 || in.ExpectedReturnBps > BpsDenominator:
		return fmt.Errorf("%w: expected return must be between 0 and %d bps", ErrValidation, BpsDenominator)
	case in.Deadline != nil && !in.Deadline.After(l.now()):
		return fmt.Errorf("%w: deadline must be in the future", ErrValidation)
	}

	if in.TotalValue.Overflows() || in.MinInvestment.Overflows() {
		return fmt.Errorf("%w: amount exceeds representable range", ErrArithmetic)
	}
	return nil
}

// GetProperty returns a snapshot of the property.
func (l *Ledger) GetProperty(id int64) (models.Property, error) {
	ps, err := l.lookup(id)
	if err != nil {
		return models.Property{}, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.prop.Clone(), nil
}

// ListProperties returns snapshots of all properties ordered by ID.
// A non-empty status restricts the result to properties in that status.
func (l *Ledger) ListProperties(status models.Status) []models.Property {
	out := []models.Property{}
	for _, ps := range l.states() {
		ps.mu.Lock()
		p := ps.prop.Clone()
		ps.mu.Unlock()

		if status != "" && p.Status != status {
			continue
		}
		out = append(out, p)
	}
	return out
}

// UpdateStatus moves a property to next on behalf of the platform owner.
func (l *Ledger) UpdateStatus(ctx context.Context, caller models.Account, id int64, next models.Status) (models.Property, error) {
	if !l.isOwner(models.ParseAccount(string(caller))) {
		return models.Property{}, fmt.Errorf("%w: only the platform owner can change property status", ErrUnauthorized)
	}

	ps, err := l.lookup(id)
	if err != nil {
		return models.Property{}, err
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if err := checkTransition(ps.prop, next, l.now()); err != nil {
		return models.Property{}, err
	}
	if err := l.commit(ctx, statusEvent(id, next)); err != nil {
		return models.Property{}, err
	}
	return ps.prop.Clone(), nil
}

// CancelProperty closes an open property for good. Investors can then
// claim refunds.
func (l *Ledger) CancelProperty(ctx context.Context, caller models.Account, id int64) (models.Property, error) {
	return l.UpdateStatus(ctx, caller, id, models.StatusCancelled)
}
