// Package ledger implements the fractional real-estate investment engine:
// the property registry, investment processing, fee accounting and the
// funding state machine.
//
// Every state change is expressed as one or more models.Event values. An
// operation validates under the relevant locks, appends its events to the
// journal as one batch, and only then applies them to memory. Replaying the
// journal through the same apply path rebuilds the ledger after a restart.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/repository"
)

// Options configures a Ledger.
type Options struct {
	// Journal stores committed events. Defaults to an in-memory journal.
	Journal repository.JournalRepository
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// Owner is the administrative account.
	Owner models.Account
	// Treasury receives platform fees. Must not be the zero account.
	Treasury models.Account
	// FeeBps is the platform fee in basis points. Nil means DefaultFeeBps.
	FeeBps *int64
}

// propertyState is the mutable per-property state. mu serializes every
// transition touching the property.
type propertyState struct {
	mu          sync.Mutex
	prop        models.Property
	investments []models.Investment
	holdings    map[models.Account]int64
	netPaid     map[models.Account]models.Amount
}

// Ledger is the investment ledger. It is safe for concurrent use.
//
// Lock order: a propertyState.mu before Ledger.mu. Ledger.mu is never held
// while waiting on a property lock.
type Ledger struct {
	journal  repository.JournalRepository
	now      func() time.Time
	owner    models.Account
	treasury models.Account
	feeBps   int64

	// withdrawMu serializes treasury withdrawals. Taken before mu.
	withdrawMu sync.Mutex

	// mu guards everything below and serializes journal appends.
	mu               sync.RWMutex
	seq              int64
	configured       bool
	failed           error
	properties       map[int64]*propertyState
	propertyCount    int64
	lastInvestmentID int64
	treasuryBalance  models.Amount
	volume           models.Amount
	payouts          map[models.Account]models.Amount
}

// New builds a Ledger and replays the journal into it.
// It fails with ErrInvalidConfiguration when the treasury or owner is the
// zero account or the fee lies outside 0..10000 bps.
func New(ctx context.Context, opts Options) (*Ledger, error) {
	if opts.Treasury.IsZero() {
		return nil, fmt.Errorf("%w: invalid treasury address", ErrInvalidConfiguration)
	}
	if opts.Owner.IsZero() {
		return nil, fmt.Errorf("%w: invalid owner address", ErrInvalidConfiguration)
	}

	feeBps := DefaultFeeBps
	if opts.FeeBps != nil {
		feeBps = *opts.FeeBps
	}
	if feeBps < 0 || feeBps > BpsDenominator {
		return nil, fmt.Errorf("%w: fee must be between 0 and %d bps, got %d", ErrInvalidConfiguration, BpsDenominator, feeBps)
	}

	journal := opts.Journal
	if journal == nil {
		journal = repository.NewMemoryJournal()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	l := &Ledger{
		journal:    journal,
		now:        clock,
		owner:      models.ParseAccount(string(opts.Owner)),
		treasury:   models.ParseAccount(string(opts.Treasury)),
		feeBps:     feeBps,
		properties: make(map[int64]*propertyState),
		payouts:    make(map[models.Account]models.Amount),
	}

	if err := l.replay(ctx); err != nil {
		return nil, err
	}

	// A fresh journal records the configuration it is started with, so a
	// later restart cannot silently change the fee or the accounts.
	if !l.configured {
		ev := &models.Event{
			Type:     models.EventPlatformConfigured,
			Platform: l.platformConfig(),
		}
		if err := l.commit(ctx, ev); err != nil {
			return nil, fmt.Errorf("failed to record platform configuration: %w", err)
		}
	}
	return l, nil
}

func (l *Ledger) platformConfig() *models.PlatformConfig {
	return &models.PlatformConfig{
		Owner:    l.owner,
		Treasury: l.treasury,
		FeeBps:   l.feeBps,
	}
}

// checkPlatform rejects a journal started under a different configuration.
func (l *Ledger) checkPlatform(cfg models.PlatformConfig) error {
	if cfg.Owner.Equal(l.owner) && cfg.Treasury.Equal(l.treasury) && cfg.FeeBps == l.feeBps {
		return nil
	}
	return fmt.Errorf("%w: journal was started with owner %s, treasury %s and fee %d bps; configured owner %s, treasury %s and fee %d bps",
		ErrInvalidConfiguration, cfg.Owner, cfg.Treasury, cfg.FeeBps, l.owner, l.treasury, l.feeBps)
}

// replay applies every journaled event. It runs before the ledger is shared,
// so no locks are taken.
func (l *Ledger) replay(ctx context.Context) error {
	events, err := l.journal.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load journal: %w", err)
	}

	for _, ev := range events {
		if ev.Seq != l.seq+1 {
			return fmt.Errorf("journal out of order: expected seq %d, got %d", l.seq+1, ev.Seq)
		}
		if ev.Seq == 1 && ev.Type != models.EventPlatformConfigured {
			return fmt.Errorf("%w: journal does not begin with the platform configuration", ErrInvalidConfiguration)
		}
		if err := l.apply(ev); err != nil {
			return fmt.Errorf("failed to replay event %d (%s): %w", ev.Seq, ev.Type, err)
		}
		l.seq = ev.Seq
	}
	return nil
}

// commit stamps, persists and applies a batch of events atomically.
// Callers must hold the lock of every property the events touch.
// Property and investment IDs left at zero are assigned here.
//
// The append runs detached from ctx cancellation: once started, a batch is
// either durably stored and applied, or neither. When the journal reports
// an error the ledger reloads it to learn which of the two happened. If
// that cannot be determined the ledger refuses further writes with
// ErrUnavailable until it is rebuilt from the journal.
func (l *Ledger) commit(ctx context.Context, events ...*models.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failed != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, l.failed)
	}

	now := l.now().UTC()
	nextProperty := l.propertyCount
	nextInvestment := l.lastInvestmentID

	batch := make([]models.Event, 0, len(events))
	for i, ev := range events {
		ev.Seq = l.seq + int64(i) + 1
		ev.ID = uuid.New()
		ev.OccurredAt = now

		if ev.Property != nil && ev.Property.ID == 0 {
			nextProperty++
			ev.Property.ID = nextProperty
			ev.Property.CreatedAt = now
			ev.PropertyID = nextProperty
		}
		if ev.Investment != nil && ev.Investment.ID == 0 {
			nextInvestment++
			ev.Investment.ID = nextInvestment
			ev.Investment.CreatedAt = now
		}
		batch = append(batch, *ev)
	}

	if err := l.checkCredits(batch); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	if err := l.journal.Append(ctx, batch); err != nil {
		landed, rerr := l.landed(ctx, batch)
		if rerr != nil {
			l.failed = rerr
			return fmt.Errorf("%w: failed to persist ledger events: %v; %v", ErrUnavailable, err, rerr)
		}
		if !landed {
			return fmt.Errorf("failed to persist ledger events: %w", err)
		}
	}

	for _, ev := range batch {
		if err := l.apply(ev); err != nil {
			// Events were validated before commit; reaching this is a bug.
			panic(fmt.Sprintf("ledger: applying committed event %d: %v", ev.Seq, err))
		}
		l.seq = ev.Seq
	}
	return nil
}

// landed reloads the journal after a failed append and reports whether
// the batch was stored anyway. Any tail other than "nothing new" or
// "exactly this batch" is an error.
func (l *Ledger) landed(ctx context.Context, batch []models.Event) (bool, error) {
	stored, err := l.journal.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reload journal: %w", err)
	}

	var tail []models.Event
	for _, ev := range stored {
		if ev.Seq > l.seq {
			tail = append(tail, ev)
		}
	}
	if len(tail) == 0 && int64(len(stored)) == l.seq {
		return false, nil
	}
	if len(tail) != len(batch) {
		return false, fmt.Errorf("journal holds %d events past seq %d, expected 0 or %d", len(tail), l.seq, len(batch))
	}
	for i := range tail {
		if tail[i].Seq != batch[i].Seq || tail[i].ID != batch[i].ID {
			return false, fmt.Errorf("journal event %d does not match the appended batch", tail[i].Seq)
		}
	}
	return true, nil
}

// checkCredits ensures the ledger-wide totals credited by a batch stay
// within the representable range. It runs under mu so concurrent
// investments on other properties cannot slip in between.
func (l *Ledger) checkCredits(batch []models.Event) error {
	treasury := l.treasuryBalance
	volume := l.volume
	for _, ev := range batch {
		if ev.Type != models.EventInvested || ev.Investment == nil {
			continue
		}
		treasury = treasury.Add(ev.Investment.Fee)
		volume = volume.Add(ev.Investment.Amount)
	}

	switch {
	case treasury.Overflows():
		return fmt.Errorf("%w: treasury balance", ErrArithmetic)
	case volume.Overflows():
		return fmt.Errorf("%w: total investment volume", ErrArithmetic)
	}
	return nil
}

// apply mutates in-memory state for one event. It is the only place
// state changes, both live and during replay.
func (l *Ledger) apply(ev models.Event) error {
	if ev.Type == models.EventPlatformConfigured {
		if ev.Platform == nil {
			return fmt.Errorf("missing platform payload")
		}
		if err := l.checkPlatform(*ev.Platform); err != nil {
			return err
		}
		l.configured = true
		return nil
	}

	if ev.Type == models.EventTreasuryWithdrawn {
		l.treasuryBalance = l.treasuryBalance.Sub(ev.Amount)
		l.payouts[ev.Account] = l.payouts[ev.Account].Add(ev.Amount)
		return nil
	}

	if ev.Type == models.EventPropertyCreated {
		if ev.Property == nil {
			return fmt.Errorf("missing property payload")
		}
		if _, exists := l.properties[ev.Property.ID]; exists {
			return fmt.Errorf("property %d already exists", ev.Property.ID)
		}
		l.properties[ev.Property.ID] = &propertyState{
			prop:     ev.Property.Clone(),
			holdings: make(map[models.Account]int64),
			netPaid:  make(map[models.Account]models.Amount),
		}
		if ev.Property.ID > l.propertyCount {
			l.propertyCount = ev.Property.ID
		}
		return nil
	}

	ps, ok := l.properties[ev.PropertyID]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, ev.PropertyID)
	}

	switch ev.Type {
	case models.EventInvested:
		if ev.Investment == nil {
			return fmt.Errorf("missing investment payload")
		}
		inv := *ev.Investment
		ps.investments = append(ps.investments, inv)
		ps.prop.TokensSold += inv.Tokens
		ps.prop.EscrowBalance = ps.prop.EscrowBalance.Add(inv.NetAmount)
		ps.holdings[inv.Investor] += inv.Tokens
		ps.netPaid[inv.Investor] = ps.netPaid[inv.Investor].Add(inv.NetAmount)
		l.treasuryBalance = l.treasuryBalance.Add(inv.Fee)
		l.volume = l.volume.Add(inv.Amount)
		if inv.ID > l.lastInvestmentID {
			l.lastInvestmentID = inv.ID
		}

	case models.EventRefunded:
		if ev.Investment == nil {
			return fmt.Errorf("missing refund payload")
		}
		inv := *ev.Investment
		ps.investments = append(ps.investments, inv)
		ps.prop.TokensSold -= inv.Tokens
		ps.prop.EscrowBalance = ps.prop.EscrowBalance.Sub(inv.NetAmount)
		ps.holdings[inv.Investor] -= inv.Tokens
		if ps.holdings[inv.Investor] == 0 {
			delete(ps.holdings, inv.Investor)
		}
		delete(ps.netPaid, inv.Investor)
		l.payouts[inv.Investor] = l.payouts[inv.Investor].Add(inv.NetAmount)
		if inv.ID > l.lastInvestmentID {
			l.lastInvestmentID = inv.ID
		}

	case models.EventStatusChanged:
		ps.prop.Status = ev.Status

	case models.EventFundsWithdrawn:
		ps.prop.EscrowBalance = ps.prop.EscrowBalance.Sub(ev.Amount)
		l.payouts[ev.Account] = l.payouts[ev.Account].Add(ev.Amount)

	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
	return nil
}

// lookup returns the state of a property without locking it.
func (l *Ledger) lookup(id int64) (*propertyState, error) {
	l.mu.RLock()
	ps, ok := l.properties[id]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return ps, nil
}

// states returns every property state ordered by ID.
func (l *Ledger) states() []*propertyState {
	l.mu.RLock()
	out := make([]*propertyState, 0, len(l.properties))
	for _, ps := range l.properties {
		out = append(out, ps)
	}
	l.mu.RUnlock()

	// prop.ID never changes after creation, so reading it unlocked is safe
	sort.Slice(out, func(i, j int) bool { return out[i].prop.ID < out[j].prop.ID })
	return out
}

// Owner returns the administrative account.
func (l *Ledger) Owner() models.Account { return l.owner }

// PlatformTreasury returns the account that receives platform fees.
func (l *Ledger) PlatformTreasury() models.Account { return l.treasury }

// PlatformFeeBps returns the immutable platform fee in basis points.
func (l *Ledger) PlatformFeeBps() int64 { return l.feeBps }

// PropertyCount returns the number of properties ever created.
func (l *Ledger) PropertyCount() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.propertyCount
}

// TotalInvestmentVolume returns the gross amount ever invested.
// Refunds do not reduce it.
func (l *Ledger) TotalInvestmentVolume() models.Amount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.volume
}

// Sequence returns the sequence number of the last committed event.
func (l *Ledger) Sequence() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

func (l *Ledger) isOwner(caller models.Account) bool {
	return !caller.IsZero() && caller.Equal(l.owner)
}
