package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/database"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
)

// ErrSequenceGap is returned when an appended batch does not continue the
// journal's sequence exactly.
var ErrSequenceGap = errors.New("journal sequence gap")

// JournalRepository defines the interface for ledger event storage.
type JournalRepository interface {
	// Append durably stores a batch of events. The batch is all-or-nothing,
	// but an error does not prove it was not stored (a commit acknowledgement
	// can be lost); callers reload to find out.
	Append(ctx context.Context, events []models.Event) error

	// Load returns every stored event ordered by sequence number.
	// Returns an empty slice for an empty journal (not an error).
	Load(ctx context.Context) ([]models.Event, error)
}

// memoryJournal keeps events in process memory.
type memoryJournal struct {
	mu     sync.RWMutex
	events []models.Event
}

// NewMemoryJournal creates a JournalRepository that lives only as long as
// the process. It is used when no database is configured and in tests.
func NewMemoryJournal() JournalRepository {
	return &memoryJournal{}
}

func (j *memoryJournal) Append(ctx context.Context, events []models.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	next := int64(len(j.events)) + 1
	for i, ev := range events {
		if ev.Seq != next+int64(i) {
			return fmt.Errorf("%w: expected seq %d, got %d", ErrSequenceGap, next+int64(i), ev.Seq)
		}
	}

	j.events = append(j.events, events...)
	return nil
}

func (j *memoryJournal) Load(ctx context.Context) ([]models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]models.Event, len(j.events))
	copy(out, j.events)
	return out, nil
}

// postgresJournal stores events in the ledger_events table.
type postgresJournal struct {
	db *database.Database
}

// NewPostgresJournal creates a JournalRepository backed by PostgreSQL.
// The ledger_events table must exist (see database.Migrate).
func NewPostgresJournal(db *database.Database) JournalRepository {
	return &postgresJournal{
		db: db,
	}
}

// Append inserts the batch inside a single transaction. The seq primary key
// rejects a batch that races with another writer.
func (r *postgresJournal) Append(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	// Rollback is a no-op once the transaction has been committed
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO ledger_events (seq, id, type, property_id, occurred_at, body)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, ev := range events {
		body, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode event %d: %w", ev.Seq, err)
		}
		batch.Queue(query, ev.Seq, ev.ID, string(ev.Type), ev.PropertyID, ev.OccurredAt, body)
	}

	results := tx.SendBatch(ctx, batch)
	for _, ev := range events {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to insert event %d (%s): %w", ev.Seq, ev.Type, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to flush journal batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit journal transaction: %w", err)
	}
	return nil
}

// Load reads the whole journal. The body column holds the JSON-encoded
// event; the other columns exist for indexing and ad-hoc queries.
func (r *postgresJournal) Load(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT body
		FROM ledger_events
		ORDER BY seq
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		var ev models.Event
		if err := json.Unmarshal(body, &ev); err != nil {
			return nil, fmt.Errorf("failed to decode event row: %w", err)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}
