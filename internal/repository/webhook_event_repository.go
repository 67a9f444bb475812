package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// WebhookEventRepository deduplicates webhook deliveries. The gateway
// delivers at least once, so event processing keys every side effect on
// MarkProcessed returning nil exactly once per event id.
type WebhookEventRepository interface {
	// MarkProcessed records the event id. Returns ErrDuplicate when the
	// id was recorded before.
	MarkProcessed(ctx context.Context, eventID, eventType string) error
	// Release forgets a claimed event id so the provider's retry can
	// reprocess it after a handler failure.
	Release(ctx context.Context, eventID string) error
}

// PgWebhookEventRepository is the PostgreSQL implementation of
// WebhookEventRepository.
type PgWebhookEventRepository struct {
	pool *pgxpool.Pool
}

var _ WebhookEventRepository = (*PgWebhookEventRepository)(nil)

// NewPgWebhookEventRepository creates a PgWebhookEventRepository backed
// by the given pool.
func NewPgWebhookEventRepository(pool *pgxpool.Pool) *PgWebhookEventRepository {
	return &PgWebhookEventRepository{pool: pool}
}

// MarkProcessed inserts the event id; the primary key turns a redelivery
// into ErrDuplicate.
func (r *PgWebhookEventRepository) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO webhook_events (event_id, event_type) VALUES ($1, $2)`,
		eventID, eventType,
	)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

// Release deletes the claim for an event id.
func (r *PgWebhookEventRepository) Release(ctx context.Context, eventID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM webhook_events WHERE event_id = $1`, eventID)
	return err
}

// MemoryWebhookEventRepository keeps processed event ids in process
// memory. Used when no database is configured; dedup does not survive a
// restart, which matches the provider's replay window in practice.
type MemoryWebhookEventRepository struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

var _ WebhookEventRepository = (*MemoryWebhookEventRepository)(nil)

// NewMemoryWebhookEventRepository creates an empty in-memory dedup store.
func NewMemoryWebhookEventRepository() *MemoryWebhookEventRepository {
	return &MemoryWebhookEventRepository{seen: make(map[string]time.Time)}
}

func (r *MemoryWebhookEventRepository) MarkProcessed(_ context.Context, eventID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[eventID]; ok {
		return ErrDuplicate
	}
	r.seen[eventID] = time.Now()
	return nil
}

func (r *MemoryWebhookEventRepository) Release(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, eventID)
	return nil
}
