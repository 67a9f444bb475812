package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/givebridge/backend/internal/model"
)

// ContactRepository defines the persistence interface for contact
// messages. It is defined here (in repository) to avoid an import cycle
// with service.
type ContactRepository interface {
	Save(ctx context.Context, msg *model.ContactMessage) error
	List(ctx context.Context, limit, offset int) ([]*model.ContactMessage, error)
}

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

var _ ContactRepository = (*PgContactRepository)(nil)

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Save inserts a new contact_messages row and populates msg.ID and
// timestamps from the RETURNING clause.
func (r *PgContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contact_messages (email, name, subject, message, status)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)
		 RETURNING id, created_at, updated_at`,
		msg.Email, msg.Name, msg.Subject, msg.Message, msg.Status,
	).Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)
}

// List returns contact messages newest first.
func (r *PgContactRepository) List(ctx context.Context, limit, offset int) ([]*model.ContactMessage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, COALESCE(name, ''), COALESCE(subject, ''), message, status, created_at, updated_at
		 FROM contact_messages
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.ContactMessage
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Email, &m.Name, &m.Subject, &m.Message, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

// MemoryContactRepository keeps contact messages in process memory
// behind a mutex. Used when no database is configured.
type MemoryContactRepository struct {
	mu       sync.Mutex
	messages []*model.ContactMessage
}

var _ ContactRepository = (*MemoryContactRepository)(nil)

// NewMemoryContactRepository creates an empty in-memory repository.
func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{}
}

func (r *MemoryContactRepository) Save(_ context.Context, msg *model.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = uuid.NewString()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *MemoryContactRepository) List(_ context.Context, limit, offset int) ([]*model.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.ContactMessage
	for i := len(r.messages) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.messages[i])
	}
	return out, nil
}
