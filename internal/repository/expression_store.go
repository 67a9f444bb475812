package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/givebridge/backend/internal/model"
)

// ExpressionStore is the injected persistence interface for expressions
// of interest.
type ExpressionStore interface {
	Add(ctx context.Context, e *model.ExpressionOfInterest) error
	List(ctx context.Context, limit, offset int) ([]*model.ExpressionOfInterest, error)
}

// PgExpressionRepository is the PostgreSQL implementation of ExpressionStore.
type PgExpressionRepository struct {
	pool *pgxpool.Pool
}

var _ ExpressionStore = (*PgExpressionRepository)(nil)

// NewPgExpressionRepository creates a PgExpressionRepository backed by
// the given pool.
func NewPgExpressionRepository(pool *pgxpool.Pool) *PgExpressionRepository {
	return &PgExpressionRepository{pool: pool}
}

func (r *PgExpressionRepository) Add(ctx context.Context, e *model.ExpressionOfInterest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO expressions_of_interest (name, email, phone, programme, message)
		 VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''))
		 RETURNING id, created_at`,
		e.Name, e.Email, e.Phone, e.Programme, e.Message,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *PgExpressionRepository) List(ctx context.Context, limit, offset int) ([]*model.ExpressionOfInterest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, COALESCE(phone,''), COALESCE(programme,''), COALESCE(message,''), created_at
		 FROM expressions_of_interest
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ExpressionOfInterest
	for rows.Next() {
		var e model.ExpressionOfInterest
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Phone, &e.Programme, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// MemoryExpressionStore keeps expressions in process memory behind a
// mutex. Used when no database is configured.
type MemoryExpressionStore struct {
	mu      sync.Mutex
	records []*model.ExpressionOfInterest
}

var _ ExpressionStore = (*MemoryExpressionStore)(nil)

// NewMemoryExpressionStore creates an empty in-memory store.
func NewMemoryExpressionStore() *MemoryExpressionStore {
	return &MemoryExpressionStore{}
}

func (m *MemoryExpressionStore) Add(_ context.Context, e *model.ExpressionOfInterest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()
	m.records = append(m.records, e)
	return nil
}

func (m *MemoryExpressionStore) List(_ context.Context, limit, offset int) ([]*model.ExpressionOfInterest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Newest first, same ordering as the Pg implementation.
	n := len(m.records)
	var out []*model.ExpressionOfInterest
	for i := n - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}
