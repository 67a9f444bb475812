package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/givebridge/backend/internal/model"
)

// SubscriberStore is the injected persistence interface for newsletter
// subscribers. Implementations must make Add atomic with respect to
// concurrent requests; duplicate emails return ErrDuplicate.
type SubscriberStore interface {
	Add(ctx context.Context, s *model.Subscriber) error
	Remove(ctx context.Context, email string) error
	List(ctx context.Context) ([]*model.Subscriber, error)
}

// ---------------------------------------------------------------------------
// PostgreSQL implementation
// ---------------------------------------------------------------------------

// PgSubscriberRepository is the PostgreSQL implementation of SubscriberStore.
type PgSubscriberRepository struct {
	pool *pgxpool.Pool
}

var _ SubscriberStore = (*PgSubscriberRepository)(nil)

// NewPgSubscriberRepository creates a PgSubscriberRepository backed by
// the given pool.
func NewPgSubscriberRepository(pool *pgxpool.Pool) *PgSubscriberRepository {
	return &PgSubscriberRepository{pool: pool}
}

func (r *PgSubscriberRepository) Add(ctx context.Context, s *model.Subscriber) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO newsletter_subscribers (email, name)
		 VALUES (lower($1), NULLIF($2, ''))
		 RETURNING id, subscribed_at`,
		s.Email, s.Name,
	).Scan(&s.ID, &s.SubscribedAt)
	if err != nil && strings.Contains(err.Error(), "duplicate key") {
		return ErrDuplicate
	}
	return err
}

func (r *PgSubscriberRepository) Remove(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM newsletter_subscribers WHERE email = lower($1)`, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgSubscriberRepository) List(ctx context.Context) ([]*model.Subscriber, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, email, COALESCE(name, ''), subscribed_at
		 FROM newsletter_subscribers ORDER BY subscribed_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.Subscriber
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.SubscribedAt); err != nil {
			return nil, err
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

// ---------------------------------------------------------------------------
// File-backed implementation
// ---------------------------------------------------------------------------

// FileSubscriberStore keeps subscribers in a flat JSON file. A mutex
// serializes the read-modify-write cycle so concurrent subscriptions
// cannot drop each other's updates. Writes go through a temp file and
// rename so a crash never leaves a half-written list.
type FileSubscriberStore struct {
	mu   sync.Mutex
	path string
}

var _ SubscriberStore = (*FileSubscriberStore)(nil)

// NewFileSubscriberStore creates a store writing to path, creating the
// parent directory if absent.
func NewFileSubscriberStore(path string) (*FileSubscriberStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("subscriber store: mkdir: %w", err)
	}
	return &FileSubscriberStore{path: path}, nil
}

func (f *FileSubscriberStore) Add(_ context.Context, s *model.Subscriber) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	subs, err := f.load()
	if err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(s.Email))
	for _, existing := range subs {
		if existing.Email == email {
			return ErrDuplicate
		}
	}

	s.Email = email
	s.ID = uuid.NewString()
	s.SubscribedAt = time.Now().UTC()
	subs = append(subs, s)
	return f.save(subs)
}

func (f *FileSubscriberStore) Remove(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	subs, err := f.load()
	if err != nil {
		return err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	kept := subs[:0]
	for _, s := range subs {
		if s.Email != email {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(subs) {
		return ErrNotFound
	}
	return f.save(kept)
}

func (f *FileSubscriberStore) List(_ context.Context) ([]*model.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *FileSubscriberStore) load() ([]*model.Subscriber, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subscriber store: read: %w", err)
	}
	var subs []*model.Subscriber
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("subscriber store: decode: %w", err)
	}
	return subs, nil
}

func (f *FileSubscriberStore) save(subs []*model.Subscriber) error {
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("subscriber store: encode: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("subscriber store: write: %w", err)
	}
	return os.Rename(tmp, f.path)
}
