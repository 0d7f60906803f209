package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Yapcheekian/shrt/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the SQLSTATE postgres reports for a unique index conflict.
const uniqueViolation = "23505"

type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Exists(ctx context.Context, shortCode string) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM short_links WHERE short_code = $1)", shortCode); err != nil {
		return false, fmt.Errorf("check short code %q: %w", shortCode, err)
	}

	return exists, nil
}

// Insert relies on the UNIQUE constraint on short_code; a violation is
// reported as ErrDuplicateKey.
func (s *PostgresStore) Insert(ctx context.Context, link models.ShortLink) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO short_links(id, short_code, original_url, created_at) VALUES ($1, $2, $3, $4)",
		link.ID, link.ShortCode, link.OriginalURL, link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert short link %q: %w", link.ShortCode, err)
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, shortCode string) (models.ShortLink, error) {
	var link models.ShortLink

	err := s.db.GetContext(ctx, &link, "SELECT id, short_code, original_url, created_at FROM short_links WHERE short_code = $1", shortCode)
	if errors.Is(err, sql.ErrNoRows) {
		return link, ErrNotFound
	}
	if err != nil {
		return link, fmt.Errorf("get short link %q: %w", shortCode, err)
	}

	return link, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
