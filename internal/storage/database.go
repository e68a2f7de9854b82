// Package storage persists reviewed snippets so users can look back at
// their history.
package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/code-reviewer/internal/core"
)

// Store defines the interface for review history persistence.
//
//go:generate mockgen -destination=../../mocks/mock_store.go -package=mocks github.com/sevigo/code-reviewer/internal/storage Store
type Store interface {
	// SaveReview inserts r and fills in its ID and CreatedAt.
	SaveReview(ctx context.Context, r *core.StoredReview) error
	// ListReviews returns the owner's reviews, newest first.
	ListReviews(ctx context.Context, owner string) ([]core.StoredReview, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a Postgres-backed Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// SaveReview inserts a new review record into the database.
func (s *postgresStore) SaveReview(ctx context.Context, r *core.StoredReview) error {
	if err := r.Validate(); err != nil {
		return err
	}

	query := `INSERT INTO reviews (owner, code, review, model) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	row := s.db.QueryRowxContext(ctx, query, r.Owner, r.Code, r.Review, r.Model)
	if err := row.Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// ListReviews retrieves every review of an owner, most recent first.
func (s *postgresStore) ListReviews(ctx context.Context, owner string) ([]core.StoredReview, error) {
	query := `
		SELECT id, owner, code, review, model, created_at
		FROM reviews
		WHERE owner = $1
		ORDER BY created_at DESC, id DESC`

	reviews := []core.StoredReview{}
	if err := s.db.SelectContext(ctx, &reviews, query, owner); err != nil {
		return nil, fmt.Errorf("failed to list reviews for %s: %w", owner, err)
	}
	return reviews, nil
}
