package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

var _ domain.AccountRepository = (*PostgresAccountRepository)(nil)

type PostgresAccountRepository struct {
	db *sqlx.DB
}

func NewPostgresAccountRepository(db *sqlx.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

// CreateAccount inserts the user, profile and score rows in one transaction.
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, user *domain.User, profile *domain.Profile, score *domain.ScoreAggregate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin account transaction failed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertUser(ctx, tx, user); err != nil {
		return err
	}
	if err := insertProfile(ctx, tx, profile); err != nil {
		return err
	}
	if err := saveScore(ctx, tx, score); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit account failed: %w", err)
	}
	return nil
}
