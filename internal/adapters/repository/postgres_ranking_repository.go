package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

var _ domain.RankingRepository = (*PostgresRankingRepository)(nil)

const rankingColumns = `
	rank, user_id, display_name, photo_url,
	pontuacao_total, dias_consecutivos, dias_concluidos,
	challenge_start_date, challenge_completed_at`

// PostgresRankingRepository reads the ranking_with_challenge_progress view.
type PostgresRankingRepository struct {
	db *sqlx.DB
}

func NewPostgresRankingRepository(db *sqlx.DB) *PostgresRankingRepository {
	return &PostgresRankingRepository{db: db}
}

func (r *PostgresRankingRepository) List(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT ` + rankingColumns + `
		FROM ranking_with_challenge_progress
		ORDER BY rank ASC, display_name ASC
		LIMIT $1`

	entries := []domain.RankingEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("repository: list ranking failed: %w", err)
	}

	for i := range entries {
		entries[i].ChallengeStartDate = localDatePtr(entries[i].ChallengeStartDate)
	}
	return entries, nil
}

func (r *PostgresRankingRepository) GetByUserID(ctx context.Context, userID string) (*domain.RankingEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + rankingColumns + ` FROM ranking_with_challenge_progress WHERE user_id = $1`

	var entry domain.RankingEntry
	if err := r.db.GetContext(ctx, &entry, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("repository: get ranking position failed: %w", err)
	}

	entry.ChallengeStartDate = localDatePtr(entry.ChallengeStartDate)
	return &entry, nil
}
