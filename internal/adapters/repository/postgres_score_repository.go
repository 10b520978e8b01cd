package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

var _ domain.ScoreRepository = (*PostgresScoreRepository)(nil)

type PostgresScoreRepository struct {
	db *sqlx.DB
}

func NewPostgresScoreRepository(db *sqlx.DB) *PostgresScoreRepository {
	return &PostgresScoreRepository{db: db}
}

func (r *PostgresScoreRepository) Save(ctx context.Context, score *domain.ScoreAggregate) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return saveScore(ctx, r.db, score)
}

func saveScore(ctx context.Context, db sqlx.ExtContext, score *domain.ScoreAggregate) error {
	query := `
		INSERT INTO pontuacoes (
			user_id, pontuacao_total, dias_consecutivos,
			melhor_sequencia, dias_concluidos, updated_at
		) VALUES (
			:user_id, :pontuacao_total, :dias_consecutivos,
			:melhor_sequencia, :dias_concluidos, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE
		SET pontuacao_total = EXCLUDED.pontuacao_total,
		    dias_consecutivos = EXCLUDED.dias_consecutivos,
		    melhor_sequencia = EXCLUDED.melhor_sequencia,
		    dias_concluidos = EXCLUDED.dias_concluidos,
		    updated_at = EXCLUDED.updated_at`

	if _, err := sqlx.NamedExecContext(ctx, db, query, score); err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrReferenceMissing
		}
		return fmt.Errorf("repository: save score failed: %w", err)
	}
	return nil
}

func (r *PostgresScoreRepository) GetByUserID(ctx context.Context, userID string) (*domain.ScoreAggregate, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT user_id, pontuacao_total, dias_consecutivos,
		       melhor_sequencia, dias_concluidos, updated_at
		FROM pontuacoes
		WHERE user_id = $1`

	var score domain.ScoreAggregate
	if err := r.db.GetContext(ctx, &score, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScoreNotFound
		}
		return nil, fmt.Errorf("repository: get score failed: %w", err)
	}
	return &score, nil
}
