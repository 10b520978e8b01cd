package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

var _ domain.DailyTaskRepository = (*PostgresDailyTaskRepository)(nil)

const dailyTaskColumns = `
	id, user_id, data, dia_desafio,
	hidratacao, sono, alimentacao, exercicio, registro_foto,
	pontuacao_total, version, created_at, updated_at`

type PostgresDailyTaskRepository struct {
	db *sqlx.DB
}

func NewPostgresDailyTaskRepository(db *sqlx.DB) *PostgresDailyTaskRepository {
	return &PostgresDailyTaskRepository{db: db}
}

func (r *PostgresDailyTaskRepository) Create(ctx context.Context, rec *domain.DailyTaskRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		INSERT INTO desafios_diarios (` + dailyTaskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, domain.DateKey(rec.Date), rec.ChallengeDay,
		rec.Hydration, rec.Sleep, rec.Diet, rec.Exercise, rec.PhotoLog,
		rec.Points, rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return ErrReferenceMissing
		case pgUniqueViolation:
			return domain.ErrTaskRecordConflict
		}
		return fmt.Errorf("repository: create daily task failed: %w", err)
	}
	return nil
}

func (r *PostgresDailyTaskRepository) Update(ctx context.Context, rec *domain.DailyTaskRecord) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	next := rec.Version + 1
	updatedAt := time.Now().UTC()

	query := `
		UPDATE desafios_diarios
		SET hidratacao = $1,
		    sono = $2,
		    alimentacao = $3,
		    exercicio = $4,
		    registro_foto = $5,
		    pontuacao_total = $6,
		    version = $7,
		    updated_at = $8
		WHERE user_id = $9
		  AND data = $10
		  AND version = $11`

	result, err := r.db.ExecContext(ctx, query,
		rec.Hydration, rec.Sleep, rec.Diet, rec.Exercise, rec.PhotoLog,
		rec.Points, next, updatedAt,
		rec.UserID, domain.DateKey(rec.Date), rec.Version,
	)
	if err != nil {
		return fmt.Errorf("repository: update daily task failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := r.GetByUserAndDate(ctx, rec.UserID, rec.Date); err != nil {
			return err
		}
		return domain.ErrTaskRecordConflict
	}

	rec.Version = next
	rec.UpdatedAt = updatedAt
	return nil
}

func (r *PostgresDailyTaskRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*domain.DailyTaskRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + dailyTaskColumns + ` FROM desafios_diarios WHERE user_id = $1 AND data = $2`

	var rec domain.DailyTaskRecord
	if err := r.db.GetContext(ctx, &rec, query, userID, domain.DateKey(date)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskRecordNotFound
		}
		return nil, fmt.Errorf("repository: get daily task failed: %w", err)
	}

	rec.Date = localDate(rec.Date)
	return &rec, nil
}

func (r *PostgresDailyTaskRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.DailyTaskRecord, error) {
	query := `SELECT ` + dailyTaskColumns + ` FROM desafios_diarios WHERE user_id = $1 ORDER BY data ASC`
	return r.list(ctx, query, userID)
}

func (r *PostgresDailyTaskRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyTaskRecord, error) {
	query := `
		SELECT ` + dailyTaskColumns + `
		FROM desafios_diarios
		WHERE user_id = $1
		  AND data >= $2
		  AND data <= $3
		ORDER BY data ASC`
	return r.list(ctx, query, userID, domain.DateKey(from), domain.DateKey(to))
}

func (r *PostgresDailyTaskRepository) list(ctx context.Context, query string, args ...any) ([]*domain.DailyTaskRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	records := []*domain.DailyTaskRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("repository: list daily tasks failed: %w", err)
	}

	for _, rec := range records {
		rec.Date = localDate(rec.Date)
	}
	return records, nil
}
