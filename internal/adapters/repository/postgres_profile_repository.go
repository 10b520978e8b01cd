package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

var _ domain.ProfileRepository = (*PostgresProfileRepository)(nil)

type PostgresProfileRepository struct {
	db *sqlx.DB
}

func NewPostgresProfileRepository(db *sqlx.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// profileRow mirrors the profiles table; weights come back as raw NUMERIC values.
type profileRow struct {
	domain.Profile
	InitialWeightRaw any `db:"initial_weight"`
	CurrentWeightRaw any `db:"current_weight"`
}

func (row *profileRow) toDomain() *domain.Profile {
	p := row.Profile
	p.InitialWeight = weightFromColumn(row.InitialWeightRaw)
	p.CurrentWeight = weightFromColumn(row.CurrentWeightRaw)
	p.ChallengeStartDate = localDatePtr(p.ChallengeStartDate)
	return &p
}

func (r *PostgresProfileRepository) Create(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return insertProfile(ctx, r.db, p)
}

func insertProfile(ctx context.Context, db sqlx.ExecerContext, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, display_name, photo_url,
			initial_weight, current_weight,
			challenge_start_date, challenge_completed_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := db.ExecContext(ctx, query,
		p.UserID, p.DisplayName, p.PhotoURL,
		weightParam(p.InitialWeight), weightParam(p.CurrentWeight),
		dateParam(p.ChallengeStartDate), p.ChallengeCompletedAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return ErrReferenceMissing
		case pgUniqueViolation:
			return fmt.Errorf("repository: profile for %s already exists", p.UserID)
		}
		return fmt.Errorf("repository: create profile failed: %w", err)
	}
	return nil
}

func (r *PostgresProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT user_id, display_name, photo_url,
		       initial_weight, current_weight,
		       challenge_start_date, challenge_completed_at,
		       created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`

	var row profileRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("repository: get profile failed: %w", err)
	}
	return row.toDomain(), nil
}

// UpdateDetails never touches the challenge columns, which belong to
// StartChallenge and CompleteChallenge.
func (r *PostgresProfileRepository) UpdateDetails(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE profiles
		SET display_name = $2,
		    photo_url = $3,
		    initial_weight = COALESCE(initial_weight, $4),
		    current_weight = $5,
		    updated_at = $6
		WHERE user_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		p.UserID, p.DisplayName, p.PhotoURL,
		weightParam(p.InitialWeight), weightParam(p.CurrentWeight),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: update profile failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) StartChallenge(ctx context.Context, userID string, start time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE profiles
		SET challenge_start_date = $2,
		    updated_at = $3
		WHERE user_id = $1
		  AND challenge_start_date IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, userID, dateParam(&start), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: start challenge failed: %w", err)
	}
	return r.lifecycleResult(ctx, result, userID, startConflict)
}

func (r *PostgresProfileRepository) CompleteChallenge(ctx context.Context, userID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE profiles
		SET challenge_completed_at = $2,
		    updated_at = $2
		WHERE user_id = $1
		  AND challenge_start_date IS NOT NULL
		  AND challenge_completed_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, userID, at.UTC())
	if err != nil {
		return fmt.Errorf("repository: complete challenge failed: %w", err)
	}
	return r.lifecycleResult(ctx, result, userID, completeConflict)
}

// lifecycleResult explains a guarded update that matched no row.
func (r *PostgresProfileRepository) lifecycleResult(ctx context.Context, result sql.Result, userID string, conflict func(*domain.Profile) error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	p, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return conflict(p)
}
