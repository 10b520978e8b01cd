package repository

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	queryTimeout = 3 * time.Second
)

var ErrReferenceMissing = errors.New("referenced user does not exist")

// pgCode extracts the SQLSTATE from either driver the repositories run on.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// localDate reinterprets a scanned DATE as midnight in the challenge zone.
// Drivers hand DATE columns back at UTC midnight.
func localDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, domain.ChallengeZone)
}

func localDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := localDate(*t)
	return &d
}

// dateParam turns a calendar day into the YYYY-MM-DD literal bound to DATE params.
func dateParam(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.DateKey(*t)
}

func weightParam(w *float64) any {
	if w == nil {
		return nil
	}
	return *w
}

func weightFromColumn(raw any) *float64 {
	w, ok := domain.WeightFromDatabase(raw)
	if !ok {
		return nil
	}
	return &w
}

func startConflict(p *domain.Profile) error {
	return domain.ErrChallengeAlreadyStarted
}

// completeConflict names the state that made a guarded completion miss.
func completeConflict(p *domain.Profile) error {
	if p.ChallengeStartDate == nil {
		return domain.ErrChallengeNotStarted
	}
	return domain.ErrChallengeAlreadyCompleted
}
