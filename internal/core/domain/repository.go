package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// AccountRepository stores a new user, its profile and its empty score as
// one unit: either all three rows exist afterwards or none does.
type AccountRepository interface {
	CreateAccount(ctx context.Context, user *User, profile *Profile, score *ScoreAggregate) error
}

// ProfileRepository writes each concern of a profile through its own method
// so concurrent writers never overwrite columns they did not change.
type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByUserID(ctx context.Context, userID string) (*Profile, error)

	// UpdateDetails writes display name, photo and weights. The initial
	// weight is only filled when still empty.
	UpdateDetails(ctx context.Context, profile *Profile) error

	// StartChallenge sets challenge_start_date while it is still empty and
	// fails with ErrChallengeAlreadyStarted otherwise.
	StartChallenge(ctx context.Context, userID string, start time.Time) error

	// CompleteChallenge sets challenge_completed_at once, on a started
	// challenge. It fails with ErrChallengeNotStarted or
	// ErrChallengeAlreadyCompleted when the row is not in that state.
	CompleteChallenge(ctx context.Context, userID string, at time.Time) error
}

type DailyTaskRepository interface {
	// Create fails with ErrTaskRecordConflict when the user already has a
	// record for that date.
	Create(ctx context.Context, record *DailyTaskRecord) error

	// Update bumps the version and fails with ErrTaskRecordConflict when the
	// stored version no longer matches the one the caller read.
	Update(ctx context.Context, record *DailyTaskRecord) error

	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*DailyTaskRecord, error)

	// ListByUserID returns every record of the user ordered by date.
	ListByUserID(ctx context.Context, userID string) ([]*DailyTaskRecord, error)

	ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*DailyTaskRecord, error)
}

type ScoreRepository interface {
	// Save inserts or replaces the user's aggregate.
	Save(ctx context.Context, score *ScoreAggregate) error
	GetByUserID(ctx context.Context, userID string) (*ScoreAggregate, error)
}

type RankingRepository interface {
	List(ctx context.Context, limit int) ([]RankingEntry, error)
	GetByUserID(ctx context.Context, userID string) (*RankingEntry, error)
}
