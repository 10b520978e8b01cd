package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
	"github.com/comitanigiacomo/kanso-challenge/migrations"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "kanso_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "kanso_db"),
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("Database connection failed (skipping integration tests): %v", err)
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db, migrations.FS, nil))
	db.MustExec("TRUNCATE TABLE desafios_diarios, pontuacoes, profiles, users CASCADE")
	return db
}

func seedUser(t *testing.T, ctx context.Context, users *PostgresUserRepository, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(uuid.NewString(), email)
	require.NoError(t, err)
	require.NoError(t, u.SetPassword("StrongPassword123!"))
	require.NoError(t, users.Create(ctx, u))
	return u
}

func TestPostgresRepositories_Integration(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	users := NewPostgresUserRepository(db)
	profiles := NewPostgresProfileRepository(db)
	records := NewPostgresDailyTaskRepository(db)
	scores := NewPostgresScoreRepository(db)
	ranking := NewPostgresRankingRepository(db)

	t.Run("Users: duplicate email and lookups", func(t *testing.T) {
		u := seedUser(t, ctx, users, "dup@kanso.app")

		dup, _ := domain.NewUser(uuid.NewString(), "dup@kanso.app")
		dup.PasswordHash = "x"
		assert.ErrorIs(t, users.Create(ctx, dup), domain.ErrEmailAlreadyExists)

		byEmail, err := users.GetByEmail(ctx, "dup@kanso.app")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		_, err = users.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Profiles: weights and dates round trip", func(t *testing.T) {
		u := seedUser(t, ctx, users, "profile@kanso.app")
		w := 72.45
		p, err := domain.NewProfile(u.ID, "Maria", &w)
		require.NoError(t, err)
		require.NoError(t, profiles.Create(ctx, p))

		require.NoError(t, p.StartChallenge(time.Date(2026, 3, 9, 22, 30, 0, 0, domain.ChallengeZone)))
		require.NoError(t, profiles.StartChallenge(ctx, u.ID, *p.ChallengeStartDate))
		assert.ErrorIs(t, profiles.StartChallenge(ctx, u.ID, *p.ChallengeStartDate), domain.ErrChallengeAlreadyStarted)

		got, err := profiles.GetByUserID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got.InitialWeight)
		assert.Equal(t, 72.5, *got.InitialWeight)
		require.NotNil(t, got.ChallengeStartDate)
		assert.Equal(t, "2026-03-10", domain.DateKey(*got.ChallengeStartDate))

		assert.ErrorIs(t, profiles.UpdateDetails(ctx, &domain.Profile{UserID: uuid.NewString(), DisplayName: "x"}), domain.ErrProfileNotFound)
		assert.ErrorIs(t, profiles.StartChallenge(ctx, uuid.NewString(), time.Now()), domain.ErrProfileNotFound)
	})

	t.Run("Profiles: details edit never clobbers completion", func(t *testing.T) {
		u := seedUser(t, ctx, users, "race@kanso.app")
		p, err := domain.NewProfile(u.ID, "Maria", nil)
		require.NoError(t, err)
		require.NoError(t, profiles.Create(ctx, p))

		stale, err := profiles.GetByUserID(ctx, u.ID)
		require.NoError(t, err)

		assert.ErrorIs(t, profiles.CompleteChallenge(ctx, u.ID, time.Now()), domain.ErrChallengeNotStarted)
		require.NoError(t, profiles.StartChallenge(ctx, u.ID, time.Date(2026, 3, 10, 0, 0, 0, 0, domain.ChallengeZone)))
		done := time.Date(2026, 3, 16, 23, 0, 0, 0, time.UTC)
		require.NoError(t, profiles.CompleteChallenge(ctx, u.ID, done))
		assert.ErrorIs(t, profiles.CompleteChallenge(ctx, u.ID, done), domain.ErrChallengeAlreadyCompleted)

		stale.DisplayName = "Ana"
		require.NoError(t, stale.SetCurrentWeight("66.2"))
		require.NoError(t, profiles.UpdateDetails(ctx, stale))

		got, err := profiles.GetByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ana", got.DisplayName)
		assert.Equal(t, 66.2, *got.InitialWeight)
		require.NotNil(t, got.ChallengeStartDate)
		require.NotNil(t, got.ChallengeCompletedAt)
		assert.True(t, done.Equal(*got.ChallengeCompletedAt))
	})

	t.Run("Accounts: a failed profile insert rolls the user back", func(t *testing.T) {
		accounts := NewPostgresAccountRepository(db)
		u, err := domain.NewUser(uuid.NewString(), "atomic@kanso.app")
		require.NoError(t, err)
		require.NoError(t, u.SetPassword("StrongPassword123!"))

		// the profile points at a user that does not exist, so its foreign key fails
		orphan, err := domain.NewProfile(uuid.NewString(), "Maria", nil)
		require.NoError(t, err)

		assert.Error(t, accounts.CreateAccount(ctx, u, orphan, domain.NewScoreAggregate(u.ID)))
		_, err = users.GetByEmail(ctx, "atomic@kanso.app")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)

		p, err := domain.NewProfile(u.ID, "Maria", nil)
		require.NoError(t, err)
		require.NoError(t, accounts.CreateAccount(ctx, u, p, domain.NewScoreAggregate(u.ID)))

		_, err = profiles.GetByUserID(ctx, u.ID)
		assert.NoError(t, err)
		_, err = scores.GetByUserID(ctx, u.ID)
		assert.NoError(t, err)
	})

	t.Run("Daily tasks: unique date and optimistic lock", func(t *testing.T) {
		u := seedUser(t, ctx, users, "tasks@kanso.app")
		start := time.Date(2026, 3, 10, 0, 0, 0, 0, domain.ChallengeZone)
		now := time.Date(2026, 3, 11, 23, 30, 0, 0, domain.ChallengeZone)

		rec, err := domain.NewDailyTaskRecord(u.ID, start, now, domain.Tasks{Hydration: true})
		require.NoError(t, err)
		require.NoError(t, records.Create(ctx, rec))

		again, _ := domain.NewDailyTaskRecord(u.ID, start, now, domain.Tasks{})
		assert.ErrorIs(t, records.Create(ctx, again), domain.ErrTaskRecordConflict)

		fetched, err := records.GetByUserAndDate(ctx, u.ID, now)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-11", domain.DateKey(fetched.Date))
		assert.Equal(t, 2, fetched.ChallengeDay)

		stale := *fetched
		require.NoError(t, fetched.Apply(domain.Tasks{Hydration: true, Sleep: true}, now))
		require.NoError(t, records.Update(ctx, fetched))
		assert.Equal(t, 2, fetched.Version)

		assert.ErrorIs(t, records.Update(ctx, &stale), domain.ErrTaskRecordConflict)

		list, err := records.ListByUserIDAndDateRange(ctx, u.ID, start, start.AddDate(0, 0, 6))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, 20, list[0].Points)
	})

	t.Run("Scores and ranking view", func(t *testing.T) {
		a := seedUser(t, ctx, users, "a@kanso.app")
		b := seedUser(t, ctx, users, "b@kanso.app")
		for _, u := range []*domain.User{a, b} {
			p, err := domain.NewProfile(u.ID, u.Email[:1], nil)
			require.NoError(t, err)
			require.NoError(t, profiles.Create(ctx, p))
		}

		require.NoError(t, scores.Save(ctx, &domain.ScoreAggregate{UserID: a.ID, TotalPoints: 40, Streak: 2, UpdatedAt: time.Now().UTC()}))
		require.NoError(t, scores.Save(ctx, &domain.ScoreAggregate{UserID: b.ID, TotalPoints: 90, Streak: 3, UpdatedAt: time.Now().UTC()}))
		require.NoError(t, scores.Save(ctx, &domain.ScoreAggregate{UserID: a.ID, TotalPoints: 90, Streak: 3, UpdatedAt: time.Now().UTC()}))

		got, err := scores.GetByUserID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, 90, got.TotalPoints)

		posA, err := ranking.GetByUserID(ctx, a.ID)
		require.NoError(t, err)
		posB, err := ranking.GetByUserID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, posA.Rank, posB.Rank)

		assert.ErrorIs(t, scores.Save(ctx, &domain.ScoreAggregate{UserID: uuid.NewString()}), ErrReferenceMissing)
	})
}
