package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

func TestInMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryUserRepository()

	u, _ := domain.NewUser("u1", "maria@kanso.app")
	require.NoError(t, repo.Create(ctx, u))

	dup, _ := domain.NewUser("u2", "maria@kanso.app")
	assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrEmailAlreadyExists)

	got, err := repo.GetByEmail(ctx, "maria@kanso.app")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = repo.GetByID(ctx, "u2")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestInMemoryProfileRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryProfileRepository()

	p, _ := domain.NewProfile("u1", "Maria", nil)
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByUserID(ctx, "u1")
	require.NoError(t, err)
	got.DisplayName = "changed"

	again, _ := repo.GetByUserID(ctx, "u1")
	assert.Equal(t, "Maria", again.DisplayName)

	assert.ErrorIs(t, repo.UpdateDetails(ctx, &domain.Profile{UserID: "ghost"}), domain.ErrProfileNotFound)
}

func TestInMemoryProfileRepository_ColumnScopedWrites(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, domain.ChallengeZone)
	done := time.Date(2026, 3, 16, 23, 0, 0, 0, time.UTC)

	t.Run("Details edit keeps lifecycle columns", func(t *testing.T) {
		repo := NewInMemoryProfileRepository()
		p, _ := domain.NewProfile("u1", "Maria", nil)
		require.NoError(t, repo.Create(ctx, p))

		stale, err := repo.GetByUserID(ctx, "u1")
		require.NoError(t, err)

		require.NoError(t, repo.StartChallenge(ctx, "u1", start))
		require.NoError(t, repo.CompleteChallenge(ctx, "u1", done))

		stale.DisplayName = "Ana"
		require.NoError(t, stale.SetCurrentWeight("70.5"))
		require.NoError(t, repo.UpdateDetails(ctx, stale))

		got, _ := repo.GetByUserID(ctx, "u1")
		assert.Equal(t, "Ana", got.DisplayName)
		assert.Equal(t, 70.5, *got.CurrentWeight)
		require.NotNil(t, got.ChallengeStartDate)
		require.NotNil(t, got.ChallengeCompletedAt)
		assert.Equal(t, done, *got.ChallengeCompletedAt)
	})

	t.Run("Initial weight is written once", func(t *testing.T) {
		repo := NewInMemoryProfileRepository()
		w := 80.0
		p, _ := domain.NewProfile("u1", "Maria", &w)
		require.NoError(t, repo.Create(ctx, p))

		other := 60.0
		require.NoError(t, repo.UpdateDetails(ctx, &domain.Profile{UserID: "u1", DisplayName: "Maria", InitialWeight: &other, CurrentWeight: &other}))

		got, _ := repo.GetByUserID(ctx, "u1")
		assert.Equal(t, 80.0, *got.InitialWeight)
		assert.Equal(t, 60.0, *got.CurrentWeight)
	})

	t.Run("Lifecycle writes are guarded", func(t *testing.T) {
		repo := NewInMemoryProfileRepository()
		p, _ := domain.NewProfile("u1", "Maria", nil)
		require.NoError(t, repo.Create(ctx, p))

		assert.ErrorIs(t, repo.CompleteChallenge(ctx, "u1", done), domain.ErrChallengeNotStarted)
		require.NoError(t, repo.StartChallenge(ctx, "u1", start.Add(5*time.Hour)))
		assert.ErrorIs(t, repo.StartChallenge(ctx, "u1", start.AddDate(0, 0, 1)), domain.ErrChallengeAlreadyStarted)

		require.NoError(t, repo.CompleteChallenge(ctx, "u1", done))
		assert.ErrorIs(t, repo.CompleteChallenge(ctx, "u1", done.Add(time.Hour)), domain.ErrChallengeAlreadyCompleted)

		got, _ := repo.GetByUserID(ctx, "u1")
		assert.Equal(t, "2026-03-10", domain.DateKey(*got.ChallengeStartDate))
		assert.Equal(t, done, *got.ChallengeCompletedAt)

		assert.ErrorIs(t, repo.StartChallenge(ctx, "ghost", start), domain.ErrProfileNotFound)
	})
}

type failingProfiles struct {
	*InMemoryProfileRepository
	err error
}

func (f *failingProfiles) Create(ctx context.Context, profile *domain.Profile) error {
	if f.err != nil {
		return f.err
	}
	return f.InMemoryProfileRepository.Create(ctx, profile)
}

func TestInMemoryAccountRepository_RollsBack(t *testing.T) {
	ctx := context.Background()
	users := NewInMemoryUserRepository()
	profiles := &failingProfiles{InMemoryProfileRepository: NewInMemoryProfileRepository(), err: errors.New("disk full")}
	scores := NewInMemoryScoreRepository()
	accounts := NewInMemoryAccountRepository(users, profiles, scores)

	u, _ := domain.NewUser("u1", "maria@kanso.app")
	p, _ := domain.NewProfile("u1", "Maria", nil)

	assert.EqualError(t, accounts.CreateAccount(ctx, u, p, domain.NewScoreAggregate("u1")), "disk full")

	_, err := users.GetByEmail(ctx, "maria@kanso.app")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = scores.GetByUserID(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrScoreNotFound)

	profiles.err = nil
	require.NoError(t, accounts.CreateAccount(ctx, u, p, domain.NewScoreAggregate("u1")))

	_, err = profiles.GetByUserID(ctx, "u1")
	assert.NoError(t, err)
	_, err = scores.GetByUserID(ctx, "u1")
	assert.NoError(t, err)

	dup, _ := domain.NewUser("u2", "maria@kanso.app")
	assert.ErrorIs(t, accounts.CreateAccount(ctx, dup, &domain.Profile{UserID: "u2"}, domain.NewScoreAggregate("u2")), domain.ErrEmailAlreadyExists)
	_, err = profiles.GetByUserID(ctx, "u2")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestInMemoryDailyTaskRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryDailyTaskRepository()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, domain.ChallengeZone)

	var created []*domain.DailyTaskRecord
	for i := 2; i >= 0; i-- {
		now := start.AddDate(0, 0, i).Add(10 * time.Hour)
		rec, err := domain.NewDailyTaskRecord("u1", start, now, domain.Tasks{Sleep: true})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, rec))
		assert.NotEmpty(t, rec.ID)
		created = append(created, rec)
	}

	t.Run("Duplicate date conflicts", func(t *testing.T) {
		dup, _ := domain.NewDailyTaskRecord("u1", start, start.Add(20*time.Hour), domain.Tasks{})
		assert.ErrorIs(t, repo.Create(ctx, dup), domain.ErrTaskRecordConflict)
	})

	t.Run("Lists are ordered by date", func(t *testing.T) {
		all, err := repo.ListByUserID(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{all[0].ChallengeDay, all[1].ChallengeDay, all[2].ChallengeDay})

		ranged, err := repo.ListByUserIDAndDateRange(ctx, "u1", start.AddDate(0, 0, 1), start.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.Len(t, ranged, 2)

		none, err := repo.ListByUserID(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Update checks the version", func(t *testing.T) {
		rec, err := repo.GetByUserAndDate(ctx, "u1", start)
		require.NoError(t, err)
		stale := *rec

		rec.Tasks = domain.Tasks{Sleep: true, Diet: true}
		rec.Points = rec.Tasks.Points()
		require.NoError(t, repo.Update(ctx, rec))
		assert.Equal(t, 2, rec.Version)

		assert.ErrorIs(t, repo.Update(ctx, &stale), domain.ErrTaskRecordConflict)

		missing := *created[0]
		missing.Date = start.AddDate(0, 0, 5)
		assert.ErrorIs(t, repo.Update(ctx, &missing), domain.ErrTaskRecordNotFound)
	})
}

func TestInMemoryRankingRepository(t *testing.T) {
	ctx := context.Background()
	profiles := NewInMemoryProfileRepository()
	scores := NewInMemoryScoreRepository()
	ranking := NewInMemoryRankingRepository(profiles, scores)

	for _, name := range []string{"Ana", "Bia", "Caio"} {
		p, _ := domain.NewProfile(name, name, nil)
		require.NoError(t, profiles.Create(ctx, p))
	}
	require.NoError(t, scores.Save(ctx, &domain.ScoreAggregate{UserID: "Bia", TotalPoints: 50, Streak: 1}))
	require.NoError(t, scores.Save(ctx, &domain.ScoreAggregate{UserID: "Caio", TotalPoints: 50, Streak: 1}))

	list, err := ranking.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bia", list[0].UserID)
	assert.Equal(t, 1, list[1].Rank)

	ana, err := ranking.GetByUserID(ctx, "Ana")
	require.NoError(t, err)
	assert.Equal(t, 2, ana.Rank)
	assert.Zero(t, ana.TotalPoints)

	_, err = ranking.GetByUserID(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
