package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

func newChallengeMocks(now func() time.Time) (*MockProfileRepository, *MockDailyTaskRepository, *MockScoreScheduler, *ChallengeService) {
	profiles := new(MockProfileRepository)
	records := new(MockDailyTaskRepository)
	scheduler := new(MockScoreScheduler)
	return profiles, records, scheduler, NewChallengeService(profiles, records, scheduler).WithClock(now)
}

func scoredWeek(userID string, start time.Time) []*domain.DailyTaskRecord {
	var out []*domain.DailyTaskRecord
	for day := 1; day <= domain.ChallengeLength; day++ {
		tasks := domain.Tasks{Hydration: true}
		out = append(out, &domain.DailyTaskRecord{
			UserID:       userID,
			Date:         domain.CalendarDay(start).AddDate(0, 0, day-1),
			ChallengeDay: day,
			Tasks:        tasks,
			Points:       tasks.Points(),
		})
	}
	return out
}

func TestChallengeService_CanCompleteTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, domain.ChallengeZone)

	tests := []struct {
		name    string
		profile *domain.Profile
		now     func() time.Time
		want    bool
		reason  domain.GateReason
	}{
		{
			name:    "Not started",
			profile: &domain.Profile{UserID: "u1", CreatedAt: start.AddDate(0, 0, -5)},
			now:     clockAt(2026, 3, 10, 9),
			reason:  domain.GateNotStarted,
		},
		{
			name:    "Opt-in day is view only",
			profile: startedProfile("u1", start),
			now:     clockAt(2026, 3, 9, 22),
			reason:  domain.GateWaitingStart,
		},
		{
			name:    "Day one is open",
			profile: startedProfile("u1", start),
			now:     clockAt(2026, 3, 10, 0),
			want:    true,
			reason:  domain.GateOpen,
		},
		{
			name:    "Day seven late evening is still open",
			profile: startedProfile("u1", start),
			now:     func() time.Time { return time.Date(2026, 3, 16, 23, 59, 0, 0, domain.ChallengeZone) },
			want:    true,
			reason:  domain.GateOpen,
		},
		{
			name:    "Day eight is finished",
			profile: startedProfile("u1", start),
			now:     clockAt(2026, 3, 17, 0),
			reason:  domain.GateFinished,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles, _, _, service := newChallengeMocks(tt.now)
			profiles.On("GetByUserID", ctx, "u1").Return(tt.profile, nil)

			ok, reason, err := service.CanCompleteTasks(ctx, "u1")

			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}

	t.Run("Fail: Missing profile", func(t *testing.T) {
		profiles, _, _, service := newChallengeMocks(clockAt(2026, 3, 10, 9))
		profiles.On("GetByUserID", ctx, "ghost").Return(nil, domain.ErrProfileNotFound)

		ok, _, err := service.CanCompleteTasks(ctx, "ghost")

		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
		assert.False(t, ok)
	})
}

func TestChallengeService_Start(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Success: Day one is tomorrow", func(t *testing.T) {
		profiles, _, scheduler, service := newChallengeMocks(clockAt(2026, 3, 9, 21))
		profile := &domain.Profile{UserID: "u1", DisplayName: "Maria", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}

		profiles.On("GetByUserID", ctx, "u1").Return(profile, nil)
		profiles.On("StartChallenge", ctx, "u1", mock.MatchedBy(func(start time.Time) bool {
			return domain.DateKey(start) == "2026-03-10"
		})).Return(nil)
		scheduler.On("Enqueue", "u1").Return()

		status, err := service.Start(ctx, "u1")

		require.NoError(t, err)
		assert.True(t, status.Started)
		assert.Equal(t, "2026-03-10", domain.DateKey(*status.StartDate))
		assert.Equal(t, 1, status.CurrentDay)
		assert.False(t, status.CanCompleteTasks)
		assert.Equal(t, domain.GateWaitingStart, status.Gate)
		assert.Equal(t, 7, status.DaysRemaining)

		profiles.AssertExpectations(t)
		scheduler.AssertExpectations(t)
	})

	t.Run("Fail: Already started", func(t *testing.T) {
		profiles, _, scheduler, service := newChallengeMocks(clockAt(2026, 3, 12, 9))
		profiles.On("GetByUserID", ctx, "u1").Return(startedProfile("u1", time.Date(2026, 3, 10, 0, 0, 0, 0, domain.ChallengeZone)), nil)

		_, err := service.Start(ctx, "u1")

		assert.ErrorIs(t, err, domain.ErrChallengeAlreadyStarted)
		profiles.AssertNotCalled(t, "StartChallenge", mock.Anything, mock.Anything, mock.Anything)
		scheduler.AssertNotCalled(t, "Enqueue", mock.Anything)
	})

	t.Run("Fail: Concurrent start loses the guarded write", func(t *testing.T) {
		profiles, _, scheduler, service := newChallengeMocks(clockAt(2026, 3, 9, 21))
		profiles.On("GetByUserID", ctx, "u1").Return(&domain.Profile{UserID: "u1"}, nil)
		profiles.On("StartChallenge", ctx, "u1", mock.Anything).Return(domain.ErrChallengeAlreadyStarted)

		_, err := service.Start(ctx, "u1")

		assert.ErrorIs(t, err, domain.ErrChallengeAlreadyStarted)
		scheduler.AssertNotCalled(t, "Enqueue", mock.Anything)
	})

	t.Run("Fail: Store error is wrapped", func(t *testing.T) {
		profiles, _, scheduler, service := newChallengeMocks(clockAt(2026, 3, 9, 21))
		profiles.On("GetByUserID", ctx, "u1").Return(&domain.Profile{UserID: "u1"}, nil)
		profiles.On("StartChallenge", ctx, "u1", mock.Anything).Return(errors.New("db down"))

		_, err := service.Start(ctx, "u1")

		assert.ErrorContains(t, err, "failed to start challenge")
		scheduler.AssertNotCalled(t, "Enqueue", mock.Anything)
	})
}

func TestChallengeService_Complete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, domain.ChallengeZone)

	t.Run("Success: All days scored", func(t *testing.T) {
		profiles, records, scheduler, service := newChallengeMocks(clockAt(2026, 3, 16, 20))
		profile := startedProfile("u1", start)

		profiles.On("GetByUserID", ctx, "u1").Return(profile, nil)
		records.On("ListByUserID", ctx, "u1").Return(scoredWeek("u1", start), nil)
		profiles.On("CompleteChallenge", ctx, "u1", mock.AnythingOfType("time.Time")).Return(nil)
		scheduler.On("Enqueue", "u1").Return()

		status, err := service.Complete(ctx, "u1")

		require.NoError(t, err)
		assert.True(t, status.Completed)
		assert.Equal(t, domain.ChallengeDayCompleted, status.CurrentDay)
		assert.Equal(t, domain.GateCompleted, status.Gate)
		assert.Zero(t, status.DaysRemaining)
	})

	t.Run("Success: Window is over even with gaps", func(t *testing.T) {
		profiles, records, scheduler, service := newChallengeMocks(clockAt(2026, 3, 18, 9))
		profile := startedProfile("u1", start)

		profiles.On("GetByUserID", ctx, "u1").Return(profile, nil)
		records.On("ListByUserID", ctx, "u1").Return(scoredWeek("u1", start)[:3], nil)
		profiles.On("CompleteChallenge", ctx, "u1", mock.AnythingOfType("time.Time")).Return(nil)
		scheduler.On("Enqueue", "u1").Return()

		status, err := service.Complete(ctx, "u1")

		require.NoError(t, err)
		assert.True(t, status.Completed)
	})

	t.Run("Fail: Days still open", func(t *testing.T) {
		profiles, records, _, service := newChallengeMocks(clockAt(2026, 3, 12, 9))

		profiles.On("GetByUserID", ctx, "u1").Return(startedProfile("u1", start), nil)
		records.On("ListByUserID", ctx, "u1").Return(scoredWeek("u1", start)[:2], nil)

		_, err := service.Complete(ctx, "u1")

		assert.ErrorIs(t, err, domain.ErrChallengeNotFinished)
		profiles.AssertNotCalled(t, "CompleteChallenge", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Fail: Not started", func(t *testing.T) {
		profiles, records, _, service := newChallengeMocks(clockAt(2026, 3, 12, 9))
		profiles.On("GetByUserID", ctx, "u1").Return(&domain.Profile{UserID: "u1"}, nil)

		_, err := service.Complete(ctx, "u1")

		assert.ErrorIs(t, err, domain.ErrChallengeNotStarted)
		records.AssertNotCalled(t, "ListByUserID", mock.Anything, mock.Anything)
	})

	t.Run("Fail: Already completed", func(t *testing.T) {
		profiles, _, _, service := newChallengeMocks(clockAt(2026, 3, 20, 9))
		profile := startedProfile("u1", start)
		done := time.Date(2026, 3, 16, 23, 0, 0, 0, time.UTC)
		profile.ChallengeCompletedAt = &done
		profiles.On("GetByUserID", ctx, "u1").Return(profile, nil)

		_, err := service.Complete(ctx, "u1")

		assert.ErrorIs(t, err, domain.ErrChallengeAlreadyCompleted)
	})

	t.Run("Fail: Worker completed it first", func(t *testing.T) {
		profiles, records, scheduler, service := newChallengeMocks(clockAt(2026, 3, 18, 9))

		profiles.On("GetByUserID", ctx, "u1").Return(startedProfile("u1", start), nil)
		records.On("ListByUserID", ctx, "u1").Return(scoredWeek("u1", start), nil)
		profiles.On("CompleteChallenge", ctx, "u1", mock.Anything).Return(domain.ErrChallengeAlreadyCompleted)

		_, err := service.Complete(ctx, "u1")

		assert.ErrorIs(t, err, domain.ErrChallengeAlreadyCompleted)
		scheduler.AssertNotCalled(t, "Enqueue", mock.Anything)
	})
}

func TestChallengeService_GetStatusAndProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, domain.ChallengeZone)

	t.Run("Status mid challenge", func(t *testing.T) {
		profiles, _, _, service := newChallengeMocks(clockAt(2026, 3, 12, 9))
		profiles.On("GetByUserID", ctx, "u1").Return(startedProfile("u1", start), nil)

		status, err := service.GetStatus(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, 3, status.CurrentDay)
		assert.True(t, status.CanCompleteTasks)
		assert.Equal(t, 5, status.DaysRemaining)
	})

	t.Run("Progress lays records over seven days", func(t *testing.T) {
		profiles, records, _, service := newChallengeMocks(clockAt(2026, 3, 12, 9))
		profiles.On("GetByUserID", ctx, "u1").Return(startedProfile("u1", start), nil)
		records.On("ListByUserID", ctx, "u1").Return(scoredWeek("u1", start)[:2], nil)

		progress, err := service.GetProgress(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, 3, progress.CurrentDay)
		assert.Equal(t, 20, progress.TotalPoints)
		require.Len(t, progress.Days, domain.ChallengeLength)
		assert.True(t, progress.Days[0].Scored)
		assert.True(t, progress.Days[0].Locked)
		assert.True(t, progress.Days[2].Today)
		assert.False(t, progress.Days[2].Locked)
		assert.Nil(t, progress.Days[2].Tasks)
	})

	t.Run("Progress propagates list errors", func(t *testing.T) {
		profiles, records, _, service := newChallengeMocks(clockAt(2026, 3, 12, 9))
		profiles.On("GetByUserID", ctx, "u1").Return(startedProfile("u1", start), nil)
		records.On("ListByUserID", ctx, "u1").Return(nil, errors.New("boom"))

		_, err := service.GetProgress(ctx, "u1")

		assert.EqualError(t, err, "boom")
	})
}
