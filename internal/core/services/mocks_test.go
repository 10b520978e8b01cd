package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) UpdateDetails(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepository) StartChallenge(ctx context.Context, userID string, start time.Time) error {
	return m.Called(ctx, userID, start).Error(0)
}

func (m *MockProfileRepository) CompleteChallenge(ctx context.Context, userID string, at time.Time) error {
	return m.Called(ctx, userID, at).Error(0)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) CreateAccount(ctx context.Context, user *domain.User, profile *domain.Profile, score *domain.ScoreAggregate) error {
	return m.Called(ctx, user, profile, score).Error(0)
}

type MockDailyTaskRepository struct {
	mock.Mock
}

func (m *MockDailyTaskRepository) Create(ctx context.Context, record *domain.DailyTaskRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockDailyTaskRepository) Update(ctx context.Context, record *domain.DailyTaskRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockDailyTaskRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*domain.DailyTaskRecord, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyTaskRecord), args.Error(1)
}

func (m *MockDailyTaskRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.DailyTaskRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DailyTaskRecord), args.Error(1)
}

func (m *MockDailyTaskRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyTaskRecord, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DailyTaskRecord), args.Error(1)
}

type MockRankingRepository struct {
	mock.Mock
}

func (m *MockRankingRepository) List(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RankingEntry), args.Error(1)
}

func (m *MockRankingRepository) GetByUserID(ctx context.Context, userID string) (*domain.RankingEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RankingEntry), args.Error(1)
}

type MockRankingInvalidator struct {
	mock.Mock
}

func (m *MockRankingInvalidator) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

type MockScoreScheduler struct {
	mock.Mock
}

func (m *MockScoreScheduler) Enqueue(userID string) {
	m.Called(userID)
}

// clockAt returns a fixed clock set to the given local challenge time.
func clockAt(y int, mo time.Month, d, h int) func() time.Time {
	t := time.Date(y, mo, d, h, 0, 0, 0, domain.ChallengeZone)
	return func() time.Time { return t }
}

// startedProfile is a profile that joined two days before start and has an
// open challenge window.
func startedProfile(userID string, start time.Time) *domain.Profile {
	s := domain.CalendarDay(start)
	return &domain.Profile{
		UserID:             userID,
		DisplayName:        "Maria",
		ChallengeStartDate: &s,
		CreatedAt:          s.AddDate(0, 0, -2),
		UpdatedAt:          s.AddDate(0, 0, -2),
	}
}
