package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

var (
	_ domain.UserRepository      = (*InMemoryUserRepository)(nil)
	_ domain.ProfileRepository   = (*InMemoryProfileRepository)(nil)
	_ domain.DailyTaskRepository = (*InMemoryDailyTaskRepository)(nil)
	_ domain.ScoreRepository     = (*InMemoryScoreRepository)(nil)
	_ domain.RankingRepository   = (*InMemoryRankingRepository)(nil)
	_ domain.AccountRepository   = (*InMemoryAccountRepository)(nil)
)

type InMemoryUserRepository struct {
	store map[string]domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{store: make(map[string]domain.User)}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.store[user.ID] = *user
	return nil
}

func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.store, id)
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type InMemoryProfileRepository struct {
	store map[string]domain.Profile

	mu sync.RWMutex
}

func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{store: make(map[string]domain.Profile)}
}

func (r *InMemoryProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[profile.UserID] = *profile
	return nil
}

func (r *InMemoryProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.store[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &p, nil
}

func (r *InMemoryProfileRepository) UpdateDetails(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[profile.UserID]
	if !ok {
		return domain.ErrProfileNotFound
	}

	stored.DisplayName = profile.DisplayName
	stored.PhotoURL = profile.PhotoURL
	if stored.InitialWeight == nil && profile.InitialWeight != nil {
		w := *profile.InitialWeight
		stored.InitialWeight = &w
	}
	stored.CurrentWeight = nil
	if profile.CurrentWeight != nil {
		w := *profile.CurrentWeight
		stored.CurrentWeight = &w
	}
	stored.UpdatedAt = time.Now().UTC()

	r.store[profile.UserID] = stored
	return nil
}

func (r *InMemoryProfileRepository) StartChallenge(ctx context.Context, userID string, start time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if stored.ChallengeStartDate != nil {
		return startConflict(&stored)
	}

	day := domain.CalendarDay(start)
	stored.ChallengeStartDate = &day
	stored.UpdatedAt = time.Now().UTC()
	r.store[userID] = stored
	return nil
}

func (r *InMemoryProfileRepository) CompleteChallenge(ctx context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.store[userID]
	if !ok {
		return domain.ErrProfileNotFound
	}
	if stored.ChallengeStartDate == nil || stored.ChallengeCompletedAt != nil {
		return completeConflict(&stored)
	}

	completed := at.UTC()
	stored.ChallengeCompletedAt = &completed
	stored.UpdatedAt = completed
	r.store[userID] = stored
	return nil
}

// Replace overwrites the stored profile as a whole. It only exists to seed
// fixtures; application code goes through the column-scoped writes.
func (r *InMemoryProfileRepository) Replace(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[profile.UserID]; !ok {
		return domain.ErrProfileNotFound
	}
	r.store[profile.UserID] = *profile
	return nil
}

func (r *InMemoryProfileRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.store, userID)
	return nil
}

func (r *InMemoryProfileRepository) list() []domain.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Profile, 0, len(r.store))
	for _, p := range r.store {
		out = append(out, p)
	}
	return out
}

type InMemoryDailyTaskRepository struct {
	// keyed by user id, then by date key
	store map[string]map[string]domain.DailyTaskRecord

	mu sync.RWMutex
}

func NewInMemoryDailyTaskRepository() *InMemoryDailyTaskRepository {
	return &InMemoryDailyTaskRepository{store: make(map[string]map[string]domain.DailyTaskRecord)}
}

func (r *InMemoryDailyTaskRepository) Create(ctx context.Context, record *domain.DailyTaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.DateKey(record.Date)
	days, ok := r.store[record.UserID]
	if !ok {
		days = make(map[string]domain.DailyTaskRecord)
		r.store[record.UserID] = days
	}
	if _, exists := days[key]; exists {
		return domain.ErrTaskRecordConflict
	}

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	days[key] = *record
	return nil
}

func (r *InMemoryDailyTaskRepository) Update(ctx context.Context, record *domain.DailyTaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := domain.DateKey(record.Date)
	stored, ok := r.store[record.UserID][key]
	if !ok {
		return domain.ErrTaskRecordNotFound
	}
	if stored.Version != record.Version {
		return domain.ErrTaskRecordConflict
	}

	record.Version++
	record.UpdatedAt = time.Now().UTC()
	r.store[record.UserID][key] = *record
	return nil
}

func (r *InMemoryDailyTaskRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*domain.DailyTaskRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store[userID][domain.DateKey(date)]
	if !ok {
		return nil, domain.ErrTaskRecordNotFound
	}
	return &rec, nil
}

func (r *InMemoryDailyTaskRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.DailyTaskRecord, error) {
	return r.filter(userID, func(domain.DailyTaskRecord) bool { return true }), nil
}

func (r *InMemoryDailyTaskRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyTaskRecord, error) {
	fromKey, toKey := domain.DateKey(from), domain.DateKey(to)
	return r.filter(userID, func(rec domain.DailyTaskRecord) bool {
		key := domain.DateKey(rec.Date)
		return key >= fromKey && key <= toKey
	}), nil
}

func (r *InMemoryDailyTaskRepository) filter(userID string, keep func(domain.DailyTaskRecord) bool) []*domain.DailyTaskRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*domain.DailyTaskRecord{}
	for _, rec := range r.store[userID] {
		if keep(rec) {
			rec := rec
			out = append(out, &rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

type InMemoryScoreRepository struct {
	store map[string]domain.ScoreAggregate

	mu sync.RWMutex
}

func NewInMemoryScoreRepository() *InMemoryScoreRepository {
	return &InMemoryScoreRepository{store: make(map[string]domain.ScoreAggregate)}
}

func (r *InMemoryScoreRepository) Save(ctx context.Context, score *domain.ScoreAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[score.UserID] = *score
	return nil
}

func (r *InMemoryScoreRepository) GetByUserID(ctx context.Context, userID string) (*domain.ScoreAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[userID]
	if !ok {
		return nil, domain.ErrScoreNotFound
	}
	return &s, nil
}

// InMemoryRankingRepository derives the ranking view from the in-memory
// profile and score stores, the way ranking_with_challenge_progress joins them.
type InMemoryRankingRepository struct {
	profiles *InMemoryProfileRepository
	scores   *InMemoryScoreRepository
}

func NewInMemoryRankingRepository(profiles *InMemoryProfileRepository, scores *InMemoryScoreRepository) *InMemoryRankingRepository {
	return &InMemoryRankingRepository{profiles: profiles, scores: scores}
}

func (r *InMemoryRankingRepository) all(ctx context.Context) []domain.RankingEntry {
	profiles := r.profiles.list()
	entries := make([]domain.RankingEntry, 0, len(profiles))

	for _, p := range profiles {
		entry := domain.RankingEntry{
			UserID:               p.UserID,
			DisplayName:          p.DisplayName,
			PhotoURL:             p.PhotoURL,
			ChallengeStartDate:   p.ChallengeStartDate,
			ChallengeCompletedAt: p.ChallengeCompletedAt,
		}
		if s, err := r.scores.GetByUserID(ctx, p.UserID); err == nil {
			entry.TotalPoints = s.TotalPoints
			entry.Streak = s.Streak
			entry.DaysCompleted = s.DaysCompleted
		}
		entries = append(entries, entry)
	}

	domain.RankEntries(entries)
	return entries
}

func (r *InMemoryRankingRepository) List(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	entries := r.all(ctx)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *InMemoryRankingRepository) GetByUserID(ctx context.Context, userID string) (*domain.RankingEntry, error) {
	for _, e := range r.all(ctx) {
		if e.UserID == userID {
			return &e, nil
		}
	}
	return nil, domain.ErrProfileNotFound
}

type accountUsers interface {
	Create(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

type accountProfiles interface {
	Create(ctx context.Context, profile *domain.Profile) error
	Delete(ctx context.Context, userID string) error
}

// InMemoryAccountRepository creates accounts across the in-memory stores,
// undoing the earlier writes when a later one fails.
type InMemoryAccountRepository struct {
	users    accountUsers
	profiles accountProfiles
	scores   domain.ScoreRepository

	mu sync.Mutex
}

func NewInMemoryAccountRepository(users accountUsers, profiles accountProfiles, scores domain.ScoreRepository) *InMemoryAccountRepository {
	return &InMemoryAccountRepository{users: users, profiles: profiles, scores: scores}
}

func (r *InMemoryAccountRepository) CreateAccount(ctx context.Context, user *domain.User, profile *domain.Profile, score *domain.ScoreAggregate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.users.Create(ctx, user); err != nil {
		return err
	}
	if err := r.profiles.Create(ctx, profile); err != nil {
		_ = r.users.Delete(ctx, user.ID)
		return err
	}
	if err := r.scores.Save(ctx, score); err != nil {
		_ = r.profiles.Delete(ctx, profile.UserID)
		_ = r.users.Delete(ctx, user.ID)
		return err
	}
	return nil
}
