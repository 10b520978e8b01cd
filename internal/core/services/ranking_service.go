package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

const (
	DefaultRankingLimit = 50
	MaxRankingLimit     = 200
)

type RankingService struct {
	repo domain.RankingRepository
	now  func() time.Time
}

func NewRankingService(repo domain.RankingRepository) *RankingService {
	return &RankingService{repo: repo, now: time.Now}
}

func (s *RankingService) WithClock(now func() time.Time) *RankingService {
	s.now = now
	return s
}

func (s *RankingService) List(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	limit = min(limit, MaxRankingLimit)

	entries, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range entries {
		entries[i].WithProgress(now)
	}
	return entries, nil
}

func (s *RankingService) Position(ctx context.Context, userID string) (*domain.RankingEntry, error) {
	entry, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	entry.WithProgress(s.now())
	return entry, nil
}
