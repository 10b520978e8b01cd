package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

// RankingInvalidator drops cached ranking pages that show profile data.
type RankingInvalidator interface {
	Invalidate(ctx context.Context)
}

type ProfileService struct {
	repo    domain.ProfileRepository
	ranking RankingInvalidator
}

func NewProfileService(repo domain.ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// WithRankingInvalidator makes name and photo changes visible in the ranking
// right away instead of after the cache expires.
func (s *ProfileService) WithRankingInvalidator(ranking RankingInvalidator) *ProfileService {
	s.ranking = ranking
	return s
}

// UpdateProfileInput leaves a field untouched when its pointer is nil.
type UpdateProfileInput struct {
	UserID        string
	DisplayName   *string
	PhotoURL      *string
	CurrentWeight *string
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *ProfileService) Update(ctx context.Context, input UpdateProfileInput) (*domain.Profile, error) {
	profile, err := s.repo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		if err := profile.Rename(*input.DisplayName); err != nil {
			return nil, err
		}
	}
	if input.PhotoURL != nil {
		if err := profile.SetPhotoURL(*input.PhotoURL); err != nil {
			return nil, err
		}
	}
	if input.CurrentWeight != nil {
		if err := profile.SetCurrentWeight(*input.CurrentWeight); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateDetails(ctx, profile); err != nil {
		return nil, err
	}

	if s.ranking != nil {
		s.ranking.Invalidate(ctx)
	}

	return profile, nil
}
