package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

// ScoreScheduler queues a user's score aggregate for recomputation.
type ScoreScheduler interface {
	Enqueue(userID string)
}

type ChallengeService struct {
	profiles domain.ProfileRepository
	records  domain.DailyTaskRepository
	scores   ScoreScheduler
	now      func() time.Time
}

func NewChallengeService(profiles domain.ProfileRepository, records domain.DailyTaskRepository, scores ScoreScheduler) *ChallengeService {
	return &ChallengeService{
		profiles: profiles,
		records:  records,
		scores:   scores,
		now:      time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (s *ChallengeService) WithClock(now func() time.Time) *ChallengeService {
	s.now = now
	return s
}

// CanCompleteTasks is the authoritative gate behind can_user_complete_tasks.
func (s *ChallengeService) CanCompleteTasks(ctx context.Context, userID string) (bool, domain.GateReason, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return false, "", err
	}

	gate := domain.TaskGate(profile, s.now())
	return gate == domain.GateOpen, gate, nil
}

func (s *ChallengeService) GetStatus(ctx context.Context, userID string) (*domain.ChallengeStatus, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.BuildStatus(profile, s.now()), nil
}

func (s *ChallengeService) Start(ctx context.Context, userID string) (*domain.ChallengeStatus, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := profile.StartChallenge(now); err != nil {
		return nil, err
	}

	if err := s.profiles.StartChallenge(ctx, userID, *profile.ChallengeStartDate); err != nil {
		return nil, fmt.Errorf("challenge service: failed to start challenge: %w", err)
	}

	s.scores.Enqueue(userID)

	return domain.BuildStatus(profile, now), nil
}

// Complete closes the challenge once every day is scored or the seven-day
// window is over.
func (s *ChallengeService) Complete(ctx context.Context, userID string) (*domain.ChallengeStatus, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.ChallengeStartDate == nil {
		return nil, domain.ErrChallengeNotStarted
	}
	if profile.ChallengeCompletedAt != nil {
		return nil, domain.ErrChallengeAlreadyCompleted
	}

	records, err := s.records.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !domain.AllDaysScored(records) && profile.CurrentDay(now) < domain.ChallengeDayCompleted {
		return nil, domain.ErrChallengeNotFinished
	}

	if err := profile.CompleteChallenge(now); err != nil {
		return nil, err
	}
	if err := s.profiles.CompleteChallenge(ctx, userID, *profile.ChallengeCompletedAt); err != nil {
		return nil, fmt.Errorf("challenge service: failed to complete challenge: %w", err)
	}

	s.scores.Enqueue(userID)

	return domain.BuildStatus(profile, now), nil
}

func (s *ChallengeService) GetProgress(ctx context.Context, userID string) (*domain.ChallengeProgress, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return domain.BuildProgress(profile, records, s.now()), nil
}
