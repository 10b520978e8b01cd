package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

type TaskService struct {
	records  domain.DailyTaskRepository
	profiles domain.ProfileRepository
	scores   ScoreScheduler
	now      func() time.Time
}

func NewTaskService(records domain.DailyTaskRepository, profiles domain.ProfileRepository, scores ScoreScheduler) *TaskService {
	return &TaskService{
		records:  records,
		profiles: profiles,
		scores:   scores,
		now:      time.Now,
	}
}

func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

type RecordProgressInput struct {
	UserID string
	Tasks  domain.Tasks
	// Version is the record version the client last saw; zero skips the check.
	Version int
}

// RecordDailyProgress writes today's tasks (record_daily_progress). Only
// today's record can be written and only while the challenge gate is open.
func (s *TaskService) RecordDailyProgress(ctx context.Context, input RecordProgressInput) (*domain.DailyTaskRecord, error) {
	profile, err := s.profiles.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if gate := domain.TaskGate(profile, now); gate != domain.GateOpen {
		return nil, fmt.Errorf("%w: %s", domain.ErrTasksLocked, gate)
	}

	existing, err := s.records.GetByUserAndDate(ctx, input.UserID, now)
	switch {
	case errors.Is(err, domain.ErrTaskRecordNotFound):
		record, err := domain.NewDailyTaskRecord(input.UserID, *profile.ChallengeStartDate, now, input.Tasks)
		if err != nil {
			return nil, err
		}
		if err := s.records.Create(ctx, record); err != nil {
			return nil, err
		}
		s.scores.Enqueue(input.UserID)
		return record, nil

	case err != nil:
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrTaskRecordConflict
	}

	if err := existing.Apply(input.Tasks, now); err != nil {
		return nil, err
	}
	if err := s.records.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.scores.Enqueue(input.UserID)

	return existing, nil
}

func (s *TaskService) GetToday(ctx context.Context, userID string) (*domain.DailyTaskRecord, error) {
	return s.records.GetByUserAndDate(ctx, userID, s.now())
}

func (s *TaskService) ListHistory(ctx context.Context, userID string, from, to time.Time) ([]*domain.DailyTaskRecord, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: from is after to", domain.ErrInvalidTaskRecord)
	}
	return s.records.ListByUserIDAndDateRange(ctx, userID, domain.CalendarDay(from), domain.CalendarDay(to))
}
