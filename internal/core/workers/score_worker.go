package workers

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

type RecordLister interface {
	ListByUserID(ctx context.Context, userID string) ([]*domain.DailyTaskRecord, error)
}

type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	CompleteChallenge(ctx context.Context, userID string, at time.Time) error
}

// RankingInvalidator drops cached ranking pages after a score changes.
type RankingInvalidator interface {
	Invalidate(ctx context.Context)
}

type ScoreJob struct {
	UserID string
}

// ScoreWorker keeps pontuacoes in sync with desafios_diarios and closes the
// challenge once all seven days are scored.
type ScoreWorker struct {
	records  RecordLister
	scores   domain.ScoreRepository
	profiles ProfileStore
	ranking  RankingInvalidator
	logger   *zap.Logger
	jobs     chan ScoreJob
	done     chan struct{}
	now      func() time.Time
}

func NewScoreWorker(records RecordLister, scores domain.ScoreRepository, profiles ProfileStore, ranking RankingInvalidator, logger *zap.Logger) *ScoreWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreWorker{
		records:  records,
		scores:   scores,
		profiles: profiles,
		ranking:  ranking,
		logger:   logger.Named("score_worker"),
		jobs:     make(chan ScoreJob, 100),
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

func (w *ScoreWorker) WithClock(now func() time.Time) *ScoreWorker {
	w.now = now
	return w
}

func (w *ScoreWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		w.logger.Info("score worker started")
		for {
			select {
			case job := <-w.jobs:
				if err := w.Recalculate(ctx, job.UserID); err != nil && !errors.Is(err, context.Canceled) {
					w.logger.Error("score recalculation failed", zap.String("user_id", job.UserID), zap.Error(err))
				}
			case <-ctx.Done():
				w.logger.Info("score worker shutting down")
				return
			}
		}
	}()
}

// Done is closed once the worker goroutine has exited.
func (w *ScoreWorker) Done() <-chan struct{} {
	return w.done
}

func (w *ScoreWorker) Enqueue(userID string) {
	select {
	case w.jobs <- ScoreJob{UserID: userID}:
	default:
		w.logger.Warn("score queue full, dropping job", zap.String("user_id", userID))
	}
}

// Recalculate rebuilds the user's aggregate synchronously.
func (w *ScoreWorker) Recalculate(ctx context.Context, userID string) error {
	records, err := w.records.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}

	now := w.now()
	score := domain.ComputeScore(userID, records, now)
	if err := w.scores.Save(ctx, score); err != nil {
		return err
	}

	w.logger.Debug("score updated",
		zap.String("user_id", userID),
		zap.Int("pontuacao_total", score.TotalPoints),
		zap.Int("dias_consecutivos", score.Streak),
	)

	if domain.AllDaysScored(records) {
		if err := w.completeChallenge(ctx, userID, now); err != nil {
			return err
		}
	}

	if w.ranking != nil {
		w.ranking.Invalidate(ctx)
	}
	return nil
}

func (w *ScoreWorker) completeChallenge(ctx context.Context, userID string, now time.Time) error {
	profile, err := w.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if profile.ChallengeCompletedAt != nil {
		return nil
	}

	if err := profile.CompleteChallenge(now); err != nil {
		return err
	}
	// a concurrent complete_user_challenge may have won the race
	if err := w.profiles.CompleteChallenge(ctx, userID, now); err != nil {
		if errors.Is(err, domain.ErrChallengeAlreadyCompleted) {
			return nil
		}
		return err
	}

	w.logger.Info("challenge completed", zap.String("user_id", userID))
	return nil
}
