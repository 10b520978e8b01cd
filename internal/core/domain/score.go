package domain

import (
	"errors"
	"sort"
	"time"
)

var ErrScoreNotFound = errors.New("score aggregate not found")

// ScoreAggregate is one row of pontuacoes. TotalPoints always equals the sum
// of the user's daily records.
type ScoreAggregate struct {
	UserID        string    `json:"user_id" db:"user_id"`
	TotalPoints   int       `json:"pontuacao_total" db:"pontuacao_total"`
	Streak        int       `json:"dias_consecutivos" db:"dias_consecutivos"`
	BestStreak    int       `json:"melhor_sequencia" db:"melhor_sequencia"`
	DaysCompleted int       `json:"dias_concluidos" db:"dias_concluidos"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func NewScoreAggregate(userID string) *ScoreAggregate {
	return &ScoreAggregate{
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	}
}

// ComputeScore rebuilds the aggregate from scratch out of the user's records.
func ComputeScore(userID string, records []*DailyTaskRecord, now time.Time) *ScoreAggregate {
	score := NewScoreAggregate(userID)

	scoredDays := make(map[int]bool, ChallengeLength)
	var dates []time.Time
	seen := make(map[string]bool, len(records))

	for _, r := range records {
		score.TotalPoints += r.Points
		if r.Points <= 0 {
			continue
		}
		scoredDays[r.ChallengeDay] = true

		key := DateKey(r.Date)
		if !seen[key] {
			seen[key] = true
			dates = append(dates, CalendarDay(r.Date))
		}
	}

	score.DaysCompleted = len(scoredDays)
	score.Streak, score.BestStreak = calculateStreaks(dates, now)
	return score
}

// AllDaysScored reports whether every challenge day has a record with points.
func AllDaysScored(records []*DailyTaskRecord) bool {
	scored := make(map[int]bool, ChallengeLength)
	for _, r := range records {
		if r.Points > 0 && r.ChallengeDay >= 1 && r.ChallengeDay <= ChallengeLength {
			scored[r.ChallengeDay] = true
		}
	}
	return len(scored) == ChallengeLength
}

// calculateStreaks expects unique calendar days. The current streak survives
// until the end of the day after the last scored day.
func calculateStreaks(dates []time.Time, now time.Time) (int, int) {
	if len(dates) == 0 {
		return 0, 0
	}

	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})

	current := 0
	if DaysBetween(dates[0], now) <= 1 {
		current = 1
		for i := 0; i < len(dates)-1; i++ {
			if DaysBetween(dates[i+1], dates[i]) != 1 {
				break
			}
			current++
		}
	}

	longest := 0
	run := 1
	for i := 0; i < len(dates)-1; i++ {
		if DaysBetween(dates[i+1], dates[i]) == 1 {
			run++
			continue
		}
		longest = max(longest, run)
		run = 1
	}
	longest = max(longest, run)

	return current, longest
}
