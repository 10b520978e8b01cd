package domain

import (
	"sort"
	"time"
)

// RankingEntry is one row of ranking_with_challenge_progress.
type RankingEntry struct {
	Rank                 int        `json:"rank" db:"rank"`
	UserID               string     `json:"user_id" db:"user_id"`
	DisplayName          string     `json:"display_name" db:"display_name"`
	PhotoURL             string     `json:"photo_url,omitempty" db:"photo_url"`
	TotalPoints          int        `json:"pontuacao_total" db:"pontuacao_total"`
	Streak               int        `json:"dias_consecutivos" db:"dias_consecutivos"`
	DaysCompleted        int        `json:"dias_concluidos" db:"dias_concluidos"`
	ChallengeStartDate   *time.Time `json:"challenge_start_date,omitempty" db:"challenge_start_date"`
	ChallengeCompletedAt *time.Time `json:"challenge_completed_at,omitempty" db:"challenge_completed_at"`
	CurrentDay           int        `json:"current_day" db:"-"`
	Completed            bool       `json:"completed" db:"-"`
}

// RankEntries orders entries by points, then streak, then name, and assigns
// dense ranks: ties on points and streak share a position.
func RankEntries(entries []RankingEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		return a.DisplayName < b.DisplayName
	})

	rank := 0
	for i := range entries {
		if i == 0 || entries[i].TotalPoints != entries[i-1].TotalPoints || entries[i].Streak != entries[i-1].Streak {
			rank++
		}
		entries[i].Rank = rank
	}
}

// WithProgress fills the fields that depend on the current date.
func (e *RankingEntry) WithProgress(now time.Time) {
	e.Completed = e.ChallengeCompletedAt != nil
	if e.Completed {
		e.CurrentDay = ChallengeDayCompleted
		return
	}
	if e.ChallengeStartDate == nil {
		e.CurrentDay = 0
		return
	}
	e.CurrentDay = ChallengeDay(e.ChallengeStartDate, nil, now)
}
