package domain

import "time"

// ChallengeStatus answers get_user_challenge_status.
type ChallengeStatus struct {
	Started          bool       `json:"started"`
	StartDate        *time.Time `json:"start_date,omitempty"`
	CurrentDay       int        `json:"current_day"`
	CanCompleteTasks bool       `json:"can_complete_tasks"`
	Gate             GateReason `json:"gate"`
	Completed        bool       `json:"completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	DaysRemaining    int        `json:"days_remaining"`
}

type DayProgress struct {
	Day    int    `json:"day"`
	Date   string `json:"date"`
	Points int    `json:"points"`
	Tasks  *Tasks `json:"tasks,omitempty"`
	Scored bool   `json:"scored"`
	Locked bool   `json:"locked"`
	Today  bool   `json:"today"`
}

// ChallengeProgress answers get_user_challenge_progress.
type ChallengeProgress struct {
	UserID      string        `json:"user_id"`
	CurrentDay  int           `json:"current_day"`
	TotalPoints int           `json:"pontuacao_total"`
	Days        []DayProgress `json:"days"`
}

func BuildStatus(p *Profile, now time.Time) *ChallengeStatus {
	gate := TaskGate(p, now)
	status := &ChallengeStatus{
		Started:          p.ChallengeStartDate != nil,
		StartDate:        p.ChallengeStartDate,
		CurrentDay:       p.CurrentDay(now),
		CanCompleteTasks: gate == GateOpen,
		Gate:             gate,
		Completed:        p.ChallengeCompletedAt != nil,
		CompletedAt:      p.ChallengeCompletedAt,
	}

	switch {
	case !status.Started:
		status.DaysRemaining = ChallengeLength
	case status.CurrentDay >= ChallengeDayCompleted:
		status.DaysRemaining = 0
	default:
		status.DaysRemaining = ChallengeLength - status.CurrentDay + 1
	}

	return status
}

// BuildProgress lays the user's records over the seven challenge days. Without
// a start date the day slots carry no dates and the current day falls back to
// the scored records.
func BuildProgress(p *Profile, records []*DailyTaskRecord, now time.Time) *ChallengeProgress {
	byDay := make(map[int]*DailyTaskRecord, len(records))
	entries := make([]ProgressEntry, 0, len(records))
	progress := &ChallengeProgress{
		UserID: p.UserID,
		Days:   make([]DayProgress, 0, ChallengeLength),
	}

	for _, r := range records {
		byDay[r.ChallengeDay] = r
		entries = append(entries, r.Progress())
		progress.TotalPoints += r.Points
	}

	if p.ChallengeCompletedAt != nil {
		progress.CurrentDay = ChallengeDayCompleted
	} else {
		progress.CurrentDay = ChallengeDay(p.ChallengeStartDate, entries, now)
	}

	open := TaskGate(p, now) == GateOpen
	today := DateKey(now)

	for day := 1; day <= ChallengeLength; day++ {
		slot := DayProgress{Day: day, Locked: true}

		if p.ChallengeStartDate != nil {
			slot.Date = DateKey(p.ChallengeStartDate.AddDate(0, 0, day-1))
			slot.Today = slot.Date == today
			slot.Locked = !(open && slot.Today)
		}

		if r, ok := byDay[day]; ok {
			tasks := r.Tasks
			slot.Tasks = &tasks
			slot.Points = r.Points
			slot.Scored = r.Points > 0
		}

		progress.Days = append(progress.Days, slot)
	}

	return progress
}
