package domain

import (
	"time"
)

const (
	ChallengeLength       = 7
	ChallengeDayCompleted = ChallengeLength + 1
	DateLayout            = "2006-01-02"
)

// ChallengeZone is the fixed UTC-3 offset every calendar-day computation uses.
var ChallengeZone = time.FixedZone("UTC-3", -3*60*60)

type GateReason string

const (
	GateOpen         GateReason = "open"
	GateNotStarted   GateReason = "not_started"
	GateWaitingStart GateReason = "waiting_start"
	GateCompleted    GateReason = "completed"
	GateFinished     GateReason = "finished"
)

// ProgressEntry is the minimal view of a scored challenge day.
type ProgressEntry struct {
	Day    int `json:"day"`
	Points int `json:"points"`
}

// CalendarDay returns midnight of t's calendar day in ChallengeZone.
func CalendarDay(t time.Time) time.Time {
	local := t.In(ChallengeZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, ChallengeZone)
}

// DateKey formats t's calendar day in ChallengeZone as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return CalendarDay(t).Format(DateLayout)
}

// ParseDateKey reads a YYYY-MM-DD key as midnight in ChallengeZone.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, key, ChallengeZone)
}

// DaysBetween counts calendar days from `from` to `to`. Negative when `to` is earlier.
func DaysBetween(from, to time.Time) int {
	return int(CalendarDay(to).Sub(CalendarDay(from)).Hours() / 24)
}

// ChallengeDay returns the current challenge day in [1, ChallengeDayCompleted].
//
// When start is known the day is derived from the calendar distance to now.
// Otherwise the highest scored day in progress is used: the next day is
// current, or ChallengeDayCompleted once all seven days carry points.
func ChallengeDay(start *time.Time, progress []ProgressEntry, now time.Time) int {
	if start != nil {
		return clampDay(DaysBetween(*start, now) + 1)
	}

	scored := make(map[int]bool, ChallengeLength)
	highest := 0
	for _, p := range progress {
		if p.Points <= 0 || p.Day < 1 || p.Day > ChallengeLength {
			continue
		}
		scored[p.Day] = true
		if p.Day > highest {
			highest = p.Day
		}
	}

	if len(scored) == ChallengeLength {
		return ChallengeDayCompleted
	}
	if highest == 0 {
		return 1
	}
	return min(highest+1, ChallengeLength)
}

func clampDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > ChallengeLength {
		return ChallengeDayCompleted
	}
	return day
}

// TaskGate decides whether a profile may write today's task record.
// The registration day is always view-only.
//
// ChallengeStartDate holds day 1 itself, not the opt-in day: the gate opens
// on that date. Profile.StartChallenge stores the day after opt-in, which is
// what keeps the opt-in day view-only; a start date written any other way
// must follow the same convention.
func TaskGate(p *Profile, now time.Time) GateReason {
	if p == nil || p.ChallengeStartDate == nil {
		return GateNotStarted
	}
	if p.ChallengeCompletedAt != nil {
		return GateCompleted
	}
	if !p.CreatedAt.IsZero() && DaysBetween(p.CreatedAt, now) < 1 {
		return GateWaitingStart
	}

	elapsed := DaysBetween(*p.ChallengeStartDate, now)
	switch {
	case elapsed < 0:
		return GateWaitingStart
	case elapsed >= ChallengeLength:
		return GateFinished
	default:
		return GateOpen
	}
}

// CanCompleteTasks reports whether TaskGate is open.
func CanCompleteTasks(p *Profile, now time.Time) bool {
	return TaskGate(p, now) == GateOpen
}

// ChallengeDayFor maps a calendar date to its challenge day, or 0 when the
// date is outside the seven-day window.
func ChallengeDayFor(start, date time.Time) int {
	day := DaysBetween(start, date) + 1
	if day < 1 || day > ChallengeLength {
		return 0
	}
	return day
}
