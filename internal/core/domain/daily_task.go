package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTaskRecordNotFound = errors.New("daily task record not found")
	ErrTaskRecordConflict = errors.New("daily task record version conflict")
	ErrTaskRecordLocked   = errors.New("daily task record can only be changed on its own day")
	ErrTasksLocked        = errors.New("tasks cannot be completed right now")
	ErrInvalidTaskRecord  = errors.New("invalid daily task record")
)

const (
	PointsPerTask  = 10
	TaskCategories = 5
	MaxDailyPoints = PointsPerTask * TaskCategories
)

// Tasks holds one flag per task category of a challenge day.
type Tasks struct {
	Hydration bool `json:"hidratacao" db:"hidratacao"`
	Sleep     bool `json:"sono" db:"sono"`
	Diet      bool `json:"alimentacao" db:"alimentacao"`
	Exercise  bool `json:"exercicio" db:"exercicio"`
	PhotoLog  bool `json:"registro_foto" db:"registro_foto"`
}

func (t Tasks) Completed() int {
	n := 0
	for _, done := range []bool{t.Hydration, t.Sleep, t.Diet, t.Exercise, t.PhotoLog} {
		if done {
			n++
		}
	}
	return n
}

func (t Tasks) Points() int {
	return t.Completed() * PointsPerTask
}

// DailyTaskRecord is one row of desafios_diarios: a user's tasks for one
// calendar day of the challenge.
type DailyTaskRecord struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Date         time.Time `json:"data" db:"data"`
	ChallengeDay int       `json:"dia_desafio" db:"dia_desafio"`
	Tasks
	Points    int       `json:"pontuacao_total" db:"pontuacao_total"`
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewDailyTaskRecord opens today's record for a challenge that started on start.
func NewDailyTaskRecord(userID string, start, now time.Time, tasks Tasks) (*DailyTaskRecord, error) {
	day := ChallengeDayFor(start, now)
	if day == 0 {
		return nil, ErrTasksLocked
	}

	ts := time.Now().UTC()
	rec := &DailyTaskRecord{
		UserID:       userID,
		Date:         CalendarDay(now),
		ChallengeDay: day,
		Tasks:        tasks,
		Points:       tasks.Points(),
		Version:      1,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Apply replaces the task flags. Records of past days are immutable.
func (r *DailyTaskRecord) Apply(tasks Tasks, now time.Time) error {
	if DateKey(r.Date) != DateKey(now) {
		return ErrTaskRecordLocked
	}

	r.Tasks = tasks
	r.Points = tasks.Points()
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *DailyTaskRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return errors.Join(ErrInvalidTaskRecord, errors.New("user_id is required"))
	case r.Date.IsZero():
		return errors.Join(ErrInvalidTaskRecord, errors.New("data is required"))
	case r.ChallengeDay < 1 || r.ChallengeDay > ChallengeLength:
		return errors.Join(ErrInvalidTaskRecord, errors.New("dia_desafio must be between 1 and 7"))
	case r.Points != r.Tasks.Points():
		return errors.Join(ErrInvalidTaskRecord, errors.New("pontuacao_total does not match tasks"))
	}
	return nil
}

func (r *DailyTaskRecord) Progress() ProgressEntry {
	return ProgressEntry{Day: r.ChallengeDay, Points: r.Points}
}
