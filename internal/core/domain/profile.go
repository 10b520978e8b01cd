package domain

import (
	"errors"
	"html"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ErrProfileNotFound           = errors.New("profile not found")
	ErrDisplayNameEmpty          = errors.New("display name cannot be empty")
	ErrDisplayNameTooLong        = errors.New("display name is too long (max 80 chars)")
	ErrInvalidPhotoURL           = errors.New("invalid photo url (must be http or https)")
	ErrInvalidWeight             = errors.New("invalid weight (expected 30-300 kg, up to 2 decimals)")
	ErrChallengeAlreadyStarted   = errors.New("challenge already started")
	ErrChallengeNotStarted       = errors.New("challenge not started")
	ErrChallengeAlreadyCompleted = errors.New("challenge already completed")
	ErrChallengeNotFinished      = errors.New("challenge still has days to complete")
)

const MaxDisplayNameLen = 80

var namePolicy = bluemonday.StrictPolicy()

type Profile struct {
	UserID               string     `json:"user_id" db:"user_id"`
	DisplayName          string     `json:"display_name" db:"display_name"`
	PhotoURL             string     `json:"photo_url,omitempty" db:"photo_url"`
	InitialWeight        *float64   `json:"initial_weight,omitempty" db:"-"`
	CurrentWeight        *float64   `json:"current_weight,omitempty" db:"-"`
	ChallengeStartDate   *time.Time `json:"challenge_start_date,omitempty" db:"challenge_start_date"`
	ChallengeCompletedAt *time.Time `json:"challenge_completed_at,omitempty" db:"challenge_completed_at"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

func NewProfile(userID, displayName string, initialWeight *float64) (*Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserID
	}

	name, err := cleanDisplayName(displayName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Profile{
		UserID:      userID,
		DisplayName: name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if initialWeight != nil {
		w, ok := WeightToDatabase(*initialWeight)
		if !ok {
			return nil, ErrInvalidWeight
		}
		p.InitialWeight = &w
		current := w
		p.CurrentWeight = &current
	}

	return p, nil
}

func (p *Profile) Rename(displayName string) error {
	name, err := cleanDisplayName(displayName)
	if err != nil {
		return err
	}
	p.DisplayName = name
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Profile) SetPhotoURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		p.PhotoURL = ""
		p.UpdatedAt = time.Now().UTC()
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidPhotoURL
	}

	p.PhotoURL = u.String()
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCurrentWeight stores a weight typed by the user. The first weight ever
// recorded also becomes the initial weight.
func (p *Profile) SetCurrentWeight(input string) error {
	w, ok := ParseWeight(input)
	if !ok {
		return ErrInvalidWeight
	}

	stored, ok := WeightToDatabase(w)
	if !ok {
		return ErrInvalidWeight
	}

	p.CurrentWeight = &stored
	if p.InitialWeight == nil {
		initial := stored
		p.InitialWeight = &initial
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// StartChallenge opts the user in. Day 1 is the calendar day after opting in,
// which keeps the opt-in day view-only.
func (p *Profile) StartChallenge(now time.Time) error {
	if p.ChallengeStartDate != nil {
		return ErrChallengeAlreadyStarted
	}

	start := CalendarDay(now).AddDate(0, 0, 1)
	p.ChallengeStartDate = &start
	p.UpdatedAt = now.UTC()
	return nil
}

func (p *Profile) CompleteChallenge(now time.Time) error {
	if p.ChallengeStartDate == nil {
		return ErrChallengeNotStarted
	}
	if p.ChallengeCompletedAt != nil {
		return ErrChallengeAlreadyCompleted
	}

	completed := now.UTC()
	p.ChallengeCompletedAt = &completed
	p.UpdatedAt = completed
	return nil
}

func (p *Profile) CurrentDay(now time.Time) int {
	if p.ChallengeCompletedAt != nil {
		return ChallengeDayCompleted
	}
	return ChallengeDay(p.ChallengeStartDate, nil, now)
}

func cleanDisplayName(raw string) (string, error) {
	name := strings.TrimSpace(html.UnescapeString(namePolicy.Sanitize(raw)))
	if name == "" {
		return "", ErrDisplayNameEmpty
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLen {
		return "", ErrDisplayNameTooLong
	}
	return name, nil
}
