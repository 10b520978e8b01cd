// Package client is a typed HTTP client for the challenge API, used by
// challengectl. Records coming back from the server are validated before
// they are handed to callers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

var ErrInvalidResponse = errors.New("invalid response from api")

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

type Profile struct {
	UserID             string `json:"user_id"`
	DisplayName        string `json:"display_name" validate:"required,max=80"`
	PhotoURL           string `json:"photo_url,omitempty" validate:"omitempty,url"`
	InitialWeightLabel string `json:"initial_weight_label" validate:"required"`
	CurrentWeightLabel string `json:"current_weight_label" validate:"required"`
	ChallengeStartDate string `json:"challenge_start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type canCompleteResponse struct {
	CanComplete bool              `json:"can_complete"`
	Reason      domain.GateReason `json:"reason"`
}

type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	validate *validator.Validate
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 10 * time.Second},
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateRecord, domain.DailyTaskRecord{})
	v.RegisterStructValidation(validateRankingEntry, domain.RankingEntry{})
	return v
}

func validateRecord(sl validator.StructLevel) {
	r := sl.Current().Interface().(domain.DailyTaskRecord)
	if r.UserID == "" {
		sl.ReportError(r.UserID, "UserID", "user_id", "required", "")
	}
	if r.ChallengeDay < 1 || r.ChallengeDay > domain.ChallengeLength {
		sl.ReportError(r.ChallengeDay, "ChallengeDay", "dia_desafio", "challenge_day", "")
	}
	if r.Points != r.Tasks.Points() {
		sl.ReportError(r.Points, "Points", "pontuacao_total", "points_match_tasks", "")
	}
}

func validateRankingEntry(sl validator.StructLevel) {
	e := sl.Current().Interface().(domain.RankingEntry)
	if e.Rank < 1 {
		sl.ReportError(e.Rank, "Rank", "rank", "min", "1")
	}
	if e.TotalPoints < 0 || e.TotalPoints > domain.MaxDailyPoints*domain.ChallengeLength {
		sl.ReportError(e.TotalPoints, "TotalPoints", "pontuacao_total", "points_range", "")
	}
	if e.CurrentDay < 0 || e.CurrentDay > domain.ChallengeDayCompleted {
		sl.ReportError(e.CurrentDay, "CurrentDay", "current_day", "challenge_day", "")
	}
}

func (c *Client) Status(ctx context.Context) (*domain.ChallengeStatus, error) {
	var status domain.ChallengeStatus
	if err := c.do(ctx, http.MethodGet, "/api/v1/challenge/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Progress(ctx context.Context) (*domain.ChallengeProgress, error) {
	var progress domain.ChallengeProgress
	if err := c.do(ctx, http.MethodGet, "/api/v1/challenge/progress", nil, &progress); err != nil {
		return nil, err
	}
	if len(progress.Days) != domain.ChallengeLength {
		return nil, fmt.Errorf("%w: expected %d days, got %d", ErrInvalidResponse, domain.ChallengeLength, len(progress.Days))
	}
	return &progress, nil
}

func (c *Client) CanComplete(ctx context.Context) (bool, domain.GateReason, error) {
	var resp canCompleteResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/challenge/can-complete", nil, &resp); err != nil {
		return false, "", err
	}
	return resp.CanComplete, resp.Reason, nil
}

func (c *Client) Start(ctx context.Context) (*domain.ChallengeStatus, error) {
	var status domain.ChallengeStatus
	if err := c.do(ctx, http.MethodPost, "/api/v1/challenge/start", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Complete(ctx context.Context) (*domain.ChallengeStatus, error) {
	var status domain.ChallengeStatus
	if err := c.do(ctx, http.MethodPost, "/api/v1/challenge/complete", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// RecordProgress writes today's tasks. A zero version skips the optimistic check.
func (c *Client) RecordProgress(ctx context.Context, tasks domain.Tasks, version int) (*domain.DailyTaskRecord, error) {
	body := struct {
		domain.Tasks
		Version int `json:"version"`
	}{Tasks: tasks, Version: version}

	var record domain.DailyTaskRecord
	if err := c.do(ctx, http.MethodPost, "/api/v1/challenge/progress", body, &record); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &record, nil
}

func (c *Client) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	path := "/api/v1/ranking"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var entries []domain.RankingEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		if err := c.validate.Struct(entries[i]); err != nil {
			return nil, fmt.Errorf("%w: ranking entry %d: %v", ErrInvalidResponse, i, err)
		}
	}
	return entries, nil
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &profile); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &profile, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}
