package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-challenge/internal/core/domain"
)

type AuthService struct {
	accounts domain.AccountRepository
	users    domain.UserRepository
}

func NewAuthService(accounts domain.AccountRepository, users domain.UserRepository) *AuthService {
	return &AuthService{
		accounts: accounts,
		users:    users,
	}
}

type RegisterInput struct {
	Email         string
	Password      string
	DisplayName   string
	InitialWeight string
}

type LoginInput struct {
	Email    string
	Password string
}

// Register creates the login identity together with its profile and an empty
// score row, so the user shows up in the ranking right away. The three rows
// are stored as one unit; a failed registration leaves nothing behind.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.Profile, error) {
	id := uuid.NewString()

	user, err := domain.NewUser(id, input.Email)
	if err != nil {
		return nil, nil, err
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, nil, err
	}

	var initial *float64
	if strings.TrimSpace(input.InitialWeight) != "" {
		w, ok := domain.ParseWeight(input.InitialWeight)
		if !ok {
			return nil, nil, domain.ErrInvalidWeight
		}
		initial = &w
	}

	profile, err := domain.NewProfile(id, input.DisplayName, initial)
	if err != nil {
		return nil, nil, err
	}

	if err := s.accounts.CreateAccount(ctx, user, profile, domain.NewScoreAggregate(id)); err != nil {
		return nil, nil, fmt.Errorf("auth service: failed to create account: %w", err)
	}

	return user, profile, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, error) {
	email, err := domain.NormalizeEmail(input.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: failed to load user: %w", err)
	}

	if err := user.CheckPassword(input.Password); err != nil {
		return nil, err
	}

	return user, nil
}
