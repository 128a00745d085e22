package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/jwt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	EnsureAdmin(ctx context.Context, email, password, fullName string) (bool, error)
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	users  repository.UserRepository
	tokens *jwt.Manager
}

func NewAuthService(users repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: a new version invalidates every older token.
	version := uuid.NewString()
	if err := s.users.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	user.TokenVersion = version

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.RoleCode, user.Privileges(), version)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info().Str("email", user.Email).Msg("operator logged in")
	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Privileges: user.Privileges(),
	}, nil
}

// ChangePassword sets a new password and ends the current session.
func (s *authService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	return s.users.UpdateTokenVersion(ctx, user.ID, uuid.NewString())
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, jwt.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Privileges: user.Privileges(),
	}, nil
}

// EnsureAdmin creates an ADMIN operator when none exists yet. It reports
// whether one was created.
func (s *authService) EnsureAdmin(ctx context.Context, email, password, fullName string) (bool, error) {
	count, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, errors.New("no admin exists and BOOTSTRAP_ADMIN_EMAIL/BOOTSTRAP_ADMIN_PASSWORD are not set")
	}

	admin := &model.User{
		Email:    email,
		FullName: fullName,
		RoleCode: model.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(password); err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return false, err
	}
	log.Info().Str("email", email).Msg("admin operator created")
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
