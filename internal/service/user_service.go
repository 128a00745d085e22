package service

import (
	"context"
	"errors"
	"fmt"

	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmailExists  = errors.New("email already exists")
	ErrUnknownRole  = errors.New("role not found")
	ErrDeleteSelf   = errors.New("you cannot delete your own account")
	ErrLastAdmin    = errors.New("at least one active ADMIN must remain")
	ErrInvalidInput = errors.New("validation failed")
)

// UserService manages operator accounts. Privileges follow the role.
type UserService interface {
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, actor Actor) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, userID uuid.UUID, req *dto.UpdateUserRequest, actor Actor) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, userID uuid.UUID, actor Actor) error
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func validateUser(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field '%s' failed on '%s'", ErrInvalidInput, first.FailedField, first.Tag)
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, actor Actor) (*model.UserResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateUser(req); err != nil {
		return nil, err
	}
	if !model.ValidRole(req.Role) {
		return nil, ErrUnknownRole
	}
	if existing, _ := s.users.FindByEmail(ctx, req.Email); existing != nil {
		return nil, ErrEmailExists
	}

	user := &model.User{
		Email:    req.Email,
		FullName: req.FullName,
		RoleCode: req.Role,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	log.Info().Str("email", user.Email).Str("role", user.RoleCode).Str("by", actor.Identifier()).Msg("operator created")
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID uuid.UUID, req *dto.UpdateUserRequest, actor Actor) (*model.UserResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateUser(req); err != nil {
		return nil, err
	}
	if !model.ValidRole(req.Role) {
		return nil, ErrUnknownRole
	}

	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Email != user.Email {
		if existing, _ := s.users.FindByEmail(ctx, req.Email); existing != nil {
			return nil, ErrEmailExists
		}
	}

	wasAdmin := user.RoleCode == model.RoleAdmin && user.IsActive
	// role or status changes revoke the tokens carrying the old privileges
	revoke := req.Role != user.RoleCode || (req.IsActive != nil && *req.IsActive != user.IsActive)

	user.Email = req.Email
	user.FullName = req.FullName
	user.RoleCode = req.Role
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
		revoke = true
	}

	if wasAdmin && (user.RoleCode != model.RoleAdmin || !user.IsActive) {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	if revoke {
		if err := s.users.UpdateTokenVersion(ctx, user.ID, uuid.NewString()); err != nil {
			return nil, err
		}
	}

	log.Info().Str("email", user.Email).Str("by", actor.Identifier()).Msg("operator updated")
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID, actor Actor) error {
	if actor.UserID == userID.String() {
		return ErrDeleteSelf
	}
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if user.RoleCode == model.RoleAdmin && user.IsActive {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return err
		}
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	log.Info().Str("email", user.Email).Str("by", actor.Identifier()).Msg("operator deleted")
	return nil
}

// ensureOtherAdmin fails when removing one active ADMIN would leave none.
func (s *userService) ensureOtherAdmin(ctx context.Context) error {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return err
	}
	active := 0
	for _, u := range users {
		if u.RoleCode == model.RoleAdmin && u.IsActive {
			active++
		}
	}
	if active <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) find(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
