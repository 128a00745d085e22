package repository

import (
	"context"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error
	UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error
	CountByRole(ctx context.Context, role string) (int64, error)
	FindAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrap("user find by email", err)
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrap("user find", err)
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return wrap("user create", r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error {
	return r.update(ctx, userID, "password", hashedPassword)
}

func (r *userRepo) UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error {
	return r.update(ctx, userID, "token_version", version)
}

func (r *userRepo) update(ctx context.Context, userID uuid.UUID, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return wrap("user update "+column, res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("user update "+column, ErrNotFound)
	}
	return nil
}

func (r *userRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("role_code = ?", role).Count(&count).Error
	return count, wrap("user count", err)
}

func (r *userRepo) FindAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("email ASC").Find(&users).Error
	return users, wrap("user list", err)
}

// Update saves profile fields. The token version is only changed through
// UpdateTokenVersion.
func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Model(user).
		Select("email", "password", "full_name", "role_code", "is_active").
		Updates(user).Error
	return wrap("user update", err)
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return wrap("user delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("user delete", ErrNotFound)
	}
	return nil
}
