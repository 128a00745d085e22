package repository

import (
	"context"

	"go-stock-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	IsActive *bool
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// WithTx returns a repository bound to an open transaction.
func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return wrap("product create", r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Order("code ASC")
	if filter.IsActive != nil {
		q = q.Where("is_active = ?", *filter.IsActive)
	}
	err := q.Find(&products).Error
	return products, wrap("product list", err)
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, wrap("product find", err)
	}
	return &product, nil
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "code = ?", code).Error; err != nil {
		return nil, wrap("product find by code", err)
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&products).Error
	return products, wrap("product find many", err)
}

// LockByIDs loads the products with SELECT ... FOR UPDATE in id order, so
// concurrent writers touching overlapping products queue instead of deadlocking.
// Must run inside a transaction.
func (r *productRepo) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	return products, wrap("product lock", err)
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return wrap("product update", r.db.WithContext(ctx).Save(product).Error)
}

func (r *productRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return wrap("product set active", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("product set active", ErrNotFound)
	}
	return nil
}
