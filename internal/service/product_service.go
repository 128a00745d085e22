package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-stock-ledger/internal/apierror"
	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/pkg/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *dto.ProductRequest, actor Actor) (*model.ProductWithStock, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *dto.ProductRequest, actor Actor) (*model.ProductWithStock, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, actor Actor) (*model.ProductWithStock, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductWithStock, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.ProductWithStock, error)
	Movements(ctx context.Context, id uuid.UUID) ([]repository.ProductMovement, error)
	StockLevel(ctx context.Context, id uuid.UUID, at *time.Time) (*dto.StockLevel, error)
}

type productService struct {
	products repository.ProductRepository
	txns     repository.TransactionRepository
	stock    StockService
	events   EventPublisher
}

func NewProductService(products repository.ProductRepository, txns repository.TransactionRepository, stock StockService, events EventPublisher) ProductService {
	if events == nil {
		events = nopPublisher{}
	}
	return &productService{
		products: products,
		txns:     txns,
		stock:    stock,
		events:   events,
	}
}

// normalize trims text fields, upper-cases the code and rounds the price.
func normalizeProductRequest(req *dto.ProductRequest) {
	req.ProductCode = model.NormalizeCode(req.ProductCode)
	req.ProductName = strings.TrimSpace(req.ProductName)
	req.Unit = strings.TrimSpace(req.Unit)
	req.Price = req.Price.Round(2)
}

func validateProductRequest(req *dto.ProductRequest) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	c := newCollector(apierror.KindInvalid)
	for _, e := range errs {
		c.header(e.FailedField, "%s", productFieldMessage(e))
	}
	return c.err()
}

func productFieldMessage(e *validator.ErrorResponse) string {
	switch e.Tag {
	case "required":
		return e.FailedField + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.FailedField, e.Value)
	case "gt":
		return e.FailedField + " must be greater than 0"
	case "lt":
		return e.FailedField + " is too large"
	case "gte":
		return e.FailedField + " must not be negative"
	default:
		return fmt.Sprintf("%s failed on '%s'", e.FailedField, e.Tag)
	}
}

func duplicateCode(code string) error {
	return singleError(apierror.KindDuplicate, "product_code", "product code %s already exists", code)
}

func (s *productService) CreateProduct(ctx context.Context, req *dto.ProductRequest, actor Actor) (*model.ProductWithStock, error) {
	normalizeProductRequest(req)
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.products.FindByCode(ctx, req.ProductCode); err == nil {
		return nil, duplicateCode(req.ProductCode)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	product := &model.Product{
		Code:        req.ProductCode,
		Name:        req.ProductName,
		Description: req.Description,
		Unit:        req.Unit,
		Price:       req.Price,
		IsActive:    true,
	}
	if req.MinimumStock != nil {
		product.MinimumStock = *req.MinimumStock
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateCode(req.ProductCode)
		}
		return nil, err
	}

	log.Info().Str("product_code", product.Code).Str("by", actor.Identifier()).Msg("product created")
	out := model.NewProductWithStock(*product, 0)
	s.publish(ActionProductCreated, actor, &out, fmt.Sprintf("%s created product '%s'", actor.Name, product.Name))
	return &out, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *dto.ProductRequest, actor Actor) (*model.ProductWithStock, error) {
	normalizeProductRequest(req)
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ProductCode != existing.Code {
		if other, err := s.products.FindByCode(ctx, req.ProductCode); err == nil && other.ID != existing.ID {
			return nil, duplicateCode(req.ProductCode)
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	existing.Code = req.ProductCode
	existing.Name = req.ProductName
	existing.Description = req.Description
	existing.Unit = req.Unit
	existing.Price = req.Price
	if req.MinimumStock != nil {
		existing.MinimumStock = *req.MinimumStock
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.products.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, duplicateCode(req.ProductCode)
		}
		return nil, err
	}

	out, err := s.withStock(ctx, existing)
	if err != nil {
		return nil, err
	}
	s.publish(ActionProductUpdated, actor, out, fmt.Sprintf("%s updated product '%s'", actor.Name, existing.Name))
	return out, nil
}

// SetActive soft-deactivates or reactivates a product. Its lines stay.
func (s *productService) SetActive(ctx context.Context, id uuid.UUID, active bool, actor Actor) (*model.ProductWithStock, error) {
	if err := s.products.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	out, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	action, verb := ActionProductActivated, "activated"
	if !active {
		action, verb = ActionProductDeactivated, "deactivated"
	}
	log.Info().Str("product_code", out.Code).Str("by", actor.Identifier()).Msg("product " + verb)
	s.publish(action, actor, out, fmt.Sprintf("%s %s product '%s'", actor.Name, verb, out.Name))
	return out, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductWithStock, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withStock(ctx, p)
}

func (s *productService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.ProductWithStock, error) {
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	stocks, err := s.stock.CurrentStockBulk(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.ProductWithStock, len(products))
	for i, p := range products {
		out[i] = model.NewProductWithStock(p, stocks[p.ID])
	}
	return out, nil
}

func (s *productService) Movements(ctx context.Context, id uuid.UUID) ([]repository.ProductMovement, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	return s.txns.FindMovementsByProduct(ctx, id)
}

func (s *productService) StockLevel(ctx context.Context, id uuid.UUID, at *time.Time) (*dto.StockLevel, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.stock.Level(ctx, p, at)
}

func (s *productService) find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *productService) withStock(ctx context.Context, p *model.Product) (*model.ProductWithStock, error) {
	stock, err := s.stock.CurrentStock(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	out := model.NewProductWithStock(*p, stock)
	return &out, nil
}

func (s *productService) publish(action string, actor Actor, p *model.ProductWithStock, msg string) {
	ev := newStockEvent(action, actor, msg)
	ev.Products = []EventStock{{
		ProductID:    p.ID,
		ProductCode:  p.Code,
		CurrentStock: p.CurrentStock,
		Status:       p.StockStatus,
	}}
	s.events.Publish(ev)
}
