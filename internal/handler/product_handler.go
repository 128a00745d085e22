package handler

import (
	"strconv"
	"strings"
	"time"

	"go-stock-ledger/internal/apierror"
	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// GET /api/v1/products?is_active=true|false
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	var filter repository.ProductFilter
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(apierror.New("is_active must be true or false"))
		}
		filter.IsActive = &active
	}

	products, err := h.service.ListProducts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c, "product")
	if err != nil {
		return err
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(apierror.New("Invalid JSON"))
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseUUID(c, "product")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(apierror.New("Invalid JSON"))
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DeactivateProduct is DELETE /products/:id. Lines referencing the product stay.
func (h *ProductHandler) DeactivateProduct(c *fiber.Ctx) error {
	return h.setActive(c, false, "Product deactivated")
}

func (h *ProductHandler) ActivateProduct(c *fiber.Ctx) error {
	return h.setActive(c, true, "Product activated")
}

func (h *ProductHandler) setActive(c *fiber.Ctx, active bool, msg string) error {
	id, err := parseUUID(c, "product")
	if err != nil {
		return err
	}
	product, err := h.service.SetActive(c.UserContext(), id, active, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": msg, "data": product})
}

// GET /api/v1/products/:id/movements
func (h *ProductHandler) GetMovements(c *fiber.Ctx) error {
	id, err := parseUUID(c, "product")
	if err != nil {
		return err
	}
	movements, err := h.service.Movements(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}

// GET /api/v1/products/:id/stock?as_of=
func (h *ProductHandler) GetStock(c *fiber.Ctx) error {
	id, err := parseUUID(c, "product")
	if err != nil {
		return err
	}
	asOf, ok := asOfQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(apierror.New("as_of must be a date or RFC 3339 timestamp"))
	}
	level, err := h.service.StockLevel(c.UserContext(), id, asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(level)
}

// asOfQuery reads ?as_of. A bare date means the end of that day (UTC).
// It returns nil, true when the parameter is absent.
func asOfQuery(c *fiber.Ctx) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query("as_of"))
	if raw == "" {
		return nil, true
	}
	t, err := service.ParseTimestamp(raw)
	if err != nil {
		return nil, false
	}
	if len(raw) == len(time.DateOnly) {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	t = t.UTC()
	return &t, true
}
