package handler

import (
	"go-stock-ledger/internal/apierror"
	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type MovementHandler struct {
	service service.MovementService
}

func NewMovementHandler(s service.MovementService) *MovementHandler {
	return &MovementHandler{service: s}
}

// CreateMovement records an IN or OUT stock movement.
// POST /api/v1/stock-movements
func (h *MovementHandler) CreateMovement(c *fiber.Ctx) error {
	var req dto.StockMovementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(apierror.NewValidation([]apierror.FieldError{{
			Kind:    apierror.KindInvalid,
			Message: "Invalid JSON: " + err.Error(),
		}}))
	}

	txn, err := h.service.CreateMovement(c.UserContext(), &req, actor(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.StockMovementResponse{
		Success:       true,
		Message:       "Stock movement created successfully",
		TransactionID: txn.TransactionID,
	})
}
