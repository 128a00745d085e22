package handler

import (
	"strconv"
	"strings"
	"time"

	"go-stock-ledger/internal/apierror"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// GET /api/v1/transactions?transaction_type=&date_from=&date_to=&limit=
// Dates are YYYY-MM-DD and both ends are inclusive.
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	var filter repository.TransactionFilter

	if raw := strings.ToUpper(strings.TrimSpace(c.Query("transaction_type"))); raw != "" {
		t := model.TransactionType(raw)
		if !t.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(apierror.New("transaction_type must be IN, OUT or ADJ"))
		}
		filter.Type = &t
	}
	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(apierror.New("date_from must be YYYY-MM-DD"))
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(apierror.New("date_to must be YYYY-MM-DD"))
		}
		to = to.AddDate(0, 0, 1)
		filter.DateTo = &to
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(apierror.New("limit must be a positive number"))
		}
		filter.Limit = limit
	}

	transactions, err := h.service.ListTransactions(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := parseUUID(c, "transaction")
	if err != nil {
		return err
	}
	txn, err := h.service.GetTransaction(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txn)
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	id, err := parseUUID(c, "transaction")
	if err != nil {
		return err
	}
	if err := h.service.DeleteTransaction(c.UserContext(), id, actor(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}
