package handler

import (
	"bytes"

	"go-stock-ledger/internal/apierror"
	"go-stock-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GET /api/v1/reports/inventory
func (h *ReportHandler) GetInventory(c *fiber.Ctx) error {
	rep, err := h.service.InventoryReport(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rep)
}

// GET /api/v1/reports/inventory.pdf
func (h *ReportHandler) GetInventoryPDF(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.WriteInventoryPDF(c.UserContext(), &buf); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="inventory-report.pdf"`)
	return c.Send(buf.Bytes())
}

// GET /api/v1/reports/historical?as_of=
func (h *ReportHandler) GetHistorical(c *fiber.Ctx) error {
	asOf, ok := asOfQuery(c)
	if !ok || asOf == nil {
		return c.Status(fiber.StatusBadRequest).JSON(apierror.New("as_of is required (YYYY-MM-DD or RFC 3339)"))
	}
	rep, err := h.service.HistoricalInventory(c.UserContext(), *asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rep)
}
