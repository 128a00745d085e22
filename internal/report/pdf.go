package report

import (
	"fmt"
	"io"

	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/model"

	"github.com/go-pdf/fpdf"
)

// WriteInventoryPDF renders the stock snapshot as an A4 table.
func WriteInventoryPDF(w io.Writer, rep dto.InventoryReport) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Inventory Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Generated "+rep.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	if rep.AsOf != nil {
		pdf.CellFormat(contentW, 5, "Stock as of "+rep.AsOf.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Table ────────────────────────────────────────────────────────────────
	cols := []struct {
		title string
		width float64
		align string
	}{
		{"Code", 0.14, "L"},
		{"Name", 0.30, "L"},
		{"Unit", 0.08, "L"},
		{"Stock", 0.10, "R"},
		{"Min", 0.08, "R"},
		{"Status", 0.14, "L"},
		{"Last movement", 0.16, "L"},
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range cols {
		pdf.CellFormat(contentW*c.width, 6, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	var low, out int
	for _, row := range rep.Items {
		last := "-"
		if row.LastMovementDate != nil {
			last = row.LastMovementDate.Format("2006-01-02")
		}
		name := row.ProductName
		if len(name) > 40 {
			name = name[:39] + "..."
		}
		switch row.Status {
		case model.StatusLowStock:
			low++
			pdf.SetTextColor(180, 110, 0)
		case model.StatusOutOfStock:
			out++
			pdf.SetTextColor(190, 0, 0)
		default:
			pdf.SetTextColor(0, 0, 0)
		}
		values := []string{
			row.ProductCode,
			name,
			row.Unit,
			fmt.Sprintf("%d", row.CurrentStock),
			fmt.Sprintf("%d", row.MinimumStock),
			string(row.Status),
			last,
		}
		for i, c := range cols {
			pdf.CellFormat(contentW*c.width, 5, values[i], "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetTextColor(0, 0, 0)

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5,
		fmt.Sprintf("%d products, %d low stock, %d out of stock", len(rep.Items), low, out),
		"", 1, "L", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}
