package service

import (
	"context"
	"io"
	"time"

	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/report"
	"go-stock-ledger/internal/repository"
)

type ReportService interface {
	InventoryReport(ctx context.Context) (*dto.InventoryReport, error)
	HistoricalInventory(ctx context.Context, asOf time.Time) (*dto.InventoryReport, error)
	WriteInventoryPDF(ctx context.Context, w io.Writer) error
}

type reportService struct {
	reports repository.ReportRepository
	now     func() time.Time
}

func NewReportService(reports repository.ReportRepository) ReportService {
	return &reportService{reports: reports, now: time.Now}
}

func (s *reportService) snapshot(ctx context.Context, asOf *time.Time) (*dto.InventoryReport, error) {
	rows, err := s.reports.InventorySnapshot(ctx, asOf)
	if err != nil {
		return nil, err
	}
	rep := &dto.InventoryReport{
		GeneratedAt: s.now().UTC(),
		AsOf:        asOf,
		Items:       make([]dto.InventoryReportRow, len(rows)),
	}
	for i, r := range rows {
		rep.Items[i] = dto.InventoryReportRow{
			ProductID:        r.ProductID,
			ProductCode:      r.ProductCode,
			ProductName:      r.ProductName,
			Unit:             r.Unit,
			CurrentStock:     r.CurrentStock,
			MinimumStock:     r.MinimumStock,
			Status:           model.ClassifyStock(r.CurrentStock, r.MinimumStock),
			LastMovementDate: r.LastMovementDate.Ptr(),
		}
	}
	return rep, nil
}

// InventoryReport lists every active product with its current stock.
func (s *reportService) InventoryReport(ctx context.Context) (*dto.InventoryReport, error) {
	return s.snapshot(ctx, nil)
}

// HistoricalInventory replays the ledger up to asOf.
func (s *reportService) HistoricalInventory(ctx context.Context, asOf time.Time) (*dto.InventoryReport, error) {
	asOf = asOf.UTC()
	return s.snapshot(ctx, &asOf)
}

func (s *reportService) WriteInventoryPDF(ctx context.Context, w io.Writer) error {
	rep, err := s.snapshot(ctx, nil)
	if err != nil {
		return err
	}
	return report.WriteInventoryPDF(w, *rep)
}
