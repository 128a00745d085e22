package service

import (
	"context"
	"time"

	"go-stock-ledger/internal/dto"
	"go-stock-ledger/internal/model"
	"go-stock-ledger/internal/repository"
)

const (
	recentTransactionsLimit = 10
	maxMovementDays         = 366
)

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*dto.Dashboard, error)
	GetStockMovement(ctx context.Context, days int) ([]dto.StockMovementData, error)
}

type dashboardService struct {
	reports ReportService
	txRepo  repository.TransactionRepository
	now     func() time.Time
}

func NewDashboardService(reports ReportService, txRepo repository.TransactionRepository) DashboardService {
	return &dashboardService{reports: reports, txRepo: txRepo, now: time.Now}
}

// GetDashboardStats counts active products by stock status and lists the
// most recent transactions.
func (s *dashboardService) GetDashboardStats(ctx context.Context) (*dto.Dashboard, error) {
	rep, err := s.reports.InventoryReport(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.txRepo.FindAll(ctx, repository.TransactionFilter{Limit: recentTransactionsLimit})
	if err != nil {
		return nil, err
	}

	d := &dto.Dashboard{
		TotalProducts:      len(rep.Items),
		LowStockProducts:   []dto.InventoryReportRow{},
		OutOfStockProducts: []dto.InventoryReportRow{},
		RecentTransactions: make([]dto.TransactionSummary, len(recent)),
	}
	for _, row := range rep.Items {
		switch row.Status {
		case model.StatusLowStock:
			d.LowStockProducts = append(d.LowStockProducts, row)
		case model.StatusOutOfStock:
			d.OutOfStockProducts = append(d.OutOfStockProducts, row)
		}
	}
	d.LowStockCount = len(d.LowStockProducts)
	d.OutOfStockCount = len(d.OutOfStockProducts)
	for i := range recent {
		d.RecentTransactions[i] = dto.NewTransactionSummary(&recent[i])
	}
	return d, nil
}

// GetStockMovement returns inbound and outbound quantities per UTC day for
// the last days days, today included. Days without movements are zero.
func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]dto.StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1)

	txns, err := s.txRepo.FindAll(ctx, repository.TransactionFilter{DateFrom: &from, DateTo: &to})
	if err != nil {
		return nil, err
	}

	data := make([]dto.StockMovementData, days)
	index := make(map[string]int, days)
	for i := range data {
		date := from.AddDate(0, 0, i).Format(time.DateOnly)
		data[i].Date = date
		index[date] = i
	}
	for _, t := range txns {
		pos, ok := index[t.TransactionDate.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		switch t.Type {
		case model.TxIn:
			data[pos].Inbound += t.TotalQuantity()
		case model.TxOut:
			data[pos].Outbound += t.TotalQuantity()
		}
	}
	return data, nil
}
