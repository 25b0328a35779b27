// Package reporting folds recorded sales into daily summaries.
package reporting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shoeshop/pos-backend/internal/domain/models"
	"github.com/shoeshop/pos-backend/internal/repository/mongodb"
	"github.com/shoeshop/pos-backend/internal/repository/sheets"
)

const dateLayout = "2006-01-02"

// Service builds and persists daily sales summaries.
type Service struct {
	sales   mongodb.SaleRepository
	reports mongodb.ReportRepository
	export  sheets.Repository
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. The sheets export may
// be nil to disable it.
func NewService(sales mongodb.SaleRepository, reports mongodb.ReportRepository, export sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sales: sales, reports: reports, export: export, logger: logger, now: time.Now}
}

// GenerateDailySummary folds every sale recorded on the given calendar day,
// persists the summary and best-effort appends it to the export sheet.
func (s *Service) GenerateDailySummary(ctx context.Context, day time.Time) (*models.DailySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24*time.Hour - time.Nanosecond)

	sales, err := s.sales.List(ctx, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("load sales for %s: %w", start.Format(dateLayout), err)
	}

	summary := models.DailySummary{
		Date:         start,
		Transactions: len(sales),
		CreatedAt:    s.now(),
	}
	for _, sale := range sales {
		for _, item := range sale.Items {
			summary.UnitsSold += item.Quantity
			summary.GrossAmount += item.TotalAmount
			summary.TotalDiscount += item.Discount
			summary.TotalProfit += item.Profit
		}
	}

	if err := s.reports.InsertDailySummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("persist daily summary: %w", err)
	}

	if s.export != nil {
		row := []interface{}{
			summary.Date.Format(dateLayout),
			summary.Transactions,
			summary.UnitsSold,
			summary.GrossAmount,
			summary.TotalDiscount,
			summary.TotalProfit,
		}
		if err := s.export.WriteRow(ctx, sheets.DailySummaryRange, row); err != nil {
			s.logger.Warn("daily summary sheet export failed", zap.Error(err))
		}
	}

	s.logger.Info("daily summary generated",
		zap.String("date", summary.Date.Format(dateLayout)),
		zap.Int("transactions", summary.Transactions),
		zap.Float64("gross", summary.GrossAmount))

	return &summary, nil
}
