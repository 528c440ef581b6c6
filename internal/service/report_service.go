package service

import (
	"time"

	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardStats is the company overview. Money figures stay decimal end to
// end, same as the stored columns.
type DashboardStats struct {
	TotalProducts       int64           `json:"total_products"`
	LowStockCount       int64           `json:"low_stock_count"`
	OpenAlerts          int64           `json:"open_alerts"`
	PendingOrders       int64           `json:"pending_orders"`
	StockValuation      decimal.Decimal `json:"stock_valuation"`
	OutstandingBalances decimal.Decimal `json:"outstanding_balances"`
}

// MonthlySummary is income vs expense for the month containing the
// reference time.
type MonthlySummary struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// ReportService aggregates company figures. Every period-based query takes
// the reference time as an explicit parameter; nothing in here reads the
// wall clock.
type ReportService interface {
	GetDashboardStats(companyID uuid.UUID) (*DashboardStats, error)
	GetMonthlySummary(companyID uuid.UUID, ref time.Time) (*MonthlySummary, error)
}

type reportService struct {
	financeRepo  repository.FinanceRepository
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
	alertRepo    repository.AlertRepository
	db           *gorm.DB
}

func NewReportService(
	financeRepo repository.FinanceRepository,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	alertRepo repository.AlertRepository,
	db *gorm.DB,
) ReportService {
	return &reportService{
		financeRepo:  financeRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		alertRepo:    alertRepo,
		db:           db,
	}
}

func (s *reportService) GetDashboardStats(companyID uuid.UUID) (*DashboardStats, error) {
	var stats DashboardStats

	if err := s.db.Model(&model.Product{}).
		Where("company_id = ?", companyID).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&model.Product{}).
		Where("company_id = ? AND quantity <= min_stock", companyID).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&model.Product{}).
		Where("company_id = ?", companyID).
		Select("COALESCE(SUM(quantity * price), 0)").
		Scan(&stats.StockValuation).Error; err != nil {
		return nil, err
	}

	openAlerts, err := s.alertRepo.CountOpen(companyID)
	if err != nil {
		return nil, err
	}
	stats.OpenAlerts = openAlerts

	pending, err := s.orderRepo.CountPending(companyID)
	if err != nil {
		return nil, err
	}
	stats.PendingOrders = pending

	outstanding, err := s.customerRepo.SumOutstanding(companyID)
	if err != nil {
		return nil, err
	}
	stats.OutstandingBalances = outstanding

	return &stats, nil
}

// GetMonthlySummary aggregates the calendar month containing ref.
func (s *reportService) GetMonthlySummary(companyID uuid.UUID, ref time.Time) (*MonthlySummary, error) {
	from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	to := from.AddDate(0, 1, 0)

	income, err := s.financeRepo.SumPayments(companyID, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.financeRepo.SumExpenses(companyID, from, to)
	if err != nil {
		return nil, err
	}

	return &MonthlySummary{
		Month:    from.Format("2006-01"),
		Income:   income,
		Expenses: expenses,
		Net:      income.Sub(expenses),
	}, nil
}
