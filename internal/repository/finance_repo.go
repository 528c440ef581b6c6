package repository

import (
	"time"

	"go-stockcredit/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FinanceRepository interface {
	CreatePayment(tx *gorm.DB, payment *model.Payment) error
	FindPayments(companyID uuid.UUID) ([]model.Payment, error)
	CreateExpense(expense *model.Expense) error
	FindExpenses(companyID uuid.UUID) ([]model.Expense, error)
	CreateCreditTransaction(tx *gorm.DB, ct *model.CreditTransaction) error
	FindCreditTransactions(userID uuid.UUID) ([]model.CreditTransaction, error)
	CreateRestockRecord(tx *gorm.DB, record *model.RestockRecord) error
	FindRestockRecords(companyID, productID uuid.UUID) ([]model.RestockRecord, error)
	SumPayments(companyID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
	SumExpenses(companyID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}

type financeRepo struct {
	db *gorm.DB
}

func NewFinanceRepo(db *gorm.DB) FinanceRepository {
	return &financeRepo{db}
}

func (r *financeRepo) CreatePayment(tx *gorm.DB, payment *model.Payment) error {
	return tx.Create(payment).Error
}

func (r *financeRepo) FindPayments(companyID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.Preload("User").
		Where("company_id = ?", companyID).Order("payment_date DESC").Find(&payments).Error
	return payments, err
}

func (r *financeRepo) CreateExpense(expense *model.Expense) error {
	return r.db.Create(expense).Error
}

func (r *financeRepo) FindExpenses(companyID uuid.UUID) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.Preload("User").
		Where("company_id = ?", companyID).Order("expense_date DESC").Find(&expenses).Error
	return expenses, err
}

func (r *financeRepo) CreateCreditTransaction(tx *gorm.DB, ct *model.CreditTransaction) error {
	return tx.Create(ct).Error
}

func (r *financeRepo) FindCreditTransactions(userID uuid.UUID) ([]model.CreditTransaction, error) {
	var txs []model.CreditTransaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txs).Error
	return txs, err
}

func (r *financeRepo) CreateRestockRecord(tx *gorm.DB, record *model.RestockRecord) error {
	return tx.Create(record).Error
}

func (r *financeRepo) FindRestockRecords(companyID, productID uuid.UUID) ([]model.RestockRecord, error) {
	var records []model.RestockRecord
	q := r.db.Where("company_id = ?", companyID)
	if productID != uuid.Nil {
		q = q.Where("product_id = ?", productID)
	}
	err := q.Order("created_at DESC").Find(&records).Error
	return records, err
}

// The SUM aggregates scan straight into decimal.Decimal (it implements
// sql.Scanner), so the numeric columns never round-trip through float64.
func (r *financeRepo) SumPayments(companyID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.Payment{}).
		Where("company_id = ? AND payment_date >= ? AND payment_date < ?", companyID, from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *financeRepo) SumExpenses(companyID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.Expense{}).
		Where("company_id = ? AND expense_date >= ? AND expense_date < ?", companyID, from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
