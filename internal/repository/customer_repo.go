package repository

import (
	"go-stockcredit/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(customer *model.Customer) error
	Save(tx *gorm.DB, customer *model.Customer) error
	FindByID(userID, id uuid.UUID) (*model.Customer, error)
	FindByUser(userID uuid.UUID) ([]model.Customer, error)
	LockByID(tx *gorm.DB, userID, id uuid.UUID) (*model.Customer, error)
	CreateOrder(tx *gorm.DB, order *model.CustomerOrder) error
	SaveOrder(tx *gorm.DB, order *model.CustomerOrder) error
	FindUnpaidOrders(tx *gorm.DB, customerID uuid.UUID) ([]model.CustomerOrder, error)
	FindOrders(customerID uuid.UUID) ([]model.CustomerOrder, error)
	CreatePayment(tx *gorm.DB, payment *model.CustomerPayment) error
	FindPayments(customerID uuid.UUID) ([]model.CustomerPayment, error)
	SumOutstanding(companyID uuid.UUID) (decimal.Decimal, error)
}

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepo(db *gorm.DB) CustomerRepository {
	return &customerRepo{db}
}

func (r *customerRepo) Create(customer *model.Customer) error {
	return r.db.Create(customer).Error
}

func (r *customerRepo) Save(tx *gorm.DB, customer *model.Customer) error {
	return tx.Save(customer).Error
}

// FindByID is scoped to the owning user: customers are a per-user book.
func (r *customerRepo) FindByID(userID, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.First(&customer, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) FindByUser(userID uuid.UUID) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) LockByID(tx *gorm.DB, userID, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&customer, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepo) CreateOrder(tx *gorm.DB, order *model.CustomerOrder) error {
	return tx.Create(order).Error
}

func (r *customerRepo) SaveOrder(tx *gorm.DB, order *model.CustomerOrder) error {
	return tx.Save(order).Error
}

// FindUnpaidOrders returns open credit sales oldest-first, locked FOR UPDATE.
// The remaining_amount filter keeps settled orders out of any later
// allocation run.
func (r *customerRepo) FindUnpaidOrders(tx *gorm.DB, customerID uuid.UUID) ([]model.CustomerOrder, error) {
	var orders []model.CustomerOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ? AND is_paid = ? AND remaining_amount > 0", customerID, false).
		Order("order_date ASC").
		Find(&orders).Error
	return orders, err
}

func (r *customerRepo) FindOrders(customerID uuid.UUID) ([]model.CustomerOrder, error) {
	var orders []model.CustomerOrder
	err := r.db.Preload("Product").
		Where("customer_id = ?", customerID).Order("order_date DESC").Find(&orders).Error
	return orders, err
}

func (r *customerRepo) CreatePayment(tx *gorm.DB, payment *model.CustomerPayment) error {
	return tx.Create(payment).Error
}

func (r *customerRepo) FindPayments(customerID uuid.UUID) ([]model.CustomerPayment, error) {
	var payments []model.CustomerPayment
	err := r.db.Where("customer_id = ?", customerID).Order("payment_date DESC").Find(&payments).Error
	return payments, err
}

// SumOutstanding scans the numeric aggregate into decimal.Decimal so the
// dashboard figure carries no float rounding.
func (r *customerRepo) SumOutstanding(companyID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.Model(&model.Customer{}).
		Where("company_id = ?", companyID).
		Select("COALESCE(SUM(outstanding_balance), 0)").
		Scan(&total).Error
	return total, err
}
