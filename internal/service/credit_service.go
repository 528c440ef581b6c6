package service

import (
	"errors"
	"fmt"
	"time"

	"go-stockcredit/internal/apperr"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/internal/ws"
	"go-stockcredit/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentAllocation reports how much of a customer payment landed on one
// credit sale.
type PaymentAllocation struct {
	OrderID   uuid.UUID       `json:"order_id"`
	Applied   decimal.Decimal `json:"applied"`
	Remaining decimal.Decimal `json:"remaining"`
	Settled   bool            `json:"settled"`
}

// CreditService owns both ledgers: the per-customer credit-sale book
// (FIFO payment allocation) and the per-user purchase credit
// (limit / used / payoff).
type CreditService interface {
	CreateCustomer(user *model.User, customer *model.Customer) error
	GetCustomers(userID uuid.UUID) ([]model.Customer, error)
	GetCustomer(userID, customerID uuid.UUID) (*model.Customer, error)
	GetCustomerOrders(userID, customerID uuid.UUID) ([]model.CustomerOrder, error)
	GetCustomerPayments(userID, customerID uuid.UUID) ([]model.CustomerPayment, error)
	CreateCustomerOrder(user *model.User, customerID, productID uuid.UUID, quantity int, orderDate time.Time) (*model.CustomerOrder, error)
	RecordCustomerPayment(user *model.User, customerID uuid.UUID, amount decimal.Decimal, paymentDate time.Time, description string) (*model.CustomerPayment, *model.Customer, []PaymentAllocation, error)
	SetCreditLimit(actor *model.User, userID uuid.UUID, newLimit decimal.Decimal, description string) (*model.User, error)
	ApplyCreditPayment(user *model.User, amount decimal.Decimal, paymentDate time.Time, description string) (*model.Payment, decimal.Decimal, error)
	GetCreditTransactions(userID uuid.UUID) ([]model.CreditTransaction, error)
}

type creditService struct {
	customerRepo  repository.CustomerRepository
	userRepo      repository.UserRepository
	productRepo   repository.ProductRepository
	financeRepo   repository.FinanceRepository
	inventoryRepo repository.UserInventoryRepository
	db            *gorm.DB
	wsHub         *ws.Hub
}

func NewCreditService(
	customerRepo repository.CustomerRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	financeRepo repository.FinanceRepository,
	inventoryRepo repository.UserInventoryRepository,
	db *gorm.DB,
	hub *ws.Hub,
) CreditService {
	return &creditService{
		customerRepo:  customerRepo,
		userRepo:      userRepo,
		productRepo:   productRepo,
		financeRepo:   financeRepo,
		inventoryRepo: inventoryRepo,
		db:            db,
		wsHub:         hub,
	}
}

func (s *creditService) CreateCustomer(user *model.User, customer *model.Customer) error {
	if user.CompanyID == nil {
		return fmt.Errorf("%w: user has no company", apperr.ErrUnauthorized)
	}
	customer.UserID = user.ID
	customer.CompanyID = *user.CompanyID
	if errs := validator.ValidateStruct(customer); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("%w: field '%s' failed on '%s'", apperr.ErrInvalidInput, firstErr.FailedField, firstErr.Tag)
	}
	customer.TotalCredit = decimal.Zero
	customer.TotalPaid = decimal.Zero
	customer.OutstandingBalance = decimal.Zero
	customer.CreatedBy = user.ID.String()
	customer.UpdatedBy = user.ID.String()
	return s.customerRepo.Create(customer)
}

func (s *creditService) GetCustomers(userID uuid.UUID) ([]model.Customer, error) {
	return s.customerRepo.FindByUser(userID)
}

func (s *creditService) GetCustomer(userID, customerID uuid.UUID) (*model.Customer, error) {
	customer, err := s.customerRepo.FindByID(userID, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: customer", apperr.ErrNotFound)
	}
	return customer, nil
}

func (s *creditService) GetCustomerOrders(userID, customerID uuid.UUID) ([]model.CustomerOrder, error) {
	if _, err := s.GetCustomer(userID, customerID); err != nil {
		return nil, err
	}
	return s.customerRepo.FindOrders(customerID)
}

func (s *creditService) GetCustomerPayments(userID, customerID uuid.UUID) ([]model.CustomerPayment, error) {
	if _, err := s.GetCustomer(userID, customerID); err != nil {
		return nil, err
	}
	return s.customerRepo.FindPayments(customerID)
}

// CreateCustomerOrder records a credit sale: price snapshot from the
// catalog, goods drawn from the seller's own received inventory, customer
// balances grown by the sale total.
func (s *creditService) CreateCustomerOrder(user *model.User, customerID, productID uuid.UUID, quantity int, orderDate time.Time) (*model.CustomerOrder, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalidInput)
	}
	if user.CompanyID == nil {
		return nil, fmt.Errorf("%w: user has no company", apperr.ErrUnauthorized)
	}
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	var order *model.CustomerOrder

	err := s.db.Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.LockByID(tx, user.ID, customerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: customer", apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}

		product, err := s.productRepo.FindByID(*user.CompanyID, productID)
		if err != nil {
			return fmt.Errorf("%w: product", apperr.ErrNotFound)
		}

		if err := s.inventoryRepo.ConsumeAvailable(tx, user.ID, product.ID, quantity, user.ID.String()); err != nil {
			var short *apperr.InsufficientStockError
			if errors.As(err, &short) {
				for i := range short.Items {
					short.Items[i].SKU = product.SKU
				}
			}
			return err
		}

		total := product.Price.Mul(decimal.NewFromInt(int64(quantity)))
		o := &model.CustomerOrder{
			CustomerID:      customer.ID,
			ProductID:       product.ID,
			Quantity:        quantity,
			UnitPrice:       product.Price,
			TotalAmount:     total,
			PaidAmount:      decimal.Zero,
			RemainingAmount: total,
			IsPaid:          false,
			OrderDate:       orderDate,
		}
		o.CreatedBy = user.ID.String()
		o.UpdatedBy = user.ID.String()
		if err := s.customerRepo.CreateOrder(tx, o); err != nil {
			return err
		}

		customer.TotalCredit = customer.TotalCredit.Add(total)
		customer.OutstandingBalance = customer.OutstandingBalance.Add(total)
		customer.UpdatedBy = user.ID.String()
		if err := s.customerRepo.Save(tx, customer); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RecordCustomerPayment applies a payment against the customer's open
// credit sales, oldest order first, inside one transaction. The amount must
// be positive and no larger than the outstanding balance.
func (s *creditService) RecordCustomerPayment(user *model.User, customerID uuid.UUID, amount decimal.Decimal, paymentDate time.Time, description string) (*model.CustomerPayment, *model.Customer, []PaymentAllocation, error) {
	if !amount.IsPositive() {
		return nil, nil, nil, fmt.Errorf("%w: payment must be positive", apperr.ErrInvalidAmount)
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	var payment *model.CustomerPayment
	var customer *model.Customer
	var allocations []PaymentAllocation

	err := s.db.Transaction(func(tx *gorm.DB) error {
		c, err := s.customerRepo.LockByID(tx, user.ID, customerID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: customer", apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}

		if amount.GreaterThan(c.OutstandingBalance) {
			return fmt.Errorf("%w: payment %s exceeds outstanding balance %s",
				apperr.ErrInvalidAmount, amount.StringFixed(2), c.OutstandingBalance.StringFixed(2))
		}

		p := &model.CustomerPayment{
			CustomerID:  c.ID,
			UserID:      user.ID,
			Amount:      amount,
			PaymentDate: paymentDate,
			Description: description,
		}
		p.CreatedBy = user.ID.String()
		p.UpdatedBy = user.ID.String()
		if err := s.customerRepo.CreatePayment(tx, p); err != nil {
			return err
		}

		// FIFO allocation: oldest open order first, settled orders never
		// revisited thanks to the remaining_amount filter.
		orders, err := s.customerRepo.FindUnpaidOrders(tx, c.ID)
		if err != nil {
			return err
		}
		remaining := amount
		for i := range orders {
			if !remaining.IsPositive() {
				break
			}
			o := &orders[i]
			apply := decimal.Min(remaining, o.RemainingAmount)
			o.PaidAmount = o.PaidAmount.Add(apply)
			o.RemainingAmount = o.RemainingAmount.Sub(apply)
			if o.RemainingAmount.IsZero() {
				o.IsPaid = true
			}
			o.UpdatedBy = user.ID.String()
			if err := s.customerRepo.SaveOrder(tx, o); err != nil {
				return err
			}
			remaining = remaining.Sub(apply)
			allocations = append(allocations, PaymentAllocation{
				OrderID:   o.ID,
				Applied:   apply,
				Remaining: o.RemainingAmount,
				Settled:   o.IsPaid,
			})
		}

		c.TotalPaid = c.TotalPaid.Add(amount)
		c.OutstandingBalance = c.OutstandingBalance.Sub(amount)
		c.UpdatedBy = user.ID.String()
		if err := s.customerRepo.Save(tx, c); err != nil {
			return err
		}

		payment = p
		customer = c
		return nil
	})
	if err != nil {
		return nil, nil, nil, err
	}

	s.wsHub.Notify("customer_payment_recorded", map[string]interface{}{
		"customer_id": customer.ID,
		"amount":      amount,
		"outstanding": customer.OutstandingBalance,
	})
	return payment, customer, allocations, nil
}

// SetCreditLimit updates a user's purchase credit ceiling and appends a
// GRANTED audit row. CreditUsed is untouched.
func (s *creditService) SetCreditLimit(actor *model.User, userID uuid.UUID, newLimit decimal.Decimal, description string) (*model.User, error) {
	if !actor.IsDirector() {
		return nil, fmt.Errorf("%w: only directors may set credit limits", apperr.ErrUnauthorized)
	}
	if newLimit.IsNegative() {
		return nil, fmt.Errorf("%w: credit limit must not be negative", apperr.ErrInvalidAmount)
	}

	var updated *model.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.LockByID(tx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user", apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if user.CompanyID == nil || !actor.SameCompany(*user.CompanyID) {
			return fmt.Errorf("%w: user", apperr.ErrNotFound)
		}

		user.CreditLimit = newLimit
		user.UpdatedBy = actor.ID.String()
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		ct := &model.CreditTransaction{
			UserID:      user.ID,
			CompanyID:   *user.CompanyID,
			Type:        model.CreditGranted,
			Amount:      newLimit,
			Description: description,
		}
		ct.CreatedBy = actor.ID.String()
		ct.UpdatedBy = actor.ID.String()
		if err := s.financeRepo.CreateCreditTransaction(tx, ct); err != nil {
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyCreditPayment splits an incoming amount into a credit payoff
// (min(amount, creditUsed)) and a regular payment remainder. The Payment row
// records the full amount; the payoff also gets a CREDIT_PAYMENT audit row.
func (s *creditService) ApplyCreditPayment(user *model.User, amount decimal.Decimal, paymentDate time.Time, description string) (*model.Payment, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return nil, decimal.Zero, fmt.Errorf("%w: payment must be positive", apperr.ErrInvalidAmount)
	}
	if user.CompanyID == nil {
		return nil, decimal.Zero, fmt.Errorf("%w: user has no company", apperr.ErrUnauthorized)
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	var payment *model.Payment
	var payoff decimal.Decimal

	err := s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.userRepo.LockByID(tx, user.ID)
		if err != nil {
			return err
		}

		payoff = decimal.Min(amount, locked.CreditUsed)
		if payoff.IsPositive() {
			locked.CreditUsed = locked.CreditUsed.Sub(payoff)
			locked.UpdatedBy = user.ID.String()
			if err := tx.Save(locked).Error; err != nil {
				return err
			}

			ct := &model.CreditTransaction{
				UserID:      locked.ID,
				CompanyID:   *user.CompanyID,
				Type:        model.CreditPayment,
				Amount:      payoff,
				Description: description,
			}
			ct.CreatedBy = user.ID.String()
			ct.UpdatedBy = user.ID.String()
			if err := s.financeRepo.CreateCreditTransaction(tx, ct); err != nil {
				return err
			}
		}

		p := &model.Payment{
			CompanyID:   *user.CompanyID,
			UserID:      user.ID,
			Amount:      amount,
			Description: description,
			PaymentDate: paymentDate,
		}
		p.CreatedBy = user.ID.String()
		p.UpdatedBy = user.ID.String()
		if err := s.financeRepo.CreatePayment(tx, p); err != nil {
			return err
		}

		payment = p
		return nil
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	return payment, payoff, nil
}

func (s *creditService) GetCreditTransactions(userID uuid.UUID) ([]model.CreditTransaction, error) {
	return s.financeRepo.FindCreditTransactions(userID)
}
