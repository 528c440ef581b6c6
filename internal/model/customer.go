package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is an end-customer of a User: the counterparty of credit sales.
// Balance columns are maintained by the credit ledger inside the same
// transaction that writes the orders and payments they summarize.
type Customer struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	Name  string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Phone string `gorm:"type:varchar(20)" json:"phone"`

	TotalCredit        decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"total_credit"`
	TotalPaid          decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"total_paid"`
	OutstandingBalance decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"outstanding_balance"`

	Orders   []CustomerOrder   `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
	Payments []CustomerPayment `gorm:"foreignKey:CustomerID" json:"payments,omitempty"`
}

// CustomerOrder is a single credit sale. RemainingAmount counts down as
// payments are allocated against it, oldest order first.
type CustomerOrder struct {
	BaseModel
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id" validate:"uuid_required"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null" json:"product_id" validate:"uuid_required"`
	Product    *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Quantity        int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	PaidAmount      decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"paid_amount"`
	RemainingAmount decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"remaining_amount"`
	IsPaid          bool            `gorm:"default:false" json:"is_paid"`
	OrderDate       time.Time       `gorm:"not null;index" json:"order_date"`
}

// CustomerPayment records money received from a customer. Allocation across
// the customer's open orders is FIFO by order date.
type CustomerPayment struct {
	BaseModel
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
	Description string          `gorm:"type:text" json:"description"`
}
