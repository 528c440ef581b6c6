package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a company-scoped incoming financial record tied to a user.
type Payment struct {
	BaseModel
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	PaymentDate time.Time       `gorm:"not null;index" json:"payment_date"`
	ReceiptURL  string          `gorm:"type:varchar(512)" json:"receipt_url,omitempty"`
}

// Expense is a company-scoped outgoing financial record tied to a user.
type Expense struct {
	BaseModel
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount" validate:"required"`
	Description string          `gorm:"type:text" json:"description"`
	ExpenseDate time.Time       `gorm:"not null;index" json:"expense_date"`
	ReceiptURL  string          `gorm:"type:varchar(512)" json:"receipt_url,omitempty"`
}

// CreditTransactionType labels entries of the user credit audit trail.
type CreditTransactionType string

const (
	CreditGranted  CreditTransactionType = "GRANTED"        // limit changed by a director
	CreditUsed     CreditTransactionType = "USED"           // reserved by an order
	CreditReleased CreditTransactionType = "RELEASED"       // freed by a rejection/cancellation
	CreditPayment  CreditTransactionType = "CREDIT_PAYMENT" // paid down by the user
)

// CreditTransaction is an append-only audit row for user credit movements.
type CreditTransaction struct {
	BaseModel
	UserID      uuid.UUID             `gorm:"type:uuid;not null;index" json:"user_id"`
	CompanyID   uuid.UUID             `gorm:"type:uuid;not null;index" json:"company_id"`
	Type        CreditTransactionType `gorm:"type:varchar(20);not null" json:"type"`
	Amount      decimal.Decimal       `gorm:"type:numeric(14,2);not null" json:"amount"`
	Description string                `gorm:"type:text" json:"description"`
}

// RestockRecord is one audit row per restock call. Two restocks of +10 are
// two rows, never merged.
type RestockRecord struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	NewStock  int       `gorm:"not null" json:"new_stock"`
	Notes     string    `gorm:"type:text" json:"notes"`
}
