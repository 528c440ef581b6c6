package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus drives the order lifecycle. Stock is committed at ship time:
// PENDING and APPROVED orders hold no stock, SHIPPED orders have deducted it.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderApproved  OrderStatus = "APPROVED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderFulfilled OrderStatus = "FULFILLED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether the status is one of the known lifecycle labels.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderApproved, OrderRejected, OrderFulfilled,
		OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderRequest is an internal purchase request raised by a company employee
// and driven through its lifecycle by a director.
type OrderRequest struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id" validate:"uuid_required"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id" validate:"uuid_required"`

	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"total_amount"`
	Notes       string          `gorm:"type:text" json:"notes"`

	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	FulfilledAt *time.Time `json:"fulfilled_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`

	Items []OrderRequestItem `gorm:"foreignKey:OrderRequestID" json:"items"`
}

// OrderRequestItem is one product line of an order. UnitPrice is a snapshot
// of the product price at order time.
type OrderRequestItem struct {
	BaseModel
	OrderRequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"order_request_id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id" validate:"uuid_required"`
	Product        *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Quantity   int             `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`
}
