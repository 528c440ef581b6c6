// Package apperr defines the error taxonomy shared by services and handlers.
// Services wrap these sentinels with context via fmt.Errorf("%w: ...") and
// handlers map them to HTTP status codes with errors.Is/As.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrInternal      = errors.New("internal error")
)

// StockShortage describes one order line that cannot be covered by current
// stock. Callers surface the complete list, not just the first short item.
type StockShortage struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// InsufficientStockError carries every short item of a failed stock check.
type InsufficientStockError struct {
	Items []StockShortage
}

func (e *InsufficientStockError) Error() string {
	if len(e.Items) == 1 {
		it := e.Items[0]
		return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", it.SKU, it.Requested, it.Available)
	}
	return fmt.Sprintf("insufficient stock for %d items", len(e.Items))
}

// InsufficientStock builds the error for a single short product.
func InsufficientStock(productID uuid.UUID, sku string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{Items: []StockShortage{{
		ProductID: productID,
		SKU:       sku,
		Requested: requested,
		Available: available,
	}}}
}
