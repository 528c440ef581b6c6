package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry and authoritative stock row for one SKU.
// Quantity is the canonical stock counter; StockQuantity is a legacy mirror
// still read by older clients. Both are written through a single accessor
// (repository.ProductRepository.AdjustStock) so they can never diverge.
type Product struct {
	BaseModel
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index:idx_products_company_sku,unique" json:"company_id" validate:"uuid_required"`
	Company   *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`

	SKU   string          `gorm:"type:varchar(50);not null;index:idx_products_company_sku,unique" json:"sku" validate:"required"`
	Name  string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Unit  string          `gorm:"type:varchar(20)" json:"unit"`
	Price decimal.Decimal `gorm:"type:numeric(14,2);default:0" json:"price"`

	Quantity      int  `gorm:"default:0" json:"quantity"`
	StockQuantity *int `json:"stock_quantity,omitempty"` // Legacy mirror of Quantity, nullable on pre-migration rows

	MinStock int  `gorm:"default:0" json:"min_stock"`
	MaxStock int  `gorm:"default:0" json:"max_stock"` // 0 disables the overstock band
	IsActive bool `gorm:"default:true" json:"is_active"`

	Items []OrderRequestItem `gorm:"foreignKey:ProductID" json:"-"`
}

// AvailableStock resolves the canonical stock value. Rows written before the
// single-accessor migration may carry a NULL legacy column, so the mirror
// wins only when present.
func (p *Product) AvailableStock() int {
	if p.StockQuantity != nil {
		return *p.StockQuantity
	}
	return p.Quantity
}
