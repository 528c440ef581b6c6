package model

import "github.com/google/uuid"

// UserInventory tracks stock a user has received through shipped orders.
// One row per (user, product); QuantityReceived grows on each shipment.
type UserInventory struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_user_inventory,unique" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index:idx_user_inventory,unique" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	QuantityReceived int `gorm:"default:0" json:"quantity_received"`
	QuantityUsed     int `gorm:"default:0" json:"quantity_used"`
}

// QuantityAvailable is the derived on-hand figure.
func (ui *UserInventory) QuantityAvailable() int {
	return ui.QuantityReceived - ui.QuantityUsed
}
