package model

import "github.com/google/uuid"

// Alert types
type AlertType string

const (
	AlertOutOfStock AlertType = "OUT_OF_STOCK"
	AlertLowStock   AlertType = "LOW_STOCK"
	AlertOverstock  AlertType = "OVERSTOCK"
)

// Alert severities, ordered for display: CRITICAL > HIGH > MEDIUM > LOW.
type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "CRITICAL"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityLow      AlertSeverity = "LOW"
)

// StockAlert is a persisted alert row. At most one unresolved alert exists
// per product; the generator updates it in place while the product stays in
// an alert band and resolves it when stock recovers.
type StockAlert struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`

	AlertType      AlertType     `gorm:"type:varchar(20);not null" json:"alert_type"`
	Severity       AlertSeverity `gorm:"type:varchar(10);not null" json:"severity"`
	Message        string        `gorm:"type:text" json:"message"`
	CurrentStock   int           `gorm:"not null" json:"current_stock"`
	ThresholdValue int           `gorm:"not null" json:"threshold_value"`
	IsResolved     bool          `gorm:"default:false;index" json:"is_resolved"`
}
