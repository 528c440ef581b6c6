package repository

import (
	"go-stockcredit/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AlertRepository interface {
	FindOpenByProduct(tx *gorm.DB, productID uuid.UUID) (*model.StockAlert, error)
	Create(tx *gorm.DB, alert *model.StockAlert) error
	Save(tx *gorm.DB, alert *model.StockAlert) error
	ResolveForProduct(tx *gorm.DB, productID uuid.UUID, updatedBy string) error
	FindByCompany(companyID uuid.UUID, includeResolved bool) ([]model.StockAlert, error)
	CountOpen(companyID uuid.UUID) (int64, error)
}

type alertRepo struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) AlertRepository {
	return &alertRepo{db}
}

// FindOpenByProduct returns the single unresolved alert for a product, or
// gorm.ErrRecordNotFound.
func (r *alertRepo) FindOpenByProduct(tx *gorm.DB, productID uuid.UUID) (*model.StockAlert, error) {
	var alert model.StockAlert
	err := tx.First(&alert, "product_id = ? AND is_resolved = ?", productID, false).Error
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepo) Create(tx *gorm.DB, alert *model.StockAlert) error {
	return tx.Create(alert).Error
}

func (r *alertRepo) Save(tx *gorm.DB, alert *model.StockAlert) error {
	return tx.Save(alert).Error
}

func (r *alertRepo) ResolveForProduct(tx *gorm.DB, productID uuid.UUID, updatedBy string) error {
	return tx.Model(&model.StockAlert{}).
		Where("product_id = ? AND is_resolved = ?", productID, false).
		Updates(map[string]interface{}{"is_resolved": true, "updated_by": updatedBy}).Error
}

// FindByCompany lists alerts most severe first: CRITICAL, HIGH, MEDIUM, LOW.
func (r *alertRepo) FindByCompany(companyID uuid.UUID, includeResolved bool) ([]model.StockAlert, error) {
	var alerts []model.StockAlert
	q := r.db.Preload("Product").Where("company_id = ?", companyID)
	if !includeResolved {
		q = q.Where("is_resolved = ?", false)
	}
	err := q.Order(`CASE severity
			WHEN 'CRITICAL' THEN 0
			WHEN 'HIGH' THEN 1
			WHEN 'MEDIUM' THEN 2
			ELSE 3
		END, created_at DESC`).
		Find(&alerts).Error
	return alerts, err
}

func (r *alertRepo) CountOpen(companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.StockAlert{}).
		Where("company_id = ? AND is_resolved = ?", companyID, false).Count(&count).Error
	return count, err
}
