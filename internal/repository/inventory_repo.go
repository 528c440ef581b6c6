package repository

import (
	"errors"

	"go-stockcredit/internal/apperr"
	"go-stockcredit/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserInventoryRepository interface {
	FindByUser(userID uuid.UUID) ([]model.UserInventory, error)
	AddReceived(tx *gorm.DB, userID, productID, companyID uuid.UUID, qty int, actor string) error
	ConsumeAvailable(tx *gorm.DB, userID, productID uuid.UUID, qty int, actor string) error
}

type userInventoryRepo struct {
	db *gorm.DB
}

func NewUserInventoryRepo(db *gorm.DB) UserInventoryRepository {
	return &userInventoryRepo{db}
}

func (r *userInventoryRepo) FindByUser(userID uuid.UUID) ([]model.UserInventory, error) {
	var rows []model.UserInventory
	err := r.db.Preload("Product").Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

// AddReceived upserts the (user, product) row and grows quantity_received.
// Called once per shipped order item.
func (r *userInventoryRepo) AddReceived(tx *gorm.DB, userID, productID, companyID uuid.UUID, qty int, actor string) error {
	var row model.UserInventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "user_id = ? AND product_id = ?", userID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = model.UserInventory{
			UserID:           userID,
			ProductID:        productID,
			CompanyID:        companyID,
			QuantityReceived: qty,
		}
		row.CreatedBy = actor
		row.UpdatedBy = actor
		return tx.Create(&row).Error
	}
	if err != nil {
		return err
	}
	row.QuantityReceived += qty
	row.UpdatedBy = actor
	return tx.Save(&row).Error
}

// ConsumeAvailable grows quantity_used, bounded by what the row holds.
// A missing row counts as zero on hand.
func (r *userInventoryRepo) ConsumeAvailable(tx *gorm.DB, userID, productID uuid.UUID, qty int, actor string) error {
	var row model.UserInventory
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "user_id = ? AND product_id = ?", userID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.InsufficientStock(productID, "", qty, 0)
	}
	if err != nil {
		return err
	}
	if row.QuantityAvailable() < qty {
		return apperr.InsufficientStock(productID, "", qty, row.QuantityAvailable())
	}
	row.QuantityUsed += qty
	row.UpdatedBy = actor
	return tx.Save(&row).Error
}
