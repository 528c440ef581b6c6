package repository

import (
	"go-stockcredit/internal/apperr"
	"go-stockcredit/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(companyID uuid.UUID) ([]model.Product, error)
	FindByID(companyID, id uuid.UUID) (*model.Product, error)
	FindBySKU(companyID uuid.UUID, sku string) (*model.Product, error)
	Update(product *model.Product) error
	Deactivate(companyID, id uuid.UUID, updatedBy string) error
	Delete(companyID, id uuid.UUID) error
	CountOrderItems(id uuid.UUID) (int64, error)
	LockByID(tx *gorm.DB, companyID, id uuid.UUID) (*model.Product, error)
	AdjustStock(tx *gorm.DB, product *model.Product, delta int, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll(companyID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("company_id = ?", companyID).Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(companyID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(companyID uuid.UUID, sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ? AND company_id = ?", sku, companyID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepo) Deactivate(companyID, id uuid.UUID, updatedBy string) error {
	return r.db.Model(&model.Product{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Updates(map[string]interface{}{"is_active": false, "updated_by": updatedBy}).Error
}

func (r *productRepo) Delete(companyID, id uuid.UUID) error {
	return r.db.Delete(&model.Product{}, "id = ? AND company_id = ?", id, companyID).Error
}

func (r *productRepo) CountOrderItems(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.OrderRequestItem{}).Where("product_id = ?", id).Count(&count).Error
	return count, err
}

// LockByID fetches the product row FOR UPDATE. Every stock mutation starts
// here so concurrent adjustments on the same product serialize at the row.
func (r *productRepo) LockByID(tx *gorm.DB, companyID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// AdjustStock is the single accessor for the stock counters. It dual-writes
// the canonical quantity and the legacy stock_quantity mirror, and rejects
// any delta that would drive stock negative. Must run on a row previously
// locked via LockByID inside the same transaction.
func (r *productRepo) AdjustStock(tx *gorm.DB, product *model.Product, delta int, updatedBy string) error {
	newStock := product.AvailableStock() + delta
	if newStock < 0 {
		return apperr.InsufficientStock(product.ID, product.SKU, -delta, product.AvailableStock())
	}

	product.Quantity = newStock
	product.StockQuantity = &newStock
	product.UpdatedBy = updatedBy

	return tx.Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"quantity":       newStock,
			"stock_quantity": newStock,
			"updated_by":     updatedBy,
		}).Error
}
