package repository

import (
	"go-stockcredit/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(tx *gorm.DB, order *model.OrderRequest) error
	Save(tx *gorm.DB, order *model.OrderRequest) error
	FindByID(companyID, id uuid.UUID) (*model.OrderRequest, error)
	FindByIDTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.OrderRequest, error)
	FindByIDAnyTx(tx *gorm.DB, id uuid.UUID) (*model.OrderRequest, error)
	FindByUser(userID uuid.UUID) ([]model.OrderRequest, error)
	FindByCompany(companyID uuid.UUID, status model.OrderStatus) ([]model.OrderRequest, error)
	CountPending(companyID uuid.UUID) (int64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(tx *gorm.DB, order *model.OrderRequest) error {
	return tx.Create(order).Error
}

func (r *orderRepo) Save(tx *gorm.DB, order *model.OrderRequest) error {
	return tx.Save(order).Error
}

func (r *orderRepo) FindByID(companyID, id uuid.UUID) (*model.OrderRequest, error) {
	return r.FindByIDTx(r.db, companyID, id)
}

// FindByIDTx scopes the lookup to the caller's company: a foreign order ID
// surfaces as record-not-found, never as someone else's data.
func (r *orderRepo) FindByIDTx(tx *gorm.DB, companyID, id uuid.UUID) (*model.OrderRequest, error) {
	var order model.OrderRequest
	err := tx.Preload("Items").Preload("Items.Product").Preload("User").
		First(&order, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDAnyTx is the ADMIN lookup: not scoped to a tenant.
func (r *orderRepo) FindByIDAnyTx(tx *gorm.DB, id uuid.UUID) (*model.OrderRequest, error) {
	var order model.OrderRequest
	err := tx.Preload("Items").Preload("Items.Product").Preload("User").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) FindByUser(userID uuid.UUID) ([]model.OrderRequest, error) {
	var orders []model.OrderRequest
	err := r.db.Preload("Items").Preload("Items.Product").
		Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByCompany(companyID uuid.UUID, status model.OrderStatus) ([]model.OrderRequest, error) {
	var orders []model.OrderRequest
	q := r.db.Preload("Items").Preload("Items.Product").Preload("User").
		Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) CountPending(companyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.OrderRequest{}).
		Where("company_id = ? AND status = ?", companyID, model.OrderPending).Count(&count).Error
	return count, err
}
