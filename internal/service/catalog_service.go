package service

import (
	"errors"
	"fmt"

	"go-stockcredit/internal/apperr"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/internal/ws"
	"go-stockcredit/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductUpdateInput is a full replace of a product's descriptive fields.
// Quantity is optional: nil leaves the stock ledger alone, a value moves
// stock through the ledger accessor until the counters reach it.
type ProductUpdateInput struct {
	CompanyID uuid.UUID       `json:"-"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	MinStock  int             `json:"min_stock"`
	MaxStock  int             `json:"max_stock"`
	IsActive  bool            `json:"is_active"`
	Quantity  *int            `json:"quantity"`
}

// CatalogService owns the product catalog and the stock ledger. Every stock
// mutation flows through the product repository's AdjustStock accessor
// inside a transaction holding the product row lock.
type CatalogService interface {
	CreateProduct(req *model.Product, actor *model.User) error
	UpdateProduct(id uuid.UUID, req *ProductUpdateInput, actor *model.User) (*model.Product, error)
	DeleteProduct(id uuid.UUID, actor *model.User) (deactivated bool, err error)
	GetProducts(companyID uuid.UUID) ([]model.Product, error)
	GetProduct(companyID, id uuid.UUID) (*model.Product, error)
	Restock(companyID, productID uuid.UUID, quantity int, notes string, actor *model.User) (*model.Product, *model.RestockRecord, error)
	GetRestockRecords(companyID, productID uuid.UUID) ([]model.RestockRecord, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	financeRepo repository.FinanceRepository
	alertSvc    AlertService
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewCatalogService(productRepo repository.ProductRepository, financeRepo repository.FinanceRepository, alertSvc AlertService, db *gorm.DB, hub *ws.Hub) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		financeRepo: financeRepo,
		alertSvc:    alertSvc,
		db:          db,
		wsHub:       hub,
	}
}

func (s *catalogService) CreateProduct(req *model.Product, actor *model.User) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("%w: field '%s' failed on '%s'", apperr.ErrInvalidInput, firstErr.FailedField, firstErr.Tag)
	}
	if req.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", apperr.ErrInvalidInput)
	}

	// SKU is unique per company
	existing, _ := s.productRepo.FindBySKU(req.CompanyID, req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return fmt.Errorf("%w: SKU already exists", apperr.ErrInvalidInput)
	}

	req.StockQuantity = &req.Quantity
	req.IsActive = true
	req.CreatedBy = actor.ID.String()
	req.UpdatedBy = actor.ID.String()

	if err := s.productRepo.Create(req); err != nil {
		return err
	}

	s.wsHub.Notify("product_created", map[string]interface{}{
		"product_id": req.ID,
		"sku":        req.SKU,
		"name":       req.Name,
		"stock":      req.AvailableStock(),
		"actor":      actor.FullName,
	})
	return nil
}

func (s *catalogService) UpdateProduct(id uuid.UUID, req *ProductUpdateInput, actor *model.User) (*model.Product, error) {
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", apperr.ErrInvalidInput)
	}

	var updated *model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, req.CompanyID, id)
		if err != nil {
			return fmt.Errorf("%w: product", apperr.ErrNotFound)
		}

		existing.Name = req.Name
		existing.SKU = req.SKU
		existing.Unit = req.Unit
		existing.Price = req.Price
		existing.MinStock = req.MinStock
		existing.MaxStock = req.MaxStock
		existing.IsActive = req.IsActive
		existing.UpdatedBy = actor.ID.String()

		// Direct quantity edits go through the ledger accessor so both
		// counters move together. A body without a quantity never touches
		// stock.
		if req.Quantity != nil {
			if delta := *req.Quantity - existing.AvailableStock(); delta != 0 {
				if err := s.productRepo.AdjustStock(tx, existing, delta, actor.ID.String()); err != nil {
					return err
				}
			}
		}

		if err := tx.Save(existing).Error; err != nil {
			return err
		}

		if err := s.alertSvc.SyncProduct(tx, existing, actor.ID.String()); err != nil {
			return err
		}

		updated = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Notify("product_updated", map[string]interface{}{
		"product_id": updated.ID,
		"sku":        updated.SKU,
		"stock":      updated.AvailableStock(),
		"actor":      actor.FullName,
	})
	return updated, nil
}

// DeleteProduct deactivates products still referenced by order items and
// hard-deletes the rest.
func (s *catalogService) DeleteProduct(id uuid.UUID, actor *model.User) (bool, error) {
	companyID := uuid.Nil
	if actor.CompanyID != nil {
		companyID = *actor.CompanyID
	}

	if _, err := s.productRepo.FindByID(companyID, id); err != nil {
		return false, fmt.Errorf("%w: product", apperr.ErrNotFound)
	}

	refs, err := s.productRepo.CountOrderItems(id)
	if err != nil {
		return false, err
	}
	if refs > 0 {
		return true, s.productRepo.Deactivate(companyID, id, actor.ID.String())
	}
	return false, s.productRepo.Delete(companyID, id)
}

func (s *catalogService) GetProducts(companyID uuid.UUID) ([]model.Product, error) {
	return s.productRepo.FindAll(companyID)
}

func (s *catalogService) GetProduct(companyID, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%w: product", apperr.ErrNotFound)
	}
	return product, nil
}

// Restock applies a positive delta, writes one audit row per call, and
// re-syncs the product's alert state, all in one transaction.
func (s *catalogService) Restock(companyID, productID uuid.UUID, quantity int, notes string, actor *model.User) (*model.Product, *model.RestockRecord, error) {
	if quantity <= 0 {
		return nil, nil, fmt.Errorf("%w: restock quantity must be positive", apperr.ErrInvalidInput)
	}

	var product *model.Product
	var record *model.RestockRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.productRepo.LockByID(tx, companyID, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product", apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}

		if err := s.productRepo.AdjustStock(tx, p, quantity, actor.ID.String()); err != nil {
			return err
		}

		rec := &model.RestockRecord{
			ProductID: p.ID,
			CompanyID: p.CompanyID,
			Quantity:  quantity,
			NewStock:  p.AvailableStock(),
			Notes:     notes,
		}
		rec.CreatedBy = actor.ID.String()
		rec.UpdatedBy = actor.ID.String()
		if err := s.financeRepo.CreateRestockRecord(tx, rec); err != nil {
			return err
		}

		if err := s.alertSvc.SyncProduct(tx, p, actor.ID.String()); err != nil {
			return err
		}

		product = p
		record = rec
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.wsHub.Notify("product_restocked", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
		"quantity":   quantity,
		"new_stock":  product.AvailableStock(),
		"actor":      actor.FullName,
	})
	return product, record, nil
}

func (s *catalogService) GetRestockRecords(companyID, productID uuid.UUID) ([]model.RestockRecord, error) {
	return s.financeRepo.FindRestockRecords(companyID, productID)
}
