package service

import (
	"errors"
	"fmt"

	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AlertClassification is the outcome of classifying one product's stock
// level against its thresholds. Active is false when the product sits in no
// alert band.
type AlertClassification struct {
	Active    bool
	Type      model.AlertType
	Severity  model.AlertSeverity
	Threshold int
}

// Classify derives the alert band from current stock and thresholds.
// maxStock of 0 disables the overstock band.
func Classify(currentStock, minStock, maxStock int) AlertClassification {
	if currentStock == 0 {
		return AlertClassification{Active: true, Type: model.AlertOutOfStock, Severity: model.SeverityCritical, Threshold: minStock}
	}
	if minStock > 0 && currentStock <= minStock {
		severity := model.SeverityMedium
		// 10*current <= 3*min avoids float math on the band edges
		if 10*currentStock <= 3*minStock {
			severity = model.SeverityCritical
		} else if 2*currentStock <= minStock {
			severity = model.SeverityHigh
		}
		return AlertClassification{Active: true, Type: model.AlertLowStock, Severity: severity, Threshold: minStock}
	}
	if maxStock > 0 && currentStock >= maxStock {
		return AlertClassification{Active: true, Type: model.AlertOverstock, Severity: model.SeverityMedium, Threshold: maxStock}
	}
	return AlertClassification{}
}

type AlertService interface {
	// SyncProduct reconciles the persisted alert state of one product with
	// its current stock. Runs inside the caller's transaction.
	SyncProduct(tx *gorm.DB, product *model.Product, actor string) error
	ListCompany(companyID uuid.UUID, includeResolved bool) ([]model.StockAlert, error)
	Sweep(companyID uuid.UUID, actor string) (int, error)
}

type alertService struct {
	alertRepo   repository.AlertRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewAlertService(alertRepo repository.AlertRepository, productRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub) AlertService {
	return &alertService{
		alertRepo:   alertRepo,
		productRepo: productRepo,
		db:          db,
		wsHub:       hub,
	}
}

func alertMessage(p *model.Product, c AlertClassification) string {
	switch c.Type {
	case model.AlertOutOfStock:
		return fmt.Sprintf("'%s' (%s) is out of stock", p.Name, p.SKU)
	case model.AlertLowStock:
		return fmt.Sprintf("'%s' (%s) is low on stock: %d left, minimum %d", p.Name, p.SKU, p.AvailableStock(), c.Threshold)
	case model.AlertOverstock:
		return fmt.Sprintf("'%s' (%s) is overstocked: %d on hand, maximum %d", p.Name, p.SKU, p.AvailableStock(), c.Threshold)
	}
	return ""
}

func (s *alertService) SyncProduct(tx *gorm.DB, product *model.Product, actor string) error {
	classification := Classify(product.AvailableStock(), product.MinStock, product.MaxStock)

	open, err := s.alertRepo.FindOpenByProduct(tx, product.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if !classification.Active {
		// Back in the healthy range: close whatever is open.
		if open != nil {
			if err := s.alertRepo.ResolveForProduct(tx, product.ID, actor); err != nil {
				return err
			}
			s.wsHub.Notify("stock_alert_resolved", map[string]interface{}{
				"product_id": product.ID,
				"sku":        product.SKU,
				"stock":      product.AvailableStock(),
			})
		}
		return nil
	}

	if open != nil {
		// At most one open alert per product: refresh it in place.
		open.AlertType = classification.Type
		open.Severity = classification.Severity
		open.Message = alertMessage(product, classification)
		open.CurrentStock = product.AvailableStock()
		open.ThresholdValue = classification.Threshold
		open.UpdatedBy = actor
		return s.alertRepo.Save(tx, open)
	}

	alert := &model.StockAlert{
		ProductID:      product.ID,
		CompanyID:      product.CompanyID,
		AlertType:      classification.Type,
		Severity:       classification.Severity,
		Message:        alertMessage(product, classification),
		CurrentStock:   product.AvailableStock(),
		ThresholdValue: classification.Threshold,
	}
	alert.CreatedBy = actor
	alert.UpdatedBy = actor
	if err := s.alertRepo.Create(tx, alert); err != nil {
		return err
	}

	s.wsHub.Notify("stock_alert_created", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
		"alert_type": classification.Type,
		"severity":   classification.Severity,
		"stock":      product.AvailableStock(),
	})
	return nil
}

func (s *alertService) ListCompany(companyID uuid.UUID, includeResolved bool) ([]model.StockAlert, error) {
	return s.alertRepo.FindByCompany(companyID, includeResolved)
}

// Sweep re-evaluates every product of a company, for the external periodic
// trigger. Returns how many products now carry an open alert.
func (s *alertService) Sweep(companyID uuid.UUID, actor string) (int, error) {
	products, err := s.productRepo.FindAll(companyID)
	if err != nil {
		return 0, err
	}

	active := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for i := range products {
			if err := s.SyncProduct(tx, &products[i], actor); err != nil {
				return err
			}
			if Classify(products[i].AvailableStock(), products[i].MinStock, products[i].MaxStock).Active {
				active++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return active, nil
}
