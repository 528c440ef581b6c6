package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go-stockcredit/internal/apperr"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/repository"
	"go-stockcredit/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItemInput is one requested product line.
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// StockMovement summarizes one ledger deduction made while shipping.
type StockMovement struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	NewStock  int       `json:"new_stock"`
}

// OrderService drives an order through PENDING -> APPROVED/REJECTED ->
// SHIPPED (-> DELIVERED/FULFILLED). Stock is committed at ship time only;
// creation and rejection never touch the stock ledger. Creation reserves the
// employee's purchase credit, rejection and cancellation release it.
type OrderService interface {
	CreateOrder(user *model.User, items []OrderItemInput, notes string) (*model.OrderRequest, error)
	Transition(actor *model.User, orderID uuid.UUID, newStatus model.OrderStatus, notes string) (*model.OrderRequest, error)
	Ship(actor *model.User, orderID uuid.UUID, notes string) (*model.OrderRequest, []StockMovement, error)
	GetOrder(actor *model.User, orderID uuid.UUID) (*model.OrderRequest, error)
	GetUserOrders(userID uuid.UUID) ([]model.OrderRequest, error)
	GetCompanyOrders(companyID uuid.UUID, status model.OrderStatus) ([]model.OrderRequest, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	userRepo      repository.UserRepository
	financeRepo   repository.FinanceRepository
	inventoryRepo repository.UserInventoryRepository
	alertSvc      AlertService
	db            *gorm.DB
	wsHub         *ws.Hub
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	financeRepo repository.FinanceRepository,
	inventoryRepo repository.UserInventoryRepository,
	alertSvc AlertService,
	db *gorm.DB,
	hub *ws.Hub,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		userRepo:      userRepo,
		financeRepo:   financeRepo,
		inventoryRepo: inventoryRepo,
		alertSvc:      alertSvc,
		db:            db,
		wsHub:         hub,
	}
}

func (s *orderService) CreateOrder(user *model.User, items []OrderItemInput, notes string) (*model.OrderRequest, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one item", apperr.ErrInvalidInput)
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", apperr.ErrInvalidInput)
		}
	}
	if user.CompanyID == nil {
		return nil, fmt.Errorf("%w: user has no company", apperr.ErrUnauthorized)
	}
	companyID := *user.CompanyID

	var order *model.OrderRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		orderItems := make([]model.OrderRequestItem, 0, len(items))
		var shortages []apperr.StockShortage

		for _, it := range items {
			product, err := s.productRepo.FindByID(companyID, it.ProductID)
			if err != nil {
				return fmt.Errorf("%w: product %s", apperr.ErrNotFound, it.ProductID)
			}
			if !product.IsActive {
				return fmt.Errorf("%w: product %s is inactive", apperr.ErrInvalidInput, product.SKU)
			}
			// Advisory availability check; the binding one happens at ship
			// time under the row lock.
			if product.AvailableStock() < it.Quantity {
				shortages = append(shortages, apperr.StockShortage{
					ProductID: product.ID,
					SKU:       product.SKU,
					Requested: it.Quantity,
					Available: product.AvailableStock(),
				})
				continue
			}

			linePrice := product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			total = total.Add(linePrice)
			item := model.OrderRequestItem{
				ProductID:  product.ID,
				Quantity:   it.Quantity,
				UnitPrice:  product.Price,
				TotalPrice: linePrice,
			}
			item.CreatedBy = user.ID.String()
			item.UpdatedBy = user.ID.String()
			orderItems = append(orderItems, item)
		}

		if len(shortages) > 0 {
			return &apperr.InsufficientStockError{Items: shortages}
		}

		// Reserve purchase credit under the user row lock.
		locked, err := s.userRepo.LockByID(tx, user.ID)
		if err != nil {
			return err
		}
		if locked.CreditUsed.Add(total).GreaterThan(locked.CreditLimit) {
			return fmt.Errorf("%w: order total %s exceeds available credit %s",
				apperr.ErrInvalidAmount, total.StringFixed(2), locked.CreditAvailable().StringFixed(2))
		}
		locked.CreditUsed = locked.CreditUsed.Add(total)
		locked.UpdatedBy = user.ID.String()
		if err := tx.Save(locked).Error; err != nil {
			return err
		}

		o := &model.OrderRequest{
			UserID:      user.ID,
			CompanyID:   companyID,
			Status:      model.OrderPending,
			TotalAmount: total,
			Notes:       notes,
			Items:       orderItems,
		}
		o.CreatedBy = user.ID.String()
		o.UpdatedBy = user.ID.String()
		if err := s.orderRepo.Create(tx, o); err != nil {
			return err
		}

		ct := &model.CreditTransaction{
			UserID:      user.ID,
			CompanyID:   companyID,
			Type:        model.CreditUsed,
			Amount:      total,
			Description: fmt.Sprintf("reserved for order %s", o.ID),
		}
		ct.CreatedBy = user.ID.String()
		ct.UpdatedBy = user.ID.String()
		if err := s.financeRepo.CreateCreditTransaction(tx, ct); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Notify("order_created", map[string]interface{}{
		"order_id": order.ID,
		"user":     user.FullName,
		"total":    order.TotalAmount,
	})
	return order, nil
}

func (s *orderService) Transition(actor *model.User, orderID uuid.UUID, newStatus model.OrderStatus, notes string) (*model.OrderRequest, error) {
	if !actor.IsDirector() {
		return nil, fmt.Errorf("%w: only directors may transition orders", apperr.ErrUnauthorized)
	}
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, newStatus)
	}
	if newStatus == model.OrderShipped {
		order, _, err := s.Ship(actor, orderID, notes)
		return order, err
	}

	var order *model.OrderRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		o, err := s.findForActor(tx, actor, orderID)
		if err != nil {
			return err
		}

		now := time.Now()
		switch newStatus {
		case model.OrderApproved:
			if o.Status != model.OrderPending {
				return fmt.Errorf("%w: cannot approve a %s order", apperr.ErrInvalidStatus, o.Status)
			}
			o.Status = model.OrderApproved
			o.ApprovedAt = &now

		case model.OrderRejected:
			if o.Status != model.OrderPending {
				return fmt.Errorf("%w: cannot reject a %s order", apperr.ErrInvalidStatus, o.Status)
			}
			o.Status = model.OrderRejected
			o.RejectedAt = &now
			if err := s.releaseCredit(tx, o, actor); err != nil {
				return err
			}

		case model.OrderCancelled:
			if o.Status != model.OrderPending && o.Status != model.OrderApproved {
				return fmt.Errorf("%w: cannot cancel a %s order", apperr.ErrInvalidStatus, o.Status)
			}
			o.Status = model.OrderCancelled
			if err := s.releaseCredit(tx, o, actor); err != nil {
				return err
			}

		case model.OrderDelivered:
			if o.Status != model.OrderShipped {
				return fmt.Errorf("%w: cannot deliver a %s order", apperr.ErrInvalidStatus, o.Status)
			}
			o.Status = model.OrderDelivered

		case model.OrderFulfilled:
			if o.Status != model.OrderShipped && o.Status != model.OrderDelivered {
				return fmt.Errorf("%w: cannot fulfil a %s order", apperr.ErrInvalidStatus, o.Status)
			}
			o.Status = model.OrderFulfilled
			o.FulfilledAt = &now

		case model.OrderPending:
			return fmt.Errorf("%w: orders cannot return to PENDING", apperr.ErrInvalidStatus)
		}

		if notes != "" {
			o.Notes = notes
		}
		o.UpdatedBy = actor.ID.String()
		if err := s.orderRepo.Save(tx, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Notify("order_status_changed", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
		"actor":    actor.FullName,
	})
	return order, nil
}

// Ship performs the all-or-nothing stock commit. Every item is checked
// against locked product rows before anything is deducted; a shortfall on
// any line aborts with the complete shortage list and no state change.
func (s *orderService) Ship(actor *model.User, orderID uuid.UUID, notes string) (*model.OrderRequest, []StockMovement, error) {
	if !actor.IsDirector() {
		return nil, nil, fmt.Errorf("%w: only directors may ship orders", apperr.ErrUnauthorized)
	}

	var order *model.OrderRequest
	var movements []StockMovement

	err := s.db.Transaction(func(tx *gorm.DB) error {
		o, err := s.findForActor(tx, actor, orderID)
		if err != nil {
			return err
		}
		if o.Status != model.OrderPending && o.Status != model.OrderApproved {
			return fmt.Errorf("%w: cannot ship a %s order", apperr.ErrInvalidStatus, o.Status)
		}

		// Lock products in a stable order to keep concurrent shipments from
		// deadlocking.
		items := make([]model.OrderRequestItem, len(o.Items))
		copy(items, o.Items)
		sort.Slice(items, func(i, j int) bool {
			return items[i].ProductID.String() < items[j].ProductID.String()
		})

		locked := make(map[uuid.UUID]*model.Product, len(items))
		var shortages []apperr.StockShortage
		for _, item := range items {
			product, err := s.productRepo.LockByID(tx, o.CompanyID, item.ProductID)
			if err != nil {
				return fmt.Errorf("%w: product %s", apperr.ErrNotFound, item.ProductID)
			}
			locked[item.ProductID] = product
			if product.AvailableStock() < item.Quantity {
				shortages = append(shortages, apperr.StockShortage{
					ProductID: product.ID,
					SKU:       product.SKU,
					Requested: item.Quantity,
					Available: product.AvailableStock(),
				})
			}
		}
		if len(shortages) > 0 {
			return &apperr.InsufficientStockError{Items: shortages}
		}

		for _, item := range items {
			product := locked[item.ProductID]
			if err := s.productRepo.AdjustStock(tx, product, -item.Quantity, actor.ID.String()); err != nil {
				return err
			}
			if err := s.inventoryRepo.AddReceived(tx, o.UserID, product.ID, o.CompanyID, item.Quantity, actor.ID.String()); err != nil {
				return err
			}
			if err := s.alertSvc.SyncProduct(tx, product, actor.ID.String()); err != nil {
				return err
			}
			movements = append(movements, StockMovement{
				ProductID: product.ID,
				SKU:       product.SKU,
				Quantity:  item.Quantity,
				NewStock:  product.AvailableStock(),
			})
		}

		now := time.Now()
		o.Status = model.OrderShipped
		o.ShippedAt = &now
		if notes != "" {
			o.Notes = notes
		}
		o.UpdatedBy = actor.ID.String()
		if err := s.orderRepo.Save(tx, o); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.wsHub.Notify("order_shipped", map[string]interface{}{
		"order_id":  order.ID,
		"movements": movements,
		"actor":     actor.FullName,
	})
	return order, movements, nil
}

func (s *orderService) GetOrder(actor *model.User, orderID uuid.UUID) (*model.OrderRequest, error) {
	if actor.CompanyID == nil {
		return nil, fmt.Errorf("%w: order", apperr.ErrNotFound)
	}
	order, err := s.orderRepo.FindByID(*actor.CompanyID, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: order", apperr.ErrNotFound)
	}
	// Plain users only see their own orders.
	if !actor.IsDirector() && order.UserID != actor.ID {
		return nil, fmt.Errorf("%w: order", apperr.ErrNotFound)
	}
	return order, nil
}

func (s *orderService) GetUserOrders(userID uuid.UUID) ([]model.OrderRequest, error) {
	return s.orderRepo.FindByUser(userID)
}

func (s *orderService) GetCompanyOrders(companyID uuid.UUID, status model.OrderStatus) ([]model.OrderRequest, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", apperr.ErrInvalidStatus, status)
	}
	return s.orderRepo.FindByCompany(companyID, status)
}

// findForActor loads an order scoped to the actor's company. Cross-tenant
// IDs come back as NotFound. ADMIN spans tenants.
func (s *orderService) findForActor(tx *gorm.DB, actor *model.User, orderID uuid.UUID) (*model.OrderRequest, error) {
	var order *model.OrderRequest
	var err error
	if actor.Role == model.RoleAdmin {
		order, err = s.orderRepo.FindByIDAnyTx(tx, orderID)
	} else if actor.CompanyID != nil {
		order, err = s.orderRepo.FindByIDTx(tx, *actor.CompanyID, orderID)
	} else {
		return nil, fmt.Errorf("%w: order", apperr.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// releaseCredit frees the reservation taken at order creation.
func (s *orderService) releaseCredit(tx *gorm.DB, order *model.OrderRequest, actor *model.User) error {
	if order.TotalAmount.IsZero() {
		return nil
	}
	user, err := s.userRepo.LockByID(tx, order.UserID)
	if err != nil {
		return err
	}
	user.CreditUsed = user.CreditUsed.Sub(order.TotalAmount)
	if user.CreditUsed.IsNegative() {
		user.CreditUsed = decimal.Zero
	}
	user.UpdatedBy = actor.ID.String()
	if err := tx.Save(user).Error; err != nil {
		return err
	}

	ct := &model.CreditTransaction{
		UserID:      order.UserID,
		CompanyID:   order.CompanyID,
		Type:        model.CreditReleased,
		Amount:      order.TotalAmount,
		Description: fmt.Sprintf("released for order %s (%s)", order.ID, order.Status),
	}
	ct.CreatedBy = actor.ID.String()
	ct.UpdatedBy = actor.ID.String()
	return s.financeRepo.CreateCreditTransaction(tx, ct)
}
