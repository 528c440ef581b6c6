package handler

import (
	"go-stockcredit/internal/middleware"
	"go-stockcredit/internal/model"
	"go-stockcredit/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ProductHandler struct {
	catalog service.CatalogService
}

func NewProductHandler(catalog service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// RestockRequest is the body of PATCH /products/:id/restock
type RestockRequest struct {
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

func companyID(c *fiber.Ctx) (uuid.UUID, bool) {
	user := middleware.CurrentUser(c)
	if user == nil || user.CompanyID == nil {
		return uuid.Nil, false
	}
	return *user.CompanyID, true
}

// GetProducts lists the caller's company catalog
// GET /api/v1/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	cid, ok := companyID(c)
	if !ok {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}
	products, err := h.catalog.GetProducts(cid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// CreateProduct adds a catalog entry
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	cid, ok := companyID(c)
	if !ok {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	product.CompanyID = cid

	if err := h.catalog.CreateProduct(&product, middleware.CurrentUser(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// UpdateProduct edits a catalog entry
// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	cid, ok := companyID(c)
	if !ok {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.ProductUpdateInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	req.CompanyID = cid

	updated, err := h.catalog.UpdateProduct(id, &req, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DeleteProduct removes a product, deactivating instead when order history
// references it
// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	deactivated, err := h.catalog.DeleteProduct(id, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	if deactivated {
		return c.JSON(fiber.Map{"message": "Product deactivated (referenced by orders)"})
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// Restock applies a positive stock delta with an audit record
// PATCH /api/v1/products/:id/restock
func (h *ProductHandler) Restock(c *fiber.Ctx) error {
	cid, ok := companyID(c)
	if !ok {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req RestockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, record, err := h.catalog.Restock(cid, id, req.Quantity, req.Notes, middleware.CurrentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Product restocked",
		"data":    product,
		"restock": record,
	})
}

// GetRestockRecords lists restock audit rows, optionally per product
// GET /api/v1/products/restocks?product_id=...
func (h *ProductHandler) GetRestockRecords(c *fiber.Ctx) error {
	cid, ok := companyID(c)
	if !ok {
		return c.Status(403).JSON(fiber.Map{"error": "No company context"})
	}

	productID := uuid.Nil
	if raw := c.Query("product_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
		}
		productID = parsed
	}

	records, err := h.catalog.GetRestockRecords(cid, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(records)
}
