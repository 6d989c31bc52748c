package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/axmednajaad/shoptrack-admin/internal/apperr"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
	"github.com/axmednajaad/shoptrack-admin/internal/policy"
	"github.com/axmednajaad/shoptrack-admin/pkg/database"
	"github.com/axmednajaad/shoptrack-admin/pkg/logger"
	"github.com/axmednajaad/shoptrack-admin/prometheus"
)

// ProductRequest defines the structure for product creation/update requests
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost"`
	Stock       int     `json:"stock_quantity"`
	CategoryID  *uint   `json:"category_id"`
	TenantID    *uint   `json:"tenant_id"` // honored for super admins only
}

// validate mirrors the store's check constraints so a bad request is
// rejected before it reaches the database.
func (r *ProductRequest) validate() error {
	if r.Name == "" {
		return apperr.Validation("name is required")
	}
	if r.Price <= 0 {
		return apperr.Validation("price must be greater than zero")
	}
	if r.Cost < 0 {
		return apperr.Validation("cost cannot be negative")
	}
	if r.Cost > r.Price {
		return apperr.Validation("cost cannot exceed price")
	}
	if r.Stock < 0 {
		return apperr.Validation("stock_quantity cannot be negative")
	}
	return nil
}

// ListProducts lists the products of the caller's tenant with search,
// paging and an optional category filter. Categories come back inline.
func ListProducts(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("product", "list")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	scope, err := policy.TenantScope(caller)
	if err != nil {
		return fail(c, err)
	}

	params := listParams(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := database.GetDB().Model(&model.Product{}).Preload("Category")
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	q = applySearch(q, params.Search, "name", "description")

	var products []model.Product
	result := q.Order("created_at DESC").Offset(params.Offset).Limit(params.Limit).Find(&products)
	if result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	return c.JSON(http.StatusOK, products)
}

// GetProduct retrieves one product within the caller's tenant scope.
func GetProduct(c echo.Context) error {
	prometheus.RecordEntityOperation("product", "read")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	scope, err := policy.TenantScope(caller)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	q := database.GetDB().Preload("Category")
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}

	var product model.Product
	if result := q.First(&product, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct creates a product inside the caller's tenant after
// validating the price/cost/stock constraints.
func CreateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("product", "create")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if err := req.validate(); err != nil {
		log.Warn("Product validation failed", zap.String("name", req.Name), zap.Error(err))
		return fail(c, err)
	}

	tenantID, err := resolveWriteTenant(caller, req.TenantID)
	if err != nil {
		return fail(c, err)
	}

	if req.CategoryID != nil {
		// The category must exist inside the same tenant.
		var count int64
		database.GetDB().Model(&model.Category{}).
			Where("id = ? AND tenant_id = ?", *req.CategoryID, tenantID).Count(&count)
		if count == 0 {
			return fail(c, apperr.Validation("category %d does not exist in this tenant", *req.CategoryID))
		}
	}

	product := model.Product{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Cost:        req.Cost,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&product); result.Error != nil {
		log.Error("Failed to create product", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Uint("tenant_id", product.TenantID))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct updates a product inside the caller's tenant. A failed
// validation leaves the stored row untouched.
func UpdateProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("product", "update")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	scope, err := policy.TenantScope(caller)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if err := req.validate(); err != nil {
		log.Warn("Product validation failed", zap.Uint("product_id", id), zap.Error(err))
		return fail(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	q := database.GetDB()
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}

	var product model.Product
	if result := q.First(&product, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	if req.CategoryID != nil {
		var count int64
		database.GetDB().Model(&model.Category{}).
			Where("id = ? AND tenant_id = ?", *req.CategoryID, product.TenantID).Count(&count)
		if count == 0 {
			return fail(c, apperr.Validation("category %d does not exist in this tenant", *req.CategoryID))
		}
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.Cost = req.Cost
	product.Stock = req.Stock
	product.CategoryID = req.CategoryID

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&product); result.Error != nil {
		log.Error("Failed to update product", zap.Uint("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}

	log.Info("Product updated",
		zap.Uint("product_id", product.ID),
		zap.Float64("price", product.Price),
		zap.Float64("cost", product.Cost))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product inside the caller's tenant.
func DeleteProduct(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("product", "delete")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	scope, err := policy.TenantScope(caller)
	if err != nil {
		return fail(c, err)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	q := database.GetDB()
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}

	result := q.Delete(&model.Product{}, id)
	if result.Error != nil {
		log.Error("Failed to delete product", zap.Uint("product_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}
	if result.RowsAffected == 0 {
		return fail(c, apperr.ErrNotFound)
	}

	log.Info("Product deleted", zap.Uint("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}
