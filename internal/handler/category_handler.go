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

// CategoryRequest defines the structure for category creation/update requests
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TenantID    *uint  `json:"tenant_id"` // honored for super admins only
}

// ListCategories lists the categories of the caller's tenant with search
// and paging.
func ListCategories(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("category", "list")

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

	q := database.GetDB().Model(&model.Category{})
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}
	q = applySearch(q, params.Search, "name", "description")

	var categories []model.Category
	result := q.Order("created_at DESC").Offset(params.Offset).Limit(params.Limit).Find(&categories)
	if result.Error != nil {
		log.Error("Failed to list categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	return c.JSON(http.StatusOK, categories)
}

// ListCategoriesForSelect returns the tenant's categories as id/name
// pairs ordered by name, for populating selection widgets.
func ListCategoriesForSelect(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("category", "list")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	scope, err := policy.TenantScope(caller)
	if err != nil {
		return fail(c, err)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	q := database.GetDB().Model(&model.Category{}).Select("id", "name")
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}

	var categories []model.Category
	if result := q.Order("name ASC").Find(&categories); result.Error != nil {
		log.Error("Failed to list categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve categories"})
	}

	type option struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}
	options := make([]option, 0, len(categories))
	for _, cat := range categories {
		options = append(options, option{ID: cat.ID, Name: cat.Name})
	}

	return c.JSON(http.StatusOK, options)
}

// GetCategory retrieves one category within the caller's tenant scope.
func GetCategory(c echo.Context) error {
	prometheus.RecordEntityOperation("category", "read")

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
	q := database.GetDB()
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}

	var category model.Category
	if result := q.First(&category, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	return c.JSON(http.StatusOK, category)
}

// CreateCategory creates a category inside the caller's tenant. Names are
// unique per tenant.
func CreateCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("category", "create")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Name == "" {
		return fail(c, apperr.Validation("name is required"))
	}

	tenantID, err := resolveWriteTenant(caller, req.TenantID)
	if err != nil {
		return fail(c, err)
	}

	var count int64
	database.GetDB().Model(&model.Category{}).
		Where("name = ? AND tenant_id = ?", req.Name, tenantID).Count(&count)
	if count > 0 {
		log.Warn("Category name already exists for tenant",
			zap.String("name", req.Name),
			zap.Uint("tenant_id", tenantID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "category with this name already exists"})
	}

	category := model.Category{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&category); result.Error != nil {
		log.Error("Failed to create category", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create category"})
	}

	log.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name),
		zap.Uint("tenant_id", category.TenantID))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory updates a category inside the caller's tenant.
func UpdateCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("category", "update")

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

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	q := database.GetDB()
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}

	var category model.Category
	if result := q.First(&category, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	if req.Name != "" && req.Name != category.Name {
		var count int64
		database.GetDB().Model(&model.Category{}).
			Where("name = ? AND id != ? AND tenant_id = ?", req.Name, id, category.TenantID).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "category with this name already exists"})
		}
		category.Name = req.Name
	}
	category.Description = req.Description

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&category); result.Error != nil {
		log.Error("Failed to update category", zap.Uint("category_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update category"})
	}

	log.Info("Category updated", zap.Uint("category_id", category.ID), zap.String("name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category, refusing while products still
// reference it.
func DeleteCategory(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("category", "delete")

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
	q := database.GetDB()
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}

	var category model.Category
	if result := q.First(&category, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	var count int64
	database.GetDB().Model(&model.Product{}).
		Where("category_id = ? AND tenant_id = ?", id, category.TenantID).Count(&count)
	if count > 0 {
		log.Warn("Category deletion refused, still referenced",
			zap.Uint("category_id", id),
			zap.Int64("product_count", count))
		return fail(c, &apperr.CategoryNotEmptyError{ProductCount: count})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if result := database.GetDB().Delete(&category); result.Error != nil {
		log.Error("Failed to delete category", zap.Uint("category_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete category"})
	}

	log.Info("Category deleted", zap.Uint("category_id", id), zap.Uint("tenant_id", category.TenantID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Category deleted successfully"})
}
