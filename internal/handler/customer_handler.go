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

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Phone    string  `json:"phone"`
	Address  string  `json:"address"`
	TenantID *uint   `json:"tenant_id"` // honored for super admins only
}

// resolveWriteTenant picks the tenant a scoped insert goes to: the
// caller's own tenant for tenant roles, an explicit tenant_id for super
// admins.
func resolveWriteTenant(caller *policy.CallerContext, requested *uint) (uint, error) {
	scope, err := policy.TenantScope(caller)
	if err != nil {
		return 0, err
	}
	if scope != nil {
		return *scope, nil
	}
	if requested == nil {
		return 0, apperr.Validation("tenant_id is required")
	}
	return *requested, nil
}

// ListCustomers lists the customers of the caller's tenant with search and
// paging.
func ListCustomers(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("customer", "list")

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

	q := database.GetDB().Model(&model.Customer{})
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}
	q = applySearch(q, params.Search, "name", "email", "phone")

	var customers []model.Customer
	result := q.Order("created_at DESC").Offset(params.Offset).Limit(params.Limit).Find(&customers)
	if result.Error != nil {
		log.Error("Failed to list customers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve customers"})
	}

	return c.JSON(http.StatusOK, customers)
}

// GetCustomer retrieves one customer within the caller's tenant scope.
func GetCustomer(c echo.Context) error {
	prometheus.RecordEntityOperation("customer", "read")

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

	var customer model.Customer
	if result := q.First(&customer, id); result.Error != nil {
		// Absent and cross-tenant rows are indistinguishable.
		return fail(c, apperr.ErrNotFound)
	}

	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer creates a customer inside the caller's tenant.
func CreateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("customer", "create")

	caller, err := requireCaller(c)
	if err != nil {
		return fail(c, err)
	}

	var req CustomerRequest
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

	if req.Email != nil && *req.Email != "" {
		var count int64
		database.GetDB().Model(&model.Customer{}).Where("email = ?", *req.Email).Count(&count)
		if count > 0 {
			log.Warn("Customer email already in use", zap.String("email", *req.Email))
			return c.JSON(http.StatusConflict, echo.Map{"error": "customer email already in use"})
		}
	}

	customer := model.Customer{
		TenantID: tenantID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&customer); result.Error != nil {
		log.Error("Failed to create customer", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create customer"})
	}

	log.Info("Customer created",
		zap.Uint("customer_id", customer.ID),
		zap.Uint("tenant_id", customer.TenantID))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer updates a customer inside the caller's tenant. The
// tenant reference is immutable.
func UpdateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("customer", "update")

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

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	q := database.GetDB()
	if scope != nil {
		q = q.Where("tenant_id = ?", *scope)
	}

	var customer model.Customer
	if result := q.First(&customer, id); result.Error != nil {
		return fail(c, apperr.ErrNotFound)
	}

	if req.Email != nil && *req.Email != "" {
		var count int64
		database.GetDB().Model(&model.Customer{}).
			Where("email = ? AND id != ?", *req.Email, id).Count(&count)
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "customer email already in use"})
		}
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	customer.Phone = req.Phone
	customer.Address = req.Address

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&customer); result.Error != nil {
		log.Error("Failed to update customer", zap.Uint("customer_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update customer"})
	}

	log.Info("Customer updated", zap.Uint("customer_id", customer.ID))
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer removes a customer inside the caller's tenant.
func DeleteCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordEntityOperation("customer", "delete")

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

	result := q.Delete(&model.Customer{}, id)
	if result.Error != nil {
		log.Error("Failed to delete customer", zap.Uint("customer_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete customer"})
	}
	if result.RowsAffected == 0 {
		return fail(c, apperr.ErrNotFound)
	}

	log.Info("Customer deleted", zap.Uint("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted successfully"})
}
