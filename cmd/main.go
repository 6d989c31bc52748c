package main

import (
	"errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/axmednajaad/shoptrack-admin/internal/handler"
	"github.com/axmednajaad/shoptrack-admin/internal/middleware"
	"github.com/axmednajaad/shoptrack-admin/internal/model"
	"github.com/axmednajaad/shoptrack-admin/internal/policy"
	"github.com/axmednajaad/shoptrack-admin/pkg/config"
	"github.com/axmednajaad/shoptrack-admin/pkg/database"
	"github.com/axmednajaad/shoptrack-admin/pkg/jwtutil"
	"github.com/axmednajaad/shoptrack-admin/pkg/logger"
	"github.com/axmednajaad/shoptrack-admin/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting shop admin service...", zap.String("environment", cfg.Server.Env))

	// Connect to the database and run migrations
	if err := database.Connect(&cfg.DB,
		&model.Tenant{},
		&model.User{},
		&model.Customer{},
		&model.Category{},
		&model.Product{},
	); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Seed the initial super admin when configured
	if err := bootstrapSuperAdmin(cfg); err != nil {
		log.Fatal("Failed to bootstrap super admin", zap.Error(err))
	}

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// API routes - all require an authenticated, freshly resolved caller
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	tenants := api.Group("/tenants")
	tenants.POST("", handler.CreateTenant)
	tenants.GET("", handler.ListTenants)
	tenants.GET("/:id", handler.GetTenant)
	tenants.PUT("/:id", handler.UpdateTenant)
	tenants.DELETE("/:id", handler.DeleteTenant)
	tenants.GET("/:id/capacity", handler.GetTenantCapacity)

	users := api.Group("/users")
	users.POST("", handler.CreateUser)
	users.GET("", handler.ListUsers)
	users.GET("/profile", handler.GetProfile)
	users.GET("/:id", handler.GetUser)
	users.PUT("/:id", handler.UpdateUser)
	users.PUT("/:id/tenant", handler.AssignTenant)
	users.DELETE("/:id", handler.DeleteUser)

	customers := api.Group("/customers")
	customers.POST("", handler.CreateCustomer)
	customers.GET("", handler.ListCustomers)
	customers.GET("/:id", handler.GetCustomer)
	customers.PUT("/:id", handler.UpdateCustomer)
	customers.DELETE("/:id", handler.DeleteCustomer)

	products := api.Group("/products")
	products.POST("", handler.CreateProduct)
	products.GET("", handler.ListProducts)
	products.GET("/:id", handler.GetProduct)
	products.PUT("/:id", handler.UpdateProduct)
	products.DELETE("/:id", handler.DeleteProduct)

	categories := api.Group("/categories")
	categories.POST("", handler.CreateCategory)
	categories.GET("", handler.ListCategories)
	categories.GET("/select", handler.ListCategoriesForSelect)
	categories.GET("/:id", handler.GetCategory)
	categories.PUT("/:id", handler.UpdateCategory)
	categories.DELETE("/:id", handler.DeleteCategory)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

// bootstrapSuperAdmin creates the configured super admin account on first
// boot so a fresh deployment is not locked out of the admin API.
func bootstrapSuperAdmin(cfg *config.Config) error {
	email := cfg.Bootstrap.SuperAdminEmail
	password := cfg.Bootstrap.SuperAdminPassword
	if email == "" || password == "" {
		return nil
	}

	var existing model.User
	result := database.GetDB().Where("email = ?", email).First(&existing)
	if result.Error == nil {
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     "Administrator",
		Role:         string(policy.RoleSuperAdmin),
		Status:       model.UserStatusActive,
	}
	return database.GetDB().Create(&admin).Error
}
