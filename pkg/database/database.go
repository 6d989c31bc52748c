package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/axmednajaad/shoptrack-admin/pkg/config"
)

var db *gorm.DB

// Connect opens the Postgres connection, applies the pool settings and
// migrates the given models. The handle is kept package-global; handlers
// reach it through GetDB.
func Connect(dbConfig *config.DBConfig, models ...interface{}) error {
	conn, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dbConfig.GetDSN(),
		PreferSimpleProtocol: true, // no implicit prepared statements
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(dbConfig.LogLevel),
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("accessing connection pool: %w", err)
	}
	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	if len(models) > 0 {
		if err := conn.AutoMigrate(models...); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	db = conn
	return nil
}

// GetDB returns the shared database handle.
func GetDB() *gorm.DB {
	return db
}
