package db

import (
	"fmt"  // Error formatting
	"time" // Pool lifetimes

	"ecommerce_backend/internal/config" // Application configuration

	"gorm.io/driver/mysql"     // MySQL driver for GORM
	"gorm.io/driver/postgres"  // PostgreSQL driver for GORM
	"gorm.io/driver/sqlite"    // SQLite driver for GORM
	"gorm.io/driver/sqlserver" // SQL Server driver for GORM
	"gorm.io/gorm"             // GORM ORM library
	"gorm.io/gorm/logger"      // GORM logger levels
)

// Open connects to the configured database and tunes the connection pool
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := buildDialector(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	gormCfg := &gorm.Config{TranslateError: true} // Map driver errors to gorm.ErrDuplicatedKey etc.
	if cfg.IsProd {
		gormCfg.Logger = logger.Default.LogMode(logger.Error) // Only log SQL errors in production
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1) // In-memory SQLite is per connection
		return db, nil
	}
	sqlDB.SetMaxOpenConns(25)                  // Upper bound on open connections
	sqlDB.SetMaxIdleConns(10)                  // Idle connections kept around
	sqlDB.SetConnMaxLifetime(30 * time.Minute) // Recycle long-lived connections
	return db, nil
}

// buildDialector picks the GORM dialector for a driver name
func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql", "":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	case "sqlserver", "mssql":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
