package db

import (
	"ecommerce_backend/internal/domain" // Importing domain models

	"gorm.io/gorm" // GORM ORM library
)

// Models lists every table owned by the application, parents first
var Models = []any{
	&domain.User{},
	&domain.Category{},
	&domain.Product{},
	&domain.ProductPhoto{},
	&domain.CheckoutIntent{},
	&domain.Order{},
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	return db.AutoMigrate(Models...)
}
