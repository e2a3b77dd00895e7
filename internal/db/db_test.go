package db

import (
	"testing"

	"ecommerce_backend/internal/config"
	"ecommerce_backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDialector(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite", "sqlserver"} {
		d, err := buildDialector(driver, "dsn")
		require.NoError(t, err, driver)
		assert.NotNil(t, d)
	}

	_, err := buildDialector("oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestOpenAndMigrate_SQLite(t *testing.T) {
	gdb, err := Open(&config.Config{DBDriver: "sqlite", DBDSN: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	for _, m := range Models {
		assert.True(t, gdb.Migrator().HasTable(m))
	}

	cat := domain.Category{Name: "Books", Slug: "books"}
	require.NoError(t, gdb.Create(&cat).Error)
	p := domain.Product{Name: "Go", Slug: "go", Description: "d", Price: decimal.RequireFromString("12.50"), CategoryID: cat.ID}
	require.NoError(t, gdb.Create(&p).Error)

	var got domain.Product
	require.NoError(t, gdb.First(&got, p.ID).Error)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.5")))
}
