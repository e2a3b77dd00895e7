package main

import (
	"bytes"
	"context"
	"testing"

	"ecommerce_backend/internal/db"
	"ecommerce_backend/internal/domain"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPromote(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, gdb.Create(&domain.User{Name: "Op", Email: "op@shop.io", Password: "h", Role: domain.RoleUser}).Error)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())

	require.NoError(t, promote(gdb, " OP@shop.io ", cmd))
	assert.Contains(t, out.String(), "op@shop.io is now an admin")

	var u domain.User
	require.NoError(t, gdb.First(&u, "email = ?", "op@shop.io").Error)
	assert.True(t, u.IsAdmin())

	assert.Error(t, promote(gdb, "ghost@shop.io", cmd))
}

func TestCommandsRegistered(t *testing.T) {
	assert.Equal(t, "migrate", migrateCmd().Name())
	assert.Equal(t, "sweep", sweepCmd().Name())
	assert.NotNil(t, sweepCmd().Flags().Lookup("older-than"))
	assert.Equal(t, "promote", promoteCmd().Name())
}
