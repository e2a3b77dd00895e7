package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce_backend/internal/checkout"
	"ecommerce_backend/internal/config"
	"ecommerce_backend/internal/db"
	"ecommerce_backend/internal/domain"
	"ecommerce_backend/internal/logging"
	"ecommerce_backend/internal/payment"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// openDB loads configuration and connects; the returned func flushes logs
func openDB() (*gorm.DB, func(), error) {
	cfg := config.LoadConfig()
	closeLogs := logging.Setup(cfg)
	gdb, err := db.Open(cfg)
	if err != nil {
		closeLogs()
		return nil, nil, err
	}
	return gdb, closeLogs, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, done, err := openDB()
			if err != nil {
				return err
			}
			defer done()
			if err := db.Migrate(gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Flag pending checkout intents older than --older-than as orphaned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, done, err := openDB()
			if err != nil {
				return err
			}
			defer done()
			// The sweep never calls the gateway
			svc := checkout.NewService(payment.Unavailable{}, checkout.NewGormRecorder(gdb), nil, nil)
			n, err := svc.SweepOrphans(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d intent(s) flagged as orphaned\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 15*time.Minute, "age after which a pending intent is orphaned")
	return cmd
}

func promoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, done, err := openDB()
			if err != nil {
				return err
			}
			defer done()
			return promote(gdb, args[0], cmd)
		},
	}
}

func promote(gdb *gorm.DB, email string, cmd *cobra.Command) error {
	email = strings.ToLower(strings.TrimSpace(email))
	res := gdb.WithContext(cmd.Context()).Model(&domain.User{}).Where("email = ?", email).Update("role", domain.RoleAdmin)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("no user with email " + email)
	}
	logrus.WithFields(logrus.Fields{"email": email}).Info("user promoted to admin")
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", email)
	return nil
}
