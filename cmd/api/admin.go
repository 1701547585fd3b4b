package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/georgemunganga/accessories-admin/internal/modules/user"
	"github.com/georgemunganga/accessories-admin/internal/platform/docstore"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	adminEmail     string
	adminPassword  string
	adminFirstName string
	adminLastName  string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Register an admin account that can sign in to the dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateStore(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		ctx := cmd.Context()
		store, closer, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closer.Close()

		u, err := user.NewService(user.NewStoreRepository(store)).
			RegisterUser(ctx, adminEmail, adminPassword, adminFirstName, adminLastName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password, for auth.admin_password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hashed, err := user.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hashed)
		return nil
	},
}

// ensureBootstrapAdmin creates the configured admin account on first start.
// auth.admin_password may be plain text or a bcrypt hash.
func ensureBootstrapAdmin(ctx context.Context, svc user.Service, repo user.Repository) error {
	email, password := cfg.Auth.AdminEmail, cfg.Auth.AdminPassword
	if email == "" || password == "" {
		return nil
	}

	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, docstore.ErrNotFound):
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	if strings.HasPrefix(password, "$2") {
		u := &user.User{
			ID:           uuid.NewString(),
			Email:        strings.ToLower(strings.TrimSpace(email)),
			PasswordHash: password,
		}
		if err := repo.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create bootstrap admin: %w", err)
		}
	} else if _, err := svc.RegisterUser(ctx, email, password, "", ""); err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
