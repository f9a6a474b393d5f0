package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/flycloudone/flycloud/internal/api/auth"
	"github.com/flycloudone/flycloud/internal/config"
	"github.com/flycloudone/flycloud/internal/database"
)

var seedAdminFlags struct {
	Username string
	Email    string
	Password string
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the initial admin account",
	Long:  `Create the initial admin account if it does not exist yet. Change the password after the first login.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := database.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close() //nolint:errcheck

		ctx := cmd.Context()
		if _, err := db.GetUserByEmail(ctx, seedAdminFlags.Email); err == nil {
			log.Warn("admin already exists, nothing to do", "email", seedAdminFlags.Email)
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for existing admin: %w", err)
		}

		hash, err := auth.HashPassword(seedAdminFlags.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := &database.User{
			Username:     seedAdminFlags.Username,
			Email:        seedAdminFlags.Email,
			PasswordHash: hash,
			IsVerified:   true,
		}
		if err := db.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}

		log.Info("admin account created", "username", user.Username, "email", user.Email)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&seedAdminFlags.Username, "username", "admin", "Username of the admin account")
	seedAdminCmd.Flags().StringVar(&seedAdminFlags.Email, "email", "admin@flycloudone.com", "Email of the admin account")
	seedAdminCmd.Flags().StringVar(&seedAdminFlags.Password, "password", "", "Password of the admin account (required)")
	_ = seedAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(seedAdminCmd)
}
