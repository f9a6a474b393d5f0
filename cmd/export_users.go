package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flycloudone/flycloud/internal/config"
	"github.com/flycloudone/flycloud/internal/database"
)

var exportUsersFlags struct {
	Output string
}

var exportUsersCmd = &cobra.Command{
	Use:   "export-users",
	Short: "Export registered users to a text file",
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

		users, err := db.ListUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		var b strings.Builder
		b.WriteString("Registered users\n\n")
		for _, user := range users {
			fmt.Fprintf(&b, "ID: %d\n", user.ID)
			fmt.Fprintf(&b, "Username: %s\n", user.Username)
			fmt.Fprintf(&b, "Email: %s\n", user.Email)
			fmt.Fprintf(&b, "Created: %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
			b.WriteString(strings.Repeat("-", 40) + "\n")
		}

		if err := os.WriteFile(exportUsersFlags.Output, []byte(b.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write export file: %w", err)
		}

		log.Info("users exported", "file", exportUsersFlags.Output, "count", len(users))
		return nil
	},
}

func init() {
	exportUsersCmd.Flags().StringVarP(&exportUsersFlags.Output, "output", "o", "users_export.txt", "Path of the export file")
	rootCmd.AddCommand(exportUsersCmd)
}
