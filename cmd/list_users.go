package cmd

import (
	"fmt"

	"github.com/mergestat/timediff"
	"github.com/spf13/cobra"

	"github.com/flycloudone/flycloud/internal/config"
	"github.com/flycloudone/flycloud/internal/database"
)

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "List registered users",
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

		if len(users) == 0 {
			fmt.Println("No registered users.")
			return nil
		}

		for _, user := range users {
			verified := "no"
			if user.IsVerified {
				verified = "yes"
			}
			fmt.Printf("ID: %d\n", user.ID)
			fmt.Printf("Username: %s\n", user.Username)
			fmt.Printf("Email: %s\n", user.Email)
			fmt.Printf("Verified: %s\n", verified)
			fmt.Printf("Created: %s (%s)\n", user.CreatedAt.Format("2006-01-02 15:04:05"), timediff.TimeDiff(user.CreatedAt))
			fmt.Println("----------------------------------------")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listUsersCmd)
}
