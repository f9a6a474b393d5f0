package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flycloudone/flycloud/internal/api"
	"github.com/flycloudone/flycloud/internal/config"
	"github.com/flycloudone/flycloud/internal/database"
	"github.com/flycloudone/flycloud/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the FlyCloud server",
	Long:  `Start the FlyCloud server to handle logins and category file uploads.`,
	Example: `flycloud serve --config config.yml
flycloud serve -c /path/to/config.yml --log-level debug
`,
	Run: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	level := rootCmdPersistentFlags.LogLevel
	if level == "" {
		level = cfg.LogLevel
	}
	setLogLevel(level)

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	// The local tree always exists: listings, raw fetches and deletes
	// run against it in both modes.
	local, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to prepare upload directories: %v", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var backend storage.Backend = local
	if cfg.RemoteEnabled() {
		backend, err = storage.NewRemote(ctx, cfg.Storage, db)
		if err != nil {
			log.Fatalf("failed to initialize remote storage: %v", err)
		}
	}
	log.Info("storage backend selected", "backend", backend.Kind())

	server, err := api.New(cfg, db, local, backend, log.GetLevel() == log.DebugLevel)
	if err != nil {
		log.Fatalf("failed to create API server: %v", err)
	}

	// Start the API server in a goroutine
	go func() {
		log.Info("starting API server", "listen", cfg.Listen)
		if err := server.Run(); err != nil {
			log.Error("API server error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	log.Info("flycloud started successfully")
	<-c
	log.Info("shutting down gracefully...")

	// Give time for graceful shutdown
	cancel()
	time.Sleep(2 * time.Second)
}
