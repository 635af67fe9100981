package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AndrewAllenDS/prayer-request-app/internal/config"
	"github.com/AndrewAllenDS/prayer-request-app/internal/database"
	"github.com/AndrewAllenDS/prayer-request-app/internal/export"
	"github.com/AndrewAllenDS/prayer-request-app/internal/logger"
	"github.com/AndrewAllenDS/prayer-request-app/internal/repository"
	"github.com/AndrewAllenDS/prayer-request-app/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the prayerwall command tree. Running it without a
// subcommand starts the server.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "prayerwall",
		Short:         "Community prayer request bulletin",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewExportCommand())

	return cmd
}

// env is what every subcommand needs before doing real work.
type env struct {
	cfg *config.Config
	log zerolog.Logger
	db  *sql.DB
}

// setup loads config, builds the logger and opens the migrated store.
// Callers own env.db.
func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx, db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &env{cfg: cfg, log: log, db: db}, nil
}

func (e *env) prayerService(repo *repository.PrayerRepository, hub *service.WSHub, webhooks *service.DiscordWebhookService) *service.PrayerService {
	renderer := export.NewRenderer()
	renderer.FontPath = e.cfg.PDFFontPath

	return service.NewPrayerService(repo, renderer, hub, webhooks,
		service.Limits{
			MaxNameLength:    e.cfg.MaxNameLength,
			MaxRequestLength: e.cfg.MaxRequestLength,
		}, e.log)
}
