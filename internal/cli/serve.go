package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndrewAllenDS/prayer-request-app/internal/repository"
	"github.com/AndrewAllenDS/prayer-request-app/internal/router"
	"github.com/AndrewAllenDS/prayer-request-app/internal/service"

	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.db.Close()
	log := e.log

	// Repositories
	prayerRepo := repository.NewPrayerRepository(e.db)

	// Services
	wsHub := service.NewWSHub(log)
	webhooks := service.NewDiscordWebhookService(e.cfg.DiscordWebhookURL, log)
	prayerSvc := e.prayerService(prayerRepo, wsHub, webhooks)
	calendarSvc := service.NewCalendarService(prayerRepo, e.cfg.CalendarName, log)

	app := router.New(e.cfg, router.Deps{
		Repo:     prayerRepo,
		Prayers:  prayerSvc,
		Calendar: calendarSvc,
		Hub:      wsHub,
		Log:      log,
	})

	go wsHub.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + e.cfg.Port)
	}()

	log.Info().Str("port", e.cfg.Port).Str("env", e.cfg.Env).Msg("prayer wall running")

	select {
	case err := <-errCh:
		wsHub.Shutdown()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
	wsHub.Shutdown()
	webhooks.Wait()
	log.Info().Msg("server stopped")
	return nil
}
