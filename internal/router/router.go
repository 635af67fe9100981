package router

import (
	"errors"
	"time"

	"github.com/AndrewAllenDS/prayer-request-app/internal/config"
	"github.com/AndrewAllenDS/prayer-request-app/internal/handler"
	"github.com/AndrewAllenDS/prayer-request-app/internal/metrics"
	"github.com/AndrewAllenDS/prayer-request-app/internal/middleware"
	"github.com/AndrewAllenDS/prayer-request-app/internal/repository"
	"github.com/AndrewAllenDS/prayer-request-app/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
)

// Deps are the long-lived objects the routes are bound to.
type Deps struct {
	Repo     *repository.PrayerRepository
	Prayers  *service.PrayerService
	Calendar *service.CalendarService
	Hub      *service.WSHub
	Log      zerolog.Logger
}

// New builds the Fiber app with every route bound.
func New(cfg *config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           30 * time.Second,
		BodyLimit:             1 * 1024 * 1024, // 1MB
		DisableStartupMessage: true,
		ErrorHandler:          plainErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.Logger(deps.Log, middleware.DefaultLoggerConfig))

	// Health
	healthH := handler.NewHealthHandler(deps.Repo)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)
	app.Get("/metrics", metrics.Handler())

	// Prayers
	prayerH := handler.NewPrayerHandler(deps.Prayers, cfg.EventsStrictErrors, deps.Log)
	app.Post("/submit", middleware.RateLimit(cfg.SubmitRateLimit, time.Minute), prayerH.Submit)
	app.Get("/download", prayerH.Download)
	app.Get("/events", prayerH.Events)

	calendarH := handler.NewCalendarHandler(deps.Calendar, deps.Log)
	app.Get("/events.ics", calendarH.ICS)

	// WebSocket
	wsH := handler.NewWSHandler(deps.Hub, deps.Log)
	app.Get("/ws", wsH.Upgrade)

	// Form and calendar pages
	app.Static("/", cfg.StaticDir)

	return app
}

// plainErrorHandler keeps unhandled errors short and free of internals.
func plainErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).SendString(msg)
}
