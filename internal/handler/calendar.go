package handler

import (
	"bytes"

	"github.com/AndrewAllenDS/prayer-request-app/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type CalendarHandler struct {
	calendar *service.CalendarService
	log      zerolog.Logger
}

func NewCalendarHandler(calendar *service.CalendarService, log zerolog.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendar: calendar,
		log:      log.With().Str("component", "calendar-handler").Logger(),
	}
}

// ICS serves the iCalendar subscription feed. (Public)
func (h *CalendarHandler) ICS(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.calendar.WriteICS(c.Context(), &buf); err != nil {
		h.log.Error().Err(err).Msg("render ics feed")
		return c.Status(fiber.StatusInternalServerError).SendString("Error generating calendar")
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="prayer_requests.ics"`)
	return c.Send(buf.Bytes())
}
