package handler

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/AndrewAllenDS/prayer-request-app/internal/export"
	"github.com/AndrewAllenDS/prayer-request-app/internal/metrics"
	"github.com/AndrewAllenDS/prayer-request-app/internal/model"
	"github.com/AndrewAllenDS/prayer-request-app/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog"
)

const (
	submitAck       = `<p>Thank you for your prayer. <a href="/">Submit another</a></p>`
	msgSaveFailed   = "Error saving your prayer."
	msgExportFailed = "Error generating PDF"
)

type PrayerHandler struct {
	prayers          *service.PrayerService
	strictFeedErrors bool // failed /events reads answer 500 instead of 200 []
	log              zerolog.Logger
}

func NewPrayerHandler(prayers *service.PrayerService, strictFeedErrors bool, log zerolog.Logger) *PrayerHandler {
	return &PrayerHandler{
		prayers:          prayers,
		strictFeedErrors: strictFeedErrors,
		log:              log.With().Str("component", "prayer-handler").Logger(),
	}
}

// Submit stores a form-encoded prayer request. (Public)
func (h *PrayerHandler) Submit(c *fiber.Ctx) error {
	// Form values alias the request buffer; copy before they outlive the handler.
	req := model.SubmitRequest{
		Name:    utils.CopyString(c.FormValue("name")),
		Request: utils.CopyString(c.FormValue("request")),
		Date:    utils.CopyString(c.FormValue("date")),
	}

	if _, err := h.prayers.Submit(c.Context(), req); err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).
				SendString(fmt.Sprintf("Your %s is too long (max %d characters).", vErr.Field, vErr.Max))
		}
		h.log.Error().Err(err).Msg("insert prayer")
		return c.Status(fiber.StatusInternalServerError).SendString(msgSaveFailed)
	}

	c.Type("html", "utf-8")
	return c.SendString(submitAck)
}

// Download renders every prayer into a PDF attachment. (Public)
func (h *PrayerHandler) Download(c *fiber.Ctx) error {
	var buf bytes.Buffer
	n, err := h.prayers.ExportPDF(c.Context(), &buf)
	if err != nil {
		h.log.Error().Err(err).Msg("export pdf")
		return c.Status(fiber.StatusInternalServerError).SendString(msgExportFailed)
	}

	c.Attachment(export.Filename)
	c.Set(fiber.HeaderContentType, export.ContentType)
	h.log.Debug().Int("entries", n).Int("bytes", buf.Len()).Msg("pdf exported")
	return c.Send(buf.Bytes())
}

// Events returns the calendar projection as JSON. (Public)
//
// A storage failure answers with an empty array; callers cannot tell it apart
// from an empty bulletin unless strict feed errors are enabled.
func (h *PrayerHandler) Events(c *fiber.Ctx) error {
	events, err := h.prayers.CalendarEvents(c.Context())
	if err != nil {
		metrics.FeedRequestsTotal.WithLabelValues("json", metrics.StatusError).Inc()
		h.log.Error().Err(err).Msg("fetch events")
		status := fiber.StatusOK
		if h.strictFeedErrors {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON([]model.CalendarEvent{})
	}
	metrics.FeedRequestsTotal.WithLabelValues("json", metrics.StatusOK).Inc()
	return c.JSON(events)
}
