package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/AndrewAllenDS/prayer-request-app/internal/export"
	"github.com/AndrewAllenDS/prayer-request-app/internal/metrics"
	"github.com/AndrewAllenDS/prayer-request-app/internal/model"
	"github.com/AndrewAllenDS/prayer-request-app/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Limits bounds free-text fields. Zero leaves a field unbounded.
type Limits struct {
	MaxNameLength    int
	MaxRequestLength int
}

// ValidationError is returned when a submission exceeds a configured bound.
type ValidationError struct {
	Field string
	Max   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s exceeds %d characters", e.Field, e.Max)
}

// PrayerService owns the submission, export and calendar operations.
type PrayerService struct {
	repo     *repository.PrayerRepository
	renderer *export.Renderer
	hub      *WSHub
	webhooks *DiscordWebhookService
	validate *validator.Validate
	limits   Limits
	log      zerolog.Logger
}

func NewPrayerService(
	repo *repository.PrayerRepository,
	renderer *export.Renderer,
	hub *WSHub,
	webhooks *DiscordWebhookService,
	limits Limits,
	log zerolog.Logger,
) *PrayerService {
	return &PrayerService{
		repo:     repo,
		renderer: renderer,
		hub:      hub,
		webhooks: webhooks,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		limits:   limits,
		log:      log.With().Str("component", "prayers").Logger(),
	}
}

// NormalizeName substitutes the Anonymous sentinel for a blank name. Any
// other name is returned untouched, surrounding whitespace included.
func NormalizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return model.AnonymousName
	}
	return name
}

// Submit stores one prayer request. Request and date are not inspected
// beyond the optional length bounds.
func (s *PrayerService) Submit(ctx context.Context, req model.SubmitRequest) (*model.Submission, error) {
	if err := s.checkLength("name", req.Name, s.limits.MaxNameLength); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		return nil, err
	}
	if err := s.checkLength("request", req.Request, s.limits.MaxRequestLength); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		return nil, err
	}

	sub, err := s.repo.Insert(ctx, NormalizeName(req.Name), req.Request, req.Date)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, err
	}
	metrics.SubmissionsTotal.WithLabelValues(metrics.StatusOK).Inc()
	s.log.Info().Int64("prayer_id", sub.ID).Msg("prayer submitted")

	if data, err := json.Marshal(sub.ToEvent()); err == nil {
		s.hub.Broadcast(&model.WSEvent{Type: model.WSEventPrayerCreated, Data: data})
	}
	s.webhooks.SendPrayer(sub)

	return sub, nil
}

func (s *PrayerService) checkLength(field, value string, limit int) error {
	if limit <= 0 {
		return nil
	}
	if err := s.validate.Var(value, fmt.Sprintf("max=%d", limit)); err != nil {
		return &ValidationError{Field: field, Max: limit}
	}
	return nil
}

// CalendarEvents projects every stored submission, in storage order.
func (s *PrayerService) CalendarEvents(ctx context.Context) ([]model.CalendarEvent, error) {
	subs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]model.CalendarEvent, 0, len(subs))
	for _, sub := range subs {
		events = append(events, sub.ToEvent())
	}
	return events, nil
}

// ExportPDF renders every submission, ordered by date, to w. A storage
// failure is returned before anything is rendered.
func (s *PrayerService) ExportPDF(ctx context.Context, w io.Writer) (int, error) {
	start := time.Now()

	subs, err := s.repo.ListOrderedByDate(ctx)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues(metrics.StatusError).Inc()
		return 0, err
	}
	if err := s.renderer.Render(w, subs); err != nil {
		metrics.ExportsTotal.WithLabelValues(metrics.StatusError).Inc()
		return 0, err
	}

	metrics.ExportsTotal.WithLabelValues(metrics.StatusOK).Inc()
	metrics.ExportDuration.Observe(time.Since(start).Seconds())
	return len(subs), nil
}

// ExportPDFFile writes the export to path through a sibling temp file that
// is renamed into place, so path never holds a half-written document.
func (s *PrayerService) ExportPDFFile(ctx context.Context, path string) (int, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".prayer_requests-*.pdf")
	if err != nil {
		return 0, &export.StreamError{Err: err}
	}
	defer os.Remove(tmp.Name())

	n, err := s.ExportPDF(ctx, tmp)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, &export.StreamError{Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, &export.StreamError{Err: err}
	}
	return n, nil
}
