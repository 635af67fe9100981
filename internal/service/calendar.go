package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/AndrewAllenDS/prayer-request-app/internal/metrics"
	"github.com/AndrewAllenDS/prayer-request-app/internal/repository"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	icsDateLayout = "2006-01-02"
	productID     = "-//prayerwall//Prayer Requests//EN"
)

// prayerNamespace seeds stable per-record UIDs so calendar clients can
// dedupe across refreshes.
var prayerNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:prayerwall:prayers"))

// CalendarService renders submissions as an iCalendar subscription feed.
type CalendarService struct {
	repo *repository.PrayerRepository
	name string
	now  func() time.Time
	log  zerolog.Logger
}

func NewCalendarService(repo *repository.PrayerRepository, name string, log zerolog.Logger) *CalendarService {
	return &CalendarService{
		repo: repo,
		name: name,
		now:  time.Now,
		log:  log.With().Str("component", "calendar").Logger(),
	}
}

// PrayerUID is the iCalendar UID of the submission with the given id.
func PrayerUID(id int64) string {
	return uuid.NewSHA1(prayerNamespace, []byte(strconv.FormatInt(id, 10))).String()
}

// WriteICS encodes every submission whose date parses as YYYY-MM-DD as an
// all-day event. Other dates are left out; the JSON feed still carries them.
func (s *CalendarService) WriteICS(ctx context.Context, w io.Writer) error {
	subs, err := s.repo.List(ctx)
	if err != nil {
		metrics.FeedRequestsTotal.WithLabelValues("ics", metrics.StatusError).Inc()
		return err
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText("X-WR-CALNAME", s.name)

	stamp := s.now().UTC()
	skipped := 0
	for _, sub := range subs {
		day, err := time.Parse(icsDateLayout, sub.Date)
		if err != nil {
			skipped++
			continue
		}
		ev := sub.ToEvent()

		ve := ical.NewComponent(ical.CompEvent)
		ve.Props.SetText(ical.PropUID, PrayerUID(sub.ID))
		ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetDate(day)
		ve.Props.Set(start)
		ve.Props.SetText(ical.PropSummary, ev.Title)
		if ev.Description != "" {
			ve.Props.SetText(ical.PropDescription, ev.Description)
		}
		cal.Children = append(cal.Children, ve)
	}
	if skipped > 0 {
		s.log.Debug().Int("skipped", skipped).Msg("prayers without a YYYY-MM-DD date left out of ics")
	}

	if len(cal.Children) == 0 {
		// The encoder wants at least one component, but subscribers still
		// expect a valid feed for an empty bulletin.
		_, err := io.WriteString(w, emptyCalendar(s.name))
		if err != nil {
			return fmt.Errorf("write calendar: %w", err)
		}
		metrics.FeedRequestsTotal.WithLabelValues("ics", metrics.StatusOK).Inc()
		return nil
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		metrics.FeedRequestsTotal.WithLabelValues("ics", metrics.StatusError).Inc()
		return fmt.Errorf("encode calendar: %w", err)
	}
	metrics.FeedRequestsTotal.WithLabelValues("ics", metrics.StatusOK).Inc()
	return nil
}

func emptyCalendar(name string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + productID,
		"X-WR-CALNAME:" + escapeText(name),
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

func escapeText(s string) string {
	return strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`).Replace(s)
}
