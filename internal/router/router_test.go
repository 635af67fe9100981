package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AndrewAllenDS/prayer-request-app/internal/config"
	"github.com/AndrewAllenDS/prayer-request-app/internal/database"
	"github.com/AndrewAllenDS/prayer-request-app/internal/export"
	"github.com/AndrewAllenDS/prayer-request-app/internal/model"
	"github.com/AndrewAllenDS/prayer-request-app/internal/repository"
	"github.com/AndrewAllenDS/prayer-request-app/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	app *fiber.App
	db  *sql.DB
	hub *service.WSHub
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	static := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<form>prayer form</form>"), 0o644))

	cfg := &config.Config{
		Env:          "test",
		DatabasePath: filepath.Join(dir, "prayers.db"),
		StaticDir:    static,
		CalendarName: "Prayer Requests",
	}
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.Open(ctx, cfg.DatabasePath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(ctx, db, zerolog.Nop()))

	log := zerolog.Nop()
	repo := repository.NewPrayerRepository(db)
	hub := service.NewWSHub(log)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	prayers := service.NewPrayerService(repo, export.NewRenderer(), hub,
		service.NewDiscordWebhookService("", log),
		service.Limits{MaxNameLength: cfg.MaxNameLength, MaxRequestLength: cfg.MaxRequestLength}, log)

	app := New(cfg, Deps{
		Repo:     repo,
		Prayers:  prayers,
		Calendar: service.NewCalendarService(repo, cfg.CalendarName, log),
		Hub:      hub,
		Log:      log,
	})
	return &testApp{app: app, db: db, hub: hub}
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := a.app.Test(req, 5000)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (a *testApp) submit(t *testing.T, form url.Values) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

func (a *testApp) events(t *testing.T) (*http.Response, []model.CalendarEvent) {
	t.Helper()
	resp, body := a.do(t, httptest.NewRequest(http.MethodGet, "/events", nil))
	var events []model.CalendarEvent
	require.NoError(t, json.Unmarshal([]byte(body), &events), body)
	return resp, events
}

func TestSubmit_Acknowledges(t *testing.T) {
	a := newTestApp(t, nil)

	resp, body := a.submit(t, url.Values{"name": {"Sam"}, "request": {"R"}, "date": {"2024-03-01"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Thank you for your prayer.")
	assert.Contains(t, body, `<a href="/">Submit another</a>`)
}

func TestSubmit_MissingFieldsAreEmpty(t *testing.T) {
	a := newTestApp(t, nil)

	resp, _ := a.submit(t, url.Values{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, events := a.events(t)
	require.Len(t, events, 1)
	assert.Equal(t, model.CalendarEvent{Title: "Prayer", Date: "", Description: ""}, events[0])
}

func TestEvents_Titles(t *testing.T) {
	a := newTestApp(t, nil)

	a.submit(t, url.Values{"name": {"  "}, "request": {"Pray for X"}, "date": {"2024-01-01"}})
	a.submit(t, url.Values{"name": {"Sam"}, "request": {"R"}, "date": {"2024-03-01"}})

	resp, events := a.events(t)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.ElementsMatch(t, []model.CalendarEvent{
		{Title: "Prayer", Date: "2024-01-01", Description: "Pray for X"},
		{Title: "Sam", Date: "2024-03-01", Description: "R"},
	}, events)
}

func TestEvents_EmptyIsArray(t *testing.T) {
	a := newTestApp(t, nil)

	_, body := a.do(t, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, "[]", body)
}

func TestDownload(t *testing.T) {
	a := newTestApp(t, nil)
	a.submit(t, url.Values{"name": {"Sam"}, "request": {"R"}, "date": {"2024-03-01"}})
	a.submit(t, url.Values{"name": {"Amy"}, "request": {"S"}, "date": {"2024-01-01"}})

	resp, body := a.do(t, httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="prayer_requests.pdf"`)
	assert.True(t, strings.HasPrefix(body, "%PDF-"))
}

func TestStorageFailures(t *testing.T) {
	a := newTestApp(t, nil)
	require.NoError(t, a.db.Close())

	resp, body := a.submit(t, url.Values{"name": {"Sam"}})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Error saving your prayer.", body)

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Error generating PDF", body)
	assert.Empty(t, resp.Header.Get("Content-Disposition"))

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", body)

	resp, _ = a.do(t, httptest.NewRequest(http.MethodGet, "/events.ics", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = a.do(t, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestEvents_StrictErrors(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.EventsStrictErrors = true })
	require.NoError(t, a.db.Close())

	resp, body := a.do(t, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "[]", body)
}

func TestSubmit_LengthLimit(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.MaxRequestLength = 10 })

	resp, body := a.submit(t, url.Values{"name": {"Sam"}, "request": {strings.Repeat("x", 11)}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "too long")

	_, events := a.events(t)
	assert.Empty(t, events)
}

func TestSubmit_RateLimit(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.SubmitRateLimit = 1 })

	resp, _ := a.submit(t, url.Values{"name": {"Sam"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = a.submit(t, url.Values{"name": {"Sam"}})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestEventsICS(t *testing.T) {
	a := newTestApp(t, nil)
	a.submit(t, url.Values{"name": {""}, "request": {"Healing"}, "date": {"2024-01-15"}})

	resp, body := a.do(t, httptest.NewRequest(http.MethodGet, "/events.ics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/calendar")
	assert.Contains(t, body, "SUMMARY:Prayer")
}

func TestHealthAndStatic(t *testing.T) {
	a := newTestApp(t, nil)

	resp, body := a.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ready","prayers_total":0}`, body)

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "prayer form")

	resp, _ = a.do(t, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestMetricsExposed(t *testing.T) {
	a := newTestApp(t, nil)
	a.submit(t, url.Values{"name": {"Sam"}})

	resp, body := a.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "prayerwall_submissions_total")
}
