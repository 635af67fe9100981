package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/AndrewAllenDS/prayer-request-app/internal/model"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Discord rejects embed descriptions longer than this.
const discordDescriptionLimit = 4096

// DiscordWebhookService announces new submissions in a Discord channel.
// An empty webhook URL disables it.
type DiscordWebhookService struct {
	webhookURL string
	client     *http.Client
	log        zerolog.Logger
	wg         sync.WaitGroup
}

func NewDiscordWebhookService(webhookURL string, log zerolog.Logger) *DiscordWebhookService {
	return &DiscordWebhookService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("component", "discord-webhook").Logger(),
	}
}

// SendPrayer posts s in the background. Failures are only logged.
func (s *DiscordWebhookService) SendPrayer(sub *model.Submission) {
	if s.webhookURL == "" {
		return
	}
	payload := prayerPayload(sub)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.post(ctx, payload); err != nil {
			s.log.Warn().Err(err).Int64("prayer_id", sub.ID).Msg("webhook delivery failed")
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (s *DiscordWebhookService) Wait() {
	s.wg.Wait()
}

func (s *DiscordWebhookService) post(ctx context.Context, payload *discordgo.WebhookParams) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return nil
}

func prayerPayload(sub *model.Submission) *discordgo.WebhookParams {
	description := sub.Request
	if r := []rune(description); len(r) > discordDescriptionLimit {
		description = string(r[:discordDescriptionLimit-1]) + "…"
	}
	date := sub.Date
	if date == "" {
		date = "-"
	}

	return &discordgo.WebhookParams{
		Username: "Prayer Wall",
		// Submitted text must never ping anyone.
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "New prayer request",
			Description: description,
			Color:       0x8E44AD,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "From", Value: sub.Name, Inline: true},
				{Name: "Date", Value: date, Inline: true},
			},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
}
