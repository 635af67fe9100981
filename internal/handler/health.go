package handler

import (
	"context"
	"time"

	"github.com/AndrewAllenDS/prayer-request-app/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	repo *repository.PrayerRepository
}

func NewHealthHandler(repo *repository.PrayerRepository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		return c.Status(503).JSON(fiber.Map{"status": "not ready", "error": "database unreachable"})
	}
	total, err := h.repo.Count(ctx)
	if err != nil {
		return c.Status(503).JSON(fiber.Map{"status": "not ready", "error": "prayers table unreadable"})
	}

	return c.JSON(fiber.Map{"status": "ready", "prayers_total": total})
}
