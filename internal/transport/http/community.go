// internal/transport/http/community.go
package http

import (
	"log"
	"strings"

	"parentic-api/pkg/models"

	"github.com/gofiber/fiber/v2"
)

// CreateCommunityMessage handles POST /api/community/messages.
func (h *Handler) CreateCommunityMessage(c *fiber.Ctx) error {
	var req models.CommunityMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "content is required"})
	}

	user := currentUser(c)
	message, err := h.svc.CreateCommunityMessage(c.Context(), user, req.Content)
	if err != nil {
		log.Printf("❌ [COMMUNITY] Failed to create message for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create message"})
	}
	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetCommunityMessages handles GET /api/community/messages — up to limit of
// the most recent posts, oldest first.
func (h *Handler) GetCommunityMessages(c *fiber.Ctx) error {
	limit := getQueryInt(c, "limit", 50, 1, 200)

	messages, err := h.svc.ListCommunityMessages(c.Context(), limit)
	if err != nil {
		log.Printf("❌ [COMMUNITY] Failed to fetch messages: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch messages"})
	}
	return c.JSON(messages)
}
