// internal/transport/http/chat.go
package http

import (
	"log"
	"strings"

	"parentic-api/pkg/models"

	"github.com/gofiber/fiber/v2"
)

// Chat handles POST /api/chat. Upstream AI failures never reach the caller
// as errors — the pipeline always answers 200 with text.
func (h *Handler) Chat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "message is required"})
	}

	user := currentUser(c)
	resp, err := h.svc.Chat(c.Context(), user, &req)
	if err != nil {
		log.Printf("❌ [CHAT] Pipeline failed for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to process chat message"})
	}
	return c.JSON(resp)
}

// ChatHistory handles GET /api/chat/history — the caller's recent turns,
// oldest first.
func (h *Handler) ChatHistory(c *fiber.Ctx) error {
	limit := getQueryInt(c, "limit", 50, 1, 200)
	user := currentUser(c)

	messages, err := h.svc.ChatHistory(c.Context(), user, limit)
	if err != nil {
		log.Printf("❌ [CHAT] Failed to fetch history for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch chat history"})
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// SearchChat handles GET /api/search/chat — semantic search over the
// caller's own conversation history.
func (h *Handler) SearchChat(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "query parameter 'q' is required"})
	}
	limit := getQueryInt(c, "limit", 10, 1, 50)

	results := h.svc.SearchChatHistory(c.Context(), currentUser(c), query, limit)
	return c.JSON(fiber.Map{"results": results})
}
