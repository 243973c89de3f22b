// internal/transport/http/handlers.go
package http

import (
	"context"
	"io"
	"strconv"
	"strings"

	"parentic-api/internal/ai"
	"parentic-api/internal/auth"
	"parentic-api/internal/middleware"
	"parentic-api/internal/service"
	"parentic-api/internal/vector"
	"parentic-api/pkg/models"

	"github.com/gofiber/fiber/v2"
)

// PhotoStore is the object-storage capability the handlers need for parent
// profile photos.
type PhotoStore interface {
	UploadProfilePhoto(ctx context.Context, file io.Reader, originalFileName, keycloakID string) (string, error)
	DeleteProfilePhoto(ctx context.Context, fileName string) error
}

type Handler struct {
	svc     *service.ParenticService
	ai      *ai.Client
	vectors *vector.Client
	photos  PhotoStore // nil when photo storage is not configured
}

func NewHandler(svc *service.ParenticService, aiClient *ai.Client, vectors *vector.Client, photos PhotoStore) *Handler {
	return &Handler{
		svc:     svc,
		ai:      aiClient,
		vectors: vectors,
		photos:  photos,
	}
}

// Status reports connectivity to every external collaborator.
func (h *Handler) Status(c *fiber.Ctx) error {
	aiStatus := "❌ Ollama Disconnected"
	if h.ai.TestConnection(c.Context()) {
		aiStatus = "✅ Ollama Connected"
	}
	vectorStatus := "❌ Chroma Disconnected"
	if h.vectors.TestConnection(c.Context()) {
		vectorStatus = "✅ Chroma Connected"
	}

	return c.JSON(fiber.Map{
		"backend":        "✅ Running",
		"database":       "✅ PostgreSQL Ready",
		"ai_model":       aiStatus,
		"vector_store":   vectorStatus,
		"authentication": "✅ Keycloak Ready",
	})
}

// ListModels is a passthrough of the inference server's model listing.
func (h *Handler) ListModels(c *fiber.Ctx) error {
	raw, err := h.ai.ListModels(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch models from Ollama",
		})
	}
	c.Set("Content-Type", "application/json")
	return c.Send(raw)
}

// currentUser returns the user materialized by the auth middleware.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(middleware.UserContextKey).(*models.User)
	return user
}

// callerKeycloakID resolves the acting identity. The keycloak_id query
// parameter is kept for frontend compatibility but must match the verified
// token subject; the subject is used when the parameter is absent.
func callerKeycloakID(c *fiber.Ctx) (string, bool) {
	claims, _ := c.Locals(middleware.ClaimsContextKey).(*auth.Claims)
	if claims == nil {
		return "", false
	}
	param := strings.TrimSpace(c.Query("keycloak_id"))
	if param == "" {
		return claims.Subject, true
	}
	if param != claims.Subject {
		return "", false
	}
	return param, true
}

// matchesCaller checks a path-supplied external id against the token subject.
func matchesCaller(c *fiber.Ctx, keycloakID string) bool {
	claims, _ := c.Locals(middleware.ClaimsContextKey).(*auth.Claims)
	return claims != nil && claims.Subject == keycloakID
}

func identityMismatch(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "keycloak_id does not match authenticated user",
	})
}

func getQueryInt(c *fiber.Ctx, key string, def, min, max int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return def
	}
	if n > max {
		return max
	}
	return n
}
