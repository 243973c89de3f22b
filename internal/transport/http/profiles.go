// internal/transport/http/profiles.go
package http

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"parentic-api/internal/profile"
	"parentic-api/pkg/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UpsertUser handles POST /api/users.
func (h *Handler) UpsertUser(c *fiber.Ctx) error {
	var req models.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.KeycloakID == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "keycloak_id is required"})
	}
	if !matchesCaller(c, req.KeycloakID) {
		return identityMismatch(c)
	}

	user, err := h.svc.UpsertUser(c.Context(), &req)
	if err != nil {
		log.Printf("❌ [USERS] Upsert failed for %s: %v", req.KeycloakID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upsert user"})
	}
	return c.JSON(user)
}

// GetUser handles GET /api/users/:keycloak_id.
func (h *Handler) GetUser(c *fiber.Ctx) error {
	keycloakID := c.Params("keycloak_id")
	if !matchesCaller(c, keycloakID) {
		return identityMismatch(c)
	}

	user, err := h.svc.GetUserByKeycloakID(c.Context(), keycloakID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch user"})
	}
	return c.JSON(user)
}

// UpsertParent handles POST /api/parents — create if absent, field-merge if
// present.
func (h *Handler) UpsertParent(c *fiber.Ctx) error {
	keycloakID, ok := callerKeycloakID(c)
	if !ok {
		return identityMismatch(c)
	}

	var req models.ParentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}

	parent, err := h.svc.UpsertParent(c.Context(), keycloakID, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		log.Printf("❌ [PARENTS] Upsert failed for %s: %v", keycloakID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upsert parent profile"})
	}
	return c.JSON(parent)
}

// GetParent handles GET /api/parents/:keycloak_id.
func (h *Handler) GetParent(c *fiber.Ctx) error {
	keycloakID := c.Params("keycloak_id")
	if !matchesCaller(c, keycloakID) {
		return identityMismatch(c)
	}

	parent, err := h.svc.GetParent(c.Context(), keycloakID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Parent profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch parent profile"})
	}
	return c.JSON(parent)
}

// UploadParentPhoto handles POST /api/parents/photo — multipart upload to
// object storage, public URL stored on the caller's parent profile.
func (h *Handler) UploadParentPhoto(c *fiber.Ctx) error {
	if h.photos == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "photo storage is not configured"})
	}

	keycloakID, ok := callerKeycloakID(c)
	if !ok {
		return identityMismatch(c)
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "photo file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "could not read uploaded file"})
	}
	defer file.Close()

	var previousURL string
	if existing, err := h.svc.GetParent(c.Context(), keycloakID); err == nil && existing.PhotoURL != nil {
		previousURL = *existing.PhotoURL
	}

	url, err := h.photos.UploadProfilePhoto(c.Context(), file, fileHeader.Filename, keycloakID)
	if err != nil {
		log.Printf("❌ [PHOTO] Upload failed for %s: %v", keycloakID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload photo"})
	}

	parent, err := h.svc.SetParentPhotoURL(c.Context(), keycloakID, url)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save photo URL"})
	}

	if previousURL != "" && previousURL != url {
		// Replaced photo is orphaned in storage; drop it in the background.
		go func() {
			if err := h.photos.DeleteProfilePhoto(context.Background(), previousURL); err != nil {
				log.Printf("⚠️ [PHOTO] Failed to delete replaced photo for %s: %v", keycloakID, err)
			}
		}()
	}
	return c.JSON(parent)
}

// CreateChild handles POST /api/children.
func (h *Handler) CreateChild(c *fiber.Ctx) error {
	keycloakID, ok := callerKeycloakID(c)
	if !ok {
		return identityMismatch(c)
	}

	var req models.ChildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if detail, ok := validateChildRequest(&req); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": detail})
	}

	child, err := h.svc.CreateChild(c.Context(), keycloakID, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Parent profile not found"})
		}
		log.Printf("❌ [CHILDREN] Create failed for %s: %v", keycloakID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create child"})
	}
	return c.Status(fiber.StatusCreated).JSON(child)
}

// ListChildren handles GET /api/children/:keycloak_id.
func (h *Handler) ListChildren(c *fiber.Ctx) error {
	keycloakID := c.Params("keycloak_id")
	if !matchesCaller(c, keycloakID) {
		return identityMismatch(c)
	}

	children, err := h.svc.ListChildren(c.Context(), keycloakID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Parent profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch children"})
	}
	return c.JSON(children)
}

// UpdateChild handles PUT /api/children/:child_id, scoped to the caller's
// own parent profile.
func (h *Handler) UpdateChild(c *fiber.Ctx) error {
	childID, err := parseChildID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid child id"})
	}
	keycloakID, ok := callerKeycloakID(c)
	if !ok {
		return identityMismatch(c)
	}

	var req models.ChildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if detail, ok := validateChildRequest(&req); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": detail})
	}

	child, err := h.svc.UpdateChild(c.Context(), keycloakID, childID, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Child not found"})
		}
		log.Printf("❌ [CHILDREN] Update failed for child %d: %v", childID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update child"})
	}
	return c.JSON(child)
}

// DeleteChild handles DELETE /api/children/:child_id. Deleting a child the
// caller does not own is not found, never a silent success.
func (h *Handler) DeleteChild(c *fiber.Ctx) error {
	childID, err := parseChildID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid child id"})
	}
	keycloakID, ok := callerKeycloakID(c)
	if !ok {
		return identityMismatch(c)
	}

	if err := h.svc.DeleteChild(c.Context(), keycloakID, childID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Child not found"})
		}
		log.Printf("❌ [CHILDREN] Delete failed for child %d: %v", childID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete child"})
	}
	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "child deleted",
	})
}

// SearchChildren handles GET /api/search/children — semantic search over
// the caller's own child profiles.
func (h *Handler) SearchChildren(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "query parameter 'q' is required"})
	}
	limit := getQueryInt(c, "limit", 5, 1, 50)

	keycloakID, ok := callerKeycloakID(c)
	if !ok {
		return identityMismatch(c)
	}

	results, err := h.svc.SearchChildren(c.Context(), keycloakID, query, limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Parent profile not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "search failed"})
	}
	return c.JSON(fiber.Map{"results": results})
}

// ChildOptions handles GET /api/child-options — the static dropdown
// vocabulary.
func (h *Handler) ChildOptions(c *fiber.Ctx) error {
	return c.JSON(profile.GetChildOptions())
}

func validateChildRequest(req *models.ChildRequest) (string, bool) {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required", false
	}
	if req.Age == nil {
		return "age is required", false
	}
	if strings.TrimSpace(req.Gender) == "" {
		return "gender is required", false
	}
	return "", true
}

func parseChildID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("child_id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
