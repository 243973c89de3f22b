package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"parentic-api/internal/auth"
	"parentic-api/internal/middleware"
	"parentic-api/internal/service"
	"parentic-api/pkg/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSubject = "kc-1"

// stubPhotoStore records uploads and deletes; deletes happen on a background
// goroutine, so reads go through the mutex.
type stubPhotoStore struct {
	mu       sync.Mutex
	url      string
	uploaded []string
	deleted  []string
}

func (s *stubPhotoStore) UploadProfilePhoto(ctx context.Context, file io.Reader, originalFileName, keycloakID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded = append(s.uploaded, originalFileName)
	return s.url, nil
}

func (s *stubPhotoStore) DeleteProfilePhoto(ctx context.Context, fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, fileName)
	return nil
}

func (s *stubPhotoStore) deletedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// newPhotoTestApp wires the upload route behind a middleware stand-in that
// injects a verified identity, the way the auth middleware does.
func newPhotoTestApp(t *testing.T, photos PhotoStore) (*fiber.App, *service.ParenticService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Parent{},
		&models.Child{},
		&models.ChatMessage{},
		&models.CommunityMessage{},
	))
	svc := service.NewParenticService(db, nil, nil)

	handler := NewHandler(svc, nil, nil, photos)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user, err := svc.GetUserByKeycloakID(c.Context(), testSubject); err == nil {
			c.Locals(middleware.UserContextKey, user)
		}
		c.Locals(middleware.ClaimsContextKey, &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: testSubject},
		})
		return c.Next()
	})
	app.Post("/api/parents/photo", handler.UploadParentPhoto)
	return app, svc
}

func seedPhotoUser(t *testing.T, svc *service.ParenticService) {
	t.Helper()
	_, err := svc.UpsertUser(context.Background(), &models.UserRequest{
		KeycloakID: testSubject,
		Email:      testSubject + "@example.com",
		Username:   "user-" + testSubject,
	})
	require.NoError(t, err)
}

func photoUploadRequest(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("photo", "avatar.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestUploadParentPhotoDeletesReplacedPhoto(t *testing.T) {
	photos := &stubPhotoStore{url: "https://cdn.example.com/profile_photos/new.png"}
	app, svc := newPhotoTestApp(t, photos)
	seedPhotoUser(t, svc)

	_, err := svc.SetParentPhotoURL(context.Background(), testSubject, "https://cdn.example.com/profile_photos/old.png")
	require.NoError(t, err)

	body, contentType := photoUploadRequest(t)
	req := httptest.NewRequest(fiber.MethodPost, "/api/parents/photo", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parent models.Parent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parent))
	require.NotNil(t, parent.PhotoURL)
	assert.Equal(t, photos.url, *parent.PhotoURL)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(photos.deletedFiles()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, []string{"https://cdn.example.com/profile_photos/old.png"}, photos.deletedFiles())
}

func TestUploadParentPhotoFirstUploadDeletesNothing(t *testing.T) {
	photos := &stubPhotoStore{url: "https://cdn.example.com/profile_photos/new.png"}
	app, svc := newPhotoTestApp(t, photos)
	seedPhotoUser(t, svc)

	body, contentType := photoUploadRequest(t)
	req := httptest.NewRequest(fiber.MethodPost, "/api/parents/photo", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// No previous photo, so no delete goroutine is spawned.
	assert.Empty(t, photos.deletedFiles())

	parent, err := svc.GetParent(context.Background(), testSubject)
	require.NoError(t, err)
	require.NotNil(t, parent.PhotoURL)
	assert.Equal(t, photos.url, *parent.PhotoURL)
}

func TestUploadParentPhotoUnavailableWhenUnconfigured(t *testing.T) {
	app, svc := newPhotoTestApp(t, nil)
	seedPhotoUser(t, svc)

	body, contentType := photoUploadRequest(t)
	req := httptest.NewRequest(fiber.MethodPost, "/api/parents/photo", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestUploadParentPhotoRequiresFile(t *testing.T) {
	photos := &stubPhotoStore{url: "https://cdn.example.com/profile_photos/new.png"}
	app, svc := newPhotoTestApp(t, photos)
	seedPhotoUser(t, svc)

	req := httptest.NewRequest(fiber.MethodPost, "/api/parents/photo", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
