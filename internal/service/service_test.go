package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"parentic-api/internal/vector"
	"parentic-api/pkg/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// stubAI answers every prompt with a canned string and records what it was
// asked, so tests can assert on the assembled prompt.
type stubAI struct {
	mu      sync.Mutex
	answer  string
	prompts []string
}

func (s *stubAI) EnsureModelAvailable(ctx context.Context) {}

func (s *stubAI) Generate(ctx context.Context, prompt string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.answer
}

func (s *stubAI) lastPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.prompts) == 0 {
		return ""
	}
	return s.prompts[len(s.prompts)-1]
}

// stubVector records index operations. Writes happen on background goroutines,
// so assertions go through waitFor.
type stubVector struct {
	mu               sync.Mutex
	upsertedChildren []uint
	deletedChildren  []uint
	deletedUsers     []uint
	storedMessages   []models.ChatMessage
	childResults     []vector.SearchResult
	chatResults      []vector.SearchResult
}

func (s *stubVector) UpsertChild(ctx context.Context, child *models.Child) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertedChildren = append(s.upsertedChildren, child.ID)
}

func (s *stubVector) StoreMessage(ctx context.Context, message *models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storedMessages = append(s.storedMessages, *message)
}

func (s *stubVector) DeleteChild(ctx context.Context, childID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedChildren = append(s.deletedChildren, childID)
}

func (s *stubVector) DeleteUserHistory(ctx context.Context, userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedUsers = append(s.deletedUsers, userID)
}

func (s *stubVector) SearchChildren(ctx context.Context, query string, parentID uint, limit int) []vector.SearchResult {
	return s.childResults
}

func (s *stubVector) SearchChat(ctx context.Context, query string, userID uint, limit int) []vector.SearchResult {
	return s.chatResults
}

func (s *stubVector) storedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.storedMessages)
}

func (s *stubVector) hasUpsertedChild(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, got := range s.upsertedChildren {
		if got == id {
			return true
		}
	}
	return false
}

func (s *stubVector) hasDeletedChild(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, got := range s.deletedChildren {
		if got == id {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for: %s", msg)
}

func newTestService(t *testing.T) (*ParenticService, *stubAI, *stubVector) {
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

	aiStub := &stubAI{answer: "Here is some gentle advice."}
	vectorStub := &stubVector{}
	return NewParenticService(db, aiStub, vectorStub), aiStub, vectorStub
}

func createTestUser(t *testing.T, svc *ParenticService, keycloakID string) *models.User {
	t.Helper()
	user, err := svc.UpsertUser(context.Background(), &models.UserRequest{
		KeycloakID: keycloakID,
		Email:      keycloakID + "@example.com",
		Username:   "user-" + keycloakID,
	})
	require.NoError(t, err)
	return user
}

func createTestParent(t *testing.T, svc *ParenticService, keycloakID string) *models.Parent {
	t.Helper()
	createTestUser(t, svc, keycloakID)
	age := 35
	parent, err := svc.UpsertParent(context.Background(), keycloakID, &models.ParentRequest{Age: &age})
	require.NoError(t, err)
	return parent
}
