// internal/service/parentic.go
package service

import (
	"context"

	"parentic-api/internal/vector"
	"parentic-api/pkg/models"

	"gorm.io/gorm"
)

// AIClient is the capability set the service needs from the inference bridge.
// Narrow on purpose so tests can swap in a fake without a running model server.
type AIClient interface {
	EnsureModelAvailable(ctx context.Context)
	Generate(ctx context.Context, prompt string) string
}

// VectorIndex is the capability set the service needs from the vector store.
// All methods are best-effort; implementations must not propagate errors.
type VectorIndex interface {
	UpsertChild(ctx context.Context, child *models.Child)
	StoreMessage(ctx context.Context, message *models.ChatMessage)
	DeleteChild(ctx context.Context, childID uint)
	DeleteUserHistory(ctx context.Context, userID uint)
	SearchChildren(ctx context.Context, query string, parentID uint, limit int) []vector.SearchResult
	SearchChat(ctx context.Context, query string, userID uint, limit int) []vector.SearchResult
}

// ParenticService owns the request-scoped business logic: profile CRUD,
// the chat pipeline and the community feed.
type ParenticService struct {
	db      *gorm.DB
	ai      AIClient
	vectors VectorIndex
}

func NewParenticService(db *gorm.DB, ai AIClient, vectors VectorIndex) *ParenticService {
	return &ParenticService{
		db:      db,
		ai:      ai,
		vectors: vectors,
	}
}

func (s *ParenticService) GetDB() *gorm.DB {
	return s.db
}
