// internal/service/chat.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"parentic-api/internal/ai"
	"parentic-api/internal/vector"
	"parentic-api/pkg/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chat runs the full pipeline for one question: assemble family context,
// build the prompt, call the model, persist both turns, and mirror them into
// the vector index. Upstream AI failures never surface as errors — the
// bridge returns a user-safe fallback and the exchange is still recorded.
func (s *ParenticService) Chat(ctx context.Context, user *models.User, req *models.ChatRequest) (*models.ChatResponse, error) {
	parent, children := s.loadFamily(ctx, user.ID)

	contextBlock := ai.BuildContext(parent, children)
	if strings.TrimSpace(contextBlock) == "" && len(req.ChildContext) > 0 {
		// No stored profile — fall back to the caller-supplied context tags.
		contextBlock = "Child context: " + strings.Join(req.ChildContext, ", ")
	}
	prompt := ai.BuildPrompt(contextBlock, req.Message)

	s.ai.EnsureModelAvailable(ctx)
	answer := s.ai.Generate(ctx, prompt)

	userMsg := models.ChatMessage{
		UserID:      user.ID,
		Content:     req.Message,
		ContextData: chatContextSnapshot(req, parent, children),
	}
	aiMsg := models.ChatMessage{
		UserID:       user.ID,
		Content:      answer,
		IsAIResponse: true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&userMsg).Error; err != nil {
			return err
		}
		return tx.Create(&aiMsg).Error
	})
	if err != nil {
		// The user already has an answer; losing the history row is not a
		// reason to fail the exchange.
		log.Printf("⚠️ [CHAT] Failed to persist chat messages for user %d: %v", user.ID, err)
	} else if s.vectors != nil {
		go func() {
			bg := context.Background()
			s.vectors.StoreMessage(bg, &userMsg)
			s.vectors.StoreMessage(bg, &aiMsg)
		}()
	}

	return &models.ChatResponse{
		Response:  answer,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// ChatHistory returns the caller's most recent messages in chronological
// (oldest-first) order.
func (s *ParenticService) ChatHistory(ctx context.Context, user *models.User, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	reverseMessages(messages)
	return messages, nil
}

// SearchChatHistory runs a semantic query over the caller's own messages.
func (s *ParenticService) SearchChatHistory(ctx context.Context, user *models.User, query string, limit int) []vector.SearchResult {
	if s.vectors == nil {
		return nil
	}
	return s.vectors.SearchChat(ctx, query, user.ID, limit)
}

func (s *ParenticService) loadFamily(ctx context.Context, userID uint) (*models.Parent, []models.Child) {
	parent, err := s.getParentByUserID(ctx, userID)
	if err != nil {
		return nil, nil // no profile yet is a normal state
	}

	var children []models.Child
	if err := s.db.WithContext(ctx).Where("parent_id = ?", parent.ID).Order("created_at ASC").Find(&children).Error; err != nil {
		log.Printf("⚠️ [CHAT] Failed to load children for parent %d: %v", parent.ID, err)
	}
	return parent, children
}

func chatContextSnapshot(req *models.ChatRequest, parent *models.Parent, children []models.Child) datatypes.JSON {
	snapshot := map[string]any{}
	if parent != nil {
		snapshot["has_parent_profile"] = true
		snapshot["children_count"] = len(children)
	}
	if len(req.ChildContext) > 0 {
		snapshot["child_context"] = req.ChildContext
	}
	if len(snapshot) == 0 {
		return nil
	}
	b, err := json.Marshal(snapshot)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func reverseMessages(messages []models.ChatMessage) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
