// internal/service/community.go
package service

import (
	"context"

	"parentic-api/pkg/models"

	"gorm.io/gorm"
)

// CreateCommunityMessage posts to the public feed. The display username is
// snapshotted from the posting user at creation time.
func (s *ParenticService) CreateCommunityMessage(ctx context.Context, user *models.User, content string) (*models.CommunityMessage, error) {
	message := models.CommunityMessage{
		UserID:   user.ID,
		Username: user.Username,
		Content:  content,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&message).Error
	})
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListCommunityMessages returns up to limit of the most recent posts, in
// chronological (oldest-first) order for display.
func (s *ParenticService) ListCommunityMessages(ctx context.Context, limit int) ([]models.CommunityMessage, error) {
	var messages []models.CommunityMessage
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
