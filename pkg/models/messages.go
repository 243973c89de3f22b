package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChatMessage is one turn in a conversation, user or AI. Immutable after
// creation — there is no update path.
type ChatMessage struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"index;not null"`
	Content      string         `json:"content" gorm:"type:text;not null"`
	IsAIResponse bool           `json:"is_ai_response" gorm:"not null;default:false"`
	ContextData  datatypes.JSON `json:"context_data,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// CommunityMessage is a public forum post. The username is a denormalized
// snapshot taken at post time, never re-derived.
type CommunityMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Username  string    `json:"username" gorm:"type:varchar(100);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommunityMessage) TableName() string {
	return "community_messages"
}

// ChatRequest — API input for POST /api/chat
type ChatRequest struct {
	Message      string   `json:"message"`
	ChildContext []string `json:"child_context,omitempty"`
}

// ChatResponse — API output for POST /api/chat
type ChatResponse struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// CommunityMessageRequest — API input for POST /api/community/messages
type CommunityMessageRequest struct {
	Content string `json:"content"`
}
