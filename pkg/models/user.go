package models

import (
	"time"
)

// User is the locally materialized account for a Keycloak identity.
// Created lazily on first successful token verification; keycloak_id is
// immutable once set.
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	KeycloakID string    `json:"keycloak_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email      string    `json:"email" gorm:"type:varchar(255);uniqueIndex"`
	Username   string    `json:"username" gorm:"type:varchar(100);uniqueIndex"`
	FirstName  *string   `json:"first_name,omitempty" gorm:"type:varchar(100)"`
	LastName   *string   `json:"last_name,omitempty" gorm:"type:varchar(100)"`
	IsActive   bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	ParentProfile *Parent       `json:"parent_profile,omitempty" gorm:"foreignKey:UserID"`
	ChatMessages  []ChatMessage `json:"-" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// UserRequest — API input for user upsert
type UserRequest struct {
	KeycloakID string  `json:"keycloak_id"`
	Email      string  `json:"email"`
	Username   string  `json:"username"`
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
}
