package models

import (
	"time"
)

// Parent is a user's parenting profile. At most one per user; fields are all
// optional and merged on upsert.
type Parent struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	Age             *int      `json:"age,omitempty"`
	Location        *string   `json:"location,omitempty" gorm:"type:varchar(255)"`
	ParentingStyle  *string   `json:"parenting_style,omitempty" gorm:"type:varchar(100)"`
	Concerns        *string   `json:"concerns,omitempty" gorm:"type:text"`
	Goals           *string   `json:"goals,omitempty" gorm:"type:text"`
	ExperienceLevel *string   `json:"experience_level,omitempty" gorm:"type:varchar(50)"` // "new", "experienced", "veteran"
	FamilyStructure *string   `json:"family_structure,omitempty" gorm:"type:varchar(50)"` // "single", "married", "divorced", etc.
	PhotoURL        *string   `json:"photo_url,omitempty" gorm:"type:varchar(500)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Children []Child `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

func (Parent) TableName() string {
	return "parents"
}

// ParentRequest — API input for parent upsert. Only fields explicitly
// supplied (non-nil) are merged into an existing profile.
type ParentRequest struct {
	Age             *int    `json:"age,omitempty"`
	Location        *string `json:"location,omitempty"`
	ParentingStyle  *string `json:"parenting_style,omitempty"`
	Concerns        *string `json:"concerns,omitempty"`
	Goals           *string `json:"goals,omitempty"`
	ExperienceLevel *string `json:"experience_level,omitempty"`
	FamilyStructure *string `json:"family_structure,omitempty"`
	PhotoURL        *string `json:"photo_url,omitempty"`
}
