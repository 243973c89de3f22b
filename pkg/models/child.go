package models

import (
	"time"

	"gorm.io/datatypes"
)

// Child is one child profile owned by a parent. Name, age and gender are
// required at creation; tag lists default to empty, never null.
type Child struct {
	ID                 uint                         `json:"id" gorm:"primaryKey"`
	ParentID           uint                         `json:"parent_id" gorm:"index;not null"`
	Name               string                       `json:"name" gorm:"type:varchar(100);not null"`
	Age                int                          `json:"age" gorm:"not null"`
	Gender             string                       `json:"gender" gorm:"type:varchar(30);not null"`
	Hobbies            datatypes.JSONSlice[string]  `json:"hobbies"`
	Interests          datatypes.JSONSlice[string]  `json:"interests"`
	PersonalityTraits  datatypes.JSONSlice[string]  `json:"personality_traits"`
	Studies            datatypes.JSONSlice[string]  `json:"studies"`
	FavoriteActivities datatypes.JSONSlice[string]  `json:"favorite_activities"`
	SpecialNeeds       *string                      `json:"special_needs,omitempty" gorm:"type:text"`
	SchoolGrade        *string                      `json:"school_grade,omitempty" gorm:"type:varchar(50)"`
	Ethnicity          *string                      `json:"ethnicity,omitempty" gorm:"type:varchar(100)"`
	HeightCm           *float64                     `json:"height_cm,omitempty"`
	WeightKg           *float64                     `json:"weight_kg,omitempty"`
	Challenges         *string                      `json:"challenges,omitempty" gorm:"type:text"`
	Achievements       *string                      `json:"achievements,omitempty" gorm:"type:text"`
	CreatedAt          time.Time                    `json:"created_at"`
	UpdatedAt          time.Time                    `json:"updated_at"`
}

func (Child) TableName() string {
	return "children"
}

// ChildRequest — API input for child create/update.
type ChildRequest struct {
	Name               string   `json:"name"`
	Age                *int     `json:"age"`
	Gender             string   `json:"gender"`
	Hobbies            []string `json:"hobbies"`
	Interests          []string `json:"interests"`
	PersonalityTraits  []string `json:"personality_traits"`
	Studies            []string `json:"studies"`
	FavoriteActivities []string `json:"favorite_activities"`
	SpecialNeeds       *string  `json:"special_needs,omitempty"`
	SchoolGrade        *string  `json:"school_grade,omitempty"`
	Ethnicity          *string  `json:"ethnicity,omitempty"`
	HeightCm           *float64 `json:"height_cm,omitempty"`
	WeightKg           *float64 `json:"weight_kg,omitempty"`
	Challenges         *string  `json:"challenges,omitempty"`
	Achievements       *string  `json:"achievements,omitempty"`
}
