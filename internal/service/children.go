// internal/service/children.go
package service

import (
	"context"
	"log"

	"parentic-api/internal/vector"
	"parentic-api/pkg/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateChild adds a child under the caller's parent profile and mirrors it
// into the vector index in the background.
func (s *ParenticService) CreateChild(ctx context.Context, keycloakID string, req *models.ChildRequest) (*models.Child, error) {
	parent, err := s.GetParent(ctx, keycloakID)
	if err != nil {
		return nil, err
	}

	child := models.Child{
		ParentID: parent.ID,
	}
	applyChildFields(&child, req)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&child).Error
	})
	if err != nil {
		return nil, err
	}

	s.indexChild(&child)
	return &child, nil
}

// ListChildren returns the caller's children, oldest profile first.
func (s *ParenticService) ListChildren(ctx context.Context, keycloakID string) ([]models.Child, error) {
	parent, err := s.GetParent(ctx, keycloakID)
	if err != nil {
		return nil, err
	}

	var children []models.Child
	err = s.db.WithContext(ctx).
		Where("parent_id = ?", parent.ID).
		Order("created_at ASC").
		Find(&children).Error
	return children, err
}

// UpdateChild replaces a child's profile fields. The child must belong to the
// caller's own parent profile — anything else is not found, never a silent
// success.
func (s *ParenticService) UpdateChild(ctx context.Context, keycloakID string, childID uint, req *models.ChildRequest) (*models.Child, error) {
	parent, err := s.GetParent(ctx, keycloakID)
	if err != nil {
		return nil, err
	}

	var child models.Child
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND parent_id = ?", childID, parent.ID).First(&child).Error; err != nil {
			return err
		}
		applyChildFields(&child, req)
		return tx.Save(&child).Error
	})
	if err != nil {
		return nil, err
	}

	s.indexChild(&child)
	return &child, nil
}

// DeleteChild removes a child owned by the caller and drops its index entry.
func (s *ParenticService) DeleteChild(ctx context.Context, keycloakID string, childID uint) error {
	parent, err := s.GetParent(ctx, keycloakID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var child models.Child
		if err := tx.Where("id = ? AND parent_id = ?", childID, parent.ID).First(&child).Error; err != nil {
			return err
		}
		return tx.Delete(&child).Error
	})
	if err != nil {
		return err
	}

	if s.vectors != nil {
		go func() {
			// Detached context: the index is advisory and may lag the commit.
			s.vectors.DeleteChild(context.Background(), childID)
		}()
	}
	return nil
}

// SearchChildren runs a semantic query over the caller's child profiles.
func (s *ParenticService) SearchChildren(ctx context.Context, keycloakID, query string, limit int) ([]vector.SearchResult, error) {
	parent, err := s.GetParent(ctx, keycloakID)
	if err != nil {
		return nil, err
	}
	if s.vectors == nil {
		return nil, nil
	}
	return s.vectors.SearchChildren(ctx, query, parent.ID, limit), nil
}

func (s *ParenticService) indexChild(child *models.Child) {
	if s.vectors == nil {
		return
	}
	snapshot := *child
	go func() {
		s.vectors.UpsertChild(context.Background(), &snapshot)
	}()
	log.Printf("🔄 [CHILDREN] Queued vector index update for child %d", child.ID)
}

func applyChildFields(child *models.Child, req *models.ChildRequest) {
	child.Name = req.Name
	if req.Age != nil {
		child.Age = *req.Age
	}
	child.Gender = req.Gender
	child.Hobbies = emptyIfNil(req.Hobbies)
	child.Interests = emptyIfNil(req.Interests)
	child.PersonalityTraits = emptyIfNil(req.PersonalityTraits)
	child.Studies = emptyIfNil(req.Studies)
	child.FavoriteActivities = emptyIfNil(req.FavoriteActivities)
	child.SpecialNeeds = req.SpecialNeeds
	child.SchoolGrade = req.SchoolGrade
	child.Ethnicity = req.Ethnicity
	child.HeightCm = req.HeightCm
	child.WeightKg = req.WeightKg
	child.Challenges = req.Challenges
	child.Achievements = req.Achievements
}

// Tag lists default to empty, never null.
func emptyIfNil(values []string) datatypes.JSONSlice[string] {
	if values == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](values)
}
