// internal/service/parents.go
package service

import (
	"context"

	"parentic-api/pkg/models"

	"gorm.io/gorm"
)

// UpsertParent creates the caller's parent profile if absent, or field-merges
// the supplied values into the existing one. Only non-nil request fields are
// applied — the rest of the record is preserved.
func (s *ParenticService) UpsertParent(ctx context.Context, keycloakID string, req *models.ParentRequest) (*models.Parent, error) {
	user, err := s.GetUserByKeycloakID(ctx, keycloakID)
	if err != nil {
		return nil, err
	}

	var parent models.Parent
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", user.ID).First(&parent).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				parent = models.Parent{UserID: user.ID}
				mergeParentFields(&parent, req)
				return tx.Create(&parent).Error
			}
			return err
		}
		mergeParentFields(&parent, req)
		return tx.Save(&parent).Error
	})
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

func mergeParentFields(parent *models.Parent, req *models.ParentRequest) {
	if req.Age != nil {
		parent.Age = req.Age
	}
	if req.Location != nil {
		parent.Location = req.Location
	}
	if req.ParentingStyle != nil {
		parent.ParentingStyle = req.ParentingStyle
	}
	if req.Concerns != nil {
		parent.Concerns = req.Concerns
	}
	if req.Goals != nil {
		parent.Goals = req.Goals
	}
	if req.ExperienceLevel != nil {
		parent.ExperienceLevel = req.ExperienceLevel
	}
	if req.FamilyStructure != nil {
		parent.FamilyStructure = req.FamilyStructure
	}
	if req.PhotoURL != nil {
		parent.PhotoURL = req.PhotoURL
	}
}

func (s *ParenticService) GetParent(ctx context.Context, keycloakID string) (*models.Parent, error) {
	user, err := s.GetUserByKeycloakID(ctx, keycloakID)
	if err != nil {
		return nil, err
	}
	return s.getParentByUserID(ctx, user.ID)
}

func (s *ParenticService) getParentByUserID(ctx context.Context, userID uint) (*models.Parent, error) {
	var parent models.Parent
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&parent).Error
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

// SetParentPhotoURL stores the public URL of an uploaded profile photo.
func (s *ParenticService) SetParentPhotoURL(ctx context.Context, keycloakID, url string) (*models.Parent, error) {
	return s.UpsertParent(ctx, keycloakID, &models.ParentRequest{PhotoURL: &url})
}
