// internal/service/users.go
package service

import (
	"context"

	"parentic-api/internal/auth"
	"parentic-api/pkg/models"

	"gorm.io/gorm"
)

// SyncUserFromClaims resolves or creates the local user for a verified token
// and keeps the denormalized identity fields in step with the provider's
// current claims.
func (s *ParenticService) SyncUserFromClaims(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("keycloak_id = ?", claims.Subject).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			user = models.User{
				KeycloakID: claims.Subject,
				Email:      claims.Email,
				Username:   claims.PreferredUsername,
				FirstName:  optional(claims.GivenName),
				LastName:   optional(claims.FamilyName),
				IsActive:   true,
			}
			if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
				return nil, err
			}
			return &user, nil
		}
		return nil, err
	}

	updated := false
	if user.Email != claims.Email {
		user.Email = claims.Email
		updated = true
	}
	if user.Username != claims.PreferredUsername {
		user.Username = claims.PreferredUsername
		updated = true
	}
	if !equalOptional(user.FirstName, claims.GivenName) {
		user.FirstName = optional(claims.GivenName)
		updated = true
	}
	if !equalOptional(user.LastName, claims.FamilyName) {
		user.LastName = optional(claims.FamilyName)
		updated = true
	}

	if updated {
		if err := s.db.WithContext(ctx).Save(&user).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// UpsertUser creates or updates a user record by its Keycloak id.
// The keycloak_id itself is immutable once set.
func (s *ParenticService) UpsertUser(ctx context.Context, req *models.UserRequest) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("keycloak_id = ?", req.KeycloakID).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				user = models.User{
					KeycloakID: req.KeycloakID,
					Email:      req.Email,
					Username:   req.Username,
					FirstName:  req.FirstName,
					LastName:   req.LastName,
					IsActive:   true,
				}
				return tx.Create(&user).Error
			}
			return err
		}
		user.Email = req.Email
		user.Username = req.Username
		user.FirstName = req.FirstName
		user.LastName = req.LastName
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *ParenticService) GetUserByKeycloakID(ctx context.Context, keycloakID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("keycloak_id = ?", keycloakID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func equalOptional(p *string, s string) bool {
	if p == nil {
		return s == ""
	}
	return *p == s
}
