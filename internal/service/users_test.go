package service

import (
	"context"
	"testing"

	"parentic-api/internal/auth"
	"parentic-api/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func claimsFor(subject string) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims:  jwt.RegisteredClaims{Subject: subject},
		Email:             subject + "@example.com",
		PreferredUsername: "user-" + subject,
		GivenName:         "Ada",
		FamilyName:        "Lovelace",
	}
}

func TestSyncUserFromClaimsCreatesUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, err := svc.SyncUserFromClaims(context.Background(), claimsFor("kc-1"))
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "kc-1", user.KeycloakID)
	assert.Equal(t, "kc-1@example.com", user.Email)
	assert.Equal(t, "user-kc-1", user.Username)
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "Ada", *user.FirstName)
	assert.True(t, user.IsActive)
}

func TestSyncUserFromClaimsUpdatesChangedFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.SyncUserFromClaims(ctx, claimsFor("kc-1"))
	require.NoError(t, err)

	changed := claimsFor("kc-1")
	changed.Email = "new@example.com"
	changed.PreferredUsername = "renamed"

	second, err := svc.SyncUserFromClaims(ctx, changed)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "new@example.com", second.Email)
	assert.Equal(t, "renamed", second.Username)
}

func TestSyncUserFromClaimsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SyncUserFromClaims(ctx, claimsFor("kc-1"))
	require.NoError(t, err)
	_, err = svc.SyncUserFromClaims(ctx, claimsFor("kc-1"))
	require.NoError(t, err)

	var count int64
	require.NoError(t, svc.GetDB().Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertUserCreateThenUpdate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.UpsertUser(ctx, &models.UserRequest{
		KeycloakID: "kc-1",
		Email:      "a@example.com",
		Username:   "alpha",
	})
	require.NoError(t, err)

	updated, err := svc.UpsertUser(ctx, &models.UserRequest{
		KeycloakID: "kc-1",
		Email:      "b@example.com",
		Username:   "beta",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "b@example.com", updated.Email)
	assert.Equal(t, "beta", updated.Username)
}

func TestGetUserByKeycloakIDNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetUserByKeycloakID(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
