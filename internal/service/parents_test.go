package service

import (
	"context"
	"testing"

	"parentic-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUpsertParentPartialMergePreservesFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	createTestUser(t, svc, "kc-1")

	age := 34
	_, err := svc.UpsertParent(ctx, "kc-1", &models.ParentRequest{Age: &age})
	require.NoError(t, err)

	location := "Berlin"
	parent, err := svc.UpsertParent(ctx, "kc-1", &models.ParentRequest{Location: &location})
	require.NoError(t, err)

	require.NotNil(t, parent.Age)
	assert.Equal(t, 34, *parent.Age)
	require.NotNil(t, parent.Location)
	assert.Equal(t, "Berlin", *parent.Location)
}

func TestUpsertParentSingleRowPerUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	createTestUser(t, svc, "kc-1")

	age := 30
	style := "Gentle"
	_, err := svc.UpsertParent(ctx, "kc-1", &models.ParentRequest{Age: &age})
	require.NoError(t, err)
	_, err = svc.UpsertParent(ctx, "kc-1", &models.ParentRequest{ParentingStyle: &style})
	require.NoError(t, err)

	var count int64
	require.NoError(t, svc.GetDB().Model(&models.Parent{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertParentUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	age := 34
	_, err := svc.UpsertParent(context.Background(), "nobody", &models.ParentRequest{Age: &age})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetParentWithoutProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	createTestUser(t, svc, "kc-1")

	_, err := svc.GetParent(context.Background(), "kc-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSetParentPhotoURL(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	createTestParent(t, svc, "kc-1")

	parent, err := svc.SetParentPhotoURL(ctx, "kc-1", "https://cdn.example.com/p/kc-1.jpg")
	require.NoError(t, err)

	require.NotNil(t, parent.PhotoURL)
	assert.Equal(t, "https://cdn.example.com/p/kc-1.jpg", *parent.PhotoURL)
	require.NotNil(t, parent.Age)
	assert.Equal(t, 35, *parent.Age)
}
