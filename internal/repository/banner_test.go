package repository

import (
	"context"
	"testing"

	"xhubsell/internal/models"
	"xhubsell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBannerRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewBannerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []models.Banner{
		{ID: 1, Title: "Hire faster", Position: models.BannerPositionTop, IsActive: true},
		{ID: 2, Title: "Go pro", Position: models.BannerPositionSidebar, IsActive: true},
		{ID: 3, Title: "Old promo", Position: models.BannerPositionTop, IsActive: false},
	}))

	active := true
	top := models.BannerPositionTop
	list, err := repo.List(ctx, BannerFilter{Active: &active, Position: &top})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hire faster", list[0].Title)

	all, err := repo.List(ctx, BannerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	total, err := repo.AddImpressions(ctx, 2, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	total, err = repo.AddImpressions(ctx, 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	// Re-seeding does not reset counters.
	require.NoError(t, repo.Upsert(ctx, []models.Banner{
		{ID: 2, Title: "Go pro today", Position: models.BannerPositionSidebar, IsActive: true},
	}))
	b, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Go pro today", b.Title)
	assert.EqualValues(t, 4, b.Impressions)

	_, err = repo.AddImpressions(ctx, 99, 1)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestAnnouncementRepository_List(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewAnnouncementRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []models.Announcement{
		{ID: 1, Text: "low", Priority: models.PriorityLow, IsActive: true},
		{ID: 2, Text: "high", Priority: models.PriorityHigh, IsActive: true},
		{ID: 3, Text: "medium", Priority: models.PriorityMedium, IsActive: true},
		{ID: 4, Text: "hidden", Priority: models.PriorityHigh, IsActive: false},
	}))

	active := true
	list, err := repo.List(ctx, &active)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"high", "medium", "low"}, []string{list[0].Text, list[1].Text, list[2].Text})

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
