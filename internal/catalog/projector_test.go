package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhubsell/internal/models"
)

func TestProjectOne_PrimaryCategoryIsEarliestLink(t *testing.T) {
	rate := 45.0
	r := SellerRecord{
		SellerProfile: models.SellerProfile{
			ID:          5,
			UserID:      9,
			Title:       "John Seller",
			HourlyRate:  &rate,
			Status:      models.SellerStatusActive,
			Rating:      4.8,
			ReviewCount: 12,
			Categories: []models.SellerCategory{
				{ID: 30, CategoryID: 2, Category: models.Category{ID: 2, NameEn: "Design", Slug: "design"}},
				{ID: 11, CategoryID: 1, Category: models.Category{ID: 1, NameEn: "Web Development", Slug: "web-development"}},
			},
		},
		Username:     "johnseller",
		TotalReviews: 12,
		IsFavorited:  true,
	}

	v := ProjectOne(r)

	require.NotNil(t, v.PrimaryCategory)
	assert.Equal(t, "web-development", v.PrimaryCategory.Slug)
	require.Len(t, v.Categories, 2)
	assert.Equal(t, "design", v.Categories[1].Slug)
	assert.Equal(t, "johnseller", v.Username)
	assert.True(t, v.IsFavorited)
	assert.Equal(t, int64(12), v.TotalReviews)
	assert.Equal(t, &rate, v.HourlyRate)

	// input order is untouched
	assert.Equal(t, uint(30), r.Categories[0].ID)
}

func TestProjectOne_NoCategories(t *testing.T) {
	v := ProjectOne(SellerRecord{SellerProfile: models.SellerProfile{ID: 1}})

	assert.Nil(t, v.PrimaryCategory)
	assert.NotNil(t, v.Categories)
	assert.Empty(t, v.Categories)
	assert.Equal(t, []string{}, v.Languages)
	assert.False(t, v.IsFavorited)
}

func TestProject_PreservesOrder(t *testing.T) {
	views := Project([]SellerRecord{
		{SellerProfile: models.SellerProfile{ID: 3}},
		{SellerProfile: models.SellerProfile{ID: 1}},
		{SellerProfile: models.SellerProfile{ID: 2}},
	})

	require.Len(t, views, 3)
	assert.Equal(t, []uint{3, 1, 2}, []uint{views[0].ID, views[1].ID, views[2].ID})
	assert.NotNil(t, Project(nil))
}
