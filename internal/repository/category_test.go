package repository

import (
	"context"
	"testing"

	"xhubsell/internal/models"
	"xhubsell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCategoryRepository(db)
	sellers := NewSellerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, []models.Category{
		{NameEn: "Writing", NameRu: "Тексты", Slug: "writing", Icon: "pen"},
		{NameEn: "Design", NameRu: "Дизайн", Slug: "design", Icon: "palette"},
		{NameEn: "Development", NameRu: "Разработка", Slug: "development", Icon: "code"},
	}))

	// Upsert by slug refreshes names without duplicating rows.
	require.NoError(t, repo.Upsert(ctx, []models.Category{
		{NameEn: "Graphic Design", NameRu: "Графический дизайн", Slug: "design", Icon: "palette"},
	}))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	design, err := repo.GetBySlug(ctx, "design")
	require.NoError(t, err)
	assert.Equal(t, "Graphic Design", design.NameEn)
	dev, err := repo.GetBySlug(ctx, "development")
	require.NoError(t, err)

	_, err = repo.GetBySlug(ctx, "missing")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	a := testutil.CreateSeller(t, db, "johnseller")
	b := testutil.CreateSeller(t, db, "mariasilva")
	require.NoError(t, sellers.SetCategories(ctx, a.ID, []uint{dev.ID, design.ID}))
	require.NoError(t, sellers.SetCategories(ctx, b.ID, []uint{dev.ID}))

	list, err := repo.ListWithSellerCounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	names := []string{list[0].NameEn, list[1].NameEn, list[2].NameEn}
	assert.Equal(t, []string{"Development", "Graphic Design", "Writing"}, names)
	assert.EqualValues(t, 2, list[0].SellerCount)
	assert.EqualValues(t, 1, list[1].SellerCount)
	assert.EqualValues(t, 0, list[2].SellerCount)
}
