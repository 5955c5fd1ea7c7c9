package seed

import (
	"context"
	"testing"

	"xhubsell/internal/models"
	"xhubsell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTaxonomy(t *testing.T) {
	tax, err := LoadTaxonomy()
	require.NoError(t, err)

	require.Len(t, tax.Categories, 8)
	seen := map[string]bool{}
	for _, c := range tax.Categories {
		assert.False(t, seen[c.Slug], "duplicate slug %s", c.Slug)
		seen[c.Slug] = true
		assert.NotEmpty(t, c.NameEn)
		assert.NotEmpty(t, c.NameRu)
	}

	for _, b := range tax.Banners {
		assert.NotZero(t, b.ID)
		assert.Contains(t, []models.BannerPosition{
			models.BannerPositionTop, models.BannerPositionInline, models.BannerPositionSidebar,
		}, b.Position)
	}
	for _, a := range tax.Announcements {
		assert.Positive(t, a.Priority.Weight(), "announcement %d", a.ID)
	}
}

func TestLoadDemo_References(t *testing.T) {
	tax, err := LoadTaxonomy()
	require.NoError(t, err)
	demo, err := LoadDemo()
	require.NoError(t, err)

	slugSet := map[string]bool{}
	for _, c := range tax.Categories {
		slugSet[c.Slug] = true
	}
	accounts := map[string]bool{}
	sellers := map[string]models.SellerStatus{}
	for _, u := range demo.Users {
		accounts[u.Username] = true
	}
	for _, s := range demo.Sellers {
		accounts[s.Username] = true
		sellers[s.Username] = s.Status
		for _, slug := range s.Categories {
			assert.True(t, slugSet[slug], "%s links unknown category %s", s.Username, slug)
		}
	}
	for _, r := range demo.Reviews {
		assert.True(t, accounts[r.Author], "unknown review author %s", r.Author)
		_, ok := sellers[r.Seller]
		assert.True(t, ok, "unknown reviewed seller %s", r.Seller)
	}

	assert.Equal(t, models.SellerStatusActive, sellers["johnseller"])
	assert.Equal(t, models.SellerStatusSuspended, sellers["johnsmith2"])
	assert.Contains(t, sellers, "mariasilva")
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	report, err := NewSeeder(db, Options{SkipBcrypt: true, ExtraSellers: 4, RandSeed: 42}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Users)
	assert.Equal(t, 6, report.Sellers)
	assert.Equal(t, 5, report.Reviews)
	assert.Equal(t, 4, report.ExtraSellers)

	var john models.SellerProfile
	require.NoError(t, db.Joins("JOIN users ON users.id = seller_profiles.user_id").
		Where("users.username = ?", "johnseller").First(&john).Error)
	assert.Equal(t, models.SellerStatusActive, john.Status)
	assert.Equal(t, 2, john.ReviewCount)
	assert.InDelta(t, 4.5, john.Rating, 0.001)
	assert.Equal(t, []string{"EN", "ES"}, []string(john.Languages))

	var links []models.SellerCategory
	require.NoError(t, db.Preload("Category").Where("seller_id = ?", john.ID).Order("id").Find(&links).Error)
	require.Len(t, links, 2)
	assert.Equal(t, "programming", links[0].Category.Slug, "first listed category is primary")

	var banners, announcements, categories int64
	require.NoError(t, db.Model(&models.Banner{}).Count(&banners).Error)
	require.NoError(t, db.Model(&models.Announcement{}).Count(&announcements).Error)
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.Equal(t, int64(3), banners)
	assert.Equal(t, int64(3), announcements)
	assert.Equal(t, int64(8), categories)

	again, err := NewSeeder(db, Options{SkipBcrypt: true}).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Users)
	assert.Zero(t, again.Sellers)
	assert.Zero(t, again.Reviews)

	var reviews int64
	require.NoError(t, db.Model(&models.Review{}).Count(&reviews).Error)
	assert.Equal(t, int64(5), reviews, "reviews are written once")
}

func TestSeeder_RunClean(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	testutil.CreateSeller(t, db, "leftover")

	_, err := NewSeeder(db, Options{SkipBcrypt: true, Clean: true}).Run(ctx)
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "leftover").Count(&n).Error)
	assert.Zero(t, n)
}

func TestBuiltIns_Idempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	require.NoError(t, BuiltIns(ctx, db))
	require.NoError(t, db.Model(&models.Banner{}).Where("id = ?", 1).Update("impressions", 7).Error)
	require.NoError(t, BuiltIns(ctx, db))

	var banner models.Banner
	require.NoError(t, db.First(&banner, 1).Error)
	assert.Equal(t, int64(7), banner.Impressions, "re-seeding keeps impression counts")

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.Equal(t, int64(8), categories)
}

func TestFactory_DryRun(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true, RandSeed: 7}, "hash")

	p1, err := f.CreateSeller(context.Background(), nil)
	require.NoError(t, err)
	p2, err := f.CreateSeller(context.Background(), nil, func(u *models.User, p *models.SellerProfile) {
		p.Status = models.SellerStatusSuspended
	})
	require.NoError(t, err)

	assert.NotEqual(t, p1.ID, p2.ID)
	assert.Equal(t, models.SellerStatusSuspended, p2.Status)
	assert.NotEmpty(t, p1.Skills)
	assert.Equal(t, "EN", p1.Languages[0])
}

func TestBuildSeller_Username(t *testing.T) {
	f := NewFactory(nil, Options{DryRun: true}, "hash")
	for range 20 {
		u, _ := f.BuildSeller()
		assert.Regexp(t, `^[a-z][a-z0-9_]{2,29}$`, u.Username)
		assert.Equal(t, models.RoleSeller, u.Role)
	}
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "abc_12", sanitizeUsername("a.b-c_12!"))
	assert.Len(t, sanitizeUsername("abcdefghijklmnopqrstuvwxyz0123456789"), 30)
}
