package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhubsell/internal/models"
)

func TestParseFilter_Defaults(t *testing.T) {
	f, err := ParseFilter(RawParams{})
	require.NoError(t, err)

	assert.Equal(t, "", f.Search)
	assert.Nil(t, f.Status)
	assert.False(t, f.AllStatuses)
	assert.Empty(t, f.Categories)
	assert.Nil(t, f.MinRating)
	assert.Nil(t, f.MaxPrice)
	assert.Equal(t, SortPopularity, f.Sort)
	assert.Equal(t, DefaultPage, f.Page)
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.False(t, f.FavoritesOnly)
	assert.Equal(t, 0, f.Offset())
}

func TestParseFilter_Status(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *models.SellerStatus
		all     bool
		wantErr bool
	}{
		{name: "absent", raw: ""},
		{name: "all", raw: "all", all: true},
		{name: "all uppercase", raw: "ALL", all: true},
		{name: "active", raw: "ACTIVE", want: statusPtr(models.SellerStatusActive)},
		{name: "lowercase suspended", raw: "suspended", want: statusPtr(models.SellerStatusSuspended)},
		{name: "pending", raw: "PENDING_VERIFICATION", want: statusPtr(models.SellerStatusPendingVerification)},
		{name: "unknown", raw: "BANNED", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(RawParams{Status: tt.raw})
			if tt.wantErr {
				require.Error(t, err)
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, models.CodeValidation, appErr.Code)
				assert.Equal(t, "invalid_status", appErr.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Status)
			assert.Equal(t, tt.all, f.AllStatuses)
		})
	}
}

func TestParseFilter_Lists(t *testing.T) {
	f, err := ParseFilter(RawParams{
		Category:  "web-development,, 3 ,",
		Languages: "en, ru,,",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"web-development", "3"}, f.Categories)
	assert.Equal(t, []string{"EN", "RU"}, f.Languages)
}

func TestParseFilter_Bounds(t *testing.T) {
	f, err := ParseFilter(RawParams{
		MinRating: "4.5",
		MaxRating: "abc",
		MinPrice:  "NaN",
		MaxPrice:  "100",
	})
	require.NoError(t, err)

	require.NotNil(t, f.MinRating)
	assert.InDelta(t, 4.5, *f.MinRating, 1e-9)
	assert.Nil(t, f.MaxRating, "non-numeric bound is omitted, not zero")
	assert.Nil(t, f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.InDelta(t, 100.0, *f.MaxPrice, 1e-9)
}

func TestParseFilter_Sort(t *testing.T) {
	for raw, want := range map[string]SortOrder{
		"rating":     SortRating,
		"newest":     SortNewest,
		"price_asc":  SortPriceAsc,
		"PRICE_DESC": SortPriceDesc,
		"popularity": SortPopularity,
		"random":     SortPopularity,
		"":           SortPopularity,
	} {
		f, err := ParseFilter(RawParams{Sort: raw})
		require.NoError(t, err)
		assert.Equal(t, want, f.Sort, raw)
	}
}

func TestParseFilter_PageLimitClamp(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"0", "-1", DefaultPage, DefaultLimit},
		{"-3", "0", DefaultPage, DefaultLimit},
		{"x", "y", DefaultPage, DefaultLimit},
		{"3", "20", 3, 20},
		{"2", "1000", 2, MaxLimit},
		{"9223372036854775807", "12", MaxPage, 12},
		{"99999999999999999999", "12", DefaultPage, 12},
	}
	for _, tt := range tests {
		f, err := ParseFilter(RawParams{Page: tt.page, Limit: tt.limit})
		require.NoError(t, err)
		assert.Equal(t, tt.wantPage, f.Page, "page=%s", tt.page)
		assert.Equal(t, tt.wantLimit, f.Limit, "limit=%s", tt.limit)
	}
}

func TestParseFilter_HugePageKeepsOffsetPositive(t *testing.T) {
	f, err := ParseFilter(RawParams{Page: "9223372036854775807", Limit: "1000"})
	require.NoError(t, err)
	assert.Equal(t, MaxPage, f.Page)
	assert.Positive(t, f.Offset())

	q := Compose(f, nil)
	assert.Equal(t, f.Offset(), q.Window.Offset)

	store := NewMemoryStore(seller(1, "johnseller", models.SellerStatusActive))
	var rows []SellerRecord
	var total int64
	require.NotPanics(t, func() {
		rows, total, err = store.Search(context.Background(), q)
	})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, int64(1), total)
}

func TestNormalizeWindow(t *testing.T) {
	page, limit := NormalizeWindow(-1, 0)
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultLimit, limit)

	page, limit = NormalizeWindow(MaxPage+1, MaxLimit+1)
	assert.Equal(t, MaxPage, page)
	assert.Equal(t, MaxLimit, limit)
}

func TestParseFilter_FavoritesOnlyLiteral(t *testing.T) {
	for raw, want := range map[string]bool{
		"true":  true,
		"TRUE":  false,
		"1":     false,
		"yes":   false,
		"false": false,
		"":      false,
	} {
		f, err := ParseFilter(RawParams{FavoritesOnly: raw})
		require.NoError(t, err)
		assert.Equal(t, want, f.FavoritesOnly, raw)
	}
}

func statusPtr(s models.SellerStatus) *models.SellerStatus {
	return &s
}
