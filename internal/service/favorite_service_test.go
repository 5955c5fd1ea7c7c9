package service

import (
	"context"
	"errors"
	"testing"

	"xhubsell/internal/catalog"
	"xhubsell/internal/models"
	"xhubsell/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sellersWith(ids ...uint) *sellerRepoStub {
	known := map[uint]bool{}
	for _, id := range ids {
		known[id] = true
	}
	return &sellerRepoStub{
		existsFn: func(_ context.Context, id uint) (bool, error) { return known[id], nil },
		searchFn: func(context.Context, catalog.Query) ([]catalog.SellerRecord, int64, error) {
			return nil, 0, nil
		},
	}
}

func TestFavoriteService_AddIsIdempotent(t *testing.T) {
	t.Parallel()
	favs := newFavoriteRepoStub()
	svc := NewFavoriteService(favs, sellersWith(7))

	first, err := svc.Add(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, &FavoriteResult{Message: "Seller added to favorites", IsFavorited: true}, first)

	second, err := svc.Add(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, &FavoriteResult{Message: "Seller already in favorites", IsFavorited: true}, second)
	assert.Len(t, favs.rows, 1)
}

func TestFavoriteService_AddNotifiesSeller(t *testing.T) {
	t.Parallel()
	favs := newFavoriteRepoStub()
	sellers := sellersWith(7)
	sellers.getByIDFn = func(_ context.Context, id uint) (*models.SellerProfile, error) {
		return &models.SellerProfile{ID: id, UserID: 70}, nil
	}
	events := &recordingPublisher{}
	svc := NewFavoriteService(favs, sellers).WithEvents(events)

	_, err := svc.Add(context.Background(), 1, 7)
	require.NoError(t, err)
	_, err = svc.Add(context.Background(), 1, 7)
	require.NoError(t, err)

	require.Len(t, events.sent[70], 1, "repeat adds do not notify")
	ev := events.sent[70][0]
	assert.Equal(t, notifications.EventFavoriteAdded, ev.Type)
	assert.Equal(t, uint(1), ev.UserID)
	assert.Equal(t, uint(7), ev.SellerID)
}

func TestFavoriteService_AddSurvivesPublishFailure(t *testing.T) {
	t.Parallel()
	sellers := sellersWith(7)
	sellers.getByIDFn = func(_ context.Context, id uint) (*models.SellerProfile, error) {
		return &models.SellerProfile{ID: id, UserID: 70}, nil
	}
	events := &recordingPublisher{err: errors.New("redis gone")}
	svc := NewFavoriteService(newFavoriteRepoStub(), sellers).WithEvents(events)

	res, err := svc.Add(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, "Seller added to favorites", res.Message)
}

func TestFavoriteService_AddLostRace(t *testing.T) {
	t.Parallel()
	favs := newFavoriteRepoStub()
	favs.raceOnInsert = true
	svc := NewFavoriteService(favs, sellersWith(7))

	res, err := svc.Add(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, "Seller already in favorites", res.Message)
	assert.True(t, res.IsFavorited)
}

func TestFavoriteService_AddUnknownSeller(t *testing.T) {
	t.Parallel()
	favs := newFavoriteRepoStub()
	svc := NewFavoriteService(favs, sellersWith())

	_, err := svc.Add(context.Background(), 1, 404)
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Empty(t, favs.rows)
}

func TestFavoriteService_RemoveIsIdempotent(t *testing.T) {
	t.Parallel()
	favs := newFavoriteRepoStub()
	svc := NewFavoriteService(favs, sellersWith(7))
	_, err := svc.Add(context.Background(), 1, 7)
	require.NoError(t, err)

	first, err := svc.Remove(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, &FavoriteResult{Message: "Seller removed from favorites", IsFavorited: false}, first)

	second, err := svc.Remove(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, &FavoriteResult{Message: "Seller not in favorites", IsFavorited: false}, second)
	assert.Empty(t, favs.rows)
}

func TestFavoriteService_RepositoryError(t *testing.T) {
	t.Parallel()
	favs := newFavoriteRepoStub()
	favs.err = models.NewInternalError(errors.New("connection reset"))
	svc := NewFavoriteService(favs, sellersWith(7))

	_, err := svc.Add(context.Background(), 1, 7)
	assert.True(t, models.IsCode(err, models.CodeInternal))
	_, err = svc.Remove(context.Background(), 1, 7)
	assert.True(t, models.IsCode(err, models.CodeInternal))
}

func TestFavoriteService_List(t *testing.T) {
	t.Parallel()
	var got catalog.Query
	sellers := sellersWith()
	sellers.searchFn = func(_ context.Context, q catalog.Query) ([]catalog.SellerRecord, int64, error) {
		got = q
		r := record(3, "mariasilva", models.SellerStatusInactive, 4.9, 7)
		r.IsFavorited = true
		return []catalog.SellerRecord{r}, 1, nil
	}
	svc := NewFavoriteService(newFavoriteRepoStub(), sellers)

	res, err := svc.List(context.Background(), 9, 0, 500)
	require.NoError(t, err)
	require.Len(t, res.Sellers, 1)
	assert.True(t, res.Sellers[0].IsFavorited)
	assert.Equal(t, catalog.MaxLimit, res.Pagination.Limit)

	require.NotNil(t, got.Viewer)
	assert.Equal(t, uint(9), *got.Viewer)
	assert.Contains(t, got.Where, catalog.Predicate(catalog.FavoritedBy{UserID: 9}))
	for _, p := range got.Where {
		_, isStatus := p.(catalog.Eq)
		assert.False(t, isStatus, "favorites list is not limited to active sellers")
	}
}
