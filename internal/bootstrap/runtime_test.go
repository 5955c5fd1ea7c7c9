package bootstrap

import (
	"context"
	"testing"

	"xhubsell/internal/config"
	"xhubsell/internal/models"
	"xhubsell/internal/repository"
	"xhubsell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureAdmin_Creates(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	users := repository.NewUserRepository(db)
	cfg := &config.Config{AdminEmail: " Ops@XHubSell.com ", AdminUsername: "ops", AdminPassword: "Sup3r!secret"}

	require.NoError(t, EnsureAdmin(context.Background(), cfg, users))

	admin, err := users.GetByEmail(context.Background(), "ops@xhubsell.com")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, "ops", admin.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("Sup3r!secret")))

	require.NoError(t, EnsureAdmin(context.Background(), cfg, users), "second run is a no-op")
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	users := repository.NewUserRepository(db)
	u := testutil.CreateUser(t, db, testutil.NewUser(func(u *models.User) { u.Email = "lead@xhubsell.com" }))
	original := u.Password

	cfg := &config.Config{AdminEmail: "lead@xhubsell.com", AdminPassword: "Different1!"}
	require.NoError(t, EnsureAdmin(context.Background(), cfg, users))

	got, err := users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, original, got.Password, "existing credentials are kept")
}

func TestEnsureAdmin_WeakPassword(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	cfg := &config.Config{AdminEmail: "ops@xhubsell.com", AdminPassword: "short"}

	err := EnsureAdmin(context.Background(), cfg, repository.NewUserRepository(db))
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestEnsureAdmin_Disabled(t *testing.T) {
	assert.NoError(t, EnsureAdmin(context.Background(), &config.Config{}, nil))
	assert.NoError(t, EnsureAdmin(context.Background(), nil, nil))
}

func TestPrepare_SeedsBuiltIns(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	require.NoError(t, Prepare(context.Background(), &config.Config{}, db, Options{SeedBuiltIns: true}))

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.Positive(t, categories)
}
