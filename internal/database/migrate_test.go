package database

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"xhubsell/internal/config"
	"xhubsell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	for i, m := range all {
		assert.Equal(t, i+1, m.Version, "versions must be contiguous")
		assert.NotEmpty(t, strings.TrimSpace(m.UpScript), m.String())
		assert.NotEmpty(t, strings.TrimSpace(m.DownScript), m.String())
	}
	assert.Equal(t, "000001_init", all[0].String())
	assert.Contains(t, all[0].UpScript, "idx_favorites_user_seller")
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("SELECT 2;")},
		"m/000002_second.down.sql": {Data: []byte("SELECT -2;")},
		"m/000001_first.up.sql":    {Data: []byte("SELECT 1;")},
		"m/000001_first.down.sql":  {Data: []byte("SELECT -1;")},
		"m/README.md":              {Data: []byte("ignored")},
		"m/bogus.up.sql":           {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "SELECT -2;", got[1].DownScript)

	t.Run("missing down script", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{
			"m/000001_first.up.sql": {Data: []byte("SELECT 1;")},
		}, "m")
		assert.ErrorContains(t, err, "down migration")
	})

	t.Run("duplicate version", func(t *testing.T) {
		_, err := LoadMigrations(fstest.MapFS{
			"m/000001_a.up.sql":   {Data: []byte("SELECT 1;")},
			"m/000001_a.down.sql": {Data: []byte("SELECT 1;")},
			"m/000001_b.up.sql":   {Data: []byte("SELECT 1;")},
			"m/000001_b.down.sql": {Data: []byte("SELECT 1;")},
		}, "m")
		assert.ErrorContains(t, err, "duplicate migration version")
	})
}

func TestPending(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}
	pending := Pending(registered, []int{1, 3})
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Version)
	assert.Empty(t, Pending(registered, []int{1, 2, 3}))
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 9, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007, 000009")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		runSQL      bool
		runAuto     bool
		expectError bool
	}{
		{"hybrid in development", config.Config{Env: "development"}, true, true, false},
		{"hybrid in production", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBSchemaMode: "SQL"}, true, false, false},
		{"auto in development", config.Config{Env: "development", DBSchemaMode: "auto"}, false, true, false},
		{"auto refused in staging", config.Config{Env: "staging", DBSchemaMode: "auto"}, false, false, true},
		{"auto allowed explicitly", config.Config{Env: "prod", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"unknown mode", config.Config{DBSchemaMode: "goose"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestRunMigrations_Postgres(t *testing.T) {
	pg := testutil.StartPostgres(t)
	ctx := context.Background()
	cfg := &config.Config{Env: "test", DBSchemaMode: SchemaModeSQL}

	require.NoError(t, ApplySchema(ctx, pg.DB, cfg))

	status, err := GetSchemaStatus(ctx, pg.DB, cfg)
	require.NoError(t, err)
	assert.Len(t, status.AppliedVersions, len(GetMigrations()))
	assert.Empty(t, status.PendingMigrations)

	applied, err := RunMigrations(ctx, pg.DB)
	require.NoError(t, err)
	assert.Zero(t, applied, "second run is a no-op")

	latest, err := RollbackLatest(ctx, pg.DB)
	require.NoError(t, err)
	assert.Equal(t, len(GetMigrations()), latest)

	status, err = GetSchemaStatus(ctx, pg.DB, cfg)
	require.NoError(t, err)
	require.Len(t, status.PendingMigrations, 1)
	assert.Equal(t, latest, status.PendingMigrations[0].Version)

	require.NoError(t, AutoMigrate(pg.DB), "AutoMigrate agrees with the SQL schema")
}
