package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DatabaseMemory, cfg.DatabaseType)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
	assert.Equal(t, string(catalog.SeriesCascadeByCategoryKey), cfg.SeriesCascade)
	assert.Equal(t, catalog.DefaultMaxUploadSize, cfg.UploadMaxBytes)
	assert.True(t, cfg.IsDevelopment())
}

func TestOptions(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(
		WithPort("9000"),
		WithEnvironment("testing"),
		WithDatabaseURL("sqlite://"+dir+"/catalog.db"),
		WithFilesystemStorage(dir),
		WithJWTSecret("secret"),
		WithSeriesCascade(catalog.SeriesCascadeBySeriesKey),
		WithUploadMaxBytes(512),
		WithAutoMigrate(true),
		WithEventLogging(false),
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, DatabaseSQLite, cfg.DatabaseType)
	assert.Equal(t, dir+"/catalog.db", cfg.DatabaseURL)
	assert.Equal(t, StorageConfig{Type: StorageFS, BaseDir: dir}, cfg.Storage)
	assert.Equal(t, "series", cfg.SeriesCascade)
	assert.Equal(t, int64(512), cfg.UploadMaxBytes)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.EnableEventLogging)
}

func TestOptionErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty port", WithPort("")},
		{"empty environment", WithEnvironment("")},
		{"unknown cascade", WithSeriesCascade("lesson")},
		{"zero upload limit", WithUploadMaxBytes(0)},
		{"empty fs dir", WithFilesystemStorage("")},
		{"bad database url", WithDatabaseURL("oracle://db")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"postgres without url", func(c *ServerConfig) { c.DatabaseType = DatabasePostgres }},
		{"unknown database", func(c *ServerConfig) { c.DatabaseType = "oracle" }},
		{"s3 without bucket", func(c *ServerConfig) { c.Storage = StorageConfig{Type: StorageS3} }},
		{"fs without dir", func(c *ServerConfig) { c.Storage = StorageConfig{Type: StorageFS} }},
		{"unknown storage", func(c *ServerConfig) { c.Storage = StorageConfig{Type: "ftp"} }},
		{"production without secret", func(c *ServerConfig) { c.Environment = "production" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSurrealConfigMovesCredentials(t *testing.T) {
	cfg, err := Load(WithDatabaseURL("ws://root:pw@localhost:8000"))
	require.NoError(t, err)

	sc, err := cfg.surrealConfig()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8000/rpc", sc.URL)
	assert.Equal(t, "root", sc.Username)
	assert.Equal(t, "pw", sc.Password)
	assert.Equal(t, "catalog", sc.Namespace)
	assert.Equal(t, "catalog", sc.Database)
}

func TestBuildMemory(t *testing.T) {
	cfg, err := Load(WithJWTSecret("secret"), WithEventLogging(false))
	require.NoError(t, err)

	ctx := context.Background()
	comp, err := cfg.BuildWithLogger(ctx, newLogger(&discard{}, "testing", "info"))
	require.NoError(t, err)
	defer comp.Close(ctx)

	assert.NotNil(t, comp.Service)
	assert.NotNil(t, comp.Uploads)
	assert.NotNil(t, comp.Revoker)
	assert.NotNil(t, comp.JWTAuth)
	require.NoError(t, comp.Migrate(ctx))

	category, err := comp.Service.CreateCategory(ctx, catalog.CreateCategoryRequest{ID: "math", Title: "Math"})
	require.NoError(t, err)
	assert.Equal(t, "math", category.ID)
}

func TestBuildSQLiteMigrates(t *testing.T) {
	cfg, err := Load(
		WithDatabaseURL("sqlite://"+t.TempDir()+"/catalog.db"),
		WithFilesystemStorage(t.TempDir()),
		WithAutoMigrate(true),
	)
	require.NoError(t, err)

	ctx := context.Background()
	comp, err := cfg.BuildWithLogger(ctx, newLogger(&discard{}, "testing", "info"))
	require.NoError(t, err)
	defer comp.Close(ctx)

	_, err = comp.Service.CreateCategory(ctx, catalog.CreateCategoryRequest{ID: "math", Title: "Math"})
	require.NoError(t, err)
	categories, err := comp.Service.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestBuildFailsOnUnreachableRedis(t *testing.T) {
	cfg, err := Load(WithRedis("redis://127.0.0.1:1/0"))
	require.NoError(t, err)

	_, err = cfg.BuildWithLogger(context.Background(), newLogger(&discard{}, "testing", "info"))
	assert.Error(t, err)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
