package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/postgres"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/storetest"
)

const testSchema = "catalog_test"

// newTestPool connects to TEST_DATABASE_URL with search_path pinned to a
// scratch schema and applies the catalog schema there.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(connString)
	require.NoError(t, err, "Failed to parse test database URL")
	cfg.ConnConfig.RuntimeParams["search_path"] = testSchema

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(pool.Close)

	require.NoError(t, pool.Ping(ctx), "Failed to ping test database")

	_, err = pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+testSchema)
	require.NoError(t, err, "Failed to create test schema")
	require.NoError(t, postgres.NewWithPool(pool).Migrate(ctx))

	return pool
}

func truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE series_lessons, series, lessons, categories, photos RESTART IDENTITY CASCADE")
	require.NoError(t, err, "Failed to truncate catalog tables")
}

func TestStoreConformance(t *testing.T) {
	pool := newTestPool(t)

	storetest.Run(t, func(t *testing.T) catalog.Store {
		truncate(t, pool)
		return postgres.NewWithPool(pool)
	})
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	pool := newTestPool(t)
	require.NoError(t, postgres.NewWithPool(pool).Migrate(context.Background()))
}

func TestStore_DeleteReferencedCategoryIsStorageError(t *testing.T) {
	pool := newTestPool(t)
	truncate(t, pool)
	ctx := context.Background()
	s := postgres.NewWithPool(pool)

	require.NoError(t, s.CreateCategory(ctx, &catalog.Category{ID: "math", Title: "Math"}))
	require.NoError(t, s.CreateLesson(ctx, &catalog.Lesson{ID: "integer", CategoryID: "math", Title: "Integer"}))

	err := s.DeleteCategory(ctx, "math")
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrStorage)
	assert.NotErrorIs(t, err, catalog.ErrNotFound)
}

func TestStore_CreateWithMissingParent(t *testing.T) {
	pool := newTestPool(t)
	truncate(t, pool)

	err := postgres.NewWithPool(pool).CreateLesson(context.Background(),
		&catalog.Lesson{ID: "integer", CategoryID: "nope", Title: "Integer"})
	assert.ErrorIs(t, err, catalog.ErrInvalidParent)
}

// With foreign keys enforced, the category-keyed series cascade leaves the
// series' own lessons in place and the delete is refused and rolled back.
func TestService_DeleteSeriesCascadeKeys(t *testing.T) {
	pool := newTestPool(t)

	tests := []struct {
		name    string
		cascade catalog.SeriesCascade
		wantErr error
	}{
		{"by category key", catalog.SeriesCascadeByCategoryKey, catalog.ErrStorage},
		{"by series key", catalog.SeriesCascadeBySeriesKey, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			truncate(t, pool)
			ctx := context.Background()
			store := postgres.NewWithPool(pool)
			svc, err := catalog.New(catalog.WithStore(store), catalog.WithSeriesCascade(tt.cascade))
			require.NoError(t, err)

			_, err = svc.CreateCategory(ctx, catalog.CreateCategoryRequest{ID: "math", Title: "Math"})
			require.NoError(t, err)
			_, err = svc.CreateSeries(ctx, catalog.CreateSeriesRequest{ID: "algebra", CategoryID: "math", Title: "Algebra"})
			require.NoError(t, err)
			_, err = svc.CreateSeriesLesson(ctx, catalog.CreateSeriesLessonRequest{
				ID: "eq1", CategoryID: "math", SeriesID: "algebra", Title: "Equations"})
			require.NoError(t, err)

			err = svc.DeleteSeries(ctx, "algebra")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				_, err = store.GetSeries(ctx, "algebra")
				assert.NoError(t, err)
				_, err = store.GetSeriesLesson(ctx, "eq1")
				assert.NoError(t, err)
				return
			}

			require.NoError(t, err)
			_, err = store.GetSeries(ctx, "algebra")
			assert.ErrorIs(t, err, catalog.ErrNotFound)
			_, err = store.GetSeriesLesson(ctx, "eq1")
			assert.ErrorIs(t, err, catalog.ErrNotFound)
		})
	}
}

func TestStore_Ping(t *testing.T) {
	pool := newTestPool(t)
	assert.NoError(t, postgres.NewWithPool(pool).Ping(context.Background()))
}
