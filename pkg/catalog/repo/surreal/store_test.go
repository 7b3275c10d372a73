package surreal_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/storetest"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/surreal"
)

// newTestStore opens a store in a fresh database of the "catalog_test"
// namespace. Tests are skipped unless TEST_SURREALDB_URL is set.
func newTestStore(t *testing.T) *surreal.Store {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping SurrealDB test in short mode")
	}
	endpoint := os.Getenv("TEST_SURREALDB_URL")
	if endpoint == "" {
		t.Skip("TEST_SURREALDB_URL not set")
	}

	user := os.Getenv("TEST_SURREALDB_USER")
	if user == "" {
		user = "root"
	}
	pass := os.Getenv("TEST_SURREALDB_PASS")
	if pass == "" {
		pass = "root"
	}

	ctx := context.Background()
	s, err := surreal.Open(ctx, surreal.Config{
		URL:       endpoint,
		Namespace: "catalog_test",
		Database:  fmt.Sprintf("t%d", time.Now().UnixNano()),
		Username:  user,
		Password:  pass,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) catalog.Store {
		return newTestStore(t)
	})
}

func TestStore_Ping(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestStore_SnapshotRejectsWrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Snapshot(ctx, func(view catalog.Store) error {
		return view.CreateCategory(ctx, &catalog.Category{ID: "math", Title: "Math"})
	})
	assert.ErrorIs(t, err, catalog.ErrStorage)

	_, err = s.GetCategory(ctx, "math")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
