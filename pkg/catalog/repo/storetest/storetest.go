// Package storetest holds the behavioral tests every catalog.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// Factory returns an empty store. Stores backed by shared databases should
// clean up after themselves with t.Cleanup.
type Factory func(t *testing.T) catalog.Store

var base = time.Date(2024, time.March, 1, 10, 30, 0, 123456000, time.UTC)

func at(i int) time.Time {
	return base.Add(time.Duration(i) * time.Millisecond)
}

// Run executes the conformance suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("Lessons", func(t *testing.T) { testLessons(t, newStore(t)) })
	t.Run("Series", func(t *testing.T) { testSeries(t, newStore(t)) })
	t.Run("SeriesLessons", func(t *testing.T) { testSeriesLessons(t, newStore(t)) })
	t.Run("Photos", func(t *testing.T) { testPhotos(t, newStore(t)) })
	t.Run("TransactionCommit", func(t *testing.T) { testTxCommit(t, newStore(t)) })
	t.Run("TransactionRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("TransactionPanic", func(t *testing.T) { testTxPanic(t, newStore(t)) })
	t.Run("Snapshot", func(t *testing.T) { testSnapshot(t, newStore(t)) })
}

func seedCategory(t *testing.T, s catalog.Store, id string, i int) *catalog.Category {
	t.Helper()
	c := &catalog.Category{ID: id, Title: "Category " + id, CreatedAt: at(i), UpdatedAt: at(i)}
	require.NoError(t, s.CreateCategory(context.Background(), c))
	return c
}

func seedSeries(t *testing.T, s catalog.Store, id, categoryID string, i int) *catalog.Series {
	t.Helper()
	sr := &catalog.Series{ID: id, CategoryID: categoryID, Title: "Series " + id, CreatedAt: at(i), UpdatedAt: at(i)}
	require.NoError(t, s.CreateSeries(context.Background(), sr))
	return sr
}

func testCategories(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	math := &catalog.Category{ID: "math", Title: "Math", Cover: "abc.png", CreatedAt: at(0), UpdatedAt: at(0)}
	require.NoError(t, s.CreateCategory(ctx, math))
	seedCategory(t, s, "art", 1)
	seedCategory(t, s, "bio", 2)

	got, err := s.GetCategory(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, math, got)

	dup := &catalog.Category{ID: "math", Title: "Other", CreatedAt: at(3), UpdatedAt: at(3)}
	assert.ErrorIs(t, s.CreateCategory(ctx, dup), catalog.ErrConflict)
	got, err = s.GetCategory(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, "Math", got.Title)

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"math", "art", "bio"}, []string{list[0].ID, list[1].ID, list[2].ID})

	got.Title = "Mathematics"
	got.Cover = ""
	got.UpdatedAt = at(10)
	require.NoError(t, s.UpdateCategory(ctx, got))
	updated, err := s.GetCategory(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", updated.Title)
	assert.Equal(t, "", updated.Cover)
	assert.Equal(t, at(0), updated.CreatedAt)
	assert.Equal(t, at(10), updated.UpdatedAt)

	missing := &catalog.Category{ID: "nope", Title: "x", CreatedAt: at(0), UpdatedAt: at(0)}
	assert.ErrorIs(t, s.UpdateCategory(ctx, missing), catalog.ErrNotFound)

	require.NoError(t, s.DeleteCategory(ctx, "art"))
	_, err = s.GetCategory(ctx, "art")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCategory(ctx, "art"), catalog.ErrNotFound)
}

func testLessons(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	seedCategory(t, s, "math", 0)
	seedCategory(t, s, "art", 1)

	integer := &catalog.Lesson{ID: "integer", CategoryID: "math", Title: "Integers",
		Content: "# Integers", CreatedAt: at(2), UpdatedAt: at(2)}
	require.NoError(t, s.CreateLesson(ctx, integer))
	for i, id := range []string{"fraction", "decimal"} {
		require.NoError(t, s.CreateLesson(ctx, &catalog.Lesson{ID: id, CategoryID: "math",
			Title: id, CreatedAt: at(3 + i), UpdatedAt: at(3 + i)}))
	}
	require.NoError(t, s.CreateLesson(ctx, &catalog.Lesson{ID: "color", CategoryID: "art",
		Title: "Color", CreatedAt: at(6), UpdatedAt: at(6)}))

	got, err := s.GetLesson(ctx, "integer")
	require.NoError(t, err)
	assert.Equal(t, integer, got)

	assert.ErrorIs(t, s.CreateLesson(ctx, &catalog.Lesson{ID: "integer", CategoryID: "art",
		Title: "dup", CreatedAt: at(7), UpdatedAt: at(7)}), catalog.ErrConflict)

	list, err := s.ListLessons(ctx, "math")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "integer", list[0].ID)
	assert.Equal(t, "fraction", list[1].ID)
	assert.Equal(t, "decimal", list[2].ID)

	empty, err := s.ListLessons(ctx, "none")
	require.NoError(t, err)
	assert.Empty(t, empty)

	got.Content = "updated"
	got.UpdatedAt = at(20)
	require.NoError(t, s.UpdateLesson(ctx, got))
	got, err = s.GetLesson(ctx, "integer")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Content)
	assert.Equal(t, "math", got.CategoryID)

	require.NoError(t, s.DeleteLesson(ctx, "decimal"))
	assert.ErrorIs(t, s.DeleteLesson(ctx, "decimal"), catalog.ErrNotFound)

	n, err := s.DeleteLessonsByCategory(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = s.GetLesson(ctx, "color")
	assert.NoError(t, err)
}

func testSeries(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	seedCategory(t, s, "math", 0)
	seedCategory(t, s, "art", 1)

	algebra := seedSeries(t, s, "algebra", "math", 2)
	seedSeries(t, s, "geometry", "math", 3)
	seedSeries(t, s, "painting", "art", 4)

	got, err := s.GetSeries(ctx, "algebra")
	require.NoError(t, err)
	assert.Equal(t, algebra, got)

	assert.ErrorIs(t, s.CreateSeries(ctx, &catalog.Series{ID: "algebra", CategoryID: "math",
		Title: "dup", CreatedAt: at(5), UpdatedAt: at(5)}), catalog.ErrConflict)

	list, err := s.ListSeries(ctx, "math")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "algebra", list[0].ID)
	assert.Equal(t, "geometry", list[1].ID)

	got.Title = "Linear Algebra"
	got.UpdatedAt = at(30)
	require.NoError(t, s.UpdateSeries(ctx, got))
	got, err = s.GetSeries(ctx, "algebra")
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", got.Title)

	assert.ErrorIs(t, s.UpdateSeries(ctx, &catalog.Series{ID: "missing", CategoryID: "math",
		Title: "x", CreatedAt: at(0), UpdatedAt: at(0)}), catalog.ErrNotFound)

	n, err := s.DeleteSeriesByCategory(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = s.GetSeries(ctx, "painting")
	assert.NoError(t, err)
	assert.ErrorIs(t, s.DeleteSeries(ctx, "algebra"), catalog.ErrNotFound)
	require.NoError(t, s.DeleteSeries(ctx, "painting"))
}

func testSeriesLessons(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	seedCategory(t, s, "math", 0)
	seedCategory(t, s, "art", 1)
	seedSeries(t, s, "algebra", "math", 2)
	seedSeries(t, s, "geometry", "math", 3)
	seedSeries(t, s, "painting", "art", 4)

	eq1 := &catalog.SeriesLesson{ID: "eq1", CategoryID: "math", SeriesID: "algebra",
		Title: "Equations", Cover: "c.png", Content: "x + 1 = 2", CreatedAt: at(5), UpdatedAt: at(5)}
	require.NoError(t, s.CreateSeriesLesson(ctx, eq1))
	rows := []*catalog.SeriesLesson{
		{ID: "eq2", CategoryID: "math", SeriesID: "algebra", Title: "Systems", CreatedAt: at(6), UpdatedAt: at(6)},
		{ID: "tri", CategoryID: "math", SeriesID: "geometry", Title: "Triangles", CreatedAt: at(7), UpdatedAt: at(7)},
		{ID: "oil", CategoryID: "art", SeriesID: "painting", Title: "Oil", CreatedAt: at(8), UpdatedAt: at(8)},
	}
	for _, row := range rows {
		require.NoError(t, s.CreateSeriesLesson(ctx, row))
	}

	got, err := s.GetSeriesLesson(ctx, "eq1")
	require.NoError(t, err)
	assert.Equal(t, eq1, got)

	assert.ErrorIs(t, s.CreateSeriesLesson(ctx, &catalog.SeriesLesson{ID: "eq1", CategoryID: "math",
		SeriesID: "geometry", Title: "dup", CreatedAt: at(9), UpdatedAt: at(9)}), catalog.ErrConflict)

	list, err := s.ListSeriesLessons(ctx, "math", "algebra")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "eq1", list[0].ID)
	assert.Equal(t, "eq2", list[1].ID)

	list, err = s.ListSeriesLessons(ctx, "art", "algebra")
	require.NoError(t, err)
	assert.Empty(t, list)

	got.Title = "Linear equations"
	got.UpdatedAt = at(40)
	require.NoError(t, s.UpdateSeriesLesson(ctx, got))
	got, err = s.GetSeriesLesson(ctx, "eq1")
	require.NoError(t, err)
	assert.Equal(t, "Linear equations", got.Title)
	assert.Equal(t, at(40), got.UpdatedAt)

	n, err := s.DeleteSeriesLessonsBySeries(ctx, "algebra")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.DeleteSeriesLessonsByCategory(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetSeriesLesson(ctx, "oil")
	assert.NoError(t, err)
	require.NoError(t, s.DeleteSeriesLesson(ctx, "oil"))
	assert.ErrorIs(t, s.DeleteSeriesLesson(ctx, "oil"), catalog.ErrNotFound)
}

func testPhotos(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreatePhoto(ctx, &catalog.Photo{Name: "a.png", CreatedAt: at(0)}))
	require.NoError(t, s.CreatePhoto(ctx, &catalog.Photo{Name: "b.png", CreatedAt: at(1)}))
	require.NoError(t, s.CreatePhoto(ctx, &catalog.Photo{Name: "a.png", CreatedAt: at(2)}))

	photos, err := s.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "b.png", photos[0].Name)
	assert.Equal(t, "a.png", photos[1].Name)
	assert.Equal(t, at(0), photos[1].CreatedAt)

	require.NoError(t, s.DeletePhoto(ctx, "a.png"))
	assert.ErrorIs(t, s.DeletePhoto(ctx, "a.png"), catalog.ErrNotFound)
}

func testTxCommit(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	seedCategory(t, s, "math", 0)
	seedSeries(t, s, "algebra", "math", 1)
	require.NoError(t, s.CreateLesson(ctx, &catalog.Lesson{ID: "integer", CategoryID: "math",
		Title: "Integers", CreatedAt: at(2), UpdatedAt: at(2)}))

	err := s.WithinTx(ctx, func(tx catalog.Store) error {
		if _, err := tx.DeleteLessonsByCategory(ctx, "math"); err != nil {
			return err
		}
		if _, err := tx.DeleteSeriesByCategory(ctx, "math"); err != nil {
			return err
		}
		return tx.DeleteCategory(ctx, "math")
	})
	require.NoError(t, err)

	_, err = s.GetCategory(ctx, "math")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = s.GetSeries(ctx, "algebra")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = s.GetLesson(ctx, "integer")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func testTxRollback(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	seedCategory(t, s, "math", 0)
	require.NoError(t, s.CreateLesson(ctx, &catalog.Lesson{ID: "integer", CategoryID: "math",
		Title: "Integers", CreatedAt: at(1), UpdatedAt: at(1)}))

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx catalog.Store) error {
		if _, err := tx.DeleteLessonsByCategory(ctx, "math"); err != nil {
			return err
		}
		if err := tx.CreateCategory(ctx, &catalog.Category{ID: "art", Title: "Art",
			CreatedAt: at(2), UpdatedAt: at(2)}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetLesson(ctx, "integer")
	assert.NoError(t, err)
	_, err = s.GetCategory(ctx, "art")
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	// A failing store operation inside the transaction also rolls back.
	err = s.WithinTx(ctx, func(tx catalog.Store) error {
		if err := tx.DeleteLesson(ctx, "integer"); err != nil {
			return err
		}
		return tx.DeleteCategory(ctx, "missing")
	})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = s.GetLesson(ctx, "integer")
	assert.NoError(t, err)
}

func testTxPanic(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	seedCategory(t, s, "math", 0)

	assert.Panics(t, func() {
		_ = s.WithinTx(ctx, func(tx catalog.Store) error {
			if err := tx.DeleteCategory(ctx, "math"); err != nil {
				return err
			}
			panic("interrupted")
		})
	})

	_, err := s.GetCategory(ctx, "math")
	assert.NoError(t, err)
}

func testSnapshot(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	seedCategory(t, s, "math", 0)
	seedSeries(t, s, "algebra", "math", 1)

	err := s.Snapshot(ctx, func(view catalog.Store) error {
		categories, err := view.ListCategories(ctx)
		if err != nil {
			return err
		}
		assert.Len(t, categories, 1)
		series, err := view.ListSeries(ctx, "math")
		if err != nil {
			return err
		}
		assert.Len(t, series, 1)
		return nil
	})
	require.NoError(t, err)
}
