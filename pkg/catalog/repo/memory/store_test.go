package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/memory"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) catalog.Store {
		return memory.New()
	})
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	category := &catalog.Category{ID: "math", Title: "Math"}
	require.NoError(t, s.CreateCategory(ctx, category))
	category.Title = "changed by caller"

	got, err := s.GetCategory(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, "Math", got.Title)

	got.Title = "changed again"
	again, err := s.GetCategory(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, "Math", again.Title)
}

func TestStore_SnapshotRejectsWrites(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	err := s.Snapshot(ctx, func(view catalog.Store) error {
		return view.CreateCategory(ctx, &catalog.Category{ID: "math", Title: "Math"})
	})
	assert.ErrorIs(t, err, catalog.ErrStorage)

	_, err = s.GetCategory(ctx, "math")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestStore_TransactionIsAtomicForReaders(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.CreateCategory(ctx, &catalog.Category{ID: "math", Title: "Math"}))
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.CreateLesson(ctx, &catalog.Lesson{ID: id, CategoryID: "math", Title: id}))
	}

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			_ = s.Snapshot(ctx, func(view catalog.Store) error {
				_, catErr := view.GetCategory(ctx, "math")
				lessons, _ := view.ListLessons(ctx, "math")
				if catErr == nil {
					assert.Len(t, lessons, 4)
				} else {
					assert.Empty(t, lessons)
				}
				return nil
			})
		}
	}()

	err := s.WithinTx(ctx, func(tx catalog.Store) error {
		if _, err := tx.DeleteLessonsByCategory(ctx, "math"); err != nil {
			return err
		}
		return tx.DeleteCategory(ctx, "math")
	})
	close(done)
	wg.Wait()
	require.NoError(t, err)
}
