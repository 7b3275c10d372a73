package catalog

import (
	"context"
	"io"
	"time"
)

// Store defines persistence for the four catalog entity types and the photo
// registry. Implementations return ErrNotFound, ErrConflict or
// ErrInvalidParent for the classified outcomes and a *StorageError for any
// other backend failure.
type Store interface {
	// Category operations
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Lesson operations
	CreateLesson(ctx context.Context, lesson *Lesson) error
	GetLesson(ctx context.Context, id string) (*Lesson, error)
	ListLessons(ctx context.Context, categoryID string) ([]*Lesson, error)
	UpdateLesson(ctx context.Context, lesson *Lesson) error
	DeleteLesson(ctx context.Context, id string) error
	DeleteLessonsByCategory(ctx context.Context, categoryID string) (int, error)

	// Series operations
	CreateSeries(ctx context.Context, series *Series) error
	GetSeries(ctx context.Context, id string) (*Series, error)
	ListSeries(ctx context.Context, categoryID string) ([]*Series, error)
	UpdateSeries(ctx context.Context, series *Series) error
	DeleteSeries(ctx context.Context, id string) error
	DeleteSeriesByCategory(ctx context.Context, categoryID string) (int, error)

	// SeriesLesson operations
	CreateSeriesLesson(ctx context.Context, lesson *SeriesLesson) error
	GetSeriesLesson(ctx context.Context, id string) (*SeriesLesson, error)
	ListSeriesLessons(ctx context.Context, categoryID, seriesID string) ([]*SeriesLesson, error)
	UpdateSeriesLesson(ctx context.Context, lesson *SeriesLesson) error
	DeleteSeriesLesson(ctx context.Context, id string) error
	DeleteSeriesLessonsByCategory(ctx context.Context, categoryID string) (int, error)
	DeleteSeriesLessonsBySeries(ctx context.Context, seriesID string) (int, error)

	PhotoRegistry

	// WithinTx runs fn against a transactional view of the store. Writes made
	// through tx become visible together when fn returns nil; any error or
	// panic rolls them back and the error is returned unchanged.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	// Snapshot runs fn against a read-only view that reflects a single
	// consistent point in time.
	Snapshot(ctx context.Context, fn func(view Store) error) error
}

// PhotoRegistry records the names of stored uploads.
type PhotoRegistry interface {
	// CreatePhoto records name; recording an existing name is a no-op.
	CreatePhoto(ctx context.Context, photo *Photo) error
	// ListPhotos returns all photos, newest first.
	ListPhotos(ctx context.Context) ([]*Photo, error)
	DeletePhoto(ctx context.Context, name string) error
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BlobStore defines the interface for upload storage backends
type BlobStore interface {
	// Upload writes the object, replacing any existing object with the same key
	Upload(ctx context.Context, key string, reader io.Reader) error

	// Download opens the object; a missing key yields ErrNotFound
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object; a missing key yields ErrNotFound
	Delete(ctx context.Context, key string) error

	// GetObjectMeta retrieves metadata for an object
	GetObjectMeta(ctx context.Context, key string) (*ObjectMeta, error)
}

// ObjectMeta describes a stored object.
type ObjectMeta struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
	ETag      string
}

// EventSink receives catalog mutation events.
type EventSink interface {
	Publish(ctx context.Context, event Event) error
}
