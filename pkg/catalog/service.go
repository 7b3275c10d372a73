package catalog

import "context"

// Service is the main interface for the lesson catalog
type Service interface {
	// Category operations
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, id string, patch Patch) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	// Lesson operations
	CreateLesson(ctx context.Context, req CreateLessonRequest) (*Lesson, error)
	GetLesson(ctx context.Context, categoryID, id string) (*Lesson, error)
	ListLessons(ctx context.Context, categoryID string) ([]*Lesson, error)
	UpdateLesson(ctx context.Context, id string, patch Patch) (*Lesson, error)
	DeleteLesson(ctx context.Context, id string) error

	// Series operations
	CreateSeries(ctx context.Context, req CreateSeriesRequest) (*Series, error)
	GetSeries(ctx context.Context, categoryID, id string) (*Series, error)
	ListSeries(ctx context.Context, categoryID string) ([]*Series, error)
	UpdateSeries(ctx context.Context, id string, patch Patch) (*Series, error)
	DeleteSeries(ctx context.Context, id string) error

	// SeriesLesson operations
	CreateSeriesLesson(ctx context.Context, req CreateSeriesLessonRequest) (*SeriesLesson, error)
	GetSeriesLesson(ctx context.Context, categoryID, seriesID, id string) (*SeriesLesson, error)
	ListSeriesLessons(ctx context.Context, categoryID, seriesID string) ([]*SeriesLesson, error)
	UpdateSeriesLesson(ctx context.Context, id string, patch Patch) (*SeriesLesson, error)
	DeleteSeriesLesson(ctx context.Context, id string) error

	// GetCatalogMap returns every Category with its Lessons and Series, and
	// each Series with its SeriesLessons, read from one consistent snapshot.
	GetCatalogMap(ctx context.Context) ([]MapCategory, error)
}
