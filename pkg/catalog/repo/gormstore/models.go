package gormstore

import (
	"time"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// Timestamps are assigned by the catalog service, so GORM's automatic
// tracking is switched off on every model. Seq is the surrogate primary key
// and gives list queries a stable insertion order; the public ID is a unique
// index.

type categoryRow struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"uniqueIndex;size:50;not null"`
	Title     string    `gorm:"size:100;not null"`
	Cover     string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;not null;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;not null"`
}

func (categoryRow) TableName() string { return "categories" }

type lessonRow struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement"`
	ID         string    `gorm:"uniqueIndex;size:50;not null"`
	CategoryID string    `gorm:"size:50;not null;index:idx_lessons_category"`
	Title      string    `gorm:"size:100;not null"`
	Cover      string    `gorm:"type:text;not null;default:''"`
	Content    string    `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false;not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false;not null"`
}

func (lessonRow) TableName() string { return "lessons" }

type seriesRow struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement"`
	ID         string    `gorm:"uniqueIndex;size:50;not null"`
	CategoryID string    `gorm:"size:50;not null;index:idx_series_category"`
	Title      string    `gorm:"size:100;not null"`
	Cover      string    `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false;not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false;not null"`
}

func (seriesRow) TableName() string { return "series" }

type seriesLessonRow struct {
	Seq        uint64    `gorm:"primaryKey;autoIncrement"`
	ID         string    `gorm:"uniqueIndex;size:50;not null"`
	CategoryID string    `gorm:"size:50;not null;index:idx_series_lessons_parent"`
	SeriesID   string    `gorm:"size:50;not null;index:idx_series_lessons_parent;index:idx_series_lessons_series"`
	Title      string    `gorm:"size:100;not null"`
	Cover      string    `gorm:"type:text;not null;default:''"`
	Content    string    `gorm:"type:text;not null;default:''"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false;not null"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false;not null"`
}

func (seriesLessonRow) TableName() string { return "series_lessons" }

type photoRow struct {
	Name      string    `gorm:"primaryKey;size:255"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;not null;index"`
}

func (photoRow) TableName() string { return "photos" }

func allModels() []interface{} {
	return []interface{}{&categoryRow{}, &lessonRow{}, &seriesRow{}, &seriesLessonRow{}, &photoRow{}}
}

func fromCategory(c *catalog.Category) *categoryRow {
	return &categoryRow{ID: c.ID, Title: c.Title, Cover: c.Cover, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func (r *categoryRow) toCategory() *catalog.Category {
	return &catalog.Category{ID: r.ID, Title: r.Title, Cover: r.Cover,
		CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

func fromLesson(l *catalog.Lesson) *lessonRow {
	return &lessonRow{ID: l.ID, CategoryID: l.CategoryID, Title: l.Title, Cover: l.Cover,
		Content: l.Content, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

func (r *lessonRow) toLesson() *catalog.Lesson {
	return &catalog.Lesson{ID: r.ID, CategoryID: r.CategoryID, Title: r.Title, Cover: r.Cover,
		Content: r.Content, CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

func fromSeries(s *catalog.Series) *seriesRow {
	return &seriesRow{ID: s.ID, CategoryID: s.CategoryID, Title: s.Title, Cover: s.Cover,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
}

func (r *seriesRow) toSeries() *catalog.Series {
	return &catalog.Series{ID: r.ID, CategoryID: r.CategoryID, Title: r.Title, Cover: r.Cover,
		CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

func fromSeriesLesson(l *catalog.SeriesLesson) *seriesLessonRow {
	return &seriesLessonRow{ID: l.ID, CategoryID: l.CategoryID, SeriesID: l.SeriesID, Title: l.Title,
		Cover: l.Cover, Content: l.Content, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}

func (r *seriesLessonRow) toSeriesLesson() *catalog.SeriesLesson {
	return &catalog.SeriesLesson{ID: r.ID, CategoryID: r.CategoryID, SeriesID: r.SeriesID, Title: r.Title,
		Cover: r.Cover, Content: r.Content, CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}
