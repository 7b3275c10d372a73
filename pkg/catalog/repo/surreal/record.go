package surreal

import (
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

const (
	tableCategories    = "categories"
	tableLessons       = "lessons"
	tableSeries        = "series"
	tableSeriesLessons = "series_lessons"
	tablePhotos        = "photos"
)

// record is the stored shape shared by every catalog table; unused fields
// stay empty.
type record struct {
	ID         *models.RecordID `json:"id,omitempty"`
	CategoryID string           `json:"category_id,omitempty"`
	SeriesID   string           `json:"series_id,omitempty"`
	Title      string           `json:"title,omitempty"`
	Cover      string           `json:"cover,omitempty"`
	Content    string           `json:"content,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (r *record) key() string {
	if r.ID == nil {
		return ""
	}
	if s, ok := r.ID.ID.(string); ok {
		return s
	}
	return fmt.Sprint(r.ID.ID)
}

func (r *record) toCategory() *catalog.Category {
	return &catalog.Category{ID: r.key(), Title: r.Title, Cover: r.Cover,
		CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

func (r *record) toLesson() *catalog.Lesson {
	return &catalog.Lesson{ID: r.key(), CategoryID: r.CategoryID, Title: r.Title, Cover: r.Cover,
		Content: r.Content, CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

func (r *record) toSeries() *catalog.Series {
	return &catalog.Series{ID: r.key(), CategoryID: r.CategoryID, Title: r.Title, Cover: r.Cover,
		CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

func (r *record) toSeriesLesson() *catalog.SeriesLesson {
	return &catalog.SeriesLesson{ID: r.key(), CategoryID: r.CategoryID, SeriesID: r.SeriesID, Title: r.Title,
		Cover: r.Cover, Content: r.Content, CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

func (r *record) toPhoto() *catalog.Photo {
	return &catalog.Photo{Name: r.key(), CreatedAt: r.CreatedAt.UTC()}
}

func categoryContent(c *catalog.Category) map[string]any {
	return map[string]any{
		"title": c.Title, "cover": c.Cover,
		"created_at": c.CreatedAt, "updated_at": c.UpdatedAt,
	}
}

func lessonContent(l *catalog.Lesson) map[string]any {
	return map[string]any{
		"category_id": l.CategoryID, "title": l.Title, "cover": l.Cover, "content": l.Content,
		"created_at": l.CreatedAt, "updated_at": l.UpdatedAt,
	}
}

func seriesContent(s *catalog.Series) map[string]any {
	return map[string]any{
		"category_id": s.CategoryID, "title": s.Title, "cover": s.Cover,
		"created_at": s.CreatedAt, "updated_at": s.UpdatedAt,
	}
}

func seriesLessonContent(l *catalog.SeriesLesson) map[string]any {
	return map[string]any{
		"category_id": l.CategoryID, "series_id": l.SeriesID, "title": l.Title, "cover": l.Cover,
		"content": l.Content, "created_at": l.CreatedAt, "updated_at": l.UpdatedAt,
	}
}

// snapshot is the result of the single statement that reads every table.
type snapshot struct {
	Categories    []record `json:"categories"`
	Lessons       []record `json:"lessons"`
	Series        []record `json:"series"`
	SeriesLessons []record `json:"series_lessons"`
	Photos        []record `json:"photos"`
}
