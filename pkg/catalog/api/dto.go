package api

import "github.com/tendant/simple-catalog/pkg/catalog"

// CreateCategoryRequest is the request body for creating a category
type CreateCategoryRequest struct {
	ID    string `json:"id" validate:"required,max=50"`
	Title string `json:"title" validate:"required,max=100"`
	Cover string `json:"cover"`
}

// UpdateCategoryRequest is the request body for updating a category
type UpdateCategoryRequest struct {
	ID    string  `json:"id" validate:"required,max=50"`
	Title *string `json:"title" validate:"omitempty,max=100"`
	Cover *string `json:"cover"`
}

// CreateLessonRequest is the request body for creating a lesson
type CreateLessonRequest struct {
	ID         string `json:"id" validate:"required,max=50"`
	CategoryID string `json:"categoryId" validate:"required,max=50"`
	Title      string `json:"title" validate:"required,max=100"`
	Cover      string `json:"cover"`
	Content    string `json:"content"`
}

// UpdateLessonRequest is the request body for updating a lesson or series
// title and cover
type UpdateLessonRequest struct {
	ID         string  `json:"id" validate:"required,max=50"`
	CategoryID string  `json:"categoryId" validate:"required,max=50"`
	Title      *string `json:"title" validate:"omitempty,max=100"`
	Cover      *string `json:"cover"`
}

// UpdateContentRequest is the request body for replacing lesson content
type UpdateContentRequest struct {
	ID         string  `json:"id" validate:"required,max=50"`
	CategoryID string  `json:"categoryId" validate:"required,max=50"`
	SeriesID   string  `json:"seriesId" validate:"max=50"`
	Content    *string `json:"content" validate:"required"`
}

// CreateSeriesRequest is the request body for creating a series
type CreateSeriesRequest struct {
	ID         string `json:"id" validate:"required,max=50"`
	CategoryID string `json:"categoryId" validate:"required,max=50"`
	Title      string `json:"title" validate:"required,max=100"`
	Cover      string `json:"cover"`
}

// CreateSeriesLessonRequest is the request body for creating a series lesson
type CreateSeriesLessonRequest struct {
	ID         string `json:"id" validate:"required,max=50"`
	CategoryID string `json:"categoryId" validate:"required,max=50"`
	SeriesID   string `json:"seriesId" validate:"required,max=50"`
	Title      string `json:"title" validate:"required,max=100"`
	Cover      string `json:"cover"`
	Content    string `json:"content"`
}

// UpdateSeriesLessonRequest is the request body for updating a series lesson
type UpdateSeriesLessonRequest struct {
	ID         string  `json:"id" validate:"required,max=50"`
	CategoryID string  `json:"categoryId" validate:"required,max=50"`
	SeriesID   string  `json:"seriesId" validate:"required,max=50"`
	Title      *string `json:"title" validate:"omitempty,max=100"`
	Cover      *string `json:"cover"`
}

// UploadResponse is the response body for a stored upload
type UploadResponse struct {
	IsSuccess bool   `json:"isSuccess"`
	FileName  string `json:"fileName"`
}

// Lists leave content out, the way the catalog map does.

func lessonSummaries(lessons []*catalog.Lesson) []catalog.Lesson {
	out := make([]catalog.Lesson, 0, len(lessons))
	for _, l := range lessons {
		s := *l
		s.Content = ""
		out = append(out, s)
	}
	return out
}

func seriesLessonSummaries(lessons []*catalog.SeriesLesson) []catalog.SeriesLesson {
	out := make([]catalog.SeriesLesson, 0, len(lessons))
	for _, l := range lessons {
		s := *l
		s.Content = ""
		out = append(out, s)
	}
	return out
}
