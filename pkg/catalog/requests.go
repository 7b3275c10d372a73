package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxIDLength is the longest accepted entity id, in characters.
	MaxIDLength = 50
	// MaxTitleLength is the longest accepted title, in characters.
	MaxTitleLength = 100
)

// CreateCategoryRequest contains parameters for creating a Category
type CreateCategoryRequest struct {
	ID    string
	Title string
	Cover string
}

// CreateLessonRequest contains parameters for creating a Lesson
type CreateLessonRequest struct {
	ID         string
	CategoryID string
	Title      string
	Cover      string
	Content    string
}

// CreateSeriesRequest contains parameters for creating a Series
type CreateSeriesRequest struct {
	ID         string
	CategoryID string
	Title      string
	Cover      string
}

// CreateSeriesLessonRequest contains parameters for creating a SeriesLesson
type CreateSeriesLessonRequest struct {
	ID         string
	CategoryID string
	SeriesID   string
	Title      string
	Cover      string
	Content    string
}

// Patch describes an update of the mutable fields of an entity. Nil fields
// are left unchanged. Content is ignored for Categories and Series.
//
// ID, CategoryID and SeriesID address the target and are never written: a
// non-empty ID that differs from the updated id fails with ErrIDMismatch, and
// a non-empty CategoryID or SeriesID that differs from the stored parent
// fails with ErrNotFound.
type Patch struct {
	ID         string
	CategoryID string
	SeriesID   string

	Title   *string
	Cover   *string
	Content *string
}

func (p Patch) validate(id string) error {
	if p.ID != "" && p.ID != id {
		return fmt.Errorf("%w: body id %q does not match %q", ErrIDMismatch, p.ID, id)
	}
	if p.Title != nil {
		if err := checkText("title", *p.Title, MaxTitleLength); err != nil {
			return err
		}
	}
	return nil
}

func (p Patch) scoped(categoryID, seriesID string) bool {
	if p.CategoryID != "" && p.CategoryID != categoryID {
		return false
	}
	if p.SeriesID != "" && p.SeriesID != seriesID {
		return false
	}
	return true
}

func (p Patch) apply(title, cover, content *string) {
	if p.Title != nil {
		*title = *p.Title
	}
	if p.Cover != nil {
		*cover = *p.Cover
	}
	if p.Content != nil && content != nil {
		*content = *p.Content
	}
}

func checkText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, max)
	}
	return nil
}

func checkIDs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := checkText(pairs[i], pairs[i+1], MaxIDLength); err != nil {
			return err
		}
	}
	return nil
}

func (r CreateCategoryRequest) validate() error {
	if err := checkIDs("id", r.ID); err != nil {
		return err
	}
	return checkText("title", r.Title, MaxTitleLength)
}

func (r CreateLessonRequest) validate() error {
	if err := checkIDs("id", r.ID, "categoryId", r.CategoryID); err != nil {
		return err
	}
	return checkText("title", r.Title, MaxTitleLength)
}

func (r CreateSeriesRequest) validate() error {
	if err := checkIDs("id", r.ID, "categoryId", r.CategoryID); err != nil {
		return err
	}
	return checkText("title", r.Title, MaxTitleLength)
}

func (r CreateSeriesLessonRequest) validate() error {
	if err := checkIDs("id", r.ID, "categoryId", r.CategoryID, "seriesId", r.SeriesID); err != nil {
		return err
	}
	return checkText("title", r.Title, MaxTitleLength)
}
