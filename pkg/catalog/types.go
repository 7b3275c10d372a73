package catalog

import (
	"fmt"
	"time"
)

// Category is the root of the catalog hierarchy.
type Category struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Cover     string    `json:"cover,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Lesson is a standalone content unit under a Category.
type Lesson struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	Title      string    `json:"title"`
	Cover      string    `json:"cover,omitempty"`
	Content    string    `json:"content,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Series groups SeriesLessons under a Category.
type Series struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	Title      string    `json:"title"`
	Cover      string    `json:"cover,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// SeriesLesson is a content unit under a Series. CategoryID is denormalized
// from the owning Series.
type SeriesLesson struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	SeriesID   string    `json:"seriesId"`
	Title      string    `json:"title"`
	Cover      string    `json:"cover,omitempty"`
	Content    string    `json:"content,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Photo is a registry entry for a stored upload.
type Photo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapCategory is one Category in the denormalized catalog map.
type MapCategory struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Cover     string      `json:"cover,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Lessons   []MapLesson `json:"lessons"`
	Series    []MapSeries `json:"series"`
}

// MapLesson carries the identity and trace fields of a Lesson.
type MapLesson struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	Title      string    `json:"title"`
	Cover      string    `json:"cover,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// MapSeries carries the identity and trace fields of a Series together with
// its SeriesLessons.
type MapSeries struct {
	ID            string            `json:"id"`
	CategoryID    string            `json:"categoryId"`
	Title         string            `json:"title"`
	Cover         string            `json:"cover,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	SeriesLessons []MapSeriesLesson `json:"seriesLessons"`
}

// MapSeriesLesson carries the identity and trace fields of a SeriesLesson.
type MapSeriesLesson struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"categoryId"`
	SeriesID   string    `json:"seriesId"`
	Title      string    `json:"title"`
	Cover      string    `json:"cover,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EntityKind names one of the catalog entity namespaces.
type EntityKind string

const (
	KindCategory     EntityKind = "category"
	KindLesson       EntityKind = "lesson"
	KindSeries       EntityKind = "series"
	KindSeriesLesson EntityKind = "seriesLesson"
	KindPhoto        EntityKind = "photo"
)

// EventType describes a catalog mutation.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// Event is published after a successful mutation.
type Event struct {
	Type     EventType  `json:"type"`
	Entity   EntityKind `json:"entity"`
	ID       string     `json:"id"`
	ParentID string     `json:"parentId,omitempty"`
	At       time.Time  `json:"at"`
}

// SeriesCascade selects which SeriesLessons are removed with a Series.
type SeriesCascade string

const (
	// SeriesCascadeByCategoryKey removes SeriesLessons whose categoryId equals
	// the deleted Series id. SeriesLessons of the Series that carry the real
	// category id are left in place.
	SeriesCascadeByCategoryKey SeriesCascade = "category"

	// SeriesCascadeBySeriesKey removes SeriesLessons whose seriesId equals the
	// deleted Series id.
	SeriesCascadeBySeriesKey SeriesCascade = "series"
)

// ParseSeriesCascade parses a SeriesCascade name. The empty string selects the
// default.
func ParseSeriesCascade(s string) (SeriesCascade, error) {
	switch SeriesCascade(s) {
	case "":
		return SeriesCascadeByCategoryKey, nil
	case SeriesCascadeByCategoryKey, SeriesCascadeBySeriesKey:
		return SeriesCascade(s), nil
	}
	return "", fmt.Errorf("unknown series cascade %q", s)
}
