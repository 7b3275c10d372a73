package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// service implements the Service interface
type service struct {
	store         Store
	eventSink     EventSink
	logger        *slog.Logger
	clock         *stamper
	seriesCascade SeriesCascade
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithStore sets the entity store for the service
func WithStore(store Store) Option {
	return func(s *service) {
		s.store = store
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger used for non-fatal failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for createdAt and updatedAt
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.clock = newStamper(now)
	}
}

// WithSeriesCascade selects which SeriesLessons DeleteSeries removes
func WithSeriesCascade(cascade SeriesCascade) Option {
	return func(s *service) {
		s.seriesCascade = cascade
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink:     NewNoopEventSink(),
		logger:        slog.Default(),
		clock:         newStamper(nil),
		seriesCascade: SeriesCascadeByCategoryKey,
	}

	for _, option := range options {
		option(s)
	}

	if s.store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if _, err := ParseSeriesCascade(string(s.seriesCascade)); err != nil {
		return nil, err
	}

	return s, nil
}

// Category operations

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if err := req.validate(); err != nil {
		return nil, &EntityError{Entity: KindCategory, ID: req.ID, Op: "create", Err: err}
	}

	now := s.clock.next(time.Time{})
	category := &Category{
		ID:        req.ID,
		Title:     req.Title,
		Cover:     req.Cover,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, &EntityError{Entity: KindCategory, ID: req.ID, Op: "create", Err: err}
	}

	s.emit(ctx, EventCreated, KindCategory, category.ID, "")
	return category, nil
}

func (s *service) GetCategory(ctx context.Context, id string) (*Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, &EntityError{Entity: KindCategory, ID: id, Op: "get", Err: err}
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, patch Patch) (*Category, error) {
	if err := patch.validate(id); err != nil {
		return nil, &EntityError{Entity: KindCategory, ID: id, Op: "update", Err: err}
	}

	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, &EntityError{Entity: KindCategory, ID: id, Op: "update", Err: err}
	}

	patch.apply(&category.Title, &category.Cover, nil)
	category.UpdatedAt = s.clock.next(category.UpdatedAt)

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, s.updateFailed(ctx, KindCategory, id, err, s.categoryExists)
	}

	s.emit(ctx, EventUpdated, KindCategory, id, "")
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return &EntityError{Entity: KindCategory, ID: id, Op: "delete", Err: err}
	}

	var seriesLessons, series, lessons int
	err := s.store.WithinTx(ctx, func(tx Store) error {
		var err error
		if seriesLessons, err = tx.DeleteSeriesLessonsByCategory(ctx, id); err != nil {
			return err
		}
		if series, err = tx.DeleteSeriesByCategory(ctx, id); err != nil {
			return err
		}
		if lessons, err = tx.DeleteLessonsByCategory(ctx, id); err != nil {
			return err
		}
		return tx.DeleteCategory(ctx, id)
	})
	if err != nil {
		return &EntityError{Entity: KindCategory, ID: id, Op: "delete", Err: err}
	}

	s.logger.Debug("category deleted",
		"category_id", id,
		"lessons", lessons,
		"series", series,
		"series_lessons", seriesLessons)
	s.emit(ctx, EventDeleted, KindCategory, id, "")
	return nil
}

// Lesson operations

func (s *service) CreateLesson(ctx context.Context, req CreateLessonRequest) (*Lesson, error) {
	if err := req.validate(); err != nil {
		return nil, &EntityError{Entity: KindLesson, ID: req.ID, Op: "create", Err: err}
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, &EntityError{Entity: KindLesson, ID: req.ID, Op: "create", Err: err}
	}

	now := s.clock.next(time.Time{})
	lesson := &Lesson{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Cover:      req.Cover,
		Content:    req.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateLesson(ctx, lesson); err != nil {
		return nil, &EntityError{Entity: KindLesson, ID: req.ID, Op: "create", Err: err}
	}

	s.emit(ctx, EventCreated, KindLesson, lesson.ID, lesson.CategoryID)
	return lesson, nil
}

func (s *service) GetLesson(ctx context.Context, categoryID, id string) (*Lesson, error) {
	lesson, err := s.store.GetLesson(ctx, id)
	if err == nil && categoryID != "" && lesson.CategoryID != categoryID {
		err = ErrNotFound
	}
	if err != nil {
		return nil, &EntityError{Entity: KindLesson, ID: id, Op: "get", Err: err}
	}
	return lesson, nil
}

func (s *service) ListLessons(ctx context.Context, categoryID string) ([]*Lesson, error) {
	lessons, err := s.store.ListLessons(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons of category %s: %w", categoryID, err)
	}
	return lessons, nil
}

func (s *service) UpdateLesson(ctx context.Context, id string, patch Patch) (*Lesson, error) {
	if err := patch.validate(id); err != nil {
		return nil, &EntityError{Entity: KindLesson, ID: id, Op: "update", Err: err}
	}

	lesson, err := s.store.GetLesson(ctx, id)
	if err == nil && !patch.scoped(lesson.CategoryID, "") {
		err = ErrNotFound
	}
	if err != nil {
		return nil, &EntityError{Entity: KindLesson, ID: id, Op: "update", Err: err}
	}

	patch.apply(&lesson.Title, &lesson.Cover, &lesson.Content)
	lesson.UpdatedAt = s.clock.next(lesson.UpdatedAt)

	if err := s.store.UpdateLesson(ctx, lesson); err != nil {
		return nil, s.updateFailed(ctx, KindLesson, id, err, s.lessonExists)
	}

	s.emit(ctx, EventUpdated, KindLesson, id, lesson.CategoryID)
	return lesson, nil
}

func (s *service) DeleteLesson(ctx context.Context, id string) error {
	lesson, err := s.store.GetLesson(ctx, id)
	if err != nil {
		return &EntityError{Entity: KindLesson, ID: id, Op: "delete", Err: err}
	}
	if err := s.store.DeleteLesson(ctx, id); err != nil {
		return &EntityError{Entity: KindLesson, ID: id, Op: "delete", Err: err}
	}

	s.emit(ctx, EventDeleted, KindLesson, id, lesson.CategoryID)
	return nil
}

// Series operations

func (s *service) CreateSeries(ctx context.Context, req CreateSeriesRequest) (*Series, error) {
	if err := req.validate(); err != nil {
		return nil, &EntityError{Entity: KindSeries, ID: req.ID, Op: "create", Err: err}
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, &EntityError{Entity: KindSeries, ID: req.ID, Op: "create", Err: err}
	}

	now := s.clock.next(time.Time{})
	series := &Series{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Cover:      req.Cover,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateSeries(ctx, series); err != nil {
		return nil, &EntityError{Entity: KindSeries, ID: req.ID, Op: "create", Err: err}
	}

	s.emit(ctx, EventCreated, KindSeries, series.ID, series.CategoryID)
	return series, nil
}

func (s *service) GetSeries(ctx context.Context, categoryID, id string) (*Series, error) {
	series, err := s.store.GetSeries(ctx, id)
	if err == nil && categoryID != "" && series.CategoryID != categoryID {
		err = ErrNotFound
	}
	if err != nil {
		return nil, &EntityError{Entity: KindSeries, ID: id, Op: "get", Err: err}
	}
	return series, nil
}

func (s *service) ListSeries(ctx context.Context, categoryID string) ([]*Series, error) {
	series, err := s.store.ListSeries(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list series of category %s: %w", categoryID, err)
	}
	return series, nil
}

func (s *service) UpdateSeries(ctx context.Context, id string, patch Patch) (*Series, error) {
	if err := patch.validate(id); err != nil {
		return nil, &EntityError{Entity: KindSeries, ID: id, Op: "update", Err: err}
	}

	series, err := s.store.GetSeries(ctx, id)
	if err == nil && !patch.scoped(series.CategoryID, "") {
		err = ErrNotFound
	}
	if err != nil {
		return nil, &EntityError{Entity: KindSeries, ID: id, Op: "update", Err: err}
	}

	patch.apply(&series.Title, &series.Cover, nil)
	series.UpdatedAt = s.clock.next(series.UpdatedAt)

	if err := s.store.UpdateSeries(ctx, series); err != nil {
		return nil, s.updateFailed(ctx, KindSeries, id, err, s.seriesExists)
	}

	s.emit(ctx, EventUpdated, KindSeries, id, series.CategoryID)
	return series, nil
}

func (s *service) DeleteSeries(ctx context.Context, id string) error {
	series, err := s.store.GetSeries(ctx, id)
	if err != nil {
		return &EntityError{Entity: KindSeries, ID: id, Op: "delete", Err: err}
	}

	var removed int
	err = s.store.WithinTx(ctx, func(tx Store) error {
		var err error
		if s.seriesCascade == SeriesCascadeBySeriesKey {
			removed, err = tx.DeleteSeriesLessonsBySeries(ctx, id)
		} else {
			removed, err = tx.DeleteSeriesLessonsByCategory(ctx, id)
		}
		if err != nil {
			return err
		}
		return tx.DeleteSeries(ctx, id)
	})
	if err != nil {
		return &EntityError{Entity: KindSeries, ID: id, Op: "delete", Err: err}
	}

	s.logger.Debug("series deleted",
		"series_id", id,
		"cascade", s.seriesCascade,
		"series_lessons", removed)
	s.emit(ctx, EventDeleted, KindSeries, id, series.CategoryID)
	return nil
}

// SeriesLesson operations

func (s *service) CreateSeriesLesson(ctx context.Context, req CreateSeriesLessonRequest) (*SeriesLesson, error) {
	if err := req.validate(); err != nil {
		return nil, &EntityError{Entity: KindSeriesLesson, ID: req.ID, Op: "create", Err: err}
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, &EntityError{Entity: KindSeriesLesson, ID: req.ID, Op: "create", Err: err}
	}
	series, err := s.store.GetSeries(ctx, req.SeriesID)
	if errors.Is(err, ErrNotFound) {
		err = fmt.Errorf("%w: series %q does not exist", ErrInvalidParent, req.SeriesID)
	} else if err == nil && series.CategoryID != req.CategoryID {
		err = fmt.Errorf("%w: series %q belongs to category %q, not %q",
			ErrInvalidParent, req.SeriesID, series.CategoryID, req.CategoryID)
	}
	if err != nil {
		return nil, &EntityError{Entity: KindSeriesLesson, ID: req.ID, Op: "create", Err: err}
	}

	now := s.clock.next(time.Time{})
	lesson := &SeriesLesson{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		SeriesID:   req.SeriesID,
		Title:      req.Title,
		Cover:      req.Cover,
		Content:    req.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateSeriesLesson(ctx, lesson); err != nil {
		return nil, &EntityError{Entity: KindSeriesLesson, ID: req.ID, Op: "create", Err: err}
	}

	s.emit(ctx, EventCreated, KindSeriesLesson, lesson.ID, lesson.SeriesID)
	return lesson, nil
}

func (s *service) GetSeriesLesson(ctx context.Context, categoryID, seriesID, id string) (*SeriesLesson, error) {
	lesson, err := s.store.GetSeriesLesson(ctx, id)
	if err == nil {
		if (categoryID != "" && lesson.CategoryID != categoryID) || (seriesID != "" && lesson.SeriesID != seriesID) {
			err = ErrNotFound
		}
	}
	if err != nil {
		return nil, &EntityError{Entity: KindSeriesLesson, ID: id, Op: "get", Err: err}
	}
	return lesson, nil
}

func (s *service) ListSeriesLessons(ctx context.Context, categoryID, seriesID string) ([]*SeriesLesson, error) {
	lessons, err := s.store.ListSeriesLessons(ctx, categoryID, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons of series %s: %w", seriesID, err)
	}
	return lessons, nil
}

func (s *service) UpdateSeriesLesson(ctx context.Context, id string, patch Patch) (*SeriesLesson, error) {
	if err := patch.validate(id); err != nil {
		return nil, &EntityError{Entity: KindSeriesLesson, ID: id, Op: "update", Err: err}
	}

	lesson, err := s.store.GetSeriesLesson(ctx, id)
	if err == nil && !patch.scoped(lesson.CategoryID, lesson.SeriesID) {
		err = ErrNotFound
	}
	if err != nil {
		return nil, &EntityError{Entity: KindSeriesLesson, ID: id, Op: "update", Err: err}
	}

	patch.apply(&lesson.Title, &lesson.Cover, &lesson.Content)
	lesson.UpdatedAt = s.clock.next(lesson.UpdatedAt)

	if err := s.store.UpdateSeriesLesson(ctx, lesson); err != nil {
		return nil, s.updateFailed(ctx, KindSeriesLesson, id, err, s.seriesLessonExists)
	}

	s.emit(ctx, EventUpdated, KindSeriesLesson, id, lesson.SeriesID)
	return lesson, nil
}

func (s *service) DeleteSeriesLesson(ctx context.Context, id string) error {
	lesson, err := s.store.GetSeriesLesson(ctx, id)
	if err != nil {
		return &EntityError{Entity: KindSeriesLesson, ID: id, Op: "delete", Err: err}
	}
	if err := s.store.DeleteSeriesLesson(ctx, id); err != nil {
		return &EntityError{Entity: KindSeriesLesson, ID: id, Op: "delete", Err: err}
	}

	s.emit(ctx, EventDeleted, KindSeriesLesson, id, lesson.SeriesID)
	return nil
}

// Internal helper methods

func (s *service) requireCategory(ctx context.Context, id string) error {
	_, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: category %q does not exist", ErrInvalidParent, id)
	}
	return err
}

// updateFailed classifies a failed store update. A failure that is not
// already ErrNotFound is followed by one existence re-check so that an entity
// deleted concurrently reports ErrNotFound instead of the raw failure.
func (s *service) updateFailed(ctx context.Context, kind EntityKind, id string, err error, exists func(context.Context, string) error) error {
	if !errors.Is(err, ErrNotFound) {
		if rerr := exists(ctx, id); errors.Is(rerr, ErrNotFound) {
			err = rerr
		}
	}
	return &EntityError{Entity: kind, ID: id, Op: "update", Err: err}
}

func (s *service) categoryExists(ctx context.Context, id string) error {
	_, err := s.store.GetCategory(ctx, id)
	return err
}

func (s *service) lessonExists(ctx context.Context, id string) error {
	_, err := s.store.GetLesson(ctx, id)
	return err
}

func (s *service) seriesExists(ctx context.Context, id string) error {
	_, err := s.store.GetSeries(ctx, id)
	return err
}

func (s *service) seriesLessonExists(ctx context.Context, id string) error {
	_, err := s.store.GetSeriesLesson(ctx, id)
	return err
}

func (s *service) emit(ctx context.Context, typ EventType, kind EntityKind, id, parentID string) {
	if s.eventSink == nil {
		return
	}
	event := Event{Type: typ, Entity: kind, ID: id, ParentID: parentID, At: time.Now().UTC()}
	if err := s.eventSink.Publish(ctx, event); err != nil {
		// Log error but don't fail the operation
		s.logger.Warn("failed to publish catalog event",
			"type", typ,
			"entity", kind,
			"id", id,
			"error", err)
	}
}
