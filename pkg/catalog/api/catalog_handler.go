package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// CatalogHandler handles HTTP requests for categories, lessons, series and
// series lessons
type CatalogHandler struct {
	service catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// CategoryRoutes returns the routes mounted at /api/categories
func (h *CatalogHandler) CategoryRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCategories)
	r.Post("/", h.CreateCategory)
	r.Get("/utils/map", h.GetCatalogMap)
	r.Get("/{id}", h.GetCategory)
	r.Patch("/{id}", h.UpdateCategory)
	r.Delete("/{id}", h.DeleteCategory)
	return r
}

// LessonRoutes returns the routes mounted at /api/lessons
func (h *CatalogHandler) LessonRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateLesson)
	r.Get("/{categoryId}", h.ListLessons)
	r.Get("/{categoryId}/{id}", h.GetLesson)
	r.Patch("/{categoryId}/{id}", h.UpdateLesson)
	r.Patch("/{categoryId}/{id}/content", h.UpdateLessonContent)
	r.Delete("/{id}", h.DeleteLesson)
	return r
}

// SeriesRoutes returns the routes mounted at /api/series
func (h *CatalogHandler) SeriesRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateSeries)
	r.Get("/{categoryId}", h.ListSeries)
	r.Get("/{categoryId}/{id}", h.GetSeries)
	r.Patch("/{categoryId}/{id}", h.UpdateSeries)
	r.Delete("/{id}", h.DeleteSeries)
	return r
}

// SeriesLessonRoutes returns the routes mounted at /api/seriesLessons
func (h *CatalogHandler) SeriesLessonRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateSeriesLesson)
	r.Get("/{categoryId}/{seriesId}", h.ListSeriesLessons)
	r.Get("/{categoryId}/{seriesId}/{id}", h.GetSeriesLesson)
	r.Patch("/{categoryId}/{seriesId}/{id}", h.UpdateSeriesLesson)
	r.Patch("/{categoryId}/{seriesId}/{id}/content", h.UpdateSeriesLessonContent)
	r.Delete("/{id}", h.DeleteSeriesLesson)
	return r
}

func location(prefix string, segments ...string) string {
	loc := prefix
	for _, s := range segments {
		loc += "/" + url.PathEscape(s)
	}
	return loc
}

// mismatch reports a body id that disagrees with the path.
func mismatch(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i] != pairs[i+1] {
			return fmt.Errorf("%w: body %q does not match path %q", catalog.ErrIDMismatch, pairs[i+1], pairs[i])
		}
	}
	return nil
}

// Categories

// ListCategories returns every category
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, categories)
}

// GetCatalogMap returns the denormalized catalog tree
func (h *CatalogHandler) GetCatalogMap(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.GetCatalogMap(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, m)
}

// GetCategory returns one category
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, category)
}

// CreateCategory creates a new category
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), catalog.CreateCategoryRequest{
		ID:    req.ID,
		Title: req.Title,
		Cover: req.Cover,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Category created", "category_id", category.ID)
	created(w, r, location("/api/categories", category.ID), category)
}

// UpdateCategory updates title and cover of a category
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateCategoryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := mismatch(id, req.ID); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.UpdateCategory(r.Context(), id, catalog.Patch{
		ID:    req.ID,
		Title: req.Title,
		Cover: req.Cover,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteCategory deletes a category with all of its lessons and series
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Category deleted", "category_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Lessons

// ListLessons returns the lessons of a category without content
func (h *CatalogHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListLessons(r.Context(), chi.URLParam(r, "categoryId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, lessonSummaries(lessons))
}

// GetLesson returns one lesson including its content
func (h *CatalogHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.service.GetLesson(r.Context(), chi.URLParam(r, "categoryId"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, lesson)
}

// CreateLesson creates a new lesson
func (h *CatalogHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req CreateLessonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), catalog.CreateLessonRequest{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Cover:      req.Cover,
		Content:    req.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Lesson created", "lesson_id", lesson.ID, "category_id", lesson.CategoryID)
	created(w, r, location("/api/lessons", lesson.CategoryID, lesson.ID), lesson)
}

// UpdateLesson updates title and cover of a lesson
func (h *CatalogHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	categoryID, id := chi.URLParam(r, "categoryId"), chi.URLParam(r, "id")
	var req UpdateLessonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := mismatch(id, req.ID, categoryID, req.CategoryID); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.UpdateLesson(r.Context(), id, catalog.Patch{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Cover:      req.Cover,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateLessonContent replaces the content of a lesson
func (h *CatalogHandler) UpdateLessonContent(w http.ResponseWriter, r *http.Request) {
	categoryID, id := chi.URLParam(r, "categoryId"), chi.URLParam(r, "id")
	var req UpdateContentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := mismatch(id, req.ID, categoryID, req.CategoryID); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.UpdateLesson(r.Context(), id, catalog.Patch{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		Content:    req.Content,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteLesson deletes a lesson
func (h *CatalogHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLesson(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Series

// ListSeries returns the series of a category
func (h *CatalogHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.ListSeries(r.Context(), chi.URLParam(r, "categoryId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, series)
}

// GetSeries returns one series
func (h *CatalogHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.service.GetSeries(r.Context(), chi.URLParam(r, "categoryId"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, series)
}

// CreateSeries creates a new series
func (h *CatalogHandler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	var req CreateSeriesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	series, err := h.service.CreateSeries(r.Context(), catalog.CreateSeriesRequest{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Cover:      req.Cover,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Series created", "series_id", series.ID, "category_id", series.CategoryID)
	created(w, r, location("/api/series", series.CategoryID, series.ID), series)
}

// UpdateSeries updates title and cover of a series
func (h *CatalogHandler) UpdateSeries(w http.ResponseWriter, r *http.Request) {
	categoryID, id := chi.URLParam(r, "categoryId"), chi.URLParam(r, "id")
	var req UpdateLessonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := mismatch(id, req.ID, categoryID, req.CategoryID); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.UpdateSeries(r.Context(), id, catalog.Patch{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		Title:      req.Title,
		Cover:      req.Cover,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSeries deletes a series and its series lessons
func (h *CatalogHandler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteSeries(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("Series deleted", "series_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Series lessons

// ListSeriesLessons returns the lessons of a series without content
func (h *CatalogHandler) ListSeriesLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListSeriesLessons(r.Context(), chi.URLParam(r, "categoryId"), chi.URLParam(r, "seriesId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, seriesLessonSummaries(lessons))
}

// GetSeriesLesson returns one series lesson including its content
func (h *CatalogHandler) GetSeriesLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.service.GetSeriesLesson(r.Context(),
		chi.URLParam(r, "categoryId"), chi.URLParam(r, "seriesId"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, lesson)
}

// CreateSeriesLesson creates a new series lesson
func (h *CatalogHandler) CreateSeriesLesson(w http.ResponseWriter, r *http.Request) {
	var req CreateSeriesLessonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	lesson, err := h.service.CreateSeriesLesson(r.Context(), catalog.CreateSeriesLessonRequest{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		SeriesID:   req.SeriesID,
		Title:      req.Title,
		Cover:      req.Cover,
		Content:    req.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Series lesson created", "series_lesson_id", lesson.ID, "series_id", lesson.SeriesID)
	created(w, r, location("/api/seriesLessons", lesson.CategoryID, lesson.SeriesID, lesson.ID), lesson)
}

// UpdateSeriesLesson updates title and cover of a series lesson
func (h *CatalogHandler) UpdateSeriesLesson(w http.ResponseWriter, r *http.Request) {
	categoryID, seriesID, id := chi.URLParam(r, "categoryId"), chi.URLParam(r, "seriesId"), chi.URLParam(r, "id")
	var req UpdateSeriesLessonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := mismatch(id, req.ID, categoryID, req.CategoryID, seriesID, req.SeriesID); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.UpdateSeriesLesson(r.Context(), id, catalog.Patch{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		SeriesID:   req.SeriesID,
		Title:      req.Title,
		Cover:      req.Cover,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateSeriesLessonContent replaces the content of a series lesson
func (h *CatalogHandler) UpdateSeriesLessonContent(w http.ResponseWriter, r *http.Request) {
	categoryID, seriesID, id := chi.URLParam(r, "categoryId"), chi.URLParam(r, "seriesId"), chi.URLParam(r, "id")
	var req UpdateContentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := mismatch(id, req.ID, categoryID, req.CategoryID, seriesID, req.SeriesID); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.UpdateSeriesLesson(r.Context(), id, catalog.Patch{
		ID:         req.ID,
		CategoryID: req.CategoryID,
		SeriesID:   req.SeriesID,
		Content:    req.Content,
	}); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSeriesLesson deletes a series lesson
func (h *CatalogHandler) DeleteSeriesLesson(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSeriesLesson(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
