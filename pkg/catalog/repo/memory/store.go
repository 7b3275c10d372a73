package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

var errReadOnly = errors.New("write through read-only snapshot")

type locker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type nopLocker struct{}

func (nopLocker) Lock()    {}
func (nopLocker) Unlock()  {}
func (nopLocker) RLock()   {}
func (nopLocker) RUnlock() {}

type state struct {
	categories    *table[catalog.Category]
	lessons       *table[catalog.Lesson]
	series        *table[catalog.Series]
	seriesLessons *table[catalog.SeriesLesson]
	photos        map[string]catalog.Photo
}

func newState() *state {
	return &state{
		categories:    newTable[catalog.Category](),
		lessons:       newTable[catalog.Lesson](),
		series:        newTable[catalog.Series](),
		seriesLessons: newTable[catalog.SeriesLesson](),
		photos:        make(map[string]catalog.Photo),
	}
}

func (st *state) clone() *state {
	photos := make(map[string]catalog.Photo, len(st.photos))
	for name, p := range st.photos {
		photos[name] = p
	}
	return &state{
		categories:    st.categories.clone(),
		lessons:       st.lessons.clone(),
		series:        st.series.clone(),
		seriesLessons: st.seriesLessons.clone(),
		photos:        photos,
	}
}

// Store implements catalog.Store using in-memory storage. Transactions run
// against a private copy of the data that replaces the shared copy only when
// the transaction function succeeds.
type Store struct {
	mu       locker
	st       *state
	readOnly bool
	inTx     bool
}

// New creates a new in-memory store
func New() *Store {
	return &Store{mu: &sync.RWMutex{}, st: newState()}
}

func (s *Store) write(op string) error {
	if s.readOnly {
		return &catalog.StorageError{Backend: "memory", Op: op, Err: errReadOnly}
	}
	return nil
}

// Category operations

func (s *Store) CreateCategory(ctx context.Context, category *catalog.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("create_category"); err != nil {
		return err
	}

	if !s.st.categories.insert(category.ID, *category) {
		return catalog.ErrConflict
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.st.categories.get(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &category, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pointers(s.st.categories.list(nil)), nil
}

func (s *Store) UpdateCategory(ctx context.Context, category *catalog.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("update_category"); err != nil {
		return err
	}

	if !s.st.categories.put(category.ID, *category) {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("delete_category"); err != nil {
		return err
	}

	if !s.st.categories.remove(id) {
		return catalog.ErrNotFound
	}
	return nil
}

// Lesson operations

func (s *Store) CreateLesson(ctx context.Context, lesson *catalog.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("create_lesson"); err != nil {
		return err
	}

	if !s.st.lessons.insert(lesson.ID, *lesson) {
		return catalog.ErrConflict
	}
	return nil
}

func (s *Store) GetLesson(ctx context.Context, id string) (*catalog.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lesson, ok := s.st.lessons.get(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &lesson, nil
}

func (s *Store) ListLessons(ctx context.Context, categoryID string) ([]*catalog.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pointers(s.st.lessons.list(func(l catalog.Lesson) bool {
		return l.CategoryID == categoryID
	})), nil
}

func (s *Store) UpdateLesson(ctx context.Context, lesson *catalog.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("update_lesson"); err != nil {
		return err
	}

	if !s.st.lessons.put(lesson.ID, *lesson) {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteLesson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("delete_lesson"); err != nil {
		return err
	}

	if !s.st.lessons.remove(id) {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteLessonsByCategory(ctx context.Context, categoryID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("delete_lessons"); err != nil {
		return 0, err
	}

	return s.st.lessons.removeWhere(func(l catalog.Lesson) bool {
		return l.CategoryID == categoryID
	}), nil
}

// Series operations

func (s *Store) CreateSeries(ctx context.Context, series *catalog.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("create_series"); err != nil {
		return err
	}

	if !s.st.series.insert(series.ID, *series) {
		return catalog.ErrConflict
	}
	return nil
}

func (s *Store) GetSeries(ctx context.Context, id string) (*catalog.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series, ok := s.st.series.get(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &series, nil
}

func (s *Store) ListSeries(ctx context.Context, categoryID string) ([]*catalog.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pointers(s.st.series.list(func(sr catalog.Series) bool {
		return sr.CategoryID == categoryID
	})), nil
}

func (s *Store) UpdateSeries(ctx context.Context, series *catalog.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("update_series"); err != nil {
		return err
	}

	if !s.st.series.put(series.ID, *series) {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSeries(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("delete_series"); err != nil {
		return err
	}

	if !s.st.series.remove(id) {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSeriesByCategory(ctx context.Context, categoryID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("delete_series"); err != nil {
		return 0, err
	}

	return s.st.series.removeWhere(func(sr catalog.Series) bool {
		return sr.CategoryID == categoryID
	}), nil
}

// SeriesLesson operations

func (s *Store) CreateSeriesLesson(ctx context.Context, lesson *catalog.SeriesLesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("create_series_lesson"); err != nil {
		return err
	}

	if !s.st.seriesLessons.insert(lesson.ID, *lesson) {
		return catalog.ErrConflict
	}
	return nil
}

func (s *Store) GetSeriesLesson(ctx context.Context, id string) (*catalog.SeriesLesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lesson, ok := s.st.seriesLessons.get(id)
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &lesson, nil
}

func (s *Store) ListSeriesLessons(ctx context.Context, categoryID, seriesID string) ([]*catalog.SeriesLesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return pointers(s.st.seriesLessons.list(func(l catalog.SeriesLesson) bool {
		return l.CategoryID == categoryID && l.SeriesID == seriesID
	})), nil
}

func (s *Store) UpdateSeriesLesson(ctx context.Context, lesson *catalog.SeriesLesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("update_series_lesson"); err != nil {
		return err
	}

	if !s.st.seriesLessons.put(lesson.ID, *lesson) {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSeriesLesson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("delete_series_lesson"); err != nil {
		return err
	}

	if !s.st.seriesLessons.remove(id) {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSeriesLessonsByCategory(ctx context.Context, categoryID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("delete_series_lessons"); err != nil {
		return 0, err
	}

	return s.st.seriesLessons.removeWhere(func(l catalog.SeriesLesson) bool {
		return l.CategoryID == categoryID
	}), nil
}

func (s *Store) DeleteSeriesLessonsBySeries(ctx context.Context, seriesID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("delete_series_lessons"); err != nil {
		return 0, err
	}

	return s.st.seriesLessons.removeWhere(func(l catalog.SeriesLesson) bool {
		return l.SeriesID == seriesID
	}), nil
}

// Photo registry operations

func (s *Store) CreatePhoto(ctx context.Context, photo *catalog.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("create_photo"); err != nil {
		return err
	}

	if _, exists := s.st.photos[photo.Name]; !exists {
		s.st.photos[photo.Name] = *photo
	}
	return nil
}

func (s *Store) ListPhotos(ctx context.Context) ([]*catalog.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*catalog.Photo, 0, len(s.st.photos))
	for _, p := range s.st.photos {
		photo := p
		result = append(result, &photo)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Name < result[j].Name
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeletePhoto(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write("delete_photo"); err != nil {
		return err
	}

	if _, exists := s.st.photos[name]; !exists {
		return catalog.ErrNotFound
	}
	delete(s.st.photos, name)
	return nil
}

// Transactions

// WithinTx runs fn against a copy of the data while holding the write lock.
// The copy replaces the shared data only when fn returns nil, so concurrent
// readers observe either none or all of the transaction's writes.
func (s *Store) WithinTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	if s.inTx {
		if err := s.write("transaction"); err != nil {
			return err
		}
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	tx := &Store{mu: nopLocker{}, st: work, inTx: true}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Snapshot runs fn against a read-only view while holding the read lock.
func (s *Store) Snapshot(ctx context.Context, fn func(view catalog.Store) error) error {
	if s.inTx || s.readOnly {
		return fn(&Store{mu: nopLocker{}, st: s.st, readOnly: true, inTx: true})
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&Store{mu: nopLocker{}, st: s.st, readOnly: true, inTx: true})
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func pointers[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}
