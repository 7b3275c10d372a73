// Package gormstore implements catalog.Store on GORM, for SQLite and MySQL
// deployments.
package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// Store implements catalog.Store using GORM.
type Store struct {
	db      *gorm.DB
	backend string
}

// New wraps an open GORM handle. Call Migrate before first use.
func New(db *gorm.DB) *Store {
	return &Store{db: db, backend: db.Dialector.Name()}
}

// Open connects with the given dialector.
func Open(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialector.Name(), err)
	}
	return New(db), nil
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(path string) (*Store, error) {
	return Open(sqlite.Open(path))
}

// OpenMySQL opens a MySQL database. dsn uses the go-sql-driver format and
// must include parseTime=true.
func OpenMySQL(dsn string) (*Store, error) {
	precision := 6
	return Open(mysql.New(mysql.Config{
		DSN:                      dsn,
		DefaultDatetimePrecision: &precision,
	}))
}

// Migrate creates or updates the catalog tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels()...); err != nil {
		return catalog.NewStorageError(s.backend, "migrate", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return catalog.NewStorageError(s.backend, "ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return catalog.NewStorageError(s.backend, "ping", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) fail(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return catalog.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return catalog.ErrConflict
	}
	return catalog.NewStorageError(s.backend, op, err)
}

// insert adds row, reporting ErrConflict when the key already exists.
func (s *Store) insert(ctx context.Context, op string, row interface{}) error {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return s.fail(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return catalog.ErrConflict
	}
	return nil
}

func (s *Store) first(ctx context.Context, op string, dest interface{}, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(dest).Error; err != nil {
		return s.fail(op, err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, op string, model interface{}, id string, fields map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return s.fail(op, res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows when nothing changed.
		var n int64
		if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
			return s.fail(op, err)
		}
		if n == 0 {
			return catalog.ErrNotFound
		}
	}
	return nil
}

func (s *Store) remove(ctx context.Context, op string, model interface{}, query string, arg string) (int, error) {
	res := s.db.WithContext(ctx).Where(query, arg).Delete(model)
	if res.Error != nil {
		return 0, s.fail(op, res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *Store) removeOne(ctx context.Context, op string, model interface{}, id string) error {
	n, err := s.remove(ctx, op, model, "id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Category operations

func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	return s.insert(ctx, "create category", fromCategory(c))
}

func (s *Store) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	var row categoryRow
	if err := s.first(ctx, "get category", &row, id); err != nil {
		return nil, err
	}
	return row.toCategory(), nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	var rows []categoryRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, s.fail("list categories", err)
	}
	result := make([]*catalog.Category, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toCategory())
	}
	return result, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	return s.update(ctx, "update category", &categoryRow{}, c.ID, map[string]interface{}{
		"title": c.Title, "cover": c.Cover, "updated_at": c.UpdatedAt,
	})
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.removeOne(ctx, "delete category", &categoryRow{}, id)
}

// Lesson operations

func (s *Store) CreateLesson(ctx context.Context, l *catalog.Lesson) error {
	return s.insert(ctx, "create lesson", fromLesson(l))
}

func (s *Store) GetLesson(ctx context.Context, id string) (*catalog.Lesson, error) {
	var row lessonRow
	if err := s.first(ctx, "get lesson", &row, id); err != nil {
		return nil, err
	}
	return row.toLesson(), nil
}

func (s *Store) ListLessons(ctx context.Context, categoryID string) ([]*catalog.Lesson, error) {
	var rows []lessonRow
	err := s.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("seq").Find(&rows).Error
	if err != nil {
		return nil, s.fail("list lessons", err)
	}
	result := make([]*catalog.Lesson, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toLesson())
	}
	return result, nil
}

func (s *Store) UpdateLesson(ctx context.Context, l *catalog.Lesson) error {
	return s.update(ctx, "update lesson", &lessonRow{}, l.ID, map[string]interface{}{
		"title": l.Title, "cover": l.Cover, "content": l.Content, "updated_at": l.UpdatedAt,
	})
}

func (s *Store) DeleteLesson(ctx context.Context, id string) error {
	return s.removeOne(ctx, "delete lesson", &lessonRow{}, id)
}

func (s *Store) DeleteLessonsByCategory(ctx context.Context, categoryID string) (int, error) {
	return s.remove(ctx, "delete lessons", &lessonRow{}, "category_id = ?", categoryID)
}

// Series operations

func (s *Store) CreateSeries(ctx context.Context, sr *catalog.Series) error {
	return s.insert(ctx, "create series", fromSeries(sr))
}

func (s *Store) GetSeries(ctx context.Context, id string) (*catalog.Series, error) {
	var row seriesRow
	if err := s.first(ctx, "get series", &row, id); err != nil {
		return nil, err
	}
	return row.toSeries(), nil
}

func (s *Store) ListSeries(ctx context.Context, categoryID string) ([]*catalog.Series, error) {
	var rows []seriesRow
	err := s.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("seq").Find(&rows).Error
	if err != nil {
		return nil, s.fail("list series", err)
	}
	result := make([]*catalog.Series, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toSeries())
	}
	return result, nil
}

func (s *Store) UpdateSeries(ctx context.Context, sr *catalog.Series) error {
	return s.update(ctx, "update series", &seriesRow{}, sr.ID, map[string]interface{}{
		"title": sr.Title, "cover": sr.Cover, "updated_at": sr.UpdatedAt,
	})
}

func (s *Store) DeleteSeries(ctx context.Context, id string) error {
	return s.removeOne(ctx, "delete series", &seriesRow{}, id)
}

func (s *Store) DeleteSeriesByCategory(ctx context.Context, categoryID string) (int, error) {
	return s.remove(ctx, "delete series", &seriesRow{}, "category_id = ?", categoryID)
}

// SeriesLesson operations

func (s *Store) CreateSeriesLesson(ctx context.Context, l *catalog.SeriesLesson) error {
	return s.insert(ctx, "create series lesson", fromSeriesLesson(l))
}

func (s *Store) GetSeriesLesson(ctx context.Context, id string) (*catalog.SeriesLesson, error) {
	var row seriesLessonRow
	if err := s.first(ctx, "get series lesson", &row, id); err != nil {
		return nil, err
	}
	return row.toSeriesLesson(), nil
}

func (s *Store) ListSeriesLessons(ctx context.Context, categoryID, seriesID string) ([]*catalog.SeriesLesson, error) {
	var rows []seriesLessonRow
	err := s.db.WithContext(ctx).
		Where("category_id = ? AND series_id = ?", categoryID, seriesID).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, s.fail("list series lessons", err)
	}
	result := make([]*catalog.SeriesLesson, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toSeriesLesson())
	}
	return result, nil
}

func (s *Store) UpdateSeriesLesson(ctx context.Context, l *catalog.SeriesLesson) error {
	return s.update(ctx, "update series lesson", &seriesLessonRow{}, l.ID, map[string]interface{}{
		"title": l.Title, "cover": l.Cover, "content": l.Content, "updated_at": l.UpdatedAt,
	})
}

func (s *Store) DeleteSeriesLesson(ctx context.Context, id string) error {
	return s.removeOne(ctx, "delete series lesson", &seriesLessonRow{}, id)
}

func (s *Store) DeleteSeriesLessonsByCategory(ctx context.Context, categoryID string) (int, error) {
	return s.remove(ctx, "delete series lessons", &seriesLessonRow{}, "category_id = ?", categoryID)
}

func (s *Store) DeleteSeriesLessonsBySeries(ctx context.Context, seriesID string) (int, error) {
	return s.remove(ctx, "delete series lessons", &seriesLessonRow{}, "series_id = ?", seriesID)
}

// Photo registry operations

func (s *Store) CreatePhoto(ctx context.Context, p *catalog.Photo) error {
	row := &photoRow{Name: p.Name, CreatedAt: p.CreatedAt}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return s.fail("create photo", err)
	}
	return nil
}

func (s *Store) ListPhotos(ctx context.Context) ([]*catalog.Photo, error) {
	var rows []photoRow
	if err := s.db.WithContext(ctx).Order("created_at DESC, name").Find(&rows).Error; err != nil {
		return nil, s.fail("list photos", err)
	}
	result := make([]*catalog.Photo, 0, len(rows))
	for _, r := range rows {
		result = append(result, &catalog.Photo{Name: r.Name, CreatedAt: r.CreatedAt.UTC()})
	}
	return result, nil
}

func (s *Store) DeletePhoto(ctx context.Context, name string) error {
	n, err := s.remove(ctx, "delete photo", &photoRow{}, "name = ?", name)
	if err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Transactions

// WithinTx runs fn inside a transaction. Nested calls use savepoints.
func (s *Store) WithinTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, backend: s.backend})
	})
}

// Snapshot runs fn inside a read-only transaction.
func (s *Store) Snapshot(ctx context.Context, fn func(view catalog.Store) error) error {
	opts := &sql.TxOptions{ReadOnly: true}
	if s.backend == "mysql" {
		opts.Isolation = sql.LevelRepeatableRead
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, backend: s.backend})
	}, opts)
}
