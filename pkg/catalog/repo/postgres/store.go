package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

//go:embed schema.sql
var schemaSQL string

// DBTX is an interface that allows us to use either a connection pool or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

type txBeginner interface {
	BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Store implements catalog.Store using PostgreSQL
type Store struct {
	db DBTX
}

// New creates a new PostgreSQL store
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewWithPool creates a new PostgreSQL store with connection pool
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// Migrate creates the catalog tables in the current search_path if they do
// not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return s.handlePostgresError("migrate", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.db.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return s.handlePostgresError("ping", err)
	}
	return nil
}

// Error handling helper
func (s *Store) handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", catalog.ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			if strings.HasPrefix(operation, "create") {
				return fmt.Errorf("%w: %s", catalog.ErrInvalidParent, pgErr.ConstraintName)
			}
			return &catalog.StorageError{Backend: "postgres", Op: operation,
				Err: fmt.Errorf("row still referenced (%s): %w", pgErr.ConstraintName, err)}
		case "42P01": // undefined_table
			return &catalog.StorageError{Backend: "postgres", Op: operation,
				Err: fmt.Errorf("table does not exist - database migration required: %w", err)}
		}
	}

	return catalog.NewStorageError("postgres", operation, err)
}

// Category operations

func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	query := `
		INSERT INTO categories (id, title, cover, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.Exec(ctx, query, c.ID, c.Title, c.Cover, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return s.handlePostgresError("create category", err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	query := `
		SELECT id, title, cover, created_at, updated_at
		FROM categories WHERE id = $1`

	c, err := scanCategory(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, s.handlePostgresError("get category", err)
	}
	return c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	query := `
		SELECT id, title, cover, created_at, updated_at
		FROM categories ORDER BY seq`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, s.handlePostgresError("list categories", err)
	}
	defer rows.Close()

	result := make([]*catalog.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, s.handlePostgresError("list categories", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("list categories", err)
	}
	return result, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	query := `
		UPDATE categories SET title = $2, cover = $3, updated_at = $4
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, c.ID, c.Title, c.Cover, c.UpdatedAt)
	return s.affected("update category", tag, err)
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return s.affected("delete category", tag, err)
}

// Lesson operations

func (s *Store) CreateLesson(ctx context.Context, l *catalog.Lesson) error {
	query := `
		INSERT INTO lessons (id, category_id, title, cover, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.db.Exec(ctx, query, l.ID, l.CategoryID, l.Title, l.Cover, l.Content, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return s.handlePostgresError("create lesson", err)
	}
	return nil
}

func (s *Store) GetLesson(ctx context.Context, id string) (*catalog.Lesson, error) {
	query := `
		SELECT id, category_id, title, cover, content, created_at, updated_at
		FROM lessons WHERE id = $1`

	l, err := scanLesson(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, s.handlePostgresError("get lesson", err)
	}
	return l, nil
}

func (s *Store) ListLessons(ctx context.Context, categoryID string) ([]*catalog.Lesson, error) {
	query := `
		SELECT id, category_id, title, cover, content, created_at, updated_at
		FROM lessons WHERE category_id = $1 ORDER BY seq`

	rows, err := s.db.Query(ctx, query, categoryID)
	if err != nil {
		return nil, s.handlePostgresError("list lessons", err)
	}
	defer rows.Close()

	result := make([]*catalog.Lesson, 0)
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, s.handlePostgresError("list lessons", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("list lessons", err)
	}
	return result, nil
}

func (s *Store) UpdateLesson(ctx context.Context, l *catalog.Lesson) error {
	query := `
		UPDATE lessons SET title = $2, cover = $3, content = $4, updated_at = $5
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, l.ID, l.Title, l.Cover, l.Content, l.UpdatedAt)
	return s.affected("update lesson", tag, err)
}

func (s *Store) DeleteLesson(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	return s.affected("delete lesson", tag, err)
}

func (s *Store) DeleteLessonsByCategory(ctx context.Context, categoryID string) (int, error) {
	return s.deleteMany(ctx, "delete lessons", `DELETE FROM lessons WHERE category_id = $1`, categoryID)
}

// Series operations

func (s *Store) CreateSeries(ctx context.Context, sr *catalog.Series) error {
	query := `
		INSERT INTO series (id, category_id, title, cover, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.Exec(ctx, query, sr.ID, sr.CategoryID, sr.Title, sr.Cover, sr.CreatedAt, sr.UpdatedAt)
	if err != nil {
		return s.handlePostgresError("create series", err)
	}
	return nil
}

func (s *Store) GetSeries(ctx context.Context, id string) (*catalog.Series, error) {
	query := `
		SELECT id, category_id, title, cover, created_at, updated_at
		FROM series WHERE id = $1`

	sr, err := scanSeries(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, s.handlePostgresError("get series", err)
	}
	return sr, nil
}

func (s *Store) ListSeries(ctx context.Context, categoryID string) ([]*catalog.Series, error) {
	query := `
		SELECT id, category_id, title, cover, created_at, updated_at
		FROM series WHERE category_id = $1 ORDER BY seq`

	rows, err := s.db.Query(ctx, query, categoryID)
	if err != nil {
		return nil, s.handlePostgresError("list series", err)
	}
	defer rows.Close()

	result := make([]*catalog.Series, 0)
	for rows.Next() {
		sr, err := scanSeries(rows)
		if err != nil {
			return nil, s.handlePostgresError("list series", err)
		}
		result = append(result, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("list series", err)
	}
	return result, nil
}

func (s *Store) UpdateSeries(ctx context.Context, sr *catalog.Series) error {
	query := `
		UPDATE series SET title = $2, cover = $3, updated_at = $4
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, sr.ID, sr.Title, sr.Cover, sr.UpdatedAt)
	return s.affected("update series", tag, err)
}

func (s *Store) DeleteSeries(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM series WHERE id = $1`, id)
	return s.affected("delete series", tag, err)
}

func (s *Store) DeleteSeriesByCategory(ctx context.Context, categoryID string) (int, error) {
	return s.deleteMany(ctx, "delete series", `DELETE FROM series WHERE category_id = $1`, categoryID)
}

// SeriesLesson operations

func (s *Store) CreateSeriesLesson(ctx context.Context, l *catalog.SeriesLesson) error {
	query := `
		INSERT INTO series_lessons (id, category_id, series_id, title, cover, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.Exec(ctx, query, l.ID, l.CategoryID, l.SeriesID, l.Title, l.Cover, l.Content, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return s.handlePostgresError("create series lesson", err)
	}
	return nil
}

func (s *Store) GetSeriesLesson(ctx context.Context, id string) (*catalog.SeriesLesson, error) {
	query := `
		SELECT id, category_id, series_id, title, cover, content, created_at, updated_at
		FROM series_lessons WHERE id = $1`

	l, err := scanSeriesLesson(s.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, s.handlePostgresError("get series lesson", err)
	}
	return l, nil
}

func (s *Store) ListSeriesLessons(ctx context.Context, categoryID, seriesID string) ([]*catalog.SeriesLesson, error) {
	query := `
		SELECT id, category_id, series_id, title, cover, content, created_at, updated_at
		FROM series_lessons WHERE category_id = $1 AND series_id = $2 ORDER BY seq`

	rows, err := s.db.Query(ctx, query, categoryID, seriesID)
	if err != nil {
		return nil, s.handlePostgresError("list series lessons", err)
	}
	defer rows.Close()

	result := make([]*catalog.SeriesLesson, 0)
	for rows.Next() {
		l, err := scanSeriesLesson(rows)
		if err != nil {
			return nil, s.handlePostgresError("list series lessons", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("list series lessons", err)
	}
	return result, nil
}

func (s *Store) UpdateSeriesLesson(ctx context.Context, l *catalog.SeriesLesson) error {
	query := `
		UPDATE series_lessons SET title = $2, cover = $3, content = $4, updated_at = $5
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, l.ID, l.Title, l.Cover, l.Content, l.UpdatedAt)
	return s.affected("update series lesson", tag, err)
}

func (s *Store) DeleteSeriesLesson(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM series_lessons WHERE id = $1`, id)
	return s.affected("delete series lesson", tag, err)
}

func (s *Store) DeleteSeriesLessonsByCategory(ctx context.Context, categoryID string) (int, error) {
	return s.deleteMany(ctx, "delete series lessons", `DELETE FROM series_lessons WHERE category_id = $1`, categoryID)
}

func (s *Store) DeleteSeriesLessonsBySeries(ctx context.Context, seriesID string) (int, error) {
	return s.deleteMany(ctx, "delete series lessons", `DELETE FROM series_lessons WHERE series_id = $1`, seriesID)
}

// Photo registry operations

func (s *Store) CreatePhoto(ctx context.Context, p *catalog.Photo) error {
	query := `
		INSERT INTO photos (name, created_at) VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING`

	if _, err := s.db.Exec(ctx, query, p.Name, p.CreatedAt); err != nil {
		return s.handlePostgresError("create photo", err)
	}
	return nil
}

func (s *Store) ListPhotos(ctx context.Context) ([]*catalog.Photo, error) {
	rows, err := s.db.Query(ctx, `SELECT name, created_at FROM photos ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, s.handlePostgresError("list photos", err)
	}
	defer rows.Close()

	result := make([]*catalog.Photo, 0)
	for rows.Next() {
		var p catalog.Photo
		if err := rows.Scan(&p.Name, &p.CreatedAt); err != nil {
			return nil, s.handlePostgresError("list photos", err)
		}
		p.CreatedAt = p.CreatedAt.UTC()
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, s.handlePostgresError("list photos", err)
	}
	return result, nil
}

func (s *Store) DeletePhoto(ctx context.Context, name string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM photos WHERE name = $1`, name)
	return s.affected("delete photo", tag, err)
}

// Transactions

// WithinTx runs fn inside a database transaction, or inside a savepoint when
// the store is already bound to a transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&Store{db: tx})
	})
}

// Snapshot runs fn inside a read-only REPEATABLE READ transaction so every
// query observes the same snapshot.
func (s *Store) Snapshot(ctx context.Context, fn func(view catalog.Store) error) error {
	beginner, ok := s.db.(txBeginner)
	if !ok {
		return fn(s)
	}
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return pgx.BeginTxFunc(ctx, beginner, opts, func(tx pgx.Tx) error {
		return fn(&Store{db: tx})
	})
}

// Internal helper methods

func (s *Store) affected(operation string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return s.handlePostgresError(operation, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func (s *Store) deleteMany(ctx context.Context, operation, query string, arg string) (int, error) {
	tag, err := s.db.Exec(ctx, query, arg)
	if err != nil {
		return 0, s.handlePostgresError(operation, err)
	}
	return int(tag.RowsAffected()), nil
}

func scanCategory(row rowScanner) (*catalog.Category, error) {
	var c catalog.Category
	if err := row.Scan(&c.ID, &c.Title, &c.Cover, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.CreatedAt, c.UpdatedAt = utc(c.CreatedAt), utc(c.UpdatedAt)
	return &c, nil
}

func scanLesson(row rowScanner) (*catalog.Lesson, error) {
	var l catalog.Lesson
	if err := row.Scan(&l.ID, &l.CategoryID, &l.Title, &l.Cover, &l.Content, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.CreatedAt, l.UpdatedAt = utc(l.CreatedAt), utc(l.UpdatedAt)
	return &l, nil
}

func scanSeries(row rowScanner) (*catalog.Series, error) {
	var sr catalog.Series
	if err := row.Scan(&sr.ID, &sr.CategoryID, &sr.Title, &sr.Cover, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
		return nil, err
	}
	sr.CreatedAt, sr.UpdatedAt = utc(sr.CreatedAt), utc(sr.UpdatedAt)
	return &sr, nil
}

func scanSeriesLesson(row rowScanner) (*catalog.SeriesLesson, error) {
	var l catalog.SeriesLesson
	if err := row.Scan(&l.ID, &l.CategoryID, &l.SeriesID, &l.Title, &l.Cover, &l.Content, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.CreatedAt, l.UpdatedAt = utc(l.CreatedAt), utc(l.UpdatedAt)
	return &l, nil
}

func utc(t time.Time) time.Time {
	return t.UTC()
}
