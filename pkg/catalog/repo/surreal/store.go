// Package surreal implements catalog.Store on SurrealDB.
//
// Multi-statement transactions in SurrealDB live inside a single query, so
// WithinTx validates each write against committed data as it is issued and
// submits the buffered statements together when fn returns. Reads inside
// WithinTx therefore do not observe that transaction's own pending writes.
package surreal

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/memory"
)

const backend = "surrealdb"

// Config holds connection settings.
type Config struct {
	// URL is the RPC endpoint, e.g. ws://localhost:8000/rpc.
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// Store implements catalog.Store using SurrealDB.
type Store struct {
	db *surrealdb.DB
	tx *txBuffer
}

type statement struct {
	sql  string
	vars map[string]any
}

type txBuffer struct {
	stmts []statement
}

// Open connects, authenticates and selects the namespace and database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	conf := connection.NewConfig(u)
	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	db, err := surrealdb.FromConnection(ctx, gorillaws.New(conf))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if cfg.Username != "" && cfg.Password != "" {
		if _, err := db.SignIn(ctx, map[string]any{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the connection.
func (s *Store) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

// Migrate defines the catalog tables and their lookup indexes.
func (s *Store) Migrate(ctx context.Context) error {
	const schema = `
		DEFINE TABLE IF NOT EXISTS categories SCHEMALESS;
		DEFINE TABLE IF NOT EXISTS lessons SCHEMALESS;
		DEFINE TABLE IF NOT EXISTS series SCHEMALESS;
		DEFINE TABLE IF NOT EXISTS series_lessons SCHEMALESS;
		DEFINE TABLE IF NOT EXISTS photos SCHEMALESS;
		DEFINE INDEX IF NOT EXISTS lessons_category ON TABLE lessons FIELDS category_id;
		DEFINE INDEX IF NOT EXISTS series_category ON TABLE series FIELDS category_id;
		DEFINE INDEX IF NOT EXISTS series_lessons_parent ON TABLE series_lessons FIELDS category_id, series_id;
		DEFINE INDEX IF NOT EXISTS series_lessons_series ON TABLE series_lessons FIELDS series_id;
	`
	if _, err := surrealdb.Query[any](ctx, s.db, schema, nil); err != nil {
		return catalog.NewStorageError(backend, "migrate", err)
	}
	return nil
}

// Ping verifies the server answers queries.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := surrealdb.Query[int](ctx, s.db, "RETURN 1;", nil); err != nil {
		return catalog.NewStorageError(backend, "ping", err)
	}
	return nil
}

func rid(table, id string) models.RecordID {
	return models.NewRecordID(table, id)
}

func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}

// Reads

func (s *Store) selectRecords(ctx context.Context, op, sql string, vars map[string]any) ([]record, error) {
	res, err := surrealdb.Query[[]record](ctx, s.db, sql, vars)
	if err != nil {
		return nil, catalog.NewStorageError(backend, op, err)
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	return (*res)[0].Result, nil
}

func (s *Store) get(ctx context.Context, op, table, id string) (*record, error) {
	rows, err := s.selectRecords(ctx, op, "SELECT * FROM $rid;", map[string]any{"rid": rid(table, id)})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].ID == nil {
		return nil, catalog.ErrNotFound
	}
	return &rows[0], nil
}

func (s *Store) exists(ctx context.Context, op, table, id string) (bool, error) {
	_, err := s.get(ctx, op, table, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, catalog.ErrNotFound):
		return false, nil
	}
	return false, err
}

func (s *Store) list(ctx context.Context, op, table, where string, vars map[string]any) ([]record, error) {
	sql := "SELECT * FROM " + table
	if where != "" {
		sql += " WHERE " + where
	}
	sql += " ORDER BY created_at ASC, id ASC;"
	rows, err := s.selectRecords(ctx, op, sql, vars)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Writes

func (s *Store) create(ctx context.Context, op, table, id string, content map[string]any) error {
	if s.tx != nil {
		found, err := s.exists(ctx, op, table, id)
		if err != nil {
			return err
		}
		if found {
			return catalog.ErrConflict
		}
	}
	return s.run(ctx, op, statement{
		sql:  "CREATE $rid CONTENT $data;",
		vars: map[string]any{"rid": rid(table, id), "data": content},
	}, nil)
}

func (s *Store) update(ctx context.Context, op, table, id string, fields map[string]any) error {
	st := statement{
		sql:  "UPDATE " + table + " MERGE $data WHERE id = $rid;",
		vars: map[string]any{"rid": rid(table, id), "data": fields},
	}
	return s.runOne(ctx, op, table, id, st)
}

func (s *Store) deleteOne(ctx context.Context, op, table, id string) error {
	st := statement{
		sql:  "DELETE " + table + " WHERE id = $rid RETURN BEFORE;",
		vars: map[string]any{"rid": rid(table, id)},
	}
	return s.runOne(ctx, op, table, id, st)
}

func (s *Store) deleteWhere(ctx context.Context, op, table, where string, vars map[string]any) (int, error) {
	if s.tx != nil {
		rows, err := s.selectRecords(ctx, op, "SELECT id FROM "+table+" WHERE "+where+";", vars)
		if err != nil {
			return 0, err
		}
		s.tx.stmts = append(s.tx.stmts, statement{sql: "DELETE " + table + " WHERE " + where + ";", vars: vars})
		return len(rows), nil
	}
	var n int
	err := s.run(ctx, op, statement{
		sql:  "DELETE " + table + " WHERE " + where + " RETURN BEFORE;",
		vars: vars,
	}, &n)
	return n, err
}

// runOne executes a statement that must touch exactly the record table:id.
func (s *Store) runOne(ctx context.Context, op, table, id string, st statement) error {
	if s.tx != nil {
		found, err := s.exists(ctx, op, table, id)
		if err != nil {
			return err
		}
		if !found {
			return catalog.ErrNotFound
		}
		s.tx.stmts = append(s.tx.stmts, st)
		return nil
	}
	var n int
	if err := s.run(ctx, op, st, &n); err != nil {
		return err
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// run executes st immediately, or queues it inside a transaction. When
// affected is non-nil it receives the number of returned records.
func (s *Store) run(ctx context.Context, op string, st statement, affected *int) error {
	if s.tx != nil {
		s.tx.stmts = append(s.tx.stmts, st)
		return nil
	}
	res, err := surrealdb.Query[[]record](ctx, s.db, st.sql, st.vars)
	if err != nil {
		if isAlreadyExists(err) {
			return catalog.ErrConflict
		}
		return catalog.NewStorageError(backend, op, err)
	}
	if affected != nil && res != nil && len(*res) > 0 {
		*affected = len((*res)[0].Result)
	}
	return nil
}

// commit submits the buffered statements as one transaction. Variables are
// suffixed per statement so names cannot collide.
func (s *Store) commit(ctx context.Context, stmts []statement) error {
	if len(stmts) == 0 {
		return nil
	}
	var b strings.Builder
	vars := make(map[string]any)
	b.WriteString("BEGIN TRANSACTION;\n")
	for i, st := range stmts {
		sql := st.sql
		suffix := "_" + strconv.Itoa(i)
		pairs := make([]string, 0, 2*len(st.vars))
		for name, v := range st.vars {
			pairs = append(pairs, "$"+name, "$"+name+suffix)
			vars[name+suffix] = v
		}
		sql = strings.NewReplacer(pairs...).Replace(sql)
		b.WriteString(sql)
		b.WriteString("\n")
	}
	b.WriteString("COMMIT TRANSACTION;")

	if _, err := surrealdb.Query[any](ctx, s.db, b.String(), vars); err != nil {
		if isAlreadyExists(err) {
			return catalog.ErrConflict
		}
		return catalog.NewStorageError(backend, "commit", err)
	}
	return nil
}

// Category operations

func (s *Store) CreateCategory(ctx context.Context, c *catalog.Category) error {
	return s.create(ctx, "create category", tableCategories, c.ID, categoryContent(c))
}

func (s *Store) GetCategory(ctx context.Context, id string) (*catalog.Category, error) {
	r, err := s.get(ctx, "get category", tableCategories, id)
	if err != nil {
		return nil, err
	}
	return r.toCategory(), nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*catalog.Category, error) {
	rows, err := s.list(ctx, "list categories", tableCategories, "", nil)
	if err != nil {
		return nil, err
	}
	result := make([]*catalog.Category, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toCategory())
	}
	return result, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	return s.update(ctx, "update category", tableCategories, c.ID, map[string]any{
		"title": c.Title, "cover": c.Cover, "updated_at": c.UpdatedAt,
	})
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.deleteOne(ctx, "delete category", tableCategories, id)
}

// Lesson operations

func (s *Store) CreateLesson(ctx context.Context, l *catalog.Lesson) error {
	return s.create(ctx, "create lesson", tableLessons, l.ID, lessonContent(l))
}

func (s *Store) GetLesson(ctx context.Context, id string) (*catalog.Lesson, error) {
	r, err := s.get(ctx, "get lesson", tableLessons, id)
	if err != nil {
		return nil, err
	}
	return r.toLesson(), nil
}

func (s *Store) ListLessons(ctx context.Context, categoryID string) ([]*catalog.Lesson, error) {
	rows, err := s.list(ctx, "list lessons", tableLessons, "category_id = $cat", map[string]any{"cat": categoryID})
	if err != nil {
		return nil, err
	}
	result := make([]*catalog.Lesson, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toLesson())
	}
	return result, nil
}

func (s *Store) UpdateLesson(ctx context.Context, l *catalog.Lesson) error {
	return s.update(ctx, "update lesson", tableLessons, l.ID, map[string]any{
		"title": l.Title, "cover": l.Cover, "content": l.Content, "updated_at": l.UpdatedAt,
	})
}

func (s *Store) DeleteLesson(ctx context.Context, id string) error {
	return s.deleteOne(ctx, "delete lesson", tableLessons, id)
}

func (s *Store) DeleteLessonsByCategory(ctx context.Context, categoryID string) (int, error) {
	return s.deleteWhere(ctx, "delete lessons", tableLessons, "category_id = $cat", map[string]any{"cat": categoryID})
}

// Series operations

func (s *Store) CreateSeries(ctx context.Context, sr *catalog.Series) error {
	return s.create(ctx, "create series", tableSeries, sr.ID, seriesContent(sr))
}

func (s *Store) GetSeries(ctx context.Context, id string) (*catalog.Series, error) {
	r, err := s.get(ctx, "get series", tableSeries, id)
	if err != nil {
		return nil, err
	}
	return r.toSeries(), nil
}

func (s *Store) ListSeries(ctx context.Context, categoryID string) ([]*catalog.Series, error) {
	rows, err := s.list(ctx, "list series", tableSeries, "category_id = $cat", map[string]any{"cat": categoryID})
	if err != nil {
		return nil, err
	}
	result := make([]*catalog.Series, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toSeries())
	}
	return result, nil
}

func (s *Store) UpdateSeries(ctx context.Context, sr *catalog.Series) error {
	return s.update(ctx, "update series", tableSeries, sr.ID, map[string]any{
		"title": sr.Title, "cover": sr.Cover, "updated_at": sr.UpdatedAt,
	})
}

func (s *Store) DeleteSeries(ctx context.Context, id string) error {
	return s.deleteOne(ctx, "delete series", tableSeries, id)
}

func (s *Store) DeleteSeriesByCategory(ctx context.Context, categoryID string) (int, error) {
	return s.deleteWhere(ctx, "delete series", tableSeries, "category_id = $cat", map[string]any{"cat": categoryID})
}

// SeriesLesson operations

func (s *Store) CreateSeriesLesson(ctx context.Context, l *catalog.SeriesLesson) error {
	return s.create(ctx, "create series lesson", tableSeriesLessons, l.ID, seriesLessonContent(l))
}

func (s *Store) GetSeriesLesson(ctx context.Context, id string) (*catalog.SeriesLesson, error) {
	r, err := s.get(ctx, "get series lesson", tableSeriesLessons, id)
	if err != nil {
		return nil, err
	}
	return r.toSeriesLesson(), nil
}

func (s *Store) ListSeriesLessons(ctx context.Context, categoryID, seriesID string) ([]*catalog.SeriesLesson, error) {
	rows, err := s.list(ctx, "list series lessons", tableSeriesLessons,
		"category_id = $cat AND series_id = $ser", map[string]any{"cat": categoryID, "ser": seriesID})
	if err != nil {
		return nil, err
	}
	result := make([]*catalog.SeriesLesson, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toSeriesLesson())
	}
	return result, nil
}

func (s *Store) UpdateSeriesLesson(ctx context.Context, l *catalog.SeriesLesson) error {
	return s.update(ctx, "update series lesson", tableSeriesLessons, l.ID, map[string]any{
		"title": l.Title, "cover": l.Cover, "content": l.Content, "updated_at": l.UpdatedAt,
	})
}

func (s *Store) DeleteSeriesLesson(ctx context.Context, id string) error {
	return s.deleteOne(ctx, "delete series lesson", tableSeriesLessons, id)
}

func (s *Store) DeleteSeriesLessonsByCategory(ctx context.Context, categoryID string) (int, error) {
	return s.deleteWhere(ctx, "delete series lessons", tableSeriesLessons,
		"category_id = $cat", map[string]any{"cat": categoryID})
}

func (s *Store) DeleteSeriesLessonsBySeries(ctx context.Context, seriesID string) (int, error) {
	return s.deleteWhere(ctx, "delete series lessons", tableSeriesLessons,
		"series_id = $ser", map[string]any{"ser": seriesID})
}

// Photo registry operations

func (s *Store) CreatePhoto(ctx context.Context, p *catalog.Photo) error {
	if s.tx != nil {
		found, err := s.exists(ctx, "create photo", tablePhotos, p.Name)
		if err != nil || found {
			return err
		}
	}
	err := s.run(ctx, "create photo", statement{
		sql:  "CREATE $rid CONTENT $data;",
		vars: map[string]any{"rid": rid(tablePhotos, p.Name), "data": map[string]any{"created_at": p.CreatedAt}},
	}, nil)
	if errors.Is(err, catalog.ErrConflict) {
		return nil
	}
	return err
}

func (s *Store) ListPhotos(ctx context.Context) ([]*catalog.Photo, error) {
	rows, err := s.selectRecords(ctx, "list photos", "SELECT * FROM photos ORDER BY created_at DESC, id ASC;", nil)
	if err != nil {
		return nil, err
	}
	result := make([]*catalog.Photo, 0, len(rows))
	for i := range rows {
		result = append(result, rows[i].toPhoto())
	}
	return result, nil
}

func (s *Store) DeletePhoto(ctx context.Context, name string) error {
	return s.deleteOne(ctx, "delete photo", tablePhotos, name)
}

// Transactions

func (s *Store) WithinTx(ctx context.Context, fn func(tx catalog.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	tx := &Store{db: s.db, tx: &txBuffer{}}
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(ctx, tx.tx.stmts)
}

// Snapshot reads every table in a single statement and serves fn from an
// in-memory copy of the result.
func (s *Store) Snapshot(ctx context.Context, fn func(view catalog.Store) error) error {
	const sql = `RETURN {
		categories: (SELECT * FROM categories ORDER BY created_at ASC, id ASC),
		lessons: (SELECT * FROM lessons ORDER BY created_at ASC, id ASC),
		series: (SELECT * FROM series ORDER BY created_at ASC, id ASC),
		series_lessons: (SELECT * FROM series_lessons ORDER BY created_at ASC, id ASC),
		photos: (SELECT * FROM photos ORDER BY created_at ASC, id ASC)
	};`

	res, err := surrealdb.Query[snapshot](ctx, s.db, sql, nil)
	if err != nil {
		return catalog.NewStorageError(backend, "snapshot", err)
	}
	var snap snapshot
	if res != nil && len(*res) > 0 {
		snap = (*res)[0].Result
	}

	view, err := load(ctx, snap)
	if err != nil {
		return err
	}
	return view.Snapshot(ctx, fn)
}

func load(ctx context.Context, snap snapshot) (*memory.Store, error) {
	m := memory.New()
	for i := range snap.Categories {
		if err := m.CreateCategory(ctx, snap.Categories[i].toCategory()); err != nil {
			return nil, err
		}
	}
	for i := range snap.Lessons {
		if err := m.CreateLesson(ctx, snap.Lessons[i].toLesson()); err != nil {
			return nil, err
		}
	}
	for i := range snap.Series {
		if err := m.CreateSeries(ctx, snap.Series[i].toSeries()); err != nil {
			return nil, err
		}
	}
	for i := range snap.SeriesLessons {
		if err := m.CreateSeriesLesson(ctx, snap.SeriesLessons[i].toSeriesLesson()); err != nil {
			return nil, err
		}
	}
	for i := range snap.Photos {
		if err := m.CreatePhoto(ctx, snap.Photos[i].toPhoto()); err != nil {
			return nil, err
		}
	}
	return m, nil
}
