package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tendant/simple-catalog/pkg/catalog"
	"github.com/tendant/simple-catalog/pkg/catalog/auth"
	redisevents "github.com/tendant/simple-catalog/pkg/catalog/events/redis"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/gormstore"
	memoryrepo "github.com/tendant/simple-catalog/pkg/catalog/repo/memory"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/postgres"
	"github.com/tendant/simple-catalog/pkg/catalog/repo/surreal"
	fsstorage "github.com/tendant/simple-catalog/pkg/catalog/storage/fs"
	memorystorage "github.com/tendant/simple-catalog/pkg/catalog/storage/memory"
	s3storage "github.com/tendant/simple-catalog/pkg/catalog/storage/s3"
)

// Migrator is implemented by stores with a schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Components holds everything the server and admin tool need.
type Components struct {
	Store   catalog.Store
	Service catalog.Service
	Uploads *catalog.Uploads
	Revoker auth.Revoker
	// JWTAuth is nil when no secret is configured.
	JWTAuth *jwtauth.JWTAuth
	Logger  *slog.Logger

	closers []func(context.Context) error
}

// Close releases connections in reverse order of creation.
func (c *Components) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Migrate applies the store schema. Stores without a schema succeed.
func (c *Components) Migrate(ctx context.Context) error {
	m, ok := c.Store.(Migrator)
	if !ok {
		return nil
	}
	return m.Migrate(ctx)
}

// Build wires the store, blob storage, event sinks and services.
func (c *ServerConfig) Build(ctx context.Context) (*Components, error) {
	return c.BuildWithLogger(ctx, c.NewLogger())
}

// BuildWithLogger is Build with a caller-supplied logger.
func (c *ServerConfig) BuildWithLogger(ctx context.Context, logger *slog.Logger) (*Components, error) {
	comp := &Components{Logger: logger}
	if err := c.build(ctx, comp); err != nil {
		_ = comp.Close(ctx)
		return nil, err
	}
	return comp, nil
}

func (c *ServerConfig) build(ctx context.Context, comp *Components) error {
	logger := comp.Logger

	store, closer, err := c.buildStore(ctx)
	if err != nil {
		return err
	}
	comp.Store = store
	if closer != nil {
		comp.closers = append(comp.closers, closer)
	}

	if c.AutoMigrate {
		if err := comp.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate %s store: %w", c.DatabaseType, err)
		}
	}

	blobs, err := c.buildBlobStore(ctx)
	if err != nil {
		return err
	}

	var sinks []catalog.EventSink
	if c.EnableEventLogging {
		sinks = append(sinks, catalog.NewLogEventSink(logger))
	}

	comp.Revoker = auth.NewMemoryRevoker()
	if c.RedisURL != "" {
		opts, err := goredis.ParseURL(c.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		client := goredis.NewClient(opts)
		comp.closers = append(comp.closers, func(context.Context) error { return client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		comp.Revoker = auth.NewRedisRevoker(client, "")
		sinks = append(sinks, redisevents.NewSink(client, c.EventChannel))
	}

	events := catalog.FanOut(sinks...)

	cascade, err := catalog.ParseSeriesCascade(c.SeriesCascade)
	if err != nil {
		return err
	}
	comp.Service, err = catalog.New(
		catalog.WithStore(store),
		catalog.WithEventSink(events),
		catalog.WithLogger(logger),
		catalog.WithSeriesCascade(cascade),
	)
	if err != nil {
		return fmt.Errorf("failed to create catalog service: %w", err)
	}

	comp.Uploads, err = catalog.NewUploads(blobs,
		catalog.WithPhotoRegistry(store),
		catalog.WithMaxSize(c.UploadMaxBytes),
		catalog.WithUploadEvents(events),
		catalog.WithUploadLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create upload service: %w", err)
	}

	if c.JWTSecret != "" {
		comp.JWTAuth = auth.NewJWTAuth(c.JWTSecret)
	}

	return nil
}

func (c *ServerConfig) buildStore(ctx context.Context) (catalog.Store, func(context.Context) error, error) {
	switch c.DatabaseType {
	case DatabaseMemory:
		return memoryrepo.New(), nil, nil
	case DatabasePostgres:
		pool, err := NewPostgresPool(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewWithPool(pool), func(context.Context) error { pool.Close(); return nil }, nil
	case DatabaseSQLite:
		store, err := gormstore.OpenSQLite(c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		return store, func(context.Context) error { return store.Close() }, nil
	case DatabaseMySQL:
		store, err := gormstore.OpenMySQL(c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open mysql: %w", err)
		}
		return store, func(context.Context) error { return store.Close() }, nil
	case DatabaseSurrealDB:
		cfg, err := c.surrealConfig()
		if err != nil {
			return nil, nil, err
		}
		store, err := surreal.Open(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// surrealConfig moves credentials out of the URL userinfo.
func (c *ServerConfig) surrealConfig() (surreal.Config, error) {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return surreal.Config{}, fmt.Errorf("invalid surrealdb url: %w", err)
	}
	cfg := surreal.Config{
		Namespace: c.SurrealNamespace,
		Database:  c.SurrealDatabase,
	}
	if u.User != nil {
		cfg.Username = u.User.Username()
		cfg.Password, _ = u.User.Password()
		u.User = nil
	}
	if u.Path == "" {
		u.Path = "/rpc"
	}
	cfg.URL = u.String()
	return cfg, nil
}

// NewPostgresPool opens a pool, setting search_path on every connection when
// schema is non-empty.
func NewPostgresPool(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

func (c *ServerConfig) buildBlobStore(ctx context.Context) (catalog.BlobStore, error) {
	switch c.Storage.Type {
	case StorageMemory:
		return memorystorage.New(), nil
	case StorageFS:
		return fsstorage.New(fsstorage.Config{BaseDir: c.Storage.BaseDir})
	case StorageS3:
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.Storage.Region,
			Bucket:                 c.Storage.Bucket,
			Prefix:                 c.Storage.Prefix,
			AccessKeyID:            c.Storage.AccessKeyID,
			SecretAccessKey:        c.Storage.SecretAccessKey,
			Endpoint:               c.Storage.Endpoint,
			UsePathStyle:           c.Storage.UsePathStyle,
			CreateBucketIfNotExist: c.Storage.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
}
