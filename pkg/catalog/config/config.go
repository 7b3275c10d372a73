package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// Database types selected by DATABASE_URL.
const (
	DatabaseMemory    = "memory"
	DatabasePostgres  = "postgres"
	DatabaseSQLite    = "sqlite"
	DatabaseMySQL     = "mysql"
	DatabaseSurrealDB = "surrealdb"
)

// Storage types selected by STORAGE_URL.
const (
	StorageMemory = "memory"
	StorageFS     = "fs"
	StorageS3     = "s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:             "8080",
		Environment:      "development",
		LogLevel:         "info",
		DatabaseType:     DatabaseMemory,
		SurrealNamespace: "catalog",
		SurrealDatabase:  "catalog",
		Storage:          StorageConfig{Type: StorageMemory},
		EventChannel:     "catalog.events",
		SeriesCascade:    string(catalog.SeriesCascadeByCategoryKey),
		UploadMaxBytes:   catalog.DefaultMaxUploadSize,

		EnableEventLogging: true,
	}
}

// ServerConfig represents configuration for the catalog server and admin tool
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing
	LogLevel    string // debug, info, warn, error

	// Database configuration
	DatabaseURL      string
	DatabaseType     string // memory, postgres, sqlite, mysql, surrealdb
	DBSchema         string // Postgres search_path (optional)
	SurrealNamespace string
	SurrealDatabase  string
	AutoMigrate      bool

	Storage StorageConfig

	// Redis enables shared token revocation and event publishing
	RedisURL     string
	EventChannel string

	JWTSecret string

	SeriesCascade  string
	UploadMaxBytes int64

	EnableEventLogging bool
}

// StorageConfig describes the blob store for uploads
type StorageConfig struct {
	Type    string // memory, fs, s3
	BaseDir string // fs

	// s3
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
	CreateBucket    bool
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case DatabaseMemory:
	case DatabasePostgres, DatabaseSQLite, DatabaseMySQL, DatabaseSurrealDB:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageFS:
		if c.Storage.BaseDir == "" {
			return errors.New("filesystem storage requires a base directory")
		}
	case StorageS3:
		if c.Storage.Bucket == "" {
			return errors.New("s3 storage requires a bucket")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}

	if _, err := catalog.ParseSeriesCascade(c.SeriesCascade); err != nil {
		return err
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("upload_max_bytes must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("jwt_secret is required in production")
	}

	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}
