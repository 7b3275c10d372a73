package config

import (
	"fmt"

	"github.com/tendant/simple-catalog/pkg/catalog"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabaseURL selects the Entity Store from a connection URL. See
// ParseDatabaseURL for the accepted forms.
func WithDatabaseURL(raw string) Option {
	return func(c *ServerConfig) error {
		typ, url, err := ParseDatabaseURL(raw)
		if err != nil {
			return err
		}
		c.DatabaseType = typ
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the Postgres search_path
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithStorageURL selects the upload blob store from a URL. See
// ParseStorageURL for the accepted forms.
func WithStorageURL(raw string) Option {
	return func(c *ServerConfig) error {
		storage, err := ParseStorageURL(raw)
		if err != nil {
			return err
		}
		// credentials come from the environment, keep any already set
		storage.AccessKeyID = c.Storage.AccessKeyID
		storage.SecretAccessKey = c.Storage.SecretAccessKey
		c.Storage = storage
		return nil
	}
}

// WithFilesystemStorage stores uploads under baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageConfig{Type: StorageFS, BaseDir: baseDir}
		return nil
	}
}

// WithRedis enables Redis-backed revocation and event publishing
func WithRedis(url string) Option {
	return func(c *ServerConfig) error {
		c.RedisURL = url
		return nil
	}
}

// WithJWTSecret sets the HS256 secret used to verify bearer tokens
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}

// WithSeriesCascade selects which SeriesLessons are deleted with a Series
func WithSeriesCascade(cascade catalog.SeriesCascade) Option {
	return func(c *ServerConfig) error {
		if _, err := catalog.ParseSeriesCascade(string(cascade)); err != nil {
			return err
		}
		c.SeriesCascade = string(cascade)
		return nil
	}
}

// WithUploadMaxBytes limits the size of a single upload
func WithUploadMaxBytes(n int64) Option {
	return func(c *ServerConfig) error {
		if n <= 0 {
			return fmt.Errorf("upload limit must be positive, got %d", n)
		}
		c.UploadMaxBytes = n
		return nil
	}
}

// WithAutoMigrate applies the store schema when the store is built
func WithAutoMigrate(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.AutoMigrate = enabled
		return nil
	}
}

// WithEventLogging enables or disables the structured-log event sink
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
