package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"os"
	"slices"
	"strconv"
	"time"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters of the passage store.
type DatabaseConfiguration struct {
	Host         string
	Port         string
	Database     string
	Username     string
	Password     string
	Schema       string
	SSLMode      string
	MaxOpenConns int
}

// NewDatabaseConfiguration reads the database configuration from the environment.
// Host, port, database, username and password are required.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	config := &DatabaseConfiguration{
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		Database:     os.Getenv("DB_DATABASE"),
		Username:     os.Getenv("DB_USERNAME"),
		Password:     os.Getenv("DB_PASSWORD"),
		Schema:       getEnvOrDefault("DB_SCHEMA", "public"),
		SSLMode:      getEnvOrDefault("DB_SSLMODE", "disable"),
		MaxOpenConns: 10,
	}

	if v := os.Getenv("DB_MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, NewKindError(ErrKindConfiguration, "parse DB_MAX_OPEN_CONNS", fmt.Errorf("invalid value %q", v))
		}
		config.MaxOpenConns = n
	}

	missing := missingEnv(map[string]string{
		"DB_HOST":     config.Host,
		"DB_PORT":     config.Port,
		"DB_DATABASE": config.Database,
		"DB_USERNAME": config.Username,
		"DB_PASSWORD": config.Password,
	})
	if len(missing) > 0 {
		return nil, NewKindError(ErrKindConfiguration, "database configuration", fmt.Errorf("missing environment variables: %v", missing))
	}

	return config, nil
}

// DataSourceName returns the lib/pq connection URL.
func (c *DatabaseConfiguration) DataSourceName() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Database,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Database is a named connection pool with its logger.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens the connection pool and pings it once.
// A failed ping is logged but not returned; reachability is reported by health checks.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if config == nil {
		return nil, NewKindError(ErrKindConfiguration, "database configuration", fmt.Errorf("configuration is nil"))
	}

	instance, err := sql.Open("postgres", config.DataSourceName())
	if err != nil {
		return nil, NewKindError(ErrKindStoreUnavailable, "open database", err)
	}

	maxOpen := config.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	instance.SetMaxOpenConns(maxOpen)
	instance.SetMaxIdleConns(maxOpen / 2)
	instance.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := instance.PingContext(ctx); err != nil {
		logger.Error("Database not reachable", slog.String("database", name), slog.String("error", err.Error()))
	} else {
		logger.Info("Connected to database", slog.String("database", name), slog.String("host", config.Host))
	}

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}, nil
}

// Close closes the connection pool.
func (d *Database) Close() error {
	if d == nil || d.Instance == nil {
		return nil
	}
	return d.Instance.Close()
}

func getEnvOrDefault(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func missingEnv(values map[string]string) []string {
	var missing []string
	for _, key := range slices.Sorted(maps.Keys(values)) {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
