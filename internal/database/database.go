package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ocelo_loyalty_backend/internal/database/migrations"
	"ocelo_loyalty_backend/pkg/utils"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported values for DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Settings describes how to reach the key-value store.
type Settings struct {
	Driver string
	// DSN is used verbatim when set; otherwise it is assembled from the discrete fields.
	DSN        string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// SettingsFromEnv reads the database configuration from environment variables.
func SettingsFromEnv() Settings {
	return Settings{
		Driver:     strings.ToLower(utils.Getenv("DB_DRIVER", DriverSQLite)),
		DSN:        utils.Getenv("DATABASE_URL", ""),
		Host:       utils.Getenv("DB_HOST", "localhost"),
		Port:       utils.Getenv("DB_PORT", "5432"),
		User:       utils.Getenv("DB_USER", "ocelo_user"),
		Password:   utils.Getenv("DB_PASSWORD", "ocelo_password"),
		Name:       utils.Getenv("DB_NAME", "ocelo_loyalty_db"),
		SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
		SQLitePath: utils.Getenv("SQLITE_PATH", "ocelo.db"),
	}
}

// ConnString returns the driver-specific data source name.
func (s Settings) ConnString() (string, error) {
	if s.DSN != "" {
		return s.DSN, nil
	}
	switch s.Driver {
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(s.User, s.Password),
			Host:     s.Host + ":" + s.Port,
			Path:     "/" + s.Name,
			RawQuery: "sslmode=" + url.QueryEscape(s.SSLMode),
		}
		return u.String(), nil
	case DriverSQLite:
		return s.SQLitePath, nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", s.Driver)
	}
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, s Settings) (*sql.DB, error) {
	dsn, err := s.ConnString()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(s.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if s.Driver == DriverSQLite {
		// One writer at a time; also keeps ":memory:" databases on a single connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	utils.LogInfo("Successfully connected to the database", map[string]interface{}{"driver": s.Driver})
	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// ApplySchema runs the embedded goose migrations for the given driver.
func ApplySchema(ctx context.Context, db *sql.DB, driver string) error {
	dialect := "postgres"
	if driver == DriverSQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("could not set migration dialect %s: %w", dialect, err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("could not apply database schema: %w", err)
	}
	utils.LogInfo("Database schema applied successfully")
	return nil
}
