// Package repo is the GORM persistence layer: one file per aggregate, plain
// functions taking a *gorm.DB so callers can pass a transaction.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-mealplan-backend/internal/domain"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Options tunes OpenSQLite. Zero fields take the noted defaults.
type Options struct {
	MaxOpenConns int           // 10; forced to 1 for MemoryPath
	BusyTimeout  time.Duration // 5s
	SlowQuery    time.Duration // 200ms
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 10
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = 5 * time.Second
	}
	if o.SlowQuery <= 0 {
		o.SlowQuery = 200 * time.Millisecond
	}
	return o
}

// OpenSQLite opens (creating if needed) the database at path. PRAGMAs go
// into the DSN so every pooled connection gets them, not just the first.
// Queries are traced through the OpenTelemetry plugin and slow ones logged
// via zerolog.
func OpenSQLite(path string, opt Options) (*gorm.DB, error) {
	opt = opt.withDefaults()
	mem := path == MemoryPath

	if !mem {
		// The driver reports a missing directory as "out of memory (14)".
		if dir := filepath.Dir(path); dir != "." {
			if _, err := os.Stat(dir); err != nil {
				return nil, fmt.Errorf("database directory: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(path, opt.BusyTimeout, !mem)), &gorm.Config{
		Logger: logger.New(gormLog{}, logger.Config{
			SlowThreshold:             opt.SlowQuery,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if mem {
		// Each connection to :memory: would see its own empty database.
		opt.MaxOpenConns = 1
	}
	sqlDB.SetMaxOpenConns(opt.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opt.MaxOpenConns)
	if !mem {
		// Recycling the only :memory: connection would drop the database.
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// sqliteDSN appends per-connection PRAGMAs in the driver's _pragma form.
func sqliteDSN(path string, busy time.Duration, wal bool) string {
	pragmas := []string{
		"foreign_keys(1)",
		fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()),
	}
	if wal {
		pragmas = append(pragmas, "journal_mode(WAL)", "synchronous(NORMAL)")
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=" + strings.Join(pragmas, "&_pragma=")
}

// gormLog sends GORM's warnings (slow queries, driver errors) to zerolog.
type gormLog struct{}

func (gormLog) Printf(format string, args ...any) {
	log.Warn().Str("component", "gorm").Msgf(strings.TrimSpace(format), args...)
}

// AutoMigrate creates or updates every table the service owns. Parents are
// listed before children so foreign keys resolve.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Ingredient{},
		&domain.Recipe{},
		&domain.RecipeIngredient{},
		&domain.SavedRecipe{},
		&domain.CalendarEntry{},
		&domain.CatalogItem{},
		&domain.Video{},
		&domain.Idempotency{},
	)
}
