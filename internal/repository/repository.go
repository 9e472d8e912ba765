// Package repository provides the database access layer.
// All persistence goes through GORM; the driver is selected from the
// database URL (Postgres for postgres:// URLs, SQLite otherwise).
package repository

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/exguesich/tagebuch-app/internal/model"
)

// Repository provides database access methods.
type Repository struct {
	db *gorm.DB
}

// New opens the database, runs schema migration and seeds default data.
func New(databaseURL string) (*Repository, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	if err := repo.SeedCategories(); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	return repo, nil
}

// NewWithDB wraps an already-open GORM handle. Used by tests.
func NewWithDB(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the schema on an already-open handle. Used by tests
// and by tagebuchctl, which opens the database itself.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Entry{},
		&model.Session{},
	)
}

// Ping checks database connectivity.
func (r *Repository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return postgres.Open(databaseURL), nil
	}
	if err := ensureSQLiteDir(databaseURL); err != nil {
		return nil, err
	}
	return sqlite.Open(databaseURL), nil
}

// ensureSQLiteDir creates the parent directory for a SQLite file if needed.
func ensureSQLiteDir(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// defaultCategories are created once, on first startup with an empty
// category table.
var defaultCategories = []model.Category{
	{Name: "Persönlich", Description: "Persönliche Einträge"},
	{Name: "Arbeit", Description: "Arbeitsbezogene Einträge"},
	{Name: "Reisen", Description: "Reiseerlebnisse"},
	{Name: "Gedanken", Description: "Allgemeine Gedanken"},
	{Name: "Erinnerungen", Description: "Erinnerungen"},
}

// SeedCategories inserts the default categories if the table is empty.
// Subsequent startups are no-ops, so restarts never create duplicates.
func (r *Repository) SeedCategories() error {
	var count int64
	if err := r.db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	start := time.Now()
	cats := make([]model.Category, len(defaultCategories))
	copy(cats, defaultCategories)
	if err := r.db.Create(&cats).Error; err != nil {
		return err
	}
	slog.Info("seeded default categories",
		"count", len(cats),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
