package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

const migrationDir = "sql"

// goose keeps its filesystem, dialect and logger in package state.
var gooseMu sync.Mutex

func withGoose(fn func() error) error {
	gooseMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseMu.Unlock()
	}()

	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(log.New(io.Discard))
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return fn()
}

// RunMigrations applies every pending run history migration, oldest first.
//
// Applied versions are tracked by goose in goose_db_version, so calling it repeatedly is safe.
func RunMigrations(db *sql.DB) error {
	return withGoose(func() error {
		if err := goose.Up(db, migrationDir); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	})
}

// RollbackMigration reverts the newest applied migration.
func RollbackMigration(db *sql.DB) error {
	return withGoose(func() error {
		if err := goose.Down(db, migrationDir); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}
		return nil
	})
}

// MigrationVersion returns the newest applied migration, 0 for an empty database.
func MigrationVersion(db *sql.DB) (int64, error) {
	var version int64
	err := withGoose(func() error {
		v, err := goose.GetDBVersion(db)
		version = v
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, nil
}
