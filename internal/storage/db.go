// Package storage persists analysis results in a SQLite database.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"crateprobe/internal/logging"
)

const currentSchemaVersion = 1

// DB is the results database with transaction helpers.
type DB struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the results database at dbPath, creating parent
// directories and the schema as needed.
func Open(dbPath string, logger *logging.Logger) (*DB, error) {
	logger = logger.With(map[string]interface{}{"component": "storage"})

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas for performance and reliability
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	db := &DB{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if !dbExists {
		logger.Info("creating new results database", map[string]interface{}{
			"path": dbPath,
		})
		if err := db.initializeSchema(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	} else {
		if err := db.checkSchemaVersion(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// WithTx executes fn within a transaction, rolling back on error or panic.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			CREATE TABLE schema_version (
				version INTEGER NOT NULL
			)`); err != nil {
			return fmt.Errorf("failed to create schema_version table: %w", err)
		}
		if _, err := tx.Exec(`
			CREATE TABLE results (
				run_id TEXT NOT NULL,
				name TEXT NOT NULL,
				version TEXT NOT NULL,
				published_at TEXT,
				edition INTEGER NOT NULL,
				reported_msrv INTEGER,
				version_signature REAL NOT NULL,
				unsafe_exprs INTEGER NOT NULL,
				total_exprs INTEGER NOT NULL,
				unsafe_fraction REAL,
				clippy_warnings INTEGER NOT NULL,
				clippy_warnings_per_expr REAL,
				source_digest TEXT NOT NULL,
				analyzed_at TEXT NOT NULL,
				PRIMARY KEY (run_id, name, version)
			)`); err != nil {
			return fmt.Errorf("failed to create results table: %w", err)
		}
		if _, err := tx.Exec(`
			CREATE INDEX idx_results_name ON results(name, version)`); err != nil {
			return fmt.Errorf("failed to create results index: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`,
			currentSchemaVersion); err != nil {
			return fmt.Errorf("failed to set schema version: %w", err)
		}
		return nil
	})
}

func (db *DB) checkSchemaVersion() error {
	var version int
	err := db.conn.QueryRow(`SELECT version FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version %d (want %d)", version, currentSchemaVersion)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
