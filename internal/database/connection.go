package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection based on the environment: a PostgreSQL
// DATABASE_URL in production, a local SQLite file otherwise.
func Connect(databaseURL, sqlitePath string) error {
	if strings.HasPrefix(databaseURL, "postgres") {
		db, err := sqlx.Connect("postgres", databaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		DB = db
		return initializeSchema()
	}

	if sqlitePath == "" {
		sqlitePath = filepath.Join("data", "greekbot.db")
	}
	if dir := filepath.Dir(sqlitePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return Open("sqlite3", sqlitePath)
}

// Open connects to a specific driver/DSN directly. Tests use this with an
// in-memory SQLite database.
func Open(driver, dsn string) error {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	DB = db
	return initializeSchema()
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// initializeSchema creates all tables if they don't exist. This is the only
// place that differs per backend; every query elsewhere is dialect-neutral.
func initializeSchema() error {
	schema := schemaSQLite
	if DB.DriverName() == "postgres" {
		schema = schemaPostgres
	}
	if _, err := DB.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

const schemaSQLite = `
	CREATE TABLE IF NOT EXISTS words (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		greek          TEXT NOT NULL,
		english        TEXT NOT NULL,
		part_of_speech TEXT NOT NULL DEFAULT '',
		example_el     TEXT NOT NULL DEFAULT '',
		example_en     TEXT NOT NULL DEFAULT '',
		tags           TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_words_greek ON words(greek);

	CREATE TABLE IF NOT EXISTS reviews (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		word_id     INTEGER NOT NULL REFERENCES words(id),
		reviewed_at TIMESTAMP NOT NULL,
		quality     INTEGER NOT NULL CHECK (quality BETWEEN 0 AND 5),
		ease_factor REAL NOT NULL,
		interval    REAL NOT NULL,
		repetition  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_word ON reviews(word_id, reviewed_at);

	CREATE TABLE IF NOT EXISTS messages (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		external_id     TEXT NOT NULL DEFAULT '',
		direction       TEXT NOT NULL CHECK (direction IN ('out', 'in')),
		body            TEXT NOT NULL,
		target_word_ids TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_direction ON messages(direction, created_at);

	CREATE TABLE IF NOT EXISTS send_log (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		sent_date  TEXT NOT NULL,
		sent_at    TIMESTAMP NOT NULL,
		message_id INTEGER REFERENCES messages(id)
	);

	CREATE INDEX IF NOT EXISTS idx_send_log_date ON send_log(sent_date);
`

const schemaPostgres = `
	CREATE TABLE IF NOT EXISTS words (
		id             SERIAL PRIMARY KEY,
		greek          TEXT NOT NULL,
		english        TEXT NOT NULL,
		part_of_speech TEXT NOT NULL DEFAULT '',
		example_el     TEXT NOT NULL DEFAULT '',
		example_en     TEXT NOT NULL DEFAULT '',
		tags           TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_words_greek ON words(greek);

	CREATE TABLE IF NOT EXISTS reviews (
		id          SERIAL PRIMARY KEY,
		word_id     INTEGER NOT NULL REFERENCES words(id),
		reviewed_at TIMESTAMP NOT NULL,
		quality     INTEGER NOT NULL CHECK (quality BETWEEN 0 AND 5),
		ease_factor DOUBLE PRECISION NOT NULL,
		interval    DOUBLE PRECISION NOT NULL,
		repetition  INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_word ON reviews(word_id, reviewed_at);

	CREATE TABLE IF NOT EXISTS messages (
		id              SERIAL PRIMARY KEY,
		external_id     TEXT NOT NULL DEFAULT '',
		direction       TEXT NOT NULL CHECK (direction IN ('out', 'in')),
		body            TEXT NOT NULL,
		target_word_ids TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_direction ON messages(direction, created_at);

	CREATE TABLE IF NOT EXISTS send_log (
		id         SERIAL PRIMARY KEY,
		sent_date  TEXT NOT NULL,
		sent_at    TIMESTAMP NOT NULL,
		message_id INTEGER REFERENCES messages(id)
	);

	CREATE INDEX IF NOT EXISTS idx_send_log_date ON send_log(sent_date);
`
