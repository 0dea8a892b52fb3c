package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB

// PoolConfig makes the store's connection and timeout behaviour explicit
// instead of relying on driver defaults.
type PoolConfig struct {
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration // 0 means server default
}

// InitDB initializes the database connection pool and optionally applies the
// schema file.
func InitDB(host, port, user, password, dbname, sslmode, schemaPath string, pool PoolConfig) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
	if pool.StatementTimeout > 0 {
		connStr += fmt.Sprintf(" options='-c statement_timeout=%d'", pool.StatementTimeout.Milliseconds())
	}

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Error opening database: %q", err)
	}

	DB.SetMaxOpenConns(pool.MaxOpenConns)
	DB.SetMaxIdleConns(pool.MaxIdleConns)
	DB.SetConnMaxLifetime(pool.ConnMaxLifetime)

	if err = DB.Ping(); err != nil {
		log.Fatalf("Error connecting to database: %q", err)
	}

	if err = applySchema(DB, schemaPath); err != nil {
		log.Fatalf("Error applying database schema: %q", err)
	}
}

// applySchema reads and executes the schema file when a path is configured.
func applySchema(db *sql.DB, schemaPath string) error {
	if schemaPath == "" {
		log.Println("No schema path provided, skipping schema application.")
		return nil
	}
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("could not read schema file %s: %w", schemaPath, err)
	}

	if _, err = db.Exec(string(content)); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	return nil
}

// GetDB returns the database connection pool
func GetDB() *sql.DB {
	return DB
}
