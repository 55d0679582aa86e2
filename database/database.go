package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

var DB *sql.DB

// InitDatabase initializes the database connection
func InitDatabase(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	var err error
	DB, err = sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	log.Println("Successfully connected to database")
	return nil
}

// CreateTables creates the necessary tables if they don't exist
func CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tracked_products (
			id SERIAL PRIMARY KEY,
			url TEXT NOT NULL DEFAULT '',
			flipkart_pid TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			site VARCHAR(20) NOT NULL DEFAULT 'unknown',
			current_price BIGINT,
			last_checked TIMESTAMP,
			last_failed_at TIMESTAMP,
			retry_count INTEGER DEFAULT 0,
			next_retry_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN DEFAULT TRUE,
			UNIQUE (url, flipkart_pid)
		)`,
		`CREATE TABLE IF NOT EXISTS price_history (
			id SERIAL PRIMARY KEY,
			product_key TEXT NOT NULL,
			site VARCHAR(20) NOT NULL DEFAULT 'unknown',
			name TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL,
			checked_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_price_history_key ON price_history (product_key, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_price_history_checked ON price_history (product_key, checked_at)`,
		`CREATE INDEX IF NOT EXISTS idx_tracked_products_retry ON tracked_products (last_failed_at, next_retry_at, retry_count)
		WHERE last_failed_at IS NOT NULL AND retry_count < 5`,
	}

	for _, query := range queries {
		_, err := DB.Exec(query)
		if err != nil {
			return fmt.Errorf("failed to create table: %v", err)
		}
	}

	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
