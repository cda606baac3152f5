package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func InitDB(logger *zap.Logger) (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "marketplacedb")

	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	logger.Info("Database connection established")
	return db, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'shopper',
			store_name VARCHAR(255) NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id SERIAL PRIMARY KEY,
			seller_id INTEGER NOT NULL REFERENCES users(id),
			name VARCHAR(255) NOT NULL,
			price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
			stock INTEGER NOT NULL CHECK (stock >= 0),
			description TEXT NOT NULL DEFAULT '',
			image BYTEA,
			image_mime VARCHAR(100),
			expiry_date TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id SERIAL PRIMARY KEY,
			shopper_id INTEGER NOT NULL REFERENCES users(id),
			product_id INTEGER NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			UNIQUE (shopper_id, product_id)
		);`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id SERIAL PRIMARY KEY,
			product_id INTEGER NOT NULL,
			shopper_id INTEGER NOT NULL,
			seller_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			total_amount NUMERIC(12,2) NOT NULL CHECK (total_amount >= 0),
			order_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			shipping_status VARCHAR(20) NOT NULL DEFAULT 'Pending',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'Pending'
		);`,
		`CREATE TABLE IF NOT EXISTS seller_orders (
			id SERIAL PRIMARY KEY,
			product_id INTEGER NOT NULL,
			seller_id INTEGER NOT NULL,
			shopper_id INTEGER NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			total_amount NUMERIC(12,2) NOT NULL CHECK (total_amount >= 0),
			order_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			shipping_status VARCHAR(20) NOT NULL DEFAULT 'Pending',
			payment_status VARCHAR(20) NOT NULL DEFAULT 'Pending',
			shopper_order_id INTEGER NOT NULL UNIQUE REFERENCES order_items(id) ON DELETE CASCADE,
			delivery_date TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS order_history (
			id SERIAL PRIMARY KEY,
			shopper_id INTEGER NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			product_price NUMERIC(12,2) NOT NULL,
			product_description TEXT NOT NULL DEFAULT '',
			seller_name VARCHAR(255) NOT NULL,
			store_name VARCHAR(255) NOT NULL DEFAULT '',
			quantity INTEGER NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL,
			shipping_status VARCHAR(20) NOT NULL,
			payment_status VARCHAR(20) NOT NULL,
			order_date TIMESTAMP NOT NULL,
			archived_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS seller_order_history (
			id SERIAL PRIMARY KEY,
			seller_id INTEGER NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			product_price NUMERIC(12,2) NOT NULL,
			product_description TEXT NOT NULL DEFAULT '',
			shopper_name VARCHAR(255) NOT NULL,
			shopper_email VARCHAR(255) NOT NULL,
			quantity INTEGER NOT NULL,
			total_amount NUMERIC(12,2) NOT NULL,
			shipping_status VARCHAR(20) NOT NULL,
			payment_status VARCHAR(20) NOT NULL,
			order_date TIMESTAMP NOT NULL,
			archived_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
