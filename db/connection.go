package db

import (
	"database/sql"
	"fmt"

	"payments-dashboard/config"

	_ "github.com/lib/pq"
)

var DB *sql.DB

func InitDB() error {
	var err error
	connStr := config.GetDBConnString()

	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	err = DB.Ping()
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	// Create tables
	if err := createTables(); err != nil {
		return fmt.Errorf("error creating tables: %w", err)
	}

	return nil
}

func createTables() error {
	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);`

	ordersTable := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY DEFAULT (gen_random_uuid()::text),
		school_id TEXT NOT NULL,
		trustee_id TEXT,
		student_name TEXT NOT NULL,
		student_id TEXT NOT NULL,
		student_email TEXT NOT NULL,
		gateway_name TEXT NOT NULL DEFAULT 'PhonePe',
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);`

	orderStatusTable := `
	CREATE TABLE IF NOT EXISTS order_status (
		id SERIAL PRIMARY KEY,
		collect_id TEXT NOT NULL UNIQUE,
		order_amount DOUBLE PRECISION NOT NULL CHECK (order_amount >= 0),
		transaction_amount DOUBLE PRECISION CHECK (transaction_amount >= 0),
		payment_mode TEXT,
		payment_details TEXT,
		bank_reference TEXT,
		payment_message TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		error_message TEXT,
		payment_time TIMESTAMPTZ,
		version INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,

		CONSTRAINT fk_order
			FOREIGN KEY (collect_id)
			REFERENCES orders(id)
	);`

	webhookLogsTable := `
	CREATE TABLE IF NOT EXISTS webhook_logs (
		id SERIAL PRIMARY KEY,
		received_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		payload JSONB NOT NULL,
		status TEXT NOT NULL DEFAULT 'processed',
		processing_error TEXT,
		order_id TEXT,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);`

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_orders_school_id ON orders(school_id);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_order_status_status ON order_status(status);`,
		`CREATE INDEX IF NOT EXISTS idx_order_status_payment_time ON order_status(payment_time DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_logs_received_at ON webhook_logs(received_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_webhook_logs_order_id ON webhook_logs(order_id);`,
	}

	// Orders first so order_status can reference it
	for _, stmt := range []string{usersTable, ordersTable, orderStatusTable, webhookLogsTable} {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("error creating table: %w", err)
		}
	}

	for _, stmt := range indexes {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("error creating index: %w", err)
		}
	}

	return nil
}
