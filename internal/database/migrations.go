package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so the server can run them unconditionally at startup.
//
// Notes on the orders table:
//   - id is a CHAR(36) UUID generated by the application.
//   - items holds the JSON line-item snapshot taken at creation.
//   - stripe_session_id is UNIQUE; it is the sole reconciliation key
//     for checkout webhook events.
//   - there is deliberately no ON DELETE CASCADE from tables to orders;
//     tables with orders are deactivated, never deleted.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id            BIGINT AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(100) NOT NULL,
		display_order BIGINT NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS menu_items (
		id           BIGINT AUTO_INCREMENT PRIMARY KEY,
		category_id  BIGINT NOT NULL,
		name         VARCHAR(200) NOT NULL,
		description  TEXT NULL,
		price        DECIMAL(10,2) NOT NULL,
		image_url    VARCHAR(500) NULL,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_menu_items_category FOREIGN KEY (category_id)
			REFERENCES categories(id) ON DELETE CASCADE,
		INDEX idx_menu_items_category (category_id),
		INDEX idx_menu_items_available (is_available)
	)`,
	`CREATE TABLE IF NOT EXISTS tables (
		id           BIGINT AUTO_INCREMENT PRIMARY KEY,
		table_number BIGINT NOT NULL,
		qr_code_url  VARCHAR(500) NULL,
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_tables_number (table_number)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                       CHAR(36) PRIMARY KEY,
		table_id                 BIGINT NOT NULL,
		items                    JSON NOT NULL,
		total_amount             DECIMAL(10,2) NOT NULL,
		customer_name            VARCHAR(200) NULL,
		special_instructions     TEXT NULL,
		payment_status           VARCHAR(20) NOT NULL DEFAULT 'pending',
		fulfillment_status       VARCHAR(20) NOT NULL DEFAULT 'pending',
		stripe_session_id        VARCHAR(255) NULL,
		stripe_payment_intent_id VARCHAR(255) NULL,
		created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_orders_table FOREIGN KEY (table_id) REFERENCES tables(id),
		CONSTRAINT chk_payment_status CHECK (payment_status IN ('pending','paid','failed')),
		CONSTRAINT chk_fulfillment_status CHECK (fulfillment_status IN ('pending','accepted','rejected','completed')),
		UNIQUE KEY uq_orders_stripe_session (stripe_session_id),
		INDEX idx_orders_table (table_id),
		INDEX idx_orders_intent (stripe_payment_intent_id),
		INDEX idx_orders_created (created_at)
	)`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
