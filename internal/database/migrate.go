package database

import (
	"context"
	"database/sql"
	"fmt"
)

// specColumns is shared by specifications and issued_specifications so an
// issued snapshot always carries the same fields as the live specification.
const specColumns = `
	internal_diameter_target TEXT NOT NULL DEFAULT '0',
	internal_diameter_top TEXT NOT NULL DEFAULT '0',
	internal_diameter_bottom TEXT NOT NULL DEFAULT '0',
	external_diameter_target TEXT NOT NULL DEFAULT '0',
	external_diameter_top TEXT NOT NULL DEFAULT '0',
	external_diameter_bottom TEXT NOT NULL DEFAULT '0',
	wall_thickness_target TEXT NOT NULL DEFAULT '0',
	wall_thickness_top TEXT NOT NULL DEFAULT '0',
	wall_thickness_bottom TEXT NOT NULL DEFAULT '0',
	length_target TEXT NOT NULL DEFAULT '0',
	length_top TEXT NOT NULL DEFAULT '0',
	length_bottom TEXT NOT NULL DEFAULT '0',
	flat_crush_resistance_target INTEGER NOT NULL DEFAULT 0,
	flat_crush_resistance_top INTEGER NOT NULL DEFAULT 0,
	flat_crush_resistance_bottom INTEGER NOT NULL DEFAULT 0,
	moisture_content_target INTEGER NOT NULL DEFAULT 0,
	moisture_content_top INTEGER NOT NULL DEFAULT 0,
	moisture_content_bottom INTEGER NOT NULL DEFAULT 0,
	colour TEXT NOT NULL DEFAULT '',
	finish TEXT NOT NULL DEFAULT '',
	maximum_height_of_pallet TEXT NOT NULL DEFAULT '0',
	quantity_on_the_pallet INTEGER NOT NULL DEFAULT 0,
	pallet_protected_with_paper_edges TEXT NOT NULL DEFAULT 'N' CHECK(pallet_protected_with_paper_edges IN ('Y','N')),
	pallet_wrapped_with_stretch_film TEXT NOT NULL DEFAULT 'N' CHECK(pallet_wrapped_with_stretch_film IN ('Y','N')),
	cores_packed_in TEXT NOT NULL DEFAULT 'Horizontal' CHECK(cores_packed_in IN ('Horizontal','Vertical','On_carton')),
	remarks TEXT NOT NULL DEFAULT ''`

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		display_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'user' CHECK(role IN ('admin','user','readonly')),
		active INTEGER NOT NULL DEFAULT 1,
		failed_login_attempts INTEGER NOT NULL DEFAULT 0,
		locked_until DATETIME,
		last_login DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL,
		last_activity DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS session_values (
		token TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (token, key),
		FOREIGN KEY (token) REFERENCES sessions(token) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS role_permissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		role TEXT NOT NULL,
		module TEXT NOT NULL,
		action TEXT NOT NULL,
		UNIQUE(role, module, action)
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL DEFAULT 'system',
		action TEXT NOT NULL,
		module TEXT NOT NULL,
		record_id TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sap_id INTEGER NOT NULL UNIQUE CHECK(sap_id BETWEEN 0 AND 9999999),
		client_name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sap_id INTEGER NOT NULL UNIQUE CHECK(sap_id BETWEEN 0 AND 9999999),
		product_index TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS specifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL UNIQUE,` + specColumns + `,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS issued_specifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		date_of_issue TEXT NOT NULL,` + specColumns + `,
		FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sap_id INTEGER UNIQUE CHECK(sap_id IS NULL OR sap_id BETWEEN 0 AND 99999999),
		client_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		date_of_production TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Started' CHECK(status IN ('Started','Open','Done')),
		quantity INTEGER CHECK(quantity IS NULL OR quantity >= 0),
		internal_diameter_reference TEXT,
		external_diameter_reference TEXT,
		length TEXT,
		FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS measurement_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		order_id INTEGER NOT NULL UNIQUE,
		author TEXT NOT NULL,
		date_of_control TEXT NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS measurements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL,
		pallet_number INTEGER NOT NULL,
		internal_diameter_tolerance_top TEXT NOT NULL DEFAULT '0',
		internal_diameter_target TEXT NOT NULL DEFAULT '0',
		internal_diameter_tolerance_bottom TEXT NOT NULL DEFAULT '0',
		external_diameter_tolerance_top TEXT NOT NULL DEFAULT '0',
		external_diameter_target TEXT NOT NULL DEFAULT '0',
		external_diameter_tolerance_bottom TEXT NOT NULL DEFAULT '0',
		length_tolerance_top TEXT NOT NULL DEFAULT '0',
		length_target TEXT NOT NULL DEFAULT '0',
		length_tolerance_bottom TEXT NOT NULL DEFAULT '0',
		flat_crush_resistance_target INTEGER,
		moisture_content_target INTEGER,
		weight INTEGER,
		remarks TEXT NOT NULL DEFAULT '',
		UNIQUE(report_id, pallet_number),
		FOREIGN KEY (report_id) REFERENCES measurement_reports(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_client ON orders(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_product ON orders(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_issued_product ON issued_specifications(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
}

// Migrate creates every table the application needs. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
