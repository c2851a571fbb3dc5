package main

import (
	"database/sql"
)

// ensureTable creates the necessary tables if they don't exist.
func ensureTable(db *sql.DB) error {
	// clients table holds the minimum the dashboard greeting needs
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS clients (
        id VARCHAR(64) PRIMARY KEY,
        first_name VARCHAR(255) NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    )`); err != nil {
		return err
	}

	// shops table mirrors the store records the marketplace backend owns
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS shops (
        id VARCHAR(64) PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        is_open BOOLEAN DEFAULT FALSE,
        is_paused BOOLEAN DEFAULT FALSE
    )`); err != nil {
		return err
	}

	// client_shops links a client to nearby shops; position carries the
	// backend's proximity order and distance_km feeds the distance filter
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS client_shops (
        client_id VARCHAR(64) NOT NULL,
        shop_id VARCHAR(64) NOT NULL,
        distance_km DECIMAL(6,2) NOT NULL DEFAULT 0,
        position INT NOT NULL DEFAULT 0,
        PRIMARY KEY (client_id, shop_id),
        INDEX idx_client_shops_client (client_id, position)
    )`); err != nil {
		return err
	}

	// orders plus their append-only status logs
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS orders (
        id VARCHAR(64) PRIMARY KEY,
        client_id VARCHAR(64) NOT NULL,
        order_number VARCHAR(64) NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        INDEX idx_orders_client (client_id, created_at)
    )`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS order_logs (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        order_id VARCHAR(64) NOT NULL,
        status VARCHAR(32) NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        INDEX idx_order_logs_order (order_id)
    )`); err != nil {
		return err
	}

	// products and their purchasable variants
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS products (
        id VARCHAR(64) PRIMARY KEY,
        title VARCHAR(255) NOT NULL,
        tags TEXT,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    )`); err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS product_variants (
        id VARCHAR(64) PRIMARY KEY,
        product_id VARCHAR(64) NOT NULL,
        title VARCHAR(255) NOT NULL,
        image_url TEXT,
        image_public_id VARCHAR(255),
        stock INT NOT NULL DEFAULT 0,
        price DECIMAL(10,2) DEFAULT 0.00,
        by_weight BOOLEAN DEFAULT FALSE,
        available_for_sale BOOLEAN DEFAULT TRUE,
        taxable BOOLEAN DEFAULT TRUE,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        INDEX idx_variants_product (product_id)
    )`); err != nil {
		return err
	}

	// shop categories for the dashboard carousel
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS categories (
        id BIGINT AUTO_INCREMENT PRIMARY KEY,
        name VARCHAR(255) NOT NULL UNIQUE
    )`); err != nil {
		return err
	}

	// seed default categories
	if _, err := db.Exec(`INSERT INTO categories (name)
        SELECT * FROM (
            SELECT 'FRUITS_AND_VEGETABLES'
            UNION SELECT 'FISH_AND_SEAFOOD'
            UNION SELECT 'HEALTHY'
            UNION SELECT 'KETO'
            UNION SELECT 'BAKERY'
            UNION SELECT 'WORLD_PRODUCTS'
            UNION SELECT 'BUTCHER'
        ) AS defaults
        WHERE NOT EXISTS (SELECT 1 FROM categories)`); err != nil {
		return err
	}

	// cart lines recorded by the add-to-cart sink
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS cart_lines (
        id VARCHAR(64) PRIMARY KEY,
        client_id VARCHAR(64) NOT NULL,
        variant_id VARCHAR(64) NOT NULL,
        quantity DECIMAL(10,3) NOT NULL,
        created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        INDEX idx_cart_lines_client (client_id)
    )`); err != nil {
		return err
	}

	return nil
}
