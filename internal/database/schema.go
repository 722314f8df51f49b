package database

import (
	"fmt"

	"github.com/gocql/gocql"
)

const createKeyspace = `CREATE KEYSPACE IF NOT EXISTS %s
	WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`

// Tables du keyspace. Les tables *_by_* sont des index maintenus par les
// repositories.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		category_id uuid PRIMARY KEY,
		name text,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id uuid PRIMARY KEY,
		category_id uuid,
		name text,
		description text,
		image_url text,
		price decimal,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS products_by_category (
		category_id uuid,
		product_id uuid,
		PRIMARY KEY (category_id, product_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		user_id uuid PRIMARY KEY,
		name text,
		email text,
		phone_number text,
		password text,
		role text,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS users_by_email (
		email text PRIMARY KEY,
		user_id uuid
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		user_id uuid PRIMARY KEY,
		street text,
		city text,
		state text,
		zip_code text,
		country text
	)`,
	`CREATE TABLE IF NOT EXISTS password_reset_tokens (
		token text PRIMARY KEY,
		user_id uuid,
		expires_at timestamp,
		used boolean
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id uuid PRIMARY KEY,
		user_id uuid,
		status text,
		total_price decimal,
		items text,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS orders_by_user (
		user_id uuid,
		created_at timestamp,
		order_id uuid,
		PRIMARY KEY (user_id, created_at, order_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, order_id ASC)`,
	`CREATE TABLE IF NOT EXISTS order_items_by_id (
		item_id uuid PRIMARY KEY,
		order_id uuid
	)`,
	`CREATE TABLE IF NOT EXISTS orders_by_product (
		product_id uuid,
		order_id uuid,
		PRIMARY KEY (product_id, order_id)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		payment_id uuid PRIMARY KEY,
		order_id uuid,
		amount decimal,
		method text,
		status text,
		reference text,
		created_at timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS payments_by_order (
		order_id uuid PRIMARY KEY,
		payment_id uuid
	)`,
}

// Migrate applique le schéma. Chaque instruction est idempotente.
func Migrate(session *gocql.Session) error {
	for _, stmt := range schema {
		if err := session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}
	return nil
}
