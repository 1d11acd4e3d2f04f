package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/pius-coder/dropIndrop-v1-sub000/internal/config"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	cfg := config.GetConfig()

	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.Name, cfg.Database.SSLMode)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	log.Println("Database connected successfully")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	// Create users table
	usersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		is_admin BOOLEAN DEFAULT false,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	// Create categories table
	categoriesTable := `
	CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		parent_id UUID REFERENCES categories(id) ON DELETE SET NULL,
		sort_order INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	// Create products table
	productsTable := `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(12,2) NOT NULL,
		currency VARCHAR(3) DEFAULT 'IDR',
		image_url VARCHAR(500),
		category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
		is_active BOOLEAN DEFAULT true,
		stock INTEGER DEFAULT 0,
		created_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	// Create whatsapp_groups table
	whatsappGroupsTable := `
	CREATE TABLE IF NOT EXISTS whatsapp_groups (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		chat_id VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		member_count INTEGER DEFAULT 0,
		is_active BOOLEAN DEFAULT true,
		last_synced_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	// Create drops table. Status values are a reporting contract.
	dropsTable := `
	CREATE TABLE IF NOT EXISTS drops (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255),
		scheduled_date TIMESTAMP NOT NULL,
		status VARCHAR(20) DEFAULT 'DRAFT' CHECK (status IN ('DRAFT', 'SCHEDULED', 'SENT', 'CANCELLED')),
		sent_at TIMESTAMP,
		whatsapp_message_id VARCHAR(255),
		created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	// Create drop_products table (ordered item list of a drop)
	dropProductsTable := `
	CREATE TABLE IF NOT EXISTS drop_products (
		id BIGSERIAL PRIMARY KEY,
		drop_id UUID NOT NULL REFERENCES drops(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		sort_order INTEGER DEFAULT 0,
		UNIQUE(drop_id, product_id)
	);`

	// Create drop_groups table (recipient set of a drop).
	// Serial id keeps the binding order, which is also the fan-out order.
	dropGroupsTable := `
	CREATE TABLE IF NOT EXISTS drop_groups (
		id BIGSERIAL PRIMARY KEY,
		drop_id UUID NOT NULL REFERENCES drops(id) ON DELETE CASCADE,
		group_id UUID NOT NULL REFERENCES whatsapp_groups(id) ON DELETE CASCADE,
		UNIQUE(drop_id, group_id)
	);`

	// Create payments table
	paymentsTable := `
	CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		customer_phone VARCHAR(50) NOT NULL,
		customer_name VARCHAR(255) NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		currency VARCHAR(3) DEFAULT 'IDR',
		status VARCHAR(20) DEFAULT 'pending' CHECK (status IN ('pending', 'paid', 'failed', 'cancelled')),
		midtrans_transaction_id VARCHAR(255),
		payment_link_url VARCHAR(500),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	// Create otps table
	otpsTable := `
	CREATE TABLE IF NOT EXISTS otps (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) NOT NULL,
		code VARCHAR(6) NOT NULL,
		purpose VARCHAR(50) NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		used BOOLEAN DEFAULT false,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	// Create settings table (configuration wizard)
	settingsTable := `
	CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR(100) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	dropsIndexes := `
	CREATE INDEX IF NOT EXISTS idx_drops_status ON drops(status);
	CREATE INDEX IF NOT EXISTS idx_drops_scheduled_date ON drops(scheduled_date);
	CREATE INDEX IF NOT EXISTS idx_drop_products_drop_id ON drop_products(drop_id);
	CREATE INDEX IF NOT EXISTS idx_drop_groups_drop_id ON drop_groups(drop_id);`

	migrations := []string{
		usersTable,
		categoriesTable,
		productsTable,
		whatsappGroupsTable,
		dropsTable,
		dropProductsTable,
		dropGroupsTable,
		paymentsTable,
		otpsTable,
		settingsTable,
		dropsIndexes,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %v", err)
		}
	}

	log.Println("Database migrations completed")
	return nil
}
