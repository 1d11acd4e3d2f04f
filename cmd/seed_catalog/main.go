package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

func main() {
	// Database connection
	db, err := sql.Open("postgres", "host=localhost port=5432 user=dropindrop_user password=dropindrop_password dbname=dropindrop_db sslmode=disable")
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Test connection
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	fmt.Println("Connected to database successfully")

	// Seed categories
	categories := []string{
		"Fashion Pria",
		"Fashion Wanita",
		"Elektronik",
		"Aksesoris",
	}

	categoryIDs := map[string]string{}
	for i, name := range categories {
		var id string
		err := db.QueryRow(`
			INSERT INTO categories (name, sort_order)
			SELECT $1, $2
			WHERE NOT EXISTS (SELECT 1 FROM categories WHERE name = $1)
			RETURNING id
		`, name, i).Scan(&id)
		if err == sql.ErrNoRows {
			if err := db.QueryRow(`SELECT id FROM categories WHERE name = $1`, name).Scan(&id); err != nil {
				log.Printf("Error fetching category %s: %v", name, err)
				continue
			}
			fmt.Printf("Category already exists: %s\n", name)
		} else if err != nil {
			log.Printf("Error seeding category %s: %v", name, err)
			continue
		} else {
			fmt.Printf("Created category: %s\n", name)
		}
		categoryIDs[name] = id
	}

	// Seed demo products
	products := []struct {
		Name        string
		Description string
		Price       float64
		Category    string
		Stock       int
	}{
		{"Kaos Polos Hitam", "Kaos katun combed 30s, ukuran M-XXL", 85000, "Fashion Pria", 50},
		{"Kemeja Flanel", "Kemeja flanel lengan panjang motif kotak", 165000, "Fashion Pria", 25},
		{"Dress Casual", "Dress katun adem untuk harian", 195000, "Fashion Wanita", 30},
		{"Hijab Voal Premium", "Hijab voal ultrafine, banyak pilihan warna", 55000, "Fashion Wanita", 100},
		{"TWS Earbuds", "Earbuds bluetooth 5.3, case charging", 230000, "Elektronik", 40},
		{"Powerbank 10000mAh", "Powerbank slim fast charging 22.5W", 175000, "Elektronik", 35},
		{"Jam Tangan Analog", "Jam tangan tali kulit, water resistant", 320000, "Aksesoris", 15},
		{"Gelang Titanium", "Gelang titanium anti karat", 95000, "Aksesoris", 60},
	}

	for _, p := range products {
		categoryID, ok := categoryIDs[p.Category]
		if !ok {
			log.Printf("Skipping %s: category %s not found", p.Name, p.Category)
			continue
		}

		result, err := db.Exec(`
			INSERT INTO products (name, description, price, currency, category_id, is_active, stock)
			SELECT $1, $2, $3, 'IDR', $4, true, $5
			WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)
		`, p.Name, p.Description, p.Price, categoryID, p.Stock)
		if err != nil {
			log.Printf("Error seeding product %s: %v", p.Name, err)
			continue
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected > 0 {
			fmt.Printf("Created product: %s (Rp %.0f)\n", p.Name, p.Price)
		} else {
			fmt.Printf("Product already exists: %s\n", p.Name)
		}
	}

	fmt.Println("Catalog seeding completed!")
}
