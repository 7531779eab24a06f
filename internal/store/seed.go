package store

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/datasage-ai/datasage/internal/types"
)

// Demo store: a small retail dataset (categories, products, users, sales,
// inventory log) so the pipeline can be exercised without external data.

var seedStatements = []string{
	`DROP TABLE IF EXISTS inventory_log`,
	`DROP TABLE IF EXISTS sales`,
	`DROP TABLE IF EXISTS products`,
	`DROP TABLE IF EXISTS users`,
	`DROP TABLE IF EXISTS categories`,
	`CREATE TABLE categories (
		category_id INTEGER PRIMARY KEY AUTOINCREMENT,
		category_name TEXT NOT NULL UNIQUE,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE products (
		product_id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_name TEXT NOT NULL,
		category_id INTEGER NOT NULL,
		price REAL NOT NULL,
		cost_price REAL NOT NULL,
		stock_quantity INTEGER DEFAULT 0,
		reorder_level INTEGER DEFAULT 10,
		supplier TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (category_id) REFERENCES categories(category_id)
	)`,
	`CREATE TABLE users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		city TEXT,
		country TEXT,
		registration_date DATE,
		is_active INTEGER DEFAULT 1
	)`,
	`CREATE TABLE sales (
		sale_id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL,
		user_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		sale_date DATE NOT NULL,
		unit_price REAL NOT NULL,
		discount_percent REAL DEFAULT 0,
		total_amount REAL NOT NULL,
		payment_method TEXT,
		status TEXT DEFAULT 'completed',
		FOREIGN KEY (product_id) REFERENCES products(product_id),
		FOREIGN KEY (user_id) REFERENCES users(user_id)
	)`,
	`CREATE TABLE inventory_log (
		log_id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL,
		change_quantity INTEGER NOT NULL,
		change_type TEXT NOT NULL,
		change_date DATE NOT NULL,
		notes TEXT,
		FOREIGN KEY (product_id) REFERENCES products(product_id)
	)`,
}

var seedCategories = []struct {
	name, description string
}{
	{"Clothing", "Apparel for men, women and children"},
	{"Electronics", "Consumer electronics and accessories"},
	{"Home & Garden", "Household goods and garden supplies"},
	{"Sports", "Sporting goods and outdoor equipment"},
	{"Books", "Print and digital books"},
	{"Beauty", "Cosmetics, skincare, and personal care products"},
	{"Toys", "Toys and games for all ages"},
	{"Food & Beverage", "Groceries and specialty foods"},
}

var seedProducts = []struct {
	name     string
	category int
	price    float64
}{
	{"Classic T-Shirt", 1, 19.99},
	{"Denim Jeans", 1, 59.99},
	{"Hooded Sweatshirt", 1, 39.99},
	{"Running Socks 3-Pack", 1, 12.99},
	{"Wireless Earbuds", 2, 89.99},
	{"Smartphone Stand", 2, 15.99},
	{"USB-C Charger", 2, 24.99},
	{"Bluetooth Speaker", 2, 49.99},
	{"Ceramic Plant Pot", 3, 18.50},
	{"LED Desk Lamp", 3, 32.00},
	{"Garden Hose 25m", 3, 44.95},
	{"Yoga Mat", 4, 29.99},
	{"Dumbbell Set 10kg", 4, 74.99},
	{"Trail Running Shoes", 4, 119.99},
	{"Mystery Novel", 5, 14.99},
	{"Cookbook: Quick Dinners", 5, 24.99},
	{"Face Moisturizer", 6, 21.99},
	{"Shampoo 500ml", 6, 9.99},
	{"Building Blocks Set", 7, 34.99},
	{"Board Game Classic", 7, 27.99},
	{"Organic Coffee Beans", 8, 16.99},
	{"Dark Chocolate Box", 8, 12.49},
}

var seedUsers = []struct {
	name, email, city, country string
}{
	{"Alice Hartman", "alice.hartman@example.com", "Berlin", "Germany"},
	{"Bruno Keller", "bruno.keller@example.com", "Zurich", "Switzerland"},
	{"Carla Mendes", "carla.mendes@example.com", "Lisbon", "Portugal"},
	{"Daniel Okafor", "daniel.okafor@example.com", "Lagos", "Nigeria"},
	{"Emma Lindqvist", "emma.lindqvist@example.com", "Stockholm", "Sweden"},
	{"Felix Tanaka", "felix.tanaka@example.com", "Osaka", "Japan"},
	{"Grace Liu", "grace.liu@example.com", "Singapore", "Singapore"},
	{"Hugo Marchand", "hugo.marchand@example.com", "Lyon", "France"},
	{"Ines Castillo", "ines.castillo@example.com", "Madrid", "Spain"},
	{"Jonas Berg", "jonas.berg@example.com", "Oslo", "Norway"},
	{"Katya Ivanova", "katya.ivanova@example.com", "Riga", "Latvia"},
	{"Liam O'Brien", "liam.obrien@example.com", "Dublin", "Ireland"},
	{"Maria Rossi", "maria.rossi@example.com", "Milan", "Italy"},
	{"Noah Fischer", "noah.fischer@example.com", "Vienna", "Austria"},
	{"Olivia Hansen", "olivia.hansen@example.com", "Copenhagen", "Denmark"},
	{"Pedro Alvarez", "pedro.alvarez@example.com", "Mexico City", "Mexico"},
}

var paymentMethods = []string{"credit_card", "debit_card", "paypal", "bank_transfer"}

// Seed rebuilds the demo dataset inside the store. Existing demo tables are
// dropped and recreated. Sales are spread over the trailing 90 days with a
// deterministic generator so repeated seeding yields the same dataset.
func (s *Store) Seed(ctx context.Context) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return types.WrapError(ErrQueryFailed, "failed to begin seed transaction", err)
	}
	defer tx.Rollback()

	for _, stmt := range seedStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return types.WrapError(ErrQueryFailed, "failed to create demo tables", err)
		}
	}

	for _, c := range seedCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (category_name, description) VALUES (?, ?)`,
			c.name, c.description); err != nil {
			return types.WrapError(ErrQueryFailed, "failed to insert categories", err)
		}
	}

	for _, p := range seedProducts {
		cost := p.price * 0.6
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO products (product_name, category_id, price, cost_price, stock_quantity, reorder_level, supplier)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.name, p.category, p.price, cost, 50+p.category*10, 10, "Acme Wholesale"); err != nil {
			return types.WrapError(ErrQueryFailed, "failed to insert products", err)
		}
	}

	now := time.Now()
	for i, u := range seedUsers {
		regDate := now.AddDate(0, 0, -(30 + i*11)).Format("2006-01-02")
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (name, email, city, country, registration_date, is_active)
			 VALUES (?, ?, ?, ?, ?, 1)`,
			u.name, u.email, u.city, u.country, regDate); err != nil {
			return types.WrapError(ErrQueryFailed, "failed to insert users", err)
		}
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 300; i++ {
		product := seedProducts[rng.Intn(len(seedProducts))]
		productID := 0
		for idx, p := range seedProducts {
			if p.name == product.name {
				productID = idx + 1
				break
			}
		}
		userID := rng.Intn(len(seedUsers)) + 1
		quantity := rng.Intn(5) + 1
		discount := float64(rng.Intn(4)) * 5.0
		total := float64(quantity) * product.price * (1 - discount/100)
		saleDate := now.AddDate(0, 0, -rng.Intn(90)).Format("2006-01-02")
		method := paymentMethods[rng.Intn(len(paymentMethods))]

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sales (product_id, user_id, quantity, sale_date, unit_price, discount_percent, total_amount, payment_method, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'completed')`,
			productID, userID, quantity, saleDate, product.price, discount,
			fmt.Sprintf("%.2f", total), method); err != nil {
			return types.WrapError(ErrQueryFailed, "failed to insert sales", err)
		}
	}

	for i := 0; i < 60; i++ {
		productID := rng.Intn(len(seedProducts)) + 1
		change := rng.Intn(40) - 20
		changeType := "restock"
		if change < 0 {
			changeType = "sale"
		}
		changeDate := now.AddDate(0, 0, -rng.Intn(90)).Format("2006-01-02")
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_log (product_id, change_quantity, change_type, change_date, notes)
			 VALUES (?, ?, ?, ?, '')`,
			productID, change, changeType, changeDate); err != nil {
			return types.WrapError(ErrQueryFailed, "failed to insert inventory log", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return types.WrapError(ErrQueryFailed, "failed to commit seed transaction", err)
	}
	return nil
}
