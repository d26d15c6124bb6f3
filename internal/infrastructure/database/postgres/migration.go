// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/greenbasket/grocery-backend/internal/domain/cart"
	"github.com/greenbasket/grocery-backend/internal/domain/product"
	"github.com/greenbasket/grocery-backend/internal/domain/review"
	"github.com/greenbasket/grocery-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Dependency order: products and users first, carts and reviews after
	models := []interface{}{
		&user.User{},
		&product.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&review.Review{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_on_special ON products(is_on_special)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",

		// Cart indexes: the reclaimer scans by last-modified timestamp
		"CREATE INDEX IF NOT EXISTS idx_carts_updated_at ON carts(updated_at)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_id ON cart_items(cart_id)",

		// Review indexes
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_created ON reviews(product_id, created_at DESC)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Database indexes created successfully")
	return nil
}

// SeedInitialData seeds a development admin account and a shelf of produce
func (m *Migration) SeedInitialData() error {
	log.Println("🔄 Seeding initial data...")

	var adminCount int64
	m.db.Model(&user.User{}).Where("is_admin = ?", true).Count(&adminCount)
	if adminCount == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin := &user.User{
			Email:    "admin@greenbasket.local",
			Password: string(hashed),
			Name:     "Store Admin",
			IsAdmin:  true,
		}
		if err := m.db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
	}

	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount == 0 {
		specialBananas := int64(199)
		products := []product.Product{
			{Name: "Bananas", Description: "Cavendish bananas", Price: 299, Quantity: 120, Unit: "kg", IsOnSpecial: true, SpecialPrice: &specialBananas},
			{Name: "Whole Milk", Description: "Full cream milk, 2L", Price: 349, Quantity: 60, Unit: "each"},
			{Name: "Sourdough Loaf", Description: "Stone-baked sourdough", Price: 549, Quantity: 25, Unit: "each"},
			{Name: "Free Range Eggs", Description: "Dozen large eggs", Price: 699, Quantity: 40, Unit: "dozen"},
			{Name: "Baby Spinach", Description: "Washed baby spinach, 120g", Price: 399, Quantity: 35, Unit: "bag"},
		}
		if err := m.db.Create(&products).Error; err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// GetTableInfo logs row counts per table, useful during development
func (m *Migration) GetTableInfo() {
	type tableCount struct {
		name  string
		model interface{}
	}

	tables := []tableCount{
		{"users", &user.User{}},
		{"products", &product.Product{}},
		{"carts", &cart.Cart{}},
		{"cart_items", &cart.CartItem{}},
		{"reviews", &review.Review{}},
	}

	for _, t := range tables {
		var count int64
		m.db.Model(t.model).Count(&count)
		log.Printf("Table %s: %d rows", t.name, count)
	}
}
