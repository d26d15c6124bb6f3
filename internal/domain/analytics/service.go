// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"

	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/greenbasket/grocery-backend/internal/domain/cart"
	"github.com/greenbasket/grocery-backend/internal/domain/product"
	"github.com/greenbasket/grocery-backend/internal/domain/review"
	"github.com/greenbasket/grocery-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Service computes the aggregates behind the admin dashboard charts
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new analytics service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	// Product metrics
	TotalProducts      int64 `json:"total_products"`
	ProductsOnSpecial  int64 `json:"products_on_special"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
	StockOnHand        int64 `json:"stock_on_hand"` // Sum of available units

	// Review metrics
	TotalReviews  int64         `json:"total_reviews"`
	AverageRating float64       `json:"average_rating"`
	RatingCounts  []RatingCount `json:"rating_counts"`

	// User metrics
	TotalUsers int64 `json:"total_users"`

	// Cart / reservation metrics
	ActiveCarts    int64           `json:"active_carts"`
	ReservedUnits  int64           `json:"reserved_units"` // Units held in carts, off the shelf
	TopReservation []ReservedStock `json:"top_reservations"`
}

// RatingCount is one bar of the ratings distribution chart
type RatingCount struct {
	Rating int   `json:"rating"`
	Count  int64 `json:"count"`
}

// ReservedStock is one row of the reserved-units-per-product chart
type ReservedStock struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Reserved  int64  `json:"reserved"`
}

// GetDashboardStats computes the full dashboard in one call
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&product.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := db.Model(&product.Product{}).Where("is_on_special = ?", true).Count(&stats.ProductsOnSpecial).Error; err != nil {
		return nil, fmt.Errorf("failed to count specials: %w", err)
	}
	if err := db.Model(&product.Product{}).Where("quantity = 0").Count(&stats.OutOfStockProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count out-of-stock products: %w", err)
	}
	if err := db.Model(&product.Product{}).Select("COALESCE(SUM(quantity), 0)").Scan(&stats.StockOnHand).Error; err != nil {
		return nil, fmt.Errorf("failed to sum stock: %w", err)
	}

	if err := db.Model(&review.Review{}).Count(&stats.TotalReviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	if stats.TotalReviews > 0 {
		if err := db.Model(&review.Review{}).Select("AVG(rating)").Scan(&stats.AverageRating).Error; err != nil {
			return nil, fmt.Errorf("failed to average ratings: %w", err)
		}
	}
	if err := db.Model(&review.Review{}).
		Select("rating, COUNT(*) as count").
		Group("rating").
		Order("rating").
		Scan(&stats.RatingCounts).Error; err != nil {
		return nil, fmt.Errorf("failed to bucket ratings: %w", err)
	}

	if err := db.Model(&user.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	if err := db.Model(&cart.Cart{}).Count(&stats.ActiveCarts).Error; err != nil {
		return nil, fmt.Errorf("failed to count carts: %w", err)
	}
	if err := db.Model(&cart.CartItem{}).Select("COALESCE(SUM(quantity), 0)").Scan(&stats.ReservedUnits).Error; err != nil {
		return nil, fmt.Errorf("failed to sum reserved units: %w", err)
	}
	if err := db.Table("cart_items").
		Select("cart_items.product_id, products.name, SUM(cart_items.quantity) as reserved").
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Group("cart_items.product_id, products.name").
		Order("reserved DESC").
		Limit(10).
		Scan(&stats.TopReservation).Error; err != nil {
		return nil, fmt.Errorf("failed to rank reservations: %w", err)
	}

	return stats, nil
}
