// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/greenbasket/grocery-backend/internal/domain/product"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Service maintains the reservation relationship between users, carts and
// product stock. Every multi-step mutation (stock check, line-item write,
// stock adjustment, cart timestamp) runs inside a single transaction so the
// "reserved <= stock" invariant holds under concurrent requests and a
// concurrently running reclaimer.
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new cart service. redisClient may be nil; it is only
// used to drop cached product entries whose stock count changed.
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// AddItem reserves quantity units of a product for the user's cart. The cart
// and line item are created lazily; a repeat add increments the existing line.
// Stock is decremented immediately, visible to all subsequent reads.
func (s *Service) AddItem(ctx context.Context, userID, productID uint, quantity int) (*CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var item CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prod product.Product
		if err := tx.First(&prod, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		// Guarded decrement: the WHERE clause re-checks availability so two
		// concurrent adds near the stock boundary cannot both succeed.
		result := tx.Model(&product.Product{}).
			Where("id = ? AND quantity >= ?", productID, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
		if result.Error != nil {
			return fmt.Errorf("failed to reserve stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		userCart, err := s.findOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		err = tx.Where("cart_id = ? AND product_id = ?", userCart.ID, productID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = CartItem{
				CartID:    userCart.ID,
				ProductID: productID,
				Quantity:  quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create cart item: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to load cart item: %w", err)
		default:
			item.Quantity += quantity
			if err := tx.Save(&item).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		}

		return touchCart(tx, userCart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProductCache(ctx, productID)
	return &item, nil
}

// RemoveItem releases up to quantity reserved units back to the shelf. When
// the request covers the whole line the line is deleted; the restocked amount
// is capped at what the line actually holds.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userCart, err := s.findCart(tx, userID)
		if err != nil {
			return err
		}

		var item CartItem
		if err := tx.Where("cart_id = ? AND product_id = ?", userCart.ID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("failed to load cart item: %w", err)
		}

		restock := quantity
		if restock >= item.Quantity {
			restock = item.Quantity
			if err := tx.Delete(&item).Error; err != nil {
				return fmt.Errorf("failed to delete cart item: %w", err)
			}
		} else {
			item.Quantity -= quantity
			if err := tx.Save(&item).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		}

		if err := restockProduct(tx, productID, restock); err != nil {
			return err
		}

		return touchCart(tx, userCart.ID)
	})
	if err != nil {
		return err
	}

	s.invalidateProductCache(ctx, productID)
	return nil
}

// GetItems returns the user's line items joined with product display fields.
// Read-only; no stock mutation and no timestamp refresh.
func (s *Service) GetItems(ctx context.Context, userID uint) ([]CartItemDetail, error) {
	userCart, err := s.findCart(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	var details []CartItemDetail
	err = s.db.WithContext(ctx).Table("cart_items").
		Select("cart_items.product_id, cart_items.quantity, products.name, products.unit, products.image_url, products.price, products.is_on_special, products.special_price").
		Joins("JOIN products ON products.id = cart_items.product_id AND products.deleted_at IS NULL").
		Where("cart_items.cart_id = ?", userCart.ID).
		Order("cart_items.id").
		Scan(&details).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart items: %w", err)
	}

	return details, nil
}

// ClearCart restores every reserved line to the shelf and empties the cart.
// Explicit, user-initiated abandonment.
func (s *Service) ClearCart(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userCart, err := s.findCart(tx, userID)
		if err != nil {
			return err
		}

		var items []CartItem
		if err := tx.Where("cart_id = ?", userCart.ID).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load cart items: %w", err)
		}

		if err := restockItems(tx, items); err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", userCart.ID).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		for _, item := range items {
			s.invalidateProductCache(ctx, item.ProductID)
		}

		return touchCart(tx, userCart.ID)
	})
}

// Checkout commits the cart's reservations as a sale: line items are deleted
// WITHOUT restoring stock. Checking out an already-empty cart is a no-op.
func (s *Service) Checkout(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userCart, err := s.findCart(tx, userID)
		if err != nil {
			return err
		}

		if err := tx.Where("cart_id = ?", userCart.ID).Delete(&CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to checkout cart: %w", err)
		}

		return touchCart(tx, userCart.ID)
	})
}

// Private helpers

func (s *Service) findCart(tx *gorm.DB, userID uint) (*Cart, error) {
	var userCart Cart
	if err := tx.Where("user_id = ?", userID).First(&userCart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &userCart, nil
}

func (s *Service) findOrCreateCart(tx *gorm.DB, userID uint) (*Cart, error) {
	var userCart Cart
	err := tx.Where("user_id = ?", userID).First(&userCart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		userCart = Cart{UserID: userID}
		if err := tx.Create(&userCart).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &userCart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &userCart, nil
}

func (s *Service) invalidateProductCache(ctx context.Context, productID uint) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, fmt.Sprintf("product:%d", productID))
	}
}

// touchCart refreshes the cart's last-modified timestamp so the reclaimer
// treats it as active.
func touchCart(tx *gorm.DB, cartID uint) error {
	if err := tx.Model(&Cart{}).Where("id = ?", cartID).
		UpdateColumn("updated_at", time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("failed to touch cart: %w", err)
	}
	return nil
}

// restockProduct returns quantity units to the shelf. A vanished product is
// not an error here; the reservation simply has nowhere to go back to.
func restockProduct(tx *gorm.DB, productID uint, quantity int) error {
	result := tx.Model(&product.Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restock product %d: %w", productID, result.Error)
	}
	return nil
}

// restockItems is the shared stock-adjustment helper used by ClearCart and
// the reclaimer.
func restockItems(tx *gorm.DB, items []CartItem) error {
	for _, item := range items {
		if err := restockProduct(tx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}
