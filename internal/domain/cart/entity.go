// internal/domain/cart/entity.go
package cart

import (
	"time"
)

// Cart is the single active cart a shopper owns. UpdatedAt is refreshed by
// every mutation to the cart or its items; the reclaimer uses it to decide
// when a cart has been abandoned.
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// CartItem is one reserved product line. At most one row per (cart, product);
// repeated adds increment Quantity instead of inserting a duplicate. The
// reserved units have already been subtracted from products.quantity.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"not null;index;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItemDetail is a line item joined with product display fields for the
// storefront cart page.
type CartItemDetail struct {
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	ImageURL     string `json:"image_url"`
	Price        int64  `json:"price"`
	IsOnSpecial  bool   `json:"is_on_special"`
	SpecialPrice *int64 `json:"special_price,omitempty"`
	Quantity     int    `json:"quantity"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }
