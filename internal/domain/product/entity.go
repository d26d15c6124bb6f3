// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a grocery item on the shelf. Quantity is the
// authoritative count of sellable units; cart operations decrement it when
// stock is reserved and increment it when a reservation is released.
type Product struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null;size:255" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Price        int64          `gorm:"not null" json:"price"` // Price in cents
	Quantity     int            `gorm:"not null;default:0" json:"quantity"`
	Unit         string         `gorm:"size:50" json:"unit"` // e.g. "kg", "bunch", "each"
	ImageURL     string         `gorm:"size:500" json:"image_url"`
	IsOnSpecial  bool           `gorm:"default:false" json:"is_on_special"`
	SpecialPrice *int64         `json:"special_price,omitempty"` // In cents, set only while on special
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// IsInStock reports whether any sellable units remain
func (p *Product) IsInStock() bool {
	return p.Quantity > 0
}

// EffectivePrice returns the price a shopper pays right now
func (p *Product) EffectivePrice() int64 {
	if p.IsOnSpecial && p.SpecialPrice != nil {
		return *p.SpecialPrice
	}
	return p.Price
}

// GetFormattedPrice returns the effective price in currency units
func (p *Product) GetFormattedPrice() float64 {
	return float64(p.EffectivePrice()) / 100
}
