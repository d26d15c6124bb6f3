// internal/domain/review/service.go
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/greenbasket/grocery-backend/internal/domain/product"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("review not found")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrNotOwner      = errors.New("review belongs to another user")
)

// Service handles review business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new review service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateReviewRequest represents review creation data
type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Content   string `json:"content"`
}

// UpdateReviewRequest represents review update data
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Content *string `json:"content"`
}

// Create adds a review for a product
func (s *Service) Create(ctx context.Context, userID uint, req *CreateReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	var prod product.Product
	if err := s.db.WithContext(ctx).First(&prod, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	rev := &Review{
		UserID:    userID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Content:   req.Content,
	}

	if err := s.db.WithContext(ctx).Create(rev).Error; err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return rev, nil
}

// Update edits the caller's own review
func (s *Service) Update(ctx context.Context, userID, reviewID uint, req *UpdateReviewRequest) (*Review, error) {
	var rev Review
	if err := s.db.WithContext(ctx).First(&rev, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}

	if rev.UserID != userID {
		return nil, ErrNotOwner
	}

	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, ErrInvalidRating
		}
		rev.Rating = *req.Rating
	}
	if req.Content != nil {
		rev.Content = *req.Content
	}

	if err := s.db.WithContext(ctx).Save(&rev).Error; err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	return &rev, nil
}

// Delete soft-deletes a review. Owners may delete their own; admins may
// delete anyone's.
func (s *Service) Delete(ctx context.Context, userID, reviewID uint, isAdmin bool) error {
	var rev Review
	if err := s.db.WithContext(ctx).First(&rev, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load review: %w", err)
	}

	if rev.UserID != userID && !isAdmin {
		return ErrNotOwner
	}

	if err := s.db.WithContext(ctx).Delete(&rev).Error; err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return nil
}

// ListByProduct returns all visible reviews for a product, newest first
func (s *Service) ListByProduct(ctx context.Context, productID uint) ([]Review, error) {
	var reviews []Review
	if err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	return reviews, nil
}
