// internal/domain/product/service.go
package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Service errors returned to callers; handlers map these to response codes.
var (
	ErrNotFound            = errors.New("product not found")
	ErrInvalidSpecialPrice = errors.New("special price must be positive and below the regular price")
)

const cacheTTL = 5 * time.Minute

// Service handles product business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new product service. redisClient may be nil, in which
// case single-product reads go straight to the database.
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	OnSpecial *bool  `form:"on_special"`
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Price        int64  `json:"price" binding:"required,min=1"`
	Quantity     int    `json:"quantity" binding:"min=0"`
	Unit         string `json:"unit"`
	ImageURL     string `json:"image_url"`
	IsOnSpecial  bool   `json:"is_on_special"`
	SpecialPrice *int64 `json:"special_price"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Price        *int64  `json:"price"`
	Quantity     *int    `json:"quantity"`
	Unit         *string `json:"unit"`
	ImageURL     *string `json:"image_url"`
	IsOnSpecial  *bool   `json:"is_on_special"`
	SpecialPrice *int64  `json:"special_price"`
}

// ProductListResponse represents product response with pagination
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// List retrieves products with pagination and optional search
func (s *Service) List(ctx context.Context, req *ProductListRequest) (*ProductListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Product{})

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}
	if req.OnSpecial != nil {
		query = query.Where("is_on_special = ?", *req.OnSpecial)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	sortBy := req.SortBy
	switch sortBy {
	case "name", "price", "quantity", "created_at":
	default:
		sortBy = "created_at"
	}
	sortOrder := "desc"
	if strings.EqualFold(req.SortOrder, "asc") {
		sortOrder = "asc"
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder)).
		Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	return &ProductListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// Get retrieves a single product, read-through cached in Redis
func (s *Service) Get(ctx context.Context, id uint) (*Product, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, s.cacheKey(id)).Result(); err == nil {
			var prod Product
			if err := json.Unmarshal([]byte(cached), &prod); err == nil {
				return &prod, nil
			}
		}
	}

	var prod Product
	if err := s.db.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(&prod); err == nil {
			s.redisClient.Set(ctx, s.cacheKey(id), data, cacheTTL)
		}
	}

	return &prod, nil
}

// Create creates a new product
func (s *Service) Create(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	specialPrice, err := normalizeSpecial(req.Price, req.IsOnSpecial, req.SpecialPrice)
	if err != nil {
		return nil, err
	}

	prod := &Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		ImageURL:     req.ImageURL,
		IsOnSpecial:  req.IsOnSpecial,
		SpecialPrice: specialPrice,
	}

	if err := s.db.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return prod, nil
}

// Update applies a partial update to a product
func (s *Service) Update(ctx context.Context, id uint, req *ProductUpdateRequest) (*Product, error) {
	var prod Product
	if err := s.db.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Description != nil {
		prod.Description = *req.Description
	}
	if req.Price != nil {
		prod.Price = *req.Price
	}
	if req.Quantity != nil {
		prod.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		prod.Unit = *req.Unit
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}
	if req.IsOnSpecial != nil {
		prod.IsOnSpecial = *req.IsOnSpecial
	}
	if req.SpecialPrice != nil {
		prod.SpecialPrice = req.SpecialPrice
	}

	specialPrice, err := normalizeSpecial(prod.Price, prod.IsOnSpecial, prod.SpecialPrice)
	if err != nil {
		return nil, err
	}
	prod.SpecialPrice = specialPrice

	// Save with Select so a cleared special price writes NULL
	if err := s.db.WithContext(ctx).Model(&prod).
		Select("name", "description", "price", "quantity", "unit", "image_url", "is_on_special", "special_price").
		Updates(map[string]interface{}{
			"name":          prod.Name,
			"description":   prod.Description,
			"price":         prod.Price,
			"quantity":      prod.Quantity,
			"unit":          prod.Unit,
			"image_url":     prod.ImageURL,
			"is_on_special": prod.IsOnSpecial,
			"special_price": prod.SpecialPrice,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateCache(ctx, id)
	return &prod, nil
}

// Delete soft-deletes a product
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.invalidateCache(ctx, id)
	return nil
}

func (s *Service) cacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *Service) invalidateCache(ctx context.Context, id uint) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, s.cacheKey(id))
	}
}

// normalizeSpecial enforces the special-price invariant: set only while on
// special, strictly positive, strictly below the regular price.
func normalizeSpecial(price int64, isOnSpecial bool, specialPrice *int64) (*int64, error) {
	if !isOnSpecial {
		return nil, nil
	}
	if specialPrice == nil || *specialPrice <= 0 || *specialPrice >= price {
		return nil, ErrInvalidSpecialPrice
	}
	return specialPrice, nil
}
