// internal/domain/analytics/service_test.go
package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/greenbasket/grocery-backend/internal/domain/cart"
	"github.com/greenbasket/grocery-backend/internal/domain/product"
	"github.com/greenbasket/grocery-backend/internal/domain/review"
	"github.com/greenbasket/grocery-backend/internal/domain/user"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &product.Product{}, &cart.Cart{}, &cart.CartItem{}, &review.Review{},
	))

	return NewService(db, &config.Config{}), db
}

func TestGetDashboardStatsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.TotalProducts)
	require.Zero(t, stats.TotalReviews)
	require.Zero(t, stats.AverageRating)
	require.Zero(t, stats.ReservedUnits)
	require.Empty(t, stats.TopReservation)
}

func TestGetDashboardStats(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	special := int64(199)
	bananas := product.Product{Name: "Bananas", Price: 299, Quantity: 10, IsOnSpecial: true, SpecialPrice: &special}
	milk := product.Product{Name: "Milk", Price: 349, Quantity: 0}
	require.NoError(t, db.Create(&bananas).Error)
	require.NoError(t, db.Create(&milk).Error)

	require.NoError(t, db.Create(&user.User{Email: "a@b.com", Password: "x"}).Error)
	require.NoError(t, db.Create(&user.User{Email: "c@d.com", Password: "x"}).Error)

	require.NoError(t, db.Create(&review.Review{UserID: 1, ProductID: bananas.ID, Rating: 4}).Error)
	require.NoError(t, db.Create(&review.Review{UserID: 2, ProductID: bananas.ID, Rating: 2}).Error)

	userCart := cart.Cart{UserID: 1}
	require.NoError(t, db.Create(&userCart).Error)
	require.NoError(t, db.Create(&cart.CartItem{CartID: userCart.ID, ProductID: bananas.ID, Quantity: 3}).Error)

	stats, err := svc.GetDashboardStats(ctx)
	require.NoError(t, err)

	require.EqualValues(t, 2, stats.TotalProducts)
	require.EqualValues(t, 1, stats.ProductsOnSpecial)
	require.EqualValues(t, 1, stats.OutOfStockProducts)
	require.EqualValues(t, 10, stats.StockOnHand)

	require.EqualValues(t, 2, stats.TotalReviews)
	require.InDelta(t, 3.0, stats.AverageRating, 0.001)
	require.Len(t, stats.RatingCounts, 2)

	require.EqualValues(t, 2, stats.TotalUsers)
	require.EqualValues(t, 1, stats.ActiveCarts)
	require.EqualValues(t, 3, stats.ReservedUnits)
	require.Len(t, stats.TopReservation, 1)
	require.Equal(t, "Bananas", stats.TopReservation[0].Name)
	require.EqualValues(t, 3, stats.TopReservation[0].Reserved)
}
