// internal/domain/review/service_test.go
package review

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/greenbasket/grocery-backend/internal/domain/product"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&product.Product{}, &Review{}))

	return NewService(db, &config.Config{}), db
}

func seedProduct(t *testing.T, db *gorm.DB) product.Product {
	t.Helper()
	prod := product.Product{Name: "Bananas", Price: 299, Quantity: 10, Unit: "kg"}
	require.NoError(t, db.Create(&prod).Error)
	return prod
}

func TestCreateReview(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	prod := seedProduct(t, db)

	rev, err := svc.Create(ctx, 7, &CreateReviewRequest{
		ProductID: prod.ID,
		Rating:    4,
		Content:   "Perfectly ripe",
	})
	require.NoError(t, err)
	require.NotZero(t, rev.ID)
	require.EqualValues(t, 7, rev.UserID)
	require.Equal(t, 4, rev.Rating)
}

func TestCreateReviewValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	prod := seedProduct(t, db)

	_, err := svc.Create(ctx, 7, &CreateReviewRequest{ProductID: prod.ID, Rating: 0})
	require.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Create(ctx, 7, &CreateReviewRequest{ProductID: prod.ID, Rating: 6})
	require.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Create(ctx, 7, &CreateReviewRequest{ProductID: 999, Rating: 3})
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestUpdateReviewOwnerOnly(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	prod := seedProduct(t, db)

	rev, err := svc.Create(ctx, 7, &CreateReviewRequest{ProductID: prod.ID, Rating: 3, Content: "ok"})
	require.NoError(t, err)

	newRating := 5
	updated, err := svc.Update(ctx, 7, rev.ID, &UpdateReviewRequest{Rating: &newRating})
	require.NoError(t, err)
	require.Equal(t, 5, updated.Rating)
	require.Equal(t, "ok", updated.Content)

	_, err = svc.Update(ctx, 8, rev.ID, &UpdateReviewRequest{Rating: &newRating})
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.Update(ctx, 7, 999, &UpdateReviewRequest{Rating: &newRating})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteReview(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	prod := seedProduct(t, db)

	rev, err := svc.Create(ctx, 7, &CreateReviewRequest{ProductID: prod.ID, Rating: 2})
	require.NoError(t, err)

	// Another user cannot delete it, an admin can
	require.ErrorIs(t, svc.Delete(ctx, 8, rev.ID, false), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, 8, rev.ID, true))
	require.ErrorIs(t, svc.Delete(ctx, 8, rev.ID, true), ErrNotFound)
}

func TestDeleteOwnReview(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	prod := seedProduct(t, db)

	rev, err := svc.Create(ctx, 7, &CreateReviewRequest{ProductID: prod.ID, Rating: 2})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, 7, rev.ID, false))
}

func TestListByProduct(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	prod := seedProduct(t, db)
	other := seedProduct(t, db)

	for i := 1; i <= 3; i++ {
		_, err := svc.Create(ctx, uint(i), &CreateReviewRequest{ProductID: prod.ID, Rating: i})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, 9, &CreateReviewRequest{ProductID: other.ID, Rating: 5})
	require.NoError(t, err)

	reviews, err := svc.ListByProduct(ctx, prod.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	for _, rev := range reviews {
		require.Equal(t, prod.ID, rev.ProductID)
	}

	// A soft-deleted review drops out of the listing
	require.NoError(t, svc.Delete(ctx, 1, reviews[len(reviews)-1].ID, false))
	reviews, err = svc.ListByProduct(ctx, prod.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
}
