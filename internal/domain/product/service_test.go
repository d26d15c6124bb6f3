// internal/domain/product/service_test.go
package product

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/greenbasket/grocery-backend/internal/config"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Product{}))

	return NewService(db, nil, &config.Config{}), db
}

func int64Ptr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestCreateAndGet(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &ProductCreateRequest{
		Name:     "Bananas",
		Price:    299,
		Quantity: 50,
		Unit:     "kg",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Nil(t, created.SpecialPrice)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Bananas", got.Name)
	require.EqualValues(t, 299, got.Price)
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateOnSpecial(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), &ProductCreateRequest{
		Name:         "Bananas",
		Price:        299,
		Quantity:     50,
		IsOnSpecial:  true,
		SpecialPrice: int64Ptr(199),
	})
	require.NoError(t, err)
	require.True(t, created.IsOnSpecial)
	require.NotNil(t, created.SpecialPrice)
	require.EqualValues(t, 199, *created.SpecialPrice)
	require.EqualValues(t, 199, created.EffectivePrice())
}

func TestCreateSpecialPriceValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		req     ProductCreateRequest
		wantErr error
	}{
		{
			name:    "missing special price",
			req:     ProductCreateRequest{Name: "A", Price: 100, IsOnSpecial: true},
			wantErr: ErrInvalidSpecialPrice,
		},
		{
			name:    "special price equals regular",
			req:     ProductCreateRequest{Name: "B", Price: 100, IsOnSpecial: true, SpecialPrice: int64Ptr(100)},
			wantErr: ErrInvalidSpecialPrice,
		},
		{
			name:    "special price above regular",
			req:     ProductCreateRequest{Name: "C", Price: 100, IsOnSpecial: true, SpecialPrice: int64Ptr(150)},
			wantErr: ErrInvalidSpecialPrice,
		},
		{
			name:    "zero special price",
			req:     ProductCreateRequest{Name: "D", Price: 100, IsOnSpecial: true, SpecialPrice: int64Ptr(0)},
			wantErr: ErrInvalidSpecialPrice,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tc.req)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateIgnoresSpecialPriceWhenNotOnSpecial(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), &ProductCreateRequest{
		Name:         "Milk",
		Price:        349,
		SpecialPrice: int64Ptr(199),
	})
	require.NoError(t, err)
	require.False(t, created.IsOnSpecial)
	require.Nil(t, created.SpecialPrice, "special price must be dropped when not on special")
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &ProductCreateRequest{Name: "Bread", Price: 549, Quantity: 10})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &ProductUpdateRequest{Price: int64Ptr(599)})
	require.NoError(t, err)
	require.EqualValues(t, 599, updated.Price)
	require.Equal(t, "Bread", updated.Name)
	require.Equal(t, 10, updated.Quantity)
}

func TestUpdateClearsSpecialPrice(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &ProductCreateRequest{
		Name:         "Bananas",
		Price:        299,
		IsOnSpecial:  true,
		SpecialPrice: int64Ptr(199),
	})
	require.NoError(t, err)

	// Taking the product off special must null out the stored special price
	updated, err := svc.Update(ctx, created.ID, &ProductUpdateRequest{IsOnSpecial: boolPtr(false)})
	require.NoError(t, err)
	require.False(t, updated.IsOnSpecial)
	require.Nil(t, updated.SpecialPrice)

	var stored Product
	require.NoError(t, db.First(&stored, created.ID).Error)
	require.Nil(t, stored.SpecialPrice)
}

func TestUpdateSpecialPriceInvariant(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &ProductCreateRequest{Name: "Eggs", Price: 699})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, &ProductUpdateRequest{
		IsOnSpecial:  boolPtr(true),
		SpecialPrice: int64Ptr(800),
	})
	require.ErrorIs(t, err, ErrInvalidSpecialPrice)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), 999, &ProductUpdateRequest{Price: int64Ptr(100)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &ProductCreateRequest{Name: "Yoghurt", Price: 449})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

func TestListPaginationAndSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	names := []string{"Bananas", "Banana Bread", "Milk", "Eggs", "Butter"}
	for i, name := range names {
		_, err := svc.Create(ctx, &ProductCreateRequest{
			Name:     name,
			Price:    int64(100 * (i + 1)),
			Quantity: i,
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, &ProductListRequest{Page: 1, Limit: 2, SortBy: "price", SortOrder: "asc"})
	require.NoError(t, err)
	require.EqualValues(t, 5, resp.Pagination.Total)
	require.Equal(t, 3, resp.Pagination.TotalPages)
	require.Len(t, resp.Products, 2)
	require.Equal(t, "Bananas", resp.Products[0].Name)

	resp, err = svc.List(ctx, &ProductListRequest{Page: 1, Limit: 20, Search: "banana"})
	require.NoError(t, err)
	require.EqualValues(t, 2, resp.Pagination.Total)
}

func TestListFilterOnSpecial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &ProductCreateRequest{Name: "Plain", Price: 100})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &ProductCreateRequest{
		Name: "Deal", Price: 200, IsOnSpecial: true, SpecialPrice: int64Ptr(150),
	})
	require.NoError(t, err)

	resp, err := svc.List(ctx, &ProductListRequest{Page: 1, Limit: 20, OnSpecial: boolPtr(true)})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	require.Equal(t, "Deal", resp.Products[0].Name)
}
