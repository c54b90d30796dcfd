package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"marketplace-api/internal/apperror"
	"marketplace-api/internal/client"
	"marketplace-api/internal/config"
	"marketplace-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *client.DBClient {
	t.Helper()
	db := client.NewDBClient(&config.Database{
		Driver:         "sqlite",
		URL:            filepath.Join(t.TempDir(), "market.db"),
		ConnectTimeout: time.Second,
		AutoMigrate:    true,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, db.Connect(context.Background()))
	t.Cleanup(func() { db.Disconnect() })
	return db
}

func seedCatalog(t *testing.T, db *client.DBClient) {
	t.Helper()
	res := db.Query(context.Background(), func(tx *gorm.DB) error {
		rows := []any{
			&model.User{ID: "u1", Name: "Carlos", Email: "carlos@example.com", Phone: "11999999999", Role: model.RoleSeller},
			&model.User{ID: "u2", Name: "Bia", Email: "bia@example.com", Role: model.RoleBuyer},
			&model.Seller{ID: "s1", UserID: "u1"},
			&model.Store{ID: "st1", Name: "TechStore", IsActive: true, SellerID: "s1"},
			&model.Store{ID: "st2", Name: "Closed", IsActive: false, SellerID: "s1"},
			&model.Product{ID: "p1", Title: "Phone", Price: decimal.RequireFromString("999.90"), Currency: "BRL", Category: "eletronicos", IsActive: true, StoreID: "st1", CreatedAt: time.Now().Add(-time.Hour)},
			&model.Product{ID: "p2", Title: "Shirt", Price: decimal.RequireFromString("59.90"), Currency: "BRL", Category: "moda", IsActive: true, StoreID: "st1", CreatedAt: time.Now()},
			&model.Product{ID: "p3", Title: "Old", Price: decimal.RequireFromString("1"), Currency: "BRL", Category: "moda", IsActive: false, StoreID: "st1"},
			&model.ProductImage{ID: "i2", ProductID: "p1", URL: "https://img/2", Order: 2},
			&model.ProductImage{ID: "i1", ProductID: "p1", URL: "https://img/1", Order: 1},
			&model.Order{ID: "o1", BuyerID: "u2", StoreID: "st1", Status: "PENDING", Total: decimal.RequireFromString("999.90"), Currency: "BRL"},
		}
		for _, row := range rows {
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, res.Err())
}

func TestProductRepository_ListFiltersAndPreloads(t *testing.T) {
	db := setupDB(t)
	seedCatalog(t, db)
	repo := NewProductRepository(db)
	ctx := context.Background()

	products, err := repo.List(ctx, model.ProductFilter{Limit: 20})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "p2", products[0].ID, "newest first")

	phone := products[1]
	require.NotNil(t, phone.Store)
	require.NotNil(t, phone.Store.Seller)
	require.NotNil(t, phone.Store.Seller.User)
	assert.Equal(t, "Carlos", phone.Store.Seller.User.Name)
	require.Len(t, phone.Images, 2)
	assert.Equal(t, "i1", phone.Images[0].ID)
	assert.True(t, decimal.RequireFromString("999.90").Equal(phone.Price))

	moda, err := repo.List(ctx, model.ProductFilter{Category: "moda", Limit: 20})
	require.NoError(t, err)
	require.Len(t, moda, 1)
	assert.Equal(t, "p2", moda[0].ID)

	page, err := repo.List(ctx, model.ProductFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "p1", page[0].ID)
}

func TestProductRepository_FindByIDNotFound(t *testing.T) {
	db := setupDB(t)
	repo := NewProductRepository(db)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStoreRepository_DeactivateIsAtomic(t *testing.T) {
	db := setupDB(t)
	seedCatalog(t, db)
	repo := NewStoreRepository(db)
	ctx := context.Background()

	n, err := repo.Deactivate(ctx, "st1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	stores, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, stores)

	products, err := NewProductRepository(db).List(ctx, model.ProductFilter{Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = repo.Deactivate(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestStoreRepository_ListActiveWithSeller(t *testing.T) {
	db := setupDB(t)
	seedCatalog(t, db)

	stores, err := NewStoreRepository(db).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, "carlos@example.com", stores[0].Seller.User.Email)
}

func TestPlanRepository_SeedListUpdate(t *testing.T) {
	db := setupDB(t)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	plans := []model.Plan{
		{ID: "pro", Name: "Pro", Price: decimal.RequireFromString("79.90"), Currency: "BRL", IsActive: true, Order: 2, Features: []string{"a"}},
		{ID: "free", Name: "Free", Price: decimal.Zero, Currency: "BRL", IsActive: true, Order: 1},
		{ID: "legacy", Name: "Legacy", Price: decimal.Zero, Currency: "BRL", IsActive: false, Order: 0},
	}
	require.NoError(t, repo.Seed(ctx, plans))
	require.NoError(t, repo.Seed(ctx, plans), "seeding twice is a no-op")

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "free", active[0].ID)
	assert.Equal(t, []string{"a"}, []string(active[1].Features))

	updated, err := repo.Update(ctx, &model.Plan{ID: "pro", Name: "Pro+", Price: decimal.RequireFromString("99.90"), Currency: "BRL", IsActive: false, Order: 5})
	require.NoError(t, err)
	assert.Equal(t, "Pro+", updated.Name)
	assert.False(t, updated.IsActive)

	_, err = repo.Update(ctx, &model.Plan{ID: "missing", Name: "x", Currency: "BRL"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSystemConfigRepository_Upsert(t *testing.T) {
	db := setupDB(t)
	repo := NewSystemConfigRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.SystemConfig{Key: "GOOGLE_ANALYTICS_ID", Value: "G-1", IsActive: true}))
	require.NoError(t, repo.Upsert(ctx, &model.SystemConfig{Key: "GOOGLE_ANALYTICS_ID", Value: "G-2", IsActive: false}))

	rows, err := repo.List(ctx, []string{"GOOGLE_ANALYTICS_ID", "HOTJAR_ID"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "G-2", rows[0].Value)
	assert.False(t, rows[0].IsActive)
}

func TestStatsRepository_Counts(t *testing.T) {
	db := setupDB(t)
	seedCatalog(t, db)

	stats, err := NewStatsRepository(db).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.AdminStats{TotalUsers: 2, TotalProducts: 3, TotalStores: 2, TotalOrders: 1}, *stats)
}
