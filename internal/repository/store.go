package repository

import (
	"context"
	"time"

	"marketplace-api/internal/client"
	"marketplace-api/internal/model"

	"gorm.io/gorm"
)

type StoreRepository interface {
	ListActive(ctx context.Context) ([]model.Store, error)
	FindByID(ctx context.Context, storeID string) (*model.Store, error)
	Deactivate(ctx context.Context, storeID string) (int64, error)
}

type storeRepoImpl struct {
	db *client.DBClient
}

func NewStoreRepository(db *client.DBClient) StoreRepository {
	return &storeRepoImpl{
		db: db,
	}
}

func (r *storeRepoImpl) ListActive(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.Query(ctx, func(db *gorm.DB) error {
		return db.Preload("Seller.User").
			Where(map[string]interface{}{"isActive": true}).
			Order("name asc").
			Find(&stores).
			Error
	}).Err()

	if err != nil {
		return nil, err
	}

	return stores, nil
}

func (r *storeRepoImpl) FindByID(ctx context.Context, storeID string) (*model.Store, error) {
	var store model.Store
	err := r.db.Query(ctx, func(db *gorm.DB) error {
		return db.Preload("Seller.User").
			Where("id = ?", storeID).
			First(&store).
			Error
	}).Err()

	if err != nil {
		return nil, err
	}

	return &store, nil
}

// Deactivate turns off a store and all of its products in one transaction and
// returns how many products were deactivated.
func (r *storeRepoImpl) Deactivate(ctx context.Context, storeID string) (int64, error) {
	var productsAffected int64
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		now := time.Now()

		result := tx.Model(&model.Store{}).
			Where("id = ?", storeID).
			Updates(map[string]interface{}{
				"isActive":  false,
				"updatedAt": now,
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		result = tx.Model(&model.Product{}).
			Where(map[string]interface{}{"storeId": storeID}).
			Updates(map[string]interface{}{
				"isActive":  false,
				"updatedAt": now,
			})

		productsAffected = result.RowsAffected
		return result.Error
	}).Err()

	return productsAffected, err
}
