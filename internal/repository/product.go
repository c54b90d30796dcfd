package repository

import (
	"context"

	"marketplace-api/internal/client"
	"marketplace-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, productID string) (*model.Product, error)
}

type productRepoImpl struct {
	db *client.DBClient
}

func NewProductRepository(db *client.DBClient) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func withProductRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}})
		}).
		Preload("Store.Seller.User")
}

func (r *productRepoImpl) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Query(ctx, func(db *gorm.DB) error {
		q := withProductRelations(db).Where(map[string]interface{}{"isActive": true})
		if filter.Category != "" {
			q = q.Where("category = ?", filter.Category)
		}
		if filter.StoreID != "" {
			q = q.Where(map[string]interface{}{"storeId": filter.StoreID})
		}

		return q.Order(clause.OrderByColumn{Column: clause.Column{Name: "createdAt"}, Desc: true}).
			Limit(filter.Limit).
			Offset(filter.Offset).
			Find(&products).
			Error
	}).Err()

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.Query(ctx, func(db *gorm.DB) error {
		return withProductRelations(db).
			Where("id = ?", productID).
			First(&product).
			Error
	}).Err()

	if err != nil {
		return nil, err
	}

	return &product, nil
}
