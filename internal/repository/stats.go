package repository

import (
	"context"

	"marketplace-api/internal/client"
	"marketplace-api/internal/model"

	"gorm.io/gorm"
)

type StatsRepository interface {
	Get(ctx context.Context) (*model.AdminStats, error)
}

type statsRepoImpl struct {
	db *client.DBClient
}

func NewStatsRepository(db *client.DBClient) StatsRepository {
	return &statsRepoImpl{
		db: db,
	}
}

func (r *statsRepoImpl) Get(ctx context.Context) (*model.AdminStats, error) {
	var stats model.AdminStats
	err := r.db.Query(ctx, func(db *gorm.DB) error {
		counts := []struct {
			model any
			dest  *int64
		}{
			{&model.User{}, &stats.TotalUsers},
			{&model.Product{}, &stats.TotalProducts},
			{&model.Store{}, &stats.TotalStores},
			{&model.Order{}, &stats.TotalOrders},
		}

		for _, c := range counts {
			if err := db.Model(c.model).Count(c.dest).Error; err != nil {
				return err
			}
		}
		return nil
	}).Err()

	if err != nil {
		return nil, err
	}

	return &stats, nil
}
