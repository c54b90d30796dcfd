package repository

import (
	"context"
	"time"

	"marketplace-api/internal/client"
	"marketplace-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SystemConfigRepository interface {
	List(ctx context.Context, keys []string) ([]model.SystemConfig, error)
	Upsert(ctx context.Context, cfg *model.SystemConfig) error
}

type systemConfigRepoImpl struct {
	db *client.DBClient
}

func NewSystemConfigRepository(db *client.DBClient) SystemConfigRepository {
	return &systemConfigRepoImpl{
		db: db,
	}
}

func (r *systemConfigRepoImpl) List(ctx context.Context, keys []string) ([]model.SystemConfig, error) {
	var configs []model.SystemConfig
	err := r.db.Query(ctx, func(db *gorm.DB) error {
		return db.Where(map[string]interface{}{"key": keys}).Find(&configs).Error
	}).Err()

	if err != nil {
		return nil, err
	}

	return configs, nil
}

func (r *systemConfigRepoImpl) Upsert(ctx context.Context, cfg *model.SystemConfig) error {
	return r.db.Query(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":     cfg.Value,
				"isActive":  cfg.IsActive,
				"updatedAt": time.Now(),
			}),
		}).Create(cfg).Error
	}).Err()
}
