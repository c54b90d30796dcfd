package repository

import (
	"context"
	"time"

	"marketplace-api/internal/client"
	"marketplace-api/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlanRepository interface {
	Seed(ctx context.Context, plans []model.Plan) error
	ListActive(ctx context.Context) ([]model.Plan, error)
	Create(ctx context.Context, plan *model.Plan) error
	Update(ctx context.Context, plan *model.Plan) (*model.Plan, error)
}

type planRepoImpl struct {
	db *client.DBClient
}

func NewPlanRepository(db *client.DBClient) PlanRepository {
	return &planRepoImpl{
		db: db,
	}
}

func (r *planRepoImpl) Seed(ctx context.Context, plans []model.Plan) error {
	return r.db.Query(ctx, func(db *gorm.DB) error {
		return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&plans).Error
	}).Err()
}

func (r *planRepoImpl) ListActive(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	err := r.db.Query(ctx, func(db *gorm.DB) error {
		return db.Where(map[string]interface{}{"isActive": true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "order"}}).
			Find(&plans).
			Error
	}).Err()

	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *planRepoImpl) Create(ctx context.Context, plan *model.Plan) error {
	return r.db.Query(ctx, func(db *gorm.DB) error {
		return db.Create(plan).Error
	}).Err()
}

func (r *planRepoImpl) Update(ctx context.Context, plan *model.Plan) (*model.Plan, error) {
	var updated model.Plan
	err := r.db.Transaction(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&model.Plan{}).
			Where("id = ?", plan.ID).
			Updates(map[string]interface{}{
				"name":        plan.Name,
				"description": plan.Description,
				"price":       plan.Price,
				"currency":    plan.Currency,
				"adLimit":     plan.AdLimit,
				"photoLimit":  plan.PhotoLimit,
				"features":    plan.Features,
				"isActive":    plan.IsActive,
				"order":       plan.Order,
				"updatedAt":   time.Now(),
			})

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Where("id = ?", plan.ID).First(&updated).Error
	}).Err()

	if err != nil {
		return nil, err
	}

	return &updated, nil
}
