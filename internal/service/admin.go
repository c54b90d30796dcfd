package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketplace-api/internal/apperror"
	"marketplace-api/internal/client"
	"marketplace-api/internal/fallback"
	"marketplace-api/internal/mock"
	"marketplace-api/internal/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type AdminService interface {
	GetStats(ctx context.Context) (fallback.Result[*model.AdminStats], error)
	CreatePlan(ctx context.Context, plan model.Plan) (fallback.Result[*model.Plan], error)
	UpdatePlan(ctx context.Context, planID string, plan model.Plan) (fallback.Result[*model.Plan], error)
	SetTrackingConfig(ctx context.Context, key, value string, isActive bool) (fallback.Result[*model.SystemConfig], error)
	DeactivateStore(ctx context.Context, storeID string) (fallback.Result[int64], error)
}

type adminServiceImpl struct {
	chain  *fallback.Chain
	repos  Repositories
	rest   RestTiers
	mock   *mock.Provider
	logger *slog.Logger
}

func NewAdminService(
	chain *fallback.Chain,
	repos Repositories,
	rest RestTiers,
	mockProvider *mock.Provider,
	logger *slog.Logger,
) AdminService {
	return &adminServiceImpl{
		chain:  chain,
		repos:  repos,
		rest:   rest,
		mock:   mockProvider,
		logger: logger,
	}
}

func (s *adminServiceImpl) GetStats(ctx context.Context) (fallback.Result[*model.AdminStats], error) {
	return fallback.Read(ctx, s.chain, fallback.ReadPlan[*model.AdminStats]{
		Resource:    "stats",
		Primary:     s.repos.Stats.Get,
		ServiceREST: restStats(s.rest.Service),
		AnonREST:    restStats(s.rest.Anon),
		Mock: func() (*model.AdminStats, error) {
			stats := s.mock.AdminStats()
			return &stats, nil
		},
	})
}

// restStats issues the four counts concurrently; any failure fails the tier.
func restStats(c *client.RestClient) fallback.Source[*model.AdminStats] {
	if c == nil {
		return nil
	}
	return func(ctx context.Context) (*model.AdminStats, error) {
		var stats model.AdminStats
		counts := map[string]*int64{
			resourceUsers:    &stats.TotalUsers,
			resourceProducts: &stats.TotalProducts,
			resourceStores:   &stats.TotalStores,
			resourceOrders:   &stats.TotalOrders,
		}

		g, gctx := errgroup.WithContext(ctx)
		for resource, dest := range counts {
			g.Go(func() error {
				n, err := c.Count(gctx, resource, nil)
				if err != nil {
					return fmt.Errorf("count %s: %w", resource, err)
				}
				*dest = n
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}
		return &stats, nil
	}
}

func (s *adminServiceImpl) CreatePlan(ctx context.Context, plan model.Plan) (fallback.Result[*model.Plan], error) {
	if err := plan.Validate(); err != nil {
		return fallback.Result[*model.Plan]{}, err
	}

	now := time.Now().UTC()
	plan.ID = uuid.NewString()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	wp := fallback.WritePlan[*model.Plan]{
		Resource: resourcePlans,
		Primary: func(ctx context.Context) (*model.Plan, error) {
			created := plan
			if err := s.repos.Plans.Create(ctx, &created); err != nil {
				return nil, err
			}
			return &created, nil
		},
	}
	if c := s.rest.Service; c != nil {
		wp.ServiceREST = func(ctx context.Context) (*model.Plan, error) {
			var rows []model.Plan
			if err := c.Insert(ctx, resourcePlans, plan, &rows); err != nil {
				return nil, err
			}
			return firstRow(rows, plan.ID)
		}
	}

	return fallback.Write(ctx, s.chain, wp)
}

func (s *adminServiceImpl) UpdatePlan(ctx context.Context, planID string, plan model.Plan) (fallback.Result[*model.Plan], error) {
	if planID == "" {
		return fallback.Result[*model.Plan]{}, &apperror.ValidationError{Field: "id", Message: "is required"}
	}
	if err := plan.Validate(); err != nil {
		return fallback.Result[*model.Plan]{}, err
	}
	plan.ID = planID

	wp := fallback.WritePlan[*model.Plan]{
		Resource: resourcePlans,
		Primary: func(ctx context.Context) (*model.Plan, error) {
			return s.repos.Plans.Update(ctx, &plan)
		},
	}
	if c := s.rest.Service; c != nil {
		wp.ServiceREST = func(ctx context.Context) (*model.Plan, error) {
			patch := map[string]any{
				"name":        plan.Name,
				"description": plan.Description,
				"price":       plan.Price,
				"currency":    plan.Currency,
				"adLimit":     plan.AdLimit,
				"photoLimit":  plan.PhotoLimit,
				"features":    plan.Features,
				"isActive":    plan.IsActive,
				"order":       plan.Order,
				"updatedAt":   time.Now().UTC(),
			}

			var rows []model.Plan
			if err := c.Update(ctx, resourcePlans, client.NewQuery().Eq("id", planID), patch, &rows); err != nil {
				return nil, err
			}
			return firstRow(rows, planID)
		}
	}

	return fallback.Write(ctx, s.chain, wp)
}

func (s *adminServiceImpl) SetTrackingConfig(ctx context.Context, key, value string, isActive bool) (fallback.Result[*model.SystemConfig], error) {
	trackingKey, ok := model.ParseTrackingKey(key)
	if !ok {
		return fallback.Result[*model.SystemConfig]{}, &apperror.ValidationError{Field: "key", Message: "unknown tracking key " + key}
	}

	now := time.Now().UTC()
	cfg := model.SystemConfig{
		Key:       string(trackingKey),
		Value:     value,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	wp := fallback.WritePlan[*model.SystemConfig]{
		Resource: resourceSystemConfigs,
		Primary: func(ctx context.Context) (*model.SystemConfig, error) {
			saved := cfg
			if err := s.repos.SystemConfigs.Upsert(ctx, &saved); err != nil {
				return nil, err
			}
			return &saved, nil
		},
	}
	if c := s.rest.Service; c != nil {
		wp.ServiceREST = func(ctx context.Context) (*model.SystemConfig, error) {
			var rows []model.SystemConfig
			if err := c.Upsert(ctx, resourceSystemConfigs, "key", cfg, &rows); err != nil {
				return nil, err
			}
			return firstRow(rows, cfg.Key)
		}
	}

	return fallback.Write(ctx, s.chain, wp)
}

// DeactivateStore turns off a store and every product it lists, returning the
// number of products affected.
func (s *adminServiceImpl) DeactivateStore(ctx context.Context, storeID string) (fallback.Result[int64], error) {
	if storeID == "" {
		return fallback.Result[int64]{}, &apperror.ValidationError{Field: "id", Message: "is required"}
	}

	wp := fallback.WritePlan[int64]{
		Resource: resourceStores,
		Primary: func(ctx context.Context) (int64, error) {
			return s.repos.Stores.Deactivate(ctx, storeID)
		},
	}
	if c := s.rest.Service; c != nil {
		wp.ServiceREST = func(ctx context.Context) (int64, error) {
			return s.deactivateStoreREST(ctx, c, storeID)
		}
	}

	return fallback.Write(ctx, s.chain, wp)
}

type idRow struct {
	ID string `json:"id" validate:"required"`
}

// The REST endpoint has no multi-statement transaction, so a failure between
// the two PATCHes leaves the store inactive with its products still listed.
func (s *adminServiceImpl) deactivateStoreREST(ctx context.Context, c *client.RestClient, storeID string) (int64, error) {
	s.logger.Warn("deactivating store over REST, operation is not atomic", "store_id", storeID)

	patch := map[string]any{
		"isActive":  false,
		"updatedAt": time.Now().UTC(),
	}

	var stores []idRow
	err := c.Update(ctx, resourceStores, client.NewQuery().Select("id").Eq("id", storeID), patch, &stores)
	if err != nil {
		return 0, err
	}
	if len(stores) == 0 {
		return 0, fmt.Errorf("store %s: %w", storeID, apperror.ErrNotFound)
	}

	var products []idRow
	err = c.Update(ctx, resourceProducts, client.NewQuery().Select("id").Eq("storeId", storeID), patch, &products)
	if err != nil {
		s.logger.Error("store deactivated but its products were not", "store_id", storeID, "error", err)
		return 0, fmt.Errorf("deactivate products of store %s: %w", storeID, err)
	}

	return int64(len(products)), nil
}

func firstRow[T any](rows []T, id string) (*T, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", id, apperror.ErrNotFound)
	}
	return &rows[0], nil
}
