package service

import (
	"cmp"
	"context"
	"slices"

	"marketplace-api/internal/apperror"
	"marketplace-api/internal/client"
	"marketplace-api/internal/fallback"
	"marketplace-api/internal/mock"
	"marketplace-api/internal/model"
	"marketplace-api/internal/repository"
)

// REST resource names.
const (
	resourcePlans         = "plans"
	resourceProducts      = "products"
	resourceStores        = "stores"
	resourceSystemConfigs = "system_configs"
	resourceUsers         = "users"
	resourceOrders        = "orders"
)

const (
	storeSelect   = "*,seller:sellers(*,user:users(*))"
	productSelect = "*,images:product_images(*),store:stores(" + storeSelect + ")"
)

// Repositories groups the ORM tier.
type Repositories struct {
	Plans         repository.PlanRepository
	Products      repository.ProductRepository
	Stores        repository.StoreRepository
	SystemConfigs repository.SystemConfigRepository
	Stats         repository.StatsRepository
}

// RestTiers holds the two REST clients. Either may be nil, which skips that tier.
type RestTiers struct {
	Service *client.RestClient
	Anon    *client.RestClient
}

type CatalogService interface {
	ListActivePlans(ctx context.Context) (fallback.Result[[]model.Plan], error)
	ListProducts(ctx context.Context, filter model.ProductFilter) (fallback.Result[[]model.Product], error)
	GetProduct(ctx context.Context, productID string) (fallback.Result[*model.Product], error)
	ListActiveStores(ctx context.Context) (fallback.Result[[]model.Store], error)
	GetStore(ctx context.Context, storeID string) (fallback.Result[*model.Store], error)
	GetTrackingConfigs(ctx context.Context) (fallback.Result[model.TrackingConfig], error)
}

type catalogServiceImpl struct {
	chain *fallback.Chain
	repos Repositories
	rest  RestTiers
	mock  *mock.Provider
}

func NewCatalogService(
	chain *fallback.Chain,
	repos Repositories,
	rest RestTiers,
	mockProvider *mock.Provider,
) CatalogService {
	return &catalogServiceImpl{
		chain: chain,
		repos: repos,
		rest:  rest,
		mock:  mockProvider,
	}
}

func (s *catalogServiceImpl) ListActivePlans(ctx context.Context) (fallback.Result[[]model.Plan], error) {
	query := func() *client.Query {
		return client.NewQuery().Eq("isActive", true).Order("order", true)
	}

	return fallback.Read(ctx, s.chain, fallback.ReadPlan[[]model.Plan]{
		Resource:    resourcePlans,
		Primary:     s.repos.Plans.ListActive,
		ServiceREST: restList[model.Plan](s.rest.Service, resourcePlans, query),
		AnonREST:    restList[model.Plan](s.rest.Anon, resourcePlans, query),
		Mock: func() ([]model.Plan, error) {
			var active []model.Plan
			for _, p := range s.mock.Plans() {
				if p.IsActive {
					active = append(active, p)
				}
			}
			return active, nil
		},
	})
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, filter model.ProductFilter) (fallback.Result[[]model.Product], error) {
	if err := filter.Normalize(); err != nil {
		return fallback.Result[[]model.Product]{}, err
	}

	query := func() *client.Query {
		q := client.NewQuery().
			Select(productSelect).
			Eq("isActive", true).
			Order("createdAt", false).
			Limit(filter.Limit).
			Offset(filter.Offset)
		if filter.Category != "" {
			q.Eq("category", filter.Category)
		}
		if filter.StoreID != "" {
			q.Eq("storeId", filter.StoreID)
		}
		return q
	}

	return fallback.Read(ctx, s.chain, fallback.ReadPlan[[]model.Product]{
		Resource: resourceProducts,
		Primary: func(ctx context.Context) ([]model.Product, error) {
			return s.repos.Products.List(ctx, filter)
		},
		ServiceREST: sortImages(restList[model.Product](s.rest.Service, resourceProducts, query)),
		AnonREST:    sortImages(restList[model.Product](s.rest.Anon, resourceProducts, query)),
		Mock: func() ([]model.Product, error) {
			return pageProducts(s.mock.Products(), filter), nil
		},
	})
}

func (s *catalogServiceImpl) GetProduct(ctx context.Context, productID string) (fallback.Result[*model.Product], error) {
	if productID == "" {
		return fallback.Result[*model.Product]{}, &apperror.ValidationError{Field: "id", Message: "is required"}
	}

	query := func() *client.Query {
		return client.NewQuery().Select(productSelect).Eq("id", productID)
	}

	return fallback.Read(ctx, s.chain, fallback.ReadPlan[*model.Product]{
		Resource: resourceProducts,
		Primary: func(ctx context.Context) (*model.Product, error) {
			return s.repos.Products.FindByID(ctx, productID)
		},
		ServiceREST: sortImage(restOne[model.Product](s.rest.Service, resourceProducts, query)),
		AnonREST:    sortImage(restOne[model.Product](s.rest.Anon, resourceProducts, query)),
		Mock: func() (*model.Product, error) {
			return s.mock.Product(productID)
		},
	})
}

func (s *catalogServiceImpl) ListActiveStores(ctx context.Context) (fallback.Result[[]model.Store], error) {
	query := func() *client.Query {
		return client.NewQuery().Select(storeSelect).Eq("isActive", true).Order("name", true)
	}

	return fallback.Read(ctx, s.chain, fallback.ReadPlan[[]model.Store]{
		Resource:    resourceStores,
		Primary:     s.repos.Stores.ListActive,
		ServiceREST: restList[model.Store](s.rest.Service, resourceStores, query),
		AnonREST:    restList[model.Store](s.rest.Anon, resourceStores, query),
		Mock: func() ([]model.Store, error) {
			var active []model.Store
			for _, st := range s.mock.Stores() {
				if st.IsActive {
					active = append(active, st)
				}
			}
			return active, nil
		},
	})
}

func (s *catalogServiceImpl) GetStore(ctx context.Context, storeID string) (fallback.Result[*model.Store], error) {
	if storeID == "" {
		return fallback.Result[*model.Store]{}, &apperror.ValidationError{Field: "id", Message: "is required"}
	}

	query := func() *client.Query {
		return client.NewQuery().Select(storeSelect).Eq("id", storeID)
	}

	return fallback.Read(ctx, s.chain, fallback.ReadPlan[*model.Store]{
		Resource: resourceStores,
		Primary: func(ctx context.Context) (*model.Store, error) {
			return s.repos.Stores.FindByID(ctx, storeID)
		},
		ServiceREST: restOne[model.Store](s.rest.Service, resourceStores, query),
		AnonREST:    restOne[model.Store](s.rest.Anon, resourceStores, query),
		Mock: func() (*model.Store, error) {
			return s.mock.Store(storeID)
		},
	})
}

func (s *catalogServiceImpl) GetTrackingConfigs(ctx context.Context) (fallback.Result[model.TrackingConfig], error) {
	keys := make([]string, len(model.TrackingKeys))
	for i, k := range model.TrackingKeys {
		keys[i] = string(k)
	}

	query := func() *client.Query {
		return client.NewQuery().In("key", keys)
	}

	return fallback.Read(ctx, s.chain, fallback.ReadPlan[model.TrackingConfig]{
		Resource: resourceSystemConfigs,
		Primary: func(ctx context.Context) (model.TrackingConfig, error) {
			rows, err := s.repos.SystemConfigs.List(ctx, keys)
			if err != nil {
				return nil, err
			}
			return model.NewTrackingConfig(rows), nil
		},
		ServiceREST: trackingFrom(restList[model.SystemConfig](s.rest.Service, resourceSystemConfigs, query)),
		AnonREST:    trackingFrom(restList[model.SystemConfig](s.rest.Anon, resourceSystemConfigs, query)),
		Mock: func() (model.TrackingConfig, error) {
			return s.mock.TrackingConfigs(), nil
		},
	})
}

// restList returns nil for a nil client so the chain skips the tier. The
// query is rebuilt per attempt because the builder is mutable.
func restList[T any](c *client.RestClient, resource string, query func() *client.Query) fallback.Source[[]T] {
	if c == nil {
		return nil
	}
	return func(ctx context.Context) ([]T, error) {
		var rows []T
		if err := c.Select(ctx, resource, query(), &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
}

func restOne[T any](c *client.RestClient, resource string, query func() *client.Query) fallback.Source[*T] {
	if c == nil {
		return nil
	}
	return func(ctx context.Context) (*T, error) {
		return client.First[T](ctx, c, resource, query())
	}
}

// REST embeds come back unordered; the ORM tier sorts them in SQL.
func sortImages(src fallback.Source[[]model.Product]) fallback.Source[[]model.Product] {
	if src == nil {
		return nil
	}
	return func(ctx context.Context) ([]model.Product, error) {
		products, err := src(ctx)
		for i := range products {
			sortProductImages(&products[i])
		}
		return products, err
	}
}

func sortImage(src fallback.Source[*model.Product]) fallback.Source[*model.Product] {
	if src == nil {
		return nil
	}
	return func(ctx context.Context) (*model.Product, error) {
		product, err := src(ctx)
		if product != nil {
			sortProductImages(product)
		}
		return product, err
	}
}

func sortProductImages(p *model.Product) {
	slices.SortStableFunc(p.Images, func(a, b model.ProductImage) int {
		return cmp.Compare(a.Order, b.Order)
	})
}

func trackingFrom(src fallback.Source[[]model.SystemConfig]) fallback.Source[model.TrackingConfig] {
	if src == nil {
		return nil
	}
	return func(ctx context.Context) (model.TrackingConfig, error) {
		rows, err := src(ctx)
		if err != nil {
			return nil, err
		}
		return model.NewTrackingConfig(rows), nil
	}
}

// pageProducts applies filter, newest-first ordering and paging to the mock set.
func pageProducts(all []model.Product, filter model.ProductFilter) []model.Product {
	matched := make([]model.Product, 0, len(all))
	for i := range all {
		if filter.Match(&all[i]) {
			matched = append(matched, all[i])
		}
	}

	slices.SortStableFunc(matched, func(a, b model.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return []model.Product{}
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end]
}
