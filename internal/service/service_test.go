package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"marketplace-api/internal/client"
	"marketplace-api/internal/config"
	"marketplace-api/internal/fallback"
	"marketplace-api/internal/mock"
	"marketplace-api/internal/model"
	"marketplace-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	db      *client.DBClient
	catalog CatalogService
	admin   AdminService
	chain   *fallback.Chain
}

func newFixture(t *testing.T, db *client.DBClient, restURL string) *fixture {
	t.Helper()

	repos := Repositories{
		Plans:         repository.NewPlanRepository(db),
		Products:      repository.NewProductRepository(db),
		Stores:        repository.NewStoreRepository(db),
		SystemConfigs: repository.NewSystemConfigRepository(db),
		Stats:         repository.NewStatsRepository(db),
	}

	var rest RestTiers
	if restURL != "" {
		restCfg := &config.Rest{
			URL:        restURL,
			AnonKey:    "anon-key",
			ServiceKey: "service-key",
			Timeout:    2 * time.Second,
		}
		rest = RestTiers{
			Service: client.NewRestClient(restCfg, client.RoleService),
			Anon:    client.NewRestClient(restCfg, client.RoleAnon),
		}
	}

	chain := fallback.NewChain(discard, 2*time.Second)
	provider := mock.NewProvider(discard)

	return &fixture{
		db:      db,
		chain:   chain,
		catalog: NewCatalogService(chain, repos, rest, provider),
		admin:   NewAdminService(chain, repos, rest, provider, discard),
	}
}

func liveDB(t *testing.T) *client.DBClient {
	t.Helper()
	db := client.NewDBClient(&config.Database{
		Driver:         "sqlite",
		URL:            filepath.Join(t.TempDir(), "market.db"),
		ConnectTimeout: time.Second,
		AutoMigrate:    true,
	}, discard)
	require.NoError(t, db.Connect(context.Background()))
	t.Cleanup(func() { db.Disconnect() })
	return db
}

// downDB points at a directory that does not exist, so every connect fails.
func downDB(t *testing.T) *client.DBClient {
	t.Helper()
	return client.NewDBClient(&config.Database{
		Driver:         "sqlite",
		URL:            filepath.Join(t.TempDir(), "missing", "dir", "market.db"),
		ConnectTimeout: time.Second,
	}, discard)
}

func seed(t *testing.T, db *client.DBClient) {
	t.Helper()
	res := db.Query(context.Background(), func(tx *gorm.DB) error {
		rows := []any{
			&model.User{ID: "u1", Name: "Carlos", Email: "carlos@example.com", Phone: "11999999999", Role: model.RoleSeller},
			&model.Seller{ID: "s1", UserID: "u1"},
			&model.Store{ID: "st1", Name: "TechStore", IsActive: true, SellerID: "s1"},
			&model.Product{ID: "p1", Title: "Phone", Price: decimal.RequireFromString("999.90"), Currency: "BRL", Category: "eletronicos", IsActive: true, StoreID: "st1"},
			&model.Product{ID: "p2", Title: "Case", Price: decimal.RequireFromString("49.90"), Currency: "BRL", Category: "eletronicos", IsActive: true, StoreID: "st1"},
			&model.Plan{ID: "pl1", Name: "Básico", Price: decimal.RequireFromString("29.90"), Currency: "BRL", AdLimit: 20, PhotoLimit: 5, IsActive: true, Order: 1},
			&model.SystemConfig{Key: string(model.TrackingGoogleAnalytics), Value: "G-123", IsActive: true},
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

type restCall struct {
	Method string
	Path   string
	Key    string
	Query  string
	Body   string
}

// fakeREST records every call and answers through handle.
type fakeREST struct {
	*httptest.Server

	mu    sync.Mutex
	calls []restCall
}

func newFakeREST(t *testing.T, handle func(w http.ResponseWriter, r *http.Request, call restCall)) *fakeREST {
	t.Helper()
	f := &fakeREST{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		call := restCall{
			Method: r.Method,
			Path:   r.URL.Path,
			Key:    r.Header.Get("apikey"),
			Query:  r.URL.RawQuery,
			Body:   string(body),
		}

		f.mu.Lock()
		f.calls = append(f.calls, call)
		f.mu.Unlock()

		handle(w, r, call)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeREST) Calls() []restCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]restCall(nil), f.calls...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
