package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"marketplace-api/internal/analytics"
	"marketplace-api/internal/client"
	"marketplace-api/internal/config"
	"marketplace-api/internal/dto"
	"marketplace-api/internal/fallback"
	"marketplace-api/internal/handler"
	appmiddleware "marketplace-api/internal/middleware"
	"marketplace-api/internal/mock"
	"marketplace-api/internal/model"
	"marketplace-api/internal/repository"
	"marketplace-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeDispatcher struct {
	events []analytics.Event
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, e analytics.Event) (bool, error) {
	if err := e.Validate(); err != nil {
		return false, err
	}
	d.events = append(d.events, e)
	return true, nil
}

type testServer struct {
	*Server
	dispatcher *fakeDispatcher
}

// setupServer wires the real stack without REST tiers. With live=false the
// database is unreachable and every read lands on mock data.
func setupServer(t *testing.T, live bool) *testServer {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "market.db")
	if !live {
		dbPath = filepath.Join(t.TempDir(), "missing", "market.db")
	}
	db := client.NewDBClient(&config.Database{
		Driver:         "sqlite",
		URL:            dbPath,
		ConnectTimeout: time.Second,
		AutoMigrate:    true,
	}, discard)
	if live {
		require.NoError(t, db.Connect(context.Background()))
		t.Cleanup(func() { db.Disconnect() })
	}

	repos := service.Repositories{
		Plans:         repository.NewPlanRepository(db),
		Products:      repository.NewProductRepository(db),
		Stores:        repository.NewStoreRepository(db),
		SystemConfigs: repository.NewSystemConfigRepository(db),
		Stats:         repository.NewStatsRepository(db),
	}
	chain := fallback.NewChain(discard, 2*time.Second)
	provider := mock.NewProvider(discard)
	dispatcher := &fakeDispatcher{}

	srv := NewServer(Deps{
		CatalogService: service.NewCatalogService(chain, repos, service.RestTiers{}, provider),
		AdminService:   service.NewAdminService(chain, repos, service.RestTiers{}, provider, discard),
		Dispatcher:     dispatcher,
		DB:             db,
		TierStats:      chain,
		BaseURL:        "https://loja.example.com/",
		Logger:         discard,
	})

	return &testServer{Server: srv, dispatcher: dispatcher}
}

func doJSON(t *testing.T, s *testServer, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

var asAdmin = []string{appmiddleware.HeaderUserID, "admin-1", appmiddleware.HeaderUserRole, "ADMIN"}

func TestReadsStayUpWhenEverythingIsDown(t *testing.T) {
	s := setupServer(t, false)

	for _, path := range []string{
		"/api/plans",
		"/api/products",
		"/api/products/mock-product-1",
		"/api/stores",
		"/api/stores/mock-store-2",
		"/api/tracking-configs",
	} {
		w := doJSON(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, string(fallback.TierMock), w.Header().Get(handler.HeaderDataTier), path)
	}

	w := doJSON(t, s, http.MethodGet, "/api/products/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/products?limit=1000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health.Status)
	assert.False(t, health.Database)
	assert.Equal(t, int64(6), health.Served[string(fallback.TierMock)])
}

func TestWritesFailWhenEverythingIsDown(t *testing.T) {
	s := setupServer(t, false)

	w := doJSON(t, s, http.MethodPost, "/api/admin/plans", map[string]any{
		"name": "Premium", "price": 99.9, "currency": "BRL",
	}, asAdmin...)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Empty(t, w.Header().Get(handler.HeaderDataTier))

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(fallback.TierPrimary), body.Tier)
	assert.Contains(t, body.Error, "plans")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := setupServer(t, true)

	w := doJSON(t, s, http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/admin/stats", nil,
		appmiddleware.HeaderUserID, "u1", appmiddleware.HeaderUserRole, "SELLER")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/admin/stats", nil, asAdmin...)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(fallback.TierPrimary), w.Header().Get(handler.HeaderDataTier))
}

func TestPlanFlow(t *testing.T) {
	s := setupServer(t, true)

	// invalid body never reaches the data layer
	w := doJSON(t, s, http.MethodPost, "/api/admin/plans", map[string]any{
		"name": "", "price": 10, "currency": "BRL",
	}, asAdmin...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// create
	w = doJSON(t, s, http.MethodPost, "/api/admin/plans", map[string]any{
		"name": "Premium", "price": 149.9, "currency": "BRL", "adLimit": 500, "features": []string{"Destaque"},
	}, asAdmin...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, string(fallback.TierPrimary), w.Header().Get(handler.HeaderDataTier))

	var created model.Plan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsActive)

	// update
	w = doJSON(t, s, http.MethodPut, "/api/admin/plans/"+created.ID, map[string]any{
		"name": "Premium+", "price": 159.9, "currency": "BRL", "isActive": false,
	}, asAdmin...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// inactive plans drop out of the public listing
	w = doJSON(t, s, http.MethodGet, "/api/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var plans []model.Plan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plans))
	assert.Empty(t, plans)

	w = doJSON(t, s, http.MethodPut, "/api/admin/plans/missing", map[string]any{
		"name": "X", "price": 1, "currency": "BRL",
	}, asAdmin...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTrackingConfigFlow(t *testing.T) {
	s := setupServer(t, true)

	w := doJSON(t, s, http.MethodPut, "/api/admin/tracking-configs/TIKTOK_PIXEL_ID",
		map[string]any{"value": "tt-1", "isActive": true}, asAdmin...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodPut, "/api/admin/tracking-configs/UNKNOWN",
		map[string]any{"value": "x", "isActive": true}, asAdmin...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/tracking-configs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cfg model.TrackingConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Len(t, cfg, len(model.TrackingKeys))
	assert.Equal(t, model.TrackingEntry{Value: "tt-1", IsActive: true, IsConfigured: true}, cfg[model.TrackingTikTokPixel])
}

func TestWhatsAppLinks(t *testing.T) {
	s := setupServer(t, false)

	w := doJSON(t, s, http.MethodPost, "/api/whatsapp/product-link", map[string]any{
		"productId": "mock-product-1", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var link dto.LinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))
	assert.Equal(t, "5511987654321", link.Phone)

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", u.Host)
	assert.Equal(t, "/5511987654321", u.Path)
	text := u.Query().Get("text")
	assert.Contains(t, text, "iPhone 14 Pro 256GB")
	assert.Contains(t, text, "R$ 15.999,98")
	assert.Contains(t, text, "https://loja.example.com/products/mock-product-1")

	w = doJSON(t, s, http.MethodPost, "/api/whatsapp/cart-link", map[string]any{
		"items": []map[string]any{
			{"productId": "mock-product-3", "quantity": 1},
			{"productId": "mock-product-4", "quantity": 2},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))
	assert.Equal(t, "5521998765432", link.Phone)
	assert.Contains(t, link.Message, "*Total: R$ 687,90*")
	assert.Equal(t, string(fallback.TierMock), w.Header().Get(handler.HeaderDataTier))

	w = doJSON(t, s, http.MethodPost, "/api/whatsapp/cart-link", map[string]any{
		"items": []map[string]any{
			{"productId": "mock-product-1", "quantity": 1},
			{"productId": "mock-product-3", "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/whatsapp/cart-link", map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsEvents(t *testing.T) {
	s := setupServer(t, false)

	w := doJSON(t, s, http.MethodPost, "/api/analytics/events", map[string]any{
		"name": "add_to_cart",
		"items": []map[string]any{
			{"itemId": "p1", "itemName": "Camisa", "price": 59.9, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, s.dispatcher.events, 1)
	assert.Equal(t, analytics.AddToCart, s.dispatcher.events[0].Name)

	w = doJSON(t, s, http.MethodPost, "/api/analytics/events", map[string]any{
		"name": "purchase",
		"items": []map[string]any{
			{"itemId": "p1", "itemName": "Camisa", "price": 59.9, "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/analytics/events", map[string]any{
		"name": "page_view", "pageLocation": "not a url",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
