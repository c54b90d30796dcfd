package server

import (
	"context"
	"log/slog"
	"net/http"

	"marketplace-api/internal/handler"
	appmiddleware "marketplace-api/internal/middleware"
	"marketplace-api/internal/model"
	"marketplace-api/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo             *echo.Echo
	healthHandler    *handler.HealthHandler
	catalogHandler   *handler.CatalogHandler
	adminHandler     *handler.AdminHandler
	whatsAppHandler  *handler.WhatsAppHandler
	analyticsHandler *handler.AnalyticsHandler
}

type Deps struct {
	CatalogService service.CatalogService
	AdminService   service.AdminService
	Dispatcher     handler.EventDispatcher
	DB             handler.DBStatus
	TierStats      handler.TierStats
	BaseURL        string
	JWTSecret      string
	Logger         *slog.Logger
}

func NewServer(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(appmiddleware.AuthMiddleware(deps.JWTSecret))

	s := &Server{
		echo:             e,
		healthHandler:    handler.NewHealthHandler(deps.DB, deps.TierStats),
		catalogHandler:   handler.NewCatalogHandler(deps.CatalogService),
		adminHandler:     handler.NewAdminHandler(deps.AdminService),
		whatsAppHandler:  handler.NewWhatsAppHandler(deps.CatalogService, deps.BaseURL),
		analyticsHandler: handler.NewAnalyticsHandler(deps.Dispatcher, deps.Logger),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", s.healthHandler.Health)

	// -------- catalog --------
	api.GET("/plans", s.catalogHandler.ListPlans)
	api.GET("/products", s.catalogHandler.ListProducts)
	api.GET("/products/:id", s.catalogHandler.GetProduct)
	api.GET("/stores", s.catalogHandler.ListStores)
	api.GET("/stores/:id", s.catalogHandler.GetStore)
	api.GET("/tracking-configs", s.catalogHandler.GetTrackingConfigs)

	// -------- checkout over whatsapp --------
	wa := api.Group("/whatsapp")
	wa.POST("/product-link", s.whatsAppHandler.ProductLink)
	wa.POST("/cart-link", s.whatsAppHandler.CartLink)

	api.POST("/analytics/events", s.analyticsHandler.TrackEvent)

	// -------- admin --------
	admin := api.Group("/admin", appmiddleware.RequireRole(model.RoleAdmin))
	admin.GET("/stats", s.adminHandler.GetStats)
	admin.POST("/plans", s.adminHandler.CreatePlan)
	admin.PUT("/plans/:id", s.adminHandler.UpdatePlan)
	admin.PUT("/tracking-configs/:key", s.adminHandler.SetTrackingConfig)
	admin.POST("/stores/:id/deactivate", s.adminHandler.DeactivateStore)
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
