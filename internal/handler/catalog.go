package handler

import (
	"net/http"

	"marketplace-api/internal/model"
	"marketplace-api/internal/service"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) ListPlans(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.catalogService.ListActivePlans(ctx)
	return respond(c, http.StatusOK, res, err)
}

func (h *CatalogHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	var filter model.ProductFilter
	err := echo.QueryParamsBinder(c).
		String("category", &filter.Category).
		String("storeId", &filter.StoreID).
		Int("limit", &filter.Limit).
		Int("offset", &filter.Offset).
		BindError()
	if err != nil {
		return err
	}

	res, err := h.catalogService.ListProducts(ctx, filter)
	return respond(c, http.StatusOK, res, err)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.catalogService.GetProduct(ctx, c.Param("id"))
	return respond(c, http.StatusOK, res, err)
}

func (h *CatalogHandler) ListStores(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.catalogService.ListActiveStores(ctx)
	return respond(c, http.StatusOK, res, err)
}

func (h *CatalogHandler) GetStore(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.catalogService.GetStore(ctx, c.Param("id"))
	return respond(c, http.StatusOK, res, err)
}

func (h *CatalogHandler) GetTrackingConfigs(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.catalogService.GetTrackingConfigs(ctx)
	return respond(c, http.StatusOK, res, err)
}
