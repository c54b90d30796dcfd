package handler

import (
	"net/http"

	"marketplace-api/internal/dto"
	"marketplace-api/internal/fallback"
	"marketplace-api/internal/service"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	res, err := h.adminService.GetStats(ctx)
	return respond(c, http.StatusOK, res, err)
}

func (h *AdminHandler) CreatePlan(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.adminService.CreatePlan(ctx, req.ToModel())
	return respond(c, http.StatusCreated, res, err)
}

func (h *AdminHandler) UpdatePlan(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.adminService.UpdatePlan(ctx, c.Param("id"), req.ToModel())
	return respond(c, http.StatusOK, res, err)
}

func (h *AdminHandler) SetTrackingConfig(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.TrackingConfigRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.adminService.SetTrackingConfig(ctx, c.Param("key"), req.Value, req.IsActive)
	return respond(c, http.StatusOK, res, err)
}

func (h *AdminHandler) DeactivateStore(c echo.Context) error {
	ctx := c.Request().Context()
	storeID := c.Param("id")

	res, err := h.adminService.DeactivateStore(ctx, storeID)
	out := fallback.Result[dto.DeactivateStoreResponse]{
		Tier: res.Tier,
		Data: dto.DeactivateStoreResponse{
			StoreID:             storeID,
			ProductsDeactivated: res.Data,
		},
	}
	return respond(c, http.StatusOK, out, err)
}
