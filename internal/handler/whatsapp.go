package handler

import (
	"net/http"
	"strings"

	"marketplace-api/internal/apperror"
	"marketplace-api/internal/dto"
	"marketplace-api/internal/fallback"
	"marketplace-api/internal/model"
	"marketplace-api/internal/service"
	"marketplace-api/internal/whatsapp"

	"github.com/labstack/echo/v4"
)

type WhatsAppHandler struct {
	catalogService service.CatalogService
	baseURL        string
}

func NewWhatsAppHandler(catalogService service.CatalogService, baseURL string) *WhatsAppHandler {
	return &WhatsAppHandler{
		catalogService: catalogService,
		baseURL:        strings.TrimRight(baseURL, "/"),
	}
}

func (h *WhatsAppHandler) ProductLink(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductLinkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	res, err := h.catalogService.GetProduct(ctx, req.ProductID)
	if err != nil {
		return httpError(err)
	}

	msg, err := whatsapp.ProductMessage(h.line(res.Data, req.Quantity))
	if err != nil {
		return httpError(err)
	}

	return h.link(c, res.Tier, sellerPhone(res.Data), msg)
}

// CartLink builds one message for a cart. All items must belong to the same
// store since the chat opens with a single seller.
func (h *WhatsAppHandler) CartLink(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CartLinkRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var (
		lines []whatsapp.Line
		first *model.Product
		tier  fallback.Tier
	)
	for _, item := range req.Items {
		res, err := h.catalogService.GetProduct(ctx, item.ProductID)
		if err != nil {
			return httpError(err)
		}

		if first == nil {
			first = res.Data
		} else if res.Data.StoreID != first.StoreID {
			return httpError(&apperror.ValidationError{Field: "items", Message: "all items must belong to the same store"})
		}

		tier = lowerTier(tier, res.Tier)
		lines = append(lines, h.line(res.Data, item.Quantity))
	}

	msg, err := whatsapp.CartMessage(lines)
	if err != nil {
		return httpError(err)
	}

	return h.link(c, tier, sellerPhone(first), msg)
}

func (h *WhatsAppHandler) line(p *model.Product, quantity int) whatsapp.Line {
	return whatsapp.Line{
		Title:     p.Title,
		UnitPrice: p.Price,
		Quantity:  quantity,
		URL:       h.baseURL + "/products/" + p.ID,
	}
}

func (h *WhatsAppHandler) link(c echo.Context, tier fallback.Tier, phone, msg string) error {
	url, err := whatsapp.Link(phone, msg)
	if err != nil {
		return httpError(err)
	}

	c.Response().Header().Set(HeaderDataTier, string(tier))
	return c.JSON(http.StatusOK, dto.LinkResponse{
		URL:     url,
		Phone:   whatsapp.CleanPhoneNumber(phone),
		Message: msg,
	})
}

func sellerPhone(p *model.Product) string {
	if p == nil || p.Store == nil || p.Store.Seller == nil || p.Store.Seller.User == nil {
		return ""
	}
	return p.Store.Seller.User.Phone
}

var tierOrder = []fallback.Tier{
	fallback.TierPrimary,
	fallback.TierServiceREST,
	fallback.TierAnonREST,
	fallback.TierMock,
}

// lowerTier returns whichever of a and b sits further down the chain.
func lowerTier(a, b fallback.Tier) fallback.Tier {
	for i := len(tierOrder) - 1; i >= 0; i-- {
		if tierOrder[i] == a || tierOrder[i] == b {
			return tierOrder[i]
		}
	}
	return b
}
