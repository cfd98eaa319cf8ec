package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/catalogpricing/internal/catalog/domain"
	"github.com/wyfcoding/catalogpricing/internal/pricing/application"
	"github.com/wyfcoding/catalogpricing/internal/pricing/domain"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// PricingHandler serves storefront price queries and the checkout fee hook.
type PricingHandler struct {
	cmd   *application.PricingCommandService
	query *application.PricingQueryService
	fee   *application.FeeService
}

func NewPricingHandler(cmd *application.PricingCommandService, query *application.PricingQueryService, fee *application.FeeService) *PricingHandler {
	return &PricingHandler{cmd: cmd, query: query, fee: fee}
}

// RegisterRoutes mounts the handler under /api/v1/pricing. admin runs before
// the mutating product routes only.
func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup, admin ...gin.HandlerFunc) {
	api := router.Group("/api/v1/pricing")
	{
		api.GET("/products/:id/price", h.GetPrice)
		api.GET("/products/:id/details", h.GetDetails)
		api.GET("/products/:id/range", h.GetRange)
		api.POST("/checkout/fee", h.CheckoutFee)

		handlers := append(append([]gin.HandlerFunc{}, admin...), h.SetCatalogSKU)
		api.PUT("/products/:id/catalog-sku", handlers...)
	}
}

// GetPrice returns the unit price for ?quantity=N (default 1).
func (h *PricingHandler) GetPrice(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	qty := 1
	if raw := c.Query("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid quantity", err.Error())
			return
		}
		qty = n
	}

	quote, err := h.query.GetUnitPrice(c.Request.Context(), id, qty)
	if err != nil {
		h.fail(c, "Failed to price product", err)
		return
	}
	response.Success(c, quote)
}

func (h *PricingHandler) GetDetails(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	details, err := h.query.GetProductDetails(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Failed to load product details", err)
		return
	}
	response.Success(c, details)
}

func (h *PricingHandler) GetRange(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	rng, err := h.query.GetPriceRange(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Failed to compute price range", err)
		return
	}
	response.Success(c, rng)
}

// SetCatalogSKURequest an empty catalog_sku clears the override.
type SetCatalogSKURequest struct {
	CatalogSKU string `json:"catalog_sku"`
}

func (h *PricingHandler) SetCatalogSKU(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req SetCatalogSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.cmd.SetCatalogSKU(c.Request.Context(), id, req.CatalogSKU); err != nil {
		h.fail(c, "Failed to set catalog sku", err)
		return
	}
	response.Success(c, gin.H{"product_id": id, "catalog_sku": req.CatalogSKU})
}

// CartLineRequest one cart line. line_subtotal accepts a JSON string or number.
type CartLineRequest struct {
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity" binding:"gte=0"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

// FeeRequest the chosen payment method and cart contents.
type FeeRequest struct {
	PaymentMethod string            `json:"payment_method" binding:"required"`
	Lines         []CartLineRequest `json:"lines" binding:"dive"`
}

func (h *PricingHandler) CheckoutFee(c *gin.Context) {
	var req FeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	cmd := application.FeeCommand{PaymentMethod: req.PaymentMethod, Lines: make([]application.CartLine, 0, len(req.Lines))}
	for _, l := range req.Lines {
		cmd.Lines = append(cmd.Lines, application.CartLine{SKU: l.SKU, Quantity: l.Quantity, LineSubtotal: l.LineSubtotal})
	}

	fee, err := h.fee.CheckoutFee(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "Failed to compute checkout fee", err)
		return
	}
	response.Success(c, fee)
}

func (h *PricingHandler) fail(c *gin.Context, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, catalog.ErrRecordNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, application.ErrNotVariable), errors.Is(err, application.ErrVariationSKUOverride):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, err.Error(), "")
	default:
		logging.Error(c.Request.Context(), msg, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, msg, err.Error())
	}
}

func productID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", c.Param("id"))
		return 0, false
	}
	return uint(id), true
}
