package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/catalogpricing/internal/catalog/application"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// CacheHandler serves the catalog cache admin endpoints.
type CacheHandler struct {
	admin *application.CacheAdminService
}

func NewCacheHandler(admin *application.CacheAdminService) *CacheHandler {
	return &CacheHandler{admin: admin}
}

// RegisterRoutes mounts the handler under /api/v1/catalog; mw runs before every route.
func (h *CacheHandler) RegisterRoutes(router *gin.RouterGroup, mw ...gin.HandlerFunc) {
	api := router.Group("/api/v1/catalog", mw...)
	{
		api.POST("/cache/clear", h.ClearCache)
	}
}

// ClearCacheRequest accepts JSON or repeated form fields, either as
// transients=... or in jQuery's transients[]=... form.
type ClearCacheRequest struct {
	Transients []string `json:"transients" form:"transients" binding:"required,min=1"`
}

// ClearCache deletes the named keys and reports what each held.
// The report is written bare, without the response envelope.
func (h *CacheHandler) ClearCache(c *gin.Context) {
	var req ClearCacheRequest
	if keys := c.PostFormArray("transients[]"); len(keys) > 0 {
		req.Transients = keys
	} else if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "transients is required", err.Error())
		return
	}

	reports, err := h.admin.ClearCache(c.Request.Context(), req.Transients)
	if err != nil {
		if errors.Is(err, application.ErrUnknownCacheKey) {
			response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to clear catalog cache", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "failed to clear cache", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"transients": reports})
}
