// Package httpapi exposes the reconciliation engine to the back-office UI.
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tourdesk/internal/match"
	"tourdesk/internal/reconcile"
	"tourdesk/internal/render"
	"tourdesk/pkg/models"
)

type Handler struct {
	Engine *reconcile.Engine
	Log    zerolog.Logger
}

func NewHandler(engine *reconcile.Engine, log zerolog.Logger) *Handler {
	return &Handler{Engine: engine, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders/:key", h.getOrder)             // consolidated order JSON
	rg.GET("/orders/:key/document", h.getDocument) // rendered confirmation
	rg.GET("/search/keys", h.searchKeys)           // autocomplete candidates
	rg.GET("/tables/:service", h.getTable)         // raw source passthrough
}

func (h *Handler) getOrder(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))

	out, err := h.Engine.Reconcile(c.Request.Context(), key)
	if err != nil {
		h.reconcileError(c, key, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getDocument(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))

	doc, out, err := h.Engine.Document(c.Request.Context(), key)
	if err != nil {
		h.reconcileError(c, key, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":     out.OrderID,
		"rate_missing": out.RateMissing,
		"document":     doc,
	})
}

func (h *Handler) searchKeys(c *gin.Context) {
	keys, err := h.Engine.SearchKeys(c.Request.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("search keys failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "keys failed"})
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	if q != "" {
		filtered := keys[:0]
		for _, k := range keys {
			if strings.Contains(strings.ToLower(k), strings.ToLower(q)) {
				filtered = append(filtered, k)
			}
		}
		keys = filtered
	}

	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (h *Handler) getTable(c *gin.Context) {
	svc, ok := models.ParseService(c.Param("service"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown source"})
		return
	}

	t, err := h.Engine.Loader().Load(c.Request.Context(), svc)
	if err != nil {
		h.Log.Error().Err(err).Str("service", string(svc)).Msg("table load failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "source unavailable"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) reconcileError(c *gin.Context, key string, err error) {
	switch {
	case errors.Is(err, match.ErrNoMatch):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, render.ErrTemplateUnavailable):
		h.Log.Error().Err(err).Msg("template unavailable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "template unavailable"})
	default:
		h.Log.Error().Err(err).Str("key", key).Msg("reconcile failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reconcile failed"})
	}
}
