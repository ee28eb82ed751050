// Package api serves the collected series read-only over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"csgo-market-data/internal/continuity"
	"csgo-market-data/internal/models"

	"github.com/gin-gonic/gin"
)

// KlineStore is satisfied by *store.KlineReader and *CachingKlineStore.
type KlineStore interface {
	Dump(ctx context.Context, marketHashName string) ([]models.KlineRecord, error)
	Timestamps(ctx context.Context, marketHashName string) ([]int64, error)
}

type IndexStore interface {
	Dump(ctx context.Context) ([]models.MarketIndexPoint, error)
}

type PriceStore interface {
	Recent(ctx context.Context, marketHashName string, limit int) ([]models.PriceSnapshot, error)
}

type APIHandler struct {
	klines KlineStore
	index  IndexStore
	prices PriceStore
}

func NewHandler(klines KlineStore, index IndexStore, prices PriceStore) *APIHandler {
	return &APIHandler{klines: klines, index: index, prices: prices}
}

// SetupRoutes mounts the read endpoints under r (normally /api/v1).
func SetupRoutes(r *gin.RouterGroup, h *APIHandler) {
	klines := r.Group("/klines")
	{
		klines.GET("", h.GetKlines)
		klines.GET("/gaps", h.GetKlineGaps)
	}
	r.GET("/index", h.GetIndex)
	r.GET("/prices", h.GetPrices)
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "msg": "ok", "data": data})
}

func requireName(c *gin.Context) (string, bool) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return "", false
	}
	return name, true
}

func (h *APIHandler) GetKlines(c *gin.Context) {
	name, valid := requireName(c)
	if !valid {
		return
	}
	rows, err := h.klines.Dump(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if rows == nil {
		rows = []models.KlineRecord{}
	}
	ok(c, rows)
}

func (h *APIHandler) GetKlineGaps(c *gin.Context) {
	name, valid := requireName(c)
	if !valid {
		return
	}
	ts, err := h.klines.Timestamps(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	report := continuity.Check(ts)
	if report.Gaps == nil {
		report.Gaps = []continuity.Gap{}
	}
	ok(c, gin.H{"name": name, "continuous": report.Continuous(), "report": report})
}

func (h *APIHandler) GetIndex(c *gin.Context) {
	rows, err := h.index.Dump(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if rows == nil {
		rows = []models.MarketIndexPoint{}
	}
	ok(c, rows)
}

func (h *APIHandler) GetPrices(c *gin.Context) {
	name, valid := requireName(c)
	if !valid {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	rows, err := h.prices.Recent(c.Request.Context(), name, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if rows == nil {
		rows = []models.PriceSnapshot{}
	}
	ok(c, rows)
}
