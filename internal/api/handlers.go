// Package api exposes card listings, single-card resync and manual source
// triggers over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus_sync/internal/domain"
	"campus_sync/internal/reconcile"
)

type CardReader interface {
	GetInCategory(ctx context.Context, id, category string) (*domain.ContentCard, error)
	All(ctx context.Context, filter domain.CardFilter) ([]domain.ContentCard, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type VideoReader interface {
	All(ctx context.Context, includeUnpublished bool) ([]domain.Video, error)
	ListCategories(ctx context.Context) ([]string, error)
}

type Syncer interface {
	SyncSource(ctx context.Context, id string) (*domain.SyncStats, error)
	Resync(ctx context.Context, category, id string) (*domain.ContentCard, reconcile.Action, error)
}

type Handler struct {
	cards  CardReader
	videos VideoReader
	syncer Syncer
	cache  *CardCache
	logger *slog.Logger
}

func NewHandler(cards CardReader, videos VideoReader, syncer Syncer, cache *CardCache, logger *slog.Logger) *Handler {
	return &Handler{
		cards:  cards,
		videos: videos,
		syncer: syncer,
		cache:  cache,
		logger: logger,
	}
}

// ListCategories handles GET /api/cards.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.cards.ListCategories(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": nonNil(categories)})
}

// ListCards handles GET /api/cards/:category.
func (h *Handler) ListCards(c *gin.Context) {
	filter := domain.CardFilter{Category: c.Param("category")}

	var err error
	if filter.IncludeUnpublished, err = boolQuery(c, "all"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid all parameter"})
		return
	}
	if filter.OrderByDate, err = boolQuery(c, "orderByDate"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orderByDate parameter"})
		return
	}
	if v := c.Query("limit"); v != "" {
		filter.Limit, err = strconv.Atoi(v)
		if err != nil || filter.Limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit parameter"})
			return
		}
	}

	if cards, ok := h.cache.Get(filter); ok {
		c.JSON(http.StatusOK, cards)
		return
	}

	cards, err := h.cards.All(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, err)
		return
	}
	cards = nonNil(cards)
	h.cache.Set(filter, cards)

	c.JSON(http.StatusOK, cards)
}

// GetCard handles GET /api/cards/:category/:id.
func (h *Handler) GetCard(c *gin.Context) {
	card, err := h.cards.GetInCategory(c.Request.Context(), c.Param("id"), c.Param("category"))
	if err != nil {
		h.internalError(c, err)
		return
	}
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, card)
}

// ResyncCard handles POST /api/cards/:category/:id/sync.
func (h *Handler) ResyncCard(c *gin.Context) {
	category, id := c.Param("category"), c.Param("id")

	card, action, err := h.syncer.Resync(c.Request.Context(), category, id)
	if err != nil {
		status := resyncStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("resync failed", "category", category, "id", id, "error", err)
		}
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"action": action.String(),
		"card":   card,
	})
}

func resyncStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingResource):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownSource), errors.Is(err, domain.ErrNotUpstream):
		return http.StatusUnprocessableEntity
	case domain.IsFetchFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// TriggerSource handles POST /api/sync/:source.
func (h *Handler) TriggerSource(c *gin.Context) {
	source := c.Param("source")

	stats, err := h.syncer.SyncSource(c.Request.Context(), source)
	switch {
	case errors.Is(err, domain.ErrUnknownSource):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case err != nil && domain.IsFetchFailure(err):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "stats": stats})
	case err != nil:
		h.internalError(c, err)
	default:
		c.JSON(http.StatusOK, stats)
	}
}

// ListVideos handles GET /api/videos.
func (h *Handler) ListVideos(c *gin.Context) {
	all, err := boolQuery(c, "all")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid all parameter"})
		return
	}

	videos, err := h.videos.All(c.Request.Context(), all)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(videos))
}

// ListVideoCategories handles GET /api/videos/categories.
func (h *Handler) ListVideoCategories(c *gin.Context) {
	categories, err := h.videos.ListCategories(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": nonNil(categories)})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func boolQuery(c *gin.Context, name string) (bool, error) {
	v := c.Query(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
