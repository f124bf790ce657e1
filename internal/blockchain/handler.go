package blockchain

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"miko/ledger-portal/ledger-portal-backend/internal/ledger"
)

// Handler exposes the mirrored ledger state over HTTP. Upstream failures are
// soft: responses always carry the best available payload with cached/stale
// flags instead of an error page.
type Handler struct {
	Service *Service
	Client  *ledger.Client
}

// NewHandler creates a blockchain handler.
func NewHandler(service *Service, client *ledger.Client) *Handler {
	return &Handler{Service: service, Client: client}
}

// GetTrees returns verified trees, bypassing the cache when ?fresh=true.
func (h *Handler) GetTrees(c *gin.Context) {
	force := c.Query("fresh") == "true"
	trees, res := h.Service.Trees(c.Request.Context(), force)
	c.JSON(http.StatusOK, gin.H{"trees": trees, "cached": res.Cached, "stale": res.Stale})
}

// GetRequests returns verification requests, bypassing the cache when ?fresh=true.
func (h *Handler) GetRequests(c *gin.Context) {
	force := c.Query("fresh") == "true"
	requests, res := h.Service.Requests(c.Request.Context(), force)
	c.JSON(http.StatusOK, gin.H{"requests": requests, "cached": res.Cached, "stale": res.Stale})
}

// GetListings returns open marketplace listings.
func (h *Handler) GetListings(c *gin.Context) {
	force := c.Query("fresh") == "true"
	listings, res := h.Service.Listings(c.Request.Context(), force)
	c.JSON(http.StatusOK, gin.H{"listings": listings, "cached": res.Cached, "stale": res.Stale})
}

// GetListingStats aggregates the open listings into marketplace headline
// numbers: listing count, total remaining tokens, average and highest price.
func (h *Handler) GetListingStats(c *gin.Context) {
	listings, res := h.Service.Listings(c.Request.Context(), false)

	var totalTokens, highest, priceSum int64
	for _, l := range listings {
		totalTokens += l.RemainingTokens
		priceSum += l.UnitPrice
		if l.UnitPrice > highest {
			highest = l.UnitPrice
		}
	}
	avgPrice := 0.0
	if len(listings) > 0 {
		avgPrice = float64(priceSum) / float64(len(listings))
	}

	c.JSON(http.StatusOK, gin.H{
		"count":           len(listings),
		"total_remaining": totalTokens,
		"avg_price":       avgPrice,
		"highest":         highest,
		"stale":           res.Stale,
	})
}

// GetPendingCredits returns the unclaimed credit balance for an owner address.
func (h *Handler) GetPendingCredits(c *gin.Context) {
	address := c.Param("address")
	pending := h.Client.PendingCredits(c.Request.Context(), address)
	c.JSON(http.StatusOK, gin.H{"address": address, "pending": strconv.FormatInt(pending, 10)})
}

// Refresh marks every cached resource class stale so the next reads refetch.
func (h *Handler) Refresh(c *gin.Context) {
	h.Service.InvalidateAll()
	h.Client.ResetModuleCheck()
	c.JSON(http.StatusOK, gin.H{"message": "cache cleared, next request will fetch fresh data"})
}

// GetStatus reports the cached contract module availability probe.
func (h *Handler) GetStatus(c *gin.Context) {
	available := h.Client.CheckModules(c.Request.Context())
	checked, _, lastErr := h.Client.ModuleStatus()
	resp := gin.H{"checked": checked, "available": available}
	if lastErr != nil {
		resp["error"] = lastErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}
