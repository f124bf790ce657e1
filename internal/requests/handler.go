package requests

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler exposes read-only request views to the validator collaborator.
// The approve/reject transaction itself is signed and submitted elsewhere;
// this surface only answers "what is pending" and "would this transition be
// legal" questions.
type Handler struct {
	Service *Service
}

// NewHandler creates a requests handler.
func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ListPending returns all requests awaiting a validator decision.
func (h *Handler) ListPending(c *gin.Context) {
	pending, stale := h.Service.ListPending(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"requests": pending, "stale": stale})
}

// ListByStatus returns requests filtered by ?status= (numeric status code).
func (h *Handler) ListByStatus(c *gin.Context) {
	status, err := strconv.Atoi(c.DefaultQuery("status", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be a numeric status code"})
		return
	}
	records, stale := h.Service.ListByStatus(c.Request.Context(), Status(status))
	c.JSON(http.StatusOK, gin.H{"requests": records, "stale": stale})
}

// Get returns a single request by id.
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a non-negative integer"})
		return
	}
	record, stale, found := h.Service.Get(c.Request.Context(), id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found", "stale": stale})
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": record, "stale": stale})
}

// ValidateTransition checks whether a status transition would be legal,
// so the validator UI can reject impossible actions before building a
// transaction. Transitions out of terminal states are always rejected.
func (h *Handler) ValidateTransition(c *gin.Context) {
	var body struct {
		From int `json:"from" binding:"required"`
		To   int `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to status codes are required"})
		return
	}
	if err := h.Service.Machine().ValidateTransition(Status(body.From), Status(body.To)); err != nil {
		c.JSON(http.StatusConflict, gin.H{"allowed": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": true})
}
