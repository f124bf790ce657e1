package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultCodeTTL bounds how long a one-time code stays valid when the caller
// does not specify a TTL.
const defaultCodeTTL = 5 * time.Minute

// Handler exposes the one-time-code store to the authentication collaborator.
// Code generation and delivery (email, SMS) happen outside this service; this
// surface only stores, verifies and inspects codes.
type Handler struct {
	Store Store
}

// NewHandler creates an auth handler over the given store.
func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

type putCodeRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Code       string `json:"code" binding:"required"`
	TTLMillis  int64  `json:"ttl_ms"`
}

// PutCode stores or overwrites the one-time code for an identifier.
func (h *Handler) PutCode(c *gin.Context) {
	var body putCodeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier and code are required"})
		return
	}
	ttl := defaultCodeTTL
	if body.TTLMillis > 0 {
		ttl = time.Duration(body.TTLMillis) * time.Millisecond
	}
	if err := h.Store.Put(c.Request.Context(), body.Identifier, body.Code, ttl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "code stored", "expires_in_ms": ttl.Milliseconds()})
}

type verifyCodeRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

// VerifyCode checks a one-time code. A valid code is consumed by this call.
func (h *Handler) VerifyCode(c *gin.Context) {
	var body verifyCodeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identifier and code are required"})
		return
	}
	valid, err := h.Store.Verify(c.Request.Context(), body.Identifier, body.Code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// PeekCode reports whether an active code exists and when it expires, for
// diagnostics. The code itself is never returned.
func (h *Handler) PeekCode(c *gin.Context) {
	entry, err := h.Store.Peek(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if entry == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}
