package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-ugc/internal/api/middleware"
	"github.com/feral-file/ff-ugc/internal/api/shared/dto"
	"github.com/feral-file/ff-ugc/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// LinkWallet links a wallet to the caller, merging a wallet-only legacy account when needed
	// POST /api/v1/me/wallet
	LinkWallet(c *gin.Context)

	// DismissLegacyLink stops offering the caller a legacy wallet link
	// POST /api/v1/me/legacy-link/dismiss
	DismissLegacyLink(c *gin.Context)

	// ListBookmarks lists the caller's bookmarks in display order
	// GET /api/v1/me/bookmarks
	ListBookmarks(c *gin.Context)

	// AddBookmark bookmarks an artist at the top of the list
	// POST /api/v1/me/bookmarks
	AddBookmark(c *gin.Context)

	// RemoveBookmark removes a bookmark
	// DELETE /api/v1/me/bookmarks/:artist_id
	RemoveBookmark(c *gin.Context)

	// ReorderBookmarks applies a full order to the caller's bookmarks
	// PUT /api/v1/me/bookmarks/order
	ReorderBookmarks(c *gin.Context)

	// MarkContentSeen moves the caller's seen watermark to now
	// POST /api/v1/me/ugc/seen
	MarkContentSeen(c *gin.Context)

	// GetUnseenApprovedCount counts approved submissions the caller has not seen
	// GET /api/v1/me/ugc/unseen-count
	GetUnseenApprovedCount(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{
		executor: exec,
	}
}

// LinkWallet links a wallet to the caller
func (h *handler) LinkWallet(c *gin.Context) {
	var req dto.LinkWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, err, "Failed to link wallet")
		return
	}

	response, err := h.executor.LinkWallet(c.Request.Context(), middleware.Subject(c), req.WalletAddress)
	if err != nil {
		respondError(c, err, "Failed to link wallet")
		return
	}

	c.JSON(http.StatusOK, response)
}

// DismissLegacyLink stops offering the caller a legacy wallet link
func (h *handler) DismissLegacyLink(c *gin.Context) {
	if err := h.executor.DismissLegacyLink(c.Request.Context(), middleware.Subject(c)); err != nil {
		respondError(c, err, "Failed to dismiss legacy link")
		return
	}

	c.Status(http.StatusNoContent)
}

// ListBookmarks lists the caller's bookmarks
func (h *handler) ListBookmarks(c *gin.Context) {
	response, err := h.executor.ListBookmarks(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		respondError(c, err, "Failed to list bookmarks")
		return
	}

	c.JSON(http.StatusOK, response)
}

// AddBookmark bookmarks an artist
func (h *handler) AddBookmark(c *gin.Context) {
	var req dto.AddBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, err, "Failed to add bookmark")
		return
	}

	response, err := h.executor.AddBookmark(c.Request.Context(), middleware.Subject(c), req.ArtistID)
	if err != nil {
		respondError(c, err, "Failed to add bookmark")
		return
	}

	status := http.StatusOK
	if response.Created {
		status = http.StatusCreated
	}
	c.JSON(status, response)
}

// RemoveBookmark removes a bookmark
func (h *handler) RemoveBookmark(c *gin.Context) {
	artistID := c.Param("artist_id")
	if artistID == "" {
		respondBadRequest(c, "Artist ID is required")
		return
	}

	response, err := h.executor.RemoveBookmark(c.Request.Context(), middleware.Subject(c), artistID)
	if err != nil {
		respondError(c, err, "Failed to remove bookmark")
		return
	}

	c.JSON(http.StatusOK, response)
}

// ReorderBookmarks applies a full order to the caller's bookmarks
func (h *handler) ReorderBookmarks(c *gin.Context) {
	var req dto.ReorderBookmarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, err, "Failed to reorder bookmarks")
		return
	}

	response, err := h.executor.ReorderBookmarks(c.Request.Context(), middleware.Subject(c), req.ArtistIDs)
	if err != nil {
		respondError(c, err, "Failed to reorder bookmarks")
		return
	}

	c.JSON(http.StatusOK, response)
}

// MarkContentSeen moves the caller's seen watermark to now
func (h *handler) MarkContentSeen(c *gin.Context) {
	response, err := h.executor.MarkContentSeen(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		respondError(c, err, "Failed to mark content seen")
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetUnseenApprovedCount counts approved submissions the caller has not seen
func (h *handler) GetUnseenApprovedCount(c *gin.Context) {
	response, err := h.executor.GetUnseenApprovedCount(c.Request.Context(), middleware.Subject(c))
	if err != nil {
		respondError(c, err, "Failed to count unseen content")
		return
	}

	c.JSON(http.StatusOK, response)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ff-ugc-api",
	})
}
