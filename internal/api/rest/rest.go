package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes. auth guards every /me route.
func SetupRoutes(router *gin.Engine, handler Handler, auth gin.HandlerFunc) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	me := v1.Group("/me", auth)
	{
		// Wallet link and legacy account merge
		me.POST("/wallet", handler.LinkWallet)
		me.POST("/legacy-link/dismiss", handler.DismissLegacyLink)

		// Bookmarks
		me.GET("/bookmarks", handler.ListBookmarks)
		me.POST("/bookmarks", handler.AddBookmark)
		me.PUT("/bookmarks/order", handler.ReorderBookmarks)
		me.DELETE("/bookmarks/:artist_id", handler.RemoveBookmark)

		// Seen state of approved submissions
		me.POST("/ugc/seen", handler.MarkContentSeen)
		me.GET("/ugc/unseen-count", handler.GetUnseenApprovedCount)
	}
}
