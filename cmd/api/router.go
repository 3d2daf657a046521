package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"karwan-auliya/internal/realtime"
	"karwan-auliya/internal/shared/middleware"
	"karwan-auliya/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.OptionalAuth(c.JWTManager),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCategoryRoutes(v1, c)
		setupBookRoutes(v1, c)
		setupReviewRoutes(v1, c)
		setupSearchRoutes(v1, c)
		setupMeRoutes(v1, c)
		setupAdminRoutes(v1, c)
		setupRealtimeRoutes(v1, c)
		setupPWARoutes(v1, c)
	}

	// everything outside the API belongs to the single-page app
	if c.Shell != nil {
		router.NoRoute(gin.WrapH(c.Shell))
	}

	return router
}

// ========================================
// CATEGORY ROUTES
// ========================================
func setupCategoryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	categories := v1.Group("/categories")
	{
		categories.GET("", c.CategoryHandler.List)
		categories.GET("/parents", c.CategoryHandler.ListParents)
		categories.GET("/:slug", c.CategoryHandler.GetBySlug)
		categories.GET("/:slug/subcategories", c.CategoryHandler.ListSubcategories)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	{
		books.GET("", c.BookHandler.List)
		books.GET("/featured", c.BookHandler.Featured)
		books.GET("/popular", c.BookHandler.Popular)
		books.GET("/quick-search", c.BookHandler.QuickSearch)
		books.GET("/:id", c.BookHandler.Get)
		books.POST("/:id/download", middleware.RequireAuth(), c.LibraryHandler.Download)
	}
}

// ========================================
// REVIEW ROUTES
// ========================================
func setupReviewRoutes(v1 *gin.RouterGroup, c *container.Container) {
	reviews := v1.Group("/books/:id/reviews")
	{
		reviews.GET("", c.ReviewHandler.ListByBook)
		reviews.GET("/mine", middleware.RequireAuth(), c.ReviewHandler.Mine)
		reviews.PUT("", middleware.RequireAuth(), c.ReviewHandler.Submit)
		reviews.DELETE("", middleware.RequireAuth(), c.ReviewHandler.Delete)
	}
}

// ========================================
// SEARCH ROUTES
// ========================================
func setupSearchRoutes(v1 *gin.RouterGroup, c *container.Container) {
	search := v1.Group("/search")
	{
		search.GET("", c.SearchHandler.Search)
		search.GET("/suggestions", c.SearchHandler.Suggestions)
		search.GET("/popular", c.SearchHandler.Popular)
	}
}

// ========================================
// SIGNED-IN USER ROUTES
// ========================================
func setupMeRoutes(v1 *gin.RouterGroup, c *container.Container) {
	me := v1.Group("/me")
	me.Use(middleware.RequireAuth())
	{
		me.GET("/profile", c.ProfileHandler.Me)
		me.PATCH("/profile", c.ProfileHandler.UpdateMe)

		me.GET("/library", c.LibraryHandler.Library)
		me.GET("/library/:bookID", c.LibraryHandler.InLibrary)
		me.POST("/library/:bookID", c.LibraryHandler.AddToLibrary)
		me.DELETE("/library/:bookID", c.LibraryHandler.RemoveFromLibrary)
		me.POST("/library/:bookID/open", c.LibraryHandler.Touch)

		me.GET("/bookmarks", c.LibraryHandler.Bookmarks)
		me.POST("/bookmarks/bulk-delete", c.LibraryHandler.RemoveBookmarks)
		me.GET("/bookmarks/:bookID", c.LibraryHandler.IsBookmarked)
		me.POST("/bookmarks/:bookID", c.LibraryHandler.AddBookmark)
		me.DELETE("/bookmarks/:bookID", c.LibraryHandler.RemoveBookmark)

		me.GET("/progress", c.LibraryHandler.AllProgress)
		me.GET("/progress/:bookID", c.LibraryHandler.Progress)
		me.PUT("/progress/:bookID", c.LibraryHandler.UpdateProgress)

		me.GET("/stats", c.LibraryHandler.Stats)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/categories", c.CategoryHandler.Create)
		admin.DELETE("/categories/:id", c.CategoryHandler.Delete)

		admin.POST("/books", c.BookHandler.Create)
		admin.PATCH("/books/:id", c.BookHandler.Update)
		admin.DELETE("/books/:id", c.BookHandler.Delete)
		admin.POST("/books/:id/cover", c.UploadHandler.UploadCover)
		admin.POST("/books/:id/file", c.UploadHandler.UploadFile)

		admin.POST("/uploads/cover", c.UploadHandler.UploadStandaloneCover)
		admin.GET("/uploads/:uploadID/progress", c.UploadHandler.Progress)
	}
}

// ========================================
// REALTIME ROUTES
// ========================================
func setupRealtimeRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.GET("/realtime/:table", realtime.NewStreamHandler(c.Hub).Stream)
}

// ========================================
// PWA ROUTES
// ========================================
func setupPWARoutes(v1 *gin.RouterGroup, c *container.Container) {
	pwa := v1.Group("/pwa")
	{
		pwa.GET("/install-prompt", c.OfflineHandler.InstallPrompt)
		pwa.POST("/install-prompt/dismiss", c.OfflineHandler.DismissInstallPrompt)
		pwa.POST("/push/preview", c.OfflineHandler.PreviewPush)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		checks := gin.H{"database": "UP", "redis": "UP"}
		status := http.StatusOK

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			checks["database"] = "DOWN"
			status = http.StatusServiceUnavailable
		}
		if err := c.Redis.HealthCheck(checkCtx); err != nil {
			checks["redis"] = "DOWN"
			status = http.StatusServiceUnavailable
		}
		if c.Shell != nil {
			checks["shell"] = string(c.Shell.State())
		}

		ctx.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"service": c.Config.App.Name,
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
