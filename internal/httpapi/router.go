package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dzlab/edgesearch/internal/apperr"
	"github.com/dzlab/edgesearch/internal/query"
)

// NewRouter builds the gin engine serving svc's routes. apiKey is the
// shared secret every request must present in X-API-Key; an empty apiKey
// leaves the service open, matching the original's env-unset behavior.
func NewRouter(svc *Service, apiKey string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(authMiddleware(apiKey))

	r.GET("/", svc.handleRoot)
	r.GET("/indexes", svc.handleListIndexes)
	r.GET("/:index", svc.handleGetIndex)
	r.PUT("/:index", svc.handleCreateIndex)
	r.DELETE("/:index", svc.handleDeleteIndex)

	r.GET("/:index/doc/:id", svc.handleGetDocument)
	r.POST("/:index/doc", svc.handleCreateDocument)
	r.POST("/:index/doc/:id", svc.handleCreateDocument)
	r.PATCH("/:index/doc/:id", svc.handleUpdateDocument)
	r.DELETE("/:index/doc/:id", svc.handleDeleteDocument)

	r.POST("/:index/search", svc.handleSearch)
	r.GET("/:index/keyword/:keyword", svc.handleKeyword)

	return r
}

// requestLogger logs one line per request, in the same terse
// one-significant-event style the engine's other packages use.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.Printf("httpapi: %s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

// authMiddleware enforces the single shared-secret header check. With
// apiKey empty the check is skipped entirely.
func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-Key") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// respondError maps an error to its documented status code and body shape.
// Query syntax errors get the fixed "Failed to parse query" message; every
// other apperr kind surfaces its own message; anything unclassified is an
// upstream/deserialization failure and becomes a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, query.ErrSyntax):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse query"})
	default:
		log.Printf("httpapi: internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// wantsHTML reports whether the request's Accept header prefers an HTML
// response over JSON.
func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
