// infrastructure/router.go
package infrastructure

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"

	"github.com/vitovidale/ai-animator/domain"
)

type RouterDeps struct {
	Creations *CreationHandlers
	Health    *HealthHandlers
	Verifier  domain.IdentityVerifier
	Media     *MediaStore
	Metrics   *Metrics
	Logger    *logrus.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/", deps.Health.RootHandler)
	router.GET("/health", deps.Health.HealthHandler)
	deps.Media.Register(router)

	authRoutes := router.Group("/")
	authRoutes.Use(AuthMiddleware(deps.Verifier, deps.Logger))
	{
		authRoutes.POST("/render", deps.Creations.RenderHandler)
		authRoutes.GET("/history", deps.Creations.ListHistoryHandler)
		authRoutes.DELETE("/history/:id", deps.Creations.DeleteHistoryItemHandler)
		authRoutes.DELETE("/history", deps.Creations.ClearHistoryHandler)
	}
	return router
}

// WithCORS restricts browser access to the configured frontend origins.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
	)(next)
}
