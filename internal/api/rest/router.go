package rest

import (
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter собирает gin-движок с middleware и маршрутами /api/v1
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Logger(logger))
	r.Use(CORS())

	r.GET("/", h.Root)

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.Health)
		api.POST("/upload", h.Upload)
		api.POST("/identify-route", h.IdentifyRoute)
		api.POST("/identify-all-routes", h.IdentifyAllRoutes)
		api.POST("/visualize-route", h.VisualizeRoute)
		api.POST("/visualize-all-routes", h.VisualizeAllRoutes)
		api.POST("/visualize-full", h.VisualizeFull)
		api.POST("/remove-background", h.RemoveBackground)
	}

	return r
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
