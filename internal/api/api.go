// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/api/handlers"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/api/middleware"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ForecastService *service.ForecastService
	MappingService  *service.MappingService
	// UploadDir receives workbooks posted to /runs.
	UploadDir string
	// DataDir bounds the server-side paths accepted by /runs.
	DataDir string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services == nil {
		return router
	}

	if services.ForecastService != nil {
		forecastHandler := handlers.NewForecastHandler(services.ForecastService, services.UploadDir, services.DataDir)
		apiGroup.POST("/runs", forecastHandler.CreateRun)
		apiGroup.GET("/products", forecastHandler.GetProducts)
		apiGroup.GET("/recommendations", forecastHandler.GetRecommendations)
		apiGroup.GET("/settings", forecastHandler.GetSettings)

		forecastGroup := apiGroup.Group("/forecasts")
		{
			forecastGroup.GET("", forecastHandler.GetForecasts)
			forecastGroup.GET("/batches", forecastHandler.GetBatches)
			forecastGroup.GET("/calendar", forecastHandler.GetCalendar)
			forecastGroup.GET("/export", forecastHandler.Export)
		}
	}

	if services.MappingService != nil && services.ForecastService != nil {
		mappingHandler := handlers.NewMappingHandler(services.MappingService, services.ForecastService)
		groups := apiGroup.Group("/mappings/groups")
		{
			groups.GET("", mappingHandler.ListGroups)
			groups.POST("", mappingHandler.AddGroup)
			groups.POST("/import", mappingHandler.Import)
			groups.GET("/:id", mappingHandler.GetGroup)
			groups.PUT("/:id", mappingHandler.UpdateGroup)
			groups.DELETE("/:id", mappingHandler.DeleteGroup)
			groups.POST("/:id/variations", mappingHandler.AddVariation)
			groups.DELETE("/:id/variations", mappingHandler.RemoveVariation)
		}
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	cfg := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
