// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/EAS-COD-System/eas-tracker/internal/api/handlers"
	"github.com/EAS-COD-System/eas-tracker/internal/api/middleware"
	"github.com/EAS-COD-System/eas-tracker/internal/config"
	"github.com/EAS-COD-System/eas-tracker/internal/service"
)

type Services struct {
	Products    *service.ProductService
	Countries   *service.CountryService
	AdSpend     *service.AdSpendService
	Remittances *service.RemittanceService
	Influencers *service.InfluencerService
	Shipments   *service.ShipmentService
	Stock       *service.StockService
	Finance     *service.FinanceService
	Analytics   *service.AnalyticsService
	Snapshots   *service.SnapshotService
}

func NewRouter(services *Services, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.Server.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(cfg.Auth)
	router.POST("/api/v1/auth", authHandler.Login)

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.CookieAuth(cfg.Auth))

	apiGroup.GET("/auth/check", authHandler.Check)

	if services != nil {
		if services.Products != nil {
			productHandler := handlers.NewProductHandler(services.Products, services.Countries)
			productGroup := apiGroup.Group("/products")
			{
				productGroup.GET("", productHandler.List)
				productGroup.POST("", productHandler.Create)
				productGroup.GET("/:id", productHandler.Get)
				productGroup.PUT("/:id", productHandler.Update)
				productGroup.POST("/:id/pause", productHandler.Pause)
				productGroup.POST("/:id/resume", productHandler.Resume)
				productGroup.DELETE("/:id", productHandler.Delete)
			}
			apiGroup.GET("/countries", productHandler.ListCountries)
			apiGroup.POST("/countries", productHandler.AddCountry)
			apiGroup.DELETE("/countries/:name", productHandler.DeleteCountry)
		}

		if services.AdSpend != nil {
			recordsHandler := handlers.NewRecordsHandler(services.AdSpend, services.Remittances, services.Influencers)
			recordsGroup := apiGroup.Group("/records")
			{
				recordsGroup.POST("/adspend", recordsHandler.UpsertAdSpend)
				recordsGroup.GET("/adspend", recordsHandler.ListAdSpend)
				recordsGroup.DELETE("/adspend/:id", recordsHandler.DeleteAdSpend)
				recordsGroup.POST("/remittances", recordsHandler.UpsertRemittance)
				recordsGroup.GET("/remittances", recordsHandler.ListRemittances)
				recordsGroup.DELETE("/remittances/:id", recordsHandler.DeleteRemittance)
				recordsGroup.POST("/influencers", recordsHandler.AddInfluencerSpend)
				recordsGroup.GET("/influencers", recordsHandler.ListInfluencerSpend)
				recordsGroup.DELETE("/influencers/:id", recordsHandler.DeleteInfluencerSpend)
			}
		}

		if services.Shipments != nil {
			shipmentHandler := handlers.NewShipmentHandler(services.Shipments, services.Stock)
			shipmentGroup := apiGroup.Group("/shipments")
			{
				shipmentGroup.GET("", shipmentHandler.List)
				shipmentGroup.POST("", shipmentHandler.Create)
				shipmentGroup.POST("/:id/arrive", shipmentHandler.MarkArrived)
				shipmentGroup.POST("/:id/cost", shipmentHandler.FinalizeCost)
				shipmentGroup.DELETE("/:id", shipmentHandler.Delete)
			}
			apiGroup.GET("/stock", shipmentHandler.StockLevels)
		}

		if services.Finance != nil {
			financeHandler := handlers.NewFinanceHandler(services.Finance)
			financeGroup := apiGroup.Group("/finance")
			{
				financeGroup.GET("", financeHandler.List)
				financeGroup.POST("", financeHandler.Add)
				financeGroup.DELETE("/:id", financeHandler.Delete)
			}
		}

		if services.Analytics != nil {
			analyticsHandler := handlers.NewAnalyticsHandler(services.Analytics)
			apiGroup.GET("/analytics", analyticsHandler.GetAnalytics)
		}

		if services.Snapshots != nil {
			snapshotHandler := handlers.NewSnapshotHandler(services.Snapshots)
			snapshotGroup := apiGroup.Group("/snapshots")
			{
				snapshotGroup.GET("", snapshotHandler.List)
				snapshotGroup.POST("", snapshotHandler.Create)
				snapshotGroup.POST("/restore", snapshotHandler.Restore)
				snapshotGroup.POST("/prune", snapshotHandler.Prune)
				snapshotGroup.DELETE("/:id", snapshotHandler.Delete)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
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
