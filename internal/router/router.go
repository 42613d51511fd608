package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cardops/card-issuance-api/internal/config"
	"github.com/cardops/card-issuance-api/internal/handlers"
	"github.com/cardops/card-issuance-api/internal/middleware"
	"github.com/cardops/card-issuance-api/internal/models"
	"github.com/cardops/card-issuance-api/internal/service"
)

// Options carries the optional pieces of the HTTP surface
type Options struct {
	CORS config.CORSConfig
	// MetricsPath and MetricsHandler expose Prometheus metrics when both are set
	MetricsPath    string
	MetricsHandler http.Handler
	// HealthCheck reports storage health; nil means always healthy
	HealthCheck func(ctx context.Context) error
	Logger      *logrus.Logger
}

// SetupRouter configures all API routes
func SetupRouter(services *service.Services, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationIDMiddleware())
	if opts.Logger != nil {
		router.Use(middleware.RequestLogger(opts.Logger))
	}
	if opts.CORS.Enabled {
		router.Use(middleware.CORSMiddleware(opts.CORS))
	}
	router.Use(middleware.ActorMiddleware())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.NewErrorResponse("NOT_FOUND", "route not found", c.Request.URL.Path))
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if opts.HealthCheck != nil {
			if err := opts.HealthCheck(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	if opts.MetricsPath != "" && opts.MetricsHandler != nil {
		router.GET(opts.MetricsPath, gin.WrapH(opts.MetricsHandler))
	}

	// Create handlers
	referenceHandler := handlers.NewReferenceHandler(services.References)
	clientHandler := handlers.NewClientHandler(services.Clients)
	applicationHandler := handlers.NewApplicationHandler(services.Applications, services.Cards, services.Fees)
	batchHandler := handlers.NewBatchHandler(services.Batches, services.Cards)
	cardHandler := handlers.NewCardHandler(services.Cards)
	reportHandler := handlers.NewReportHandler(services.Reports)

	api := router.Group("/api")
	{
		api.GET("/meta", referenceHandler.GetMeta)
		api.GET("/ref/statuses", referenceHandler.ListStatuses)
		api.PUT("/ref/statuses/:statusId", referenceHandler.UpdateStatus)

		ref := api.Group("/ref")
		for _, kind := range models.CatalogKinds() {
			path := "/" + kind.PathSegment()
			ref.GET(path, referenceHandler.ListCatalog(kind))
			ref.POST(path, referenceHandler.CreateCatalogEntry(kind))
			ref.PUT(path+"/:id", referenceHandler.UpdateCatalogEntry(kind))
		}

		clients := api.Group("/clients")
		{
			clients.GET("", clientHandler.ListClients)
			clients.POST("", clientHandler.CreateClient)
			clients.GET("/:clientId", clientHandler.GetClient)
			clients.PUT("/:clientId", clientHandler.UpdateClient)
		}

		applications := api.Group("/applications")
		{
			applications.GET("", applicationHandler.ListApplications)
			applications.POST("", applicationHandler.CreateApplication)
			applications.GET("/:applicationId", applicationHandler.GetApplication)
			applications.PUT("/:applicationId", applicationHandler.UpdateApplication)
			applications.POST("/:applicationId/review", applicationHandler.StartReview)
			applications.POST("/:applicationId/decision", applicationHandler.Decide)
			applications.POST("/:applicationId/ensure-card", applicationHandler.EnsureCard)
			applications.GET("/:applicationId/history", applicationHandler.GetApplicationHistory)
			applications.GET("/:applicationId/fees", applicationHandler.ListFees)
			applications.POST("/:applicationId/fees", applicationHandler.RecordFee)
		}

		batches := api.Group("/batches")
		{
			batches.GET("", batchHandler.ListBatches)
			batches.POST("", batchHandler.CreateBatch)
			batches.GET("/:batchId", batchHandler.GetBatch)
			batches.PUT("/:batchId", batchHandler.UpdateBatch)
			batches.POST("/:batchId/items", batchHandler.AddItems)
			batches.POST("/:batchId/status", batchHandler.SetStatus)
			batches.POST("/:batchId/issue-cards", batchHandler.IssueCards)
			batches.GET("/:batchId/history", batchHandler.GetBatchHistory)
		}

		cards := api.Group("/cards")
		{
			cards.GET("", cardHandler.ListCards)
			cards.GET("/:cardId", cardHandler.GetCard)
			cards.POST("/:cardId/event", cardHandler.ApplyEvent)
			cards.GET("/:cardId/history", cardHandler.GetCardHistory)
		}

		reports := api.Group("/reports")
		{
			reports.GET("/funnel", reportHandler.Funnel)
			reports.GET("/volume", reportHandler.Volume)
			reports.GET("/sla", reportHandler.SLA)
			reports.GET("/reject-reasons", reportHandler.RejectReasons)
		}
	}

	return router
}
