package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"casedesk/internal/config"
	"casedesk/internal/handler"
	"casedesk/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	caseH *handler.CaseHandler,
	docH *handler.DocumentHandler,
	conflictH *handler.ConflictHandler,
	ocrH *handler.OCRHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(&cfg.Auth))

	cases := v1.Group("/cases")
	cases.POST("", caseH.Create)
	cases.GET("", caseH.List)
	cases.GET("/:id", caseH.GetByID)
	cases.GET("/:id/record", caseH.GetRecord)
	cases.PATCH("/:id/record", caseH.UpdateRecord)
	cases.GET("/:id/conflicts", caseH.ListConflicts)
	cases.GET("/:id/export", caseH.Export)
	cases.GET("/:id/documents", docH.ListByCase)
	cases.POST("/:id/documents", docH.Upload)

	documents := v1.Group("/documents")
	documents.POST("", docH.Register)
	documents.GET("/:id", docH.GetByID)
	documents.DELETE("/:id", docH.Delete)
	documents.POST("/:id/ocr", docH.Enqueue)
	documents.POST("/:id/apply", docH.ApplyToCase)

	ocr := v1.Group("/ocr")
	ocr.POST("/run", ocrH.Run)

	conflicts := v1.Group("/conflicts")
	conflicts.POST("/resolve", conflictH.Resolve)

	return r
}
