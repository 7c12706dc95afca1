package handlers

import (
	"log/slog"

	"github.com/closepilot/ledgercore/cmd/docs"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/middleware"
	"github.com/closepilot/ledgercore/pkg/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Setup API v1 routes, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	// Swagger routes (typically public or conditionally available)
	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1",
		cors.Default(),
		middleware.ActorMiddleware(),
		rateLimitMiddleware(cfg),
	)

	// Tenant-level routes
	registerCompanyRoutes(v1, services.Company)

	// Everything else is scoped to one company
	company := v1.Group("/tenants/:tenantID/companies/:companyID")
	registerAccountRoutes(company, services.Directory)
	registerJournalRoutes(company, services.Journal)
	registerPeriodRoutes(company, services.Period)
	registerCloseoutRoutes(company, services.Recurring, services.Fx, services.Revenue, services.Runs)
	registerValidationRoutes(company, services.Consistency)
}

// rateLimitMiddleware builds the per-IP rate limiter from the configured
// rate string (e.g. "100-M"). An unparsable rate disables limiting.
func rateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		slog.Warn("Invalid RATE_LIMIT value, rate limiting disabled", slog.String("rate_limit", cfg.RateLimit))
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(limiter.New(memory.NewStore(), rate))
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	// Swagger setup
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
