package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/closepilot/ledgercore/internal/middleware"
	"github.com/gin-gonic/gin"
)

// pathScope extracts the tenant and company identifiers every scoped route
// carries in its path.
func pathScope(c *gin.Context) (tenantID, companyID string) {
	return c.Param("tenantID"), c.Param("companyID")
}

// requireActor fetches the acting user from the attribution header. Writes
// without attribution are rejected; reads never call this.
func requireActor(c *gin.Context, logger *slog.Logger) (string, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		logger.Warn("Missing actor header on write request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + middleware.ActorHeader + " header"})
		return "", false
	}
	return actor, true
}

// periodParam parses the :period path segment (YYYY-MM).
func periodParam(c *gin.Context, logger *slog.Logger) (domain.Period, bool) {
	period, err := domain.ParsePeriod(c.Param("period"))
	if err != nil {
		logger.Warn("Invalid period in path", slog.String("period", c.Param("period")))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return period, true
}

// respondServiceError maps service-layer sentinel errors to HTTP statuses.
// Handlers with endpoint-specific mappings do their own errors.Is chains.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrNoLines):
		logger.Warn("Validation error", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate) || errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrImmutable):
		logger.Warn("Conflicting state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrTransient):
		logger.Error("Store unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store temporarily unavailable, retry the request"})
	default:
		logger.Error("Service call failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
