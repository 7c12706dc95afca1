package handlers

import (
	"context"
	"net/http"

	"github.com/closepilot/ledgercore/internal/core/domain"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/middleware"
	"github.com/gin-gonic/gin"
)

// validationHandler handles HTTP requests for the read-only consistency checks.
type validationHandler struct {
	consistencyService portssvc.ConsistencySvcFacade
}

// newValidationHandler creates a new validationHandler.
func newValidationHandler(cs portssvc.ConsistencySvcFacade) *validationHandler {
	return &validationHandler{consistencyService: cs}
}

// registerValidationRoutes registers consistency check routes on the
// company-scoped group.
func registerValidationRoutes(rg *gin.RouterGroup, consistencyService portssvc.ConsistencySvcFacade) {
	h := newValidationHandler(consistencyService)

	validation := rg.Group("/validation")
	{
		validation.GET("", h.runAll)
		validation.GET("/account-types", h.check(h.consistencyService.CheckAccountTypes))
		validation.GET("/entry-balances", h.check(h.consistencyService.CheckEntryBalances))
		validation.GET("/orphan-lines", h.check(h.consistencyService.CheckOrphanLines))
		validation.GET("/reversal-links", h.check(h.consistencyService.CheckReversalLinks))
	}
}

// runAll godoc
// @Summary Run all consistency checks
// @Description Executes every ledger consistency check and aggregates the totals. Issues are data, not failures: a ledger with problems still returns 200.
// @Tags validation
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Success 200 {object} domain.ValidationReport
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to run checks"
// @Router /tenants/{tenantID}/companies/{companyID}/validation [get]
func (h *validationHandler) runAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	report, err := h.consistencyService.RunAll(c.Request.Context(), tenantID, companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to run checks")
		return
	}

	c.JSON(http.StatusOK, report)
}

// check adapts one consistency check to a Gin handler. The individual check
// endpoints differ only in which check they call.
func (h *validationHandler) check(fn func(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		tenantID, companyID := pathScope(c)

		result, err := fn(c.Request.Context(), tenantID, companyID)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to run check")
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
