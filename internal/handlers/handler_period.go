package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/closepilot/ledgercore/internal/core/domain"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/dto"
	"github.com/closepilot/ledgercore/internal/middleware"
	"github.com/gin-gonic/gin"
)

// periodHandler handles HTTP requests for the period registry.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

// newPeriodHandler creates a new periodHandler.
func newPeriodHandler(ps portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{periodService: ps}
}

// registerPeriodRoutes registers period lifecycle routes on the
// company-scoped group.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods/:period")
	{
		periods.GET("", h.getStatus)
		periods.POST("/lock", h.lockPeriod)
		periods.POST("/unlock", h.unlockPeriod)
		periods.POST("/close", h.closePeriod)
		periods.POST("/adjustments", h.postAdjustment)
	}
}

// getStatus godoc
// @Summary Get a period's lock state
// @Description Returns the lock state of a period; periods with no stored record are open
// @Tags periods
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.PeriodStateResponse
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to read period state"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period} [get]
func (h *periodHandler) getStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	period, ok := periodParam(c, logger)
	if !ok {
		return
	}

	state, err := h.periodService.GetStatus(c.Request.Context(), tenantID, companyID, period)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to read period state")
		return
	}

	c.JSON(http.StatusOK, dto.ToPeriodStateResponse(period, state))
}

// lockPeriod godoc
// @Summary Lock a period
// @Description Soft-freezes a period against further postings
// @Tags periods
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.PeriodStateResponse
// @Failure 400 {object} map[string]string "Invalid period or missing actor"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to lock period"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/lock [post]
func (h *periodHandler) lockPeriod(c *gin.Context) {
	h.transition(c, "lock", h.periodService.Lock)
}

// unlockPeriod godoc
// @Summary Unlock a period
// @Description Reopens a locked or closed period; an explicit administrative override
// @Tags periods
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.PeriodStateResponse
// @Failure 400 {object} map[string]string "Invalid period or missing actor"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to unlock period"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/unlock [post]
func (h *periodHandler) unlockPeriod(c *gin.Context) {
	h.transition(c, "unlock", h.periodService.Unlock)
}

// closePeriod godoc
// @Summary Close a period
// @Description Marks a period closed; subsequent postings must go through the adjustment path
// @Tags periods
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.PeriodStateResponse
// @Failure 400 {object} map[string]string "Invalid period or missing actor"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to close period"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/close [post]
func (h *periodHandler) closePeriod(c *gin.Context) {
	h.transition(c, "close", h.periodService.CompleteClose)
}

// periodTransition is the shared shape of Lock, Unlock and CompleteClose.
type periodTransition func(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (domain.PeriodState, error)

// transition runs one attributed state change. Lock, unlock and close share
// the same shape and differ only in the target state.
func (h *periodHandler) transition(c *gin.Context, name string, fn periodTransition) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	period, ok := periodParam(c, logger)
	if !ok {
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("period", period.String()), slog.String("transition", name), slog.String("actor", actor))

	state, err := fn(c.Request.Context(), tenantID, companyID, period, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to "+name+" period")
		return
	}

	logger.Info("Period state changed", slog.String("status", string(state.Status)))
	c.JSON(http.StatusOK, dto.ToPeriodStateResponse(period, state))
}

// postAdjustment godoc
// @Summary Post a prior-period adjustment
// @Description Posts an adjustment attributed to a closed period into the next open period, recording the redirection in the closed period's run ledger
// @Tags periods
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Closed source period (YYYY-MM)"
// @Param   adjustment body dto.PriorPeriodAdjustmentRequest true "Adjustment details"
// @Success 201 {object} dto.PriorPeriodAdjustmentResponse
// @Failure 400 {object} map[string]string "Source period is open or lines are invalid"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 409 {object} map[string]string "No open period within the search horizon"
// @Failure 500 {object} map[string]string "Failed to post adjustment"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/adjustments [post]
func (h *periodHandler) postAdjustment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	period, ok := periodParam(c, logger)
	if !ok {
		return
	}

	var req dto.PriorPeriodAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostAdjustment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("source_period", period.String()), slog.String("actor", actor))

	resp, err := h.periodService.PostPriorPeriodAdjustment(c.Request.Context(), tenantID, companyID, period, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post adjustment")
		return
	}

	logger.Info("Adjustment posted", slog.String("entry_id", resp.EntryID), slog.String("posted_into", resp.PostedInto))
	c.JSON(http.StatusCreated, resp)
}
