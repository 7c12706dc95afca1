package handlers

import (
	"log/slog"
	"net/http"

	"github.com/closepilot/ledgercore/internal/core/domain"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/dto"
	"github.com/closepilot/ledgercore/internal/middleware"
	"github.com/gin-gonic/gin"
)

// closeoutHandler handles HTTP requests for the period-close engines:
// recurring templates, FX revaluation, revenue recognition and the run ledger.
type closeoutHandler struct {
	recurringService portssvc.RecurringSvcFacade
	fxService        portssvc.FxRevaluationSvcFacade
	revenueService   portssvc.RevenueSvcFacade
	runService       portssvc.RunLedgerSvcFacade
}

// newCloseoutHandler creates a new closeoutHandler.
func newCloseoutHandler(rec portssvc.RecurringSvcFacade, fx portssvc.FxRevaluationSvcFacade, rev portssvc.RevenueSvcFacade, runs portssvc.RunLedgerSvcFacade) *closeoutHandler {
	return &closeoutHandler{
		recurringService: rec,
		fxService:        fx,
		revenueService:   rev,
		runService:       runs,
	}
}

// registerCloseoutRoutes registers the period-close engine routes on the
// company-scoped group.
func registerCloseoutRoutes(rg *gin.RouterGroup, rec portssvc.RecurringSvcFacade, fx portssvc.FxRevaluationSvcFacade, rev portssvc.RevenueSvcFacade, runs portssvc.RunLedgerSvcFacade) {
	h := newCloseoutHandler(rec, fx, rev, runs)

	templates := rg.Group("/templates")
	{
		templates.POST("", h.createTemplate)
		templates.GET("", h.listTemplates)
	}

	schedules := rg.Group("/schedules")
	{
		schedules.POST("", h.createSchedule)
		schedules.GET("", h.listSchedules)
		schedules.DELETE("/:scheduleID", h.deleteSchedule)
	}

	periods := rg.Group("/periods/:period")
	{
		periods.POST("/recurring-run", h.runRecurring)
		periods.GET("/revaluation/preview", h.previewRevaluation)
		periods.POST("/revaluation", h.postRevaluation)
		periods.GET("/revaluation", h.getRevaluationHistory)
		periods.GET("/recognition", h.runRecognition)
		periods.POST("/recognition", h.postRecognition)
		periods.GET("/runs", h.listRuns)
		periods.POST("/runs/:runID/rollback", h.rollbackRun)
	}
}

// createTemplate godoc
// @Summary Create a recurring template
// @Description Persists a role-based recipe that the recurring run posts each period
// @Tags closeout
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   template body dto.CreateTemplateRequest true "Template details"
// @Success 201 {object} dto.TemplateResponse
// @Failure 400 {object} map[string]string "Unknown role or invalid amounts"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to create template"
// @Router /tenants/{tenantID}/companies/{companyID}/templates [post]
func (h *closeoutHandler) createTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTemplate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	template, err := h.recurringService.CreateTemplate(c.Request.Context(), tenantID, companyID, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create template")
		return
	}

	logger.Info("Template created", slog.String("template_id", template.TemplateID))
	c.JSON(http.StatusCreated, dto.ToTemplateResponse(template))
}

// listTemplates godoc
// @Summary List recurring templates
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Success 200 {array} dto.TemplateResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list templates"
// @Router /tenants/{tenantID}/companies/{companyID}/templates [get]
func (h *closeoutHandler) listTemplates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	templates, err := h.recurringService.ListTemplates(c.Request.Context(), tenantID, companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list templates")
		return
	}

	out := make([]dto.TemplateResponse, len(templates))
	for i := range templates {
		out[i] = dto.ToTemplateResponse(&templates[i])
	}
	c.JSON(http.StatusOK, out)
}

// runRecurring godoc
// @Summary Run recurring journals for a period
// @Description Posts one entry per active template; individual template failures are counted, not propagated
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.RecurringRunResult
// @Failure 400 {object} map[string]string "Invalid period or missing actor"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to run recurring journals"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/recurring-run [post]
func (h *closeoutHandler) runRecurring(c *gin.Context) {
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

	logger = logger.With(slog.String("period", period.String()), slog.String("actor", actor))

	result, err := h.recurringService.RunRecurringJournals(c.Request.Context(), tenantID, companyID, period, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to run recurring journals")
		return
	}

	logger.Info("Recurring run finished",
		slog.Int("posted", result.Posted),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)
	c.JSON(http.StatusOK, result)
}

// previewRevaluation godoc
// @Summary Preview FX revaluation
// @Description Computes per-account revaluations for a period without posting; rate resolution failures are reported, not fatal
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.RevaluationPreviewResponse
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to preview revaluation"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/revaluation/preview [get]
func (h *closeoutHandler) previewRevaluation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	period, ok := periodParam(c, logger)
	if !ok {
		return
	}

	preview, err := h.fxService.PreviewRevaluation(c.Request.Context(), tenantID, companyID, period)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to preview revaluation")
		return
	}

	c.JSON(http.StatusOK, preview)
}

// postRevaluation godoc
// @Summary Post FX revaluation
// @Description Posts the revaluation entry for a period and stores the history snapshot, overwriting any previous snapshot
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.PostRevaluationResponse
// @Failure 400 {object} map[string]string "Unresolvable rates or invalid period"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to post revaluation"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/revaluation [post]
func (h *closeoutHandler) postRevaluation(c *gin.Context) {
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

	logger = logger.With(slog.String("period", period.String()), slog.String("actor", actor))

	result, err := h.fxService.PostRevaluation(c.Request.Context(), tenantID, companyID, period, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post revaluation")
		return
	}

	logger.Info("Revaluation posted", slog.String("entry_id", result.EntryID), slog.Int("lines", len(result.Lines)))
	c.JSON(http.StatusOK, result)
}

// getRevaluationHistory godoc
// @Summary Get a period's revaluation snapshot
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} domain.RevaluationSnapshot
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 404 {object} map[string]string "No snapshot stored for the period"
// @Failure 500 {object} map[string]string "Failed to read snapshot"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/revaluation [get]
func (h *closeoutHandler) getRevaluationHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	period, ok := periodParam(c, logger)
	if !ok {
		return
	}

	snapshot, err := h.fxService.GetRevaluationHistory(c.Request.Context(), tenantID, companyID, period)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to read snapshot")
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// createSchedule godoc
// @Summary Create a recognition schedule
// @Description Persists a schedule spreading a deferred amount over a date range
// @Tags closeout
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   schedule body dto.CreateScheduleRequest true "Schedule details"
// @Success 201 {object} dto.ScheduleResponse
// @Failure 400 {object} map[string]string "Invalid dates or amount"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to create schedule"
// @Router /tenants/{tenantID}/companies/{companyID}/schedules [post]
func (h *closeoutHandler) createSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateSchedule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	schedule, err := h.revenueService.CreateSchedule(c.Request.Context(), tenantID, companyID, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create schedule")
		return
	}

	logger.Info("Schedule created", slog.String("schedule_id", schedule.ScheduleID))
	c.JSON(http.StatusCreated, dto.ToScheduleResponse(schedule))
}

// listSchedules godoc
// @Summary List recognition schedules
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Success 200 {array} dto.ScheduleResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list schedules"
// @Router /tenants/{tenantID}/companies/{companyID}/schedules [get]
func (h *closeoutHandler) listSchedules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	schedules, err := h.revenueService.ListSchedules(c.Request.Context(), tenantID, companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list schedules")
		return
	}

	out := make([]dto.ScheduleResponse, len(schedules))
	for i := range schedules {
		out[i] = dto.ToScheduleResponse(&schedules[i])
	}
	c.JSON(http.StatusOK, out)
}

// deleteSchedule godoc
// @Summary Delete a recognition schedule
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   scheduleID path string true "Schedule ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Schedule not found"
// @Failure 500 {object} map[string]string "Failed to delete schedule"
// @Router /tenants/{tenantID}/companies/{companyID}/schedules/{scheduleID} [delete]
func (h *closeoutHandler) deleteSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)
	scheduleID := c.Param("scheduleID")

	if err := h.revenueService.DeleteSchedule(c.Request.Context(), tenantID, companyID, scheduleID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete schedule")
		return
	}

	logger.Info("Schedule deleted", slog.String("schedule_id", scheduleID))
	c.Status(http.StatusNoContent)
}

// runRecognition godoc
// @Summary Compute revenue recognition for a period
// @Description Returns the prorated portions for a period without posting anything
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.RecognitionRunResult
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to compute recognition"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/recognition [get]
func (h *closeoutHandler) runRecognition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	period, ok := periodParam(c, logger)
	if !ok {
		return
	}

	result, err := h.revenueService.RunRecognition(c.Request.Context(), tenantID, companyID, period)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute recognition")
		return
	}

	c.JSON(http.StatusOK, result)
}

// postRecognition godoc
// @Summary Post the recognition journal for a period
// @Description Posts one entry for the period's recognized total; totals of zero or less produce no entry but still a run record
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Success 200 {object} dto.EntryResponse
// @Success 204 "Nothing to recognize"
// @Failure 400 {object} map[string]string "Invalid period or missing actor"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to post recognition"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/recognition [post]
func (h *closeoutHandler) postRecognition(c *gin.Context) {
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

	logger = logger.With(slog.String("period", period.String()), slog.String("actor", actor))

	entry, err := h.revenueService.PostRecognitionJournal(c.Request.Context(), tenantID, companyID, period, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post recognition")
		return
	}
	if entry == nil {
		logger.Info("No revenue to recognize for period")
		c.Status(http.StatusNoContent)
		return
	}

	logger.Info("Recognition posted", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// listRuns godoc
// @Summary List run records of a period
// @Description Retrieves the append-only run ledger of a period, optionally filtered by type
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Param   type query string false "Run type filter (recurring, fx_revaluation, revenue_recognition, adjustment, rollback)"
// @Success 200 {array} dto.RunRecordResponse
// @Failure 400 {object} map[string]string "Invalid period"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list runs"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/runs [get]
func (h *closeoutHandler) listRuns(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	period, ok := periodParam(c, logger)
	if !ok {
		return
	}

	var runType *domain.RunType
	if t := c.Query("type"); t != "" {
		rt := domain.RunType(t)
		runType = &rt
	}

	runs, err := h.runService.ListRuns(c.Request.Context(), tenantID, companyID, period, runType)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list runs")
		return
	}

	c.JSON(http.StatusOK, dto.ToRunRecordResponses(runs))
}

// rollbackRun godoc
// @Summary Roll back a run
// @Description Appends a compensating rollback record; the postings the run produced are untouched
// @Tags closeout
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   period path string true "Period (YYYY-MM)"
// @Param   runID path string true "Run ID"
// @Success 201 {object} dto.RunRecordResponse
// @Failure 400 {object} map[string]string "Target is itself a rollback"
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 409 {object} map[string]string "Run already rolled back"
// @Failure 500 {object} map[string]string "Failed to roll back run"
// @Router /tenants/{tenantID}/companies/{companyID}/periods/{period}/runs/{runID}/rollback [post]
func (h *closeoutHandler) rollbackRun(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)
	runID := c.Param("runID")

	period, ok := periodParam(c, logger)
	if !ok {
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("period", period.String()), slog.String("run_id", runID), slog.String("actor", actor))

	record, err := h.runService.RollbackRun(c.Request.Context(), tenantID, companyID, period, runID, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to roll back run")
		return
	}

	logger.Info("Run rolled back", slog.String("rollback_run_id", record.RunID))
	records := dto.ToRunRecordResponses([]domain.RunRecord{*record})
	c.JSON(http.StatusCreated, records[0])
}
