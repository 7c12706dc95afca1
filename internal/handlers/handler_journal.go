package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/closepilot/ledgercore/internal/apperrors"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/dto"
	"github.com/closepilot/ledgercore/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{journalService: js}
}

// registerJournalRoutes registers entry and sale routes on the
// company-scoped group.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.postEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/post", h.postDraft)
		entries.POST("/:entryID/reverse", h.reverseEntry)
		entries.PUT("/:entryID/lines", h.replaceDraftLines)
	}
	rg.POST("/sales", h.postSale)
	rg.GET("/accounts/:accountID/lines", h.listAccountLines)
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Validates and persists a new entry, POSTED by default or DRAFT when asDraft is set
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   entry body dto.PostEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Unbalanced lines, bad accounts, or invalid input"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 409 {object} map[string]string "Target period is locked or closed"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Router /tenants/{tenantID}/companies/{companyID}/entries [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	var req dto.PostEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("company_id", companyID), slog.String("actor", actor))

	entry, err := h.journalService.PostEntry(c.Request.Context(), tenantID, companyID, req, actor)
	if err != nil {
		var unbalanced *apperrors.UnbalancedError
		if errors.As(err, &unbalanced) {
			logger.Warn("Rejected unbalanced entry", slog.String("delta", unbalanced.Delta().String()))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   err.Error(),
				"debits":  unbalanced.Debits,
				"credits": unbalanced.Credits,
			})
			return
		}
		respondServiceError(c, logger, err, "Failed to post entry")
		return
	}

	logger.Info("Entry posted", slog.String("entry_id", entry.EntryID), slog.String("status", string(entry.Status)))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves one entry with its lines
// @Tags journal
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Router /tenants/{tenantID}/companies/{companyID}/entries/{entryID} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)
	entryID := c.Param("entryID")

	entry, err := h.journalService.GetEntryByID(c.Request.Context(), tenantID, companyID, entryID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a paginated list of entries, newest first
// @Tags journal
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token from a previous page"
// @Param   includeLines query bool false "Embed lines in each entry"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid pagination token"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Router /tenants/{tenantID}/companies/{companyID}/entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.journalService.ListEntries(c.Request.Context(), tenantID, companyID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list entries")
		return
	}

	c.JSON(http.StatusOK, page)
}

// postDraft godoc
// @Summary Post a draft entry
// @Description Transitions a DRAFT entry to POSTED after balance validation
// @Tags journal
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   entryID path string true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Draft does not balance"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft or period is closed"
// @Failure 500 {object} map[string]string "Failed to post draft"
// @Router /tenants/{tenantID}/companies/{companyID}/entries/{entryID}/post [post]
func (h *journalHandler) postDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)
	entryID := c.Param("entryID")

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("entry_id", entryID), slog.String("actor", actor))

	entry, err := h.journalService.PostDraft(c.Request.Context(), tenantID, companyID, entryID, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post draft")
		return
	}

	logger.Info("Draft posted")
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted entry
// @Description Creates the paired reversal entry and flips the original to REVERSED
// @Tags journal
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   entryID path string true "Entry ID"
// @Success 201 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not POSTED or is itself a reversal"
// @Failure 500 {object} map[string]string "Failed to reverse entry"
// @Router /tenants/{tenantID}/companies/{companyID}/entries/{entryID}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)
	entryID := c.Param("entryID")

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("entry_id", entryID), slog.String("actor", actor))

	reversal, err := h.journalService.ReverseEntry(c.Request.Context(), tenantID, companyID, entryID, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reverse entry")
		return
	}

	logger.Info("Entry reversed", slog.String("reversal_entry_id", reversal.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}

// replaceDraftLines godoc
// @Summary Replace the lines of a draft entry
// @Description Replaces a DRAFT entry's lines wholesale; posted entries are immutable
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   entryID path string true "Entry ID"
// @Param   lines body dto.ReplaceLinesRequest true "Replacement lines"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid lines"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 500 {object} map[string]string "Failed to replace lines"
// @Router /tenants/{tenantID}/companies/{companyID}/entries/{entryID}/lines [put]
func (h *journalHandler) replaceDraftLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)
	entryID := c.Param("entryID")

	var req dto.ReplaceLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReplaceDraftLines", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("entry_id", entryID), slog.String("actor", actor))

	entry, err := h.journalService.ReplaceDraftLines(c.Request.Context(), tenantID, companyID, entryID, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to replace lines")
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// postSale godoc
// @Summary Post a cash sale
// @Description Composes and posts the balanced entry for a cash sale, recording inventory movements in the same transaction
// @Tags journal
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   sale body dto.PostSaleRequest true "Sale details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid amounts or unknown product"
// @Failure 404 {object} map[string]string "Company or product not found"
// @Failure 409 {object} map[string]string "Target period is locked or closed"
// @Failure 500 {object} map[string]string "Failed to post sale"
// @Router /tenants/{tenantID}/companies/{companyID}/sales [post]
func (h *journalHandler) postSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	var req dto.PostSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostSale", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("company_id", companyID), slog.String("actor", actor))

	entry, err := h.journalService.PostSale(c.Request.Context(), tenantID, companyID, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post sale")
		return
	}

	logger.Info("Sale posted", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// listAccountLines godoc
// @Summary List lines of an account
// @Description Retrieves a paginated list of posted lines touching one account
// @Tags journal
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Page size (default 20)"
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.ListLinesResponse
// @Failure 400 {object} map[string]string "Invalid pagination token"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list lines"
// @Router /tenants/{tenantID}/companies/{companyID}/accounts/{accountID}/lines [get]
func (h *journalHandler) listAccountLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)
	accountID := c.Param("accountID")

	var params dto.ListLinesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListAccountLines", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.journalService.ListLinesByAccount(c.Request.Context(), tenantID, companyID, accountID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list lines")
		return
	}

	c.JSON(http.StatusOK, page)
}
