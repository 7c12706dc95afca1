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

// accountHandler handles HTTP requests related to the account directory.
type accountHandler struct {
	directory portssvc.AccountDirectorySvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(d portssvc.AccountDirectorySvcFacade) *accountHandler {
	return &accountHandler{directory: d}
}

// registerAccountRoutes registers account directory routes on the
// company-scoped group.
func registerAccountRoutes(rg *gin.RouterGroup, directory portssvc.AccountDirectorySvcFacade) {
	h := newAccountHandler(directory)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.POST("/resolve", h.resolveAccount)
	}
}

// resolveAccount godoc
// @Summary Resolve a role to an account
// @Description Returns the account serving a semantic role, creating it on demand
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Param   request body dto.ResolveAccountRequest true "Role to resolve"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Unknown role"
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to resolve account"
// @Router /tenants/{tenantID}/companies/{companyID}/accounts/resolve [post]
func (h *accountHandler) resolveAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	var req dto.ResolveAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ResolveAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("company_id", companyID), slog.String("role", req.Role))

	account, err := h.directory.Resolve(c.Request.Context(), tenantID, companyID, domain.AccountRole(req.Role), actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to resolve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Retrieves all accounts of a company
// @Tags accounts
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Success 200 {array} dto.AccountResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Router /tenants/{tenantID}/companies/{companyID}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := pathScope(c)

	accounts, err := h.directory.ListAccounts(c.Request.Context(), tenantID, companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list accounts")
		return
	}

	out := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, out)
}
