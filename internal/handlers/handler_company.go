package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/dto"
	"github.com/closepilot/ledgercore/internal/middleware"
	"github.com/gin-gonic/gin"
)

// companyHandler handles HTTP requests related to companies.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
}

// newCompanyHandler creates a new companyHandler.
func newCompanyHandler(cs portssvc.CompanySvcFacade) *companyHandler {
	return &companyHandler{companyService: cs}
}

// registerCompanyRoutes registers tenant-level company routes.
func registerCompanyRoutes(rg *gin.RouterGroup, companyService portssvc.CompanySvcFacade) {
	h := newCompanyHandler(companyService)

	companies := rg.Group("/tenants/:tenantID/companies")
	{
		companies.POST("", h.createCompany)
		companies.GET("", h.listCompanies)
		companies.GET("/:companyID", h.getCompany)
	}
}

// createCompany godoc
// @Summary Create a company
// @Description Creates a bookkeeping company under a tenant
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown base currency"
// @Failure 500 {object} map[string]string "Failed to create company"
// @Router /tenants/{tenantID}/companies [post]
func (h *companyHandler) createCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCompany", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor, ok := requireActor(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("tenant_id", tenantID), slog.String("actor", actor))

	company, err := h.companyService.CreateCompany(c.Request.Context(), tenantID, req, actor)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create company")
		return
	}

	logger.Info("Company created", slog.String("company_id", company.CompanyID))
	c.JSON(http.StatusCreated, dto.ToCompanyResponse(company))
}

// getCompany godoc
// @Summary Get a company
// @Description Retrieves one company of a tenant
// @Tags companies
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Param   companyID path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Failure 500 {object} map[string]string "Failed to retrieve company"
// @Router /tenants/{tenantID}/companies/{companyID} [get]
func (h *companyHandler) getCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID, companyID := c.Param("tenantID"), c.Param("companyID")

	company, err := h.companyService.GetCompanyByID(c.Request.Context(), tenantID, companyID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve company")
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// listCompanies godoc
// @Summary List companies
// @Description Retrieves all companies of a tenant
// @Tags companies
// @Produce  json
// @Param   tenantID path string true "Tenant ID"
// @Success 200 {array} dto.CompanyResponse
// @Failure 500 {object} map[string]string "Failed to list companies"
// @Router /tenants/{tenantID}/companies [get]
func (h *companyHandler) listCompanies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID := c.Param("tenantID")

	companies, err := h.companyService.ListCompanies(c.Request.Context(), tenantID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list companies")
		return
	}

	out := make([]dto.CompanyResponse, len(companies))
	for i := range companies {
		out[i] = dto.ToCompanyResponse(&companies[i])
	}
	c.JSON(http.StatusOK, out)
}
