package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cropcare-service/internal/export"
	"cropcare-service/internal/models"
	"cropcare-service/internal/services"
	"cropcare-service/internal/utils"

	"github.com/gin-gonic/gin"
)

// OfficerHandler serves the field officer dashboard: reports, advisories and
// aggregate stats.
type OfficerHandler struct {
	reportService    services.IReportService
	advisoryService  services.IAdvisoryService
	dashboardService services.IDashboardService
}

func NewOfficerHandler(
	reportService services.IReportService,
	advisoryService services.IAdvisoryService,
	dashboardService services.IDashboardService,
) *OfficerHandler {
	return &OfficerHandler{
		reportService:    reportService,
		advisoryService:  advisoryService,
		dashboardService: dashboardService,
	}
}

func (h *OfficerHandler) RegisterRoutes(router *gin.Engine) {
	officer := router.Group("/api/officer")

	reports := officer.Group("/reports")
	reports.GET("", h.ListReports)
	reports.GET("/export", h.ExportReports)
	reports.DELETE("/:id", h.DeleteReport)

	advisories := officer.Group("/advisories")
	advisories.GET("", h.ListAdvisories)
	advisories.POST("", h.CreateAdvisory)
	advisories.DELETE("/:id", h.DeleteAdvisory)

	officer.GET("/stats", h.GetStats)
}

func (h *OfficerHandler) ListReports(c *gin.Context) {
	reports, err := h.reportService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateListResponse(reports))
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *OfficerHandler) ExportReports(c *gin.Context) {
	reports, err := h.reportService.List()
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReportsXLSX(&buf, reports); err != nil {
		slog.Error("Failed to build reports workbook", "error", err)
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("EXPORT_FAILED", "Failed to build reports export"))
		return
	}

	filename := fmt.Sprintf("reports-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *OfficerHandler) DeleteReport(c *gin.Context) {
	if err := h.reportService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"deleted": true}))
}

func (h *OfficerHandler) ListAdvisories(c *gin.Context) {
	advisories, err := h.advisoryService.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateListResponse(advisories))
}

func (h *OfficerHandler) CreateAdvisory(c *gin.Context) {
	var req models.CreateAdvisoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and message are required")
		return
	}

	advisory, err := h.advisoryService.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(advisory))
}

func (h *OfficerHandler) DeleteAdvisory(c *gin.Context) {
	if err := h.advisoryService.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"deleted": true}))
}

func (h *OfficerHandler) GetStats(c *gin.Context) {
	stats, err := h.dashboardService.GetOfficerStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(stats))
}
