package handler

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/akzente/fieldops/internal/ops/repository"
	"github.com/akzente/fieldops/internal/ops/service"
	"github.com/gin-gonic/gin"
)

// ProjectHandler exposes project-scoped report views.
type ProjectHandler struct {
	dashboardSvc *service.DashboardService
	reportSvc    *service.ReportService
}

func NewProjectHandler(dashboardSvc *service.DashboardService, reportSvc *service.ReportService) *ProjectHandler {
	return &ProjectHandler{
		dashboardSvc: dashboardSvc,
		reportSvc:    reportSvc,
	}
}

// ReportCounts returns the new/ongoing/completed breakdown for one project.
func (h *ProjectHandler) ReportCounts(c *gin.Context) {
	counts, err := h.dashboardSvc.ProjectCounts(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, counts)
}

// ExportReports streams a project's reports as an xlsx workbook.
func (h *ProjectHandler) ExportReports(c *gin.Context) {
	f, fileName, err := h.reportSvc.ExportProjectReports(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "project not found")
			return
		}
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(fileName)))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, fmt.Sprintf("write workbook: %v", err))
	}
}
