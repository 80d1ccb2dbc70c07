package handler

import (
	"github.com/akzente/fieldops/internal/ops/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler exposes the per-user project dashboard.
type DashboardHandler struct {
	dashboardSvc *service.DashboardService
}

func NewDashboardHandler(dashboardSvc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// Dashboard returns the report counts per project for the caller.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	projects, err := h.dashboardSvc.UserDashboard(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	Success(c, gin.H{"projects": projects})
}
