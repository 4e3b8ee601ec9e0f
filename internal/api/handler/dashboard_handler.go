package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wmmalith63/credence-tender-management/internal/service"
	"github.com/wmmalith63/credence-tender-management/pkg/response"
)

// DashboardHandler role-specific summaries and the deadline feed
type DashboardHandler struct {
	dashboardSvc service.DashboardService
	calendarSvc  service.CalendarService
	now          func() time.Time
}

// NewDashboardHandler creates a DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService, calendarSvc service.CalendarService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc, calendarSvc: calendarSvc, now: time.Now}
}

// GetStats
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	stats, err := h.dashboardSvc.Stats(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, stats)
}

// GetRecentActivities
// GET /api/v1/dashboard/activities
func (h *DashboardHandler) GetRecentActivities(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.dashboardSvc.RecentActivities(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetUpcomingDeadlines
// GET /api/v1/dashboard/deadlines
func (h *DashboardHandler) GetUpcomingDeadlines(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	list, err := h.dashboardSvc.UpcomingDeadlines(c.Request.Context(), p, h.now())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// GetDeadlinesCalendar iCalendar feed of upcoming deadlines
// GET /api/v1/dashboard/deadlines.ics
func (h *DashboardHandler) GetDeadlinesCalendar(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	body, err := h.calendarSvc.DeadlinesCalendar(c.Request.Context(), p, h.now())
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="tender-deadlines.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}
