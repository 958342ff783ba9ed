package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/analytics"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
	srvrouter "github.com/masar-hq/masar/engine/infra/server/router"
)

// RegisterRoutes registers read-only analytics routes on an authenticated
// group
func RegisterRoutes(api *gin.RouterGroup, svc *analytics.Service) {
	handler := &Handler{svc: svc}
	group := api.Group("/analytics")
	{
		group.GET("/dashboard", handler.Dashboard)
		group.GET("/projects/:projectID", handler.ProjectSummary)
		group.GET("/schedule/:projectID", handler.ScheduleReport)
	}
}

// Handler handles analytics HTTP requests
type Handler struct {
	svc *analytics.Service
}

// Dashboard returns the tenant-wide aggregate view
func (h *Handler) Dashboard(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	dashboard, err := h.svc.Dashboard(c.Request.Context(), u.OrgID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, dashboard, "")
}

// ProjectSummary returns one project's execution report
func (h *Handler) ProjectSummary(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	summary, err := h.svc.ProjectSummary(c.Request.Context(), u.OrgID, projectID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, summary, "")
}

// ScheduleReport returns the full CPM result
func (h *Handler) ScheduleReport(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, ok := h.parseProjectID(c)
	if !ok {
		return
	}
	report, err := h.svc.ScheduleReport(c.Request.Context(), u.OrgID, projectID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, report, "")
}

func (h *Handler) parseProjectID(c *gin.Context) (core.ID, bool) {
	id, err := core.ParseID(c.Param("projectID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid projectID")
		return "", false
	}
	return id, true
}
