package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
	srvrouter "github.com/masar-hq/masar/engine/infra/server/router"
	"github.com/masar-hq/masar/engine/schedule"
)

// RegisterRoutes registers the schedule computation route on an
// authenticated group
func RegisterRoutes(api *gin.RouterGroup, svc *schedule.Service) {
	handler := &Handler{svc: svc}
	api.POST("/projects/:projectID/schedule", handler.Calculate)
}

// Handler handles schedule HTTP requests
type Handler struct {
	svc *schedule.Service
}

// Calculate runs the CPM pass and returns the schedule value
func (h *Handler) Calculate(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, err := core.ParseID(c.Param("projectID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid projectID")
		return
	}
	result, err := h.svc.CalculateProjectSchedule(c.Request.Context(), u.OrgID, projectID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, result, "")
}
