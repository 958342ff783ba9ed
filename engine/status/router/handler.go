package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
	srvrouter "github.com/masar-hq/masar/engine/infra/server/router"
	"github.com/masar-hq/masar/engine/status"
)

// Handler handles status lifecycle HTTP requests
type Handler struct {
	svc *status.Service
}

// NewHandler creates a new status handler
func NewHandler(svc *status.Service) *Handler {
	return &Handler{svc: svc}
}

// StatusRequest carries the requested lifecycle state
type StatusRequest struct {
	Status core.Status `json:"status" binding:"required"`
}

// ProgressRequest carries a manual progress edit
type ProgressRequest struct {
	Progress int `json:"progress"`
}

// UpdateActivityStatus transitions an activity's lifecycle state
func (h *Handler) UpdateActivityStatus(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	activityID, ok := parseIDParam(c, "activityID")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	if !req.Status.IsValid() {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}
	a, err := h.svc.UpdateActivityStatus(c.Request.Context(), u.OrgID, activityID, req.Status, u.Role)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, a, "activity status updated")
}

// RecalculateActivityProgress recomputes the rollup from child tasks
func (h *Handler) RecalculateActivityProgress(c *gin.Context) {
	activityID, ok := parseIDParam(c, "activityID")
	if !ok {
		return
	}
	progress, err := h.svc.RecalculateActivityProgress(c.Request.Context(), activityID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, gin.H{"progressPercentage": progress}, "")
}

// ActivityTracking derives the activity's tracking status
func (h *Handler) ActivityTracking(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	activityID, ok := parseIDParam(c, "activityID")
	if !ok {
		return
	}
	tracking, err := h.svc.ActivityTracking(c.Request.Context(), u.OrgID, activityID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, tracking, "")
}

// UpdateTaskStatus transitions a task's lifecycle state
func (h *Handler) UpdateTaskStatus(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	taskID, ok := parseIDParam(c, "taskID")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	if !req.Status.IsValid() {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
		return
	}
	t, err := h.svc.UpdateTaskStatus(c.Request.Context(), u.OrgID, taskID, req.Status, u.Role)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, t, "task status updated")
}

// UpdateTaskProgress applies a manual progress edit
func (h *Handler) UpdateTaskProgress(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	taskID, ok := parseIDParam(c, "taskID")
	if !ok {
		return
	}
	var req ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	t, err := h.svc.UpdateTaskProgress(c.Request.Context(), u.OrgID, taskID, req.Progress)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, t, "task progress updated")
}

// TaskTracking derives the task's tracking status
func (h *Handler) TaskTracking(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	taskID, ok := parseIDParam(c, "taskID")
	if !ok {
		return
	}
	tracking, err := h.svc.TaskTracking(c.Request.Context(), u.OrgID, taskID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, tracking, "")
}

func parseIDParam(c *gin.Context, name string) (core.ID, bool) {
	id, err := core.ParseID(c.Param(name))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid "+name)
		return "", false
	}
	return id, true
}
