package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
	srvrouter "github.com/masar-hq/masar/engine/infra/server/router"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/task"
)

// Handler handles nested task HTTP requests
type Handler struct {
	svc        *task.Service
	activities *activity.Service
	projects   *project.Service
}

// NewHandler creates a new task handler
func NewHandler(svc *task.Service, activities *activity.Service, projects *project.Service) *Handler {
	return &Handler{svc: svc, activities: activities, projects: projects}
}

// requireActivity checks the full tenancy chain: project in the caller's
// organisation, caller a member, activity inside the project.
func (h *Handler) requireActivity(c *gin.Context) (core.ID, bool) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, err := core.ParseID(c.Param("projectID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid projectID")
		return "", false
	}
	activityID, err := core.ParseID(c.Param("activityID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid activityID")
		return "", false
	}
	if _, err := h.projects.Get(c.Request.Context(), u.OrgID, projectID); err != nil {
		srvrouter.RespondWithError(c, err)
		return "", false
	}
	if err := h.projects.RequireMember(c.Request.Context(), projectID, u.ID, u.Role); err != nil {
		srvrouter.RespondWithError(c, err)
		return "", false
	}
	a, err := h.activities.Get(c.Request.Context(), activityID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return "", false
	}
	if a.ProjectID != projectID {
		srvrouter.SendError(c, http.StatusNotFound, "NOT_FOUND", "activity not found in project")
		return "", false
	}
	return activityID, true
}

// List returns all tasks of the activity
func (h *Handler) List(c *gin.Context) {
	activityID, ok := h.requireActivity(c)
	if !ok {
		return
	}
	tasks, err := h.svc.ListByActivity(c.Request.Context(), activityID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, tasks, "")
}

// CreateTaskRequest is the task creation payload
type CreateTaskRequest struct {
	Name          string    `json:"name"          binding:"required"`
	Description   string    `json:"description"`
	StartDate     time.Time `json:"startDate"     binding:"required"`
	EndDate       time.Time `json:"endDate"       binding:"required"`
	DurationHours float64   `json:"durationHours" binding:"required,gt=0"`
	AssigneeID    *core.ID  `json:"assigneeId"`
}

// Create creates a task within the activity
func (h *Handler) Create(c *gin.Context) {
	activityID, ok := h.requireActivity(c)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	t, err := h.svc.Create(c.Request.Context(), &task.Task{
		ActivityID:    activityID,
		Name:          req.Name,
		Description:   req.Description,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		DurationHours: req.DurationHours,
		AssigneeID:    req.AssigneeID,
	})
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusCreated, t, "task created")
}

// UpdateTaskRequest is the task update payload. Dates are edited via the
// date-edit endpoints, which validate against the schedule.
type UpdateTaskRequest struct {
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	DurationHours *float64 `json:"durationHours"`
	AssigneeID    *core.ID `json:"assigneeId"`
}

// Update updates a task's descriptive fields, duration, and assignee
func (h *Handler) Update(c *gin.Context) {
	activityID, ok := h.requireActivity(c)
	if !ok {
		return
	}
	t, ok := h.taskInActivity(c, activityID)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.DurationHours != nil {
		t.DurationHours = *req.DurationHours
	}
	if req.AssigneeID != nil {
		t.AssigneeID = req.AssigneeID
	}
	updated, err := h.svc.Update(c.Request.Context(), t)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, updated, "task updated")
}

// Delete removes a task
func (h *Handler) Delete(c *gin.Context) {
	activityID, ok := h.requireActivity(c)
	if !ok {
		return
	}
	t, ok := h.taskInActivity(c, activityID)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), t.ID); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, nil, "task deleted")
}

func (h *Handler) taskInActivity(c *gin.Context, activityID core.ID) (*task.Task, bool) {
	taskID, err := core.ParseID(c.Param("taskID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid taskID")
		return nil, false
	}
	t, err := h.svc.Get(c.Request.Context(), taskID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return nil, false
	}
	if t.ActivityID != activityID {
		srvrouter.SendError(c, http.StatusNotFound, "NOT_FOUND", "task not found in activity")
		return nil, false
	}
	return t, true
}
