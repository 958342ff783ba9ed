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
)

// Handler handles nested activity HTTP requests
type Handler struct {
	svc      *activity.Service
	projects *project.Service
}

// NewHandler creates a new activity handler
func NewHandler(svc *activity.Service, projects *project.Service) *Handler {
	return &Handler{svc: svc, projects: projects}
}

// requireProject checks tenancy: the project must exist in the caller's
// organisation and the caller must be a member.
func (h *Handler) requireProject(c *gin.Context) (core.ID, bool) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, err := core.ParseID(c.Param("projectID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid projectID")
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
	return projectID, true
}

// List returns all activities of the project
func (h *Handler) List(c *gin.Context) {
	projectID, ok := h.requireProject(c)
	if !ok {
		return
	}
	activities, err := h.svc.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, activities, "")
}

// CreateActivityRequest is the activity creation payload
type CreateActivityRequest struct {
	Name        string                   `json:"name"      binding:"required"`
	Description string                   `json:"description"`
	StartDate   time.Time                `json:"startDate" binding:"required"`
	EndDate     time.Time                `json:"endDate"   binding:"required"`
	Checklist   []activity.ChecklistItem `json:"checklist"`
}

// Create creates an activity within the project
func (h *Handler) Create(c *gin.Context) {
	projectID, ok := h.requireProject(c)
	if !ok {
		return
	}
	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	a, err := h.svc.Create(c.Request.Context(), &activity.Activity{
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Checklist:   req.Checklist,
	})
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusCreated, a, "activity created")
}

// UpdateActivityRequest is the activity update payload. Dates are edited via
// the date-edit endpoints, which validate against the schedule.
type UpdateActivityRequest struct {
	Name        string                    `json:"name"`
	Description *string                   `json:"description"`
	Checklist   *[]activity.ChecklistItem `json:"checklist"`
}

// Update updates an activity's descriptive fields
func (h *Handler) Update(c *gin.Context) {
	projectID, ok := h.requireProject(c)
	if !ok {
		return
	}
	activityID, err := core.ParseID(c.Param("activityID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid activityID")
		return
	}
	var req UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	a, err := h.svc.Get(c.Request.Context(), activityID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	if a.ProjectID != projectID {
		srvrouter.SendError(c, http.StatusNotFound, "NOT_FOUND", "activity not found in project")
		return
	}
	if req.Name != "" {
		a.Name = req.Name
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Checklist != nil {
		a.Checklist = *req.Checklist
	}
	updated, err := h.svc.Update(c.Request.Context(), a)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, updated, "activity updated")
}

// Delete removes an activity and everything it owns
func (h *Handler) Delete(c *gin.Context) {
	projectID, ok := h.requireProject(c)
	if !ok {
		return
	}
	activityID, err := core.ParseID(c.Param("activityID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid activityID")
		return
	}
	a, err := h.svc.Get(c.Request.Context(), activityID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	if a.ProjectID != projectID {
		srvrouter.SendError(c, http.StatusNotFound, "NOT_FOUND", "activity not found in project")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), activityID); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, nil, "activity deleted")
}
