package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
	srvrouter "github.com/masar-hq/masar/engine/infra/server/router"
	"github.com/masar-hq/masar/engine/project"
)

// Handler handles project HTTP requests
type Handler struct {
	svc *project.Service
}

// NewHandler creates a new project handler
func NewHandler(svc *project.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateProjectRequest is the project creation payload
type CreateProjectRequest struct {
	Name        string    `json:"name"      binding:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	Timezone    string    `json:"timezone"`
}

// Create creates a project owned by the caller
func (h *Handler) Create(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	p, err := h.svc.Create(c.Request.Context(), &project.Project{
		OrgID:       u.OrgID,
		OwnerID:     u.ID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		Timezone:    req.Timezone,
	})
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusCreated, p, "project created")
}

// List returns a page of the organisation's projects
func (h *Handler) List(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	var page core.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	var status *core.Status
	if raw := c.Query("status"); raw != "" {
		s := core.Status(raw)
		if !s.IsValid() {
			srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status filter")
			return
		}
		status = &s
	}
	result, err := h.svc.List(c.Request.Context(), u.OrgID, page, status)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get returns one project
func (h *Handler) Get(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, ok := parseIDParam(c, "projectID")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), u.OrgID, projectID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, p, "")
}

// UpdateProjectRequest is the project update payload
type UpdateProjectRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"startDate"`
	Timezone    *string    `json:"timezone"`
}

// Update updates a project's descriptive fields
func (h *Handler) Update(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, ok := parseIDParam(c, "projectID")
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	p, err := h.svc.Get(c.Request.Context(), u.OrgID, projectID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.StartDate != nil {
		p.StartDate = *req.StartDate
	}
	if req.Timezone != nil {
		p.Timezone = *req.Timezone
	}
	updated, err := h.svc.Update(c.Request.Context(), p)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, updated, "project updated")
}

// Delete removes a project with cascade semantics
func (h *Handler) Delete(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, ok := parseIDParam(c, "projectID")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), u.OrgID, projectID); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, nil, "project deleted")
}

// AddMember links a user to the project
func (h *Handler) AddMember(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, ok := parseIDParam(c, "projectID")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userID")
	if !ok {
		return
	}
	// Only project members (or PMO) may manage membership
	if err := h.svc.RequireMember(c.Request.Context(), projectID, u.ID, u.Role); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	if err := h.svc.AddMember(c.Request.Context(), projectID, userID); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, nil, "member added")
}

// RemoveMember unlinks a user from the project
func (h *Handler) RemoveMember(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	projectID, ok := parseIDParam(c, "projectID")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userID")
	if !ok {
		return
	}
	if err := h.svc.RequireMember(c.Request.Context(), projectID, u.ID, u.Role); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	if err := h.svc.RemoveMember(c.Request.Context(), projectID, userID); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, nil, "member removed")
}

func parseIDParam(c *gin.Context, name string) (core.ID, bool) {
	id, err := core.ParseID(c.Param(name))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid "+name)
		return "", false
	}
	return id, true
}
