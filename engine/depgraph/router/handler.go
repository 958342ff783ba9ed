package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	srvrouter "github.com/masar-hq/masar/engine/infra/server/router"
)

// Handler handles dependency edge HTTP requests
type Handler struct {
	svc *depgraph.Service
}

// NewHandler creates a new dependency handler
func NewHandler(svc *depgraph.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateDependencyRequest is the edge creation payload
type CreateDependencyRequest struct {
	ItemType      core.ItemType `json:"itemType"      binding:"required"`
	PredecessorID core.ID       `json:"predecessorId" binding:"required"`
	SuccessorID   core.ID       `json:"successorId"   binding:"required"`
	Type          depgraph.Type `json:"type"          binding:"required"`
	Lag           float64       `json:"lag"`
}

// Create creates a dependency edge after cycle validation
func (h *Handler) Create(c *gin.Context) {
	var req CreateDependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	if !req.Type.IsValid() {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED",
			"type must be one of FS, SS, FF, SF")
		return
	}
	var dep *depgraph.Dependency
	var err error
	switch req.ItemType {
	case core.ItemTypeActivity:
		dep, err = h.svc.CreateActivityDependency(
			c.Request.Context(), req.PredecessorID, req.SuccessorID, req.Type, req.Lag)
	case core.ItemTypeTask:
		dep, err = h.svc.CreateTaskDependency(
			c.Request.Context(), req.PredecessorID, req.SuccessorID, req.Type, req.Lag)
	default:
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED",
			"itemType must be activity or task")
		return
	}
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusCreated, dep, "dependency created")
}

// Delete removes a dependency edge
func (h *Handler) Delete(c *gin.Context) {
	id, err := core.ParseID(c.Param("dependencyID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid dependencyID")
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, nil, "dependency deleted")
}

// ListForActivity returns both edge directions of an activity
func (h *Handler) ListForActivity(c *gin.Context) {
	h.listForItem(c, "activityID", core.ItemTypeActivity)
}

// ListForTask returns both edge directions of a task
func (h *Handler) ListForTask(c *gin.Context) {
	h.listForItem(c, "taskID", core.ItemTypeTask)
}

func (h *Handler) listForItem(c *gin.Context, param string, kind core.ItemType) {
	id, err := core.ParseID(c.Param(param))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid "+param)
		return
	}
	deps, err := h.svc.GetDependencies(c.Request.Context(), id, kind)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, deps, "")
}
