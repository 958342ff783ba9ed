package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/constraint"
	"github.com/masar-hq/masar/engine/core"
	srvrouter "github.com/masar-hq/masar/engine/infra/server/router"
)

// routeScope binds one set of date-edit routes to an item kind.
type routeScope struct {
	prefix   string
	param    string
	itemType core.ItemType
}

// Handler handles constraint and date-edit HTTP requests
type Handler struct {
	svc *constraint.Service
}

// NewHandler creates a new constraint handler
func NewHandler(svc *constraint.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateConstraintRequest is the constraint creation payload
type CreateConstraintRequest struct {
	ItemID   core.ID         `json:"itemId"         binding:"required"`
	ItemType core.ItemType   `json:"itemType"       binding:"required"`
	Type     constraint.Type `json:"constraintType" binding:"required"`
	Date     *time.Time      `json:"constraintDate"`
}

// Create stores a hard constraint for an item
func (h *Handler) Create(c *gin.Context) {
	var req CreateConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	created, err := h.svc.AddConstraint(c.Request.Context(), &constraint.DateConstraint{
		ItemID:   req.ItemID,
		ItemType: req.ItemType,
		Type:     req.Type,
		Date:     req.Date,
	})
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusCreated, created, "constraint created")
}

// Delete removes a constraint
func (h *Handler) Delete(c *gin.Context) {
	id, err := core.ParseID(c.Param("constraintID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid constraintID")
		return
	}
	if err := h.svc.RemoveConstraint(c.Request.Context(), id); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, nil, "constraint deleted")
}

// DateEditRequest is the payload of validate-dates and apply-dates
type DateEditRequest struct {
	NewStart      time.Time `json:"newStart" binding:"required"`
	NewEnd        time.Time `json:"newEnd"   binding:"required"`
	ForceOverride bool      `json:"forceOverride"`
}

func (h *Handler) listForScope(scope routeScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := parseItemID(c, scope.param)
		if !ok {
			return
		}
		constraints, err := h.svc.ListByItem(c.Request.Context(), itemID, scope.itemType)
		if err != nil {
			srvrouter.RespondWithError(c, err)
			return
		}
		srvrouter.SendSuccess(c, http.StatusOK, constraints, "")
	}
}

func (h *Handler) validateForScope(scope routeScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := parseItemID(c, scope.param)
		if !ok {
			return
		}
		var req DateEditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
			return
		}
		u := auth.UserFromContext(c.Request.Context())
		result, err := h.svc.ValidateDateEdit(
			c.Request.Context(), u.OrgID, scope.itemType, itemID, req.NewStart, req.NewEnd)
		if err != nil {
			srvrouter.RespondWithError(c, err)
			return
		}
		srvrouter.SendSuccess(c, http.StatusOK, result, "")
	}
}

func (h *Handler) applyForScope(scope routeScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := parseItemID(c, scope.param)
		if !ok {
			return
		}
		var req DateEditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
			return
		}
		u := auth.UserFromContext(c.Request.Context())
		result, err := h.svc.ApplyDateEdit(
			c.Request.Context(), u.OrgID, scope.itemType, itemID,
			req.NewStart, req.NewEnd, req.ForceOverride)
		if err != nil {
			srvrouter.RespondWithError(c, err)
			return
		}
		status := http.StatusOK
		if !result.Success {
			status = http.StatusBadRequest
		}
		c.JSON(status, result)
	}
}

func (h *Handler) rangeForScope(scope routeScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := parseItemID(c, scope.param)
		if !ok {
			return
		}
		r, err := h.svc.ValidDateRange(c.Request.Context(), scope.itemType, itemID)
		if err != nil {
			srvrouter.RespondWithError(c, err)
			return
		}
		srvrouter.SendSuccess(c, http.StatusOK, r, "")
	}
}

func (h *Handler) propagateForScope(scope routeScope) gin.HandlerFunc {
	return func(c *gin.Context) {
		itemID, ok := parseItemID(c, scope.param)
		if !ok {
			return
		}
		u := auth.UserFromContext(c.Request.Context())
		changes, err := h.svc.PropagateDateChanges(c.Request.Context(), u.OrgID, scope.itemType, itemID)
		if err != nil {
			srvrouter.RespondWithError(c, err)
			return
		}
		srvrouter.SendSuccess(c, http.StatusOK, changes, "")
	}
}

func parseItemID(c *gin.Context, param string) (core.ID, bool) {
	id, err := core.ParseID(c.Param(param))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid "+param)
		return "", false
	}
	return id, true
}
