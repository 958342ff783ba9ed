package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
	srvrouter "github.com/masar-hq/masar/engine/infra/server/router"
	"github.com/masar-hq/masar/engine/org"
)

// Handler handles organisation configuration HTTP requests
type Handler struct {
	svc *org.Service
}

// NewHandler creates a new organisation handler
func NewHandler(svc *org.Service) *Handler {
	return &Handler{svc: svc}
}

// GetCurrent returns the caller's organisation
func (h *Handler) GetCurrent(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	o, err := h.svc.Get(c.Request.Context(), u.OrgID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, o, "")
}

// UpdateWorkingConfigRequest is the working-time configuration payload
type UpdateWorkingConfigRequest struct {
	Name              string          `json:"name"`
	Timezone          string          `json:"timezone"`
	WorkingDaysOfWeek string          `json:"workingDaysOfWeek"`
	WorkingHours      []org.WorkBlock `json:"workingHours"`
}

// UpdateWorkingConfig updates the calendar configuration and invalidates the
// cached pattern
func (h *Handler) UpdateWorkingConfig(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	var req UpdateWorkingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	o, err := h.svc.Get(c.Request.Context(), u.OrgID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	if req.Name != "" {
		o.Name = req.Name
	}
	if req.Timezone != "" {
		o.Timezone = req.Timezone
	}
	if req.WorkingDaysOfWeek != "" {
		o.WorkingDaysOfWeek = req.WorkingDaysOfWeek
	}
	if req.WorkingHours != nil {
		o.WorkingHours = req.WorkingHours
	}
	updated, err := h.svc.UpdateWorkingConfig(c.Request.Context(), o)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, updated, "organization updated")
}

// ListHolidays returns all holidays of the organisation
func (h *Handler) ListHolidays(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	holidays, err := h.svc.ListHolidays(c.Request.Context(), u.OrgID)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, holidays, "")
}

// AddHolidayRequest is the holiday creation payload
type AddHolidayRequest struct {
	Date        time.Time `json:"date" binding:"required"`
	Description string    `json:"description"`
}

// AddHoliday creates a holiday and invalidates the cached pattern
func (h *Handler) AddHoliday(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	var req AddHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	holiday, err := h.svc.AddHoliday(c.Request.Context(), &org.Holiday{
		OrgID:       u.OrgID,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusCreated, holiday, "holiday created")
}

// RemoveHoliday deletes a holiday and invalidates the cached pattern
func (h *Handler) RemoveHoliday(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	holidayID, err := core.ParseID(c.Param("holidayID"))
	if err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", "invalid holidayID")
		return
	}
	if err := h.svc.RemoveHoliday(c.Request.Context(), u.OrgID, holidayID); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, nil, "holiday deleted")
}
