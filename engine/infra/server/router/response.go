package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/activity"
	"github.com/masar-hq/masar/engine/auth/user"
	"github.com/masar-hq/masar/engine/constraint"
	"github.com/masar-hq/masar/engine/core"
	"github.com/masar-hq/masar/engine/depgraph"
	"github.com/masar-hq/masar/engine/org"
	"github.com/masar-hq/masar/engine/project"
	"github.com/masar-hq/masar/engine/task"
	"github.com/masar-hq/masar/pkg/logger"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse represents a standardized success response
type SuccessResponse struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, errorMsg, message string) {
	c.JSON(statusCode, ErrorResponse{Error: errorMsg, Message: message})
	c.Abort()
}

// SendSuccess sends a standardized success response
func SendSuccess(c *gin.Context, statusCode int, data any, message string) {
	c.JSON(statusCode, SuccessResponse{Data: data, Message: message})
}

// statusForKind maps an error kind to its HTTP status.
func statusForKind(kind core.Kind) int {
	switch kind {
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindUnauthenticated:
		return http.StatusUnauthorized
	case core.KindForbidden:
		return http.StatusForbidden
	case core.KindValidationFailed, core.KindUniqueConflict, core.KindReferentialIntegrity,
		core.KindSelfDependency, core.KindCycleDetected, core.KindInvalidTransition,
		core.KindActivityVerifyBlocked, core.KindProgressNotEditable,
		core.KindConstraintViolation, core.KindScheduleOverflow:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// notFound reports whether the error is one of the repository not-found
// sentinels, which carry no kind of their own.
func notFound(err error) bool {
	for _, sentinel := range []error{
		org.ErrOrgNotFound,
		org.ErrHolidayNotFound,
		user.ErrUserNotFound,
		project.ErrProjectNotFound,
		activity.ErrActivityNotFound,
		task.ErrTaskNotFound,
		depgraph.ErrDependencyNotFound,
		constraint.ErrConstraintNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// RespondWithError maps a core error to its HTTP response. Internal errors
// are logged and return a generic message.
func RespondWithError(c *gin.Context, err error) {
	kind := core.KindOf(err)
	if kind == core.KindInternal && notFound(err) {
		kind = core.KindNotFound
	}
	status := statusForKind(kind)
	body := ErrorResponse{Error: string(kind), Message: err.Error()}
	var coreErr *core.Error
	if errors.As(err, &coreErr) && coreErr.Details != nil {
		body.Details = coreErr.Details
	}
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("Request failed", "error", err)
		body.Message = "internal server error"
	}
	c.JSON(status, body)
	c.Abort()
}
