package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/masar-hq/masar/engine/auth"
	"github.com/masar-hq/masar/engine/core"
	srvrouter "github.com/masar-hq/masar/engine/infra/server/router"
)

// refreshCookieName is the cookie carrying the opaque refresh token.
const refreshCookieName = "masar_refresh"

// refreshCookieMaxAge matches the 7-day refresh token lifetime.
const refreshCookieMaxAge = 7 * 24 * 60 * 60

// Handler handles auth-related HTTP requests
type Handler struct {
	svc *auth.Service
}

// NewHandler creates a new auth handler
func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates credentials, sets the refresh cookie, and returns the
// user summary with an access token.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	session, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	h.setRefreshCookie(c, session.RefreshToken)
	srvrouter.SendSuccess(c, http.StatusOK, gin.H{
		"user":        session.User.Summarize(),
		"accessToken": session.AccessToken,
	}, "logged in")
}

// Refresh exchanges the refresh cookie (or body token) for a new access token
func (h *Handler) Refresh(c *gin.Context) {
	refreshValue := h.refreshTokenFromRequest(c)
	if refreshValue == "" {
		srvrouter.SendError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "missing refresh token")
		return
	}
	access, err := h.svc.Refresh(c.Request.Context(), refreshValue)
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, gin.H{"accessToken": access}, "")
}

// Logout revokes the presented refresh token and clears the cookie
func (h *Handler) Logout(c *gin.Context) {
	refreshValue := h.refreshTokenFromRequest(c)
	if refreshValue != "" {
		// A missing or already revoked token still results in a logged-out client
		_ = h.svc.Logout(c.Request.Context(), refreshValue)
	}
	h.clearRefreshCookie(c)
	srvrouter.SendSuccess(c, http.StatusOK, nil, "logged out")
}

// Me returns the authenticated user's summary
func (h *Handler) Me(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	if u == nil {
		srvrouter.SendError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	srvrouter.SendSuccess(c, http.StatusOK, u.Summarize(), "")
}

// ChangePasswordRequest is the change-password payload
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ChangePassword verifies the old password, writes the new hash, revokes all
// of the user's refresh tokens, and clears the refresh cookie
func (h *Handler) ChangePassword(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), u.ID, req.OldPassword, req.NewPassword); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	srvrouter.SendSuccess(c, http.StatusOK, nil, "password changed")
}

// LogoutAllDevices revokes all refresh tokens of the user
func (h *Handler) LogoutAllDevices(c *gin.Context) {
	u := auth.UserFromContext(c.Request.Context())
	if err := h.svc.LogoutAllDevices(c.Request.Context(), u.ID); err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	h.clearRefreshCookie(c)
	srvrouter.SendSuccess(c, http.StatusOK, nil, "all sessions revoked")
}

// CreateUserRequest is the PMO user-creation payload
type CreateUserRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"     binding:"required"`
}

// CreateUser creates a user in the caller's organisation
func (h *Handler) CreateUser(c *gin.Context) {
	caller := auth.UserFromContext(c.Request.Context())
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	role := core.Role(req.Role)
	if !role.IsValid() {
		srvrouter.SendError(c, http.StatusBadRequest, "VALIDATION_FAILED",
			"role must be one of PMO, PM, TEAM_MEMBER, CLIENT")
		return
	}
	created, err := h.svc.CreateUser(c.Request.Context(), &auth.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     role,
		OrgID:    caller.OrgID,
	})
	if err != nil {
		srvrouter.RespondWithError(c, err)
		return
	}
	srvrouter.SendSuccess(c, http.StatusCreated, created.Summarize(), "user created")
}

func (h *Handler) refreshTokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie != "" {
		return cookie
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func (h *Handler) setRefreshCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookieName, value, refreshCookieMaxAge, "/api/auth", "", false, true)
}

func (h *Handler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(refreshCookieName, "", -1, "/api/auth", "", false, true)
}
