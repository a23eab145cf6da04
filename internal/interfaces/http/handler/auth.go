package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login and guest session issuance
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	sessions    cache.GuestSessionStore
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, sessions cache.GuestSessionStore) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
	}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/guest", h.GuestSession)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}
}

// Register godoc
// @Summary      Register a customer account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterRequest true "Account details"
// @Success      201 {object} dto.Response{data=identity.AuthResponse}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	guestSession := c.GetHeader(middleware.GuestSessionHeader)
	result, err := h.authService.Register(c.Request.Context(), req, guestSession)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.revokeGuestSession(c, guestSession)
	h.Created(c, result)
}

// Login godoc
// @Summary      Authenticate a customer
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=identity.AuthResponse}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	guestSession := c.GetHeader(middleware.GuestSessionHeader)
	result, err := h.authService.Login(c.Request.Context(), req, guestSession)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.revokeGuestSession(c, guestSession)
	h.Success(c, result)
}

// GuestSession godoc
// @Summary      Issue an anonymous session for guest carts
// @Tags         auth
// @Produce      json
// @Success      201 {object} dto.Response{data=GuestSessionResponse}
// @Router       /auth/guest [post]
func (h *AuthHandler) GuestSession(c *gin.Context) {
	sessionID, err := h.sessions.Issue(c.Request.Context())
	if err != nil {
		h.InternalError(c, "Could not issue a guest session")
		return
	}

	h.Created(c, GuestSessionResponse{SessionID: sessionID})
}

// Refresh godoc
// @Summary      Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=identity.AuthResponse}
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identity.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout godoc
// @Summary      Revoke the caller's access token
// @Tags         auth
// @Produce      json
// @Success      204 "No Content"
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader(middleware.AuthHeaderKey), middleware.BearerPrefix)
	if token == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// revokeGuestSession retires a guest session once its cart has merged
// into the customer's cart. Failures only mean the session expires on
// its own later.
func (h *AuthHandler) revokeGuestSession(c *gin.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	_ = h.sessions.Revoke(c.Request.Context(), sessionID)
}

// GuestSessionResponse carries a freshly issued guest session ID
type GuestSessionResponse struct {
	SessionID string `json:"session_id"`
}
