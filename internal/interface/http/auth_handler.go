package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/medtrack/medtrack-service/internal/domain/auth"
)

// AuthHandler wires the authentication endpoints to the auth service.
type AuthHandler struct {
	svc             auth.Service
	postLoginTarget string
	logger          *slog.Logger
}

// NewAuthHandler constructs the authentication handler.
func NewAuthHandler(svc auth.Service, cfg auth.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:             svc,
		postLoginTarget: cfg.Google.PostLoginRedirectURL,
		logger:          logger.With("component", "http.auth_handler"),
	}
}

// Register creates a local account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	profile, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// Login issues session tokens for email and password credentials.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a fresh token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GoogleURL starts the PKCE sign-in flow and hands back the consent URL.
func (h *AuthHandler) GoogleURL(c *gin.Context) {
	state, verifier, challenge, err := newOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "auth_error", "failed to generate oauth state", err))
		return
	}
	consentURL, err := h.svc.GoogleAuthURL(c.Request.Context(), state, challenge)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	setOAuthStateCookie(c, state, verifier)
	c.JSON(http.StatusOK, gin.H{"url": consentURL})
}

// GoogleCallback completes the PKCE sign-in flow. When a post-login redirect
// target is configured the tokens travel in the URL fragment, otherwise the
// token pair is returned as JSON.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	stored, ok := readOAuthStateCookie(c)
	clearOAuthStateCookie(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "missing or expired oauth state", nil))
		return
	}
	if c.Query("state") != stored.State {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "oauth state mismatch", nil))
		return
	}

	resp, err := h.svc.GoogleCallback(c.Request.Context(), c.Query("code"), stored.CodeVerifier)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	if h.postLoginTarget == "" {
		c.JSON(http.StatusOK, resp)
		return
	}
	fragment := url.Values{
		"token":        {resp.Token},
		"refreshToken": {resp.RefreshToken},
	}
	c.Redirect(http.StatusFound, h.postLoginTarget+"#"+fragment.Encode())
}

// Profile returns the signed-in user's profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth claims", nil))
		return
	}
	profile, err := h.svc.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Logout revokes linked provider tokens. Session tokens simply expire.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing auth claims", nil))
		return
	}
	if err := h.svc.Logout(c.Request.Context(), claims.UserID); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
