package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"watch-catalog/internal/oauth"
	"watch-catalog/internal/service"
)

const (
	federatedCookieMaxAge = 7 * 24 * 60 * 60
	providerSessionKey    = "member_id"
	stateNonceSessionKey  = "oauth_state_nonce"
)

// AuthHandler mantiene dependencias para los endpoints /auth y /logout.
type AuthHandler struct {
	logger       *zap.Logger
	authServ     *service.AuthService
	federated    *service.FederatedService
	provider     oauth.Provider
	stateSigner  *oauth.StateSigner
	cookieDomain string
	frontendURL  string
}

// AuthHandlerConfig agrupa los parámetros de cookie y redirección.
type AuthHandlerConfig struct {
	CookieDomain string
	FrontendURL  string
}

// NewAuthHandler crea el handler. provider puede ser nil si Google no está configurado.
func NewAuthHandler(
	logger *zap.Logger,
	authServ *service.AuthService,
	federated *service.FederatedService,
	provider oauth.Provider,
	stateSigner *oauth.StateSigner,
	cfg AuthHandlerConfig,
) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		authServ:     authServ,
		federated:    federated,
		provider:     provider,
		stateSigner:  stateSigner,
		cookieDomain: cfg.CookieDomain,
		frontendURL:  strings.TrimRight(cfg.FrontendURL, "/"),
	}
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Membername string `json:"membername"`
		Email      string `json:"email"`
		Password   string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "register", err)
		return
	}

	member, err := h.authServ.Register(c.Request.Context(), service.RegisterInput{
		Membername: req.Membername,
		Email:      req.Email,
		Password:   req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// Login maneja POST /auth/login. La cookie no lleva expiración.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "login", err)
		return
	}

	member, err := h.authServ.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	h.setSessionCookie(c, member.Authentication.SessionToken, 0)
	c.JSON(http.StatusOK, member)
}

// ResetPassword maneja POST /auth/reset-password. Corre detrás de
// RequireAccountOwner, que ya leyó el body.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		badRequest(c, h.logger, "reset password", err)
		return
	}

	if err := h.authServ.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		respondError(c, h.logger, "reset password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}

// ChangePassword maneja POST /auth/change-password/:id. Actúa sobre la
// identidad autenticada.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity, ok := GetIdentity(c)
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden"})
		return
	}
	var req struct {
		CurrentPassword    string `json:"currentPassword"`
		NewPassword        string `json:"newPassword"`
		ConfirmNewPassword string `json:"confirmNewPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "change password", err)
		return
	}

	err := h.authServ.ChangePassword(c.Request.Context(), identity.ID, service.ChangePasswordInput{
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		respondError(c, h.logger, "change password", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password change successful"})
}

// GoogleLogin maneja GET /auth/google.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	if h.provider == nil || h.stateSigner == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "google login not configured"})
		return
	}
	state, nonce, err := h.stateSigner.Issue()
	if err != nil {
		h.logger.Error("oauth state issue failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.frontendURL+"/auth/login")
		return
	}
	session := sessions.Default(c)
	session.Set(stateNonceSessionKey, nonce)
	if err := session.Save(); err != nil {
		h.logger.Error("oauth state session save failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.frontendURL+"/auth/login")
		return
	}
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// GoogleCallback maneja GET /auth/google/callback. Siempre responde con
// redirección, también ante errores.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	failure := h.frontendURL + "/auth/login"
	if h.provider == nil || h.stateSigner == nil {
		c.Redirect(http.StatusFound, failure)
		return
	}

	// El nonce es de un solo uso: se consume antes de validar.
	session := sessions.Default(c)
	nonce, _ := session.Get(stateNonceSessionKey).(string)
	session.Delete(stateNonceSessionKey)
	if err := session.Save(); err != nil {
		h.logger.Warn("oauth state session save failed", zap.Error(err))
	}

	if err := h.stateSigner.Verify(c.Query("state"), nonce); err != nil {
		h.logger.Warn("oauth state rejected", zap.Error(err))
		c.Redirect(http.StatusFound, failure)
		return
	}
	if errParam := c.Query("error"); errParam != "" {
		h.logger.Warn("oauth provider returned error", zap.String("error", errParam))
		c.Redirect(http.StatusFound, failure)
		return
	}

	profile, err := h.provider.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.logger.Warn("oauth exchange failed", zap.Error(err))
		c.Redirect(http.StatusFound, failure)
		return
	}

	member, err := h.federated.SignIn(c.Request.Context(), service.FederatedProfile{
		ID:          profile.ID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
	})
	if err != nil {
		h.logger.Error("federated sign in failed", zap.Error(err))
		c.Redirect(http.StatusFound, failure)
		return
	}
	token := member.Authentication.SessionToken

	userJSON, err := json.Marshal(member.Public())
	if err != nil {
		h.logger.Error("marshal public member failed", zap.Error(err))
		c.Redirect(http.StatusFound, failure)
		return
	}

	session.Set(providerSessionKey, member.ID)
	if err := session.Save(); err != nil {
		h.logger.Warn("provider session save failed", zap.Error(err))
	}

	h.setSessionCookie(c, token, federatedCookieMaxAge)
	target := h.frontendURL + "/auth/google/callback?token=" + url.QueryEscape(token) +
		"&user=" + url.QueryEscape(string(userJSON))
	c.Redirect(http.StatusFound, target)
}

// Logout maneja GET /logout: limpia la sesión del proveedor y vuelve a "/".
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.logger.Warn("provider session clear failed", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(SessionCookieName, token, maxAge, "/", h.cookieDomain, false, true)
}
