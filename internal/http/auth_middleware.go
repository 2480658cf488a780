package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"watch-catalog/internal/domain"
	"watch-catalog/internal/repository"
)

const (
	// SessionCookieName es la cookie que transporta el token de sesión.
	SessionCookieName = "LEECOIS-AUTH"

	identityKey = "identity"
)

// Authenticate resuelve el token (Bearer o cookie) a un miembro y lo deja en
// el contexto. 400 si no hay token, 403 si no corresponde a nadie.
func Authenticate(logger *zap.Logger, members repository.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(SessionCookieName); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "missing session token"})
			return
		}

		member, err := members.GetBySessionToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				logger.Error("session lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "could not authenticate"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "invalid session token"})
			return
		}

		c.Set(identityKey, member)
		c.Next()
	}
}

// extractBearerToken acepta solo "Bearer <token>" con exactamente dos partes.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// RequireOwner exige que la identidad coincida con el parámetro de ruta.
func RequireOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok || strings.TrimSpace(identity.ID) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		if strings.TrimSpace(identity.ID) != strings.TrimSpace(c.Param(param)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAccountOwner se usa donde la cuenta destino viene en el body
// ("email") y no en la ruta. El body queda cacheado para el handler.
func RequireAccountOwner(logger *zap.Logger, members repository.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok || strings.TrimSpace(identity.ID) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}

		var body struct {
			Email string `json:"email"`
		}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(body.Email))
		if email == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Email or new password missing"})
			return
		}

		target, err := members.GetByEmail(c.Request.Context(), email)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				logger.Error("account owner lookup failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "could not authorize"})
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		if target.ID != strings.TrimSpace(identity.ID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAdmin relee isAdmin desde el store en cada request.
func RequireAdmin(logger *zap.Logger, members repository.MemberRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok || strings.TrimSpace(identity.ID) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		member, err := members.GetByID(c.Request.Context(), identity.ID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			logger.Error("admin lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "could not authorize"})
			return
		}
		if err != nil || !member.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		c.Next()
	}
}

// GetIdentity obtiene el miembro autenticado desde el contexto.
func GetIdentity(c *gin.Context) (domain.Member, bool) {
	val, ok := c.Get(identityKey)
	if !ok {
		return domain.Member{}, false
	}
	member, ok := val.(domain.Member)
	return member, ok
}
