package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"watch-catalog/internal/service"
)

// publicMessages fija el texto que ve el cliente para algunos errores de negocio.
var publicMessages = map[error]string{
	service.ErrMemberExists:       "Member already exists",
	service.ErrInvalidCredentials: "Invalid credentials",
	service.ErrCredentialsMissing: "Authentication details are missing",
	service.ErrPasswordMismatch:   "New passwords do not match",
	service.ErrWrongPassword:      "Current password is incorrect",
	service.ErrBrandNotFound:      "Brand not found",
	service.ErrBrandHasWatches:    "Cannot delete brand with watches",
	service.ErrAdminCannotComment: "Admins cannot comment",
	service.ErrAlreadyCommented:   "User has already commented on this watch",
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func isBusinessError(err error) bool {
	return errors.Is(err, service.ErrValidation) ||
		errors.Is(err, service.ErrConflict) ||
		errors.Is(err, service.ErrForbidden) ||
		errors.Is(err, service.ErrNotFound)
}

func publicMessage(err error) string {
	for target, msg := range publicMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	// "categoría: detalle" -> "Detalle"
	_, detail, ok := strings.Cut(err.Error(), ": ")
	if !ok || detail == "" {
		return err.Error()
	}
	return strings.ToUpper(detail[:1]) + detail[1:]
}

// respondError traduce err a status + {"message"}. Los errores inesperados se
// loguean y responden 400 sin detalle.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	if !isBusinessError(err) {
		logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"message": "could not " + op})
		return
	}
	logger.Warn(op+" rejected", zap.Error(err))
	c.JSON(statusFor(err), gin.H{"message": publicMessage(err)})
}

func badRequest(c *gin.Context, logger *zap.Logger, op string, err error) {
	logger.Warn("invalid "+op+" request", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request"})
}
