package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domain "github.com/siyaamtanzeel/Motoshop/internal/entity"
	"github.com/siyaamtanzeel/Motoshop/internal/logging"
	"github.com/siyaamtanzeel/Motoshop/internal/usecase"
)

// statusFor maps the error taxonomy onto HTTP.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, usecase.ErrDuplicate):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrDataIntegrity):
		return http.StatusInternalServerError, "data_integrity"
	case errors.Is(err, domain.ErrGateway):
		return http.StatusBadGateway, "gateway"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if code == "internal" {
		// storage errors stay in the log
		logging.From(c).Error("request failed", "err", err)
		msg = "internal error"
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": code, "message": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msg})
}
