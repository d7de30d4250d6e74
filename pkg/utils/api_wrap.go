package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pmsportal/internal/clients/cashfree"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func traceID(c *gin.Context) string {
	return c.GetString("trace_id")
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: traceID(c),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Success: false,
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: traceID(c),
	})
}

// HandleServiceError maps service errors onto HTTP status codes. Messages are returned verbatim.
func HandleServiceError(c *gin.Context, err error) {
	var gatewayErr *cashfree.GatewayError

	switch {
	case errors.Is(err, ErrValidation):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrClientNotFound):
		RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrConcurrentUpdate):
		RespondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrOTPExpired):
		RespondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		RespondError(c, http.StatusForbidden, err.Error())
	case errors.As(err, &gatewayErr):
		log.Warn().Err(err).Str("trace_id", traceID(c)).Msg("Gateway error")
		RespondError(c, http.StatusBadGateway, gatewayErr.Message)
	case errors.Is(err, ErrDatabaseError):
		log.Error().Err(err).Str("trace_id", traceID(c)).Msg("Database error")
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Error().Err(err).Str("trace_id", traceID(c)).Msg("Unhandled service error")
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
