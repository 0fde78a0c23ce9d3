package delivery

import (
	"errors"
	"net/http"

	"honeystore/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

const internalErrorMessage = "Internal server error"

// respondError maps a use case error onto the HTTP status and body.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	httpStatus, message := mapErrorToStatus(err)
	if httpStatus >= http.StatusInternalServerError {
		logger.Errorf("Handler Error: %v", err)
	} else {
		logger.Warnf("Handler Error: Mapped %q to HTTP Status %d", err.Error(), httpStatus)
	}
	c.JSON(httpStatus, ErrorResponse{Error: message})
}

func mapErrorToStatus(err error) (int, string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrInvalidPaymentTransition):
		return http.StatusConflict, domain.ErrInvalidPaymentTransition.Error()
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, domain.ErrGateway):
		return http.StatusInternalServerError, "Payment gateway error"
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

func badRequest(c *gin.Context, logger logrus.FieldLogger, err error) {
	logger.Warnf("Failed to bind request: %v", err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
}
