package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"backend/internal/workflow"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Budget for a single state-changing request. Transitions that cannot
// finish in time are rolled back and reported as a timeout, never as a
// half-applied change.
const requestTimeout = 10 * time.Second

func timeoutContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError translates workflow and storage errors into the HTTP
// codes the API contract promises.
func respondError(c *gin.Context, err error) {
	var validationErr *workflow.ValidationError
	var capabilityErr *workflow.CapabilityError
	var transitionErr *workflow.TransitionError
	var conflictErr *workflow.ConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.Error(validationErr.Error()))
	case errors.As(err, &capabilityErr):
		c.JSON(http.StatusForbidden, response.Error(capabilityErr.Error()))
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, response.Error(conflictErr.Error()))
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, response.Error(transitionErr.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, response.Error("The request timed out before completing"))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, response.Error("Record not found"))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(err.Error()))
	}
}
