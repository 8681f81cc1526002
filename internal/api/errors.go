package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/churnguard/internal/errors"
)

// toAppError maps any error onto the AppError the client sees
func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.As(err); ok {
		return appErr
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ServiceError("request cancelled", err)
	}
	return errors.InternalError("unexpected error", err)
}

// respondError writes {"error": AppError} with the status the error code maps to
func respondError(c *gin.Context, err error) {
	appErr := toAppError(err)
	_ = c.Error(err)
	c.JSON(appErr.StatusCode(), gin.H{"error": appErr})
}

// respondBindError reports a malformed request body
func respondBindError(c *gin.Context, err error) {
	appErr := errors.InvalidInput("Invalid request format", err).WithDetails(err.Error())
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": appErr})
}
