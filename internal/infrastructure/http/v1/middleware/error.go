package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillage/internal/core/apperror"
	"tillage/internal/infrastructure/storage/postgres"
	"tillage/pkg/logger"
)

// ErrorHandler renders errors collected during the request as a
// consistent JSON body. Unknown errors are logged in full and reduced
// to a generic message for the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// A handler may have written a response already
		if c.Writer.Written() {
			return
		}

		status := http.StatusInternalServerError
		var body gin.H

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"cause", appErr.Err,
				)
			}
			status = appErr.HTTPStatus
			body = gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
				"details": appErr.Details,
			}
		} else {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
			body = gin.H{
				"code":    apperror.CodeInternal,
				"message": "Internal server error",
				"details": map[string]any{
					"request_id": c.GetString("request_id"),
				},
			}
		}

		// Record the failure against the idempotency key so retries
		// replay the same error instead of re-running the operation.
		failIdempotency(c, status, body)

		c.JSON(status, body)
	}
}

func failIdempotency(c *gin.Context, status int, body gin.H) {
	key, exists := c.Get("idempotency_key")
	if !exists {
		return
	}
	stored, ok := c.Get("idempotency_store")
	if !ok {
		return
	}
	store, ok := stored.(*postgres.IdempotencyStore)
	if !ok || store == nil {
		return
	}
	_ = store.FailKey(c.Request.Context(), key.(string), status, "application/json", body)
}
