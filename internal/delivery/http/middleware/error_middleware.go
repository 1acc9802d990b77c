package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-admissions-backend/internal/delivery/http/response"
	"go-admissions-backend/pkg/apperror"
	"go-admissions-backend/pkg/logger"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				response.Error(c, appErr.Code, appErr.Message, nil)
			} else {
				// Never expose internal error details to clients; log the
				// real error server-side and return a generic message.
				logger.With("path", c.FullPath()).Error("unhandled request error", "error", err)
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			}
		}
	}
}
