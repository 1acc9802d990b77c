package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-admissions-backend/internal/domain"
)

// RequestID tags every request with a correlation ID. An inbound
// X-Request-ID is honored so IDs survive proxy hops; otherwise a fresh UUID
// is generated. The ID is stored on both the gin context and the request
// context so usecases and upstream call logs can carry it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(string(domain.KeyRequestID), id)
		ctx := context.WithValue(c.Request.Context(), domain.KeyRequestID, id)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", id)
		c.Next()
	}
}
