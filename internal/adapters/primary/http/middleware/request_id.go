package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key carrying the request's correlation
// id. Error responses echo it back as correlation_id.
const RequestIDKey = "request_id"

const requestIDHeader = "X-Request-ID"

// RequestID assigns every request a correlation id. An inbound
// X-Request-ID is honored only when it parses as a UUID; anything else
// is replaced so log correlation stays well-formed.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()
	}
}
