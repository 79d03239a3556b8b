package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func requestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(200, c.GetString(RequestIDKey))
	})
	return router
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	router := requestIDRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	id := w.Header().Get("X-Request-ID")
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String())
}

func TestRequestID_HonorsValidInbound(t *testing.T) {
	router := requestIDRouter()
	inbound := uuid.NewString()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", inbound)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, inbound, w.Header().Get("X-Request-ID"))
	assert.Equal(t, inbound, w.Body.String())
}

func TestRequestID_ReplacesMalformedInbound(t *testing.T) {
	router := requestIDRouter()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	id := w.Header().Get("X-Request-ID")
	assert.NotEqual(t, "not-a-uuid", id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}
