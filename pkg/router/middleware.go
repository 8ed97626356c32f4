package router

import (
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

// Keys set on every gin context.
const (
	RequestCountKey = "requestcount"
	RequestIDKey    = "requestid"
	RequestIDHeader = "X-Request-Id"
)

var requestCount int64

func setupContext(c *gin.Context) {
	reqCount := strconv.FormatInt(atomic.AddInt64(&requestCount, 1), 10)
	c.Set(RequestCountKey, reqCount)
	reqID := c.Request.Header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = uuid.Must(uuid.NewV4()).String()
	}
	c.Set(RequestIDKey, reqID)
	c.Writer.Header().Set(RequestIDHeader, reqID)
}

// RequestID returns the id of the request being served.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
