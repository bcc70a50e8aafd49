package server

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// requestID keeps a caller-supplied X-Request-ID or assigns a new one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog(out io.Writer) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Output: out,
		Formatter: func(p gin.LogFormatterParams) string {
			rid, _ := p.Keys[requestIDKey].(string)
			return fmt.Sprintf("%s [%s] %d %s %s %s %v\n",
				p.TimeStamp.Format(time.RFC3339),
				rid,
				p.StatusCode,
				p.Method,
				p.Path,
				p.ClientIP,
				p.Latency,
			)
		},
	})
}

func requestIDOf(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
