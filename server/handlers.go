package server

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theoremus-urban-solutions/zhbus-go/zhbus"
)

// statusClientClosedRequest is reported when the caller went away mid-query
const statusClientClosedRequest = 499

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"locale":      s.opts.Locale,
		"producerRef": s.opts.ProducerRef,
	})
}

func (s *Server) handleLines(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	lines, err := s.svc.LinesByName(c.Request.Context(), name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if lines == nil {
		lines = []zhbus.Line{}
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "lines": lines})
}

func (s *Server) handleStations(c *gin.Context) {
	list, err := s.svc.StationList(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) handleRealTime(c *gin.Context) {
	line, from, ok := realTimeParams(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-store")
	status, err := s.svc.RealTime(c.Request.Context(), line, from)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// realTimeParams writes a 400 and reports false when a parameter is missing
func realTimeParams(c *gin.Context) (line, from string, ok bool) {
	line, from = c.Query("line"), c.Query("fromStation")
	if line == "" || from == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "line and fromStation are required"})
		return "", "", false
	}
	return line, from, true
}

// writeError maps query failures onto gateway statuses
func (s *Server) writeError(c *gin.Context, err error) {
	log.Printf("[%s] %s: %v", requestIDOf(c), c.FullPath(), err)

	if errors.Is(err, zhbus.ErrEmptyArgument) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var qe *zhbus.QueryError
	if !errors.As(err, &qe) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{"error": qe.Error(), "kind": qe.Kind.String()}
	status := http.StatusBadGateway
	switch qe.Kind {
	case zhbus.KindHTTPStatus:
		body["upstreamStatus"] = qe.StatusCode
	case zhbus.KindNetwork:
		if qe.Timeout {
			status = http.StatusGatewayTimeout
		}
	case zhbus.KindCancelled:
		status = statusClientClosedRequest
	}
	c.JSON(status, body)
}
